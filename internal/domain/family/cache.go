package family

import "time"

// Cache holds the family of a user keyed by user id. Implementations must be
// safe for concurrent use.
type Cache interface {
	GetByUserID(userID string) (*Family, bool)
	SetByUserID(userID string, family *Family, ttl time.Duration)
	DeleteByUserID(userID string)
	Clear()
}

type noopCache struct{}

var _ Cache = noopCache{}

func (noopCache) GetByUserID(string) (*Family, bool) { return nil, false }

func (noopCache) SetByUserID(string, *Family, time.Duration) {}

func (noopCache) DeleteByUserID(string) {}

func (noopCache) Clear() {}

// cachedFamily returns a copy so callers cannot mutate the cached entry.
func (s *Service) cachedFamily(userID string) (*Family, bool) {
	family, ok := s.cache.GetByUserID(userID)
	if !ok || family == nil {
		return nil, false
	}
	copied := *family
	return &copied, true
}

// forget drops the cached family of every given user after a membership
// change.
func (s *Service) forget(userIDs ...string) {
	for _, userID := range userIDs {
		s.cache.DeleteByUserID(userID)
	}
}
