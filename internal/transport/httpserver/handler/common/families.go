package common

import (
	"errors"
	"net/http"
	"strings"
	"time"

	familydomain "family-finance-go/internal/domain/family"
	"github.com/go-chi/chi/v5"
)

type familyNameRequest struct {
	Name string `json:"name"`
}

type joinFamilyRequest struct {
	Code string `json:"code"`
}

type familyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	HeadID    string    `json:"head_id"`
	CreatedAt time.Time `json:"created_at"`
}

type familyMemberResponse struct {
	UserID   string    `json:"user_id"`
	Name     string    `json:"name"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

func (h *Handlers) GetFamilyMe(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(w, r)
	if !ok {
		return
	}

	result, err := h.Families.GetFamilyByUser(r.Context(), user.ID)
	if err != nil {
		h.writeFamilyError(w, "families.get", err, "user_id", user.ID)
		return
	}

	WriteJSON(w, http.StatusOK, toFamilyResponse(result))
}

func (h *Handlers) CreateFamily(w http.ResponseWriter, r *http.Request) {
	var req familyNameRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteInvalidJSON(w)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		WriteInvalidRequest(w, "name is required")
		return
	}

	user, ok := CurrentUser(w, r)
	if !ok {
		return
	}

	result, err := h.Families.CreateFamily(r.Context(), user.ID, req.Name)
	if err != nil {
		h.writeFamilyError(w, "families.create", err, "user_id", user.ID)
		return
	}

	WriteJSON(w, http.StatusCreated, toFamilyResponse(result))
}

func (h *Handlers) JoinFamily(w http.ResponseWriter, r *http.Request) {
	var req joinFamilyRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteInvalidJSON(w)
		return
	}
	req.Code = strings.TrimSpace(req.Code)
	if req.Code == "" {
		WriteInvalidRequest(w, "code is required")
		return
	}

	user, ok := CurrentUser(w, r)
	if !ok {
		return
	}

	result, err := h.Families.JoinFamily(r.Context(), user.ID, req.Code)
	if err != nil {
		h.writeFamilyError(w, "families.join", err, "user_id", user.ID, "code", req.Code)
		return
	}

	WriteJSON(w, http.StatusOK, toFamilyResponse(result))
}

func (h *Handlers) LeaveFamily(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(w, r)
	if !ok {
		return
	}

	if err := h.Families.LeaveFamily(r.Context(), user.ID); err != nil {
		h.writeFamilyError(w, "families.leave", err, "user_id", user.ID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) UpdateFamily(w http.ResponseWriter, r *http.Request) {
	var req familyNameRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteInvalidJSON(w)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		WriteInvalidRequest(w, "name is required")
		return
	}

	user, ok := CurrentUser(w, r)
	if !ok {
		return
	}

	result, err := h.Families.UpdateFamily(r.Context(), user.ID, req.Name)
	if err != nil {
		h.writeFamilyError(w, "families.update", err, "user_id", user.ID)
		return
	}

	WriteJSON(w, http.StatusOK, toFamilyResponse(result))
}

func (h *Handlers) ListFamilyMembers(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(w, r)
	if !ok {
		return
	}

	members, err := h.Families.ListMembers(r.Context(), user.ID)
	if err != nil {
		h.writeFamilyError(w, "families.list_members", err, "user_id", user.ID)
		return
	}

	ids := make([]string, 0, len(members))
	for _, member := range members {
		ids = append(ids, member.UserID)
	}
	names, err := h.Users.Names(r.Context(), ids)
	if err != nil {
		h.log.InternalError("families.list_members: resolve names failed", err, "user_id", user.ID)
		WriteInternal(w)
		return
	}

	response := make([]familyMemberResponse, 0, len(members))
	for _, member := range members {
		name, ok := names[member.UserID]
		if !ok {
			name = "Unknown"
		}
		response = append(response, familyMemberResponse{
			UserID:   member.UserID,
			Name:     name,
			Role:     member.Role,
			JoinedAt: member.JoinedAt,
		})
	}

	WriteJSON(w, http.StatusOK, response)
}

func (h *Handlers) RemoveFamilyMember(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(w, r)
	if !ok {
		return
	}

	memberID := strings.TrimSpace(chi.URLParam(r, "user_id"))
	if memberID == "" {
		WriteInvalidRequest(w, "user_id is required")
		return
	}

	if err := h.Families.RemoveMember(r.Context(), user.ID, memberID); err != nil {
		h.writeFamilyError(w, "families.remove_member", err, "actor_id", user.ID, "member_id", memberID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) writeFamilyError(w http.ResponseWriter, op string, err error, attrs ...any) {
	status, code, message := http.StatusInternalServerError, "", ""
	switch {
	case errors.Is(err, familydomain.ErrFamilyNotFound):
		status, code, message = http.StatusNotFound, "family_not_found", "family not found"
	case errors.Is(err, familydomain.ErrFamilyCodeNotFound):
		status, code, message = http.StatusNotFound, "family_code_not_found", "family code not found"
	case errors.Is(err, familydomain.ErrMemberNotFound):
		status, code, message = http.StatusNotFound, "member_not_found", "member not found"
	case errors.Is(err, familydomain.ErrAlreadyInFamily):
		status, code, message = http.StatusConflict, "already_in_family", "already in family"
	case errors.Is(err, familydomain.ErrHeadHasMembers):
		status, code, message = http.StatusConflict, "head_has_members", err.Error()
	case errors.Is(err, familydomain.ErrCannotRemoveHead):
		status, code, message = http.StatusConflict, "cannot_remove_head", "cannot remove family head"
	case errors.Is(err, familydomain.ErrNotFamilyHead):
		status, code, message = http.StatusForbidden, "not_family_head", "only the family head can do this"
	case errors.Is(err, familydomain.ErrForbidden):
		status, code, message = http.StatusForbidden, "forbidden", "not enough permissions"
	case errors.Is(err, familydomain.ErrNameRequired), errors.Is(err, familydomain.ErrCodeRequired):
		status, code, message = http.StatusBadRequest, "invalid_request", err.Error()
	}

	if status == http.StatusInternalServerError {
		h.log.InternalError(op+": failed", err, attrs...)
		WriteInternal(w)
		return
	}
	h.log.BusinessError(op+": "+message, err, attrs...)
	WriteError(w, status, code, message)
}

func toFamilyResponse(family *familydomain.Family) familyResponse {
	return familyResponse{
		ID:        family.ID,
		Name:      family.Name,
		Code:      family.Code,
		HeadID:    family.HeadID,
		CreatedAt: family.CreatedAt,
	}
}
