package common

import (
	"net/http"
)

type authMeResponse struct {
	ID           string   `json:"id"`
	Email        string   `json:"email"`
	Name         string   `json:"name"`
	FamilyID     *string  `json:"family_id"`
	IsFamilyHead bool     `json:"is_family_head"`
	FamilyHeadID *string  `json:"family_head_id"`
	MemberIDs    []string `json:"member_ids"`
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) AuthMe(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(w, r)
	if !ok {
		return
	}

	identity, err := h.Families.Identity(r.Context(), user.ID)
	if err != nil {
		h.log.InternalError("auth.me: resolve identity failed", err, "user_id", user.ID)
		WriteInternal(w)
		return
	}

	response := authMeResponse{
		ID:           user.ID,
		Email:        user.Email,
		Name:         user.Name,
		IsFamilyHead: identity.IsFamilyHead,
		FamilyHeadID: identity.FamilyHeadID,
		MemberIDs:    identity.MemberIDs,
	}
	if identity.FamilyID != "" {
		familyID := identity.FamilyID
		response.FamilyID = &familyID
	}
	if response.MemberIDs == nil {
		response.MemberIDs = []string{}
	}
	if stored, err := h.Users.GetUser(r.Context(), user.ID); err == nil {
		response.Name = stored.DisplayName()
		if stored.Email != nil {
			response.Email = *stored.Email
		}
	}

	WriteJSON(w, http.StatusOK, response)
}
