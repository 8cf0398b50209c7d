package notifications

import (
	"errors"
	"net/http"
	"strings"
	"time"

	notificationsdomain "family-finance-go/internal/domain/notifications"
	"family-finance-go/internal/transport/httpserver/handler/common"
	"github.com/go-chi/chi/v5"
)

type createNotificationRequest struct {
	UserID  string `json:"user_id"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

type broadcastRequest struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

type updateNotificationRequest struct {
	IsRead *bool `json:"is_read"`
}

type notificationResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

type markAllReadResponse struct {
	Updated int64 `json:"updated"`
}

func (h *Handlers) ListNotifications(w http.ResponseWriter, r *http.Request) {
	user, ok := common.CurrentUser(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	limit, offset, err := common.ParsePagination(query.Get("limit"), query.Get("offset"))
	if err != nil {
		common.WriteInvalidRequest(w, err.Error())
		return
	}
	unreadOnly, err := common.ParseBoolParam(query.Get("unread_only"))
	if err != nil {
		common.WriteInvalidRequest(w, "invalid unread_only")
		return
	}

	items, total, err := h.Notifications.List(r.Context(), user.ID, notificationsdomain.ListFilter{
		UnreadOnly: unreadOnly,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		h.writeError(w, "notifications.list", err, "user_id", user.ID)
		return
	}

	common.WriteJSON(w, http.StatusOK, common.Page{
		Items:  toNotificationResponses(items),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

func (h *Handlers) CreateNotification(w http.ResponseWriter, r *http.Request) {
	var req createNotificationRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteInvalidJSON(w)
		return
	}

	user, ok := common.CurrentUser(w, r)
	if !ok {
		return
	}

	target := strings.TrimSpace(req.UserID)
	if target == "" {
		target = user.ID
	}

	created, err := h.Notifications.CreateManual(r.Context(), user.ID, target, req.Title, req.Message)
	if err != nil {
		h.writeError(w, "notifications.create", err, "user_id", user.ID, "target_id", target)
		return
	}

	common.WriteJSON(w, http.StatusCreated, toNotificationResponse(*created))
}

func (h *Handlers) BroadcastToFamily(w http.ResponseWriter, r *http.Request) {
	var req broadcastRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteInvalidJSON(w)
		return
	}

	user, ok := common.CurrentUser(w, r)
	if !ok {
		return
	}

	items, err := h.Notifications.FamilyBroadcast(r.Context(), user.ID, req.Title, req.Message)
	if err != nil {
		h.writeError(w, "notifications.broadcast", err, "user_id", user.ID)
		return
	}

	common.WriteJSON(w, http.StatusCreated, toNotificationResponses(items))
}

func (h *Handlers) UpdateNotification(w http.ResponseWriter, r *http.Request) {
	var req updateNotificationRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteInvalidJSON(w)
		return
	}
	if req.IsRead == nil {
		common.WriteInvalidRequest(w, "is_read is required")
		return
	}

	user, ok := common.CurrentUser(w, r)
	if !ok {
		return
	}
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		common.WriteInvalidRequest(w, "id is required")
		return
	}

	updated, err := h.Notifications.MarkRead(r.Context(), user.ID, id, *req.IsRead)
	if err != nil {
		h.writeError(w, "notifications.update", err, "user_id", user.ID, "notification_id", id)
		return
	}

	common.WriteJSON(w, http.StatusOK, toNotificationResponse(*updated))
}

func (h *Handlers) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	user, ok := common.CurrentUser(w, r)
	if !ok {
		return
	}

	updated, err := h.Notifications.MarkAllRead(r.Context(), user.ID)
	if err != nil {
		h.writeError(w, "notifications.read_all", err, "user_id", user.ID)
		return
	}

	common.WriteJSON(w, http.StatusOK, markAllReadResponse{Updated: updated})
}

func (h *Handlers) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	user, ok := common.CurrentUser(w, r)
	if !ok {
		return
	}
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		common.WriteInvalidRequest(w, "id is required")
		return
	}

	if err := h.Notifications.Delete(r.Context(), user.ID, id); err != nil {
		h.writeError(w, "notifications.delete", err, "user_id", user.ID, "notification_id", id)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) writeError(w http.ResponseWriter, op string, err error, attrs ...any) {
	status, code, message := http.StatusInternalServerError, "", ""
	switch {
	case errors.Is(err, notificationsdomain.ErrNotificationNotFound):
		status, code, message = http.StatusNotFound, "notification_not_found", "notification not found"
	case errors.Is(err, notificationsdomain.ErrTitleRequired), errors.Is(err, notificationsdomain.ErrMessageRequired):
		status, code, message = http.StatusBadRequest, "invalid_request", err.Error()
	case errors.Is(err, notificationsdomain.ErrForbidden):
		status, code, message = http.StatusForbidden, "forbidden", "not enough permissions"
	}

	if status == http.StatusInternalServerError {
		h.log.InternalError(op+": failed", err, attrs...)
		common.WriteInternal(w)
		return
	}
	h.log.BusinessError(op+": "+message, err, attrs...)
	common.WriteError(w, status, code, message)
}

func toNotificationResponses(items []notificationsdomain.Notification) []notificationResponse {
	response := make([]notificationResponse, 0, len(items))
	for _, item := range items {
		response = append(response, toNotificationResponse(item))
	}
	return response
}

func toNotificationResponse(item notificationsdomain.Notification) notificationResponse {
	return notificationResponse{
		ID:        item.ID,
		UserID:    item.UserID,
		Type:      string(item.Type),
		Title:     item.Title,
		Message:   item.Message,
		IsRead:    item.IsRead,
		CreatedAt: item.CreatedAt,
	}
}
