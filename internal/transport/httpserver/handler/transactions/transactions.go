package transactions

import (
	"errors"
	"net/http"
	"strings"
	"time"

	familydomain "family-finance-go/internal/domain/family"
	transactionsdomain "family-finance-go/internal/domain/transactions"
	"family-finance-go/internal/transport/httpserver/handler/common"
	"github.com/go-chi/chi/v5"
)

type createTransactionRequest struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Type        string  `json:"type"`
	Category    string  `json:"category"`
	Date        string  `json:"date"`
}

type updateTransactionRequest struct {
	Amount      *float64 `json:"amount"`
	Description *string  `json:"description"`
	Type        *string  `json:"type"`
	Category    *string  `json:"category"`
	Date        *string  `json:"date"`
}

type transactionResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Category    string    `json:"category"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (h *Handlers) ListTransactions(w http.ResponseWriter, r *http.Request) {
	user, ok := common.CurrentUser(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	from, err := common.ParseDateParam(query.Get("start_date"))
	if err != nil {
		common.WriteInvalidRequest(w, "invalid start_date")
		return
	}
	to, err := common.ParseDateParam(query.Get("end_date"))
	if err != nil {
		common.WriteInvalidRequest(w, "invalid end_date")
		return
	}
	if to != nil {
		// end_date covers the whole day
		endOfDay := to.Add(24*time.Hour - time.Nanosecond)
		to = &endOfDay
	}
	limit, offset, err := common.ParsePagination(query.Get("limit"), query.Get("offset"))
	if err != nil {
		common.WriteInvalidRequest(w, err.Error())
		return
	}

	filter := transactionsdomain.ListFilter{
		UserIDs: []string{user.ID},
		From:    from,
		To:      to,
		Limit:   limit,
		Offset:  offset,
	}
	if value := strings.TrimSpace(query.Get("type")); value != "" {
		typ := transactionsdomain.Type(value)
		filter.Type = &typ
	}
	if value := strings.TrimSpace(query.Get("category")); value != "" {
		category := transactionsdomain.Category(value)
		filter.Category = &category
	}

	if target := strings.TrimSpace(query.Get("user_id")); target != "" && target != user.ID {
		if err := h.Families.AuthorizeTarget(r.Context(), user.ID, target); err != nil {
			h.writeError(w, "transactions.list", err, "user_id", user.ID, "target_id", target)
			return
		}
		filter.UserIDs = []string{target}
	}

	items, total, err := h.Transactions.List(r.Context(), filter)
	if err != nil {
		h.writeError(w, "transactions.list", err, "user_id", user.ID)
		return
	}

	response := make([]transactionResponse, 0, len(items))
	for _, item := range items {
		response = append(response, toTransactionResponse(item))
	}

	common.WriteJSON(w, http.StatusOK, common.Page{
		Items:  response,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

func (h *Handlers) GetTransaction(w http.ResponseWriter, r *http.Request) {
	user, ok := common.CurrentUser(w, r)
	if !ok {
		return
	}

	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		common.WriteInvalidRequest(w, "id is required")
		return
	}

	item, err := h.Transactions.Get(r.Context(), user.ID, id)
	if err != nil {
		h.writeError(w, "transactions.get", err, "user_id", user.ID, "transaction_id", id)
		return
	}

	common.WriteJSON(w, http.StatusOK, toTransactionResponse(*item))
}

func (h *Handlers) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteInvalidJSON(w)
		return
	}

	user, ok := common.CurrentUser(w, r)
	if !ok {
		return
	}

	input := transactionsdomain.CreateInput{
		UserID:      user.ID,
		Amount:      req.Amount,
		Description: req.Description,
		Type:        transactionsdomain.Type(strings.TrimSpace(req.Type)),
		Category:    transactionsdomain.Category(strings.TrimSpace(req.Category)),
	}
	if strings.TrimSpace(req.Date) != "" {
		date, err := common.ParseTimestamp(req.Date)
		if err != nil {
			common.WriteInvalidRequest(w, "invalid date")
			return
		}
		input.Date = date
	}

	created, err := h.Transactions.Create(r.Context(), input)
	if err != nil {
		h.writeError(w, "transactions.create", err, "user_id", user.ID)
		return
	}

	common.WriteJSON(w, http.StatusCreated, toTransactionResponse(*created))
}

func (h *Handlers) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req updateTransactionRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteInvalidJSON(w)
		return
	}

	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		common.WriteInvalidRequest(w, "id is required")
		return
	}

	user, ok := common.CurrentUser(w, r)
	if !ok {
		return
	}

	input := transactionsdomain.UpdateInput{
		ID:          id,
		CallerID:    user.ID,
		Amount:      req.Amount,
		Description: req.Description,
	}
	if req.Type != nil {
		typ := transactionsdomain.Type(strings.TrimSpace(*req.Type))
		input.Type = &typ
	}
	if req.Category != nil {
		category := transactionsdomain.Category(strings.TrimSpace(*req.Category))
		input.Category = &category
	}
	if req.Date != nil {
		date, err := common.ParseTimestamp(*req.Date)
		if err != nil {
			common.WriteInvalidRequest(w, "invalid date")
			return
		}
		input.Date = &date
	}

	updated, err := h.Transactions.Update(r.Context(), input)
	if err != nil {
		h.writeError(w, "transactions.update", err, "user_id", user.ID, "transaction_id", id)
		return
	}

	common.WriteJSON(w, http.StatusOK, toTransactionResponse(*updated))
}

func (h *Handlers) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		common.WriteInvalidRequest(w, "id is required")
		return
	}

	user, ok := common.CurrentUser(w, r)
	if !ok {
		return
	}

	if err := h.Transactions.Delete(r.Context(), user.ID, id); err != nil {
		h.writeError(w, "transactions.delete", err, "user_id", user.ID, "transaction_id", id)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) writeError(w http.ResponseWriter, op string, err error, attrs ...any) {
	status, code, message := http.StatusInternalServerError, "", ""
	switch {
	case errors.Is(err, transactionsdomain.ErrTransactionNotFound):
		status, code, message = http.StatusNotFound, "transaction_not_found", "transaction not found"
	case errors.Is(err, transactionsdomain.ErrInvalidAmount):
		status, code, message = http.StatusBadRequest, "invalid_amount", err.Error()
	case errors.Is(err, transactionsdomain.ErrInvalidType):
		status, code, message = http.StatusBadRequest, "invalid_type", err.Error()
	case errors.Is(err, transactionsdomain.ErrInvalidCategory):
		status, code, message = http.StatusBadRequest, "invalid_category", err.Error()
	case errors.Is(err, transactionsdomain.ErrForbidden), errors.Is(err, familydomain.ErrForbidden):
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

func toTransactionResponse(item transactionsdomain.Transaction) transactionResponse {
	return transactionResponse{
		ID:          item.ID,
		UserID:      item.UserID,
		Amount:      item.Amount,
		Description: item.Description,
		Type:        string(item.Type),
		Category:    string(item.Category),
		Date:        item.Date,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}
