package goals

import (
	"errors"
	"net/http"
	"strings"
	"time"

	goalsdomain "family-finance-go/internal/domain/goals"
	"family-finance-go/internal/transport/httpserver/handler/common"
	"github.com/go-chi/chi/v5"
)

type createGoalRequest struct {
	Title          string   `json:"title"`
	Description    *string  `json:"description"`
	TargetAmount   float64  `json:"target_amount"`
	Deadline       *string  `json:"deadline"`
	ParticipantIDs []string `json:"participant_ids"`
}

type updateGoalRequest struct {
	Title          *string   `json:"title"`
	Description    *string   `json:"description"`
	TargetAmount   *float64  `json:"target_amount"`
	Deadline       *string   `json:"deadline"`
	ClearDeadline  bool      `json:"clear_deadline"`
	ParticipantIDs *[]string `json:"participant_ids"`
}

type contributeRequest struct {
	Amount float64 `json:"amount"`
}

type goalResponse struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    *string    `json:"description"`
	TargetAmount   float64    `json:"target_amount"`
	CurrentAmount  float64    `json:"current_amount"`
	Deadline       *time.Time `json:"deadline"`
	IsCompleted    bool       `json:"is_completed"`
	CreatorID      string     `json:"creator_id"`
	ParticipantIDs []string   `json:"participant_ids"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type contributionResponse struct {
	ID     string    `json:"id"`
	GoalID string    `json:"goal_id"`
	UserID string    `json:"user_id"`
	Amount float64   `json:"amount"`
	Date   time.Time `json:"date"`
}

type contributeResponse struct {
	Contribution  contributionResponse `json:"contribution"`
	Goal          goalResponse         `json:"goal"`
	GoalCompleted bool                 `json:"goal_completed"`
}

type ProgressResponse struct {
	GoalID        string     `json:"goal_id"`
	Title         string     `json:"title"`
	TargetAmount  float64    `json:"target_amount"`
	CurrentAmount float64    `json:"current_amount"`
	Remaining     float64    `json:"remaining_amount"`
	Percentage    float64    `json:"progress_percentage"`
	IsCompleted   bool       `json:"is_completed"`
	Deadline      *time.Time `json:"deadline"`
	DaysRemaining *int       `json:"days_remaining"`
}

func (h *Handlers) ListGoals(w http.ResponseWriter, r *http.Request) {
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

	items, total, err := h.Goals.ListForUser(r.Context(), user.ID, offset, limit)
	if err != nil {
		h.writeError(w, "goals.list", err, "user_id", user.ID)
		return
	}

	response := make([]goalResponse, 0, len(items))
	for _, item := range items {
		response = append(response, toGoalResponse(item))
	}

	common.WriteJSON(w, http.StatusOK, common.Page{
		Items:  response,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

func (h *Handlers) CreateGoal(w http.ResponseWriter, r *http.Request) {
	var req createGoalRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteInvalidJSON(w)
		return
	}

	user, ok := common.CurrentUser(w, r)
	if !ok {
		return
	}

	input := goalsdomain.CreateInput{
		CreatorID:      user.ID,
		Title:          req.Title,
		Description:    req.Description,
		TargetAmount:   req.TargetAmount,
		ParticipantIDs: req.ParticipantIDs,
	}
	if req.Deadline != nil && strings.TrimSpace(*req.Deadline) != "" {
		deadline, err := common.ParseTimestamp(*req.Deadline)
		if err != nil {
			common.WriteInvalidRequest(w, "invalid deadline")
			return
		}
		input.Deadline = &deadline
	}

	created, err := h.Goals.Create(r.Context(), input)
	if err != nil {
		h.writeError(w, "goals.create", err, "user_id", user.ID)
		return
	}

	common.WriteJSON(w, http.StatusCreated, toGoalResponse(*created))
}

func (h *Handlers) GetGoal(w http.ResponseWriter, r *http.Request) {
	user, goalID, ok := h.goalRequest(w, r)
	if !ok {
		return
	}

	goal, err := h.Goals.Get(r.Context(), user, goalID)
	if err != nil {
		h.writeError(w, "goals.get", err, "user_id", user, "goal_id", goalID)
		return
	}

	common.WriteJSON(w, http.StatusOK, toGoalResponse(*goal))
}

func (h *Handlers) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	var req updateGoalRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteInvalidJSON(w)
		return
	}

	user, goalID, ok := h.goalRequest(w, r)
	if !ok {
		return
	}

	input := goalsdomain.UpdateInput{
		GoalID:         goalID,
		CallerID:       user,
		Title:          req.Title,
		Description:    req.Description,
		TargetAmount:   req.TargetAmount,
		ClearDeadline:  req.ClearDeadline,
		ParticipantIDs: req.ParticipantIDs,
	}
	if req.Deadline != nil {
		deadline, err := common.ParseTimestamp(*req.Deadline)
		if err != nil {
			common.WriteInvalidRequest(w, "invalid deadline")
			return
		}
		input.Deadline = &deadline
	}

	updated, err := h.Goals.Update(r.Context(), input)
	if err != nil {
		h.writeError(w, "goals.update", err, "user_id", user, "goal_id", goalID)
		return
	}

	common.WriteJSON(w, http.StatusOK, toGoalResponse(*updated))
}

func (h *Handlers) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	user, goalID, ok := h.goalRequest(w, r)
	if !ok {
		return
	}

	if err := h.Goals.Delete(r.Context(), user, goalID); err != nil {
		h.writeError(w, "goals.delete", err, "user_id", user, "goal_id", goalID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) Contribute(w http.ResponseWriter, r *http.Request) {
	var req contributeRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteInvalidJSON(w)
		return
	}

	user, goalID, ok := h.goalRequest(w, r)
	if !ok {
		return
	}

	result, err := h.Goals.Contribute(r.Context(), goalID, user, req.Amount)
	if err != nil {
		h.writeError(w, "goals.contribute", err, "user_id", user, "goal_id", goalID)
		return
	}

	common.WriteJSON(w, http.StatusCreated, contributeResponse{
		Contribution:  toContributionResponse(result.Contribution),
		Goal:          toGoalResponse(result.Goal),
		GoalCompleted: result.BecameComplete,
	})
}

func (h *Handlers) GetProgress(w http.ResponseWriter, r *http.Request) {
	user, goalID, ok := h.goalRequest(w, r)
	if !ok {
		return
	}

	progress, err := h.Goals.Progress(r.Context(), user, goalID)
	if err != nil {
		h.writeError(w, "goals.progress", err, "user_id", user, "goal_id", goalID)
		return
	}

	common.WriteJSON(w, http.StatusOK, ToProgressResponse(*progress))
}

func (h *Handlers) ListContributions(w http.ResponseWriter, r *http.Request) {
	user, goalID, ok := h.goalRequest(w, r)
	if !ok {
		return
	}

	items, err := h.Goals.ListContributions(r.Context(), user, goalID)
	if err != nil {
		h.writeError(w, "goals.list_contributions", err, "user_id", user, "goal_id", goalID)
		return
	}

	response := make([]contributionResponse, 0, len(items))
	for _, item := range items {
		response = append(response, toContributionResponse(item))
	}
	common.WriteJSON(w, http.StatusOK, response)
}

func (h *Handlers) ListMyContributions(w http.ResponseWriter, r *http.Request) {
	user, ok := common.CurrentUser(w, r)
	if !ok {
		return
	}

	items, err := h.Goals.ListUserContributions(r.Context(), user.ID)
	if err != nil {
		h.writeError(w, "goals.list_user_contributions", err, "user_id", user.ID)
		return
	}

	response := make([]contributionResponse, 0, len(items))
	for _, item := range items {
		response = append(response, toContributionResponse(item))
	}
	common.WriteJSON(w, http.StatusOK, response)
}

func (h *Handlers) goalRequest(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	user, ok := common.CurrentUser(w, r)
	if !ok {
		return "", "", false
	}
	goalID := strings.TrimSpace(chi.URLParam(r, "id"))
	if goalID == "" {
		common.WriteInvalidRequest(w, "id is required")
		return "", "", false
	}
	return user.ID, goalID, true
}

func (h *Handlers) writeError(w http.ResponseWriter, op string, err error, attrs ...any) {
	status, code, message := http.StatusInternalServerError, "", ""
	switch {
	case errors.Is(err, goalsdomain.ErrGoalNotFound):
		status, code, message = http.StatusNotFound, "goal_not_found", "goal not found"
	case errors.Is(err, goalsdomain.ErrInvalidAmount):
		status, code, message = http.StatusBadRequest, "invalid_amount", err.Error()
	case errors.Is(err, goalsdomain.ErrInvalidTarget):
		status, code, message = http.StatusBadRequest, "invalid_target", err.Error()
	case errors.Is(err, goalsdomain.ErrTitleRequired):
		status, code, message = http.StatusBadRequest, "invalid_request", err.Error()
	case errors.Is(err, goalsdomain.ErrNotParticipant):
		status, code, message = http.StatusForbidden, "not_participant", err.Error()
	case errors.Is(err, goalsdomain.ErrNotCreator):
		status, code, message = http.StatusForbidden, "not_creator", err.Error()
	}

	if status == http.StatusInternalServerError {
		h.log.InternalError(op+": failed", err, attrs...)
		common.WriteInternal(w)
		return
	}
	h.log.BusinessError(op+": "+message, err, attrs...)
	common.WriteError(w, status, code, message)
}

func toGoalResponse(goal goalsdomain.Goal) goalResponse {
	participants := goal.ParticipantIDs
	if participants == nil {
		participants = []string{}
	}
	return goalResponse{
		ID:             goal.ID,
		Title:          goal.Title,
		Description:    goal.Description,
		TargetAmount:   goal.TargetAmount,
		CurrentAmount:  goal.CurrentAmount,
		Deadline:       goal.Deadline,
		IsCompleted:    goal.IsCompleted,
		CreatorID:      goal.CreatorID,
		ParticipantIDs: participants,
		CreatedAt:      goal.CreatedAt,
		UpdatedAt:      goal.UpdatedAt,
	}
}

func toContributionResponse(item goalsdomain.Contribution) contributionResponse {
	return contributionResponse{
		ID:     item.ID,
		GoalID: item.GoalID,
		UserID: item.UserID,
		Amount: item.Amount,
		Date:   item.Date,
	}
}

// ToProgressResponse is shared with the goals report endpoint.
func ToProgressResponse(progress goalsdomain.Progress) ProgressResponse {
	return ProgressResponse{
		GoalID:        progress.GoalID,
		Title:         progress.Title,
		TargetAmount:  progress.TargetAmount,
		CurrentAmount: progress.CurrentAmount,
		Remaining:     progress.Remaining,
		Percentage:    progress.Percentage,
		IsCompleted:   progress.IsCompleted,
		Deadline:      progress.Deadline,
		DaysRemaining: progress.DaysRemaining,
	}
}
