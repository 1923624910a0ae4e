package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"hrforms/internal/service"
	"hrforms/internal/transport/rest/middleware"
)

// FeedbackHandler handles feedback seeding endpoints
type FeedbackHandler struct {
	feedbackSvc *service.FeedbackService
}

// NewFeedbackHandler creates a new feedback handler
func NewFeedbackHandler(feedbackSvc *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbackSvc: feedbackSvc}
}

// Start handles POST /v1/forms/{formId}/feedback
func (h *FeedbackHandler) Start(w http.ResponseWriter, r *http.Request) {
	formID := mux.Vars(r)["formId"]
	ctx := r.Context()

	feedback, err := h.feedbackSvc.Start(ctx, middleware.GetCompany(ctx), middleware.GetUserID(ctx), formID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, feedback)
}

// List handles GET /v1/forms/{formId}/feedback[?answered=true]
func (h *FeedbackHandler) List(w http.ResponseWriter, r *http.Request) {
	formID := mux.Vars(r)["formId"]
	answeredOnly := r.URL.Query().Get("answered") == "true"

	feedback, err := h.feedbackSvc.List(r.Context(), middleware.GetCompany(r.Context()), formID, answeredOnly)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"feedback": feedback})
}

// Get handles GET /v1/forms/{formId}/feedback/{feedbackId}
func (h *FeedbackHandler) Get(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	feedback, err := h.feedbackSvc.Get(r.Context(), middleware.GetCompany(r.Context()), vars["formId"], vars["feedbackId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, feedback)
}
