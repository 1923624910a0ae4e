package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"hrforms/internal/model"
	"hrforms/internal/service"
	"hrforms/internal/transport/rest/middleware"
)

// FormHandler handles form lifecycle endpoints
type FormHandler struct {
	formSvc *service.FormService
}

// NewFormHandler creates a new form handler
func NewFormHandler(formSvc *service.FormService) *FormHandler {
	return &FormHandler{formSvc: formSvc}
}

// CreateFormRequest is the request body for creating a form
type CreateFormRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Collab      bool   `json:"collab"`
}

// Create handles POST /v1/forms
func (h *FormHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateFormRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	form, err := h.formSvc.Create(r.Context(), model.FormMeta{
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   middleware.GetUserID(r.Context()),
		Company:     middleware.GetCompany(r.Context()),
		Collab:      req.Collab,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, form)
}

// List handles GET /v1/forms
func (h *FormHandler) List(w http.ResponseWriter, r *http.Request) {
	forms, err := h.formSvc.List(r.Context(), middleware.GetCompany(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"forms": forms})
}

// Get handles GET /v1/forms/{formId}
func (h *FormHandler) Get(w http.ResponseWriter, r *http.Request) {
	formID := mux.Vars(r)["formId"]

	form, err := h.formSvc.Get(r.Context(), middleware.GetCompany(r.Context()), formID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, form)
}

// Delete handles DELETE /v1/forms/{formId}
func (h *FormHandler) Delete(w http.ResponseWriter, r *http.Request) {
	formID := mux.Vars(r)["formId"]

	if err := h.formSvc.Delete(r.Context(), middleware.GetCompany(r.Context()), formID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
