package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"hrforms/internal/editor"
	"hrforms/internal/model"
	"hrforms/internal/service"
	"hrforms/internal/transport/rest/middleware"
)

// EditorHandler exposes editing session operations
type EditorHandler struct {
	editorSvc *service.EditorService
}

// NewEditorHandler creates a new editor handler
func NewEditorHandler(editorSvc *service.EditorService) *EditorHandler {
	return &EditorHandler{editorSvc: editorSvc}
}

// SessionResponse is returned by every session endpoint
type SessionResponse struct {
	Session  *editor.EditingSession `json:"session"`
	State    editor.SessionState    `json:"state"`
	Question *model.Question        `json:"question,omitempty"`
	Option   *model.Option          `json:"option,omitempty"`
	Summary  *editor.SaveSummary    `json:"summary,omitempty"`
}

func newSessionResponse(s *editor.EditingSession) SessionResponse {
	return SessionResponse{Session: s, State: s.State()}
}

type selectRequest struct {
	QuestionID string `json:"questionId"`
}

type detailsRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type reorderRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type questionPatchRequest struct {
	Text *string             `json:"text,omitempty"`
	Type *model.QuestionType `json:"type,omitempty"`
}

type requiredRequest struct {
	Required bool `json:"required"`
}

type optionPatchRequest struct {
	Text  *string `json:"text,omitempty"`
	Scale *int    `json:"scale,omitempty"`
}

// Open handles POST /v1/forms/{formId}/sessions
func (h *EditorHandler) Open(w http.ResponseWriter, r *http.Request) {
	formID := mux.Vars(r)["formId"]

	session, err := h.editorSvc.Open(r.Context(), middleware.GetCompany(r.Context()), formID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newSessionResponse(session))
}

// Get handles GET /v1/sessions/{sessionId}
func (h *EditorHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, err := h.editorSvc.Get(r.Context(), middleware.GetCompany(r.Context()), mux.Vars(r)["sessionId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newSessionResponse(session))
}

// Close handles DELETE /v1/sessions/{sessionId}
func (h *EditorHandler) Close(w http.ResponseWriter, r *http.Request) {
	if err := h.editorSvc.Close(r.Context(), middleware.GetCompany(r.Context()), mux.Vars(r)["sessionId"]); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Select handles PUT /v1/sessions/{sessionId}/cursor
func (h *EditorHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.apply(w, r, func(s *editor.EditingSession) error {
		return s.Select(req.QuestionID)
	})
}

// UpdateDetails handles PATCH /v1/sessions/{sessionId}/details
func (h *EditorHandler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	var req detailsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.apply(w, r, func(s *editor.EditingSession) error {
		return s.UpdateDetails(req.Name, req.Description)
	})
}

// UpdateSetting handles PATCH /v1/sessions/{sessionId}/setting
func (h *EditorHandler) UpdateSetting(w http.ResponseWriter, r *http.Request) {
	var patch model.SettingPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.apply(w, r, func(s *editor.EditingSession) error {
		return s.UpdateSetting(patch)
	})
}

// AddQuestion handles POST /v1/sessions/{sessionId}/questions
func (h *EditorHandler) AddQuestion(w http.ResponseWriter, r *http.Request) {
	var added *model.Question
	session, err := h.editorSvc.Apply(r.Context(), middleware.GetCompany(r.Context()), mux.Vars(r)["sessionId"], func(s *editor.EditingSession) error {
		q, err := s.AddQuestion()
		added = q
		return err
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := newSessionResponse(session)
	resp.Question = added
	writeJSON(w, http.StatusCreated, resp)
}

// Reorder handles POST /v1/sessions/{sessionId}/questions/reorder
func (h *EditorHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.apply(w, r, func(s *editor.EditingSession) error {
		return s.Reorder(req.From, req.To)
	})
}

// EditQuestion handles PATCH /v1/sessions/{sessionId}/questions/{questionId}.
// A type change is applied before the text edit.
func (h *EditorHandler) EditQuestion(w http.ResponseWriter, r *http.Request) {
	questionID := mux.Vars(r)["questionId"]

	var req questionPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == nil && req.Type == nil {
		writeError(w, http.StatusBadRequest, "text or type is required")
		return
	}
	if req.Type != nil && !req.Type.Valid() {
		writeError(w, http.StatusBadRequest, model.ErrInvalidQuestionType.Error())
		return
	}

	h.apply(w, r, func(s *editor.EditingSession) error {
		if req.Type != nil {
			if err := s.ChangeType(questionID, *req.Type); err != nil {
				return err
			}
		}
		if req.Text != nil {
			return s.EditText(questionID, *req.Text)
		}
		return nil
	})
}

// SetRequired handles PUT /v1/sessions/{sessionId}/questions/{questionId}/required
func (h *EditorHandler) SetRequired(w http.ResponseWriter, r *http.Request) {
	questionID := mux.Vars(r)["questionId"]

	var req requiredRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.apply(w, r, func(s *editor.EditingSession) error {
		return s.ToggleRequired(questionID, req.Required)
	})
}

// DeleteQuestion handles DELETE /v1/sessions/{sessionId}/questions/{questionId}
func (h *EditorHandler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	questionID := mux.Vars(r)["questionId"]

	h.apply(w, r, func(s *editor.EditingSession) error {
		return s.DeleteQuestion(questionID)
	})
}

// AddOption handles POST /v1/sessions/{sessionId}/questions/{questionId}/options
func (h *EditorHandler) AddOption(w http.ResponseWriter, r *http.Request) {
	questionID := mux.Vars(r)["questionId"]

	var added model.Option
	session, err := h.editorSvc.Apply(r.Context(), middleware.GetCompany(r.Context()), mux.Vars(r)["sessionId"], func(s *editor.EditingSession) error {
		opt, err := s.AddOption(questionID)
		added = opt
		return err
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := newSessionResponse(session)
	resp.Option = &added
	writeJSON(w, http.StatusCreated, resp)
}

// EditOption handles PATCH /v1/sessions/{sessionId}/questions/{questionId}/options/{optionId}
func (h *EditorHandler) EditOption(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	questionID, optionID := vars["questionId"], vars["optionId"]

	var req optionPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == nil && req.Scale == nil {
		writeError(w, http.StatusBadRequest, "text or scale is required")
		return
	}

	h.apply(w, r, func(s *editor.EditingSession) error {
		if req.Scale != nil {
			if err := s.EditOptionScale(questionID, optionID, *req.Scale); err != nil {
				return err
			}
		}
		if req.Text != nil {
			return s.EditOption(questionID, optionID, *req.Text)
		}
		return nil
	})
}

// DeleteOption handles DELETE /v1/sessions/{sessionId}/questions/{questionId}/options/{optionId}
func (h *EditorHandler) DeleteOption(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	questionID, optionID := vars["questionId"], vars["optionId"]

	h.apply(w, r, func(s *editor.EditingSession) error {
		return s.DeleteOption(questionID, optionID)
	})
}

// Save handles POST /v1/sessions/{sessionId}/save
func (h *EditorHandler) Save(w http.ResponseWriter, r *http.Request) {
	session, summary, err := h.editorSvc.Save(r.Context(), middleware.GetCompany(r.Context()), mux.Vars(r)["sessionId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := newSessionResponse(session)
	resp.Summary = &summary
	writeJSON(w, http.StatusOK, resp)
}

func (h *EditorHandler) apply(w http.ResponseWriter, r *http.Request, op func(*editor.EditingSession) error) {
	session, err := h.editorSvc.Apply(r.Context(), middleware.GetCompany(r.Context()), mux.Vars(r)["sessionId"], op)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newSessionResponse(session))
}
