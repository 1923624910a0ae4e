package rest

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrforms/internal/editor"
	"hrforms/internal/model"
	"hrforms/internal/service"
	"hrforms/internal/service/servicetest"
	"hrforms/internal/transport/ws"
)

type testServer struct {
	t     *testing.T
	store *servicetest.FormStore
	h     http.Handler
	token string
}

func newTestServer(t *testing.T) *testServer {
	log := zerolog.Nop()
	store := servicetest.NewFormStore()
	auth := service.NewAuthService("test-secret", map[string]string{"acme": "acme-key", "globex": "globex-key"})
	forms := service.NewFormService(store, log)
	editorSvc := service.NewEditorService(forms, servicetest.NewDraftCache(), editor.NewSyncer(store, log), log)
	hub := ws.NewHub(log)
	editorSvc.SetBroadcaster(hub)

	ts := &testServer{
		t:     t,
		store: store,
		h: NewRouter(&Container{
			AuthService:     auth,
			FormService:     forms,
			EditorService:   editorSvc,
			FeedbackService: service.NewFeedbackService(forms, servicetest.NewFeedbackStore(), log),
			WSHub:           hub,
			Log:             log,
		}),
	}

	var tok model.TokenResponse
	ts.do(http.MethodPost, "/v1/auth/token", map[string]string{"userId": "u1", "company": "acme", "key": "acme-key"}, http.StatusOK, &tok)
	require.NotEmpty(t, tok.Token)
	ts.token = tok.Token
	return ts
}

// do sends body as JSON, asserts the status and decodes the response into out.
func (ts *testServer) do(method, path string, body interface{}, wantStatus int, out interface{}) {
	ts.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(ts.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if ts.token != "" {
		req.Header.Set("Authorization", "Bearer "+ts.token)
	}
	rec := httptest.NewRecorder()
	ts.h.ServeHTTP(rec, req)

	require.Equal(ts.t, wantStatus, rec.Code, "%s %s: %s", method, path, rec.Body.String())
	if out != nil {
		require.NoError(ts.t, json.Unmarshal(rec.Body.Bytes(), out))
	}
}

type sessionBody struct {
	Session struct {
		ID                string     `json:"id"`
		Form              model.Form `json:"form"`
		CurrentQuestionID string     `json:"currentQuestionId"`
		Dirty             bool       `json:"dirty"`
	} `json:"session"`
	State    string              `json:"state"`
	Question *model.Question     `json:"question"`
	Option   *model.Option       `json:"option"`
	Summary  *editor.SaveSummary `json:"summary"`
}

func TestHealthAndAuth(t *testing.T) {
	ts := newTestServer(t)
	ts.do(http.MethodGet, "/health", nil, http.StatusOK, nil)

	ts.do(http.MethodPost, "/v1/auth/token", map[string]string{"userId": "u1", "key": "acme-key"}, http.StatusBadRequest, nil)

	ts.token = ""
	ts.do(http.MethodGet, "/v1/forms", nil, http.StatusUnauthorized, nil)
	ts.token = "garbage"
	ts.do(http.MethodGet, "/v1/forms", nil, http.StatusUnauthorized, nil)
}

func TestTokenRequiresCompanyKey(t *testing.T) {
	ts := newTestServer(t)
	var form model.Form
	ts.do(http.MethodPost, "/v1/forms", map[string]string{"name": "Salaries"}, http.StatusCreated, &form)

	ts.token = ""
	ts.do(http.MethodPost, "/v1/auth/token", map[string]string{"userId": "mallory", "company": "acme"}, http.StatusUnauthorized, nil)
	ts.do(http.MethodPost, "/v1/auth/token", map[string]string{"userId": "mallory", "company": "acme", "key": "globex-key"}, http.StatusUnauthorized, nil)
	ts.do(http.MethodPost, "/v1/auth/token", map[string]string{"userId": "mallory", "company": "initech", "key": ""}, http.StatusUnauthorized, nil)

	var tok model.TokenResponse
	ts.do(http.MethodPost, "/v1/auth/token", map[string]string{"userId": "mallory", "company": "globex", "key": "globex-key"}, http.StatusOK, &tok)
	ts.token = tok.Token

	var list struct {
		Forms []model.Form `json:"forms"`
	}
	ts.do(http.MethodGet, "/v1/forms", nil, http.StatusOK, &list)
	assert.Empty(t, list.Forms)
	ts.do(http.MethodGet, "/v1/forms/"+form.ID, nil, http.StatusNotFound, nil)
}

func TestTextIsStoredVerbatim(t *testing.T) {
	ts := newTestServer(t)
	var form model.Form
	ts.do(http.MethodPost, "/v1/forms", map[string]string{"name": "R&D <pulse>"}, http.StatusCreated, &form)

	var sess sessionBody
	ts.do(http.MethodPost, "/v1/forms/"+form.ID+"/sessions", nil, http.StatusCreated, &sess)
	base := "/v1/sessions/" + sess.Session.ID
	ts.do(http.MethodPost, base+"/questions", nil, http.StatusCreated, &sess)
	qid := sess.Question.ID
	oid := sess.Question.Options[0].ID

	ts.do(http.MethodPatch, base+"/questions/"+qid, map[string]string{"text": "Is x<y and y>z?"}, http.StatusOK, nil)
	ts.do(http.MethodPatch, base+"/questions/"+qid+"/options/"+oid, map[string]string{"text": "Use a<b>c"}, http.StatusOK, nil)
	ts.do(http.MethodPatch, base+"/details", map[string]string{"name": "Q&A <draft>", "description": "5 > 3 &amp; 2 < 4"}, http.StatusOK, nil)
	ts.do(http.MethodPost, base+"/save", nil, http.StatusOK, nil)

	var stored model.Form
	ts.do(http.MethodGet, "/v1/forms/"+form.ID, nil, http.StatusOK, &stored)
	assert.Equal(t, "Q&A <draft>", stored.Name)
	assert.Equal(t, "5 > 3 &amp; 2 < 4", stored.Description)
	require.Len(t, stored.Questions, 1)
	assert.Equal(t, "Is x<y and y>z?", stored.Questions[0].Text)
	assert.Equal(t, "Use a<b>c", stored.Questions[0].Options[0].Text)
}

func TestEditingFlow(t *testing.T) {
	ts := newTestServer(t)

	var form model.Form
	ts.do(http.MethodPost, "/v1/forms", map[string]interface{}{"name": "<b>Team</b> pulse"}, http.StatusCreated, &form)
	assert.Equal(t, "<b>Team</b> pulse", form.Name)
	assert.Equal(t, "acme", form.Company)
	assert.Equal(t, "u1", form.CreatedBy)

	var sess sessionBody
	ts.do(http.MethodPost, "/v1/forms/"+form.ID+"/sessions", nil, http.StatusCreated, &sess)
	assert.Equal(t, "clean", sess.State)
	base := "/v1/sessions/" + sess.Session.ID

	ts.do(http.MethodPost, base+"/questions", nil, http.StatusCreated, &sess)
	require.NotNil(t, sess.Question)
	qid := sess.Question.ID
	assert.Equal(t, "Untitled Question 1", sess.Question.Text)
	assert.Equal(t, "dirty", sess.State)

	ts.do(http.MethodPatch, base+"/questions/"+qid, map[string]interface{}{"type": "LINEAR_SCALE", "text": "How likely?"}, http.StatusOK, &sess)
	q := sess.Session.Form.Questions[0]
	assert.Equal(t, model.QuestionTypeLinearScale, q.Type)
	assert.Equal(t, "How likely?", q.Text)
	require.Len(t, q.Options, 2)

	// invariant violations
	ts.do(http.MethodPost, base+"/questions/"+qid+"/options", nil, http.StatusUnprocessableEntity, nil)
	ts.do(http.MethodPatch, base+"/questions/"+qid+"/options/"+q.Options[1].ID, map[string]int{"scale": 42}, http.StatusUnprocessableEntity, nil)
	ts.do(http.MethodDelete, base+"/questions/"+qid, nil, http.StatusUnprocessableEntity, nil)
	ts.do(http.MethodPost, base+"/questions/reorder", map[string]int{"from": 0, "to": 3}, http.StatusUnprocessableEntity, nil)
	ts.do(http.MethodPatch, base+"/questions/"+qid, map[string]string{"type": "STARS"}, http.StatusBadRequest, nil)
	ts.do(http.MethodPatch, base+"/questions/missing", map[string]string{"text": "x"}, http.StatusNotFound, nil)

	ts.do(http.MethodPatch, base+"/questions/"+qid+"/options/"+q.Options[1].ID, map[string]interface{}{"scale": 10, "text": "Very"}, http.StatusOK, &sess)
	assert.Equal(t, 10, *sess.Session.Form.Questions[0].Options[1].Scale)

	ts.do(http.MethodPut, base+"/questions/"+qid+"/required", map[string]bool{"required": true}, http.StatusOK, &sess)
	assert.True(t, sess.Session.Form.Questions[0].Required)

	ts.do(http.MethodPost, base+"/save", nil, http.StatusOK, &sess)
	require.NotNil(t, sess.Summary)
	assert.True(t, sess.Summary.Sent)
	assert.Equal(t, "clean", sess.State)
	savedID := sess.Session.Form.Questions[0].ID
	assert.False(t, model.IsTemporaryID(savedID))
	assert.Equal(t, savedID, sess.Session.CurrentQuestionID)

	var stored model.Form
	ts.do(http.MethodGet, "/v1/forms/"+form.ID, nil, http.StatusOK, &stored)
	require.Len(t, stored.Questions, 1)
	assert.Equal(t, savedID, stored.Questions[0].ID)
	assert.Equal(t, "Very", stored.Questions[0].Options[1].Text)

	ts.do(http.MethodDelete, base, nil, http.StatusNoContent, nil)
	ts.do(http.MethodGet, base, nil, http.StatusNotFound, nil)
}

func TestFeedbackRequiresPublishedForm(t *testing.T) {
	ts := newTestServer(t)

	var form model.Form
	ts.do(http.MethodPost, "/v1/forms", map[string]string{"name": "Onboarding"}, http.StatusCreated, &form)
	ts.do(http.MethodPost, "/v1/forms/"+form.ID+"/feedback", nil, http.StatusConflict, nil)

	var sess sessionBody
	ts.do(http.MethodPost, "/v1/forms/"+form.ID+"/sessions", nil, http.StatusCreated, &sess)
	base := "/v1/sessions/" + sess.Session.ID
	ts.do(http.MethodPost, base+"/questions", nil, http.StatusCreated, nil)
	ts.do(http.MethodPatch, base+"/setting", map[string]bool{"published": true}, http.StatusOK, nil)
	ts.do(http.MethodPatch, base+"/details", map[string]string{"name": "Onboarding v2", "description": "For new hires"}, http.StatusOK, nil)
	ts.do(http.MethodPost, base+"/save", nil, http.StatusOK, &sess)

	var fb model.Feedback
	ts.do(http.MethodPost, "/v1/forms/"+form.ID+"/feedback", nil, http.StatusCreated, &fb)
	assert.Equal(t, "u1", fb.UserID)
	require.Len(t, fb.Answers, 1)
	assert.Equal(t, sess.Session.Form.Questions[0].ID, fb.Answers[0].QuestionID)

	var list struct {
		Feedback []model.Feedback `json:"feedback"`
	}
	ts.do(http.MethodGet, "/v1/forms/"+form.ID+"/feedback", nil, http.StatusOK, &list)
	assert.Len(t, list.Feedback, 1)
	ts.do(http.MethodGet, "/v1/forms/"+form.ID+"/feedback?answered=true", nil, http.StatusOK, &list)
	assert.Empty(t, list.Feedback)

	var got model.Feedback
	ts.do(http.MethodGet, "/v1/forms/"+form.ID+"/feedback/"+fb.ID, nil, http.StatusOK, &got)
	assert.Equal(t, fb.ID, got.ID)
	ts.do(http.MethodGet, "/v1/forms/"+form.ID+"/feedback/missing", nil, http.StatusNotFound, nil)
}

func TestDeleteForm(t *testing.T) {
	ts := newTestServer(t)

	var collab, plain model.Form
	ts.do(http.MethodPost, "/v1/forms", map[string]interface{}{"name": "Shared", "collab": true}, http.StatusCreated, &collab)
	ts.do(http.MethodPost, "/v1/forms", map[string]string{"name": "Mine"}, http.StatusCreated, &plain)

	ts.do(http.MethodDelete, "/v1/forms/"+collab.ID, nil, http.StatusConflict, nil)
	ts.do(http.MethodDelete, "/v1/forms/"+plain.ID, nil, http.StatusNoContent, nil)
	ts.do(http.MethodGet, "/v1/forms/"+plain.ID, nil, http.StatusNotFound, nil)

	var list struct {
		Forms []model.Form `json:"forms"`
	}
	ts.do(http.MethodGet, "/v1/forms", nil, http.StatusOK, &list)
	require.Len(t, list.Forms, 1)
	assert.Equal(t, collab.ID, list.Forms[0].ID)
}

func TestSaveFailureIsBadGateway(t *testing.T) {
	ts := newTestServer(t)

	var form model.Form
	ts.do(http.MethodPost, "/v1/forms", map[string]string{"name": "f"}, http.StatusCreated, &form)
	var sess sessionBody
	ts.do(http.MethodPost, "/v1/forms/"+form.ID+"/sessions", nil, http.StatusCreated, &sess)
	base := "/v1/sessions/" + sess.Session.ID
	ts.do(http.MethodPost, base+"/questions", nil, http.StatusCreated, nil)

	ts.store.PersistErr = errors.New("timeout")
	ts.do(http.MethodPost, base+"/save", nil, http.StatusBadGateway, nil)

	ts.do(http.MethodGet, base, nil, http.StatusOK, &sess)
	assert.Equal(t, "dirty", sess.State)
	assert.True(t, model.IsTemporaryID(sess.Session.Form.Questions[0].ID))
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/v1/forms", nil)
	rec := httptest.NewRecorder()
	ts.h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PATCH")
}
