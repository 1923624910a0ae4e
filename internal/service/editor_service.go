package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"hrforms/internal/cache"
	"hrforms/internal/editor"
)

var ErrSessionNotFound = errors.New("editing session not found")

// EditorService keeps editing sessions as drafts in Redis so any API
// instance can serve the next edit. Operations on one session are
// serialised through the draft cache's lock, which every instance shares;
// different sessions proceed in parallel.
type EditorService struct {
	forms       *FormService
	drafts      cache.DraftCache
	syncer      *editor.Syncer
	broadcaster Broadcaster
	log         zerolog.Logger
}

// NewEditorService creates a new editor service
func NewEditorService(forms *FormService, drafts cache.DraftCache, syncer *editor.Syncer, log zerolog.Logger) *EditorService {
	return &EditorService{
		forms:  forms,
		drafts: drafts,
		syncer: syncer,
		log:    log,
	}
}

// SetBroadcaster sets the WebSocket broadcaster (to avoid circular dependency)
func (s *EditorService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Open loads the stored form into a new session and stores the draft.
// Nothing is stored when the form cannot be loaded.
func (s *EditorService) Open(ctx context.Context, company, formID string) (*editor.EditingSession, error) {
	form, err := s.forms.Get(ctx, company, formID)
	if err != nil {
		return nil, err
	}
	session := editor.NewEditingSession()
	if err := session.Load(form); err != nil {
		return nil, err
	}
	if err := s.drafts.Set(ctx, session); err != nil {
		return nil, err
	}
	s.log.Info().Str("session_id", session.ID).Str("form_id", formID).Msg("editing session opened")
	return session, nil
}

// Get returns the draft of sessionID if it belongs to company.
func (s *EditorService) Get(ctx context.Context, company, sessionID string) (*editor.EditingSession, error) {
	session, err := s.drafts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil || !session.Loaded() || session.Form.Company != company {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Apply runs op against the session and stores the result. A failing op
// leaves the stored draft untouched.
func (s *EditorService) Apply(ctx context.Context, company, sessionID string, op func(*editor.EditingSession) error) (*editor.EditingSession, error) {
	unlock, err := s.drafts.Lock(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	session, err := s.Get(ctx, company, sessionID)
	if err != nil {
		return nil, err
	}
	if err := op(session); err != nil {
		return nil, err
	}
	if err := s.drafts.Set(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Save syncs the session with the store. On success every editor of the
// form is told a new version landed.
func (s *EditorService) Save(ctx context.Context, company, sessionID string) (*editor.EditingSession, editor.SaveSummary, error) {
	unlock, err := s.drafts.Lock(ctx, sessionID)
	if err != nil {
		return nil, editor.SaveSummary{}, err
	}
	defer unlock()

	session, err := s.Get(ctx, company, sessionID)
	if err != nil {
		return nil, editor.SaveSummary{}, err
	}
	summary, err := s.syncer.Save(ctx, session)
	if err != nil {
		return nil, editor.SaveSummary{}, err
	}
	if !summary.Sent {
		return session, summary, nil
	}
	if err := s.drafts.Set(ctx, session); err != nil {
		return nil, editor.SaveSummary{}, err
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToForm(session.Form.ID, MsgFormSaved, map[string]interface{}{
			"formId":    session.Form.ID,
			"sessionId": session.ID,
			"updatedAt": session.Form.UpdatedAt,
		})
	}
	return session, summary, nil
}

// Close discards the draft. Unsaved changes are lost.
func (s *EditorService) Close(ctx context.Context, company, sessionID string) error {
	unlock, err := s.drafts.Lock(ctx, sessionID)
	if err != nil {
		return err
	}
	defer unlock()

	if _, err := s.Get(ctx, company, sessionID); err != nil {
		return err
	}
	if err := s.drafts.Delete(ctx, sessionID); err != nil {
		return err
	}
	s.log.Info().Str("session_id", sessionID).Msg("editing session closed")
	return nil
}
