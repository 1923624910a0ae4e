package editor

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"hrforms/internal/model"
)

// FormPersister applies a sync payload and returns the form as stored.
// Implementations interpret each question's snapshot: New inserts, Deleted
// deletes, Modified or SettingChanged updates, no flag is a no-op. The
// returned form lists the active questions in payload order.
type FormPersister interface {
	PersistForm(ctx context.Context, payload *model.SyncPayload) (*model.Form, error)
}

var ErrEmptySyncResult = errors.New("form store returned no form")

// SyncError wraps a failed save. The session it came from is unchanged.
type SyncError struct {
	FormID string
	Err    error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync form %q: %v", e.FormID, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// SaveSummary counts what a save asked the store to do.
type SaveSummary struct {
	Sent      bool `json:"sent"`
	Inserted  int  `json:"inserted"`
	Updated   int  `json:"updated"`
	Deleted   int  `json:"deleted"`
	Unchanged int  `json:"unchanged"`
}

// SerializeForSync builds the payload for a save. The whole active list is
// always sent, in order, because position is only encoded by array index;
// the store never has to compute a positional diff. Questions are copied so
// the store cannot alter the session's form.
func SerializeForSync(form *model.Form) *model.SyncPayload {
	payload := &model.SyncPayload{
		Form: model.FormHeader{
			ID:          form.ID,
			Name:        form.Name,
			Description: form.Description,
			Setting:     form.Setting.Clone(),
		},
		Active:  make([]*model.Question, 0, len(form.Questions)),
		Deleted: make([]*model.Question, 0, len(form.DeletedQuestions)),
	}
	for _, q := range form.Questions {
		payload.Active = append(payload.Active, q.Clone())
	}
	for _, q := range form.DeletedQuestions {
		payload.Deleted = append(payload.Deleted, q.Clone())
	}
	return payload
}

func summarize(payload *model.SyncPayload) SaveSummary {
	sum := SaveSummary{Sent: true, Deleted: len(payload.Deleted)}
	for _, q := range payload.Active {
		switch {
		case q.Snapshot.IsNew():
			sum.Inserted++
		case q.Snapshot.IsModified(), q.Snapshot.IsSettingChanged():
			sum.Updated++
		default:
			sum.Unchanged++
		}
	}
	return sum
}

// Syncer reconciles an editing session with the form store in one round
// trip.
type Syncer struct {
	persister FormPersister
	log       zerolog.Logger
}

func NewSyncer(persister FormPersister, log zerolog.Logger) *Syncer {
	return &Syncer{persister: persister, log: log}
}

// Save sends the session's pending changes. A clean session is not sent at
// all. On failure the session is left exactly as it was and stays dirty;
// retrying is another Save call.
func (s *Syncer) Save(ctx context.Context, session *EditingSession) (SaveSummary, error) {
	if !session.Loaded() {
		return SaveSummary{}, ErrSessionNotLoaded
	}
	formID := session.Form.ID
	if !session.Dirty {
		s.log.Debug().Str("form_id", formID).Msg("nothing to save")
		return SaveSummary{}, nil
	}

	payload := SerializeForSync(session.Form)
	sum := summarize(payload)

	saved, err := s.persister.PersistForm(ctx, payload)
	if err == nil && saved == nil {
		err = ErrEmptySyncResult
	}
	if err != nil {
		s.log.Warn().Err(err).Str("form_id", formID).Str("session_id", session.ID).Msg("save failed")
		return sum, &SyncError{FormID: formID, Err: err}
	}

	session.markSaved(saved)
	s.log.Info().
		Str("form_id", saved.ID).
		Str("session_id", session.ID).
		Int("inserted", sum.Inserted).
		Int("updated", sum.Updated).
		Int("deleted", sum.Deleted).
		Int("unchanged", sum.Unchanged).
		Msg("form saved")
	return sum, nil
}
