package editor

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"hrforms/internal/model"
)

var ErrSessionNotLoaded = errors.New("editing session has no form loaded")

// SessionState is the coarse state of an editing session.
type SessionState string

const (
	StateUnloaded SessionState = "unloaded"
	StateClean    SessionState = "clean"
	StateDirty    SessionState = "dirty"
)

// EditingSession owns one form being edited and the focused-question
// cursor. It is the only entry point for mutating a form. A session is
// not safe for concurrent use; callers serialise access.
//
// Every operation either applies completely and marks the session dirty,
// or returns an error and leaves the form as it was.
type EditingSession struct {
	ID                string      `json:"id"`
	Form              *model.Form `json:"form,omitempty"`
	CurrentQuestionID string      `json:"currentQuestionId,omitempty"`
	Dirty             bool        `json:"dirty"`

	now func() time.Time
}

// NewEditingSession returns an unloaded session with a fresh id.
func NewEditingSession() *EditingSession {
	return &EditingSession{ID: uuid.NewString()}
}

// SetClock replaces the time source used for date defaults.
func (s *EditingSession) SetClock(now func() time.Time) {
	s.now = now
}

func (s *EditingSession) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

// Load installs a freshly fetched or freshly created form. The form must
// carry no pending changes. On error the session stays as it was.
func (s *EditingSession) Load(form *model.Form) error {
	if form == nil {
		return fmt.Errorf("load form: %w", ErrSessionNotLoaded)
	}
	if err := form.Validate(); err != nil {
		return fmt.Errorf("load form %q: %w", form.ID, err)
	}
	if !form.IsClean() {
		return fmt.Errorf("load form %q: %w", form.ID, model.ErrIllegalSnapshot)
	}
	if form.Questions == nil {
		form.Questions = []*model.Question{}
	}
	s.Form = form
	s.CurrentQuestionID = ""
	if len(form.Questions) > 0 {
		s.CurrentQuestionID = form.Questions[0].ID
	}
	s.Dirty = false
	return nil
}

func (s *EditingSession) Loaded() bool {
	return s.Form != nil
}

func (s *EditingSession) State() SessionState {
	switch {
	case s.Form == nil:
		return StateUnloaded
	case s.Dirty:
		return StateDirty
	default:
		return StateClean
	}
}

// Select moves the focus cursor. It never marks the session dirty.
func (s *EditingSession) Select(questionID string) error {
	if !s.Loaded() {
		return ErrSessionNotLoaded
	}
	if _, err := s.Form.Question(questionID); err != nil {
		return err
	}
	s.CurrentQuestionID = questionID
	return nil
}

// CurrentQuestion returns the focused question, or nil.
func (s *EditingSession) CurrentQuestion() *model.Question {
	if !s.Loaded() {
		return nil
	}
	q, err := s.Form.Question(s.CurrentQuestionID)
	if err != nil {
		return nil
	}
	return q
}

// AddQuestion appends a new multiple choice question and focuses it.
func (s *EditingSession) AddQuestion() (*model.Question, error) {
	if !s.Loaded() {
		return nil, ErrSessionNotLoaded
	}
	text := fmt.Sprintf("Untitled Question %d", len(s.Form.Questions)+1)
	q := model.NewQuestion(text, s.Form.Setting.RequiredAll)
	s.Form.Questions = append(s.Form.Questions, q)
	s.CurrentQuestionID = q.ID
	s.Dirty = true
	return q, nil
}

// DeleteQuestion removes a question. Unsaved questions are dropped; saved
// ones are flagged deleted and kept as tombstones until the next save.
func (s *EditingSession) DeleteQuestion(questionID string) error {
	if !s.Loaded() {
		return ErrSessionNotLoaded
	}
	idx := s.Form.QuestionIndex(questionID)
	if idx < 0 {
		return fmt.Errorf("%w: %q", model.ErrQuestionNotFound, questionID)
	}
	if len(s.Form.Questions) == 1 {
		return model.ErrLastQuestion
	}

	q := s.Form.Questions[idx]
	s.Form.Questions = slices.Delete(s.Form.Questions, idx, idx+1)
	if !q.Snapshot.IsNew() {
		q.Snapshot = q.Snapshot.With(model.SnapshotDeleted)
		s.Form.DeletedQuestions = append(s.Form.DeletedQuestions, q)
	}

	if s.CurrentQuestionID == questionID {
		next := min(idx, len(s.Form.Questions)-1)
		s.CurrentQuestionID = s.Form.Questions[next].ID
	}
	s.Dirty = true
	return nil
}

// Reorder moves the question at from to index to. Order lives only in the
// array position, so no question is flagged; only the session turns dirty.
// Moving a question onto its own index is a no-op and leaves a clean session
// clean, so a later save skips the round trip.
func (s *EditingSession) Reorder(from, to int) error {
	if !s.Loaded() {
		return ErrSessionNotLoaded
	}
	n := len(s.Form.Questions)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: move %d -> %d with %d questions", model.ErrIndexOutOfRange, from, to, n)
	}
	if from == to {
		return nil
	}
	q := s.Form.Questions[from]
	s.Form.Questions = slices.Delete(s.Form.Questions, from, from+1)
	s.Form.Questions = slices.Insert(s.Form.Questions, to, q)
	s.Dirty = true
	return nil
}

func (s *EditingSession) ChangeType(questionID string, t model.QuestionType) error {
	return s.editQuestion(questionID, func(q *model.Question) error {
		return q.ChangeType(t)
	})
}

func (s *EditingSession) EditText(questionID, text string) error {
	return s.editQuestion(questionID, func(q *model.Question) error {
		q.EditText(text)
		return nil
	})
}

// AddOption appends a default-labelled option to a choice question.
func (s *EditingSession) AddOption(questionID string) (model.Option, error) {
	var added model.Option
	err := s.editQuestion(questionID, func(q *model.Question) error {
		opt, err := q.AddOption()
		added = opt
		return err
	})
	return added, err
}

func (s *EditingSession) EditOption(questionID, optionID, text string) error {
	return s.editQuestion(questionID, func(q *model.Question) error {
		return q.EditOption(optionID, text)
	})
}

func (s *EditingSession) EditOptionScale(questionID, optionID string, scale int) error {
	return s.editQuestion(questionID, func(q *model.Question) error {
		return q.EditOptionScale(optionID, scale)
	})
}

func (s *EditingSession) DeleteOption(questionID, optionID string) error {
	return s.editQuestion(questionID, func(q *model.Question) error {
		return q.DeleteOption(optionID)
	})
}

// ToggleRequired sets a question's required flag. Turning it off clears the
// form's RequiredAll; turning it back on does not restore it.
func (s *EditingSession) ToggleRequired(questionID string, required bool) error {
	err := s.editQuestion(questionID, func(q *model.Question) error {
		q.SetRequired(required)
		return nil
	})
	if err != nil {
		return err
	}
	if !required {
		s.Form.Setting.RequiredAll = false
	}
	return nil
}

// UpdateSetting merges patch into the form setting. Enabling the due date
// without a date seeds tomorrow; enabling RequiredAll marks every question
// required.
func (s *EditingSession) UpdateSetting(patch model.SettingPatch) error {
	if !s.Loaded() {
		return ErrSessionNotLoaded
	}
	setting := s.Form.Setting
	if patch.Published != nil {
		setting.Published = *patch.Published
	}
	if patch.Once != nil {
		setting.Once = *patch.Once
	}
	if dd := patch.DueDate; dd != nil {
		if dd.Date != nil {
			date := *dd.Date
			setting.DueDate.Date = &date
		}
		if dd.Active != nil {
			if *dd.Active && setting.DueDate.Date == nil {
				tomorrow := s.clock().AddDate(0, 0, 1)
				setting.DueDate.Date = &tomorrow
			}
			setting.DueDate.Active = *dd.Active
		}
	}
	if patch.RequiredAll != nil {
		setting.RequiredAll = *patch.RequiredAll
		if setting.RequiredAll {
			for _, q := range s.Form.Questions {
				q.SetRequired(true)
			}
		}
	}
	s.Form.Setting = setting
	s.Dirty = true
	return nil
}

// UpdateDetails replaces the form name and description.
func (s *EditingSession) UpdateDetails(name, description string) error {
	if !s.Loaded() {
		return ErrSessionNotLoaded
	}
	s.Form.Name = name
	s.Form.Description = description
	s.Dirty = true
	return nil
}

// markSaved adopts the form the store returned after a successful save:
// persistent ids, no flags, no tombstones. The cursor keeps its position.
func (s *EditingSession) markSaved(saved *model.Form) {
	cursor := s.Form.QuestionIndex(s.CurrentQuestionID)
	for _, q := range saved.Questions {
		q.Snapshot = 0
	}
	saved.DeletedQuestions = nil
	if saved.Questions == nil {
		saved.Questions = []*model.Question{}
	}
	s.Form = saved
	switch {
	case cursor >= 0 && cursor < len(saved.Questions):
		s.CurrentQuestionID = saved.Questions[cursor].ID
	case len(saved.Questions) > 0:
		s.CurrentQuestionID = saved.Questions[0].ID
	default:
		s.CurrentQuestionID = ""
	}
	s.Dirty = false
}

// editQuestion applies fn to a copy of the question and commits it only if
// fn succeeds and the result still satisfies the question invariants.
func (s *EditingSession) editQuestion(questionID string, fn func(*model.Question) error) error {
	if !s.Loaded() {
		return ErrSessionNotLoaded
	}
	q, err := s.Form.Question(questionID)
	if err != nil {
		return err
	}
	draft := q.Clone()
	if err := fn(draft); err != nil {
		return err
	}
	if err := draft.Validate(); err != nil {
		return err
	}
	*q = *draft
	s.Dirty = true
	return nil
}
