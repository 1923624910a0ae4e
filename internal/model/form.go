package model

import (
	"fmt"
	"time"
)

// DueDate closes the form for answers after Date when Active.
type DueDate struct {
	Active bool       `json:"active"`
	Date   *time.Time `json:"date"`
}

// FormSetting holds the form-level toggles.
type FormSetting struct {
	Published   bool    `json:"published"`
	Once        bool    `json:"once"`        // one answer per respondent
	RequiredAll bool    `json:"requiredAll"` // every question required when last set
	DueDate     DueDate `json:"dueDate"`
}

// Clone returns a copy that shares no pointers with s.
func (s FormSetting) Clone() FormSetting {
	s.DueDate.Date = cloneTime(s.DueDate.Date)
	return s
}

// SettingPatch carries the setting fields a caller wants to change. Nil
// fields are left as they are.
type SettingPatch struct {
	Published   *bool         `json:"published,omitempty"`
	Once        *bool         `json:"once,omitempty"`
	RequiredAll *bool         `json:"requiredAll,omitempty"`
	DueDate     *DueDatePatch `json:"dueDate,omitempty"`
}

type DueDatePatch struct {
	Active *bool      `json:"active,omitempty"`
	Date   *time.Time `json:"date,omitempty"`
}

// FormMeta is what a caller supplies to create a form.
type FormMeta struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedBy   string `json:"createdBy"`
	Company     string `json:"company"`
	Collab      bool   `json:"collab"`
}

// Form is an editable survey document. The order of Questions is the
// display and answer order; there is no separate position field.
type Form struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	Description      string      `json:"description"`
	CreatedBy        string      `json:"createdBy"`
	Company          string      `json:"company"`
	Collab           bool        `json:"collab"` // collaboratively owned, cannot be deleted
	Setting          FormSetting `json:"setting"`
	Questions        []*Question `json:"questions"`
	DeletedQuestions []*Question `json:"deletedQuestions,omitempty"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

// NewForm returns an empty form for meta.
func NewForm(meta FormMeta) *Form {
	return &Form{
		Name:        meta.Name,
		Description: meta.Description,
		CreatedBy:   meta.CreatedBy,
		Company:     meta.Company,
		Collab:      meta.Collab,
		Questions:   []*Question{},
	}
}

// QuestionIndex returns the position of the active question with id, or -1.
func (f *Form) QuestionIndex(id string) int {
	for i, q := range f.Questions {
		if q.ID == id {
			return i
		}
	}
	return -1
}

// Question returns the active question with id.
func (f *Form) Question(id string) (*Question, error) {
	idx := f.QuestionIndex(id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrQuestionNotFound, id)
	}
	return f.Questions[idx], nil
}

// IsClean reports whether every question is unchanged and nothing is
// waiting to be deleted.
func (f *Form) IsClean() bool {
	if len(f.DeletedQuestions) > 0 {
		return false
	}
	for _, q := range f.Questions {
		if !q.Snapshot.IsClean() {
			return false
		}
	}
	return true
}

// Validate checks id uniqueness across active and tombstoned questions,
// every question's shape, and that tombstones only hold persisted
// questions.
func (f *Form) Validate() error {
	seen := make(map[string]struct{}, len(f.Questions)+len(f.DeletedQuestions))
	check := func(q *Question) error {
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("duplicate question id %q", q.ID)
		}
		seen[q.ID] = struct{}{}
		return q.Validate()
	}
	for _, q := range f.Questions {
		if q.Snapshot.IsDeleted() {
			return fmt.Errorf("%w: active question %q flagged deleted", ErrIllegalSnapshot, q.ID)
		}
		if err := check(q); err != nil {
			return err
		}
	}
	for _, q := range f.DeletedQuestions {
		if !q.Snapshot.IsDeleted() || q.Snapshot.IsNew() {
			return fmt.Errorf("%w: tombstone %q", ErrIllegalSnapshot, q.ID)
		}
		if err := check(q); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy of the form.
func (f *Form) Clone() *Form {
	out := *f
	out.Setting = f.Setting.Clone()
	out.Questions = cloneQuestions(f.Questions)
	out.DeletedQuestions = cloneQuestions(f.DeletedQuestions)
	return &out
}

func cloneQuestions(in []*Question) []*Question {
	if in == nil {
		return nil
	}
	out := make([]*Question, len(in))
	for i, q := range in {
		out[i] = q.Clone()
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
