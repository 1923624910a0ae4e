package model

import "fmt"

// Question is a single prompt within a form.
type Question struct {
	ID       string       `json:"id"`
	Text     string       `json:"text"`
	Type     QuestionType `json:"type"`
	Required bool         `json:"required"`
	Options  []Option     `json:"options"`
	Snapshot Snapshot     `json:"snapshot"`
}

// NewQuestion creates an unsaved multiple choice question with a temporary id.
func NewQuestion(text string, required bool) *Question {
	return &Question{
		ID:       NewTemporaryID(),
		Text:     text,
		Type:     QuestionTypeMultipleChoice,
		Required: required,
		Options:  DefaultOptions(QuestionTypeMultipleChoice),
		Snapshot: SnapshotNew,
	}
}

// ChangeType switches the question to t. Options survive a switch within
// the same family and are reset to the target family's defaults otherwise.
func (q *Question) ChangeType(t QuestionType) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidQuestionType, t)
	}
	if t.Family() != q.Type.Family() {
		q.Options = DefaultOptions(t)
	}
	q.Type = t
	q.mark(SnapshotModified)
	return nil
}

// EditText replaces the prompt. Empty text is allowed.
func (q *Question) EditText(text string) {
	q.Text = text
	q.mark(SnapshotModified)
}

// AddOption appends "Option N" and returns it.
func (q *Question) AddOption() (Option, error) {
	switch q.Type.Family() {
	case FamilyText, FamilyUnknown:
		return Option{}, ErrOptionsNotSupported
	case FamilyScale:
		return Option{}, ErrFixedOptions
	}
	opt := Option{
		ID:   NewTemporaryID(),
		Text: fmt.Sprintf("Option %d", len(q.Options)+1),
	}
	q.Options = append(q.Options, opt)
	q.mark(SnapshotModified)
	return opt, nil
}

// EditOption sets the label of the option with the given id.
func (q *Question) EditOption(optionID, text string) error {
	idx := q.OptionIndex(optionID)
	if idx < 0 {
		return ErrOptionNotFound
	}
	q.Options[idx].Text = text
	q.mark(SnapshotModified)
	return nil
}

// EditOptionScale sets the scale value of a linear scale endpoint. Values
// outside the endpoint's range are rejected.
func (q *Question) EditOptionScale(optionID string, scale int) error {
	if q.Type.Family() != FamilyScale {
		return ErrScaleNotSupported
	}
	idx := q.OptionIndex(optionID)
	if idx < 0 {
		return ErrOptionNotFound
	}
	min, max, ok := scaleBounds(idx)
	if !ok || scale < min || scale > max {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrScaleOutOfRange, scale, min, max)
	}
	q.Options[idx].Scale = intPtr(scale)
	q.mark(SnapshotModified)
	return nil
}

// DeleteOption removes the option with the given id. The last option of a
// question can never be removed.
func (q *Question) DeleteOption(optionID string) error {
	if q.Type.Family() == FamilyScale {
		return ErrFixedOptions
	}
	idx := q.OptionIndex(optionID)
	if idx < 0 {
		return ErrOptionNotFound
	}
	if len(q.Options) <= 1 {
		return ErrLastOption
	}
	q.Options = append(q.Options[:idx:idx], q.Options[idx+1:]...)
	q.mark(SnapshotModified)
	return nil
}

// SetRequired sets the required flag. It is a per-question setting, not a
// content change, so it marks SettingChanged rather than Modified.
func (q *Question) SetRequired(required bool) {
	q.Required = required
	q.mark(SnapshotSettingChanged)
}

// OptionIndex returns the position of the option with the given id, or -1.
func (q *Question) OptionIndex(optionID string) int {
	for i := range q.Options {
		if q.Options[i].ID == optionID {
			return i
		}
	}
	return -1
}

// Validate checks the option shape for the question's family and the
// uniqueness of option ids.
func (q *Question) Validate() error {
	if err := q.Snapshot.Validate(); err != nil {
		return err
	}
	switch q.Type.Family() {
	case FamilyUnknown:
		return fmt.Errorf("%w: %q", ErrInvalidQuestionType, q.Type)
	case FamilyText:
		if len(q.Options) != 0 {
			return ErrOptionsNotSupported
		}
	case FamilyChoice:
		if len(q.Options) == 0 {
			return ErrLastOption
		}
	case FamilyScale:
		if len(q.Options) != 2 {
			return ErrFixedOptions
		}
		for i, opt := range q.Options {
			min, max, _ := scaleBounds(i)
			if opt.Scale == nil || *opt.Scale < min || *opt.Scale > max {
				return ErrScaleOutOfRange
			}
		}
	}
	seen := make(map[string]struct{}, len(q.Options))
	for _, opt := range q.Options {
		if _, dup := seen[opt.ID]; dup {
			return fmt.Errorf("duplicate option id %q in question %q", opt.ID, q.ID)
		}
		seen[opt.ID] = struct{}{}
	}
	return nil
}

// Clone returns a deep copy of the question.
func (q *Question) Clone() *Question {
	out := *q
	if q.Options != nil {
		out.Options = make([]Option, len(q.Options))
		for i, opt := range q.Options {
			out.Options[i] = opt.clone()
		}
	}
	return &out
}

func (q *Question) mark(flags Snapshot) {
	q.Snapshot = q.Snapshot.With(flags)
}
