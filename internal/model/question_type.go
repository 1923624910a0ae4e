package model

// QuestionType is the closed set of question kinds a form can hold.
type QuestionType string

const (
	QuestionTypeShortAnswer    QuestionType = "SHORT_ANSWER"
	QuestionTypeParagraph      QuestionType = "PARAGRAPH"
	QuestionTypeMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	QuestionTypeCheckboxes     QuestionType = "CHECKBOXES"
	QuestionTypeDropdown       QuestionType = "DROPDOWN"
	QuestionTypeLinearScale    QuestionType = "LINEAR_SCALE"
)

// Family groups question types sharing an option shape.
type Family int

const (
	FamilyUnknown Family = iota
	FamilyText           // no options
	FamilyChoice         // one or more labelled options
	FamilyScale          // exactly two scale endpoints
)

// Linear scale endpoint bounds. Option 0 is the low endpoint, option 1 the
// high endpoint.
const (
	ScaleLowMin  = 0
	ScaleLowMax  = 1
	ScaleHighMin = 2
	ScaleHighMax = 10

	DefaultScaleLow  = 1
	DefaultScaleHigh = 5
)

// QuestionTypes lists every valid type in display order.
var QuestionTypes = []QuestionType{
	QuestionTypeShortAnswer,
	QuestionTypeParagraph,
	QuestionTypeMultipleChoice,
	QuestionTypeCheckboxes,
	QuestionTypeDropdown,
	QuestionTypeLinearScale,
}

func (t QuestionType) Family() Family {
	switch t {
	case QuestionTypeShortAnswer, QuestionTypeParagraph:
		return FamilyText
	case QuestionTypeMultipleChoice, QuestionTypeCheckboxes, QuestionTypeDropdown:
		return FamilyChoice
	case QuestionTypeLinearScale:
		return FamilyScale
	default:
		return FamilyUnknown
	}
}

func (t QuestionType) Valid() bool {
	return t.Family() != FamilyUnknown
}

// DefaultOptions returns the option shape a question of type t starts with.
func DefaultOptions(t QuestionType) []Option {
	switch t.Family() {
	case FamilyChoice:
		return []Option{{ID: NewTemporaryID(), Text: "Option 1"}}
	case FamilyScale:
		return []Option{
			{ID: NewTemporaryID(), Scale: intPtr(DefaultScaleLow)},
			{ID: NewTemporaryID(), Scale: intPtr(DefaultScaleHigh)},
		}
	default:
		return []Option{}
	}
}

// scaleBounds returns the inclusive range allowed for the endpoint at index.
func scaleBounds(index int) (min, max int, ok bool) {
	switch index {
	case 0:
		return ScaleLowMin, ScaleLowMax, true
	case 1:
		return ScaleHighMin, ScaleHighMax, true
	default:
		return 0, 0, false
	}
}
