package model

import "time"

// FeedbackAnswer holds a respondent's answers to one question. Choice
// questions store option ids, text questions the typed text, linear scale
// questions the picked value.
type FeedbackAnswer struct {
	QuestionID string   `json:"questionId" bson:"questionId"`
	Answers    []string `json:"answers" bson:"answers"`
}

// Feedback is one response session seeded from a published form.
type Feedback struct {
	ID        string           `json:"id" bson:"_id,omitempty"`
	FormID    string           `json:"formId" bson:"formId"`
	Company   string           `json:"company" bson:"company"`
	UserID    string           `json:"userId" bson:"userId"`
	Answers   []FeedbackAnswer `json:"answers" bson:"answers"`
	CreatedAt time.Time        `json:"createdAt" bson:"createdAt"`
}

// HasResponse reports whether any question has been answered.
func (f *Feedback) HasResponse() bool {
	for _, a := range f.Answers {
		if len(a.Answers) > 0 {
			return true
		}
	}
	return false
}
