package editor

import (
	"errors"

	"hrforms/internal/model"
)

var ErrFormNotPublished = errors.New("form is not published")

// SeedFeedback derives an empty response skeleton from a published form:
// one entry per active question, in form order.
func SeedFeedback(form *model.Form) (*model.Feedback, error) {
	if !form.Setting.Published {
		return nil, ErrFormNotPublished
	}
	answers := make([]model.FeedbackAnswer, 0, len(form.Questions))
	for _, q := range form.Questions {
		answers = append(answers, model.FeedbackAnswer{
			QuestionID: q.ID,
			Answers:    []string{},
		})
	}
	return &model.Feedback{
		FormID:  form.ID,
		Company: form.Company,
		Answers: answers,
	}, nil
}
