package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"hrforms/internal/editor"
	"hrforms/internal/model"
	"hrforms/internal/repository"
)

var ErrFeedbackNotFound = errors.New("feedback not found")

// FeedbackService seeds and stores feedback sessions for published forms
type FeedbackService struct {
	forms        *FormService
	feedbackRepo repository.FeedbackRepo
	log          zerolog.Logger
}

// NewFeedbackService creates a new feedback service
func NewFeedbackService(forms *FormService, feedbackRepo repository.FeedbackRepo, log zerolog.Logger) *FeedbackService {
	return &FeedbackService{
		forms:        forms,
		feedbackRepo: feedbackRepo,
		log:          log,
	}
}

// Start seeds an empty feedback session for userID from the stored form
func (s *FeedbackService) Start(ctx context.Context, company, userID, formID string) (*model.Feedback, error) {
	form, err := s.forms.Get(ctx, company, formID)
	if err != nil {
		return nil, err
	}
	feedback, err := editor.SeedFeedback(form)
	if err != nil {
		return nil, err
	}
	feedback.UserID = userID

	if err := s.feedbackRepo.Create(ctx, feedback); err != nil {
		return nil, err
	}
	s.log.Info().Str("form_id", formID).Str("feedback_id", feedback.ID).Int("questions", len(feedback.Answers)).Msg("feedback seeded")
	return feedback, nil
}

// List returns the feedback sessions seeded from a form. With answeredOnly
// set, sessions nobody has answered yet are left out.
func (s *FeedbackService) List(ctx context.Context, company, formID string, answeredOnly bool) ([]*model.Feedback, error) {
	if _, err := s.forms.Get(ctx, company, formID); err != nil {
		return nil, err
	}
	list, err := s.feedbackRepo.ListByForm(ctx, formID)
	if err != nil || !answeredOnly {
		return list, err
	}
	answered := make([]*model.Feedback, 0, len(list))
	for _, fb := range list {
		if fb.HasResponse() {
			answered = append(answered, fb)
		}
	}
	return answered, nil
}

// Get returns one feedback session of a form owned by company
func (s *FeedbackService) Get(ctx context.Context, company, formID, feedbackID string) (*model.Feedback, error) {
	if _, err := s.forms.Get(ctx, company, formID); err != nil {
		return nil, err
	}
	feedback, err := s.feedbackRepo.GetByID(ctx, feedbackID)
	if err != nil {
		return nil, err
	}
	if feedback == nil || feedback.FormID != formID || feedback.Company != company {
		return nil, ErrFeedbackNotFound
	}
	return feedback, nil
}
