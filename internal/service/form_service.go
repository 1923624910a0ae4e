package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"hrforms/internal/model"
	"hrforms/internal/repository"
)

var (
	ErrFormNotFound = errors.New("form not found")
	ErrCollabForm   = errors.New("collaborative forms cannot be deleted")
)

const defaultFormName = "Untitled Form"

// FormService handles form lifecycle operations scoped to one company
type FormService struct {
	formRepo repository.FormRepo
	log      zerolog.Logger
}

// NewFormService creates a new form service
func NewFormService(formRepo repository.FormRepo, log zerolog.Logger) *FormService {
	return &FormService{
		formRepo: formRepo,
		log:      log,
	}
}

// Create creates an empty form owned by meta.Company
func (s *FormService) Create(ctx context.Context, meta model.FormMeta) (*model.Form, error) {
	if meta.Company == "" || meta.CreatedBy == "" {
		return nil, ErrInvalidTenant
	}
	meta.Name = strings.TrimSpace(meta.Name)
	if meta.Name == "" {
		meta.Name = defaultFormName
	}

	form, err := s.formRepo.CreateForm(ctx, meta)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("form_id", form.ID).Str("company", form.Company).Msg("form created")
	return form, nil
}

// Get retrieves a form of company by ID
func (s *FormService) Get(ctx context.Context, company, id string) (*model.Form, error) {
	form, err := s.formRepo.FetchFormWithSnapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	if form == nil || form.Company != company {
		return nil, ErrFormNotFound
	}
	return form, nil
}

// List retrieves all forms of company, most recently updated first
func (s *FormService) List(ctx context.Context, company string) ([]*model.Form, error) {
	return s.formRepo.ListByCompany(ctx, company)
}

// Delete deletes a form. Collaborative forms are refused.
func (s *FormService) Delete(ctx context.Context, company, id string) error {
	form, err := s.Get(ctx, company, id)
	if err != nil {
		return err
	}
	if form.Collab {
		return ErrCollabForm
	}
	if err := s.formRepo.DeleteForm(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("form_id", id).Str("company", company).Msg("form deleted")
	return nil
}
