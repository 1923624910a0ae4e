package main

import (
	"context"
	"os"
	"time"

	"hrforms/internal/app"
	"hrforms/internal/config"
	"hrforms/internal/editor"
	"hrforms/internal/logger"
	"hrforms/internal/model"
	"hrforms/internal/repository"
)

// seed creates a published onboarding survey by driving the editor the same
// way the API does.
func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(os.Stderr, "info", "console")
		bootLog.Fatal().Err(err).Msg("load config")
	}
	log := logger.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, db, err := app.ConnectMongo(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to MongoDB")
	}
	defer client.Disconnect(ctx)

	company := getEnv("SEED_COMPANY", "acme")
	forms := repository.NewFormRepo(db)

	form, err := forms.CreateForm(ctx, model.FormMeta{
		Name:        "New Hire Onboarding Survey",
		Description: "Tell us how your first weeks went.",
		CreatedBy:   "seed",
		Company:     company,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("create form")
	}

	session := editor.NewEditingSession()
	if err := session.Load(form); err != nil {
		log.Fatal().Err(err).Msg("load form")
	}
	if err := buildQuestions(session); err != nil {
		log.Fatal().Err(err).Msg("build questions")
	}

	syncer := editor.NewSyncer(forms, log)
	summary, err := syncer.Save(ctx, session)
	if err != nil {
		log.Fatal().Err(err).Msg("save form")
	}

	log.Info().
		Str("form_id", session.Form.ID).
		Str("company", company).
		Int("questions", summary.Inserted).
		Msg("seeded form")
}

func buildQuestions(s *editor.EditingSession) error {
	published, requiredAll := true, true
	if err := s.UpdateSetting(model.SettingPatch{Published: &published, RequiredAll: &requiredAll}); err != nil {
		return err
	}

	// overall satisfaction, 1..5
	q, err := s.AddQuestion()
	if err != nil {
		return err
	}
	if err := s.EditText(q.ID, "How satisfied are you with your onboarding overall?"); err != nil {
		return err
	}
	if err := s.ChangeType(q.ID, model.QuestionTypeLinearScale); err != nil {
		return err
	}

	q, err = s.AddQuestion()
	if err != nil {
		return err
	}
	if err := s.EditText(q.ID, "Which team did you join?"); err != nil {
		return err
	}
	if err := s.ChangeType(q.ID, model.QuestionTypeDropdown); err != nil {
		return err
	}
	teams := []string{"Engineering", "Sales", "Operations", "People"}
	for i, team := range teams {
		optionID := q.Options[0].ID
		if i > 0 {
			opt, err := s.AddOption(q.ID)
			if err != nil {
				return err
			}
			optionID = opt.ID
		}
		if err := s.EditOption(q.ID, optionID, team); err != nil {
			return err
		}
	}

	q, err = s.AddQuestion()
	if err != nil {
		return err
	}
	if err := s.EditText(q.ID, "What could we have done better?"); err != nil {
		return err
	}
	if err := s.ChangeType(q.ID, model.QuestionTypeParagraph); err != nil {
		return err
	}
	return s.ToggleRequired(q.ID, false)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
