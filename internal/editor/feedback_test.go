package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrforms/internal/model"
)

func TestSeedFeedback(t *testing.T) {
	form := storedForm(3)
	form.Setting.Published = true

	fb, err := SeedFeedback(form)
	require.NoError(t, err)
	assert.Equal(t, "form-1", fb.FormID)
	assert.Equal(t, "acme", fb.Company)
	require.Len(t, fb.Answers, 3)
	for i, a := range fb.Answers {
		assert.Equal(t, form.Questions[i].ID, a.QuestionID)
		assert.NotNil(t, a.Answers)
		assert.Empty(t, a.Answers)
	}
	assert.False(t, fb.HasResponse())
}

func TestSeedFeedbackSkipsTombstones(t *testing.T) {
	s := loaded(t, 2)
	require.NoError(t, s.DeleteQuestion("qa"))
	s.Form.Setting.Published = true

	fb, err := SeedFeedback(s.Form)
	require.NoError(t, err)
	require.Len(t, fb.Answers, 1)
	assert.Equal(t, "qb", fb.Answers[0].QuestionID)
}

func TestSeedFeedbackUnpublished(t *testing.T) {
	_, err := SeedFeedback(storedForm(1))
	assert.ErrorIs(t, err, ErrFormNotPublished)

	_, err = SeedFeedback(model.NewForm(model.FormMeta{}))
	assert.ErrorIs(t, err, ErrFormNotPublished)
}
