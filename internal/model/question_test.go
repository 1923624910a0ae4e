package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQuestion(t *testing.T) {
	q := NewQuestion("Untitled Question 1", true)

	assert.True(t, IsTemporaryID(q.ID))
	assert.Equal(t, QuestionTypeMultipleChoice, q.Type)
	assert.True(t, q.Required)
	assert.Equal(t, SnapshotNew, q.Snapshot)
	require.Len(t, q.Options, 1)
	assert.Equal(t, "Option 1", q.Options[0].Text)
	assert.NoError(t, q.Validate())
}

func TestChangeType(t *testing.T) {
	t.Run("same family keeps options", func(t *testing.T) {
		q := NewQuestion("q", false)
		_, err := q.AddOption()
		require.NoError(t, err)
		before := q.Clone().Options

		require.NoError(t, q.ChangeType(QuestionTypeCheckboxes))
		assert.Equal(t, before, q.Options)
		assert.True(t, q.Snapshot.IsModified())
	})

	t.Run("choice to text clears options", func(t *testing.T) {
		q := NewQuestion("q", false)
		require.NoError(t, q.ChangeType(QuestionTypeShortAnswer))
		assert.Empty(t, q.Options)
		assert.NotNil(t, q.Options)
	})

	t.Run("text back to choice is lossy", func(t *testing.T) {
		q := NewQuestion("q", false)
		_, err := q.AddOption()
		require.NoError(t, err)
		require.NoError(t, q.EditOption(q.Options[0].ID, "Red"))

		require.NoError(t, q.ChangeType(QuestionTypeShortAnswer))
		require.NoError(t, q.ChangeType(QuestionTypeDropdown))
		require.Len(t, q.Options, 1)
		assert.Equal(t, "Option 1", q.Options[0].Text)
	})

	t.Run("to linear scale", func(t *testing.T) {
		q := NewQuestion("q", false)
		require.NoError(t, q.ChangeType(QuestionTypeLinearScale))
		require.Len(t, q.Options, 2)
		assert.Equal(t, DefaultScaleLow, *q.Options[0].Scale)
		assert.Equal(t, DefaultScaleHigh, *q.Options[1].Scale)
		assert.NoError(t, q.Validate())
	})

	t.Run("unknown type", func(t *testing.T) {
		q := NewQuestion("q", false)
		q.Snapshot = 0
		err := q.ChangeType("RATING")
		assert.ErrorIs(t, err, ErrInvalidQuestionType)
		assert.Equal(t, QuestionTypeMultipleChoice, q.Type)
		assert.True(t, q.Snapshot.IsClean())
	})
}

func TestAddOption(t *testing.T) {
	q := NewQuestion("q", false)
	opt, err := q.AddOption()
	require.NoError(t, err)
	assert.Equal(t, "Option 2", opt.Text)
	assert.True(t, IsTemporaryID(opt.ID))
	assert.Len(t, q.Options, 2)

	text := NewQuestion("q", false)
	require.NoError(t, text.ChangeType(QuestionTypeParagraph))
	_, err = text.AddOption()
	assert.ErrorIs(t, err, ErrOptionsNotSupported)

	scale := NewQuestion("q", false)
	require.NoError(t, scale.ChangeType(QuestionTypeLinearScale))
	_, err = scale.AddOption()
	assert.ErrorIs(t, err, ErrFixedOptions)
	assert.Len(t, scale.Options, 2)
}

func TestDeleteOption(t *testing.T) {
	t.Run("keeps the added option", func(t *testing.T) {
		q := NewQuestion("q", false)
		original := q.Options[0].ID
		added, err := q.AddOption()
		require.NoError(t, err)

		require.NoError(t, q.DeleteOption(original))
		require.Len(t, q.Options, 1)
		assert.Equal(t, added.ID, q.Options[0].ID)
	})

	t.Run("last option", func(t *testing.T) {
		q := NewQuestion("q", false)
		err := q.DeleteOption(q.Options[0].ID)
		assert.ErrorIs(t, err, ErrLastOption)
		assert.Len(t, q.Options, 1)
	})

	t.Run("unknown option", func(t *testing.T) {
		q := NewQuestion("q", false)
		assert.ErrorIs(t, q.DeleteOption("missing"), ErrOptionNotFound)
	})

	t.Run("scale endpoints are fixed", func(t *testing.T) {
		q := NewQuestion("q", false)
		require.NoError(t, q.ChangeType(QuestionTypeLinearScale))
		assert.ErrorIs(t, q.DeleteOption(q.Options[0].ID), ErrFixedOptions)
	})
}

func TestEditOptionScale(t *testing.T) {
	q := NewQuestion("q", false)
	require.NoError(t, q.ChangeType(QuestionTypeLinearScale))
	low, high := q.Options[0].ID, q.Options[1].ID

	tests := []struct {
		name     string
		optionID string
		scale    int
		wantErr  error
	}{
		{"low min", low, ScaleLowMin, nil},
		{"low max", low, ScaleLowMax, nil},
		{"low too high", low, 2, ErrScaleOutOfRange},
		{"low negative", low, -1, ErrScaleOutOfRange},
		{"high min", high, ScaleHighMin, nil},
		{"high max", high, ScaleHighMax, nil},
		{"high too low", high, 1, ErrScaleOutOfRange},
		{"high too high", high, 11, ErrScaleOutOfRange},
		{"unknown option", "missing", 1, ErrOptionNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := q.EditOptionScale(tt.optionID, tt.scale)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.scale, *q.Options[q.OptionIndex(tt.optionID)].Scale)
		})
	}

	choice := NewQuestion("q", false)
	assert.ErrorIs(t, choice.EditOptionScale(choice.Options[0].ID, 1), ErrScaleNotSupported)
}

func TestSetRequiredMarksSettingChanged(t *testing.T) {
	q := NewQuestion("q", false)
	q.Snapshot = 0

	q.SetRequired(true)
	assert.True(t, q.Required)
	assert.Equal(t, SnapshotSettingChanged, q.Snapshot)
}

func TestQuestionValidate(t *testing.T) {
	q := NewQuestion("q", false)
	q.Options = append(q.Options, Option{ID: q.Options[0].ID, Text: "dup"})
	assert.Error(t, q.Validate())

	q = NewQuestion("q", false)
	q.Options = nil
	assert.ErrorIs(t, q.Validate(), ErrLastOption)

	q = NewQuestion("q", false)
	require.NoError(t, q.ChangeType(QuestionTypeLinearScale))
	q.Options[1].Scale = intPtr(12)
	assert.ErrorIs(t, q.Validate(), ErrScaleOutOfRange)
}

func TestCloneIsDeep(t *testing.T) {
	q := NewQuestion("q", false)
	require.NoError(t, q.ChangeType(QuestionTypeLinearScale))

	c := q.Clone()
	*c.Options[0].Scale = 0
	c.Options[1].Text = "Best"

	assert.Equal(t, DefaultScaleLow, *q.Options[0].Scale)
	assert.Empty(t, q.Options[1].Text)
}
