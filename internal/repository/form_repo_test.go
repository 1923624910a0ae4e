package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"hrforms/internal/model"
)

func storedDoc() formDoc {
	created := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	return formDoc{
		ID:        primitive.NewObjectID(),
		Name:      "Exit interview",
		CreatedBy: "u1",
		Company:   "acme",
		Questions: []questionDoc{
			{ID: "qa", Text: "Why are you leaving?", Type: string(model.QuestionTypeParagraph), Options: []optionDoc{}},
			{ID: "qb", Text: "Rate your manager", Type: string(model.QuestionTypeMultipleChoice), Options: []optionDoc{{ID: "ob", Text: "Option 1"}}},
			{ID: "qc", Text: "Stored text", Type: string(model.QuestionTypeShortAnswer), Options: []optionDoc{}},
		},
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func question(id string, t model.QuestionType, snap model.Snapshot) *model.Question {
	q := &model.Question{ID: id, Text: "payload " + id, Type: t, Options: []model.Option{}, Snapshot: snap}
	if t.Family() == model.FamilyChoice {
		q.Options = []model.Option{{ID: "o" + id, Text: "Option 1"}}
	}
	return q
}

func TestApplySyncPayload(t *testing.T) {
	stored := storedDoc()
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	added := model.NewQuestion("Untitled Question 4", true)
	modified := question("qb", model.QuestionTypeCheckboxes, model.SnapshotModified)
	unchanged := question("qc", model.QuestionTypeShortAnswer, 0)
	tomb := question("qa", model.QuestionTypeParagraph, model.SnapshotDeleted)

	payload := &model.SyncPayload{
		Form: model.FormHeader{
			ID:      stored.ID.Hex(),
			Name:    "Exit survey",
			Setting: model.FormSetting{Published: true, RequiredAll: true},
		},
		Active:  []*model.Question{unchanged, added, modified},
		Deleted: []*model.Question{tomb},
	}

	next, err := applySyncPayload(stored, payload, now)
	require.NoError(t, err)

	require.Len(t, next.Questions, 3)
	assert.Equal(t, "qc", next.Questions[0].ID)
	assert.Equal(t, "Stored text", next.Questions[0].Text, "unflagged questions keep the stored version")

	inserted := next.Questions[1]
	assert.True(t, primitive.IsValidObjectID(inserted.ID))
	assert.Equal(t, "Untitled Question 4", inserted.Text)
	assert.True(t, inserted.Required)
	require.Len(t, inserted.Options, 1)
	assert.True(t, primitive.IsValidObjectID(inserted.Options[0].ID))

	assert.Equal(t, "qb", next.Questions[2].ID)
	assert.Equal(t, string(model.QuestionTypeCheckboxes), next.Questions[2].Type)
	assert.Equal(t, "oqb", next.Questions[2].Options[0].ID, "persistent option ids are kept")

	assert.Equal(t, "Exit survey", next.Name)
	assert.True(t, next.Setting.Published)
	assert.True(t, next.Setting.RequiredAll)
	assert.Equal(t, now, next.UpdatedAt)
	assert.Equal(t, stored.CreatedAt, next.CreatedAt)
	assert.Equal(t, stored.ID, next.ID)

	form := next.toModel()
	assert.Equal(t, stored.ID.Hex(), form.ID)
	assert.True(t, form.IsClean())
	assert.NoError(t, form.Validate())

	// the stored document is not modified in place
	assert.Len(t, stored.Questions, 3)
	assert.Equal(t, "qa", stored.Questions[0].ID)
}

func TestApplySyncPayloadSettingChangedReplaces(t *testing.T) {
	stored := storedDoc()
	q := question("qc", model.QuestionTypeShortAnswer, model.SnapshotSettingChanged)
	q.Required = true

	next, err := applySyncPayload(stored, &model.SyncPayload{Active: []*model.Question{q}}, time.Now())
	require.NoError(t, err)
	require.Len(t, next.Questions, 1)
	assert.True(t, next.Questions[0].Required)
}

func TestApplySyncPayloadRejectsBadPayloads(t *testing.T) {
	tests := []struct {
		name    string
		payload *model.SyncPayload
	}{
		{
			name:    "active flagged deleted",
			payload: &model.SyncPayload{Active: []*model.Question{question("qa", model.QuestionTypeParagraph, model.SnapshotDeleted)}},
		},
		{
			name:    "tombstone without deleted flag",
			payload: &model.SyncPayload{Deleted: []*model.Question{question("qa", model.QuestionTypeParagraph, model.SnapshotModified)}},
		},
		{
			name: "duplicate active id",
			payload: &model.SyncPayload{Active: []*model.Question{
				question("qc", model.QuestionTypeShortAnswer, 0),
				question("qc", model.QuestionTypeShortAnswer, model.SnapshotModified),
			}},
		},
		{
			name: "active and deleted",
			payload: &model.SyncPayload{
				Active:  []*model.Question{question("qa", model.QuestionTypeParagraph, 0)},
				Deleted: []*model.Question{question("qa", model.QuestionTypeParagraph, model.SnapshotDeleted)},
			},
		},
		{
			name: "invalid shape",
			payload: &model.SyncPayload{Active: []*model.Question{
				{ID: "qx", Type: model.QuestionTypeShortAnswer, Options: []model.Option{{ID: "o", Text: "nope"}}, Snapshot: model.SnapshotModified},
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := applySyncPayload(storedDoc(), tt.payload, time.Now())
			assert.ErrorIs(t, err, ErrInvalidPayload)
		})
	}
}

func TestNewSettingDocCopiesDate(t *testing.T) {
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	setting := model.FormSetting{DueDate: model.DueDate{Active: true, Date: &due}}

	doc := newSettingDoc(setting)
	require.NotNil(t, doc.DueDate)
	assert.NotSame(t, &due, doc.DueDate)
	assert.Equal(t, due, *doc.DueDate)
	assert.True(t, doc.DueActive)
}
