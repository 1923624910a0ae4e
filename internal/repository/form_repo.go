package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hrforms/internal/model"
)

var (
	ErrFormMissing    = errors.New("form does not exist in store")
	ErrInvalidPayload = errors.New("invalid sync payload")
)

// FormRepo handles MongoDB operations for forms. Questions are embedded in
// the form document in display order.
type FormRepo interface {
	CreateForm(ctx context.Context, meta model.FormMeta) (*model.Form, error)
	FetchFormWithSnapshot(ctx context.Context, formID string) (*model.Form, error)
	ListByCompany(ctx context.Context, company string) ([]*model.Form, error)
	PersistForm(ctx context.Context, payload *model.SyncPayload) (*model.Form, error)
	DeleteForm(ctx context.Context, formID string) error
}

type formRepo struct {
	collection *mongo.Collection
	now        func() time.Time
}

// NewFormRepo creates a new form repository with indexes
func NewFormRepo(db *mongo.Database) FormRepo {
	repo := &formRepo{
		collection: db.Collection("forms"),
		now:        time.Now,
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *formRepo) ensureIndexes(ctx context.Context) {
	_, _ = r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "company", Value: 1},
			{Key: "updatedAt", Value: -1},
		},
	})
}

func (r *formRepo) CreateForm(ctx context.Context, meta model.FormMeta) (*model.Form, error) {
	now := r.now()
	doc := formDoc{
		ID:          primitive.NewObjectID(),
		Name:        meta.Name,
		Description: meta.Description,
		CreatedBy:   meta.CreatedBy,
		Company:     meta.Company,
		Collab:      meta.Collab,
		Questions:   []questionDoc{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	return doc.toModel(), nil
}

// FetchFormWithSnapshot returns nil, nil when the form does not exist.
func (r *formRepo) FetchFormWithSnapshot(ctx context.Context, formID string) (*model.Form, error) {
	oid, err := primitive.ObjectIDFromHex(formID)
	if err != nil {
		return nil, nil
	}

	var doc formDoc
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.toModel(), nil
}

func (r *formRepo) ListByCompany(ctx context.Context, company string) ([]*model.Form, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"company": company}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []formDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	forms := make([]*model.Form, 0, len(docs))
	for i := range docs {
		forms = append(forms, docs[i].toModel())
	}
	return forms, nil
}

// PersistForm reads the stored form, applies the payload and replaces the
// document in one write.
func (r *formRepo) PersistForm(ctx context.Context, payload *model.SyncPayload) (*model.Form, error) {
	oid, err := primitive.ObjectIDFromHex(payload.Form.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: form id %q", ErrFormMissing, payload.Form.ID)
	}

	var stored formDoc
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&stored)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("%w: %s", ErrFormMissing, payload.Form.ID)
	}
	if err != nil {
		return nil, err
	}

	next, err := applySyncPayload(stored, payload, r.now())
	if err != nil {
		return nil, err
	}
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": oid}, next); err != nil {
		return nil, err
	}
	return next.toModel(), nil
}

func (r *formRepo) DeleteForm(ctx context.Context, formID string) error {
	oid, err := primitive.ObjectIDFromHex(formID)
	if err != nil {
		return fmt.Errorf("%w: form id %q", ErrFormMissing, formID)
	}
	_, err = r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}

// applySyncPayload interprets the snapshot of every question in payload
// against the stored document. New questions (by flag or by temporary id)
// are inserted with fresh ids, modified ones replace the stored version,
// unflagged ones keep the stored version, and tombstones are dropped. The
// resulting question order is the payload's active order.
func applySyncPayload(stored formDoc, payload *model.SyncPayload, now time.Time) (formDoc, error) {
	existing := make(map[string]questionDoc, len(stored.Questions))
	for _, q := range stored.Questions {
		existing[q.ID] = q
	}

	tombstones := make(map[string]struct{}, len(payload.Deleted))
	for _, q := range payload.Deleted {
		if !q.Snapshot.IsDeleted() || q.Snapshot.IsNew() {
			return formDoc{}, fmt.Errorf("%w: tombstone %q has snapshot %s", ErrInvalidPayload, q.ID, q.Snapshot)
		}
		tombstones[q.ID] = struct{}{}
	}

	questions := make([]questionDoc, 0, len(payload.Active))
	seen := make(map[string]struct{}, len(payload.Active))
	for _, q := range payload.Active {
		if err := q.Validate(); err != nil {
			return formDoc{}, fmt.Errorf("%w: question %q: %v", ErrInvalidPayload, q.ID, err)
		}
		if q.Snapshot.IsDeleted() {
			return formDoc{}, fmt.Errorf("%w: active question %q flagged deleted", ErrInvalidPayload, q.ID)
		}
		if _, dead := tombstones[q.ID]; dead {
			return formDoc{}, fmt.Errorf("%w: question %q is both active and deleted", ErrInvalidPayload, q.ID)
		}
		if _, dup := seen[q.ID]; dup {
			return formDoc{}, fmt.Errorf("%w: duplicate question id %q", ErrInvalidPayload, q.ID)
		}
		seen[q.ID] = struct{}{}

		var doc questionDoc
		switch {
		case q.Snapshot.IsNew() || model.IsTemporaryID(q.ID):
			doc = newQuestionDoc(q)
			doc.ID = primitive.NewObjectID().Hex()
		case q.Snapshot.IsModified() || q.Snapshot.IsSettingChanged():
			doc = newQuestionDoc(q)
		default:
			prev, ok := existing[q.ID]
			if !ok {
				prev = newQuestionDoc(q)
			}
			doc = prev
		}
		questions = append(questions, doc)
	}

	next := stored
	next.Name = payload.Form.Name
	next.Description = payload.Form.Description
	next.Setting = newSettingDoc(payload.Form.Setting)
	next.Questions = questions
	next.UpdatedAt = now
	return next, nil
}

type formDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Description string             `bson:"description"`
	CreatedBy   string             `bson:"createdBy"`
	Company     string             `bson:"company"`
	Collab      bool               `bson:"collab"`
	Setting     settingDoc         `bson:"setting"`
	Questions   []questionDoc      `bson:"questions"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

type settingDoc struct {
	Published   bool       `bson:"published"`
	Once        bool       `bson:"once"`
	RequiredAll bool       `bson:"requiredAll"`
	DueActive   bool       `bson:"dueActive"`
	DueDate     *time.Time `bson:"dueDate,omitempty"`
}

type questionDoc struct {
	ID       string      `bson:"id"`
	Text     string      `bson:"text"`
	Type     string      `bson:"type"`
	Required bool        `bson:"required"`
	Options  []optionDoc `bson:"options"`
}

type optionDoc struct {
	ID    string `bson:"id"`
	Text  string `bson:"text"`
	Scale *int   `bson:"scale,omitempty"`
}

func newSettingDoc(s model.FormSetting) settingDoc {
	s = s.Clone()
	return settingDoc{
		Published:   s.Published,
		Once:        s.Once,
		RequiredAll: s.RequiredAll,
		DueActive:   s.DueDate.Active,
		DueDate:     s.DueDate.Date,
	}
}

// newQuestionDoc converts q, replacing temporary option ids with persistent
// ones.
func newQuestionDoc(q *model.Question) questionDoc {
	doc := questionDoc{
		ID:       q.ID,
		Text:     q.Text,
		Type:     string(q.Type),
		Required: q.Required,
		Options:  make([]optionDoc, 0, len(q.Options)),
	}
	for _, opt := range q.Options {
		id := opt.ID
		if id == "" || model.IsTemporaryID(id) {
			id = primitive.NewObjectID().Hex()
		}
		var scale *int
		if opt.Scale != nil {
			v := *opt.Scale
			scale = &v
		}
		doc.Options = append(doc.Options, optionDoc{ID: id, Text: opt.Text, Scale: scale})
	}
	return doc
}

func (d *formDoc) toModel() *model.Form {
	form := &model.Form{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Description: d.Description,
		CreatedBy:   d.CreatedBy,
		Company:     d.Company,
		Collab:      d.Collab,
		Setting: model.FormSetting{
			Published:   d.Setting.Published,
			Once:        d.Setting.Once,
			RequiredAll: d.Setting.RequiredAll,
			DueDate: model.DueDate{
				Active: d.Setting.DueActive,
				Date:   d.Setting.DueDate,
			},
		}.Clone(),
		Questions: make([]*model.Question, 0, len(d.Questions)),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	for _, qd := range d.Questions {
		q := &model.Question{
			ID:       qd.ID,
			Text:     qd.Text,
			Type:     model.QuestionType(qd.Type),
			Required: qd.Required,
			Options:  make([]model.Option, 0, len(qd.Options)),
		}
		for _, od := range qd.Options {
			opt := model.Option{ID: od.ID, Text: od.Text}
			if od.Scale != nil {
				v := *od.Scale
				opt.Scale = &v
			}
			q.Options = append(q.Options, opt)
		}
		form.Questions = append(form.Questions, q)
	}
	return form
}
