// Package servicetest provides in-memory stores for exercising the services
// and handlers without MongoDB or Redis.
package servicetest

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"hrforms/internal/editor"
	"hrforms/internal/model"
)

// FormStore keeps forms in memory and mints persistent ids the way the
// MongoDB store does.
type FormStore struct {
	mu    sync.Mutex
	forms map[string]*model.Form
	next  int

	// PersistErr, when set, fails every PersistForm call.
	PersistErr error
	Persisted  []*model.SyncPayload
}

func NewFormStore() *FormStore {
	return &FormStore{forms: make(map[string]*model.Form)}
}

func (s *FormStore) mint(prefix string) string {
	s.next++
	return fmt.Sprintf("%s%04d", prefix, s.next)
}

// Put stores form as is and returns its id.
func (s *FormStore) Put(form *model.Form) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if form.ID == "" {
		form.ID = s.mint("form")
	}
	s.forms[form.ID] = form.Clone()
	return form.ID
}

func (s *FormStore) CreateForm(ctx context.Context, meta model.FormMeta) (*model.Form, error) {
	form := model.NewForm(meta)
	form.CreatedAt = time.Now()
	form.UpdatedAt = form.CreatedAt
	s.Put(form)
	return form.Clone(), nil
}

func (s *FormStore) FetchFormWithSnapshot(ctx context.Context, formID string) (*model.Form, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	form, ok := s.forms[formID]
	if !ok {
		return nil, nil
	}
	return form.Clone(), nil
}

func (s *FormStore) ListByCompany(ctx context.Context, company string) ([]*model.Form, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*model.Form{}
	for _, form := range s.forms {
		if form.Company == company {
			out = append(out, form.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *FormStore) PersistForm(ctx context.Context, payload *model.SyncPayload) (*model.Form, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Persisted = append(s.Persisted, payload)
	if s.PersistErr != nil {
		return nil, s.PersistErr
	}
	stored, ok := s.forms[payload.Form.ID]
	if !ok {
		return nil, fmt.Errorf("form %s missing", payload.Form.ID)
	}

	next := stored.Clone()
	next.Name = payload.Form.Name
	next.Description = payload.Form.Description
	next.Setting = payload.Form.Setting.Clone()
	next.Questions = make([]*model.Question, 0, len(payload.Active))
	for _, q := range payload.Active {
		q = q.Clone()
		if model.IsTemporaryID(q.ID) {
			q.ID = s.mint("q")
		}
		for i := range q.Options {
			if model.IsTemporaryID(q.Options[i].ID) {
				q.Options[i].ID = s.mint("o")
			}
		}
		q.Snapshot = 0
		next.Questions = append(next.Questions, q)
	}
	next.DeletedQuestions = nil
	next.UpdatedAt = time.Now()
	s.forms[next.ID] = next
	return next.Clone(), nil
}

func (s *FormStore) DeleteForm(ctx context.Context, formID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.forms, formID)
	return nil
}

// DraftCache serialises sessions to JSON like the Redis cache does.
type DraftCache struct {
	mu     sync.Mutex
	drafts map[string][]byte
	locks  map[string]chan struct{}
}

func NewDraftCache() *DraftCache {
	return &DraftCache{
		drafts: make(map[string][]byte),
		locks:  make(map[string]chan struct{}),
	}
}

// Lock holds one slot per session id until unlock is called or ctx ends.
func (c *DraftCache) Lock(ctx context.Context, id string) (func(), error) {
	c.mu.Lock()
	slot, ok := c.locks[id]
	if !ok {
		slot = make(chan struct{}, 1)
		c.locks[id] = slot
	}
	c.mu.Unlock()

	select {
	case slot <- struct{}{}:
		return func() { <-slot }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *DraftCache) Set(ctx context.Context, session *editor.EditingSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drafts[session.ID] = data
	return nil
}

func (c *DraftCache) Get(ctx context.Context, id string) (*editor.EditingSession, error) {
	c.mu.Lock()
	data, ok := c.drafts[id]
	c.mu.Unlock()
	if !ok {
		return nil, nil
	}
	var session editor.EditingSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *DraftCache) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.drafts, id)
	return nil
}

// Len returns the number of stored drafts.
func (c *DraftCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.drafts)
}

// FeedbackStore keeps seeded feedback in memory.
type FeedbackStore struct {
	mu   sync.Mutex
	list []*model.Feedback
}

func NewFeedbackStore() *FeedbackStore {
	return &FeedbackStore{}
}

func (s *FeedbackStore) Create(ctx context.Context, feedback *model.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	feedback.ID = fmt.Sprintf("fb%04d", len(s.list)+1)
	feedback.CreatedAt = time.Now()
	s.list = append(s.list, feedback)
	return nil
}

func (s *FeedbackStore) GetByID(ctx context.Context, id string) (*model.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, fb := range s.list {
		if fb.ID == id {
			return fb, nil
		}
	}
	return nil, nil
}

func (s *FeedbackStore) ListByForm(ctx context.Context, formID string) ([]*model.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*model.Feedback{}
	for _, fb := range s.list {
		if fb.FormID == formID {
			out = append(out, fb)
		}
	}
	return out, nil
}

// Broadcaster records every broadcast.
type Broadcaster struct {
	mu       sync.Mutex
	Messages []Broadcast
}

type Broadcast struct {
	FormID  string
	Type    string
	Payload interface{}
}

func (b *Broadcaster) BroadcastToForm(formID string, msgType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Messages = append(b.Messages, Broadcast{FormID: formID, Type: msgType, Payload: payload})
}

// Sent returns a copy of the recorded broadcasts.
func (b *Broadcaster) Sent() []Broadcast {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Broadcast(nil), b.Messages...)
}
