package model

// FormHeader is the form-level part of a sync payload.
type FormHeader struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Setting     FormSetting `json:"setting"`
}

// SyncPayload is what a save sends to the form store: the complete active
// question list in display order, plus the tombstones. The store reads each
// question's snapshot to decide between insert, update, delete and no-op.
type SyncPayload struct {
	Form    FormHeader  `json:"form"`
	Active  []*Question `json:"active"`
	Deleted []*Question `json:"deleted"`
}

// Questions returns the active list followed by the tombstones.
func (p *SyncPayload) Questions() []*Question {
	out := make([]*Question, 0, len(p.Active)+len(p.Deleted))
	out = append(out, p.Active...)
	return append(out, p.Deleted...)
}
