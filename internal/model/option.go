package model

// Option is one selectable entry, or one scale endpoint, of a question.
// Options are only changed through their owning Question.
type Option struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Scale *int   `json:"scale,omitempty"` // LINEAR_SCALE only
}

func (o Option) clone() Option {
	if o.Scale != nil {
		o.Scale = intPtr(*o.Scale)
	}
	return o
}

func intPtr(v int) *int {
	return &v
}
