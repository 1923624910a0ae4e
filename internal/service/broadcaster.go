package service

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToForm(formID string, msgType string, payload interface{})
}

// MsgFormSaved is sent to every editor watching a form after a save lands.
const MsgFormSaved = "form_saved"
