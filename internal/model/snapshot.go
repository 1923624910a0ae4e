package model

import (
	"encoding/json"
	"strings"
)

// Snapshot is the per-question dirty state read by the form store on save.
//
// Any subset of the four flags is legal except New together with Deleted: a
// question the store has never seen is discarded on delete, never
// tombstoned. A zero Snapshot means "unchanged since the last save".
type Snapshot uint8

const (
	SnapshotNew Snapshot = 1 << iota
	SnapshotModified
	SnapshotSettingChanged
	SnapshotDeleted

	snapshotMask = SnapshotNew | SnapshotModified | SnapshotSettingChanged | SnapshotDeleted
)

func (s Snapshot) IsNew() bool            { return s&SnapshotNew != 0 }
func (s Snapshot) IsModified() bool       { return s&SnapshotModified != 0 }
func (s Snapshot) IsSettingChanged() bool { return s&SnapshotSettingChanged != 0 }
func (s Snapshot) IsDeleted() bool        { return s&SnapshotDeleted != 0 }

// IsClean reports whether no flag is set.
func (s Snapshot) IsClean() bool { return s == 0 }

// With returns s with flags set.
func (s Snapshot) With(flags Snapshot) Snapshot { return s | flags }

// Validate rejects flag combinations the sync protocol cannot interpret.
func (s Snapshot) Validate() error {
	if s&^snapshotMask != 0 {
		return ErrIllegalSnapshot
	}
	if s.IsNew() && s.IsDeleted() {
		return ErrIllegalSnapshot
	}
	return nil
}

func (s Snapshot) String() string {
	if s.IsClean() {
		return "clean"
	}
	var parts []string
	if s.IsNew() {
		parts = append(parts, "new")
	}
	if s.IsModified() {
		parts = append(parts, "modified")
	}
	if s.IsSettingChanged() {
		parts = append(parts, "setting_changed")
	}
	if s.IsDeleted() {
		parts = append(parts, "deleted")
	}
	return strings.Join(parts, "|")
}

type snapshotJSON struct {
	IsNew            bool `json:"isNew"`
	IsModified       bool `json:"isModified"`
	IsSettingChanged bool `json:"isSettingChanged"`
	IsDeleted        bool `json:"isDeleted"`
}

// MarshalJSON encodes the snapshot as the four named booleans the store
// contract expects.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(snapshotJSON{
		IsNew:            s.IsNew(),
		IsModified:       s.IsModified(),
		IsSettingChanged: s.IsSettingChanged(),
		IsDeleted:        s.IsDeleted(),
	})
}

func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var raw snapshotJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var out Snapshot
	if raw.IsNew {
		out |= SnapshotNew
	}
	if raw.IsModified {
		out |= SnapshotModified
	}
	if raw.IsSettingChanged {
		out |= SnapshotSettingChanged
	}
	if raw.IsDeleted {
		out |= SnapshotDeleted
	}
	if err := out.Validate(); err != nil {
		return err
	}
	*s = out
	return nil
}
