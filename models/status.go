package models

import (
	"encoding/json"
	"fmt"
)

// ItemStatus is the closed set of states a TodoItem can be in.
type ItemStatus string

const (
	StatusPending    ItemStatus = "pending"
	StatusInProgress ItemStatus = "in_progress"
	StatusDone       ItemStatus = "done"
)

// Valid reports whether s is one of the known statuses.
func (s ItemStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusDone:
		return true
	}
	return false
}

func (s *ItemStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("status must be a string")
	}
	v := ItemStatus(raw)
	if !v.Valid() {
		return &ValidationError{Field: "status", Message: fmt.Sprintf("must be one of %s, %s, %s", StatusPending, StatusInProgress, StatusDone)}
	}
	*s = v
	return nil
}
