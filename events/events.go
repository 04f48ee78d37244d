// Package events publishes list and item mutations so other processes can
// follow a user's lists without polling.
package events

import (
	"time"
)

// Type names a mutation.
type Type string

const (
	ListCreated Type = "list.created"
	ListUpdated Type = "list.updated"
	ListDeleted Type = "list.deleted"
	ItemCreated Type = "item.created"
	ItemUpdated Type = "item.updated"
	ItemDeleted Type = "item.deleted"
)

// Event is the JSON payload of one notification.
type Event struct {
	Type   Type      `json:"type"`
	UserID string    `json:"user_id"`
	ListID string    `json:"list_id"`
	ItemID string    `json:"item_id,omitempty"`
	At     time.Time `json:"at"`
}

// Publisher delivers events. Publish must not block the request for long
// and reports failures only through the returned error.
type Publisher interface {
	Publish(ev Event) error
	Close()
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(Event) error { return nil }
func (Nop) Close()              {}
