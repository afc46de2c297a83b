// Package models defines the core data structures for users, sessions
// and planner records.
package models

import (
	"encoding/json"
	"time"
)

// JoinedLayout is the date format of User.Joined.
const JoinedLayout = "2006-01-02"

// User is a registered account as stored in the users document, keyed by
// the normalized email.
type User struct {
	// Name is the display name given at registration.
	Name string `json:"name"`
	// Password is the password digest produced by the configured hasher.
	Password string `json:"password"`
	// Joined is the registration date in JoinedLayout.
	Joined string `json:"joined"`
}

// Identity is what a successful login reveals about a user.
type Identity struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Session is the server-held state of one authenticated caller.
type Session struct {
	// Email is the authenticated user ("user" in session state).
	Email string `json:"user"`
	// Name is the user's display name ("user_name" in session state).
	Name string `json:"user_name"`
	// CreatedAt is when the session started.
	CreatedAt time.Time `json:"created_at"`
}

// Stats holds the planner counters.
type Stats struct {
	Completed  int     `json:"completed"`
	FocusHours float64 `json:"focus_hours"`
}

// PlannerRecord is the shape of a freshly created planner record. Stored
// records are opaque JSON and are never decoded into this type.
type PlannerRecord struct {
	Tasks  []json.RawMessage `json:"tasks"`
	Events []json.RawMessage `json:"events"`
	Notes  []json.RawMessage `json:"notes"`
	Stats  Stats             `json:"stats"`
}

// NewPlannerRecord returns an empty record with zeroed stats.
func NewPlannerRecord() PlannerRecord {
	return PlannerRecord{
		Tasks:  []json.RawMessage{},
		Events: []json.RawMessage{},
		Notes:  []json.RawMessage{},
	}
}

// DefaultPlannerRecord returns the JSON encoding of NewPlannerRecord.
func DefaultPlannerRecord() json.RawMessage {
	b, err := json.Marshal(NewPlannerRecord())
	if err != nil {
		// static shape, cannot fail
		panic(err)
	}
	return b
}
