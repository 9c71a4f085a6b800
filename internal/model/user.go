// Package model defines domain entities for the application.
package model

import "time"

// User represents a registered user.
//
// ExternalID is the opaque identifier issued outside this system. It is
// assigned exactly once, when the user row is first created, and never
// changes afterward; it is the sole authorization anchor for requests
// acting on behalf of the user.
type User struct {
	ID         int64     `json:"id"`
	ExternalID string    `json:"external_id"`
	Email      string    `json:"email"`
	FullName   string    `json:"full_name"`
	City       string    `json:"city"`
	Bio        *string   `json:"bio,omitempty"`
	Interests  []string  `json:"interests,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
