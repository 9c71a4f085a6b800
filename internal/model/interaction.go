package model

import "time"

// InteractionCard is the structured result of extracting the 5 Ws
// (who, where, when, why, how) from free text describing an encounter.
// A card is produced fresh per request and has no identity of its own;
// it only exists to become an Interaction row.
type InteractionCard struct {
	// Who is the name of the other party as stated in the text.
	Who   string  `json:"who"`
	Where *string `json:"where"`
	When  *string `json:"when"`
	Why   *string `json:"why"`
	How   *string `json:"how"`
}

// Interaction is a recorded encounter between two users. Rows are
// append-only: once created there is no update or delete path.
type Interaction struct {
	ID           int64     `json:"id"`
	Who          string    `json:"who"`
	Where        *string   `json:"where,omitempty"`
	When         *string   `json:"when,omitempty"`
	Why          *string   `json:"why,omitempty"`
	How          *string   `json:"how,omitempty"`
	UserID       int64     `json:"user_id"`
	TargetUserID int64     `json:"target_user_id"`
	CreatedAt    time.Time `json:"created_at"`
}
