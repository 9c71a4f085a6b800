// Package dto defines request and response payloads for the HTTP API.
package dto

// APIResponse is the success envelope: a message plus optional data.
type APIResponse struct {
	Msg  string `json:"msg"`
	Data any    `json:"data,omitempty"`
}

// ErrorResponse is the error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// RecordInteractionRequest is the payload for POST /api/v1/interactions.
type RecordInteractionRequest struct {
	// Input is the free text describing the encounter.
	Input string `json:"input"`
	// UserID is the external id of the user recording the interaction.
	UserID string `json:"user_id"`
	// TargetUserID is the external id of the other user.
	TargetUserID string `json:"target_user_id"`
	// Sub is the requester's subject claim. A verified bearer token
	// overrides this field.
	Sub string `json:"sub"`
}
