package dto

// UpsertUserRequest is the payload for PUT /api/v1/users.
type UpsertUserRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	City     string `json:"city"`
	// Sub is the requester's subject claim; it becomes the user's
	// external id on first contact.
	Sub string `json:"sub"`
}
