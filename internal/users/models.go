package users

// User represents a managed record in the users table
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CreateUserRequest represents the request to create a user.
// The id is never supplied by the caller; the store assigns it.
type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UpdateUserRequest represents the request to update a user's name and email
type UpdateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}
