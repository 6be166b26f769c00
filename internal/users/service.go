package users

import (
	"context"
	"strings"
)

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	store UserStore
}

// NewUserService creates a new user service instance
func NewUserService(store UserStore) *UserServiceImpl {
	return &UserServiceImpl{
		store: store,
	}
}

// ListUsers returns all users ordered by ascending id
func (s *UserServiceImpl) ListUsers(ctx context.Context) ([]User, error) {
	return s.store.ListUsers(ctx)
}

// GetUser retrieves a single user by id
func (s *UserServiceImpl) GetUser(ctx context.Context, id int64) (*User, error) {
	if id <= 0 {
		return nil, NewUserValidationError("id", "must be a positive integer")
	}
	return s.store.GetUser(ctx, id)
}

// CreateUser validates the request, rejects duplicate emails, and inserts
// a new user. The existence check and the insert are two round trips; the
// unique index on email catches the race between them.
func (s *UserServiceImpl) CreateUser(ctx context.Context, req *CreateUserRequest) (*User, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)

	if name == "" {
		return nil, NewUserValidationError("name", "is required")
	}
	if email == "" {
		return nil, NewUserValidationError("email", "is required")
	}

	existing, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, NewEmailExistsError(email)
	}

	return s.store.CreateUser(ctx, name, email)
}

// UpdateUser updates a user's name and email. Email collisions with other
// records are not re-checked here.
func (s *UserServiceImpl) UpdateUser(ctx context.Context, id int64, req *UpdateUserRequest) error {
	if id <= 0 {
		return NewUserValidationError("id", "must be a positive integer")
	}

	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)

	if name == "" {
		return NewUserValidationError("name", "is required")
	}
	if email == "" {
		return NewUserValidationError("email", "is required")
	}

	return s.store.UpdateUser(ctx, id, name, email)
}

// DeleteUser deletes a user by id
func (s *UserServiceImpl) DeleteUser(ctx context.Context, id int64) error {
	if id <= 0 {
		return NewUserValidationError("id", "must be a positive integer")
	}
	return s.store.DeleteUser(ctx, id)
}
