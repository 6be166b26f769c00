package users

import (
	"context"
)

// UserStore defines the interface for user storage operations
type UserStore interface {
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id int64) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	CreateUser(ctx context.Context, name, email string) (*User, error)
	UpdateUser(ctx context.Context, id int64, name, email string) error
	DeleteUser(ctx context.Context, id int64) error
}

// UserService defines the interface for user service operations
type UserService interface {
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id int64) (*User, error)
	CreateUser(ctx context.Context, req *CreateUserRequest) (*User, error)
	UpdateUser(ctx context.Context, id int64, req *UpdateUserRequest) error
	DeleteUser(ctx context.Context, id int64) error
}
