package users

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/uptrace/bun"
)

// UserSchema represents the users table schema in PostgreSQL
type UserSchema struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID    int64  `bun:"id,pk,autoincrement" json:"id"`
	Name  string `bun:"name,notnull" json:"name"`
	Email string `bun:"email,notnull,unique" json:"email"`
}

// PostgresStore implements the UserStore interface with PostgreSQL storage
type PostgresStore struct {
	db *bun.DB
}

// NewPostgresStore creates a new PostgreSQL user store
func NewPostgresStore(db *bun.DB) *PostgresStore {
	return &PostgresStore{
		db: db,
	}
}

// ListUsers returns all users ordered by ascending id
func (s *PostgresStore) ListUsers(ctx context.Context) ([]User, error) {
	var schemas []UserSchema
	err := s.db.NewSelect().
		Model(&schemas).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, NewUserStorageError("list", err)
	}

	users := make([]User, 0, len(schemas))
	for _, schema := range schemas {
		users = append(users, schemaToUser(schema))
	}
	return users, nil
}

// GetUser retrieves a user by id
func (s *PostgresStore) GetUser(ctx context.Context, id int64) (*User, error) {
	var schema UserSchema
	err := s.db.NewSelect().
		Model(&schema).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewUserNotFoundError(id)
		}
		return nil, NewUserStorageError("get", err)
	}

	user := schemaToUser(schema)
	return &user, nil
}

// GetUserByEmail retrieves a user by email. Returns (nil, nil) when no user
// has the given email, so callers can use it as an existence check.
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var schema UserSchema
	err := s.db.NewSelect().
		Model(&schema).
		Where("email = ?", email).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, NewUserStorageError("get_by_email", err)
	}

	user := schemaToUser(schema)
	return &user, nil
}

// CreateUser inserts a new user and returns it with the store-assigned id
func (s *PostgresStore) CreateUser(ctx context.Context, name, email string) (*User, error) {
	schema := &UserSchema{
		Name:  name,
		Email: email,
	}

	_, err := s.db.NewInsert().
		Model(schema).
		Returning("*").
		Exec(ctx)
	if err != nil {
		// The unique index backstops the service-level pre-check, which is
		// not atomic with the insert.
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return nil, NewEmailExistsError(email)
		}
		return nil, NewUserStorageError("create", err)
	}

	user := schemaToUser(*schema)
	return &user, nil
}

// UpdateUser updates a user's name and email in place
func (s *PostgresStore) UpdateUser(ctx context.Context, id int64, name, email string) error {
	result, err := s.db.NewUpdate().
		Model((*UserSchema)(nil)).
		Set("name = ?", name).
		Set("email = ?", email).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return NewUserStorageError("update", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return NewUserStorageError("update", err)
	}
	if rowsAffected == 0 {
		return NewUserNotFoundError(id)
	}

	return nil
}

// DeleteUser removes a user row (hard delete)
func (s *PostgresStore) DeleteUser(ctx context.Context, id int64) error {
	result, err := s.db.NewDelete().
		Model((*UserSchema)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return NewUserStorageError("delete", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return NewUserStorageError("delete", err)
	}
	if rowsAffected == 0 {
		return NewUserNotFoundError(id)
	}

	return nil
}

func schemaToUser(schema UserSchema) User {
	return User{
		ID:    schema.ID,
		Name:  schema.Name,
		Email: schema.Email,
	}
}
