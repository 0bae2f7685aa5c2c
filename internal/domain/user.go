package domain

import (
	"context"
	"strconv"
)

// User represents an admin account.
type User struct {
	BaseModel
	Name         string `gorm:"size:100;not null" json:"name"`
	Email        string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255" json:"-"`
	Role         Role   `gorm:"size:16;not null;default:viewer" json:"role"`
}

// ActorID returns the identifier carried by tokens and audit stamps.
func (u *User) ActorID() string {
	return strconv.FormatUint(uint64(u.ID), 10)
}

// CreateUserInput is the input for creating an admin account.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     Role
}

// UpdateUserInput is the input for updating an admin account. An empty
// Password keeps the current one.
type UpdateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     Role
}

// UserRepository defines the data access interface for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uint) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, req PageRequest) (*PageResult[User], error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
}

// UserService defines the business logic interface for users.
type UserService interface {
	CreateUser(ctx context.Context, in CreateUserInput) (*User, error)
	GetUser(ctx context.Context, id uint) (*User, error)
	ListUsers(ctx context.Context, req PageRequest) (*PageResult[User], error)
	UpdateUser(ctx context.Context, id uint, in UpdateUserInput) (*User, error)
	DeleteUser(ctx context.Context, id uint) error
	EnsureAdmin(ctx context.Context, in CreateUserInput) (*User, error)
}
