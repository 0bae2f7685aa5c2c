package user

import "github.com/simp-lee/touradmin/internal/domain"

// CreateUserRequest represents the input for creating a new user.
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Role     string `json:"role" binding:"omitempty,oneof=viewer editor admin"`
}

// Input converts the request into service input.
func (r CreateUserRequest) Input() domain.CreateUserInput {
	return domain.CreateUserInput{Name: r.Name, Email: r.Email, Password: r.Password, Role: domain.Role(r.Role)}
}

// UpdateUserRequest represents the input for updating an existing user.
// An empty password keeps the current one.
type UpdateUserRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"omitempty,min=8,max=72"`
	Role     string `json:"role" binding:"omitempty,oneof=viewer editor admin"`
}

// Input converts the request into service input.
func (r UpdateUserRequest) Input() domain.UpdateUserInput {
	return domain.UpdateUserInput{Name: r.Name, Email: r.Email, Password: r.Password, Role: domain.Role(r.Role)}
}
