package user

import (
	"context"
	"log/slog"
	"net/mail"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/simp-lee/touradmin/internal/domain"
)

const minPasswordLength = 8

// userService implements domain.UserService.
type userService struct {
	repo   domain.UserRepository
	logger *slog.Logger
}

// NewUserService creates a new UserService with the given repository.
func NewUserService(repo domain.UserRepository, logger *slog.Logger) domain.UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &userService{repo: repo, logger: logger}
}

// CreateUser validates input, hashes the password, and persists the account.
func (s *userService) CreateUser(ctx context.Context, in domain.CreateUserInput) (*domain.User, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if err := validateNameEmail(name, email); err != nil {
		return nil, err
	}
	role, err := normalizeRole(in.Role)
	if err != nil {
		return nil, err
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *userService) GetUser(ctx context.Context, id uint) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

// ListUsers returns a paginated list of users.
func (s *userService) ListUsers(ctx context.Context, req domain.PageRequest) (*domain.PageResult[domain.User], error) {
	return s.repo.List(ctx, req)
}

// UpdateUser loads the existing user, applies changes, and persists them.
// An empty password keeps the current one.
func (s *userService) UpdateUser(ctx context.Context, id uint, in domain.UpdateUserInput) (*domain.User, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if err := validateNameEmail(name, email); err != nil {
		return nil, err
	}
	role, err := normalizeRole(in.Role)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Name = name
	user.Email = email
	user.Role = role
	if in.Password != "" {
		hash, err := hashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// DeleteUser removes a user by ID.
func (s *userService) DeleteUser(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

// EnsureAdmin creates the bootstrap admin when no account exists yet.
// It returns nil, nil when accounts are already present.
func (s *userService) EnsureAdmin(ctx context.Context, in domain.CreateUserInput) (*domain.User, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, nil
	}
	in.Role = domain.RoleAdmin
	u, err := s.CreateUser(ctx, in)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "bootstrap admin created", slog.String("email", u.Email))
	return u, nil
}

// validateNameEmail checks that name and email are non-empty.
func validateNameEmail(name, email string) error {
	trimmedName := strings.TrimSpace(name)
	if trimmedName == "" {
		return domain.NewAppError(domain.CodeValidation, "name is required", nil)
	}
	if utf8.RuneCountInString(trimmedName) < 2 {
		return domain.NewAppError(domain.CodeValidation, "name must be at least 2 characters", nil)
	}
	if utf8.RuneCountInString(trimmedName) > 100 {
		return domain.NewAppError(domain.CodeValidation, "name must be at most 100 characters", nil)
	}

	trimmedEmail := strings.TrimSpace(email)
	if trimmedEmail == "" {
		return domain.NewAppError(domain.CodeValidation, "email is required", nil)
	}
	if _, err := mail.ParseAddress(trimmedEmail); err != nil {
		return domain.NewAppError(domain.CodeValidation, "email must be a valid email address", nil)
	}
	return nil
}

// normalizeRole defaults an empty role to viewer.
func normalizeRole(r domain.Role) (domain.Role, error) {
	if r == "" {
		return domain.RoleViewer, nil
	}
	if !r.Valid() {
		return "", domain.NewValidationError("unknown role", map[string]string{"role": "oneof"})
	}
	return r, nil
}

func hashPassword(password string) (string, error) {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return "", domain.NewValidationError("password must be at least 8 characters", map[string]string{"password": "min"})
	}
	if len(password) > 72 {
		return "", domain.NewValidationError("password must be at most 72 bytes", map[string]string{"password": "max"})
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", domain.NewAppError(domain.CodeInternal, "hash password", err)
	}
	return string(hash), nil
}
