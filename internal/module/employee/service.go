package employee

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simp-lee/touradmin/internal/domain"
	"github.com/simp-lee/touradmin/internal/lifecycle"
)

// Input holds the editable fields of an employee.
type Input struct {
	Name     string
	Email    string
	Position string
	Company  string
}

// EmployeeService implements employee use cases.
type EmployeeService struct {
	db        *gorm.DB
	repo      *EmployeeRepository
	authz     domain.Authorizer
	lifecycle *lifecycle.Manager[*domain.Employee]
	logger    *slog.Logger
}

// NewEmployeeService creates a new EmployeeService.
func NewEmployeeService(db *gorm.DB, repo *EmployeeRepository, authz domain.Authorizer, logger *slog.Logger) *EmployeeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &EmployeeService{
		db:        db,
		repo:      repo,
		authz:     authz,
		lifecycle: lifecycle.NewManager[*domain.Employee](db, repo, authz, logger),
		logger:    logger,
	}
}

// Create stores a new employee.
func (s *EmployeeService) Create(ctx context.Context, actor domain.Actor, in Input) (*domain.Employee, error) {
	if err := domain.RequireRole(ctx, s.authz, actor, domain.RoleEditor); err != nil {
		return nil, err
	}
	e := &domain.Employee{RecordModel: domain.RecordModel{ID: uuid.NewString()}}
	if err := apply(e, in); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Get returns an employee with its active memberships.
func (s *EmployeeService) Get(ctx context.Context, id string, includeDeleted bool) (*domain.Employee, error) {
	e, err := s.repo.Get(ctx, id, includeDeleted)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Hydrate(ctx, s.db, e); err != nil {
		return nil, err
	}
	return e, nil
}

// List returns a page of employees.
func (s *EmployeeService) List(ctx context.Context, req domain.PageRequest) (*domain.PageResult[domain.Employee], error) {
	return s.repo.List(ctx, req)
}

// Update replaces the editable fields of a live employee.
func (s *EmployeeService) Update(ctx context.Context, actor domain.Actor, id string, in Input) (*domain.Employee, error) {
	if err := domain.RequireRole(ctx, s.authz, actor, domain.RoleEditor); err != nil {
		return nil, err
	}
	e := &domain.Employee{RecordModel: domain.RecordModel{ID: id}}
	if err := apply(e, in); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	return s.Get(ctx, id, false)
}

// Delete soft-deletes an employee and detaches its memberships.
func (s *EmployeeService) Delete(ctx context.Context, actor domain.Actor, id, reason string) (*domain.Employee, error) {
	return s.lifecycle.SoftDelete(ctx, id, actor, reason)
}

// Restore brings a deleted employee back with the memberships it had.
func (s *EmployeeService) Restore(ctx context.Context, actor domain.Actor, id string) (*domain.Employee, error) {
	return s.lifecycle.Restore(ctx, id, actor)
}

// AddMembership puts a live employee on a team.
func (s *EmployeeService) AddMembership(ctx context.Context, actor domain.Actor, id, team, role string) (*domain.Membership, error) {
	if err := domain.RequireRole(ctx, s.authz, actor, domain.RoleEditor); err != nil {
		return nil, err
	}
	team = strings.TrimSpace(team)
	if team == "" {
		return nil, domain.NewValidationError("team is required", map[string]string{"team": "required"})
	}
	if _, err := s.repo.Get(ctx, id, false); err != nil {
		return nil, err
	}
	m := &domain.Membership{EmployeeID: id, Team: team, Role: strings.TrimSpace(role)}
	if err := s.repo.AddMembership(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// RemoveMembership takes a live employee off a team.
func (s *EmployeeService) RemoveMembership(ctx context.Context, actor domain.Actor, id, team string) error {
	if err := domain.RequireRole(ctx, s.authz, actor, domain.RoleEditor); err != nil {
		return err
	}
	if _, err := s.repo.Get(ctx, id, false); err != nil {
		return err
	}
	return s.repo.RemoveMembership(ctx, id, team)
}

// History returns the employee's audit trail.
func (s *EmployeeService) History(ctx context.Context, id string) ([]domain.LifecycleEvent, error) {
	if _, err := s.repo.Get(ctx, id, true); err != nil {
		return nil, err
	}
	return lifecycle.History(ctx, s.db, domain.RecordEmployee, id)
}

func apply(e *domain.Employee, in Input) error {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	fields := map[string]string{}
	if name == "" {
		fields["name"] = "required"
	}
	if email == "" {
		fields["email"] = "required"
	}
	if len(fields) > 0 {
		return domain.NewValidationError("invalid employee", fields)
	}
	e.Name = name
	e.Email = email
	e.Position = strings.TrimSpace(in.Position)
	e.Company = strings.TrimSpace(in.Company)
	return nil
}
