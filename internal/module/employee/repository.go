package employee

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/simp-lee/touradmin/internal/domain"
	"github.com/simp-lee/touradmin/internal/pkg"
)

// Allowed fields for sorting and filtering in List queries.
var (
	allowedSortFields   = []string{"name", "email", "company", "created_at", "updated_at"}
	allowedFilterFields = []string{"name", "email", "position", "company"}
)

// EmployeeRepository persists employees and their team memberships.
type EmployeeRepository struct {
	db *gorm.DB
}

// NewEmployeeRepository creates a new EmployeeRepository backed by the given GORM database.
func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// Create inserts a new employee.
func (r *EmployeeRepository) Create(ctx context.Context, e *domain.Employee) error {
	return pkg.MapDBError(r.db.WithContext(ctx).Create(e).Error, "employee")
}

// Get returns an employee by ID. Deleted employees are reported as not found
// unless includeDeleted is set.
func (r *EmployeeRepository) Get(ctx context.Context, id string, includeDeleted bool) (*domain.Employee, error) {
	q := r.db.WithContext(ctx).Where("id = ?", id)
	if !includeDeleted {
		q = q.Where("deleted_at IS NULL")
	}
	var e domain.Employee
	if err := q.First(&e).Error; err != nil {
		return nil, pkg.MapDBError(err, "employee")
	}
	return &e, nil
}

// List returns a paginated, sorted, and filtered list of employees.
func (r *EmployeeRepository) List(ctx context.Context, req domain.PageRequest) (*domain.PageResult[domain.Employee], error) {
	var total int64
	base := r.db.WithContext(ctx).Model(&domain.Employee{}).
		Scopes(pkg.ExcludeDeleted(req), pkg.Filter(req, allowedFilterFields))

	if err := base.Count(&total).Error; err != nil {
		return nil, pkg.MapDBError(err, "employee")
	}

	var employees []domain.Employee
	if err := base.Scopes(
		pkg.Paginate(req),
		pkg.Sort(req, allowedSortFields),
	).Find(&employees).Error; err != nil {
		return nil, pkg.MapDBError(err, "employee")
	}
	return pkg.NewPageResult(employees, total, req), nil
}

// Find loads an employee inside tx, including deleted ones, and locks
// its row until tx ends.
func (r *EmployeeRepository) Find(ctx context.Context, tx *gorm.DB, id string) (*domain.Employee, error) {
	var e domain.Employee
	if err := pkg.ForUpdate(tx.WithContext(ctx)).Where("id = ?", id).First(&e).Error; err != nil {
		return nil, pkg.MapDBError(err, "employee")
	}
	return &e, nil
}

// editableColumns are the columns Update may write.
var editableColumns = []string{"name", "email", "position", "company"}

// Update writes the editable columns of a live employee.
func (r *EmployeeRepository) Update(ctx context.Context, e *domain.Employee) error {
	return pkg.UpdateLive(ctx, r.db, e, "employee", editableColumns...)
}

// Save writes every column of e inside tx.
func (r *EmployeeRepository) Save(ctx context.Context, tx *gorm.DB, e *domain.Employee) error {
	return pkg.MapDBError(tx.WithContext(ctx).Save(e).Error, "employee")
}

// Detach hides the employee's active memberships, stamping them with at.
func (r *EmployeeRepository) Detach(ctx context.Context, tx *gorm.DB, e *domain.Employee, at time.Time) error {
	err := tx.WithContext(ctx).Model(&domain.Membership{}).
		Where("employee_id = ? AND detached_at IS NULL", e.ID).
		Update("detached_at", at).Error
	return pkg.MapDBError(err, "membership")
}

// Reattach brings back the memberships detached by the deletion at
// deletedAt. Memberships removed earlier stay removed.
func (r *EmployeeRepository) Reattach(ctx context.Context, tx *gorm.DB, e *domain.Employee, deletedAt time.Time) error {
	err := tx.WithContext(ctx).Model(&domain.Membership{}).
		Where("employee_id = ? AND detached_at = ?", e.ID, deletedAt).
		Update("detached_at", nil).Error
	return pkg.MapDBError(err, "membership")
}

// Hydrate loads the employee's active memberships.
func (r *EmployeeRepository) Hydrate(ctx context.Context, tx *gorm.DB, e *domain.Employee) error {
	var list []domain.Membership
	err := tx.WithContext(ctx).
		Where("employee_id = ? AND detached_at IS NULL", e.ID).
		Order("team ASC").
		Find(&list).Error
	if err != nil {
		return pkg.MapDBError(err, "membership")
	}
	e.Memberships = list
	return nil
}

// AddMembership inserts m. A team the employee already belongs to is an
// AlreadyExists error.
func (r *EmployeeRepository) AddMembership(ctx context.Context, m *domain.Membership) error {
	return pkg.MapDBError(r.db.WithContext(ctx).Create(m).Error, "membership")
}

// RemoveMembership deletes the employee's membership of team.
func (r *EmployeeRepository) RemoveMembership(ctx context.Context, employeeID, team string) error {
	res := r.db.WithContext(ctx).
		Where("employee_id = ? AND team = ? AND detached_at IS NULL", employeeID, team).
		Delete(&domain.Membership{})
	if res.Error != nil {
		return pkg.MapDBError(res.Error, "membership")
	}
	if res.RowsAffected == 0 {
		return domain.NewAppError(domain.CodeNotFound, "membership not found", nil)
	}
	return nil
}
