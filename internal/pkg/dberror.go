package pkg

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/simp-lee/touradmin/internal/domain"
)

// MapDBError converts GORM errors to domain errors. notFound names the
// missing thing in the NotFound message.
func MapDBError(err error, notFound string) error {
	if err == nil {
		return nil
	}
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NewAppError(domain.CodeNotFound, notFound+" not found", nil)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicateKeyError(err) {
		return domain.NewAppError(domain.CodeAlreadyExists, "already exists", err)
	}
	return domain.NewAppError(domain.CodeStorageUnavailable, "storage unavailable", err)
}

// isDuplicateKeyError detects unique constraint violations by examining the
// error message. This is needed because not all GORM dialectors translate
// driver-level errors to gorm.ErrDuplicatedKey (e.g. the pure-Go SQLite driver).
func isDuplicateKeyError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}

// UpdateLive writes the named columns of model, addressed by its primary
// key, in a single statement that only matches rows not soft-deleted.
// Columns left out, such as the soft-delete stamps, keep whatever value is
// committed. A missing or deleted row is NotFound.
func UpdateLive(ctx context.Context, db *gorm.DB, model any, notFound string, columns ...string) error {
	res := db.WithContext(ctx).Model(model).
		Where("deleted_at IS NULL").
		Select(columns).
		Updates(model)
	if res.Error != nil {
		return MapDBError(res.Error, notFound)
	}
	if res.RowsAffected == 0 {
		return domain.NewAppError(domain.CodeNotFound, notFound+" not found", nil)
	}
	return nil
}

// ForUpdate locks the selected rows until tx ends. SQLite ignores the clause
// and serializes writers on its own.
func ForUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
}
