package pkg

import "gorm.io/gorm"

// WithTx executes fn within a database transaction.
// It commits on success, rolls back on error or panic.
// When db is already bound to a transaction, fn runs on it directly and the
// outer caller stays in charge of commit and rollback.
func WithTx(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if InTx(db) {
		return fn(db)
	}

	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

// InTx reports whether db is bound to an open transaction.
func InTx(db *gorm.DB) bool {
	if db == nil || db.Statement == nil {
		return false
	}
	_, ok := db.Statement.ConnPool.(gorm.TxCommitter)
	return ok
}
