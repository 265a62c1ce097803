package mysql

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockForUpdate adds a row lock on dialects that support it. SQLite
// (used by the test suites) serializes writers on its own and rejects
// the FOR UPDATE syntax.
func lockForUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}
