package store

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pricepilot/dynamic-pricing/internal/store/schema"
)

type softDeletableModel interface {
	schema.SoftDeletable
	TableName() string
}

// Active is the single scope list queries use to hide soft-deleted rows
func Active[T softDeletableModel]() func(*gorm.DB) *gorm.DB {
	var model T
	column, kind := model.SoftDeleteColumn()
	col := clause.Column{Table: model.TableName(), Name: column}

	return func(db *gorm.DB) *gorm.DB {
		if kind == schema.SoftDeleteTimestamp {
			return db.Where(clause.Eq{Column: col, Value: nil})
		}
		return db.Where(clause.Eq{Column: col, Value: true})
	}
}

// softDeleteUpdates returns the column updates that soft delete a row of T
func softDeleteUpdates[T softDeletableModel](at time.Time) map[string]any {
	var model T
	column, kind := model.SoftDeleteColumn()
	if kind == schema.SoftDeleteTimestamp {
		return map[string]any{column: at}
	}
	return map[string]any{column: false}
}
