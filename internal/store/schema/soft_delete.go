package schema

// SoftDeleteKind describes how a model marks rows as deleted
type SoftDeleteKind int

const (
	// SoftDeleteFlag means a boolean column is true for live rows
	SoftDeleteFlag SoftDeleteKind = iota
	// SoftDeleteTimestamp means a nullable timestamp column is set on deletion
	SoftDeleteTimestamp
)

// SoftDeletable is implemented by models whose rows are hidden rather than removed
type SoftDeletable interface {
	SoftDeleteColumn() (column string, kind SoftDeleteKind)
}
