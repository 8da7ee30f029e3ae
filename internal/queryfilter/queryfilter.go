// Package queryfilter provides composable predicates for gorm queries, so
// resolvers do not repeat "if the value is set, add a where clause" chains
// and recursive subtree membership is written once.
package queryfilter

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/urbanatlas/urban-backend/internal/hierarchy"
)

type Filter interface {
	// Active reports whether the filter carries a value. Inactive filters
	// leave the query untouched.
	Active() bool
	Apply(query *gorm.DB) *gorm.DB
}

// Apply runs every active filter over the query. With no active filters the
// query is returned as-is.
func Apply(query *gorm.DB, filters ...Filter) *gorm.DB {
	for _, f := range filters {
		if f.Active() {
			query = f.Apply(query)
		}
	}
	return query
}

type eqFilter[T any] struct {
	column string
	value  *T
}

// Eq filters column = *value when value is set.
func Eq[T any](column string, value *T) Filter {
	return eqFilter[T]{column: column, value: value}
}

func (f eqFilter[T]) Active() bool { return f.value != nil }

func (f eqFilter[T]) Apply(query *gorm.DB) *gorm.DB {
	return query.Where(f.column+" = ?", *f.value)
}

type iLikeFilter struct {
	column string
	value  string
}

// ILike filters by case-insensitive substring when value is non-empty.
func ILike(column, value string) Filter {
	return iLikeFilter{column: column, value: value}
}

func (f iLikeFilter) Active() bool { return f.value != "" }

func (f iLikeFilter) Apply(query *gorm.DB) *gorm.DB {
	return query.Where(f.column+" ILIKE ?", "%"+f.value+"%")
}

type inFilter[T any] struct {
	column string
	values []T
}

// In filters by membership when the list is non-empty.
func In[T any](column string, values []T) Filter {
	return inFilter[T]{column: column, values: values}
}

func (f inFilter[T]) Active() bool { return len(f.values) > 0 }

func (f inFilter[T]) Apply(query *gorm.DB) *gorm.DB {
	return query.Where(f.column+" IN ?", f.values)
}

type recursiveFilter struct {
	column string
	rootID *int64
	spec   hierarchy.TableSpec
}

// Recursive filters column by membership in the descendant closure of
// rootID over a self-referencing dictionary table.
func Recursive(column string, rootID *int64, spec hierarchy.TableSpec) Filter {
	return recursiveFilter{column: column, rootID: rootID, spec: spec}
}

func (f recursiveFilter) Active() bool { return f.rootID != nil }

func (f recursiveFilter) Apply(query *gorm.DB) *gorm.DB {
	spec := f.spec
	if spec.ParentColumn == "" {
		spec.ParentColumn = "parent_id"
	}
	subquery := fmt.Sprintf(`%s IN (
		WITH RECURSIVE closure AS (
			SELECT %[2]s AS id FROM %[3]s WHERE %[2]s = ?
			UNION ALL
			SELECT c.%[2]s FROM %[3]s c JOIN closure ON c.%[4]s = closure.id
		)
		SELECT id FROM closure)`,
		f.column, spec.IDColumn, spec.Table, spec.ParentColumn)
	return query.Where(subquery, *f.rootID)
}

type customFilter struct {
	fn func(*gorm.DB) *gorm.DB
}

// Custom wraps arbitrary query logic that does not fit the other shapes.
func Custom(fn func(*gorm.DB) *gorm.DB) Filter {
	return customFilter{fn: fn}
}

func (f customFilter) Active() bool { return f.fn != nil }

func (f customFilter) Apply(query *gorm.DB) *gorm.DB {
	return f.fn(query)
}
