package hierarchy

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/urbanatlas/urban-backend/internal/apierr"
	"github.com/urbanatlas/urban-backend/internal/logger"
)

// TableSpec names the columns of a self-referencing dictionary table. Specs
// are compiled in next to the models; no user input ever reaches the
// identifier positions of the generated SQL.
type TableSpec struct {
	Entity       string
	Table        string
	IDColumn     string
	ParentColumn string
	LevelColumn  string
	LabelColumn  string
}

func (s TableSpec) withDefaults() TableSpec {
	if s.ParentColumn == "" {
		s.ParentColumn = "parent_id"
	}
	if s.LevelColumn == "" {
		s.LevelColumn = "level"
	}
	if s.LabelColumn == "" {
		s.LabelColumn = "list_label"
	}
	return s
}

// Node is one row of a hierarchy table in normalized column naming.
type Node struct {
	ID        int64  `gorm:"column:id"`
	ParentID  *int64 `gorm:"column:parent_id"`
	Level     int    `gorm:"column:level"`
	ListLabel string `gorm:"column:list_label"`
}

// labelOrder is the database-side ordering expression for dotted labels:
// each segment is left-padded so "1.10" sorts after "1.9".
const labelOrder = `(SELECT array_to_string(array_agg(LPAD(part, 4, '0')), '.') FROM unnest(string_to_array(%s, '.')) AS part)`

// Resolver answers subtree queries and keeps level/list_label consistent
// across structural mutations. Every mutating method expects to run inside
// the same transaction as the insert/update/delete it accompanies.
type Resolver struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewResolver(db *gorm.DB, baseLog *logger.Logger) *Resolver {
	return &Resolver{db: db, log: baseLog.With("component", "HierarchyResolver")}
}

func (r *Resolver) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *Resolver) selectColumns(spec TableSpec, alias string) string {
	return fmt.Sprintf("%[1]s.%[2]s AS id, %[1]s.%[3]s AS parent_id, %[1]s.%[4]s AS level, %[1]s.%[5]s AS list_label",
		alias, spec.IDColumn, spec.ParentColumn, spec.LevelColumn, spec.LabelColumn)
}

func (r *Resolver) getNode(ctx context.Context, tx *gorm.DB, spec TableSpec, id int64) (*Node, error) {
	spec = spec.withDefaults()
	var nodes []Node
	query := fmt.Sprintf("SELECT %s FROM %s t WHERE t.%s = ?", r.selectColumns(spec, "t"), spec.Table, spec.IDColumn)
	if err := r.conn(tx).WithContext(ctx).Raw(query, id).Scan(&nodes).Error; err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, apierr.NotFound(spec.Entity, id)
	}
	return &nodes[0], nil
}

// Subtree returns the nodes under rootID in depth-first label order. A nil
// rootID starts from the top level. Without allLevels only direct children
// (or roots) are returned; with allLevels the full descendant closure is
// collected in one recursive query.
func (r *Resolver) Subtree(ctx context.Context, tx *gorm.DB, spec TableSpec, rootID *int64, allLevels bool) ([]Node, error) {
	spec = spec.withDefaults()

	if rootID != nil {
		if _, err := r.getNode(ctx, tx, spec, *rootID); err != nil {
			return nil, err
		}
	}

	parentCond := fmt.Sprintf("t.%s IS NULL", spec.ParentColumn)
	args := []interface{}{}
	if rootID != nil {
		parentCond = fmt.Sprintf("t.%s = ?", spec.ParentColumn)
		args = append(args, *rootID)
	}

	orderBy := fmt.Sprintf(labelOrder, "list_label")
	var query string
	if allLevels {
		query = fmt.Sprintf(`
			WITH RECURSIVE nodes AS (
				SELECT %s FROM %s t WHERE %s
				UNION ALL
				SELECT %s FROM %s c JOIN nodes ON c.%s = nodes.id
			)
			SELECT id, parent_id, level, list_label FROM nodes ORDER BY %s`,
			r.selectColumns(spec, "t"), spec.Table, parentCond,
			r.selectColumns(spec, "c"), spec.Table, spec.ParentColumn,
			orderBy)
	} else {
		query = fmt.Sprintf(`
			SELECT %s FROM %s t WHERE %s
			ORDER BY %s`,
			r.selectColumns(spec, "t"), spec.Table, parentCond,
			fmt.Sprintf(labelOrder, "t."+spec.LabelColumn))
	}

	var nodes []Node
	if err := r.conn(tx).WithContext(ctx).Raw(query, args...).Scan(&nodes).Error; err != nil {
		return nil, fmt.Errorf("subtree query for %s: %w", spec.Table, err)
	}
	return nodes, nil
}

// DescendantIDs returns the closure of id including id itself.
func (r *Resolver) DescendantIDs(ctx context.Context, tx *gorm.DB, spec TableSpec, id int64) ([]int64, error) {
	spec = spec.withDefaults()
	query := fmt.Sprintf(`
		WITH RECURSIVE sub AS (
			SELECT %[2]s AS id FROM %[1]s WHERE %[2]s = ?
			UNION ALL
			SELECT c.%[2]s FROM %[1]s c JOIN sub ON c.%[3]s = sub.id
		)
		SELECT id FROM sub`, spec.Table, spec.IDColumn, spec.ParentColumn)

	var ids []int64
	if err := r.conn(tx).WithContext(ctx).Raw(query, id).Scan(&ids).Error; err != nil {
		return nil, fmt.Errorf("descendant closure for %s: %w", spec.Table, err)
	}
	return ids, nil
}

// PrepareInsert computes the level and list_label for a row about to be
// inserted under parentID. Must run in the same transaction as the insert.
func (r *Resolver) PrepareInsert(ctx context.Context, tx *gorm.DB, spec TableSpec, parentID *int64) (int, string, error) {
	spec = spec.withDefaults()

	parentLabel := ""
	level := 1
	if parentID != nil {
		parent, err := r.getNode(ctx, tx, spec, *parentID)
		if err != nil {
			return 0, "", err
		}
		if _, err := SplitLabel(parent.ListLabel); err != nil {
			return 0, "", apierr.InvariantViolation(fmt.Sprintf("%s %d carries malformed list label %q", spec.Entity, *parentID, parent.ListLabel))
		}
		parentLabel = parent.ListLabel
		level = parent.Level + 1
	}

	count, err := r.childCount(ctx, tx, spec, parentID)
	if err != nil {
		return 0, "", err
	}
	return level, ChildLabel(parentLabel, count+1), nil
}

// Reparent moves a node (and its whole subtree) under newParentID,
// maintaining levels in one closure-wide update, re-prefixing descendant
// labels, and closing the gap left in the old sibling group. A nil
// newParentID promotes the node to the top level.
func (r *Resolver) Reparent(ctx context.Context, tx *gorm.DB, spec TableSpec, id int64, newParentID *int64) error {
	spec = spec.withDefaults()
	conn := r.conn(tx).WithContext(ctx)

	node, err := r.getNode(ctx, tx, spec, id)
	if err != nil {
		return err
	}
	oldParentID := node.ParentID

	newLevel := 1
	newParentLabel := ""
	if newParentID != nil {
		if *newParentID == id {
			return apierr.InvariantViolation(fmt.Sprintf("%s %d cannot be its own parent", spec.Entity, id))
		}
		closure, err := r.DescendantIDs(ctx, tx, spec, id)
		if err != nil {
			return err
		}
		for _, descendant := range closure {
			if descendant == *newParentID {
				return apierr.InvariantViolation(fmt.Sprintf("reparenting %s %d under %d would create a cycle", spec.Entity, id, *newParentID))
			}
		}
		parent, err := r.getNode(ctx, tx, spec, *newParentID)
		if err != nil {
			return err
		}
		newLevel = parent.Level + 1
		newParentLabel = parent.ListLabel
	}

	siblingCount, err := r.childCount(ctx, tx, spec, newParentID)
	if err != nil {
		return err
	}
	newLabel := ChildLabel(newParentLabel, siblingCount+1)

	update := fmt.Sprintf("UPDATE %s SET %s = ? WHERE %s = ?", spec.Table, spec.ParentColumn, spec.IDColumn)
	if err := conn.Exec(update, newParentID, id).Error; err != nil {
		return fmt.Errorf("reparent %s %d: %w", spec.Entity, id, err)
	}

	if delta := newLevel - node.Level; delta != 0 {
		cascade := fmt.Sprintf(`
			WITH RECURSIVE sub AS (
				SELECT %[2]s AS id FROM %[1]s WHERE %[2]s = ?
				UNION ALL
				SELECT c.%[2]s FROM %[1]s c JOIN sub ON c.%[3]s = sub.id
			)
			UPDATE %[1]s SET %[4]s = %[4]s + ? WHERE %[2]s IN (SELECT id FROM sub)`,
			spec.Table, spec.IDColumn, spec.ParentColumn, spec.LevelColumn)
		if err := conn.Exec(cascade, id, delta).Error; err != nil {
			return fmt.Errorf("cascade level update for %s %d: %w", spec.Entity, id, err)
		}
	}

	if err := r.moveSubtreeLabel(ctx, tx, spec, node.ListLabel, newLabel); err != nil {
		return err
	}
	return r.RenumberSiblings(ctx, tx, spec, oldParentID)
}

// AfterDelete closes the label gap in the sibling group the deleted node
// belonged to. Call it in the delete transaction, after the row is gone.
func (r *Resolver) AfterDelete(ctx context.Context, tx *gorm.DB, spec TableSpec, oldParentID *int64) error {
	return r.RenumberSiblings(ctx, tx, spec, oldParentID)
}

// RenumberSiblings assigns gap-free positions to the children of parentID,
// moving each changed node's whole subtree label prefix along with it.
func (r *Resolver) RenumberSiblings(ctx context.Context, tx *gorm.DB, spec TableSpec, parentID *int64) error {
	spec = spec.withDefaults()

	siblings, err := r.Subtree(ctx, tx, spec, parentID, false)
	if err != nil {
		return err
	}

	parentLabel := ""
	if parentID != nil {
		parent, err := r.getNode(ctx, tx, spec, *parentID)
		if err != nil {
			return err
		}
		parentLabel = parent.ListLabel
	}

	labels := make([]string, len(siblings))
	for i, sibling := range siblings {
		labels[i] = sibling.ListLabel
	}
	// Renumber's order guarantee matters here: moveSubtreeLabel matches
	// rows by current label, so each move must land on a vacated label.
	for _, change := range Renumber(parentLabel, labels) {
		if err := r.moveSubtreeLabel(ctx, tx, spec, change.Old, change.New); err != nil {
			return err
		}
	}
	return nil
}

// moveSubtreeLabel re-prefixes a node and every descendant in a single
// statement. The LIKE pattern carries a trailing dot so "1.20" is never
// mistaken for a child of "1.2".
func (r *Resolver) moveSubtreeLabel(ctx context.Context, tx *gorm.DB, spec TableSpec, oldLabel, newLabel string) error {
	if oldLabel == newLabel {
		return nil
	}
	query := fmt.Sprintf(`
		UPDATE %[1]s
		SET %[2]s = ? || substring(%[2]s from ?)
		WHERE %[2]s = ? OR %[2]s LIKE ?`,
		spec.Table, spec.LabelColumn)
	err := r.conn(tx).WithContext(ctx).
		Exec(query, newLabel, len(oldLabel)+1, oldLabel, oldLabel+".%").Error
	if err != nil {
		return fmt.Errorf("relabel subtree %q -> %q in %s: %w", oldLabel, newLabel, spec.Table, err)
	}
	return nil
}

func (r *Resolver) childCount(ctx context.Context, tx *gorm.DB, spec TableSpec, parentID *int64) (int, error) {
	spec = spec.withDefaults()
	var count int64
	var err error
	if parentID == nil {
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s IS NULL", spec.Table, spec.ParentColumn)
		err = r.conn(tx).WithContext(ctx).Raw(query).Scan(&count).Error
	} else {
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = ?", spec.Table, spec.ParentColumn)
		err = r.conn(tx).WithContext(ctx).Raw(query, *parentID).Scan(&count).Error
	}
	if err != nil {
		return 0, fmt.Errorf("sibling count in %s: %w", spec.Table, err)
	}
	return int(count), nil
}
