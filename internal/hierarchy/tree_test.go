package hierarchy

import "testing"

type flatRow struct {
	id       int64
	parentID *int64
	name     string
}

func ptr(v int64) *int64 { return &v }

func TestBuildTreeAssemblesForest(t *testing.T) {
	rows := []flatRow{
		{id: 1, name: "root-a"},
		{id: 2, parentID: ptr(1), name: "child-a1"},
		{id: 3, parentID: ptr(1), name: "child-a2"},
		{id: 4, parentID: ptr(3), name: "grandchild"},
		{id: 5, name: "root-b"},
	}

	roots := BuildTree(rows,
		func(r flatRow) int64 { return r.id },
		func(r flatRow) *int64 { return r.parentID })

	if len(roots) != 2 {
		t.Fatalf("roots: want=2 got=%d", len(roots))
	}
	if roots[0].Item.name != "root-a" || roots[1].Item.name != "root-b" {
		t.Fatalf("root order not preserved: %q, %q", roots[0].Item.name, roots[1].Item.name)
	}
	if len(roots[0].Children) != 2 {
		t.Fatalf("root-a children: want=2 got=%d", len(roots[0].Children))
	}
	if got := roots[0].Children[1]; len(got.Children) != 1 || got.Children[0].Item.name != "grandchild" {
		t.Fatalf("grandchild not attached under child-a2")
	}
}

func TestBuildTreeOrphanBecomesRoot(t *testing.T) {
	rows := []flatRow{
		{id: 10, parentID: ptr(99), name: "orphan"},
	}
	roots := BuildTree(rows,
		func(r flatRow) int64 { return r.id },
		func(r flatRow) *int64 { return r.parentID })
	if len(roots) != 1 || roots[0].Item.name != "orphan" {
		t.Fatalf("orphan row should surface as a root")
	}
}
