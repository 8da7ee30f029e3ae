package hierarchy

import (
	"reflect"
	"testing"
)

func TestCompareNumericNotLexicographic(t *testing.T) {
	cases := []struct {
		name string
		a, b string
		want int
	}{
		{name: "simple_less", a: "1", b: "2", want: -1},
		{name: "double_digit_sibling", a: "1.9", b: "1.10", want: -1},
		{name: "parent_before_child", a: "1.2", b: "1.2.1", want: -1},
		{name: "equal", a: "3.4.5", b: "3.4.5", want: 0},
		{name: "deep_double_digit", a: "2.11.3", b: "2.2.9", want: 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Compare(tc.a, tc.b); got != tc.want {
				t.Fatalf("Compare(%q,%q)=%d, want %d", tc.a, tc.b, got, tc.want)
			}
			if got := Compare(tc.b, tc.a); got != -tc.want {
				t.Fatalf("Compare(%q,%q)=%d, want %d", tc.b, tc.a, got, -tc.want)
			}
		})
	}
}

func TestSortLabelsWithTenPlusSiblings(t *testing.T) {
	labels := []string{"1.10", "1.2", "1.1", "1.11", "1.9", "1.3"}
	SortLabels(labels)
	want := []string{"1.1", "1.2", "1.3", "1.9", "1.10", "1.11"}
	if !reflect.DeepEqual(labels, want) {
		t.Fatalf("sorted order: want=%v got=%v", want, labels)
	}
}

func TestSplitLabelRejectsMalformed(t *testing.T) {
	for _, label := range []string{"", "1..2", "a.b", "0", "1.-2", "1.2."} {
		if _, err := SplitLabel(label); err == nil {
			t.Fatalf("SplitLabel(%q) should fail", label)
		}
	}
}

func TestChildAndParentLabel(t *testing.T) {
	if got := ChildLabel("", 3); got != "3" {
		t.Fatalf("root child label: want=3 got=%s", got)
	}
	if got := ChildLabel("2.1", 12); got != "2.1.12" {
		t.Fatalf("nested child label: want=2.1.12 got=%s", got)
	}
	if got := ParentLabel("2.1.12"); got != "2.1" {
		t.Fatalf("parent label: want=2.1 got=%s", got)
	}
	if got := ParentLabel("7"); got != "" {
		t.Fatalf("root parent label: want empty got=%s", got)
	}
}

func TestReplacePrefix(t *testing.T) {
	got, err := ReplacePrefix("1.2.5", "1.2", "3.4")
	if err != nil {
		t.Fatalf("ReplacePrefix: %v", err)
	}
	if got != "3.4.5" {
		t.Fatalf("want=3.4.5 got=%s", got)
	}

	// "1.20" must not be treated as a descendant of "1.2".
	if _, err := ReplacePrefix("1.20", "1.2", "9"); err == nil {
		t.Fatalf("expected prefix mismatch for 1.20 under 1.2")
	}
}

func TestRenumberClosesGaps(t *testing.T) {
	siblings := []string{"4.1", "4.3", "4.4", "4.10"}
	changes := Renumber("4", siblings)
	want := []LabelChange{
		{Old: "4.3", New: "4.2"},
		{Old: "4.4", New: "4.3"},
		{Old: "4.10", New: "4.4"},
	}
	if !reflect.DeepEqual(changes, want) {
		t.Fatalf("renumber changes: want=%v got=%v", want, changes)
	}
}

// applyChange mirrors moveSubtreeLabel's predicate: a row moves when its
// label equals the old label or sits under it.
func applyChange(rows []string, change LabelChange) []string {
	out := make([]string, len(rows))
	for i, row := range rows {
		if row == change.Old {
			out[i] = change.New
			continue
		}
		if len(row) > len(change.Old) && row[:len(change.Old)+1] == change.Old+"." {
			out[i] = change.New + row[len(change.Old):]
			continue
		}
		out[i] = row
	}
	return out
}

// Deleting sibling 4.1 must shift 4.2 and 4.3 down without the former 4.3
// subtree being caught by the 4.2 move. Sequential application in the
// returned order has to keep the subtrees distinct.
func TestRenumberOrderKeepsSubtreesDistinct(t *testing.T) {
	rows := []string{"4.2", "4.2.1", "4.3", "4.3.1"}
	for _, change := range Renumber("4", []string{"4.2", "4.3"}) {
		rows = applyChange(rows, change)
	}
	want := []string{"4.1", "4.1.1", "4.2", "4.2.1"}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("after renumber: want=%v got=%v", want, rows)
	}
}

func TestRenumberIsIdempotent(t *testing.T) {
	siblings := []string{"2.1", "2.2", "2.3"}
	if changes := Renumber("2", siblings); len(changes) != 0 {
		t.Fatalf("relabeling a correct sibling group should be a no-op, got %v", changes)
	}
}

func TestSortKeyPadsSegments(t *testing.T) {
	if got := SortKey("3.12"); got != "0003.0012" {
		t.Fatalf("SortKey: want=0003.0012 got=%s", got)
	}
	if got := SortKey("12345"); got != "12345" {
		t.Fatalf("SortKey must not truncate wide segments, got %s", got)
	}
}
