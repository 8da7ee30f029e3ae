package hierarchy

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// List labels are dotted materialized paths ("3.1.12"). They are stored
// unpadded for readability; ordering must always go through Compare or
// SortLabels, never plain string comparison, or "1.10" sorts before "1.9".

// SplitLabel parses a dotted label into its numeric segments.
func SplitLabel(label string) ([]int, error) {
	if label == "" {
		return nil, fmt.Errorf("empty list label")
	}
	parts := strings.Split(label, ".")
	segments := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("malformed list label %q: segment %q", label, part)
		}
		segments = append(segments, n)
	}
	return segments, nil
}

// Compare orders two labels segment-by-segment numerically. Malformed labels
// fall back to string comparison so sorting stays total.
func Compare(a, b string) int {
	as, errA := SplitLabel(a)
	bs, errB := SplitLabel(b)
	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}
	for i := 0; i < len(as) && i < len(bs); i++ {
		if as[i] != bs[i] {
			if as[i] < bs[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(as) < len(bs):
		return -1
	case len(as) > len(bs):
		return 1
	default:
		return 0
	}
}

// SortLabels sorts labels in depth-first sibling order.
func SortLabels(labels []string) {
	sort.SliceStable(labels, func(i, j int) bool { return Compare(labels[i], labels[j]) < 0 })
}

// ChildLabel builds the label of the child at 1-based position under parent.
// An empty parent label means a root node.
func ChildLabel(parentLabel string, position int) string {
	if parentLabel == "" {
		return strconv.Itoa(position)
	}
	return parentLabel + "." + strconv.Itoa(position)
}

// ParentLabel strips the last segment; roots return "".
func ParentLabel(label string) string {
	idx := strings.LastIndex(label, ".")
	if idx < 0 {
		return ""
	}
	return label[:idx]
}

// Depth returns the number of segments, which equals the node level for a
// correctly labeled tree.
func Depth(label string) int {
	if label == "" {
		return 0
	}
	return strings.Count(label, ".") + 1
}

// ReplacePrefix rewrites a descendant label when its ancestor's label
// changes. The label must equal oldPrefix or start with oldPrefix followed
// by a dot.
func ReplacePrefix(label, oldPrefix, newPrefix string) (string, error) {
	if label == oldPrefix {
		return newPrefix, nil
	}
	if strings.HasPrefix(label, oldPrefix+".") {
		return newPrefix + label[len(oldPrefix):], nil
	}
	return "", fmt.Errorf("label %q is not under prefix %q", label, oldPrefix)
}

// LabelChange is one sibling relabel step produced by Renumber.
type LabelChange struct {
	Old string
	New string
}

// Renumber assigns gap-free 1-based positions to an ordered sibling group
// under the given parent label. It returns only the labels that change, in
// ascending label order. Gap closing only ever moves a sibling down, so
// applying the changes in the returned order means every move targets a
// label the previous move already vacated; any other order can relabel a
// subtree twice and merge it into a neighbor.
func Renumber(parentLabel string, orderedSiblings []string) []LabelChange {
	changes := make([]LabelChange, 0, len(orderedSiblings))
	for i, old := range orderedSiblings {
		want := ChildLabel(parentLabel, i+1)
		if old != want {
			changes = append(changes, LabelChange{Old: old, New: want})
		}
	}
	return changes
}

// padWidth matches the LPAD width the database uses when ordering labels.
const padWidth = 4

// SortKey renders a label into a fixed-width form usable for ordering by the
// database or in logs. "3.12" becomes "0003.0012".
func SortKey(label string) string {
	parts := strings.Split(label, ".")
	padded := make([]string, len(parts))
	for i, part := range parts {
		if len(part) >= padWidth {
			padded[i] = part
			continue
		}
		padded[i] = strings.Repeat("0", padWidth-len(part)) + part
	}
	return strings.Join(padded, ".")
}
