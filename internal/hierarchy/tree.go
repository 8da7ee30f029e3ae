package hierarchy

// TreeNode wraps an item with its resolved children for "give me the whole
// tree" endpoints.
type TreeNode[T any] struct {
	Item     T              `json:"item"`
	Children []*TreeNode[T] `json:"children"`
}

// BuildTree assembles flat rows into forest form in memory. Rows whose
// parent is absent from the input become roots, so a filtered subtree still
// assembles into a sensible forest.
func BuildTree[T any](items []T, id func(T) int64, parent func(T) *int64) []*TreeNode[T] {
	nodes := make(map[int64]*TreeNode[T], len(items))
	order := make([]int64, 0, len(items))
	for _, item := range items {
		nodes[id(item)] = &TreeNode[T]{Item: item, Children: []*TreeNode[T]{}}
		order = append(order, id(item))
	}

	var roots []*TreeNode[T]
	for _, itemID := range order {
		node := nodes[itemID]
		parentID := parent(node.Item)
		if parentID != nil {
			if parentNode, ok := nodes[*parentID]; ok {
				parentNode.Children = append(parentNode.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}
