package grid

// GroupPath returns the keys of the group nodes from the top level down to
// node. A leaf contributes nothing itself, so a top level leaf has an empty
// path and a leaf under A > B has [A, B].
func GroupPath(node Node) []string {
	path := []string{}
	for n := node; n != nil && n.Level() >= 0; n = n.Parent() {
		if n.Group() {
			path = append([]string{n.Key()}, path...)
		}
	}
	return path
}
