package expr

import "sort"

func (v *VarNode) NodeCount() int   { return 1 }
func (c *ConstNode) NodeCount() int { return 1 }
func (u *UnaryNode) NodeCount() int { return 1 + u.Child.NodeCount() }
func (b *BinaryNode) NodeCount() int {
	return 1 + b.Left.NodeCount() + b.Right.NodeCount()
}

func (v *VarNode) Depth() int   { return 1 }
func (c *ConstNode) Depth() int { return 1 }
func (u *UnaryNode) Depth() int { return 1 + u.Child.Depth() }
func (b *BinaryNode) Depth() int {
	ld := b.Left.Depth()
	rd := b.Right.Depth()
	if ld > rd {
		return 1 + ld
	}
	return 1 + rd
}

// FreeVars returns the sorted, distinct names of the variables in node.
func FreeVars(node ExprNode) []string {
	seen := map[string]struct{}{}
	collectVars(node, seen)
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func collectVars(node ExprNode, out map[string]struct{}) {
	switch n := node.(type) {
	case *VarNode:
		out[n.Name] = struct{}{}
	case *UnaryNode:
		collectVars(n.Child, out)
	case *BinaryNode:
		collectVars(n.Left, out)
		collectVars(n.Right, out)
	}
}
