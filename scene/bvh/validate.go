package bvh

import (
	"fmt"

	"github.com/achilleasa/prism/types"
)

// Tolerance used when checking box containment.
const containmentEpsilon float32 = 1e-4

// Validate the structure of a tree built over items. Validate checks that:
//   - the tree depth matches the node count
//   - every leaf references a valid item and encloses its box
//   - leaves have no children and internal nodes have at least one child
//   - every non-padding node is enclosed by its parent
func Validate(tree Tree, items []BoundedVolume) error {
	nodes := tree.Nodes
	if tree.Depth != depthOf(len(nodes)) {
		return fmt.Errorf("bvh: tree depth %d does not match node count %d", tree.Depth, len(nodes))
	}

	for index, node := range nodes {
		if node.IsEmpty() {
			continue
		}

		for axis := 0; axis < 3; axis++ {
			if !finite(node.Min[axis]) || !finite(node.Max[axis]) {
				return fmt.Errorf("bvh: node %d: non-finite bounds %v - %v", index, node.Min, node.Max)
			}
		}
		if node.BBox().IsEmpty() {
			return fmt.Errorf("bvh: node %d: inverted bounds %v - %v", index, node.Min, node.Max)
		}

		if parentIndex := Parent(index); parentIndex >= 0 {
			parent := nodes[parentIndex]
			if parent.IsEmpty() || parent.IsLeaf() {
				return fmt.Errorf("bvh: node %d: parent %d is not an internal node", index, parentIndex)
			}
			if !parent.BBox().Contains(node.BBox(), containmentEpsilon) {
				return fmt.Errorf("bvh: node %d: bounds %v - %v not enclosed by parent %d bounds %v - %v", index, node.Min, node.Max, parentIndex, parent.Min, parent.Max)
			}
		}

		children := 0
		for _, childIndex := range []int{LeftChild(index), RightChild(index)} {
			if childIndex < len(nodes) && !nodes[childIndex].IsEmpty() {
				children++
			}
		}

		if !node.IsLeaf() {
			if children == 0 {
				return fmt.Errorf("bvh: node %d: internal node without children", index)
			}
			continue
		}

		if children != 0 {
			return fmt.Errorf("bvh: node %d: leaf node has children", index)
		}
		if int(node.Index) >= len(items) {
			return fmt.Errorf("bvh: node %d: primitive index %d out of range [0, %d)", index, node.Index, len(items))
		}
		if !node.BBox().Contains(items[node.Index].BBox(), containmentEpsilon) {
			return fmt.Errorf("bvh: node %d: leaf bounds do not enclose primitive %d", index, node.Index)
		}
	}

	return nil
}

// Check that the root box of a tree encloses every leaf box.
func RootEnclosesLeaves(tree Tree) bool {
	if len(tree.Nodes) == 0 {
		return true
	}
	root := tree.Nodes[0].BBox()
	for _, node := range tree.Nodes {
		if node.IsLeaf() && !root.Contains(node.BBox(), containmentEpsilon) {
			return false
		}
	}
	return true
}

// Returns true if two trees reference the same primitives and enclose
// the same total internal volume.
func Equivalent(a, b Tree, epsilon float32) bool {
	if a.Depth != b.Depth || len(a.Nodes) != len(b.Nodes) {
		return false
	}
	aLeaves, bLeaves := a.Leaves(), b.Leaves()
	if len(aLeaves) != len(bLeaves) {
		return false
	}
	for index := range aLeaves {
		if aLeaves[index] != bLeaves[index] {
			return false
		}
	}
	return types.ApproxEqual(a.InternalVolume(), b.InternalVolume(), epsilon)
}
