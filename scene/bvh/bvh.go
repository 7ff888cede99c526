package bvh

import (
	"fmt"
	"math"
	"math/bits"
	"strings"

	"github.com/achilleasa/prism/types"
)

// Size of an encoded node in bytes (float3 min, float3 max, int index).
const SizeofNode = 28

// The index value used by nodes that do not reference a primitive.
const InternalNode int32 = -1

// The BoundedVolume interface is implemented by all primitives that can be
// partitioned by the bvh builders.
type BoundedVolume interface {
	BBox() types.BBox
	Center() types.Vec3
}

// A BVH node. Nodes are stored in a flat array using implicit complete
// binary tree addressing: the children of the node at position i live at
// positions 2i+1 and 2i+2.
//
// Leaf nodes have Index >= 0 and reference a single primitive by its
// position in the primitive list passed to the builder. Nodes with
// Index == InternalNode are either internal nodes or padding slots; padding
// slots carry an inverted (empty) box so they can never be intersected.
type Node struct {
	Min   types.Vec3
	Max   types.Vec3
	Index int32
}

// Create a leaf node for the primitive at index.
func leafNode(box types.BBox, index int) Node {
	return Node{Min: box.Min, Max: box.Max, Index: int32(index)}
}

// Create an internal node.
func internalNode(box types.BBox) Node {
	return Node{Min: box.Min, Max: box.Max, Index: InternalNode}
}

// Create a padding node.
func emptyNode() Node {
	box := types.EmptyBBox()
	return Node{Min: box.Min, Max: box.Max, Index: InternalNode}
}

// Returns true if this node references a primitive.
func (n Node) IsLeaf() bool {
	return n.Index >= 0
}

// Returns true if this is a padding node.
func (n Node) IsEmpty() bool {
	return n.Index < 0 && n.BBox().IsEmpty()
}

// Get node bounding box.
func (n Node) BBox() types.BBox {
	return types.BBox{Min: n.Min, Max: n.Max}
}

func (n Node) String() string {
	switch {
	case n.IsEmpty():
		return "empty"
	case n.IsLeaf():
		return fmt.Sprintf("leaf %d [%v - %v]", n.Index, n.Min, n.Max)
	}
	return fmt.Sprintf("node [%v - %v]", n.Min, n.Max)
}

// Get index of the left child of the node at index.
func LeftChild(index int) int {
	return 2*index + 1
}

// Get index of the right child of the node at index.
func RightChild(index int) int {
	return 2*index + 2
}

// Get index of the parent of the node at index. The root has no parent
// and yields -1.
func Parent(index int) int {
	if index == 0 {
		return -1
	}
	return (index - 1) / 2
}

// A flattened BVH.
type Tree struct {
	Nodes []Node

	// Number of tree levels; 0 for an empty tree.
	Depth int
}

// Create a tree from a flat node list, dropping trailing padding nodes.
func newTree(nodes []Node) Tree {
	nodes = trimEmpty(nodes)
	return Tree{
		Nodes: nodes,
		Depth: depthOf(len(nodes)),
	}
}

// Create a tree from a flat node list using implicit addressing.
func FromNodes(nodes []Node) Tree {
	return newTree(nodes)
}

// Get number of nodes.
func (t Tree) Len() int {
	return len(t.Nodes)
}

// Get root node bounding box. Empty trees yield an empty box.
func (t Tree) BBox() types.BBox {
	if len(t.Nodes) == 0 {
		return types.EmptyBBox()
	}
	return t.Nodes[0].BBox()
}

// Get the primitive indices referenced by the tree leaves in node order.
// A primitive may appear more than once if the builder allows overlapping
// partitions.
func (t Tree) Leaves() []int32 {
	out := make([]int32, 0, (len(t.Nodes)+1)/2)
	for _, n := range t.Nodes {
		if n.IsLeaf() {
			out = append(out, n.Index)
		}
	}
	return out
}

// Sum the volume of all internal nodes.
func (t Tree) InternalVolume() float32 {
	var total float32
	for _, n := range t.Nodes {
		if n.IsLeaf() || n.IsEmpty() {
			continue
		}
		total += n.BBox().Volume()
	}
	return total
}

// Format the tree one node per line, indented by depth.
func (t Tree) String() string {
	var sb strings.Builder
	for index, n := range t.Nodes {
		if n.IsEmpty() {
			continue
		}
		sb.WriteString(strings.Repeat("  ", depthOf(index+1)-1))
		fmt.Fprintf(&sb, "%d: %s\n", index, n)
	}
	return sb.String()
}

// Get the number of levels required to store count nodes using implicit
// addressing.
func depthOf(count int) int {
	return bits.Len(uint(count))
}

// Get ceil(log2(n)) for n >= 1.
func ceilLog2(n int) int {
	if n <= 1 {
		return 0
	}
	return bits.Len(uint(n - 1))
}

// Drop padding nodes from the end of the list.
func trimEmpty(nodes []Node) []Node {
	last := len(nodes)
	for last > 0 && nodes[last-1].IsEmpty() {
		last--
	}
	return nodes[:last]
}

// Allocate a node list for a tree with the given number of levels where
// all slots are initialized to padding nodes.
func allocNodes(depth int) []Node {
	if depth <= 0 {
		return nil
	}
	count := (1 << uint(depth)) - 1
	nodes := make([]Node, count)
	empty := emptyNode()
	for index := range nodes {
		nodes[index] = empty
	}
	return nodes
}

// Check whether a float is usable as a box coordinate.
func finite(v float32) bool {
	return !math.IsInf(float64(v), 0) && !math.IsNaN(float64(v))
}
