package bvh

import (
	"math"

	"github.com/achilleasa/prism/types"
)

type splitCandidate struct {
	// Evaluation order; used for breaking ties.
	order int

	axis  int
	point float32

	front []int
	back  []int

	// Distance between the expected and actual front item count.
	score float32
}

// Returns true if the split fails to shrink the item set on either side.
func (c *splitCandidate) degenerate(itemCount int) bool {
	return len(c.front) == itemCount || len(c.back) == itemCount
}

// Returns true if c is a better split than other.
func (c *splitCandidate) betterThan(other *splitCandidate, itemCount int) bool {
	if other == nil {
		return true
	}
	cDegenerate, oDegenerate := c.degenerate(itemCount), other.degenerate(itemCount)
	if cDegenerate != oDegenerate {
		return !cDegenerate
	}
	if c.score != other.score {
		return c.score < other.score
	}

	// Prefer splits that duplicate fewer items.
	cDup, oDup := len(c.front)+len(c.back), len(other.front)+len(other.back)
	if cDup != oDup {
		return cDup < oDup
	}
	return c.order < other.order
}

// Build a tree by recursively splitting the item set. The tree is written
// into an implicit array sized for ceil(log2(N)) + 1 levels.
func (b *builder) buildTopDown() []Node {
	targetDepth := ceilLog2(len(b.items)) + 1
	nodes := allocNodes(targetDepth)

	workList := make([]int, len(b.items))
	for index := range workList {
		workList[index] = index
	}

	b.partition(nodes, workList, 1, targetDepth, 0)
	return nodes
}

// Partition workList and write the resulting node at index.
func (b *builder) partition(nodes []Node, workList []int, depth, targetDepth, index int) {
	switch len(workList) {
	case 0:
		return
	case 1:
		nodes[index] = leafNode(b.items[workList[0]].BBox(), workList[0])
		return
	}

	if depth >= targetDepth {
		nodes[index] = leafNode(b.items[workList[0]].BBox(), workList[0])
		b.logger.Warningf("reached max depth %d at node %d; %d items left out of tree", targetDepth, index, len(workList)-1)
		return
	}

	bounds := boundsOf(b.items, workList)
	split := b.selectSplit(bounds, workList)
	nodes[index] = internalNode(bounds)

	children := [2][]int{split.front, split.back}
	for side, childList := range children {
		childIndex := LeftChild(index) + side

		// Stop recursing if the split failed to shrink the set. The
		// back child keeps the last item so that both sides of a
		// fully degenerate split reference different primitives.
		if len(childList) == len(workList) {
			pick := childList[0]
			if side == 1 {
				pick = childList[len(childList)-1]
			}
			nodes[childIndex] = leafNode(b.items[pick].BBox(), pick)
			b.logger.Warningf("degenerate split along axis %d at node %d; %d items left out of tree", split.axis, index, len(childList)-1)
			continue
		}

		b.partition(nodes, childList, depth+1, targetDepth, childIndex)
	}
}

// Evaluate candidate half-space splits along each axis, centered at the
// item centroid and at the bounds midpoint, and pick the one whose front
// item count is closest to half of the work list.
func (b *builder) selectSplit(bounds types.BBox, workList []int) *splitCandidate {
	centers := [2]types.Vec3{
		centerOf(b.items, workList),
		bounds.Center(),
	}
	expectedHalf := float32(len(workList)) / 2.0

	var best *splitCandidate
	order := 0
	for _, center := range centers {
		for axis := 0; axis < 3; axis++ {
			candidate := b.evalSplit(bounds, workList, axis, center[axis])
			candidate.order = order
			candidate.score = float32(math.Abs(float64(expectedHalf - float32(len(candidate.front)))))
			order++

			if candidate.betterThan(best, len(workList)) {
				best = candidate
			}
		}
	}

	return best
}

// Split workList by testing each item for overlap against the front and
// back halves of bounds. Items straddling the split point end up in both
// halves.
func (b *builder) evalSplit(bounds types.BBox, workList []int, axis int, point float32) *splitCandidate {
	frontBox, backBox := bounds, bounds
	frontBox.Max[axis] = point
	backBox.Min[axis] = point

	candidate := &splitCandidate{
		axis:  axis,
		point: point,
		front: make([]int, 0, len(workList)),
		back:  make([]int, 0, len(workList)),
	}
	for _, index := range workList {
		itemBox := b.items[index].BBox()
		if frontBox.Overlaps(itemBox) {
			candidate.front = append(candidate.front, index)
		}
		if backBox.Overlaps(itemBox) {
			candidate.back = append(candidate.back, index)
		}
	}
	return candidate
}
