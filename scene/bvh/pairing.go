package bvh

import (
	"runtime"
	"sort"
	"sync"

	"github.com/achilleasa/prism/types"
)

// A partially built tree stored as a complete implicit array.
type subtree struct {
	nodes []Node
	depth int
}

func (s subtree) bbox() types.BBox {
	return s.nodes[0].BBox()
}

// The result of greedily pairing subtrees starting at a rotation offset.
type pairing struct {
	offset int

	// Pairs of subtree indices. A pair whose second entry is -1
	// carries a single subtree over to the next round.
	pairs [][2]int

	// Summed volume of all parent boxes.
	volume float32
}

// Build a tree by repeatedly pairing nearest neighbors until a single
// subtree remains.
func (b *builder) buildBottomUp() []Node {
	trees := make([]subtree, len(b.items))
	for index, item := range b.items {
		trees[index] = subtree{
			nodes: []Node{leafNode(item.BBox(), index)},
			depth: 1,
		}
	}

	for len(trees) > 1 {
		trees = b.pairRound(trees)
		b.stats.Rounds++
	}

	return trees[0].nodes
}

// Run a pairing round and return the merged subtrees.
func (b *builder) pairRound(trees []subtree) []subtree {
	boxes := make([]types.BBox, len(trees))
	for index, tree := range trees {
		boxes[index] = tree.bbox()
	}

	best := bestPairing(rankLists(boxes), boxes)

	out := make([]subtree, 0, len(best.pairs))
	for _, pair := range best.pairs {
		if pair[1] < 0 {
			out = append(out, trees[pair[0]])
			continue
		}
		out = append(out, mergeSubtrees(trees[pair[0]], trees[pair[1]]))
	}

	b.logger.Debugf(
		"pairing round %d: %d subtrees -> %d (rotation offset: %d, parent volume: %.3f)",
		b.stats.Rounds+1, len(trees), len(out), best.offset, best.volume,
	)
	return out
}

// Calculate the rank list of every box. The rank list of box i orders all
// other boxes so that unblocked candidates come first; candidates in each
// group are sorted by ascending corner distance and then by index.
func rankLists(boxes []types.BBox) [][]int {
	count := len(boxes)
	centers := make([]types.Vec3, count)
	radii := make([]float32, count)
	for index, box := range boxes {
		centers[index] = box.Center()
		radii[index] = box.Radius()
	}

	// Both metrics are symmetric so we only evaluate each pair once.
	dist := make([]float32, count*count)
	blocked := make([]bool, count*count)
	for i := 0; i < count; i++ {
		for j := i + 1; j < count; j++ {
			d := cornerDistSq(boxes[i], boxes[j])
			isBlocked := blockedPair(i, j, centers, radii)
			dist[i*count+j], dist[j*count+i] = d, d
			blocked[i*count+j], blocked[j*count+i] = isBlocked, isBlocked
		}
	}

	ranks := make([][]int, count)
	for i := 0; i < count; i++ {
		rank := make([]int, 0, count-1)
		for j := 0; j < count; j++ {
			if j != i {
				rank = append(rank, j)
			}
		}

		row := i * count
		sort.Slice(rank, func(l, r int) bool {
			lIndex, rIndex := rank[l], rank[r]
			if blocked[row+lIndex] != blocked[row+rIndex] {
				return !blocked[row+lIndex]
			}
			if dist[row+lIndex] != dist[row+rIndex] {
				return dist[row+lIndex] < dist[row+rIndex]
			}
			return lIndex < rIndex
		})
		ranks[i] = rank
	}

	return ranks
}

// Get the minimum squared distance between the corner points of two boxes.
func cornerDistSq(a, b types.BBox) float32 {
	aCorners, bCorners := a.Corners(), b.Corners()
	best := aCorners[0].DistSq(bCorners[0])
	for _, ac := range aCorners {
		for _, bc := range bCorners {
			if d := ac.DistSq(bc); d < best {
				best = d
			}
		}
	}
	return best
}

// Check whether the segment connecting the centers of boxes i and j passes
// through the bounding sphere of any other box.
func blockedPair(i, j int, centers []types.Vec3, radii []float32) bool {
	for k := range centers {
		if k == i || k == j {
			continue
		}
		if pointSegmentDistSq(centers[k], centers[i], centers[j]) < radii[k]*radii[k] {
			return true
		}
	}
	return false
}

// Get the squared distance between point p and the segment ab.
func pointSegmentDistSq(p, a, b types.Vec3) float32 {
	ab := b.Sub(a)
	lenSq := ab.LenSq()
	if lenSq == 0 {
		return p.DistSq(a)
	}

	t := p.Sub(a).Dot(ab) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return p.DistSq(a.Add(ab.Mul(t)))
}

// Subtree count from which rotation offsets are evaluated in parallel.
const parallelPairingThreshold = 64

// Evaluate the greedy pairing for every rotation offset and return the one
// with the minimum summed parent volume. Ties are resolved in favor of the
// lowest offset.
func bestPairing(ranks [][]int, boxes []types.BBox) pairing {
	count := len(boxes)
	results := make([]pairing, count)

	if count < parallelPairingThreshold {
		for offset := range results {
			results[offset] = greedyPairing(ranks, boxes, offset)
		}
	} else {
		workers := runtime.NumCPU()
		if workers > count {
			workers = count
		}

		offsetChan := make(chan int)
		var wg sync.WaitGroup
		wg.Add(workers)
		for w := 0; w < workers; w++ {
			go func() {
				defer wg.Done()
				for offset := range offsetChan {
					results[offset] = greedyPairing(ranks, boxes, offset)
				}
			}()
		}

		for offset := 0; offset < count; offset++ {
			offsetChan <- offset
		}
		close(offsetChan)
		wg.Wait()
	}

	best := results[0]
	for _, candidate := range results[1:] {
		if candidate.volume < best.volume {
			best = candidate
		}
	}
	return best
}

// Visit boxes in rotated order starting at offset and pair each unpaired
// box with the first unpaired entry of its rank list. A box whose rank list
// is exhausted is carried over on its own.
func greedyPairing(ranks [][]int, boxes []types.BBox, offset int) pairing {
	count := len(boxes)
	paired := make([]bool, count)
	result := pairing{
		offset: offset,
		pairs:  make([][2]int, 0, (count+1)/2),
	}

	for step := 0; step < count; step++ {
		index := (offset + step) % count
		if paired[index] {
			continue
		}
		paired[index] = true

		partner := -1
		for _, candidate := range ranks[index] {
			if !paired[candidate] {
				partner = candidate
				break
			}
		}

		if partner < 0 {
			result.volume += boxes[index].Volume()
		} else {
			paired[partner] = true
			result.volume += boxes[index].Union(boxes[partner]).Volume()
		}
		result.pairs = append(result.pairs, [2]int{index, partner})
	}

	return result
}

// Merge two subtrees under a new root. The shallower subtree becomes the
// left child. Each level of the merged tree is formed by the matching
// level of the left subtree followed by the matching level of the right
// subtree; slots missing from the shallower side are left as padding.
func mergeSubtrees(left, right subtree) subtree {
	if right.depth < left.depth {
		left, right = right, left
	}

	depth := right.depth + 1
	nodes := allocNodes(depth)
	nodes[0] = internalNode(left.bbox().Union(right.bbox()))

	for level := 0; level < depth-1; level++ {
		width := 1 << uint(level)
		src := width - 1
		dst := 2*width - 1
		for k := 0; k < width; k++ {
			if src+k < len(left.nodes) {
				nodes[dst+k] = left.nodes[src+k]
			}
			if src+k < len(right.nodes) {
				nodes[dst+width+k] = right.nodes[src+k]
			}
		}
	}

	return subtree{nodes: nodes, depth: depth}
}
