package bvh

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/achilleasa/prism/log"
	"github.com/olekukonko/tablewriter"
)

// The strategy used for building a BVH.
type Strategy uint8

const (
	// Merge nearest neighbors bottom-up, minimizing the summed volume of
	// the parent boxes created by each round.
	BottomUp Strategy = iota

	// Recursively split the primitive set along the axis that best
	// balances the item count of both halves.
	TopDown
)

func (s Strategy) String() string {
	switch s {
	case BottomUp:
		return "bottom-up"
	case TopDown:
		return "top-down"
	}
	return "unknown"
}

// Parse a strategy name.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(name) {
	case "bottom-up", "bottomup", "pairing":
		return BottomUp, nil
	case "top-down", "topdown", "split":
		return TopDown, nil
	}
	return BottomUp, fmt.Errorf("bvh: unknown build strategy %q", name)
}

// Statistics collected while building a tree.
type Stats struct {
	Strategy Strategy

	Items    int
	Nodes    int
	Leaves   int
	Internal int
	Empty    int
	Depth    int

	// Number of pairing rounds; only populated by the bottom-up builder.
	Rounds int

	// Number of primitives not referenced by any leaf.
	LeftOut int

	InternalVolume float32
	BuildTime      time.Duration
}

// Format stats as a table.
func (s Stats) String() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Strategy", "Items", "Nodes", "Leaves", "Internal", "Padding", "Depth", "Rounds", "Left out", "Volume", "Build time"})
	table.Append([]string{
		s.Strategy.String(),
		fmt.Sprint(s.Items),
		fmt.Sprint(s.Nodes),
		fmt.Sprint(s.Leaves),
		fmt.Sprint(s.Internal),
		fmt.Sprint(s.Empty),
		fmt.Sprint(s.Depth),
		fmt.Sprint(s.Rounds),
		fmt.Sprint(s.LeftOut),
		fmt.Sprintf("%.3f", s.InternalVolume),
		s.BuildTime.String(),
	})
	table.Render()
	return buf.String()
}

type builder struct {
	logger log.Logger

	// The primitives to partition.
	items []BoundedVolume

	// Stats
	stats Stats
}

// Construct a BVH over a set of bounded volumes using the given strategy.
// Leaf nodes reference primitives by their position in items.
//
// An empty item list yields an empty tree with depth 0. A single item
// yields a tree consisting of a single leaf.
func Build(items []BoundedVolume, strategy Strategy) Tree {
	tree, _ := BuildWithStats(items, strategy)
	return tree
}

// Construct a BVH and return the collected build statistics.
func BuildWithStats(items []BoundedVolume, strategy Strategy) (Tree, Stats) {
	b := &builder{
		logger: log.New("bvh builder"),
		items:  items,
		stats: Stats{
			Strategy: strategy,
			Items:    len(items),
		},
	}

	start := time.Now()

	var nodes []Node
	switch {
	case len(items) == 0:
		// Nothing to build
	case len(items) == 1:
		nodes = []Node{leafNode(items[0].BBox(), 0)}
	case strategy == TopDown:
		nodes = b.buildTopDown()
	default:
		nodes = b.buildBottomUp()
	}

	tree := newTree(nodes)
	b.stats.BuildTime = time.Since(start)
	b.collectStats(tree)

	b.logger.Debugf(
		"BVH tree build time: %d ms, strategy: %s, items: %d, depth: %d, nodes: %d, leafs: %d",
		b.stats.BuildTime.Nanoseconds()/1e6,
		strategy, len(items), tree.Depth, b.stats.Nodes, b.stats.Leaves,
	)
	if b.stats.LeftOut > 0 {
		b.logger.Warningf("%d of %d items were left out of the %s tree", b.stats.LeftOut, len(items), strategy)
	}

	return tree, b.stats
}

// Update stats using the final tree.
func (b *builder) collectStats(tree Tree) {
	b.stats.Nodes = len(tree.Nodes)
	b.stats.Depth = tree.Depth
	b.stats.InternalVolume = tree.InternalVolume()

	seen := make(map[int32]struct{}, len(b.items))
	for _, n := range tree.Nodes {
		switch {
		case n.IsLeaf():
			b.stats.Leaves++
			seen[n.Index] = struct{}{}
		case n.IsEmpty():
			b.stats.Empty++
		default:
			b.stats.Internal++
		}
	}
	b.stats.LeftOut = len(b.items) - len(seen)
}
