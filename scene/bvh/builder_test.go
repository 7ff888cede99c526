package bvh

import (
	"math/rand"
	"testing"

	"github.com/achilleasa/prism/types"
)

type testVolume struct {
	box types.BBox
}

func (v testVolume) BBox() types.BBox {
	return v.box
}

func (v testVolume) Center() types.Vec3 {
	return v.box.Center()
}

func sphereVolume(center types.Vec3, radius float32) BoundedVolume {
	r := types.XYZ(radius, radius, radius)
	return testVolume{types.BBox{Min: center.Sub(r), Max: center.Add(r)}}
}

func boxVolume(min, max types.Vec3) BoundedVolume {
	return testVolume{types.BBox{Min: min, Max: max}}
}

func randomVolumes(seed int64, count int) []BoundedVolume {
	rng := rand.New(rand.NewSource(seed))
	items := make([]BoundedVolume, count)
	for index := range items {
		center := types.XYZ(rng.Float32()*100-50, rng.Float32()*100-50, rng.Float32()*100-50)
		items[index] = sphereVolume(center, 0.5+rng.Float32()*3)
	}
	return items
}

func quadrantVolumes() []BoundedVolume {
	return []BoundedVolume{
		boxVolume(types.Vec3{-2, 0, -2}, types.Vec3{-1, 1, -1}),
		boxVolume(types.Vec3{1, 0, -2}, types.Vec3{2, 1, -1}),
		boxVolume(types.Vec3{-2, 0, 1}, types.Vec3{-1, 1, 2}),
		boxVolume(types.Vec3{1, 0, 1}, types.Vec3{2, 1, 2}),
	}
}

var strategies = []Strategy{BottomUp, TopDown}

func TestEmptyInput(t *testing.T) {
	for _, strategy := range strategies {
		tree := Build(nil, strategy)
		if tree.Len() != 0 || tree.Depth != 0 {
			t.Fatalf("[%s] expected empty tree with depth 0; got %d nodes with depth %d", strategy, tree.Len(), tree.Depth)
		}
		if !tree.BBox().IsEmpty() {
			t.Fatalf("[%s] expected empty tree bbox to be empty", strategy)
		}
	}
}

func TestSingleSphere(t *testing.T) {
	items := []BoundedVolume{sphereVolume(types.XYZ(2, 3, 4), 5)}

	for _, strategy := range strategies {
		tree := Build(items, strategy)
		if tree.Len() != 1 || tree.Depth != 1 {
			t.Fatalf("[%s] expected a single node tree with depth 1; got %d nodes with depth %d", strategy, tree.Len(), tree.Depth)
		}

		node := tree.Nodes[0]
		if node.Index != 0 {
			t.Fatalf("[%s] expected leaf index 0; got %d", strategy, node.Index)
		}
		expMin, expMax := types.XYZ(-3, -2, -1), types.XYZ(7, 8, 9)
		if node.Min != expMin || node.Max != expMax {
			t.Fatalf("[%s] expected leaf box %v - %v; got %v - %v", strategy, expMin, expMax, node.Min, node.Max)
		}
	}
}

func TestTwoSpheres(t *testing.T) {
	items := []BoundedVolume{
		sphereVolume(types.XYZ(0, 0, 0), 1),
		sphereVolume(types.XYZ(10, 0, 0), 1),
	}

	for _, strategy := range strategies {
		tree, stats := BuildWithStats(items, strategy)
		if tree.Depth != 2 {
			t.Fatalf("[%s] expected depth 2; got %d", strategy, tree.Depth)
		}
		if tree.Len() != 3 {
			t.Fatalf("[%s] expected 3 nodes; got %d", strategy, tree.Len())
		}

		root := tree.Nodes[0]
		expMin, expMax := types.XYZ(-1, -1, -1), types.XYZ(11, 1, 1)
		if root.Min != expMin || root.Max != expMax {
			t.Fatalf("[%s] expected root box %v - %v; got %v - %v", strategy, expMin, expMax, root.Min, root.Max)
		}
		if root.IsLeaf() {
			t.Fatalf("[%s] expected root to be an internal node", strategy)
		}

		if strategy == BottomUp && stats.Rounds != 1 {
			t.Fatalf("[%s] expected 1 pairing round; got %d", strategy, stats.Rounds)
		}

		leaves := tree.Leaves()
		if len(leaves) != 2 || leaves[0] != 0 || leaves[1] != 1 {
			t.Fatalf("[%s] expected leaves [0 1]; got %v", strategy, leaves)
		}
	}
}

func TestBottomUpPowerOfTwo(t *testing.T) {
	for _, count := range []int{2, 4, 8, 16, 32} {
		items := randomVolumes(int64(count), count)
		tree, stats := BuildWithStats(items, BottomUp)

		if tree.Len() != 2*count-1 {
			t.Fatalf("[%d items] expected %d nodes; got %d", count, 2*count-1, tree.Len())
		}
		if stats.Leaves != count || stats.Internal != count-1 || stats.Empty != 0 {
			t.Fatalf("[%d items] expected %d leaves, %d internal and 0 padding nodes; got %d, %d, %d", count, count, count-1, stats.Leaves, stats.Internal, stats.Empty)
		}
		if expRounds := ceilLog2(count); stats.Rounds != expRounds {
			t.Fatalf("[%d items] expected %d rounds; got %d", count, expRounds, stats.Rounds)
		}
		if err := Validate(tree, items); err != nil {
			t.Fatalf("[%d items] %v", count, err)
		}
	}
}

func TestBottomUpArbitraryCount(t *testing.T) {
	for count := 1; count <= 37; count++ {
		items := randomVolumes(int64(1000+count), count)
		tree, stats := BuildWithStats(items, BottomUp)

		if expRounds := ceilLog2(count); stats.Rounds != expRounds {
			t.Fatalf("[%d items] expected %d rounds; got %d", count, expRounds, stats.Rounds)
		}
		if stats.Leaves != count || stats.LeftOut != 0 {
			t.Fatalf("[%d items] expected every item in its own leaf; got %d leaves and %d left out", count, stats.Leaves, stats.LeftOut)
		}
		if stats.Internal != count-1 {
			t.Fatalf("[%d items] expected %d internal nodes; got %d", count, count-1, stats.Internal)
		}
		if err := Validate(tree, items); err != nil {
			t.Fatalf("[%d items] %v", count, err)
		}
		if !RootEnclosesLeaves(tree) {
			t.Fatalf("[%d items] expected root to enclose all leaves", count)
		}
	}
}

func TestBottomUpUnevenMerge(t *testing.T) {
	items := []BoundedVolume{
		sphereVolume(types.XYZ(0, 0, 0), 1),
		sphereVolume(types.XYZ(3, 0, 0), 1),
		sphereVolume(types.XYZ(10, 0, 0), 1),
	}

	tree, stats := BuildWithStats(items, BottomUp)
	if stats.Rounds != 2 {
		t.Fatalf("expected 2 rounds; got %d", stats.Rounds)
	}
	if tree.Len() != 7 || tree.Depth != 3 {
		t.Fatalf("expected 7 nodes with depth 3; got %d nodes with depth %d", tree.Len(), tree.Depth)
	}

	// The lone sphere is carried over from the first round and ends up as
	// the left child of the root. The paired spheres form the right subtree.
	if tree.Nodes[1].Index != 2 {
		t.Fatalf("expected node 1 to be leaf 2; got %s", tree.Nodes[1])
	}
	if tree.Nodes[2].IsLeaf() || tree.Nodes[2].IsEmpty() {
		t.Fatalf("expected node 2 to be an internal node; got %s", tree.Nodes[2])
	}
	if !tree.Nodes[3].IsEmpty() || !tree.Nodes[4].IsEmpty() {
		t.Fatalf("expected nodes 3 and 4 to be padding; got %s, %s", tree.Nodes[3], tree.Nodes[4])
	}
	if tree.Nodes[5].Index != 0 || tree.Nodes[6].Index != 1 {
		t.Fatalf("expected nodes 5 and 6 to be leaves 0 and 1; got %s, %s", tree.Nodes[5], tree.Nodes[6])
	}

	expBox := types.BBox{Min: types.XYZ(-1, -1, -1), Max: types.XYZ(4, 1, 1)}
	if !tree.Nodes[2].BBox().ApproxEqual(expBox, 1e-6) {
		t.Fatalf("expected node 2 box %v; got %v", expBox, tree.Nodes[2].BBox())
	}
	if err := Validate(tree, items); err != nil {
		t.Fatal(err)
	}
}

func TestBottomUpPairsNearestNeighbors(t *testing.T) {
	items := quadrantVolumes()
	tree := Build(items, BottomUp)

	if tree.Len() != 7 {
		t.Fatalf("expected 7 nodes; got %d", tree.Len())
	}

	expLeaves := []int32{0, 1, 2, 3}
	leaves := tree.Leaves()
	for index, exp := range expLeaves {
		if leaves[index] != exp {
			t.Fatalf("expected leaves %v; got %v", expLeaves, leaves)
		}
	}

	expVolume := float32(4 + 4 + 4*1*4)
	if got := tree.InternalVolume(); !types.ApproxEqual(got, expVolume, 1e-5) {
		t.Fatalf("expected internal volume %f; got %f", expVolume, got)
	}
}

func TestBottomUpIdempotent(t *testing.T) {
	items := randomVolumes(42, 23)

	first := Build(items, BottomUp)
	second := Build(items, BottomUp)
	if !Equivalent(first, second, 1e-3) {
		t.Fatal("expected rebuilding from the same items to yield an equivalent tree")
	}
	for index := range first.Nodes {
		if first.Nodes[index] != second.Nodes[index] {
			t.Fatalf("expected node %d to match; got %s and %s", index, first.Nodes[index], second.Nodes[index])
		}
	}
}

func TestTopDownQuadrants(t *testing.T) {
	items := quadrantVolumes()
	tree, stats := BuildWithStats(items, TopDown)

	if tree.Len() != 7 || tree.Depth != 3 {
		t.Fatalf("expected 7 nodes with depth 3; got %d nodes with depth %d", tree.Len(), tree.Depth)
	}
	if stats.LeftOut != 0 {
		t.Fatalf("expected no items to be left out; got %d", stats.LeftOut)
	}

	expLeaves := []int32{0, 2, 1, 3}
	leaves := tree.Leaves()
	for index, exp := range expLeaves {
		if leaves[index] != exp {
			t.Fatalf("expected leaves %v; got %v", expLeaves, leaves)
		}
	}
	if err := Validate(tree, items); err != nil {
		t.Fatal(err)
	}
}

func TestTopDownTrimsTrailingPadding(t *testing.T) {
	items := []BoundedVolume{
		sphereVolume(types.XYZ(0, 0, 0), 1),
		sphereVolume(types.XYZ(3, 0, 0), 1),
		sphereVolume(types.XYZ(10, 0, 0), 1),
	}

	tree := Build(items, TopDown)
	if tree.Len() != 5 || tree.Depth != 3 {
		t.Fatalf("expected 5 nodes with depth 3; got %d nodes with depth %d", tree.Len(), tree.Depth)
	}
	if tree.Nodes[2].Index != 2 {
		t.Fatalf("expected node 2 to be leaf 2; got %s", tree.Nodes[2])
	}
	if tree.Nodes[3].Index != 0 || tree.Nodes[4].Index != 1 {
		t.Fatalf("expected nodes 3 and 4 to be leaves 0 and 1; got %s, %s", tree.Nodes[3], tree.Nodes[4])
	}
	if err := Validate(tree, items); err != nil {
		t.Fatal(err)
	}
}

func TestTopDownDegenerateSplit(t *testing.T) {
	// Identical boxes can never be separated.
	items := []BoundedVolume{
		sphereVolume(types.XYZ(1, 1, 1), 1),
		sphereVolume(types.XYZ(1, 1, 1), 1),
		sphereVolume(types.XYZ(1, 1, 1), 1),
	}

	tree, stats := BuildWithStats(items, TopDown)
	if tree.Len() != 3 {
		t.Fatalf("expected 3 nodes; got %d", tree.Len())
	}
	if tree.Nodes[1].Index != 0 || tree.Nodes[2].Index != 2 {
		t.Fatalf("expected leaves 0 and 2; got %s, %s", tree.Nodes[1], tree.Nodes[2])
	}
	if stats.LeftOut != 1 {
		t.Fatalf("expected 1 item to be left out; got %d", stats.LeftOut)
	}
	if err := Validate(tree, items); err != nil {
		t.Fatal(err)
	}
}

func TestTopDownContainment(t *testing.T) {
	for count := 2; count <= 40; count += 3 {
		items := randomVolumes(int64(2000+count), count)
		tree := Build(items, TopDown)

		if err := Validate(tree, items); err != nil {
			t.Fatalf("[%d items] %v", count, err)
		}
		if !RootEnclosesLeaves(tree) {
			t.Fatalf("[%d items] expected root to enclose all leaves", count)
		}
		if maxDepth := ceilLog2(count) + 1; tree.Depth > maxDepth {
			t.Fatalf("[%d items] expected depth <= %d; got %d", count, maxDepth, tree.Depth)
		}
	}
}

func TestParseStrategy(t *testing.T) {
	specs := []struct {
		in  string
		exp Strategy
	}{
		{"bottom-up", BottomUp},
		{"PAIRING", BottomUp},
		{"top-down", TopDown},
		{"split", TopDown},
	}

	for _, spec := range specs {
		got, err := ParseStrategy(spec.in)
		if err != nil {
			t.Fatal(err)
		}
		if got != spec.exp {
			t.Fatalf("expected %q to parse as %s; got %s", spec.in, spec.exp, got)
		}
	}

	if _, err := ParseStrategy("octree"); err == nil {
		t.Fatal("expected an error for an unknown strategy")
	}
}
