package types

import "testing"

func TestEmptyBBox(t *testing.T) {
	box := EmptyBBox()
	if !box.IsEmpty() {
		t.Fatal("expected EmptyBBox() to be empty")
	}
	if box.Volume() != 0 {
		t.Fatalf("expected empty box volume to be 0; got %f", box.Volume())
	}

	other := BBox{Min: XYZ(-1, -2, -3), Max: XYZ(1, 2, 3)}
	if got := box.Union(other); got != other {
		t.Fatalf("expected union with empty box to be %v; got %v", other, got)
	}
	if !other.Contains(box, 0) {
		t.Fatal("expected every box to contain the empty box")
	}
}

func TestBBoxFromPoints(t *testing.T) {
	box := BBoxFromPoints(XYZ(1, 5, -1), XYZ(-2, 0, 4), XYZ(0, 2, 0))
	exp := BBox{Min: XYZ(-2, 0, -1), Max: XYZ(1, 5, 4)}
	if box != exp {
		t.Fatalf("expected box to be %v; got %v", exp, box)
	}

	if vol := box.Volume(); vol != 75 {
		t.Fatalf("expected volume to be 75; got %f", vol)
	}
	if c := box.Center(); c != XYZ(-0.5, 2.5, 1.5) {
		t.Fatalf("expected center to be (-0.5, 2.5, 1.5); got %v", c)
	}
}

func TestBBoxOverlapsAndContains(t *testing.T) {
	a := BBox{Min: XYZ(0, 0, 0), Max: XYZ(2, 2, 2)}
	specs := []struct {
		box      BBox
		overlaps bool
		inside   bool
	}{
		{BBox{Min: XYZ(0.5, 0.5, 0.5), Max: XYZ(1, 1, 1)}, true, true},
		{BBox{Min: XYZ(1, 1, 1), Max: XYZ(3, 3, 3)}, true, false},
		{BBox{Min: XYZ(2, 0, 0), Max: XYZ(3, 1, 1)}, true, false},
		{BBox{Min: XYZ(2.5, 0, 0), Max: XYZ(3, 1, 1)}, false, false},
	}

	for index, spec := range specs {
		if got := a.Overlaps(spec.box); got != spec.overlaps {
			t.Fatalf("[spec %d] expected Overlaps to return %t; got %t", index, spec.overlaps, got)
		}
		if got := a.Contains(spec.box, 0); got != spec.inside {
			t.Fatalf("[spec %d] expected Contains to return %t; got %t", index, spec.inside, got)
		}
	}
}

func TestBBoxTransform(t *testing.T) {
	box := BBox{Min: XYZ(-1, -1, -1), Max: XYZ(1, 1, 1)}
	m := TRS(XYZ(10, 0, 0), XYZ(0, 0, 0), XYZ(2, 1, 1))

	got := box.Transform(m)
	exp := BBox{Min: XYZ(8, -1, -1), Max: XYZ(12, 1, 1)}
	if !got.ApproxEqual(exp, 1e-5) {
		t.Fatalf("expected transformed box to be %v; got %v", exp, got)
	}
}
