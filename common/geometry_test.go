package common

import (
	"testing"
)

func TestClosestPtPointTriangle(t *testing.T) {
	a := []float32{0, 0, 0}
	b := []float32{10, 0, 0}
	c := []float32{0, 10, 0}
	closest := make([]float32, 3)

	// Interior point projects straight down.
	ClosestPtPointTriangle(closest, []float32{2, 2, 5}, a, b, c)
	assertTrue(t, Fabsf(closest[0]-2) < 0.0001 && Fabsf(closest[1]-2) < 0.0001 && closest[2] == 0, "Interior case")

	// Point beyond vertex A clamps to A.
	ClosestPtPointTriangle(closest, []float32{-5, -5, 0}, a, b, c)
	assertTrue(t, closest[0] == 0 && closest[1] == 0, "Vertex A case")

	// Point beyond vertex B clamps to B.
	ClosestPtPointTriangle(closest, []float32{20, -1, 0}, a, b, c)
	assertTrue(t, closest[0] == 10 && closest[1] == 0, "Vertex B case")

	// Point outside edge AB projects onto AB.
	ClosestPtPointTriangle(closest, []float32{5, -3, 0}, a, b, c)
	assertTrue(t, Fabsf(closest[0]-5) < 0.0001 && closest[1] == 0, "Edge AB case")
}

func TestClosestHeightPointTriangle(t *testing.T) {
	a := []float32{0, 0, 0}
	b := []float32{10, 0, 10}
	c := []float32{0, 10, 10}

	h, ok := ClosestHeightPointTriangle([]float32{0, 0, 99}, a, b, c)
	assertTrue(t, ok && Fabsf(h) < 0.0001, "Height at vertex A")

	h, ok = ClosestHeightPointTriangle([]float32{5, 0, 99}, a, b, c)
	assertTrue(t, ok && Fabsf(h-5) < 0.0001, "Height along AB")

	_, ok = ClosestHeightPointTriangle([]float32{20, 20, 0}, a, b, c)
	assertTrue(t, !ok, "Point outside the triangle has no height")
}

func TestIntersectSegmentAABB(t *testing.T) {
	bmin := []float32{0, 0, 0}
	bmax := []float32{10, 10, 10}

	tmin, tmax, hit := IntersectSegmentAABB([]float32{-5, 5, 5}, []float32{15, 5, 5}, bmin, bmax)
	assertTrue(t, hit, "Segment through the box hits")
	assertTrue(t, Fabsf(tmin-0.25) < 0.0001 && Fabsf(tmax-0.75) < 0.0001, "Hit interval")

	_, _, hit = IntersectSegmentAABB([]float32{-5, 20, 5}, []float32{15, 20, 5}, bmin, bmax)
	assertTrue(t, !hit, "Segment beside the box misses")
}

func TestIntersectSegmentCylinder(t *testing.T) {
	pos := []float32{0, 0, 0}

	_, _, hit := IntersectSegmentCylinder([]float32{-10, 0, 5}, []float32{10, 0, 5}, pos, 2, 10)
	assertTrue(t, hit, "Segment through the cylinder hits")

	_, _, hit = IntersectSegmentCylinder([]float32{-10, 5, 5}, []float32{10, 5, 5}, pos, 2, 10)
	assertTrue(t, !hit, "Segment beside the cylinder misses")

	_, _, hit = IntersectSegmentCylinder([]float32{-10, 0, 20}, []float32{10, 0, 20}, pos, 2, 10)
	assertTrue(t, !hit, "Segment above the cylinder misses")
}

func TestIntersectSegmentPoly2D(t *testing.T) {
	// CCW unit-ish quad.
	verts := []float32{
		0, 0, 0,
		10, 0, 0,
		10, 10, 0,
		0, 10, 0,
	}

	tmin, tmax, _, _, hit := IntersectSegmentPoly2D([]float32{-5, 5, 0}, []float32{15, 5, 0}, verts, 4)
	assertTrue(t, hit, "Segment through the polygon hits")
	assertTrue(t, Fabsf(tmin-0.25) < 0.0001 && Fabsf(tmax-0.75) < 0.0001, "Hit interval")

	_, _, _, _, hit = IntersectSegmentPoly2D([]float32{-5, 20, 0}, []float32{15, 20, 0}, verts, 4)
	assertTrue(t, !hit, "Segment outside the polygon misses")
}

func TestIntersectSegmentConvexHull(t *testing.T) {
	verts := []float32{
		0, 0, 0,
		10, 0, 0,
		10, 10, 0,
		0, 10, 0,
	}

	_, _, hit := IntersectSegmentConvexHull([]float32{-5, 5, 5}, []float32{15, 5, 5}, verts, 4, 0, 10)
	assertTrue(t, hit, "Segment through the hull hits")

	_, _, hit = IntersectSegmentConvexHull([]float32{-5, 5, 50}, []float32{15, 5, 50}, verts, 4, 0, 10)
	assertTrue(t, !hit, "Segment above the hull misses")
}

func TestCalcSlopeAngle(t *testing.T) {
	v1 := []float32{0, 0, 0}

	assertTrue(t, Fabsf(CalcSlopeAngle(v1, []float32{10, 0, 0})) < 0.0001, "Flat is zero degrees")
	assertTrue(t, Fabsf(CalcSlopeAngle(v1, []float32{10, 0, 10})-45) < 0.001, "Equal rise and run is 45 degrees")
	assertTrue(t, Fabsf(CalcSlopeAngle(v1, []float32{10, 0, -10})+45) < 0.001, "Falling is negative")
}

func TestCalcMaxLOSAngle(t *testing.T) {
	assertTrue(t, Fabsf(CalcMaxLOSAngle(1, 1)-45) < 0.001, "Square ledge gives 45 degrees")
	assertTrue(t, CalcMaxLOSAngle(10, 1) < 10, "Long ledge gives a shallow angle")
}

func TestCalcLedgeSpanOffsetAmount(t *testing.T) {
	assertTrue(t, Fabsf(CalcLedgeSpanOffsetAmount(4, 45, 45)-4) < 0.001, "Slope at the max angle offsets by the full span")
	assertTrue(t, Fabsf(CalcLedgeSpanOffsetAmount(4, 22.5, 45)-2) < 0.001, "Half the max angle offsets by half the span")
	assertTrue(t, CalcLedgeSpanOffsetAmount(4, 0, 45) == 0, "Flat link needs no offset")
	assertTrue(t, Fabsf(CalcLedgeSpanOffsetAmount(4, 90, 45)-4) < 0.001, "Slope beyond the max angle is clamped")
}

func TestClassifyPointOutsideBounds(t *testing.T) {
	bmin := []float32{0, 0, 0}
	bmax := []float32{10, 10, 10}

	cases := []struct {
		pt   []float32
		side uint8
	}{
		{[]float32{-1, 5, 0}, 0},  // -x
		{[]float32{-1, 11, 0}, 1}, // -x +y
		{[]float32{5, 11, 0}, 2},  // +y
		{[]float32{11, 11, 0}, 3}, // +x +y
		{[]float32{11, 5, 0}, 4},  // +x
		{[]float32{11, -1, 0}, 5}, // +x -y
		{[]float32{5, -1, 0}, 6},  // -y
		{[]float32{-1, -1, 0}, 7}, // -x -y
	}
	for _, c := range cases {
		got := ClassifyPointOutsideBounds(c.pt, bmin, bmax)
		if got != c.side {
			t.Errorf("ClassifyPointOutsideBounds(%v) = %d, want %d", c.pt, got, c.side)
		}
	}

	assertTrue(t, ClassifyPointOutsideBounds([]float32{5, 5, 0}, bmin, bmax) == 0xff, "Inside point is 0xff")
}

func TestClassifyPointInsideBounds(t *testing.T) {
	bmin := []float32{0, 0, 0}
	bmax := []float32{10, 10, 10}

	assertTrue(t, ClassifyPointInsideBounds([]float32{1, 5, 0}, bmin, bmax) == 0, "West point classifies -x")
	assertTrue(t, ClassifyPointInsideBounds([]float32{9, 5, 0}, bmin, bmax) == 4, "East point classifies +x")
	assertTrue(t, ClassifyPointInsideBounds([]float32{5, 9, 0}, bmin, bmax) == 2, "North point classifies +y")
	assertTrue(t, ClassifyPointInsideBounds([]float32{5, 1, 0}, bmin, bmax) == 6, "South point classifies -y")
}

func TestClassifyDirection(t *testing.T) {
	bmin := []float32{0, 0, 0}
	bmax := []float32{10, 10, 10}

	assertTrue(t, ClassifyDirection([]float32{-1, 0, 0}, bmin, bmax) == 0, "-x direction")
	assertTrue(t, ClassifyDirection([]float32{0, 1, 0}, bmin, bmax) == 2, "+y direction")
	assertTrue(t, ClassifyDirection([]float32{1, 0, 0}, bmin, bmax) == 4, "+x direction")
	assertTrue(t, ClassifyDirection([]float32{0, -1, 0}, bmin, bmax) == 6, "-y direction")
}

func TestRandomPointInConvexPoly(t *testing.T) {
	verts := []float32{
		0, 0, 0,
		10, 0, 0,
		10, 10, 0,
		0, 10, 0,
	}
	areas := make([]float32, 4)
	out := make([]float32, 3)

	for _, st := range [][2]float32{{0.1, 0.1}, {0.5, 0.5}, {0.9, 0.9}, {0.0, 1.0}} {
		RandomPointInConvexPoly(verts, 4, areas, st[0], st[1], out)
		assertTrue(t, PointInPolygon(out, verts, 4) || onQuadBoundary(out), "Random point stays inside the polygon")
	}
}

func onQuadBoundary(p []float32) bool {
	return p[0] >= -0.001 && p[0] <= 10.001 && p[1] >= -0.001 && p[1] <= 10.001
}

func TestCalcEdgeNormal2D(t *testing.T) {
	out := make([]float32, 3)

	CalcEdgeNormal2D([]float32{0, 10, 0}, out)
	assertTrue(t, Fabsf(out[0]-1) < 0.0001 && Fabsf(out[1]) < 0.0001, "+y edge has a +x normal")

	CalcEdgeNormalPt2D([]float32{0, 0, 0}, []float32{0, -10, 0}, out)
	assertTrue(t, Fabsf(out[0]+1) < 0.0001 && Fabsf(out[1]) < 0.0001, "-y edge has a -x normal")
}

func TestCalcSubEdgeArea2D(t *testing.T) {
	edgeStart := []float32{0, 0, 0}
	edgeEnd := []float32{10, 0, 0}

	tmin, tmax, ok := CalcSubEdgeArea2D(edgeStart, edgeEnd, []float32{2, 0, 0}, []float32{8, 0, 0})
	assertTrue(t, ok, "Well formed sub edge")
	assertTrue(t, Fabsf(tmin-0.2) < 0.0001 && Fabsf(tmax-0.8) < 0.0001, "Sub edge range")

	_, _, ok = CalcSubEdgeArea2D(edgeStart, edgeEnd, []float32{8, 0, 0}, []float32{2, 0, 0})
	assertTrue(t, !ok, "Flipped sub edge is rejected")
}

func TestCalcEdgeOverlap2D(t *testing.T) {
	axis := []float32{1, 0, 0}

	overlap := CalcEdgeOverlap2D(
		[]float32{0, 0, 0}, []float32{10, 0, 0},
		[]float32{5, 1, 0}, []float32{15, 1, 0}, axis)
	assertTrue(t, Fabsf(overlap-5) < 0.0001, "Half overlapping edges")

	overlap = CalcEdgeOverlap2D(
		[]float32{0, 0, 0}, []float32{10, 0, 0},
		[]float32{20, 1, 0}, []float32{30, 1, 0}, axis)
	assertTrue(t, overlap == 0, "Disjoint edges do not overlap")
}

func TestPointInPolygon(t *testing.T) {
	verts := []float32{
		0, 0, 0,
		10, 0, 0,
		10, 10, 0,
		0, 10, 0,
	}
	assertTrue(t, PointInPolygon([]float32{5, 5, 0}, verts, 4), "Inside")
	assertTrue(t, !PointInPolygon([]float32{15, 5, 0}, verts, 4), "Outside")
}

func TestOverlapPolyPoly2D(t *testing.T) {
	a := []float32{
		0, 0, 0,
		10, 0, 0,
		10, 10, 0,
		0, 10, 0,
	}
	b := []float32{
		5, 5, 0,
		15, 5, 0,
		15, 15, 0,
		5, 15, 0,
	}
	c := []float32{
		20, 20, 0,
		30, 20, 0,
		30, 30, 0,
		20, 30, 0,
	}
	assertTrue(t, OverlapPolyPoly2D(a, 4, b, 4), "Overlapping polygons")
	assertTrue(t, !OverlapPolyPoly2D(a, 4, c, 4), "Disjoint polygons")
}
