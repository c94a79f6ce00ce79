package recast

import (
	"testing"
)

func assertTrue(t *testing.T, value bool, msg string) {
	t.Helper()
	if !value {
		t.Errorf(msg)
	}
}

func testContext() *BuildContext {
	ctx := NewBuildContext(nil)
	ctx.EnableLog(false)
	return ctx
}

func TestCalcBounds(t *testing.T) {
	verts := []float32{
		1, 2, 3,
		0, 2, 6,
		4, 1, 3,
	}
	bmin := make([]float32, 3)
	bmax := make([]float32, 3)
	RcCalcBounds(verts, 3, bmin, bmax)
	assertTrue(t, bmin[0] == 0 && bmin[1] == 1 && bmin[2] == 3, "Min bounds")
	assertTrue(t, bmax[0] == 4 && bmax[1] == 2 && bmax[2] == 6, "Max bounds")
}

func TestCalcGridSize(t *testing.T) {
	bmin := []float32{0, 0, 0}
	bmax := []float32{10, 5, 2}
	var w, h int
	RcCalcGridSize(bmin, bmax, 0.5, &w, &h)
	assertTrue(t, w == 20, "Grid width")
	assertTrue(t, h == 10, "Grid height")
}

func TestAddSpanSortedAndMerged(t *testing.T) {
	ctx := testContext()
	bmin := []float32{0, 0, 0}
	bmax := []float32{4, 4, 4}
	hf := RcCreateHeightfield(ctx, 8, 8, bmin, bmax, 0.5, 0.5)

	assertTrue(t, RcAddSpan(hf, 1, 1, 4, 6, RC_WALKABLE_AREA, 1), "Add first span")
	assertTrue(t, RcAddSpan(hf, 1, 1, 0, 2, RC_WALKABLE_AREA, 1), "Add lower span")

	s := hf.Spans[1+1*8]
	assertTrue(t, s != nil && s.Smin == 0 && s.Smax == 2, "Spans sorted by smin")
	assertTrue(t, s.Next != nil && s.Next.Smin == 4 && s.Next.Smax == 6, "Second span follows")
	assertTrue(t, s.Next.Next == nil, "Two spans total")

	// Overlapping span merges; the higher area id wins near the top.
	assertTrue(t, RcAddSpan(hf, 1, 1, 1, 5, 1, 1), "Add overlapping span")
	s = hf.Spans[1+1*8]
	assertTrue(t, s.Smin == 0 && s.Smax == 6, "Merged extents")
	assertTrue(t, s.Next == nil, "Single merged span")
	assertTrue(t, s.Area == RC_WALKABLE_AREA, "Higher area id wins on merge")
}

func TestMarkWalkableTriangles(t *testing.T) {
	ctx := testContext()
	// One flat triangle and one vertical wall.
	verts := []float32{
		0, 0, 0,
		10, 0, 0,
		0, 10, 0,
		0, 0, 0,
		10, 0, 0,
		10, 0, 10,
	}
	tris := []int{0, 1, 2, 3, 4, 5}
	areas := make([]uint8, 2)

	RcMarkWalkableTriangles(ctx, 45, verts, 6, tris, 2, areas)
	assertTrue(t, areas[0] == RC_WALKABLE_AREA, "Flat triangle is walkable")
	assertTrue(t, areas[1] == RC_NULL_AREA, "Wall triangle is not walkable")
}

func TestRasterizeTriangles(t *testing.T) {
	ctx := testContext()
	// A flat quad at z=0 covering the whole field.
	verts := []float32{
		0, 0, 0,
		4, 0, 0,
		4, 4, 0,
		0, 4, 0,
	}
	tris := []int{0, 1, 2, 0, 2, 3}
	areas := []uint8{RC_WALKABLE_AREA, RC_WALKABLE_AREA}

	bmin := []float32{0, 0, -1}
	bmax := []float32{4, 4, 3}
	hf := RcCreateHeightfield(ctx, 8, 8, bmin, bmax, 0.5, 0.5)

	ok := RcRasterizeTriangles(ctx, verts, 4, tris, areas, 2, hf, 1)
	assertTrue(t, ok, "Rasterization succeeds")
	assertTrue(t, RcGetHeightFieldSpanCount(hf) == 8*8, "Every column has a walkable span")

	// All spans lie at the quad's height.
	for i := 0; i < 8*8; i++ {
		s := hf.Spans[i]
		assertTrue(t, s != nil && s.Next == nil, "One span per column")
		assertTrue(t, s.Area == RC_WALKABLE_AREA, "Span area carries over")
	}
}

func TestFilterWalkableLowHeightSpans(t *testing.T) {
	ctx := testContext()
	bmin := []float32{0, 0, 0}
	bmax := []float32{2, 2, 8}
	hf := RcCreateHeightfield(ctx, 4, 4, bmin, bmax, 0.5, 0.5)

	// Floor span with a ceiling span close above it.
	RcAddSpan(hf, 0, 0, 0, 2, RC_WALKABLE_AREA, 1)
	RcAddSpan(hf, 0, 0, 4, 6, RC_WALKABLE_AREA, 1)
	// Floor span with plenty of headroom.
	RcAddSpan(hf, 1, 0, 0, 2, RC_WALKABLE_AREA, 1)

	RcFilterWalkableLowHeightSpans(ctx, 5, hf)

	assertTrue(t, hf.Spans[0].Area == RC_NULL_AREA, "Low headroom span is cleared")
	assertTrue(t, hf.Spans[1].Area == RC_WALKABLE_AREA, "Open span survives")
}

func TestFilterLedgeSpansFloorSpan(t *testing.T) {
	ctx := testContext()
	bmin := []float32{0, 0, 0}
	bmax := []float32{2, 2, 8}
	hf := RcCreateHeightfield(ctx, 4, 4, bmin, bmax, 0.5, 0.5)

	// A span sitting exactly at the heightfield floor (Smax == 0). Its
	// neighbours all hold spans floating well above it, so the gap from
	// the floor up to their undersides is walkable-height wide, but the
	// implicit ground below them sits walkableClimb under the floor span,
	// a drop that is not more than walkableClimb, so not a ledge.
	RcAddSpan(hf, 1, 1, 0, 0, RC_WALKABLE_AREA, 1)
	RcAddSpan(hf, 0, 1, 8, 10, RC_WALKABLE_AREA, 1)
	RcAddSpan(hf, 2, 1, 8, 10, RC_WALKABLE_AREA, 1)
	RcAddSpan(hf, 1, 0, 8, 10, RC_WALKABLE_AREA, 1)
	RcAddSpan(hf, 1, 2, 8, 10, RC_WALKABLE_AREA, 1)

	// A true ledge: a raised span whose neighbour columns are empty.
	RcAddSpan(hf, 3, 3, 4, 6, RC_WALKABLE_AREA, 1)

	RcFilterLedgeSpans(ctx, 5, 2, hf)

	assertTrue(t, hf.Spans[1+1*4].Area == RC_WALKABLE_AREA, "Floor span is not a ledge")
	assertTrue(t, hf.Spans[3+3*4].Area == RC_NULL_AREA, "Raised span over the void is a ledge")
}

func TestFilterLowHangingWalkableObstacles(t *testing.T) {
	ctx := testContext()
	bmin := []float32{0, 0, 0}
	bmax := []float32{2, 2, 8}
	hf := RcCreateHeightfield(ctx, 4, 4, bmin, bmax, 0.5, 0.5)

	// Walkable span with a short non-walkable obstacle on top.
	RcAddSpan(hf, 0, 0, 0, 2, RC_WALKABLE_AREA, 1)
	RcAddSpan(hf, 0, 0, 3, 4, RC_NULL_AREA, 1)

	RcFilterLowHangingWalkableObstacles(ctx, 2, hf)

	s := hf.Spans[0]
	assertTrue(t, s.Next != nil && s.Next.Area == RC_WALKABLE_AREA, "Low obstacle is promoted to walkable")
}

// Builds a compact heightfield over a flat quad and checks the
// neighbour connections.
func TestBuildCompactHeightfield(t *testing.T) {
	ctx := testContext()
	verts := []float32{
		0, 0, 0,
		4, 0, 0,
		4, 4, 0,
		0, 4, 0,
	}
	tris := []int{0, 1, 2, 0, 2, 3}
	areas := []uint8{RC_WALKABLE_AREA, RC_WALKABLE_AREA}

	bmin := []float32{0, 0, -1}
	bmax := []float32{4, 4, 3}
	hf := RcCreateHeightfield(ctx, 8, 8, bmin, bmax, 0.5, 0.5)
	RcRasterizeTriangles(ctx, verts, 4, tris, areas, 2, hf, 1)

	chf, ok := RcBuildCompactHeightfield(ctx, 4, 2, hf)
	assertTrue(t, ok, "Compact build succeeds")
	assertTrue(t, chf.SpanCount == 8*8, "All spans survive")

	// An interior span connects in all four directions.
	c := &chf.Cells[4+4*8]
	s := &chf.Spans[c.Index]
	for dir := 0; dir < 4; dir++ {
		assertTrue(t, RcGetCon(s, dir) != RC_NOT_CONNECTED, "Interior span connects to all neighbours")
	}

	// A corner span has only two connections.
	c = &chf.Cells[0]
	s = &chf.Spans[c.Index]
	ncons := 0
	for dir := 0; dir < 4; dir++ {
		if RcGetCon(s, dir) != RC_NOT_CONNECTED {
			ncons++
		}
	}
	assertTrue(t, ncons == 2, "Corner span connects to two neighbours")
}

// Runs the voxel pipeline end to end on a flat quad for each partition
// strategy and checks that a sane polymesh comes out.
func TestPipelineFlatQuad(t *testing.T) {
	for _, partition := range []int{RC_PARTITION_WATERSHED, RC_PARTITION_MONOTONE, RC_PARTITION_LAYERS} {
		pmesh, dmesh := buildFlatQuad(t, partition)

		assertTrue(t, pmesh.NPolys >= 1, "At least one polygon")
		assertTrue(t, pmesh.NVerts >= 4, "At least four vertices")
		for i := 0; i < pmesh.NPolys; i++ {
			assertTrue(t, pmesh.Areas[i] == RC_WALKABLE_AREA, "Polygon is walkable")
			assertTrue(t, pmesh.Surfa[i] > 0, "Polygon has a surface area")
		}

		assertTrue(t, dmesh.NMeshes == pmesh.NPolys, "One detail sub-mesh per polygon")
		assertTrue(t, dmesh.NTris > 0, "Detail mesh has triangles")

		// Detail triangle edge flags stay within 2 bits per edge.
		for i := 0; i < dmesh.NTris; i++ {
			flags := dmesh.Tris[i*4+3]
			assertTrue(t, flags&^0x3f == 0, "Detail edge flags use 2 bits per edge")
		}
	}
}

func buildFlatQuad(t *testing.T, partition int) (*RcPolyMesh, *RcPolyMeshDetail) {
	t.Helper()
	ctx := testContext()

	verts := []float32{
		0, 0, 0,
		16, 0, 0,
		16, 16, 0,
		0, 16, 0,
	}
	tris := []int{0, 1, 2, 0, 2, 3}
	areas := []uint8{0, 0}

	cs := float32(0.5)
	ch := float32(0.5)
	bmin := []float32{-2, -2, -1}
	bmax := []float32{18, 18, 3}

	var w, h int
	RcCalcGridSize(bmin, bmax, cs, &w, &h)

	hf := RcCreateHeightfield(ctx, w, h, bmin, bmax, cs, ch)
	RcMarkWalkableTriangles(ctx, 45, verts, 4, tris, 2, areas)
	assertTrue(t, RcRasterizeTriangles(ctx, verts, 4, tris, areas, 2, hf, 2), "Rasterize quad")

	RcFilterLowHangingWalkableObstacles(ctx, 2, hf)
	RcFilterLedgeSpans(ctx, 8, 2, hf)
	RcFilterWalkableLowHeightSpans(ctx, 8, hf)

	chf, ok := RcBuildCompactHeightfield(ctx, 8, 2, hf)
	assertTrue(t, ok, "Compact build")

	assertTrue(t, RcErodeWalkableArea(ctx, 2, chf), "Erode")

	switch partition {
	case RC_PARTITION_WATERSHED:
		assertTrue(t, RcBuildDistanceField(ctx, chf), "Distance field")
		assertTrue(t, RcBuildRegions(ctx, chf, 0, 4, 20), "Watershed regions")
	case RC_PARTITION_MONOTONE:
		assertTrue(t, RcBuildRegionsMonotone(ctx, chf, 0, 4, 20), "Monotone regions")
	default:
		assertTrue(t, RcBuildLayerRegions(ctx, chf, 0, 4), "Layer regions")
	}

	cset, ok := RcBuildContours(ctx, chf, 1.3, 40, RC_CONTOUR_TESS_WALL_EDGES)
	assertTrue(t, ok, "Contours")
	assertTrue(t, len(cset.Conts) > 0, "At least one contour")

	pmesh, ok := RcBuildPolyMesh(ctx, cset, 6)
	assertTrue(t, ok, "Polymesh")

	dmesh, ok := RcBuildPolyMeshDetail(ctx, pmesh, chf, 3.0, 0.5)
	assertTrue(t, ok, "Detail mesh")

	return pmesh, dmesh
}
