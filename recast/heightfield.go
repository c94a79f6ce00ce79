package recast

import (
	"github.com/ttvmkos/r5nav/common"
)

// / Represents a span in a heightfield. Spans within a column are kept
// / sorted by smin and never overlap.
type RcSpan struct {
	Smin uint32 ///< The lower limit of the span. [Limit: < #RC_SPAN_MAX_HEIGHT]
	Smax uint32 ///< The upper limit of the span. [Limit: <= #RC_SPAN_MAX_HEIGHT]
	Area uint8  ///< The area id assigned to the span.
	Next *RcSpan
}

// / A dynamic heightfield representing obstructed space. The field covers
// / Width x Height cells on the xy-plane; span limits run along the z-axis.
type RcHeightfield struct {
	Width  int        ///< The width of the heightfield. (Along the x-axis in cell units.)
	Height int        ///< The height of the heightfield. (Along the y-axis in cell units.)
	Bmin   [3]float32 ///< The minimum bounds in world space. [(x, y, z)]
	Bmax   [3]float32 ///< The maximum bounds in world space. [(x, y, z)]
	Cs     float32    ///< The size of each cell. (On the xy-plane.)
	Ch     float32    ///< The height of each cell. (The minimum increment along the z-axis.)
	Spans  []*RcSpan  ///< Heightfield of spans. [Size: Width*Height]

	freelist *RcSpan
}

// / Initializes a new heightfield.
func RcCreateHeightfield(ctx *BuildContext, width, height int, bmin, bmax []float32, cs, ch float32) *RcHeightfield {
	hf := &RcHeightfield{
		Width:  width,
		Height: height,
		Cs:     cs,
		Ch:     ch,
		Spans:  make([]*RcSpan, width*height),
	}
	copy(hf.Bmin[:], bmin)
	copy(hf.Bmax[:], bmax)
	return hf
}

func (hf *RcHeightfield) allocSpan() *RcSpan {
	if hf.freelist != nil {
		s := hf.freelist
		hf.freelist = s.Next
		*s = RcSpan{}
		return s
	}
	// Batch-allocate to keep span churn off the GC during rasterization.
	pool := make([]RcSpan, RC_SPANS_PER_POOL)
	for i := 0; i < RC_SPANS_PER_POOL-1; i++ {
		pool[i].Next = &pool[i+1]
	}
	hf.freelist = &pool[1]
	return &pool[0]
}

func (hf *RcHeightfield) freeSpan(s *RcSpan) {
	s.Next = hf.freelist
	hf.freelist = s
}

// / Adds a span to the heightfield. If the new span overlaps or touches
// / an existing span, the spans are merged; when their tops are within
// / flagMergeThreshold of each other the higher area id wins.
func RcAddSpan(hf *RcHeightfield, x, y int, smin, smax uint32, area uint8, flagMergeThreshold int) bool {
	if x < 0 || y < 0 || x >= hf.Width || y >= hf.Height {
		return false
	}

	idx := x + y*hf.Width

	s := hf.allocSpan()
	s.Smin = smin
	s.Smax = smax
	s.Area = area
	s.Next = nil

	// Empty cell, add the first span.
	if hf.Spans[idx] == nil {
		hf.Spans[idx] = s
		return true
	}

	var prev *RcSpan
	cur := hf.Spans[idx]

	// Insert and merge spans.
	for cur != nil {
		if cur.Smin > s.Smax {
			// Current span is further than the new span, trigger insert.
			break
		} else if cur.Smax < s.Smin {
			// Current span is before the new span, advance.
			prev = cur
			cur = cur.Next
		} else {
			// Merge spans.
			if cur.Smin < s.Smin {
				s.Smin = cur.Smin
			}
			if cur.Smax > s.Smax {
				s.Smax = cur.Smax
			}

			// Merge flags.
			if common.Abs(int(s.Smax)-int(cur.Smax)) <= flagMergeThreshold {
				s.Area = max(s.Area, cur.Area)
			}

			// Remove current span.
			next := cur.Next
			hf.freeSpan(cur)
			if prev != nil {
				prev.Next = next
			} else {
				hf.Spans[idx] = next
			}
			cur = next
		}
	}

	// Insert new span.
	if prev != nil {
		s.Next = prev.Next
		prev.Next = s
	} else {
		s.Next = hf.Spans[idx]
		hf.Spans[idx] = s
	}

	return true
}

// / Returns the number of spans contained in the heightfield.
func RcGetHeightFieldSpanCount(hf *RcHeightfield) int {
	spanCount := 0
	for i := 0; i < hf.Width*hf.Height; i++ {
		for s := hf.Spans[i]; s != nil; s = s.Next {
			if s.Area != RC_NULL_AREA {
				spanCount++
			}
		}
	}
	return spanCount
}

func calcTriNormal(v0, v1, v2, faceNormal []float32) {
	e0 := make([]float32, 3)
	e1 := make([]float32, 3)
	common.Vsub(e0, v1, v0)
	common.Vsub(e1, v2, v0)
	common.Vcross(faceNormal, e0, e1)
	common.Vnormalize(faceNormal)
}

// / Sets the area id of all triangles with a slope below the specified
// / value to #RC_WALKABLE_AREA.
func RcMarkWalkableTriangles(ctx *BuildContext, walkableSlopeAngle float32,
	verts []float32, numVerts int, tris []int, numTris int, triAreaIDs []uint8) {

	walkableThr := common.Cosf(walkableSlopeAngle / 180.0 * 3.14159265)

	norm := make([]float32, 3)

	for i := 0; i < numTris; i++ {
		tri := tris[i*3 : i*3+3]
		calcTriNormal(verts[tri[0]*3:], verts[tri[1]*3:], verts[tri[2]*3:], norm)
		// Check if the face is walkable.
		if norm[2] > walkableThr {
			triAreaIDs[i] = RC_WALKABLE_AREA
		}
	}
}

// / Sets the area id of all triangles with a slope greater than or equal
// / to the specified value to #RC_NULL_AREA.
func RcClearUnwalkableTriangles(ctx *BuildContext, walkableSlopeAngle float32,
	verts []float32, numVerts int, tris []int, numTris int, triAreaIDs []uint8) {

	walkableThr := common.Cosf(walkableSlopeAngle / 180.0 * 3.14159265)

	norm := make([]float32, 3)

	for i := 0; i < numTris; i++ {
		tri := tris[i*3 : i*3+3]
		calcTriNormal(verts[tri[0]*3:], verts[tri[1]*3:], verts[tri[2]*3:], norm)
		if norm[2] <= walkableThr {
			triAreaIDs[i] = RC_NULL_AREA
		}
	}
}
