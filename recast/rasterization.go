package recast

import (
	"github.com/ttvmkos/r5nav/common"
)

func overlapInterval(amin, amax, bmin, bmax float32) bool {
	return !(amax < bmin || amin > bmax)
}

// / Divides a convex polygon of max 12 vertices into two convex polygons
// / across a separating axis.
func dividePoly(inVerts []float32, inVertsCount int,
	outVerts1 []float32, outVerts2 []float32,
	axisOffset float32, axis int) (outVerts1Count, outVerts2Count int) {

	var inVertAxisDelta [12]float32

	// How far positive or negative away from the separating axis is each vertex.
	for inVert := 0; inVert < inVertsCount; inVert++ {
		inVertAxisDelta[inVert] = axisOffset - inVerts[inVert*3+axis]
	}

	poly1Vert := 0
	poly2Vert := 0
	for inVertA, inVertB := 0, inVertsCount-1; inVertA < inVertsCount; inVertB, inVertA = inVertA, inVertA+1 {
		// If the two vertices are on the same side of the separating axis.
		sameSide := (inVertAxisDelta[inVertA] >= 0) == (inVertAxisDelta[inVertB] >= 0)

		if !sameSide {
			s := inVertAxisDelta[inVertB] / (inVertAxisDelta[inVertB] - inVertAxisDelta[inVertA])
			outVerts1[poly1Vert*3+0] = inVerts[inVertB*3+0] + (inVerts[inVertA*3+0]-inVerts[inVertB*3+0])*s
			outVerts1[poly1Vert*3+1] = inVerts[inVertB*3+1] + (inVerts[inVertA*3+1]-inVerts[inVertB*3+1])*s
			outVerts1[poly1Vert*3+2] = inVerts[inVertB*3+2] + (inVerts[inVertA*3+2]-inVerts[inVertB*3+2])*s
			common.Vcopy(outVerts2[poly2Vert*3:], outVerts1[poly1Vert*3:])
			poly1Vert++
			poly2Vert++

			// Add the inVertA point to the right polygon. Do NOT add points that are on the dividing line
			// since these were already added above.
			if inVertAxisDelta[inVertA] > 0 {
				common.Vcopy(outVerts1[poly1Vert*3:], inVerts[inVertA*3:])
				poly1Vert++
			} else if inVertAxisDelta[inVertA] < 0 {
				common.Vcopy(outVerts2[poly2Vert*3:], inVerts[inVertA*3:])
				poly2Vert++
			}
		} else {
			// Add the inVertA point to the right polygon. Addition is done even for points on the dividing line.
			if inVertAxisDelta[inVertA] >= 0 {
				common.Vcopy(outVerts1[poly1Vert*3:], inVerts[inVertA*3:])
				poly1Vert++
				if inVertAxisDelta[inVertA] != 0 {
					continue
				}
			}
			common.Vcopy(outVerts2[poly2Vert*3:], inVerts[inVertA*3:])
			poly2Vert++
		}
	}

	return poly1Vert, poly2Vert
}

// / Rasterizes a single triangle into the heightfield. The triangle is
// / clipped against each voxel column it covers and the z-range of the
// / clip becomes a span.
func rasterizeTri(v0, v1, v2 []float32, area uint8, hf *RcHeightfield,
	hfBBMin, hfBBMax []float32, cellSize, inverseCellSize, inverseCellHeight float32,
	flagMergeThreshold int) bool {

	// Calculate the bounding box of the triangle.
	triBBMin := make([]float32, 3)
	common.Vcopy(triBBMin, v0)
	common.Vmin(triBBMin, v1)
	common.Vmin(triBBMin, v2)

	triBBMax := make([]float32, 3)
	common.Vcopy(triBBMax, v0)
	common.Vmax(triBBMax, v1)
	common.Vmax(triBBMax, v2)

	// If the triangle does not touch the bounding box of the heightfield, skip the triangle.
	if !common.OverlapBounds(triBBMin, triBBMax, hfBBMin, hfBBMax) {
		return true
	}

	w := hf.Width
	h := hf.Height
	by := hfBBMax[2] - hfBBMin[2]

	// Calculate the footprint of the triangle on the grid's rows.
	y0 := int((triBBMin[1] - hfBBMin[1]) * inverseCellSize)
	y1 := int((triBBMax[1] - hfBBMin[1]) * inverseCellSize)

	// Use -1 rather than 0 to cut the polygon properly at the start of the tile.
	y0 = common.Clamp(y0, -1, h-1)
	y1 = common.Clamp(y1, 0, h-1)

	// Clip the triangle into all grid cells it touches.
	buf := make([]float32, 7*3*4)
	in := buf[:7*3]
	inRow := buf[7*3 : 7*3*2]
	p1 := buf[7*3*2 : 7*3*3]
	p2 := buf[7*3*3:]

	common.Vcopy(in, v0)
	common.Vcopy(in[3:], v1)
	common.Vcopy(in[6:], v2)
	var nvRow int
	nvIn := 3

	for y := y0; y <= y1; y++ {
		// Clip polygon to row. Store the remaining polygon as well.
		cellY := hfBBMin[1] + float32(y)*cellSize
		nvRow, nvIn = dividePoly(in, nvIn, inRow, p1, cellY+cellSize, 1)
		common.Swap(&in, &p1)

		if nvRow < 3 {
			continue
		}
		if y < 0 {
			continue
		}

		// Find X-axis range of the row.
		minX := inRow[0]
		maxX := inRow[0]
		for vert := 1; vert < nvRow; vert++ {
			minX = min(minX, inRow[vert*3])
			maxX = max(maxX, inRow[vert*3])
		}
		x0 := int((minX - hfBBMin[0]) * inverseCellSize)
		x1 := int((maxX - hfBBMin[0]) * inverseCellSize)
		if x1 < 0 || x0 >= w {
			continue
		}
		x0 = common.Clamp(x0, -1, w-1)
		x1 = common.Clamp(x1, 0, w-1)

		var nv int
		nv2 := nvRow

		for x := x0; x <= x1; x++ {
			// Clip polygon to column. Store the remaining polygon as well.
			cx := hfBBMin[0] + float32(x)*cellSize
			nv, nv2 = dividePoly(inRow, nv2, p1, p2, cx+cellSize, 0)
			common.Swap(&inRow, &p2)

			if nv < 3 {
				continue
			}
			if x < 0 {
				continue
			}

			// Calculate min and max of the span.
			spanMin := p1[2]
			spanMax := p1[2]
			for vert := 1; vert < nv; vert++ {
				spanMin = min(spanMin, p1[vert*3+2])
				spanMax = max(spanMax, p1[vert*3+2])
			}
			spanMin -= hfBBMin[2]
			spanMax -= hfBBMin[2]

			// Skip the span if it's completely outside the heightfield bounding box.
			if spanMax < 0.0 || spanMin > by {
				continue
			}

			// Clamp the span to the heightfield bounding box.
			if spanMin < 0.0 {
				spanMin = 0
			}
			if spanMax > by {
				spanMax = by
			}

			// Snap the span to the heightfield height grid.
			spanMinCellIndex := uint32(common.Clamp(int(common.Floorf(spanMin*inverseCellHeight)), 0, RC_SPAN_MAX_HEIGHT))
			spanMaxCellIndex := uint32(common.Clamp(int(common.Ceilf(spanMax*inverseCellHeight)), int(spanMinCellIndex)+1, RC_SPAN_MAX_HEIGHT))

			if !RcAddSpan(hf, x, y, spanMinCellIndex, spanMaxCellIndex, area, flagMergeThreshold) {
				return false
			}
		}
	}

	return true
}

// / Rasterizes an indexed triangle mesh into the specified heightfield.
// / Spans will only be added for triangles that overlap the heightfield grid.
func RcRasterizeTriangles(ctx *BuildContext, verts []float32, numVerts int,
	tris []int, triAreaIDs []uint8, numTris int,
	hf *RcHeightfield, flagMergeThreshold int) bool {

	ctx.StartTimer(RC_TIMER_RASTERIZE_TRIANGLES)
	defer ctx.StopTimer(RC_TIMER_RASTERIZE_TRIANGLES)

	inverseCellSize := 1.0 / hf.Cs
	inverseCellHeight := 1.0 / hf.Ch
	for triIndex := 0; triIndex < numTris; triIndex++ {
		v0 := verts[tris[triIndex*3+0]*3:]
		v1 := verts[tris[triIndex*3+1]*3:]
		v2 := verts[tris[triIndex*3+2]*3:]
		if !rasterizeTri(v0, v1, v2, triAreaIDs[triIndex], hf, hf.Bmin[:], hf.Bmax[:], hf.Cs, inverseCellSize, inverseCellHeight, flagMergeThreshold) {
			ctx.Errorf("rasterizeTriangles: Out of memory.")
			return false
		}
	}

	return true
}
