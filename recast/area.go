package recast

import (
	"github.com/ttvmkos/r5nav/common"
)

// / Erodes the walkable area within the heightfield by the specified
// / radius. Cells closer than the radius to an obstruction are removed
// / from the walkable area.
func RcErodeWalkableArea(ctx *BuildContext, erosionRadius int, chf *RcCompactHeightfield) bool {
	ctx.StartTimer(RC_TIMER_ERODE_AREA)
	defer ctx.StopTimer(RC_TIMER_ERODE_AREA)

	xSize := chf.Width
	ySize := chf.Height

	distanceToBoundary := make([]uint8, chf.SpanCount)
	for i := range distanceToBoundary {
		distanceToBoundary[i] = 0xff
	}

	// Mark boundary cells.
	for y := 0; y < ySize; y++ {
		for x := 0; x < xSize; x++ {
			cell := &chf.Cells[x+y*xSize]
			for i := int(cell.Index); i < int(cell.Index+cell.Count); i++ {
				if chf.Areas[i] == RC_NULL_AREA {
					distanceToBoundary[i] = 0
					continue
				}
				span := &chf.Spans[i]

				// Check that there is a non-null adjacent span in each of the 4 cardinal directions.
				neighborCount := 0
				for direction := 0; direction < 4; direction++ {
					if RcGetCon(span, direction) == RC_NOT_CONNECTED {
						break
					}
					neighborX := x + RcGetDirOffsetX(direction)
					neighborY := y + RcGetDirOffsetY(direction)
					neighborSpanIndex := int(chf.Cells[neighborX+neighborY*xSize].Index) + RcGetCon(span, direction)
					if chf.Areas[neighborSpanIndex] == RC_NULL_AREA {
						break
					}
					neighborCount++
				}

				// At least one missing neighbour, so this is a boundary cell.
				if neighborCount != 4 {
					distanceToBoundary[i] = 0
				}
			}
		}
	}

	// Pass 1
	for y := 0; y < ySize; y++ {
		for x := 0; x < xSize; x++ {
			cell := &chf.Cells[x+y*xSize]
			maxSpanIndex := int(cell.Index + cell.Count)
			for spanIndex := int(cell.Index); spanIndex < maxSpanIndex; spanIndex++ {
				span := &chf.Spans[spanIndex]

				if RcGetCon(span, 0) != RC_NOT_CONNECTED {
					// (-1,0)
					aX := x + RcGetDirOffsetX(0)
					aY := y + RcGetDirOffsetY(0)
					aIndex := int(chf.Cells[aX+aY*xSize].Index) + RcGetCon(span, 0)
					aSpan := &chf.Spans[aIndex]
					newDistance := min(int(distanceToBoundary[aIndex])+2, 255)
					if newDistance < int(distanceToBoundary[spanIndex]) {
						distanceToBoundary[spanIndex] = uint8(newDistance)
					}

					// (-1,-1)
					if RcGetCon(aSpan, 3) != RC_NOT_CONNECTED {
						bX := aX + RcGetDirOffsetX(3)
						bY := aY + RcGetDirOffsetY(3)
						bIndex := int(chf.Cells[bX+bY*xSize].Index) + RcGetCon(aSpan, 3)
						newDistance = min(int(distanceToBoundary[bIndex])+3, 255)
						if newDistance < int(distanceToBoundary[spanIndex]) {
							distanceToBoundary[spanIndex] = uint8(newDistance)
						}
					}
				}
				if RcGetCon(span, 3) != RC_NOT_CONNECTED {
					// (0,-1)
					aX := x + RcGetDirOffsetX(3)
					aY := y + RcGetDirOffsetY(3)
					aIndex := int(chf.Cells[aX+aY*xSize].Index) + RcGetCon(span, 3)
					aSpan := &chf.Spans[aIndex]
					newDistance := min(int(distanceToBoundary[aIndex])+2, 255)
					if newDistance < int(distanceToBoundary[spanIndex]) {
						distanceToBoundary[spanIndex] = uint8(newDistance)
					}

					// (1,-1)
					if RcGetCon(aSpan, 2) != RC_NOT_CONNECTED {
						bX := aX + RcGetDirOffsetX(2)
						bY := aY + RcGetDirOffsetY(2)
						bIndex := int(chf.Cells[bX+bY*xSize].Index) + RcGetCon(aSpan, 2)
						newDistance = min(int(distanceToBoundary[bIndex])+3, 255)
						if newDistance < int(distanceToBoundary[spanIndex]) {
							distanceToBoundary[spanIndex] = uint8(newDistance)
						}
					}
				}
			}
		}
	}

	// Pass 2
	for y := ySize - 1; y >= 0; y-- {
		for x := xSize - 1; x >= 0; x-- {
			cell := &chf.Cells[x+y*xSize]
			maxSpanIndex := int(cell.Index + cell.Count)
			for spanIndex := int(cell.Index); spanIndex < maxSpanIndex; spanIndex++ {
				span := &chf.Spans[spanIndex]

				if RcGetCon(span, 2) != RC_NOT_CONNECTED {
					// (1,0)
					aX := x + RcGetDirOffsetX(2)
					aY := y + RcGetDirOffsetY(2)
					aIndex := int(chf.Cells[aX+aY*xSize].Index) + RcGetCon(span, 2)
					aSpan := &chf.Spans[aIndex]
					newDistance := min(int(distanceToBoundary[aIndex])+2, 255)
					if newDistance < int(distanceToBoundary[spanIndex]) {
						distanceToBoundary[spanIndex] = uint8(newDistance)
					}

					// (1,1)
					if RcGetCon(aSpan, 1) != RC_NOT_CONNECTED {
						bX := aX + RcGetDirOffsetX(1)
						bY := aY + RcGetDirOffsetY(1)
						bIndex := int(chf.Cells[bX+bY*xSize].Index) + RcGetCon(aSpan, 1)
						newDistance = min(int(distanceToBoundary[bIndex])+3, 255)
						if newDistance < int(distanceToBoundary[spanIndex]) {
							distanceToBoundary[spanIndex] = uint8(newDistance)
						}
					}
				}
				if RcGetCon(span, 1) != RC_NOT_CONNECTED {
					// (0,1)
					aX := x + RcGetDirOffsetX(1)
					aY := y + RcGetDirOffsetY(1)
					aIndex := int(chf.Cells[aX+aY*xSize].Index) + RcGetCon(span, 1)
					aSpan := &chf.Spans[aIndex]
					newDistance := min(int(distanceToBoundary[aIndex])+2, 255)
					if newDistance < int(distanceToBoundary[spanIndex]) {
						distanceToBoundary[spanIndex] = uint8(newDistance)
					}

					// (-1,1)
					if RcGetCon(aSpan, 0) != RC_NOT_CONNECTED {
						bX := aX + RcGetDirOffsetX(0)
						bY := aY + RcGetDirOffsetY(0)
						bIndex := int(chf.Cells[bX+bY*xSize].Index) + RcGetCon(aSpan, 0)
						newDistance = min(int(distanceToBoundary[bIndex])+3, 255)
						if newDistance < int(distanceToBoundary[spanIndex]) {
							distanceToBoundary[spanIndex] = uint8(newDistance)
						}
					}
				}
			}
		}
	}

	minBoundaryDistance := uint8(erosionRadius * 2)

	for spanIndex := 0; spanIndex < chf.SpanCount; spanIndex++ {
		if distanceToBoundary[spanIndex] < minBoundaryDistance {
			chf.Areas[spanIndex] = RC_NULL_AREA
		}
	}

	return true
}

// / Applies the area id to all spans within the specified bounding box.
func RcMarkBoxArea(ctx *BuildContext, boxMinBounds, boxMaxBounds []float32, areaId uint8, chf *RcCompactHeightfield) {
	ctx.StartTimer(RC_TIMER_MARK_CONVEXPOLY_AREA)
	defer ctx.StopTimer(RC_TIMER_MARK_CONVEXPOLY_AREA)

	xSize := chf.Width
	ySize := chf.Height

	minX := int((boxMinBounds[0] - chf.Bmin[0]) / chf.Cs)
	minY := int((boxMinBounds[1] - chf.Bmin[1]) / chf.Cs)
	minZ := int((boxMinBounds[2] - chf.Bmin[2]) / chf.Ch)
	maxX := int((boxMaxBounds[0] - chf.Bmin[0]) / chf.Cs)
	maxY := int((boxMaxBounds[1] - chf.Bmin[1]) / chf.Cs)
	maxZ := int((boxMaxBounds[2] - chf.Bmin[2]) / chf.Ch)

	minX = common.Clamp(minX, 0, xSize-1)
	maxX = common.Clamp(maxX, 0, xSize-1)
	minY = common.Clamp(minY, 0, ySize-1)
	maxY = common.Clamp(maxY, 0, ySize-1)

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			cell := &chf.Cells[x+y*xSize]
			for i := int(cell.Index); i < int(cell.Index+cell.Count); i++ {
				span := &chf.Spans[i]
				if chf.Areas[i] == RC_NULL_AREA {
					continue
				}
				if int(span.Z) >= minZ && int(span.Z) <= maxZ {
					chf.Areas[i] = areaId
				}
			}
		}
	}
}

// / Applies the area id to the all spans within the specified convex
// / polygon, between the heights hmin and hmax. The z-values of the
// / polygon vertices are ignored.
func RcMarkConvexPolyArea(ctx *BuildContext, verts []float32, numVerts int,
	hmin, hmax float32, areaId uint8, chf *RcCompactHeightfield) {

	ctx.StartTimer(RC_TIMER_MARK_CONVEXPOLY_AREA)
	defer ctx.StopTimer(RC_TIMER_MARK_CONVEXPOLY_AREA)

	xSize := chf.Width
	ySize := chf.Height

	bmin := make([]float32, 3)
	bmax := make([]float32, 3)
	common.Vcopy(bmin, verts)
	common.Vcopy(bmax, verts)
	for i := 1; i < numVerts; i++ {
		common.Vmin(bmin, verts[i*3:])
		common.Vmax(bmax, verts[i*3:])
	}
	bmin[2] = hmin
	bmax[2] = hmax

	minx := int((bmin[0] - chf.Bmin[0]) / chf.Cs)
	miny := int((bmin[1] - chf.Bmin[1]) / chf.Cs)
	minz := int((bmin[2] - chf.Bmin[2]) / chf.Ch)
	maxx := int((bmax[0] - chf.Bmin[0]) / chf.Cs)
	maxy := int((bmax[1] - chf.Bmin[1]) / chf.Cs)
	maxz := int((bmax[2] - chf.Bmin[2]) / chf.Ch)

	if maxx < 0 || minx >= xSize || maxy < 0 || miny >= ySize {
		return
	}

	minx = common.Clamp(minx, 0, xSize-1)
	maxx = common.Clamp(maxx, 0, xSize-1)
	miny = common.Clamp(miny, 0, ySize-1)
	maxy = common.Clamp(maxy, 0, ySize-1)

	point := make([]float32, 3)
	for y := miny; y <= maxy; y++ {
		for x := minx; x <= maxx; x++ {
			cell := &chf.Cells[x+y*xSize]
			for i := int(cell.Index); i < int(cell.Index+cell.Count); i++ {
				span := &chf.Spans[i]
				if chf.Areas[i] == RC_NULL_AREA {
					continue
				}
				if int(span.Z) >= minz && int(span.Z) <= maxz {
					point[0] = chf.Bmin[0] + (float32(x)+0.5)*chf.Cs
					point[1] = chf.Bmin[1] + (float32(y)+0.5)*chf.Cs
					point[2] = 0

					if common.PointInPolygon(point, verts, numVerts) {
						chf.Areas[i] = areaId
					}
				}
			}
		}
	}
}
