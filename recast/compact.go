package recast

import (
	"github.com/ttvmkos/r5nav/common"
)

// / Provides information on the content of a cell column in a compact heightfield.
type RcCompactCell struct {
	Index uint32 ///< Index to the first span in the column.
	Count uint32 ///< Number of spans in the column.
}

// / Represents a span of unobstructed space within a compact heightfield.
type RcCompactSpan struct {
	Z   uint16 ///< The lower extent of the span. (Measured from the heightfield's base.)
	Reg uint16 ///< The id of the region the span belongs to. (Or zero if not in a region.)
	Con uint32 ///< Packed neighbor connection data.
	H   uint16 ///< The height of the span. (Measured from #Z.)
}

// / A compact, static heightfield representing unobstructed space.
type RcCompactHeightfield struct {
	Width          int ///< The width of the heightfield. (Along the x-axis in cell units.)
	Height         int ///< The height of the heightfield. (Along the y-axis in cell units.)
	SpanCount      int ///< The number of spans in the heightfield.
	WalkableHeight int ///< The walkable height used during the build of the field.
	WalkableClimb  int ///< The walkable climb used during the build of the field.
	BorderSize     int ///< The AABB border size used during the build of the field.
	MaxDistance    uint16
	MaxRegions     uint16
	Bmin           [3]float32
	Bmax           [3]float32
	Cs             float32
	Ch             float32
	Cells          []RcCompactCell ///< Array of cells. [Size: Width*Height]
	Spans          []RcCompactSpan ///< Array of spans. [Size: SpanCount]
	Dist           []uint16        ///< Array containing border distance data. [Size: SpanCount]
	Areas          []uint8         ///< Array containing area id data. [Size: SpanCount]
}

// / Sets the neighbor connection data for the specified direction.
func RcSetCon(span *RcCompactSpan, direction, neighborIndex int) {
	shift := uint(direction * 6)
	con := span.Con
	span.Con = (con &^ (0x3f << shift)) | (uint32(neighborIndex&0x3f) << shift)
}

// / Gets neighbor connection data for the specified direction.
func RcGetCon(span *RcCompactSpan, direction int) int {
	shift := uint(direction * 6)
	return int((span.Con >> shift) & 0x3f)
}

// / Gets the standard width (x-axis) offset for the specified direction.
func RcGetDirOffsetX(direction int) int {
	offset := [4]int{-1, 0, 1, 0}
	return offset[direction&0x03]
}

// / Gets the standard height (y-axis) offset for the specified direction.
func RcGetDirOffsetY(direction int) int {
	offset := [4]int{0, 1, 0, -1}
	return offset[direction&0x03]
}

// / Gets the direction for the specified offset. One of x and y should be 0.
func RcGetDirForOffset(offsetX, offsetY int) int {
	dirs := [5]int{3, 0, -1, 2, 1}
	return dirs[((offsetY+1)<<1)+offsetX]
}

// / The maximum number of spans that can be contained in a column.
const maxLayers = RC_NOT_CONNECTED - 1

// / Builds a compact heightfield representing open space, from a
// / heightfield representing solid space.
// /
// / The walkable top surfaces of the solid heightfield become the spans of
// / the compact field; connections are recorded to the four neighbours
// / that are within walkableClimb vertically and share at least
// / walkableHeight of headroom.
func RcBuildCompactHeightfield(ctx *BuildContext, walkableHeight, walkableClimb int,
	hf *RcHeightfield) (*RcCompactHeightfield, bool) {

	ctx.StartTimer(RC_TIMER_BUILD_COMPACTHEIGHTFIELD)
	defer ctx.StopTimer(RC_TIMER_BUILD_COMPACTHEIGHTFIELD)

	xSize := hf.Width
	ySize := hf.Height
	spanCount := RcGetHeightFieldSpanCount(hf)

	chf := &RcCompactHeightfield{
		Width:          xSize,
		Height:         ySize,
		SpanCount:      spanCount,
		WalkableHeight: walkableHeight,
		WalkableClimb:  walkableClimb,
		Bmin:           hf.Bmin,
		Bmax:           hf.Bmax,
		Cs:             hf.Cs,
		Ch:             hf.Ch,
		Cells:          make([]RcCompactCell, xSize*ySize),
		Spans:          make([]RcCompactSpan, spanCount),
		Areas:          make([]uint8, spanCount),
	}
	chf.Bmax[2] += float32(walkableHeight) * hf.Ch

	const maxHeight = RC_SPAN_MAX_HEIGHT

	// Fill in cells and spans.
	currentCellIndex := 0
	for y := 0; y < ySize; y++ {
		for x := 0; x < xSize; x++ {
			span := hf.Spans[x+y*xSize]

			// If there are no spans at this cell, just leave the data to index=0, count=0.
			if span == nil {
				continue
			}

			cell := &chf.Cells[x+y*xSize]
			cell.Index = uint32(currentCellIndex)
			cell.Count = 0

			for ; span != nil; span = span.Next {
				if span.Area != RC_NULL_AREA {
					bot := int(span.Smax)
					top := maxHeight
					if span.Next != nil {
						top = int(span.Next.Smin)
					}
					chf.Spans[currentCellIndex].Z = uint16(common.Clamp(bot, 0, 0xffff))
					chf.Spans[currentCellIndex].H = uint16(common.Clamp(top-bot, 0, 0xffff))
					chf.Areas[currentCellIndex] = span.Area
					currentCellIndex++
					cell.Count++
				}
			}
		}
	}

	// Find neighbour connections.
	tooHighNeighbor := 0
	for y := 0; y < ySize; y++ {
		for x := 0; x < xSize; x++ {
			cell := &chf.Cells[x+y*xSize]
			for i := int(cell.Index); i < int(cell.Index+cell.Count); i++ {
				span := &chf.Spans[i]

				for dir := 0; dir < 4; dir++ {
					RcSetCon(span, dir, RC_NOT_CONNECTED)
					neighborX := x + RcGetDirOffsetX(dir)
					neighborY := y + RcGetDirOffsetY(dir)
					// First check that the neighbour cell is in bounds.
					if neighborX < 0 || neighborY < 0 || neighborX >= xSize || neighborY >= ySize {
						continue
					}

					// Iterate over all neighbour spans and check if any of them is
					// accessible from current cell.
					neighborCell := &chf.Cells[neighborX+neighborY*xSize]
					for k := int(neighborCell.Index); k < int(neighborCell.Index+neighborCell.Count); k++ {
						neighborSpan := &chf.Spans[k]
						bot := max(int(span.Z), int(neighborSpan.Z))
						top := min(int(span.Z)+int(span.H), int(neighborSpan.Z)+int(neighborSpan.H))

						// Check that the gap between the spans is walkable,
						// and that the climb height between the gaps is not too high.
						if (top-bot) >= walkableHeight && common.Abs(int(neighborSpan.Z)-int(span.Z)) <= walkableClimb {
							// Mark direction as walkable.
							layerIndex := k - int(neighborCell.Index)
							if layerIndex < 0 || layerIndex > maxLayers {
								tooHighNeighbor = max(tooHighNeighbor, layerIndex)
								continue
							}
							RcSetCon(span, dir, layerIndex)
							break
						}
					}
				}
			}
		}
	}

	if tooHighNeighbor > maxLayers {
		ctx.Errorf("rcBuildCompactHeightfield: Heightfield has too many layers %d (max: %d)", tooHighNeighbor, maxLayers)
	}

	return chf, true
}
