package recast

import (
	"github.com/ttvmkos/r5nav/common"
)

// / Marks non-walkable spans as walkable if their maximum is within
// / walkableClimb of a walkable neighbor below them.
// /
// / Allows the formation of walkable regions that will flow over low lying
// / objects such as curbs, and up structures such as stairways.
func RcFilterLowHangingWalkableObstacles(ctx *BuildContext, walkableClimb int, hf *RcHeightfield) {
	ctx.StartTimer(RC_TIMER_FILTER_LOW_OBSTACLES)
	defer ctx.StopTimer(RC_TIMER_FILTER_LOW_OBSTACLES)

	xSize := hf.Width
	ySize := hf.Height

	for y := 0; y < ySize; y++ {
		for x := 0; x < xSize; x++ {
			var previousSpan *RcSpan
			previousWasWalkable := false
			previousArea := uint8(RC_NULL_AREA)

			for span := hf.Spans[x+y*xSize]; span != nil; span = span.Next {
				walkable := span.Area != RC_NULL_AREA
				// If current span is not walkable, but there is walkable
				// span just below it, mark the span above it walkable too.
				if !walkable && previousWasWalkable {
					if common.Abs(int(span.Smax)-int(previousSpan.Smax)) <= walkableClimb {
						span.Area = previousArea
					}
				}
				// Copy walkable flag so that it cannot propagate
				// past multiple non-walkable objects.
				previousWasWalkable = walkable
				previousArea = span.Area
				previousSpan = span
			}
		}
	}
}

// / Marks spans that are ledges as not-walkable.
// /
// / A ledge is a span with one or more neighbors whose maximum is further
// / away than walkableClimb from the current span's maximum. This method
// / removes the impact of the overestimation of conservative voxelization
// / so the resulting mesh will not have regions hanging in the air over
// / ledges.
func RcFilterLedgeSpans(ctx *BuildContext, walkableHeight, walkableClimb int, hf *RcHeightfield) {
	ctx.StartTimer(RC_TIMER_FILTER_BORDER)
	defer ctx.StopTimer(RC_TIMER_FILTER_BORDER)

	xSize := hf.Width
	ySize := hf.Height
	const maxHeight = RC_SPAN_MAX_HEIGHT

	// Mark border spans.
	for y := 0; y < ySize; y++ {
		for x := 0; x < xSize; x++ {
			for span := hf.Spans[x+y*xSize]; span != nil; span = span.Next {
				// Skip non walkable spans.
				if span.Area == RC_NULL_AREA {
					continue
				}

				bot := int(span.Smax)
				top := maxHeight
				if span.Next != nil {
					top = int(span.Next.Smin)
				}

				// Find neighbours minimum height.
				minNeighborHeight := maxHeight

				// Min and max height of accessible neighbours.
				accessibleNeighborMinHeight := int(span.Smax)
				accessibleNeighborMaxHeight := int(span.Smax)

				for direction := 0; direction < 4; direction++ {
					dx := x + RcGetDirOffsetX(direction)
					dy := y + RcGetDirOffsetY(direction)
					// Skip neighbours which are out of bounds.
					if dx < 0 || dy < 0 || dx >= xSize || dy >= ySize {
						minNeighborHeight = min(minNeighborHeight, -walkableClimb-bot)
						continue
					}

					// From minus infinity to the first span.
					neighborSpan := hf.Spans[dx+dy*xSize]
					neighborBot := -walkableClimb
					neighborTop := maxHeight
					if neighborSpan != nil {
						neighborTop = int(neighborSpan.Smin)
					}

					// Skip neighbour if the gap between the spans is too small.
					if min(top, neighborTop)-max(bot, neighborBot) > walkableHeight {
						minNeighborHeight = min(minNeighborHeight, neighborBot-bot)
					}

					// Rest of the spans.
					for neighborSpan = hf.Spans[dx+dy*xSize]; neighborSpan != nil; neighborSpan = neighborSpan.Next {
						neighborBot = int(neighborSpan.Smax)
						neighborTop = maxHeight
						if neighborSpan.Next != nil {
							neighborTop = int(neighborSpan.Next.Smin)
						}

						// Skip neighbour if the gap between the spans is too small.
						if min(top, neighborTop)-max(bot, neighborBot) > walkableHeight {
							minNeighborHeight = min(minNeighborHeight, neighborBot-bot)

							// Find min/max accessible neighbour height.
							if common.Abs(neighborBot-bot) <= walkableClimb {
								if neighborBot < accessibleNeighborMinHeight {
									accessibleNeighborMinHeight = neighborBot
								}
								if neighborBot > accessibleNeighborMaxHeight {
									accessibleNeighborMaxHeight = neighborBot
								}
							}
						}
					}
				}

				// The current span is close to a ledge if the drop to any
				// neighbour span is more than the walkableClimb.
				if minNeighborHeight < -walkableClimb {
					span.Area = RC_NULL_AREA
				} else if (accessibleNeighborMaxHeight - accessibleNeighborMinHeight) > walkableClimb {
					// If the difference between all neighbours is too large,
					// we are at steep slope, mark the span as ledge.
					span.Area = RC_NULL_AREA
				}
			}
		}
	}
}

// / Marks walkable spans as not walkable if the clearance above the span
// / is less than the specified height.
func RcFilterWalkableLowHeightSpans(ctx *BuildContext, walkableHeight int, hf *RcHeightfield) {
	ctx.StartTimer(RC_TIMER_FILTER_WALKABLE)
	defer ctx.StopTimer(RC_TIMER_FILTER_WALKABLE)

	xSize := hf.Width
	ySize := hf.Height
	const maxHeight = RC_SPAN_MAX_HEIGHT

	// Remove walkable flag from spans which do not have enough
	// space above them for the agent to stand there.
	for y := 0; y < ySize; y++ {
		for x := 0; x < xSize; x++ {
			for span := hf.Spans[x+y*xSize]; span != nil; span = span.Next {
				bot := int(span.Smax)
				top := maxHeight
				if span.Next != nil {
					top = int(span.Next.Smin)
				}
				if (top - bot) < walkableHeight {
					span.Area = RC_NULL_AREA
				}
			}
		}
	}
}
