package recast

// Region partitioning. Three strategies produce the per-span region ids
// the contour tracer consumes: watershed (distance-field flooding),
// monotone (row sweep) and layers (row sweep merged into non-overlapping
// 2D layers). Border strips of the tile are painted with ids carrying
// #RC_BORDER_REG so they can be dropped later.

// / A region id a sweep span can take when its row neighbours disagree.
const RC_NULL_NEI = 0xffff

type cellRef struct {
	col, row int
	spanIdx  int
}

func spanIndexAt(chf *RcCompactHeightfield, col, row, con int) int {
	return int(chf.Cells[col+row*chf.Width].Index) + con
}

// Relaxes the distance value of one span against an axis neighbour
// (cost 2) and the diagonal behind it (cost 3). The diagonal is reached
// through the axis neighbour's connection so walls stay respected.
func relaxSpanDistance(chf *RcCompactHeightfield, dist []uint16, col, row, spanIdx, dir int) {
	span := &chf.Spans[spanIdx]
	if RcGetCon(span, dir) == RC_NOT_CONNECTED {
		return
	}

	ncol := col + RcGetDirOffsetX(dir)
	nrow := row + RcGetDirOffsetY(dir)
	nidx := spanIndexAt(chf, ncol, nrow, RcGetCon(span, dir))
	if dist[nidx]+2 < dist[spanIdx] {
		dist[spanIdx] = dist[nidx] + 2
	}

	diag := (dir + 3) & 0x3
	nspan := &chf.Spans[nidx]
	if RcGetCon(nspan, diag) == RC_NOT_CONNECTED {
		return
	}
	dcol := ncol + RcGetDirOffsetX(diag)
	drow := nrow + RcGetDirOffsetY(diag)
	didx := spanIndexAt(chf, dcol, drow, RcGetCon(nspan, diag))
	if dist[didx]+3 < dist[spanIdx] {
		dist[spanIdx] = dist[didx] + 3
	}
}

func calculateDistanceField(chf *RcCompactHeightfield, dist []uint16) (maxDist uint16) {
	w := chf.Width
	h := chf.Height

	for i := range dist[:chf.SpanCount] {
		dist[i] = 0xffff
	}

	// Seed: any span missing a same-area neighbour on one of the four
	// sides is a boundary span.
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			cell := &chf.Cells[col+row*w]
			for i := int(cell.Index); i < int(cell.Index+cell.Count); i++ {
				span := &chf.Spans[i]
				sameArea := 0
				for dir := 0; dir < 4; dir++ {
					if RcGetCon(span, dir) == RC_NOT_CONNECTED {
						continue
					}
					nidx := spanIndexAt(chf, col+RcGetDirOffsetX(dir), row+RcGetDirOffsetY(dir), RcGetCon(span, dir))
					if chf.Areas[i] == chf.Areas[nidx] {
						sameArea++
					}
				}
				if sameArea != 4 {
					dist[i] = 0
				}
			}
		}
	}

	// Forward sweep relaxes against the -x and -y neighbours, the
	// backward sweep against +x and +y; together they settle the
	// chamfer distance in two passes.
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			cell := &chf.Cells[col+row*w]
			for i := int(cell.Index); i < int(cell.Index+cell.Count); i++ {
				relaxSpanDistance(chf, dist, col, row, i, 0)
				relaxSpanDistance(chf, dist, col, row, i, 3)
			}
		}
	}
	for row := h - 1; row >= 0; row-- {
		for col := w - 1; col >= 0; col-- {
			cell := &chf.Cells[col+row*w]
			for i := int(cell.Index); i < int(cell.Index+cell.Count); i++ {
				relaxSpanDistance(chf, dist, col, row, i, 2)
				relaxSpanDistance(chf, dist, col, row, i, 1)
			}
		}
	}

	for i := 0; i < chf.SpanCount; i++ {
		maxDist = max(maxDist, dist[i])
	}
	return maxDist
}

// Averages each span's distance with its eight reachable neighbours.
// Values at or below the threshold stay untouched so thin boundaries
// keep their zero seed.
func blurDistanceField(chf *RcCompactHeightfield, threshold uint16, src, dst []uint16) {
	w := chf.Width
	h := chf.Height
	threshold *= 2

	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			cell := &chf.Cells[col+row*w]
			for i := int(cell.Index); i < int(cell.Index+cell.Count); i++ {
				center := src[i]
				if center <= threshold {
					dst[i] = center
					continue
				}

				span := &chf.Spans[i]
				acc := int(center)
				for dir := 0; dir < 4; dir++ {
					if RcGetCon(span, dir) == RC_NOT_CONNECTED {
						// Missing side counts the center twice, once for
						// the side and once for the corner behind it.
						acc += int(center) * 2
						continue
					}
					ncol := col + RcGetDirOffsetX(dir)
					nrow := row + RcGetDirOffsetY(dir)
					nidx := spanIndexAt(chf, ncol, nrow, RcGetCon(span, dir))
					acc += int(src[nidx])

					nspan := &chf.Spans[nidx]
					corner := (dir + 1) & 0x3
					if RcGetCon(nspan, corner) == RC_NOT_CONNECTED {
						acc += int(center)
						continue
					}
					cidx := spanIndexAt(chf, ncol+RcGetDirOffsetX(corner), nrow+RcGetDirOffsetY(corner), RcGetCon(nspan, corner))
					acc += int(src[cidx])
				}
				dst[i] = uint16((acc + 5) / 9)
			}
		}
	}
}

// / Builds the distance field for the specified compact heightfield.
// / Required by the watershed partitioning.
func RcBuildDistanceField(ctx *BuildContext, chf *RcCompactHeightfield) bool {
	ctx.StartTimer(RC_TIMER_BUILD_DISTANCEFIELD)
	defer ctx.StopTimer(RC_TIMER_BUILD_DISTANCEFIELD)

	raw := make([]uint16, chf.SpanCount)
	blurred := make([]uint16, chf.SpanCount)

	chf.MaxDistance = calculateDistanceField(chf, raw)
	blurDistanceField(chf, 1, raw, blurred)
	chf.Dist = blurred

	return true
}

// Returns the region id of an already claimed 8-connected neighbour of
// the span, or zero when every reachable neighbour is free or belongs
// to region r. Border regions across a side never count; a border
// region across a corner does.
func claimedNeighbourRegion(chf *RcCompactHeightfield, srcReg []uint16, col, row, spanIdx int, area uint8, r uint16) uint16 {
	span := &chf.Spans[spanIdx]

	for dir := 0; dir < 4; dir++ {
		if RcGetCon(span, dir) == RC_NOT_CONNECTED {
			continue
		}
		ncol := col + RcGetDirOffsetX(dir)
		nrow := row + RcGetDirOffsetY(dir)
		nidx := spanIndexAt(chf, ncol, nrow, RcGetCon(span, dir))
		if chf.Areas[nidx] != area {
			continue
		}
		nreg := srcReg[nidx]
		if (nreg & RC_BORDER_REG) != 0 {
			continue
		}
		if nreg != 0 && nreg != r {
			return nreg
		}

		// Look across the corner too; flooding is 8-connected.
		nspan := &chf.Spans[nidx]
		corner := (dir + 1) & 0x3
		if RcGetCon(nspan, corner) == RC_NOT_CONNECTED {
			continue
		}
		cidx := spanIndexAt(chf, ncol+RcGetDirOffsetX(corner), nrow+RcGetDirOffsetY(corner), RcGetCon(nspan, corner))
		if chf.Areas[cidx] != area {
			continue
		}
		creg := srcReg[cidx]
		if creg != 0 && creg != r {
			return creg
		}
	}

	return 0
}

// Floods a fresh region id r outward from the seed span, claiming free
// spans whose distance is at or above the current water level. Spans
// that turn out to touch another region are released again; the flood
// only keeps ground it owns exclusively.
func growNewRegion(seed cellRef, level, r uint16,
	chf *RcCompactHeightfield, srcReg, srcDist []uint16, stack *[]cellRef) bool {

	area := chf.Areas[seed.spanIdx]

	*stack = (*stack)[:0]
	*stack = append(*stack, seed)
	srcReg[seed.spanIdx] = r
	srcDist[seed.spanIdx] = 0

	var waterLevel uint16
	if level >= 2 {
		waterLevel = level - 2
	}
	claimed := 0

	for len(*stack) > 0 {
		cur := (*stack)[len(*stack)-1]
		*stack = (*stack)[:len(*stack)-1]

		if conflict := claimedNeighbourRegion(chf, srcReg, cur.col, cur.row, cur.spanIdx, area, r); conflict != 0 {
			srcReg[cur.spanIdx] = 0
			continue
		}
		claimed++

		span := &chf.Spans[cur.spanIdx]
		for dir := 0; dir < 4; dir++ {
			if RcGetCon(span, dir) == RC_NOT_CONNECTED {
				continue
			}
			ncol := cur.col + RcGetDirOffsetX(dir)
			nrow := cur.row + RcGetDirOffsetY(dir)
			nidx := spanIndexAt(chf, ncol, nrow, RcGetCon(span, dir))
			if chf.Areas[nidx] != area {
				continue
			}
			if chf.Dist[nidx] >= waterLevel && srcReg[nidx] == 0 {
				srcReg[nidx] = r
				srcDist[nidx] = 0
				*stack = append(*stack, cellRef{ncol, nrow, nidx})
			}
		}
	}

	return claimed > 0
}

type pendingCell struct {
	spanIdx int
	reg     uint16
	dist    uint16
}

// Grows the existing regions into unclaimed spans revealed by the
// current water level. Each round every free stack cell adopts the
// region of its closest claimed neighbour; rounds repeat until nothing
// changes or (while a level is active) maxRounds is hit.
func expandExistingRegions(maxRounds int, level uint16, chf *RcCompactHeightfield,
	srcReg, srcDist []uint16, stack *[]cellRef, refillStack bool) {

	w := chf.Width
	h := chf.Height

	if refillStack {
		*stack = (*stack)[:0]
		for row := 0; row < h; row++ {
			for col := 0; col < w; col++ {
				cell := &chf.Cells[col+row*w]
				for i := int(cell.Index); i < int(cell.Index+cell.Count); i++ {
					if chf.Dist[i] >= level && srcReg[i] == 0 && chf.Areas[i] != RC_NULL_AREA {
						*stack = append(*stack, cellRef{col, row, i})
					}
				}
			}
		}
	} else {
		// Retire stack cells that were claimed since the last round.
		for j := range *stack {
			if (*stack)[j].spanIdx >= 0 && srcReg[(*stack)[j].spanIdx] != 0 {
				(*stack)[j].spanIdx = -1
			}
		}
	}

	var adopted []pendingCell
	round := 0

	for len(*stack) > 0 {
		unclaimed := 0
		adopted = adopted[:0]

		for j := range *stack {
			cur := (*stack)[j]
			if cur.spanIdx < 0 {
				unclaimed++
				continue
			}

			bestReg := srcReg[cur.spanIdx]
			bestDist := uint16(0xffff)
			area := chf.Areas[cur.spanIdx]
			span := &chf.Spans[cur.spanIdx]

			for dir := 0; dir < 4; dir++ {
				if RcGetCon(span, dir) == RC_NOT_CONNECTED {
					continue
				}
				nidx := spanIndexAt(chf, cur.col+RcGetDirOffsetX(dir), cur.row+RcGetDirOffsetY(dir), RcGetCon(span, dir))
				if chf.Areas[nidx] != area {
					continue
				}
				if srcReg[nidx] > 0 && (srcReg[nidx]&RC_BORDER_REG) == 0 && srcDist[nidx]+2 < bestDist {
					bestReg = srcReg[nidx]
					bestDist = srcDist[nidx] + 2
				}
			}

			if bestReg != 0 {
				(*stack)[j].spanIdx = -1
				adopted = append(adopted, pendingCell{cur.spanIdx, bestReg, bestDist})
			} else {
				unclaimed++
			}
		}

		// Commit after the scan so every cell in one round saw the same
		// region state.
		for _, p := range adopted {
			srcReg[p.spanIdx] = p.reg
			srcDist[p.spanIdx] = p.dist
		}

		if unclaimed == len(*stack) {
			break
		}
		if level > 0 {
			round++
			if round >= maxRounds {
				break
			}
		}
	}
}

const (
	logLevelsPerStack = 1
	numLevelStacks    = 8
)

// Distributes the still-unclaimed spans over the level stacks so the
// watershed can process them from the deepest level downwards.
func bucketCellsByLevel(startLevel uint16, chf *RcCompactHeightfield, srcReg []uint16,
	stacks [][]cellRef) {

	w := chf.Width
	h := chf.Height
	startBucket := int(startLevel >> logLevelsPerStack)

	for j := range stacks {
		stacks[j] = stacks[j][:0]
	}

	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			cell := &chf.Cells[col+row*w]
			for i := int(cell.Index); i < int(cell.Index+cell.Count); i++ {
				if chf.Areas[i] == RC_NULL_AREA || srcReg[i] != 0 {
					continue
				}
				bucket := startBucket - int(chf.Dist[i]>>logLevelsPerStack)
				if bucket >= len(stacks) {
					continue
				}
				if bucket < 0 {
					bucket = 0
				}
				stacks[bucket] = append(stacks[bucket], cellRef{col, row, i})
			}
		}
	}
}

// Moves the still-unclaimed cells of the previous level stack over to
// the current one.
func carryOverStack(src []cellRef, dst *[]cellRef, srcReg []uint16) {
	for _, cur := range src {
		if cur.spanIdx < 0 || srcReg[cur.spanIdx] != 0 {
			continue
		}
		*dst = append(*dst, cur)
	}
}

// Bookkeeping for the merge/filter stage. Connections hold the region
// ids met while walking the region's outline in order; floors hold the
// region ids stacked above or below this one in the same columns.
type regionInfo struct {
	id              uint16
	spanCount       int
	area            uint8
	remap           bool
	visited         bool
	overlap         bool
	borderConnected bool
	zmin, zmax      uint16
	cons            []int
	floors          []int
}

func (reg *regionInfo) addUniqueFloor(id int) {
	for _, f := range reg.floors {
		if f == id {
			return
		}
	}
	reg.floors = append(reg.floors, id)
}

func (reg *regionInfo) addUniqueCon(id int) {
	for _, c := range reg.cons {
		if c == id {
			return
		}
	}
	reg.cons = append(reg.cons, id)
}

// Collapses runs of equal ids in the connection ring.
func (reg *regionInfo) dedupCons() {
	for i := 0; i < len(reg.cons) && len(reg.cons) > 1; {
		ni := (i + 1) % len(reg.cons)
		if reg.cons[i] == reg.cons[ni] {
			reg.cons = append(reg.cons[:i], reg.cons[i+1:]...)
		} else {
			i++
		}
	}
}

func (reg *regionInfo) replaceCon(oldId, newId uint16) {
	changed := false
	for i := range reg.cons {
		if reg.cons[i] == int(oldId) {
			reg.cons[i] = int(newId)
			changed = true
		}
	}
	for i := range reg.floors {
		if reg.floors[i] == int(oldId) {
			reg.floors[i] = int(newId)
		}
	}
	if changed {
		reg.dedupCons()
	}
}

func (reg *regionInfo) touchesBorder() bool {
	for _, c := range reg.cons {
		if c == 0 {
			return true
		}
	}
	return false
}

// Two regions may merge when they share at most one stretch of boundary
// (more would pinch off a hole), carry the same area id, and neither
// floats above the other.
func canMergeRegions(a, b *regionInfo) bool {
	if a.area != b.area {
		return false
	}
	shared := 0
	for _, c := range a.cons {
		if c == int(b.id) {
			shared++
		}
	}
	if shared > 1 {
		return false
	}
	for _, f := range a.floors {
		if f == int(b.id) {
			return false
		}
	}
	return true
}

// Splices src's connection ring into dst's at their shared boundary and
// moves the span count and floors over. Src is emptied.
func mergeRegionInto(dst, src *regionInfo) bool {
	insDst := -1
	for i, c := range dst.cons {
		if c == int(src.id) {
			insDst = i
			break
		}
	}
	if insDst == -1 {
		return false
	}
	insSrc := -1
	for i, c := range src.cons {
		if c == int(dst.id) {
			insSrc = i
			break
		}
	}
	if insSrc == -1 {
		return false
	}

	oldCons := make([]int, len(dst.cons))
	copy(oldCons, dst.cons)

	dst.cons = dst.cons[:0]
	for i, n := 0, len(oldCons); i < n-1; i++ {
		dst.cons = append(dst.cons, oldCons[(insDst+1+i)%n])
	}
	for i, n := 0, len(src.cons); i < n-1; i++ {
		dst.cons = append(dst.cons, src.cons[(insSrc+1+i)%n])
	}
	dst.dedupCons()

	for _, f := range src.floors {
		dst.addUniqueFloor(f)
	}
	dst.spanCount += src.spanCount
	src.spanCount = 0
	src.cons = src.cons[:0]

	return true
}

// Reports whether the span's edge in the given direction borders a
// different region (or the void).
func regionEdge(chf *RcCompactHeightfield, srcReg []uint16, col, row, spanIdx, dir int) bool {
	span := &chf.Spans[spanIdx]
	var nreg uint16
	if RcGetCon(span, dir) != RC_NOT_CONNECTED {
		nidx := spanIndexAt(chf, col+RcGetDirOffsetX(dir), row+RcGetDirOffsetY(dir), RcGetCon(span, dir))
		nreg = srcReg[nidx]
	}
	return nreg != srcReg[spanIdx]
}

// Walks the region outline once, recording the id of every region met
// on the other side of the boundary, in walk order. Duplicate runs are
// collapsed at the end.
func traceRegionCons(col, row, spanIdx, dir int, chf *RcCompactHeightfield, srcReg []uint16, out *[]int) {
	startDir := dir
	startIdx := spanIdx

	readAcross := func(ci, cc, cr, d int) uint16 {
		span := &chf.Spans[ci]
		if RcGetCon(span, d) == RC_NOT_CONNECTED {
			return 0
		}
		return srcReg[spanIndexAt(chf, cc+RcGetDirOffsetX(d), cr+RcGetDirOffsetY(d), RcGetCon(span, d))]
	}

	*out = append(*out, int(readAcross(spanIdx, col, row, dir)))

	for guard := 0; guard < 40000; guard++ {
		if regionEdge(chf, srcReg, col, row, spanIdx, dir) {
			// Still on the outline: note the region across the edge when
			// it changes, then turn clockwise around the corner.
			cur := readAcross(spanIdx, col, row, dir)
			if int(cur) != (*out)[len(*out)-1] {
				*out = append(*out, int(cur))
			}
			dir = (dir + 1) & 0x3
		} else {
			// Step into the neighbour and turn counter-clockwise so the
			// wall stays on our left hand.
			span := &chf.Spans[spanIdx]
			if RcGetCon(span, dir) == RC_NOT_CONNECTED {
				return
			}
			ncol := col + RcGetDirOffsetX(dir)
			nrow := row + RcGetDirOffsetY(dir)
			spanIdx = spanIndexAt(chf, ncol, nrow, RcGetCon(span, dir))
			col = ncol
			row = nrow
			dir = (dir + 3) & 0x3
		}

		if spanIdx == startIdx && dir == startDir {
			break
		}
	}

	// Collapse duplicate runs, including the wrap-around.
	if len(*out) > 1 {
		for j := 0; j < len(*out); {
			nj := (j + 1) % len(*out)
			if (*out)[j] == (*out)[nj] {
				*out = append((*out)[:j], (*out)[j+1:]...)
			} else {
				j++
			}
		}
	}
}

// Renumbers the surviving regions to a dense 1..n range and returns n.
// Border regions keep their ids untouched.
func compactRegionIds(regions []*regionInfo) uint16 {
	for _, reg := range regions {
		reg.remap = reg.id != 0 && (reg.id&RC_BORDER_REG) == 0
	}

	var nextId uint16
	for i, reg := range regions {
		if !reg.remap {
			continue
		}
		nextId++
		oldId := reg.id
		for _, other := range regions[i:] {
			if other.id == oldId {
				other.id = nextId
				other.remap = false
			}
		}
	}
	return nextId
}

func mergeAndFilterRegions(ctx *BuildContext, minRegionArea, mergeRegionSize int,
	maxRegionId uint16, chf *RcCompactHeightfield, srcReg []uint16, overlaps *[]int) (uint16, bool) {

	w := chf.Width
	h := chf.Height

	nreg := int(maxRegionId) + 1
	regions := make([]*regionInfo, nreg)
	for i := range regions {
		regions[i] = &regionInfo{id: uint16(i), zmin: 0xffff}
	}

	// Gather span counts, floor overlaps and the outline connection ring
	// of every region.
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			cell := &chf.Cells[col+row*w]
			for i := int(cell.Index); i < int(cell.Index+cell.Count); i++ {
				r := srcReg[i]
				if r == 0 || int(r) >= nreg {
					continue
				}
				reg := regions[r]
				reg.spanCount++

				// Any other region in this column floats above or below us.
				for j := int(cell.Index); j < int(cell.Index+cell.Count); j++ {
					if i == j {
						continue
					}
					floorId := srcReg[j]
					if floorId == 0 || int(floorId) >= nreg {
						continue
					}
					if floorId == r {
						reg.overlap = true
					}
					reg.addUniqueFloor(int(floorId))
				}

				if len(reg.cons) > 0 {
					continue // Outline already walked from another span.
				}
				reg.area = chf.Areas[i]

				edgeDir := -1
				for dir := 0; dir < 4; dir++ {
					if regionEdge(chf, srcReg, col, row, i, dir) {
						edgeDir = dir
						break
					}
				}
				if edgeDir != -1 {
					traceRegionCons(col, row, i, edgeDir, chf, srcReg, &reg.cons)
				}
			}
		}
	}

	// Drop connected clumps of regions that are too small, unless the
	// clump leaks off the tile border where its true size is unknown.
	stack := make([]int, 0, 32)
	clump := make([]int, 0, 32)
	for i := 0; i < nreg; i++ {
		reg := regions[i]
		if reg.id == 0 || (reg.id&RC_BORDER_REG) != 0 || reg.spanCount == 0 || reg.visited {
			continue
		}

		borderLeak := false
		clumpSpans := 0
		stack = append(stack[:0], i)
		clump = clump[:0]
		reg.visited = true

		for len(stack) > 0 {
			ri := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			creg := regions[ri]

			clumpSpans += creg.spanCount
			clump = append(clump, ri)

			for _, c := range creg.cons {
				if (uint16(c) & RC_BORDER_REG) != 0 {
					borderLeak = true
					continue
				}
				nb := regions[c]
				if nb.visited || nb.id == 0 || (nb.id&RC_BORDER_REG) != 0 {
					continue
				}
				stack = append(stack, int(nb.id))
				nb.visited = true
			}
		}

		if clumpSpans < minRegionArea && !borderLeak {
			for _, ri := range clump {
				regions[ri].spanCount = 0
				regions[ri].id = 0
			}
		}
	}

	// Repeatedly fold small regions into their smallest mergeable
	// neighbour until nothing moves.
	for {
		merged := 0
		for i := 0; i < nreg; i++ {
			reg := regions[i]
			if reg.id == 0 || (reg.id&RC_BORDER_REG) != 0 || reg.overlap || reg.spanCount == 0 {
				continue
			}
			if reg.spanCount > mergeRegionSize && reg.touchesBorder() {
				continue
			}

			smallest := 1 << 27
			target := reg.id
			for _, c := range reg.cons {
				if (uint16(c) & RC_BORDER_REG) != 0 {
					continue
				}
				nb := regions[c]
				if nb.id == 0 || (nb.id&RC_BORDER_REG) != 0 || nb.overlap {
					continue
				}
				if nb.spanCount < smallest && canMergeRegions(reg, nb) && canMergeRegions(nb, reg) {
					smallest = nb.spanCount
					target = nb.id
				}
			}
			if target == reg.id {
				continue
			}

			oldId := reg.id
			if mergeRegionInto(regions[target], reg) {
				for j := 0; j < nreg; j++ {
					other := regions[j]
					if other.id == 0 || (other.id&RC_BORDER_REG) != 0 {
						continue
					}
					// Earlier merges may have left several regions
					// wearing the old id.
					if other.id == oldId {
						other.id = target
					}
					other.replaceCon(oldId, target)
				}
				merged++
			}
		}
		if merged == 0 {
			break
		}
	}

	maxRegionId = compactRegionIds(regions)

	for i := 0; i < chf.SpanCount; i++ {
		if (srcReg[i] & RC_BORDER_REG) == 0 {
			srcReg[i] = regions[srcReg[i]].id
		}
	}

	for _, reg := range regions {
		if reg.overlap {
			*overlaps = append(*overlaps, int(reg.id))
		}
	}

	return maxRegionId, true
}

// Paints every walkable span inside the rectangle with the region id.
func paintRegionRect(minCol, maxCol, minRow, maxRow int, regId uint16, chf *RcCompactHeightfield, srcReg []uint16) {
	for row := minRow; row < maxRow; row++ {
		for col := minCol; col < maxCol; col++ {
			cell := &chf.Cells[col+row*chf.Width]
			for i := int(cell.Index); i < int(cell.Index+cell.Count); i++ {
				if chf.Areas[i] != RC_NULL_AREA {
					srcReg[i] = regId
				}
			}
		}
	}
}

// Claims the four border strips of the tile with flagged region ids so
// later stages can recognise and drop them. Consumes one id per strip.
func markTileBorders(chf *RcCompactHeightfield, srcReg []uint16, borderSize int, idGen *uint16) {
	if borderSize <= 0 {
		return
	}
	w := chf.Width
	h := chf.Height
	bw := min(w, borderSize)
	bh := min(h, borderSize)

	paintRegionRect(0, bw, 0, h, *idGen|RC_BORDER_REG, chf, srcReg)
	*idGen++
	paintRegionRect(w-bw, w, 0, h, *idGen|RC_BORDER_REG, chf, srcReg)
	*idGen++
	paintRegionRect(0, w, 0, bh, *idGen|RC_BORDER_REG, chf, srcReg)
	*idGen++
	paintRegionRect(0, w, h-bh, h, *idGen|RC_BORDER_REG, chf, srcReg)
	*idGen++
}

type sweepSpan struct {
	rid uint16 // provisional row id
	id  uint16 // final region id
	ns  uint16 // number of samples agreeing on nei
	nei uint16 // row-above neighbour id, or RC_NULL_NEI on conflict
}

// Sweeps a single row left to right, handing out provisional ids that
// continue the -x run and tracking which -y region each run touches.
// Runs whose -y votes are unanimous adopt that region's id when no
// other run of the row touches that region; the rest get fresh ids
// from idGen. Used by both the monotone and the layer
// partitioning.
func sweepRegionRow(chf *RcCompactHeightfield, srcReg []uint16, borderSize, row int,
	sweeps []sweepSpan, prevCounts *[]int, idGen *uint16) {

	w := chf.Width

	if cap(*prevCounts) < int(*idGen)+1 {
		*prevCounts = make([]int, *idGen+1)
	} else {
		*prevCounts = (*prevCounts)[:*idGen+1]
		for i := range *prevCounts {
			(*prevCounts)[i] = 0
		}
	}
	var rowId uint16 = 1

	for col := borderSize; col < w-borderSize; col++ {
		cell := &chf.Cells[col+row*w]
		for i := int(cell.Index); i < int(cell.Index+cell.Count); i++ {
			if chf.Areas[i] == RC_NULL_AREA {
				continue
			}
			span := &chf.Spans[i]

			// Continue the run from the -x neighbour when possible.
			var runId uint16
			if RcGetCon(span, 0) != RC_NOT_CONNECTED {
				nidx := spanIndexAt(chf, col-1, row, RcGetCon(span, 0))
				if (srcReg[nidx]&RC_BORDER_REG) == 0 && chf.Areas[i] == chf.Areas[nidx] {
					runId = srcReg[nidx]
				}
			}
			if runId == 0 {
				runId = rowId
				rowId++
				sweeps[runId].rid = runId
				sweeps[runId].ns = 0
				sweeps[runId].nei = 0
			}

			// Vote with the -y neighbour's final id.
			if RcGetCon(span, 3) != RC_NOT_CONNECTED {
				nidx := spanIndexAt(chf, col, row-1, RcGetCon(span, 3))
				below := srcReg[nidx]
				if below != 0 && (below&RC_BORDER_REG) == 0 && chf.Areas[i] == chf.Areas[nidx] {
					if sweeps[runId].nei == 0 || sweeps[runId].nei == below {
						sweeps[runId].nei = below
						sweeps[runId].ns++
						if int(below) < len(*prevCounts) {
							(*prevCounts)[below]++
						}
					} else {
						sweeps[runId].nei = RC_NULL_NEI
					}
				}
			}

			srcReg[i] = runId
		}
	}

	// Resolve the provisional run ids.
	for i := 1; i < int(rowId); i++ {
		if sweeps[i].nei != RC_NULL_NEI && sweeps[i].nei != 0 &&
			int(sweeps[i].nei) < len(*prevCounts) &&
			(*prevCounts)[sweeps[i].nei] == int(sweeps[i].ns) {
			sweeps[i].id = sweeps[i].nei
		} else {
			sweeps[i].id = *idGen
			*idGen++
		}
	}
	for col := borderSize; col < w-borderSize; col++ {
		cell := &chf.Cells[col+row*w]
		for i := int(cell.Index); i < int(cell.Index+cell.Count); i++ {
			if srcReg[i] > 0 && srcReg[i] < rowId {
				srcReg[i] = sweeps[srcReg[i]].id
			}
		}
	}
}

// / Builds region data for the heightfield using simple monotone
// / partitioning. Produced regions are guaranteed to not contain holes
// / or overlaps; the sweep tends to emit long thin regions.
func RcBuildRegionsMonotone(ctx *BuildContext, chf *RcCompactHeightfield,
	borderSize, minRegionArea, mergeRegionArea int) bool {

	ctx.StartTimer(RC_TIMER_BUILD_REGIONS)
	defer ctx.StopTimer(RC_TIMER_BUILD_REGIONS)

	srcReg := make([]uint16, chf.SpanCount)
	sweeps := make([]sweepSpan, max(chf.Width, chf.Height))
	prevCounts := make([]int, 0, 256)

	var id uint16 = 1
	markTileBorders(chf, srcReg, borderSize, &id)
	chf.BorderSize = borderSize

	for row := borderSize; row < chf.Height-borderSize; row++ {
		sweepRegionRow(chf, srcReg, borderSize, row, sweeps, &prevCounts, &id)
	}

	// Monotone partitioning does not generate overlapping regions.
	var overlaps []int
	var ok bool
	if chf.MaxRegions, ok = mergeAndFilterRegions(ctx, minRegionArea, mergeRegionArea, id, chf, srcReg, &overlaps); !ok {
		return false
	}

	for i := 0; i < chf.SpanCount; i++ {
		chf.Spans[i].Reg = srcReg[i]
	}
	return true
}

// / Builds region data for the heightfield using watershed partitioning.
// / Distance field data must be created with RcBuildDistanceField before
// / running this.
func RcBuildRegions(ctx *BuildContext, chf *RcCompactHeightfield,
	borderSize, minRegionArea, mergeRegionArea int) bool {

	ctx.StartTimer(RC_TIMER_BUILD_REGIONS)
	defer ctx.StopTimer(RC_TIMER_BUILD_REGIONS)

	srcReg := make([]uint16, chf.SpanCount)
	srcDist := make([]uint16, chf.SpanCount)

	lvlStacks := make([][]cellRef, numLevelStacks)
	for i := range lvlStacks {
		lvlStacks[i] = make([]cellRef, 0, 256)
	}
	floodStack := make([]cellRef, 0, 256)

	// How far regions may creep per level before the next flood; larger
	// values simplify the partitioning at the cost of region shape.
	const expandRounds = 8

	var regionId uint16 = 1
	markTileBorders(chf, srcReg, borderSize, &regionId)
	chf.BorderSize = borderSize

	level := (chf.MaxDistance + 1) &^ 1
	bucket := -1

	// Drain the water level two steps at a time: first grow what exists,
	// then seed new regions on every span the level just uncovered.
	for level > 0 {
		if level >= 2 {
			level -= 2
		} else {
			level = 0
		}
		bucket = (bucket + 1) & (numLevelStacks - 1)

		if bucket == 0 {
			bucketCellsByLevel(level, chf, srcReg, lvlStacks)
		} else {
			carryOverStack(lvlStacks[bucket-1], &lvlStacks[bucket], srcReg)
		}

		expandExistingRegions(expandRounds, level, chf, srcReg, srcDist, &lvlStacks[bucket], false)

		for _, cur := range lvlStacks[bucket] {
			if cur.spanIdx < 0 || srcReg[cur.spanIdx] != 0 {
				continue
			}
			if growNewRegion(cur, level, regionId, chf, srcReg, srcDist, &floodStack) {
				if regionId == 0xffff {
					ctx.Errorf("rcBuildRegions: Region ID overflow")
					return false
				}
				regionId++
			}
		}
	}

	// Sweep up whatever the levels left unclaimed.
	expandExistingRegions(expandRounds*8, 0, chf, srcReg, srcDist, &floodStack, true)

	var overlaps []int
	var ok bool
	if chf.MaxRegions, ok = mergeAndFilterRegions(ctx, minRegionArea, mergeRegionArea, regionId, chf, srcReg, &overlaps); !ok {
		return false
	}
	if len(overlaps) > 0 {
		ctx.Errorf("rcBuildRegions: %d overlapping regions", len(overlaps))
	}

	for i := 0; i < chf.SpanCount; i++ {
		chf.Spans[i].Reg = srcReg[i]
	}
	return true
}

func mergeAndFilterLayerRegions(ctx *BuildContext, minRegionArea int,
	maxRegionId uint16, chf *RcCompactHeightfield, srcReg []uint16) (uint16, bool) {

	w := chf.Width
	h := chf.Height

	nreg := int(maxRegionId) + 1
	regions := make([]*regionInfo, nreg)
	for i := range regions {
		regions[i] = &regionInfo{id: uint16(i), zmin: 0xffff}
	}

	// Gather per-region stats, neighbour connections and the floor
	// relations between regions stacked in the same columns.
	colRegs := make([]int, 0, 16)
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			cell := &chf.Cells[col+row*w]
			colRegs = colRegs[:0]

			for i := int(cell.Index); i < int(cell.Index+cell.Count); i++ {
				r := srcReg[i]
				if r == 0 || int(r) >= nreg {
					continue
				}
				span := &chf.Spans[i]
				reg := regions[r]

				reg.spanCount++
				reg.area = chf.Areas[i]
				reg.zmin = min(reg.zmin, span.Z)
				reg.zmax = max(reg.zmax, span.Z)
				colRegs = append(colRegs, int(r))

				for dir := 0; dir < 4; dir++ {
					if RcGetCon(span, dir) == RC_NOT_CONNECTED {
						continue
					}
					nidx := spanIndexAt(chf, col+RcGetDirOffsetX(dir), row+RcGetDirOffsetY(dir), RcGetCon(span, dir))
					nr := srcReg[nidx]
					if nr > 0 && int(nr) < nreg && nr != r {
						reg.addUniqueCon(int(nr))
					}
					if (nr & RC_BORDER_REG) != 0 {
						reg.borderConnected = true
					}
				}
			}

			for i := 0; i < len(colRegs)-1; i++ {
				for j := i + 1; j < len(colRegs); j++ {
					if colRegs[i] != colRegs[j] {
						regions[colRegs[i]].addUniqueFloor(colRegs[j])
						regions[colRegs[j]].addUniqueFloor(colRegs[i])
					}
				}
			}
		}
	}

	// Grow 2D layers: breadth-first over the connection graph, never
	// absorbing a region that floats over something already absorbed.
	var layerId uint16 = 1
	for i := range regions {
		regions[i].id = 0
	}

	queue := make([]int, 0, 32)
	for i := 1; i < nreg; i++ {
		root := regions[i]
		if root.id != 0 {
			continue
		}
		root.id = layerId

		queue = append(queue[:0], i)
		for len(queue) > 0 {
			reg := regions[queue[0]]
			queue = queue[1:]

			for _, c := range reg.cons {
				nb := regions[c]
				if nb.id != 0 {
					continue
				}
				stacked := false
				for _, f := range root.floors {
					if f == c {
						stacked = true
						break
					}
				}
				if stacked {
					continue
				}

				queue = append(queue, c)
				nb.id = layerId

				for _, f := range nb.floors {
					root.addUniqueFloor(f)
				}
				root.zmin = min(root.zmin, nb.zmin)
				root.zmax = max(root.zmax, nb.zmax)
				root.spanCount += nb.spanCount
				nb.spanCount = 0
				root.borderConnected = root.borderConnected || nb.borderConnected
			}
		}

		layerId++
	}

	// Small layers vanish unless they reach the tile border.
	for i := 0; i < nreg; i++ {
		reg := regions[i]
		if reg.spanCount > 0 && reg.spanCount < minRegionArea && !reg.borderConnected {
			dead := reg.id
			for j := 0; j < nreg; j++ {
				if regions[j].id == dead {
					regions[j].id = 0
				}
			}
		}
	}

	maxRegionId = compactRegionIds(regions)

	for i := 0; i < chf.SpanCount; i++ {
		if (srcReg[i] & RC_BORDER_REG) == 0 {
			srcReg[i] = regions[srcReg[i]].id
		}
	}

	return maxRegionId, true
}

// / Builds region data for the heightfield by partitioning the walkable
// / surface into non-overlapping 2D layers. Suited for tiles with many
// / small obstacles.
func RcBuildLayerRegions(ctx *BuildContext, chf *RcCompactHeightfield,
	borderSize, minRegionArea int) bool {

	ctx.StartTimer(RC_TIMER_BUILD_REGIONS)
	defer ctx.StopTimer(RC_TIMER_BUILD_REGIONS)

	srcReg := make([]uint16, chf.SpanCount)
	sweeps := make([]sweepSpan, max(chf.Width, chf.Height))
	prevCounts := make([]int, 0, 256)

	var id uint16 = 1
	markTileBorders(chf, srcReg, borderSize, &id)
	chf.BorderSize = borderSize

	for row := borderSize; row < chf.Height-borderSize; row++ {
		sweepRegionRow(chf, srcReg, borderSize, row, sweeps, &prevCounts, &id)
	}

	var ok bool
	if chf.MaxRegions, ok = mergeAndFilterLayerRegions(ctx, minRegionArea, id, chf, srcReg); !ok {
		return false
	}

	for i := 0; i < chf.SpanCount; i++ {
		chf.Spans[i].Reg = srcReg[i]
	}
	return true
}
