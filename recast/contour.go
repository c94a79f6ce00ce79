package recast

import (
	"github.com/ttvmkos/r5nav/common"
)

// / Represents a simple, non-overlapping contour in field space.
type RcContour struct {
	Verts   []int  ///< Simplified contour vertex and connection data. [Size: 4 * NVerts]
	NVerts  int    ///< The number of vertices in the simplified contour.
	RVerts  []int  ///< Raw contour vertex and connection data. [Size: 4 * NRVerts]
	NRVerts int    ///< The number of vertices in the raw contour.
	Reg     uint16 ///< The region id of the contour.
	Area    uint8  ///< The area id of the contour.
}

// / Represents a group of related contours.
type RcContourSet struct {
	Conts      []RcContour ///< An array of the contours in the set.
	Bmin       [3]float32  ///< The minimum bounds in world space. [(x, y, z)]
	Bmax       [3]float32  ///< The maximum bounds in world space. [(x, y, z)]
	Cs         float32     ///< The size of each cell. (On the xy-plane.)
	Ch         float32     ///< The height of each cell. (The minimum increment along the z-axis.)
	Width      int         ///< The width of the set. (Along the x-axis in cell units.)
	Height     int         ///< The height of the set. (Along the y-axis in cell units.)
	BorderSize int         ///< The AABB border size used to generate the source data from which the contours were derived.
	MaxError   float32     ///< The max edge error that this contour set was simplified with.
}

func getCornerHeight(x, y, i, dir int, chf *RcCompactHeightfield) (ch int, isBorderVertex bool) {
	s := &chf.Spans[i]
	ch = int(s.Z)
	dirp := (dir + 1) & 0x3

	regs := [4]uint32{0, 0, 0, 0}

	// Combine region and area codes in order to prevent
	// border vertices which are in between two areas to be removed.
	regs[0] = uint32(s.Reg) | (uint32(chf.Areas[i]) << 16)

	if RcGetCon(s, dir) != RC_NOT_CONNECTED {
		ax := x + RcGetDirOffsetX(dir)
		ay := y + RcGetDirOffsetY(dir)
		ai := int(chf.Cells[ax+ay*chf.Width].Index) + RcGetCon(s, dir)
		as := &chf.Spans[ai]
		ch = max(ch, int(as.Z))
		regs[1] = uint32(as.Reg) | (uint32(chf.Areas[ai]) << 16)
		if RcGetCon(as, dirp) != RC_NOT_CONNECTED {
			ax2 := ax + RcGetDirOffsetX(dirp)
			ay2 := ay + RcGetDirOffsetY(dirp)
			ai2 := int(chf.Cells[ax2+ay2*chf.Width].Index) + RcGetCon(as, dirp)
			as2 := &chf.Spans[ai2]
			ch = max(ch, int(as2.Z))
			regs[2] = uint32(as2.Reg) | (uint32(chf.Areas[ai2]) << 16)
		}
	}
	if RcGetCon(s, dirp) != RC_NOT_CONNECTED {
		ax := x + RcGetDirOffsetX(dirp)
		ay := y + RcGetDirOffsetY(dirp)
		ai := int(chf.Cells[ax+ay*chf.Width].Index) + RcGetCon(s, dirp)
		as := &chf.Spans[ai]
		ch = max(ch, int(as.Z))
		regs[3] = uint32(as.Reg) | (uint32(chf.Areas[ai]) << 16)
		if RcGetCon(as, dir) != RC_NOT_CONNECTED {
			ax2 := ax + RcGetDirOffsetX(dir)
			ay2 := ay + RcGetDirOffsetY(dir)
			ai2 := int(chf.Cells[ax2+ay2*chf.Width].Index) + RcGetCon(as, dir)
			as2 := &chf.Spans[ai2]
			ch = max(ch, int(as2.Z))
			regs[2] = uint32(as2.Reg) | (uint32(chf.Areas[ai2]) << 16)
		}
	}

	// Check if the vertex is special edge vertex, these vertices will be removed later.
	for j := 0; j < 4; j++ {
		a := j
		b := (j + 1) & 0x3
		c := (j + 2) & 0x3
		d := (j + 3) & 0x3

		// The vertex is a border vertex there are two same exterior cells in a row,
		// followed by two interior cells and none of the regions are out of bounds.
		twoSameExts := (regs[a]&regs[b]&RC_BORDER_REG) != 0 && regs[a] == regs[b]
		twoInts := ((regs[c] | regs[d]) & RC_BORDER_REG) == 0
		intsSameArea := (regs[c] >> 16) == (regs[d] >> 16)
		noZeros := regs[a] != 0 && regs[b] != 0 && regs[c] != 0 && regs[d] != 0
		if twoSameExts && twoInts && intsSameArea && noZeros {
			isBorderVertex = true
			break
		}
	}

	return ch, isBorderVertex
}

func walkContourBoundary(x, y, i int, chf *RcCompactHeightfield, flags []uint8, points *[]int) {
	// Choose the first non-connected edge
	dir := 0
	for (flags[i] & (1 << uint(dir))) == 0 {
		dir++
	}

	startDir := dir
	starti := i

	area := chf.Areas[i]

	iter := 0
	for iter < 40000 {
		iter++
		if (flags[i] & (1 << uint(dir))) != 0 {
			// Choose the edge corner
			isAreaBorder := false
			px := x
			pz, isBorderVertex := getCornerHeight(x, y, i, dir, chf)
			py := y
			switch dir {
			case 0:
				py++
			case 1:
				px++
				py++
			case 2:
				px++
			}
			r := 0
			s := &chf.Spans[i]
			if RcGetCon(s, dir) != RC_NOT_CONNECTED {
				ax := x + RcGetDirOffsetX(dir)
				ay := y + RcGetDirOffsetY(dir)
				ai := int(chf.Cells[ax+ay*chf.Width].Index) + RcGetCon(s, dir)
				r = int(chf.Spans[ai].Reg)
				if area != chf.Areas[ai] {
					isAreaBorder = true
				}
			}
			if isBorderVertex {
				r |= RC_BORDER_VERTEX
			}
			if isAreaBorder {
				r |= RC_AREA_BORDER
			}
			*points = append(*points, px, py, pz, r)

			flags[i] &^= 1 << uint(dir) // Remove visited edges
			dir = (dir + 1) & 0x3       // Rotate CW
		} else {
			ni := -1
			nx := x + RcGetDirOffsetX(dir)
			ny := y + RcGetDirOffsetY(dir)
			s := &chf.Spans[i]
			if RcGetCon(s, dir) != RC_NOT_CONNECTED {
				nc := &chf.Cells[nx+ny*chf.Width]
				ni = int(nc.Index) + RcGetCon(s, dir)
			}
			if ni == -1 {
				// Should not happen.
				return
			}
			x = nx
			y = ny
			i = ni
			dir = (dir + 3) & 0x3 // Rotate CCW
		}

		if starti == i && startDir == dir {
			break
		}
	}
}

func distancePtSeg2D(x, y, px, py, qx, qy int) float32 {
	pqx := float32(qx - px)
	pqy := float32(qy - py)
	dx := float32(x - px)
	dy := float32(y - py)
	d := pqx*pqx + pqy*pqy
	t := pqx*dx + pqy*dy
	if d > 0 {
		t /= d
	}
	t = common.Clamp(t, 0, 1)

	dx = float32(px) + t*pqx - float32(x)
	dy = float32(py) + t*pqy - float32(y)

	return dx*dx + dy*dy
}

func simplifyContour(points *[]int, simplified *[]int, maxError float32, maxEdgeLen int, buildFlags int) {
	// Add initial points.
	hasConnections := false
	for i := 0; i < len(*points); i += 4 {
		if ((*points)[i+3] & RC_CONTOUR_REG_MASK) != 0 {
			hasConnections = true
			break
		}
	}

	if hasConnections {
		// The contour has some portals to other regions.
		// Add a new point to every location where the region changes.
		for i, ni := 0, len(*points)/4; i < ni; i++ {
			ii := (i + 1) % ni
			differentRegs := ((*points)[i*4+3] & RC_CONTOUR_REG_MASK) != ((*points)[ii*4+3] & RC_CONTOUR_REG_MASK)
			areaBorders := ((*points)[i*4+3] & RC_AREA_BORDER) != ((*points)[ii*4+3] & RC_AREA_BORDER)
			if differentRegs || areaBorders {
				*simplified = append(*simplified, (*points)[i*4+0], (*points)[i*4+1], (*points)[i*4+2], i)
			}
		}
	}

	if len(*simplified) == 0 {
		// If there is no connections at all,
		// create some initial points for the simplification process.
		// Find lower-left and upper-right vertices of the contour.
		llx := (*points)[0]
		lly := (*points)[1]
		llz := (*points)[2]
		lli := 0
		urx := (*points)[0]
		ury := (*points)[1]
		urz := (*points)[2]
		uri := 0
		for i := 0; i < len(*points); i += 4 {
			x := (*points)[i+0]
			y := (*points)[i+1]
			z := (*points)[i+2]
			if x < llx || (x == llx && y < lly) {
				llx = x
				lly = y
				llz = z
				lli = i / 4
			}
			if x > urx || (x == urx && y > ury) {
				urx = x
				ury = y
				urz = z
				uri = i / 4
			}
		}
		*simplified = append(*simplified, llx, lly, llz, lli)
		*simplified = append(*simplified, urx, ury, urz, uri)
	}

	// Add points until all raw points are within
	// error tolerance to the simplified shape.
	pn := len(*points) / 4
	for i := 0; i < len(*simplified)/4; {
		ii := (i + 1) % (len(*simplified) / 4)

		ax := (*simplified)[i*4+0]
		ay := (*simplified)[i*4+1]
		ai := (*simplified)[i*4+3]

		bx := (*simplified)[ii*4+0]
		by := (*simplified)[ii*4+1]
		bi := (*simplified)[ii*4+3]

		// Find maximum deviation from the segment.
		var maxd float32
		maxi := -1
		var ci, cinc, endi int

		// Traverse the segment in lexilogical order so that the
		// max deviation is calculated similarly when traversing
		// opposite segments.
		if bx > ax || (bx == ax && by > ay) {
			cinc = 1
			ci = (ai + cinc) % pn
			endi = bi
		} else {
			cinc = pn - 1
			ci = (bi + cinc) % pn
			endi = ai
			ax, bx = bx, ax
			ay, by = by, ay
		}

		// Tessellate only outer edges or edges between areas.
		if ((*points)[ci*4+3]&RC_CONTOUR_REG_MASK) == 0 ||
			((*points)[ci*4+3]&RC_AREA_BORDER) != 0 {
			for ci != endi {
				d := distancePtSeg2D((*points)[ci*4+0], (*points)[ci*4+1], ax, ay, bx, by)
				if d > maxd {
					maxd = d
					maxi = ci
				}
				ci = (ci + cinc) % pn
			}
		}

		// If the max deviation is larger than accepted error,
		// add new point, else continue to next segment.
		if maxi != -1 && maxd > (maxError*maxError) {
			// Add the point.
			*simplified = append(*simplified, 0, 0, 0, 0)
			n := len(*simplified) / 4
			for j := n - 1; j > i+1; j-- {
				copy((*simplified)[j*4:j*4+4], (*simplified)[(j-1)*4:(j-1)*4+4])
			}
			// Add the point.
			(*simplified)[(i+1)*4+0] = (*points)[maxi*4+0]
			(*simplified)[(i+1)*4+1] = (*points)[maxi*4+1]
			(*simplified)[(i+1)*4+2] = (*points)[maxi*4+2]
			(*simplified)[(i+1)*4+3] = maxi
		} else {
			i++
		}
	}

	// Split too long edges.
	if maxEdgeLen > 0 && (buildFlags&(RC_CONTOUR_TESS_WALL_EDGES|RC_CONTOUR_TESS_AREA_EDGES)) != 0 {
		for i := 0; i < len(*simplified)/4; {
			ii := (i + 1) % (len(*simplified) / 4)

			ax := (*simplified)[i*4+0]
			ay := (*simplified)[i*4+1]
			ai := (*simplified)[i*4+3]

			bx := (*simplified)[ii*4+0]
			by := (*simplified)[ii*4+1]
			bi := (*simplified)[ii*4+3]

			// Find maximum deviation from the segment.
			maxi := -1
			ci := (ai + 1) % pn

			// Tessellate only outer edges or edges between areas.
			tess := false
			// Wall edges.
			if (buildFlags&RC_CONTOUR_TESS_WALL_EDGES) != 0 && ((*points)[ci*4+3]&RC_CONTOUR_REG_MASK) == 0 {
				tess = true
			}
			// Edges between areas.
			if (buildFlags&RC_CONTOUR_TESS_AREA_EDGES) != 0 && ((*points)[ci*4+3]&RC_AREA_BORDER) != 0 {
				tess = true
			}

			if tess {
				dx := bx - ax
				dy := by - ay
				if dx*dx+dy*dy > maxEdgeLen*maxEdgeLen {
					// Round based on the segments in lexilogical order so that the
					// max tesselation is consistent regardless in which direction
					// segments are traversed.
					var n int
					if bi < ai {
						n = bi + pn - ai
					} else {
						n = bi - ai
					}
					if n > 1 {
						if bx > ax || (bx == ax && by > ay) {
							maxi = (ai + n/2) % pn
						} else {
							maxi = (ai + (n+1)/2) % pn
						}
					}
				}
			}

			// If the max deviation is larger than accepted error,
			// add new point, else continue to next segment.
			if maxi != -1 {
				// Add the point.
				*simplified = append(*simplified, 0, 0, 0, 0)
				n := len(*simplified) / 4
				for j := n - 1; j > i+1; j-- {
					copy((*simplified)[j*4:j*4+4], (*simplified)[(j-1)*4:(j-1)*4+4])
				}
				(*simplified)[(i+1)*4+0] = (*points)[maxi*4+0]
				(*simplified)[(i+1)*4+1] = (*points)[maxi*4+1]
				(*simplified)[(i+1)*4+2] = (*points)[maxi*4+2]
				(*simplified)[(i+1)*4+3] = maxi
			} else {
				i++
			}
		}
	}

	for i := 0; i < len(*simplified)/4; i++ {
		// The edge vertex flag is take from the current raw point,
		// and the neighbour region is take from the next raw point.
		ai := ((*simplified)[i*4+3] + 1) % pn
		bi := (*simplified)[i*4+3]
		(*simplified)[i*4+3] = ((*points)[ai*4+3] & (RC_CONTOUR_REG_MASK | RC_AREA_BORDER)) | ((*points)[bi*4+3] & RC_BORDER_VERTEX)
	}
}

func calcAreaOfPolygon2D(verts []int, nverts int) int {
	area := 0
	for i, j := 0, nverts-1; i < nverts; j, i = i, i+1 {
		vi := verts[i*4:]
		vj := verts[j*4:]
		area += vi[0]*vj[1] - vj[0]*vi[1]
	}
	return (area + 1) / 2
}

func intersectSegContour(d0, d1 []int, i int, n int, verts []int) bool {
	// For each edge (k,k+1) of P
	for k := 0; k < n; k++ {
		k1 := (k + 1) % n
		// Skip edges incident to i.
		if i == k || i == k1 {
			continue
		}
		p0 := verts[k*4:]
		p1 := verts[k1*4:]
		if (d0[0] == p0[0] && d0[1] == p0[1]) || (d1[0] == p0[0] && d1[1] == p0[1]) ||
			(d0[0] == p1[0] && d0[1] == p1[1]) || (d1[0] == p1[0] && d1[1] == p1[1]) {
			continue
		}

		if intersect(d0, d1, p0, p1) {
			return true
		}
	}
	return false
}

func area2(a, b, c []int) int {
	return (b[0]-a[0])*(c[1]-a[1]) - (c[0]-a[0])*(b[1]-a[1])
}

func xorb(x, y bool) bool {
	return x != y
}

func left(a, b, c []int) bool {
	return area2(a, b, c) < 0
}

func leftOn(a, b, c []int) bool {
	return area2(a, b, c) <= 0
}

func collinear(a, b, c []int) bool {
	return area2(a, b, c) == 0
}

func properIntersect(a, b, c, d []int) bool {
	// Eliminate improper cases.
	if collinear(a, b, c) || collinear(a, b, d) ||
		collinear(c, d, a) || collinear(c, d, b) {
		return false
	}
	return xorb(left(a, b, c), left(a, b, d)) && xorb(left(c, d, a), left(c, d, b))
}

func between(a, b, c []int) bool {
	if !collinear(a, b, c) {
		return false
	}
	// If ab not vertical, check betweenness on x; else on y.
	if a[0] != b[0] {
		return ((a[0] <= c[0]) && (c[0] <= b[0])) || ((a[0] >= c[0]) && (c[0] >= b[0]))
	}
	return ((a[1] <= c[1]) && (c[1] <= b[1])) || ((a[1] >= c[1]) && (c[1] >= b[1]))
}

func intersect(a, b, c, d []int) bool {
	if properIntersect(a, b, c, d) {
		return true
	}
	return between(a, b, c) || between(a, b, d) ||
		between(c, d, a) || between(c, d, b)
}

func vequalInt(a, b []int) bool {
	return a[0] == b[0] && a[1] == b[1]
}

func inCone(i, n int, verts []int, pj []int) bool {
	pi := verts[i*4:]
	pi1 := verts[((i+1)%n)*4:]
	pin1 := verts[((i+n-1)%n)*4:]

	// If P[i] is a convex vertex [ i+1 left or on (i-1,i) ].
	if leftOn(pin1, pi, pi1) {
		return left(pi, pj, pin1) && left(pj, pi, pi1)
	}
	// Assume (i-1,i,i+1) not collinear.
	// else P[i] is reflex.
	return !(leftOn(pi, pj, pi1) && leftOn(pj, pi, pin1))
}

func removeDegenerateSegments(simplified *[]int) {
	// Remove adjacent vertices which are equal on xy-plane,
	// or else the triangulator will get confused.
	npts := len(*simplified) / 4
	for i := 0; i < npts; i++ {
		ni := (i + 1) % npts

		if vequalInt((*simplified)[i*4:], (*simplified)[ni*4:]) {
			// Degenerate segment, remove.
			*simplified = append((*simplified)[:i*4], (*simplified)[(i+1)*4:]...)
			npts--
			i--
		}
	}
}

func mergeContours(ca, cb *RcContour, ia, ib int) bool {
	maxVerts := ca.NVerts + cb.NVerts + 2
	verts := make([]int, maxVerts*4)

	nv := 0

	// Copy contour A.
	for i := 0; i <= ca.NVerts; i++ {
		src := ca.Verts[((ia+i)%ca.NVerts)*4:]
		copy(verts[nv*4:nv*4+4], src[:4])
		nv++
	}

	// Copy contour B
	for i := 0; i <= cb.NVerts; i++ {
		src := cb.Verts[((ib+i)%cb.NVerts)*4:]
		copy(verts[nv*4:nv*4+4], src[:4])
		nv++
	}

	ca.Verts = verts
	ca.NVerts = nv

	cb.Verts = nil
	cb.NVerts = 0

	return true
}

type contourHole struct {
	contour         *RcContour
	minx, miny, leftmost int
}

type contourRegion struct {
	outline *RcContour
	holes   []contourHole
}

type potentialDiagonal struct {
	vert, dist int
}

// / Finds the lowest leftmost vertex of a contour.
func findLeftMostVertex(contour *RcContour) (minx, miny, leftmost int) {
	minx = contour.Verts[0]
	miny = contour.Verts[1]
	leftmost = 0
	for i := 1; i < contour.NVerts; i++ {
		x := contour.Verts[i*4+0]
		y := contour.Verts[i*4+1]
		if x < minx || (x == minx && y < miny) {
			minx = x
			miny = y
			leftmost = i
		}
	}
	return minx, miny, leftmost
}

func mergeRegionHoles(ctx *BuildContext, region *contourRegion) {
	// Sort holes from left to right.
	for i := range region.holes {
		region.holes[i].minx, region.holes[i].miny, region.holes[i].leftmost = findLeftMostVertex(region.holes[i].contour)
	}
	for i := 1; i < len(region.holes); i++ {
		h := region.holes[i]
		j := i - 1
		for j >= 0 {
			prev := region.holes[j]
			if prev.minx < h.minx || (prev.minx == h.minx && prev.miny <= h.miny) {
				break
			}
			region.holes[j+1] = region.holes[j]
			j--
		}
		region.holes[j+1] = h
	}

	maxVerts := region.outline.NVerts
	for i := range region.holes {
		maxVerts += region.holes[i].contour.NVerts
	}

	diags := make([]potentialDiagonal, 0, maxVerts)

	outline := region.outline

	// Merge holes into the outline one by one.
	for i := range region.holes {
		hole := region.holes[i].contour

		index := -1
		bestVertex := region.holes[i].leftmost
		for iter := 0; iter < hole.NVerts; iter++ {
			// Find potential diagonals.
			// The 'best' vertex must be in the cone described by 3 consecutive vertices of the outline.
			// ..o j-1
			//   |
			//   |   * best
			//   |
			// j o-----o j+1
			//         :
			diags = diags[:0]
			corner := hole.Verts[bestVertex*4:]
			for j := 0; j < outline.NVerts; j++ {
				if inCone(j, outline.NVerts, outline.Verts, corner) {
					dx := outline.Verts[j*4+0] - corner[0]
					dy := outline.Verts[j*4+1] - corner[1]
					diags = append(diags, potentialDiagonal{vert: j, dist: dx*dx + dy*dy})
				}
			}
			// Sort potential diagonals by distance, we want to make the connection as short as possible.
			for a := 1; a < len(diags); a++ {
				d := diags[a]
				b := a - 1
				for b >= 0 && diags[b].dist > d.dist {
					diags[b+1] = diags[b]
					b--
				}
				diags[b+1] = d
			}

			// Find a diagonal that is not intersecting the outline not the remaining holes.
			index = -1
			for j := range diags {
				pt := outline.Verts[diags[j].vert*4:]
				intersects := intersectSegContour(pt, corner, diags[j].vert, outline.NVerts, outline.Verts)
				for k := i; k < len(region.holes) && !intersects; k++ {
					intersects = intersects || intersectSegContour(pt, corner, -1, region.holes[k].contour.NVerts, region.holes[k].contour.Verts)
				}
				if !intersects {
					index = diags[j].vert
					break
				}
			}
			// If found non-intersecting diagonal, stop looking.
			if index != -1 {
				break
			}
			// All the potential diagonals for the current vertex were intersecting, try next vertex.
			bestVertex = (bestVertex + 1) % hole.NVerts
		}

		if index == -1 {
			ctx.Warningf("mergeRegionHoles: Failed to find merge points for %p and %p.", region.outline, hole)
			continue
		}
		if !mergeContours(region.outline, hole, index, bestVertex) {
			ctx.Warningf("mergeRegionHoles: Failed to merge contours %p and %p.", region.outline, hole)
			continue
		}
	}
}

// / Contour build flags.
const (
	RC_CONTOUR_TESS_WALL_EDGES = 0x01 ///< Tessellate solid (impassable) edges during contour simplification.
	RC_CONTOUR_TESS_AREA_EDGES = 0x02 ///< Tessellate edges between areas during contour simplification.
)

// / Builds a contour set from the region outlines in the provided compact
// / heightfield. The raw contours will match the region outlines exactly;
// / maxError and maxEdgeLen control how closely the simplified contours
// / will match them.
func RcBuildContours(ctx *BuildContext, chf *RcCompactHeightfield,
	maxError float32, maxEdgeLen int, buildFlags int) (*RcContourSet, bool) {

	ctx.StartTimer(RC_TIMER_BUILD_CONTOURS)
	defer ctx.StopTimer(RC_TIMER_BUILD_CONTOURS)

	w := chf.Width
	h := chf.Height
	borderSize := chf.BorderSize

	cset := &RcContourSet{
		Bmin:       chf.Bmin,
		Bmax:       chf.Bmax,
		Cs:         chf.Cs,
		Ch:         chf.Ch,
		Width:      chf.Width - chf.BorderSize*2,
		Height:     chf.Height - chf.BorderSize*2,
		BorderSize: chf.BorderSize,
		MaxError:   maxError,
	}
	if borderSize > 0 {
		// If the heightfield was built with a border, remove the offset.
		pad := float32(borderSize) * chf.Cs
		cset.Bmin[0] += pad
		cset.Bmin[1] += pad
		cset.Bmax[0] -= pad
		cset.Bmax[1] -= pad
	}

	flags := make([]uint8, chf.SpanCount)

	// Mark boundaries.
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := &chf.Cells[x+y*w]
			for i := int(c.Index); i < int(c.Index+c.Count); i++ {
				var res uint8
				s := &chf.Spans[i]
				if s.Reg == 0 || (s.Reg&RC_BORDER_REG) != 0 {
					flags[i] = 0
					continue
				}
				for dir := 0; dir < 4; dir++ {
					var r uint16
					if RcGetCon(s, dir) != RC_NOT_CONNECTED {
						ax := x + RcGetDirOffsetX(dir)
						ay := y + RcGetDirOffsetY(dir)
						ai := int(chf.Cells[ax+ay*w].Index) + RcGetCon(s, dir)
						r = chf.Spans[ai].Reg
					}
					if r == s.Reg {
						res |= 1 << uint(dir)
					}
				}
				flags[i] = res ^ 0xf // Inverse, mark non connected edges.
			}
		}
	}

	verts := make([]int, 0, 256)
	simplified := make([]int, 0, 64)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := &chf.Cells[x+y*w]
			for i := int(c.Index); i < int(c.Index+c.Count); i++ {
				if flags[i] == 0 || flags[i] == 0xf {
					flags[i] = 0
					continue
				}
				reg := chf.Spans[i].Reg
				if reg == 0 || (reg&RC_BORDER_REG) != 0 {
					continue
				}
				area := chf.Areas[i]

				verts = verts[:0]
				simplified = simplified[:0]

				walkContourBoundary(x, y, i, chf, flags, &verts)

				simplifyContour(&verts, &simplified, maxError, maxEdgeLen, buildFlags)
				removeDegenerateSegments(&simplified)

				// Store region->contour remap info.
				// Create contour.
				if len(simplified)/4 >= 3 {
					var cont RcContour
					cont.NVerts = len(simplified) / 4
					cont.Verts = make([]int, len(simplified))
					copy(cont.Verts, simplified)
					if borderSize > 0 {
						// If the heightfield was built with a border, remove the offset.
						for j := 0; j < cont.NVerts; j++ {
							cont.Verts[j*4+0] -= borderSize
							cont.Verts[j*4+1] -= borderSize
						}
					}

					cont.NRVerts = len(verts) / 4
					cont.RVerts = make([]int, len(verts))
					copy(cont.RVerts, verts)
					if borderSize > 0 {
						for j := 0; j < cont.NRVerts; j++ {
							cont.RVerts[j*4+0] -= borderSize
							cont.RVerts[j*4+1] -= borderSize
						}
					}

					cont.Reg = reg
					cont.Area = area

					cset.Conts = append(cset.Conts, cont)
				}
			}
		}
	}

	// Merge holes if needed.
	if len(cset.Conts) > 0 {
		// Calculate winding of all polygons.
		winding := make([]int8, len(cset.Conts))
		nholes := 0
		for i := range cset.Conts {
			cont := &cset.Conts[i]
			// If the contour is wound backwards, it is a hole.
			if calcAreaOfPolygon2D(cont.Verts, cont.NVerts) < 0 {
				winding[i] = -1
				nholes++
			} else {
				winding[i] = 1
			}
		}

		if nholes > 0 {
			// Collect outline contour and holes contours per region.
			// We assume that there is one outline and multiple holes.
			nregions := int(chf.MaxRegions) + 1
			regions := make([]contourRegion, nregions)

			for i := range cset.Conts {
				cont := &cset.Conts[i]
				// Positively wound contours are outlines, negative holes.
				if winding[i] > 0 {
					if regions[cont.Reg].outline != nil {
						ctx.Errorf("rcBuildContours: Multiple outlines for region %d.", cont.Reg)
					}
					regions[cont.Reg].outline = cont
				} else {
					regions[cont.Reg].holes = append(regions[cont.Reg].holes, contourHole{contour: cont})
				}
			}

			for i := 0; i < nregions; i++ {
				reg := &regions[i]
				if len(reg.holes) == 0 {
					continue
				}

				if reg.outline != nil {
					mergeRegionHoles(ctx, reg)
				} else {
					// The region does not have an outline.
					// This can happen if the contour becomes self-overlapping because of
					// too aggressive simplification settings.
					ctx.Errorf("rcBuildContours: Bad outline for region %d, contour simplification is likely too aggressive.", i)
				}
			}

			// Remove merged holes from the contour list.
			kept := cset.Conts[:0]
			for i := range cset.Conts {
				if cset.Conts[i].NVerts > 0 {
					kept = append(kept, cset.Conts[i])
				}
			}
			cset.Conts = kept
		}
	}

	return cset, true
}
