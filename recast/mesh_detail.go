package recast

import (
	"github.com/ttvmkos/r5nav/common"
)

// / Contains triangle meshes that represent detailed height data
// / associated with the polygons in its associated polygon mesh object.
type RcPolyMeshDetail struct {
	Meshes  []uint32  ///< The sub-mesh data. [Size: 4*NMeshes]
	Verts   []float32 ///< The mesh vertices. [Size: 3*NVerts]
	Tris    []uint8   ///< The mesh triangles. [Size: 4*NTris]
	NMeshes int       ///< The number of sub-meshes defined by Meshes.
	NVerts  int       ///< The number of vertices in Verts.
	NTris   int       ///< The number of triangles in Tris.
}

// / Detail triangle edge flags.
const (
	RC_DETAIL_EDGE_BOUNDARY = 0x01 ///< Detail triangle edge is part of the poly boundary.
)

const unsetHeight = 0xffff

type heightPatch struct {
	data          []uint16
	xmin, ymin    int
	width, height int
}

func vdot2df(a, b []float32) float32 {
	return a[0]*b[0] + a[1]*b[1]
}

func vdistSq2f(p, q []float32) float32 {
	dx := q[0] - p[0]
	dy := q[1] - p[1]
	return dx*dx + dy*dy
}

func vdist2f(p, q []float32) float32 {
	return common.Sqrtf(vdistSq2f(p, q))
}

func vcross2f(p1, p2, p3 []float32) float32 {
	u1 := p2[0] - p1[0]
	v1 := p2[1] - p1[1]
	u2 := p3[0] - p1[0]
	v2 := p3[1] - p1[1]
	return u1*v2 - v1*u2
}

func circumCircle(p1, p2, p3, c []float32) (r float32, ok bool) {
	const eps = 1e-6
	// Calculate the circle relative to p1, to avoid some precision issues.
	v1 := []float32{0, 0, 0}
	v2 := make([]float32, 3)
	v3 := make([]float32, 3)
	common.Vsub(v2, p2, p1)
	common.Vsub(v3, p3, p1)

	cp := vcross2f(v1, v2, v3)
	if common.Fabsf(cp) > eps {
		v1Sq := vdot2df(v1, v1)
		v2Sq := vdot2df(v2, v2)
		v3Sq := vdot2df(v3, v3)
		c[0] = (v1Sq*(v2[1]-v3[1]) + v2Sq*(v3[1]-v1[1]) + v3Sq*(v1[1]-v2[1])) / (2 * cp)
		c[1] = (v1Sq*(v3[0]-v2[0]) + v2Sq*(v1[0]-v3[0]) + v3Sq*(v2[0]-v1[0])) / (2 * cp)
		c[2] = 0
		r = vdist2f(c, v1)
		common.Vadd(c, c, p1)
		return r, true
	}

	common.Vcopy(c, p1)
	return 0, false
}

func distPtTri(p, a, b, c []float32) float32 {
	v0 := make([]float32, 3)
	v1 := make([]float32, 3)
	v2 := make([]float32, 3)
	common.Vsub(v0, c, a)
	common.Vsub(v1, b, a)
	common.Vsub(v2, p, a)

	dot00 := vdot2df(v0, v0)
	dot01 := vdot2df(v0, v1)
	dot02 := vdot2df(v0, v2)
	dot11 := vdot2df(v1, v1)
	dot12 := vdot2df(v1, v2)

	// Compute barycentric coordinates
	invDenom := 1.0 / (dot00*dot11 - dot01*dot01)
	u := (dot11*dot02 - dot01*dot12) * invDenom
	v := (dot00*dot12 - dot01*dot02) * invDenom

	// If point lies inside the triangle, return interpolated height.
	const EPS = 1e-4
	if u >= -EPS && v >= -EPS && (u+v) <= 1+EPS {
		h := a[2] + v0[2]*u + v1[2]*v
		return common.Fabsf(h - p[2])
	}
	return 3.4e38
}

func distancePtSegf(pt, p, q []float32) float32 {
	pqx := q[0] - p[0]
	pqy := q[1] - p[1]
	pqz := q[2] - p[2]
	dx := pt[0] - p[0]
	dy := pt[1] - p[1]
	dz := pt[2] - p[2]
	d := pqx*pqx + pqy*pqy + pqz*pqz
	t := pqx*dx + pqy*dy + pqz*dz
	if d > 0 {
		t /= d
	}
	t = common.Clamp(t, 0, 1)

	dx = p[0] + t*pqx - pt[0]
	dy = p[1] + t*pqy - pt[1]
	dz = p[2] + t*pqz - pt[2]

	return dx*dx + dy*dy + dz*dz
}

func distancePtSeg2Df(pt, p, q []float32) float32 {
	pqx := q[0] - p[0]
	pqy := q[1] - p[1]
	dx := pt[0] - p[0]
	dy := pt[1] - p[1]
	d := pqx*pqx + pqy*pqy
	t := pqx*dx + pqy*dy
	if d > 0 {
		t /= d
	}
	t = common.Clamp(t, 0, 1)

	dx = p[0] + t*pqx - pt[0]
	dy = p[1] + t*pqy - pt[1]

	return dx*dx + dy*dy
}

func distToTriMesh(p, verts []float32, tris []int, ntris int) float32 {
	dmin := float32(3.4e38)
	for i := 0; i < ntris; i++ {
		va := verts[tris[i*4+0]*3:]
		vb := verts[tris[i*4+1]*3:]
		vc := verts[tris[i*4+2]*3:]
		d := distPtTri(p, va, vb, vc)
		if d < dmin {
			dmin = d
		}
	}
	if dmin == 3.4e38 {
		return -1
	}
	return dmin
}

func distToPoly(nvert int, verts, p []float32) float32 {
	dmin := float32(3.4e38)
	c := false
	for i, j := 0, nvert-1; i < nvert; j, i = i, i+1 {
		vi := verts[i*3:]
		vj := verts[j*3:]
		if ((vi[1] > p[1]) != (vj[1] > p[1])) &&
			(p[0] < (vj[0]-vi[0])*(p[1]-vi[1])/(vj[1]-vi[1])+vi[0]) {
			c = !c
		}
		dmin = min(dmin, distancePtSeg2Df(p, vj, vi))
	}
	if c {
		return -dmin
	}
	return dmin
}

func getHeight(fx, fy, fz, ics, ch float32, radius int, hp *heightPatch) uint16 {
	ix := int(common.Floorf(fx*ics + 0.01))
	iy := int(common.Floorf(fy*ics + 0.01))
	ix = common.Clamp(ix-hp.xmin, 0, hp.width-1)
	iy = common.Clamp(iy-hp.ymin, 0, hp.height-1)
	h := hp.data[ix+iy*hp.width]
	if h == unsetHeight {
		// Special case when data might be bad.
		// Walk adjacent cells in a spiral up to 'radius', and look
		// for a pixel which has a valid height.
		x, y, dx, dy := 1, 0, 1, 0
		maxSize := radius*2 + 1
		maxIter := maxSize*maxSize - 1

		nextRingIterStart := 8
		nextRingIters := 16

		dmin := float32(3.4e38)
		for i := 0; i < maxIter; i++ {
			nx := ix + x
			ny := iy + y

			if nx >= 0 && ny >= 0 && nx < hp.width && ny < hp.height {
				nh := hp.data[nx+ny*hp.width]
				if nh != unsetHeight {
					d := common.Fabsf(float32(nh)*ch - fz)
					if d < dmin {
						h = nh
						dmin = d
					}
				}
			}

			// We are searching in a grid which looks approximately like this:
			//  __________
			// |2 ______ 2|
			// | |1 __ 1| |
			// | | |__| | |
			// | |______| |
			// |__________|
			// We want to find the best height as close to the center cell as possible. This means that
			// if we find a height in one of the neighbor cells to the center, we don't want to
			// expand further out than the 8 neighbors - we want to limit our search to the closest
			// of these "rings", but the best height in the ring.
			if i+1 == nextRingIterStart {
				if h != unsetHeight {
					break
				}

				nextRingIterStart += nextRingIters
				nextRingIters += 8
			}

			if (x == y) || ((x < 0) && (x == -y)) || ((x > 0) && (x == 1-y)) {
				dx, dy = -dy, dx
			}
			x += dx
			y += dy
		}
	}
	return h
}

const (
	evUndef = -1
	evHull  = -2
)

func findEdge(edges []int, nedges, s, t int) int {
	for i := 0; i < nedges; i++ {
		e := edges[i*4:]
		if (e[0] == s && e[1] == t) || (e[0] == t && e[1] == s) {
			return i
		}
	}
	return evUndef
}

func addEdge(ctx *BuildContext, edges []int, nedges *int, maxEdges, s, t, l, r int) int {
	if *nedges >= maxEdges {
		ctx.Errorf("addEdge: Too many edges (%d/%d).", *nedges, maxEdges)
		return evUndef
	}

	// Add edge if not already in the triangulation.
	e := findEdge(edges, *nedges, s, t)
	if e == evUndef {
		edge := edges[*nedges*4:]
		edge[0] = s
		edge[1] = t
		edge[2] = l
		edge[3] = r
		res := *nedges
		*nedges++
		return res
	}
	return evUndef
}

func updateLeftFace(e []int, s, t, f int) {
	if e[0] == s && e[1] == t && e[2] == evUndef {
		e[2] = f
	} else if e[1] == s && e[0] == t && e[3] == evUndef {
		e[3] = f
	}
}

func overlapSegSeg2d(a, b, c, d []float32) bool {
	a1 := vcross2f(a, b, d)
	a2 := vcross2f(a, b, c)
	if a1*a2 < 0.0 {
		a3 := vcross2f(c, d, a)
		a4 := a3 + a2 - a1
		if a3*a4 < 0.0 {
			return true
		}
	}
	return false
}

func overlapEdges(pts []float32, edges []int, nedges, s1, t1 int) bool {
	for i := 0; i < nedges; i++ {
		s0 := edges[i*4+0]
		t0 := edges[i*4+1]
		// Same or connected edges do not overlap.
		if s0 == s1 || s0 == t1 || t0 == s1 || t0 == t1 {
			continue
		}
		if overlapSegSeg2d(pts[s0*3:], pts[t0*3:], pts[s1*3:], pts[t1*3:]) {
			return true
		}
	}
	return false
}

func completeFacet(ctx *BuildContext, pts []float32, npts int, edges []int, nedges *int, maxEdges int, nfaces *int, e int) {
	const EPS = 1e-5

	edge := edges[e*4:]

	// Cache s and t.
	var s, t int
	if edge[2] == evUndef {
		s = edge[0]
		t = edge[1]
	} else if edge[3] == evUndef {
		s = edge[1]
		t = edge[0]
	} else {
		// Edge already completed.
		return
	}

	// Find best point on left of edge.
	pt := npts
	c := []float32{0, 0, 0}
	var r float32 = -1
	for u := 0; u < npts; u++ {
		if u == s || u == t {
			continue
		}
		if vcross2f(pts[s*3:], pts[t*3:], pts[u*3:]) > EPS {
			if r < 0 {
				// The circle is not updated yet, do it now.
				pt = u
				r, _ = circumCircle(pts[s*3:], pts[t*3:], pts[u*3:], c)
				continue
			}
			d := vdist2f(c, pts[u*3:])
			tol := float32(0.001)
			if d > r*(1+tol) {
				// Outside current circumcircle, skip.
				continue
			} else if d < r*(1-tol) {
				// Inside safe circumcircle, update circle.
				pt = u
				r, _ = circumCircle(pts[s*3:], pts[t*3:], pts[u*3:], c)
			} else {
				// Inside epsilon circumcircle, do extra tests to make sure the edge is valid.
				// s-u and t-u cannot overlap with s-pt nor t-pt if they exist.
				if overlapEdges(pts, edges, *nedges, s, u) {
					continue
				}
				if overlapEdges(pts, edges, *nedges, t, u) {
					continue
				}
				// Edge is valid.
				pt = u
				r, _ = circumCircle(pts[s*3:], pts[t*3:], pts[u*3:], c)
			}
		}
	}

	// Add new triangle or update edge info if s-t is on hull.
	if pt < npts {
		// Update face information of edge being completed.
		updateLeftFace(edges[e*4:], s, t, *nfaces)

		// Add new edge or update face info of old edge.
		e = findEdge(edges, *nedges, pt, s)
		if e == evUndef {
			addEdge(ctx, edges, nedges, maxEdges, pt, s, *nfaces, evUndef)
		} else {
			updateLeftFace(edges[e*4:], pt, s, *nfaces)
		}

		// Add new edge or update face info of old edge.
		e = findEdge(edges, *nedges, t, pt)
		if e == evUndef {
			addEdge(ctx, edges, nedges, maxEdges, t, pt, *nfaces, evUndef)
		} else {
			updateLeftFace(edges[e*4:], t, pt, *nfaces)
		}

		*nfaces++
	} else {
		updateLeftFace(edges[e*4:], s, t, evHull)
	}
}

func delaunayHull(ctx *BuildContext, npts int, pts []float32, nhull int, hull []int, tris *[]int) {
	nfaces := 0
	nedges := 0
	maxEdges := npts * 10
	edges := make([]int, maxEdges*4)

	for i, j := 0, nhull-1; i < nhull; j, i = i, i+1 {
		addEdge(ctx, edges, &nedges, maxEdges, hull[j], hull[i], evHull, evUndef)
	}

	currentEdge := 0
	for currentEdge < nedges {
		if edges[currentEdge*4+2] == evUndef {
			completeFacet(ctx, pts, npts, edges, &nedges, maxEdges, &nfaces, currentEdge)
		}
		if edges[currentEdge*4+3] == evUndef {
			completeFacet(ctx, pts, npts, edges, &nedges, maxEdges, &nfaces, currentEdge)
		}
		currentEdge++
	}

	// Create tris
	*tris = (*tris)[:0]
	for i := 0; i < nfaces*4; i++ {
		*tris = append(*tris, -1)
	}

	for i := 0; i < nedges; i++ {
		e := edges[i*4:]
		if e[3] >= 0 {
			// Left face
			t := (*tris)[e[3]*4:]
			if t[0] == -1 {
				t[0] = e[0]
				t[1] = e[1]
			} else if t[0] == e[1] {
				t[2] = e[0]
			} else if t[1] == e[0] {
				t[2] = e[1]
			}
		}
		if e[2] >= 0 {
			// Right
			t := (*tris)[e[2]*4:]
			if t[0] == -1 {
				t[0] = e[1]
				t[1] = e[0]
			} else if t[0] == e[0] {
				t[2] = e[1]
			} else if t[1] == e[1] {
				t[2] = e[0]
			}
		}
	}

	for i := 0; i < len(*tris)/4; i++ {
		t := (*tris)[i*4:]
		if t[0] == -1 || t[1] == -1 || t[2] == -1 {
			ctx.Warningf("delaunayHull: Removing dangling face %d [%d,%d,%d].", i, t[0], t[1], t[2])
			t[0] = (*tris)[(len(*tris)/4-1)*4+0]
			t[1] = (*tris)[(len(*tris)/4-1)*4+1]
			t[2] = (*tris)[(len(*tris)/4-1)*4+2]
			t[3] = (*tris)[(len(*tris)/4-1)*4+3]
			*tris = (*tris)[:len(*tris)-4]
			i--
		}
	}
}

// Calculate minimum extend of the polygon.
func polyMinExtent(verts []float32, nverts int) float32 {
	minDist := float32(3.4e38)
	for i := 0; i < nverts; i++ {
		ni := (i + 1) % nverts
		p1 := verts[i*3:]
		p2 := verts[ni*3:]
		maxEdgeDist := float32(0)
		for j := 0; j < nverts; j++ {
			if j == i || j == ni {
				continue
			}
			d := distancePtSeg2Df(verts[j*3:], p1, p2)
			maxEdgeDist = max(maxEdgeDist, d)
		}
		minDist = min(minDist, maxEdgeDist)
	}
	return common.Sqrtf(minDist)
}

func triangulateHull(nverts int, verts []float32, nhull int, hull []int, nin int, tris *[]int) {
	start, left, right := 0, 1, nhull-1

	// Start from an ear with shortest perimeter.
	// This tends to favor well formed triangles as starting point.
	dmin := float32(3.4e38)
	for i := 0; i < nhull; i++ {
		if hull[i] >= nin {
			continue // Ears are triangles with original vertices as middle vertex while others are actually line segments on edges
		}
		pi := prev(i, nhull)
		ni := next(i, nhull)
		pv := verts[hull[pi]*3:]
		cv := verts[hull[i]*3:]
		nv := verts[hull[ni]*3:]
		d := vdist2f(pv, cv) + vdist2f(cv, nv) + vdist2f(nv, pv)
		if d < dmin {
			start = i
			left = ni
			right = pi
			dmin = d
		}
	}

	// Add first triangle
	*tris = append(*tris, hull[start], hull[left], hull[right], 0)

	// Triangulate the polygon by moving left or right,
	// depending on which triangle has shorter perimeter.
	// This heuristic was chose experimentally, since it seems
	// handle tessellated straight edges well.
	for next(left, nhull) != right {
		// Check to see if se should advance left or right.
		nleft := next(left, nhull)
		nright := prev(right, nhull)

		cvleft := verts[hull[left]*3:]
		nvleft := verts[hull[nleft]*3:]
		cvright := verts[hull[right]*3:]
		nvright := verts[hull[nright]*3:]
		dleft := vdist2f(cvleft, nvleft) + vdist2f(nvleft, cvright)
		dright := vdist2f(cvright, nvright) + vdist2f(cvleft, nvright)

		if dleft < dright {
			*tris = append(*tris, hull[left], hull[nleft], hull[right], 0)
			left = nleft
		} else {
			*tris = append(*tris, hull[left], hull[nright], hull[right], 0)
			right = nright
		}
	}
}

func getJitterX(i int) float32 {
	return (float32((i*0x8da6b343)&0xffff) / 65535.0 * 2.0) - 1.0
}

func getJitterY(i int) float32 {
	return (float32((i*0xd8163841)&0xffff) / 65535.0 * 2.0) - 1.0
}

func buildPolyDetail(ctx *BuildContext, in []float32, nin int,
	sampleDist, sampleMaxError float32, heightSearchRadius int,
	chf *RcCompactHeightfield, hp *heightPatch,
	verts []float32, edges, tris, samples *[]int) (nverts int, ok bool) {

	const MAX_VERTS = 127
	const MAX_TRIS = 255 // Max tris for delaunay is 2n-2-k (n=num verts, k=num hull verts).
	const MAX_VERTS_PER_EDGE = 32
	edge := make([]float32, (MAX_VERTS_PER_EDGE+1)*3)
	hull := make([]int, MAX_VERTS)
	nhull := 0

	nverts = nin

	for i := 0; i < nin; i++ {
		common.Vcopy(verts[i*3:], in[i*3:])
	}

	*edges = (*edges)[:0]
	*tris = (*tris)[:0]

	cs := chf.Cs
	ics := 1.0 / cs

	// Calculate minimum extents of the polygon based on input data.
	minExtent := polyMinExtent(verts, nverts)

	// Tessellate outlines.
	// This is done in separate pass in order to ensure
	// seamless height values across the ply boundaries.
	if sampleDist > 0 {
		for i, j := 0, nin-1; i < nin; j, i = i, i+1 {
			vj := in[j*3:]
			vi := in[i*3:]
			swapped := false
			// Make sure the segments are always handled in same order
			// using lexological sort or else there will be seams.
			if common.Fabsf(vj[0]-vi[0]) < 1e-6 {
				if vj[1] > vi[1] {
					vj, vi = vi, vj
					swapped = true
				}
			} else {
				if vj[0] > vi[0] {
					vj, vi = vi, vj
					swapped = true
				}
			}
			// Create samples along the edge.
			dx := vi[0] - vj[0]
			dy := vi[1] - vj[1]
			dz := vi[2] - vj[2]
			d := common.Sqrtf(dx*dx + dy*dy)
			nn := 1 + int(common.Floorf(d/sampleDist))
			if nn >= MAX_VERTS_PER_EDGE {
				nn = MAX_VERTS_PER_EDGE - 1
			}
			if nverts+nn >= MAX_VERTS {
				nn = MAX_VERTS - 1 - nverts
			}

			for k := 0; k <= nn; k++ {
				u := float32(k) / float32(nn)
				pos := edge[k*3:]
				pos[0] = vj[0] + dx*u
				pos[1] = vj[1] + dy*u
				pos[2] = vj[2] + dz*u
				pos[2] = float32(getHeight(pos[0], pos[1], pos[2], ics, chf.Ch, heightSearchRadius, hp)) * chf.Ch
			}
			// Simplify samples.
			idx := [MAX_VERTS_PER_EDGE]int{0, nn}
			nidx := 2
			for k := 0; k < nidx-1; {
				a := idx[k]
				b := idx[k+1]
				va := edge[a*3:]
				vb := edge[b*3:]
				// Find maximum deviation along the segment.
				var maxd float32
				maxi := -1
				for m := a + 1; m < b; m++ {
					dev := distancePtSegf(edge[m*3:], va, vb)
					if dev > maxd {
						maxd = dev
						maxi = m
					}
				}
				// If the max deviation is larger than accepted error,
				// add new point, else continue to next segment.
				if maxi != -1 && maxd > common.Sqr(sampleMaxError) {
					for m := nidx; m > k; m-- {
						idx[m] = idx[m-1]
					}
					idx[k+1] = maxi
					nidx++
				} else {
					k++
				}
			}

			hull[nhull] = j
			nhull++
			// Add new vertices.
			if swapped {
				for k := nidx - 2; k > 0; k-- {
					common.Vcopy(verts[nverts*3:], edge[idx[k]*3:])
					hull[nhull] = nverts
					nhull++
					nverts++
				}
			} else {
				for k := 1; k < nidx-1; k++ {
					common.Vcopy(verts[nverts*3:], edge[idx[k]*3:])
					hull[nhull] = nverts
					nhull++
					nverts++
				}
			}
		}
	} else {
		for i := 0; i < nin; i++ {
			hull[nhull] = i
			nhull++
		}
	}

	// If the polygon minimum extent is small (sliver or small triangle), do not try to add internal points.
	if minExtent < sampleDist*2 {
		triangulateHull(nverts, verts, nhull, hull, nin, tris)
		setTriFlags(*tris, nhull, hull)
		return nverts, true
	}

	// Tessellate the base mesh.
	// We're using the triangulateHull instead of delaunayHull as it tends to
	// create a bit better triangulation for long thin triangles when there
	// are no internal points.
	triangulateHull(nverts, verts, nhull, hull, nin, tris)

	if len(*tris) == 0 {
		// Could not triangulate the poly, make sure there is some valid data there.
		ctx.Warningf("buildPolyDetail: Could not triangulate polygon (%d verts).", nverts)
		return nverts, true
	}

	if sampleDist > 0 {
		// Create sample locations in a grid.
		bmin := make([]float32, 3)
		bmax := make([]float32, 3)
		common.Vcopy(bmin, in)
		common.Vcopy(bmax, in)
		for i := 1; i < nin; i++ {
			common.Vmin(bmin, in[i*3:])
			common.Vmax(bmax, in[i*3:])
		}
		x0 := int(common.Floorf(bmin[0] / sampleDist))
		x1 := int(common.Ceilf(bmax[0] / sampleDist))
		y0 := int(common.Floorf(bmin[1] / sampleDist))
		y1 := int(common.Ceilf(bmax[1] / sampleDist))
		*samples = (*samples)[:0]
		pt := make([]float32, 3)
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				pt[0] = float32(x) * sampleDist
				pt[1] = float32(y) * sampleDist
				pt[2] = (bmax[2] + bmin[2]) * 0.5
				// Make sure the samples are not too close to the edges.
				if distToPoly(nin, in, pt) > -sampleDist/2 {
					continue
				}
				*samples = append(*samples, x, int(getHeight(pt[0], pt[1], pt[2], ics, chf.Ch, heightSearchRadius, hp)), y, 0)
			}
		}

		// Add the samples starting from the one that has the most
		// error. The procedure stops when all samples are added
		// or when the max error is within treshold.
		nsamples := len(*samples) / 4
		for iter := 0; iter < nsamples; iter++ {
			if nverts >= MAX_VERTS {
				break
			}

			// Find sample with most error.
			bestpt := make([]float32, 3)
			var bestd float32
			besti := -1
			for i := 0; i < nsamples; i++ {
				s := (*samples)[i*4:]
				if s[3] != 0 {
					continue // skip added.
				}
				// The sample location is jittered to get rid of some bad triangulations
				// which are cause by symmetrical data from the grid structure.
				pt[0] = float32(s[0])*sampleDist + getJitterX(i)*cs*0.1
				pt[1] = float32(s[2])*sampleDist + getJitterY(i)*cs*0.1
				pt[2] = float32(s[1]) * chf.Ch
				d := distToTriMesh(pt, verts, *tris, len(*tris)/4)
				if d < 0 {
					continue // did not hit the mesh.
				}
				if d > bestd {
					bestd = d
					besti = i
					common.Vcopy(bestpt, pt)
				}
			}
			// If the max error is within accepted threshold, stop tesselating.
			if bestd <= sampleMaxError || besti == -1 {
				break
			}
			// Mark sample as added.
			(*samples)[besti*4+3] = 1
			// Add the new sample point.
			common.Vcopy(verts[nverts*3:], bestpt)
			nverts++

			// Create new triangulation.
			// TODO: Incremental add instead of full rebuild.
			*edges = (*edges)[:0]
			*tris = (*tris)[:0]
			delaunayHull(ctx, nverts, verts, nhull, hull, tris)
		}
	}

	ntris := len(*tris) / 4
	if ntris > MAX_TRIS {
		*tris = (*tris)[:MAX_TRIS*4]
		ctx.Errorf("rcBuildPolyMeshDetail: Shrinking triangle count from %d to max %d.", ntris, MAX_TRIS)
	}

	setTriFlags(*tris, nhull, hull)

	return nverts, true
}

func onHull(a, b, nhull int, hull []int) bool {
	// All internal sampled points come after the hull so we can early out for those.
	if a >= nhull || b >= nhull {
		return false
	}

	for j, i := nhull-1, 0; i < nhull; j, i = i, i+1 {
		if a == hull[j] && b == hull[i] {
			return true
		}
	}

	return false
}

// Find edges that lie on hull and mark them as such.
func setTriFlags(tris []int, nhull int, hull []int) {
	// Matches DT_DETAIL_EDGE_BOUNDARY
	const DETAIL_EDGE_BOUNDARY = 0x1

	for i := 0; i < len(tris)/4; i++ {
		a := tris[i*4+0]
		b := tris[i*4+1]
		c := tris[i*4+2]
		flags := 0
		if onHull(a, b, nhull, hull) {
			flags |= DETAIL_EDGE_BOUNDARY << 0
		}
		if onHull(b, c, nhull, hull) {
			flags |= DETAIL_EDGE_BOUNDARY << 2
		}
		if onHull(c, a, nhull, hull) {
			flags |= DETAIL_EDGE_BOUNDARY << 4
		}
		tris[i*4+3] = flags
	}
}

func seedArrayWithPolyCenter(ctx *BuildContext, chf *RcCompactHeightfield,
	poly []uint16, npoly int, verts []uint16, bs int, hp *heightPatch, array *[]int) {

	// Note: Reads to the compact heightfield are offset by border size
	// since border size offset is already removed from the polymesh vertices.

	offset := [9 * 2]int{0, 0, -1, -1, 0, -1, 1, -1, 1, 0, 1, 1, 0, 1, -1, 1, -1, 0}

	// Find cell closest to a poly vertex
	startCellX, startCellY, startSpanIndex := 0, 0, -1
	dmin := unsetHeight
	for j := 0; j < npoly && dmin > 0; j++ {
		for k := 0; k < 9 && dmin > 0; k++ {
			ax := int(verts[int(poly[j])*3+0]) + offset[k*2+0]
			ay := int(verts[int(poly[j])*3+1]) + offset[k*2+1]
			az := int(verts[int(poly[j])*3+2])
			if ax < hp.xmin || ax >= hp.xmin+hp.width ||
				ay < hp.ymin || ay >= hp.ymin+hp.height {
				continue
			}

			c := &chf.Cells[(ax+bs)+(ay+bs)*chf.Width]
			for i := int(c.Index); i < int(c.Index+c.Count) && dmin > 0; i++ {
				s := &chf.Spans[i]
				d := common.Abs(az - int(s.Z))
				if d < dmin {
					startCellX = ax
					startCellY = ay
					startSpanIndex = i
					dmin = d
				}
			}
		}
	}

	if startSpanIndex == -1 {
		return
	}

	// Find center of the polygon
	pcx, pcy := 0, 0
	for j := 0; j < npoly; j++ {
		pcx += int(verts[int(poly[j])*3+0])
		pcy += int(verts[int(poly[j])*3+1])
	}
	pcx /= npoly
	pcy /= npoly

	// Use seeds array as a stack for DFS
	*array = (*array)[:0]
	*array = append(*array, startCellX, startCellY, startSpanIndex)

	dirs := [4]int{0, 1, 2, 3}
	for i := range hp.data[:hp.width*hp.height] {
		hp.data[i] = 0
	}
	cx, cy, ci := -1, -1, -1

	// DFS to move to the center. Note that we need a DFS here and can not just move
	// directly towards the center without recording intermediate nodes, even though the polygons
	// are convex. In very rare we can get stuck due to contour simplification if we do not
	// record nodes.
	for {
		if len(*array) < 3 {
			ctx.Warningf("Walk towards polygon center failed to reach center")
			break
		}

		ci = (*array)[len(*array)-1]
		cy = (*array)[len(*array)-2]
		cx = (*array)[len(*array)-3]
		*array = (*array)[:len(*array)-3]

		// Check if close to center of the polygon.
		if cx == pcx && cy == pcy {
			break
		}

		// If we are already at the correct X-position, prefer direction
		// directly towards the center in the Y-axis; otherwise prefer
		// direction in the X-axis
		var directDir int
		if cx == pcx {
			var d int
			if pcy > cy {
				d = 1
			} else {
				d = -1
			}
			directDir = RcGetDirForOffset(0, d)
		} else {
			var d int
			if pcx > cx {
				d = 1
			} else {
				d = -1
			}
			directDir = RcGetDirForOffset(d, 0)
		}

		// Push the direct dir last so we start with this on next iteration
		dirs[directDir], dirs[3] = dirs[3], dirs[directDir]

		cs := &chf.Spans[ci]
		for i := 0; i < 4; i++ {
			dir := dirs[i]
			if RcGetCon(cs, dir) == RC_NOT_CONNECTED {
				continue
			}

			newX := cx + RcGetDirOffsetX(dir)
			newY := cy + RcGetDirOffsetY(dir)

			hpx := newX - hp.xmin
			hpy := newY - hp.ymin
			if hpx < 0 || hpx >= hp.width || hpy < 0 || hpy >= hp.height {
				continue
			}

			if hp.data[hpx+hpy*hp.width] != 0 {
				continue
			}

			hp.data[hpx+hpy*hp.width] = 1
			*array = append(*array, newX, newY, int(chf.Cells[(newX+bs)+(newY+bs)*chf.Width].Index)+RcGetCon(cs, dir))
		}

		dirs[directDir], dirs[3] = dirs[3], dirs[directDir]
	}

	*array = (*array)[:0]
	// getHeightData seeds are given in coordinates with borders
	*array = append(*array, cx+bs, cy+bs, ci)

	for i := range hp.data[:hp.width*hp.height] {
		hp.data[i] = unsetHeight
	}
	cs := &chf.Spans[ci]
	hp.data[cx-hp.xmin+(cy-hp.ymin)*hp.width] = cs.Z
}

const retractSize = 256

func push3(queue *[]int, v1, v2, v3 int) {
	*queue = append(*queue, v1, v2, v3)
}

func getHeightData(ctx *BuildContext, chf *RcCompactHeightfield,
	poly []uint16, npoly int, verts []uint16, bs int, hp *heightPatch, region uint16) {

	// Note: Reads to the compact heightfield are offset by border size (bs)
	// since border size offset is already removed from the polymesh vertices.

	queue := make([]int, 0, 512)
	for i := range hp.data[:hp.width*hp.height] {
		hp.data[i] = unsetHeight
	}

	empty := true

	// We cannot sample from this poly if it was created from polys
	// of different regions. If it was then it could potentially be overlapping
	// with polys of that region and the heights sampled here could be wrong.
	if region != RC_MULTIPLE_REGS {
		// Copy the height from the same region, and mark region borders
		// as seed points to fill the rest.
		for hy := 0; hy < hp.height; hy++ {
			y := hp.ymin + hy + bs
			for hx := 0; hx < hp.width; hx++ {
				x := hp.xmin + hx + bs
				c := &chf.Cells[x+y*chf.Width]
				for i := int(c.Index); i < int(c.Index+c.Count); i++ {
					s := &chf.Spans[i]
					if s.Reg == region {
						// Store height
						hp.data[hx+hy*hp.width] = s.Z
						empty = false

						// If any of the neighbours is not in same region,
						// add the current location as flood fill start
						border := false
						for dir := 0; dir < 4; dir++ {
							if RcGetCon(s, dir) != RC_NOT_CONNECTED {
								ax := x + RcGetDirOffsetX(dir)
								ay := y + RcGetDirOffsetY(dir)
								ai := int(chf.Cells[ax+ay*chf.Width].Index) + RcGetCon(s, dir)
								as := &chf.Spans[ai]
								if as.Reg != region {
									border = true
									break
								}
							}
						}
						if border {
							push3(&queue, x, y, i)
						}
						break
					}
				}
			}
		}
	}

	// if the polygon does not contain any points from the current region (rare, but happens)
	// or if it could potentially be overlapping polygons of the same region,
	// then use the center as the seed point.
	if empty {
		seedArrayWithPolyCenter(ctx, chf, poly, npoly, verts, bs, hp, &queue)
	}

	// We assume the seed is centered in the polygon, so a BFS to collect
	// height data will ensure we do not move onto overlapping polygons and
	// sample wrong heights.
	head := 0
	for head*3 < len(queue) {
		cx := queue[head*3+0]
		cy := queue[head*3+1]
		ci := queue[head*3+2]
		head++
		if head >= retractSize {
			head = 0
			if len(queue) > retractSize*3 {
				n := copy(queue, queue[retractSize*3:])
				queue = queue[:n]
			} else {
				queue = queue[:0]
			}
		}

		cs := &chf.Spans[ci]
		for dir := 0; dir < 4; dir++ {
			if RcGetCon(cs, dir) == RC_NOT_CONNECTED {
				continue
			}

			ax := cx + RcGetDirOffsetX(dir)
			ay := cy + RcGetDirOffsetY(dir)
			hx := ax - hp.xmin - bs
			hy := ay - hp.ymin - bs

			if hx < 0 || hy < 0 || hx >= hp.width || hy >= hp.height {
				continue
			}

			if hp.data[hx+hy*hp.width] != unsetHeight {
				continue
			}

			ai := int(chf.Cells[ax+ay*chf.Width].Index) + RcGetCon(cs, dir)
			as := &chf.Spans[ai]

			hp.data[hx+hy*hp.width] = as.Z

			push3(&queue, ax, ay, ai)
		}
	}
}

// / Builds a detail mesh from the provided polygon mesh. Interior points
// / are sampled on a grid of spacing sampleDist and kept when their
// / projected height error exceeds sampleMaxError.
func RcBuildPolyMeshDetail(ctx *BuildContext, mesh *RcPolyMesh, chf *RcCompactHeightfield,
	sampleDist, sampleMaxError float32) (*RcPolyMeshDetail, bool) {

	ctx.StartTimer(RC_TIMER_BUILD_POLYMESHDETAIL)
	defer ctx.StopTimer(RC_TIMER_BUILD_POLYMESHDETAIL)

	dmesh := &RcPolyMeshDetail{}

	if mesh.NVerts == 0 || mesh.NPolys == 0 {
		return dmesh, true
	}

	nvp := mesh.Nvp
	cs := mesh.Cs
	ch := mesh.Ch
	orig := mesh.Bmin[:]
	borderSize := mesh.BorderSize
	heightSearchRadius := max(1, int(common.Ceilf(mesh.MaxEdgeError)))

	edges := make([]int, 0, 64)
	tris := make([]int, 0, 512)
	samples := make([]int, 0, 512)
	verts := make([]float32, 256*3)
	var hp heightPatch
	nPolyVerts := 0
	maxhw, maxhh := 0, 0

	bounds := make([]int, mesh.NPolys*4)
	poly := make([]float32, nvp*3)

	// Find max size for a polygon area.
	for i := 0; i < mesh.NPolys; i++ {
		p := mesh.Polys[i*nvp*2:]
		xmin := &bounds[i*4+0]
		xmax := &bounds[i*4+1]
		ymin := &bounds[i*4+2]
		ymax := &bounds[i*4+3]
		*xmin = chf.Width
		*xmax = 0
		*ymin = chf.Height
		*ymax = 0
		for j := 0; j < nvp; j++ {
			if p[j] == RC_MESH_NULL_IDX {
				break
			}
			v := mesh.Verts[int(p[j])*3:]
			*xmin = min(*xmin, int(v[0]))
			*xmax = max(*xmax, int(v[0]))
			*ymin = min(*ymin, int(v[1]))
			*ymax = max(*ymax, int(v[1]))
			nPolyVerts++
		}
		*xmin = max(0, *xmin-1)
		*xmax = min(chf.Width, *xmax+1)
		*ymin = max(0, *ymin-1)
		*ymax = min(chf.Height, *ymax+1)
		if *xmin >= *xmax || *ymin >= *ymax {
			continue
		}
		maxhw = max(maxhw, *xmax-*xmin)
		maxhh = max(maxhh, *ymax-*ymin)
	}

	hp.data = make([]uint16, maxhw*maxhh)

	dmesh.NMeshes = mesh.NPolys
	dmesh.Meshes = make([]uint32, dmesh.NMeshes*4)

	vcap := nPolyVerts + nPolyVerts/2
	tcap := vcap * 2

	dmesh.Verts = make([]float32, 0, vcap*3)
	dmesh.Tris = make([]uint8, 0, tcap*4)

	for i := 0; i < mesh.NPolys; i++ {
		p := mesh.Polys[i*nvp*2:]

		// Store polygon vertices for processing.
		npoly := 0
		for j := 0; j < nvp; j++ {
			if p[j] == RC_MESH_NULL_IDX {
				break
			}
			v := mesh.Verts[int(p[j])*3:]
			poly[j*3+0] = float32(v[0]) * cs
			poly[j*3+1] = float32(v[1]) * cs
			poly[j*3+2] = float32(v[2]) * ch
			npoly++
		}

		// Get the height data from the area of the polygon.
		hp.xmin = bounds[i*4+0]
		hp.ymin = bounds[i*4+2]
		hp.width = bounds[i*4+1] - bounds[i*4+0]
		hp.height = bounds[i*4+3] - bounds[i*4+2]
		getHeightData(ctx, chf, p, npoly, mesh.Verts, borderSize, &hp, mesh.Regs[i])

		// Build detail mesh.
		nverts, ok := buildPolyDetail(ctx, poly, npoly, sampleDist, sampleMaxError,
			heightSearchRadius, chf, &hp, verts, &edges, &tris, &samples)
		if !ok {
			return nil, false
		}

		// Move detail verts to world space.
		for j := 0; j < nverts; j++ {
			verts[j*3+0] += orig[0]
			verts[j*3+1] += orig[1]
			verts[j*3+2] += orig[2] + chf.Ch // Is this offset necessary?
		}
		// Offset poly too, will be used to flag checking.
		for j := 0; j < npoly; j++ {
			poly[j*3+0] += orig[0]
			poly[j*3+1] += orig[1]
			poly[j*3+2] += orig[2]
		}

		// Store detail submesh.
		ntris := len(tris) / 4

		dmesh.Meshes[i*4+0] = uint32(dmesh.NVerts)
		dmesh.Meshes[i*4+1] = uint32(nverts)
		dmesh.Meshes[i*4+2] = uint32(dmesh.NTris)
		dmesh.Meshes[i*4+3] = uint32(ntris)

		// Store vertices
		for j := 0; j < nverts; j++ {
			dmesh.Verts = append(dmesh.Verts, verts[j*3+0], verts[j*3+1], verts[j*3+2])
			dmesh.NVerts++
		}

		// Store triangles
		for j := 0; j < ntris; j++ {
			t := tris[j*4:]
			dmesh.Tris = append(dmesh.Tris, uint8(t[0]), uint8(t[1]), uint8(t[2]), uint8(t[3]))
			dmesh.NTris++
		}
	}

	return dmesh, true
}
