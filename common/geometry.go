package common

// Shared geometry primitives used by both the voxel pipeline and the
// runtime navmesh. All functions operate on 3-float slices with the
// xy-plane horizontal and z up; 2D variants project onto the xy-plane.

const EPS = 1e-6

// / Derives the slope angle of the vector from v1 to v2 in degrees,
// / measured as elevation above the xy-plane projection.
func CalcSlopeAngle(v1, v2 []float32) float32 {
	deltaX := v2[0] - v1[0]
	deltaY := v2[1] - v1[1]
	deltaZ := v2[2] - v1[2]

	horizontalDistance := Sqrtf(deltaX*deltaX + deltaY*deltaY)
	return RadToDeg(Atan2f(deltaZ, horizontalDistance))
}

// / Derives the maximum angle in degrees at which a traverse ray still has
// / line-of-sight over a ledge of the given span.
func CalcMaxLOSAngle(ledgeSpan, objectHeight float32) float32 {
	return RadToDeg(Atan2f(objectHeight, ledgeSpan))
}

// / Derives the amount to offset the upper traverse ray position outward
// / along its edge normal, scaled by how steep the link runs.
func CalcLedgeSpanOffsetAmount(ledgeSpan, slopeAngle, maxAngle float32) float32 {
	clampedAngle := Clamp(slopeAngle, 0, maxAngle)
	return ledgeSpan * (clampedAngle / maxAngle)
}

// / Derives the closest point on the triangle ABC to the point p using
// / barycentric region tests.
func ClosestPtPointTriangle(closest, p, a, b, c []float32) {
	// Check if P in vertex region outside A
	ab := make([]float32, 3)
	ac := make([]float32, 3)
	ap := make([]float32, 3)
	Vsub(ab, b, a)
	Vsub(ac, c, a)
	Vsub(ap, p, a)
	d1 := Vdot(ab, ap)
	d2 := Vdot(ac, ap)
	if d1 <= 0.0 && d2 <= 0.0 {
		// barycentric coordinates (1,0,0)
		Vcopy(closest, a)
		return
	}

	// Check if P in vertex region outside B
	bp := make([]float32, 3)
	Vsub(bp, p, b)
	d3 := Vdot(ab, bp)
	d4 := Vdot(ac, bp)
	if d3 >= 0.0 && d4 <= d3 {
		// barycentric coordinates (0,1,0)
		Vcopy(closest, b)
		return
	}

	// Check if P in edge region of AB, if so return projection of P onto AB
	vc := d1*d4 - d3*d2
	if vc <= 0.0 && d1 >= 0.0 && d3 <= 0.0 {
		// barycentric coordinates (1-v,v,0)
		v := d1 / (d1 - d3)
		closest[0] = a[0] + v*ab[0]
		closest[1] = a[1] + v*ab[1]
		closest[2] = a[2] + v*ab[2]
		return
	}

	// Check if P in vertex region outside C
	cp := make([]float32, 3)
	Vsub(cp, p, c)
	d5 := Vdot(ab, cp)
	d6 := Vdot(ac, cp)
	if d6 >= 0.0 && d5 <= d6 {
		// barycentric coordinates (0,0,1)
		Vcopy(closest, c)
		return
	}

	// Check if P in edge region of AC, if so return projection of P onto AC
	vb := d5*d2 - d1*d6
	if vb <= 0.0 && d2 >= 0.0 && d6 <= 0.0 {
		// barycentric coordinates (1-w,0,w)
		w := d2 / (d2 - d6)
		closest[0] = a[0] + w*ac[0]
		closest[1] = a[1] + w*ac[1]
		closest[2] = a[2] + w*ac[2]
		return
	}

	// Check if P in edge region of BC, if so return projection of P onto BC
	va := d3*d6 - d5*d4
	if va <= 0.0 && (d4-d3) >= 0.0 && (d5-d6) >= 0.0 {
		// barycentric coordinates (0,1-w,w)
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		closest[0] = b[0] + w*(c[0]-b[0])
		closest[1] = b[1] + w*(c[1]-b[1])
		closest[2] = b[2] + w*(c[2]-b[2])
		return
	}

	// P inside face region. Compute Q through its barycentric coordinates (u,v,w)
	denom := 1.0 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	closest[0] = a[0] + ab[0]*v + ac[0]*w
	closest[1] = a[1] + ab[1]*v + ac[1]*w
	closest[2] = a[2] + ab[2]*v + ac[2]*w
}

// / Derives the z-axis height of the point p on the triangle ABC.
func ClosestHeightPointTriangle(p, a, b, c []float32) (h float32, ok bool) {
	v0 := make([]float32, 3)
	v1 := make([]float32, 3)
	v2 := make([]float32, 3)

	Vsub(v0, c, a)
	Vsub(v1, b, a)
	Vsub(v2, p, a)

	// Compute scaled barycentric coordinates
	denom := v0[0]*v1[1] - v0[1]*v1[0]
	if Fabsf(denom) < EPS {
		return 0, false
	}

	u := v1[1]*v2[0] - v1[0]*v2[1]
	v := v0[0]*v2[1] - v0[1]*v2[0]

	if denom < 0 {
		denom = -denom
		u = -u
		v = -v
	}

	// If point lies inside the triangle, return interpolated z-coord.
	if u >= 0.0 && v >= 0.0 && (u+v) <= denom {
		return a[2] + (v0[2]*u+v1[2]*v)/denom, true
	}
	return 0, false
}

// / Determines the xy-plane intersection of the segment p0-p1 with the
// / convex polygon. Returns false when the segment does not overlap the
// / polygon; segMin/segMax identify the entry and exit edges.
func IntersectSegmentPoly2D(p0, p1, verts []float32, nverts int) (tmin, tmax float32, segMin, segMax int, hit bool) {
	tmin = 0
	tmax = 1
	segMin = -1
	segMax = -1

	dir := make([]float32, 3)
	Vsub(dir, p1, p0)

	for i, j := 0, nverts-1; i < nverts; j, i = i, i+1 {
		edge := make([]float32, 3)
		diff := make([]float32, 3)
		Vsub(edge, verts[i*3:], verts[j*3:])
		Vsub(diff, p0, verts[j*3:])
		n := Vperp2D(diff, edge)
		d := Vperp2D(edge, dir)
		if Fabsf(d) < EPS {
			// S is nearly parallel to this edge
			if n < 0 {
				return tmin, tmax, segMin, segMax, false
			}
			continue
		}
		t := n / d
		if d < 0 {
			// segment S is entering across this edge
			if t > tmin {
				tmin = t
				segMin = j
				// S enters after leaving polygon
				if tmin > tmax {
					return tmin, tmax, segMin, segMax, false
				}
			}
		} else {
			// segment S is leaving across this edge
			if t < tmax {
				tmax = t
				segMax = j
				// S leaves before entering polygon
				if tmax < tmin {
					return tmin, tmax, segMin, segMax, false
				}
			}
		}
	}

	return tmin, tmax, segMin, segMax, true
}

// / Determines the intersection of the segment sp-sq with the AABB.
func IntersectSegmentAABB(sp, sq, amin, amax []float32) (tmin, tmax float32, hit bool) {
	d := make([]float32, 3)
	Vsub(d, sq, sp)
	tmin = 0 // set to 0 to get first hit on line
	tmax = 1 // set to max distance ray can travel (for segment)

	// For all three slabs
	for i := 0; i < 3; i++ {
		if Fabsf(d[i]) < EPS {
			// Ray is parallel to slab. No hit if origin not within slab
			if sp[i] < amin[i] || sp[i] > amax[i] {
				return tmin, tmax, false
			}
		} else {
			// Compute intersection t value of ray with near and far plane of slab
			ood := 1.0 / d[i]
			t1 := (amin[i] - sp[i]) * ood
			t2 := (amax[i] - sp[i]) * ood
			// Make t1 be intersection with near plane, t2 with far plane
			if t1 > t2 {
				Swap(&t1, &t2)
			}
			// Compute the intersection of slab intersections intervals
			if t1 > tmin {
				tmin = t1
			}
			if t2 < tmax {
				tmax = t2
			}
			// Exit with no collision as soon as slab intersection becomes empty
			if tmin > tmax {
				return tmin, tmax, false
			}
		}
	}

	return tmin, tmax, true
}

// / Determines the intersection of the segment sp-sq with the upright
// / cylinder at position with the given radius and height.
func IntersectSegmentCylinder(sp, sq, position []float32, radius, height float32) (tmin, tmax float32, hit bool) {
	tmin = 0
	tmax = 1

	cx := position[0]
	cy := position[1]
	cz := position[2]
	topZ := cz + height

	// Horizontal (xy-plane) intersection test with infinite cylinder
	dx := sq[0] - sp[0]
	dy := sq[1] - sp[1]

	px := sp[0] - cx
	py := sp[1] - cy

	a := dx*dx + dy*dy
	b := 2.0 * (px*dx + py*dy)
	c := px*px + py*py - radius*radius

	// Discriminant for solving quadratic equation
	disc := b*b - 4.0*a*c

	if disc < 0.0 {
		return tmin, tmax, false // No intersection in the horizontal plane
	}

	disc = Sqrtf(disc)
	t0 := (-b - disc) / (2.0 * a)
	t1 := (-b + disc) / (2.0 * a)

	if t0 > t1 {
		Swap(&t0, &t1)
	}

	tmin = max(tmin, t0)
	tmax = min(tmax, t1)

	if tmin > tmax {
		return tmin, tmax, false // No intersection in the [tmin, tmax] range
	}

	// Vertical (z-axis) intersection test
	dz := sq[2] - sp[2]

	if dz != 0.0 {
		tCapMin := (cz - sp[2]) / dz
		tCapMax := (topZ - sp[2]) / dz

		if tCapMin > tCapMax {
			Swap(&tCapMin, &tCapMax)
		}

		// Update tmin and tmax for cap intersections
		tmin = max(tmin, tCapMin)
		tmax = min(tmax, tCapMax)

		if tmin > tmax {
			return tmin, tmax, false
		}
	}

	z0 := sp[2] + tmin*dz
	z1 := sp[2] + tmax*dz

	if (z0 < cz && z1 < cz) || (z0 > topZ && z1 > topZ) {
		return tmin, tmax, false // No intersection with the vertical height of the cylinder
	}

	return tmin, tmax, true
}

// / Determines the intersection of the segment sp-sq with the extruded
// / convex hull spanning heights hmin to hmax.
func IntersectSegmentConvexHull(sp, sq, verts []float32, nverts int, hmin, hmax float32) (tmin, tmax float32, hit bool) {
	var ok bool
	tmin, tmax, _, _, ok = IntersectSegmentPoly2D(sp, sq, verts, nverts)
	if !ok {
		return tmin, tmax, false // No intersection with the polygon base
	}

	tmin = max(0.0, tmin)
	tmax = min(1.0, tmax)

	if tmin > tmax {
		return tmin, tmax, false // No valid intersection range
	}

	// Vertical (z-axis) intersection test
	dz := sq[2] - sp[2]

	if dz != 0.0 {
		tCapMin := (hmin - sp[2]) / dz
		tCapMax := (hmax - sp[2]) / dz

		if tCapMin > tCapMax {
			Swap(&tCapMin, &tCapMax)
		}

		tmin = max(tmin, tCapMin)
		tmax = min(tmax, tCapMax)

		if tmin > tmax {
			return tmin, tmax, false
		}
	}

	z0 := sp[2] + tmin*dz
	z1 := sp[2] + tmax*dz

	if (z0 < hmin && z1 < hmin) || (z0 > hmax && z1 > hmax) {
		return tmin, tmax, false // No intersection within the vertical bounds
	}

	return tmin, tmax, true
}

// / Determines the xy-plane intersection of the segments ap-aq and bp-bq.
func IntersectSegSeg2D(ap, aq, bp, bq []float32) (s, t float32, hit bool) {
	u := make([]float32, 3)
	v := make([]float32, 3)
	w := make([]float32, 3)
	Vsub(u, aq, ap)
	Vsub(v, bq, bp)
	Vsub(w, ap, bp)
	d := Vperp2D(u, v)
	if Fabsf(d) < EPS {
		return 0, 0, false
	}
	s = Vperp2D(v, w) / d
	t = Vperp2D(u, w) / d
	return s, t, true
}

// / Derives the squared xy-plane distance from the point to the segment p-q.
func DistancePtSegSqr2D(pt, p, q []float32) (d, t float32) {
	pqx := q[0] - p[0]
	pqy := q[1] - p[1]
	dx := pt[0] - p[0]
	dy := pt[1] - p[1]
	d = pqx*pqx + pqy*pqy
	t = pqx*dx + pqy*dy
	if d > 0 {
		t /= d
	}
	t = Clamp(t, 0, 1)
	dx = p[0] + t*pqx - pt[0]
	dy = p[1] + t*pqy - pt[1]
	return dx*dx + dy*dy, t
}

// / Derives the squared xy-plane distance from the point to the infinite
// / line through p and q.
func DistancePtLine2D(pt, p, q []float32) float32 {
	pqx := q[0] - p[0]
	pqy := q[1] - p[1]
	dx := pt[0] - p[0]
	dy := pt[1] - p[1]
	d := pqx*pqx + pqy*pqy
	t := pqx*dx + pqy*dy
	if d != 0 {
		t /= d
	}
	dx = p[0] + t*pqx - pt[0]
	dy = p[1] + t*pqy - pt[1]
	return dx*dx + dy*dy
}

// / Derives the centroid of the indexed polygon.
func CalcPolyCenter(tc []float32, idx []uint16, nidx int, verts []float32) {
	tc[0] = 0
	tc[1] = 0
	tc[2] = 0
	for j := 0; j < nidx; j++ {
		v := verts[int(idx[j])*3:]
		tc[0] += v[0]
		tc[1] += v[1]
		tc[2] += v[2]
	}
	s := 1.0 / float32(nidx)
	tc[0] *= s
	tc[1] *= s
	tc[2] *= s
}

func PointInAABB(pt, bmin, bmax []float32) bool {
	return pt[0] >= bmin[0] && pt[0] <= bmax[0] &&
		pt[1] >= bmin[1] && pt[1] <= bmax[1] &&
		pt[2] >= bmin[2] && pt[2] <= bmax[2]
}

func PointInCylinder(pt, pos []float32, radius, height float32) bool {
	dx := pt[0] - pos[0]
	dy := pt[1] - pos[1]
	distSquared := dx*dx + dy*dy

	return distSquared <= radius*radius &&
		pt[2] >= pos[2] && pt[2] <= (pos[2]+height)
}

// / All points are projected onto the xy-plane, so the z-values are ignored.
func PointInPolygon(pt, verts []float32, nverts int) bool {
	c := false
	for i, j := 0, nverts-1; i < nverts; j, i = i, i+1 {
		vi := verts[i*3:]
		vj := verts[j*3:]
		if ((vi[1] > pt[1]) != (vj[1] > pt[1])) &&
			(pt[0] < (vj[0]-vi[0])*(pt[1]-vi[1])/(vj[1]-vi[1])+vi[0]) {
			c = !c
		}
	}
	return c
}

// / Point-in-polygon test that also yields the squared distance and edge
// / parameter for every polygon edge.
func DistancePtPolyEdgesSqr(pt, verts []float32, nverts int, ed, et []float32) bool {
	c := false
	for i, j := 0, nverts-1; i < nverts; j, i = i, i+1 {
		vi := verts[i*3:]
		vj := verts[j*3:]
		if ((vi[1] > pt[1]) != (vj[1] > pt[1])) &&
			(pt[0] < (vj[0]-vi[0])*(pt[1]-vi[1])/(vj[1]-vi[1])+vi[0]) {
			c = !c
		}
		ed[j], et[j] = DistancePtSegSqr2D(pt, vj, vi)
	}
	return c
}

func projectPoly(axis, poly []float32, npoly int) (rmin, rmax float32) {
	rmin = Vdot2D(axis, poly)
	rmax = rmin
	for i := 1; i < npoly; i++ {
		d := Vdot2D(axis, poly[i*3:])
		rmin = min(rmin, d)
		rmax = max(rmax, d)
	}
	return rmin, rmax
}

// / All vertices are projected onto the xy-plane, so the z-values are ignored.
func OverlapPolyPoly2D(polya []float32, npolya int, polyb []float32, npolyb int) bool {
	const eps = 1e-4

	for i, j := 0, npolya-1; i < npolya; j, i = i, i+1 {
		va := polya[j*3:]
		vb := polya[i*3:]
		n := []float32{vb[1] - va[1], -(vb[0] - va[0]), 0}
		amin, amax := projectPoly(n, polya, npolya)
		bmin, bmax := projectPoly(n, polyb, npolyb)
		if !OverlapRange(amin, amax, bmin, bmax, eps) {
			// Found separating axis
			return false
		}
	}
	for i, j := 0, npolyb-1; i < npolyb; j, i = i, i+1 {
		va := polyb[j*3:]
		vb := polyb[i*3:]
		n := []float32{vb[1] - va[1], -(vb[0] - va[0]), 0}
		amin, amax := projectPoly(n, polya, npolya)
		bmin, bmax := projectPoly(n, polyb, npolyb)
		if !OverlapRange(amin, amax, bmin, bmax, eps) {
			// Found separating axis
			return false
		}
	}
	return true
}

// / Returns a random point in a convex polygon.
// / Adapted from Graphics Gems article.
func RandomPointInConvexPoly(pts []float32, npts int, areas []float32, s, t float32, out []float32) {
	// Calc triangle areas
	var areasum float32
	for i := 2; i < npts; i++ {
		areas[i] = TriArea2D(pts, pts[i*3:], pts[(i-1)*3:])
		areasum += max(0.001, areas[i])
	}
	// Find sub triangle weighted by area.
	thr := s * areasum
	var acc float32
	u := float32(1.0)
	tri := npts - 1
	for i := 2; i < npts; i++ {
		dacc := areas[i]
		if thr >= acc && thr < (acc+dacc) {
			u = (thr - acc) / dacc
			tri = i
			break
		}
		acc += dacc
	}

	v := Sqrtf(t)

	a := 1 - v
	b := (1 - u) * v
	c := u * v
	pa := pts
	pb := pts[tri*3:]
	pc := pts[(tri-1)*3:]

	out[0] = a*pa[0] + b*pb[0] + c*pc[0]
	out[1] = a*pa[1] + b*pb[1] + c*pc[1]
	out[2] = a*pa[2] + b*pb[2] + c*pc[2]
}

// / Derives the xy-plane normal of the edge direction vector.
func CalcEdgeNormal2D(dir, out []float32) {
	out[0] = dir[1]
	out[1] = -dir[0]
	out[2] = 0
	Vnormalize2D(out)
}

// / Derives the xy-plane normal of the edge running from v1 to v2.
func CalcEdgeNormalPt2D(v1, v2, out []float32) {
	dir := make([]float32, 3)
	Vsub(dir, v2, v1)
	CalcEdgeNormal2D(dir, out)
}

// / Derives the parametric sub-range of the detail sub-edge on its owning
// / polygon edge. Returns false when the detail polygon is malformed and
// / the winding order yields an inverted range.
func CalcSubEdgeArea2D(edgeStart, edgeEnd, subEdgeStart, subEdgeEnd []float32) (tmin, tmax float32, ok bool) {
	edgeLen := Vdist2D(edgeStart, edgeEnd)
	subEdgeStartDist := Vdist2D(edgeStart, subEdgeStart)
	subEdgeEndDist := Vdist2D(edgeStart, subEdgeEnd)

	tmin = subEdgeStartDist / edgeLen
	tmax = subEdgeEndDist / edgeLen

	if tmin > tmax {
		return tmin, tmax, false
	}

	return tmin, tmax, true
}

// / Derives the length of the overlap of two edges projected onto the
// / target edge vector.
func CalcEdgeOverlap2D(edge1Start, edge1End, edge2Start, edge2End, targetEdgeVec []float32) float32 {
	min1 := Vproj2D(edge1Start, targetEdgeVec)
	max1 := Vproj2D(edge1End, targetEdgeVec)

	if min1 > max1 {
		Swap(&min1, &max1)
	}

	min2 := Vproj2D(edge2Start, targetEdgeVec)
	max2 := Vproj2D(edge2End, targetEdgeVec)

	if min2 > max2 {
		Swap(&min2, &max2)
	}

	start := max(min1, min2)
	end := min(max1, max2)

	return max(0.0, end-start)
}

const (
	outcodeXP = 1 << 0
	outcodeYP = 1 << 1
	outcodeXM = 1 << 2
	outcodeYM = 1 << 3
)

// / Classifies a point outside the bounds into one of 8 side codes, or
// / 0xff when the point is not outside the bounds.
func ClassifyPointOutsideBounds(pt, bmin, bmax []float32) uint8 {
	var outcode uint8
	if pt[0] >= bmax[0] {
		outcode |= outcodeXM
	}
	if pt[1] >= bmax[1] {
		outcode |= outcodeYP
	}
	if pt[0] < bmin[0] {
		outcode |= outcodeXP
	}
	if pt[1] < bmin[1] {
		outcode |= outcodeYM
	}

	switch outcode {
	case outcodeXP:
		return 0
	case outcodeXP | outcodeYP:
		return 1
	case outcodeYP:
		return 2
	case outcodeXM | outcodeYP:
		return 3
	case outcodeXM:
		return 4
	case outcodeXM | outcodeYM:
		return 5
	case outcodeYM:
		return 6
	case outcodeXP | outcodeYM:
		return 7
	}

	return 0xff
}

// / Classifies a point inside the bounds into one of 8 side codes by
// / projecting it outward from the bounds center.
func ClassifyPointInsideBounds(pt, bmin, bmax []float32) uint8 {
	centerX := (bmin[0] + bmax[0]) * 0.5
	centerY := (bmin[1] + bmax[1]) * 0.5

	dirX := pt[0] - centerX
	dirY := pt[1] - centerY

	boxSizeX := bmax[0] - bmin[0]
	boxSizeY := bmax[1] - bmin[1]

	length := Sqrtf(dirX*dirX + dirY*dirY)
	if length > EPS {
		dirX /= length
		dirY /= length
	}

	newPt := []float32{centerX + dirX*boxSizeX, centerY + dirY*boxSizeY, 0}
	return ClassifyPointOutsideBounds(newPt, bmin, bmax)
}

// / Classifies a direction vector into one of 8 side codes relative to
// / the bounds.
func ClassifyDirection(dir, bmin, bmax []float32) uint8 {
	length := Sqrtf(dir[0]*dir[0] + dir[1]*dir[1])
	dirNormX := float32(0)
	dirNormY := float32(0)

	if length > EPS {
		dirNormX = dir[0] / length
		dirNormY = dir[1] / length
	}

	centerX := (bmin[0] + bmax[0]) * 0.5
	centerY := (bmin[1] + bmax[1]) * 0.5

	boxSizeX := bmax[0] - bmin[0]
	boxSizeY := bmax[1] - bmin[1]

	newPt := []float32{centerX + dirNormX*boxSizeX, centerY + dirNormY*boxSizeY, 0}
	return ClassifyPointOutsideBounds(newPt, bmin, bmax)
}
