package recast

import (
	"github.com/ttvmkos/r5nav/common"
)

// / The quantization factor applied to polygon surface areas before they
// / are stored in 16 bits.
const RC_POLY_SURFAREA_QUANT_FACTOR = 0.01

// / Represents a polygon mesh suitable for use in building a navigation mesh.
type RcPolyMesh struct {
	Verts        []uint16   ///< The mesh vertices. [Form: (x, y, z) * NVerts]
	Polys        []uint16   ///< Polygon and neighbor data. [Length: MaxPolys * 2 * Nvp]
	Regs         []uint16   ///< The region id assigned to each polygon. [Length: MaxPolys]
	Flags        []uint16   ///< The user defined flags for each polygon. [Length: MaxPolys]
	Areas        []uint8    ///< The area id assigned to each polygon. [Length: MaxPolys]
	Surfa        []uint16   ///< The quantized surface area of each polygon. [Length: MaxPolys]
	NVerts       int        ///< The number of vertices.
	NPolys       int        ///< The number of polygons.
	MaxPolys     int        ///< The number of allocated polygons.
	Nvp          int        ///< The maximum number of vertices per polygon.
	Bmin         [3]float32 ///< The minimum bounds in world space. [(x, y, z)]
	Bmax         [3]float32 ///< The maximum bounds in world space. [(x, y, z)]
	Cs           float32    ///< The size of each cell. (On the xy-plane.)
	Ch           float32    ///< The height of each cell. (The minimum increment along the z-axis.)
	BorderSize   int        ///< The AABB border size used to generate the source data from which the mesh was derived.
	MaxEdgeError float32    ///< The max error of the polygon edges in the mesh.
}

const vertexBucketCount = 1 << 12

func computeVertexHash(x, y, z int) int {
	const h1 = 0x8da6b343 // Large multiplicative constants
	const h2 = 0xd8163841 // here arbitrarily chosen primes
	const h3 = 0xcb1ab31f
	n := uint32(h1)*uint32(x) + uint32(h2)*uint32(y) + uint32(h3)*uint32(z)
	return int(n & (vertexBucketCount - 1))
}

func addVertex(x, y, z uint16, verts []uint16, firstVert, nextVert []int, nv *int) uint16 {
	bucket := computeVertexHash(int(x), int(y), 0)
	i := firstVert[bucket]

	for i != -1 {
		v := verts[i*3:]
		if v[0] == x && v[1] == y && (common.Abs(int(v[2])-int(z)) <= 2) {
			return uint16(i)
		}
		i = nextVert[i] // next
	}

	// Could not find, create new.
	i = *nv
	*nv++
	verts[i*3+0] = x
	verts[i*3+1] = y
	verts[i*3+2] = z
	nextVert[i] = firstVert[bucket]
	firstVert[bucket] = i

	return uint16(i)
}

func prev(i, n int) int {
	if i-1 >= 0 {
		return i - 1
	}
	return n - 1
}

func next(i, n int) int {
	if i+1 < n {
		return i + 1
	}
	return 0
}

// Returns true iff (v_i, v_j) is a proper internal diagonal of P.
func diagonal(i, j, n int, verts, indices []int) bool {
	return inConePoly(i, j, n, verts, indices) && diagonalie(i, j, n, verts, indices)
}

// Returns true iff the diagonal (i,j) is strictly internal to the
// polygon P in the neighborhood of the i endpoint.
func inConePoly(i, j, n int, verts, indices []int) bool {
	pi := verts[(indices[i]&0x0fffffff)*4:]
	pj := verts[(indices[j]&0x0fffffff)*4:]
	pi1 := verts[(indices[next(i, n)]&0x0fffffff)*4:]
	pin1 := verts[(indices[prev(i, n)]&0x0fffffff)*4:]

	// If P[i] is a convex vertex [ i+1 left or on (i-1,i) ].
	if leftOn(pin1, pi, pi1) {
		return left(pi, pj, pin1) && left(pj, pi, pi1)
	}
	// Assume (i-1,i,i+1) not collinear.
	// else P[i] is reflex.
	return !(leftOn(pi, pj, pi1) && leftOn(pj, pi, pin1))
}

// Returns T iff (v_i, v_j) is a proper internal *or* external
// diagonal of P, *ignoring edges incident to v_i and v_j*.
func diagonalie(i, j, n int, verts, indices []int) bool {
	d0 := verts[(indices[i]&0x0fffffff)*4:]
	d1 := verts[(indices[j]&0x0fffffff)*4:]

	// For each edge (k,k+1) of P
	for k := 0; k < n; k++ {
		k1 := next(k, n)
		// Skip edges incident to i or j
		if !((k == i) || (k1 == i) || (k == j) || (k1 == j)) {
			p0 := verts[(indices[k]&0x0fffffff)*4:]
			p1 := verts[(indices[k1]&0x0fffffff)*4:]

			if vequalInt(d0, p0) || vequalInt(d1, p0) || vequalInt(d0, p1) || vequalInt(d1, p1) {
				continue
			}

			if intersect(d0, d1, p0, p1) {
				return false
			}
		}
	}
	return true
}

func diagonalieLoose(i, j, n int, verts, indices []int) bool {
	d0 := verts[(indices[i]&0x0fffffff)*4:]
	d1 := verts[(indices[j]&0x0fffffff)*4:]

	// For each edge (k,k+1) of P
	for k := 0; k < n; k++ {
		k1 := next(k, n)
		// Skip edges incident to i or j
		if !((k == i) || (k1 == i) || (k == j) || (k1 == j)) {
			p0 := verts[(indices[k]&0x0fffffff)*4:]
			p1 := verts[(indices[k1]&0x0fffffff)*4:]

			if vequalInt(d0, p0) || vequalInt(d1, p0) || vequalInt(d0, p1) || vequalInt(d1, p1) {
				continue
			}

			if properIntersect(d0, d1, p0, p1) {
				return false
			}
		}
	}
	return true
}

func inConeLoose(i, j, n int, verts, indices []int) bool {
	pi := verts[(indices[i]&0x0fffffff)*4:]
	pj := verts[(indices[j]&0x0fffffff)*4:]
	pi1 := verts[(indices[next(i, n)]&0x0fffffff)*4:]
	pin1 := verts[(indices[prev(i, n)]&0x0fffffff)*4:]

	// If P[i] is a convex vertex [ i+1 left or on (i-1,i) ].
	if leftOn(pin1, pi, pi1) {
		return leftOn(pi, pj, pin1) && leftOn(pj, pi, pi1)
	}
	// Assume (i-1,i,i+1) not collinear.
	// else P[i] is reflex.
	return !(leftOn(pi, pj, pi1) && leftOn(pj, pi, pin1))
}

func diagonalLoose(i, j, n int, verts, indices []int) bool {
	return inConeLoose(i, j, n, verts, indices) && diagonalieLoose(i, j, n, verts, indices)
}

func triangulate(n int, verts []int, indices []int, tris []int) int {
	ntris := 0

	// The last bit of the index is used to indicate if the vertex can be removed.
	for i := 0; i < n; i++ {
		i1 := next(i, n)
		i2 := next(i1, n)
		if diagonal(i, i2, n, verts, indices) {
			indices[i1] |= 0x80000000
		}
	}

	dst := 0

	for n > 3 {
		minLen := -1
		mini := -1
		for i := 0; i < n; i++ {
			i1 := next(i, n)
			if (indices[i1] & 0x80000000) != 0 {
				p0 := verts[(indices[i]&0x0fffffff)*4:]
				p2 := verts[(indices[next(i1, n)]&0x0fffffff)*4:]

				dx := p2[0] - p0[0]
				dy := p2[1] - p0[1]
				length := dx*dx + dy*dy

				if minLen < 0 || length < minLen {
					minLen = length
					mini = i
				}
			}
		}

		if mini == -1 {
			// We might get here because the contour has overlapping segments, like this:
			//
			//  A o-o=====o---o B
			//   /  |C   D|    \.
			//  o   o     o     o
			//  :   :     :     :
			// We'll try to recover by loosing up the inCone test a bit so that a diagonal
			// like A-B or C-D can be found and we can continue.
			minLen = -1
			mini = -1
			for i := 0; i < n; i++ {
				i1 := next(i, n)
				i2 := next(i1, n)
				if diagonalLoose(i, i2, n, verts, indices) {
					p0 := verts[(indices[i]&0x0fffffff)*4:]
					p2 := verts[(indices[next(i2, n)]&0x0fffffff)*4:]
					dx := p2[0] - p0[0]
					dy := p2[1] - p0[1]
					length := dx*dx + dy*dy

					if minLen < 0 || length < minLen {
						minLen = length
						mini = i
					}
				}
			}
			if mini == -1 {
				// The contour is messed up. This sometimes happens
				// if the contour simplification is too aggressive.
				return -ntris
			}
		}

		i := mini
		i1 := next(i, n)
		i2 := next(i1, n)

		tris[dst] = indices[i] & 0x0fffffff
		tris[dst+1] = indices[i1] & 0x0fffffff
		tris[dst+2] = indices[i2] & 0x0fffffff
		dst += 3
		ntris++

		// Removes P[i1] by copying P[i+1]...P[n-1] left one index.
		n--
		for k := i1; k < n; k++ {
			indices[k] = indices[k+1]
		}

		if i1 >= n {
			i1 = 0
		}
		i = prev(i1, n)
		// Update diagonal flags.
		if diagonal(prev(i, n), i1, n, verts, indices) {
			indices[i] |= 0x80000000
		} else {
			indices[i] &= 0x0fffffff
		}

		if diagonal(i, next(i1, n), n, verts, indices) {
			indices[i1] |= 0x80000000
		} else {
			indices[i1] &= 0x0fffffff
		}
	}

	// Append the remaining triangle.
	tris[dst] = indices[0] & 0x0fffffff
	tris[dst+1] = indices[1] & 0x0fffffff
	tris[dst+2] = indices[2] & 0x0fffffff
	ntris++

	return ntris
}

func countPolyVerts(p []uint16, nvp int) int {
	for i := 0; i < nvp; i++ {
		if p[i] == RC_MESH_NULL_IDX {
			return i
		}
	}
	return nvp
}

func uleft(a, b, c []uint16) bool {
	return (int(b[0])-int(a[0]))*(int(c[1])-int(a[1]))-
		(int(c[0])-int(a[0]))*(int(b[1])-int(a[1])) < 0
}

func getPolyMergeValue(pa, pb []uint16, verts []uint16, nvp int) (mergeVal, ea, eb int) {
	na := countPolyVerts(pa, nvp)
	nb := countPolyVerts(pb, nvp)

	// If the merged polygon would be too big, do not merge.
	if na+nb-2 > nvp {
		return -1, 0, 0
	}

	// Check if the polygons share an edge.
	ea = -1
	eb = -1

	for i := 0; i < na; i++ {
		va0 := pa[i]
		va1 := pa[(i+1)%na]
		if va0 > va1 {
			common.Swap(&va0, &va1)
		}
		for j := 0; j < nb; j++ {
			vb0 := pb[j]
			vb1 := pb[(j+1)%nb]
			if vb0 > vb1 {
				common.Swap(&vb0, &vb1)
			}
			if va0 == vb0 && va1 == vb1 {
				ea = i
				eb = j
				break
			}
		}
	}

	// No common edge, cannot merge.
	if ea == -1 || eb == -1 {
		return -1, ea, eb
	}

	// Check to see if the merged polygon would be convex.
	va := pa[(ea+na-1)%na]
	vb := pa[ea]
	vc := pb[(eb+2)%nb]
	if !uleft(verts[int(va)*3:], verts[int(vb)*3:], verts[int(vc)*3:]) {
		return -1, ea, eb
	}

	va = pb[(eb+nb-1)%nb]
	vb = pb[eb]
	vc = pa[(ea+2)%na]
	if !uleft(verts[int(va)*3:], verts[int(vb)*3:], verts[int(vc)*3:]) {
		return -1, ea, eb
	}

	va = pa[ea]
	vb = pa[(ea+1)%na]

	dx := int(verts[int(va)*3+0]) - int(verts[int(vb)*3+0])
	dy := int(verts[int(va)*3+1]) - int(verts[int(vb)*3+1])

	return dx*dx + dy*dy, ea, eb
}

func mergePolyVerts(pa, pb []uint16, ea, eb int, tmp []uint16, nvp int) {
	na := countPolyVerts(pa, nvp)
	nb := countPolyVerts(pb, nvp)

	// Merge polygons.
	for i := range tmp[:nvp] {
		tmp[i] = RC_MESH_NULL_IDX
	}
	n := 0
	// Add pa
	for i := 0; i < na-1; i++ {
		tmp[n] = pa[(ea+1+i)%na]
		n++
	}
	// Add pb
	for i := 0; i < nb-1; i++ {
		tmp[n] = pb[(eb+1+i)%nb]
		n++
	}

	copy(pa[:nvp], tmp[:nvp])
}

func pushFront(v int, arr []int, an *int) {
	*an++
	for i := *an - 1; i > 0; i-- {
		arr[i] = arr[i-1]
	}
	arr[0] = v
}

func pushBack(v int, arr []int, an *int) {
	arr[*an] = v
	*an++
}

func canRemoveVertex(mesh *RcPolyMesh, rem uint16) bool {
	nvp := mesh.Nvp

	// Count number of polygons to remove.
	numTouchedVerts := 0
	numRemainingEdges := 0
	for i := 0; i < mesh.NPolys; i++ {
		p := mesh.Polys[i*nvp*2:]
		nv := countPolyVerts(p, nvp)
		numRemoved := 0
		numVerts := 0
		for j := 0; j < nv; j++ {
			if p[j] == rem {
				numTouchedVerts++
				numRemoved++
			}
			numVerts++
		}
		if numRemoved > 0 {
			numRemainingEdges += numVerts - (numRemoved + 1)
		}
	}

	// There would be too few edges remaining to create a polygon.
	// This can happen for example when a tip of a triangle is marked
	// as deletion, but there are no other polys that share the vertex.
	// In this case, the vertex should not be removed.
	if numRemainingEdges <= 2 {
		return false
	}

	// Find edges which share the removed vertex.
	maxEdges := numTouchedVerts * 2
	nedges := 0
	edges := make([]int, maxEdges*3)

	for i := 0; i < mesh.NPolys; i++ {
		p := mesh.Polys[i*nvp*2:]
		nv := countPolyVerts(p, nvp)

		// Collect edges which touches the removed vertex.
		for j, k := 0, nv-1; j < nv; k, j = j, j+1 {
			if p[j] == rem || p[k] == rem {
				// Arrange edge so that a=rem.
				a := int(p[j])
				b := int(p[k])
				if uint16(b) == rem {
					a, b = b, a
				}

				// Check if the edge exists
				exists := false
				for m := 0; m < nedges; m++ {
					e := edges[m*3:]
					if e[1] == b {
						// Exists, increment vertex share count.
						e[2]++
						exists = true
					}
				}
				// Add new edge.
				if !exists {
					e := edges[nedges*3:]
					e[0] = a
					e[1] = b
					e[2] = 1
					nedges++
				}
			}
		}
	}

	// There should be no more than 2 open edges.
	// This catches the case that two non-adjacent polygons
	// share the removed vertex. In that case, do not remove the vertex.
	numOpenEdges := 0
	for i := 0; i < nedges; i++ {
		if edges[i*3+2] < 2 {
			numOpenEdges++
		}
	}
	if numOpenEdges > 2 {
		return false
	}

	return true
}

func removeVertex(ctx *BuildContext, mesh *RcPolyMesh, rem uint16, maxTris int) bool {
	nvp := mesh.Nvp

	// Count number of polygons to remove.
	numRemovedVerts := 0
	for i := 0; i < mesh.NPolys; i++ {
		p := mesh.Polys[i*nvp*2:]
		nv := countPolyVerts(p, nvp)
		for j := 0; j < nv; j++ {
			if p[j] == rem {
				numRemovedVerts++
			}
		}
	}

	nedges := 0
	edges := make([]int, numRemovedVerts*nvp*4)
	nhole := 0
	hole := make([]int, numRemovedVerts*nvp)
	nhreg := 0
	hreg := make([]int, numRemovedVerts*nvp)
	nharea := 0
	harea := make([]int, numRemovedVerts*nvp)

	for i := 0; i < mesh.NPolys; i++ {
		p := mesh.Polys[i*nvp*2:]
		nv := countPolyVerts(p, nvp)
		hasRem := false
		for j := 0; j < nv; j++ {
			if p[j] == rem {
				hasRem = true
			}
		}
		if hasRem {
			// Collect edges which does not touch the removed vertex.
			for j, k := 0, nv-1; j < nv; k, j = j, j+1 {
				if p[j] != rem && p[k] != rem {
					e := edges[nedges*4:]
					e[0] = int(p[k])
					e[1] = int(p[j])
					e[2] = int(mesh.Regs[i])
					e[3] = int(mesh.Areas[i])
					nedges++
				}
			}
			// Remove the polygon.
			p2 := mesh.Polys[(mesh.NPolys-1)*nvp*2:]
			if !sameSlice(p, p2) {
				copy(p[:nvp], p2[:nvp])
			}
			for j := nvp; j < nvp*2; j++ {
				p[j] = RC_MESH_NULL_IDX
			}
			mesh.Regs[i] = mesh.Regs[mesh.NPolys-1]
			mesh.Areas[i] = mesh.Areas[mesh.NPolys-1]
			mesh.NPolys--
			i--
		}
	}

	// Remove vertex.
	for i := int(rem); i < mesh.NVerts-1; i++ {
		mesh.Verts[i*3+0] = mesh.Verts[(i+1)*3+0]
		mesh.Verts[i*3+1] = mesh.Verts[(i+1)*3+1]
		mesh.Verts[i*3+2] = mesh.Verts[(i+1)*3+2]
	}
	mesh.NVerts--

	// Adjust indices to match the removed vertex layout.
	for i := 0; i < mesh.NPolys; i++ {
		p := mesh.Polys[i*nvp*2:]
		nv := countPolyVerts(p, nvp)
		for j := 0; j < nv; j++ {
			if p[j] > rem {
				p[j]--
			}
		}
	}
	for i := 0; i < nedges; i++ {
		if edges[i*4+0] > int(rem) {
			edges[i*4+0]--
		}
		if edges[i*4+1] > int(rem) {
			edges[i*4+1]--
		}
	}

	if nedges == 0 {
		return true
	}

	// Start with one vertex, keep appending connected
	// segments to the start and end of the hole.
	pushBack(edges[0], hole, &nhole)
	pushBack(edges[2], hreg, &nhreg)
	pushBack(edges[3], harea, &nharea)

	for nedges > 0 {
		match := false

		for i := 0; i < nedges; i++ {
			ea := edges[i*4+0]
			eb := edges[i*4+1]
			r := edges[i*4+2]
			a := edges[i*4+3]
			add := false
			if hole[0] == eb {
				// The segment matches the beginning of the hole boundary.
				pushFront(ea, hole, &nhole)
				pushFront(r, hreg, &nhreg)
				pushFront(a, harea, &nharea)
				add = true
			} else if hole[nhole-1] == ea {
				// The segment matches the end of the hole boundary.
				pushBack(eb, hole, &nhole)
				pushBack(r, hreg, &nhreg)
				pushBack(a, harea, &nharea)
				add = true
			}
			if add {
				// The edge segment was added, remove it.
				edges[i*4+0] = edges[(nedges-1)*4+0]
				edges[i*4+1] = edges[(nedges-1)*4+1]
				edges[i*4+2] = edges[(nedges-1)*4+2]
				edges[i*4+3] = edges[(nedges-1)*4+3]
				nedges--
				match = true
				i--
			}
		}

		if !match {
			break
		}
	}

	tris := make([]int, nhole*3)
	tverts := make([]int, nhole*4)
	thole := make([]int, nhole)

	// Generate temp vertex array for triangulation.
	for i := 0; i < nhole; i++ {
		pi := hole[i]
		tverts[i*4+0] = int(mesh.Verts[pi*3+0])
		tverts[i*4+1] = int(mesh.Verts[pi*3+1])
		tverts[i*4+2] = int(mesh.Verts[pi*3+2])
		tverts[i*4+3] = 0
		thole[i] = i
	}

	// Triangulate the hole.
	ntris := triangulate(nhole, tverts, thole, tris)
	if ntris < 0 {
		ntris = -ntris
		ctx.Warningf("removeVertex: triangulate() returned bad results.")
	}

	// Merge the hole triangles back to polygons.
	polys := make([]uint16, (ntris+1)*nvp)
	pregs := make([]uint16, ntris)
	pareas := make([]uint8, ntris)

	for i := range polys {
		polys[i] = RC_MESH_NULL_IDX
	}

	// Build initial polygons.
	npolys := 0
	for j := 0; j < ntris; j++ {
		t := tris[j*3:]
		if t[0] != t[1] && t[0] != t[2] && t[1] != t[2] {
			polys[npolys*nvp+0] = uint16(hole[t[0]])
			polys[npolys*nvp+1] = uint16(hole[t[1]])
			polys[npolys*nvp+2] = uint16(hole[t[2]])

			// If this polygon covers multiple region types then mark it as such.
			if hreg[t[0]] != hreg[t[1]] || hreg[t[1]] != hreg[t[2]] {
				pregs[npolys] = RC_MULTIPLE_REGS
			} else {
				pregs[npolys] = uint16(hreg[t[0]])
			}

			pareas[npolys] = uint8(harea[t[0]])
			npolys++
		}
	}
	if npolys == 0 {
		return true
	}

	// Merge polygons.
	if nvp > 3 {
		for {
			// Find best polygons to merge.
			bestMergeVal := 0
			bestPa := 0
			bestPb := 0
			bestEa := 0
			bestEb := 0

			for j := 0; j < npolys-1; j++ {
				pj := polys[j*nvp:]
				for k := j + 1; k < npolys; k++ {
					pk := polys[k*nvp:]
					v, ea, eb := getPolyMergeValue(pj, pk, mesh.Verts, nvp)
					if v > bestMergeVal {
						bestMergeVal = v
						bestPa = j
						bestPb = k
						bestEa = ea
						bestEb = eb
					}
				}
			}

			if bestMergeVal > 0 {
				// Found best, merge.
				pa := polys[bestPa*nvp:]
				pb := polys[bestPb*nvp:]
				tmpPoly := make([]uint16, nvp)
				mergePolyVerts(pa, pb, bestEa, bestEb, tmpPoly, nvp)
				if pregs[bestPa] != pregs[bestPb] {
					pregs[bestPa] = RC_MULTIPLE_REGS
				}
				last := polys[(npolys-1)*nvp:]
				if !sameSlice(pb, last) {
					copy(pb[:nvp], last[:nvp])
				}
				pregs[bestPb] = pregs[npolys-1]
				pareas[bestPb] = pareas[npolys-1]
				npolys--
			} else {
				// Could not merge any polygons, stop.
				break
			}
		}
	}

	// Store polygons.
	for i := 0; i < npolys; i++ {
		if mesh.NPolys >= maxTris {
			break
		}
		p := mesh.Polys[mesh.NPolys*nvp*2:]
		for j := 0; j < nvp*2; j++ {
			p[j] = RC_MESH_NULL_IDX
		}
		for j := 0; j < nvp; j++ {
			p[j] = polys[i*nvp+j]
		}
		mesh.Regs[mesh.NPolys] = pregs[i]
		mesh.Areas[mesh.NPolys] = pareas[i]
		mesh.NPolys++
		if mesh.NPolys > maxTris {
			ctx.Errorf("removeVertex: Too many polygons %d (max:%d).", mesh.NPolys, maxTris)
			return false
		}
	}

	return true
}

func sameSlice(a, b []uint16) bool {
	return len(a) > 0 && len(b) > 0 && &a[0] == &b[0]
}

func buildMeshAdjacency(polys []uint16, npolys, nverts, vertsPerPoly int) bool {
	// Based on code by Eric Lengyel from:
	// https://web.archive.org/web/20080704083314/http://www.terathon.com/code/edges.php

	maxEdgeCount := npolys * vertsPerPoly
	firstEdge := make([]uint16, nverts+maxEdgeCount)
	nextEdge := firstEdge[nverts:]
	edgeCount := 0

	type rcEdge struct {
		vert     [2]uint16
		polyEdge [2]uint16
		poly     [2]uint16
	}

	edges := make([]rcEdge, 0, maxEdgeCount)

	for i := 0; i < nverts; i++ {
		firstEdge[i] = RC_MESH_NULL_IDX
	}

	for i := 0; i < npolys; i++ {
		t := polys[i*vertsPerPoly*2:]
		for j := 0; j < vertsPerPoly; j++ {
			if t[j] == RC_MESH_NULL_IDX {
				break
			}
			v0 := t[j]
			var v1 uint16
			if j+1 >= vertsPerPoly || t[j+1] == RC_MESH_NULL_IDX {
				v1 = t[0]
			} else {
				v1 = t[j+1]
			}
			if v0 < v1 {
				var edge rcEdge
				edge.vert[0] = v0
				edge.vert[1] = v1
				edge.poly[0] = uint16(i)
				edge.polyEdge[0] = uint16(j)
				edge.poly[1] = uint16(i)
				edge.polyEdge[1] = 0
				edges = append(edges, edge)
				// Insert edge
				nextEdge[edgeCount] = firstEdge[v0]
				firstEdge[v0] = uint16(edgeCount)
				edgeCount++
			}
		}
	}

	for i := 0; i < npolys; i++ {
		t := polys[i*vertsPerPoly*2:]
		for j := 0; j < vertsPerPoly; j++ {
			if t[j] == RC_MESH_NULL_IDX {
				break
			}
			v0 := t[j]
			var v1 uint16
			if j+1 >= vertsPerPoly || t[j+1] == RC_MESH_NULL_IDX {
				v1 = t[0]
			} else {
				v1 = t[j+1]
			}
			if v0 > v1 {
				for e := firstEdge[v1]; e != RC_MESH_NULL_IDX; e = nextEdge[e] {
					edge := &edges[e]
					if edge.vert[1] == v0 && edge.poly[0] == edge.poly[1] {
						edge.poly[1] = uint16(i)
						edge.polyEdge[1] = uint16(j)
						break
					}
				}
			}
		}
	}

	// Store adjacency
	for i := 0; i < edgeCount; i++ {
		e := &edges[i]
		if e.poly[0] != e.poly[1] {
			p0 := polys[int(e.poly[0])*vertsPerPoly*2:]
			p1 := polys[int(e.poly[1])*vertsPerPoly*2:]
			p0[vertsPerPoly+int(e.polyEdge[0])] = e.poly[1]
			p1[vertsPerPoly+int(e.polyEdge[1])] = e.poly[0]
		}
	}

	return true
}

// / Builds a polygon mesh from the provided contours.
// / Shared vertices are welded, triangles merged into convex polygons of
// / at most nvp vertices, and tile border edges tagged with their portal
// / side so they can be connected to neighbouring tiles later.
func RcBuildPolyMesh(ctx *BuildContext, cset *RcContourSet, nvp int) (*RcPolyMesh, bool) {
	ctx.StartTimer(RC_TIMER_BUILD_POLYMESH)
	defer ctx.StopTimer(RC_TIMER_BUILD_POLYMESH)

	mesh := &RcPolyMesh{
		Bmin:         cset.Bmin,
		Bmax:         cset.Bmax,
		Cs:           cset.Cs,
		Ch:           cset.Ch,
		BorderSize:   cset.BorderSize,
		MaxEdgeError: cset.MaxError,
	}

	maxVertices := 0
	maxTris := 0
	maxVertsPerCont := 0
	for i := range cset.Conts {
		// Skip null contours.
		if cset.Conts[i].NVerts < 3 {
			continue
		}
		maxVertices += cset.Conts[i].NVerts
		maxTris += cset.Conts[i].NVerts - 2
		maxVertsPerCont = max(maxVertsPerCont, cset.Conts[i].NVerts)
	}

	if maxVertices >= 0xfffe {
		ctx.Errorf("rcBuildPolyMesh: Too many vertices %d.", maxVertices)
		return nil, false
	}

	vflags := make([]uint8, maxVertices)

	mesh.Verts = make([]uint16, maxVertices*3)
	mesh.Polys = make([]uint16, maxTris*nvp*2)
	for i := range mesh.Polys {
		mesh.Polys[i] = RC_MESH_NULL_IDX
	}
	mesh.Regs = make([]uint16, maxTris)
	mesh.Flags = make([]uint16, maxTris)
	mesh.Areas = make([]uint8, maxTris)
	mesh.Surfa = make([]uint16, maxTris)

	mesh.NVerts = 0
	mesh.NPolys = 0
	mesh.Nvp = nvp
	mesh.MaxPolys = maxTris

	nextVert := make([]int, maxVertices)
	firstVert := make([]int, vertexBucketCount)
	for i := range firstVert {
		firstVert[i] = -1
	}

	indices := make([]int, maxVertsPerCont)
	tris := make([]int, maxVertsPerCont*3)
	polys := make([]uint16, (maxVertsPerCont+1)*nvp)
	tmpPoly := make([]uint16, nvp)

	for i := range cset.Conts {
		cont := &cset.Conts[i]

		// Skip null contours.
		if cont.NVerts < 3 {
			continue
		}

		// Triangulate contour
		for j := 0; j < cont.NVerts; j++ {
			indices[j] = j
		}

		ntris := triangulate(cont.NVerts, cont.Verts, indices[:cont.NVerts], tris)
		if ntris <= 0 {
			// Bad triangulation, should not happen.
			ctx.Warningf("rcBuildPolyMesh: Bad triangulation Contour %d.", i)
			ntris = -ntris
		}

		// Add and merge vertices.
		for j := 0; j < cont.NVerts; j++ {
			v := cont.Verts[j*4:]
			indices[j] = int(addVertex(uint16(v[0]), uint16(v[1]), uint16(v[2]),
				mesh.Verts, firstVert, nextVert, &mesh.NVerts))
			if (v[3] & RC_BORDER_VERTEX) != 0 {
				// This vertex should be removed.
				vflags[indices[j]] = 1
			}
		}

		// Build initial polygons.
		npolys := 0
		for j := range polys {
			polys[j] = RC_MESH_NULL_IDX
		}
		for j := 0; j < ntris; j++ {
			t := tris[j*3:]
			if t[0] != t[1] && t[0] != t[2] && t[1] != t[2] {
				polys[npolys*nvp+0] = uint16(indices[t[0]])
				polys[npolys*nvp+1] = uint16(indices[t[1]])
				polys[npolys*nvp+2] = uint16(indices[t[2]])
				npolys++
			}
		}
		if npolys == 0 {
			continue
		}

		// Merge polygons.
		if nvp > 3 {
			for {
				// Find best polygons to merge.
				bestMergeVal := 0
				bestPa := 0
				bestPb := 0
				bestEa := 0
				bestEb := 0

				for j := 0; j < npolys-1; j++ {
					pj := polys[j*nvp:]
					for k := j + 1; k < npolys; k++ {
						pk := polys[k*nvp:]
						v, ea, eb := getPolyMergeValue(pj, pk, mesh.Verts, nvp)
						if v > bestMergeVal {
							bestMergeVal = v
							bestPa = j
							bestPb = k
							bestEa = ea
							bestEb = eb
						}
					}
				}

				if bestMergeVal > 0 {
					// Found best, merge.
					pa := polys[bestPa*nvp:]
					pb := polys[bestPb*nvp:]
					mergePolyVerts(pa, pb, bestEa, bestEb, tmpPoly, nvp)
					lastPoly := polys[(npolys-1)*nvp:]
					if !sameSlice(pb, lastPoly) {
						copy(pb[:nvp], lastPoly[:nvp])
					}
					npolys--
				} else {
					// Could not merge any polygons, stop.
					break
				}
			}
		}

		// Store polygons.
		for j := 0; j < npolys; j++ {
			p := mesh.Polys[mesh.NPolys*nvp*2:]
			q := polys[j*nvp:]
			for k := 0; k < nvp; k++ {
				p[k] = q[k]
			}
			mesh.Regs[mesh.NPolys] = cont.Reg
			mesh.Areas[mesh.NPolys] = cont.Area
			mesh.NPolys++
			if mesh.NPolys > maxTris {
				ctx.Errorf("rcBuildPolyMesh: Too many polygons %d (max:%d).", mesh.NPolys, maxTris)
				return nil, false
			}
		}
	}

	// Remove edge vertices.
	for i := 0; i < mesh.NVerts; i++ {
		if vflags[i] != 0 {
			if !canRemoveVertex(mesh, uint16(i)) {
				continue
			}
			if !removeVertex(ctx, mesh, uint16(i), maxTris) {
				// Failed to remove vertex
				ctx.Errorf("rcBuildPolyMesh: Failed to remove edge vertex %d.", i)
				return nil, false
			}
			// Remove vertex
			// Note: mesh.NVerts is already decremented inside removeVertex()!
			// Fixup vertex flags
			for j := i; j < mesh.NVerts; j++ {
				vflags[j] = vflags[j+1]
			}
			i--
		}
	}

	// Calculate adjacency.
	if !buildMeshAdjacency(mesh.Polys, mesh.NPolys, mesh.NVerts, nvp) {
		ctx.Errorf("rcBuildPolyMesh: Adjacency failed.")
		return nil, false
	}

	// Find portal edges
	if mesh.BorderSize > 0 {
		w := cset.Width
		h := cset.Height
		for i := 0; i < mesh.NPolys; i++ {
			p := mesh.Polys[i*2*nvp:]
			for j := 0; j < nvp; j++ {
				if p[j] == RC_MESH_NULL_IDX {
					break
				}
				// Skip connected edges.
				if p[nvp+j] != RC_MESH_NULL_IDX {
					continue
				}
				nj := j + 1
				if nj >= nvp || p[nj] == RC_MESH_NULL_IDX {
					nj = 0
				}
				va := mesh.Verts[int(p[j])*3:]
				vb := mesh.Verts[int(p[nj])*3:]

				if int(va[0]) == 0 && int(vb[0]) == 0 {
					p[nvp+j] = 0x8000 | 0
				} else if int(va[1]) == h && int(vb[1]) == h {
					p[nvp+j] = 0x8000 | 2
				} else if int(va[0]) == w && int(vb[0]) == w {
					p[nvp+j] = 0x8000 | 4
				} else if int(va[1]) == 0 && int(vb[1]) == 0 {
					p[nvp+j] = 0x8000 | 6
				}
			}
		}
	}

	// Compute quantized surface areas.
	va := make([]float32, 3)
	vb := make([]float32, 3)
	vc := make([]float32, 3)
	for i := 0; i < mesh.NPolys; i++ {
		p := mesh.Polys[i*2*nvp:]
		nv := countPolyVerts(p, nvp)
		var polyArea float32
		for j := 2; j < nv; j++ {
			a := mesh.Verts[int(p[0])*3:]
			b := mesh.Verts[int(p[j-1])*3:]
			c := mesh.Verts[int(p[j])*3:]
			common.Vset(va, float32(a[0])*mesh.Cs, float32(a[1])*mesh.Cs, float32(a[2])*mesh.Ch)
			common.Vset(vb, float32(b[0])*mesh.Cs, float32(b[1])*mesh.Cs, float32(b[2])*mesh.Ch)
			common.Vset(vc, float32(c[0])*mesh.Cs, float32(c[1])*mesh.Cs, float32(c[2])*mesh.Ch)
			polyArea += common.Fabsf(common.TriArea2D(va, vb, vc)) * 0.5
		}
		quant := polyArea * RC_POLY_SURFAREA_QUANT_FACTOR
		mesh.Surfa[i] = uint16(common.Clamp(int(quant+0.5), 0, 0xffff))
	}

	// Just allocate the mesh flags array. The user is resposible to fill it.
	for i := range mesh.Flags[:mesh.NPolys] {
		mesh.Flags[i] = 0
	}

	if mesh.NVerts > 0xffff {
		ctx.Errorf("rcBuildPolyMesh: The resulting mesh has too many vertices %d (max %d).", mesh.NVerts, 0xffff)
	}
	if mesh.NPolys > 0xffff {
		ctx.Errorf("rcBuildPolyMesh: The resulting mesh has too many polygons %d (max %d).", mesh.NPolys, 0xffff)
	}

	return mesh, true
}
