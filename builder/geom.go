package builder

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/ttvmkos/r5nav/common"
	"github.com/ttvmkos/r5nav/detour"
	"github.com/ttvmkos/r5nav/recast"
)

// / The maximum number of user declared off-mesh connections and shape
// / volumes an input geometry can hold.
const (
	MaxOffMeshConnections = 256
	MaxShapeVolumes       = 256
	MaxShapeVolumePts     = 12
)

// / A user declared convex marking volume. Overlapping compact spans get
// / their area rewritten; matching polygons additionally inherit the
// / volume's flags.
type ShapeVolume struct {
	Verts  [MaxShapeVolumePts * 3]float32
	NVerts int
	Hmin   float32
	Hmax   float32
	Area   uint8
	Flags  uint16
}

// / A user declared point-to-point traverse connection.
type OffMeshConnection struct {
	Verts  [6]float32 ///< The endpoints. [(ax, ay, az, bx, by, bz)]
	RefPos [3]float32 ///< The reference position near the start point.
	Rad    float32
	RefYaw float32 ///< The reference yaw towards the end position. [Unit: Radians]
	Flags  uint16
	Area   uint8
	Dir    uint8 ///< 0 = A to B only, #DT_OFFMESH_CON_BIDIR = bidirectional.
	Jump   uint8 ///< The traverse type of the jump.
	Order  uint8 ///< The vert lookup order.
	UserId uint16
}

// / Input level geometry: a flat triangle soup plus the user declared
// / off-mesh connections and marking volumes. Immutable during a build.
type InputGeom struct {
	verts  []float32
	tris   []int
	bmin   [3]float32
	bmax   [3]float32
	chunky *recast.RcChunkyTriMesh

	offMeshCons []OffMeshConnection
	volumes     []ShapeVolume
}

// / Creates the input geometry from a flat vertex buffer (3 floats per
// / vertex) and a triangle index buffer (3 indices per triangle).
func NewInputGeom(verts []float32, tris []int) (*InputGeom, error) {
	if len(verts) < 9 || len(verts)%3 != 0 {
		return nil, fmt.Errorf("geom: invalid vertex buffer length %d", len(verts))
	}
	if len(tris) < 3 || len(tris)%3 != 0 {
		return nil, fmt.Errorf("geom: invalid triangle buffer length %d", len(tris))
	}

	geom := &InputGeom{
		verts: verts,
		tris:  tris,
	}
	recast.RcCalcBounds(verts, len(verts)/3, geom.bmin[:], geom.bmax[:])

	chunky, ok := recast.RcCreateChunkyTriMesh(verts, tris, len(tris)/3, 256)
	if !ok {
		return nil, fmt.Errorf("geom: failed to build chunky triangle mesh")
	}
	geom.chunky = chunky

	return geom, nil
}

func (g *InputGeom) Verts() []float32              { return g.verts }
func (g *InputGeom) VertCount() int                { return len(g.verts) / 3 }
func (g *InputGeom) Tris() []int                   { return g.tris }
func (g *InputGeom) TriCount() int                 { return len(g.tris) / 3 }
func (g *InputGeom) ChunkyMesh() *recast.RcChunkyTriMesh { return g.chunky }
func (g *InputGeom) NavMeshBoundsMin() []float32   { return g.bmin[:] }
func (g *InputGeom) NavMeshBoundsMax() []float32   { return g.bmax[:] }

// / Intersects the segment with a single triangle.
func intersectSegmentTriangle(sp, sq mgl32.Vec3, a, b, c []float32) (float32, bool) {
	const eps = 1e-6

	va := mgl32.Vec3{a[0], a[1], a[2]}
	vb := mgl32.Vec3{b[0], b[1], b[2]}
	vc := mgl32.Vec3{c[0], c[1], c[2]}

	dir := sq.Sub(sp)
	edge1 := vb.Sub(va)
	edge2 := vc.Sub(va)

	pvec := dir.Cross(edge2)
	det := edge1.Dot(pvec)
	if det > -eps && det < eps {
		return 0, false
	}
	invDet := 1.0 / det

	tvec := sp.Sub(va)
	u := tvec.Dot(pvec) * invDet
	if u < 0 || u > 1 {
		return 0, false
	}

	qvec := tvec.Cross(edge1)
	v := dir.Dot(qvec) * invDet
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t := edge2.Dot(qvec) * invDet
	if t < 0 || t > 1 {
		return 0, false
	}
	return t, true
}

// / Casts a segment against the static input geometry.
// / Returns true iff the segment hits a triangle.
func (g *InputGeom) RaycastMesh(src, dst []float32) bool {
	_, hit := g.RaycastMeshHit(src, dst)
	return hit
}

// / Casts a segment against the static input geometry and reports the
// / parametric hit distance of the nearest intersection.
func (g *InputGeom) RaycastMeshHit(src, dst []float32) (tmin float32, hit bool) {
	// Prune hit ray with the segment's xy bounds.
	var rect [2][2]float32
	rect[0][0] = min(src[0], dst[0])
	rect[0][1] = min(src[1], dst[1])
	rect[1][0] = max(src[0], dst[0])
	rect[1][1] = max(src[1], dst[1])

	sp := mgl32.Vec3{src[0], src[1], src[2]}
	sq := mgl32.Vec3{dst[0], dst[1], dst[2]}

	tmin = 1.0

	cid := make([]int, 512)
	currentNode := 0
	for {
		var ncid int
		done := recast.RcGetChunksOverlappingRectResumable(g.chunky, rect[0], rect[1], cid, len(cid), &ncid, &currentNode)

		for i := 0; i < ncid; i++ {
			node := &g.chunky.Nodes[cid[i]]
			ctris := g.chunky.Tris[node.I*3:]

			for j := 0; j < node.N; j++ {
				a := g.verts[ctris[j*3+0]*3:]
				b := g.verts[ctris[j*3+1]*3:]
				c := g.verts[ctris[j*3+2]*3:]
				if t, ok := intersectSegmentTriangle(sp, sq, a, b, c); ok {
					if t < tmin {
						tmin = t
					}
					hit = true
				}
			}
		}

		if done {
			break
		}
	}

	return tmin, hit
}

// / @name Off-mesh connections.
// / @{

func (g *InputGeom) OffMeshConnections() []OffMeshConnection {
	return g.offMeshCons
}

// / Declares an off-mesh connection between spos and epos. The reference
// / position and yaw are derived from the start position and the frozen
// / ref-pos offset.
func (g *InputGeom) AddOffMeshConnection(spos, epos []float32, rad float32,
	dir, area uint8, flags uint16, jump, order uint8, userId uint16) bool {

	if len(g.offMeshCons) >= MaxOffMeshConnections {
		return false
	}

	var con OffMeshConnection
	common.Vcopy(con.Verts[0:3], spos)
	common.Vcopy(con.Verts[3:6], epos)
	con.Rad = rad
	con.Dir = dir
	con.Area = area
	con.Flags = flags
	con.Jump = jump
	con.Order = order
	con.UserId = userId
	con.RefYaw = detour.DtCalcOffMeshRefYaw(spos, epos)
	detour.DtCalcOffMeshRefPos(spos, con.RefYaw, detour.DT_OFFMESH_CON_REFPOS_OFFSET, con.RefPos[:])

	g.offMeshCons = append(g.offMeshCons, con)
	return true
}

func (g *InputGeom) DeleteOffMeshConnection(i int) {
	g.offMeshCons = append(g.offMeshCons[:i], g.offMeshCons[i+1:]...)
}

// / @}
// / @name Shape volumes.
// / @{

func (g *InputGeom) ConvexVolumes() []ShapeVolume {
	return g.volumes
}

// / Declares a convex marking volume.
func (g *InputGeom) AddConvexVolume(verts []float32, nverts int, hmin, hmax float32, area uint8, flags uint16) bool {
	if len(g.volumes) >= MaxShapeVolumes || nverts > MaxShapeVolumePts {
		return false
	}

	var vol ShapeVolume
	copy(vol.Verts[:], verts[:nverts*3])
	vol.NVerts = nverts
	vol.Hmin = hmin
	vol.Hmax = hmax
	vol.Area = area
	vol.Flags = flags

	g.volumes = append(g.volumes, vol)
	return true
}

func (g *InputGeom) DeleteConvexVolume(i int) {
	g.volumes = append(g.volumes[:i], g.volumes[i+1:]...)
}

// / @}
