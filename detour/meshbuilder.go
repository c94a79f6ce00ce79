package detour

import (
	"sort"

	"github.com/ttvmkos/r5nav/common"
)

// / Represents the source data used to build a navigation mesh tile.
type DtNavMeshCreateParams struct {
	/// @name Polygon Mesh Attributes
	/// Used to create the base navigation graph.
	/// @{

	Verts          []uint16 ///< The polygon mesh vertices. [(x, y, z) * VertCount] [Unit: vx]
	VertCount      int      ///< The number vertices in the polygon mesh. [Limit: >= 3]
	Polys          []uint16 ///< The polygon data. [Size: PolyCount * 2 * Nvp]
	PolyFlags      []uint16 ///< The user defined flags assigned to each polygon. [Size: PolyCount]
	PolyAreas      []uint8  ///< The user defined area ids assigned to each polygon. [Size: PolyCount]
	SurfAreas      []uint16 ///< The surface area amount for each polygon. [Size: PolyCount]
	PolyCount      int      ///< Number of polygons in the mesh. [Limit: >= 1]
	Nvp            int      ///< Maximum number of vertices per polygon. [Limit: >= 3]
	CellResolution int      ///< The resolution of the diamond cell grid. [Limit: >= 1]

	/// @}
	/// @name Height Detail Attributes (Optional)
	/// @{

	DetailMeshes     []uint32  ///< The height detail sub-mesh data. [Size: 4 * PolyCount]
	DetailVerts      []float32 ///< The detail mesh vertices. [Size: 3 * DetailVertsCount] [Unit: wu]
	DetailVertsCount int       ///< The number of vertices in the detail mesh.
	DetailTris       []uint8   ///< The detail mesh triangles. [Size: 4 * DetailTriCount]
	DetailTriCount   int       ///< The number of triangles in the detail mesh.

	/// @}
	/// @name Off-Mesh Connections Attributes (Optional)
	/// @{

	/// Off-mesh connection vertices. [(ax, ay, az, bx, by, bz) * OffMeshConCount] [Unit: wu]
	OffMeshConVerts []float32
	/// Off-mesh connection reference positions. [(x, y, z) * OffMeshConCount] [Unit: wu]
	OffMeshConRefPos []float32
	/// Off-mesh connection radii. [Size: OffMeshConCount] [Unit: wu]
	OffMeshConRad []float32
	/// Off-mesh connection reference yaw. [Size: OffMeshConCount] [Unit: Radians]
	OffMeshConRefYaw []float32
	/// User defined flags assigned to the off-mesh connections. [Size: OffMeshConCount]
	OffMeshConFlags []uint16
	/// User defined area ids assigned to the off-mesh connections. [Size: OffMeshConCount]
	OffMeshConAreas []uint8
	/// The permitted travel direction of the off-mesh connections. [Size: OffMeshConCount]
	/// 0 = Travel only from endpoint A to endpoint B.
	/// #DT_OFFMESH_CON_BIDIR = Bidirectional travel.
	OffMeshConDir []uint8
	/// The user defined jump type of the off-mesh connection. [Size: OffMeshConCount]
	OffMeshConJumps []uint8
	/// The user defined lookup order of the off-mesh connection poly verts. [Size: OffMeshConCount]
	OffMeshConOrders []uint8
	/// The user defined ids of the off-mesh connection. [Size: OffMeshConCount]
	OffMeshConUserID []uint16
	/// The number of off-mesh connections. [Limit: >= 0]
	OffMeshConCount int

	/// @}
	/// @name Tile Attributes
	/// @{

	UserId    uint32     ///< The user defined id of the tile.
	TileX     int32      ///< The tile's x-grid location within the multi-tile destination mesh.
	TileY     int32      ///< The tile's y-grid location within the multi-tile destination mesh.
	TileLayer int32      ///< The tile's layer within the layered destination mesh. [Limit: >= 0]
	Bmin      [3]float32 ///< The minimum bounds of the tile. [(x, y, z)] [Unit: wu]
	Bmax      [3]float32 ///< The maximum bounds of the tile. [(x, y, z)] [Unit: wu]

	/// @}
	/// @name General Configuration Attributes
	/// @{

	WalkableHeight float32 ///< The agent height. [Unit: wu]
	WalkableRadius float32 ///< The agent radius. [Unit: wu]
	WalkableClimb  float32 ///< The agent maximum traversable ledge. (Up/Down) [Unit: wu]
	Cs             float32 ///< The xy-plane cell size of the polygon mesh. [Limit: > 0] [Unit: wu]
	Ch             float32 ///< The z-axis cell height of the polygon mesh. [Limit: > 0] [Unit: wu]

	/// True if a bounding volume tree should be built for the tile.
	BuildBvTree bool

	/// @}
}

const MESH_NULL_IDX = 0xffff

type bvItem struct {
	bmin [3]uint16
	bmax [3]uint16
	i    int32
}

// / The maximum number of polygons stored in one BV leaf run.
const bvLeafRun = 5

func subdivideBVTree(items []bvItem, imin, imax int, nodes *[]DtBVNode) {
	inum := imax - imin
	icur := len(*nodes)

	if inum <= bvLeafRun {
		// Emit one leaf node per polygon; the run shares no internal node.
		for i := imin; i < imax; i++ {
			var node DtBVNode
			node.Bmin = items[i].bmin
			node.Bmax = items[i].bmax
			node.I = items[i].i
			*nodes = append(*nodes, node)
		}
		return
	}

	// Split
	var node DtBVNode
	node.Bmin = items[imin].bmin
	node.Bmax = items[imin].bmax
	for i := imin + 1; i < imax; i++ {
		for k := 0; k < 3; k++ {
			node.Bmin[k] = min(node.Bmin[k], items[i].bmin[k])
			node.Bmax[k] = max(node.Bmax[k], items[i].bmax[k])
		}
	}
	*nodes = append(*nodes, node)

	// Sort along the longest axis and split at the median.
	axis := 0
	extentX := int(node.Bmax[0]) - int(node.Bmin[0])
	extentY := int(node.Bmax[1]) - int(node.Bmin[1])
	extentZ := int(node.Bmax[2]) - int(node.Bmin[2])
	if extentY > extentX && extentY >= extentZ {
		axis = 1
	} else if extentZ > extentX && extentZ > extentY {
		axis = 2
	}

	sub := items[imin:imax]
	sort.SliceStable(sub, func(a, b int) bool {
		return sub[a].bmin[axis] < sub[b].bmin[axis]
	})

	isplit := imin + inum/2

	subdivideBVTree(items, imin, isplit, nodes)
	subdivideBVTree(items, isplit, imax, nodes)

	iescape := int32(len(*nodes) - icur)
	// Negative index means escape.
	(*nodes)[icur].I = -iescape
}

func createBVTree(params *DtNavMeshCreateParams) []DtBVNode {
	items := make([]bvItem, params.PolyCount)
	quantFactor := 1.0 / params.Cs

	for i := 0; i < params.PolyCount; i++ {
		it := &items[i]
		it.i = int32(i)
		// Calc polygon bounds. Use detail meshes if available.
		if params.DetailMeshes != nil {
			vb := int(params.DetailMeshes[i*4+0])
			ndv := int(params.DetailMeshes[i*4+1])
			var bmin, bmax [3]float32
			dv := params.DetailVerts[vb*3:]
			common.Vcopy(bmin[:], dv)
			common.Vcopy(bmax[:], dv)
			for j := 1; j < ndv; j++ {
				common.Vmin(bmin[:], dv[j*3:])
				common.Vmax(bmax[:], dv[j*3:])
			}

			// BV-tree uses cs for all dimensions
			it.bmin[0] = uint16(common.Clamp(int((bmin[0]-params.Bmin[0])*quantFactor), 0, 0xffff))
			it.bmin[1] = uint16(common.Clamp(int((bmin[1]-params.Bmin[1])*quantFactor), 0, 0xffff))
			it.bmin[2] = uint16(common.Clamp(int((bmin[2]-params.Bmin[2])*quantFactor), 0, 0xffff))

			it.bmax[0] = uint16(common.Clamp(int((bmax[0]-params.Bmin[0])*quantFactor), 0, 0xffff))
			it.bmax[1] = uint16(common.Clamp(int((bmax[1]-params.Bmin[1])*quantFactor), 0, 0xffff))
			it.bmax[2] = uint16(common.Clamp(int((bmax[2]-params.Bmin[2])*quantFactor), 0, 0xffff))
		} else {
			p := params.Polys[i*params.Nvp*2:]
			it.bmin[0] = params.Verts[int(p[0])*3+0]
			it.bmin[1] = params.Verts[int(p[0])*3+1]
			it.bmin[2] = params.Verts[int(p[0])*3+2]
			it.bmax = it.bmin

			for j := 1; j < params.Nvp; j++ {
				if p[j] == MESH_NULL_IDX {
					break
				}
				x := params.Verts[int(p[j])*3+0]
				y := params.Verts[int(p[j])*3+1]
				z := params.Verts[int(p[j])*3+2]

				it.bmin[0] = min(it.bmin[0], x)
				it.bmin[1] = min(it.bmin[1], y)
				it.bmin[2] = min(it.bmin[2], z)

				it.bmax[0] = max(it.bmax[0], x)
				it.bmax[1] = max(it.bmax[1], y)
				it.bmax[2] = max(it.bmax[2], z)
			}
			// Remap z
			it.bmin[2] = uint16(common.Floorf(float32(it.bmin[2]) * params.Ch / params.Cs))
			it.bmax[2] = uint16(common.Ceilf(float32(it.bmax[2]) * params.Ch / params.Cs))
		}
	}

	nodes := make([]DtBVNode, 0, params.PolyCount*2)
	subdivideBVTree(items, 0, params.PolyCount, &nodes)
	return nodes
}

func classifyOffMeshPoint(pt, bmin, bmax []float32) uint8 {
	return common.ClassifyPointOutsideBounds(pt, bmin, bmax)
}

// / Builds navigation mesh tile data from the provided tile creation data.
// /
// / The output is the structured tile payload; ToBin produces the
// / serialized blob with the sections in their fixed aligned order.
func DtCreateNavMeshData(params *DtNavMeshCreateParams) (*NavMeshData, bool) {
	if params.Nvp > DT_VERTS_PER_POLYGON {
		return nil, false
	}
	if params.VertCount == 0 || params.Verts == nil {
		return nil, false
	}
	if params.PolyCount == 0 || params.Polys == nil {
		return nil, false
	}
	if params.VertCount >= 0xffff {
		return nil, false
	}

	nvp := params.Nvp

	// Classify off-mesh connection points. We store only the connections
	// whose start point is inside the tile.
	var offMeshConClass []uint8
	storedOffMeshConCount := 0
	offMeshConLinkCount := 0

	if params.OffMeshConCount > 0 {
		offMeshConClass = make([]uint8, params.OffMeshConCount*2)

		// Find tight height bounds, used by off mesh connections.
		hmin := float32(3.4e38)
		hmax := float32(-3.4e38)

		if params.DetailVerts != nil && params.DetailVertsCount > 0 {
			for i := 0; i < params.DetailVertsCount; i++ {
				h := params.DetailVerts[i*3+2]
				hmin = min(hmin, h)
				hmax = max(hmax, h)
			}
		} else {
			for i := 0; i < params.VertCount; i++ {
				h := params.Bmin[2] + float32(params.Verts[i*3+2])*params.Ch
				hmin = min(hmin, h)
				hmax = max(hmax, h)
			}
		}
		hmin -= params.WalkableClimb
		hmax += params.WalkableClimb
		var bmin, bmax [3]float32
		bmin = params.Bmin
		bmax = params.Bmax
		bmin[2] = hmin
		bmax[2] = hmax

		for i := 0; i < params.OffMeshConCount; i++ {
			p0 := params.OffMeshConVerts[i*6 : i*6+3]
			p1 := params.OffMeshConVerts[i*6+3 : i*6+6]
			offMeshConClass[i*2+0] = classifyOffMeshPoint(p0, bmin[:], bmax[:])
			offMeshConClass[i*2+1] = classifyOffMeshPoint(p1, bmin[:], bmax[:])

			// Zero out off-mesh start positions which are not even
			// potentially touching the mesh.
			if offMeshConClass[i*2+0] == 0xff {
				if p0[2] < bmin[2] || p0[2] > bmax[2] {
					offMeshConClass[i*2+0] = 0
				}
			}

			// Count how many links should be allocated for off-mesh connections.
			if offMeshConClass[i*2+0] == 0xff {
				offMeshConLinkCount++
			}
			if offMeshConClass[i*2+1] == 0xff {
				offMeshConLinkCount++
			}

			if offMeshConClass[i*2+0] == 0xff {
				storedOffMeshConCount++
			}
		}
	}

	// Off-mesh connections are stored as polygons, adjust values.
	totPolyCount := params.PolyCount + storedOffMeshConCount
	totVertCount := params.VertCount + storedOffMeshConCount*2

	// Count number of polygon edges and portal edges.
	edgeCount := 0
	portalCount := 0
	for i := 0; i < params.PolyCount; i++ {
		p := params.Polys[i*2*nvp:]
		for j := 0; j < nvp; j++ {
			if p[j] == MESH_NULL_IDX {
				break
			}
			edgeCount++

			if (p[nvp+j] & DT_EXT_LINK) != 0 {
				dir := p[nvp+j] & 0xf
				if dir != 0xf {
					portalCount++
				}
			}
		}
	}

	// Reserve headroom on top of the structural link demand so traverse
	// links generated after the tile is connected have slots to land in.
	traverseLinkHeadroom := params.PolyCount * 4
	maxLinkCount := edgeCount + portalCount*2 + offMeshConLinkCount*2 + traverseLinkHeadroom

	// Find unique detail vertices.
	uniqueDetailVertCount := 0
	detailTriCount := 0
	if params.DetailMeshes != nil {
		detailTriCount = params.DetailTriCount
		for i := 0; i < params.PolyCount; i++ {
			p := params.Polys[i*nvp*2:]
			ndv := int(params.DetailMeshes[i*4+1])
			nv := 0
			for j := 0; j < nvp; j++ {
				if p[j] == MESH_NULL_IDX {
					break
				}
				nv++
			}
			ndv -= nv
			uniqueDetailVertCount += ndv
		}
	} else {
		// No input detail mesh, build detail triangles from nav polys.
		for i := 0; i < params.PolyCount; i++ {
			p := params.Polys[i*nvp*2:]
			nv := 0
			for j := 0; j < nvp; j++ {
				if p[j] == MESH_NULL_IDX {
					break
				}
				nv++
			}
			detailTriCount += nv - 2
		}
	}

	data := &NavMeshData{
		Header:       &DtMeshHeader{},
		NavVerts:     make([]float32, 3*totVertCount),
		NavPolys:     make([]DtPoly, totPolyCount),
		PolyMap:      make([]int32, totPolyCount),
		Links:        make([]DtLink, maxLinkCount),
		DetailMeshes: make([]DtPolyDetail, params.PolyCount),
		DetailVerts:  make([]float32, 3*uniqueDetailVertCount),
		DetailTris:   make([]uint8, 4*detailTriCount),
		OffMeshCons:  make([]DtOffMeshConnection, storedOffMeshConCount),
	}
	header := data.Header

	// Store header
	header.Magic = DT_NAVMESH_MAGIC
	header.Version = DT_NAVMESH_VERSION
	header.X = params.TileX
	header.Y = params.TileY
	header.Layer = params.TileLayer
	header.UserId = params.UserId
	header.PolyCount = int32(totPolyCount)
	header.PolyMapCount = int32(totPolyCount)
	header.VertCount = int32(totVertCount)
	header.MaxLinkCount = int32(maxLinkCount)
	header.Bmin = params.Bmin
	header.Bmax = params.Bmax
	header.DetailMeshCount = int32(params.PolyCount)
	header.DetailVertCount = int32(uniqueDetailVertCount)
	header.DetailTriCount = int32(detailTriCount)
	header.BvQuantFactor = 1.0 / params.Cs
	header.OffMeshBase = int32(params.PolyCount)
	header.WalkableHeight = params.WalkableHeight
	header.WalkableRadius = params.WalkableRadius
	header.WalkableClimb = params.WalkableClimb
	header.OffMeshConCount = int32(storedOffMeshConCount)
	if params.BuildBvTree {
		header.BvNodeCount = int32(params.PolyCount * 2)
	}

	offMeshVertsBase := params.VertCount
	offMeshPolyBase := params.PolyCount

	// Store vertices
	// Mesh vertices
	for i := 0; i < params.VertCount; i++ {
		iv := params.Verts[i*3 : i*3+3]
		v := data.NavVerts[i*3:]
		v[0] = params.Bmin[0] + float32(iv[0])*params.Cs
		v[1] = params.Bmin[1] + float32(iv[1])*params.Cs
		v[2] = params.Bmin[2] + float32(iv[2])*params.Ch
	}
	// Off-mesh link vertices.
	n := 0
	for i := 0; i < params.OffMeshConCount; i++ {
		// Only store connections which start from this tile.
		if offMeshConClass[i*2+0] == 0xff {
			linkv := params.OffMeshConVerts[i*6:]
			v := data.NavVerts[(offMeshVertsBase+n*2)*3:]
			common.Vcopy(v, linkv)
			common.Vcopy(v[3:], linkv[3:])
			n++
		}
	}

	// Store polygons
	// Mesh polys
	for i := 0; i < params.PolyCount; i++ {
		src := params.Polys[i*2*nvp:]
		p := &data.NavPolys[i]
		p.FirstLink = DT_NULL_LINK
		p.VertCount = 0
		p.Flags = params.PolyFlags[i]
		p.SetArea(params.PolyAreas[i])
		p.SetType(DT_POLYTYPE_GROUND)
		p.GroupId = DT_NULL_POLY_GROUP
		if params.SurfAreas != nil {
			p.SurfaceArea = params.SurfAreas[i]
		}
		for j := 0; j < nvp; j++ {
			if src[j] == MESH_NULL_IDX {
				break
			}
			p.Verts[j] = src[j]
			if (src[nvp+j] & DT_EXT_LINK) != 0 {
				// Border or portal edge.
				dir := src[nvp+j] & 0xf
				if dir == 0xf { // Border
					p.Neis[j] = 0
				} else {
					p.Neis[j] = DT_EXT_LINK | dir
				}
			} else {
				// Normal connection
				p.Neis[j] = src[nvp+j] + 1
			}

			p.VertCount++
		}

		common.CalcPolyCenter(p.Center[:], p.Verts[:p.VertCount], int(p.VertCount), data.NavVerts)
	}
	// Off-mesh connection polygons.
	n = 0
	for i := 0; i < params.OffMeshConCount; i++ {
		// Only store connections which start from this tile.
		if offMeshConClass[i*2+0] == 0xff {
			p := &data.NavPolys[offMeshPolyBase+n]
			p.FirstLink = DT_NULL_LINK
			p.VertCount = 2
			p.Verts[0] = uint16(offMeshVertsBase + n*2 + 0)
			p.Verts[1] = uint16(offMeshVertsBase + n*2 + 1)
			p.Flags = params.OffMeshConFlags[i] | DT_POLYFLAGS_JUMP
			p.SetArea(params.OffMeshConAreas[i])
			p.SetType(DT_POLYTYPE_OFFMESH_CONNECTION)
			p.GroupId = DT_NULL_POLY_GROUP
			common.CalcPolyCenter(p.Center[:], p.Verts[:2], 2, data.NavVerts)
			n++
		}
	}

	// Store detail meshes and vertices.
	// The nav polygon vertices are stored as the first vertices on each mesh.
	// We compress the mesh data by skipping them and using the navmesh coordinates.
	if params.DetailMeshes != nil {
		vbase := 0
		for i := 0; i < params.PolyCount; i++ {
			dtl := &data.DetailMeshes[i]
			vb := int(params.DetailMeshes[i*4+0])
			ndv := int(params.DetailMeshes[i*4+1])
			nv := int(data.NavPolys[i].VertCount)
			dtl.VertBase = uint32(vbase)
			dtl.VertCount = uint8(ndv - nv)
			dtl.TriBase = params.DetailMeshes[i*4+2]
			dtl.TriCount = uint8(params.DetailMeshes[i*4+3])
			// Copy vertices except the first 'nv' verts which are equal to nav poly verts.
			if ndv-nv != 0 {
				copy(data.DetailVerts[vbase*3:], params.DetailVerts[(vb+nv)*3:(vb+ndv)*3])
				vbase += ndv - nv
			}
		}
		// Store triangles.
		copy(data.DetailTris, params.DetailTris[:4*params.DetailTriCount])
	} else {
		// Create dummy detail mesh by triangulating polys.
		tbase := 0
		for i := 0; i < params.PolyCount; i++ {
			dtl := &data.DetailMeshes[i]
			nv := int(data.NavPolys[i].VertCount)
			dtl.VertBase = 0
			dtl.VertCount = 0
			dtl.TriBase = uint32(tbase)
			dtl.TriCount = uint8(nv - 2)
			// Triangulate polygon (local indices).
			for j := 2; j < nv; j++ {
				t := data.DetailTris[tbase*4:]
				t[0] = 0
				t[1] = uint8(j - 1)
				t[2] = uint8(j)
				// Bit for each edge that belongs to poly boundary.
				t[3] = 1 << 2
				if j == 2 {
					t[3] |= 1 << 0
				}
				if j == nv-1 {
					t[3] |= 1 << 4
				}
				tbase++
			}
		}
	}

	// Store and create BVtree.
	if params.BuildBvTree {
		data.BvTree = createBVTree(params)
		header.BvNodeCount = int32(len(data.BvTree))
	}

	// Store Off-Mesh connections.
	n = 0
	for i := 0; i < params.OffMeshConCount; i++ {
		// Only store connections which start from this tile.
		if offMeshConClass[i*2+0] == 0xff {
			con := &data.OffMeshCons[n]
			con.Poly = uint16(offMeshPolyBase + n)
			// Copy connection end-points.
			endPts := params.OffMeshConVerts[i*6:]
			copy(con.Pos[:], endPts[:6])
			con.Rad = params.OffMeshConRad[i]
			con.Side = offMeshConClass[i*2+1]
			var order uint8
			if params.OffMeshConOrders != nil {
				order = params.OffMeshConOrders[i]
			}
			con.SetTraverseType(params.OffMeshConJumps[i], order)
			if params.OffMeshConDir[i]&DT_OFFMESH_CON_BIDIR != 0 {
				con.TraverseType |= DT_OFFMESH_CON_TRAVERSE_ON_POLY
			}
			if params.OffMeshConUserID != nil {
				con.UserId = params.OffMeshConUserID[i]
			}
			con.HintIndex = DT_NULL_HINT
			if params.OffMeshConRefPos != nil {
				copy(con.RefPos[:], params.OffMeshConRefPos[i*3:i*3+3])
			}
			if params.OffMeshConRefYaw != nil {
				con.RefYaw = params.OffMeshConRefYaw[i]
			}
			n++
		}
	}

	// Build per-polygon diamond cells.
	if params.CellResolution > 0 {
		data.Cells = buildPolyCells(params, data)
		header.MaxCellCount = int32(len(data.Cells))
	}

	return data, true
}

// / Samples a diamond-pattern grid of cells over each ground polygon.
// / Cells are used by the game to track position occupancy so AI do not
// / clip into each other when standing still.
func buildPolyCells(params *DtNavMeshCreateParams, data *NavMeshData) []DtCell {
	res := params.CellResolution
	cells := make([]DtCell, 0, params.PolyCount*res)
	polyVerts := make([]float32, DT_VERTS_PER_POLYGON*3)
	pt := make([]float32, 3)

	for i := 0; i < params.PolyCount; i++ {
		poly := &data.NavPolys[i]
		nv := int(poly.VertCount)

		var bmin, bmax [2]float32
		for j := 0; j < nv; j++ {
			v := data.NavVerts[int(poly.Verts[j])*3:]
			common.Vcopy(polyVerts[j*3:], v)
			if j == 0 {
				bmin[0], bmin[1] = v[0], v[1]
				bmax[0], bmax[1] = v[0], v[1]
			} else {
				bmin[0] = min(bmin[0], v[0])
				bmin[1] = min(bmin[1], v[1])
				bmax[0] = max(bmax[0], v[0])
				bmax[1] = max(bmax[1], v[1])
			}
		}

		stepX := (bmax[0] - bmin[0]) / float32(res+1)
		stepY := (bmax[1] - bmin[1]) / float32(res+1)

		for gy := 1; gy <= res; gy++ {
			for gx := 1; gx <= res; gx++ {
				// Offset odd rows by half a step to get the diamond pattern.
				offset := float32(0)
				if gy&1 == 1 {
					offset = stepX * 0.5
				}
				pt[0] = bmin[0] + float32(gx)*stepX + offset
				pt[1] = bmin[1] + float32(gy)*stepY
				pt[2] = poly.Center[2]

				if !common.PointInPolygon(pt, polyVerts, nv) {
					continue
				}

				var cell DtCell
				common.Vcopy(cell.Pos[:], pt)
				cell.PolyIndex = uint32(i)
				cell.SetOccupied()
				cells = append(cells, cell)
			}
		}
	}

	return cells
}
