package detour

import (
	"github.com/ttvmkos/r5nav/common"
)

// / A handle to a polygon within a navigation mesh tile.
type DtPolyRef uint64

// / A handle to a tile within a navigation mesh.
type DtTileRef uint64

// / The navmesh set version this build targets. Public versions: 5, 7, 8, 9.
const DT_NAVMESH_SET_VERSION = 8

// / A magic number used to detect the compatibility of navigation mesh set files.
// / ('M'<<24 | 'S'<<16 | 'E'<<8 | 'T')
const DT_NAVMESH_SET_MAGIC = 'M'<<24 | 'S'<<16 | 'E'<<8 | 'T'

// / Returns the tile data version bound to the given set version.
func DtGetNavMeshVersionForSet(setVersion int32) int32 {
	switch setVersion {
	case 5, 7, 8, 9:
		return setVersion
	}
	return -1
}

// / Set to 1 to use the 64-bit polyref bit layout. Tiles built using
// / 32-bit refs are not compatible with 64-bit refs.
const DT_POLYREF64 = 0

const (
	DT_SALT_BITS = 16
	DT_TILE_BITS = 28
	DT_POLY_BITS = 20
)

// / A value that indicates that this tile doesn't contain any polygons with valid links
// / to the rest of the reachable area's of the navigation mesh, this tile will not be
// / added to the position lookup table.
const DT_FULL_UNLINKED_TILE_USER_ID = 1

// / A value that indicates that this tile contains at least 1 polygon that doesn't link
// / to anything (tagged as #DT_UNLINKED_POLY_GROUP), and 1 that does link to something.
const DT_SEMI_UNLINKED_TILE_USER_ID = 2

// / A value that indicates that this poly hasn't been assigned to a group yet.
const DT_NULL_POLY_GROUP = 0

// / A poly group that holds all unconnected polys (not linked to anything).
const DT_UNLINKED_POLY_GROUP = 1

// / The first non-reserved poly group; #DT_UNLINKED_POLY_GROUP and below are reserved.
const DT_FIRST_USABLE_POLY_GROUP = 2

// / The minimum required number of poly groups for static pathing logic to work.
const DT_MIN_POLY_GROUP_COUNT = 3

// / The maximum number of traverse tables per navmesh that will be used for static pathing.
const DT_MAX_TRAVERSE_TABLES = 5

// / A value that indicates the link doesn't require a traverse action. (Jumping, climbing, etc.)
const DT_NULL_TRAVERSE_TYPE = 0xff

const DT_MAX_TRAVERSE_TYPES = 32

// / A value that indicates the link doesn't contain a reverse traverse link.
const DT_NULL_TRAVERSE_REVERSE_LINK = 0xffff

// / The maximum traverse distance for a traverse link. (Quantized value
// / should not overflow #DtLink.TraverseDist.)
const DT_TRAVERSE_DIST_MAX = 2550.0

// / The cached traverse link distance quantization factor.
const DT_TRAVERSE_DIST_QUANT_FACTOR = 0.1

// / A value that indicates the link doesn't contain a hint index.
const DT_NULL_HINT = 0xffff

// / A magic number used to detect compatibility of navigation tile data.
// / ('D'<<24 | 'N'<<16 | 'A'<<8 | 'V')
const DT_NAVMESH_MAGIC = 'D'<<24 | 'N'<<16 | 'A'<<8 | 'V'

// / A version number used to detect compatibility of navigation tile data.
const DT_NAVMESH_VERSION = DT_NAVMESH_SET_VERSION

// / A magic number used to detect the compatibility of navigation tile states.
const DT_NAVMESH_STATE_MAGIC = 'D'<<24 | 'N'<<16 | 'M'<<8 | 'S'

// / A version number used to detect compatibility of navigation tile states.
const DT_NAVMESH_STATE_VERSION = 1

// / A flag that indicates that an entity links to an external entity.
// / (E.g. A polygon edge is a portal that links to another polygon.)
const DT_EXT_LINK = 0x8000

// / A value that indicates the entity does not link to anything.
const DT_NULL_LINK = 0xffffffff

// / A flag that indicates that an off-mesh connection can be traversed in
// / both directions. (Is bidirectional.)
const DT_OFFMESH_CON_BIDIR = 1

// / A value that determines the offset between the start pos and the ref
// / pos in an off-mesh connection.
const DT_OFFMESH_CON_REFPOS_OFFSET = 35.0

// / A flag that indicates that the off-mesh link should be traversed from
// / or towards the off-mesh vert.
const DT_OFFMESH_CON_TRAVERSE_ON_VERT = 1 << 6

// / A flag that indicates that the off-mesh link can be traversed from or
// / towards the polygon it connects to.
const DT_OFFMESH_CON_TRAVERSE_ON_POLY = 1 << 7

// / The maximum number of user defined area ids.
const DT_MAX_AREAS = 32

// / The maximum number of vertices per navigation polygon.
const DT_VERTS_PER_POLYGON = 6

// / Tile flags used for various functions and fields.
const (
	/// The navigation mesh owns the tile memory and is responsible for freeing it.
	DT_TILE_FREE_DATA = 0x01

	/// The navigation mesh owns the cell memory and is responsible for freeing it.
	DT_CELL_FREE_DATA = 0x02
)

// / Flags representing the type of a navigation mesh polygon.
const (
	/// The polygon is a standard convex polygon that is part of the surface of the mesh.
	DT_POLYTYPE_GROUND = 0
	/// The polygon is an off-mesh connection consisting of two vertices.
	DT_POLYTYPE_OFFMESH_CONNECTION = 1
)

// / Navigation polygon area ids.
const (
	DT_POLYAREA_GROUND = iota
	DT_POLYAREA_JUMP
	DT_POLYAREA_JUMP_REVERSE
	DT_POLYAREA_TRIGGER
	DT_POLYAREA_WALLJUMP_LEFT
	DT_POLYAREA_WALLJUMP_RIGHT
	DT_POLYAREA_WALLJUMP_LEFT_REVERSE
	DT_POLYAREA_WALLJUMP_RIGHT_REVERSE
)

// / Navigation polygon flags. The exact values are required for on-disk
// / compatibility.
const (
	/// Ability to walk (ground, grass, road).
	DT_POLYFLAGS_WALK = 1 << 0
	/// This polygon's surface area is too small.
	DT_POLYFLAGS_TOO_SMALL = 1 << 1
	/// This polygon is connected to a polygon on a neighbouring tile.
	DT_POLYFLAGS_HAS_NEIGHBOUR = 1 << 2
	/// Ability to jump (exclusively used on off-mesh connection polygons).
	DT_POLYFLAGS_JUMP = 1 << 3
	/// Off-mesh connections who's start and end verts link to other polygons need this flag.
	DT_POLYFLAGS_JUMP_LINKED = 1 << 4
	/// Used for small road blocks and other small but easily climbable obstacles.
	DT_POLYFLAGS_OBSTACLE = 1 << 6
	/// Runtime-toggleable off. Used for toggling poly's when a door closes during runtime.
	DT_POLYFLAGS_DISABLED = 1 << 8
	/// Used for hostile objects such as electric fences.
	DT_POLYFLAGS_HAZARD = 1 << 9
	/// Used for large bunker style doors.
	DT_POLYFLAGS_DOOR = 1 << 10
	/// Used for doors that need to be breached.
	DT_POLYFLAGS_DOOR_BREACHABLE = 1 << 13
	/// All abilities.
	DT_POLYFLAGS_ALL = 0xffff
)

// / The quantization factor applied to polygon surface areas.
const DT_POLY_AREA_QUANT_FACTOR = 0.01

// / Defines a polygon within a DtMeshTile object.
type DtPoly struct {
	/// Index to first link in linked list. (Or #DT_NULL_LINK if there is no link.)
	FirstLink uint32

	/// The indices of the polygon's vertices. The actual vertices are
	/// located in the tile's vertex array.
	Verts [DT_VERTS_PER_POLYGON]uint16

	/// Packed data representing neighbor polygons references and flags for each edge.
	Neis [DT_VERTS_PER_POLYGON]uint16

	/// The user defined polygon flags.
	Flags uint16

	/// The number of vertices in the polygon.
	VertCount uint8

	/// The bit packed area id and polygon type.
	AreaAndType uint8

	/// The poly group id determining to which island it belongs, and to which it connects.
	GroupId uint16

	/// The poly surface area. (Quantized by #DT_POLY_AREA_QUANT_FACTOR.)
	SurfaceArea uint16

	/// Unknown fields carried for the on-disk format; always observed zero.
	Unk1 uint16
	Unk2 uint16

	/// The center of the polygon.
	Center [3]float32
}

// / Sets the user defined area id. [Limit: < #DT_MAX_AREAS]
func (p *DtPoly) SetArea(a uint8) {
	p.AreaAndType = (p.AreaAndType & 0xc0) | (a & 0x3f)
}

// / Sets the polygon type.
func (p *DtPoly) SetType(t uint8) {
	p.AreaAndType = (p.AreaAndType & 0x3f) | (t << 6)
}

// / Gets the user defined area id.
func (p *DtPoly) GetArea() uint8 {
	return p.AreaAndType & 0x3f
}

// / Gets the polygon type.
func (p *DtPoly) GetType() uint8 {
	return p.AreaAndType >> 6
}

// / Calculates the surface area of the polygon on the xy-plane.
func DtCalcPolySurfaceArea(poly *DtPoly, verts []float32) float32 {
	var area float32
	for i := 2; i < int(poly.VertCount); i++ {
		a := verts[int(poly.Verts[0])*3:]
		b := verts[int(poly.Verts[i-1])*3:]
		c := verts[int(poly.Verts[i])*3:]
		area += common.Fabsf(common.TriArea2D(a, b, c)) * 0.5
	}
	return area
}

// / Defines the location of detail sub-mesh data within a DtMeshTile.
type DtPolyDetail struct {
	VertBase  uint32 ///< The offset of the vertices in the tile's detail vert array.
	TriBase   uint32 ///< The offset of the triangles in the tile's detail tri array.
	VertCount uint8  ///< The number of vertices in the sub-mesh.
	TriCount  uint8  ///< The number of triangles in the sub-mesh.
}

// / Detail triangle edge is part of the poly boundary.
const DT_DETAIL_EDGE_BOUNDARY = 0x01

// / Get flags for edge in detail triangle.
// /  @param	triFlags	The flags for the triangle (last component of detail vertices).
// /  @param	edgeIndex	The index of the first vertex of the edge.
func DtGetDetailTriEdgeFlags(triFlags uint8, edgeIndex int) int {
	return int(triFlags>>(edgeIndex*2)) & 0x3
}

// / Defines a link between polygons.
type DtLink struct {
	Ref          DtPolyRef ///< Neighbour reference. (The neighbor that is linked to.)
	Next         uint32    ///< Index of the next link.
	Edge         uint8     ///< Index of the polygon edge that owns this link.
	Side         uint8     ///< If a boundary link, defines on which side the link is.
	Bmin         uint8     ///< If a boundary link, defines the minimum sub-edge area.
	Bmax         uint8     ///< If a boundary link, defines the maximum sub-edge area.
	TraverseType uint8     ///< The traverse type for this link. (Jumping, climbing, etc.)
	TraverseDist uint8     ///< The traverse distance of this link. (Quantized by #DT_TRAVERSE_DIST_QUANT_FACTOR.)
	ReverseLink  uint16    ///< The reverse traversal link for this link. (Path returns through this link.)
}

func (l *DtLink) HasTraverseType() bool {
	return l.TraverseType != DT_NULL_TRAVERSE_TYPE
}

func (l *DtLink) GetTraverseType() uint8 {
	return l.TraverseType & (DT_MAX_TRAVERSE_TYPES - 1)
}

// / Calculates the distance between the two traverse link anchor points.
func DtCalcLinkDistance(spos, epos []float32) float32 {
	return common.Vdist(spos, epos)
}

// / Quantizes the traverse link distance to 8 bits. Distances beyond
// / #DT_TRAVERSE_DIST_MAX quantize to 0 and must be rejected by the caller.
func DtQuantLinkDistance(distance float32) uint8 {
	if distance > DT_TRAVERSE_DIST_MAX {
		return 0
	}
	quant := int(distance*DT_TRAVERSE_DIST_QUANT_FACTOR + 0.5)
	return uint8(common.Clamp(quant, 0, 255))
}

// / The size of the opaque trailing data block of a cell on disk.
const dtCellPadSize = 52

// / Defines a cell in a tile. Cells are sampled on a per-polygon diamond
// / grid and used to prevent entities from clipping into each other.
type DtCell struct {
	Pos         [3]float32 ///< The position of the cell.
	PolyIndex   uint32     ///< The index of the poly this cell is on.
	OccupyState [4]uint8   ///< The occupation state of this cell, 0xff means not occupied.
}

func (c *DtCell) SetOccupied() {
	for i := range c.OccupyState {
		c.OccupyState[i] = 0xff
	}
}

// / Bounding volume node.
type DtBVNode struct {
	Bmin [3]uint16 ///< Minimum bounds of the node's AABB. [(x, y, z)]
	Bmax [3]uint16 ///< Maximum bounds of the node's AABB. [(x, y, z)]
	I    int32     ///< The node's index. (Negative for escape sequence.)
}

// / Defines a navigation mesh off-mesh connection within a DtMeshTile
// / object. An off-mesh connection is a user defined traversable
// / connection made up of two vertices.
type DtOffMeshConnection struct {
	/// The endpoints of the connection. [(ax, ay, az, bx, by, bz)]
	Pos [6]float32

	/// The radius of the endpoints. [Limit: >= 0]
	Rad float32

	/// The polygon reference of the connection within the tile.
	Poly uint16

	/// End point side.
	Side uint8

	/// The traverse type, with the vert lookup order packed into bit 6.
	TraverseType uint8

	/// The id of the off-mesh connection. (User assigned when the navigation mesh is built.)
	UserId uint16

	/// The hint index. (Or #DT_NULL_HINT if there is no hint.)
	HintIndex uint16

	/// The reference position set to the start of the off-mesh connection
	/// with an offset of #DT_OFFMESH_CON_REFPOS_OFFSET.
	RefPos [3]float32

	/// The reference yaw angle set towards the end position of the off-mesh connection.
	RefYaw float32
}

func (c *DtOffMeshConnection) GetTraverseType() uint8 {
	return c.TraverseType & (DT_MAX_TRAVERSE_TYPES - 1)
}

func (c *DtOffMeshConnection) GetVertLookupOrder() uint8 {
	return c.TraverseType & (1 << 6)
}

func (c *DtOffMeshConnection) SetTraverseType(traverseType, order uint8) {
	c.TraverseType = traverseType & (DT_MAX_TRAVERSE_TYPES - 1)
	if order != 0 { // Inverted, mark it.
		c.TraverseType |= 1 << 6
	}
}

// / Calculates the yaw angle of an off-mesh connection on the xy-plane in radians.
func DtCalcOffMeshRefYaw(spos, epos []float32) float32 {
	return common.Atan2f(epos[1]-spos[1], epos[0]-spos[0])
}

// / Calculates the ref position of an off-mesh connection.
func DtCalcOffMeshRefPos(spos []float32, yawRad, offset float32, res []float32) {
	res[0] = spos[0] + common.Cosf(yawRad)*offset
	res[1] = spos[1] + common.Sinf(yawRad)*offset
	res[2] = spos[2]
}

// / Provides high level information related to a DtMeshTile object.
type DtMeshHeader struct {
	Magic   int32 ///< Tile magic number. (Used to identify the data format.)
	Version int32 ///< Tile data format version number.
	X       int32 ///< The x-position of the tile within the tile grid. (x, y, layer)
	Y       int32 ///< The y-position of the tile within the tile grid. (x, y, layer)
	Layer   int32 ///< The layer of the tile within the tile grid. (x, y, layer)

	UserId       uint32 ///< The user defined id of the tile.
	PolyCount    int32  ///< The number of polygons in the tile.
	PolyMapCount int32  ///< The number of poly map entries in the tile.
	VertCount    int32  ///< The number of vertices in the tile.
	MaxLinkCount int32  ///< The number of allocated links.

	DetailMeshCount int32 ///< The number of sub-meshes in the detail mesh.

	/// The number of unique vertices in the detail mesh. (In addition to the polygon vertices.)
	DetailVertCount int32

	DetailTriCount  int32 ///< The number of triangles in the detail mesh.
	BvNodeCount     int32 ///< The number of bounding volume nodes. (Zero if bounding volumes are disabled.)
	OffMeshConCount int32 ///< The number of off-mesh connections.
	OffMeshBase     int32 ///< The index of the first polygon which is an off-mesh connection.
	MaxCellCount    int32 ///< The number of allocated cells.

	WalkableHeight float32    ///< The height of the agents using the tile.
	WalkableRadius float32    ///< The radius of the agents using the tile.
	WalkableClimb  float32    ///< The maximum climb height of the agents using the tile.
	Bmin           [3]float32 ///< The minimum bounds of the tile's AABB. [(x, y, z)]
	Bmax           [3]float32 ///< The maximum bounds of the tile's AABB. [(x, y, z)]

	/// The bounding volume quantization factor.
	BvQuantFactor float32
}

// / A fully built navigation mesh tile payload. This is the structured
// / form of the on-disk tile blob; see ToBin/FromBin for the byte layout.
type NavMeshData struct {
	Header      *DtMeshHeader
	NavVerts    []float32
	NavPolys    []DtPoly
	PolyMap     []int32
	Links       []DtLink
	DetailMeshes []DtPolyDetail
	DetailVerts []float32
	DetailTris  []uint8
	BvTree      []DtBVNode
	OffMeshCons []DtOffMeshConnection
	Cells       []DtCell
}

// / Defines a navigation mesh tile.
type DtMeshTile struct {
	Salt uint32 ///< Counter describing modifications to the tile.

	LinksFreeList uint32        ///< Index to the next free link.
	Header        *DtMeshHeader ///< The tile header.
	Polys         []DtPoly      ///< The tile polygons. [Size: Header.PolyCount]
	PolyMap       []int32       ///< The tile poly map. [Size: Header.PolyMapCount]
	Verts         []float32     ///< The tile vertices. [Size: 3*Header.VertCount]
	Links         []DtLink      ///< The tile links. [Size: Header.MaxLinkCount]
	DetailMeshes  []DtPolyDetail
	DetailVerts   []float32
	DetailTris    []uint8
	BvTree        []DtBVNode
	OffMeshCons   []DtOffMeshConnection
	Cells         []DtCell

	Data *NavMeshData ///< The tile data. (Not directly accessed under normal situations.)

	Flags int32 ///< Tile flags. (See: #DT_TILE_FREE_DATA)
	Index int32 ///< The index of this tile within the navmesh tile arena.
	Next  int32 ///< Index of the next free tile, or the next tile in the spatial grid. (-1 terminates.)
}

// / Allocates a link from the tile's free list.
// / Returns #DT_NULL_LINK if no links are available.
func (t *DtMeshTile) AllocLink() uint32 {
	if t.LinksFreeList == DT_NULL_LINK {
		return DT_NULL_LINK
	}
	link := t.LinksFreeList
	t.LinksFreeList = t.Links[link].Next
	return link
}

// / Returns the link to the tile's free list.
func (t *DtMeshTile) FreeLink(link uint32) {
	t.Links[link].Next = t.LinksFreeList
	t.LinksFreeList = link
}

// / Returns whether at least count links are available on the free list.
func (t *DtMeshTile) LinkCountAvailable(count int) bool {
	available := 0
	for l := t.LinksFreeList; l != DT_NULL_LINK; l = t.Links[l].Next {
		available++
		if available >= count {
			return true
		}
	}
	return false
}

// / Derives the tight bounds of the tile from its polygon vertices rather
// / than the padded header bounds.
func (t *DtMeshTile) GetTightBounds(bminOut, bmaxOut []float32) {
	if t.Header == nil || t.Header.VertCount == 0 {
		common.Vcopy(bminOut, t.Header.Bmin[:])
		common.Vcopy(bmaxOut, t.Header.Bmax[:])
		return
	}
	common.Vcopy(bminOut, t.Verts)
	common.Vcopy(bmaxOut, t.Verts)
	for i := 1; i < int(t.Header.VertCount); i++ {
		common.Vmin(bminOut, t.Verts[i*3:])
		common.Vmax(bmaxOut, t.Verts[i*3:])
	}
}

// / Configuration parameters used to define multi-tile navigation meshes.
// / The values are used to allocate space during the initialization of a
// / navigation mesh.
type NavMeshParams struct {
	Orig               [3]float32 ///< The world space origin of the navigation mesh's tile space. [(x, y, z)]
	TileWidth          float32    ///< The width of each tile. (Along the x-axis.)
	TileHeight         float32    ///< The height of each tile. (Along the y-axis.)
	MaxTiles           int32      ///< The maximum number of tiles the navigation mesh can contain.
	MaxPolys           int32      ///< The maximum number of polygons each tile can contain.
	PolyGroupCount     int32      ///< The total number of disjoint polygon groups.
	TraverseTableSize  int32      ///< The total size in bytes of one static traverse table.
	TraverseTableCount int32      ///< The total number of traverse tables in this navmesh.
	MagicDataCount     int32      ///< The number of trailing magic data blocks. (Set version >= 7.)
}

// / Returns the int32 cell index for the static traverse table.
// / Rows are padded to 32-bit boundaries; the bit within the cell is
// / (polyGroup2 & 31).
func DtCalcTraverseTableCellIndex(numPolyGroups int, polyGroup1, polyGroup2 uint16) int {
	return int(polyGroup1)*((numPolyGroups+31)/32) + int(polyGroup2)/32
}

// / Returns the total size in bytes needed for one static traverse table.
func DtCalcTraverseTableSize(numPolyGroups int) int {
	return numPolyGroups * ((numPolyGroups + 31) / 32) * 4
}

// / Defines a navigation mesh tile data block within a set file.
type DtNavMeshTileHeader struct {
	TileRef  DtTileRef ///< The tile reference for this tile.
	DataSize int32     ///< The total size of this tile.
}

// / Defines a navigation mesh set data block.
type DtNavMeshSetHeader struct {
	Magic    int32         ///< Set magic number. (Used to identify the data format.)
	Version  int32         ///< Set data format version number.
	NumTiles int32         ///< The total number of tiles in this set.
	Params   NavMeshParams ///< The initialization parameters for this set.
}
