package recast

import (
	"github.com/ttvmkos/r5nav/common"
)

// / The default area id used to indicate a walkable polygon.
// / This is also the maximum allowed area id, and the only non-null area id
// / recognized by some steps in the build process.
const RC_WALKABLE_AREA = 63

// / Represents the null area. When a data element is given this value it
// / is considered to no longer be assigned to a usable area.
const RC_NULL_AREA = 0

// / Heightfield border flag. If a heightfield region id has this bit set,
// / then the region is on the border of the field and its spans are
// / considered un-walkable.
const RC_BORDER_REG = 0x8000

// / Polygon touches multiple regions. The polygon will be avoided during
// / region merging.
const RC_MULTIPLE_REGS = 0

// / Border vertex flag applied to region id fields on contour vertices.
const RC_BORDER_VERTEX = 0x10000

// / Area border flag applied to region id fields on contour vertices.
const RC_AREA_BORDER = 0x20000

// / Applied to the region id field of contour vertices in order to extract
// / the region id. The region id field of a vertex may have several flags
// / applied to it, so the fields value can't be used directly.
const RC_CONTOUR_REG_MASK = 0xffff

// / A value which indicates an invalid index within a mesh.
const RC_MESH_NULL_IDX = 0xffff

// / The value returned by GetCon if the specified direction is not connected
// / to another span.
const RC_NOT_CONNECTED = 0x3f

// / Defines the number of bits allocated to RcSpan smin and smax.
const RC_SPAN_HEIGHT_BITS = 13

// / Defines the maximum value for smin and smax.
const RC_SPAN_MAX_HEIGHT = (1 << RC_SPAN_HEIGHT_BITS) - 1

// / The number of spans allocated per span spool.
const RC_SPANS_PER_POOL = 2048

// / Region partitioning methods.
// / @see RcConfig
const (
	RC_PARTITION_WATERSHED = 0
	RC_PARTITION_MONOTONE  = 1
	RC_PARTITION_LAYERS    = 2
)

// / Specifies a configuration to use when performing Recast builds.
type RcConfig struct {
	/// The width of the field along the x-axis. [Limit: >= 0] [Units: vx]
	Width int

	/// The height of the field along the y-axis. [Limit: >= 0] [Units: vx]
	Height int

	/// The width/height size of tile's on the xy-plane. [Limit: >= 0] [Units: vx]
	TileSize int

	/// The size of the non-navigable border around the heightfield. [Limit: >=0] [Units: vx]
	BorderSize int

	/// The xy-plane cell size to use for fields. [Limit: > 0] [Units: wu]
	Cs float32

	/// The z-axis cell size to use for fields. [Limit: > 0] [Units: wu]
	Ch float32

	/// The minimum bounds of the field's AABB. [(x, y, z)] [Units: wu]
	Bmin [3]float32

	/// The maximum bounds of the field's AABB. [(x, y, z)] [Units: wu]
	Bmax [3]float32

	/// The maximum slope that is considered walkable. [Limits: 0 <= value < 90] [Units: Degrees]
	WalkableSlopeAngle float32

	/// Minimum floor to 'ceiling' height that will still allow the floor area to
	/// be considered walkable. [Limit: >= 3] [Units: vx]
	WalkableHeight int

	/// Maximum ledge height that is considered to still be traversable. [Limit: >=0] [Units: vx]
	WalkableClimb int

	/// The distance to erode/shrink the walkable area of the heightfield away from
	/// obstructions. [Limit: >=0] [Units: vx]
	WalkableRadius int

	/// The maximum allowed length for contour edges along the border of the mesh. [Limit: >=0] [Units: vx]
	MaxEdgeLen int

	/// The maximum distance a simplified contour's border edges should deviate
	/// the original raw contour. [Limit: >=0] [Units: vx]
	MaxSimplificationError float32

	/// The minimum number of cells allowed to form isolated island areas. [Limit: >=0] [Units: vx]
	MinRegionArea int

	/// Any regions with a span count smaller than this value will, if possible,
	/// be merged with larger regions. [Limit: >=0] [Units: vx]
	MergeRegionArea int

	/// The maximum number of vertices allowed for polygons generated during the
	/// contour to polygon conversion process. [Limit: >= 3]
	MaxVertsPerPoly int

	/// Sets the sampling distance to use when generating the detail mesh.
	/// (For height detail only.) [Limits: 0 or >= 0.9] [Units: wu]
	DetailSampleDist float32

	/// The maximum distance the detail mesh surface should deviate from heightfield
	/// data. (For height detail only.) [Limit: >=0] [Units: wu]
	DetailSampleMaxError float32
}

// / Calculates the bounding box of an array of vertices.
func RcCalcBounds(verts []float32, numVerts int, minBounds, maxBounds []float32) {
	copy(minBounds, verts[:3])
	copy(maxBounds, verts[:3])
	for i := 1; i < numVerts; i++ {
		v := verts[i*3 : i*3+3]
		common.Vmin(minBounds, v)
		common.Vmax(maxBounds, v)
	}
}

// / Calculates the grid size based on the bounding box and grid cell size.
func RcCalcGridSize(minBounds, maxBounds []float32, cellSize float32, sizeX, sizeY *int) {
	*sizeX = int((maxBounds[0]-minBounds[0])/cellSize + 0.5)
	*sizeY = int((maxBounds[1]-minBounds[1])/cellSize + 0.5)
}
