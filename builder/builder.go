package builder

import (
	"context"
	"fmt"

	"github.com/ttvmkos/r5nav/common"
	"github.com/ttvmkos/r5nav/detour"
	"github.com/ttvmkos/r5nav/hulls"
	"github.com/ttvmkos/r5nav/recast"
)

// / Builder drives the full navmesh pipeline for one navmesh type:
// / voxelisation, region partitioning, contour and polymesh building,
// / detail meshes, tile creation, portal and off-mesh linking, traverse
// / link generation and static pathing data construction.
type Builder struct {
	geom        *InputGeom
	settings    BuildSettings
	navMeshType hulls.NavMeshType
	ctx         *recast.BuildContext

	navMesh *detour.DtNavMesh

	djs                 [detour.DT_MAX_TRAVERSE_TABLES]detour.DtDisjointSet
	traverseLinkPolyMap detour.DtTraverseLinkPolyMap

	navBMin [3]float32
	navBMax [3]float32

	keepInterResults bool

	// Last intermediate build results, retained when requested.
	solid *recast.RcHeightfield
	chf   *recast.RcCompactHeightfield
	cset  *recast.RcContourSet
	pmesh *recast.RcPolyMesh
	dmesh *recast.RcPolyMeshDetail
}

// / Creates a builder for the given input geometry and navmesh type.
func NewBuilder(geom *InputGeom, settings BuildSettings, navMeshType hulls.NavMeshType, ctx *recast.BuildContext) (*Builder, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = recast.NewBuildContext(nil)
	}

	b := &Builder{
		geom:                geom,
		settings:            settings,
		navMeshType:         navMeshType,
		ctx:                 ctx,
		traverseLinkPolyMap: make(detour.DtTraverseLinkPolyMap),
	}

	// Clamp the build extents to the input mesh bounds.
	common.Vcopy(b.navBMin[:], geom.NavMeshBoundsMin())
	common.Vcopy(b.navBMax[:], geom.NavMeshBoundsMax())
	if settings.NavBounds[0] != settings.NavBounds[1] {
		common.Vmax(b.navBMin[:], settings.NavBounds[0][:])
		common.Vmin(b.navBMax[:], settings.NavBounds[1][:])
	}

	return b, nil
}

// / The navmesh being built. Nil until Build has run.
func (b *Builder) NavMesh() *detour.DtNavMesh {
	return b.navMesh
}

// / Retain the intermediate per-tile build artifacts (heightfield,
// / compact field, contours, polymesh, detail mesh) of the last built
// / tile instead of releasing them after serialisation.
func (b *Builder) SetKeepInterResults(keep bool) {
	b.keepInterResults = keep
}

func (b *Builder) TraverseLinkPolyMap() detour.DtTraverseLinkPolyMap {
	return b.traverseLinkPolyMap
}

// / Derives the tile grid dimensions from the build extents.
func (b *Builder) gridSize() (tw, th int) {
	gw, gh := 0, 0
	recast.RcCalcGridSize(b.navBMin[:], b.navBMax[:], b.settings.CellSize, &gw, &gh)
	ts := b.settings.TileSize
	tw = (gw + ts - 1) / ts
	th = (gh + ts - 1) / ts
	return tw, th
}

// / Derives the world extents of the tile at the given grid location.
// / The tile grid runs from the max x bound towards -x.
func (b *Builder) getTileExtents(tx, ty int, tmin, tmax []float32) {
	ts := float32(b.settings.TileSize) * b.settings.CellSize
	tmin[0] = b.navBMax[0] - float32(tx+1)*ts
	tmin[1] = b.navBMin[1] + float32(ty)*ts
	tmin[2] = b.navBMin[2]

	tmax[0] = b.navBMax[0] - float32(tx)*ts
	tmax[1] = b.navBMin[1] + float32(ty+1)*ts
	tmax[2] = b.navBMax[2]
}

// / Derives the grid location of the tile containing the given position.
func (b *Builder) getTilePos(pos []float32) (tx, ty int) {
	ts := float32(b.settings.TileSize) * b.settings.CellSize
	tx = int((b.navBMax[0] - pos[0]) / ts)
	ty = int((pos[1] - b.navBMin[1]) / ts)
	return tx, ty
}

// / Initializes the navmesh container sized for the build extents.
func (b *Builder) initNavMesh() error {
	tw, th := b.gridSize()

	tileBits := common.Clamp(int(common.Ilog2(common.NextPow2(uint32(tw*th)))), 1, 14)
	polyBits := 22 - tileBits
	maxTiles := 1 << tileBits
	maxPolysPerTile := 1 << polyBits

	var params detour.NavMeshParams
	common.Vcopy(params.Orig[:], b.navBMin[:])
	params.Orig[0] = b.navBMax[0]
	params.TileWidth = float32(b.settings.TileSize) * b.settings.CellSize
	params.TileHeight = float32(b.settings.TileSize) * b.settings.CellSize
	params.MaxTiles = int32(maxTiles)
	params.MaxPolys = int32(maxPolysPerTile)
	params.PolyGroupCount = 0
	params.TraverseTableSize = 0
	params.TraverseTableCount = 0
	params.MagicDataCount = 0

	navMesh, status := detour.NewDtNavMesh(&params)
	if status.Failed() {
		return fmt.Errorf("builder: could not init navmesh, status 0x%x", uint32(status))
	}

	b.navMesh = navMesh
	b.traverseLinkPolyMap = make(detour.DtTraverseLinkPolyMap)
	return nil
}

// / Builds the whole navmesh: every tile in the grid, the off-mesh and
// / traverse links and the static pathing data. Cancellation is
// / cooperative, checked between tiles; tiles already added stay valid.
func (b *Builder) Build(ctx context.Context) error {
	if b.geom == nil {
		return fmt.Errorf("builder: no input geometry")
	}

	if err := b.initNavMesh(); err != nil {
		return err
	}

	tw, th := b.gridSize()

	b.ctx.ResetTimers()
	b.ctx.StartTimer(recast.RC_TIMER_TEMP)

	tmin := make([]float32, 3)
	tmax := make([]float32, 3)

	for y := 0; y < th; y++ {
		for x := 0; x < tw; x++ {
			if err := ctx.Err(); err != nil {
				return err
			}

			b.getTileExtents(x, y, tmin, tmax)

			data, err := b.buildTileMesh(x, y, tmin, tmax)
			if err != nil {
				return err
			}
			if data == nil {
				continue
			}

			// Remove any previous data. (Navmesh owns and frees the data.)
			if old := b.navMesh.GetTileRefAt(int32(x), int32(y), 0); old != 0 {
				b.navMesh.RemoveTile(old)
			}

			tileRef, status := b.navMesh.AddTile(data, detour.DT_TILE_FREE_DATA, 0)
			if status.Failed() {
				b.ctx.Errorf("build: could not add tile (%d,%d), status 0x%x", x, y, uint32(status))
				continue
			}
			b.navMesh.ConnectTile(tileRef)
		}
	}

	b.connectOffMeshLinks()
	b.buildStaticPathingData()

	b.ctx.StopTimer(recast.RC_TIMER_TEMP)
	b.ctx.Progressf("build: %d tiles built in %s", b.navMesh.GetTileCount(), b.ctx.AccumulatedTime(recast.RC_TIMER_TEMP))

	return nil
}

// / Rebuilds the single tile containing the given position: removes the
// / old tile, builds and reconnects the new one, then rebuilds the
// / static pathing data.
func (b *Builder) BuildTile(pos []float32) error {
	if b.geom == nil || b.navMesh == nil {
		return fmt.Errorf("builder: not initialized")
	}

	tx, ty := b.getTilePos(pos)

	tmin := make([]float32, 3)
	tmax := make([]float32, 3)
	b.getTileExtents(tx, ty, tmin, tmax)

	data, err := b.buildTileMesh(tx, ty, tmin, tmax)
	if err != nil {
		return err
	}

	// Remove any previous data. Prune the traverse link map so the next
	// link pass sees the polygon pairs as available again.
	if old := b.navMesh.GetTileRefAt(int32(tx), int32(ty), 0); old != 0 {
		b.traverseLinkPolyMap.PruneTile(b.navMesh, old)
		b.navMesh.RemoveTile(old)
	}

	if data == nil {
		return nil
	}

	tileRef, status := b.navMesh.AddTile(data, detour.DT_TILE_FREE_DATA, 0)
	if status.Failed() {
		return fmt.Errorf("builder: could not add tile (%d,%d), status 0x%x", tx, ty, uint32(status))
	}
	if status := b.navMesh.ConnectTile(tileRef); status.Failed() {
		return fmt.Errorf("builder: could not connect tile (%d,%d), status 0x%x", tx, ty, uint32(status))
	}

	if data.Header.OffMeshConCount > 0 {
		b.navMesh.BaseOffMeshLinks(tileRef)
		b.navMesh.ConnectExtOffMeshLinks(tileRef)
	}

	// If there are external off-mesh links landing on this tile, connect them.
	for i := 0; i < b.navMesh.GetMaxTiles(); i++ {
		target := b.navMesh.GetTile(i)
		if target.Header == nil {
			continue
		}
		targetRef := b.navMesh.GetTileRef(target)
		if targetRef == tileRef {
			continue
		}

		for j := 0; j < int(target.Header.OffMeshConCount); j++ {
			con := &target.OffMeshCons[j]
			landTx, landTy := b.getTilePos(con.Pos[3:6])
			if landTx == tx && landTy == ty {
				b.navMesh.ConnectExtOffMeshLinks(targetRef)
				break
			}
		}
	}

	// Reconnect the traverse links for this tile.
	params := b.createTraverseLinkParams()
	params.LinkToNeighbor = false
	b.navMesh.ConnectTraverseLinks(tileRef, params)
	params.LinkToNeighbor = true
	b.navMesh.ConnectTraverseLinks(tileRef, params)

	b.buildStaticPathingData()

	return nil
}

// / Removes the tile containing the given position and rebuilds the
// / static pathing data.
func (b *Builder) RemoveTile(pos []float32) error {
	if b.geom == nil || b.navMesh == nil {
		return fmt.Errorf("builder: not initialized")
	}

	tx, ty := b.getTilePos(pos)
	tileRef := b.navMesh.GetTileRefAt(int32(tx), int32(ty), 0)
	if tileRef == 0 {
		return nil
	}

	// Update traverse link map so the next time we rebuild this tile,
	// the polygon pairs will be marked as available.
	b.traverseLinkPolyMap.PruneTile(b.navMesh, tileRef)

	if _, status := b.navMesh.RemoveTile(tileRef); status.Failed() {
		return fmt.Errorf("builder: could not remove tile (%d,%d), status 0x%x", tx, ty, uint32(status))
	}

	b.buildStaticPathingData()
	return nil
}

// / Bases and connects the off-mesh links of every tile.
func (b *Builder) connectOffMeshLinks() {
	for i := 0; i < b.navMesh.GetMaxTiles(); i++ {
		target := b.navMesh.GetTile(i)
		if target.Header == nil || target.Header.OffMeshConCount == 0 {
			continue
		}

		targetRef := b.navMesh.GetTileRef(target)

		// Base off-mesh connections to their starting polygons and
		// connect connections inside the tile.
		b.navMesh.BaseOffMeshLinks(targetRef)

		// Connect off-mesh polygons to outer tiles.
		b.navMesh.ConnectExtOffMeshLinks(targetRef)
	}
}

func (b *Builder) createTraverseLinkParams() *detour.DtTraverseLinkConnectParams {
	firstAnim := hulls.FirstTraverseAnimTypeForNavMeshType(b.navMeshType)

	params := &detour.DtTraverseLinkConnectParams{
		GetTraverseType: func(elevation float32, quantDist uint8, samePolyGroup bool) uint8 {
			t := hulls.GetBestTraverseType(elevation, quantDist, samePolyGroup)
			if t == hulls.INVALID_TRAVERSE_TYPE {
				return detour.DT_NULL_TRAVERSE_TYPE
			}
			return uint8(t)
		},
		RaycastMesh: b.geom.RaycastMesh,
		FindPolyLink: func(basePolyRef, landPolyRef detour.DtPolyRef) (uint32, bool) {
			bits, ok := b.traverseLinkPolyMap[detour.NewDtTraverseLinkPolyPair(basePolyRef, landPolyRef)]
			return bits, ok
		},
		AddPolyLink: func(basePolyRef, landPolyRef detour.DtPolyRef, traverseTypeBit uint32) {
			pair := detour.NewDtTraverseLinkPolyPair(basePolyRef, landPolyRef)
			b.traverseLinkPolyMap[pair] |= traverseTypeBit
		},
		CellHeight: b.settings.CellHeight,
	}

	// Navmeshes serving a single anim type only accept the traverse
	// types that anim can perform.
	if b.navMeshType > hulls.NAVMESH_SMALL {
		params.TraverseTypeSupported = func(traverseType uint8) bool {
			return hulls.AnimTypeSupportsTraverseType(firstAnim, traverseType)
		}
	}

	return params
}

// / Generates the traverse links for every tile. The first pass connects
// / edges across tiles, the second connects edges within the same tile.
// / Reversing the pass order changes link counts under free-list
// / pressure, so the order is fixed.
func (b *Builder) createTraverseLinks() {
	params := b.createTraverseLinkParams()

	maxTiles := b.navMesh.GetMaxTiles()

	// First pass to connect edges between external tiles together.
	params.LinkToNeighbor = true
	for i := 0; i < maxTiles; i++ {
		tile := b.navMesh.GetTile(i)
		if tile.Header == nil {
			continue
		}
		b.navMesh.ConnectTraverseLinks(b.navMesh.GetTileRef(tile), params)
	}

	// Second pass to use remaining links to connect internal edges on
	// the same tile together.
	params.LinkToNeighbor = false
	for i := 0; i < maxTiles; i++ {
		tile := b.navMesh.GetTile(i)
		if tile.Header == nil {
			continue
		}
		b.navMesh.ConnectTraverseLinks(b.navMesh.GetTileRef(tile), params)
	}
}

func (b *Builder) createTraverseTableParams() *detour.DtTraverseTableCreateParams {
	return &detour.DtTraverseTableCreateParams{
		Nav:         b.navMesh,
		Sets:        b.djs[:],
		TableCount:  hulls.TraverseTableCountForNavMeshType(b.navMeshType),
		NavMeshType: int(b.navMeshType),
		CanTraverse: animTypeSupportsTraverseLink,
	}
}

// / The CanTraverse callback: non-traverse links (portals, off-mesh) are
// / usable by everyone; traverse links require the anim type's traverse
// / mask to contain the link's type.
func animTypeSupportsTraverseLink(params *detour.DtTraverseTableCreateParams, link *detour.DtLink, tableIndex int) bool {
	if link.ReverseLink == detour.DT_NULL_TRAVERSE_REVERSE_LINK {
		return true
	}

	navMeshType := hulls.NavMeshType(params.NavMeshType)

	if tableIndex < 0 {
		// Any anim type this navmesh serves.
		if navMeshType == hulls.NAVMESH_SMALL {
			for t := hulls.ANIMTYPE_HUMAN; t <= hulls.ANIMTYPE_PILOT; t++ {
				if hulls.AnimTypeSupportsTraverseType(t, link.GetTraverseType()) {
					return true
				}
			}
			return false
		}
		return hulls.AnimTypeSupportsTraverseType(hulls.FirstTraverseAnimTypeForNavMeshType(navMeshType), link.GetTraverseType())
	}

	// Only the small navmesh has more than 1 table.
	var traverseAnimType hulls.TraverseAnimType
	if navMeshType == hulls.NAVMESH_SMALL {
		traverseAnimType = hulls.TraverseAnimType(tableIndex)
	} else {
		traverseAnimType = hulls.FirstTraverseAnimTypeForNavMeshType(navMeshType)
	}

	return hulls.AnimTypeSupportsTraverseType(traverseAnimType, link.GetTraverseType())
}

// / Builds the static pathing data: disjoint poly groups, traverse
// / links, the refreshed groups, and the traverse tables.
func (b *Builder) buildStaticPathingData() bool {
	params := b.createTraverseTableParams()

	if !detour.DtCreateDisjointPolyGroups(params) {
		b.ctx.Errorf("buildStaticPathingData: Failed to build disjoint poly groups.")
		return false
	}

	b.createTraverseLinks()

	if !detour.DtUpdateDisjointPolyGroups(params) {
		b.ctx.Errorf("buildStaticPathingData: Failed to update disjoint poly groups.")
		return false
	}

	if !detour.DtCreateTraverseTableData(params) {
		b.ctx.Errorf("buildStaticPathingData: Failed to build traverse table data.")
		return false
	}

	return true
}

// / Builds a single tile of the navmesh: rasterisation, filtering,
// / partitioning, contours, polymesh, detail mesh and tile data
// / creation. Returns nil data when the tile contains no geometry.
func (b *Builder) buildTileMesh(tx, ty int, bmin, bmax []float32) (*detour.NavMeshData, error) {
	if b.geom == nil || b.geom.ChunkyMesh() == nil {
		return nil, fmt.Errorf("builder: input mesh is not specified")
	}

	verts := b.geom.Verts()
	nverts := b.geom.VertCount()
	chunkyMesh := b.geom.ChunkyMesh()

	// Init build configuration.
	var cfg recast.RcConfig
	cfg.Cs = b.settings.CellSize
	cfg.Ch = b.settings.CellHeight
	cfg.WalkableSlopeAngle = b.settings.AgentMaxSlope
	cfg.WalkableHeight = int(common.Ceilf(b.settings.AgentHeight / cfg.Ch))
	cfg.WalkableClimb = int(common.Floorf(b.settings.AgentMaxClimb / cfg.Ch))
	cfg.WalkableRadius = int(common.Ceilf(b.settings.AgentRadius / cfg.Cs))
	cfg.MaxEdgeLen = int(b.settings.EdgeMaxLen / b.settings.CellSize)
	cfg.MaxSimplificationError = b.settings.EdgeMaxError
	cfg.MinRegionArea = common.Sqr(b.settings.RegionMinSize)       // Note: area = size*size
	cfg.MergeRegionArea = common.Sqr(b.settings.RegionMergeSize)   // Note: area = size*size
	cfg.MaxVertsPerPoly = b.settings.VertsPerPoly
	cfg.TileSize = b.settings.TileSize
	cfg.BorderSize = cfg.WalkableRadius + 3 // Reserve enough padding.
	cfg.Width = cfg.TileSize + cfg.BorderSize*2
	cfg.Height = cfg.TileSize + cfg.BorderSize*2
	if b.settings.DetailSampleDist < 0.9 {
		cfg.DetailSampleDist = 0
	} else {
		cfg.DetailSampleDist = b.settings.CellSize * b.settings.DetailSampleDist
	}
	cfg.DetailSampleMaxError = b.settings.CellHeight * b.settings.DetailSampleMaxError

	// Expand the heightfield bounding box by border size to find the
	// extents of geometry we need to build this tile. This is done in
	// order to make sure that the navmesh tiles connect correctly at
	// the borders, and the obstacles close to the border work correctly
	// with the dilation process. No polygons (or contours) will be
	// created on the border area.
	common.Vcopy(cfg.Bmin[:], bmin)
	common.Vcopy(cfg.Bmax[:], bmax)
	cfg.Bmin[0] -= float32(cfg.BorderSize) * cfg.Cs
	cfg.Bmin[1] -= float32(cfg.BorderSize) * cfg.Cs
	cfg.Bmax[0] += float32(cfg.BorderSize) * cfg.Cs
	cfg.Bmax[1] += float32(cfg.BorderSize) * cfg.Cs

	b.ctx.StartTimer(recast.RC_TIMER_TOTAL)
	defer b.ctx.StopTimer(recast.RC_TIMER_TOTAL)

	b.ctx.Progressf("Building tile (%d,%d): %d x %d cells, %.1fK verts", tx, ty, cfg.Width, cfg.Height, float32(nverts)/1000.0)

	// Allocate voxel heightfield where we rasterize our input data to.
	solid := recast.RcCreateHeightfield(b.ctx, cfg.Width, cfg.Height, cfg.Bmin[:], cfg.Bmax[:], cfg.Cs, cfg.Ch)

	// Allocate array that can hold triangle area types.
	triareas := make([]uint8, chunkyMesh.MaxTrisPerChunk)

	var tbmin, tbmax [2]float32
	tbmin[0] = cfg.Bmin[0]
	tbmin[1] = cfg.Bmin[1]
	tbmax[0] = cfg.Bmax[0]
	tbmax[1] = cfg.Bmax[1]

	// Drain the chunky tree in bounded batches; the query is resumable
	// so the id buffer never has to grow with the input size.
	cid := make([]int, 1024)
	currentNode := 0
	tileTriCount := 0

	for {
		var ncid int
		done := recast.RcGetChunksOverlappingRectResumable(chunkyMesh, tbmin, tbmax, cid, len(cid), &ncid, &currentNode)

		for i := 0; i < ncid; i++ {
			node := &chunkyMesh.Nodes[cid[i]]
			ctris := chunkyMesh.Tris[node.I*3:]
			nctris := node.N

			tileTriCount += nctris

			for j := range triareas[:nctris] {
				triareas[j] = 0
			}
			recast.RcMarkWalkableTriangles(b.ctx, cfg.WalkableSlopeAngle, verts, nverts, ctris, nctris, triareas)

			if !recast.RcRasterizeTriangles(b.ctx, verts, nverts, ctris, triareas[:nctris], nctris, solid, cfg.WalkableClimb) {
				return nil, fmt.Errorf("builder: rasterization failed for tile (%d,%d)", tx, ty)
			}
		}

		if done {
			break
		}
	}

	if tileTriCount == 0 {
		return nil, nil
	}

	// Once all geometry is rasterized, we do initial pass of filtering to
	// remove unwanted overhangs caused by the conservative rasterization
	// as well as filter spans where the character cannot possibly stand.
	if b.settings.FilterLowHangingObstacles {
		recast.RcFilterLowHangingWalkableObstacles(b.ctx, cfg.WalkableClimb, solid)
	}
	if b.settings.FilterLedgeSpans {
		recast.RcFilterLedgeSpans(b.ctx, cfg.WalkableHeight, cfg.WalkableClimb, solid)
	}
	if b.settings.FilterWalkableLowHeightSpans {
		recast.RcFilterWalkableLowHeightSpans(b.ctx, cfg.WalkableHeight, solid)
	}

	// Compact the heightfield so that it is faster to handle from now on.
	chf, ok := recast.RcBuildCompactHeightfield(b.ctx, cfg.WalkableHeight, cfg.WalkableClimb, solid)
	if !ok {
		return nil, fmt.Errorf("builder: could not build compact data for tile (%d,%d)", tx, ty)
	}

	if !b.keepInterResults {
		solid = nil
	}

	// Erode the walkable area by agent radius.
	if !recast.RcErodeWalkableArea(b.ctx, cfg.WalkableRadius, chf) {
		return nil, fmt.Errorf("builder: could not erode walkable area for tile (%d,%d)", tx, ty)
	}

	// (Optional) Mark areas.
	for i := range b.geom.ConvexVolumes() {
		vol := &b.geom.ConvexVolumes()[i]
		recast.RcMarkConvexPolyArea(b.ctx, vol.Verts[:], vol.NVerts, vol.Hmin, vol.Hmax, vol.Area, chf)
	}

	// Partition the heightfield so that we can use a simple algorithm
	// later to triangulate the walkable areas. Watershed creates the
	// nicest tessellation, monotone is the fastest, and layer
	// partitioning handles tiles with many small obstacles best.
	switch b.settings.PartitionTypeValue() {
	case recast.RC_PARTITION_WATERSHED:
		// Prepare for region partitioning, by calculating distance field
		// along the walkable surface.
		if !recast.RcBuildDistanceField(b.ctx, chf) {
			return nil, fmt.Errorf("builder: could not build distance field for tile (%d,%d)", tx, ty)
		}
		if !recast.RcBuildRegions(b.ctx, chf, cfg.BorderSize, cfg.MinRegionArea, cfg.MergeRegionArea) {
			return nil, fmt.Errorf("builder: could not build watershed regions for tile (%d,%d)", tx, ty)
		}
	case recast.RC_PARTITION_MONOTONE:
		// Monotone partitioning does not need the distance field.
		if !recast.RcBuildRegionsMonotone(b.ctx, chf, cfg.BorderSize, cfg.MinRegionArea, cfg.MergeRegionArea) {
			return nil, fmt.Errorf("builder: could not build monotone regions for tile (%d,%d)", tx, ty)
		}
	default: // RC_PARTITION_LAYERS
		if !recast.RcBuildLayerRegions(b.ctx, chf, cfg.BorderSize, cfg.MinRegionArea) {
			return nil, fmt.Errorf("builder: could not build layer regions for tile (%d,%d)", tx, ty)
		}
	}

	// Create contours.
	cset, ok := recast.RcBuildContours(b.ctx, chf, cfg.MaxSimplificationError, cfg.MaxEdgeLen, recast.RC_CONTOUR_TESS_WALL_EDGES)
	if !ok {
		return nil, fmt.Errorf("builder: could not create contours for tile (%d,%d)", tx, ty)
	}
	if len(cset.Conts) == 0 {
		return nil, nil
	}

	// Build polygon navmesh from the contours.
	pmesh, ok := recast.RcBuildPolyMesh(b.ctx, cset, cfg.MaxVertsPerPoly)
	if !ok {
		return nil, fmt.Errorf("builder: could not triangulate contours for tile (%d,%d)", tx, ty)
	}

	// Build detail mesh.
	dmesh, ok := recast.RcBuildPolyMeshDetail(b.ctx, pmesh, chf, cfg.DetailSampleDist, cfg.DetailSampleMaxError)
	if !ok {
		return nil, fmt.Errorf("builder: could not build polymesh detail for tile (%d,%d)", tx, ty)
	}

	if b.keepInterResults {
		b.solid = solid
		b.chf = chf
		b.cset = cset
		b.pmesh = pmesh
		b.dmesh = dmesh
	}

	if pmesh.NVerts >= 0xffff {
		// The vertex indices are ushorts, and cannot point to more than 0xffff vertices.
		return nil, fmt.Errorf("builder: too many vertices per tile %d (max: %d)", pmesh.NVerts, 0xffff)
	}
	if pmesh.NPolys == 0 {
		return nil, nil
	}

	// Update poly flags from areas.
	volumeFlags := make(map[uint8]uint16)
	for i := range b.geom.ConvexVolumes() {
		vol := &b.geom.ConvexVolumes()[i]
		volumeFlags[vol.Area] |= vol.Flags
	}

	for i := 0; i < pmesh.NPolys; i++ {
		if pmesh.Areas[i] == recast.RC_WALKABLE_AREA {
			pmesh.Areas[i] = detour.DT_POLYAREA_GROUND
		}

		if pmesh.Areas[i] == detour.DT_POLYAREA_GROUND ||
			pmesh.Areas[i] == detour.DT_POLYAREA_TRIGGER {
			pmesh.Flags[i] |= detour.DT_POLYFLAGS_WALK
		}

		// Volumes rewrite the flags of the polygons they marked.
		if flags, ok := volumeFlags[pmesh.Areas[i]]; ok {
			pmesh.Flags[i] |= flags
		}

		if pmesh.Surfa[i] <= SmallPolygonThreshold {
			pmesh.Flags[i] |= detour.DT_POLYFLAGS_TOO_SMALL
		}

		// If polygon connects to a polygon on a neighbouring tile, flag it.
		nvp := pmesh.Nvp
		p := pmesh.Polys[i*nvp*2:]
		for j := 0; j < nvp; j++ {
			if p[j] == recast.RC_MESH_NULL_IDX {
				break
			}
			if (p[nvp+j] & 0x8000) == 0 {
				continue
			}
			if (p[nvp+j] & 0xf) == 0xf {
				continue
			}

			pmesh.Flags[i] |= detour.DT_POLYFLAGS_HAS_NEIGHBOUR
		}
	}

	// Gather the off-mesh connection attributes.
	cons := b.geom.OffMeshConnections()
	nconns := len(cons)
	offMeshConVerts := make([]float32, nconns*6)
	offMeshConRefPos := make([]float32, nconns*3)
	offMeshConRad := make([]float32, nconns)
	offMeshConRefYaw := make([]float32, nconns)
	offMeshConFlags := make([]uint16, nconns)
	offMeshConAreas := make([]uint8, nconns)
	offMeshConDir := make([]uint8, nconns)
	offMeshConJumps := make([]uint8, nconns)
	offMeshConOrders := make([]uint8, nconns)
	offMeshConUserID := make([]uint16, nconns)
	for i := range cons {
		copy(offMeshConVerts[i*6:], cons[i].Verts[:])
		copy(offMeshConRefPos[i*3:], cons[i].RefPos[:])
		offMeshConRad[i] = cons[i].Rad
		offMeshConRefYaw[i] = cons[i].RefYaw
		offMeshConFlags[i] = cons[i].Flags
		offMeshConAreas[i] = cons[i].Area
		offMeshConDir[i] = cons[i].Dir
		offMeshConJumps[i] = cons[i].Jump
		offMeshConOrders[i] = cons[i].Order
		offMeshConUserID[i] = cons[i].UserId
	}

	var params detour.DtNavMeshCreateParams
	params.Verts = pmesh.Verts
	params.VertCount = pmesh.NVerts
	params.Polys = pmesh.Polys
	params.PolyFlags = pmesh.Flags
	params.PolyAreas = pmesh.Areas
	params.SurfAreas = pmesh.Surfa
	params.PolyCount = pmesh.NPolys
	params.Nvp = pmesh.Nvp
	params.CellResolution = b.settings.PolyCellRes
	params.DetailMeshes = dmesh.Meshes
	params.DetailVerts = dmesh.Verts
	params.DetailVertsCount = dmesh.NVerts
	params.DetailTris = dmesh.Tris
	params.DetailTriCount = dmesh.NTris
	params.OffMeshConVerts = offMeshConVerts
	params.OffMeshConRefPos = offMeshConRefPos
	params.OffMeshConRad = offMeshConRad
	params.OffMeshConRefYaw = offMeshConRefYaw
	params.OffMeshConFlags = offMeshConFlags
	params.OffMeshConAreas = offMeshConAreas
	params.OffMeshConDir = offMeshConDir
	params.OffMeshConJumps = offMeshConJumps
	params.OffMeshConOrders = offMeshConOrders
	params.OffMeshConUserID = offMeshConUserID
	params.OffMeshConCount = nconns
	params.WalkableHeight = b.settings.AgentHeight
	params.WalkableRadius = b.settings.AgentRadius
	params.WalkableClimb = b.settings.AgentMaxClimb
	params.TileX = int32(tx)
	params.TileY = int32(ty)
	params.TileLayer = 0
	params.Bmin = pmesh.Bmin
	params.Bmax = pmesh.Bmax
	params.Cs = cfg.Cs
	params.Ch = cfg.Ch
	params.BuildBvTree = true

	data, ok := detour.DtCreateNavMeshData(&params)
	if !ok {
		return nil, fmt.Errorf("builder: could not build navmesh data for tile (%d,%d)", tx, ty)
	}

	b.ctx.Progressf(">> Polymesh: %d vertices  %d polygons", pmesh.NVerts, pmesh.NPolys)

	return data, nil
}
