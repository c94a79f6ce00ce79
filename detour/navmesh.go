package detour

import (
	"github.com/ttvmkos/r5nav/common"
)

// / A navigation mesh based on tiles of convex polygons.
// /
// / The navmesh owns a fixed arena of tiles; all graph references are
// / small integers (tile index, poly index, link index) packed into
// / opaque polyrefs. The salt portion of a ref is incremented every time
// / a tile slot is freed so dangling references fault on validation.
type DtNavMesh struct {
	m_params         NavMeshParams ///< Current initialization params.
	m_orig           [3]float32    ///< Origin of the tile (0,0). Note: orig[0] is the grid's MAX x; the tile grid runs from +x to -x.
	m_tileWidth      float32       ///< Dimensions of each tile.
	m_tileHeight     float32
	m_tileCount      int32 ///< Number of tiles in the mesh.
	m_maxTiles       int32 ///< Max number of tiles.
	m_tileLutSize    int32 ///< Tile hash lookup size (must be pot).
	m_tileLutMask    int32 ///< Tile hash lookup mask.
	m_posLookup      []int32      ///< Tile hash lookup. (-1 terminated chains of tile indices.)
	m_nextFree       int32        ///< Freelist of tiles. (Index, -1 terminates.)
	m_tiles          []DtMeshTile ///< List of tiles.
	m_traverseTables [][]int32    ///< Array of traverse tables.

	m_saltBits uint32 ///< Number of salt bits in the tile ID.
	m_tileBits uint32 ///< Number of tile bits in the tile ID.
	m_polyBits uint32 ///< Number of poly bits in the tile ID.
}

func computeTileHash(x, y, mask int32) int32 {
	const h1 = 0x8da6b343 // Large multiplicative constants
	const h2 = 0xd8163841 // here arbitrarily chosen primes
	n := uint32(h1)*uint32(x) + uint32(h2)*uint32(y)
	return int32(n) & mask
}

// / Initializes the navigation mesh for tiled use.
func NewDtNavMesh(params *NavMeshParams) (*DtNavMesh, DtStatus) {
	if params.MaxTiles <= 0 || params.MaxPolys <= 0 {
		return nil, DT_FAILURE | DT_INVALID_PARAM
	}

	mesh := &DtNavMesh{}
	mesh.m_params = *params
	mesh.m_orig = params.Orig
	mesh.m_tileWidth = params.TileWidth
	mesh.m_tileHeight = params.TileHeight

	// Init tiles
	mesh.m_maxTiles = params.MaxTiles
	mesh.m_tileLutSize = int32(common.NextPow2(uint32(params.MaxTiles) / 4))
	if mesh.m_tileLutSize == 0 {
		mesh.m_tileLutSize = 1
	}
	mesh.m_tileLutMask = mesh.m_tileLutSize - 1

	mesh.m_tiles = make([]DtMeshTile, mesh.m_maxTiles)
	mesh.m_posLookup = make([]int32, mesh.m_tileLutSize)
	for i := range mesh.m_posLookup {
		mesh.m_posLookup[i] = -1
	}
	mesh.m_nextFree = -1
	for i := mesh.m_maxTiles - 1; i >= 0; i-- {
		mesh.m_tiles[i].Salt = 1
		mesh.m_tiles[i].Index = i
		mesh.m_tiles[i].Next = mesh.m_nextFree
		mesh.m_nextFree = i
	}

	// Init ID generator values.
	if DT_POLYREF64 == 1 {
		mesh.m_saltBits = DT_SALT_BITS
		mesh.m_tileBits = DT_TILE_BITS
		mesh.m_polyBits = DT_POLY_BITS
	} else {
		mesh.m_tileBits = common.Ilog2(common.NextPow2(uint32(params.MaxTiles)))
		mesh.m_polyBits = common.Ilog2(common.NextPow2(uint32(params.MaxPolys)))

		if mesh.m_tileBits+mesh.m_polyBits > 31 {
			return nil, DT_FAILURE | DT_INVALID_PARAM
		}

		// Only allow 31 salt bits, since the salt mask is calculated using
		// 32bit uint and it will overflow.
		mesh.m_saltBits = min(31, 32-mesh.m_tileBits-mesh.m_polyBits)
		if mesh.m_saltBits < 10 {
			return nil, DT_FAILURE | DT_INVALID_PARAM
		}
	}

	return mesh, DT_SUCCESS
}

// / The navigation mesh initialization params.
func (mesh *DtNavMesh) GetParams() *NavMeshParams {
	return &mesh.m_params
}

// / @{
// / @name Encoding and Decoding

// / Derives a standard polygon reference.
func (mesh *DtNavMesh) EncodePolyId(salt, it, ip uint32) DtPolyRef {
	if DT_POLYREF64 == 1 {
		return (DtPolyRef(salt) << (DT_POLY_BITS + DT_TILE_BITS)) | (DtPolyRef(it) << DT_POLY_BITS) | DtPolyRef(ip)
	}
	return (DtPolyRef(salt) << (mesh.m_polyBits + mesh.m_tileBits)) | (DtPolyRef(it) << mesh.m_polyBits) | DtPolyRef(ip)
}

// / Decodes a standard polygon reference.
func (mesh *DtNavMesh) DecodePolyId(ref DtPolyRef) (salt, it, ip uint32) {
	var saltMask, tileMask, polyMask DtPolyRef
	var polyBits, tileBits uint32
	if DT_POLYREF64 == 1 {
		saltMask = (DtPolyRef(1) << DT_SALT_BITS) - 1
		tileMask = (DtPolyRef(1) << DT_TILE_BITS) - 1
		polyMask = (DtPolyRef(1) << DT_POLY_BITS) - 1
		polyBits = DT_POLY_BITS
		tileBits = DT_TILE_BITS
	} else {
		saltMask = (DtPolyRef(1) << mesh.m_saltBits) - 1
		tileMask = (DtPolyRef(1) << mesh.m_tileBits) - 1
		polyMask = (DtPolyRef(1) << mesh.m_polyBits) - 1
		polyBits = mesh.m_polyBits
		tileBits = mesh.m_tileBits
	}
	salt = uint32((ref >> (polyBits + tileBits)) & saltMask)
	it = uint32((ref >> polyBits) & tileMask)
	ip = uint32(ref & polyMask)
	return salt, it, ip
}

// / Extracts a tile's salt value from the specified polygon reference.
func (mesh *DtNavMesh) DecodePolyIdSalt(ref DtPolyRef) uint32 {
	salt, _, _ := mesh.DecodePolyId(ref)
	return salt
}

// / Extracts the tile's index from the specified polygon reference.
func (mesh *DtNavMesh) DecodePolyIdTile(ref DtPolyRef) uint32 {
	_, it, _ := mesh.DecodePolyId(ref)
	return it
}

// / Extracts the polygon's index (within its tile) from the specified polygon reference.
func (mesh *DtNavMesh) DecodePolyIdPoly(ref DtPolyRef) uint32 {
	_, _, ip := mesh.DecodePolyId(ref)
	return ip
}

// / @}

func (mesh *DtNavMesh) tileIndex(tile *DtMeshTile) int32 {
	return tile.Index
}

// / Gets the polygon reference for the tile's base polygon.
func (mesh *DtNavMesh) GetPolyRefBase(tile *DtMeshTile) DtPolyRef {
	if tile == nil {
		return 0
	}
	it := uint32(mesh.tileIndex(tile))
	return mesh.EncodePolyId(tile.Salt, it, 0)
}

// / Gets the tile reference for the specified tile.
func (mesh *DtNavMesh) GetTileRef(tile *DtMeshTile) DtTileRef {
	if tile == nil {
		return 0
	}
	it := uint32(mesh.tileIndex(tile))
	return DtTileRef(mesh.EncodePolyId(tile.Salt, it, 0))
}

// / Gets the tile at the specified index.
func (mesh *DtNavMesh) GetTile(i int) *DtMeshTile {
	return &mesh.m_tiles[i]
}

// / The maximum number of tiles supported by the navigation mesh.
func (mesh *DtNavMesh) GetMaxTiles() int {
	return int(mesh.m_maxTiles)
}

// / The number of tiles added to this mesh by AddTile.
func (mesh *DtNavMesh) GetTileCount() int {
	return int(mesh.m_tileCount)
}

// / Calculates the tile grid location for the specified world position.
// / The tile grid runs from the max x bound towards -x; see m_orig.
func (mesh *DtNavMesh) CalcTileLoc(pos []float32) (tx, ty int32) {
	tx = int32(common.Floorf((mesh.m_orig[0] - pos[0]) / mesh.m_tileWidth))
	ty = int32(common.Floorf((pos[1] - mesh.m_orig[1]) / mesh.m_tileHeight))
	return tx, ty
}

// / Gets the tile at the specified grid location.
func (mesh *DtNavMesh) GetTileAt(x, y, layer int32) *DtMeshTile {
	// Find tile based on hash.
	h := computeTileHash(x, y, mesh.m_tileLutMask)
	for i := mesh.m_posLookup[h]; i != -1; i = mesh.m_tiles[i].Next {
		tile := &mesh.m_tiles[i]
		if tile.Header != nil &&
			tile.Header.X == x &&
			tile.Header.Y == y &&
			tile.Header.Layer == layer {
			return tile
		}
	}
	return nil
}

// / Gets all tiles at the specified grid location. (All layers.)
func (mesh *DtNavMesh) GetTilesAt(x, y int32, tiles []*DtMeshTile, maxTiles int) int {
	n := 0
	h := computeTileHash(x, y, mesh.m_tileLutMask)
	for i := mesh.m_posLookup[h]; i != -1; i = mesh.m_tiles[i].Next {
		tile := &mesh.m_tiles[i]
		if tile.Header != nil && tile.Header.X == x && tile.Header.Y == y {
			if n < maxTiles {
				tiles[n] = tile
				n++
			}
		}
	}
	return n
}

// / Returns neighbour tiles based on the 8-value side code. Side codes
// / are world-space octants; the tile grid x axis is inverted relative
// / to world x.
func (mesh *DtNavMesh) GetNeighbourTilesAt(x, y, side int32, tiles []*DtMeshTile, maxTiles int) int {
	nx := x
	ny := y
	switch side {
	case 0: // world -x
		nx++
	case 1: // world -x, +y
		nx++
		ny++
	case 2: // world +y
		ny++
	case 3: // world +x, +y
		nx--
		ny++
	case 4: // world +x
		nx--
	case 5: // world +x, -y
		nx--
		ny--
	case 6: // world -y
		ny--
	case 7: // world -x, -y
		nx++
		ny--
	}

	return mesh.GetTilesAt(nx, ny, tiles, maxTiles)
}

// / Gets the tile reference for the tile at specified grid location.
func (mesh *DtNavMesh) GetTileRefAt(x, y, layer int32) DtTileRef {
	tile := mesh.GetTileAt(x, y, layer)
	if tile == nil {
		return 0
	}
	return mesh.GetTileRef(tile)
}

// / Gets the tile for the specified tile reference.
func (mesh *DtNavMesh) GetTileByRef(ref DtTileRef) *DtMeshTile {
	if ref == 0 {
		return nil
	}
	tileIndex := mesh.DecodePolyIdTile(DtPolyRef(ref))
	tileSalt := mesh.DecodePolyIdSalt(DtPolyRef(ref))
	if int32(tileIndex) >= mesh.m_maxTiles {
		return nil
	}
	tile := &mesh.m_tiles[tileIndex]
	if tile.Salt != tileSalt {
		return nil
	}
	return tile
}

// / Gets the tile and polygon for the specified polygon reference.
func (mesh *DtNavMesh) GetTileAndPolyByRef(ref DtPolyRef) (*DtMeshTile, *DtPoly, DtStatus) {
	if ref == 0 {
		return nil, nil, DT_FAILURE
	}
	salt, it, ip := mesh.DecodePolyId(ref)
	if int32(it) >= mesh.m_maxTiles {
		return nil, nil, DT_FAILURE | DT_INVALID_PARAM
	}
	if mesh.m_tiles[it].Salt != salt || mesh.m_tiles[it].Header == nil {
		return nil, nil, DT_FAILURE | DT_INVALID_PARAM
	}
	if ip >= uint32(mesh.m_tiles[it].Header.PolyCount) {
		return nil, nil, DT_FAILURE | DT_INVALID_PARAM
	}
	return &mesh.m_tiles[it], &mesh.m_tiles[it].Polys[ip], DT_SUCCESS
}

// / Returns the tile and polygon for the specified polygon reference.
// / @warning Only use this function if it is known that the provided
// / polygon reference is valid.
func (mesh *DtNavMesh) GetTileAndPolyByRefUnsafe(ref DtPolyRef) (*DtMeshTile, *DtPoly) {
	_, it, ip := mesh.DecodePolyId(ref)
	return &mesh.m_tiles[it], &mesh.m_tiles[it].Polys[ip]
}

// / Checks the validity of a polygon reference.
func (mesh *DtNavMesh) IsValidPolyRef(ref DtPolyRef) bool {
	if ref == 0 {
		return false
	}
	salt, it, ip := mesh.DecodePolyId(ref)
	if int32(it) >= mesh.m_maxTiles {
		return false
	}
	if mesh.m_tiles[it].Salt != salt || mesh.m_tiles[it].Header == nil {
		return false
	}
	if ip >= uint32(mesh.m_tiles[it].Header.PolyCount) {
		return false
	}
	return true
}

//////////////////////////////////////////////////////////////////////////////////////////
// Portal matching

func getSlabCoord(va []float32, side int32) float32 {
	if side == 0 || side == 4 {
		return va[0]
	} else if side == 2 || side == 6 {
		return va[1]
	}
	return 0
}

func calcSlabEndPoints(va, vb []float32, bmin, bmax []float32, side int32) {
	if side == 0 || side == 4 {
		if va[1] < vb[1] {
			bmin[0] = va[1]
			bmin[1] = va[2]
			bmax[0] = vb[1]
			bmax[1] = vb[2]
		} else {
			bmin[0] = vb[1]
			bmin[1] = vb[2]
			bmax[0] = va[1]
			bmax[1] = va[2]
		}
	} else if side == 2 || side == 6 {
		if va[0] < vb[0] {
			bmin[0] = va[0]
			bmin[1] = va[2]
			bmax[0] = vb[0]
			bmax[1] = vb[2]
		} else {
			bmin[0] = vb[0]
			bmin[1] = vb[2]
			bmax[0] = va[0]
			bmax[1] = va[2]
		}
	}
}

func overlapSlabs(amin, amax, bmin, bmax []float32, px, pz float32) bool {
	// Check for horizontal overlap.
	// The segment is shrunken a little so that slabs which touch
	// at end points are not connected.
	minx := max(amin[0]+px, bmin[0]+px)
	maxx := min(amax[0]-px, bmax[0]-px)
	if minx > maxx {
		return false
	}

	// Check vertical overlap.
	ad := (amax[1] - amin[1]) / (amax[0] - amin[0])
	ak := amin[1] - ad*amin[0]
	bd := (bmax[1] - bmin[1]) / (bmax[0] - bmin[0])
	bk := bmin[1] - bd*bmin[0]
	aminz := ad*minx + ak
	amaxz := ad*maxx + ak
	bminz := bd*minx + bk
	bmaxz := bd*maxx + bk
	dmin := bminz - aminz
	dmax := bmaxz - amaxz

	// Crossing segments always overlap.
	if dmin*dmax < 0 {
		return true
	}

	// Check for overlap at endpoints.
	thr := common.Sqr(pz * 2)
	if dmin*dmin <= thr || dmax*dmax <= thr {
		return true
	}

	return false
}

// / Returns all polygons in neighbour tile based on portal defined by the segment.
func (mesh *DtNavMesh) findConnectingPolys(va, vb []float32, tile *DtMeshTile, side int32,
	con []DtPolyRef, conarea []float32, maxcon int) int {

	if tile == nil {
		return 0
	}

	amin := make([]float32, 2)
	amax := make([]float32, 2)
	calcSlabEndPoints(va, vb, amin, amax, side)
	apos := getSlabCoord(va, side)

	// Remove links pointing to 'side' and compact the links array.
	bmin := make([]float32, 2)
	bmax := make([]float32, 2)
	m := uint16(DT_EXT_LINK | side)
	n := 0

	base := mesh.GetPolyRefBase(tile)

	for i := 0; i < int(tile.Header.PolyCount); i++ {
		poly := &tile.Polys[i]
		nv := int(poly.VertCount)
		for j := 0; j < nv; j++ {
			// Skip edges which do not point to the right side.
			if poly.Neis[j] != m {
				continue
			}

			vc := tile.Verts[int(poly.Verts[j])*3:]
			vd := tile.Verts[int(poly.Verts[(j+1)%nv])*3:]
			bpos := getSlabCoord(vc, side)

			// Segments are not close enough.
			if common.Fabsf(apos-bpos) > 0.01 {
				continue
			}

			// Check if the segments touch.
			calcSlabEndPoints(vc, vd, bmin, bmax, side)

			if !overlapSlabs(amin, amax, bmin, bmax, 0.01, tile.Header.WalkableClimb) {
				continue
			}

			// Add return value.
			if n < maxcon {
				conarea[n*2+0] = max(amin[0], bmin[0])
				conarea[n*2+1] = min(amax[0], bmax[0])
				con[n] = base | DtPolyRef(i)
				n++
			}
			break
		}
	}
	return n
}

// / Removes external links at specified side.
func (mesh *DtNavMesh) unconnectLinks(tile, target *DtMeshTile) {
	if tile == nil || target == nil {
		return
	}

	targetNum := mesh.DecodePolyIdTile(DtPolyRef(mesh.GetTileRef(target)))

	for i := 0; i < int(tile.Header.PolyCount); i++ {
		poly := &tile.Polys[i]
		j := poly.FirstLink
		pj := uint32(DT_NULL_LINK)
		for j != DT_NULL_LINK {
			if mesh.DecodePolyIdTile(tile.Links[j].Ref) == targetNum {
				// Remove link.
				nj := tile.Links[j].Next
				if pj == DT_NULL_LINK {
					poly.FirstLink = nj
				} else {
					tile.Links[pj].Next = nj
				}
				tile.FreeLink(j)
				j = nj
			} else {
				// Advance
				pj = j
				j = tile.Links[j].Next
			}
		}
	}
}

// / Builds external polygon links for a tile.
func (mesh *DtNavMesh) connectExtLinks(tile, target *DtMeshTile, side int32) {
	if tile == nil {
		return
	}

	con := make([]DtPolyRef, 4)
	conarea := make([]float32, 4*2)

	// Connect border links.
	for i := 0; i < int(tile.Header.PolyCount); i++ {
		poly := &tile.Polys[i]

		// Create new links.
		nv := int(poly.VertCount)
		for j := 0; j < nv; j++ {
			// Skip non-portal edges.
			if (poly.Neis[j] & DT_EXT_LINK) == 0 {
				continue
			}

			dir := int32(poly.Neis[j] & 0xff)
			if side != -1 && dir != side {
				continue
			}

			// Create new links
			va := tile.Verts[int(poly.Verts[j])*3:]
			vb := tile.Verts[int(poly.Verts[(j+1)%nv])*3:]
			nnei := mesh.findConnectingPolys(va, vb, target, oppositeTile(dir), con, conarea, 4)
			for k := 0; k < nnei; k++ {
				idx := tile.AllocLink()
				if idx == DT_NULL_LINK {
					continue
				}
				link := &tile.Links[idx]
				link.Ref = con[k]
				link.Edge = uint8(j)
				link.Side = uint8(dir)
				link.TraverseType = DT_NULL_TRAVERSE_TYPE
				link.TraverseDist = 0
				link.ReverseLink = DT_NULL_TRAVERSE_REVERSE_LINK

				link.Next = poly.FirstLink
				poly.FirstLink = idx

				// Compress portal limits to a byte value.
				if dir == 0 || dir == 4 {
					tmin := (conarea[k*2+0] - va[1]) / (vb[1] - va[1])
					tmax := (conarea[k*2+1] - va[1]) / (vb[1] - va[1])
					if tmin > tmax {
						common.Swap(&tmin, &tmax)
					}
					link.Bmin = uint8(common.Clamp(tmin, 0, 1) * 255.0)
					link.Bmax = uint8(common.Clamp(tmax, 0, 1) * 255.0)
				} else if dir == 2 || dir == 6 {
					tmin := (conarea[k*2+0] - va[0]) / (vb[0] - va[0])
					tmax := (conarea[k*2+1] - va[0]) / (vb[0] - va[0])
					if tmin > tmax {
						common.Swap(&tmin, &tmax)
					}
					link.Bmin = uint8(common.Clamp(tmin, 0, 1) * 255.0)
					link.Bmax = uint8(common.Clamp(tmax, 0, 1) * 255.0)
				}
			}
		}
	}
}

func oppositeTile(side int32) int32 {
	return (side + 4) & 0x7
}

// / Builds internal polygons links for a tile.
func (mesh *DtNavMesh) connectIntLinks(tile *DtMeshTile) {
	if tile == nil {
		return
	}

	base := mesh.GetPolyRefBase(tile)

	for i := 0; i < int(tile.Header.PolyCount); i++ {
		poly := &tile.Polys[i]
		poly.FirstLink = DT_NULL_LINK

		if poly.GetType() == DT_POLYTYPE_OFFMESH_CONNECTION {
			continue
		}

		// Build edge links backwards so that the links will be
		// in the linked list from lowest index to highest.
		for j := int(poly.VertCount) - 1; j >= 0; j-- {
			// Skip hard and non-internal edges.
			if poly.Neis[j] == 0 || (poly.Neis[j]&DT_EXT_LINK) != 0 {
				continue
			}

			idx := tile.AllocLink()
			if idx == DT_NULL_LINK {
				continue
			}
			link := &tile.Links[idx]
			link.Ref = base | DtPolyRef(poly.Neis[j]-1)
			link.Edge = uint8(j)
			link.Side = 0xff
			link.Bmin = 0
			link.Bmax = 0
			link.TraverseType = DT_NULL_TRAVERSE_TYPE
			link.TraverseDist = 0
			link.ReverseLink = DT_NULL_TRAVERSE_REVERSE_LINK
			// Add to linked list.
			link.Next = poly.FirstLink
			poly.FirstLink = idx
		}
	}
}

// / Half extents used when grounding off-mesh connection endpoints to
// / their containing polygon.
var offMeshLookupHalfExtents = [3]float32{2, 2, 4}

// / Builds the base off-mesh links for the given tile: grounds each
// / connection's start vertex to a containing polygon and links the
// / connection polygon with it, both ways.
func (mesh *DtNavMesh) BaseOffMeshLinks(ref DtTileRef) DtStatus {
	tile := mesh.GetTileByRef(ref)
	if tile == nil {
		return DT_FAILURE | DT_INVALID_PARAM
	}

	base := mesh.GetPolyRefBase(tile)

	for i := 0; i < int(tile.Header.OffMeshConCount); i++ {
		con := &tile.OffMeshCons[i]
		poly := &tile.Polys[con.Poly]

		halfExtents := []float32{offMeshLookupHalfExtents[0], offMeshLookupHalfExtents[1], offMeshLookupHalfExtents[2]}
		if con.Rad > halfExtents[0] {
			halfExtents[0] = con.Rad
			halfExtents[1] = con.Rad
		}

		// Find polygon to connect to.
		p := con.Pos[0:3] // First vertex
		nearestPt := make([]float32, 3)
		landRef := mesh.FindNearestPolyInTile(tile, p, halfExtents, nearestPt)
		if landRef == 0 {
			continue
		}
		// findNearestPoly may return too optimistic results, further check
		// to make sure point is on the poly boundary.
		if common.Sqr(nearestPt[0]-p[0])+common.Sqr(nearestPt[1]-p[1]) > common.Sqr(con.Rad) {
			continue
		}
		// Make sure the location is on current mesh.
		common.Vcopy(tile.Verts[int(poly.Verts[0])*3:], nearestPt)

		// Link off-mesh connection to target poly.
		idx := tile.AllocLink()
		if idx == DT_NULL_LINK {
			continue
		}
		link := &tile.Links[idx]
		link.Ref = landRef
		link.Edge = 0
		link.Side = 0xff
		link.Bmin = 0
		link.Bmax = 0
		link.TraverseType = DT_NULL_TRAVERSE_TYPE
		link.TraverseDist = 0
		link.ReverseLink = DT_NULL_TRAVERSE_REVERSE_LINK
		// Add to linked list.
		link.Next = poly.FirstLink
		poly.FirstLink = idx

		// Start end-point is always connected back to off-mesh connection.
		tidx := tile.AllocLink()
		if tidx == DT_NULL_LINK {
			continue
		}
		landPolyIdx := uint16(mesh.DecodePolyIdPoly(landRef))
		landPoly := &tile.Polys[landPolyIdx]
		link = &tile.Links[tidx]
		link.Ref = base | DtPolyRef(con.Poly)
		link.Edge = 0xff
		link.Side = 0xff
		link.Bmin = 0
		link.Bmax = 0
		link.TraverseType = DT_NULL_TRAVERSE_TYPE
		link.TraverseDist = 0
		link.ReverseLink = DT_NULL_TRAVERSE_REVERSE_LINK
		// Add to linked list.
		link.Next = landPoly.FirstLink
		landPoly.FirstLink = tidx

		poly.Flags |= DT_POLYFLAGS_JUMP_LINKED
	}

	return DT_SUCCESS
}

// / Connects the end vertices of the tile's off-mesh connections to the
// / polygons containing them, which may live on other tiles.
func (mesh *DtNavMesh) ConnectExtOffMeshLinks(ref DtTileRef) DtStatus {
	tile := mesh.GetTileByRef(ref)
	if tile == nil {
		return DT_FAILURE | DT_INVALID_PARAM
	}

	base := mesh.GetPolyRefBase(tile)

	for i := 0; i < int(tile.Header.OffMeshConCount); i++ {
		con := &tile.OffMeshCons[i]
		conPoly := &tile.Polys[con.Poly]

		halfExtents := []float32{offMeshLookupHalfExtents[0], offMeshLookupHalfExtents[1], offMeshLookupHalfExtents[2]}
		if con.Rad > halfExtents[0] {
			halfExtents[0] = con.Rad
			halfExtents[1] = con.Rad
		}

		// End vertex.
		p := con.Pos[3:6]
		tx, ty := mesh.CalcTileLoc(p)
		landTile := mesh.GetTileAt(tx, ty, 0)
		if landTile == nil {
			continue
		}

		nearestPt := make([]float32, 3)
		landRef := mesh.FindNearestPolyInTile(landTile, p, halfExtents, nearestPt)
		if landRef == 0 {
			continue
		}
		if common.Sqr(nearestPt[0]-p[0])+common.Sqr(nearestPt[1]-p[1]) > common.Sqr(con.Rad) {
			continue
		}
		common.Vcopy(tile.Verts[int(conPoly.Verts[1])*3:], nearestPt)

		// Link off-mesh connection to target poly.
		idx := tile.AllocLink()
		if idx == DT_NULL_LINK {
			continue
		}
		link := &tile.Links[idx]
		link.Ref = landRef
		link.Edge = 1
		link.Side = con.Side
		link.Bmin = 0
		link.Bmax = 0
		link.TraverseType = DT_NULL_TRAVERSE_TYPE
		link.TraverseDist = 0
		link.ReverseLink = DT_NULL_TRAVERSE_REVERSE_LINK
		link.Next = conPoly.FirstLink
		conPoly.FirstLink = idx

		// Link target poly back to off-mesh connection when the
		// connection is bidirectional.
		if (con.TraverseType & DT_OFFMESH_CON_TRAVERSE_ON_POLY) != 0 {
			tidx := landTile.AllocLink()
			if tidx == DT_NULL_LINK {
				continue
			}
			landPolyIdx := uint16(mesh.DecodePolyIdPoly(landRef))
			landPoly := &landTile.Polys[landPolyIdx]
			link = &landTile.Links[tidx]
			link.Ref = base | DtPolyRef(con.Poly)
			link.Edge = 0xff
			link.Side = oppositeSide(con.Side)
			link.Bmin = 0
			link.Bmax = 0
			link.TraverseType = DT_NULL_TRAVERSE_TYPE
			link.TraverseDist = 0
			link.ReverseLink = DT_NULL_TRAVERSE_REVERSE_LINK
			link.Next = landPoly.FirstLink
			landPoly.FirstLink = tidx

			conPoly.Flags |= DT_POLYFLAGS_JUMP_LINKED
		}
	}

	return DT_SUCCESS
}

func oppositeSide(side uint8) uint8 {
	if side == 0xff {
		return 0xff
	}
	return uint8((side + 4) & 0x7)
}

// / Queries polygons within a tile using its bounding volume tree.
func (mesh *DtNavMesh) queryPolygonsInTile(tile *DtMeshTile, qmin, qmax []float32, polys []DtPolyRef, maxPolys int) int {
	n := 0
	if tile.Header.BvNodeCount > 0 {
		tbmin := tile.Header.Bmin[:]
		tbmax := tile.Header.Bmax[:]
		qfac := tile.Header.BvQuantFactor

		// Calculate quantized box
		bmin := make([]uint16, 3)
		bmax := make([]uint16, 3)
		// dtClamp query box to world box.
		minx := common.Clamp(qmin[0], tbmin[0], tbmax[0]) - tbmin[0]
		miny := common.Clamp(qmin[1], tbmin[1], tbmax[1]) - tbmin[1]
		minz := common.Clamp(qmin[2], tbmin[2], tbmax[2]) - tbmin[2]
		maxx := common.Clamp(qmax[0], tbmin[0], tbmax[0]) - tbmin[0]
		maxy := common.Clamp(qmax[1], tbmin[1], tbmax[1]) - tbmin[1]
		maxz := common.Clamp(qmax[2], tbmin[2], tbmax[2]) - tbmin[2]
		// Quantize
		bmin[0] = uint16(uint32(qfac*minx) & 0xfffe)
		bmin[1] = uint16(uint32(qfac*miny) & 0xfffe)
		bmin[2] = uint16(uint32(qfac*minz) & 0xfffe)
		bmax[0] = uint16(uint32(qfac*maxx+1) | 1)
		bmax[1] = uint16(uint32(qfac*maxy+1) | 1)
		bmax[2] = uint16(uint32(qfac*maxz+1) | 1)

		// Traverse tree
		base := mesh.GetPolyRefBase(tile)
		nodeIndex := 0
		endIndex := int(tile.Header.BvNodeCount)
		for nodeIndex < endIndex {
			node := &tile.BvTree[nodeIndex]
			overlap := common.OverlapQuantBounds(bmin, bmax, node.Bmin[:], node.Bmax[:])
			isLeafNode := node.I >= 0

			if isLeafNode && overlap {
				if n < maxPolys {
					polys[n] = base | DtPolyRef(node.I)
					n++
				}
			}

			if overlap || isLeafNode {
				nodeIndex++
			} else {
				escapeIndex := int(-node.I)
				nodeIndex += escapeIndex
			}
		}

		return n
	}

	bmin := make([]float32, 3)
	bmax := make([]float32, 3)
	base := mesh.GetPolyRefBase(tile)
	for i := 0; i < int(tile.Header.PolyCount); i++ {
		p := &tile.Polys[i]
		// Do not return off-mesh connection polygons.
		if p.GetType() == DT_POLYTYPE_OFFMESH_CONNECTION {
			continue
		}
		// Calc polygon bounds.
		v := tile.Verts[int(p.Verts[0])*3:]
		common.Vcopy(bmin, v)
		common.Vcopy(bmax, v)
		for j := 1; j < int(p.VertCount); j++ {
			v = tile.Verts[int(p.Verts[j])*3:]
			common.Vmin(bmin, v)
			common.Vmax(bmax, v)
		}
		if common.OverlapBounds(qmin, qmax, bmin, bmax) {
			if n < maxPolys {
				polys[n] = base | DtPolyRef(i)
				n++
			}
		}
	}
	return n
}

// / Returns whether position is over the poly and the height at the position if so.
func (mesh *DtNavMesh) getPolyHeight(tile *DtMeshTile, poly *DtPoly, pos []float32) (height float32, ok bool) {
	// Off-mesh connections do not have detail polys and getting height
	// over them does not make sense.
	if poly.GetType() == DT_POLYTYPE_OFFMESH_CONNECTION {
		return 0, false
	}

	ip := 0
	for i := range tile.Polys {
		if &tile.Polys[i] == poly {
			ip = i
			break
		}
	}
	pd := &tile.DetailMeshes[ip]

	verts := make([]float32, DT_VERTS_PER_POLYGON*3)
	nv := int(poly.VertCount)
	for i := 0; i < nv; i++ {
		common.Vcopy(verts[i*3:], tile.Verts[int(poly.Verts[i])*3:])
	}

	if !common.PointInPolygon(pos, verts, nv) {
		return 0, false
	}

	// Find height at the location.
	for j := 0; j < int(pd.TriCount); j++ {
		t := tile.DetailTris[(int(pd.TriBase)+j)*4:]
		v := make([][]float32, 3)
		for k := 0; k < 3; k++ {
			if t[k] < poly.VertCount {
				v[k] = tile.Verts[int(poly.Verts[t[k]])*3:]
			} else {
				v[k] = tile.DetailVerts[(int(pd.VertBase)+(int(t[k])-int(poly.VertCount)))*3:]
			}
		}
		if h, hit := common.ClosestHeightPointTriangle(pos, v[0], v[1], v[2]); hit {
			return h, true
		}
	}

	// If all triangle checks failed above (can happen with degenerate triangles
	// or larger floating point values) the point is on an edge, so just select
	// closest. This should almost never happen so the extra iteration here is ok.
	closest := make([]float32, 3)
	closestPointOnDetailEdges(false, tile, poly, ip, pos, closest)
	return closest[2], true
}

func closestPointOnDetailEdges(onlyBoundary bool, tile *DtMeshTile, poly *DtPoly, ip int, pos, closest []float32) {
	pd := &tile.DetailMeshes[ip]

	dmin := float32(3.4e38)
	var tmin float32
	var pmin, pmax []float32

	for i := 0; i < int(pd.TriCount); i++ {
		tris := tile.DetailTris[(int(pd.TriBase)+i)*4:]
		const ANY_BOUNDARY_EDGE = (DT_DETAIL_EDGE_BOUNDARY << 0) | (DT_DETAIL_EDGE_BOUNDARY << 2) | (DT_DETAIL_EDGE_BOUNDARY << 4)
		if onlyBoundary && (int(tris[3])&ANY_BOUNDARY_EDGE) == 0 {
			continue
		}

		v := make([][]float32, 3)
		for j := 0; j < 3; j++ {
			if tris[j] < poly.VertCount {
				v[j] = tile.Verts[int(poly.Verts[tris[j]])*3:]
			} else {
				v[j] = tile.DetailVerts[(int(pd.VertBase)+(int(tris[j])-int(poly.VertCount)))*3:]
			}
		}

		for k, j := 2, 0; j < 3; k, j = j, j+1 {
			if (DtGetDetailTriEdgeFlags(tris[3], k)&DT_DETAIL_EDGE_BOUNDARY) == 0 &&
				(onlyBoundary || tris[k] < tris[j]) {
				// Only looking at boundary edges and this is internal, or
				// this is an inner edge that we will see again or have already seen.
				continue
			}

			d, t := common.DistancePtSegSqr2D(pos, v[k], v[j])
			if d < dmin {
				dmin = d
				tmin = t
				pmin = v[k]
				pmax = v[j]
			}
		}
	}

	if pmin != nil {
		common.Vlerp(closest, pmin, pmax, tmin)
	}
}

// / Returns closest point on polygon.
func (mesh *DtNavMesh) closestPointOnPoly(ref DtPolyRef, pos, closest []float32, posOverPoly *bool) {
	tile, poly := mesh.GetTileAndPolyByRefUnsafe(ref)

	common.Vcopy(closest, pos)
	if h, ok := mesh.getPolyHeight(tile, poly, pos); ok {
		closest[2] = h
		if posOverPoly != nil {
			*posOverPoly = true
		}
		return
	}

	if posOverPoly != nil {
		*posOverPoly = false
	}

	// Off-mesh connections don't have detail polygons.
	if poly.GetType() == DT_POLYTYPE_OFFMESH_CONNECTION {
		v0 := tile.Verts[int(poly.Verts[0])*3:]
		v1 := tile.Verts[int(poly.Verts[1])*3:]
		d0 := common.Vdist(pos, v0)
		d1 := common.Vdist(pos, v1)
		u := d0 / (d0 + d1)
		common.Vlerp(closest, v0, v1, u)
		return
	}

	ip := int(mesh.DecodePolyIdPoly(ref))
	closestPointOnDetailEdges(true, tile, poly, ip, pos, closest)
}

// / Find nearest polygon within a tile.
func (mesh *DtNavMesh) FindNearestPolyInTile(tile *DtMeshTile, center, halfExtents, nearestPt []float32) DtPolyRef {
	bmin := make([]float32, 3)
	bmax := make([]float32, 3)
	common.Vsub(bmin, center, halfExtents)
	common.Vadd(bmax, center, halfExtents)

	// Get nearby polygons from proximity grid.
	polys := make([]DtPolyRef, 128)
	polyCount := mesh.queryPolygonsInTile(tile, bmin, bmax, polys, 128)

	// Find nearest polygon amongst the nearby polygons.
	var nearest DtPolyRef
	nearestDistanceSqr := float32(3.4e38)
	closestPtPoly := make([]float32, 3)
	diff := make([]float32, 3)

	for i := 0; i < polyCount; i++ {
		ref := polys[i]
		var posOverPoly bool
		mesh.closestPointOnPoly(ref, center, closestPtPoly, &posOverPoly)

		// If a point is directly over a polygon and closer than
		// climb height, favor that instead of straight line nearest point.
		var d float32
		common.Vsub(diff, center, closestPtPoly)
		if posOverPoly {
			d = common.Fabsf(diff[2]) - tile.Header.WalkableClimb
			if d > 0 {
				d = d * d
			} else {
				d = 0
			}
		} else {
			d = common.VlenSqr(diff)
		}

		if d < nearestDistanceSqr {
			common.Vcopy(nearestPt, closestPtPoly)
			nearestDistanceSqr = d
			nearest = ref
		}
	}

	return nearest
}

// / Adds a tile to the navigation mesh.
func (mesh *DtNavMesh) AddTile(data *NavMeshData, flags int32, lastRef DtTileRef) (DtTileRef, DtStatus) {
	if data == nil || data.Header == nil {
		return 0, DT_FAILURE | DT_INVALID_PARAM
	}
	header := data.Header

	// Make sure the data is in right format.
	if header.Magic != DT_NAVMESH_MAGIC {
		return 0, DT_FAILURE | DT_WRONG_MAGIC
	}
	if header.Version != DT_NAVMESH_VERSION {
		return 0, DT_FAILURE | DT_WRONG_VERSION
	}

	// Make sure the location is free.
	if mesh.GetTileAt(header.X, header.Y, header.Layer) != nil {
		return 0, DT_FAILURE | DT_ALREADY_OCCUPIED
	}

	// Allocate a tile.
	var tileIndex int32 = -1
	if lastRef == 0 {
		if mesh.m_nextFree != -1 {
			tileIndex = mesh.m_nextFree
			mesh.m_nextFree = mesh.m_tiles[tileIndex].Next
			mesh.m_tiles[tileIndex].Next = -1
		}
	} else {
		// Try to relocate the tile to specific index with same salt.
		tileIndex = int32(mesh.DecodePolyIdTile(DtPolyRef(lastRef)))
		if tileIndex >= mesh.m_maxTiles {
			return 0, DT_FAILURE | DT_OUT_OF_MEMORY
		}
		// Try to find the specific tile id from the free list.
		target := &mesh.m_tiles[tileIndex]
		var prev int32 = -1
		cur := mesh.m_nextFree
		for cur != -1 && &mesh.m_tiles[cur] != target {
			prev = cur
			cur = mesh.m_tiles[cur].Next
		}
		// Could not find the correct location.
		if cur == -1 {
			return 0, DT_FAILURE | DT_OUT_OF_MEMORY
		}
		// Remove from freelist
		if prev == -1 {
			mesh.m_nextFree = target.Next
		} else {
			mesh.m_tiles[prev].Next = target.Next
		}
		target.Next = -1

		// Restore salt.
		target.Salt = mesh.DecodePolyIdSalt(DtPolyRef(lastRef))
	}

	// Make sure we could allocate a tile.
	if tileIndex == -1 {
		return 0, DT_FAILURE | DT_OUT_OF_MEMORY
	}

	tile := &mesh.m_tiles[tileIndex]

	// Insert tile into the position lut.
	h := computeTileHash(header.X, header.Y, mesh.m_tileLutMask)
	tile.Next = mesh.m_posLookup[h]
	mesh.m_posLookup[h] = tileIndex

	// Patch header pointers.
	tile.Header = header
	tile.Verts = data.NavVerts
	tile.Polys = data.NavPolys
	tile.PolyMap = data.PolyMap
	tile.Links = data.Links
	tile.DetailMeshes = data.DetailMeshes
	tile.DetailVerts = data.DetailVerts
	tile.DetailTris = data.DetailTris
	tile.BvTree = data.BvTree
	tile.OffMeshCons = data.OffMeshCons
	tile.Cells = data.Cells

	// Rebuild the link free list by scanning the poly link chains.
	// Freshly created tiles have no chains, so every link starts free;
	// tiles restored from disk keep their serialized links (portals,
	// off-mesh and traverse links alike) and only the unused slots are
	// chained back up.
	used := make([]bool, header.MaxLinkCount)
	for i := range tile.Polys {
		for l := tile.Polys[i].FirstLink; l != DT_NULL_LINK; l = tile.Links[l].Next {
			used[l] = true
		}
	}
	tile.LinksFreeList = DT_NULL_LINK
	for i := header.MaxLinkCount - 1; i >= 0; i-- {
		if !used[i] {
			tile.Links[i].Next = tile.LinksFreeList
			tile.LinksFreeList = uint32(i)
		}
	}

	tile.Data = data
	tile.Flags = flags

	mesh.m_tileCount++

	return mesh.GetTileRef(tile), DT_SUCCESS
}

// / Connects the specified tile to the navigation mesh: builds the
// / internal links and the external links to all loaded neighbours.
func (mesh *DtNavMesh) ConnectTile(tileRef DtTileRef) DtStatus {
	tile := mesh.GetTileByRef(tileRef)
	if tile == nil || tile.Header == nil {
		return DT_FAILURE | DT_INVALID_PARAM
	}
	header := tile.Header

	mesh.connectIntLinks(tile)

	neis := make([]*DtMeshTile, 32)

	// Connect with layers in current tile.
	nneis := mesh.GetTilesAt(header.X, header.Y, neis, 32)
	for j := 0; j < nneis; j++ {
		if neis[j] == tile {
			continue
		}

		mesh.connectExtLinks(tile, neis[j], -1)
		mesh.connectExtLinks(neis[j], tile, -1)
	}

	// Connect with neighbour tiles.
	for i := int32(0); i < 8; i++ {
		nneis = mesh.GetNeighbourTilesAt(header.X, header.Y, i, neis, 32)
		for j := 0; j < nneis; j++ {
			mesh.connectExtLinks(tile, neis[j], i)
			mesh.connectExtLinks(neis[j], tile, oppositeTile(i))
		}
	}

	return DT_SUCCESS
}

// / Removes the specified tile from the navigation mesh.
// / The returned data is nil if the tile owned its memory
// / (#DT_TILE_FREE_DATA); otherwise the caller regains ownership.
func (mesh *DtNavMesh) RemoveTile(ref DtTileRef) (data *NavMeshData, status DtStatus) {
	if ref == 0 {
		return nil, DT_FAILURE | DT_INVALID_PARAM
	}
	tileIndex := mesh.DecodePolyIdTile(DtPolyRef(ref))
	tileSalt := mesh.DecodePolyIdSalt(DtPolyRef(ref))
	if int32(tileIndex) >= mesh.m_maxTiles {
		return nil, DT_FAILURE | DT_INVALID_PARAM
	}
	tile := &mesh.m_tiles[tileIndex]
	if tile.Salt != tileSalt {
		return nil, DT_FAILURE | DT_INVALID_PARAM
	}
	if tile.Header == nil {
		return nil, DT_FAILURE | DT_INVALID_PARAM
	}

	// Remove tile from hash lookup.
	h := computeTileHash(tile.Header.X, tile.Header.Y, mesh.m_tileLutMask)
	var prev int32 = -1
	cur := mesh.m_posLookup[h]
	for cur != -1 {
		if cur == int32(tileIndex) {
			if prev != -1 {
				mesh.m_tiles[prev].Next = tile.Next
			} else {
				mesh.m_posLookup[h] = tile.Next
			}
			break
		}
		prev = cur
		cur = mesh.m_tiles[cur].Next
	}

	// Remove connections to neighbour tiles.
	neis := make([]*DtMeshTile, 32)

	// Disconnect from other layers in current tile.
	nneis := mesh.GetTilesAt(tile.Header.X, tile.Header.Y, neis, 32)
	for j := 0; j < nneis; j++ {
		if neis[j] == tile {
			continue
		}
		mesh.unconnectLinks(neis[j], tile)
	}

	// Disconnect from neighbour tiles.
	for i := int32(0); i < 8; i++ {
		nneis = mesh.GetNeighbourTilesAt(tile.Header.X, tile.Header.Y, i, neis, 32)
		for j := 0; j < nneis; j++ {
			mesh.unconnectLinks(neis[j], tile)
		}
	}

	// Reset tile.
	if (tile.Flags & DT_TILE_FREE_DATA) != 0 {
		// Owns data
		tile.Data = nil
		data = nil
	} else {
		data = tile.Data
		tile.Data = nil
	}

	tile.Header = nil
	tile.Flags = 0
	tile.Polys = nil
	tile.PolyMap = nil
	tile.Verts = nil
	tile.Links = nil
	tile.DetailMeshes = nil
	tile.DetailVerts = nil
	tile.DetailTris = nil
	tile.BvTree = nil
	tile.OffMeshCons = nil
	tile.Cells = nil
	tile.LinksFreeList = 0

	// Update salt, salt should never be zero.
	if DT_POLYREF64 == 1 {
		tile.Salt = (tile.Salt + 1) & ((1 << DT_SALT_BITS) - 1)
	} else {
		tile.Salt = (tile.Salt + 1) & ((1 << mesh.m_saltBits) - 1)
	}
	if tile.Salt == 0 {
		tile.Salt++
	}

	// Add to free list.
	tile.Next = mesh.m_nextFree
	mesh.m_nextFree = int32(tileIndex)

	mesh.m_tileCount--

	return data, DT_SUCCESS
}

// / Gets the endpoints for an off-mesh connection, ordered by "direction of travel".
func (mesh *DtNavMesh) GetOffMeshConnectionPolyEndPoints(prevRef, polyRef DtPolyRef, startPos, endPos []float32) DtStatus {
	if polyRef == 0 {
		return DT_FAILURE
	}

	// Get current polygon
	salt, it, ip := mesh.DecodePolyId(polyRef)
	if int32(it) >= mesh.m_maxTiles {
		return DT_FAILURE | DT_INVALID_PARAM
	}
	if mesh.m_tiles[it].Salt != salt || mesh.m_tiles[it].Header == nil {
		return DT_FAILURE | DT_INVALID_PARAM
	}
	tile := &mesh.m_tiles[it]
	if ip >= uint32(tile.Header.PolyCount) {
		return DT_FAILURE | DT_INVALID_PARAM
	}
	poly := &tile.Polys[ip]

	// Make sure that the current poly is indeed off-mesh link.
	if poly.GetType() != DT_POLYTYPE_OFFMESH_CONNECTION {
		return DT_FAILURE
	}

	idx0, idx1 := 0, 1

	// Find link that points to first vertex.
	for i := poly.FirstLink; i != DT_NULL_LINK; i = tile.Links[i].Next {
		if tile.Links[i].Edge == 0 {
			if tile.Links[i].Ref != prevRef {
				idx0 = 1
				idx1 = 0
			}
			break
		}
	}

	common.Vcopy(startPos, tile.Verts[int(poly.Verts[idx0])*3:])
	common.Vcopy(endPos, tile.Verts[int(poly.Verts[idx1])*3:])

	return DT_SUCCESS
}

// / Gets the specified off-mesh connection.
func (mesh *DtNavMesh) GetOffMeshConnectionByRef(ref DtPolyRef) *DtOffMeshConnection {
	if ref == 0 {
		return nil
	}

	// Get current polygon
	salt, it, ip := mesh.DecodePolyId(ref)
	if int32(it) >= mesh.m_maxTiles {
		return nil
	}
	if mesh.m_tiles[it].Salt != salt || mesh.m_tiles[it].Header == nil {
		return nil
	}
	tile := &mesh.m_tiles[it]
	if ip >= uint32(tile.Header.PolyCount) {
		return nil
	}
	poly := &tile.Polys[ip]

	// Make sure that the current poly is indeed off-mesh link.
	if poly.GetType() != DT_POLYTYPE_OFFMESH_CONNECTION {
		return nil
	}

	idx := int(ip) - int(tile.Header.OffMeshBase)
	if idx < 0 || idx >= int(tile.Header.OffMeshConCount) {
		return nil
	}
	return &tile.OffMeshCons[idx]
}

// / @{
// / @name State Management

// / Sets the user defined flags for the specified polygon.
func (mesh *DtNavMesh) SetPolyFlags(ref DtPolyRef, flags uint16) DtStatus {
	_, poly, status := mesh.GetTileAndPolyByRef(ref)
	if status.Failed() {
		return status
	}
	// Change flags.
	poly.Flags = flags
	return DT_SUCCESS
}

// / Gets the user defined flags for the specified polygon.
func (mesh *DtNavMesh) GetPolyFlags(ref DtPolyRef) (uint16, DtStatus) {
	_, poly, status := mesh.GetTileAndPolyByRef(ref)
	if status.Failed() {
		return 0, status
	}
	return poly.Flags, DT_SUCCESS
}

// / Sets the user defined area for the specified polygon.
func (mesh *DtNavMesh) SetPolyArea(ref DtPolyRef, area uint8) DtStatus {
	_, poly, status := mesh.GetTileAndPolyByRef(ref)
	if status.Failed() {
		return status
	}
	poly.SetArea(area)
	return DT_SUCCESS
}

// / Gets the user defined area for the specified polygon.
func (mesh *DtNavMesh) GetPolyArea(ref DtPolyRef) (uint8, DtStatus) {
	_, poly, status := mesh.GetTileAndPolyByRef(ref)
	if status.Failed() {
		return 0, status
	}
	return poly.GetArea(), DT_SUCCESS
}

// / Gets the polygon group count.
func (mesh *DtNavMesh) GetPolyGroupCount() int {
	return int(mesh.m_params.PolyGroupCount)
}

// / Sets the polygon group count.
func (mesh *DtNavMesh) SetPolyGroupCount(count int) {
	mesh.m_params.PolyGroupCount = int32(count)
}

// / @}

// / Allocates the traverse table slots.
func (mesh *DtNavMesh) AllocTraverseTables(count int) bool {
	if count < 0 || count > DT_MAX_TRAVERSE_TABLES {
		return false
	}
	mesh.m_traverseTables = make([][]int32, count)
	return true
}

func (mesh *DtNavMesh) FreeTraverseTables() {
	mesh.m_traverseTables = nil
}

// / The navigation mesh traverse tables.
func (mesh *DtNavMesh) GetTraverseTables() [][]int32 {
	return mesh.m_traverseTables
}

// / Sets the traverse table slot.
func (mesh *DtNavMesh) SetTraverseTable(index int, table []int32) {
	mesh.m_traverseTables[index] = table
}

// / Sets the number of the traverse tables.
func (mesh *DtNavMesh) SetTraverseTableCount(count int) {
	mesh.m_params.TraverseTableCount = int32(count)
}

// / Sets the size of the traverse table.
func (mesh *DtNavMesh) SetTraverseTableSize(size int) {
	mesh.m_params.TraverseTableSize = int32(size)
}

// / Returns whether the goal poly is reachable from the start poly.
// /  @param[in]	fromRef		The reference to the start poly.
// /  @param[in]	goalRef		The reference to the goal poly.
// /  @param[in]	checkDisjointGroupsOnly		Whether to only check disjoint poly groups.
// /  @param[in]	traverseTableIndex	Traverse table to use for checking if islands are linked together.
func (mesh *DtNavMesh) IsGoalPolyReachable(fromRef, goalRef DtPolyRef, checkDisjointGroupsOnly bool, traverseTableIndex int) bool {
	_, fromPoly, status := mesh.GetTileAndPolyByRef(fromRef)
	if status.Failed() {
		return false
	}
	_, goalPoly, status := mesh.GetTileAndPolyByRef(goalRef)
	if status.Failed() {
		return false
	}

	fromGroup := fromPoly.GroupId
	goalGroup := goalPoly.GroupId

	if fromGroup == DT_UNLINKED_POLY_GROUP || goalGroup == DT_UNLINKED_POLY_GROUP {
		return false
	}

	if fromGroup == goalGroup {
		return true
	}

	if checkDisjointGroupsOnly {
		return false
	}

	if traverseTableIndex < 0 || traverseTableIndex >= len(mesh.m_traverseTables) {
		return false
	}
	table := mesh.m_traverseTables[traverseTableIndex]
	if table == nil {
		return false
	}

	numPolyGroups := int(mesh.m_params.PolyGroupCount)
	cellIndex := DtCalcTraverseTableCellIndex(numPolyGroups, fromGroup, goalGroup)
	return (uint32(table[cellIndex]) & common.BitCellBit(int(goalGroup))) != 0
}

//////////////////////////////////////////////////////////////////////////////////////////
// Tile state.

// / Gets the size of the buffer required by StoreTileState to store the
// / specified tile's state.
func (mesh *DtNavMesh) GetTileStateSize(tile *DtMeshTile) int {
	if tile == nil || tile.Header == nil {
		return 0
	}
	const headerSize = 4 * 3 // magic, version, ref
	const polyStateSize = 4  // flags, area (padded)
	return common.Align4(headerSize) + common.Align4(int(tile.Header.PolyCount)*polyStateSize)
}

// / Stores the non-structural state of the tile in the specified buffer.
// / (Flags, area ids, etc.)
func (mesh *DtNavMesh) StoreTileState(tile *DtMeshTile, data []byte, maxDataSize int) DtStatus {
	// Make sure there is enough space to store the state.
	sizeReq := mesh.GetTileStateSize(tile)
	if maxDataSize < sizeReq {
		return DT_FAILURE | DT_BUFFER_TOO_SMALL
	}

	le := func(off int, v uint32) {
		data[off+0] = byte(v)
		data[off+1] = byte(v >> 8)
		data[off+2] = byte(v >> 16)
		data[off+3] = byte(v >> 24)
	}

	le(0, uint32(DT_NAVMESH_STATE_MAGIC))
	le(4, uint32(DT_NAVMESH_STATE_VERSION))
	le(8, uint32(mesh.GetTileRef(tile)))

	// Store poly state.
	off := 12
	for i := 0; i < int(tile.Header.PolyCount); i++ {
		p := &tile.Polys[i]
		le(off, uint32(p.Flags)|uint32(p.AreaAndType)<<16)
		off += 4
	}

	return DT_SUCCESS
}

// / Restores the state of the tile.
func (mesh *DtNavMesh) RestoreTileState(tile *DtMeshTile, data []byte, maxDataSize int) DtStatus {
	// Make sure there is enough space to restore the state.
	sizeReq := mesh.GetTileStateSize(tile)
	if maxDataSize < sizeReq {
		return DT_FAILURE | DT_INVALID_PARAM
	}

	rd := func(off int) uint32 {
		return uint32(data[off]) | uint32(data[off+1])<<8 | uint32(data[off+2])<<16 | uint32(data[off+3])<<24
	}

	// Check that the restore is possible.
	if rd(0) != uint32(DT_NAVMESH_STATE_MAGIC) {
		return DT_FAILURE | DT_WRONG_MAGIC
	}
	if rd(4) != uint32(DT_NAVMESH_STATE_VERSION) {
		return DT_FAILURE | DT_WRONG_VERSION
	}
	if DtTileRef(rd(8)) != mesh.GetTileRef(tile) {
		return DT_FAILURE | DT_INVALID_PARAM
	}

	// Restore poly state.
	off := 12
	for i := 0; i < int(tile.Header.PolyCount); i++ {
		p := &tile.Polys[i]
		v := rd(off)
		off += 4
		p.Flags = uint16(v)
		p.AreaAndType = uint8(v >> 16)
	}

	return DT_SUCCESS
}
