package detour

import (
	"bytes"
	"testing"
)

// Builds a minimal one-poly tile payload through the tile builder.
func buildTestTileData(t *testing.T, tx, ty int32) *NavMeshData {
	t.Helper()

	// One square polygon, 4 verts, in voxel units.
	verts := []uint16{
		0, 0, 2,
		20, 0, 2,
		20, 20, 2,
		0, 20, 2,
	}
	// One poly: verts 0..3, all edges hard.
	polys := []uint16{
		0, 1, 2, 3, MESH_NULL_IDX, MESH_NULL_IDX,
		MESH_NULL_IDX, MESH_NULL_IDX, MESH_NULL_IDX, MESH_NULL_IDX, MESH_NULL_IDX, MESH_NULL_IDX,
	}

	params := &DtNavMeshCreateParams{
		Verts:          verts,
		VertCount:      4,
		Polys:          polys,
		PolyFlags:      []uint16{DT_POLYFLAGS_WALK},
		PolyAreas:      []uint8{DT_POLYAREA_GROUND},
		SurfAreas:      []uint16{100},
		PolyCount:      1,
		Nvp:            6,
		CellResolution: 4,
		TileX:          tx,
		TileY:          ty,
		Bmin:           [3]float32{0, 0, 0},
		Bmax:           [3]float32{10, 10, 4},
		WalkableHeight: 4,
		WalkableRadius: 1,
		WalkableClimb:  1,
		Cs:             0.5,
		Ch:             0.5,
		BuildBvTree:    true,
	}

	data, ok := DtCreateNavMeshData(params)
	if !ok {
		t.Fatalf("DtCreateNavMeshData failed")
	}
	return data
}

func TestCreateNavMeshData(t *testing.T) {
	data := buildTestTileData(t, 0, 0)

	assertTrue(t, data.Header.PolyCount == 1, "One polygon")
	assertTrue(t, data.Header.VertCount == 4, "Four vertices")
	assertTrue(t, data.Header.MaxLinkCount > 0, "Links allocated")
	assertTrue(t, data.Header.BvNodeCount > 0, "BV tree built")
	assertTrue(t, data.Header.MaxCellCount > 0, "Cells sampled")
	assertTrue(t, data.NavPolys[0].FirstLink == DT_NULL_LINK, "Fresh tile has no link chains")
	assertTrue(t, data.NavPolys[0].VertCount == 4, "Poly vert count")

	// Poly center sits in the middle of the quad.
	center := data.NavPolys[0].Center
	assertTrue(t, center[0] == 5 && center[1] == 5, "Poly center")

	// Cells land on the polygon.
	for i := range data.Cells {
		assertTrue(t, data.Cells[i].PolyIndex == 0, "Cell poly index")
		p := data.Cells[i].Pos
		assertTrue(t, p[0] > 0 && p[0] < 10 && p[1] > 0 && p[1] < 10, "Cell inside the quad")
	}
}

func TestTileBlobRoundTrip(t *testing.T) {
	data := buildTestTileData(t, 3, 7)

	blob := data.ToBin()
	assertTrue(t, len(blob)%4 == 0, "Blob is 4-byte aligned")

	var back NavMeshData
	if err := back.FromBin(blob); err != nil {
		t.Fatalf("FromBin failed: %v", err)
	}

	// Re-serializing the decoded payload gives the identical blob.
	blob2 := back.ToBin()
	assertTrue(t, bytes.Equal(blob, blob2), "Round trip is byte identical")

	assertTrue(t, back.Header.X == 3 && back.Header.Y == 7, "Tile grid location survives")
	assertTrue(t, len(back.NavPolys) == 1, "Polygons survive")
	assertTrue(t, len(back.NavVerts) == len(data.NavVerts), "Vertices survive")
	assertTrue(t, len(back.Cells) == len(data.Cells), "Cells survive")
	assertTrue(t, back.NavPolys[0].Verts == data.NavPolys[0].Verts, "Poly vert indices survive")
}

func TestTileBlobRejectsCorruption(t *testing.T) {
	data := buildTestTileData(t, 0, 0)
	blob := data.ToBin()

	// Wrong magic.
	bad := append([]byte(nil), blob...)
	bad[0] ^= 0xff
	var back NavMeshData
	assertTrue(t, back.FromBin(bad) == ErrWrongMagic, "Wrong magic is rejected")

	// Wrong version.
	bad = append([]byte(nil), blob...)
	bad[4] ^= 0xff
	assertTrue(t, back.FromBin(bad) == ErrWrongVersion, "Wrong version is rejected")

	// Truncated data.
	assertTrue(t, back.FromBin(blob[:len(blob)/2]) == ErrTruncated, "Truncated data is rejected")
}

func TestAddRemoveTile(t *testing.T) {
	params := &NavMeshParams{
		Orig:       [3]float32{10, 0, 0}, // Grid max x; runs towards -x.
		TileWidth:  10,
		TileHeight: 10,
		MaxTiles:   8,
		MaxPolys:   128,
	}
	mesh, status := NewDtNavMesh(params)
	assertTrue(t, status.Succeed(), "Init")

	data := buildTestTileData(t, 0, 0)
	ref, status := mesh.AddTile(data, 0, 0)
	assertTrue(t, status.Succeed(), "Add tile")
	assertTrue(t, mesh.GetTileCount() == 1, "One tile")

	// Adding over the same grid slot fails with already-occupied.
	dup := buildTestTileData(t, 0, 0)
	_, status = mesh.AddTile(dup, 0, 0)
	assertTrue(t, status.Failed() && status.Detail(DT_ALREADY_OCCUPIED), "Occupied slot is rejected")

	tile := mesh.GetTileByRef(ref)
	assertTrue(t, tile != nil, "Tile resolves by ref")
	saltBefore := tile.Salt

	// Removing hands the data back when the mesh does not own it.
	out, status := mesh.RemoveTile(ref)
	assertTrue(t, status.Succeed(), "Remove tile")
	assertTrue(t, out == data, "Caller regains data ownership")
	assertTrue(t, mesh.GetTileCount() == 0, "No tiles left")

	// The old ref now faults: the salt was bumped.
	assertTrue(t, mesh.GetTileByRef(ref) == nil, "Dangling ref faults")

	// Adding back with lastRef restores the same slot and salt.
	ref2, status := mesh.AddTile(data, 0, ref)
	assertTrue(t, status.Succeed(), "Re-add tile with lastRef")
	assertTrue(t, ref2 == ref, "Slot and salt restored")
	tile = mesh.GetTileByRef(ref2)
	assertTrue(t, tile != nil && tile.Salt == saltBefore, "Salt restored from ref")
}

func TestConnectTilesAcrossBorder(t *testing.T) {
	// Two one-poly tiles side by side on the x axis; their shared edges
	// are portal edges, so connecting them must create links both ways.
	params := &NavMeshParams{
		Orig:       [3]float32{20, 0, 0},
		TileWidth:  10,
		TileHeight: 10,
		MaxTiles:   8,
		MaxPolys:   128,
	}
	mesh, status := NewDtNavMesh(params)
	assertTrue(t, status.Succeed(), "Init")

	// Tile (0,0) covers world x [10..20]; tile (1,0) covers [0..10].
	mkTile := func(tx int32, bminX float32, westPortal, eastPortal bool) *NavMeshData {
		verts := []uint16{
			0, 0, 2,
			20, 0, 2,
			20, 20, 2,
			0, 20, 2,
		}
		nei := func(portal bool, side uint16) uint16 {
			if portal {
				return 0x8000 | side
			}
			return MESH_NULL_IDX
		}
		// Edges: v0-v1 (south), v1-v2 (east, +x), v2-v3 (north), v3-v0 (west, -x).
		polys := []uint16{
			0, 1, 2, 3, MESH_NULL_IDX, MESH_NULL_IDX,
			MESH_NULL_IDX, nei(eastPortal, 4), MESH_NULL_IDX, nei(westPortal, 0), MESH_NULL_IDX, MESH_NULL_IDX,
		}
		p := &DtNavMeshCreateParams{
			Verts:          verts,
			VertCount:      4,
			Polys:          polys,
			PolyFlags:      []uint16{DT_POLYFLAGS_WALK},
			PolyAreas:      []uint8{DT_POLYAREA_GROUND},
			SurfAreas:      []uint16{100},
			PolyCount:      1,
			Nvp:            6,
			TileX:          tx,
			TileY:          0,
			Bmin:           [3]float32{bminX, 0, 0},
			Bmax:           [3]float32{bminX + 10, 10, 4},
			WalkableHeight: 4,
			WalkableRadius: 1,
			WalkableClimb:  1,
			Cs:             0.5,
			Ch:             0.5,
			BuildBvTree:    true,
		}
		data, ok := DtCreateNavMeshData(p)
		if !ok {
			t.Fatalf("DtCreateNavMeshData failed")
		}
		return data
	}

	// Tiles are connected right after they are added, the way the
	// builder drives it; connecting B links both sides.
	// Tile 0 at x [10..20]: its west edge (world -x, side 0) abuts tile 1.
	refA, status := mesh.AddTile(mkTile(0, 10, true, false), DT_TILE_FREE_DATA, 0)
	assertTrue(t, status.Succeed(), "Add tile A")
	assertTrue(t, mesh.ConnectTile(refA).Succeed(), "Connect tile A")

	// Tile 1 at x [0..10]: its east edge (world +x, side 4) abuts tile 0.
	refB, status := mesh.AddTile(mkTile(1, 0, false, true), DT_TILE_FREE_DATA, 0)
	assertTrue(t, status.Succeed(), "Add tile B")
	assertTrue(t, mesh.ConnectTile(refB).Succeed(), "Connect tile B")

	countLinks := func(ref DtTileRef) int {
		tile := mesh.GetTileByRef(ref)
		n := 0
		for i := range tile.Polys {
			for l := tile.Polys[i].FirstLink; l != DT_NULL_LINK; l = tile.Links[l].Next {
				n++
			}
		}
		return n
	}

	assertTrue(t, countLinks(refA) == 1, "Tile A links to B")
	assertTrue(t, countLinks(refB) == 1, "Tile B links to A")

	tileA := mesh.GetTileByRef(refA)
	link := &tileA.Links[tileA.Polys[0].FirstLink]
	assertTrue(t, link.Side == 0, "Portal link crosses side 0")
	_, _, ip := mesh.DecodePolyId(link.Ref)
	assertTrue(t, ip == 0, "Portal link targets B's polygon")
	assertTrue(t, link.TraverseType == DT_NULL_TRAVERSE_TYPE, "Portal links carry no traverse type")
}
