package builder

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ttvmkos/r5nav/common"
	"github.com/ttvmkos/r5nav/detour"
	"github.com/ttvmkos/r5nav/hulls"
	"github.com/ttvmkos/r5nav/logger"
	"github.com/ttvmkos/r5nav/recast"
)

func assertTrue(t *testing.T, value bool, msg string) {
	t.Helper()
	if !value {
		t.Errorf(msg)
	}
}

func testContext() *recast.BuildContext {
	ctx := recast.NewBuildContext(logger.Nop())
	ctx.EnableLog(false)
	return ctx
}

// Appends an axis-aligned quad at height z, wound so its normal points up.
func appendQuad(verts []float32, tris []int, x0, y0, x1, y1, z float32) ([]float32, []int) {
	base := len(verts) / 3
	verts = append(verts,
		x0, y0, z,
		x1, y0, z,
		x1, y1, z,
		x0, y1, z,
	)
	tris = append(tris, base, base+1, base+2, base, base+2, base+3)
	return verts, tris
}

func testSettings() BuildSettings {
	return BuildSettings{
		CellSize:                     0.5,
		CellHeight:                   0.5,
		AgentHeight:                  4,
		AgentRadius:                  1,
		AgentMaxClimb:                1,
		AgentMaxSlope:                45,
		TileSize:                     128,
		RegionMinSize:                4,
		RegionMergeSize:              20,
		EdgeMaxLen:                   4,
		EdgeMaxError:                 1.3,
		VertsPerPoly:                 6,
		PolyCellRes:                  4,
		DetailSampleDist:             6,
		DetailSampleMaxError:         1,
		PartitionType:                PartitionWatershed,
		FilterLowHangingObstacles:    true,
		FilterLedgeSpans:             true,
		FilterWalkableLowHeightSpans: true,
	}
}

func buildNavMesh(t *testing.T, verts []float32, tris []int) *Builder {
	t.Helper()

	geom, err := NewInputGeom(verts, tris)
	if err != nil {
		t.Fatalf("NewInputGeom: %v", err)
	}

	b, err := NewBuilder(geom, testSettings(), hulls.NAVMESH_SMALL, testContext())
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	if err := b.Build(context.Background()); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if b.NavMesh() == nil || b.NavMesh().GetTileCount() == 0 {
		t.Fatalf("build produced no tiles")
	}
	return b
}

// Finds the ground polygon whose footprint contains the given xy position.
func findPolyAt(mesh *detour.DtNavMesh, x, y float32) (detour.DtPolyRef, *detour.DtPoly) {
	pt := []float32{x, y, 0}
	pverts := make([]float32, detour.DT_VERTS_PER_POLYGON*3)

	for i := 0; i < mesh.GetMaxTiles(); i++ {
		tile := mesh.GetTile(i)
		if tile.Header == nil {
			continue
		}
		base := mesh.GetPolyRefBase(tile)
		for j := 0; j < int(tile.Header.PolyCount); j++ {
			poly := &tile.Polys[j]
			if poly.GetType() != detour.DT_POLYTYPE_GROUND {
				continue
			}
			for k := 0; k < int(poly.VertCount); k++ {
				common.Vcopy(pverts[k*3:], tile.Verts[int(poly.Verts[k])*3:])
			}
			if common.PointInPolygon(pt, pverts, int(poly.VertCount)) {
				return base | detour.DtPolyRef(j), poly
			}
		}
	}
	return 0, nil
}

type traverseLinkInfo struct {
	tile *detour.DtMeshTile
	link *detour.DtLink
	poly *detour.DtPoly
}

func collectTraverseLinks(mesh *detour.DtNavMesh) []traverseLinkInfo {
	var out []traverseLinkInfo
	for i := 0; i < mesh.GetMaxTiles(); i++ {
		tile := mesh.GetTile(i)
		if tile.Header == nil {
			continue
		}
		for j := 0; j < int(tile.Header.PolyCount); j++ {
			poly := &tile.Polys[j]
			for l := poly.FirstLink; l != detour.DT_NULL_LINK; l = tile.Links[l].Next {
				link := &tile.Links[l]
				if link.HasTraverseType() {
					out = append(out, traverseLinkInfo{tile: tile, link: link, poly: poly})
				}
			}
		}
	}
	return out
}

// Two unit quads separated by a 20 wu gap produce one pair of traverse
// links classified as the small gap crossing.
func TestBuildTwoQuadsGapLink(t *testing.T) {
	var verts []float32
	var tris []int
	verts, tris = appendQuad(verts, tris, 0, 0, 10, 10, 0)
	verts, tris = appendQuad(verts, tris, 30, 0, 40, 10, 0)

	b := buildNavMesh(t, verts, tris)
	mesh := b.NavMesh()

	refA, polyA := findPolyAt(mesh, 5, 5)
	refB, polyB := findPolyAt(mesh, 35, 5)
	assertTrue(t, refA != 0, "Quad A produced a polygon")
	assertTrue(t, refB != 0, "Quad B produced a polygon")

	links := collectTraverseLinks(mesh)
	assertTrue(t, len(links) >= 2 && len(links)%2 == 0, "Traverse links come in pairs")

	for _, li := range links {
		assertTrue(t, li.link.GetTraverseType() == uint8(hulls.TRAVERSE_CROSS_GAP_SMALL), "Link classifies as small gap crossing")
		assertTrue(t, li.link.TraverseDist == 2, "20 wu gap quantizes to 2")

		// Reverse link invariant: following it yields a link pointing back
		// at the owning polygon with the same traverse type.
		assertTrue(t, li.link.ReverseLink != detour.DT_NULL_TRAVERSE_REVERSE_LINK, "Traverse links are paired")
		targetTile, _ := mesh.GetTileAndPolyByRefUnsafe(li.link.Ref)
		rev := &targetTile.Links[li.link.ReverseLink]
		assertTrue(t, rev.TraverseType == li.link.TraverseType, "Reverse link shares the traverse type")
		_, _, ip := mesh.DecodePolyId(rev.Ref)
		assertTrue(t, &li.tile.Polys[ip] == li.poly, "Reverse link points back at the owning polygon")
	}

	// The pair map records the installed type for every linked pair.
	assertTrue(t, len(b.TraverseLinkPolyMap()) > 0, "Pair map holds the linked pairs")
	for _, bits := range b.TraverseLinkPolyMap() {
		assertTrue(t, bits&common.BitCellBit(int(hulls.TRAVERSE_CROSS_GAP_SMALL)) != 0, "Pair map records the type bit")
	}

	// Both islands collapse into one reachable group for the human anim.
	assertTrue(t, polyA.GroupId >= detour.DT_FIRST_USABLE_POLY_GROUP, "Quad A has a usable group")
	assertTrue(t, polyB.GroupId >= detour.DT_FIRST_USABLE_POLY_GROUP, "Quad B has a usable group")
	assertTrue(t, mesh.IsGoalPolyReachable(refA, refB, false, int(hulls.ANIMTYPE_HUMAN)), "Linked islands are reachable")
}

// A 2 wu gap quantizes to 0 and is rejected: the islands stay apart.
func TestBuildTinyGapRejected(t *testing.T) {
	var verts []float32
	var tris []int
	verts, tris = appendQuad(verts, tris, 0, 0, 10, 10, 0)
	verts, tris = appendQuad(verts, tris, 12, 0, 22, 10, 0)

	b := buildNavMesh(t, verts, tris)
	mesh := b.NavMesh()

	// The erosion widens the 2 wu gap, but the quantized distance still
	// rounds below the smallest catalogue window.
	links := collectTraverseLinks(mesh)
	assertTrue(t, len(links) == 0, "A sub-quantum gap produces no links")

	refA, _ := findPolyAt(mesh, 5, 5)
	refB, _ := findPolyAt(mesh, 17, 5)
	if refA != 0 && refB != 0 {
		assertTrue(t, !mesh.IsGoalPolyReachable(refA, refB, true, 0), "Unlinked islands are disjoint")
	}
}

// A 36 wu step-up classifies as the small object climb.
func TestBuildStepUpClimbLink(t *testing.T) {
	var verts []float32
	var tris []int
	verts, tris = appendQuad(verts, tris, 0, 0, 10, 10, 0)
	verts, tris = appendQuad(verts, tris, 47, 0, 57, 10, 36)

	b := buildNavMesh(t, verts, tris)
	mesh := b.NavMesh()

	links := collectTraverseLinks(mesh)
	assertTrue(t, len(links) >= 2 && len(links)%2 == 0, "Traverse links come in pairs")
	for _, li := range links {
		assertTrue(t, li.link.GetTraverseType() == uint8(hulls.TRAVERSE_CLIMB_OBJECT_SMALL), "Step-up classifies as small object climb")
	}
}

// A ledge overhanging the lower mesh is rejected by the face-against
// test: jumping from below would clip through the geometry.
func TestBuildOverhangRejected(t *testing.T) {
	var verts []float32
	var tris []int
	verts, tris = appendQuad(verts, tris, 0, 0, 10, 10, 0)
	verts, tris = appendQuad(verts, tris, 2, 0, 12, 10, 36)

	b := buildNavMesh(t, verts, tris)
	mesh := b.NavMesh()

	links := collectTraverseLinks(mesh)
	assertTrue(t, len(links) == 0, "Overhang produces no links")

	// The footprints overlap; probe where only one layer exists.
	refA, _ := findPolyAt(mesh, 1.5, 5)
	refB, _ := findPolyAt(mesh, 10.5, 5)
	assertTrue(t, refA != 0 && refB != 0, "Both layers produced polygons")
	assertTrue(t, !mesh.IsGoalPolyReachable(refA, refB, false, int(hulls.ANIMTYPE_HUMAN)), "Overhang islands stay apart")
}

// With every small-hull anim mask zeroed the islands keep distinct
// groups; restoring the masks reconnects them.
func TestAnimMaskGatesReachability(t *testing.T) {
	var verts []float32
	var tris []int
	verts, tris = appendQuad(verts, tris, 0, 0, 10, 10, 0)
	verts, tris = appendQuad(verts, tris, 30, 0, 40, 10, 0)

	var saved [hulls.ANIMTYPE_COUNT]uint32
	copy(saved[:], hulls.AnimTraverseFlags[:])
	for i := hulls.ANIMTYPE_HUMAN; i <= hulls.ANIMTYPE_PILOT; i++ {
		hulls.AnimTraverseFlags[i] = 0
	}
	defer copy(hulls.AnimTraverseFlags[:], saved[:])

	b := buildNavMesh(t, verts, tris)
	mesh := b.NavMesh()

	refA, polyA := findPolyAt(mesh, 5, 5)
	refB, polyB := findPolyAt(mesh, 35, 5)
	assertTrue(t, refA != 0 && refB != 0, "Both quads produced polygons")
	assertTrue(t, polyA.GroupId != polyB.GroupId, "No permitted jump keeps the groups distinct")
	assertTrue(t, !mesh.IsGoalPolyReachable(refA, refB, false, int(hulls.ANIMTYPE_HUMAN)), "Unreachable without a permitted jump")

	// Restore the masks and rebuild: one group, reachable.
	copy(hulls.AnimTraverseFlags[:], saved[:])

	b = buildNavMesh(t, verts, tris)
	mesh = b.NavMesh()
	refA, polyA = findPolyAt(mesh, 5, 5)
	refB, polyB = findPolyAt(mesh, 35, 5)
	assertTrue(t, polyA.GroupId == polyB.GroupId, "Permitted jump merges the groups")
	assertTrue(t, mesh.IsGoalPolyReachable(refA, refB, false, int(hulls.ANIMTYPE_HUMAN)), "Reachable with the jump enabled")
}

// Traverse tables are symmetric.
func TestTraverseTableSymmetry(t *testing.T) {
	var verts []float32
	var tris []int
	verts, tris = appendQuad(verts, tris, 0, 0, 10, 10, 0)
	verts, tris = appendQuad(verts, tris, 30, 0, 40, 10, 0)

	b := buildNavMesh(t, verts, tris)
	mesh := b.NavMesh()

	groups := mesh.GetPolyGroupCount()
	for _, table := range mesh.GetTraverseTables() {
		for g1 := 0; g1 < groups; g1++ {
			for g2 := 0; g2 < groups; g2++ {
				c12 := detour.DtCalcTraverseTableCellIndex(groups, uint16(g1), uint16(g2))
				c21 := detour.DtCalcTraverseTableCellIndex(groups, uint16(g2), uint16(g1))
				b12 := uint32(table[c12])&common.BitCellBit(g2) != 0
				b21 := uint32(table[c21])&common.BitCellBit(g1) != 0
				if b12 != b21 {
					t.Fatalf("table asymmetry at (%d,%d)", g1, g2)
				}
			}
		}
	}
}

// Off-mesh connections ground their endpoints and materialise as jump
// polygons.
func TestOffMeshConnectionLinking(t *testing.T) {
	var verts []float32
	var tris []int
	verts, tris = appendQuad(verts, tris, 0, 0, 10, 10, 0)
	verts, tris = appendQuad(verts, tris, 30, 0, 40, 10, 0)

	geom, err := NewInputGeom(verts, tris)
	if err != nil {
		t.Fatalf("NewInputGeom: %v", err)
	}
	ok := geom.AddOffMeshConnection(
		[]float32{5, 5, 0}, []float32{35, 5, 0}, 2,
		detour.DT_OFFMESH_CON_BIDIR, detour.DT_POLYAREA_JUMP, detour.DT_POLYFLAGS_JUMP,
		uint8(hulls.TRAVERSE_JUMP_SHORT), 0, 42)
	assertTrue(t, ok, "Connection added")

	b, err := NewBuilder(geom, testSettings(), hulls.NAVMESH_SMALL, testContext())
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	if err := b.Build(context.Background()); err != nil {
		t.Fatalf("Build: %v", err)
	}
	mesh := b.NavMesh()

	// Find the off-mesh polygon.
	var conPoly *detour.DtPoly
	var conTile *detour.DtMeshTile
	for i := 0; i < mesh.GetMaxTiles(); i++ {
		tile := mesh.GetTile(i)
		if tile.Header == nil {
			continue
		}
		for j := 0; j < int(tile.Header.PolyCount); j++ {
			if tile.Polys[j].GetType() == detour.DT_POLYTYPE_OFFMESH_CONNECTION {
				conPoly = &tile.Polys[j]
				conTile = tile
			}
		}
	}
	if conPoly == nil {
		t.Fatalf("no off-mesh connection polygon")
	}

	assertTrue(t, conPoly.Flags&detour.DT_POLYFLAGS_JUMP != 0, "Connection polygon carries the jump flag")
	assertTrue(t, conPoly.Flags&detour.DT_POLYFLAGS_JUMP_LINKED != 0, "Grounded endpoints set the jump-linked flag")
	assertTrue(t, conPoly.FirstLink != detour.DT_NULL_LINK, "Connection polygon links out")

	con := &conTile.OffMeshCons[0]
	assertTrue(t, con.UserId == 42, "User id carries over")
	assertTrue(t, con.GetTraverseType() == uint8(hulls.TRAVERSE_JUMP_SHORT), "Jump type carries over")

	// The ref position sits 35 wu from the start towards the end.
	d := common.Vdist2D(con.RefPos[:], con.Pos[0:3])
	assertTrue(t, common.Fabsf(d-detour.DT_OFFMESH_CON_REFPOS_OFFSET) < 0.01, "Ref pos offset")

	// The endpoints connect the two islands.
	refA, _ := findPolyAt(mesh, 5, 5)
	refB, _ := findPolyAt(mesh, 35, 5)
	assertTrue(t, mesh.IsGoalPolyReachable(refA, refB, true, 0), "Off-mesh link joins the islands")
}

// Removing the tile drops its traverse links; rebuilding restores them.
func TestTileRemoveRebuildRoundTrip(t *testing.T) {
	var verts []float32
	var tris []int
	verts, tris = appendQuad(verts, tris, 0, 0, 10, 10, 0)
	verts, tris = appendQuad(verts, tris, 30, 0, 40, 10, 0)

	b := buildNavMesh(t, verts, tris)
	mesh := b.NavMesh()

	before := len(collectTraverseLinks(mesh))
	assertTrue(t, before >= 2 && before%2 == 0, "Initial traverse link pairs")

	pos := []float32{5, 5, 0}
	if err := b.RemoveTile(pos); err != nil {
		t.Fatalf("RemoveTile: %v", err)
	}
	assertTrue(t, len(collectTraverseLinks(mesh)) == 0, "Removed tile drops its links")
	assertTrue(t, len(b.TraverseLinkPolyMap()) == 0, "Pair map pruned")

	if err := b.BuildTile(pos); err != nil {
		t.Fatalf("BuildTile: %v", err)
	}
	assertTrue(t, len(collectTraverseLinks(mesh)) == before, "Rebuilt tile restores its links")

	refA, _ := findPolyAt(mesh, 5, 5)
	refB, _ := findPolyAt(mesh, 35, 5)
	assertTrue(t, mesh.IsGoalPolyReachable(refA, refB, false, int(hulls.ANIMTYPE_HUMAN)), "Reachability restored")
}

// save(navmesh); load(path) == navmesh, modulo link free-list ordering.
func TestSaveLoadRoundTrip(t *testing.T) {
	var verts []float32
	var tris []int
	verts, tris = appendQuad(verts, tris, 0, 0, 10, 10, 0)
	verts, tris = appendQuad(verts, tris, 30, 0, 40, 10, 0)

	b := buildNavMesh(t, verts, tris)
	mesh := b.NavMesh()

	path := filepath.Join(t.TempDir(), "unit_test_small.nm")
	if err := detour.SaveNavMesh(path, mesh); err != nil {
		t.Fatalf("SaveNavMesh: %v", err)
	}

	loaded, err := detour.LoadNavMesh(path)
	if err != nil {
		t.Fatalf("LoadNavMesh: %v", err)
	}

	assertTrue(t, loaded.GetTileCount() == mesh.GetTileCount(), "Tile count survives")
	assertTrue(t, loaded.GetPolyGroupCount() == mesh.GetPolyGroupCount(), "Group count survives")
	assertTrue(t, len(loaded.GetTraverseTables()) == len(mesh.GetTraverseTables()), "Table count survives")

	for i, table := range mesh.GetTraverseTables() {
		lt := loaded.GetTraverseTables()[i]
		assertTrue(t, len(lt) == len(table), "Table size survives")
		for j := range table {
			if lt[j] != table[j] {
				t.Fatalf("table %d cell %d differs", i, j)
			}
		}
	}

	// Group labels and traverse links survive the round trip.
	assertTrue(t, len(collectTraverseLinks(loaded)) == len(collectTraverseLinks(mesh)), "Traverse links survive")

	refA, _ := findPolyAt(loaded, 5, 5)
	refB, _ := findPolyAt(loaded, 35, 5)
	assertTrue(t, loaded.IsGoalPolyReachable(refA, refB, false, int(hulls.ANIMTYPE_HUMAN)), "Reachability survives")

	// Corrupting the magic or version aborts the load.
	data, _ := os.ReadFile(path)
	bad := append([]byte(nil), data...)
	bad[0] ^= 0xff
	_, err = detour.LoadNavMeshFromBytes(bad)
	assertTrue(t, err == detour.ErrWrongMagic, "Bad magic aborts the load")

	bad = append([]byte(nil), data...)
	bad[4] ^= 0xff
	_, err = detour.LoadNavMeshFromBytes(bad)
	assertTrue(t, err == detour.ErrWrongVersion, "Bad version aborts the load")

	_, err = detour.LoadNavMeshFromBytes(data[:len(data)/3])
	assertTrue(t, err != nil, "Truncated set aborts the load")
}

// Building the same input twice yields identical blobs and tables.
func TestDeterministicBuild(t *testing.T) {
	var verts []float32
	var tris []int
	verts, tris = appendQuad(verts, tris, 0, 0, 10, 10, 0)
	verts, tris = appendQuad(verts, tris, 30, 0, 40, 10, 0)

	b1 := buildNavMesh(t, verts, tris)
	b2 := buildNavMesh(t, verts, tris)

	blob1 := b1.NavMesh().SaveToBytes()
	blob2 := b2.NavMesh().SaveToBytes()
	assertTrue(t, bytes.Equal(blob1, blob2), "Identical inputs build identical sets")
}

// Hot swap reloads every hull file present on disk and reports the
// missing ones, leaving the others queryable.
func TestHotSwapMissingHull(t *testing.T) {
	var verts []float32
	var tris []int
	verts, tris = appendQuad(verts, tris, 0, 0, 10, 10, 0)
	verts, tris = appendQuad(verts, tris, 30, 0, 40, 10, 0)

	b := buildNavMesh(t, verts, tris)

	dir := t.TempDir()
	set := NewNavMeshSet(dir, "unit_test", nil)

	// Write a set file for every hull.
	for i := hulls.NavMeshType(0); i < hulls.NAVMESH_COUNT; i++ {
		if err := detour.SaveNavMesh(set.FilePath(i), b.NavMesh()); err != nil {
			t.Fatalf("SaveNavMesh: %v", err)
		}
	}

	set.LevelInit()
	assertTrue(t, set.IsLoaded(), "All hulls loaded")

	// Delete the medium hull file and hot swap.
	if err := os.Remove(set.FilePath(hulls.NAVMESH_MEDIUM)); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	var reattached int
	err := set.HotSwap(func(ht hulls.NavMeshType, mesh *detour.DtNavMesh) {
		reattached++
		if ht == hulls.NAVMESH_MEDIUM {
			assertTrue(t, mesh == nil, "Missing hull stays empty")
		} else {
			assertTrue(t, mesh != nil, "Present hulls reload")
		}
	})
	assertTrue(t, err != nil, "Hot swap reports the missing hull")
	assertTrue(t, reattached == int(hulls.NAVMESH_COUNT), "Every slot is reattached")

	assertTrue(t, set.GetNavMeshByType(hulls.NAVMESH_MEDIUM) == nil, "Medium slot is empty")
	assertTrue(t, set.GetNavMeshByType(hulls.NAVMESH_SMALL) != nil, "Small slot reloaded")

	// The reloaded meshes stay queryable.
	small := set.GetNavMeshByType(hulls.NAVMESH_SMALL)
	refA, _ := findPolyAt(small, 5, 5)
	refB, _ := findPolyAt(small, 35, 5)
	assertTrue(t, small.IsGoalPolyReachable(refA, refB, false, int(hulls.ANIMTYPE_HUMAN)), "Reloaded mesh answers reachability")
}

// Cooperative cancellation stops the build between tiles.
func TestBuildCancellation(t *testing.T) {
	var verts []float32
	var tris []int
	verts, tris = appendQuad(verts, tris, 0, 0, 10, 10, 0)

	geom, err := NewInputGeom(verts, tris)
	if err != nil {
		t.Fatalf("NewInputGeom: %v", err)
	}
	b, err := NewBuilder(geom, testSettings(), hulls.NAVMESH_SMALL, testContext())
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	assertTrue(t, b.Build(cancelled) != nil, "Cancelled context aborts the build")
}

func TestRaycastMesh(t *testing.T) {
	var verts []float32
	var tris []int
	// A vertical wall: quad in the xz plane at y=5.
	base := len(verts) / 3
	verts = append(verts,
		0, 5, 0,
		10, 5, 0,
		10, 5, 10,
		0, 5, 10,
	)
	tris = append(tris, base, base+1, base+2, base, base+2, base+3)

	geom, err := NewInputGeom(verts, tris)
	if err != nil {
		t.Fatalf("NewInputGeom: %v", err)
	}

	assertTrue(t, geom.RaycastMesh([]float32{5, 0, 5}, []float32{5, 10, 5}), "Segment through the wall hits")
	assertTrue(t, !geom.RaycastMesh([]float32{5, 0, 15}, []float32{5, 10, 15}), "Segment above the wall misses")
	assertTrue(t, !geom.RaycastMesh([]float32{20, 0, 5}, []float32{20, 10, 5}), "Segment beside the wall misses")
}
