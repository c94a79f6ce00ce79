package detour

import (
	"testing"
)

func assertTrue(t *testing.T, value bool, msg string) {
	t.Helper()
	if !value {
		t.Errorf(msg)
	}
}

func TestStatus(t *testing.T) {
	s := DT_FAILURE | DT_WRONG_MAGIC
	assertTrue(t, s.Failed(), "Failure bit composes")
	assertTrue(t, s.Detail(DT_WRONG_MAGIC), "Detail bit composes")
	assertTrue(t, !s.Succeed(), "Failure is not success")
	assertTrue(t, DT_SUCCESS.Succeed(), "Success")
}

func TestPolyRefEncodeDecode(t *testing.T) {
	params := &NavMeshParams{
		TileWidth:  64,
		TileHeight: 64,
		MaxTiles:   64,
		MaxPolys:   1024,
	}
	mesh, status := NewDtNavMesh(params)
	assertTrue(t, status.Succeed(), "Init succeeds")

	ref := mesh.EncodePolyId(7, 33, 1001)
	salt, it, ip := mesh.DecodePolyId(ref)
	assertTrue(t, salt == 7, "Salt roundtrips")
	assertTrue(t, it == 33, "Tile index roundtrips")
	assertTrue(t, ip == 1001, "Poly index roundtrips")

	assertTrue(t, mesh.DecodePolyIdSalt(ref) == 7, "Salt accessor")
	assertTrue(t, mesh.DecodePolyIdTile(ref) == 33, "Tile accessor")
	assertTrue(t, mesh.DecodePolyIdPoly(ref) == 1001, "Poly accessor")
}

func TestInitRejectsBadBitBudget(t *testing.T) {
	// tileBits + polyBits may not exceed 31.
	params := &NavMeshParams{
		TileWidth:  64,
		TileHeight: 64,
		MaxTiles:   1 << 20,
		MaxPolys:   1 << 20,
	}
	_, status := NewDtNavMesh(params)
	assertTrue(t, status.Failed(), "Oversized bit budget is rejected")
	assertTrue(t, status.Detail(DT_INVALID_PARAM), "Rejected as invalid param")

	_, status = NewDtNavMesh(&NavMeshParams{TileWidth: 64, TileHeight: 64})
	assertTrue(t, status.Failed(), "Zero tiles is rejected")
}

func TestQuantLinkDistance(t *testing.T) {
	assertTrue(t, DtQuantLinkDistance(0) == 0, "Zero distance quantizes to zero")
	assertTrue(t, DtQuantLinkDistance(20) == 2, "20 wu quantizes to 2")
	assertTrue(t, DtQuantLinkDistance(2) == 0, "Tiny distance quantizes to zero")
	assertTrue(t, DtQuantLinkDistance(DT_TRAVERSE_DIST_MAX) == 255, "Max distance quantizes to the largest byte")
	assertTrue(t, DtQuantLinkDistance(DT_TRAVERSE_DIST_MAX+1) == 0, "Beyond max quantizes to zero")
}

func TestTraverseTableSize(t *testing.T) {
	// Up to 32 groups: one 32-bit cell per row.
	assertTrue(t, DtCalcTraverseTableSize(4) == 16, "4 groups")
	assertTrue(t, DtCalcTraverseTableSize(32) == 128, "32 groups")
	// 33 groups: two cells per row.
	assertTrue(t, DtCalcTraverseTableSize(33) == 264, "33 groups")
}

func TestTraverseTableCellIndex(t *testing.T) {
	assertTrue(t, DtCalcTraverseTableCellIndex(4, 0, 0) == 0, "First cell")
	assertTrue(t, DtCalcTraverseTableCellIndex(4, 2, 3) == 2, "Row major")
	assertTrue(t, DtCalcTraverseTableCellIndex(33, 1, 32) == 3, "Second cell of second row")
}

func TestPolyAreaAndType(t *testing.T) {
	var p DtPoly
	p.SetArea(5)
	p.SetType(DT_POLYTYPE_OFFMESH_CONNECTION)
	assertTrue(t, p.GetArea() == 5, "Area roundtrips")
	assertTrue(t, p.GetType() == DT_POLYTYPE_OFFMESH_CONNECTION, "Type roundtrips")
	p.SetArea(63)
	assertTrue(t, p.GetType() == DT_POLYTYPE_OFFMESH_CONNECTION, "Type survives area change")
}

func TestOffMeshTraverseTypePacking(t *testing.T) {
	var c DtOffMeshConnection
	c.SetTraverseType(17, 1)
	assertTrue(t, c.GetTraverseType() == 17, "Traverse type roundtrips")
	assertTrue(t, c.GetVertLookupOrder() != 0, "Lookup order bit set")
	c.SetTraverseType(3, 0)
	assertTrue(t, c.GetTraverseType() == 3 && c.GetVertLookupOrder() == 0, "Lookup order bit cleared")
}

func TestDetailTriEdgeFlags(t *testing.T) {
	// Edge 0 boundary, edge 2 boundary.
	flags := uint8(1<<0 | 1<<4)
	assertTrue(t, DtGetDetailTriEdgeFlags(flags, 0) == 1, "Edge 0")
	assertTrue(t, DtGetDetailTriEdgeFlags(flags, 1) == 0, "Edge 1")
	assertTrue(t, DtGetDetailTriEdgeFlags(flags, 2) == 1, "Edge 2")
}

func TestDisjointSet(t *testing.T) {
	var s DtDisjointSet
	s.Init(8)
	assertTrue(t, s.GetSetCount() == 8, "Initial size")

	s.SetUnion(0, 1)
	s.SetUnion(1, 2)
	s.SetUnion(5, 6)
	assertTrue(t, s.Find(0) == s.Find(2), "Transitive union")
	assertTrue(t, s.Find(5) == s.Find(6), "Separate union")
	assertTrue(t, s.Find(0) != s.Find(5), "Distinct components stay apart")
	assertTrue(t, s.Find(7) == 7, "Untouched element is its own root")

	id := s.InsertNew()
	assertTrue(t, id == 8, "Insert returns the next id")
	assertTrue(t, s.Find(8) == 8, "New element is a singleton")
}

func TestTraverseLinkPolyPair(t *testing.T) {
	a := NewDtTraverseLinkPolyPair(9, 4)
	b := NewDtTraverseLinkPolyPair(4, 9)
	assertTrue(t, a == b, "Pair key is unordered")
	assertTrue(t, a.Poly1 == 4 && a.Poly2 == 9, "Smaller ref stored first")

	m := make(DtTraverseLinkPolyMap)
	m[a] |= 1 << 2
	m[b] |= 1 << 4
	assertTrue(t, len(m) == 1, "Both orderings share one entry")
	assertTrue(t, m[a] == (1<<2|1<<4), "Type bits accumulate")
}
