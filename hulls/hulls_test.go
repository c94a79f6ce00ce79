package hulls

import (
	"testing"
)

func assertTrue(t *testing.T, value bool, msg string) {
	t.Helper()
	if !value {
		t.Errorf(msg)
	}
}

func TestNavMeshNames(t *testing.T) {
	assertTrue(t, NavMeshNameForType(NAVMESH_SMALL) == "small", "Small hull name")
	assertTrue(t, NavMeshNameForType(NAVMESH_EXTRA_LARGE) == "extra_large", "Extra large hull name")
	assertTrue(t, NavMeshFileName("mp_rr_canyonlands", NAVMESH_MEDIUM) == "mp_rr_canyonlands_medium.nm", "Set file name")
}

func TestTraverseTableCounts(t *testing.T) {
	assertTrue(t, TraverseTableCountForNavMeshType(NAVMESH_SMALL) == 5, "Small navmesh carries five tables")
	for i := NAVMESH_MED_SHORT; i < NAVMESH_COUNT; i++ {
		assertTrue(t, TraverseTableCountForNavMeshType(i) == 1, "Larger navmeshes carry one table")
	}
}

func TestAnimTypeMapping(t *testing.T) {
	assertTrue(t, FirstTraverseAnimTypeForNavMeshType(NAVMESH_SMALL) == ANIMTYPE_HUMAN, "Small first anim")
	assertTrue(t, FirstTraverseAnimTypeForNavMeshType(NAVMESH_MED_SHORT) == ANIMTYPE_PROWLER, "Med short anim")
	assertTrue(t, FirstTraverseAnimTypeForNavMeshType(NAVMESH_LARGE) == ANIMTYPE_TITAN, "Large anim")

	assertTrue(t, NavMeshTypeForAnimType(ANIMTYPE_PILOT) == NAVMESH_SMALL, "Pilot uses the small navmesh")
	assertTrue(t, NavMeshTypeForAnimType(ANIMTYPE_GOLIATH) == NAVMESH_EXTRA_LARGE, "Goliath uses the extra large navmesh")

	assertTrue(t, TraverseTableIndexForAnimType(ANIMTYPE_STALKER) == 2, "Small navmesh table index equals the anim index")
	assertTrue(t, TraverseTableIndexForAnimType(ANIMTYPE_TITAN) == 0, "Single table navmeshes use index zero")
}

func TestGetBestTraverseTypeGapCrossing(t *testing.T) {
	// A flat 20 wu gap quantizes to distance 2; the small gap crossing
	// wins as nothing above it fits.
	got := GetBestTraverseType(0, 2, false)
	assertTrue(t, got == TRAVERSE_CROSS_GAP_SMALL, "Flat short gap classifies as small gap crossing")

	// Distance 0 fits no slot: every used slot demands at least some span.
	got = GetBestTraverseType(0, 0, false)
	assertTrue(t, got == INVALID_TRAVERSE_TYPE, "Zero distance classifies as nothing")
}

func TestGetBestTraverseTypeClimb(t *testing.T) {
	// 36 wu up and quant distance 5 lands in the small object climb window.
	got := GetBestTraverseType(36, 5, false)
	assertTrue(t, got == TRAVERSE_CLIMB_OBJECT_SMALL, "Step-up classifies as small object climb")

	// A tall wall.
	got = GetBestTraverseType(200, 30, false)
	assertTrue(t, got == TRAVERSE_CLIMB_WALL_TALL, "Tall wall climb")
}

func TestGetBestTraverseTypeGroupConstraints(t *testing.T) {
	// The large gap crossing requires the polys to live on different
	// poly groups.
	got := GetBestTraverseType(20, 90, false)
	assertTrue(t, got == TRAVERSE_CROSS_GAP_LARGE, "Different groups allow the large gap crossing")

	got = GetBestTraverseType(20, 90, true)
	assertTrue(t, got != TRAVERSE_CROSS_GAP_LARGE, "Same group rejects the large gap crossing")
}

func TestGetBestTraverseTypeIterationOrder(t *testing.T) {
	// The catalogue is scanned from the highest slot downwards; an
	// elevation in the 512..1024 window at distance 38 must resolve to
	// the highest matching slot.
	got := GetBestTraverseType(600, 38, false)
	assertTrue(t, got == TRAVERSE_CLIMB_TARGET_SMALL, "Highest matching slot wins")
}

func TestAnimTraverseMasks(t *testing.T) {
	assertTrue(t, AnimTypeSupportsTraverseType(ANIMTYPE_HUMAN, uint8(TRAVERSE_CROSS_GAP_SMALL)), "Human can cross small gaps")
	assertTrue(t, !AnimTypeSupportsTraverseType(ANIMTYPE_TITAN, uint8(TRAVERSE_CROSS_GAP_SMALL)), "Titan cannot use the small gap slot")
	assertTrue(t, AnimTypeSupportsTraverseType(ANIMTYPE_TITAN, uint8(TRAVERSE_CLIMB_WALL_TALL)), "Titan mask covers its wall slots")

	// The masks are data: corrected tables from captured game data can
	// be installed at runtime.
	old := AnimTraverseFlags[ANIMTYPE_HUMAN]
	AnimTraverseFlags[ANIMTYPE_HUMAN] = 0
	assertTrue(t, !AnimTypeSupportsTraverseType(ANIMTYPE_HUMAN, uint8(TRAVERSE_CROSS_GAP_SMALL)), "Zeroed mask rejects everything")
	AnimTraverseFlags[ANIMTYPE_HUMAN] = old
}
