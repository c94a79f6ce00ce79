// Package hulls holds the per-agent-class build constants: the hull
// catalogue, the traverse anim types, the traverse type parameter table
// and the per-anim traverse masks. All of it is data; the game tunes
// these against captured navmeshes rather than code changes.
package hulls

import (
	"github.com/ttvmkos/r5nav/common"
)

// / Navmesh types, one navmesh instance exists per type per level.
type NavMeshType int

const (
	NAVMESH_SMALL NavMeshType = iota
	NAVMESH_MED_SHORT
	NAVMESH_MEDIUM
	NAVMESH_LARGE
	NAVMESH_EXTRA_LARGE
	NAVMESH_COUNT

	NAVMESH_INVALID = NavMeshType(-1)
)

var navMeshNames = [NAVMESH_COUNT]string{
	"small",
	"med_short",
	"medium",
	"large",
	"extra_large",
}

// / The file name prefix/suffix for navmesh sets: "<map>_<hull>.nm".
const (
	NavMeshPath = "maps/navmesh/"
	NavMeshExt  = ".nm"
)

// / Returns the hull name bound to the navmesh type.
func NavMeshNameForType(t NavMeshType) string {
	if t < 0 || t >= NAVMESH_COUNT {
		return ""
	}
	return navMeshNames[t]
}

// / Returns the file name of the navmesh set for the given level and type.
func NavMeshFileName(levelName string, t NavMeshType) string {
	return levelName + "_" + NavMeshNameForType(t) + NavMeshExt
}

// / Defines the agent metrics a navmesh type is built with.
type HullDef struct {
	Name           string
	Radius         float32 ///< The radius of the agent hull. [Unit: wu]
	Height         float32 ///< The height of the agent hull. [Unit: wu]
	ClimbHeight    float32 ///< The maximum ledge height the agent can step over. [Unit: wu]
	TileSize       int     ///< Voxels per tile side.
	CellResolution int     ///< The resolution of the per-poly diamond cell grid.
}

// / The hull catalogue. Radius and height derive from the game's hull
// / widths and heights; climb height follows the hull height scale.
var Hulls = [NAVMESH_COUNT]HullDef{
	{navMeshNames[NAVMESH_SMALL], 16, 72, 18, 32, 8},
	{navMeshNames[NAVMESH_MED_SHORT], 36, 72, 18, 32, 4},
	{navMeshNames[NAVMESH_MEDIUM], 48, 150, 37, 32, 4},
	{navMeshNames[NAVMESH_LARGE], 60, 235, 58, 64, 2},
	{navMeshNames[NAVMESH_EXTRA_LARGE], 88, 235, 58, 64, 2},
}

// / Agent behavioural classes. Anim types are a superset of hulls; the
// / small navmesh serves several anim types, the larger navmeshes are
// / bound to exactly one.
type TraverseAnimType int

const (
	ANIMTYPE_HUMAN TraverseAnimType = iota
	ANIMTYPE_SPECTRE
	ANIMTYPE_STALKER
	ANIMTYPE_FRAG_DRONE
	ANIMTYPE_PILOT
	ANIMTYPE_PROWLER
	ANIMTYPE_SUPER_SPECTRE
	ANIMTYPE_TITAN
	ANIMTYPE_GOLIATH
	ANIMTYPE_COUNT

	ANIMTYPE_NONE = TraverseAnimType(-1)
)

var animTypeNames = [ANIMTYPE_COUNT]string{
	"human",
	"spectre",
	"stalker",
	"frag_drone",
	"pilot",
	"prowler",
	"super_spectre",
	"titan",
	"goliath",
}

func AnimTypeName(t TraverseAnimType) string {
	if t < 0 || t >= ANIMTYPE_COUNT {
		return ""
	}
	return animTypeNames[t]
}

// / Returns the number of traverse tables the navmesh of the given type
// / carries. Only the small navmesh has more than one: one per anim type
// / it serves.
func TraverseTableCountForNavMeshType(t NavMeshType) int {
	if t == NAVMESH_SMALL {
		return 5
	}
	return 1
}

// / Returns the first (for non-small navmeshes: the only) anim type bound
// / to the given navmesh type.
func FirstTraverseAnimTypeForNavMeshType(t NavMeshType) TraverseAnimType {
	switch t {
	case NAVMESH_SMALL:
		return ANIMTYPE_HUMAN
	case NAVMESH_MED_SHORT:
		return ANIMTYPE_PROWLER
	case NAVMESH_MEDIUM:
		return ANIMTYPE_SUPER_SPECTRE
	case NAVMESH_LARGE:
		return ANIMTYPE_TITAN
	case NAVMESH_EXTRA_LARGE:
		return ANIMTYPE_GOLIATH
	}
	return ANIMTYPE_NONE
}

// / Returns the traverse table index for the given anim type. Only the
// / small navmesh carries multiple tables; its table index equals the
// / anim type index.
func TraverseTableIndexForAnimType(t TraverseAnimType) int {
	if t >= ANIMTYPE_HUMAN && t <= ANIMTYPE_PILOT {
		return int(t)
	}
	return 0
}

// / Returns the navmesh type serving the given anim type.
func NavMeshTypeForAnimType(t TraverseAnimType) NavMeshType {
	switch t {
	case ANIMTYPE_HUMAN, ANIMTYPE_SPECTRE, ANIMTYPE_STALKER, ANIMTYPE_FRAG_DRONE, ANIMTYPE_PILOT:
		return NAVMESH_SMALL
	case ANIMTYPE_PROWLER:
		return NAVMESH_MED_SHORT
	case ANIMTYPE_SUPER_SPECTRE:
		return NAVMESH_MEDIUM
	case ANIMTYPE_TITAN:
		return NAVMESH_LARGE
	case ANIMTYPE_GOLIATH:
		return NAVMESH_EXTRA_LARGE
	}
	return NAVMESH_INVALID
}

// / Traverse types, index 0..31 into the catalogue of jump/climb
// / primitives.
type TraverseType int

const (
	TRAVERSE_UNUSED_0 TraverseType = iota

	TRAVERSE_CROSS_GAP_SMALL
	TRAVERSE_CLIMB_OBJECT_SMALL
	TRAVERSE_CROSS_GAP_MEDIUM

	TRAVERSE_UNUSED_4
	TRAVERSE_UNUSED_5
	TRAVERSE_UNUSED_6

	TRAVERSE_CROSS_GAP_LARGE

	TRAVERSE_CLIMB_WALL_MEDIUM
	TRAVERSE_CLIMB_WALL_TALL
	TRAVERSE_CLIMB_BUILDING

	TRAVERSE_JUMP_SHORT
	TRAVERSE_JUMP_MEDIUM
	TRAVERSE_JUMP_LARGE

	TRAVERSE_UNUSED_14
	TRAVERSE_UNUSED_15

	TRAVERSE_UNKNOWN_16 // USED!!!
	TRAVERSE_UNKNOWN_17 // USED!!!

	TRAVERSE_UNKNOWN_18
	TRAVERSE_UNKNOWN_19

	TRAVERSE_CLIMB_TARGET_SMALL
	TRAVERSE_CLIMB_TARGET_LARGE

	TRAVERSE_UNUSED_22
	TRAVERSE_UNUSED_23

	TRAVERSE_UNKNOWN_24

	TRAVERSE_UNUSED_25
	TRAVERSE_UNUSED_26
	TRAVERSE_UNUSED_27
	TRAVERSE_UNUSED_28
	TRAVERSE_UNUSED_29
	TRAVERSE_UNUSED_30
	TRAVERSE_UNUSED_31

	NUM_TRAVERSE_TYPES

	INVALID_TRAVERSE_TYPE = TraverseType(0xff)
)

// / Spatial and logical constraints qualifying a traverse type.
type TraverseTypeParams struct {
	MinElevation float32 ///< [Unit: wu]
	MaxElevation float32 ///< [Unit: wu]

	MinDist uint8 ///< Quantized link distance lower bound.
	MaxDist uint8 ///< Quantized link distance upper bound.

	ForceSamePolyGroup      bool
	ForceDifferentPolyGroup bool
}

// / Returns whether the catalogue slot is unused.
func (p *TraverseTypeParams) Unused() bool {
	return p.MinElevation == 0 && p.MaxElevation == 0 && p.MinDist == 0 && p.MaxDist == 0
}

// / The traverse type parameter catalogue. The unknown slots are inferred
// / by pattern from captured game navmeshes; validate against captured
// / data before shipping changes here.
var TraverseTypes = [NUM_TRAVERSE_TYPES]TraverseTypeParams{
	{0, 0, 0, 0, false, false}, // Unused

	{0, 32, 2, 12, false, false},  // TRAVERSE_CROSS_GAP_SMALL
	{32, 40, 5, 16, false, false}, // TRAVERSE_CLIMB_OBJECT_SMALL
	{0, 16, 11, 22, false, false}, // TRAVERSE_CROSS_GAP_MEDIUM

	{0, 0, 0, 0, false, false}, // Unused
	{0, 0, 0, 0, false, false}, // Unused
	{0, 0, 0, 0, false, false}, // Unused

	{0, 40, 80, 107, false, true}, // TRAVERSE_CROSS_GAP_LARGE

	{40, 128, 7, 21, false, false},    // TRAVERSE_CLIMB_WALL_MEDIUM
	{128, 256, 16, 45, false, false},  // TRAVERSE_CLIMB_WALL_TALL
	{256, 640, 33, 225, false, false}, // TRAVERSE_CLIMB_BUILDING

	{0, 40, 41, 79, false, false},     // TRAVERSE_JUMP_SHORT
	{128, 256, 41, 100, false, false}, // TRAVERSE_JUMP_MEDIUM
	{256, 512, 81, 179, false, false}, // TRAVERSE_JUMP_LARGE

	{0, 0, 0, 0, false, false}, // Unused
	{0, 0, 0, 0, false, false}, // Unused

	{0, 64, 22, 41, false, false},     // TRAVERSE_UNKNOWN_16
	{512, 1024, 21, 58, false, false}, // TRAVERSE_UNKNOWN_17

	{0, 0, 0, 0, false, false}, // Unused
	{0, 0, 0, 0, false, false}, // Unused

	{256, 640, 16, 40, false, false},   // TRAVERSE_CLIMB_TARGET_SMALL
	{640, 1024, 33, 199, false, false}, // TRAVERSE_CLIMB_TARGET_LARGE

	{0, 0, 0, 0, false, false}, // Unused
	{0, 0, 0, 0, false, false}, // Unused

	{0, 0, 0, 0, false, false}, // TRAVERSE_UNKNOWN_24, does not exist in MSET 5 ~ 8.

	{0, 0, 0, 0, false, false}, // Unused
	{0, 0, 0, 0, false, false}, // Unused
	{0, 0, 0, 0, false, false}, // Unused
	{0, 0, 0, 0, false, false}, // Unused
	{0, 0, 0, 0, false, false}, // Unused
	{0, 0, 0, 0, false, false}, // Unused
	{0, 0, 0, 0, false, false}, // Unused
}

// TODO: this lookup table isn't correct, needs to be fixed. Kept as
// mutable data so corrected masks from captured game data can be
// installed without a rebuild.
var AnimTraverseFlags = [ANIMTYPE_COUNT]uint32{
	0x0000013F, // ANIMTYPE_HUMAN
	0x0000013F, // ANIMTYPE_SPECTRE
	0x0033DF7F, // ANIMTYPE_STALKER
	0x0033FFFF, // ANIMTYPE_FRAG_DRONE
	0x0000013F, // ANIMTYPE_PILOT
	0x00033F87, // ANIMTYPE_PROWLER
	0x00033F82, // ANIMTYPE_SUPER_SPECTRE
	0x00000600, // ANIMTYPE_TITAN
	0x00000600, // ANIMTYPE_GOLIATH
}

// / Returns whether the anim type can perform the traverse type.
func AnimTypeSupportsTraverseType(animType TraverseAnimType, traverseType uint8) bool {
	if animType < 0 || animType >= ANIMTYPE_COUNT {
		return false
	}
	return common.BitCellBit(int(traverseType))&AnimTraverseFlags[animType] != 0
}

// / Returns the best traverse type for the given spatial and logical
// / characteristics, iterating the catalogue from the highest slot to
// / the lowest and picking the first whose constraints are all
// / satisfied. Returns #INVALID_TRAVERSE_TYPE when nothing fits.
func GetBestTraverseType(elevation float32, traverseDist uint8, samePolyGroup bool) TraverseType {
	bestTraverseType := INVALID_TRAVERSE_TYPE

	for i := int(NUM_TRAVERSE_TYPES) - 1; i >= 0; i-- {
		traverseType := &TraverseTypes[i]

		// Skip unused types...
		if traverseType.Unused() {
			continue
		}

		if elevation < traverseType.MinElevation ||
			elevation > traverseType.MaxElevation {
			continue
		}

		if traverseDist < traverseType.MinDist ||
			traverseDist > traverseType.MaxDist {
			continue
		}

		if (traverseType.ForceSamePolyGroup && !samePolyGroup) ||
			(traverseType.ForceDifferentPolyGroup && samePolyGroup) {
			continue
		}

		bestTraverseType = TraverseType(i)
		break
	}

	return bestTraverseType
}
