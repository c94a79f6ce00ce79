package detour

import (
	"github.com/ttvmkos/r5nav/common"
)

// / Disjoint set algorithm used to build the static pathing data for the
// / navmesh. Union by rank with path compression.
type DtDisjointSet struct {
	rank   []int
	parent []int
}

func (s *DtDisjointSet) Init(size int) {
	s.rank = make([]int, size)
	s.parent = make([]int, size)
	for i := range s.parent {
		s.parent[i] = i
	}
}

func (s *DtDisjointSet) InsertNew() int {
	s.rank = append(s.rank, 0)
	newId := len(s.parent)
	s.parent = append(s.parent, newId)
	return newId
}

func (s *DtDisjointSet) Find(id int) int {
	root := id
	for s.parent[root] != root {
		root = s.parent[root]
	}
	// Path compression.
	for s.parent[id] != root {
		s.parent[id], id = root, s.parent[id]
	}
	return root
}

func (s *DtDisjointSet) SetUnion(x, y int) {
	sx := s.Find(x)
	sy := s.Find(y)

	if sx == sy { // Same set already.
		return
	}

	if s.rank[sx] < s.rank[sy] {
		s.parent[sx] = sy
	} else if s.rank[sx] > s.rank[sy] {
		s.parent[sy] = sx
	} else {
		s.parent[sy] = sx
		s.rank[sx]++
	}
}

func (s *DtDisjointSet) GetSetCount() int {
	return len(s.parent)
}

func (s *DtDisjointSet) CopyTo(other *DtDisjointSet) {
	other.rank = append(other.rank[:0], s.rank...)
	other.parent = append(other.parent[:0], s.parent...)
}

// / Parameters used to build disjoint poly groups and traverse tables.
type DtTraverseTableCreateParams struct {
	Nav        *DtNavMesh      ///< The navmesh.
	Sets       []DtDisjointSet ///< The disjoint polygroup sets. [Size: TableCount]
	TableCount int             ///< The number of traverse tables this navmesh should contain.
	NavMeshType int            ///< The navmesh type [_small, _extra_large].

	/// The user installed callback which is used to determine if an anim
	/// type can use this traverse link. A tableIndex of -1 queries whether
	/// any anim type can use it.
	CanTraverse func(params *DtTraverseTableCreateParams, link *DtLink, tableIndex int) bool

	/// Collapses all unique linked poly groups into
	/// #DT_FIRST_USABLE_POLY_GROUP. Must be set if there are more than
	/// 65535 polygon islands.
	CollapseGroups bool
}

// tilePolyOffsets returns the running poly-count offset for each tile so
// polygons can be addressed with one linear index across the navmesh.
func tilePolyOffsets(nav *DtNavMesh) (offsets []int, total int) {
	offsets = make([]int, nav.GetMaxTiles())
	for i := 0; i < nav.GetMaxTiles(); i++ {
		offsets[i] = total
		tile := nav.GetTile(i)
		if tile.Header != nil {
			total += int(tile.Header.PolyCount)
		}
	}
	return offsets, total
}

// / Builds navigation mesh disjoint poly groups from the provided
// / parameters. Every polygon receives a group label; polygons with no
// / outbound links are assigned #DT_UNLINKED_POLY_GROUP, every other
// / label is compacted to a contiguous id starting at
// / #DT_FIRST_USABLE_POLY_GROUP.
func DtCreateDisjointPolyGroups(params *DtTraverseTableCreateParams) bool {
	nav := params.Nav
	if nav == nil {
		return false
	}

	set := &params.Sets[0]

	offsets, totalPolys := tilePolyOffsets(nav)
	set.Init(totalPolys)

	// Union every polygon with the polygons it links to.
	for i := 0; i < nav.GetMaxTiles(); i++ {
		tile := nav.GetTile(i)
		if tile.Header == nil {
			continue
		}

		for j := 0; j < int(tile.Header.PolyCount); j++ {
			poly := &tile.Polys[j]
			selfIdx := offsets[i] + j

			for l := poly.FirstLink; l != DT_NULL_LINK; l = tile.Links[l].Next {
				link := &tile.Links[l]

				if params.CanTraverse != nil && !params.CanTraverse(params, link, -1) {
					continue
				}

				_, targetTile, targetPoly := nav.DecodePolyId(link.Ref)
				if int(targetTile) >= nav.GetMaxTiles() || nav.GetTile(int(targetTile)).Header == nil {
					continue
				}
				targetIdx := offsets[targetTile] + int(targetPoly)
				set.SetUnion(selfIdx, targetIdx)
			}
		}
	}

	// Compact the disjoint-set roots into contiguous group ids.
	rootToGroup := make(map[int]uint16)
	nextGroup := uint16(DT_FIRST_USABLE_POLY_GROUP)
	overflowed := false

	for i := 0; i < nav.GetMaxTiles(); i++ {
		tile := nav.GetTile(i)
		if tile.Header == nil {
			continue
		}

		for j := 0; j < int(tile.Header.PolyCount); j++ {
			poly := &tile.Polys[j]

			if poly.FirstLink == DT_NULL_LINK {
				poly.GroupId = DT_UNLINKED_POLY_GROUP
				continue
			}

			root := set.Find(offsets[i] + j)
			group, ok := rootToGroup[root]
			if !ok {
				if int(nextGroup) > 0xffff-1 {
					overflowed = true
					if !params.CollapseGroups {
						return false
					}
					group = DT_FIRST_USABLE_POLY_GROUP
				} else {
					group = nextGroup
					nextGroup++
				}
				rootToGroup[root] = group
			}
			poly.GroupId = group
		}
	}

	if params.CollapseGroups && overflowed {
		// Collapse all non-trivial components into one id.
		for i := 0; i < nav.GetMaxTiles(); i++ {
			tile := nav.GetTile(i)
			if tile.Header == nil {
				continue
			}
			for j := 0; j < int(tile.Header.PolyCount); j++ {
				poly := &tile.Polys[j]
				if poly.GroupId >= DT_FIRST_USABLE_POLY_GROUP {
					poly.GroupId = DT_FIRST_USABLE_POLY_GROUP
				}
			}
		}
		nextGroup = DT_FIRST_USABLE_POLY_GROUP + 1
	}

	// Tag tiles whose polygons ended up (partially) unlinked.
	for i := 0; i < nav.GetMaxTiles(); i++ {
		tile := nav.GetTile(i)
		if tile.Header == nil || tile.Header.PolyCount == 0 {
			continue
		}

		unlinked := 0
		for j := 0; j < int(tile.Header.PolyCount); j++ {
			if tile.Polys[j].GroupId == DT_UNLINKED_POLY_GROUP {
				unlinked++
			}
		}

		if unlinked == int(tile.Header.PolyCount) {
			tile.Header.UserId = DT_FULL_UNLINKED_TILE_USER_ID
		} else if unlinked > 0 {
			tile.Header.UserId = DT_SEMI_UNLINKED_TILE_USER_ID
		}
	}

	nav.SetPolyGroupCount(int(nextGroup))
	return true
}

// / Updates navigation mesh disjoint poly groups from the provided
// / parameters. Run after traverse links have been generated so the
// / group labels account for them.
func DtUpdateDisjointPolyGroups(params *DtTraverseTableCreateParams) bool {
	return DtCreateDisjointPolyGroups(params)
}

// / Builds the navigation mesh static traverse tables from the provided
// / parameters. One table is built per anim type; each is a dense
// / polyGroupCount x polyGroupCount bit matrix recording which poly
// / groups can reach each other using the links the anim type supports.
func DtCreateTraverseTableData(params *DtTraverseTableCreateParams) bool {
	nav := params.Nav
	if nav == nil {
		return false
	}

	polyGroupCount := nav.GetPolyGroupCount()
	tableSize := DtCalcTraverseTableSize(polyGroupCount)

	if !nav.AllocTraverseTables(params.TableCount) {
		return false
	}
	nav.SetTraverseTableSize(tableSize)
	nav.SetTraverseTableCount(params.TableCount)

	for t := 0; t < params.TableCount; t++ {
		set := &params.Sets[t]
		set.Init(polyGroupCount)

		// Union groups joined by links this anim type can use.
		for i := 0; i < nav.GetMaxTiles(); i++ {
			tile := nav.GetTile(i)
			if tile.Header == nil {
				continue
			}

			for j := 0; j < int(tile.Header.PolyCount); j++ {
				poly := &tile.Polys[j]
				if poly.GroupId == DT_UNLINKED_POLY_GROUP {
					continue
				}

				for l := poly.FirstLink; l != DT_NULL_LINK; l = tile.Links[l].Next {
					link := &tile.Links[l]

					if params.CanTraverse != nil && !params.CanTraverse(params, link, t) {
						continue
					}

					_, targetTile, targetPoly := nav.DecodePolyId(link.Ref)
					if nav.GetTile(int(targetTile)).Header == nil {
						continue
					}
					targetGroup := nav.GetTile(int(targetTile)).Polys[targetPoly].GroupId
					if targetGroup == DT_UNLINKED_POLY_GROUP || targetGroup == DT_NULL_POLY_GROUP {
						continue
					}

					set.SetUnion(int(poly.GroupId), int(targetGroup))
				}
			}
		}

		// Emit the bit matrix.
		table := make([]int32, tableSize/4)
		for g1 := DT_FIRST_USABLE_POLY_GROUP; g1 < polyGroupCount; g1++ {
			for g2 := DT_FIRST_USABLE_POLY_GROUP; g2 < polyGroupCount; g2++ {
				if set.Find(g1) != set.Find(g2) {
					continue
				}
				cellIndex := DtCalcTraverseTableCellIndex(polyGroupCount, uint16(g1), uint16(g2))
				table[cellIndex] = int32(uint32(table[cellIndex]) | common.BitCellBit(g2))
			}
		}

		nav.SetTraverseTable(t, table)
	}

	return true
}
