package detour

import (
	"github.com/ttvmkos/r5nav/common"
)

// / A key identifying an unordered pair of polygons joined by one or more
// / traverse links. The pair always stores the smaller ref first.
type DtTraverseLinkPolyPair struct {
	Poly1 DtPolyRef
	Poly2 DtPolyRef
}

func NewDtTraverseLinkPolyPair(p1, p2 DtPolyRef) DtTraverseLinkPolyPair {
	if p1 > p2 {
		p1, p2 = p2, p1
	}
	return DtTraverseLinkPolyPair{Poly1: p1, Poly2: p2}
}

// / Maps linked polygon pairs to the bitset of traverse types already
// / installed between them. A traverse type can only be used once between
// / 2 polygons, but the 2 polygons can have more than one link.
type DtTraverseLinkPolyMap map[DtTraverseLinkPolyPair]uint32

// / Removes every pair that references a polygon on the given tile.
// / Used when a tile is removed so a rebuild can link the pairs again.
func (m DtTraverseLinkPolyMap) PruneTile(mesh *DtNavMesh, tileRef DtTileRef) {
	tileId := mesh.DecodePolyIdTile(DtPolyRef(tileRef))
	for pair := range m {
		if mesh.DecodePolyIdTile(pair.Poly1) == tileId || mesh.DecodePolyIdTile(pair.Poly2) == tileId {
			delete(m, pair)
		}
	}
}

// / Configuration parameters used to create traverse links between polygon edges.
type DtTraverseLinkConnectParams struct {
	/// Returns the desired traverse type for the given spatial and logical
	/// characteristics of a potential link, or #DT_NULL_TRAVERSE_TYPE when
	/// no type fits.
	///  @param[in]	elevation		The elevation difference between base and land edge mids. [Unit: wu]
	///  @param[in]	quantDist		The quantized link distance.
	///  @param[in]	samePolyGroup	Whether both polygons share a disjoint poly group.
	GetTraverseType func(elevation float32, quantDist uint8, samePolyGroup bool) uint8

	/// Returns whether the traverse type is permitted on the navmesh being
	/// built. Navmeshes bound to a single anim type reject types outside
	/// that anim's traverse mask.
	TraverseTypeSupported func(traverseType uint8) bool

	/// Returns true if the segment from 'from' to 'to' hits the static
	/// input geometry.
	RaycastMesh func(from, to []float32) bool

	/// Looks up the traverse type bits already installed between the two
	/// polygons; ok is false when no link exists yet.
	FindPolyLink func(basePolyRef, landPolyRef DtPolyRef) (bits uint32, ok bool)

	/// Records a new traverse type bit for the polygon pair.
	AddPolyLink func(basePolyRef, landPolyRef DtPolyRef, traverseTypeBit uint32)

	/// The z-axis cell height the tiles were built with; used to derive
	/// the maximum line-of-sight angle over a ledge.
	CellHeight float32

	/// A minimum amount of projection overlap between the 2 edges.
	/// ConnectTraverseLinks does not read it; no edge-overlap
	/// requirement is applied.
	MinEdgeOverlap float32

	/// Whether to link to polygons in neighboring tiles. Limits linkage to
	/// internal polygons if false.
	LinkToNeighbor bool
}

func polyEdgeFaceAgainst(v1, v2, n1, n2 []float32) bool {
	delta := []float32{v2[0] - v1[0], v2[1] - v1[1], 0}
	return common.Vdot2D(delta, n1) >= 0 && common.Vdot2D(delta, n2) < 0
}

// We need to fire a raycast from our initial high pos to our offset
// position to make sure we didn't clip into geometry, otherwise we
// create links between a mesh inside and outside an object, causing
// the ai to traverse inside of it.
func traverseLinkOffsetIntersectsGeom(params *DtTraverseLinkConnectParams, basePos, offsetPos []float32) bool {
	if params.RaycastMesh(basePos, offsetPos) || params.RaycastMesh(offsetPos, basePos) {
		return true
	}
	return false
}

// / Returns whether a traverse link between the lower and higher edge mid
// / points is clear in terms of line-of-sight.
func traverseLinkInLOS(params *DtTraverseLinkConnectParams, lowPos, highPos, lowDir, highDir []float32, offsetAmount float32) bool {
	lowNormal := make([]float32, 3)
	common.CalcEdgeNormal2D(lowDir, lowNormal)

	highNormal := make([]float32, 3)
	common.CalcEdgeNormal2D(highDir, highNormal)

	// If the high edge does not face against the low edge, the high edge
	// is an overhang and the AI would clip through geometry attempting to
	// initiate the jump from below.
	if !polyEdgeFaceAgainst(lowPos, highPos, lowNormal, highNormal) {
		return false
	}

	targetRayPos := highPos
	hasOffset := offsetAmount > 0

	// Offset the highest point with at least the walkable radius and
	// perform the raycast test from the highest point to the lowest. The
	// offsetting is necessary to account for the gap between the edge of
	// the navmesh and the edge of the geometry.
	offsetRayPos := make([]float32, 3)

	if hasOffset {
		offsetRayPos[0] = highPos[0] + highNormal[0]*offsetAmount
		offsetRayPos[1] = highPos[1] + highNormal[1]*offsetAmount
		offsetRayPos[2] = highPos[2]

		if traverseLinkOffsetIntersectsGeom(params, highPos, offsetRayPos) {
			return false
		}

		targetRayPos = offsetRayPos
	}

	// Perform 2 raycasts as we have to take the face normal into account.
	// Path must be clear from both directions.
	if params.RaycastMesh(targetRayPos, lowPos) || params.RaycastMesh(lowPos, targetRayPos) {
		return false
	}

	return true
}

// / Builds traverse links for the given tile. Pass 1 (LinkToNeighbor)
// / connects hard edges across tiles; pass 2 connects hard edges within
// / the same tile. Link generation is deterministic given the tile,
// / polygon, and edge iteration order.
func (mesh *DtNavMesh) ConnectTraverseLinks(tileRef DtTileRef, params *DtTraverseLinkConnectParams) DtStatus {
	baseTile := mesh.GetTileByRef(tileRef)
	if baseTile == nil || baseTile.Header == nil {
		return DT_FAILURE | DT_INVALID_PARAM
	}

	// If we link to the same tile, we need at least 2 links.
	minRequired := 2
	if params.LinkToNeighbor {
		minRequired = 1
	}
	if !baseTile.LinkCountAvailable(minRequired) {
		return DT_SUCCESS
	}

	baseHeader := baseTile.Header
	basePolyRefBase := mesh.GetPolyRefBase(baseTile)

	firstBaseTileLinkUsed := false

	basePolyEdgeMid := make([]float32, 3)
	landPolyEdgeMid := make([]float32, 3)
	baseEdgeDir := make([]float32, 3)
	landEdgeDir := make([]float32, 3)

	for i := 0; i < int(baseHeader.PolyCount); i++ {
		basePoly := &baseTile.Polys[i]

		if basePoly.GroupId == DT_UNLINKED_POLY_GROUP {
			continue
		}
		if basePoly.GetType() == DT_POLYTYPE_OFFMESH_CONNECTION {
			continue
		}

		for j := 0; j < int(basePoly.VertCount); j++ {
			// Hard edges only!
			if basePoly.Neis[j] != 0 {
				continue
			}

			// Polygon 1 edge
			basePolySpos := baseTile.Verts[int(basePoly.Verts[j])*3:]
			basePolyEpos := baseTile.Verts[int(basePoly.Verts[(j+1)%int(basePoly.VertCount)])*3:]

			common.Vsad(basePolyEdgeMid, basePolySpos, basePolyEpos, 0.5)

			baseSide := common.ClassifyPointInsideBounds(basePolyEdgeMid, baseHeader.Bmin[:], baseHeader.Bmax[:])
			const MAX_NEIS = 32 // Max neighbors

			neis := make([]*DtMeshTile, MAX_NEIS)
			var nneis int

			if params.LinkToNeighbor {
				// Retrieve the neighboring tiles on the side of our base poly edge.
				nneis = mesh.GetNeighbourTilesAt(baseHeader.X, baseHeader.Y, int32(baseSide), neis, MAX_NEIS)
			} else {
				// Internal links.
				nneis = 1
				neis[0] = baseTile
			}

			for k := 0; k < nneis; k++ {
				landTile := neis[k]
				sameTile := baseTile == landTile

				// Don't connect to same tile edges yet, leave that for the second pass.
				if params.LinkToNeighbor && sameTile {
					continue
				}

				if !landTile.LinkCountAvailable(1) {
					continue
				}

				landHeader := landTile.Header
				landPolyRefBase := mesh.GetPolyRefBase(landTile)

				firstLandTileLinkUsed := false

				for m := 0; m < int(landHeader.PolyCount); m++ {
					landPoly := &landTile.Polys[m]

					if landPoly.GroupId == DT_UNLINKED_POLY_GROUP {
						continue
					}
					if landPoly.GetType() == DT_POLYTYPE_OFFMESH_CONNECTION {
						continue
					}

					// Skip same polygon.
					if sameTile && i == m {
						continue
					}

					for n := 0; n < int(landPoly.VertCount); n++ {
						if landPoly.Neis[n] != 0 {
							continue
						}

						// We need at least 2 links available, figure out if
						// we link to the same tile or another one.
						if params.LinkToNeighbor {
							if firstLandTileLinkUsed && !landTile.LinkCountAvailable(1) {
								continue
							} else if firstBaseTileLinkUsed && !baseTile.LinkCountAvailable(1) {
								return DT_SUCCESS
							}
						} else if firstBaseTileLinkUsed && !baseTile.LinkCountAvailable(2) {
							return DT_SUCCESS
						}

						// Polygon 2 edge
						landPolySpos := landTile.Verts[int(landPoly.Verts[n])*3:]
						landPolyEpos := landTile.Verts[int(landPoly.Verts[(n+1)%int(landPoly.VertCount)])*3:]

						common.Vsad(landPolyEdgeMid, landPolySpos, landPolyEpos, 0.5)

						dist := DtCalcLinkDistance(basePolyEdgeMid, landPolyEdgeMid)
						quantDist := DtQuantLinkDistance(dist)

						if quantDist == 0 {
							continue // Link distance is greater than maximum supported.
						}

						common.Vsub(baseEdgeDir, basePolyEpos, basePolySpos)
						common.Vsub(landEdgeDir, landPolyEpos, landPolySpos)

						dotProduct := common.Vdot(baseEdgeDir, landEdgeDir)

						// Edges facing the same direction should not be
						// linked. Doing so causes links to go through
						// from underneath geometry, e.g. a roof poly edge
						// facing north linked to an edge of a poly on the
						// HVAC also facing north would jump through the
						// HVAC. This also prevents the algorithm from
						// establishing parallel traverse links.
						if dotProduct > 0 {
							continue
						}

						elevation := common.Fabsf(basePolyEdgeMid[2] - landPolyEdgeMid[2])
						samePolyGroup := basePoly.GroupId == landPoly.GroupId

						traverseType := params.GetTraverseType(elevation, quantDist, samePolyGroup)

						if traverseType == DT_NULL_TRAVERSE_TYPE {
							continue
						}

						if params.TraverseTypeSupported != nil && !params.TraverseTypeSupported(traverseType) {
							continue
						}

						basePolyRef := basePolyRefBase | DtPolyRef(i)
						landPolyRef := landPolyRefBase | DtPolyRef(m)

						// These 2 polygons might already be linked with the
						// same traverse type, skip if so.
						if bits, ok := params.FindPolyLink(basePolyRef, landPolyRef); ok {
							if common.BitCellBit(int(traverseType))&bits != 0 {
								continue
							}
						}

						basePolyHigher := basePolyEdgeMid[2] > landPolyEdgeMid[2]
						lowerEdgeMid := basePolyEdgeMid
						higherEdgeMid := landPolyEdgeMid
						lowerEdgeDir := baseEdgeDir
						higherEdgeDir := landEdgeDir
						walkableRadius := landHeader.WalkableRadius
						if basePolyHigher {
							lowerEdgeMid = landPolyEdgeMid
							higherEdgeMid = basePolyEdgeMid
							lowerEdgeDir = landEdgeDir
							higherEdgeDir = baseEdgeDir
							walkableRadius = baseHeader.WalkableRadius
						}

						slopeAngle := common.Fabsf(common.CalcSlopeAngle(basePolyEdgeMid, landPolyEdgeMid))
						maxAngle := common.CalcMaxLOSAngle(walkableRadius, params.CellHeight)
						offsetAmount := common.CalcLedgeSpanOffsetAmount(walkableRadius, slopeAngle, maxAngle)

						if !traverseLinkInLOS(params, lowerEdgeMid, higherEdgeMid, lowerEdgeDir, higherEdgeDir, offsetAmount) {
							continue
						}

						var landSide uint8
						if params.LinkToNeighbor {
							landSide = common.ClassifyPointOutsideBounds(landPolyEdgeMid, landHeader.Bmin[:], landHeader.Bmax[:])
						} else {
							landSide = common.ClassifyPointInsideBounds(landPolyEdgeMid, landHeader.Bmin[:], landHeader.Bmax[:])
						}

						forwardIdx := baseTile.AllocLink()
						reverseIdx := landTile.AllocLink()

						// Allocated 2 new links, need to check for enough
						// space on subsequent runs.
						firstBaseTileLinkUsed = true
						firstLandTileLinkUsed = true

						forwardLink := &baseTile.Links[forwardIdx]

						forwardLink.Ref = landPolyRef
						forwardLink.Edge = uint8(j)
						forwardLink.Side = landSide
						forwardLink.Bmin = 0
						forwardLink.Bmax = 255
						forwardLink.Next = basePoly.FirstLink
						basePoly.FirstLink = forwardIdx
						forwardLink.TraverseType = traverseType
						forwardLink.TraverseDist = quantDist
						forwardLink.ReverseLink = uint16(reverseIdx)

						reverseLink := &landTile.Links[reverseIdx]

						reverseLink.Ref = basePolyRef
						reverseLink.Edge = uint8(n)
						reverseLink.Side = baseSide
						reverseLink.Bmin = 0
						reverseLink.Bmax = 255
						reverseLink.Next = landPoly.FirstLink
						landPoly.FirstLink = reverseIdx
						reverseLink.TraverseType = traverseType
						reverseLink.TraverseDist = quantDist
						reverseLink.ReverseLink = uint16(forwardIdx)

						params.AddPolyLink(basePolyRef, landPolyRef, common.BitCellBit(int(traverseType)))
					}
				}
			}
		}
	}

	return DT_SUCCESS
}
