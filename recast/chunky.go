package recast

import (
	"sort"
)

type RcChunkyTriMeshNode struct {
	Bmin [2]float32
	Bmax [2]float32
	I    int ///< Index into the chunk triangle array, or negative escape offset for internal nodes.
	N    int ///< Number of triangles in the chunk. (Zero for internal nodes.)
}

// / A hierarchical 2D AABB tree over the input triangles, used to extract
// / the triangles overlapping a tile's bounds without touching the whole
// / input mesh.
type RcChunkyTriMesh struct {
	Nodes           []RcChunkyTriMeshNode
	Tris            []int ///< Triangle indices reordered per chunk. [Size: 3*ntris]
	NTris           int
	MaxTrisPerChunk int
}

type boundsItem struct {
	bmin [2]float32
	bmax [2]float32
	i    int
}

func calcExtends(items []boundsItem, imin, imax int, bmin, bmax []float32) {
	bmin[0] = items[imin].bmin[0]
	bmin[1] = items[imin].bmin[1]

	bmax[0] = items[imin].bmax[0]
	bmax[1] = items[imin].bmax[1]

	for i := imin + 1; i < imax; i++ {
		it := &items[i]
		bmin[0] = min(bmin[0], it.bmin[0])
		bmin[1] = min(bmin[1], it.bmin[1])
		bmax[0] = max(bmax[0], it.bmax[0])
		bmax[1] = max(bmax[1], it.bmax[1])
	}
}

func longestAxis(x, y float32) int {
	if y > x {
		return 1
	}
	return 0
}

func subdivide(items []boundsItem, imin, imax, trisPerChunk int,
	nodes *[]RcChunkyTriMeshNode, inTris []int, outTris *[]int) {

	inum := imax - imin

	node := RcChunkyTriMeshNode{}
	icur := len(*nodes)

	if inum <= trisPerChunk {
		// Leaf
		calcExtends(items, imin, imax, node.Bmin[:], node.Bmax[:])

		// Copy triangles.
		node.I = len(*outTris) / 3
		node.N = inum

		for i := imin; i < imax; i++ {
			idx := items[i].i
			*outTris = append(*outTris, inTris[idx*3], inTris[idx*3+1], inTris[idx*3+2])
		}

		*nodes = append(*nodes, node)
	} else {
		// Split
		calcExtends(items, imin, imax, node.Bmin[:], node.Bmax[:])
		*nodes = append(*nodes, node)

		axis := longestAxis(node.Bmax[0]-node.Bmin[0], node.Bmax[1]-node.Bmin[1])

		// Sort along axis and split at the median.
		sub := items[imin:imax]
		sort.Slice(sub, func(a, b int) bool {
			return sub[a].bmin[axis] < sub[b].bmin[axis]
		})

		isplit := imin + inum/2

		// Left
		subdivide(items, imin, isplit, trisPerChunk, nodes, inTris, outTris)
		// Right
		subdivide(items, isplit, imax, trisPerChunk, nodes, inTris, outTris)

		iescape := len(*nodes) - icur
		// Negative index means escape.
		(*nodes)[icur].I = -iescape
	}
}

// / Creates partitioned triangle mesh (AABB tree) where each node contains
// / at most trisPerChunk triangles.
func RcCreateChunkyTriMesh(verts []float32, tris []int, ntris, trisPerChunk int) (*RcChunkyTriMesh, bool) {
	nchunks := (ntris + trisPerChunk - 1) / trisPerChunk

	cm := &RcChunkyTriMesh{
		Nodes: make([]RcChunkyTriMeshNode, 0, nchunks*4),
		Tris:  make([]int, 0, ntris*3),
		NTris: ntris,
	}

	// Build tree
	items := make([]boundsItem, ntris)
	for i := 0; i < ntris; i++ {
		t := tris[i*3 : i*3+3]
		it := &items[i]
		it.i = i
		// Calc triangle XY bounds.
		it.bmin[0] = verts[t[0]*3+0]
		it.bmin[1] = verts[t[0]*3+1]
		it.bmax[0] = it.bmin[0]
		it.bmax[1] = it.bmin[1]
		for j := 1; j < 3; j++ {
			v := verts[t[j]*3:]
			it.bmin[0] = min(it.bmin[0], v[0])
			it.bmin[1] = min(it.bmin[1], v[1])
			it.bmax[0] = max(it.bmax[0], v[0])
			it.bmax[1] = max(it.bmax[1], v[1])
		}
	}

	subdivide(items, 0, ntris, trisPerChunk, &cm.Nodes, tris, &cm.Tris)

	// Calc max tris per node.
	cm.MaxTrisPerChunk = 0
	for i := range cm.Nodes {
		node := &cm.Nodes[i]
		isLeaf := node.I >= 0
		if !isLeaf {
			continue
		}
		if node.N > cm.MaxTrisPerChunk {
			cm.MaxTrisPerChunk = node.N
		}
	}

	return cm, true
}

func checkOverlapRect(amin, amax, bmin, bmax [2]float32) bool {
	return !(amin[0] > bmax[0] || amax[0] < bmin[0] ||
		amin[1] > bmax[1] || amax[1] < bmin[1])
}

// / Returns the chunk indices which overlap the input rectangle.
func RcGetChunksOverlappingRect(cm *RcChunkyTriMesh, bmin, bmax [2]float32, ids []int, maxIds int) int {
	// Traverse tree
	i := 0
	n := 0
	for i < len(cm.Nodes) {
		node := &cm.Nodes[i]
		overlap := checkOverlapRect(bmin, bmax, node.Bmin, node.Bmax)
		isLeafNode := node.I >= 0

		if isLeafNode && overlap {
			if n < maxIds {
				ids[n] = i
				n++
			}
		}

		if overlap || isLeafNode {
			i++
		} else {
			escapeIndex := -node.I
			i += escapeIndex
		}
	}

	return n
}

// / Resumable variant of RcGetChunksOverlappingRect. The caller provides a
// / reusable id buffer and a running cursor; each call drains at most
// / len(ids) chunks and returns done=true once the tree is exhausted.
// / This bounds memory when iterating very large inputs.
func RcGetChunksOverlappingRectResumable(cm *RcChunkyTriMesh, bmin, bmax [2]float32,
	ids []int, maxIds int, count *int, currentNode *int) (done bool) {

	i := *currentNode
	n := 0
	for i < len(cm.Nodes) {
		if n >= maxIds {
			// Buffer full, resume from this node on the next call.
			*currentNode = i
			*count = n
			return false
		}

		node := &cm.Nodes[i]
		overlap := checkOverlapRect(bmin, bmax, node.Bmin, node.Bmax)
		isLeafNode := node.I >= 0

		if isLeafNode && overlap {
			ids[n] = i
			n++
		}

		if overlap || isLeafNode {
			i++
		} else {
			escapeIndex := -node.I
			i += escapeIndex
		}
	}

	*currentNode = i
	*count = n
	return true
}
