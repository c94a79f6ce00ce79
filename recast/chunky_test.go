package recast

import (
	"testing"
)

// Builds a simple grid of triangles for chunky mesh tests.
func gridMesh(n int) (verts []float32, tris []int) {
	for y := 0; y <= n; y++ {
		for x := 0; x <= n; x++ {
			verts = append(verts, float32(x), float32(y), 0)
		}
	}
	stride := n + 1
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			a := y*stride + x
			b := a + 1
			c := a + stride
			d := c + 1
			tris = append(tris, a, b, d, a, d, c)
		}
	}
	return verts, tris
}

func TestCreateChunkyTriMesh(t *testing.T) {
	verts, tris := gridMesh(16)
	ntris := len(tris) / 3

	cm, ok := RcCreateChunkyTriMesh(verts, tris, ntris, 32)
	assertTrue(t, ok, "Chunky mesh builds")
	assertTrue(t, cm.NTris == ntris, "Triangle count carries over")
	assertTrue(t, cm.MaxTrisPerChunk <= 32, "Leaves respect the chunk limit")

	// All triangles are reachable through the leaves exactly once.
	total := 0
	for i := range cm.Nodes {
		if cm.Nodes[i].I >= 0 {
			total += cm.Nodes[i].N
		}
	}
	assertTrue(t, total == ntris, "Leaves cover all triangles")
}

func TestGetChunksOverlappingRect(t *testing.T) {
	verts, tris := gridMesh(16)
	cm, _ := RcCreateChunkyTriMesh(verts, tris, len(tris)/3, 32)

	ids := make([]int, 128)

	// A rect over a corner returns fewer chunks than the whole bounds.
	nCorner := RcGetChunksOverlappingRect(cm, [2]float32{0, 0}, [2]float32{2, 2}, ids, len(ids))
	nAll := RcGetChunksOverlappingRect(cm, [2]float32{0, 0}, [2]float32{16, 16}, ids, len(ids))
	assertTrue(t, nCorner > 0, "Corner query finds chunks")
	assertTrue(t, nAll > nCorner, "Full query finds more chunks")

	// A rect outside the mesh finds nothing.
	nOut := RcGetChunksOverlappingRect(cm, [2]float32{100, 100}, [2]float32{110, 110}, ids, len(ids))
	assertTrue(t, nOut == 0, "Outside query finds nothing")
}

func TestGetChunksOverlappingRectResumable(t *testing.T) {
	verts, tris := gridMesh(16)
	cm, _ := RcCreateChunkyTriMesh(verts, tris, len(tris)/3, 8)

	bmin := [2]float32{0, 0}
	bmax := [2]float32{16, 16}

	// Reference: one-shot query with a large buffer.
	ref := make([]int, 1024)
	nRef := RcGetChunksOverlappingRect(cm, bmin, bmax, ref, len(ref))

	// Resumable query with a tiny buffer must visit the same chunks in
	// the same order.
	var got []int
	ids := make([]int, 3)
	currentNode := 0
	for {
		var n int
		done := RcGetChunksOverlappingRectResumable(cm, bmin, bmax, ids, len(ids), &n, &currentNode)
		got = append(got, ids[:n]...)
		if done {
			break
		}
	}

	assertTrue(t, len(got) == nRef, "Resumable query visits the same chunk count")
	for i := range got {
		if got[i] != ref[i] {
			t.Fatalf("chunk order mismatch at %d: got %d want %d", i, got[i], ref[i])
		}
	}
}
