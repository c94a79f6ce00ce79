package detour

import (
	"errors"
	"fmt"
	"os"

	"github.com/ttvmkos/r5nav/common/rw"
)

var (
	ErrWrongMagic   = errors.New("navmesh: wrong magic")
	ErrWrongVersion = errors.New("navmesh: wrong version")
	ErrTruncated    = errors.New("navmesh: truncated data")
)

// / Serializes the tile payload into its on-disk blob. The sections are
// / written in a fixed order (header, polys, poly map, verts, links,
// / detail meshes, detail verts, detail tris, BV nodes, off-mesh
// / connections, cells), each starting on a 4-byte boundary.
func (d *NavMeshData) ToBin() []byte {
	w := rw.NewNavMeshDataBinWriter()
	h := d.Header

	// Header.
	w.WriteInt32(h.Magic)
	w.WriteInt32(h.Version)
	w.WriteInt32(h.X)
	w.WriteInt32(h.Y)
	w.WriteInt32(h.Layer)
	w.WriteUInt32(h.UserId)
	w.WriteInt32(h.PolyCount)
	w.WriteInt32(h.PolyMapCount)
	w.WriteInt32(h.VertCount)
	w.WriteInt32(h.MaxLinkCount)
	w.WriteInt32(h.DetailMeshCount)
	w.WriteInt32(h.DetailVertCount)
	w.WriteInt32(h.DetailTriCount)
	w.WriteInt32(h.BvNodeCount)
	w.WriteInt32(h.OffMeshConCount)
	w.WriteInt32(h.OffMeshBase)
	w.WriteInt32(h.MaxCellCount)
	w.WriteFloat32(h.WalkableHeight)
	w.WriteFloat32(h.WalkableRadius)
	w.WriteFloat32(h.WalkableClimb)
	w.WriteFloat32s(h.Bmin[:])
	w.WriteFloat32s(h.Bmax[:])
	w.WriteFloat32(h.BvQuantFactor)
	w.AlignWrite()

	// Polygons.
	for i := range d.NavPolys {
		p := &d.NavPolys[i]
		w.WriteUInt32(p.FirstLink)
		w.WriteUInt16s(p.Verts[:])
		w.WriteUInt16s(p.Neis[:])
		w.WriteUInt16(p.Flags)
		w.WriteUInt8(p.VertCount)
		w.WriteUInt8(p.AreaAndType)
		w.WriteUInt16(p.GroupId)
		w.WriteUInt16(p.SurfaceArea)
		w.WriteUInt16(p.Unk1)
		w.WriteUInt16(p.Unk2)
		w.WriteFloat32s(p.Center[:])
	}
	w.AlignWrite()

	// Poly map.
	w.WriteInt32s(d.PolyMap)
	w.AlignWrite()

	// Vertices.
	w.WriteFloat32s(d.NavVerts)
	w.AlignWrite()

	// Links. The whole slot array is serialized; free slots carry their
	// zeroed state and are rediscovered by scanning on load.
	for i := range d.Links {
		l := &d.Links[i]
		if DT_POLYREF64 == 1 {
			w.WriteUInt64(uint64(l.Ref))
		} else {
			w.WriteUInt32(uint32(l.Ref))
		}
		w.WriteUInt32(l.Next)
		w.WriteUInt8(l.Edge)
		w.WriteUInt8(l.Side)
		w.WriteUInt8(l.Bmin)
		w.WriteUInt8(l.Bmax)
		w.WriteUInt8(l.TraverseType)
		w.WriteUInt8(l.TraverseDist)
		w.WriteUInt16(l.ReverseLink)
	}
	w.AlignWrite()

	// Detail meshes.
	for i := range d.DetailMeshes {
		dm := &d.DetailMeshes[i]
		w.WriteUInt32(dm.VertBase)
		w.WriteUInt32(dm.TriBase)
		w.WriteUInt8(dm.VertCount)
		w.WriteUInt8(dm.TriCount)
	}
	w.AlignWrite()

	// Detail verts.
	w.WriteFloat32s(d.DetailVerts)
	w.AlignWrite()

	// Detail tris.
	w.WriteUInt8s(d.DetailTris)
	w.AlignWrite()

	// BV nodes.
	for i := range d.BvTree {
		n := &d.BvTree[i]
		w.WriteUInt16s(n.Bmin[:])
		w.WriteUInt16s(n.Bmax[:])
		w.WriteInt32(n.I)
	}
	w.AlignWrite()

	// Off-mesh connections.
	for i := range d.OffMeshCons {
		c := &d.OffMeshCons[i]
		w.WriteFloat32s(c.Pos[:])
		w.WriteFloat32(c.Rad)
		w.WriteUInt16(c.Poly)
		w.WriteUInt8(c.Side)
		w.WriteUInt8(c.TraverseType)
		w.WriteUInt16(c.UserId)
		w.WriteUInt16(c.HintIndex)
		w.WriteFloat32s(c.RefPos[:])
		w.WriteFloat32(c.RefYaw)
	}
	w.AlignWrite()

	// Cells.
	pad := make([]byte, dtCellPadSize)
	for i := range d.Cells {
		c := &d.Cells[i]
		w.WriteFloat32s(c.Pos[:])
		w.WriteUInt32(c.PolyIndex)
		w.WriteUInt8(0)
		w.WriteUInt8s(c.OccupyState[:])
		w.WriteBytes(pad)
	}
	w.AlignWrite()

	return w.Bytes()
}

// / Deserializes a tile blob previously produced by ToBin.
func (d *NavMeshData) FromBin(data []byte) (err error) {
	defer func() {
		if recover() != nil {
			err = ErrTruncated
		}
	}()

	r := rw.NewNavMeshDataBinReader(data)
	total := len(data)

	h := &DtMeshHeader{}
	h.Magic = r.ReadInt32()
	if h.Magic != DT_NAVMESH_MAGIC {
		return ErrWrongMagic
	}
	h.Version = r.ReadInt32()
	if h.Version != DT_NAVMESH_VERSION {
		return ErrWrongVersion
	}
	h.X = r.ReadInt32()
	h.Y = r.ReadInt32()
	h.Layer = r.ReadInt32()
	h.UserId = r.ReadUInt32()
	h.PolyCount = r.ReadInt32()
	h.PolyMapCount = r.ReadInt32()
	h.VertCount = r.ReadInt32()
	h.MaxLinkCount = r.ReadInt32()
	h.DetailMeshCount = r.ReadInt32()
	h.DetailVertCount = r.ReadInt32()
	h.DetailTriCount = r.ReadInt32()
	h.BvNodeCount = r.ReadInt32()
	h.OffMeshConCount = r.ReadInt32()
	h.OffMeshBase = r.ReadInt32()
	h.MaxCellCount = r.ReadInt32()
	h.WalkableHeight = r.ReadFloat32()
	h.WalkableRadius = r.ReadFloat32()
	h.WalkableClimb = r.ReadFloat32()
	r.ReadFloat32s(h.Bmin[:])
	r.ReadFloat32s(h.Bmax[:])
	h.BvQuantFactor = r.ReadFloat32()
	r.AlignRead(total)
	d.Header = h

	// Polygons.
	d.NavPolys = make([]DtPoly, h.PolyCount)
	for i := range d.NavPolys {
		p := &d.NavPolys[i]
		p.FirstLink = r.ReadUInt32()
		r.ReadUInt16s(p.Verts[:])
		r.ReadUInt16s(p.Neis[:])
		p.Flags = r.ReadUInt16()
		p.VertCount = r.ReadUInt8()
		p.AreaAndType = r.ReadUInt8()
		p.GroupId = r.ReadUInt16()
		p.SurfaceArea = r.ReadUInt16()
		p.Unk1 = r.ReadUInt16()
		p.Unk2 = r.ReadUInt16()
		r.ReadFloat32s(p.Center[:])
	}
	r.AlignRead(total)

	// Poly map.
	d.PolyMap = make([]int32, h.PolyMapCount)
	r.ReadInt32s(d.PolyMap)
	r.AlignRead(total)

	// Vertices.
	d.NavVerts = make([]float32, 3*h.VertCount)
	r.ReadFloat32s(d.NavVerts)
	r.AlignRead(total)

	// Links.
	d.Links = make([]DtLink, h.MaxLinkCount)
	for i := range d.Links {
		l := &d.Links[i]
		if DT_POLYREF64 == 1 {
			l.Ref = DtPolyRef(r.ReadUInt64())
		} else {
			l.Ref = DtPolyRef(r.ReadUInt32())
		}
		l.Next = r.ReadUInt32()
		l.Edge = r.ReadUInt8()
		l.Side = r.ReadUInt8()
		l.Bmin = r.ReadUInt8()
		l.Bmax = r.ReadUInt8()
		l.TraverseType = r.ReadUInt8()
		l.TraverseDist = r.ReadUInt8()
		l.ReverseLink = r.ReadUInt16()
	}
	r.AlignRead(total)

	// Detail meshes.
	d.DetailMeshes = make([]DtPolyDetail, h.DetailMeshCount)
	for i := range d.DetailMeshes {
		dm := &d.DetailMeshes[i]
		dm.VertBase = r.ReadUInt32()
		dm.TriBase = r.ReadUInt32()
		dm.VertCount = r.ReadUInt8()
		dm.TriCount = r.ReadUInt8()
	}
	r.AlignRead(total)

	// Detail verts.
	d.DetailVerts = make([]float32, 3*h.DetailVertCount)
	r.ReadFloat32s(d.DetailVerts)
	r.AlignRead(total)

	// Detail tris.
	d.DetailTris = make([]uint8, 4*h.DetailTriCount)
	r.ReadUInt8s(d.DetailTris)
	r.AlignRead(total)

	// BV nodes.
	d.BvTree = make([]DtBVNode, h.BvNodeCount)
	for i := range d.BvTree {
		n := &d.BvTree[i]
		r.ReadUInt16s(n.Bmin[:])
		r.ReadUInt16s(n.Bmax[:])
		n.I = r.ReadInt32()
	}
	r.AlignRead(total)

	// Off-mesh connections.
	d.OffMeshCons = make([]DtOffMeshConnection, h.OffMeshConCount)
	for i := range d.OffMeshCons {
		c := &d.OffMeshCons[i]
		r.ReadFloat32s(c.Pos[:])
		c.Rad = r.ReadFloat32()
		c.Poly = r.ReadUInt16()
		c.Side = r.ReadUInt8()
		c.TraverseType = r.ReadUInt8()
		c.UserId = r.ReadUInt16()
		c.HintIndex = r.ReadUInt16()
		r.ReadFloat32s(c.RefPos[:])
		c.RefYaw = r.ReadFloat32()
	}
	r.AlignRead(total)

	// Cells.
	d.Cells = make([]DtCell, h.MaxCellCount)
	for i := range d.Cells {
		c := &d.Cells[i]
		r.ReadFloat32s(c.Pos[:])
		c.PolyIndex = r.ReadUInt32()
		r.ReadUInt8()
		r.ReadUInt8s(c.OccupyState[:])
		r.ReadBytes(dtCellPadSize)
	}

	return nil
}

// / Serializes the whole navmesh into a set blob: set header, per-tile
// / headers + blobs, then the traverse tables.
func (mesh *DtNavMesh) SaveToBytes() []byte {
	w := rw.NewNavMeshDataBinWriter()
	params := mesh.GetParams()

	// Count valid tiles up front.
	numTiles := int32(0)
	for i := 0; i < mesh.GetMaxTiles(); i++ {
		tile := mesh.GetTile(i)
		if tile.Header == nil || tile.Data == nil {
			continue
		}
		numTiles++
	}

	// Set header.
	w.WriteInt32(DT_NAVMESH_SET_MAGIC)
	w.WriteInt32(DT_NAVMESH_SET_VERSION)
	w.WriteInt32(numTiles)
	w.WriteFloat32s(params.Orig[:])
	w.WriteFloat32(params.TileWidth)
	w.WriteFloat32(params.TileHeight)
	w.WriteInt32(params.MaxTiles)
	w.WriteInt32(params.MaxPolys)
	w.WriteInt32(params.PolyGroupCount)
	w.WriteInt32(params.TraverseTableSize)
	w.WriteInt32(params.TraverseTableCount)
	w.WriteInt32(params.MagicDataCount)

	// Tiles.
	for i := 0; i < mesh.GetMaxTiles(); i++ {
		tile := mesh.GetTile(i)
		if tile.Header == nil || tile.Data == nil {
			continue
		}

		// Snapshot the live link state into the data payload so the blob
		// carries the portal, off-mesh and traverse links.
		blob := tile.Data.ToBin()

		if DT_POLYREF64 == 1 {
			w.WriteUInt64(uint64(mesh.GetTileRef(tile)))
		} else {
			w.WriteUInt32(uint32(mesh.GetTileRef(tile)))
		}
		w.WriteInt32(int32(len(blob)))
		w.WriteBytes(blob)
	}

	// Traverse tables.
	if params.PolyGroupCount >= DT_MIN_POLY_GROUP_COUNT {
		for t := 0; t < int(params.TraverseTableCount); t++ {
			table := mesh.m_traverseTables[t]
			w.WriteInt32s(table)
		}
	}

	return w.Bytes()
}

// / Reconstructs a navmesh from a set blob previously produced by
// / SaveToBytes. The load leaves no side effects on failure.
func LoadNavMeshFromBytes(data []byte) (mesh *DtNavMesh, err error) {
	defer func() {
		if recover() != nil {
			mesh, err = nil, ErrTruncated
		}
	}()

	r := rw.NewNavMeshDataBinReader(data)

	magic := r.ReadInt32()
	if magic != DT_NAVMESH_SET_MAGIC {
		return nil, ErrWrongMagic
	}
	version := r.ReadInt32()
	if DtGetNavMeshVersionForSet(version) == -1 || version != DT_NAVMESH_SET_VERSION {
		return nil, ErrWrongVersion
	}
	numTiles := r.ReadInt32()

	var params NavMeshParams
	r.ReadFloat32s(params.Orig[:])
	params.TileWidth = r.ReadFloat32()
	params.TileHeight = r.ReadFloat32()
	params.MaxTiles = r.ReadInt32()
	params.MaxPolys = r.ReadInt32()
	params.PolyGroupCount = r.ReadInt32()
	params.TraverseTableSize = r.ReadInt32()
	params.TraverseTableCount = r.ReadInt32()
	params.MagicDataCount = r.ReadInt32()

	mesh, status := NewDtNavMesh(&params)
	if status.Failed() {
		return nil, fmt.Errorf("navmesh: init failed with status 0x%x", uint32(status))
	}

	for i := int32(0); i < numTiles; i++ {
		var tileRef DtTileRef
		if DT_POLYREF64 == 1 {
			tileRef = DtTileRef(r.ReadUInt64())
		} else {
			tileRef = DtTileRef(r.ReadUInt32())
		}
		dataSize := r.ReadInt32()
		if tileRef == 0 || dataSize <= 0 {
			return nil, ErrTruncated
		}

		blob := r.ReadBytes(int(dataSize))
		tileData := &NavMeshData{}
		if err := tileData.FromBin(blob); err != nil {
			return nil, err
		}

		if _, status := mesh.AddTile(tileData, DT_TILE_FREE_DATA, tileRef); status.Failed() {
			return nil, fmt.Errorf("navmesh: add tile failed with status 0x%x", uint32(status))
		}
	}

	// Traverse tables.
	if params.PolyGroupCount >= DT_MIN_POLY_GROUP_COUNT {
		mesh.AllocTraverseTables(int(params.TraverseTableCount))
		for t := 0; t < int(params.TraverseTableCount); t++ {
			table := make([]int32, params.TraverseTableSize/4)
			r.ReadInt32s(table)
			mesh.SetTraverseTable(t, table)
		}
	}

	return mesh, nil
}

// / Writes the navmesh to the given file path.
func SaveNavMesh(path string, mesh *DtNavMesh) error {
	return os.WriteFile(path, mesh.SaveToBytes(), 0644)
}

// / Reads a navmesh from the given file path.
func LoadNavMesh(path string) (*DtNavMesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadNavMeshFromBytes(data)
}
