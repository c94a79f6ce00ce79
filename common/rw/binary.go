package rw

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
)

// ReaderWriter is a little-endian codec over a byte buffer. Navigation
// mesh tile and set data is always stored little-endian regardless of
// host order.
type ReaderWriter struct {
	order   binary.ByteOrder
	dataBuf []byte
	rw      bytes.Buffer
}

var ErrShortRead = errors.New("rw: unexpected end of data")

func NewNavMeshDataBinWriter() *ReaderWriter {
	return &ReaderWriter{order: binary.LittleEndian, dataBuf: make([]byte, 8)}
}

func NewNavMeshDataBinReader(data []byte) *ReaderWriter {
	d := &ReaderWriter{order: binary.LittleEndian, dataBuf: make([]byte, 8)}
	d.rw.Write(data)
	return d
}

func (w *ReaderWriter) Len() int {
	return w.rw.Len()
}

func (w *ReaderWriter) Bytes() []byte {
	return w.rw.Bytes()
}

func (w *ReaderWriter) ReadUInt8() uint8 {
	res, err := w.rw.ReadByte()
	if err != nil {
		panic(ErrShortRead)
	}
	return res
}

func (w *ReaderWriter) ReadInt8() int8 {
	return int8(w.ReadUInt8())
}

func (w *ReaderWriter) ReadUInt8s(value []uint8) {
	for i := range value {
		value[i] = w.ReadUInt8()
	}
}

func (w *ReaderWriter) ReadUInt16() uint16 {
	w.readFull(2)
	return w.order.Uint16(w.dataBuf[:2])
}

func (w *ReaderWriter) ReadInt16() int16 {
	return int16(w.ReadUInt16())
}

func (w *ReaderWriter) ReadUInt16s(value []uint16) {
	for i := range value {
		value[i] = w.ReadUInt16()
	}
}

func (w *ReaderWriter) ReadInt16s(value []int16) {
	for i := range value {
		value[i] = w.ReadInt16()
	}
}

func (w *ReaderWriter) ReadUInt32() uint32 {
	w.readFull(4)
	return w.order.Uint32(w.dataBuf[:4])
}

func (w *ReaderWriter) ReadInt32() int32 {
	return int32(w.ReadUInt32())
}

func (w *ReaderWriter) ReadUInt32s(value []uint32) {
	for i := range value {
		value[i] = w.ReadUInt32()
	}
}

func (w *ReaderWriter) ReadInt32s(value []int32) {
	for i := range value {
		value[i] = w.ReadInt32()
	}
}

func (w *ReaderWriter) ReadUInt64() uint64 {
	w.readFull(8)
	return w.order.Uint64(w.dataBuf[:8])
}

func (w *ReaderWriter) ReadFloat32() float32 {
	return math.Float32frombits(w.ReadUInt32())
}

func (w *ReaderWriter) ReadFloat32s(value []float32) {
	for i := range value {
		value[i] = w.ReadFloat32()
	}
}

func (w *ReaderWriter) ReadBytes(n int) []byte {
	out := make([]byte, n)
	m, err := w.rw.Read(out)
	if err != nil || m != n {
		panic(ErrShortRead)
	}
	return out
}

func (w *ReaderWriter) readFull(n int) {
	m, err := w.rw.Read(w.dataBuf[:n])
	if err != nil || m != n {
		panic(ErrShortRead)
	}
}

func (w *ReaderWriter) WriteUInt8(value uint8) {
	w.rw.WriteByte(value)
}

func (w *ReaderWriter) WriteInt8(value int8) {
	w.WriteUInt8(uint8(value))
}

func (w *ReaderWriter) WriteUInt8s(value []uint8) {
	w.rw.Write(value)
}

func (w *ReaderWriter) WriteUInt16(value uint16) {
	w.order.PutUint16(w.dataBuf[:2], value)
	w.rw.Write(w.dataBuf[:2])
}

func (w *ReaderWriter) WriteInt16(value int16) {
	w.WriteUInt16(uint16(value))
}

func (w *ReaderWriter) WriteUInt16s(value []uint16) {
	for _, v := range value {
		w.WriteUInt16(v)
	}
}

func (w *ReaderWriter) WriteInt16s(value []int16) {
	for _, v := range value {
		w.WriteInt16(v)
	}
}

func (w *ReaderWriter) WriteUInt32(value uint32) {
	w.order.PutUint32(w.dataBuf[:4], value)
	w.rw.Write(w.dataBuf[:4])
}

func (w *ReaderWriter) WriteInt32(value int32) {
	w.WriteUInt32(uint32(value))
}

func (w *ReaderWriter) WriteUInt32s(value []uint32) {
	for _, v := range value {
		w.WriteUInt32(v)
	}
}

func (w *ReaderWriter) WriteInt32s(value []int32) {
	for _, v := range value {
		w.WriteInt32(v)
	}
}

func (w *ReaderWriter) WriteUInt64(value uint64) {
	w.order.PutUint64(w.dataBuf[:8], value)
	w.rw.Write(w.dataBuf[:8])
}

func (w *ReaderWriter) WriteFloat32(value float32) {
	w.WriteUInt32(math.Float32bits(value))
}

func (w *ReaderWriter) WriteFloat32s(value []float32) {
	for _, v := range value {
		w.WriteFloat32(v)
	}
}

func (w *ReaderWriter) WriteBytes(value []byte) {
	w.rw.Write(value)
}

// AlignWrite pads the buffer with zero bytes up to the next 4-byte
// boundary. Tile sections always start 4-byte aligned.
func (w *ReaderWriter) AlignWrite() {
	for w.rw.Len()&3 != 0 {
		w.rw.WriteByte(0)
	}
}

// AlignRead skips the zero padding emitted by AlignWrite. The reader
// tracks consumption through the remaining length, so alignment is
// derived from the total size handed to the constructor.
func (w *ReaderWriter) AlignRead(total int) {
	consumed := total - w.rw.Len()
	for consumed&3 != 0 {
		w.ReadUInt8()
		consumed++
	}
}
