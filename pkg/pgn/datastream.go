package pgn

import "encoding/binary"

// Missing-value sentinels. N2K encodes an absent numeric field as the
// largest representable value for its width (high bit clear for signed).
const (
	missingUint8  = 0xFF
	missingInt8   = 0x7F
	missingUint16 = 0xFFFF
	missingInt16  = 0x7FFF
	missingUint32 = 0xFFFFFFFF
	missingInt32  = 0x7FFFFFFF
	missingInt64  = 0x7FFFFFFFFFFFFFFF
)

// DataStream reads and writes whole-byte PGN payload fields. The offset acts
// as the cursor; reads past the end and reads of a missing-value sentinel
// both report ok=false. Writes grow the underlying buffer, and a nil value
// writes the field's missing sentinel, so a reverse converter can hand back
// exactly the fields its sentence carried.
type DataStream struct {
	data   []byte
	offset int
}

// NewDataStream returns a stream positioned at the start of data. Pass nil
// to start an empty stream for writing.
func NewDataStream(data []byte) *DataStream {
	return &DataStream{data: data}
}

// Bytes returns the stream contents written so far.
func (s *DataStream) Bytes() []byte {
	return s.data
}

// Skip advances the cursor n bytes without interpreting them.
func (s *DataStream) Skip(n int) {
	s.offset += n
}

// ReadRawByte returns the next raw byte with no sentinel interpretation,
// for packed bit fields.
func (s *DataStream) ReadRawByte() (byte, bool) {
	if s.offset >= len(s.data) {
		return 0, false
	}
	b := s.data[s.offset]
	s.offset++
	return b, true
}

// ReadUint8 reads one unsigned byte; 0xFF means missing.
func (s *DataStream) ReadUint8() (uint8, bool) {
	b, ok := s.ReadRawByte()
	if !ok || b == missingUint8 {
		return 0, false
	}
	return b, true
}

// ReadInt8 reads one signed byte; 0x7F means missing.
func (s *DataStream) ReadInt8() (int8, bool) {
	b, ok := s.ReadRawByte()
	if !ok || int8(b) == missingInt8 {
		return 0, false
	}
	return int8(b), true
}

// ReadUint16 reads a little-endian uint16; 0xFFFF means missing.
func (s *DataStream) ReadUint16() (uint16, bool) {
	if s.offset+2 > len(s.data) {
		s.offset = len(s.data)
		return 0, false
	}
	v := binary.LittleEndian.Uint16(s.data[s.offset:])
	s.offset += 2
	if v == missingUint16 {
		return 0, false
	}
	return v, true
}

// ReadInt16 reads a little-endian int16; 0x7FFF means missing.
func (s *DataStream) ReadInt16() (int16, bool) {
	if s.offset+2 > len(s.data) {
		s.offset = len(s.data)
		return 0, false
	}
	v := int16(binary.LittleEndian.Uint16(s.data[s.offset:]))
	s.offset += 2
	if v == missingInt16 {
		return 0, false
	}
	return v, true
}

// ReadUint32 reads a little-endian uint32; 0xFFFFFFFF means missing.
func (s *DataStream) ReadUint32() (uint32, bool) {
	if s.offset+4 > len(s.data) {
		s.offset = len(s.data)
		return 0, false
	}
	v := binary.LittleEndian.Uint32(s.data[s.offset:])
	s.offset += 4
	if v == missingUint32 {
		return 0, false
	}
	return v, true
}

// ReadInt32 reads a little-endian int32; 0x7FFFFFFF means missing.
func (s *DataStream) ReadInt32() (int32, bool) {
	if s.offset+4 > len(s.data) {
		s.offset = len(s.data)
		return 0, false
	}
	v := int32(binary.LittleEndian.Uint32(s.data[s.offset:]))
	s.offset += 4
	if v == missingInt32 {
		return 0, false
	}
	return v, true
}

// ReadInt64 reads a little-endian int64; 0x7FFF... means missing.
func (s *DataStream) ReadInt64() (int64, bool) {
	if s.offset+8 > len(s.data) {
		s.offset = len(s.data)
		return 0, false
	}
	v := int64(binary.LittleEndian.Uint64(s.data[s.offset:]))
	s.offset += 8
	if v == missingInt64 {
		return 0, false
	}
	return v, true
}

// WriteRawByte appends one raw byte.
func (s *DataStream) WriteRawByte(b byte) {
	s.data = append(s.data, b)
	s.offset = len(s.data)
}

// WriteUint8 appends v, or the uint8 missing sentinel when v is nil.
func (s *DataStream) WriteUint8(v *uint8) {
	if v == nil {
		s.WriteRawByte(missingUint8)
		return
	}
	s.WriteRawByte(*v)
}

// WriteInt8 appends v, or the int8 missing sentinel when v is nil.
func (s *DataStream) WriteInt8(v *int8) {
	if v == nil {
		s.WriteRawByte(byte(int8(missingInt8)))
		return
	}
	s.WriteRawByte(byte(*v))
}

// WriteUint16 appends v little endian, or the uint16 missing sentinel.
func (s *DataStream) WriteUint16(v *uint16) {
	out := uint16(missingUint16)
	if v != nil {
		out = *v
	}
	s.data = binary.LittleEndian.AppendUint16(s.data, out)
	s.offset = len(s.data)
}

// WriteInt16 appends v little endian, or the int16 missing sentinel.
func (s *DataStream) WriteInt16(v *int16) {
	out := int16(missingInt16)
	if v != nil {
		out = *v
	}
	s.data = binary.LittleEndian.AppendUint16(s.data, uint16(out))
	s.offset = len(s.data)
}

// WriteUint32 appends v little endian, or the uint32 missing sentinel.
func (s *DataStream) WriteUint32(v *uint32) {
	out := uint32(missingUint32)
	if v != nil {
		out = *v
	}
	s.data = binary.LittleEndian.AppendUint32(s.data, out)
	s.offset = len(s.data)
}

// WriteInt32 appends v little endian, or the int32 missing sentinel.
func (s *DataStream) WriteInt32(v *int32) {
	out := int32(missingInt32)
	if v != nil {
		out = *v
	}
	s.data = binary.LittleEndian.AppendUint32(s.data, uint32(out))
	s.offset = len(s.data)
}

// WriteInt64 appends v little endian, or the int64 missing sentinel.
func (s *DataStream) WriteInt64(v *int64) {
	out := int64(missingInt64)
	if v != nil {
		out = *v
	}
	s.data = binary.LittleEndian.AppendUint64(s.data, uint64(out))
	s.offset = len(s.data)
}
