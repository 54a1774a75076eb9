// Package container implements the XTC/XTCH file codec of spec.md §4.8:
// header, optional metadata block, index table, and data region, in both
// buffered and streaming writer variants, plus a reader.
package container

import "encoding/binary"

// IndexEntrySize is the fixed size, in bytes, of one page index entry.
const IndexEntrySize = 16

// IndexEntry is one fixed 16-byte index record (spec.md §3).
type IndexEntry struct {
	Offset        uint64
	Size          uint32
	Width, Height uint16
}

func (e IndexEntry) marshal() []byte {
	buf := make([]byte, IndexEntrySize)
	binary.LittleEndian.PutUint64(buf[0:8], e.Offset)
	binary.LittleEndian.PutUint32(buf[8:12], e.Size)
	binary.LittleEndian.PutUint16(buf[12:14], e.Width)
	binary.LittleEndian.PutUint16(buf[14:16], e.Height)
	return buf
}

func unmarshalIndexEntry(b []byte) IndexEntry {
	return IndexEntry{
		Offset: binary.LittleEndian.Uint64(b[0:8]),
		Size:   binary.LittleEndian.Uint32(b[8:12]),
		Width:  binary.LittleEndian.Uint16(b[12:14]),
		Height: binary.LittleEndian.Uint16(b[14:16]),
	}
}
