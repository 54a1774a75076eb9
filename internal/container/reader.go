package container

import (
	"encoding/binary"

	"github.com/xtconv/xtconv/internal/xerrors"
)

// Header is the parsed, fixed-size file header (spec.md §4.8).
type Header struct {
	Is2Bit           bool
	Version          uint16
	PageCount        uint16
	HasMetadata      bool
	MetadataOffset   uint64
	IndexOffset      uint64
	DataOffset       uint64
	TocEntriesOffset uint64
}

func parseHeader(b []byte) (Header, error) {
	if len(b) < headerSizeNoMeta {
		return Header{}, xerrors.Newf(xerrors.KindMalformedContainer, "container too short for a header: %d bytes", len(b))
	}

	var hdr Header
	switch {
	case b[0] == 'X' && b[1] == 'T' && b[2] == 'C' && b[3] == 0:
		hdr.Is2Bit = false
	case b[0] == 'X' && b[1] == 'T' && b[2] == 'C' && b[3] == 'H':
		hdr.Is2Bit = true
	default:
		return Header{}, xerrors.Newf(xerrors.KindMalformedContainer, "bad magic bytes %v", b[0:4])
	}

	hdr.Version = binary.LittleEndian.Uint16(b[4:6])
	hdr.PageCount = binary.LittleEndian.Uint16(b[6:8])
	flagsLow := binary.LittleEndian.Uint32(b[8:12])
	flagsHigh := binary.LittleEndian.Uint32(b[12:16])
	hdr.HasMetadata = flagsLow == flagsLowMetaPresent && flagsHigh == flagsHighMetaPresent

	hdr.MetadataOffset = binary.LittleEndian.Uint64(b[16:24])
	hdr.IndexOffset = binary.LittleEndian.Uint64(b[24:32])
	hdr.DataOffset = binary.LittleEndian.Uint64(b[32:40])

	if hdr.HasMetadata {
		if len(b) < headerSizeMeta {
			return Header{}, xerrors.Newf(xerrors.KindMalformedContainer, "header declares metadata but is only %d bytes", len(b))
		}
		hdr.TocEntriesOffset = binary.LittleEndian.Uint64(b[48:56])
	}

	return hdr, nil
}

// Reader gives random access to a fully buffered container's pages and
// metadata. It never copies the backing buffer; page chunks are returned
// as subslices.
type Reader struct {
	raw     []byte
	Header  Header
	Meta    *Metadata
	entries []IndexEntry
}

// NewReader parses and validates a complete container held in memory.
// Failures use xerrors.MalformedContainer, per spec.md §4.8's failure
// semantics: any header/offset/index inconsistency rejects the whole file
// rather than returning partial pages.
func NewReader(raw []byte) (*Reader, error) {
	hdr, err := parseHeader(raw)
	if err != nil {
		return nil, err
	}

	r := &Reader{raw: raw, Header: hdr}

	if hdr.HasMetadata {
		if hdr.IndexOffset < hdr.MetadataOffset || uint64(len(raw)) < hdr.IndexOffset {
			return nil, xerrors.Newf(xerrors.KindMalformedContainer, "metadata block offsets out of range")
		}
		meta, err := unmarshalMetadata(raw[hdr.MetadataOffset:hdr.IndexOffset])
		if err != nil {
			return nil, err
		}
		r.Meta = &meta
	}

	pageCount := int(hdr.PageCount)
	indexEnd := hdr.IndexOffset + uint64(pageCount*IndexEntrySize)
	if indexEnd > uint64(len(raw)) || indexEnd < hdr.IndexOffset {
		return nil, xerrors.Newf(xerrors.KindMalformedContainer,
			"index table (%d entries at offset %d) overruns container of %d bytes", pageCount, hdr.IndexOffset, len(raw))
	}

	entries := make([]IndexEntry, pageCount)
	for i := 0; i < pageCount; i++ {
		start := hdr.IndexOffset + uint64(i*IndexEntrySize)
		entries[i] = unmarshalIndexEntry(raw[start : start+IndexEntrySize])
		e := entries[i]
		if e.Offset < hdr.DataOffset {
			return nil, xerrors.Newf(xerrors.KindMalformedContainer,
				"index entry %d offset %d precedes data region starting at %d", i, e.Offset, hdr.DataOffset)
		}
		end := e.Offset + uint64(e.Size)
		if end < e.Offset || end > uint64(len(raw)) {
			return nil, xerrors.Newf(xerrors.KindMalformedContainer,
				"index entry %d (offset %d, size %d) overruns container of %d bytes", i, e.Offset, e.Size, len(raw))
		}
	}
	r.entries = entries

	if r.Meta != nil {
		if err := ValidateToc(r.Meta.Toc, pageCount); err != nil {
			return nil, xerrors.Newf(xerrors.KindMalformedContainer, "invalid table of contents: %v", err)
		}
	}

	return r, nil
}

// PageCount reports the number of pages declared by the header.
func (r *Reader) PageCount() int { return len(r.entries) }

// Entry returns the index entry for page i (0-indexed).
func (r *Reader) Entry(i int) (IndexEntry, error) {
	if i < 0 || i >= len(r.entries) {
		return IndexEntry{}, xerrors.Newf(xerrors.KindMalformedContainer, "page index %d out of range [0,%d)", i, len(r.entries))
	}
	return r.entries[i], nil
}

// Chunk returns the raw page chunk bytes (header + payload) for page i, a
// subslice of the container's own backing buffer.
func (r *Reader) Chunk(i int) ([]byte, error) {
	e, err := r.Entry(i)
	if err != nil {
		return nil, err
	}
	return r.raw[e.Offset : e.Offset+uint64(e.Size)], nil
}
