package container

import (
	"encoding/binary"
	"io"

	"github.com/xtconv/xtconv/internal/pack"
	"github.com/xtconv/xtconv/internal/xerrors"
)

const (
	headerSizeNoMeta = 48
	headerSizeMeta   = 56

	flagsLowMetaPresent  = 0x01000100
	flagsHighMetaPresent = 0x00000001
)

// Magic is the 4-byte file magic: "XTC\0" for 1-bit, "XTCH" for 2-bit.
var (
	MagicXTC  = [4]byte{'X', 'T', 'C', 0}
	MagicXTCH = [4]byte{'X', 'T', 'C', 'H'}
)

// Options controls container assembly, shared by the buffered and
// streaming writers.
type Options struct {
	Is2Bit   bool
	Metadata *Metadata // nil means no metadata block
}

func magicFor(is2bit bool) [4]byte {
	if is2bit {
		return MagicXTCH
	}
	return MagicXTC
}

func headerLayout(hasMeta bool, pageCount int, metaBlockLen int) (headerSize int, metadataOffset, indexOffset, dataOffset uint64) {
	if hasMeta {
		headerSize = headerSizeMeta
	} else {
		headerSize = headerSizeNoMeta
	}
	if hasMeta {
		metadataOffset = uint64(headerSize)
		indexOffset = metadataOffset + uint64(metaBlockLen)
	} else {
		metadataOffset = 0
		indexOffset = uint64(headerSize)
	}
	dataOffset = indexOffset + uint64(pageCount*IndexEntrySize)
	return headerSize, metadataOffset, indexOffset, dataOffset
}

func writeHeaderBytes(opt Options, pageCount int, metadataOffset, indexOffset, dataOffset uint64, tocEntriesOffset uint64) []byte {
	hasMeta := opt.Metadata != nil
	size := headerSizeNoMeta
	if hasMeta {
		size = headerSizeMeta
	}
	buf := make([]byte, size)

	magic := magicFor(opt.Is2Bit)
	copy(buf[0:4], magic[:])
	binary.LittleEndian.PutUint16(buf[4:6], 1) // version
	binary.LittleEndian.PutUint16(buf[6:8], uint16(pageCount))

	if hasMeta {
		binary.LittleEndian.PutUint32(buf[8:12], flagsLowMetaPresent)
		binary.LittleEndian.PutUint32(buf[12:16], flagsHighMetaPresent)
	}
	binary.LittleEndian.PutUint64(buf[16:24], metadataOffset)
	binary.LittleEndian.PutUint64(buf[24:32], indexOffset)
	binary.LittleEndian.PutUint64(buf[32:40], dataOffset)
	// bytes 40:48 reserved, left zero.
	if hasMeta {
		binary.LittleEndian.PutUint64(buf[48:56], tocEntriesOffset)
	}
	return buf
}

// BuildBuffered assembles a complete container in memory from already
// packed pages, in the order given. It is the simplest, fully-synchronous
// realization of spec.md §4.8: the index is only written once every page's
// final size is known.
func BuildBuffered(pages []pack.Page, opt Options) ([]byte, error) {
	var metaBlock []byte
	if opt.Metadata != nil {
		metaBlock = opt.Metadata.marshal()
		if err := ValidateToc(opt.Metadata.Toc, len(pages)); err != nil {
			return nil, err
		}
	}

	headerSize, metadataOffset, indexOffset, dataOffset := headerLayout(opt.Metadata != nil, len(pages), len(metaBlock))

	var tocEntriesOffset uint64
	if opt.Metadata != nil {
		tocEntriesOffset = metadataOffset + titleFieldSize + authorFieldSize + publisherFieldSize + languageFieldSize + tocHeaderSize
	}

	// Pass 1: compute each page's absolute offset now that sizes are known.
	entries := make([]IndexEntry, len(pages))
	offset := dataOffset
	for i, p := range pages {
		entries[i] = IndexEntry{
			Offset: offset,
			Size:   uint32(len(p.Chunk)),
			Width:  uint16(p.Width),
			Height: uint16(p.Height),
		}
		offset += uint64(len(p.Chunk))
	}

	total := int(offset)
	out := make([]byte, total)

	copy(out[:headerSize], writeHeaderBytes(opt, len(pages), metadataOffset, indexOffset, dataOffset, tocEntriesOffset))
	if len(metaBlock) > 0 {
		copy(out[metadataOffset:], metaBlock)
	}
	for i, e := range entries {
		copy(out[int(indexOffset)+i*IndexEntrySize:], e.marshal())
	}
	for i, p := range pages {
		copy(out[entries[i].Offset:], p.Chunk)
	}

	return out, nil
}

// streamState is the streaming writer's linear state machine. NewStreamWriter
// writes the header, metadata and index in one step, so the writer itself
// only moves Header -> Data -> Closed.
type streamState int

const (
	stateHeader streamState = iota
	stateData
	stateClosed
)

// StreamWriter emits a container in one pass, writing the header, optional
// metadata block, and full index table up front (using pre-computed,
// uniform per-page sizes, since every streamed page is exactly devW x
// devH), then appending page chunks as they're produced.
type StreamWriter struct {
	w          io.Writer
	is2bit     bool
	pageSize   int
	pageCount  int
	written    int
	state      streamState
}

// NewStreamWriter writes the header, metadata block, and index table for a
// container of pageCount pages, each devW x devH, then returns a writer
// ready to accept page chunks via WritePage in order.
func NewStreamWriter(w io.Writer, pageCount, devW, devH int, is2bit bool, meta *Metadata) (*StreamWriter, error) {
	if meta != nil {
		if err := ValidateToc(meta.Toc, pageCount); err != nil {
			return nil, err
		}
	}

	var metaBlock []byte
	if meta != nil {
		metaBlock = meta.marshal()
	}

	headerSize, metadataOffset, indexOffset, dataOffset := headerLayout(meta != nil, pageCount, len(metaBlock))

	var tocEntriesOffset uint64
	if meta != nil {
		tocEntriesOffset = metadataOffset + titleFieldSize + authorFieldSize + publisherFieldSize + languageFieldSize + tocHeaderSize
	}

	opt := Options{Is2Bit: is2bit, Metadata: meta}
	if _, err := w.Write(writeHeaderBytes(opt, pageCount, metadataOffset, indexOffset, dataOffset, tocEntriesOffset)); err != nil {
		return nil, xerrors.Wrap(xerrors.KindIoFailure, "writing container header", err)
	}
	if len(metaBlock) > 0 {
		if _, err := w.Write(metaBlock); err != nil {
			return nil, xerrors.Wrap(xerrors.KindIoFailure, "writing metadata block", err)
		}
	}

	pageSize := pack.GetPageSize(devW, devH, is2bit)
	offset := dataOffset
	for i := 0; i < pageCount; i++ {
		e := IndexEntry{Offset: offset, Size: uint32(pageSize), Width: uint16(devW), Height: uint16(devH)}
		if _, err := w.Write(e.marshal()); err != nil {
			return nil, xerrors.Wrap(xerrors.KindIoFailure, "writing index entry", err)
		}
		offset += uint64(pageSize)
	}
	_ = headerSize

	return &StreamWriter{w: w, is2bit: is2bit, pageSize: pageSize, pageCount: pageCount, state: stateData}, nil
}

// WritePage appends the next page chunk, in order. chunk must be exactly
// the pre-computed uniform page size for this container.
func (sw *StreamWriter) WritePage(chunk []byte) error {
	if sw.state != stateData {
		return xerrors.Newf(xerrors.KindInternalInvariant, "WritePage called outside the Data state")
	}
	if sw.written >= sw.pageCount {
		return xerrors.Newf(xerrors.KindInternalInvariant, "WritePage called after all %d pages were written", sw.pageCount)
	}
	if len(chunk) != sw.pageSize {
		return xerrors.Newf(xerrors.KindInternalInvariant, "page chunk is %d bytes, expected uniform size %d", len(chunk), sw.pageSize)
	}
	if _, err := sw.w.Write(chunk); err != nil {
		return xerrors.Wrap(xerrors.KindIoFailure, "writing page chunk", err)
	}
	sw.written++
	return nil
}

// Close transitions to Closed. It does not itself close the underlying
// io.Writer (the caller owns that); it only validates that every declared
// page was actually written.
func (sw *StreamWriter) Close() error {
	if sw.state == stateClosed {
		return nil
	}
	sw.state = stateClosed
	if sw.written != sw.pageCount {
		return xerrors.Newf(xerrors.KindInternalInvariant,
			"stream closed after %d of %d declared pages", sw.written, sw.pageCount)
	}
	return nil
}
