// Package raster implements the pixel-level operations of the pipeline:
// rotation, region extraction, the four device-fit resize modes, and a
// high-quality box-filter downsampler. Every function here is pure and
// CPU-bound; none of them perform I/O.
package raster

import "sync"

// Frame is an RGBA8 raster, row-major, four bytes per pixel (R,G,B,A in
// that order, alpha generally 255 for decoded photographic/scan sources).
type Frame struct {
	Width, Height int
	Pix           []byte // len == Width*Height*4
}

// NewFrame allocates a zeroed frame of the given size, preferring a pooled
// buffer when one of the right capacity is available.
func NewFrame(w, h int) *Frame {
	need := w * h * 4
	buf := bufPool.get(need)
	if buf == nil {
		buf = make([]byte, need)
	} else {
		clear(buf)
	}
	return &Frame{Width: w, Height: h, Pix: buf}
}

// Release returns the frame's backing buffer to the pool. The frame must
// not be used again afterward.
func (f *Frame) Release() {
	if f == nil || f.Pix == nil {
		return
	}
	bufPool.put(f.Pix)
	f.Pix = nil
}

// At returns the RGBA quad for pixel (x,y).
func (f *Frame) At(x, y int) (r, g, b, a byte) {
	i := (y*f.Width + x) * 4
	return f.Pix[i], f.Pix[i+1], f.Pix[i+2], f.Pix[i+3]
}

// Set writes the RGBA quad for pixel (x,y).
func (f *Frame) Set(x, y int, r, g, b, a byte) {
	i := (y*f.Width + x) * 4
	f.Pix[i], f.Pix[i+1], f.Pix[i+2], f.Pix[i+3] = r, g, b, a
}

// pixelPool is a small bounded pool of reusable pixel buffers, grounded on
// the teacher's pdf.go zlibWriterPool: a sync.Pool that discards anything
// not matching what's needed rather than growing unbounded.
type pixelPool struct {
	mu    sync.Mutex
	bufs  [][]byte
	limit int
}

var bufPool = &pixelPool{limit: 8}

func (p *pixelPool) get(size int) []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, b := range p.bufs {
		if cap(b) >= size {
			p.bufs = append(p.bufs[:i], p.bufs[i+1:]...)
			return b[:size]
		}
	}
	return nil
}

func (p *pixelPool) put(b []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.bufs) >= p.limit {
		return
	}
	p.bufs = append(p.bufs, b)
}
