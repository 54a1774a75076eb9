package pack

import (
	"testing"

	"github.com/xtconv/xtconv/internal/raster"
)

func solidGray(w, h int, v byte) *raster.Frame {
	f := raster.NewFrame(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			f.Set(x, y, v, v, v, 255)
		}
	}
	return f
}

func TestGetPageSizeFormulas(t *testing.T) {
	if got, want := GetPageSize(480, 800, false), 22+60*800; got != want {
		t.Fatalf("1-bit page size = %d, want %d", got, want)
	}
	if got, want := GetPageSize(480, 800, true), 22+2*100*480; got != want {
		t.Fatalf("2-bit page size = %d, want %d", got, want)
	}
}

func TestPackXTGWhiteFrame(t *testing.T) {
	// spec.md §8 scenario 1: 480x800 all-white, 1-bit, dither none.
	f := solidGray(480, 800, 255)
	page := Pack(f, false)
	if len(page.Chunk) != 22+60*800 {
		t.Fatalf("chunk size = %d, want %d", len(page.Chunk), 22+60*800)
	}
	for _, b := range page.Chunk[HeaderSize:] {
		if b != 0xFF {
			t.Fatalf("expected all-0xFF payload for white frame, found %#x", b)
		}
	}
}

func TestPackXTHBlackFrame(t *testing.T) {
	// spec.md §8 scenario 2: 480x800 all-black, 2-bit.
	f := solidGray(480, 800, 0)
	page := Pack(f, true)
	wantSize := 22 + 2*100*480
	if len(page.Chunk) != wantSize {
		t.Fatalf("chunk size = %d, want %d", len(page.Chunk), wantSize)
	}
	for _, b := range page.Chunk[HeaderSize:] {
		if b != 0xFF {
			t.Fatalf("expected both planes fully set (black=level 3) for black frame, found %#x", b)
		}
	}
}

func TestPackUnpackRoundTrip1Bit(t *testing.T) {
	f := raster.NewFrame(13, 9) // deliberately not byte-aligned
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			v := byte(0)
			if (x+y)%2 == 0 {
				v = 255
			}
			f.Set(x, y, v, v, v, 255)
		}
	}
	page := Pack(f, false)
	got, err := Unpack(page.Chunk)
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			want, _, _, _ := f.At(x, y)
			gotV, _, _, _ := got.At(x, y)
			if want != gotV {
				t.Fatalf("pixel (%d,%d) = %d, want %d", x, y, gotV, want)
			}
		}
	}
}

func TestPackUnpackRoundTrip2Bit(t *testing.T) {
	f := raster.NewFrame(17, 11)
	levels := []byte{0, 85, 170, 255}
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			v := levels[(x+y)%4]
			f.Set(x, y, v, v, v, 255)
		}
	}
	page := Pack(f, true)
	got, err := Unpack(page.Chunk)
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			want, _, _, _ := f.At(x, y)
			gotV, _, _, _ := got.At(x, y)
			if want != gotV {
				t.Fatalf("pixel (%d,%d) = %d, want %d", x, y, gotV, want)
			}
		}
	}
}

func TestParseHeaderRejectsTruncatedChunk(t *testing.T) {
	_, _, err := ParseHeader([]byte{1, 2, 3})
	if err == nil {
		t.Fatal("expected error for truncated chunk header")
	}
}

func TestParseHeaderRejectsLengthMismatch(t *testing.T) {
	f := solidGray(8, 8, 255)
	page := Pack(f, false)
	truncated := page.Chunk[:len(page.Chunk)-1]
	_, _, err := ParseHeader(truncated)
	if err == nil {
		t.Fatal("expected error for payload length overrunning chunk bytes")
	}
}
