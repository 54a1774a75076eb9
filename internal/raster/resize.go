package raster

// ImageMode selects how a single-image source is scaled into the device
// rectangle (spec.md §4.2 / §6 --image-mode).
type ImageMode int

const (
	ModeCover ImageMode = iota
	ModeLetterbox
	ModeFill
	ModeCrop
)

// ResizeLetterbox scales src to fit entirely within devW x devH (preserving
// aspect ratio), centers it, and fills the remainder with pad (0 or 255,
// written to all three color channels; alpha is set opaque).
func ResizeLetterbox(src *Frame, devW, devH int, pad byte) *Frame {
	scale := min(float64(devW)/float64(src.Width), float64(devH)/float64(src.Height))
	scaledW := max(1, int(float64(src.Width)*scale))
	scaledH := max(1, int(float64(src.Height)*scale))

	scaled := scaleInto(src, scaledW, scaledH)
	defer scaled.Release()

	out := NewFrame(devW, devH)
	fillSolid(out, pad)

	offX := (devW - scaledW) / 2
	offY := (devH - scaledH) / 2
	blit(out, scaled, offX, offY)
	return out
}

// ResizeFill stretches src to exactly devW x devH, ignoring aspect ratio.
func ResizeFill(src *Frame, devW, devH int) *Frame {
	return scaleInto(src, devW, devH)
}

// ResizeCover scales src to fully cover devW x devH (preserving aspect
// ratio), centers it, and crops whatever overflows the device rectangle.
func ResizeCover(src *Frame, devW, devH int) *Frame {
	scale := max(float64(devW)/float64(src.Width), float64(devH)/float64(src.Height))
	scaledW := max(devW, int(float64(src.Width)*scale))
	scaledH := max(devH, int(float64(src.Height)*scale))

	scaled := scaleInto(src, scaledW, scaledH)
	defer scaled.Release()

	offX := (scaledW - devW) / 2
	offY := (scaledH - devH) / 2
	return ExtractRegion(scaled, offX, offY, devW, devH)
}

// ResizeCrop places src into the device rectangle with no scaling at all,
// centered, padding with pad if smaller than the device and cropping any
// overflow if larger.
func ResizeCrop(src *Frame, devW, devH int, pad byte) *Frame {
	out := NewFrame(devW, devH)
	fillSolid(out, pad)

	offX := (devW - src.Width) / 2
	offY := (devH - src.Height) / 2
	blit(out, src, offX, offY)
	return out
}

// ScaleToWidth scales src to exactly width w, preserving aspect ratio, with
// height = floor(src.Height * w / src.Width). Used by the manhwa stitcher,
// which scales each incoming strip to the device width with no crop or pad
// before appending it to its running buffer.
func ScaleToWidth(src *Frame, w int) *Frame {
	h := max(1, src.Height*w/src.Width)
	return scaleInto(src, w, h)
}

func fillSolid(f *Frame, v byte) {
	for i := 0; i < len(f.Pix); i += 4 {
		f.Pix[i] = v
		f.Pix[i+1] = v
		f.Pix[i+2] = v
		f.Pix[i+3] = 255
	}
}

// blit copies src into dst at offset (offX,offY), clipping to dst's
// bounds in every direction (offsets may be negative, src may overhang).
func blit(dst, src *Frame, offX, offY int) {
	for y := 0; y < src.Height; y++ {
		dy := y + offY
		if dy < 0 || dy >= dst.Height {
			continue
		}
		for x := 0; x < src.Width; x++ {
			dx := x + offX
			if dx < 0 || dx >= dst.Width {
				continue
			}
			r, g, b, a := src.At(x, y)
			dst.Set(dx, dy, r, g, b, a)
		}
	}
}

// scaleInto resizes src to exactly (w,h) using box-filter averaging on both
// axes whenever either axis shrinks, and bilinear interpolation only when
// neither does — the same
// "sharper text when shrinking, smooth when enlarging" split the teacher's
// image compositing favors implicitly by never upsampling scans.
func scaleInto(src *Frame, w, h int) *Frame {
	if w < src.Width || h < src.Height {
		return BoxDownsample(src, w, h)
	}
	return bilinearResize(src, w, h)
}

func bilinearResize(src *Frame, w, h int) *Frame {
	out := NewFrame(w, h)
	if w == 0 || h == 0 {
		return out
	}
	xRatio := float64(src.Width) / float64(w)
	yRatio := float64(src.Height) / float64(h)

	for y := 0; y < h; y++ {
		sy := (float64(y) + 0.5) * yRatio - 0.5
		y0 := clampInt(int(sy), 0, src.Height-1)
		y1 := clampInt(y0+1, 0, src.Height-1)
		fy := sy - float64(y0)
		if fy < 0 {
			fy = 0
		}
		for x := 0; x < w; x++ {
			sx := (float64(x) + 0.5) * xRatio - 0.5
			x0 := clampInt(int(sx), 0, src.Width-1)
			x1 := clampInt(x0+1, 0, src.Width-1)
			fx := sx - float64(x0)
			if fx < 0 {
				fx = 0
			}

			r00, g00, b00, a00 := src.At(x0, y0)
			r10, g10, b10, a10 := src.At(x1, y0)
			r01, g01, b01, a01 := src.At(x0, y1)
			r11, g11, b11, a11 := src.At(x1, y1)

			r := lerp2(float64(r00), float64(r10), float64(r01), float64(r11), fx, fy)
			g := lerp2(float64(g00), float64(g10), float64(g01), float64(g11), fx, fy)
			b := lerp2(float64(b00), float64(b10), float64(b01), float64(b11), fx, fy)
			a := lerp2(float64(a00), float64(a10), float64(a01), float64(a11), fx, fy)

			out.Set(x, y, byte(r+0.5), byte(g+0.5), byte(b+0.5), byte(a+0.5))
		}
	}
	return out
}

func lerp2(v00, v10, v01, v11, fx, fy float64) float64 {
	top := v00 + (v10-v00)*fx
	bot := v01 + (v11-v01)*fx
	return top + (bot-top)*fy
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// BoxDownsample area-averages src down to exactly (dstW,dstH). Used
// whenever the target is strictly smaller than the source, giving sharper
// text edges than bilinear filtering once the result is dithered to 1-bit.
func BoxDownsample(src *Frame, dstW, dstH int) *Frame {
	out := NewFrame(dstW, dstH)
	if dstW == 0 || dstH == 0 {
		return out
	}

	xScale := float64(src.Width) / float64(dstW)
	yScale := float64(src.Height) / float64(dstH)

	for dy := 0; dy < dstH; dy++ {
		sy0 := int(float64(dy) * yScale)
		sy1 := int(float64(dy+1) * yScale)
		if sy1 <= sy0 {
			sy1 = sy0 + 1
		}
		sy1 = min(sy1, src.Height)

		for dx := 0; dx < dstW; dx++ {
			sx0 := int(float64(dx) * xScale)
			sx1 := int(float64(dx+1) * xScale)
			if sx1 <= sx0 {
				sx1 = sx0 + 1
			}
			sx1 = min(sx1, src.Width)

			var rSum, gSum, bSum, aSum, count uint64
			for y := sy0; y < sy1; y++ {
				for x := sx0; x < sx1; x++ {
					r, g, b, a := src.At(x, y)
					rSum += uint64(r)
					gSum += uint64(g)
					bSum += uint64(b)
					aSum += uint64(a)
					count++
				}
			}
			if count == 0 {
				continue
			}
			out.Set(dx, dy,
				byte(rSum/count), byte(gSum/count), byte(bSum/count), byte(aSum/count))
		}
	}
	return out
}
