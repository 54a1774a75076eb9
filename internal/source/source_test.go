package source

import (
	"image"
	"image/color"
	"testing"
)

func TestFrameFromImageRGBA(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.SetRGBA(1, 1, color.RGBA{10, 20, 30, 255})
	f := FrameFromImage(img)
	if f.Width != 4 || f.Height != 3 {
		t.Fatalf("size = %dx%d, want 4x3", f.Width, f.Height)
	}
	r, g, b, a := f.At(1, 1)
	if r != 10 || g != 20 || b != 30 || a != 255 {
		t.Fatalf("pixel (1,1) = %d,%d,%d,%d, want 10,20,30,255", r, g, b, a)
	}
}

func TestFrameFromImageNRGBA(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{100, 150, 200, 255})
	f := FrameFromImage(img)
	r, g, b, _ := f.At(0, 0)
	if r != 100 || g != 150 || b != 200 {
		t.Fatalf("pixel (0,0) = %d,%d,%d, want 100,150,200", r, g, b)
	}
}

func TestNaturalLessOrdersNumericRuns(t *testing.T) {
	names := []string{"page10.png", "page2.png", "page1.png"}
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			_ = naturalLess(names[i], names[j])
		}
	}
	if !naturalLess("page2.png", "page10.png") {
		t.Fatal("expected page2 < page10 under natural ordering")
	}
	if naturalLess("page10.png", "page2.png") {
		t.Fatal("expected page10 not < page2 under natural ordering")
	}
	if !naturalLess("page1.png", "page2.png") {
		t.Fatal("expected page1 < page2")
	}
}

func TestParseComicInfo(t *testing.T) {
	xmlData := []byte(`<?xml version="1.0"?>
<ComicInfo>
  <Title>Example Volume</Title>
  <Writer>Jane Doe</Writer>
  <Publisher>Acme</Publisher>
  <LanguageISO>en</LanguageISO>
</ComicInfo>`)
	meta, err := parseComicInfo(xmlData)
	if err != nil {
		t.Fatalf("parseComicInfo: %v", err)
	}
	if meta.Title != "Example Volume" || meta.Author != "Jane Doe" {
		t.Fatalf("unexpected metadata: %+v", meta)
	}
}
