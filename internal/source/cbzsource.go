package source

import (
	"archive/zip"
	"image"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/xtconv/xtconv/internal/container"
	"github.com/xtconv/xtconv/internal/raster"
	"github.com/xtconv/xtconv/internal/xerrors"
)

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".webp": true, ".bmp": true, ".tif": true, ".tiff": true,
}

// CbzSource reads an ordered sequence of image frames out of a comic book
// ZIP archive, plus optional ComicInfo.xml metadata.
type CbzSource struct {
	zr       *zip.ReadCloser
	pages    []*zip.File
	meta     *container.Metadata
	next     int
}

// OpenCbz opens a CBZ file, indexing its image entries in natural filename
// order (so "page2.png" sorts before "page10.png") and parsing
// ComicInfo.xml if present.
func OpenCbz(path string) (*CbzSource, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.KindIoFailure, "opening cbz", err)
	}

	var pages []*zip.File
	var meta *container.Metadata
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		lower := strings.ToLower(f.Name)
		if strings.HasSuffix(lower, "comicinfo.xml") {
			rc, err := f.Open()
			if err != nil {
				continue
			}
			data, err := io.ReadAll(rc)
			rc.Close()
			if err != nil {
				continue
			}
			if m, err := parseComicInfo(data); err == nil {
				meta = m
			}
			continue
		}
		if ext := extOf(lower); imageExts[ext] {
			pages = append(pages, f)
		}
	}

	sort.Slice(pages, func(i, j int) bool {
		return naturalLess(pages[i].Name, pages[j].Name)
	})

	return &CbzSource{zr: zr, pages: pages, meta: meta}, nil
}

func extOf(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i:]
	}
	return ""
}

// naturalLess orders filenames so that embedded numeric runs compare by
// value rather than lexically ("page2" < "page10").
func naturalLess(a, b string) bool {
	ai, bi := 0, 0
	for ai < len(a) && bi < len(b) {
		ac, bc := a[ai], b[bi]
		if isDigit(ac) && isDigit(bc) {
			as := ai
			for as < len(a) && isDigit(a[as]) {
				as++
			}
			bs := bi
			for bs < len(b) && isDigit(b[bs]) {
				bs++
			}
			an, _ := strconv.Atoi(a[ai:as])
			bn, _ := strconv.Atoi(b[bi:bs])
			if an != bn {
				return an < bn
			}
			ai, bi = as, bs
			continue
		}
		if ac != bc {
			return ac < bc
		}
		ai++
		bi++
	}
	return len(a)-ai < len(b)-bi
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func (s *CbzSource) Next() (*raster.Frame, error) {
	if s.next >= len(s.pages) {
		return nil, ErrDone
	}
	f := s.pages[s.next]
	s.next++

	rc, err := f.Open()
	if err != nil {
		return nil, xerrors.Wrap(xerrors.KindFrameDecodeFailure, "opening cbz entry "+f.Name, err)
	}
	defer rc.Close()

	img, _, err := image.Decode(rc)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.KindFrameDecodeFailure, "decoding cbz entry "+f.Name, err)
	}
	return FrameFromImage(img), nil
}

func (s *CbzSource) Metadata() *container.Metadata { return s.meta }

func (s *CbzSource) Close() error { return s.zr.Close() }
