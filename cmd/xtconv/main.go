// Command xtconv converts paginated visual content (comic archives,
// single images, PDFs, video) into the XTC/XTCH e-ink container format
// described by this repository's internal/container package.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/xtconv/xtconv/internal/cliopts"
	"github.com/xtconv/xtconv/internal/config"
	"github.com/xtconv/xtconv/internal/container"
	"github.com/xtconv/xtconv/internal/pack"
	"github.com/xtconv/xtconv/internal/pipeline"
	"github.com/xtconv/xtconv/internal/raster"
	"github.com/xtconv/xtconv/internal/source"
	"github.com/xtconv/xtconv/internal/watch"
	"github.com/xtconv/xtconv/internal/xerrors"
	"github.com/xtconv/xtconv/internal/xlog"
)

const (
	exitOK             = 0
	exitUnexpected     = 1
	exitInvalidArgs    = 2
	exitMalformedInput = 3
	exitMalformedChunk = 4
	exitCancelled      = 5
)

var imageExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true}
var videoExts = map[string]bool{".mp4": true, ".mkv": true, ".webm": true, ".avi": true}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("xtconv", flag.ContinueOnError)

	var input, configPath, sourceOverride string
	var hMargin, vMargin float64
	var watchMode, debug bool
	var title, author, publisher, language string
	var coverPage int
	var createTime int64
	fs.StringVar(&input, "i", "", "input file: .cbz, .pdf, image, or video")
	fs.StringVar(&configPath, "config", "config.toml", "path to config file (TOML)")
	fs.Float64Var(&hMargin, "h-margin", 0, "horizontal crop margin percent, [0,20]")
	fs.Float64Var(&vMargin, "v-margin", 0, "vertical crop margin percent, [0,20]")
	fs.BoolVar(&watchMode, "watch", false, "watch a directory, converting new/changed files")
	fs.BoolVar(&debug, "debug", false, "verbose development logging")
	fs.StringVar(&sourceOverride, "source", "", "explicit source adapter: cbz, pdf, or image (auto-detected from extension otherwise)")
	fs.StringVar(&title, "title", "", "override/set BookMetadata.title")
	fs.StringVar(&author, "author", "", "override/set BookMetadata.author")
	fs.StringVar(&publisher, "publisher", "", "override/set BookMetadata.publisher")
	fs.StringVar(&language, "language", "", "override/set BookMetadata.language")
	fs.IntVar(&coverPage, "cover-page", -1, "set BookMetadata.coverPage (1-indexed, post-fan-out)")
	fs.Int64Var(&createTime, "create-time", 0, "override BookMetadata.createTime (unix seconds); 0 for reproducible output")

	// The config supplies the other flags' defaults, so --config is read
	// from args before the full parse.
	for i, a := range args {
		if a == "-config" || a == "--config" {
			if i+1 < len(args) {
				configPath = args[i+1]
			}
		} else if strings.HasPrefix(a, "-config=") || strings.HasPrefix(a, "--config=") {
			configPath = a[strings.Index(a, "=")+1:]
		}
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		return exitUnexpected
	}
	flags := cliopts.Register(fs, cfg)
	fs.Float64Var(&hMargin, "h-margin", cfg.Layout.HorizontalMarginPercent, "horizontal crop margin percent, [0,20]")
	fs.Float64Var(&vMargin, "v-margin", cfg.Layout.VerticalMarginPercent, "vertical crop margin percent, [0,20]")

	if err := fs.Parse(args); err != nil {
		return exitInvalidArgs
	}

	if err := xlog.Init(debug); err != nil {
		fmt.Fprintf(os.Stderr, "initializing logger: %v\n", err)
		return exitUnexpected
	}
	defer xlog.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	metaOverride := metadataOverride{
		Title: title, Author: author, Publisher: publisher, Language: language,
		CoverPage: coverPage, CreateTime: uint32(createTime),
	}

	if watchMode {
		if input == "" || flags.Output == "" {
			fmt.Fprintln(os.Stderr, "--watch requires -i <input dir> and -o <output dir>")
			return exitInvalidArgs
		}
		err := watch.Run(ctx, watch.Options{
			InputDir:  input,
			OutputDir: flags.Output,
			Convert: func(in, out string) error {
				return convertFile(in, out, flags, sourceOverride, hMargin, vMargin, metaOverride, context.Background())
			},
		})
		return exitCodeFor(err)
	}

	if input == "" || flags.Output == "" {
		fmt.Fprintln(os.Stderr, "usage: xtconv -i <input> -o <output> [flags]")
		fs.PrintDefaults()
		return exitInvalidArgs
	}

	err = convertFile(input, flags.Output, flags, sourceOverride, hMargin, vMargin, metaOverride, ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	return exitCodeFor(err)
}

func exitCodeFor(err error) int {
	if err == nil {
		return exitOK
	}
	switch {
	case errors.Is(err, xerrors.InvalidOption):
		return exitInvalidArgs
	case errors.Is(err, xerrors.FrameDecodeFailure):
		return exitMalformedInput
	case errors.Is(err, xerrors.MalformedContainer), errors.Is(err, xerrors.MalformedChunk):
		return exitMalformedChunk
	case errors.Is(err, xerrors.Cancelled):
		return exitCancelled
	default:
		return exitUnexpected
	}
}

// sourceTypeFor picks the source adapter, honoring an explicit --source
// override (spec §6 AMBIENT addition) before falling back to extension
// sniffing.
func sourceTypeFor(path, override string) (pipeline.SourceType, error) {
	switch override {
	case "cbz":
		return pipeline.SourceCBZ, nil
	case "pdf":
		return pipeline.SourcePDF, nil
	case "image":
		return pipeline.SourceImage, nil
	case "":
		// fall through to extension sniffing below
	default:
		return 0, xerrors.Newf(xerrors.KindInvalidOption, "unknown --source %q", override)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); {
	case ext == ".cbz":
		return pipeline.SourceCBZ, nil
	case ext == ".pdf":
		return pipeline.SourcePDF, nil
	case imageExts[ext]:
		return pipeline.SourceImage, nil
	case videoExts[ext]:
		return pipeline.SourceVideo, nil
	default:
		return 0, xerrors.Newf(xerrors.KindInvalidOption, "unrecognized input extension %q", ext)
	}
}

// metadataOverride carries the --title/--author/--publisher/--language/
// --cover-page/--create-time CLI flags (spec §6 AMBIENT addition). A zero
// value (empty string, CoverPage -1, CreateTime 0) leaves the
// corresponding field as the source adapter supplied it.
type metadataOverride struct {
	Title, Author, Publisher, Language string
	CoverPage                          int
	CreateTime                         uint32
}

func (m metadataOverride) isZero() bool {
	return m.Title == "" && m.Author == "" && m.Publisher == "" && m.Language == "" &&
		m.CoverPage == -1 && m.CreateTime == 0
}

// apply layers the CLI overrides on top of whatever metadata (possibly
// nil) the source adapter produced, returning nil only if there's
// nothing to carry at all.
func (m metadataOverride) apply(meta *container.Metadata) *container.Metadata {
	if m.isZero() && meta == nil {
		return nil
	}
	out := container.Metadata{CoverPage: container.NoCoverPage}
	if meta != nil {
		out = *meta
	}
	if m.Title != "" {
		out.Title = m.Title
	}
	if m.Author != "" {
		out.Author = m.Author
	}
	if m.Publisher != "" {
		out.Publisher = m.Publisher
	}
	if m.Language != "" {
		out.Language = m.Language
	}
	if m.CoverPage >= 0 {
		out.CoverPage = uint16(m.CoverPage)
	}
	if m.CreateTime != 0 {
		out.CreateTime = m.CreateTime
	}
	return &out
}

// unwiredRasterizer satisfies source.Rasterizer without rendering anything:
// this build has no concrete PDF page renderer, but OpenPdf still reads the
// real page count via pdfcpu before a single page is ever asked for pixels.
func unwiredRasterizer(pageIndex int) (*raster.Frame, error) {
	return nil, xerrors.Newf(xerrors.KindFrameDecodeFailure, "PDF rasterization requires an external rasterizer; not wired in this build")
}

func openSource(path string, st pipeline.SourceType, fps float64) (source.Source, error) {
	switch st {
	case pipeline.SourceCBZ:
		return source.OpenCbz(path)
	case pipeline.SourceImage:
		f, err := os.Open(path)
		if err != nil {
			return nil, xerrors.Wrap(xerrors.KindFrameDecodeFailure, "opening image", err)
		}
		return source.NewImageSource(f), nil
	case pipeline.SourcePDF:
		return source.OpenPdf(path, unwiredRasterizer)
	case pipeline.SourceVideo:
		return nil, xerrors.Newf(xerrors.KindFrameDecodeFailure, "video sampling requires an external frame sampler; not wired in this build")
	default:
		return nil, xerrors.Newf(xerrors.KindInvalidOption, "unknown source type %v", st)
	}
}

// convertFile runs one input file through source decode, the pipeline
// orchestrator, and container assembly, writing the result to out.
func convertFile(in, out string, flags *cliopts.Flags, sourceOverride string, hMargin, vMargin float64, metaOverride metadataOverride, ctx context.Context) error {
	st, err := sourceTypeFor(in, sourceOverride)
	if err != nil {
		return err
	}

	opt, err := cliopts.Resolve(flags, st, hMargin, vMargin)
	if err != nil {
		return err
	}

	src, err := openSource(in, st, opt.VideoFps)
	if err != nil {
		return err
	}
	defer src.Close()

	var jobs []pipeline.FrameJob
	idx := 0
	for {
		frame, err := src.Next()
		if errors.Is(err, source.ErrDone) {
			break
		}
		if err != nil {
			return err
		}
		jobs = append(jobs, pipeline.FrameJob{Frame: frame, Index: idx})
		idx++
	}
	if len(jobs) == 0 {
		return xerrors.Newf(xerrors.KindFrameDecodeFailure, "source %s produced no frames", in)
	}

	workers := 0
	if opt.Manhwa {
		workers = 1
	}
	results, trailing, err := pipeline.RunConcurrent(ctx, jobs, opt, workers)
	if err != nil {
		return err
	}

	var packed []pack.Page
	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
		packed = append(packed, r.Pages...)
	}
	if trailing != nil {
		packed = append(packed, *trailing)
	}

	meta := src.Metadata()
	if meta != nil && len(meta.Toc) > 0 {
		mappings := make([]pipeline.PageMapping, 0, len(results))
		for _, r := range results {
			if r.Err == nil {
				mappings = append(mappings, r.Mapping)
			}
		}
		remapped, err := pipeline.RemapToc(meta.Toc, mappings)
		if err != nil {
			return err
		}
		remappedMeta := *meta
		remappedMeta.Toc = remapped
		meta = &remappedMeta
	}
	meta = metaOverride.apply(meta)

	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return xerrors.Wrap(xerrors.KindIoFailure, "creating output directory", err)
		}
	}

	if opt.Streamed {
		if err := writeStreamed(out, packed, opt, meta); err != nil {
			return err
		}
	} else {
		buf, err := container.BuildBuffered(packed, container.Options{Is2Bit: opt.Is2Bit, Metadata: meta})
		if err != nil {
			return err
		}
		if err := os.WriteFile(out, buf, 0o644); err != nil {
			return xerrors.Wrap(xerrors.KindIoFailure, "writing output file", err)
		}
	}

	xlog.L().Infow("converted", "input", in, "output", out, "pages", len(packed))
	return nil
}

// writeStreamed emits header, optional metadata, and the full index table
// up front, then appends page chunks in order, per spec.md §4.8's
// streaming variant. On failure the partial file is left on disk; the
// caller must treat it as invalid, per spec.md §7.
func writeStreamed(out string, packed []pack.Page, opt pipeline.ConversionOptions, meta *container.Metadata) error {
	f, err := os.Create(out)
	if err != nil {
		return xerrors.Wrap(xerrors.KindIoFailure, "creating output file", err)
	}
	defer f.Close()

	sw, err := container.NewStreamWriter(f, len(packed), opt.Device.Width, opt.Device.Height, opt.Is2Bit, meta)
	if err != nil {
		return err
	}
	for _, p := range packed {
		if err := sw.WritePage(p.Chunk); err != nil {
			return err
		}
	}
	if err := sw.Close(); err != nil {
		return err
	}
	return nil
}
