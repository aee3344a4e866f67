package imaging

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	imgutil "github.com/disintegration/imaging"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/resale/internal/core"
	"github.com/JonMunkholm/resale/internal/logging"
)

const (
	UploadsFolder   = "uploads"
	ProcessedFolder = "processed"

	DefaultWorkers     = 4
	DefaultJPEGQuality = 95
	DefaultURLPrefix   = "/static/images"

	archiveTimeLayout = "20060102_150405"
)

var allowedExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
}

// Allowed reports whether filename has an image extension the processor
// accepts.
func Allowed(filename string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	return allowedExtensions[ext]
}

// Config configures a Processor. Zero values take the defaults.
type Config struct {
	// Dir holds the uploads/ and processed/ folders.
	Dir string

	// URLPrefix is where Dir is served from.
	URLPrefix string

	Workers     int
	JPEGQuality int

	Now func() time.Time
}

// Processor implements core.ImageProcessor on the local filesystem.
type Processor struct {
	remover      Remover
	uploadDir    string
	processedDir string
	urlPrefix    string
	workers      int
	quality      int
	now          func() time.Time
}

var _ core.ImageProcessor = (*Processor)(nil)

// NewProcessor creates the upload and processed folders under cfg.Dir.
func NewProcessor(remover Remover, cfg Config) (*Processor, error) {
	if remover == nil {
		return nil, errors.New("imaging: nil remover")
	}
	if cfg.Dir == "" {
		return nil, errors.New("imaging: empty image directory")
	}
	if cfg.URLPrefix == "" {
		cfg.URLPrefix = DefaultURLPrefix
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.JPEGQuality <= 0 || cfg.JPEGQuality > 100 {
		cfg.JPEGQuality = DefaultJPEGQuality
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	p := &Processor{
		remover:      remover,
		uploadDir:    filepath.Join(cfg.Dir, UploadsFolder),
		processedDir: filepath.Join(cfg.Dir, ProcessedFolder),
		urlPrefix:    strings.TrimSuffix(cfg.URLPrefix, "/"),
		workers:      cfg.Workers,
		quality:      cfg.JPEGQuality,
		now:          cfg.Now,
	}
	for _, dir := range []string{p.uploadDir, p.processedDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("imaging: create %s: %w", dir, err)
		}
	}
	return p, nil
}

// ProcessBatch processes uploads concurrently. Files with a disallowed
// extension or that fail to process are skipped; results keep input order.
func (p *Processor) ProcessBatch(ctx context.Context, uploads []core.ImageUpload) (core.ImageBatchResult, error) {
	logger := logging.FromContext(ctx)
	results := make([]*core.ProcessedImage, len(uploads))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, up := range uploads {
		if !Allowed(up.Filename) {
			logger.Warn("skipping image with unsupported extension", "filename", up.Filename)
			continue
		}
		g.Go(func() error {
			img, err := p.processOne(gctx, up)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				logger.Warn("skipping image", "filename", up.Filename, "error", err)
				return nil
			}
			results[i] = &img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return core.ImageBatchResult{}, err
	}

	var processed []core.ProcessedImage
	for _, r := range results {
		if r != nil {
			processed = append(processed, *r)
		}
	}
	if len(processed) == 0 {
		return core.ImageBatchResult{}, core.ErrNoImagesProcessed
	}

	archiveName, err := p.writeArchive(processed)
	if err != nil {
		return core.ImageBatchResult{}, err
	}

	return core.ImageBatchResult{
		Images:     processed,
		ArchiveURL: p.url(archiveName),
	}, nil
}

func (p *Processor) processOne(ctx context.Context, up core.ImageUpload) (core.ProcessedImage, error) {
	data, err := io.ReadAll(up.Content)
	if err != nil {
		return core.ProcessedImage{}, fmt.Errorf("read upload: %w", err)
	}

	id := uuid.NewString()
	ext := strings.ToLower(filepath.Ext(up.Filename))
	if err := os.WriteFile(filepath.Join(p.uploadDir, id+ext), data, 0o644); err != nil {
		return core.ProcessedImage{}, fmt.Errorf("save upload: %w", err)
	}

	// Phone photos are stored sideways with an EXIF orientation tag.
	src, err := imgutil.Decode(bytes.NewReader(data), imgutil.AutoOrientation(true))
	if err != nil {
		return core.ProcessedImage{}, fmt.Errorf("decode: %w", err)
	}

	cut, err := p.remover.RemoveBackground(ctx, src)
	if err != nil {
		return core.ProcessedImage{}, fmt.Errorf("remove background: %w", err)
	}

	name := id + ".jpg"
	if err := p.writeJPEG(filepath.Join(p.processedDir, name), flatten(cut)); err != nil {
		return core.ProcessedImage{}, err
	}
	return core.ProcessedImage{Filename: name, URL: p.url(name)}, nil
}

func (p *Processor) writeJPEG(dst string, img image.Image) error {
	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(dst), err)
	}
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: p.quality}); err != nil {
		f.Close()
		os.Remove(dst)
		return fmt.Errorf("encode jpeg: %w", err)
	}
	return f.Close()
}

// writeArchive zips the processed images into processed/ and returns the
// archive's file name. The name carries a random suffix so batches finishing
// in the same second do not replace each other's archive.
func (p *Processor) writeArchive(images []core.ProcessedImage) (string, error) {
	name := fmt.Sprintf("processed_images_%s_%s.zip",
		p.now().Format(archiveTimeLayout), uuid.NewString()[:8])

	tmp, err := os.CreateTemp(p.processedDir, ".archive-*")
	if err != nil {
		return "", fmt.Errorf("create archive: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	zw := zip.NewWriter(tmp)
	for _, img := range images {
		if err := addToArchive(zw, filepath.Join(p.processedDir, img.Filename), img.Filename); err != nil {
			tmp.Close()
			return "", err
		}
	}
	if err := zw.Close(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("finish archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close archive: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(p.processedDir, name)); err != nil {
		return "", fmt.Errorf("rename archive: %w", err)
	}
	return name, nil
}

func addToArchive(zw *zip.Writer, src, name string) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return fmt.Errorf("add %s: %w", name, err)
	}
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func (p *Processor) url(name string) string {
	return path.Join(p.urlPrefix, ProcessedFolder, name)
}

// flatten composites img over an opaque white background.
func flatten(img image.Image) *image.NRGBA {
	b := img.Bounds()
	bg := imgutil.New(b.Dx(), b.Dy(), color.White)
	return imgutil.Overlay(bg, img, image.Point{}, 1.0)
}
