package imaging

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/resale/internal/core"
)

var batchTime = time.Date(2026, 3, 14, 9, 30, 5, 0, time.UTC)

// productPNG is a 4x4 image whose left half is an opaque red product and
// whose right half is transparent background.
func productPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 2; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestProcessor(t *testing.T, remover Remover) (*Processor, string) {
	t.Helper()
	dir := t.TempDir()
	p, err := NewProcessor(remover, Config{
		Dir:     dir,
		Workers: 2,
		Now:     func() time.Time { return batchTime },
	})
	require.NoError(t, err)
	return p, dir
}

func upload(name string, data []byte) core.ImageUpload {
	return core.ImageUpload{Filename: name, Content: bytes.NewReader(data)}
}

func TestAllowed(t *testing.T) {
	tests := map[string]bool{
		"shirt.png":  true,
		"shirt.JPG":  true,
		"shirt.jpeg": true,
		"shirt.gif":  false,
		"shirt":      false,
		"png":        false,
	}
	for name, want := range tests {
		assert.Equal(t, want, Allowed(name), name)
	}
}

func TestAlphaRemover(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 8})
	img.SetNRGBA(1, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 200})

	out, err := AlphaRemover{Threshold: 10}.RemoveBackground(context.Background(), img)
	require.NoError(t, err)

	nrgba := out.(*image.NRGBA)
	assert.Equal(t, color.NRGBA{}, nrgba.NRGBAAt(0, 0), "faint pixel cleared")
	assert.Equal(t, color.NRGBA{R: 10, G: 20, B: 30, A: 200}, nrgba.NRGBAAt(1, 0))
}

func TestFlatten(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})

	out := flatten(img)
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, out.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, out.NRGBAAt(1, 0))
}

func TestProcessBatch(t *testing.T) {
	p, dir := newTestProcessor(t, AlphaRemover{})
	data := productPNG(t)

	res, err := p.ProcessBatch(context.Background(), []core.ImageUpload{
		upload("front.png", data),
		upload("notes.txt", []byte("not an image")),
		upload("broken.jpg", []byte("garbage")),
		upload("back.PNG", data),
	})
	require.NoError(t, err)
	require.Len(t, res.Images, 2)
	assert.Regexp(t, `^/static/images/processed/processed_images_20260314_093005_[0-9a-f]{8}\.zip$`, res.ArchiveURL)

	for _, img := range res.Images {
		assert.True(t, strings.HasSuffix(img.Filename, ".jpg"))
		assert.Equal(t, "/static/images/processed/"+img.Filename, img.URL)

		f, err := os.Open(filepath.Join(dir, ProcessedFolder, img.Filename))
		require.NoError(t, err)
		decoded, err := jpeg.Decode(f)
		f.Close()
		require.NoError(t, err)

		r, g, b, _ := decoded.At(3, 0).RGBA()
		assert.Greater(t, r>>8, uint32(200), "background flattened to white")
		assert.Greater(t, g>>8, uint32(200))
		assert.Greater(t, b>>8, uint32(200))
	}

	uploads, err := os.ReadDir(filepath.Join(dir, UploadsFolder))
	require.NoError(t, err)
	assert.Len(t, uploads, 3, "allowed originals are kept, even when they fail to decode")

	zr, err := zip.OpenReader(filepath.Join(dir, ProcessedFolder, path.Base(res.ArchiveURL)))
	require.NoError(t, err)
	defer zr.Close()
	require.Len(t, zr.File, 2)
	assert.Equal(t, res.Images[0].Filename, zr.File[0].Name)
	assert.Equal(t, res.Images[1].Filename, zr.File[1].Name)
}

func TestProcessBatchSameSecondArchivesAreDistinct(t *testing.T) {
	p, dir := newTestProcessor(t, AlphaRemover{})
	ctx := context.Background()

	first, err := p.ProcessBatch(ctx, []core.ImageUpload{upload("a.png", productPNG(t))})
	require.NoError(t, err)
	second, err := p.ProcessBatch(ctx, []core.ImageUpload{upload("b.png", productPNG(t))})
	require.NoError(t, err)
	require.NotEqual(t, first.ArchiveURL, second.ArchiveURL)

	for _, res := range []core.ImageBatchResult{first, second} {
		zr, err := zip.OpenReader(filepath.Join(dir, ProcessedFolder, path.Base(res.ArchiveURL)))
		require.NoError(t, err)
		require.Len(t, zr.File, 1)
		assert.Equal(t, res.Images[0].Filename, zr.File[0].Name)
		zr.Close()
	}
}

// orientedJPEG encodes a 4x2 JPEG carrying an EXIF orientation of 6
// (rotate 90 degrees clockwise for display).
func orientedJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{B: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	data := buf.Bytes()

	app1 := []byte{
		0xFF, 0xE1, 0x00, 0x22,
		'E', 'x', 'i', 'f', 0x00, 0x00,
		'M', 'M', 0x00, 0x2A, 0x00, 0x00, 0x00, 0x08,
		0x00, 0x01,
		0x01, 0x12, 0x00, 0x03, 0x00, 0x00, 0x00, 0x01, 0x00, 0x06, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
	}
	out := append([]byte{}, data[:2]...)
	out = append(out, app1...)
	return append(out, data[2:]...)
}

func TestProcessBatchAppliesEXIFOrientation(t *testing.T) {
	p, dir := newTestProcessor(t, AlphaRemover{})

	res, err := p.ProcessBatch(context.Background(), []core.ImageUpload{upload("phone.jpg", orientedJPEG(t))})
	require.NoError(t, err)
	require.Len(t, res.Images, 1)

	f, err := os.Open(filepath.Join(dir, ProcessedFolder, res.Images[0].Filename))
	require.NoError(t, err)
	defer f.Close()
	cfg, err := jpeg.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Width, "rotated to portrait")
	assert.Equal(t, 4, cfg.Height)
}

func TestProcessBatchNothingProcessed(t *testing.T) {
	p, dir := newTestProcessor(t, AlphaRemover{})

	_, err := p.ProcessBatch(context.Background(), []core.ImageUpload{
		upload("notes.txt", []byte("x")),
		upload("broken.png", []byte("garbage")),
	})
	assert.ErrorIs(t, err, core.ErrNoImagesProcessed)

	entries, err := os.ReadDir(filepath.Join(dir, ProcessedFolder))
	require.NoError(t, err)
	assert.Empty(t, entries, "no archive written")
}

type failingRemover struct{}

func (failingRemover) RemoveBackground(context.Context, image.Image) (image.Image, error) {
	return nil, errors.New("model unavailable")
}

func TestProcessBatchRemoverFailure(t *testing.T) {
	p, _ := newTestProcessor(t, failingRemover{})
	_, err := p.ProcessBatch(context.Background(), []core.ImageUpload{upload("a.png", productPNG(t))})
	assert.ErrorIs(t, err, core.ErrNoImagesProcessed)
}

func TestProcessBatchCancelled(t *testing.T) {
	p, _ := newTestProcessor(t, AlphaRemover{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.ProcessBatch(ctx, []core.ImageUpload{upload("a.png", productPNG(t))})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewProcessorValidation(t *testing.T) {
	_, err := NewProcessor(nil, Config{Dir: t.TempDir()})
	assert.Error(t, err)

	_, err = NewProcessor(AlphaRemover{}, Config{})
	assert.Error(t, err)
}

func TestHTTPRemover(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method", http.StatusMethodNotAllowed)
			return
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "missing file", http.StatusBadRequest)
			return
		}
		defer f.Close()
		img, err := png.Decode(f)
		if err != nil {
			http.Error(w, "bad png", http.StatusBadRequest)
			return
		}

		// Clear the right column to simulate a cut-out.
		out := image.NewNRGBA(img.Bounds())
		b := img.Bounds()
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X-1; x++ {
				out.Set(x, y, img.At(x, y))
			}
		}
		w.Header().Set("Content-Type", "image/png")
		png.Encode(w, out)
	}))
	defer srv.Close()

	src := image.NewNRGBA(image.Rect(0, 0, 3, 1))
	for x := 0; x < 3; x++ {
		src.SetNRGBA(x, 0, color.NRGBA{B: 255, A: 255})
	}

	r := NewHTTPRemover(srv.URL, 5*time.Second)
	out, err := r.RemoveBackground(context.Background(), src)
	require.NoError(t, err)

	_, _, _, a := out.At(2, 0).RGBA()
	assert.Zero(t, a)
	_, _, blue, a := out.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), a)
	assert.Equal(t, uint32(0xffff), blue)
}

func TestHTTPRemoverErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model crashed", http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := NewHTTPRemover(srv.URL, 5*time.Second)
	_, err := r.RemoveBackground(context.Background(), image.NewNRGBA(image.Rect(0, 0, 1, 1)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model crashed")
}
