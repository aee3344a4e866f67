// Package imaging removes backgrounds from product photos, flattens them onto
// white JPEGs and bundles each batch into a zip archive.
package imaging

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	imgutil "github.com/disintegration/imaging"
)

// Remover cuts the background out of an image, returning it with the
// background transparent.
type Remover interface {
	RemoveBackground(ctx context.Context, img image.Image) (image.Image, error)
}

// AlphaRemover relies on transparency already present in the image.
// Pixels at or below Threshold alpha are cleared completely so faint halos
// do not tint the white background.
type AlphaRemover struct {
	Threshold uint8
}

func (r AlphaRemover) RemoveBackground(ctx context.Context, img image.Image) (image.Image, error) {
	b := img.Bounds()
	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		if y%64 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.A <= r.Threshold {
				c = color.NRGBA{}
			}
			out.SetNRGBA(x, y, c)
		}
	}
	return out, nil
}

// maxRemoverResponse bounds the image returned by a remote remover.
const maxRemoverResponse = 64 << 20

// HTTPRemover posts each image as multipart field "file" to a rembg style
// endpoint and decodes the cut-out image it returns.
type HTTPRemover struct {
	URL    string
	Client *http.Client
}

func NewHTTPRemover(url string, timeout time.Duration) *HTTPRemover {
	return &HTTPRemover{
		URL:    url,
		Client: &http.Client{Timeout: timeout},
	}
}

func (r *HTTPRemover) RemoveBackground(ctx context.Context, img image.Image) (image.Image, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "image.png")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if err := png.Encode(part, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.URL, &body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call remover: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("remover returned %s: %s", resp.Status, bytes.TrimSpace(snippet))
	}

	out, err := imgutil.Decode(io.LimitReader(resp.Body, maxRemoverResponse))
	if err != nil {
		return nil, fmt.Errorf("decode remover response: %w", err)
	}
	return out, nil
}
