package web

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/resale/internal/core"
	"github.com/JonMunkholm/resale/internal/imaging"
)

// imageField is the multipart field the web client sends files under.
const imageField = "images[]"

// multipartMemory is how much of a multipart body is held in memory before
// spilling to temp files.
const multipartMemory = 8 << 20

func (s *Server) handleRemoveBackground(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxRequestSize)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) || strings.Contains(err.Error(), "request body too large") {
			respondError(w, r, errRequestTooLarge)
			return
		}
		if errors.Is(err, http.ErrNotMultipart) {
			respondError(w, r, core.ErrNoImagesProvided)
			return
		}
		respondError(w, r, &core.ValidationError{Message: "invalid request body: " + err.Error()})
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File[imageField]
	uploads := make([]core.ImageUpload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			respondError(w, r, fmt.Errorf("open %s: %w", fh.Filename, err))
			return
		}
		defer f.Close()
		uploads = append(uploads, core.ImageUpload{Filename: fh.Filename, Content: f})
	}

	result, err := s.service.ProcessImages(r.Context(), uploads)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":          fmt.Sprintf("Successfully processed %d images", len(result.Images)),
		"processed_images": result.Images,
		"zip_url":          result.ArchiveURL,
	})
}

// handleServeImage serves files from the uploads and processed folders only.
func (s *Server) handleServeImage(w http.ResponseWriter, r *http.Request) {
	folder := chi.URLParam(r, "folder")
	filename := chi.URLParam(r, "filename")

	if folder != imaging.UploadsFolder && folder != imaging.ProcessedFolder {
		respondError(w, r, fmt.Errorf("%w: image folder %q", core.ErrNotFound, folder))
		return
	}
	if filename == "" || filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		respondError(w, r, fmt.Errorf("%w: image %q", core.ErrNotFound, filename))
		return
	}

	http.ServeFile(w, r, filepath.Join(s.cfg.Images.Dir, folder, filename))
}
