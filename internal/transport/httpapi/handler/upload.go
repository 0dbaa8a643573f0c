package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
)

// UploadGatewayInterface defines the upstream image upload operation
type UploadGatewayInterface interface {
	UploadImage(ctx context.Context, token, filename string, file io.Reader) (string, error)
}

// UploadHandler proxies image uploads to the upstream API
type UploadHandler struct {
	gateway  UploadGatewayInterface
	maxBytes int64
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(gateway UploadGatewayInterface, maxBytes int64) *UploadHandler {
	return &UploadHandler{
		gateway:  gateway,
		maxBytes: maxBytes,
	}
}

// Upload handles POST /images/upload. The file arrives as multipart form
// field "image" and the upstream URL comes back as JSON.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(w, "file is too large", http.StatusRequestEntityTooLarge)
			return
		}
		respondError(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, "image file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	url, err := h.gateway.UploadImage(r.Context(), upstreamToken(r.Context()), header.Filename, file)
	if err != nil {
		respondUpstreamError(w, err)
		return
	}

	respondJSON(w, map[string]string{"url": url}, http.StatusCreated)
}
