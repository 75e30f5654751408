package chunkgen

import (
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"

	"voxelview/internal/chunkapi"
)

// Handler serves chunkapi.Path. Bodies are immutable per URL and may be
// zstd-encoded when the client asks for it.
type Handler struct {
	log *log.Logger
	enc *zstd.Encoder
}

// NewHandler creates a handler. A nil logger discards output.
func NewHandler(logger *log.Logger) (*Handler, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, err
	}
	return &Handler{log: logger, enc: enc}, nil
}

// Close releases the encoder.
func (h *Handler) Close() error {
	return h.enc.Close()
}

func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		rw.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	p, err := chunkapi.ParseParams(r.URL.Query())
	if err != nil {
		http.Error(rw, err.Error(), http.StatusBadRequest)
		return
	}

	body := []byte(Generate(p))
	if acceptsZstd(r.Header.Get("Accept-Encoding")) {
		body = h.enc.EncodeAll(body, make([]byte, 0, len(body)/4))
		rw.Header().Set("Content-Encoding", "zstd")
	}

	rw.Header().Set("Content-Type", chunkapi.ContentType)
	rw.Header().Set("Content-Length", strconv.Itoa(len(body)))
	rw.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	if _, err := rw.Write(body); err != nil {
		h.log.Printf("chunk %d,%d,%d: write: %v", p.CX, p.CY, p.CZ, err)
	}
}

func acceptsZstd(header string) bool {
	for _, part := range strings.Split(header, ",") {
		name, _, _ := strings.Cut(strings.TrimSpace(part), ";")
		if strings.EqualFold(name, "zstd") {
			return true
		}
	}
	return false
}
