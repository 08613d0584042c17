// Package media loads images for attachment to posts, from a URL or a local path.
package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"

	// Register decoders imaging does not ship.
	_ "golang.org/x/image/webp"
)

const (
	// MaxUploadBytes is the largest image accepted by a one-shot tweet_image upload.
	MaxUploadBytes = 5 * 1024 * 1024

	// maxDownloadBytes bounds what is read from a remote URL before shrinking.
	maxDownloadBytes = 32 * 1024 * 1024

	defaultMimeType = "image/jpeg"
	maxDimension    = 4096
	minDimension    = 64
)

// Quality levels to try when re-encoding (descending).
var qualityLevels = []int{85, 75, 65, 55, 45, 35}

// supported are the MIME types the upload endpoint accepts for tweet_image.
var supported = map[string]bool{
	"image/jpeg":  true,
	"image/pjpeg": true,
	"image/png":   true,
	"image/webp":  true,
	"image/bmp":   true,
	"image/tiff":  true,
}

var extensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".bmp":  "image/bmp",
	".tiff": "image/tiff",
	".tif":  "image/tiff",
}

// Image is a loaded image ready for upload.
type Image struct {
	Data     []byte
	MimeType string
	Source   string
}

// Loader fetches images. The zero value is not usable; use NewLoader.
type Loader struct {
	client   *http.Client
	maxBytes int
}

// NewLoader returns a Loader with a 30s HTTP timeout and the upload size limit.
func NewLoader() *Loader {
	return &Loader{
		client:   &http.Client{Timeout: 30 * time.Second},
		maxBytes: MaxUploadBytes,
	}
}

// Load reads an image from an http(s) URL or a local file. Images above the upload
// limit are re-encoded as JPEG, downscaling until they fit.
func (l *Loader) Load(ctx context.Context, urlOrPath string) (*Image, error) {
	src := strings.TrimSpace(urlOrPath)
	if src == "" {
		return nil, fmt.Errorf("image source is empty")
	}

	var (
		data        []byte
		contentType string
		err         error
	)
	if isURL(src) {
		data, contentType, err = l.fetchURL(ctx, src)
	} else {
		data, err = readFile(src)
	}
	if err != nil {
		return nil, err
	}

	img := &Image{Data: data, MimeType: resolveMimeType(data, contentType, src), Source: src}
	if len(data) > l.maxBytes {
		shrunk, err := l.shrink(data)
		if err != nil {
			return nil, fmt.Errorf("image %s: %w", src, err)
		}
		slog.Debug("image shrunk for upload",
			slog.String("source", src),
			slog.Int("from_bytes", len(data)),
			slog.Int("to_bytes", len(shrunk)))
		img.Data = shrunk
		img.MimeType = defaultMimeType
	}
	return img, nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func (l *Loader) fetchURL(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Accept", "image/*")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch image from %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("failed to fetch image from %s: HTTP %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes))
	if err != nil {
		return nil, "", fmt.Errorf("read image from %s: %w", rawURL, err)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

func readFile(p string) ([]byte, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("image file not found: %s", p)
		}
		return nil, fmt.Errorf("read image %s: %w", p, err)
	}
	return data, nil
}

// resolveMimeType prefers the sniffed content, then a supported Content-Type header,
// then the extension.
func resolveMimeType(data []byte, contentType, source string) string {
	if m := SniffMimeType(data); m != "" {
		return m
	}
	if ct, _, _ := strings.Cut(contentType, ";"); supported[strings.TrimSpace(strings.ToLower(ct))] {
		return strings.TrimSpace(strings.ToLower(ct))
	}
	return DetectMimeType(source)
}

// SniffMimeType detects a supported image type from content. Returns "" when unknown.
func SniffMimeType(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	m := mimetype.Detect(data).String()
	if supported[m] {
		return m
	}
	return ""
}

// DetectMimeType maps a URL or path extension to a MIME type, defaulting to image/jpeg.
func DetectMimeType(urlOrPath string) string {
	clean, _, _ := strings.Cut(urlOrPath, "?")
	clean, _, _ = strings.Cut(clean, "#")
	if m, ok := extensions[strings.ToLower(path.Ext(clean))]; ok {
		return m
	}
	return defaultMimeType
}

// shrink re-encodes data as JPEG, stepping down quality then dimensions until it fits maxBytes.
func (l *Loader) shrink(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	b := img.Bounds()
	longest := max(b.Dx(), b.Dy())

	for dim := min(longest, maxDimension); dim >= minDimension; dim = dim * 3 / 4 {
		resized := img
		if longest > dim {
			resized = imaging.Fit(img, dim, dim, imaging.Lanczos)
		}
		for _, q := range qualityLevels {
			var buf bytes.Buffer
			if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(q)); err != nil {
				return nil, fmt.Errorf("encode: %w", err)
			}
			if buf.Len() <= l.maxBytes {
				return buf.Bytes(), nil
			}
		}
	}
	return nil, fmt.Errorf("could not be reduced below %d bytes", l.maxBytes)
}
