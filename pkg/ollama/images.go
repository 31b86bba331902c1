package ollama

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/errgroup"
)

// maxImageSize bounds a single loaded image (32 MB).
const maxImageSize = 32 << 20

// IsDataURL reports whether ref is already an embedded image.
func IsDataURL(ref string) bool {
	return strings.HasPrefix(ref, "data:image")
}

// ImageEncoder converts image references into embedded data URLs.
type ImageEncoder struct {
	httpClient *http.Client
}

// NewImageEncoder creates an encoder that fetches remote references with httpClient.
func NewImageEncoder(httpClient *http.Client) *ImageEncoder {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &ImageEncoder{httpClient: httpClient}
}

// EncodeAll converts every reference concurrently and returns the data URLs
// in the original order. The first failure cancels the remaining loads.
func (e *ImageEncoder) EncodeAll(ctx context.Context, refs []string) ([]string, error) {
	if len(refs) == 0 {
		return nil, nil
	}

	encoded := make([]string, len(refs))
	g, ctx := errgroup.WithContext(ctx)
	for i, ref := range refs {
		g.Go(func() error {
			dataURL, err := e.Encode(ctx, ref)
			if err != nil {
				return fmt.Errorf("image %d: %w", i, err)
			}
			encoded[i] = dataURL
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return encoded, nil
}

// Encode returns ref unchanged when it is already a data URL, otherwise it
// loads the referenced bytes and embeds them as "data:<mime>;base64,<payload>".
func (e *ImageEncoder) Encode(ctx context.Context, ref string) (string, error) {
	if IsDataURL(ref) {
		return ref, nil
	}

	data, err := e.load(ctx, ref)
	if err != nil {
		return "", err
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", fmt.Errorf("%s is not an image (detected %s)", ref, mtype.String())
	}

	return "data:" + mtype.String() + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func (e *ImageEncoder) load(ctx context.Context, ref string) ([]byte, error) {
	switch {
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return e.fetch(ctx, ref)
	case strings.HasPrefix(ref, "file://"):
		u, err := url.Parse(ref)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", ref, err)
		}
		return readFile(u.Path)
	case ref == "":
		return nil, fmt.Errorf("empty image reference")
	default:
		return readFile(ref)
	}
}

func (e *ImageEncoder) fetch(ctx context.Context, ref string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", ref, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: status %d", ref, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", ref, err)
	}
	if len(data) > maxImageSize {
		return nil, fmt.Errorf("%s exceeds %d bytes", ref, maxImageSize)
	}
	return data, nil
}

func readFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxImageSize {
		return nil, fmt.Errorf("%s exceeds %d bytes", path, maxImageSize)
	}
	return os.ReadFile(path)
}
