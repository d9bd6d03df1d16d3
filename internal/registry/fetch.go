package registry

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	appLog "ttcal/internal/log"
	"ttcal/internal/model"
)

// HTTPSource fetches timetable documents from the hosted registry with
// conditional requests (ETag / Last-Modified) and a disk-backed cache of
// the raw document bodies. Generated calendars are never cached; only the
// immutable source documents are.
type HTTPSource struct {
	baseURL  string
	client   *http.Client
	cacheDir string
}

// cacheEntry holds HTTP cache metadata for a single document URL.
type cacheEntry struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewHTTPSource creates a Source over the registry at baseURL, e.g.
// "https://timetable-registry.amrita.town/v2/files". cacheDir is where
// per-URL cache subdirectories and metadata are stored.
func NewHTTPSource(baseURL, cacheDir string) *HTTPSource {
	if cacheDir == "" {
		// Caller should set this explicitly; fall back to a relative dir so
		// that development runs without root permissions.
		cacheDir = "./var/doc-cache"
	}
	return &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		cacheDir: cacheDir,
	}
}

// Fetch retrieves one document, honoring ETag and Last-Modified. On a 304
// or a network error the cached body is reused; a 404 maps to ErrNotFound.
func (s *HTTPSource) Fetch(ctx context.Context, ref Ref) (*model.Document, error) {
	url := s.baseURL + "/" + ref.Path()

	cachePath, err := s.cachePathForURL(url)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cachePath, 0o700); err != nil {
		return nil, err
	}

	meta, _ := s.loadCacheMeta(cachePath)
	cachedBody, _ := s.loadCacheBody(cachePath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if meta.ETag != "" {
		req.Header.Set("If-None-Match", meta.ETag)
	}
	if meta.LastModified != "" {
		req.Header.Set("If-Modified-Since", meta.LastModified)
	}

	appLog.Debug("registry fetch start", "ref", ref.String(), "url", url)

	resp, err := s.client.Do(req)
	if err != nil {
		// Network error; if we have a cached body, fall back to it.
		if len(cachedBody) > 0 {
			appLog.Error("registry fetch network error, using cached body", err, "ref", ref.String())
			return model.ParseDocument(cachedBody)
		}
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, readErr
		}

		doc, err := model.ParseDocument(body)
		if err != nil {
			// Do not cache bodies that fail to decode.
			return nil, err
		}

		newMeta := cacheEntry{
			URL:          url,
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
			UpdatedAt:    time.Now().UTC(),
		}
		if err := s.saveCache(cachePath, newMeta, body); err != nil {
			// Log but still return the freshly fetched document.
			appLog.Error("registry cache save failed", err, "ref", ref.String())
		}

		appLog.Info("registry fetch success", "ref", ref.String(), "status", resp.StatusCode, "from_cache", false)
		return doc, nil

	case http.StatusNotModified:
		if len(cachedBody) == 0 {
			// 304 but no cached body: treat as error.
			return nil, errors.New("received 304 Not Modified but no cached body available")
		}
		appLog.Debug("registry fetch not modified; using cache", "ref", ref.String())
		return model.ParseDocument(cachedBody)

	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)

	default:
		if len(cachedBody) > 0 {
			appLog.Error("registry fetch non-OK, using cached body", errors.New(resp.Status), "ref", ref.String(), "status", resp.StatusCode)
			return model.ParseDocument(cachedBody)
		}
		return nil, errors.New(resp.Status)
	}
}

func (s *HTTPSource) cachePathForURL(url string) (string, error) {
	if url == "" {
		return "", errors.New("empty url")
	}
	sum := sha256.Sum256([]byte(url))
	// First 16 hex chars are plenty for a directory name.
	dir := hex.EncodeToString(sum[:8])
	return filepath.Join(s.cacheDir, dir), nil
}

func (s *HTTPSource) loadCacheMeta(cachePath string) (cacheEntry, error) {
	var meta cacheEntry
	data, err := os.ReadFile(filepath.Join(cachePath, "meta.json"))
	if err != nil {
		return meta, err
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return cacheEntry{}, err
	}
	return meta, nil
}

func (s *HTTPSource) loadCacheBody(cachePath string) ([]byte, error) {
	return os.ReadFile(filepath.Join(cachePath, "body.json"))
}

func (s *HTTPSource) saveCache(cachePath string, meta cacheEntry, body []byte) error {
	// Write body first so meta never points at a missing body.
	if err := os.WriteFile(filepath.Join(cachePath, "body.json"), body, 0o600); err != nil {
		return err
	}

	data, err := json.MarshalIndent(&meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(cachePath, "meta.json"), data, 0o600)
}
