// Package res loads report documents and images from files, search paths,
// HTTP(S) URLs and data URLs.
package res

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gompdf/reportpager/internal/rows"
)

// ErrWrongType is returned when a resource is not of the requested kind
var ErrWrongType = errors.New("unexpected resource type")

// Kind classifies a loaded resource
type Kind int

const (
	KindUnknown Kind = iota
	// KindImage is a raster or SVG image
	KindImage
	// KindDocument is a YAML or JSON row document
	KindDocument
	KindOther
)

// String returns a human-readable representation of the kind
func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindDocument:
		return "document"
	case KindOther:
		return "other"
	default:
		return "unknown"
	}
}

// Resource represents a loaded resource
type Resource struct {
	URL      string
	Kind     Kind
	Data     []byte
	MimeType string
}

// Reader returns a reader over the resource data
func (r *Resource) Reader() *bytes.Reader {
	return bytes.NewReader(r.Data)
}

// IsSVG reports whether the resource holds SVG markup
func (r *Resource) IsSVG() bool {
	return r.MimeType == "image/svg+xml"
}

// cache is shared by a loader and the loaders derived from it
type cache struct {
	mu        sync.RWMutex
	resources map[string]*Resource
}

func (c *cache) get(key string) (*Resource, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	res, ok := c.resources[key]
	return res, ok
}

func (c *cache) put(key string, res *Resource) {
	c.mu.Lock()
	c.resources[key] = res
	c.mu.Unlock()
}

// Loader resolves and caches resources. Configure it before sharing it
// between goroutines; use WithBase for per-document resolution.
type Loader struct {
	// Base URL or file path for resolving relative references
	BaseURL string

	cache       *cache
	searchPaths []string
	client      *http.Client
}

// NewLoader creates a new resource loader
func NewLoader(baseURL string) *Loader {
	return &Loader{
		BaseURL: baseURL,
		cache:   &cache{resources: make(map[string]*Resource)},
		client:  http.DefaultClient,
	}
}

// WithBase returns a loader that resolves relative references against base,
// itself resolved against the base of l. It shares the cache, search paths and
// client of l; l is not modified.
func (l *Loader) WithBase(base string) *Loader {
	if resolved, err := l.resolve(base); err == nil {
		base = resolved
	}
	return &Loader{
		BaseURL:     base,
		cache:       l.cache,
		searchPaths: append([]string(nil), l.searchPaths...),
		client:      l.client,
	}
}

// SetClient replaces the HTTP client used for remote resources
func (l *Loader) SetClient(c *http.Client) {
	l.client = c
}

// AddSearchPath adds a directory to search for local resources
func (l *Loader) AddSearchPath(path string) {
	l.searchPaths = append(l.searchPaths, path)
}

// Load loads a resource from a URL, data URL or file path. Resources are
// cached by their resolved location.
func (l *Loader) Load(ctx context.Context, ref string) (*Resource, error) {
	key := ref
	if !strings.HasPrefix(ref, "data:") {
		resolved, err := l.resolve(ref)
		if err != nil {
			return nil, err
		}
		key = resolved
	}
	if res, ok := l.cache.get(key); ok {
		return res, nil
	}

	var (
		res *Resource
		err error
	)
	switch {
	case strings.HasPrefix(key, "data:"):
		res, err = parseDataURL(key)
	case isRemote(key):
		res, err = l.loadRemote(ctx, key)
	default:
		res, err = l.loadLocal(key)
	}
	if err != nil {
		return nil, err
	}

	l.cache.put(key, res)
	return res, nil
}

// LoadImage loads an image resource
func (l *Loader) LoadImage(ctx context.Context, ref string) (*Resource, error) {
	res, err := l.Load(ctx, ref)
	if err != nil {
		return nil, err
	}
	if res.Kind != KindImage {
		return nil, fmt.Errorf("%w: %s is %s, not an image", ErrWrongType, ref, res.Kind)
	}
	return res, nil
}

// LoadDocument loads and decodes a row document
func (l *Loader) LoadDocument(ctx context.Context, ref string) (*rows.Document, error) {
	res, err := l.Load(ctx, ref)
	if err != nil {
		return nil, err
	}
	if res.Kind == KindImage {
		return nil, fmt.Errorf("%w: %s is an image, not a document", ErrWrongType, ref)
	}
	doc, err := rows.DecodeDocument(res.Reader())
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", ref, err)
	}
	return doc, nil
}

func isRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// parseDataURL parses a data URL (RFC 2397), for example
// data:image/png;base64,<payload> or data:text/plain,Hello%20World
func parseDataURL(u string) (*Resource, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(u, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("invalid data URL")
	}

	mime := "application/octet-stream"
	isBase64 := false
	if meta != "" {
		comps := strings.Split(meta, ";")
		if comps[0] != "" {
			mime = comps[0]
		}
		for _, c := range comps[1:] {
			if strings.EqualFold(strings.TrimSpace(c), "base64") {
				isBase64 = true
			}
		}
	}

	var data []byte
	if isBase64 {
		d, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("invalid base64 data URL: %w", err)
		}
		data = d
	} else if d, err := url.QueryUnescape(payload); err == nil {
		data = []byte(d)
	} else {
		data = []byte(payload)
	}

	return &Resource{URL: u, Data: data, MimeType: mime, Kind: kindOf(mime, "")}, nil
}

// resolve resolves a reference relative to the base URL
func (l *Loader) resolve(ref string) (string, error) {
	if isRemote(ref) {
		return ref, nil
	}

	if !isRemote(l.BaseURL) {
		if l.BaseURL == "" || filepath.IsAbs(ref) {
			return ref, nil
		}
		return filepath.Join(filepath.Dir(l.BaseURL), ref), nil
	}

	base, err := url.Parse(l.BaseURL)
	if err != nil {
		return "", err
	}
	rel, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(rel).String(), nil
}

// loadRemote loads a resource from a remote URL
func (l *Loader) loadRemote(ctx context.Context, u string) (*Resource, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	mime := resp.Header.Get("Content-Type")
	if m, _, ok := strings.Cut(mime, ";"); ok {
		mime = strings.TrimSpace(m)
	}
	if mime == "" || mime == "application/octet-stream" || mime == "text/plain" {
		mime = mimeOf(u)
	}
	return &Resource{URL: u, Data: data, MimeType: mime, Kind: kindOf(mime, u)}, nil
}

// loadLocal loads a resource from a local file, falling back to the search paths
func (l *Loader) loadLocal(path string) (*Resource, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return l.loadFromSearchPaths(path)
	}
	if err != nil {
		return nil, err
	}
	mime := mimeOf(path)
	return &Resource{URL: path, Data: data, MimeType: mime, Kind: kindOf(mime, path)}, nil
}

// loadFromSearchPaths tries each search path with the reference's base name
func (l *Loader) loadFromSearchPaths(name string) (*Resource, error) {
	base := filepath.Base(name)
	for _, dir := range l.searchPaths {
		path := filepath.Join(dir, base)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		mime := mimeOf(path)
		return &Resource{URL: path, Data: data, MimeType: mime, Kind: kindOf(mime, path)}, nil
	}
	return nil, fmt.Errorf("resource not found: %s", name)
}

// mimeOf guesses a MIME type from the file extension
func mimeOf(path string) string {
	if u, err := url.Parse(path); err == nil && u.Scheme != "" {
		path = u.Path
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".tiff", ".tif":
		return "image/tiff"
	case ".bmp":
		return "image/bmp"
	case ".svg":
		return "image/svg+xml"
	case ".yaml", ".yml":
		return "application/yaml"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

// kindOf determines the kind of a resource from its MIME type or extension
func kindOf(mime, path string) Kind {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return KindImage
	case mime == "application/yaml", mime == "application/x-yaml", mime == "text/yaml",
		mime == "application/json":
		return KindDocument
	}
	if path != "" {
		if m := mimeOf(path); m != "application/octet-stream" && m != mime {
			return kindOf(m, "")
		}
	}
	return KindOther
}
