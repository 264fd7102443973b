package assets

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

//go:embed static
var static embed.FS

// Static returns the embedded static files.
func Static() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// DefaultFilters returns the filters applied to the embedded files.
func DefaultFilters(banner string) map[string]Filter {
	f := Chain(StripComments, Banner(banner))
	return map[string]Filter{
		".css": f,
		".js":  f,
	}
}

type asset struct {
	data    []byte
	modTime time.Time
}

// Handler serves files from an fs.FS, running each through the filter
// registered for its extension. Processed content is cached for the
// lifetime of the handler.
type Handler struct {
	fsys    fs.FS
	filters map[string]Filter

	mu    sync.RWMutex
	cache map[string]asset
	group singleflight.Group
}

// NewHandler creates a handler. filters is keyed by extension including the dot.
func NewHandler(fsys fs.FS, filters map[string]Filter) *Handler {
	return &Handler{
		fsys:    fsys,
		filters: filters,
		cache:   make(map[string]asset),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")

	a, err := h.load(name)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		http.NotFound(w, r)
		return
	case err != nil:
		http.Error(w, "Failed to load asset", http.StatusInternalServerError)
		return
	}

	http.ServeContent(w, r, name, a.modTime, bytes.NewReader(a.data))
}

func (h *Handler) cached(name string) (asset, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	a, ok := h.cache[name]
	return a, ok
}

// load returns the processed asset. Concurrent loads of the same name
// share one read.
func (h *Handler) load(name string) (asset, error) {
	if a, ok := h.cached(name); ok {
		return a, nil
	}

	v, err, _ := h.group.Do(name, func() (any, error) {
		if a, ok := h.cached(name); ok {
			return a, nil
		}

		info, err := fs.Stat(h.fsys, name)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%s is a directory: %w", name, fs.ErrNotExist)
		}

		data, err := fs.ReadFile(h.fsys, name)
		if err != nil {
			return nil, err
		}

		if f, ok := h.filters[path.Ext(name)]; ok {
			if data, err = f.Process(data); err != nil {
				return nil, fmt.Errorf("failed to process %s: %w", name, err)
			}
		}

		a := asset{data: data, modTime: info.ModTime()}
		h.mu.Lock()
		h.cache[name] = a
		h.mu.Unlock()
		return a, nil
	})
	if err != nil {
		return asset{}, err
	}
	return v.(asset), nil
}
