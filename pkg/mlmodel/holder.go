package mlmodel

import (
	"errors"
	"sync"
	"time"

	"github.com/mimir-aip/carprice/pkg/logging"
	"github.com/mimir-aip/carprice/pkg/models"
)

// ErrHolderClosed is returned by Get after Close
var ErrHolderClosed = errors.New("model holder is closed")

// LoadFunc loads a model from path
type LoadFunc func(path string) (*Handle, error)

// Holder owns the process-wide model handle. The artifact is loaded on the
// first Get and never reloaded; a failed load is remembered.
type Holder struct {
	path   string
	load   LoadFunc
	logger *logging.FieldLogger

	once     sync.Once
	mu       sync.RWMutex
	handle   *Handle
	err      error
	loadedAt time.Time
	closed   bool
}

// NewHolder creates a holder for the artifact at path
func NewHolder(path string, logger *logging.Logger) *Holder {
	return NewHolderWithLoader(path, Load, logger)
}

// NewHolderWithLoader creates a holder with a custom loader
func NewHolderWithLoader(path string, load LoadFunc, logger *logging.Logger) *Holder {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Holder{
		path:   path,
		load:   load,
		logger: logger.WithFields(logging.Component("model")),
	}
}

// Get returns the shared handle, loading it on first use
func (h *Holder) Get() (*Handle, error) {
	h.once.Do(h.loadOnce)

	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return nil, ErrHolderClosed
	}
	return h.handle, h.err
}

func (h *Holder) loadOnce() {
	h.mu.RLock()
	closed := h.closed
	h.mu.RUnlock()
	if closed {
		return
	}

	start := time.Now()
	handle, err := h.load(h.path)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.handle, h.err = handle, err
	if err != nil {
		h.logger.Error("model load failed", err, logging.String("path", h.path))
		return
	}
	h.loadedAt = time.Now()
	_, hasNames := handle.FeatureNames()
	h.logger.Info("model loaded",
		logging.String("path", h.path),
		logging.String("type", string(handle.Type())),
		logging.Int("width", handle.Width()),
		logging.Bool("feature_names", hasNames),
		logging.Float("load_ms", float64(time.Since(start).Microseconds())/1000))
}

// Close releases the handle. Later calls to Get fail with ErrHolderClosed.
func (h *Holder) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	h.handle = nil
	h.logger.Info("model released", logging.String("path", h.path))
	return nil
}

// Info describes the holder state without triggering a load
func (h *Holder) Info() models.ModelInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()

	info := models.ModelInfo{Path: h.path, Status: models.ModelStatusNotLoaded}
	switch {
	case h.closed:
		info.Status = models.ModelStatusClosed
	case h.err != nil:
		info.Status = models.ModelStatusUnavailable
		info.Error = h.err.Error()
	case h.handle != nil:
		info.Status = models.ModelStatusReady
		info.Type = h.handle.Type()
		info.FeatureCount = h.handle.Width()
		_, info.HasFeatureNames = h.handle.FeatureNames()
		info.Trees = h.handle.Trees()
		loadedAt := h.loadedAt
		info.LoadedAt = &loadedAt
	}
	return info
}
