// Package dialog drives the create/edit forms. A dialog is always in exactly
// one of Closed, CreateOpen or EditOpen, the last one holding the entity
// being edited.
package dialog

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"sync"

	"restodash/dashboard-svc/internal/domain"

	"go.uber.org/zap"
)

var (
	ErrNotFound          = errors.New("not found, refresh and retry")
	ErrCreateUnsupported = errors.New("dialog does not create entities")
	ErrFilesUnsupported  = errors.New("dialog does not accept files")
	ErrClosed            = errors.New("dialog is closed")
)

type Mode string

const (
	Closed     Mode = "closed"
	CreateOpen Mode = "create"
	EditOpen   Mode = "edit"
)

// Backend is what a dialog submits to. Lookup reads the cached collection
// and must not fetch.
type Backend[T, V any] interface {
	Lookup(id string) (T, bool)
	Create(ctx context.Context, values V) (*T, error)
	Update(ctx context.Context, id string, values V) (*T, error)
}

type Notifier interface {
	Error(msg string)
}

type Options[T, V any] struct {
	Name    string
	Backend Backend[T, V]
	// IDOf names the entity being edited.
	IDOf func(T) string
	// Attach puts the selected file onto the submitted values. Dialogs
	// without it reject files.
	Attach      func(values V, upload *domain.Upload) V
	AllowCreate bool
	// StrictEdit reports a missing id instead of staying closed silently.
	StrictEdit bool
	PreviewDir string
	Notifier   Notifier
	Logger     *zap.Logger
}

type FileInfo struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Size        int    `json:"size"`
}

// State is a copy of the dialog for rendering.
type State[T any] struct {
	Mode   Mode      `json:"mode"`
	Entity *T        `json:"entity,omitempty"`
	File   *FileInfo `json:"file,omitempty"`
}

type Controller[T, V any] struct {
	opts Options[T, V]
	log  *zap.Logger

	mu      sync.Mutex
	mode    Mode
	entity  *T
	file    *domain.Upload
	preview string
}

func New[T, V any](opts Options[T, V]) *Controller[T, V] {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.PreviewDir == "" {
		opts.PreviewDir = os.TempDir()
	}
	return &Controller[T, V]{
		opts: opts,
		log:  log.Named("dialog").With(zap.String("dialog", opts.Name)),
		mode: Closed,
	}
}

func (c *Controller[T, V]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := State[T]{Mode: c.mode}
	if c.entity != nil {
		entity := *c.entity
		s.Entity = &entity
	}
	if c.file != nil {
		s.File = &FileInfo{Filename: c.file.Filename, ContentType: c.file.ContentType, Size: len(c.file.Data)}
	}
	return s
}

func (c *Controller[T, V]) OpenCreate() error {
	if !c.opts.AllowCreate {
		return ErrCreateUnsupported
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.resetLocked()
	c.mode = CreateOpen
	return nil
}

// OpenEdit selects id from the cached collection. A miss leaves the dialog
// closed; only StrictEdit turns it into ErrNotFound.
func (c *Controller[T, V]) OpenEdit(id string) error {
	entity, ok := c.opts.Backend.Lookup(id)

	c.mu.Lock()
	defer c.mu.Unlock()

	if !ok {
		c.resetLocked()
		if c.opts.StrictEdit {
			if c.opts.Notifier != nil {
				c.opts.Notifier.Error(fmt.Sprintf("%s %s not found, refresh and retry", c.opts.Name, id))
			}
			return ErrNotFound
		}
		c.log.Debug("edit target not cached", zap.String("id", id))
		return nil
	}

	c.resetLocked()
	c.mode = EditOpen
	c.entity = &entity
	return nil
}

// SelectFile holds upload for the next submit and writes a preview copy.
func (c *Controller[T, V]) SelectFile(upload domain.Upload) error {
	if c.opts.Attach == nil {
		return ErrFilesUnsupported
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode == Closed {
		return ErrClosed
	}

	path, err := c.writePreview(upload)
	if err != nil {
		return err
	}
	c.releasePreviewLocked()
	c.file = &upload
	c.preview = path
	return nil
}

func (c *Controller[T, V]) writePreview(upload domain.Upload) (string, error) {
	if err := os.MkdirAll(c.opts.PreviewDir, 0o700); err != nil {
		return "", fmt.Errorf("create preview dir: %w", err)
	}
	ext := filepath.Ext(upload.Filename)
	if ext == "" {
		if exts, _ := mime.ExtensionsByType(upload.ContentType); len(exts) > 0 {
			ext = exts[0]
		}
	}
	f, err := os.CreateTemp(c.opts.PreviewDir, "preview-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create preview: %w", err)
	}
	if _, err := f.Write(upload.Data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write preview: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close preview: %w", err)
	}
	return f.Name(), nil
}

// Preview returns the temporary preview path and content type of the
// selected file.
func (c *Controller[T, V]) Preview() (string, string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.file == nil || c.preview == "" {
		return "", "", false
	}
	return c.preview, c.file.ContentType, true
}

// Submit creates or updates depending on the mode. Success closes the
// dialog; failure keeps everything as it was and returns the error.
func (c *Controller[T, V]) Submit(ctx context.Context, values V) (*T, error) {
	c.mu.Lock()
	mode := c.mode
	var id string
	if c.entity != nil {
		id = c.opts.IDOf(*c.entity)
	}
	if c.file != nil && c.opts.Attach != nil {
		upload := *c.file
		values = c.opts.Attach(values, &upload)
	}
	c.mu.Unlock()

	var (
		out *T
		err error
	)
	switch mode {
	case CreateOpen:
		out, err = c.opts.Backend.Create(ctx, values)
	case EditOpen:
		out, err = c.opts.Backend.Update(ctx, id, values)
	default:
		return nil, ErrClosed
	}
	if err != nil {
		c.log.Debug("submit failed", zap.String("mode", string(mode)), zap.Error(err))
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// a cancel or reopen during the request wins
	if c.mode == mode && (mode != EditOpen || (c.entity != nil && c.opts.IDOf(*c.entity) == id)) {
		c.resetLocked()
	}
	return out, nil
}

func (c *Controller[T, V]) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

func (c *Controller[T, V]) resetLocked() {
	c.releasePreviewLocked()
	c.mode = Closed
	c.entity = nil
	c.file = nil
}

func (c *Controller[T, V]) releasePreviewLocked() {
	if c.preview == "" {
		return
	}
	if err := os.Remove(c.preview); err != nil && !errors.Is(err, os.ErrNotExist) {
		c.log.Warn("remove preview", zap.String("path", c.preview), zap.Error(err))
	}
	c.preview = ""
}
