// Package uploads stores report media on local disk under a per-event
// directory: <base>/<eventId>/imagen_<n>.<ext> and video_<n>.<ext>.
package uploads

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

const (
	// MaxImageSize caps a single report image at 5MB.
	MaxImageSize = 5 << 20
	// MaxVideoSize caps a single report video at 50MB.
	MaxVideoSize = 50 << 20
	// MaxImages caps the number of images per report.
	MaxImages = 5
)

var (
	ErrInvalidImageType = errors.New("image must be jpg, jpeg or png")
	ErrInvalidVideoType = errors.New("video must be mp4")
	ErrImageTooLarge    = fmt.Errorf("image exceeds %dMB", MaxImageSize>>20)
	ErrVideoTooLarge    = fmt.Errorf("video exceeds %dMB", MaxVideoSize>>20)
	ErrInvalidPath      = errors.New("invalid upload path")
)

var imageExts = map[string]bool{"jpg": true, "jpeg": true, "png": true}

// File is a fully buffered upload. The handlers cap multipart body size
// before anything reaches this package.
type File struct {
	Name string
	Data []byte
}

type Manager struct {
	baseDir string
}

func NewManager(baseDir string) (*Manager, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &Manager{baseDir: baseDir}, nil
}

// BaseDir returns the root uploads directory, for static file serving.
func (m *Manager) BaseDir() string {
	return m.baseDir
}

// SaveReport writes report media for an event and returns the public
// relative paths (/uploads/<eventId>/...) for the event record.
func (m *Manager) SaveReport(eventID string, imagenes, videos []File) (imagenPaths, videoPaths []string, err error) {
	if len(imagenes) > MaxImages {
		return nil, nil, fmt.Errorf("at most %d images allowed", MaxImages)
	}

	dir := filepath.Join(m.baseDir, eventID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create event uploads dir: %w", err)
	}

	for i, img := range imagenes {
		ext := extension(img.Name)
		if !imageExts[ext] {
			return nil, nil, fmt.Errorf("imagen %d: %w", i+1, ErrInvalidImageType)
		}
		if len(img.Data) > MaxImageSize {
			return nil, nil, fmt.Errorf("imagen %d: %w", i+1, ErrImageTooLarge)
		}

		name := fmt.Sprintf("imagen_%d.%s", i+1, ext)
		if err := os.WriteFile(filepath.Join(dir, name), img.Data, 0o644); err != nil {
			return nil, nil, fmt.Errorf("write imagen %d: %w", i+1, err)
		}
		imagenPaths = append(imagenPaths, path.Join("/uploads", eventID, name))
	}

	for i, vid := range videos {
		if extension(vid.Name) != "mp4" {
			return nil, nil, fmt.Errorf("video %d: %w", i+1, ErrInvalidVideoType)
		}
		if len(vid.Data) > MaxVideoSize {
			return nil, nil, fmt.Errorf("video %d: %w", i+1, ErrVideoTooLarge)
		}

		name := fmt.Sprintf("video_%d.mp4", i+1)
		if err := os.WriteFile(filepath.Join(dir, name), vid.Data, 0o644); err != nil {
			return nil, nil, fmt.Errorf("write video %d: %w", i+1, err)
		}
		videoPaths = append(videoPaths, path.Join("/uploads", eventID, name))
	}

	return imagenPaths, videoPaths, nil
}

// Resolve maps a stored public path (/uploads/<eventId>/<file>) back onto
// the filesystem, refusing anything that escapes the base directory.
func (m *Manager) Resolve(publicPath string) (string, error) {
	rel := strings.TrimPrefix(publicPath, "/uploads/")
	if rel == publicPath || rel == "" {
		return "", ErrInvalidPath
	}

	clean := filepath.Clean(rel)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", ErrInvalidPath
	}
	return filepath.Join(m.baseDir, clean), nil
}

func extension(name string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	return ext
}
