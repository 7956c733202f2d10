// Package avatar stores user avatar images on disk.  Uploads are limited
// to PNG and JPEG, downscaled server-side to at most 200×200 pixels and
// addressed by user id, one blob per user.
package avatar

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"

	"github.com/iliyamo/desk-booking/internal/repository"
)

// MaxDimension is the largest width or height an avatar keeps after the
// server-side resize.
const MaxDimension = 200

// jpegQuality matches the quality the images were historically stored at.
const jpegQuality = 85

// Store writes and removes avatar blobs under a single directory.
type Store struct {
	dir string
}

// NewStore returns a Store rooted at dir.  The directory is created on
// the first save.
func NewStore(dir string) *Store { return &Store{dir: dir} }

// Save validates, decodes, downscales and persists an uploaded avatar.
// The filename is only used for its extension; the blob is stored as
// {user_id}.{ext}.  The stored path is returned for the user record.
func (s *Store) Save(userID, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	switch ext {
	case "png", "jpg", "jpeg":
	default:
		return "", fmt.Errorf("%w: invalid file format, only PNG, JPG, JPEG allowed", repository.ErrValidation)
	}

	img, _, err := image.Decode(r)
	if err != nil {
		return "", fmt.Errorf("%w: unreadable image: %v", repository.ErrValidation, err)
	}
	img = shrink(img)

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create avatar dir: %w", err)
	}
	path := filepath.Join(s.dir, userID+"."+ext)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create avatar file: %w", err)
	}
	defer f.Close()

	switch ext {
	case "png":
		err = png.Encode(f, img)
	default:
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: jpegQuality})
	}
	if err != nil {
		// Do not leave a corrupted blob behind.
		_ = os.Remove(path)
		return "", fmt.Errorf("encode avatar: %w", err)
	}
	return path, nil
}

// shrink scales an image down so neither side exceeds MaxDimension,
// preserving the aspect ratio.  Images already small enough are returned
// unchanged.
func shrink(img image.Image) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= MaxDimension && h <= MaxDimension {
		return img
	}
	scale := float64(MaxDimension) / float64(w)
	if h > w {
		scale = float64(MaxDimension) / float64(h)
	}
	dst := image.NewRGBA(image.Rect(0, 0, int(float64(w)*scale), int(float64(h)*scale)))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// Path returns the stored avatar path for a user, trying the allowed
// extensions in order.  ok is false when the user has no avatar on disk.
func (s *Store) Path(userID string) (string, bool) {
	for _, ext := range []string{"png", "jpg", "jpeg"} {
		path := filepath.Join(s.dir, userID+"."+ext)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

// Remove deletes an avatar blob, best effort: a failure is logged and
// never blocks the operation that triggered the cleanup.
func (s *Store) Remove(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("avatar: remove %s: %v", path, err)
	}
}
