package uploads

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"consultdesk/internal/models"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	DefaultMaxBytes   = 10 << 20
	DefaultMaxDim     = 6000
	DefaultThumbWidth = 300
)

// ImageStore saves meeting note images under Dir as JPEG with a thumbnail.
type ImageStore struct {
	Dir        string
	MaxBytes   int64
	MaxDim     int
	ThumbWidth int
}

func NewImageStore(dir string) *ImageStore {
	return &ImageStore{
		Dir:        dir,
		MaxBytes:   DefaultMaxBytes,
		MaxDim:     DefaultMaxDim,
		ThumbWidth: DefaultThumbWidth,
	}
}

// SavedImage holds paths relative to the store directory.
type SavedImage struct {
	Path      string
	ThumbPath string
	Width     int
	Height    int
}

// SaveMeetingImage decodes r, rewrites it as meetings/<id>.jpg and writes a
// ThumbWidth-wide thumbnail next to it. Undecodable or oversized input is a
// ValidationError.
func (s *ImageStore) SaveMeetingImage(r io.Reader, meetingID uuid.UUID) (*SavedImage, error) {
	buf, err := io.ReadAll(io.LimitReader(r, s.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if int64(len(buf)) > s.MaxBytes {
		return nil, models.NewValidationError("Image exceeds %d MB", s.MaxBytes>>20)
	}

	// Header dimensions are checked before the pixel buffer is allocated.
	cfg, _, err := image.DecodeConfig(bytes.NewReader(buf))
	if err != nil {
		return nil, models.NewValidationError("Unsupported or corrupt image")
	}
	if cfg.Width > s.MaxDim || cfg.Height > s.MaxDim {
		return nil, models.NewValidationError("Image dimensions %dx%d exceed %dx%d",
			cfg.Width, cfg.Height, s.MaxDim, s.MaxDim)
	}

	img, err := imaging.Decode(bytes.NewReader(buf), imaging.AutoOrientation(true))
	if err != nil {
		return nil, models.NewValidationError("Unsupported or corrupt image")
	}
	bounds := img.Bounds()

	dir := filepath.Join(s.Dir, "meetings")
	if err := os.MkdirAll(filepath.Join(dir, "thumbs"), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	name := meetingID.String() + ".jpg"
	saved := &SavedImage{
		Path:      filepath.Join("meetings", name),
		ThumbPath: filepath.Join("meetings", "thumbs", name),
		Width:     bounds.Dx(),
		Height:    bounds.Dy(),
	}
	if err := imaging.Save(img, filepath.Join(s.Dir, saved.Path), imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("failed to save image: %w", err)
	}

	thumb := img
	if bounds.Dx() > s.ThumbWidth {
		thumb = imaging.Resize(img, s.ThumbWidth, 0, imaging.Lanczos)
	}
	if err := imaging.Save(thumb, filepath.Join(s.Dir, saved.ThumbPath), imaging.JPEGQuality(80)); err != nil {
		return nil, fmt.Errorf("failed to save thumbnail: %w", err)
	}
	return saved, nil
}

// Remove deletes a previously saved image and its thumbnail. Missing files
// are ignored.
func (s *ImageStore) Remove(meetingID uuid.UUID) error {
	name := meetingID.String() + ".jpg"
	for _, p := range []string{
		filepath.Join(s.Dir, "meetings", name),
		filepath.Join(s.Dir, "meetings", "thumbs", name),
	} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}
