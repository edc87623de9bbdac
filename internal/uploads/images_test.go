package uploads

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"consultdesk/internal/models"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 128, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func TestSaveMeetingImage(t *testing.T) {
	store := NewImageStore(t.TempDir())
	id := uuid.New()

	saved, err := store.SaveMeetingImage(bytes.NewReader(pngBytes(t, 600, 400)), id)
	if err != nil {
		t.Fatalf("SaveMeetingImage() error = %v", err)
	}
	if saved.Width != 600 || saved.Height != 400 {
		t.Errorf("dimensions = %dx%d", saved.Width, saved.Height)
	}
	if !strings.HasSuffix(saved.Path, id.String()+".jpg") {
		t.Errorf("Path = %q", saved.Path)
	}

	thumb, err := imaging.Open(filepath.Join(store.Dir, saved.ThumbPath))
	if err != nil {
		t.Fatalf("open thumbnail: %v", err)
	}
	if thumb.Bounds().Dx() != 300 || thumb.Bounds().Dy() != 200 {
		t.Errorf("thumbnail = %dx%d, want 300x200", thumb.Bounds().Dx(), thumb.Bounds().Dy())
	}

	if err := store.Remove(id); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(store.Dir, saved.Path)); !os.IsNotExist(err) {
		t.Errorf("image still present after Remove: %v", err)
	}
	if err := store.Remove(id); err != nil {
		t.Errorf("second Remove() error = %v", err)
	}
}

func TestSaveMeetingImageRejects(t *testing.T) {
	tests := []struct {
		name  string
		data  func(t *testing.T) []byte
		setup func(s *ImageStore)
	}{
		{
			name: "not an image",
			data: func(t *testing.T) []byte { return []byte("hello, world") },
		},
		{
			name:  "too many bytes",
			data:  func(t *testing.T) []byte { return pngBytes(t, 64, 64) },
			setup: func(s *ImageStore) { s.MaxBytes = 16 },
		},
		{
			name:  "too large",
			data:  func(t *testing.T) []byte { return pngBytes(t, 64, 32) },
			setup: func(s *ImageStore) { s.MaxDim = 50 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewImageStore(t.TempDir())
			if tt.setup != nil {
				tt.setup(store)
			}
			_, err := store.SaveMeetingImage(bytes.NewReader(tt.data(t)), uuid.New())
			if !models.IsValidation(err) {
				t.Errorf("SaveMeetingImage() error = %v, want ValidationError", err)
			}
		})
	}
}

func TestSmallImageKeepsSizeInThumbnail(t *testing.T) {
	store := NewImageStore(t.TempDir())
	saved, err := store.SaveMeetingImage(bytes.NewReader(pngBytes(t, 120, 80)), uuid.New())
	if err != nil {
		t.Fatalf("SaveMeetingImage() error = %v", err)
	}
	thumb, err := imaging.Open(filepath.Join(store.Dir, saved.ThumbPath))
	if err != nil {
		t.Fatalf("open thumbnail: %v", err)
	}
	if thumb.Bounds().Dx() != 120 {
		t.Errorf("thumbnail width = %d, want 120", thumb.Bounds().Dx())
	}
}

// hugePNG returns a small grayscale PNG whose header declares w x h pixels.
// The pixel data is a short run of zeros, so only the header is trustworthy.
func hugePNG(t *testing.T, w, h uint32) []byte {
	t.Helper()
	var out bytes.Buffer
	out.WriteString("\x89PNG\r\n\x1a\n")
	chunk := func(kind string, data []byte) {
		binary.Write(&out, binary.BigEndian, uint32(len(data)))
		crc := crc32.NewIEEE()
		crc.Write([]byte(kind))
		crc.Write(data)
		out.WriteString(kind)
		out.Write(data)
		binary.Write(&out, binary.BigEndian, crc.Sum32())
	}

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], w)
	binary.BigEndian.PutUint32(ihdr[4:], h)
	ihdr[8] = 8 // bit depth; colour type 0 (gray)
	chunk("IHDR", ihdr)

	var idat bytes.Buffer
	zw := zlib.NewWriter(&idat)
	zw.Write(make([]byte, 4096))
	zw.Close()
	chunk("IDAT", idat.Bytes())
	chunk("IEND", nil)
	return out.Bytes()
}

func TestSaveMeetingImageRejectsHugeDimensionsBeforeDecoding(t *testing.T) {
	store := NewImageStore(t.TempDir())
	data := hugePNG(t, 20000, 20000)

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	_, err := store.SaveMeetingImage(bytes.NewReader(data), uuid.New())
	runtime.ReadMemStats(&after)

	if !models.IsValidation(err) || !strings.Contains(err.Error(), "20000x20000") {
		t.Fatalf("SaveMeetingImage() error = %v, want dimension ValidationError", err)
	}
	if delta := after.TotalAlloc - before.TotalAlloc; delta > 16<<20 {
		t.Errorf("allocated %d MB before rejecting", delta>>20)
	}
	if entries, _ := os.ReadDir(store.Dir); len(entries) != 0 {
		t.Errorf("upload dir not empty after rejection: %v", entries)
	}
}
