package imageprocessor

import (
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"imagededup/types"
)

var hexToken = regexp.MustCompile(`^[0-9a-f]{16}$`)

// noiseImage builds a 64x64 image of random 8x8 gray blocks
func noiseImage(seed int64) *image.Gray {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for by := 0; by < 8; by++ {
		for bx := 0; bx < 8; bx++ {
			v := uint8(rng.Intn(256))
			for y := by * 8; y < by*8+8; y++ {
				for x := bx * 8; x < bx*8+8; x++ {
					img.SetGray(x, y, color.Gray{Y: v})
				}
			}
		}
	}
	return img
}

func writeImage(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	switch filepath.Ext(path) {
	case ".png":
		err = png.Encode(f, img)
	case ".jpg":
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 95})
	case ".gif":
		err = gif.Encode(f, img, nil)
	default:
		t.Fatalf("unsupported fixture extension %q", path)
	}
	if err != nil {
		t.Fatal(err)
	}
}

func hashers(t *testing.T) []Hasher {
	t.Helper()
	var out []Hasher
	for _, backend := range []string{BackendOpenCV, BackendNative} {
		h, err := NewHasher(backend)
		if err != nil {
			t.Fatalf("NewHasher(%q): %v", backend, err)
		}
		out = append(out, h)
	}
	return out
}

func TestHashersProduceAllKindsInOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.png")
	writeImage(t, path, noiseImage(1))

	for _, h := range hashers(t) {
		t.Run(h.Name(), func(t *testing.T) {
			res, err := h.Compute(path, FormatPNG)
			if err != nil {
				t.Fatalf("Compute: %v", err)
			}
			if res.Width != 64 || res.Height != 64 {
				t.Fatalf("dimensions = %dx%d", res.Width, res.Height)
			}
			if err := res.Hashes.Validate(); err != nil {
				t.Fatalf("invalid hash set: %v", err)
			}
			for i, hv := range res.Hashes {
				if hv.Kind != types.HashKinds[i] {
					t.Fatalf("kind %d = %s, want %s", i, hv.Kind, types.HashKinds[i])
				}
				if !hexToken.MatchString(hv.Value) {
					t.Fatalf("%s value %q is not a 64-bit hex token", hv.Kind, hv.Value)
				}
			}
		})
	}
}

func TestIdenticalBytesHashEqual(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.jpg")
	b := filepath.Join(dir, "b.jpg")
	writeImage(t, a, noiseImage(7))
	data, err := os.ReadFile(a)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(b, data, 0o644); err != nil {
		t.Fatal(err)
	}

	for _, h := range hashers(t) {
		t.Run(h.Name(), func(t *testing.T) {
			ra, err := h.Compute(a, FormatJPEG)
			if err != nil {
				t.Fatal(err)
			}
			rb, err := h.Compute(b, FormatJPEG)
			if err != nil {
				t.Fatal(err)
			}
			if !ra.Hashes.Equal(rb.Hashes) {
				t.Fatalf("hash sets differ:\n%v\n%v", ra.Hashes, rb.Hashes)
			}
		})
	}
}

func TestUnrelatedImagesShareNoHash(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	c := filepath.Join(dir, "c.png")
	writeImage(t, a, noiseImage(1))
	writeImage(t, c, noiseImage(2))

	for _, h := range hashers(t) {
		t.Run(h.Name(), func(t *testing.T) {
			ra, err := h.Compute(a, FormatPNG)
			if err != nil {
				t.Fatal(err)
			}
			rc, err := h.Compute(c, FormatPNG)
			if err != nil {
				t.Fatal(err)
			}
			if matched, _ := ra.Hashes.Matches(rc.Hashes); matched != 0 {
				t.Fatalf("expected no shared kinds, got %d:\n%v\n%v", matched, ra.Hashes, rc.Hashes)
			}
		})
	}
}

func TestHashersDecodeGIF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anim.gif")
	writeImage(t, path, noiseImage(3))

	for _, h := range hashers(t) {
		t.Run(h.Name(), func(t *testing.T) {
			res, err := h.Compute(path, FormatGIF)
			if err != nil {
				t.Fatalf("Compute: %v", err)
			}
			if err := res.Hashes.Validate(); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestHashersRejectCorruptAndUnknown(t *testing.T) {
	dir := t.TempDir()
	corrupt := filepath.Join(dir, "broken.jpg")
	if err := os.WriteFile(corrupt, []byte{0xff, 0xd8, 0xff, 0xe0, 'j', 'u', 'n', 'k'}, 0o644); err != nil {
		t.Fatal(err)
	}

	for _, h := range hashers(t) {
		t.Run(h.Name(), func(t *testing.T) {
			if _, err := h.Compute(corrupt, FormatJPEG); err == nil {
				t.Fatal("expected decode error for corrupt JPEG")
			}
			if _, err := h.Compute(corrupt, FormatUnknown); err == nil {
				t.Fatal("expected error for unknown format")
			}
		})
	}
}

func TestWaveletHashRejectsTinyImages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiny.png")
	writeImage(t, path, image.NewGray(image.Rect(0, 0, 4, 4)))

	for _, h := range hashers(t) {
		t.Run(h.Name(), func(t *testing.T) {
			if _, err := h.Compute(path, FormatPNG); err == nil {
				t.Fatal("expected error for image smaller than the hash grid")
			}
		})
	}
}

func TestNewHasherUnknownBackend(t *testing.T) {
	if _, err := NewHasher("cuda"); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
