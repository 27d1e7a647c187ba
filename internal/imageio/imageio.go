// Package imageio loads and saves the images the editor works on and
// converts them to and from the base64 data URLs used on the wire.
package imageio

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// MaxEncodedBytes caps the decoded size of an incoming data URL. Payloads
// beyond this are rejected before any pixel work happens.
const MaxEncodedBytes = 10 << 20

// Metadata describes a loaded image.
type Metadata struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
	Size   int    `json:"size_bytes"`
}

// Load reads an image from disk. PNG and JPEG come through the registered
// decoders; WebP gets an explicit fallback because imaging does not register
// it.
func Load(path string) (image.Image, Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Metadata{}, err
	}
	img, format, err := decode(data)
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("load %s: %w", filepath.Base(path), err)
	}
	return img, metadata(img, format, len(data)), nil
}

// Save writes an image, choosing the encoder from the file extension. WebP
// needs its own encoder; everything else goes through imaging.
func Save(path string, img image.Image) error {
	if strings.EqualFold(filepath.Ext(path), ".webp") {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		return webp.Encode(f, img, &webp.Options{Quality: 90})
	}
	return imaging.Save(img, path)
}

// EncodeDataURL renders an image as a base64 PNG data URL, the format the
// processing service accepts.
func EncodeDataURL(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodeDataURL parses a data URL (or bare base64 payload) into an image.
func DecodeDataURL(s string) (image.Image, Metadata, error) {
	payload := s
	if strings.HasPrefix(s, "data:") {
		i := strings.Index(s, ",")
		if i < 0 {
			return nil, Metadata{}, fmt.Errorf("data url: missing payload separator")
		}
		payload = s[i+1:]
	}
	if est := base64.StdEncoding.DecodedLen(len(payload)); est > MaxEncodedBytes {
		return nil, Metadata{}, fmt.Errorf("data url: payload %d bytes exceeds %d byte limit", est, MaxEncodedBytes)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("data url: %w", err)
	}
	img, format, err := decode(data)
	if err != nil {
		return nil, Metadata{}, err
	}
	return img, metadata(img, format, len(data)), nil
}

// Thumbnail scales an image down so its longest side is at most maxDim,
// keeping aspect ratio. Images already small enough come back unchanged.
func Thumbnail(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}
	if w >= h {
		return imaging.Resize(img, maxDim, 0, imaging.Lanczos)
	}
	return imaging.Resize(img, 0, maxDim, imaging.Lanczos)
}

// ToRGBA returns the image as *image.RGBA, converting only when needed.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Set(x-b.Min.X, y-b.Min.Y, img.At(x, y))
		}
	}
	return dst
}

func decode(data []byte) (image.Image, string, error) {
	if img, format, err := image.Decode(bytes.NewReader(data)); err == nil {
		return img, format, nil
	}
	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, "webp", nil
	}
	return nil, "", fmt.Errorf("image: unknown or unsupported format")
}

func metadata(img image.Image, format string, size int) Metadata {
	b := img.Bounds()
	return Metadata{Width: b.Dx(), Height: b.Dy(), Format: format, Size: size}
}
