package forms

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // register PNG decoding for uploaded files

	"golang.org/x/image/draw"
)

const (
	// maxImageEdge bounds the longest edge of an uploaded image.
	maxImageEdge = 300
	// imageQuality is the JPEG re-encode quality.
	imageQuality = 70
)

// ShrinkImage downsamples an uploaded image to at most maxImageEdge on its
// longest edge and re-encodes it as JPEG. This bounds the size of every
// remote write that carries the image.
func ShrinkImage(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if longest := max(w, h); longest > maxImageEdge {
		scale := float64(maxImageEdge) / float64(longest)
		dw := int(float64(w)*scale + 0.5)
		dh := int(float64(h)*scale + 0.5)
		dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
		src = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: imageQuality}); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}
