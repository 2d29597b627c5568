// Package texture decodes image files into RGBA8 pixel data for texture
// creation.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"  // GIF decoder registration
	_ "image/jpeg" // JPEG decoder registration
	_ "image/png"  // PNG decoder registration

	_ "golang.org/x/image/bmp"  // BMP decoder registration
	_ "golang.org/x/image/tiff" // TIFF decoder registration
	_ "golang.org/x/image/webp" // WebP decoder registration
)

// Decode decodes an image in any registered format, or TGA, into a
// tightly packed RGBA image whose bounds start at the origin.
func Decode(data []byte) (*image.RGBA, error) {
	if len(data) == 0 {
		return nil, errors.New("texture: no data")
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if errors.Is(err, image.ErrFormat) {
		rgba, tgaErr := DecodeTGA(data)
		if tgaErr != nil {
			return nil, fmt.Errorf("texture: unknown image format (%w)", tgaErr)
		}
		return rgba, nil
	}
	if err != nil {
		return nil, fmt.Errorf("texture: decode: %w", err)
	}
	return ToRGBA(img), nil
}

// ToRGBA converts img to an RGBA image at the origin. An *image.RGBA that
// already is one is returned as is.
func ToRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && b.Min == (image.Point{}) && rgba.Stride == 4*b.Dx() {
		return rgba
	}
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

// FlipVertical flips img in place. Decoded images are stored top row
// first; some render targets and file formats expect the opposite.
func FlipVertical(img *image.RGBA) {
	h := img.Rect.Dy()
	row := make([]byte, img.Stride)
	for y := 0; y < h/2; y++ {
		top := img.Pix[y*img.Stride : (y+1)*img.Stride]
		bot := img.Pix[(h-1-y)*img.Stride : (h-y)*img.Stride]
		copy(row, top)
		copy(top, bot)
		copy(bot, row)
	}
}
