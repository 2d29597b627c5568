package texture

import (
	"errors"
	"fmt"
	"image"
)

// TGA image types.
const (
	TGATypeUncompressed = 2  // true-color
	TGATypeRLE          = 10 // run-length encoded true-color
)

const tgaHeaderSize = 18

// DecodeTGA decodes an uncompressed or RLE true-color TGA image with 24 or
// 32 bits per pixel. TGA has no magic number, so image.Decode cannot sniff
// it; Decode falls back to this decoder.
func DecodeTGA(data []byte) (*image.RGBA, error) {
	if len(data) < tgaHeaderSize {
		return nil, errors.New("tga: header truncated")
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	topToBottom := data[17]&0x20 != 0

	if colorMapType != 0 {
		return nil, errors.New("tga: color-mapped images not supported")
	}
	if imageType != TGATypeUncompressed && imageType != TGATypeRLE {
		return nil, fmt.Errorf("tga: unsupported image type %d", imageType)
	}
	if bpp != 24 && bpp != 32 {
		return nil, fmt.Errorf("tga: unsupported bit depth %d", bpp)
	}
	if width == 0 || height == 0 {
		return nil, errors.New("tga: empty image")
	}
	offset := tgaHeaderSize + idLength
	if offset > len(data) {
		return nil, errors.New("tga: truncated")
	}

	d := tgaDecoder{
		img:         image.NewRGBA(image.Rect(0, 0, width, height)),
		src:         data[offset:],
		bytesPP:     bpp / 8,
		topToBottom: topToBottom,
	}
	var err error
	if imageType == TGATypeUncompressed {
		err = d.raw()
	} else {
		err = d.rle()
	}
	if err != nil {
		return nil, err
	}
	return d.img, nil
}

type tgaDecoder struct {
	img         *image.RGBA
	src         []byte
	pos         int
	bytesPP     int
	topToBottom bool
}

// pixel reads one BGR(A) pixel and returns it as RGBA.
func (d *tgaDecoder) pixel() ([4]byte, bool) {
	if d.pos+d.bytesPP > len(d.src) {
		return [4]byte{}, false
	}
	p := d.src[d.pos : d.pos+d.bytesPP]
	d.pos += d.bytesPP
	c := [4]byte{p[2], p[1], p[0], 255}
	if d.bytesPP == 4 {
		c[3] = p[3]
	}
	return c, true
}

// put stores pixel n of the file order into the image. Rows are stored
// bottom-up unless the descriptor says otherwise.
func (d *tgaDecoder) put(n int, c [4]byte) {
	w, h := d.img.Rect.Dx(), d.img.Rect.Dy()
	x, y := n%w, n/w
	if !d.topToBottom {
		y = h - 1 - y
	}
	i := d.img.PixOffset(x, y)
	copy(d.img.Pix[i:i+4], c[:])
}

func (d *tgaDecoder) raw() error {
	n := d.img.Rect.Dx() * d.img.Rect.Dy()
	if len(d.src) < n*d.bytesPP {
		return errors.New("tga: pixel data truncated")
	}
	for i := 0; i < n; i++ {
		c, _ := d.pixel()
		d.put(i, c)
	}
	return nil
}

func (d *tgaDecoder) rle() error {
	n := d.img.Rect.Dx() * d.img.Rect.Dy()
	for i := 0; i < n; {
		if d.pos >= len(d.src) {
			return errors.New("tga: rle data truncated")
		}
		header := d.src[d.pos]
		d.pos++
		count := min(int(header&0x7F)+1, n-i)

		if header&0x80 != 0 {
			c, ok := d.pixel()
			if !ok {
				return errors.New("tga: rle data truncated")
			}
			for k := 0; k < count; k++ {
				d.put(i, c)
				i++
			}
			continue
		}
		for k := 0; k < count; k++ {
			c, ok := d.pixel()
			if !ok {
				return errors.New("tga: rle data truncated")
			}
			d.put(i, c)
			i++
		}
	}
	return nil
}
