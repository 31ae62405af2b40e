package ppu

import (
	"hash/crc32"
	"image"
	"image/color"
	"strings"
)

// Row returns scanline y (0..31) as 64 pixels.
func (d *Display) Row(y int) [Width]bool {
	var out [Width]bool
	if y < 0 || y >= Height {
		return out
	}
	copy(out[:], d.pix[y*Width:(y+1)*Width])
	return out
}

// WriteRGBA renders the framebuffer into dst as RGBA bytes (Width*Height*4),
// mapping set pixels to fg and clear pixels to bg.
func (d *Display) WriteRGBA(dst []byte, fg, bg color.RGBA) {
	if len(dst) < Pixels*4 {
		return
	}
	for i, on := range d.pix {
		c := bg
		if on {
			c = fg
		}
		o := i * 4
		dst[o+0] = c.R
		dst[o+1] = c.G
		dst[o+2] = c.B
		dst[o+3] = c.A
	}
}

// Image renders the framebuffer into a new RGBA image, each pixel scaled to a
// scale x scale block.
func (d *Display) Image(fg, bg color.RGBA, scale int) *image.RGBA {
	if scale <= 0 {
		scale = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, Width*scale, Height*scale))
	for y := 0; y < Height*scale; y++ {
		for x := 0; x < Width*scale; x++ {
			c := bg
			if d.pix[(y/scale)*Width+x/scale] {
				c = fg
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// CRC32 is a checksum over the framebuffer, one byte (0 or 1) per pixel. Headless runs
// compare it against a known-good value.
func (d *Display) CRC32() uint32 {
	var buf [Pixels]byte
	for i, on := range d.pix {
		if on {
			buf[i] = 1
		}
	}
	return crc32.ChecksumIEEE(buf[:])
}

// String renders the framebuffer as text, '#' for set pixels and '.' for clear ones.
func (d *Display) String() string {
	var sb strings.Builder
	sb.Grow((Width + 1) * Height)
	for y := 0; y < Height; y++ {
		for _, on := range d.Row(y) {
			if on {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
