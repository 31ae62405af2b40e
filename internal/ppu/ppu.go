// Package ppu holds the CHIP-8 monochrome framebuffer and the XOR sprite blitter.
package ppu

const (
	Width  = 64
	Height = 32
	// Pixels is the number of cells in the framebuffer.
	Pixels = Width * Height
)

// Frame is a row-major snapshot of the framebuffer, origin top-left.
type Frame [Pixels]bool

// Display is the 64x32 framebuffer. Only Clear and DrawSprite mutate it.
type Display struct {
	pix Frame

	// clip drops sprite pixels that fall off the right or bottom edge instead of
	// wrapping them around to the opposite side.
	clip bool

	dirty bool
}

// New returns a blank display that wraps sprites at the edges.
func New() *Display {
	return &Display{dirty: true}
}

// SetClipping selects the off-edge policy for sprite pixels. The default is to wrap.
func (d *Display) SetClipping(on bool) { d.clip = on }

// Clear turns every pixel off.
func (d *Display) Clear() {
	d.pix = Frame{}
	d.dirty = true
}

// DrawSprite XORs rows (one byte per row, MSB is the leftmost pixel) onto the framebuffer
// with the top-left corner at (x mod Width, y mod Height). It reports whether any set
// sprite bit hit a pixel that was already on.
func (d *Display) DrawSprite(x, y byte, rows []byte) (collision bool) {
	ox := int(x) % Width
	oy := int(y) % Height
	for r, bits := range rows {
		py := oy + r
		if py >= Height {
			if d.clip {
				break
			}
			py %= Height
		}
		for c := 0; c < 8; c++ {
			if bits&(0x80>>c) == 0 {
				continue
			}
			px := ox + c
			if px >= Width {
				if d.clip {
					break
				}
				px %= Width
			}
			idx := py*Width + px
			if d.pix[idx] {
				collision = true
			}
			d.pix[idx] = !d.pix[idx]
		}
	}
	if len(rows) > 0 {
		d.dirty = true
	}
	return collision
}

// At reports the pixel at (x, y). Out-of-range coordinates read as off.
func (d *Display) At(x, y int) bool {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return false
	}
	return d.pix[y*Width+x]
}

// Frame returns a copy of the framebuffer.
func (d *Display) Frame() Frame { return d.pix }

// TakeDirty reports whether the framebuffer changed since the last call and resets the flag.
func (d *Display) TakeDirty() bool {
	dirty := d.dirty
	d.dirty = false
	return dirty
}
