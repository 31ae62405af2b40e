package config

import (
	"image/color"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"golang.org/x/image/colornames"
)

func TestCreateLogger(t *testing.T) {
	assert.NotNil(t, CreateLogger(false, false))
	assert.NotNil(t, CreateLogger(true, false))
	assert.NotNil(t, CreateLogger(false, true))
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
	}{
		{"white", colornames.White},
		{"Black", colornames.Black},
		{" limegreen ", colornames.Limegreen},
		{"#33ff66", color.RGBA{R: 0x33, G: 0xFF, B: 0x66, A: 0xFF}},
		{"102030", color.RGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xFF}},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		assert.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseColorInvalid(t *testing.T) {
	for _, in := range []string{"", "notacolor", "#12345", "#gggggg"} {
		_, err := ParseColor(in)
		assert.Error(t, err)
	}
}
