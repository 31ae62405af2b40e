package apu

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestBeeperSilentWhenGateClosed(t *testing.T) {
	b := New(48000)
	b.Generate(100)
	assert.Equal(t, 100, b.StereoAvailable())

	out := b.PullStereo(100)
	assert.Len(t, out, 200)
	for _, s := range out {
		assert.Equal(t, int16(0), s)
	}
	assert.Equal(t, 0, b.StereoAvailable())
}

func TestBeeperSquareWave(t *testing.T) {
	// 1 kHz at 8 kHz: 4 frames high, 4 frames low
	b := New(8000)
	b.SetTone(1000)
	b.SetVolume(1)
	b.SetGate(true)
	assert.True(t, b.Gate())
	b.Generate(8)

	out := b.PullStereo(8)
	assert.Len(t, out, 16)
	for i := 0; i < 8; i++ {
		l, r := out[2*i], out[2*i+1]
		assert.Equal(t, l, r)
		if i < 4 {
			assert.Equal(t, int16(32767), l)
		} else {
			assert.Equal(t, int16(-32767), l)
		}
	}
}

func TestBeeperPhaseRestartsOnGate(t *testing.T) {
	b := New(8000)
	b.SetTone(1000)
	b.SetVolume(1)
	b.SetGate(true)
	b.Generate(5)
	b.SetGate(false)
	b.SetGate(true)
	b.PullStereo(100)
	b.Generate(1)
	out := b.PullStereo(1)
	assert.Equal(t, int16(32767), out[0])
}

func TestBeeperVolumeClamp(t *testing.T) {
	b := New(8000)
	b.SetVolume(5)
	b.SetGate(true)
	b.Generate(1)
	assert.Equal(t, int16(32767), b.PullStereo(1)[0])

	b.SetVolume(-1)
	b.Generate(1)
	assert.Equal(t, int16(0), b.PullStereo(1)[0])
}

func TestBeeperRingDropsWhenFull(t *testing.T) {
	b := New(48000)
	b.Generate(ringSize + 100)
	assert.Equal(t, ringSize-1, b.StereoAvailable())
}

func TestBeeperCapAndReset(t *testing.T) {
	b := New(48000)
	b.Generate(1000)
	b.CapBuffered(300)
	assert.Equal(t, 300, b.StereoAvailable())

	b.SetGate(true)
	b.Reset()
	assert.False(t, b.Gate())
	assert.Equal(t, 0, b.StereoAvailable())
	assert.Len(t, b.PullStereo(10), 0)
}

func TestFramesPerTick(t *testing.T) {
	b := New(0)
	assert.Equal(t, DefaultSampleRate/60, b.FramesPerTick(60))
	assert.Equal(t, 0, b.FramesPerTick(0))
}
