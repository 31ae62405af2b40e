// Package apu generates the CHIP-8 beep: a single square-wave tone that sounds while
// the sound timer is non-zero. Samples are rendered into a stereo ring buffer that the
// host audio stream drains.
package apu

const (
	DefaultSampleRate = 48000
	DefaultTone       = 440.0
	DefaultVolume     = 0.20

	ringSize = 16384 // stereo frames, power of two
)

// Beeper renders a square wave gated on and off by the machine.
type Beeper struct {
	sampleRate int
	tone       float64 // Hz
	volume     float64 // 0..1
	phase      float64 // 0..1 position within one period
	gate       bool

	// stereo ring buffers (left/right)
	sL    []int16
	sR    []int16
	sHead int
	sTail int
}

// New returns a closed beeper at the default tone and volume. A non-positive rate
// selects DefaultSampleRate.
func New(sampleRate int) *Beeper {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &Beeper{
		sampleRate: sampleRate,
		tone:       DefaultTone,
		volume:     DefaultVolume,
		sL:         make([]int16, ringSize),
		sR:         make([]int16, ringSize),
	}
}

// SetTone sets the beep frequency. Non-positive values are ignored.
func (b *Beeper) SetTone(hz float64) {
	if hz > 0 {
		b.tone = hz
	}
}

// SetVolume sets the amplitude, clamped to 0..1.
func (b *Beeper) SetVolume(v float64) {
	switch {
	case v < 0:
		v = 0
	case v > 1:
		v = 1
	}
	b.volume = v
}

// SetGate opens or closes the tone. The phase restarts on every rising edge so each
// beep starts identically.
func (b *Beeper) SetGate(on bool) {
	if on && !b.gate {
		b.phase = 0
	}
	b.gate = on
}

// Gate reports whether the tone is sounding.
func (b *Beeper) Gate() bool { return b.gate }

// FramesPerTick is the number of stereo frames covering 1/hz seconds.
func (b *Beeper) FramesPerTick(hz int) int {
	if hz <= 0 {
		return 0
	}
	return b.sampleRate / hz
}

// Generate renders n stereo frames. A closed gate produces silence.
func (b *Beeper) Generate(n int) {
	step := b.tone / float64(b.sampleRate)
	amp := int16(b.volume * 32767)
	for i := 0; i < n; i++ {
		var s int16
		if b.gate {
			if b.phase < 0.5 {
				s = amp
			} else {
				s = -amp
			}
			b.phase += step
			if b.phase >= 1 {
				b.phase -= 1
			}
		}
		b.pushStereo(s, s)
	}
}

// Reset closes the gate and drops buffered audio.
func (b *Beeper) Reset() {
	b.gate = false
	b.phase = 0
	b.sHead, b.sTail = 0, 0
}

func (b *Beeper) pushStereo(l, r int16) {
	next := (b.sHead + 1) & (len(b.sL) - 1)
	if next == b.sTail {
		return // drop if full
	}
	b.sL[b.sHead] = l
	b.sR[b.sHead] = r
	b.sHead = next
}

// PullStereo removes up to max frames and returns them interleaved L,R.
func (b *Beeper) PullStereo(max int) []int16 {
	if max <= 0 || b.sHead == b.sTail {
		return nil
	}
	count := b.StereoAvailable()
	if count > max {
		count = max
	}
	out := make([]int16, 0, count*2)
	for i := 0; i < count; i++ {
		out = append(out, b.sL[b.sTail], b.sR[b.sTail])
		b.sTail = (b.sTail + 1) & (len(b.sL) - 1)
	}
	return out
}

// StereoAvailable returns the number of buffered frames.
func (b *Beeper) StereoAvailable() int {
	return (b.sHead - b.sTail) & (len(b.sL) - 1)
}

// CapBuffered drops the oldest frames so at most target remain queued.
func (b *Beeper) CapBuffered(target int) {
	if target < 0 {
		target = 0
	}
	if extra := b.StereoAvailable() - target; extra > 0 {
		b.sTail = (b.sTail + extra) & (len(b.sL) - 1)
	}
}
