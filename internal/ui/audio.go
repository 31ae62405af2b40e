package ui

import (
	"encoding/binary"
	"sync/atomic"
	"time"

	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/emu"
	"github.com/hajimehoshi/ebiten/v2/audio"
)

// setupAudio creates the ebiten audio player that streams the beeper.
func (a *App) setupAudio(sampleRate int) error {
	ctx := audio.CurrentContext()
	if ctx == nil {
		ctx = audio.NewContext(sampleRate)
	}
	a.stream = &beeperStream{m: a.m}
	a.stream.lowLatency.Store(a.cfg.AudioLowLatency)
	p, err := ctx.NewPlayer(a.stream)
	if err != nil {
		return err
	}
	a.audioPlayer = p
	a.applyPlayerBufferSize()
	p.Play()
	return nil
}

// applyPlayerBufferSize sets the audio player's internal buffer to a small size for low latency:
// ~20ms in low-latency mode or during fast-forward, ~40ms otherwise.
func (a *App) applyPlayerBufferSize() {
	if a.audioPlayer == nil {
		return
	}
	bufMs := 40
	if a.cfg.AudioLowLatency || a.fast {
		bufMs = 20
	}
	a.audioPlayer.SetBufferSize(time.Duration(bufMs) * time.Millisecond)
}

// capAudioQueue drops beeper output that piled up beyond the configured buffer, which
// happens while fast-forwarding or frame stepping.
func (a *App) capAudioQueue(sampleRate int) {
	a.m.APUCapBufferedStereo(sampleRate * a.cfg.AudioBufferMs / 1000)
}

// beeperStream implements io.Reader by pulling PCM frames from the machine beeper and
// converting them to 16-bit little-endian stereo. Read runs on the audio goroutine.
type beeperStream struct {
	m          *emu.Machine
	lowLatency atomic.Bool
}

func (s *beeperStream) Read(p []byte) (int, error) {
	if len(p) == 0 || s == nil || s.m == nil {
		return 0, nil
	}
	// smaller than one stereo frame: fill with silence to avoid returning 0 bytes
	if len(p) < 4 {
		clear(p)
		return len(p), nil
	}
	if s.m.Muted() {
		// keep the beeper queue drained so unmuting starts in sync
		s.m.APUCapBufferedStereo(0)
		clear(p)
		time.Sleep(5 * time.Millisecond)
		return len(p), nil
	}

	maxReq := len(p) / 4
	capFrames := 2048 // ~42.7ms at 48kHz
	if s.lowLatency.Load() {
		capFrames = 1024
	}
	if maxReq > capFrames {
		maxReq = capFrames
	}

	want := maxReq
	if buf := s.m.APUBufferedStereo(); buf > 0 && buf < want {
		want = buf
	} else if buf == 0 {
		// nothing queued: wait briefly for the next frame
		deadline := time.Now().Add(15 * time.Millisecond)
		for time.Now().Before(deadline) && s.m.APUBufferedStereo() == 0 {
			time.Sleep(time.Millisecond)
		}
		if b := s.m.APUBufferedStereo(); b > 0 && b < want {
			want = b
		} else if b == 0 {
			return s.silence(p, 256, maxReq), nil
		}
	}

	frames := s.m.APUPullStereo(want)
	if len(frames) == 0 {
		return s.silence(p, 128, maxReq), nil
	}
	i := 0
	for j := 0; j+1 < len(frames) && i+3 < len(p); j += 2 {
		binary.LittleEndian.PutUint16(p[i:], uint16(frames[j]))
		binary.LittleEndian.PutUint16(p[i+2:], uint16(frames[j+1]))
		i += 4
	}
	return i, nil
}

// silence writes up to n frames of silence.
func (s *beeperStream) silence(p []byte, n, maxReq int) int {
	if n > maxReq {
		n = maxReq
	}
	clear(p[:n*4])
	return n * 4
}
