package audio

import (
	"fmt"
	"unsafe"

	"github.com/gen2brain/malgo"

	"github.com/linuxmatters/rhythmimick/internal/capture"
)

// InputConfig selects and shapes a live capture device.
type InputConfig struct {
	Source     capture.Source
	SampleRate int // 0 uses the device default
	Channels   int // 0 uses stereo
}

// Input is a live capture device delivering float32 blocks to a callback on
// the audio thread.
type Input struct {
	ctx      *malgo.AllocatedContext
	device   *malgo.Device
	channels int
}

// OpenInput initialises a capture device. The microphone source opens the
// default capture device; loopback opens the default playback device in
// loopback mode, which only some backends (WASAPI) support.
//
// onBlock runs on the real-time thread and must not block or allocate.
// logf receives backend diagnostics and may be nil.
func OpenInput(cfg InputConfig, onBlock func(capture.Block), logf func(string)) (*Input, error) {
	channels := cfg.Channels
	if channels <= 0 {
		channels = 2
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		if logf != nil {
			logf(message)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialise audio context: %w", err)
	}

	deviceType := malgo.Capture
	if cfg.Source == capture.SourceLoopback {
		deviceType = malgo.Loopback
	}

	deviceConfig := malgo.DefaultDeviceConfig(deviceType)
	deviceConfig.Capture.Format = malgo.FormatF32
	deviceConfig.Capture.Channels = uint32(channels)
	deviceConfig.SampleRate = uint32(max(0, cfg.SampleRate))

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, input []byte, frameCount uint32) {
			if block, ok := blockFromBytes(input, int(frameCount), channels); ok {
				onBlock(block)
			}
		},
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, callbacks)
	if err != nil {
		_ = ctx.Uninit()
		ctx.Free()
		return nil, fmt.Errorf("failed to open %s device: %w", cfg.Source, err)
	}

	return &Input{ctx: ctx, device: device, channels: channels}, nil
}

// blockFromBytes views a raw f32 callback buffer as a Block without copying.
func blockFromBytes(raw []byte, frames, channels int) (capture.Block, bool) {
	n := frames * channels
	if n <= 0 || len(raw) < n*4 {
		return capture.Block{}, false
	}
	samples := unsafe.Slice((*float32)(unsafe.Pointer(&raw[0])), n)
	return capture.Block{Data: samples, Channels: channels}, true
}

// Start begins delivering blocks.
func (in *Input) Start() error {
	if err := in.device.Start(); err != nil {
		return fmt.Errorf("failed to start capture device: %w", err)
	}
	return nil
}

// Stop halts the device. The callback may still be running when Stop returns
// on some backends; the capture controller tolerates that.
func (in *Input) Stop() error {
	if err := in.device.Stop(); err != nil {
		return fmt.Errorf("failed to stop capture device: %w", err)
	}
	return nil
}

// SampleRate returns the rate the device actually opened at.
func (in *Input) SampleRate() int {
	return int(in.device.SampleRate())
}

// Channels returns the interleaved channel count of delivered blocks.
func (in *Input) Channels() int {
	return in.channels
}

// Close releases the device and context.
func (in *Input) Close() {
	in.device.Uninit()
	_ = in.ctx.Uninit()
	in.ctx.Free()
}
