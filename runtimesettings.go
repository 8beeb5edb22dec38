package apm

// runtimeSettingsQueueDepth bounds the single-producer single-consumer
// runtime-settings queue; a setter call that arrives faster than
// ProcessCapture drains them drops the oldest pending message rather than
// blocking the caller.
const runtimeSettingsQueueDepth = 16

type runtimeSettingKind int

const (
	settingCapturePreGain runtimeSettingKind = iota
	settingCapturePostGain
	settingCaptureFixedPostGain
	settingPlayoutVolumeChange
	settingPlayoutAudioDeviceChange
	settingCaptureOutputUsed
)

type runtimeSetting struct {
	kind            runtimeSettingKind
	float           float64
	boolean         bool
	volume          int
	deviceID        int
	deviceMaxVolume int
}

func (p *Pipeline) enqueueSetting(s runtimeSetting) {
	select {
	case p.settings <- s:
	default:
		// Queue full: drop the oldest pending message to make room, so the
		// most recent caller intent always wins.
		select {
		case <-p.settings:
		default:
		}
		select {
		case p.settings <- s:
		default:
		}
	}
}

// CapturePreGain sets a linear gain applied right after the pre-amplifier,
// before every other capture-path stage, starting at the next
// ProcessCapture call.
func (p *Pipeline) CapturePreGain(factor float64) {
	p.enqueueSetting(runtimeSetting{kind: settingCapturePreGain, float: factor})
}

// CapturePostGain sets a linear gain applied after every capture-path
// stage, applied starting at the next ProcessCapture call.
func (p *Pipeline) CapturePostGain(factor float64) {
	p.enqueueSetting(runtimeSetting{kind: settingCapturePostGain, float: factor})
}

// CaptureFixedPostGain records a fixed post gain in dB, clamped to [0, 90].
// The value is stored on the pipeline only; AGC2 keeps the fixed digital
// gain it was built with, so the audio is not changed.
func (p *Pipeline) CaptureFixedPostGain(db float64) {
	if db < 0 {
		db = 0
	} else if db > 90 {
		db = 90
	}
	p.enqueueSetting(runtimeSetting{kind: settingCaptureFixedPostGain, float: db})
}

// PlayoutVolumeChange notifies the pipeline of a change in the render-side
// playout volume. The value is recorded; no processing stage reads it.
func (p *Pipeline) PlayoutVolumeChange(volume int) {
	p.enqueueSetting(runtimeSetting{kind: settingPlayoutVolumeChange, volume: volume})
}

// PlayoutAudioDeviceChange notifies the pipeline that the render-side audio
// device changed. The id and max volume are recorded; no processing stage
// reads them.
func (p *Pipeline) PlayoutAudioDeviceChange(id, maxVolume int) {
	p.enqueueSetting(runtimeSetting{kind: settingPlayoutAudioDeviceChange, deviceID: id, deviceMaxVolume: maxVolume})
}

// CaptureOutputUsed tells the pipeline whether the processed capture output
// is actually consumed downstream. The flag is recorded; every stage runs
// the same way whatever its value.
func (p *Pipeline) CaptureOutputUsed(used bool) {
	p.enqueueSetting(runtimeSetting{kind: settingCaptureOutputUsed, boolean: used})
}

// applyPendingSettings drains the settings queue, applying every message in
// arrival order, at the start of ProcessCapture.
func (p *Pipeline) applyPendingSettings() {
	for {
		select {
		case s := <-p.settings:
			switch s.kind {
			case settingCapturePreGain:
				p.capturePreGain = s.float
			case settingCapturePostGain:
				p.capturePostGain = s.float
			case settingCaptureFixedPostGain:
				p.captureFixedPostGainDb = s.float
			case settingPlayoutVolumeChange:
				p.playoutVolume = s.volume
			case settingPlayoutAudioDeviceChange:
				p.playoutDeviceID = s.deviceID
				p.playoutDeviceMaxVolume = s.deviceMaxVolume
			case settingCaptureOutputUsed:
				p.captureOutputUsed = s.boolean
			}
		default:
			return
		}
	}
}
