package scope

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/gen2brain/malgo"
	"go.uber.org/zap"
)

// AudioCallback 定义音频数据回调函数类型
// 多通道采集时 samples 是交错的帧数据 (frame = 每通道一个采样)
type AudioCallback func(samples []float32)

// AudioCapture 管理音频捕获
type AudioCapture struct {
	ctx        *malgo.AllocatedContext
	device     *malgo.Device
	SampleRate int
	Channels   int
	Callback   AudioCallback
	log        *zap.SugaredLogger
}

// NewAudioCapture 创建新的音频捕获实例
// targetDeviceName 非空时按名称子串选择采集设备，否则使用系统默认设备
func NewAudioCapture(sampleRate, channels int, targetDeviceName string, log *zap.SugaredLogger, callback AudioCallback) (*AudioCapture, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to init malgo context: %v", err)
	}

	if channels < 1 {
		channels = 1
	}

	ac := &AudioCapture{
		ctx:        ctx,
		SampleRate: sampleRate,
		Channels:   channels,
		Callback:   callback,
		log:        log,
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatF32
	deviceConfig.Capture.Channels = uint32(channels)
	deviceConfig.SampleRate = uint32(sampleRate)
	deviceConfig.Alsa.NoMMap = 1

	if targetDeviceName != "" {
		infos, err := ctx.Devices(malgo.Capture)
		if err == nil {
			for _, info := range infos {
				if strings.Contains(strings.ToLower(info.Name()), strings.ToLower(targetDeviceName)) {
					deviceConfig.Capture.DeviceID = info.ID.Pointer()
					log.Infof("Selected audio device: %s", info.Name())
					break
				}
			}
		}
	}

	onRecvFrames := func(pOutputSample, pInputSamples []byte, framecount uint32) {
		if ac.Callback == nil {
			return
		}
		if len(pInputSamples) == 0 {
			return
		}
		samples := unsafe.Slice((*float32)(unsafe.Pointer(&pInputSamples[0])), int(framecount)*ac.Channels)
		ac.Callback(samples)
	}

	deviceCallbacks := malgo.DeviceCallbacks{
		Data: onRecvFrames,
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, deviceCallbacks)
	if err != nil {
		_ = ctx.Uninit()
		ctx.Free()
		return nil, fmt.Errorf("failed to init device: %v", err)
	}
	ac.device = device

	log.Infof("Audio device initialized. Rate: %d Hz, Channels: %d", device.SampleRate(), channels)

	return ac, nil
}

// Start 启动音频捕获
func (ac *AudioCapture) Start() error {
	if ac.device == nil {
		return fmt.Errorf("device not initialized")
	}
	return ac.device.Start()
}

// Stop 停止音频捕获并释放资源
func (ac *AudioCapture) Stop() {
	if ac.device != nil {
		ac.device.Uninit()
		ac.device = nil
	}
	if ac.ctx != nil {
		_ = ac.ctx.Uninit()
		ac.ctx.Free()
		ac.ctx = nil
	}
}
