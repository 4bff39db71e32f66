package scope

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/paradox70/Precision-Audio-Scope/Meter"
	"go.uber.org/zap"
)

// ScopeSystem 管理整个示波器的生命周期：
// 信号源 (实时采集或 WAV 回放)、测量引擎、监控循环、显示和诊断输出
type ScopeSystem struct {
	// 配置
	cfg *Config

	// 组件
	meter        *Meter.FreqMeter
	monitor      *FreqMonitor
	display      *TerminalDisplay
	audioCapture *AudioCapture
	replayer     *WavReplayer
	recorder     *WavRecorder
	debugger     SignalDebugger

	// 状态
	replayFile    string
	recordFile    string
	csvFile       string
	stopped       bool
	replayStarted bool

	done       chan struct{} // 回放结束后关闭
	replayStop chan struct{}
	replayDone chan struct{}

	log      *zap.SugaredLogger
	logClose func()

	monoScratch []float32
}

// NewScopeSystem 创建系统实例
func NewScopeSystem(cfg *Config) *ScopeSystem {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &ScopeSystem{
		cfg:        cfg,
		done:       make(chan struct{}),
		replayStop: make(chan struct{}),
		replayDone: make(chan struct{}),
	}
}

// EnableRecording 开启录音 (仅实时模式生效)
func (s *ScopeSystem) EnableRecording(filename string) {
	s.recordFile = filename
}

// SetReplayFile 设置回放文件 (设置后将进入回放模式)
func (s *ScopeSystem) SetReplayFile(filename string) {
	s.replayFile = filename
}

// EnableCsvDebug 把每个测量周期写入 CSV 文件
func (s *ScopeSystem) EnableCsvDebug(filename string) {
	s.csvFile = filename
}

// Done 在回放走到文件尾后关闭，主程序可以等待它退出
func (s *ScopeSystem) Done() <-chan struct{} {
	return s.done
}

// Start 启动系统
func (s *ScopeSystem) Start() error {
	var err error
	s.log, s.logClose, err = newLogger(s.cfg.Debug.Verbose, s.cfg.Debug.LogFile)
	if err != nil {
		return err
	}

	// 1. 信号源
	if s.replayFile != "" {
		s.replayer, err = NewWavReplayer(s.replayFile)
		if err != nil {
			return err
		}
		// 回放模式：采样率以文件为准
		s.cfg.Audio.SampleRate = s.replayer.SampleRate
		s.log.Infof("Mode: REPLAY (%s, %dHz, %dch)", s.replayFile, s.replayer.SampleRate, s.replayer.Channels)
	}

	// 2. 测量引擎
	s.meter = Meter.NewFreqMeter(Meter.MeterConfig{
		SampleRate: float64(s.cfg.Audio.SampleRate),
		WindowSec:  s.cfg.Meter.WindowSec,
		HystFrac:   s.cfg.Meter.HystFrac,
		MinFreq:    s.cfg.Meter.MinFreq,
		MaxFreq:    s.cfg.Meter.MaxFreq,
		MinSwing:   s.cfg.Meter.MinSwing,
	})

	// 3. 诊断输出
	if s.csvFile != "" {
		d, err := NewCsvFileDebugger(s.csvFile)
		if err != nil {
			return fmt.Errorf("failed to create csv debugger: %v", err)
		}
		s.debugger = d
		s.log.Infof("Writing measurement cycles to %s", s.csvFile)
	} else {
		s.debugger = &NoOpDebugger{}
	}

	// 4. 录音 (仅实时模式)
	if s.recordFile != "" && s.replayFile == "" {
		s.recorder, err = NewWavRecorder(s.recordFile, s.cfg.Audio.SampleRate, s.log)
		if err != nil {
			return err
		}
		s.log.Infof("Recording audio to %s", s.recordFile)
	}

	// 5. 监控与显示
	s.monitor = NewFreqMonitor(s.meter, s.cfg.Meter.UpdateInterval, s.log, s.debugger)
	if s.cfg.Display.Enabled {
		s.display = NewTerminalDisplay(s.cfg, s.monitor)
		fmt.Print("\033[2J\033[H")
	} else {
		// 无波形模式：每个测量周期打印一行读数
		s.monitor.OnResult = func(res Meter.Result) {
			fmt.Println(readoutLine(res))
		}
	}

	// 6. 启动音频流
	if s.replayFile != "" {
		s.replayStarted = true
		go s.runReplayLoop()
	} else {
		if err := s.startAudioCapture(); err != nil {
			return err
		}
	}

	s.monitor.Start()
	if s.display != nil {
		s.display.Start()
	}

	return nil
}

// Stop 停止系统并释放资源，可重复调用
func (s *ScopeSystem) Stop() {
	if s.stopped {
		return
	}
	s.stopped = true

	if s.audioCapture != nil {
		s.audioCapture.Stop()
	}
	close(s.replayStop)
	if s.replayStarted {
		// 等回放循环退出再关文件
		<-s.replayDone
	}
	if s.monitor != nil {
		s.monitor.Stop()
	}
	if s.display != nil {
		s.display.Stop()
	}
	if s.recorder != nil {
		s.log.Info("Saving recording...")
		s.recorder.Close()
		s.log.Info("Recording saved")
	}
	if s.replayer != nil {
		s.replayer.Close()
	}
	if s.debugger != nil {
		s.debugger.Close()
	}
	if s.logClose != nil {
		s.logClose()
	}
}

// HandleCommand 处理控制台输入的视图命令
func (s *ScopeSystem) HandleCommand(input string) {
	input = strings.TrimSpace(strings.ToLower(input))
	if input == "" {
		return
	}
	if s.display == nil {
		fmt.Println("Display disabled, no view commands available.")
		return
	}

	switch input {
	case "+":
		s.display.WidenView()
	case "-":
		s.display.NarrowView()
	case "]":
		s.display.ScaleUp()
	case "[":
		s.display.ScaleDown()
	case "t":
		s.display.ToggleTrigger()
	default:
		fmt.Printf("Unknown command: %s\n", input)
	}
}

// 内部：统一的音频块处理路径 (实时采集与回放共用)
// 一块数据依次送往录音、测量窗口和显示缓冲
func (s *ScopeSystem) processAudioChunk(samples []float32) {
	if s.recorder != nil {
		s.recorder.WriteSamples(samples)
	}
	s.meter.Ingest(samples)
	if s.display != nil {
		s.display.Feed(samples)
	}
}

// 内部：实时采集回调，交错帧先抽取第一声道 (Left)
func (s *ScopeSystem) handleCaptureFrames(frames []float32) {
	ch := s.cfg.Audio.Channels
	if ch > 1 {
		mono := s.monoScratch[:0]
		for i := 0; i < len(frames); i += ch {
			mono = append(mono, frames[i])
		}
		s.monoScratch = mono
		frames = mono
	}
	s.processAudioChunk(frames)
}

// 内部：启动实时音频捕获
func (s *ScopeSystem) startAudioCapture() error {
	var err error
	s.audioCapture, err = NewAudioCapture(s.cfg.Audio.SampleRate, s.cfg.Audio.Channels, s.cfg.Audio.DeviceName, s.log, s.handleCaptureFrames)
	if err != nil {
		return fmt.Errorf("failed to init audio capture: %v", err)
	}
	return s.audioCapture.Start()
}

// 内部：运行回放循环，按采样率节奏模拟实时输入
func (s *ScopeSystem) runReplayLoop() {
	defer close(s.replayDone)

	chunkSize := 1024
	interval := time.Second * time.Duration(chunkSize) / time.Duration(s.cfg.Audio.SampleRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.log.Info("Replay started")
	for {
		select {
		case <-s.replayStop:
			return
		case <-ticker.C:
			samples, err := s.replayer.ReadChunk(chunkSize)
			if err != nil {
				if err == io.EOF {
					s.log.Info("End of file")
				} else {
					s.log.Errorf("Replay failed: %v", err)
				}
				close(s.done)
				return
			}
			s.processAudioChunk(samples)
		}
	}
}
