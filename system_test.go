package scope

import (
	"testing"
	"time"

	"github.com/paradox70/Precision-Audio-Scope/Meter"
	"go.uber.org/zap"
)

// 组装一个不触碰音频硬件的系统：直接布线各组件
func newTestSystem() *ScopeSystem {
	s := NewScopeSystem(DefaultConfig())
	s.log = zap.NewNop().Sugar()
	s.logClose = func() {}
	s.meter = Meter.NewFreqMeter(Meter.DefaultMeterConfig())
	s.debugger = &NoOpDebugger{}
	s.monitor = NewFreqMonitor(s.meter, s.cfg.Meter.UpdateInterval, s.log, s.debugger)
	s.display = NewTerminalDisplay(s.cfg, s.monitor)
	return s
}

func TestHandleCommandViewTransitions(t *testing.T) {
	s := newTestSystem()

	viewSec0, ampScale0, trigger0 := s.display.ViewState()

	s.HandleCommand("+")
	viewSec, _, _ := s.display.ViewState()
	if viewSec <= viewSec0 {
		t.Errorf("'+' should widen the view: %.3f -> %.3f", viewSec0, viewSec)
	}

	s.HandleCommand("-")
	viewSec, _, _ = s.display.ViewState()
	if viewSec != viewSec0 {
		t.Errorf("'-' should undo the widening: got %.3f, want %.3f", viewSec, viewSec0)
	}

	s.HandleCommand("[")
	_, ampScale, _ := s.display.ViewState()
	if ampScale >= ampScale0 {
		t.Errorf("'[' should shrink the amplitude scale: %.3f -> %.3f", ampScale0, ampScale)
	}

	s.HandleCommand("]")
	_, ampScale, _ = s.display.ViewState()
	if ampScale != ampScale0 {
		t.Errorf("']' should undo the shrink: got %.3f, want %.3f", ampScale, ampScale0)
	}

	// 命令大小写和两侧空白都应被接受
	s.HandleCommand("  T  ")
	_, _, trigger := s.display.ViewState()
	if trigger == trigger0 {
		t.Error("'t' should toggle the trigger")
	}
}

func TestHandleCommandWithoutDisplay(t *testing.T) {
	s := newTestSystem()
	s.display = nil

	// 只要不 panic 即可：无显示时命令降级为提示输出
	s.HandleCommand("+")
	s.HandleCommand("t")
	s.HandleCommand("")
}

func TestProcessAudioChunkFanOut(t *testing.T) {
	s := newTestSystem()

	block := make([]float32, 480)
	for i := range block {
		block[i] = float32(i) / 480.0
	}
	s.processAudioChunk(block)

	if got := s.meter.Buffer().Len(); got != 480 {
		t.Errorf("meter window has %d samples, want 480", got)
	}

	view, _ := s.display.history.Snapshot(nil)
	if len(view) != 480 {
		t.Errorf("display history has %d samples, want 480", len(view))
	}
}

func TestHandleCaptureFramesTakesFirstChannel(t *testing.T) {
	s := newTestSystem()
	s.cfg.Audio.Channels = 2

	// 交错立体声：左声道 0.5，右声道 -0.5
	frames := make([]float32, 200)
	for i := 0; i < len(frames); i += 2 {
		frames[i] = 0.5
		frames[i+1] = -0.5
	}
	s.handleCaptureFrames(frames)

	window, _ := s.meter.Buffer().Snapshot(nil)
	if len(window) != 100 {
		t.Fatalf("mono extraction produced %d samples, want 100", len(window))
	}
	for i, v := range window {
		if v != 0.5 {
			t.Fatalf("sample %d: got %.2f, want left channel 0.5", i, v)
		}
	}
}

func TestStopWithoutStartIsSafe(t *testing.T) {
	s := NewScopeSystem(nil)

	done := make(chan struct{})
	go func() {
		s.Stop()
		s.Stop() // 重复停止必须无害
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked on a system that never started")
	}
}
