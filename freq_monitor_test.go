package scope

import (
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/paradox70/Precision-Audio-Scope/Meter"
	"go.uber.org/zap"
)

// recordingDebugger 捕获每个测量周期供断言
type recordingDebugger struct {
	mu      sync.Mutex
	cycles  int
	lastRes Meter.Result
	closed  bool
}

func (d *recordingDebugger) Record(elapsedSec float64, band Meter.Band, res Meter.Result) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cycles++
	d.lastRes = res
}

func (d *recordingDebugger) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
}

// 把一段正弦填进测量引擎
func feedSine(m *Meter.FreqMeter, freq, durationSec float64) {
	rate := m.Config().SampleRate
	n := int(durationSec * rate)
	block := make([]float32, n)
	for i := range block {
		block[i] = float32(math.Sin(2.0 * math.Pi * freq * float64(i) / rate))
	}
	m.Ingest(block)
}

func TestFreqMonitorMeasuresAndReports(t *testing.T) {
	meter := Meter.NewFreqMeter(Meter.DefaultMeterConfig())
	feedSine(meter, 440.0, 2.0)

	dbg := &recordingDebugger{}
	var cbCount int32

	monitor := NewFreqMonitor(meter, 5*time.Millisecond, zap.NewNop().Sugar(), dbg)
	monitor.OnResult = func(res Meter.Result) {
		atomic.AddInt32(&cbCount, 1)
	}
	monitor.Start()

	// 等待若干周期完成
	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&cbCount) < 3 {
		if time.Now().After(deadline) {
			t.Fatal("monitor produced no measurement cycles in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
	monitor.Stop()

	last := monitor.Last()
	if !last.Valid {
		t.Fatalf("expected a valid measurement, got %s", last.Reason)
	}
	if math.Abs(last.Freq-440.0) > 0.01 {
		t.Errorf("measured %.4f Hz, want 440 +-0.01", last.Freq)
	}

	dbg.mu.Lock()
	defer dbg.mu.Unlock()
	if dbg.cycles < 3 {
		t.Errorf("debugger saw %d cycles, want >= 3", dbg.cycles)
	}
	if !dbg.lastRes.Valid {
		t.Errorf("debugger last cycle invalid: %s", dbg.lastRes.Reason)
	}
}

func TestFreqMonitorStopBeforeStart(t *testing.T) {
	meter := Meter.NewFreqMeter(Meter.DefaultMeterConfig())
	monitor := NewFreqMonitor(meter, time.Second, zap.NewNop().Sugar(), nil)

	// 未启动就停止：不能阻塞
	done := make(chan struct{})
	go func() {
		monitor.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked without a running loop")
	}
}

func TestFreqMonitorDefaults(t *testing.T) {
	meter := Meter.NewFreqMeter(Meter.DefaultMeterConfig())
	monitor := NewFreqMonitor(meter, 0, zap.NewNop().Sugar(), nil)

	if monitor.updateInterval != 250*time.Millisecond {
		t.Errorf("zero interval should fall back to 250ms, got %v", monitor.updateInterval)
	}
	if _, ok := monitor.debugger.(*NoOpDebugger); !ok {
		t.Errorf("nil debugger should fall back to NoOpDebugger, got %T", monitor.debugger)
	}
}
