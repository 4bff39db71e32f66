package scope

import (
	"context"
	"sync"
	"time"

	"github.com/paradox70/Precision-Audio-Scope/Meter"
	"go.uber.org/zap"
)

// FreqMonitor 在后台按固定节奏执行频率测量，
// 把采集节奏 (音频块) 和测量节奏 (hop) 解耦。
// 采集端持续写入测量引擎的窗口，监控循环每个周期对
// 当前窗口做一次完整测量，并把结果交给回调和调试器。
type FreqMonitor struct {
	// 配置
	meter          *Meter.FreqMeter
	updateInterval time.Duration

	// 回调：每个测量周期结束后调用 (监控 goroutine 内)
	OnResult func(res Meter.Result)

	// 内部状态
	mu        sync.Mutex
	last      Meter.Result
	startTime time.Time
	wasValid  bool

	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	started  bool
	log      *zap.SugaredLogger
	debugger SignalDebugger
}

// NewFreqMonitor 创建监控实例
// debugger 传 nil 时使用 NoOpDebugger
func NewFreqMonitor(meter *Meter.FreqMeter, updateInterval time.Duration, log *zap.SugaredLogger, debugger SignalDebugger) *FreqMonitor {
	if updateInterval <= 0 {
		updateInterval = 250 * time.Millisecond
	}
	if debugger == nil {
		debugger = &NoOpDebugger{}
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &FreqMonitor{
		meter:          meter,
		updateInterval: updateInterval,
		ctx:            ctx,
		cancel:         cancel,
		done:           make(chan struct{}),
		log:            log,
		debugger:       debugger,
	}
}

// Start 启动后台测量 goroutine
func (fm *FreqMonitor) Start() {
	fm.startTime = time.Now()
	fm.started = true
	go fm.run()
}

// Stop 停止监控，若循环已启动则等待其退出
func (fm *FreqMonitor) Stop() {
	fm.cancel()
	if fm.started {
		<-fm.done
	}
}

// Last 返回最近一次测量结果，显示层从这里读数
func (fm *FreqMonitor) Last() Meter.Result {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	return fm.last
}

// run 是后台运行的主循环
func (fm *FreqMonitor) run() {
	defer close(fm.done)

	ticker := time.NewTicker(fm.updateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-fm.ctx.Done():
			return
		case <-ticker.C:
			fm.measureOnce()
		}
	}
}

// measureOnce 执行一个测量周期
func (fm *FreqMonitor) measureOnce() {
	res, band := fm.meter.Measure()
	elapsed := time.Since(fm.startTime).Seconds()

	fm.mu.Lock()
	fm.last = res
	fm.mu.Unlock()

	// 锁定/失锁只在状态切换时打一条，避免刷屏
	if res.Valid && !fm.wasValid {
		fm.log.Infof("Measurement locked: %.3f Hz", res.Freq)
	} else if !res.Valid && fm.wasValid {
		fm.log.Infof("Measurement lock lost (%s)", res.Reason)
	}
	fm.wasValid = res.Valid

	fm.log.Debugf("cycle t=%.2fs freq=%.3f reason=%s edges=%d/%d p2p=%.4f",
		elapsed, res.Freq, res.Reason, res.RisingEdges, res.FallingEdges, band.PeakToPeak)

	fm.debugger.Record(elapsed, band, res)

	if fm.OnResult != nil {
		fm.OnResult(res)
	}
}
