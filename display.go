package scope

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/paradox70/Precision-Audio-Scope/Meter"
)

/*
终端示波器显示

波形渲染到一个固定的字符网格，每次重绘用 ANSI 光标回位覆盖上一帧。
显示层持有自己的长历史缓冲 (默认 10s)，与 2s 测量窗口互不影响：
视图再怎么缩放都不会动测量数据。
*/

// viewState 是运行期可调的视图参数
type viewState struct {
	viewSec   float64 // 可视时间窗口 (秒)
	ampScale  float64 // 幅度满量程
	triggerOn bool    // 视觉触发开关
}

// TerminalDisplay 在 ANSI 终端上渲染波形和频率读数
type TerminalDisplay struct {
	cfg     *Config
	monitor *FreqMonitor
	history *Meter.RingBuffer // 显示专用历史缓冲

	mu   sync.Mutex
	view viewState

	scratch []float64
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// NewTerminalDisplay 创建显示实例
func NewTerminalDisplay(cfg *Config, monitor *FreqMonitor) *TerminalDisplay {
	ctx, cancel := context.WithCancel(context.Background())

	return &TerminalDisplay{
		cfg:     cfg,
		monitor: monitor,
		history: Meter.NewRingBuffer(int(cfg.Display.HistorySec * float64(cfg.Audio.SampleRate))),
		view: viewState{
			viewSec:   cfg.Display.ViewSec,
			ampScale:  cfg.Display.AmpScale,
			triggerOn: cfg.Display.TriggerOn,
		},
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Feed 写入一块采样 (与测量引擎同源的处理路径)
func (d *TerminalDisplay) Feed(samples []float32) {
	d.history.PushBlock(samples)
}

// Start 启动渲染循环
func (d *TerminalDisplay) Start() {
	d.started = true
	go d.run()
}

// Stop 停止渲染，若循环已启动则等待其退出
func (d *TerminalDisplay) Stop() {
	d.cancel()
	if d.started {
		<-d.done
	}
}

func (d *TerminalDisplay) run() {
	defer close(d.done)

	ticker := time.NewTicker(d.cfg.Display.RefreshRate)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			fmt.Println()
			return
		case <-ticker.C:
			d.render()
		}
	}
}

// render 重绘一帧：光标回位后整帧覆盖输出
func (d *TerminalDisplay) render() {
	d.mu.Lock()
	view := d.view
	d.mu.Unlock()

	frame := d.buildFrame(d.currentView(view), d.monitor.Last(), view)
	fmt.Print("\033[H" + frame)
}

// currentView 取出当前可视窗口的采样
// 触发开启时先取 视图+搜索区 长度的尾部，找到触发点后再对齐，
// 这样平移后波形宽度不变
func (d *TerminalDisplay) currentView(view viewState) []float64 {
	rate := float64(d.cfg.Audio.SampleRate)
	viewSamples := int(view.viewSec * rate)
	if viewSamples < 2 {
		viewSamples = 2
	}

	want := viewSamples
	if view.triggerOn {
		want += d.cfg.Display.TriggerSearch
	}

	window, _ := d.history.Snapshot(d.scratch)
	d.scratch = window

	if len(window) > want {
		window = window[len(window)-want:]
	}
	if view.triggerOn {
		window = window[findTriggerOffset(window, d.cfg.Display.TriggerLevel, d.cfg.Display.TriggerSearch):]
	}
	if len(window) > viewSamples {
		window = window[:viewSamples]
	}
	return window
}

// findTriggerOffset 在搜索范围内寻找第一个向上穿越触发电平的位置
// 没有穿越时返回 0，波形不平移
func findTriggerOffset(view []float64, level float64, search int) int {
	if search > len(view) {
		search = len(view)
	}
	for i := 1; i < search; i++ {
		if view[i-1] < level && view[i] >= level {
			return i
		}
	}
	return 0
}

// buildFrame 把采样渲染成完整的一帧文本
func (d *TerminalDisplay) buildFrame(view []float64, res Meter.Result, vs viewState) string {
	width := d.cfg.Display.Width
	height := d.cfg.Display.Height

	// 空网格，零电平线用 '-' 打底
	grid := make([][]byte, height)
	for r := range grid {
		grid[r] = make([]byte, width)
		for c := range grid[r] {
			grid[r][c] = ' '
		}
	}
	zeroRow := rowOf(0, vs.ampScale, height)
	for c := 0; c < width; c++ {
		grid[zeroRow][c] = '-'
	}

	// 每列取该段采样的最小/最大值，画成竖线段
	if len(view) > 0 {
		for c := 0; c < width; c++ {
			lo := c * len(view) / width
			hi := (c + 1) * len(view) / width
			if hi <= lo {
				hi = lo + 1
			}
			if lo >= len(view) {
				break
			}
			if hi > len(view) {
				hi = len(view)
			}

			segMin, segMax := view[lo], view[lo]
			for _, v := range view[lo:hi] {
				if v < segMin {
					segMin = v
				}
				if v > segMax {
					segMax = v
				}
			}

			top := rowOf(segMax, vs.ampScale, height)
			bot := rowOf(segMin, vs.ampScale, height)
			if top == bot {
				grid[top][c] = '*'
				continue
			}
			for r := top; r <= bot; r++ {
				grid[r][c] = '|'
			}
		}
	}

	var b strings.Builder
	b.WriteString("=== Precision Audio Scope ===\033[K\n")
	b.WriteString(readoutLine(res) + "\033[K\n")
	for _, row := range grid {
		b.Write(row)
		b.WriteString("\033[K\n")
	}

	trigStatus := "OFF"
	if vs.triggerOn {
		trigStatus = "ON"
	}
	fmt.Fprintf(&b, "Window: %.0fms | Scale: %.3f | Trigger: %s [T]\033[K\n", vs.viewSec*1000, vs.ampScale, trigStatus)
	b.WriteString("Commands: [+/-] time window | [[/]] amplitude | [t] trigger | [q] quit\033[K\n")
	return b.String()
}

// readoutLine 生成频率读数行
func readoutLine(res Meter.Result) string {
	if res.Valid {
		return fmt.Sprintf("Frequency: %.3f Hz  [edges %d/%d]", res.Freq, res.RisingEdges, res.FallingEdges)
	}
	return fmt.Sprintf("Frequency: Syncing...  [%s, edges %d/%d]", res.Reason, res.RisingEdges, res.FallingEdges)
}

// rowOf 把幅度映射到字符行 (0 = 顶部)
func rowOf(v, ampScale float64, height int) int {
	if ampScale <= 0 {
		ampScale = 1
	}
	norm := v / ampScale
	if norm > 1 {
		norm = 1
	} else if norm < -1 {
		norm = -1
	}
	row := int((1 - norm) / 2 * float64(height-1))
	if row < 0 {
		row = 0
	} else if row >= height {
		row = height - 1
	}
	return row
}

// WidenView 扩大可视时间窗口 (×1.5，上限为历史缓冲时长)
func (d *TerminalDisplay) WidenView() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.view.viewSec *= 1.5
	if d.view.viewSec > d.cfg.Display.HistorySec {
		d.view.viewSec = d.cfg.Display.HistorySec
	}
}

// NarrowView 缩小可视时间窗口 (÷1.5，下限 MinViewSec)
func (d *TerminalDisplay) NarrowView() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.view.viewSec /= 1.5
	if d.view.viewSec < d.cfg.Display.MinViewSec {
		d.view.viewSec = d.cfg.Display.MinViewSec
	}
}

// ScaleUp 增大幅度满量程 (×1.5，波形显得更小)
func (d *TerminalDisplay) ScaleUp() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.view.ampScale *= 1.5
	if d.view.ampScale > d.cfg.Display.MaxAmpScale {
		d.view.ampScale = d.cfg.Display.MaxAmpScale
	}
}

// ScaleDown 减小幅度满量程 (÷1.5，放大波形)
func (d *TerminalDisplay) ScaleDown() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.view.ampScale /= 1.5
	if d.view.ampScale < d.cfg.Display.MinAmpScale {
		d.view.ampScale = d.cfg.Display.MinAmpScale
	}
}

// ToggleTrigger 开关视觉触发
func (d *TerminalDisplay) ToggleTrigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.view.triggerOn = !d.view.triggerOn
}

// ViewState 返回当前视图参数 (测试和状态行使用)
func (d *TerminalDisplay) ViewState() (viewSec, ampScale float64, triggerOn bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.view.viewSec, d.view.ampScale, d.view.triggerOn
}
