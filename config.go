package scope

import "time"

// Config 结构体用于集中管理示波器的所有可调参数
type Config struct {
	// --- 采集 (Audio Capture) ---
	// 负责从声卡拉取原始采样，或从 WAV 文件回放
	Audio struct {
		SampleRate int    // 采样率 (Hz)，参考配置为 48000
		Channels   int    // 采集通道数。2 = 立体声输入，处理时只取左声道
		DeviceName string // 目标设备名称子串 (大小写不敏感)，为空时使用系统默认设备
	}

	// --- 测量引擎 (Frequency Meter) ---
	// 滑动窗口 + 迟滞边沿检测 + 周期平均
	Meter struct {
		WindowSec      float64       // 测量窗口时长 (秒)。2s 保证低频端也能攒够两个周期
		HystFrac       float64       // 迟滞带半宽占峰峰值的比例 (0.05 = 上下各 5%)
		MinFreq        float64       // 可测量频率下限 (Hz)
		MaxFreq        float64       // 可测量频率上限 (Hz)
		MinSwing       float64       // 峰峰值静噪门限，低于此值报告 NO_SIGNAL
		UpdateInterval time.Duration // 测量周期 (hop)，决定读数刷新的节奏 (例如 250ms)
	}

	// --- 终端显示 (Terminal Display) ---
	// 波形渲染、读数和视图控制
	Display struct {
		Enabled       bool          // 是否渲染波形 (false: 只打印读数行)
		RefreshRate   time.Duration // 波形重绘间隔 (30ms 约 33fps)
		HistorySec    float64       // 显示缓冲区时长 (秒)，决定最大可视窗口
		ViewSec       float64       // 初始可视窗口 (秒)
		MinViewSec    float64       // 可视窗口下限 (秒)，继续缩小没有意义
		AmpScale      float64       // 初始幅度满量程 (归一化幅度)
		MinAmpScale   float64       // 幅度满量程下限
		MaxAmpScale   float64       // 幅度满量程上限
		TriggerOn     bool          // 是否启用视觉触发 (Visual Trigger)，稳定波形显示
		TriggerLevel  float64       // 触发电平 (归一化幅度)
		TriggerSearch int           // 触发点搜索范围 (采样数)
		Width         int           // 波形区字符宽度
		Height        int           // 波形区字符高度
	}

	// --- 诊断 (Diagnostics) ---
	Debug struct {
		Verbose bool   // 是否输出 debug 级日志 (每个测量周期一条)
		LogFile string // 日志文件路径，为空时输出到 stderr
	}
}

// DefaultConfig 返回参考配置
func DefaultConfig() *Config {
	cfg := &Config{}

	// --- 采集 ---
	cfg.Audio.SampleRate = 48000
	cfg.Audio.Channels = 2 // 立体声声卡取左声道
	cfg.Audio.DeviceName = ""

	// --- 测量引擎 ---
	cfg.Meter.WindowSec = 2.0
	cfg.Meter.HystFrac = 0.05
	cfg.Meter.MinFreq = 1.0
	cfg.Meter.MaxFreq = 5000.0
	cfg.Meter.MinSwing = 0.005
	cfg.Meter.UpdateInterval = 250 * time.Millisecond

	// --- 显示 ---
	cfg.Display.Enabled = true
	cfg.Display.RefreshRate = 30 * time.Millisecond
	cfg.Display.HistorySec = 10.0
	cfg.Display.ViewSec = 1.0
	cfg.Display.MinViewSec = 0.002
	cfg.Display.AmpScale = 1.0
	cfg.Display.MinAmpScale = 0.006 // 对应 16-bit 满量程下的 ~200
	cfg.Display.MaxAmpScale = 1.0
	cfg.Display.TriggerOn = true
	cfg.Display.TriggerLevel = 0.0
	cfg.Display.TriggerSearch = 2048
	cfg.Display.Width = 96
	cfg.Display.Height = 16

	// --- 诊断 ---
	cfg.Debug.Verbose = false
	cfg.Debug.LogFile = ""

	return cfg
}
