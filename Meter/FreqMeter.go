package Meter

/*
频率测量引擎 (Frequency Meter)

把滑动窗口、幅度统计、迟滞边沿检测和频率推导串成完整流水线：

	采样 -> RingBuffer -> MeasureBand -> DetectEdges -> EstimateFrequency

写入端 (Push/Ingest) 和测量端 (Estimate) 可以运行在不同的 goroutine，
单生产者单消费者模型。测量对窗口内容是纯函数：
同一窗口重复测量，结果逐位一致。
*/

// MeterConfig 集中管理测量引擎的所有可调参数
type MeterConfig struct {
	SampleRate float64 // 采样率 (Hz)
	WindowSec  float64 // 测量窗口时长 (秒)。2s 窗口在低频端也能攒够两个完整周期
	HystFrac   float64 // 迟滞带半宽占峰峰值的比例 (例如 0.05)
	MinFreq    float64 // 可测量频率下限 (Hz)
	MaxFreq    float64 // 可测量频率上限 (Hz)
	MinSwing   float64 // 峰峰值静噪门限，低于此值报告 NO_SIGNAL
}

// DefaultMeterConfig 返回参考配置 (48kHz / 2s 窗口 / 5% 迟滞 / 1Hz-5kHz)
func DefaultMeterConfig() MeterConfig {
	return MeterConfig{
		SampleRate: 48000.0,
		WindowSec:  2.0,
		HystFrac:   0.05,
		MinFreq:    1.0,
		MaxFreq:    5000.0,
		MinSwing:   0.005,
	}
}

// FreqMeter 是测量引擎实例
type FreqMeter struct {
	cfg    MeterConfig
	buffer *RingBuffer

	// Estimate 专用的临时区。单消费者模型下可以安全复用，
	// 稳态下每个测量周期零分配
	scratch []float64
	edges   []Edge
}

// NewFreqMeter 创建测量引擎，零值参数回落到参考配置
func NewFreqMeter(cfg MeterConfig) *FreqMeter {
	def := DefaultMeterConfig()
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = def.SampleRate
	}
	if cfg.WindowSec <= 0 {
		cfg.WindowSec = def.WindowSec
	}
	if cfg.HystFrac <= 0 {
		cfg.HystFrac = def.HystFrac
	}
	if cfg.MaxFreq <= 0 {
		cfg.MinFreq = def.MinFreq
		cfg.MaxFreq = def.MaxFreq
	}
	if cfg.MinSwing <= 0 {
		cfg.MinSwing = def.MinSwing
	}

	return &FreqMeter{
		cfg:    cfg,
		buffer: NewRingBuffer(int(cfg.WindowSec * cfg.SampleRate)),
	}
}

// Push 写入单个采样，永不失败
func (m *FreqMeter) Push(v float64) {
	m.buffer.Push(v)
}

// Ingest 写入一个音频块 (采集回调的原始 float32 数据)，永不失败
func (m *FreqMeter) Ingest(samples []float32) {
	m.buffer.PushBlock(samples)
}

// Config 返回引擎的生效配置
func (m *FreqMeter) Config() MeterConfig {
	return m.cfg
}

// Buffer 暴露底层窗口，供测试和诊断只读使用
func (m *FreqMeter) Buffer() *RingBuffer {
	return m.buffer
}

// Measure 对当前窗口执行一次完整测量，同时返回本周期的幅度带
// 幅度带供诊断输出 (CSV / 日志) 使用，测量语义只看 Result
func (m *FreqMeter) Measure() (Result, Band) {
	window, start := m.buffer.Snapshot(m.scratch)
	m.scratch = window

	band := MeasureBand(window, m.cfg.HystFrac, m.cfg.MinSwing)
	if !band.Valid {
		// 无信号短路：不做边沿扫描
		return Result{Reason: ReasonNoSignal}, band
	}

	m.edges = DetectEdges(window, start, m.cfg.SampleRate, band, m.edges)
	return EstimateFrequency(m.edges, m.cfg.MinFreq, m.cfg.MaxFreq), band
}

// Estimate 对当前窗口执行一次完整测量
// 调用频率不影响正确性，测量之间不消耗窗口数据
func (m *FreqMeter) Estimate() Result {
	res, _ := m.Measure()
	return res
}
