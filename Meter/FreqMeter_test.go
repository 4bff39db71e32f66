package Meter

import (
	"math"
	"math/rand"
	"testing"
)

const testSampleRate = 48000.0

// 生成正弦波辅助函数
func generateSineWave(freq float64, durationSec float64, sampleRate float64) []float64 {
	samples := int(durationSec * sampleRate)
	data := make([]float64, samples)
	for i := 0; i < samples; i++ {
		t := float64(i) / sampleRate
		data[i] = math.Sin(2 * math.Pi * freq * t)
	}
	return data
}

func feedMeter(m *FreqMeter, data []float64) {
	for _, v := range data {
		m.Push(v)
	}
}

func TestFreqMeter_Determinism(t *testing.T) {
	// 同一窗口内容下反复测量，结果必须逐位一致
	m := NewFreqMeter(DefaultMeterConfig())
	feedMeter(m, generateSineWave(440.0, 2.0, testSampleRate))

	first := m.Estimate()
	if !first.Valid {
		t.Fatalf("Expected valid result, got %s", first.Reason)
	}
	for i := 0; i < 5; i++ {
		res := m.Estimate()
		if res != first {
			t.Fatalf("Estimate not bit-identical on repeat %d: %+v vs %+v", i, res, first)
		}
	}
}

func TestFreqMeter_Accuracy10Hz(t *testing.T) {
	// 48kHz 采满 2s 窗口的 10Hz 正弦，误差要求 0.01Hz 以内
	m := NewFreqMeter(DefaultMeterConfig())
	feedMeter(m, generateSineWave(10.0, 2.0, testSampleRate))

	res := m.Estimate()
	if !res.Valid {
		t.Fatalf("Expected valid result, got %s", res.Reason)
	}
	if err := math.Abs(res.Freq - 10.0); err > 0.01 {
		t.Errorf("Accuracy failed: got %.6f Hz, error %.6f Hz", res.Freq, err)
	} else {
		t.Logf("10Hz: got %.6f Hz, error %.6f Hz", res.Freq, err)
	}
}

func TestFreqMeter_NoiseStability2Hz(t *testing.T) {
	// 2Hz 正弦叠加 1% 均匀噪声，连续 10 个窗口的读数应稳定在 0.05Hz 以内
	m := NewFreqMeter(DefaultMeterConfig())
	rng := rand.New(rand.NewSource(42))

	signal := generateSineWave(2.0, 4.5, testSampleRate)
	for i := range signal {
		signal[i] += (rng.Float64()*2 - 1) * 0.01
	}

	windowLen := int(2.0 * testSampleRate)
	hop := int(0.25 * testSampleRate)

	feedMeter(m, signal[:windowLen])

	var low, high float64
	for k := 0; k < 10; k++ {
		if k > 0 {
			off := windowLen + (k-1)*hop
			feedMeter(m, signal[off:off+hop])
		}
		res := m.Estimate()
		if !res.Valid {
			t.Fatalf("Window %d invalid: %s", k, res.Reason)
		}
		if math.Abs(res.Freq-2.0) > 0.05 {
			t.Fatalf("Window %d drifted: %.6f Hz", k, res.Freq)
		}
		if k == 0 || res.Freq < low {
			low = res.Freq
		}
		if k == 0 || res.Freq > high {
			high = res.Freq
		}
	}
	if spread := high - low; spread > 0.05 {
		t.Errorf("Estimates unstable: spread %.6f Hz", spread)
	} else {
		t.Logf("2Hz stability: spread %.6f Hz", spread)
	}
}

func TestFreqMeter_SilenceNoSignal(t *testing.T) {
	// 全零窗口
	m := NewFreqMeter(DefaultMeterConfig())
	feedMeter(m, make([]float64, int(2.0*testSampleRate)))

	res := m.Estimate()
	if res.Valid || res.Reason != ReasonNoSignal || res.Freq != 0 {
		t.Errorf("Expected NO_SIGNAL for silence, got %+v", res)
	}

	// 摆幅低于静噪门限的底噪同样按无信号处理
	rng := rand.New(rand.NewSource(7))
	m = NewFreqMeter(DefaultMeterConfig())
	for i := 0; i < int(2.0*testSampleRate); i++ {
		m.Push((rng.Float64()*2 - 1) * 0.002)
	}
	res = m.Estimate()
	if res.Valid || res.Reason != ReasonNoSignal {
		t.Errorf("Expected NO_SIGNAL for sub-threshold noise, got %+v", res)
	}

	// 尚未写入任何采样
	empty := NewFreqMeter(DefaultMeterConfig())
	res = empty.Estimate()
	if res.Valid || res.Reason != ReasonNoSignal {
		t.Errorf("Expected NO_SIGNAL for empty window, got %+v", res)
	}
}

func TestFreqMeter_SingleEdgeInsufficient(t *testing.T) {
	// 阶跃信号：窗口内只有一个上升沿
	m := NewFreqMeter(DefaultMeterConfig())
	n := int(2.0 * testSampleRate)
	data := make([]float64, n)
	for i := range data {
		if i < n/2 {
			data[i] = -1.0
		} else {
			data[i] = 1.0
		}
	}
	feedMeter(m, data)

	res := m.Estimate()
	if res.Valid || res.Reason != ReasonInsufficientEdges || res.Freq != 0 {
		t.Errorf("Expected INSUFFICIENT_EDGES, got %+v", res)
	}
	if res.RisingEdges != 1 {
		t.Errorf("Expected exactly 1 rising edge, got %d", res.RisingEdges)
	}
}

func TestFreqMeter_SubBandNoiseEdgeParity(t *testing.T) {
	// 幅度远小于迟滞带宽的高频纹波不得改变边沿计数
	clean := NewFreqMeter(DefaultMeterConfig())
	noisy := NewFreqMeter(DefaultMeterConfig())

	base := generateSineWave(5.0, 2.0, testSampleRate)
	feedMeter(clean, base)

	for i := range base {
		base[i] += 0.02 * math.Sin(2*math.Pi*1000.0*float64(i)/testSampleRate)
	}
	feedMeter(noisy, base)

	cr := clean.Estimate()
	nr := noisy.Estimate()
	if cr.RisingEdges != nr.RisingEdges || cr.FallingEdges != nr.FallingEdges {
		t.Errorf("Edge counts diverged under sub-band noise: clean %d/%d, noisy %d/%d",
			cr.RisingEdges, cr.FallingEdges, nr.RisingEdges, nr.FallingEdges)
	}
	if !nr.Valid || math.Abs(nr.Freq-5.0) > 0.05 {
		t.Errorf("Noisy 5Hz estimate off: %+v", nr)
	}
}

func TestFreqMeter_OutOfRangeNotAliased(t *testing.T) {
	// 9kHz 超出可测量范围：必须报 OUT_OF_RANGE，
	// 不得折叠成一个看似合法的带内频率
	m := NewFreqMeter(DefaultMeterConfig())
	feedMeter(m, generateSineWave(9000.0, 2.0, testSampleRate))

	res := m.Estimate()
	if res.Valid {
		t.Fatalf("9kHz must not produce a valid estimate, got %.3f Hz", res.Freq)
	}
	if res.Reason != ReasonOutOfRange {
		t.Errorf("Expected OUT_OF_RANGE, got %s", res.Reason)
	}
	if res.Freq != 0 {
		t.Errorf("Invalid result must carry zero freq, got %v", res.Freq)
	}
}

func TestFreqMeter_PartialWindowEstimates(t *testing.T) {
	// 窗口未填满时测量照常进行，不等待填满
	m := NewFreqMeter(DefaultMeterConfig())
	feedMeter(m, generateSineWave(10.0, 0.5, testSampleRate))

	res := m.Estimate()
	if !res.Valid {
		t.Fatalf("Expected valid result on partial window, got %s", res.Reason)
	}
	if math.Abs(res.Freq-10.0) > 0.01 {
		t.Errorf("Partial window estimate off: %.6f Hz", res.Freq)
	}
}

func TestFreqMeter_IngestBlocks(t *testing.T) {
	// float32 采集块路径与逐采样写入给出一致的测量
	m := NewFreqMeter(DefaultMeterConfig())
	data := generateSineWave(100.0, 2.0, testSampleRate)

	block := make([]float32, 1024)
	for i := 0; i < len(data); i += len(block) {
		end := i + len(block)
		if end > len(data) {
			end = len(data)
		}
		chunk := block[:end-i]
		for j := range chunk {
			chunk[j] = float32(data[i+j])
		}
		m.Ingest(chunk)
	}

	res := m.Estimate()
	if !res.Valid {
		t.Fatalf("Expected valid result, got %s", res.Reason)
	}
	if math.Abs(res.Freq-100.0) > 0.01 {
		t.Errorf("Ingest path estimate off: %.6f Hz", res.Freq)
	}
}

func TestFreqMeter_ZeroConfigFallsBack(t *testing.T) {
	// 零值配置回落到参考配置
	m := NewFreqMeter(MeterConfig{})
	if m.Config() != DefaultMeterConfig() {
		t.Errorf("Expected default config, got %+v", m.Config())
	}
	if m.Buffer().Cap() != int(2.0*48000) {
		t.Errorf("Expected 96000-sample window, got %d", m.Buffer().Cap())
	}
}
