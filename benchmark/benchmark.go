package main

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"text/tabwriter"
	"time"

	"github.com/paradox70/Precision-Audio-Scope/Meter"
	"gonum.org/v1/gonum/stat"
)

// ============================================================================
// 1. 信号发生器 (Tone Generator)
// ============================================================================

type ToneConfig struct {
	Frequency  float64 // 目标频率 (Hz)，0 表示静音
	Amplitude  float64 // 幅度 (归一化满量程 1.0)
	DCOffset   float64 // 直流偏置，考验幅度带的自动居中
	NoisePct   float64 // 均匀噪声幅度 (0.01 = 满量程的 1%)
	SampleRate int
}

// ToneGenerator 按块生成连续相位的测试信号
type ToneGenerator struct {
	Config ToneConfig
	rng    *rand.Rand
	offset int64 // 已生成的采样数，保证跨块相位连续
}

func NewToneGenerator(cfg ToneConfig, seed int64) *ToneGenerator {
	return &ToneGenerator{
		Config: cfg,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// NextBlock 生成下一块采样
func (g *ToneGenerator) NextBlock(n int) []float32 {
	out := make([]float32, n)
	omega := 2.0 * math.Pi * g.Config.Frequency / float64(g.Config.SampleRate)

	for i := 0; i < n; i++ {
		t := float64(g.offset + int64(i))
		v := g.Config.DCOffset + g.Config.Amplitude*math.Sin(omega*t)
		if g.Config.NoisePct > 0 {
			v += (g.rng.Float64()*2 - 1) * g.Config.NoisePct
		}
		out[i] = float32(v)
	}
	g.offset += int64(n)
	return out
}

// ============================================================================
// 2. 测试用例 (Test Cases)
// ============================================================================

type TestCase struct {
	Name       string
	Frequency  float64
	Amplitude  float64
	DCOffset   float64
	NoisePct   float64
	WantReason Meter.Reason
	TolHz      float64 // 允许的平均误差 (仅对 OK 用例)
}

var testCases = []TestCase{
	{Name: "Low End (1.2Hz)", Frequency: 1.2, Amplitude: 1.0, WantReason: Meter.ReasonOK, TolHz: 0.01},
	{Name: "Sub-Audio (2Hz, 1% noise)", Frequency: 2.0, Amplitude: 1.0, NoisePct: 0.01, WantReason: Meter.ReasonOK, TolHz: 0.05},
	{Name: "Mains (50Hz)", Frequency: 50.0, Amplitude: 1.0, WantReason: Meter.ReasonOK, TolHz: 0.01},
	{Name: "Audio (440Hz)", Frequency: 440.0, Amplitude: 1.0, WantReason: Meter.ReasonOK, TolHz: 0.01},
	{Name: "Audio (1kHz, DC offset)", Frequency: 1000.0, Amplitude: 0.5, DCOffset: 0.3, WantReason: Meter.ReasonOK, TolHz: 0.02},
	{Name: "Top End (4.8kHz)", Frequency: 4800.0, Amplitude: 1.0, WantReason: Meter.ReasonOK, TolHz: 0.1},
	{Name: "Below Range (0.5Hz)", Frequency: 0.5, Amplitude: 1.0, WantReason: Meter.ReasonInsufficientEdges},
	{Name: "Out of Range (9kHz)", Frequency: 9000.0, Amplitude: 1.0, WantReason: Meter.ReasonOutOfRange},
	{Name: "Silence", Frequency: 0.0, Amplitude: 0.0, WantReason: Meter.ReasonNoSignal},
	{Name: "Below Squelch (0.1%)", Frequency: 100.0, Amplitude: 0.001, WantReason: Meter.ReasonNoSignal},
}

// ============================================================================
// 3. 基准测试套件 (Benchmark Harness)
// ============================================================================

func RunBenchmark() {
	sampleRate := 48000
	windowSec := 2.0
	hops := 8         // 预热后再滑动测量的次数
	chunkSize := 1024 // 模拟流式输入的块大小
	hopSamples := sampleRate / 4

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CASE\tTARGET(Hz)\tEST(Hz)\tERR(mHz)\tSIGMA(mHz)\tREASON\tSPEED(Ms/s)\tSTATUS")
	fmt.Fprintln(w, "----\t----------\t-------\t--------\t----------\t------\t-----------\t------")

	for i, tc := range testCases {
		m := Meter.NewFreqMeter(Meter.DefaultMeterConfig())
		gen := NewToneGenerator(ToneConfig{
			Frequency:  tc.Frequency,
			Amplitude:  tc.Amplitude,
			DCOffset:   tc.DCOffset,
			NoisePct:   tc.NoisePct,
			SampleRate: sampleRate,
		}, int64(1000+i))

		// 1. 预热：填满测量窗口
		warm := int(windowSec * float64(sampleRate))
		total := 0
		start := time.Now()
		for total < warm {
			m.Ingest(gen.NextBlock(chunkSize))
			total += chunkSize
		}

		// 2. 滑动测量：每 0.25s 一次，模拟监控循环的 hop
		freqs := make([]float64, 0, hops+1)
		res := m.Estimate()
		freqs = append(freqs, res.Freq)
		for h := 0; h < hops; h++ {
			for j := 0; j < hopSamples; j += chunkSize {
				m.Ingest(gen.NextBlock(chunkSize))
				total += chunkSize
			}
			res = m.Estimate()
			freqs = append(freqs, res.Freq)
		}
		elapsed := time.Since(start)

		// 3. 统计与评分
		meanFreq := stat.Mean(freqs, nil)
		sigma := stat.StdDev(freqs, nil)
		speed := float64(total) / elapsed.Seconds() / 1e6

		status := "PASS"
		estCol, errCol, sigmaCol := "-", "-", "-"
		if res.Reason != tc.WantReason {
			status = "FAIL"
		}
		if tc.WantReason == Meter.ReasonOK {
			errHz := meanFreq - tc.Frequency
			if math.Abs(errHz) > tc.TolHz {
				status = "FAIL"
			}
			estCol = fmt.Sprintf("%.4f", meanFreq)
			errCol = fmt.Sprintf("%.3f", errHz*1000)
			sigmaCol = fmt.Sprintf("%.3f", sigma*1000)
		}

		fmt.Fprintf(w, "%s\t%.1f\t%s\t%s\t%s\t%s\t%.1f\t%s\n",
			tc.Name, tc.Frequency, estCol, errCol, sigmaCol, res.Reason, speed, status)
	}
	w.Flush()
}

// ============================================================================
// Main Entry
// ============================================================================

func main() {
	fmt.Println("Starting Frequency Meter Benchmark Suite...")
	fmt.Println("===========================================")

	RunBenchmark()
}
