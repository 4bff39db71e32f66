package scope

import (
	"bufio"
	"fmt"
	"os"

	"github.com/paradox70/Precision-Audio-Scope/Meter"
)

// SignalDebugger 定义测量诊断输出接口
// 监控循环只依赖这个接口，不依赖具体的文件操作
type SignalDebugger interface {
	Record(elapsedSec float64, band Meter.Band, res Meter.Result)
	Close()
}

// CsvFileDebugger 是 SignalDebugger 的具体实现
// 每个测量周期写一行：幅度带、边沿计数和测量结果
type CsvFileDebugger struct {
	file   *os.File
	writer *bufio.Writer
}

// NewCsvFileDebugger 创建一个新的 CSV 调试器
func NewCsvFileDebugger(filename string) (*CsvFileDebugger, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, err
	}

	w := bufio.NewWriter(f)
	// 写入表头
	if _, err := w.WriteString("Elapsed,BandMin,BandMax,BandLow,BandHigh,BandValid,RisingEdges,FallingEdges,Freq,Reason\n"); err != nil {
		f.Close()
		return nil, err
	}

	return &CsvFileDebugger{
		file:   f,
		writer: w,
	}, nil
}

// Record 记录单个测量周期
func (d *CsvFileDebugger) Record(elapsedSec float64, band Meter.Band, res Meter.Result) {
	validVal := 0
	if band.Valid {
		validVal = 1
	}
	fmt.Fprintf(d.writer, "%.3f,%g,%g,%g,%g,%d,%d,%d,%.6f,%s\n",
		elapsedSec, band.Min, band.Max, band.Low, band.High, validVal,
		res.RisingEdges, res.FallingEdges, res.Freq, res.Reason)
}

// Close 关闭文件并刷新缓冲区
func (d *CsvFileDebugger) Close() {
	if d.writer != nil {
		d.writer.Flush()
	}
	if d.file != nil {
		d.file.Close()
	}
}

// NoOpDebugger 是一个空实现，不记录数据时使用
// 这样监控循环里不用写一堆 if debugger != nil 的判断
type NoOpDebugger struct{}

func (d *NoOpDebugger) Record(elapsedSec float64, band Meter.Band, res Meter.Result) {}
func (d *NoOpDebugger) Close()                                                       {}
