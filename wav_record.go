package scope

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"go.uber.org/zap"
)

// WavRecorder 把采集到的音频原样落盘 (16-bit 单声道 PCM)，供事后回放分析
// 写入失败只停用录音，不中断测量
type WavRecorder struct {
	file    *os.File
	encoder *wav.Encoder
	buf     *audio.IntBuffer
	log     *zap.SugaredLogger
	failed  bool
}

// NewWavRecorder 创建录音文件
func NewWavRecorder(filename string, sampleRate int, log *zap.SugaredLogger) (*WavRecorder, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create wav file: %v", err)
	}

	return &WavRecorder{
		file:    f,
		encoder: wav.NewEncoder(f, sampleRate, 16, 1, 1),
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
			SourceBitDepth: 16,
		},
		log: log,
	}, nil
}

// WriteSamples 写入一块 float32 采样，量化为 16-bit 并限幅
func (w *WavRecorder) WriteSamples(samples []float32) {
	if w.failed || len(samples) == 0 {
		return
	}

	if cap(w.buf.Data) < len(samples) {
		w.buf.Data = make([]int, len(samples))
	}
	w.buf.Data = w.buf.Data[:len(samples)]
	for i, s := range samples {
		v := int(s * 32767.0)
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		w.buf.Data[i] = v
	}

	if err := w.encoder.Write(w.buf); err != nil {
		w.log.Errorf("Recording disabled: %v", err)
		w.failed = true
	}
}

// Close 补写文件头并关闭文件
func (w *WavRecorder) Close() {
	if w.encoder != nil {
		if err := w.encoder.Close(); err != nil {
			w.log.Errorf("Failed to finalize wav file: %v", err)
		}
		w.encoder = nil
	}
	if w.file != nil {
		w.file.Close()
		w.file = nil
	}
}
