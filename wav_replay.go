package scope

import (
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WavReplayer 从 WAV 文件按块读取采样，走与实时采集相同的处理路径
// 用于离线验证和回归测试
type WavReplayer struct {
	file       *os.File
	decoder    *wav.Decoder
	SampleRate int
	Channels   int

	buf   *audio.IntBuffer
	scale float32 // 整型 PCM 归一化到 [-1, 1) 的系数
	mono  []float32
}

// NewWavReplayer 打开回放文件并校验格式
func NewWavReplayer(filename string) (*WavReplayer, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open replay file: %v", err)
	}

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		f.Close()
		return nil, fmt.Errorf("invalid wav file: %s", filename)
	}

	return &WavReplayer{
		file:       f,
		decoder:    d,
		SampleRate: int(d.SampleRate),
		Channels:   int(d.NumChans),
		scale:      float32(int(1) << (uint(d.BitDepth) - 1)),
	}, nil
}

// ReadChunk 读取最多 frames 帧并归一化，多声道时只取第一声道 (Left)
// 文件读完时返回 io.EOF
func (r *WavReplayer) ReadChunk(frames int) ([]float32, error) {
	want := frames * r.Channels
	if r.buf == nil || len(r.buf.Data) != want {
		r.buf = &audio.IntBuffer{
			Format: &audio.Format{
				NumChannels: r.Channels,
				SampleRate:  r.SampleRate,
			},
			Data:           make([]int, want),
			SourceBitDepth: int(r.decoder.BitDepth),
		}
	}

	n, err := r.decoder.PCMBuffer(r.buf)
	if err != nil {
		return nil, fmt.Errorf("failed to read pcm data: %v", err)
	}
	if n == 0 {
		return nil, io.EOF
	}

	if cap(r.mono) < n/r.Channels+1 {
		r.mono = make([]float32, 0, n/r.Channels+1)
	}
	out := r.mono[:0]
	for i := 0; i < n; i += r.Channels {
		out = append(out, float32(r.buf.Data[i])/r.scale)
	}
	r.mono = out
	return out, nil
}

// Close 关闭回放文件
func (r *WavReplayer) Close() {
	if r.file != nil {
		r.file.Close()
		r.file = nil
	}
}
