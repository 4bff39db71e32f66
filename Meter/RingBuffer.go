package Meter

import "sync"

/*
滑动采样窗口 (Sliding Window)

写入端是音频回调，读取端是测量循环。
两端通过同一把互斥锁访问，保证快照永远是一个完整、
按时间顺序排列的窗口，不会读到半更新状态。
*/

// RingBuffer 维护最近一段时间的采样数据
type RingBuffer struct {
	mu     sync.Mutex
	buffer []float64 // 环形缓冲区
	head   int       // 下一个写入位置
	isFull bool      // 缓冲区是否已满
	total  int64     // 历史写入的采样总数，作为绝对时间基准
}

// NewRingBuffer 创建指定容量的缓冲区
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &RingBuffer{buffer: make([]float64, capacity)}
}

// Push 写入单个采样
// 永不拒绝数据：窗口已满时覆盖最老的采样，极端值原样进入窗口
func (rb *RingBuffer) Push(v float64) {
	rb.mu.Lock()
	rb.buffer[rb.head] = v
	rb.head = (rb.head + 1) % len(rb.buffer)
	if rb.head == 0 {
		rb.isFull = true
	}
	rb.total++
	rb.mu.Unlock()
}

// PushBlock 批量写入一个音频块 (采集回调的原始 float32 数据)
// 整块只加一次锁，避免在音频回调里反复竞争
func (rb *RingBuffer) PushBlock(samples []float32) {
	if len(samples) == 0 {
		return
	}
	rb.mu.Lock()
	for _, s := range samples {
		rb.buffer[rb.head] = float64(s)
		rb.head = (rb.head + 1) % len(rb.buffer)
		if rb.head == 0 {
			rb.isFull = true
		}
	}
	rb.total += int64(len(samples))
	rb.mu.Unlock()
}

// Snapshot 拷贝出按时间顺序排列的窗口内容
// 返回窗口数据和窗口第一个采样的绝对序号
// dst 的底层数组容量足够时会被复用，调用方持有返回的切片
func (rb *RingBuffer) Snapshot(dst []float64) ([]float64, int64) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	length := rb.head
	if rb.isFull {
		length = len(rb.buffer)
	}
	if cap(dst) < length {
		dst = make([]float64, length)
	}
	dst = dst[:length]

	if rb.isFull {
		// 从最老的采样 (head 位置) 开始拼接
		n := copy(dst, rb.buffer[rb.head:])
		copy(dst[n:], rb.buffer[:rb.head])
	} else {
		copy(dst, rb.buffer[:rb.head])
	}
	return dst, rb.total - int64(length)
}

// Len 返回当前窗口内的采样数
func (rb *RingBuffer) Len() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	if rb.isFull {
		return len(rb.buffer)
	}
	return rb.head
}

// Cap 返回窗口容量
func (rb *RingBuffer) Cap() int {
	return len(rb.buffer)
}

// Total 返回历史写入的采样总数
func (rb *RingBuffer) Total() int64 {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.total
}
