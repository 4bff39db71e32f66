package Meter

/*
迟滞边沿检测 (Schmitt Trigger)

检测器只有两个稳定状态：迟滞带下方和上方。
从下方状态出发，只有采样达到上沿才算一次上升沿；
从上方状态出发，只有采样落到下沿才算一次下降沿。
两个阈值之间的死区 (Dead Band) 内不发生任何切换，
所以小幅噪声不会产生抖动边沿。
*/

// Edge 表示一次穿越迟滞带的边沿事件
type Edge struct {
	Time   float64 // 事件时刻 (秒)，含亚采样插值 (Sub-sample Interpolation)
	Rising bool    // true: 上升沿, false: 下降沿
}

// DetectEdges 扫描窗口，按时间顺序返回所有边沿事件
// start 是窗口第一个采样的绝对序号，rate 为采样率 (Hz)
// dst 的底层数组会被复用；检测器不跨周期保留状态，
// 每次扫描都从窗口第一个采样重新推导初始状态
func DetectEdges(window []float64, start int64, rate float64, band Band, dst []Edge) []Edge {
	dst = dst[:0]
	if !band.Valid || len(window) < 2 || rate <= 0 {
		return dst
	}

	// 初始状态由第一个采样决定，窗口开头不产生边沿：
	// 恰好等于阈值的采样视为已经进入该侧状态
	above := initialState(window[0], band)

	for i := 1; i < len(window); i++ {
		v := window[i]
		if !above && v >= band.High {
			dst = append(dst, Edge{
				Time:   crossTime(window[i-1], v, band.High, start+int64(i-1), rate),
				Rising: true,
			})
			above = true
		} else if above && v <= band.Low {
			dst = append(dst, Edge{
				Time:   crossTime(window[i-1], v, band.Low, start+int64(i-1), rate),
				Rising: false,
			})
			above = false
		}
	}
	return dst
}

// initialState 根据窗口第一个采样推导起始状态 (true = 上方)
// 死区内的采样按离哪个阈值近算哪一侧，正中视为下方
func initialState(v float64, band Band) bool {
	if v >= band.High {
		return true
	}
	if v <= band.Low {
		return false
	}
	center := (band.High + band.Low) * 0.5
	return v > center
}

// crossTime 对阈值穿越点做亚采样线性插值
// 取 (t1,y1)-(t2,y2) 两采样连线与水平线 y=threshold 的交点时刻，
// t2-t1 即一个采样间隔 1/rate
func crossTime(y1, y2, threshold float64, index int64, rate float64) float64 {
	t1 := float64(index) / rate
	dy := y2 - y1
	if dy == 0 {
		// 状态机保证穿越时两采样分别位于阈值两侧，dy 不会为零，
		// 这里只是挡住除零
		return t1
	}
	return t1 + (threshold-y1)/dy/rate
}
