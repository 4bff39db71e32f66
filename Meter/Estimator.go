package Meter

// Reason 标记一次测量结果有效或不可用的原因
type Reason int

const (
	ReasonOK                Reason = iota // 测量有效
	ReasonInsufficientEdges               // 窗口内上升沿不足两个
	ReasonOutOfRange                      // 推导频率超出可测量范围
	ReasonNoSignal                        // 幅度带无效 (静噪)
)

func (r Reason) String() string {
	switch r {
	case ReasonOK:
		return "OK"
	case ReasonInsufficientEdges:
		return "INSUFFICIENT_EDGES"
	case ReasonOutOfRange:
		return "OUT_OF_RANGE"
	case ReasonNoSignal:
		return "NO_SIGNAL"
	}
	return "UNKNOWN"
}

// Result 是一次频率测量的完整输出
// Valid 为 false 时 Freq 恒为 0，Reason 给出原因
// RisingEdges/FallingEdges 是诊断计数，供显示和调试输出使用
type Result struct {
	Freq         float64
	Valid        bool
	Reason       Reason
	RisingEdges  int
	FallingEdges int
}

// EstimateFrequency 从边沿序列推导基频
// 只使用上升沿：第一个到最后一个上升沿的总时长除以间隔数
// 得到平均周期 (Mean over Span)，频率取其倒数。
// 下降沿不参与估算，只作为诊断计数返回
func EstimateFrequency(edges []Edge, minFreq, maxFreq float64) Result {
	res := Result{}

	var firstRise, lastRise float64
	for _, e := range edges {
		if e.Rising {
			if res.RisingEdges == 0 {
				firstRise = e.Time
			}
			lastRise = e.Time
			res.RisingEdges++
		} else {
			res.FallingEdges++
		}
	}

	if res.RisingEdges < 2 {
		res.Reason = ReasonInsufficientEdges
		return res
	}

	// 退化检查先于除法，杜绝 NaN/Inf 流出
	span := lastRise - firstRise
	if span <= 0 {
		res.Reason = ReasonOutOfRange
		return res
	}

	period := span / float64(res.RisingEdges-1)
	freq := 1.0 / period

	if freq < minFreq || freq > maxFreq {
		res.Reason = ReasonOutOfRange
		return res
	}

	res.Freq = freq
	res.Valid = true
	res.Reason = ReasonOK
	return res
}
