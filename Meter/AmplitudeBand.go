package Meter

import "gonum.org/v1/gonum/floats"

// Band 描述一个测量周期内信号的幅度区间和由此推导的迟滞带 (Hysteresis Band)
type Band struct {
	Min        float64 // 窗口内最小幅度
	Max        float64 // 窗口内最大幅度
	PeakToPeak float64 // 峰峰值 (Max - Min)
	Low        float64 // 迟滞带下沿
	High       float64 // 迟滞带上沿
	Valid      bool    // 峰峰值低于静噪门限时为 false
}

// MeasureBand 从窗口数据计算迟滞带
// 每个周期都从窗口重新统计，不携带任何历史状态 (没有 EMA 平滑)，
// 信号幅度突变后阈值在下一个周期立即到位
func MeasureBand(window []float64, hystFrac, minSwing float64) Band {
	if len(window) == 0 {
		return Band{}
	}

	max := floats.Max(window)
	min := floats.Min(window)
	p2p := max - min

	b := Band{Min: min, Max: max, PeakToPeak: p2p}

	// 静噪 (Squelch)：摆幅太小视为无信号，不产生阈值
	if p2p < minSwing {
		return b
	}

	// 中点取幅度区间的几何中心，迟滞宽度为峰峰值的 hystFrac
	// (上下各一份，死区总宽为 2*hystFrac 的峰峰值)
	center := min + p2p*0.5
	hysteresis := p2p * hystFrac

	b.Low = center - hysteresis
	b.High = center + hysteresis
	b.Valid = true
	return b
}
