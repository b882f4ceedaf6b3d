package analyzer

import (
	"math"

	"stock-sentry/pkg/types"
)

// round2 四舍五入到2位小数，只在输出装配时使用，中间计算保持全精度
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// movingAverage 计算最近n根K线收盘价的算术平均
// 数据不足n根时使用全部可用数据
func movingAverage(klines []types.KLine, n int) float64 {
	if len(klines) == 0 {
		return 0
	}
	start := len(klines) - n
	if start < 0 {
		start = 0
	}
	window := klines[start:]

	sum := 0.0
	for _, k := range window {
		sum += k.Close
	}
	return sum / float64(len(window))
}

// analyzeTrend 根据最近3根K线收盘价判定趋势
// 严格递增为上涨趋势，严格递减为下跌趋势，其余为震荡
func analyzeTrend(klines []types.KLine) types.TrendResult {
	if len(klines) < 3 {
		return types.TrendResult{Status: "数据不足", Strength: "未知"}
	}

	recent := klines[len(klines)-3:]
	c0, c1, c2 := recent[0].Close, recent[1].Close, recent[2].Close

	status := "震荡"
	if c2 > c1 && c1 > c0 {
		status = "上涨趋势"
	} else if c2 < c1 && c1 < c0 {
		status = "下跌趋势"
	}

	totalChange := (c2 - c0) / c0 * 100

	strength := "弱"
	if math.Abs(totalChange) > 5 {
		strength = "强"
	} else if math.Abs(totalChange) > 2 {
		strength = "中"
	}

	return types.TrendResult{Status: status, Strength: strength}
}

// analyzeVolume 对比最新成交量与前4根K线均量，分类量能状态
func analyzeVolume(klines []types.KLine) string {
	if len(klines) < 6 {
		return "未知"
	}

	ratio := calculateVolumeRatio(klines)

	if ratio > 1.5 {
		return "明显放量"
	}
	if ratio > 1.2 {
		return "温和放量"
	}
	if ratio < 0.8 {
		return "明显缩量"
	}
	return "成交正常"
}

// calculateVolumeRatio 计算量比：最新成交量 / 前4根K线平均成交量
func calculateVolumeRatio(klines []types.KLine) float64 {
	if len(klines) < 6 {
		return 1.0
	}

	recent := klines[len(klines)-5:]
	avgVolume := 0.0
	for _, k := range recent[:4] {
		avgVolume += k.Volume
	}
	avgVolume /= 4

	return recent[4].Volume / avgVolume
}
