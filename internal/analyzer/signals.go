package analyzer

import (
	"math"
	"strings"

	"stock-sentry/pkg/types"
)

// generateBuySignals 生成买入信号列表
// 各项检查相互独立，可同时成立
func generateBuySignals(trend types.TrendResult, volumeStatus string, quote *types.Quote, ma5, ma10 float64) []string {
	signals := make([]string, 0, 5)

	if trend.Status == "上涨趋势" {
		signals = append(signals, "价格处于上涨趋势")
	}

	if strings.Contains(volumeStatus, "放量") {
		signals = append(signals, "成交量配合良好")
	}

	if quote.Price > ma5 && ma5 > ma10 {
		signals = append(signals, "均线呈多头排列")
	}

	if quote.ChangePct > 0 {
		signals = append(signals, "当日价格上涨")
	}

	if quote.TurnoverRate > 3 && quote.TurnoverRate < 15 {
		signals = append(signals, "换手率适中")
	}

	return signals
}

// generateRiskFactors 生成风险因素列表
func generateRiskFactors(trend types.TrendResult, volumeStatus string, quote *types.Quote) []string {
	risks := make([]string, 0, 5)

	if trend.Status == "下跌趋势" {
		risks = append(risks, "价格处于下跌趋势")
	}

	if strings.Contains(volumeStatus, "缩量") && quote.ChangePct < 0 {
		risks = append(risks, "缩量下跌，买盘不足")
	}

	if quote.ChangePct < -5 {
		risks = append(risks, "当日跌幅较大")
	}

	if quote.TurnoverRate > 20 {
		risks = append(risks, "换手率过高，波动较大")
	}

	if quote.ChangePct > 8 {
		risks = append(risks, "短期涨幅过大，注意回调风险")
	}

	return risks
}

// calculateSentimentScore 计算情绪评分，限制在[0,100]
// 基础分50，信号+8/条，风险-8/条，趋势按强中弱±15/8/3
func calculateSentimentScore(signals, risks []string, trend types.TrendResult) float64 {
	score := 50.0

	score += float64(len(signals)) * 8
	score -= float64(len(risks)) * 8

	adjustment := trendAdjustment(trend, 15, 8, 3)
	score += adjustment

	return clampScore(score)
}

// calculateTrendScore 计算趋势评分，仅用于仪表盘展示
// 趋势±20/10/5，多头排列+15，信号+5/条，风险-5/条
func calculateTrendScore(trend types.TrendResult, isBullish bool, signalCount, riskCount int) float64 {
	score := 50.0

	score += trendAdjustment(trend, 20, 10, 5)

	if isBullish {
		score += 15
	}

	score += float64(signalCount) * 5
	score -= float64(riskCount) * 5

	return clampScore(score)
}

// trendAdjustment 按趋势方向和强度返回调整值，上涨为正，下跌为负
func trendAdjustment(trend types.TrendResult, strong, medium, weak float64) float64 {
	var magnitude float64
	switch trend.Strength {
	case "强":
		magnitude = strong
	case "中":
		magnitude = medium
	default:
		magnitude = weak
	}

	switch trend.Status {
	case "上涨趋势":
		return magnitude
	case "下跌趋势":
		return -magnitude
	}
	return 0
}

func clampScore(score float64) float64 {
	return math.Max(0, math.Min(100, score))
}

// determineOperation 确定操作建议
func determineOperation(signals, risks []string) string {
	signalCount := len(signals)
	riskCount := len(risks)

	switch {
	case signalCount >= 4 && riskCount <= 1:
		return "买入"
	case signalCount >= 3 && riskCount <= 1:
		return "逢低买入"
	case riskCount >= 3:
		return "卖出"
	case riskCount >= 2 && signalCount <= 1:
		return "观望"
	}
	return "持有"
}

// determineDecisionType 确定决策类型
func determineDecisionType(signals, risks []string) string {
	if len(signals) >= 3 && len(risks) <= 1 {
		return types.DecisionBuy
	}
	if len(risks) >= 3 {
		return types.DecisionSell
	}
	return types.DecisionHold
}

// determineSignalType 确定仪表盘信号类型
func determineSignalType(signals, risks []string) string {
	if len(signals) >= 3 && len(risks) <= 1 {
		return "买入信号"
	}
	if len(risks) >= 3 {
		return "卖出信号"
	}
	return "持有"
}

// calculateConfidence 计算置信度
func calculateConfidence(signals, risks []string) string {
	total := len(signals) + len(risks)
	diff := len(signals) - len(risks)
	if diff < 0 {
		diff = -diff
	}

	if total >= 5 && diff >= 3 {
		return "高"
	}
	if total >= 3 && diff >= 2 {
		return "中"
	}
	return "低"
}
