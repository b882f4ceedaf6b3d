package analyzer

import (
	"fmt"
	"math"
	"strings"

	"stock-sentry/pkg/types"
)

// generateSniperPoints 生成狙击点位
// 理想买点=支撑位上浮1%，止损=支撑位下方3%，目标位=压力位下方2%
func generateSniperPoints(ma5, supportLevel, resistanceLevel float64) types.SniperPoints {
	return types.SniperPoints{
		IdealBuy:     fmt.Sprintf("%.2f (支撑位上方)", supportLevel*1.01),
		SecondaryBuy: fmt.Sprintf("%.2f (MA5附近)", ma5),
		StopLoss:     fmt.Sprintf("%.2f (跌破支撑3%%)", supportLevel*0.97),
		TakeProfit:   fmt.Sprintf("%.2f (接近压力位)", resistanceLevel*0.98),
	}
}

// generatePositionStrategy 生成仓位策略
func generatePositionStrategy(signals, risks []string, biasMA5 float64) types.PositionStrategy {
	signalCount := len(signals)
	riskCount := len(risks)

	if signalCount > riskCount && math.Abs(biasMA5) < 3 {
		return types.PositionStrategy{
			SuggestedPosition: "30-50%",
			EntryPlan:         "分批建仓，首次30%，回调至支撑位加仓",
			RiskControl:       "跌破止损位坚决止损，盈利5%以上设置移动止损",
		}
	}
	if riskCount > signalCount {
		return types.PositionStrategy{
			SuggestedPosition: "0-20%",
			EntryPlan:         "轻仓试探或观望",
			RiskControl:       "严格止损，快进快出",
		}
	}
	return types.PositionStrategy{
		SuggestedPosition: "20-30%",
		EntryPlan:         "小仓位试探",
		RiskControl:       "控制仓位，设置止损",
	}
}

// generateActionChecklist 生成行动检查清单
func generateActionChecklist(signals, risks []string, sniperPoints types.SniperPoints) []string {
	checklist := make([]string, 0, 6)

	checklist = append(checklist, fmt.Sprintf("确认买入点位: %s", sniperPoints.IdealBuy))
	checklist = append(checklist, fmt.Sprintf("设置止损位: %s", sniperPoints.StopLoss))

	for _, s := range signals {
		if strings.Contains(s, "上涨") {
			checklist = append(checklist, "关注是否突破压力位")
			break
		}
	}
	for _, r := range risks {
		if strings.Contains(r, "跌幅") {
			checklist = append(checklist, "注意短期回调风险")
			break
		}
	}

	checklist = append(checklist, "控制仓位不超过建议上限")
	checklist = append(checklist, "设置价格提醒")

	return checklist
}

// generateSentimentSummary 生成舆情总结
func generateSentimentSummary(trend types.TrendResult, signals, risks []string) string {
	signalCount := len(signals)
	riskCount := len(risks)

	if signalCount > riskCount && trend.Status == "上涨趋势" {
		return "技术面偏多，市场情绪积极"
	}
	if riskCount > signalCount && trend.Status == "下跌趋势" {
		return "技术面偏空，市场情绪谨慎"
	}
	return "市场情绪中性，观望氛围较浓"
}

// generateOneSentenceConclusion 生成一句话结论
func generateOneSentenceConclusion(trend types.TrendResult, signals, risks []string) string {
	signalCount := len(signals)
	riskCount := len(risks)

	if signalCount >= 3 && riskCount <= 1 {
		return "技术面多头信号明确，可考虑分批建仓"
	}
	if riskCount >= 3 {
		return "风险因素较多，建议暂时观望或减仓"
	}
	if trend.Status == "上涨趋势" {
		return "趋势向好但信号不够充分，可小仓位试探"
	}
	return "技术面中性，建议等待更明确信号"
}

// generateNoPositionAdvice 空仓者建议
func generateNoPositionAdvice(signals, risks []string) string {
	signalCount := len(signals)
	riskCount := len(risks)

	if signalCount >= 3 && riskCount <= 1 {
		return "可考虑分批建仓，首次30%试探"
	}
	if signalCount > riskCount {
		return "可小仓位试探，控制在20%以内"
	}
	return "暂时观望，等待更好时机"
}

// generateHasPositionAdvice 持仓者建议
func generateHasPositionAdvice(signals, risks []string, changePct float64) string {
	if len(risks) >= 3 {
		return "考虑减仓或止盈，控制风险"
	}

	if changePct > 5 {
		for _, r := range risks {
			if strings.Contains(r, "涨幅过大") {
				return "涨幅较大，建议部分止盈"
			}
		}
	}

	if len(signals) > len(risks) {
		return "继续持有，设置移动止损"
	}
	return "维持现有仓位，观察后续走势"
}

// interpretVolumeStatus 解读量能状态
func interpretVolumeStatus(volumeStatus string, changePct float64) string {
	expanding := strings.Contains(volumeStatus, "放量")
	contracting := strings.Contains(volumeStatus, "缩量")

	switch {
	case expanding && changePct > 0:
		return "放量上涨，资金积极介入，买盘强劲"
	case expanding && changePct < 0:
		return "放量下跌，抛压较重，需警惕"
	case contracting && changePct > 0:
		return "缩量上涨，上涨动力不足或惜售"
	case contracting && changePct < 0:
		return "缩量下跌，下跌动能减弱"
	}
	return "成交正常，无明显异常信号"
}
