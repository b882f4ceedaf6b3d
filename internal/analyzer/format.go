package analyzer

import (
	"fmt"
	"strings"

	"stock-sentry/pkg/types"
)

// FormatResult 将分析结果渲染为终端文本报告
func FormatResult(r *types.AnalysisResult) string {
	if r == nil {
		return "暂无分析数据"
	}

	var b strings.Builder
	d := r.Dashboard

	b.WriteString("═══════════════════════════════════════\n")
	fmt.Fprintf(&b, "📊 %s (%s) 深度分析报告\n", r.Name, r.Code)
	b.WriteString("═══════════════════════════════════════\n\n")

	// 核心结论
	b.WriteString("【核心结论】\n")
	fmt.Fprintf(&b, "  %s\n", d.CoreConclusion.OneSentence)
	fmt.Fprintf(&b, "  信号类型: %s（时效: %s）\n", d.CoreConclusion.SignalType, d.CoreConclusion.TimeSensitivity)
	fmt.Fprintf(&b, "  空仓者: %s\n", d.CoreConclusion.PositionAdvice.NoPosition)
	fmt.Fprintf(&b, "  持仓者: %s\n\n", d.CoreConclusion.PositionAdvice.HasPosition)

	// 评分与决策
	b.WriteString("【评分与决策】\n")
	fmt.Fprintf(&b, "  市场情绪: %.0f/100\n", r.SentimentScore)
	fmt.Fprintf(&b, "  趋势评分: %.0f/100\n", d.DataPerspective.TrendStatus.TrendScore)
	fmt.Fprintf(&b, "  趋势预判: %s\n", r.TrendPrediction)
	fmt.Fprintf(&b, "  操作建议: %s（置信度: %s）\n\n", r.OperationAdvice, r.ConfidenceLevel)

	// 数据透视
	b.WriteString("【数据透视】\n")
	fmt.Fprintf(&b, "  现价: %.2f  今日涨跌: %+.2f%%\n", r.Realtime.Price, r.Realtime.ChangePct)
	fmt.Fprintf(&b, "  均线: MA5=%.2f  MA10=%.2f  MA20=%.2f\n", r.Technical.MA5, r.Technical.MA10, r.Technical.MA20)
	fmt.Fprintf(&b, "  均线排列: %s\n", d.DataPerspective.TrendStatus.MAAlignment)
	fmt.Fprintf(&b, "  MA5乖离率: %.2f%%（%s）\n",
		d.DataPerspective.PricePosition.BiasMA5, d.DataPerspective.PricePosition.BiasStatus)
	fmt.Fprintf(&b, "  支撑位: %.2f  压力位: %.2f\n",
		d.DataPerspective.PricePosition.SupportLevel, d.DataPerspective.PricePosition.ResistanceLevel)
	fmt.Fprintf(&b, "  量比: %.2f（%s）换手率: %.2f%%\n",
		d.DataPerspective.VolumeAnalysis.VolumeRatio,
		d.DataPerspective.VolumeAnalysis.VolumeStatus,
		d.DataPerspective.VolumeAnalysis.TurnoverRate)
	fmt.Fprintf(&b, "  量能解读: %s\n\n", d.DataPerspective.VolumeAnalysis.VolumeMeaning)

	// 信号与风险
	if len(r.TrendAnalysis.Signals) > 0 {
		b.WriteString("【买入信号】\n")
		for _, s := range r.TrendAnalysis.Signals {
			fmt.Fprintf(&b, "  ✓ %s\n", s)
		}
		b.WriteString("\n")
	}
	if len(r.TrendAnalysis.Risks) > 0 {
		b.WriteString("【风险提示】\n")
		for _, s := range r.TrendAnalysis.Risks {
			fmt.Fprintf(&b, "  ⚠ %s\n", s)
		}
		b.WriteString("\n")
	}

	// 作战计划
	b.WriteString("【作战计划】\n")
	fmt.Fprintf(&b, "  理想买点: %s\n", d.BattlePlan.SniperPoints.IdealBuy)
	fmt.Fprintf(&b, "  次级买点: %s\n", d.BattlePlan.SniperPoints.SecondaryBuy)
	fmt.Fprintf(&b, "  止损价位: %s\n", d.BattlePlan.SniperPoints.StopLoss)
	fmt.Fprintf(&b, "  止盈参考: %s\n", d.BattlePlan.SniperPoints.TakeProfit)
	fmt.Fprintf(&b, "  建议仓位: %s\n", d.BattlePlan.PositionStrategy.SuggestedPosition)
	fmt.Fprintf(&b, "  进场计划: %s\n", d.BattlePlan.PositionStrategy.EntryPlan)
	fmt.Fprintf(&b, "  风险控制: %s\n", d.BattlePlan.PositionStrategy.RiskControl)
	if len(d.BattlePlan.ActionChecklist) > 0 {
		b.WriteString("  行动清单:\n")
		for i, item := range d.BattlePlan.ActionChecklist {
			fmt.Fprintf(&b, "    %d. %s\n", i+1, item)
		}
	}
	b.WriteString("\n═══════════════════════════════════════\n")

	return b.String()
}
