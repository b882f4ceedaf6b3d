package analyzer

import (
	"context"
	"math"

	"go.uber.org/zap"
	"stock-sentry/pkg/types"
)

// QuoteSource 实时行情数据源
type QuoteSource interface {
	RealtimeQuote(ctx context.Context, code string) (*types.Quote, error)
}

// HistorySource 历史K线数据源
type HistorySource interface {
	FetchKlines(ctx context.Context, code string, days int) ([]types.KLine, error)
}

// AdvisoryStore 分析结果持久化，可选
type AdvisoryStore interface {
	SaveAdvisory(result *types.AnalysisResult) error
}

// Engine 深度分析引擎
// 无内部状态，可以被多个调用方并发使用
type Engine struct {
	quotes  QuoteSource
	history HistorySource
	store   AdvisoryStore
	days    int
}

// NewEngine 创建分析引擎
// store可以为nil；days为历史K线天数，非正值时取30
func NewEngine(quotes QuoteSource, history HistorySource, store AdvisoryStore, days int) *Engine {
	if days <= 0 {
		days = 30
	}
	return &Engine{
		quotes:  quotes,
		history: history,
		store:   store,
		days:    days,
	}
}

// Analyze 综合分析一只股票
// 行情或历史数据不可用时返回nil，数据缺失是预期情况而非错误
func (e *Engine) Analyze(ctx context.Context, code string) *types.AnalysisResult {
	zap.L().Info("📊 开始深度分析", zap.String("code", code))

	quote, err := e.quotes.RealtimeQuote(ctx, code)
	if err != nil || quote == nil {
		zap.L().Warn("无法获取实时行情", zap.String("code", code), zap.Error(err))
		return nil
	}

	klines, err := e.history.FetchKlines(ctx, code, e.days)
	if err != nil || len(klines) == 0 {
		zap.L().Warn("无法获取历史K线", zap.String("code", code), zap.Error(err))
		return nil
	}

	result := Evaluate(quote, klines)
	if result == nil {
		return nil
	}
	result.Code = code

	zap.L().Info("✅ 分析完成",
		zap.String("code", code),
		zap.String("name", quote.Name),
		zap.Float64("sentiment_score", result.SentimentScore),
		zap.String("decision", result.DecisionType))

	if e.store != nil {
		snapshot := *result
		go func() {
			if err := e.store.SaveAdvisory(&snapshot); err != nil {
				zap.L().Warn("保存分析快照失败", zap.Error(err))
			}
		}()
	}

	return result
}

// Evaluate 纯函数分析管线
// 输入行情为nil或K线为空时返回nil；K线必须按日期升序且无重复
func Evaluate(quote *types.Quote, klines []types.KLine) *types.AnalysisResult {
	if quote == nil || len(klines) == 0 {
		return nil
	}

	// 技术指标
	ma5 := movingAverage(klines, 5)
	ma10 := movingAverage(klines, 10)
	ma20 := movingAverage(klines, 20)

	// 趋势与量能
	trend := analyzeTrend(klines)
	volumeStatus := analyzeVolume(klines)
	volumeRatio := calculateVolumeRatio(klines)

	// 信号与风险
	signals := generateBuySignals(trend, volumeStatus, quote, ma5, ma10)
	risks := generateRiskFactors(trend, volumeStatus, quote)

	// 乖离率与均线排列
	biasMA5 := (quote.Price - ma5) / ma5 * 100
	biasStatus := "危险"
	if math.Abs(biasMA5) < 3 {
		biasStatus = "安全"
	} else if math.Abs(biasMA5) < 5 {
		biasStatus = "警戒"
	}

	isBullish := quote.Price > ma5 && ma5 > ma10 && ma10 > ma20
	maAlignment := "均线混乱"
	if isBullish {
		maAlignment = "MA5>MA10>MA20 多头排列"
	} else if quote.Price < ma5 && ma5 < ma10 && ma10 < ma20 {
		maAlignment = "MA5<MA10<MA20 空头排列"
	}

	// 支撑位与压力位
	supportLevel := math.Min(ma5, math.Min(ma10, ma20))
	resistanceLevel := 0.0
	start := len(klines) - 10
	if start < 0 {
		start = 0
	}
	for _, k := range klines[start:] {
		if k.High > resistanceLevel {
			resistanceLevel = k.High
		}
	}

	// 仪表盘装配
	sniperPoints := generateSniperPoints(ma5, supportLevel, resistanceLevel)
	positionStrategy := generatePositionStrategy(signals, risks, biasMA5)
	actionChecklist := generateActionChecklist(signals, risks, sniperPoints)

	dashboard := types.Dashboard{
		Intelligence: types.Intelligence{
			SentimentSummary:  generateSentimentSummary(trend, signals, risks),
			RiskAlerts:        risks,
			PositiveCatalysts: signals,
		},
		CoreConclusion: types.CoreConclusion{
			OneSentence:     generateOneSentenceConclusion(trend, signals, risks),
			SignalType:      determineSignalType(signals, risks),
			TimeSensitivity: "本周内",
			PositionAdvice: types.PositionAdvice{
				NoPosition:  generateNoPositionAdvice(signals, risks),
				HasPosition: generateHasPositionAdvice(signals, risks, quote.ChangePct),
			},
		},
		DataPerspective: types.DataPerspective{
			TrendStatus: types.TrendStatus{
				MAAlignment: maAlignment,
				IsBullish:   isBullish,
				TrendScore:  calculateTrendScore(trend, isBullish, len(signals), len(risks)),
			},
			PricePosition: types.PricePosition{
				CurrentPrice:    quote.Price,
				MA5:             round2(ma5),
				MA10:            round2(ma10),
				MA20:            round2(ma20),
				BiasMA5:         round2(biasMA5),
				BiasStatus:      biasStatus,
				SupportLevel:    round2(supportLevel),
				ResistanceLevel: round2(resistanceLevel),
			},
			VolumeAnalysis: types.VolumeAnalysis{
				VolumeRatio:   round2(volumeRatio),
				VolumeStatus:  volumeStatus,
				TurnoverRate:  quote.TurnoverRate,
				VolumeMeaning: interpretVolumeStatus(volumeStatus, quote.ChangePct),
			},
		},
		BattlePlan: types.BattlePlan{
			SniperPoints:     sniperPoints,
			PositionStrategy: positionStrategy,
			ActionChecklist:  actionChecklist,
		},
	}

	return &types.AnalysisResult{
		Code:            quote.Code,
		Name:            quote.Name,
		SentimentScore:  calculateSentimentScore(signals, risks, trend),
		TrendPrediction: trend.Status,
		OperationAdvice: determineOperation(signals, risks),
		DecisionType:    determineDecisionType(signals, risks),
		ConfidenceLevel: calculateConfidence(signals, risks),
		Dashboard:       dashboard,
		Technical: types.TechnicalSummary{
			MA5:          round2(ma5),
			MA10:         round2(ma10),
			MA20:         round2(ma20),
			Trend:        trend.Status,
			VolumeStatus: volumeStatus,
		},
		Realtime: types.RealtimeSummary{
			Price:        quote.Price,
			ChangePct:    quote.ChangePct,
			Volume:       quote.Volume,
			TurnoverRate: quote.TurnoverRate,
		},
		TrendAnalysis: types.TrendAnalysis{
			Status:   trend.Status,
			Strength: trend.Strength,
			Signals:  signals,
			Risks:    risks,
		},
	}
}
