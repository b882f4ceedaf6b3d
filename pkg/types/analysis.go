package types

// 决策类型
const (
	DecisionBuy  = "buy"
	DecisionHold = "hold"
	DecisionSell = "sell"
)

// TrendResult 趋势判定结果
type TrendResult struct {
	Status   string `json:"status"`   // 上涨趋势 / 下跌趋势 / 震荡
	Strength string `json:"strength"` // 强 / 中 / 弱
}

// PositionAdvice 仓位建议
type PositionAdvice struct {
	NoPosition  string `json:"no_position"`  // 空仓者建议
	HasPosition string `json:"has_position"` // 持仓者建议
}

// CoreConclusion 核心结论
type CoreConclusion struct {
	OneSentence     string         `json:"one_sentence"`
	SignalType      string         `json:"signal_type"`      // 买入信号 / 持有 / 卖出信号
	TimeSensitivity string         `json:"time_sensitivity"` // 本周内
	PositionAdvice  PositionAdvice `json:"position_advice"`
}

// TrendStatus 趋势状态块
type TrendStatus struct {
	MAAlignment string  `json:"ma_alignment"` // 多头排列 / 空头排列 / 均线混乱
	IsBullish   bool    `json:"is_bullish"`
	TrendScore  float64 `json:"trend_score"` // 0-100
}

// PricePosition 价格位置块
type PricePosition struct {
	CurrentPrice    float64 `json:"current_price"`
	MA5             float64 `json:"ma5"`
	MA10            float64 `json:"ma10"`
	MA20            float64 `json:"ma20"`
	BiasMA5         float64 `json:"bias_ma5"`    // MA5乖离率（百分比）
	BiasStatus      string  `json:"bias_status"` // 安全 / 警戒 / 危险
	SupportLevel    float64 `json:"support_level"`
	ResistanceLevel float64 `json:"resistance_level"`
}

// VolumeAnalysis 量能分析块
type VolumeAnalysis struct {
	VolumeRatio  float64 `json:"volume_ratio"`
	VolumeStatus string  `json:"volume_status"` // 明显放量 / 温和放量 / 明显缩量 / 成交正常
	TurnoverRate float64 `json:"turnover_rate"`
	VolumeMeaning string `json:"volume_meaning"`
}

// DataPerspective 数据透视
type DataPerspective struct {
	TrendStatus    TrendStatus    `json:"trend_status"`
	PricePosition  PricePosition  `json:"price_position"`
	VolumeAnalysis VolumeAnalysis `json:"volume_analysis"`
}

// SniperPoints 狙击点位（关键价位，带说明文字）
type SniperPoints struct {
	IdealBuy     string `json:"ideal_buy"`
	SecondaryBuy string `json:"secondary_buy"`
	StopLoss     string `json:"stop_loss"`
	TakeProfit   string `json:"take_profit"`
}

// PositionStrategy 仓位策略
type PositionStrategy struct {
	SuggestedPosition string `json:"suggested_position"`
	EntryPlan         string `json:"entry_plan"`
	RiskControl       string `json:"risk_control"`
}

// BattlePlan 作战计划
type BattlePlan struct {
	SniperPoints     SniperPoints     `json:"sniper_points"`
	PositionStrategy PositionStrategy `json:"position_strategy"`
	ActionChecklist  []string         `json:"action_checklist"`
}

// Intelligence 情报汇总，字段缺省表示无对应结论
type Intelligence struct {
	SentimentSummary  string   `json:"sentiment_summary,omitempty"`
	RiskAlerts        []string `json:"risk_alerts,omitempty"`
	PositiveCatalysts []string `json:"positive_catalysts,omitempty"`
}

// Dashboard 决策仪表盘
type Dashboard struct {
	Intelligence    Intelligence    `json:"intelligence"`
	CoreConclusion  CoreConclusion  `json:"core_conclusion"`
	DataPerspective DataPerspective `json:"data_perspective"`
	BattlePlan      BattlePlan      `json:"battle_plan"`
}

// TechnicalSummary 技术指标摘要
type TechnicalSummary struct {
	MA5          float64 `json:"ma5"`
	MA10         float64 `json:"ma10"`
	MA20         float64 `json:"ma20"`
	Trend        string  `json:"trend"`
	VolumeStatus string  `json:"volume_status"`
}

// RealtimeSummary 实时行情摘要
type RealtimeSummary struct {
	Price        float64 `json:"price"`
	ChangePct    float64 `json:"change_pct"`
	Volume       float64 `json:"volume"`
	TurnoverRate float64 `json:"turnover_rate"`
}

// TrendAnalysis 趋势信号明细
type TrendAnalysis struct {
	Status   string   `json:"status"`
	Strength string   `json:"strength"`
	Signals  []string `json:"signals"`
	Risks    []string `json:"risks"`
}

// AnalysisResult 综合分析结果
type AnalysisResult struct {
	Code string `json:"code"`
	Name string `json:"name"`

	SentimentScore  float64 `json:"sentiment_score"` // 0-100
	TrendPrediction string  `json:"trend_prediction"`
	OperationAdvice string  `json:"operation_advice"` // 买入 / 逢低买入 / 持有 / 观望 / 卖出
	DecisionType    string  `json:"decision_type"`    // buy / hold / sell
	ConfidenceLevel string  `json:"confidence_level"` // 高 / 中 / 低

	Dashboard Dashboard `json:"dashboard"`

	Technical     TechnicalSummary `json:"technical"`
	Realtime      RealtimeSummary  `json:"realtime"`
	TrendAnalysis TrendAnalysis    `json:"trend_analysis"`
}
