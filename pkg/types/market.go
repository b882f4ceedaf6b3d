package types

import "time"

// Quote 实时行情快照
// 每次采样都会产生一个新的Quote，生成后不再修改
type Quote struct {
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	ChangePct    float64 `json:"change_pct"`    // 当日涨跌幅（相对昨收，百分比）
	ChangeAmount float64 `json:"change_amount"` // 当日涨跌额
	High         float64 `json:"high"`
	Low          float64 `json:"low"`
	Open         float64 `json:"open"`
	Volume       float64 `json:"volume"`        // 成交量（手）
	Amount       float64 `json:"amount"`        // 成交额（元）
	TurnoverRate float64 `json:"turnover_rate"` // 换手率（百分比）
}

// KLine 日K线数据
type KLine struct {
	Date      string  `json:"date"`
	Open      float64 `json:"open"`
	Close     float64 `json:"close"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Volume    float64 `json:"volume"`
	Amount    float64 `json:"amount"`
	ChangePct float64 `json:"change_pct"` // 由开盘/收盘推算的当日涨跌幅
}

// WatchConfig 监控配置
type WatchConfig struct {
	Code     string  `json:"code"`     // 6位股票代码
	Rise     float64 `json:"rise"`     // 上涨阈值（百分比）
	Fall     float64 `json:"fall"`     // 下跌阈值（百分比）
	Interval int     `json:"interval"` // 检查间隔（秒）
}

// 告警类型
const (
	AlertRise = "rise"
	AlertFall = "fall"
	AlertInfo = "info"
)

// Alert 一条告警记录
type Alert struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"` // rise / fall / info
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Quote     Quote     `json:"quote"` // 触发告警时的行情快照
}

// MonitorState 监控器对外可见的状态快照
// 发布给订阅者时整体复制，订阅者不会观察到中间状态
type MonitorState struct {
	IsActive      bool         `json:"is_active"`
	Config        *WatchConfig `json:"config"`
	LastQuote     *Quote       `json:"last_quote"`
	LastCheckTime *time.Time   `json:"last_check_time"`
	Alerts        []Alert      `json:"alerts"`
}

// PriceDataPoint 价格数据点（监控采样历史使用）
type PriceDataPoint struct {
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}
