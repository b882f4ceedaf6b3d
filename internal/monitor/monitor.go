package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"stock-sentry/internal/notifier"
	"stock-sentry/pkg/types"
)

// 告警历史上限，超出后丢弃最旧的记录
const maxAlertHistory = 50

// QuoteSource 行情数据源
type QuoteSource interface {
	RealtimeQuote(ctx context.Context, code string) (*types.Quote, error)
}

// SampleRecorder 采样记录器，每次成功采样后写入
type SampleRecorder interface {
	Store(code string, price float64, timestamp time.Time)
}

// AlertStore 告警持久化，可选
type AlertStore interface {
	SaveAlert(alert *types.Alert) error
	OpenWatchSession(config types.WatchConfig) (uint, error)
	CloseWatchSession(sessionID uint, alertCount int) error
}

// StartResult 启动结果
type StartResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Monitor 股票价格监控器
// 同一时刻只监控一只股票；Start/Stop/采样由互斥锁串行化，
// 状态以值拷贝发布给订阅者，回调内不要再调用Monitor方法
type Monitor struct {
	quotes   QuoteSource
	notifier notifier.Interface
	recorder SampleRecorder
	store    AlertStore

	mutex     sync.Mutex
	state     types.MonitorState
	gen       int // 监控代数，停止后递增，用于丢弃过期采样
	cancel    context.CancelFunc
	sessionID uint

	subMutex    sync.Mutex
	subscribers map[int]func(types.MonitorState)
	nextSubID   int
}

// New 创建监控器
// recorder和store可以为nil，对应功能自动关闭
func New(quotes QuoteSource, notify notifier.Interface, recorder SampleRecorder, store AlertStore) *Monitor {
	return &Monitor{
		quotes:      quotes,
		notifier:    notify,
		recorder:    recorder,
		store:       store,
		subscribers: make(map[int]func(types.MonitorState)),
	}
}

// Start 启动监控
// 监控已在运行或股票代码无法取到行情时启动失败，状态不变
func (m *Monitor) Start(config types.WatchConfig) *StartResult {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.state.IsActive {
		return &StartResult{
			Success: false,
			Message: fmt.Sprintf("监控已在运行中，股票: %s", m.state.Config.Code),
		}
	}

	if config.Interval <= 0 {
		return &StartResult{
			Success: false,
			Message: fmt.Sprintf("检查间隔必须大于0秒: %d", config.Interval),
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	// 验证股票代码
	quote, err := m.quotes.RealtimeQuote(ctx, config.Code)
	if err != nil || quote == nil {
		cancel()
		return &StartResult{
			Success: false,
			Message: fmt.Sprintf("无法获取股票 %s 的数据，请检查代码是否正确", config.Code),
		}
	}

	cfg := config
	m.state = types.MonitorState{
		IsActive: true,
		Config:   &cfg,
		Alerts:   make([]types.Alert, 0, maxAlertHistory),
	}
	m.cancel = cancel
	m.gen++
	gen := m.gen

	if m.store != nil {
		if id, err := m.store.OpenWatchSession(config); err != nil {
			zap.L().Warn("记录监控会话失败", zap.Error(err))
		} else {
			m.sessionID = id
		}
	}

	zap.L().Info("🚀 启动股票监控",
		zap.String("code", config.Code),
		zap.Float64("rise", config.Rise),
		zap.Float64("fall", config.Fall),
		zap.Int("interval", config.Interval))

	// 立即执行一次检查
	m.checkPriceLocked(ctx, gen)

	// 启动定时检查
	go m.runTicker(ctx, gen, time.Duration(config.Interval)*time.Second)

	m.publishLocked()

	return &StartResult{
		Success: true,
		Message: fmt.Sprintf("✓ 监控已启动：%s\n  - 上涨阈值: %g%%\n  - 下跌阈值: %g%%\n  - 检查间隔: %d秒",
			config.Code, config.Rise, config.Fall, config.Interval),
	}
}

// Stop 停止监控
// 幂等操作；保留最后行情和告警历史供事后查看
func (m *Monitor) Stop() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if !m.state.IsActive {
		return
	}

	m.cancel()
	m.cancel = nil
	m.gen++
	m.state.IsActive = false
	m.state.Config = nil

	if m.store != nil && m.sessionID != 0 {
		sessionID := m.sessionID
		alertCount := len(m.state.Alerts)
		m.sessionID = 0
		go func() {
			if err := m.store.CloseWatchSession(sessionID, alertCount); err != nil {
				zap.L().Warn("关闭监控会话失败", zap.Error(err))
			}
		}()
	}

	zap.L().Info("📴 股票监控已停止")
	m.publishLocked()
}

// runTicker 定时采样循环，同一代数内每个tick串行执行
func (m *Monitor) runTicker(ctx context.Context, gen int, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.checkPrice(ctx, gen)
		}
	}
}

// checkPrice 单次采样入口
func (m *Monitor) checkPrice(ctx context.Context, gen int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.checkPriceLocked(ctx, gen)
}

// checkPriceLocked 采样并评估阈值，调用方必须持有m.mutex
func (m *Monitor) checkPriceLocked(ctx context.Context, gen int) {
	if !m.state.IsActive || m.gen != gen || m.state.Config == nil {
		return
	}
	config := *m.state.Config

	// 行情请求期间释放锁，避免阻塞Stop
	m.mutex.Unlock()
	quote, err := m.quotes.RealtimeQuote(ctx, config.Code)
	m.mutex.Lock()

	if err != nil || quote == nil {
		zap.L().Warn("监控检查失败，跳过本次采样",
			zap.String("code", config.Code),
			zap.Error(err))
		return
	}

	// 请求期间监控可能已停止或重启，丢弃过期采样
	if !m.state.IsActive || m.gen != gen {
		return
	}

	lastQuote := m.state.LastQuote
	now := time.Now()
	m.state.LastQuote = quote
	m.state.LastCheckTime = &now

	if m.recorder != nil {
		m.recorder.Store(quote.Code, quote.Price, now)
	}

	if lastQuote == nil {
		// 第一次获取价格，记录初始状态
		message := fmt.Sprintf("监控已启动，初始价格 %.2f 元", quote.Price)
		m.addAlertLocked(types.AlertInfo, message, quote)
		m.publishLocked()
		return
	}

	changePct := (quote.Price - lastQuote.Price) / lastQuote.Price * 100
	dayChangePct := quote.ChangePct

	// 区间涨幅达到阈值
	if changePct >= config.Rise {
		message := fmt.Sprintf("区间涨 %.2f%%，今日涨 %+.2f%%", changePct, dayChangePct)
		m.addAlertLocked(types.AlertRise, message, quote)
	}

	// 区间跌幅达到阈值
	if changePct <= -config.Fall {
		direction := "涨"
		if dayChangePct < 0 {
			direction = "跌"
		}
		message := fmt.Sprintf("区间跌 %.2f%%，今日%s %.2f%%", abs(changePct), direction, abs(dayChangePct))
		m.addAlertLocked(types.AlertFall, message, quote)
	}

	// 当日涨幅达到阈值且区间变化未触发告警
	if dayChangePct >= config.Rise && changePct < config.Rise {
		message := fmt.Sprintf("区间涨 %+.2f%%，今日涨 %.2f%%", changePct, dayChangePct)
		m.addAlertLocked(types.AlertRise, message, quote)
	}

	if dayChangePct <= -config.Fall && changePct > -config.Fall {
		message := fmt.Sprintf("区间跌 %+.2f%%，今日跌 %.2f%%", changePct, abs(dayChangePct))
		m.addAlertLocked(types.AlertFall, message, quote)
	}

	m.publishLocked()
}

// addAlertLocked 追加告警并分发，调用方必须持有m.mutex
func (m *Monitor) addAlertLocked(alertType, message string, quote *types.Quote) {
	alert := types.Alert{
		ID:        uuid.NewString(),
		Type:      alertType,
		Message:   message,
		Timestamp: time.Now(),
		Quote:     *quote,
	}

	m.state.Alerts = append(m.state.Alerts, alert)
	// 只保留最近50条告警
	if len(m.state.Alerts) > maxAlertHistory {
		m.state.Alerts = m.state.Alerts[len(m.state.Alerts)-maxAlertHistory:]
	}

	// 通知和持久化尽力而为，失败不影响监控
	notifyAlert := alert
	go func() {
		if m.notifier != nil {
			if err := m.notifier.SendAlert(&notifyAlert); err != nil {
				zap.L().Debug("通知发送失败", zap.Error(err))
			}
		}
		if m.store != nil {
			if err := m.store.SaveAlert(&notifyAlert); err != nil {
				zap.L().Warn("保存告警记录失败", zap.Error(err))
			}
		}
	}()

	m.publishLocked()
}

// GetState 获取当前状态快照
func (m *Monitor) GetState() types.MonitorState {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.snapshotLocked()
}

// snapshotLocked 生成状态的防御性拷贝，调用方必须持有m.mutex
func (m *Monitor) snapshotLocked() types.MonitorState {
	snapshot := types.MonitorState{
		IsActive: m.state.IsActive,
	}
	if m.state.Config != nil {
		cfg := *m.state.Config
		snapshot.Config = &cfg
	}
	if m.state.LastQuote != nil {
		quote := *m.state.LastQuote
		snapshot.LastQuote = &quote
	}
	if m.state.LastCheckTime != nil {
		t := *m.state.LastCheckTime
		snapshot.LastCheckTime = &t
	}
	snapshot.Alerts = make([]types.Alert, len(m.state.Alerts))
	copy(snapshot.Alerts, m.state.Alerts)
	return snapshot
}

// GetRecentAlerts 获取最近的告警，新的在前
func (m *Monitor) GetRecentAlerts(limit int) []types.Alert {
	if limit <= 0 {
		limit = 5
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	alerts := m.state.Alerts
	if len(alerts) > limit {
		alerts = alerts[len(alerts)-limit:]
	}

	result := make([]types.Alert, 0, len(alerts))
	for i := len(alerts) - 1; i >= 0; i-- {
		result = append(result, alerts[i])
	}
	return result
}

// ClearAlerts 清空告警历史
func (m *Monitor) ClearAlerts() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.state.Alerts = m.state.Alerts[:0]
	m.publishLocked()
}

// Subscribe 订阅状态变化
// 注册时立即回调一次当前状态，返回取消订阅函数
func (m *Monitor) Subscribe(fn func(types.MonitorState)) func() {
	m.subMutex.Lock()
	m.nextSubID++
	id := m.nextSubID
	m.subscribers[id] = fn
	m.subMutex.Unlock()

	fn(m.GetState())

	return func() {
		m.subMutex.Lock()
		delete(m.subscribers, id)
		m.subMutex.Unlock()
	}
}

// publishLocked 向所有订阅者推送状态快照，调用方必须持有m.mutex
func (m *Monitor) publishLocked() {
	snapshot := m.snapshotLocked()

	m.subMutex.Lock()
	defer m.subMutex.Unlock()
	for _, fn := range m.subscribers {
		fn(snapshot)
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
