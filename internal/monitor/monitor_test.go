package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"stock-sentry/pkg/types"
)

// fakeQuotes 可控的行情数据源
type fakeQuotes struct {
	mu        sync.Mutex
	price     float64
	changePct float64
	err       error
	calls     int
}

func (f *fakeQuotes) RealtimeQuote(ctx context.Context, code string) (*types.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &types.Quote{
		Code:      code,
		Name:      "测试股票",
		Price:     f.price,
		ChangePct: f.changePct,
	}, nil
}

func (f *fakeQuotes) set(price, changePct float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.price = price
	f.changePct = changePct
}

func newTestMonitor(price float64) (*Monitor, *fakeQuotes) {
	quotes := &fakeQuotes{price: price}
	return New(quotes, nil, nil, nil), quotes
}

func defaultConfig() types.WatchConfig {
	return types.WatchConfig{Code: "600519", Rise: 5.0, Fall: 3.0, Interval: 3600}
}

// tick 用当前代数手动触发一次采样
func tick(m *Monitor) {
	m.mutex.Lock()
	gen := m.gen
	m.mutex.Unlock()
	m.checkPrice(context.Background(), gen)
}

func TestStartSuccess(t *testing.T) {
	m, _ := newTestMonitor(1800.00)
	defer m.Stop()

	result := m.Start(defaultConfig())
	require.True(t, result.Success)
	assert.Contains(t, result.Message, "600519")
	assert.Contains(t, result.Message, "5%")
	assert.Contains(t, result.Message, "3600秒")

	state := m.GetState()
	assert.True(t, state.IsActive)
	require.NotNil(t, state.Config)
	assert.Equal(t, "600519", state.Config.Code)
	require.NotNil(t, state.LastQuote)
	assert.Equal(t, 1800.00, state.LastQuote.Price)
	assert.NotNil(t, state.LastCheckTime)
}

func TestStartRecordsInitialInfoAlert(t *testing.T) {
	m, _ := newTestMonitor(100.00)
	defer m.Stop()

	result := m.Start(defaultConfig())
	require.True(t, result.Success)

	state := m.GetState()
	require.Len(t, state.Alerts, 1)
	assert.Equal(t, types.AlertInfo, state.Alerts[0].Type)
	assert.Equal(t, "监控已启动，初始价格 100.00 元", state.Alerts[0].Message)
}

func TestStartRejectsWhenAlreadyRunning(t *testing.T) {
	m, _ := newTestMonitor(100.00)
	defer m.Stop()

	require.True(t, m.Start(defaultConfig()).Success)

	second := m.Start(types.WatchConfig{Code: "000001", Rise: 2, Fall: 2, Interval: 60})
	assert.False(t, second.Success)
	assert.Contains(t, second.Message, "监控已在运行中")
	assert.Contains(t, second.Message, "600519")

	// 原监控不受影响
	state := m.GetState()
	assert.True(t, state.IsActive)
	assert.Equal(t, "600519", state.Config.Code)
}

func TestStartRejectsInvalidInterval(t *testing.T) {
	m, quotes := newTestMonitor(100.00)

	cfg := defaultConfig()
	cfg.Interval = 0
	result := m.Start(cfg)
	assert.False(t, result.Success)
	assert.False(t, m.GetState().IsActive)
	assert.Equal(t, 0, quotes.calls)
}

func TestStartRejectsUnreachableCode(t *testing.T) {
	quotes := &fakeQuotes{err: errors.New("network down")}
	m := New(quotes, nil, nil, nil)

	result := m.Start(defaultConfig())
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "无法获取股票 600519 的数据")
	assert.False(t, m.GetState().IsActive)
}

func TestStopIsIdempotent(t *testing.T) {
	m, _ := newTestMonitor(100.00)

	// 未启动时停止不报错
	m.Stop()
	assert.False(t, m.GetState().IsActive)

	require.True(t, m.Start(defaultConfig()).Success)
	m.Stop()
	m.Stop()

	state := m.GetState()
	assert.False(t, state.IsActive)
	assert.Nil(t, state.Config)
	// 最后行情和告警历史保留
	assert.NotNil(t, state.LastQuote)
	assert.NotEmpty(t, state.Alerts)
}

func TestRiseThresholdInclusive(t *testing.T) {
	m, quotes := newTestMonitor(100.00)
	defer m.Stop()
	require.True(t, m.Start(defaultConfig()).Success)

	// 4.99% 不触发
	quotes.set(104.99, 4.99)
	tick(m)
	state := m.GetState()
	require.Len(t, state.Alerts, 1) // 仅初始info

	// 恰好5.00% 触发（阈值判断是闭区间）
	m2, quotes2 := newTestMonitor(100.00)
	defer m2.Stop()
	require.True(t, m2.Start(defaultConfig()).Success)
	quotes2.set(105.00, 5.00)
	tick(m2)

	state2 := m2.GetState()
	require.Len(t, state2.Alerts, 2)
	alert := state2.Alerts[1]
	assert.Equal(t, types.AlertRise, alert.Type)
	assert.Equal(t, "区间涨 5.00%，今日涨 +5.00%", alert.Message)
	assert.Equal(t, 105.00, alert.Quote.Price)
}

func TestRiseFiresOnlyOncePerTick(t *testing.T) {
	m, quotes := newTestMonitor(100.00)
	defer m.Stop()
	require.True(t, m.Start(defaultConfig()).Success)

	// 区间涨和当日涨同时达标，只产生一条告警
	quotes.set(105.00, 5.00)
	tick(m)

	state := m.GetState()
	rises := 0
	for _, a := range state.Alerts {
		if a.Type == types.AlertRise {
			rises++
		}
	}
	assert.Equal(t, 1, rises)
}

func TestDayChangeAloneTriggersAlert(t *testing.T) {
	m, quotes := newTestMonitor(100.00)
	defer m.Stop()
	require.True(t, m.Start(defaultConfig()).Success)

	// 区间仅涨0.10%，但当日累计涨5.20%
	quotes.set(100.10, 5.20)
	tick(m)

	state := m.GetState()
	require.Len(t, state.Alerts, 2)
	alert := state.Alerts[1]
	assert.Equal(t, types.AlertRise, alert.Type)
	assert.Equal(t, "区间涨 +0.10%，今日涨 5.20%", alert.Message)
}

func TestFallThreshold(t *testing.T) {
	m, quotes := newTestMonitor(100.00)
	defer m.Stop()
	require.True(t, m.Start(defaultConfig()).Success)

	// 区间跌3%，当日仍是涨的
	quotes.set(97.00, 1.50)
	tick(m)

	state := m.GetState()
	require.Len(t, state.Alerts, 2)
	alert := state.Alerts[1]
	assert.Equal(t, types.AlertFall, alert.Type)
	assert.Equal(t, "区间跌 3.00%，今日涨 1.50%", alert.Message)
}

func TestFallDayChangeAlone(t *testing.T) {
	m, quotes := newTestMonitor(100.00)
	defer m.Stop()
	require.True(t, m.Start(defaultConfig()).Success)

	quotes.set(99.90, -3.40)
	tick(m)

	state := m.GetState()
	require.Len(t, state.Alerts, 2)
	alert := state.Alerts[1]
	assert.Equal(t, types.AlertFall, alert.Type)
	assert.Equal(t, "区间跌 -0.10%，今日跌 3.40%", alert.Message)
}

func TestNoAlertOnSmallMove(t *testing.T) {
	m, quotes := newTestMonitor(100.00)
	defer m.Stop()
	require.True(t, m.Start(defaultConfig()).Success)

	quotes.set(101.00, 1.00)
	tick(m)
	quotes.set(99.50, -0.50)
	tick(m)

	state := m.GetState()
	assert.Len(t, state.Alerts, 1) // 仅初始info
}

func TestAlertHistoryBounded(t *testing.T) {
	m, _ := newTestMonitor(100.00)
	defer m.Stop()
	require.True(t, m.Start(defaultConfig()).Success)

	quote := &types.Quote{Code: "600519", Price: 100}
	m.mutex.Lock()
	for i := 0; i < 80; i++ {
		m.addAlertLocked(types.AlertRise, fmt.Sprintf("告警 %d", i), quote)
	}
	m.mutex.Unlock()

	state := m.GetState()
	require.Len(t, state.Alerts, 50)
	// 最旧的被淘汰，保留最后50条
	assert.Equal(t, "告警 30", state.Alerts[0].Message)
	assert.Equal(t, "告警 79", state.Alerts[49].Message)

	// 每条告警都有唯一ID
	seen := make(map[string]bool)
	for _, a := range state.Alerts {
		assert.NotEmpty(t, a.ID)
		assert.False(t, seen[a.ID])
		seen[a.ID] = true
	}
}

func TestStaleTickDiscardedAfterStop(t *testing.T) {
	m, quotes := newTestMonitor(100.00)
	require.True(t, m.Start(defaultConfig()).Success)

	m.mutex.Lock()
	oldGen := m.gen
	m.mutex.Unlock()

	m.Stop()
	before := m.GetState()

	// 停止前发出的采样迟到返回，必须被丢弃
	quotes.set(200.00, 100.00)
	m.checkPrice(context.Background(), oldGen)

	after := m.GetState()
	assert.Equal(t, before.LastQuote.Price, after.LastQuote.Price)
	assert.Len(t, after.Alerts, len(before.Alerts))
}

func TestStaleTickDiscardedAfterRestart(t *testing.T) {
	m, quotes := newTestMonitor(100.00)
	defer m.Stop()
	require.True(t, m.Start(defaultConfig()).Success)

	m.mutex.Lock()
	oldGen := m.gen
	m.mutex.Unlock()

	m.Stop()
	quotes.set(50.00, 0)
	require.True(t, m.Start(defaultConfig()).Success)

	// 上一轮监控的迟到采样不能污染新一轮状态
	quotes.set(200.00, 100.00)
	m.checkPrice(context.Background(), oldGen)

	state := m.GetState()
	assert.Equal(t, 50.00, state.LastQuote.Price)
}

func TestSubscribePublishesSnapshots(t *testing.T) {
	m, quotes := newTestMonitor(100.00)
	defer m.Stop()

	var mu sync.Mutex
	var states []types.MonitorState
	unsubscribe := m.Subscribe(func(s types.MonitorState) {
		mu.Lock()
		states = append(states, s)
		mu.Unlock()
	})

	// 注册时立即收到当前状态
	mu.Lock()
	require.Len(t, states, 1)
	assert.False(t, states[0].IsActive)
	mu.Unlock()

	require.True(t, m.Start(defaultConfig()).Success)
	quotes.set(105.00, 5.00)
	tick(m)

	mu.Lock()
	got := len(states)
	last := states[len(states)-1]
	mu.Unlock()
	assert.Greater(t, got, 1)
	assert.True(t, last.IsActive)
	assert.Equal(t, 105.00, last.LastQuote.Price)

	// 取消订阅后不再收到通知
	unsubscribe()
	mu.Lock()
	count := len(states)
	mu.Unlock()
	m.Stop()
	mu.Lock()
	assert.Equal(t, count, len(states))
	mu.Unlock()
}

func TestGetStateReturnsDefensiveCopy(t *testing.T) {
	m, _ := newTestMonitor(100.00)
	defer m.Stop()
	require.True(t, m.Start(defaultConfig()).Success)

	state := m.GetState()
	state.Config.Rise = 999
	state.LastQuote.Price = 999
	if len(state.Alerts) > 0 {
		state.Alerts[0].Message = "篡改"
	}

	fresh := m.GetState()
	assert.Equal(t, 5.0, fresh.Config.Rise)
	assert.Equal(t, 100.00, fresh.LastQuote.Price)
	assert.NotEqual(t, "篡改", fresh.Alerts[0].Message)
}

func TestGetRecentAlertsNewestFirst(t *testing.T) {
	m, _ := newTestMonitor(100.00)
	defer m.Stop()
	require.True(t, m.Start(defaultConfig()).Success)

	quote := &types.Quote{Code: "600519", Price: 100}
	m.mutex.Lock()
	for i := 0; i < 8; i++ {
		m.addAlertLocked(types.AlertRise, fmt.Sprintf("告警 %d", i), quote)
	}
	m.mutex.Unlock()

	// 默认返回最近5条
	recent := m.GetRecentAlerts(0)
	require.Len(t, recent, 5)
	assert.Equal(t, "告警 7", recent[0].Message)
	assert.Equal(t, "告警 3", recent[4].Message)

	three := m.GetRecentAlerts(3)
	require.Len(t, three, 3)
	assert.Equal(t, "告警 7", three[0].Message)
}

func TestClearAlerts(t *testing.T) {
	m, _ := newTestMonitor(100.00)
	defer m.Stop()
	require.True(t, m.Start(defaultConfig()).Success)
	require.NotEmpty(t, m.GetState().Alerts)

	m.ClearAlerts()
	assert.Empty(t, m.GetState().Alerts)
	assert.True(t, m.GetState().IsActive)
}

func TestConcurrentStartStop(t *testing.T) {
	m, _ := newTestMonitor(100.00)
	defer m.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			m.Start(defaultConfig())
		}()
		go func() {
			defer wg.Done()
			m.Stop()
		}()
	}
	wg.Wait()

	// 收敛到一致状态即可
	state := m.GetState()
	if state.IsActive {
		require.NotNil(t, state.Config)
	} else {
		assert.Nil(t, state.Config)
	}
}

func TestSampleRecorderReceivesTicks(t *testing.T) {
	quotes := &fakeQuotes{price: 100.00}
	recorder := &fakeRecorder{}
	m := New(quotes, nil, recorder, nil)
	defer m.Stop()

	require.True(t, m.Start(defaultConfig()).Success)
	quotes.set(101.00, 1.00)
	tick(m)

	points := recorder.snapshot()
	require.Len(t, points, 2)
	assert.Equal(t, 100.00, points[0])
	assert.Equal(t, 101.00, points[1])
}

func TestPresets(t *testing.T) {
	thresholds := PresetThresholds()
	require.Contains(t, thresholds, "稳健")
	assert.Equal(t, 5.0, thresholds["稳健"].Rise)
	assert.Equal(t, 3.0, thresholds["稳健"].Fall)

	intervals := PresetIntervals()
	assert.Equal(t, 60, intervals["正常"])
	for name, seconds := range intervals {
		assert.Greater(t, seconds, 0, name)
	}
}

type fakeRecorder struct {
	mu     sync.Mutex
	prices []float64
}

func (f *fakeRecorder) Store(code string, price float64, timestamp time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prices = append(f.prices, price)
}

func (f *fakeRecorder) snapshot() []float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]float64(nil), f.prices...)
}
