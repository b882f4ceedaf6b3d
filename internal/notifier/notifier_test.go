package notifier

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"stock-sentry/pkg/types"
)

func sampleAlert(alertType string) *types.Alert {
	return &types.Alert{
		ID:        "test-id",
		Type:      alertType,
		Message:   "区间涨 5.00%，今日涨 +5.00%",
		Timestamp: time.Date(2025, 8, 29, 14, 30, 0, 0, time.Local),
		Quote: types.Quote{
			Code:      "600519",
			Name:      "贵州茅台",
			Price:     1800.50,
			ChangePct: 5.00,
		},
	}
}

func TestAlertTitle(t *testing.T) {
	assert.Equal(t, "贵州茅台 上涨告警", alertTitle(sampleAlert(types.AlertRise)))
	assert.Equal(t, "贵州茅台 下跌告警", alertTitle(sampleAlert(types.AlertFall)))
	assert.Equal(t, "贵州茅台 监控通知", alertTitle(sampleAlert(types.AlertInfo)))
}

func TestConsoleNotifier(t *testing.T) {
	cn := NewConsoleNotifier()
	assert.NoError(t, cn.SendAlert(sampleAlert(types.AlertRise)))
}

func TestNewDingTalkNotifierFallsBackToConsole(t *testing.T) {
	n := NewDingTalkNotifier("", "secret")
	_, ok := n.(*ConsoleNotifier)
	assert.True(t, ok)
}

func TestDingTalkSignature(t *testing.T) {
	dtn := &DingTalkNotifier{secret: "SECxxxx"}

	sig1, err := dtn.generateSignature(1693291234567)
	require.NoError(t, err)
	assert.NotEmpty(t, sig1)

	// 同样的输入得到同样的签名
	sig2, err := dtn.generateSignature(1693291234567)
	require.NoError(t, err)
	assert.Equal(t, sig1, sig2)

	// 时间戳不同签名不同
	sig3, err := dtn.generateSignature(1693291234568)
	require.NoError(t, err)
	assert.NotEqual(t, sig1, sig3)

	// 未配置secret时不加签
	empty := &DingTalkNotifier{}
	sig, err := empty.generateSignature(1693291234567)
	require.NoError(t, err)
	assert.Empty(t, sig)
}

func TestDingTalkSendAlert(t *testing.T) {
	var received DingTalkMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		// 加签参数附加在URL上
		assert.NotEmpty(t, r.URL.Query().Get("timestamp"))
		assert.NotEmpty(t, r.URL.Query().Get("sign"))
		w.Write([]byte(`{"errcode":0,"errmsg":"ok"}`))
	}))
	defer server.Close()

	dtn := &DingTalkNotifier{
		webhookURL: server.URL,
		secret:     "SECxxxx",
		httpClient: server.Client(),
	}

	require.NoError(t, dtn.SendAlert(sampleAlert(types.AlertRise)))
	assert.Equal(t, "markdown", received.MsgType)
	require.NotNil(t, received.Markdown)
	assert.Equal(t, "贵州茅台 上涨告警", received.Markdown.Title)
	assert.Contains(t, received.Markdown.Text, "1800.50")
	assert.Contains(t, received.Markdown.Text, "区间涨 5.00%")
}

func TestDingTalkRejectedByServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errcode":310000,"errmsg":"sign not match"}`))
	}))
	defer server.Close()

	dtn := &DingTalkNotifier{
		webhookURL: server.URL,
		httpClient: server.Client(),
	}

	err := dtn.SendAlert(sampleAlert(types.AlertFall))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sign not match")
}
