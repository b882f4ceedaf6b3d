package notifier

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"stock-sentry/pkg/types"
)

// Interface 通知接口
type Interface interface {
	SendAlert(alert *types.Alert) error
}

// alertTitle 根据告警类型生成标题
func alertTitle(alert *types.Alert) string {
	switch alert.Type {
	case types.AlertRise:
		return fmt.Sprintf("%s 上涨告警", alert.Quote.Name)
	case types.AlertFall:
		return fmt.Sprintf("%s 下跌告警", alert.Quote.Name)
	default:
		return fmt.Sprintf("%s 监控通知", alert.Quote.Name)
	}
}

// ConsoleNotifier 控制台通知器
type ConsoleNotifier struct{}

func NewConsoleNotifier() *ConsoleNotifier {
	return &ConsoleNotifier{}
}

func (cn *ConsoleNotifier) SendAlert(alert *types.Alert) error {
	border := "╔" + strings.Repeat("═", 60) + "╗"
	bottomBorder := "╚" + strings.Repeat("═", 60) + "╝"

	arrow := "📈"
	if alert.Type == types.AlertFall {
		arrow = "📉"
	} else if alert.Type == types.AlertInfo {
		arrow = "🔔"
	}

	fmt.Println()
	fmt.Println(border)
	fmt.Printf("║ %s %s%s ║\n", arrow, alertTitle(alert), strings.Repeat(" ", 30))
	fmt.Println("║" + strings.Repeat(" ", 60) + "║")
	fmt.Printf("║ 股票: %s (%s)%s ║\n", alert.Quote.Name, alert.Quote.Code, strings.Repeat(" ", 30))
	fmt.Printf("║ 当前价格: %-44.2f ║\n", alert.Quote.Price)
	fmt.Printf("║ 今日涨跌: %+-43.2f%% ║\n", alert.Quote.ChangePct)
	fmt.Printf("║ %s%s ║\n", alert.Message, strings.Repeat(" ", 40))
	fmt.Printf("║ 告警时间: %-44s ║\n", alert.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Println(bottomBorder)
	fmt.Println()

	return nil
}

// DingTalkNotifier 钉钉通知器
type DingTalkNotifier struct {
	webhookURL string
	secret     string
	httpClient *http.Client
}

// DingTalkMessage 钉钉消息结构
type DingTalkMessage struct {
	MsgType  string            `json:"msgtype"`
	Markdown *DingTalkMarkdown `json:"markdown,omitempty"`
	At       *DingTalkAt       `json:"at,omitempty"`
}

type DingTalkMarkdown struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

type DingTalkAt struct {
	AtAll bool `json:"isAtAll"`
}

// DingTalkResponse 钉钉API响应
type DingTalkResponse struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

func NewDingTalkNotifier(webhookURL, secret string) Interface {
	// 如果没有配置webhook URL，返回控制台通知器
	if webhookURL == "" {
		fmt.Println("🔧 未配置钉钉Webhook URL，使用控制台输出模式")
		return NewConsoleNotifier()
	}

	if secret != "" {
		fmt.Println("✅ 已配置钉钉通知服务（含加签验证）")
	} else {
		fmt.Println("⚠️ 钉钉通知已配置，但未设置secret（建议配置加签验证）")
	}

	return &DingTalkNotifier{
		webhookURL: webhookURL,
		secret:     secret,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (dtn *DingTalkNotifier) SendAlert(alert *types.Alert) error {
	title := alertTitle(alert)
	content := dtn.buildMarkdownContent(alert)

	return dtn.sendDingTalkMessage(title, content)
}

// buildMarkdownContent 构建告警的Markdown内容
func (dtn *DingTalkNotifier) buildMarkdownContent(alert *types.Alert) string {
	arrow := "📈"
	color := "green"
	if alert.Type == types.AlertFall {
		arrow = "📉"
		color = "red"
	} else if alert.Type == types.AlertInfo {
		arrow = "🔔"
		color = "gray"
	}

	return fmt.Sprintf(`## %s %s

**股票**: %s (%s)
**当前价格**: %.2f 元
**今日涨跌**: <font color="%s">%+.2f%%</font>
**告警时间**: %s

> %s`,
		arrow, alertTitle(alert),
		alert.Quote.Name, alert.Quote.Code,
		alert.Quote.Price,
		color, alert.Quote.ChangePct,
		alert.Timestamp.Format("2006-01-02 15:04:05"),
		alert.Message)
}

// generateSignature 生成钉钉加签
func (dtn *DingTalkNotifier) generateSignature(timestamp int64) (string, error) {
	if dtn.secret == "" {
		return "", nil
	}

	// 按照文档要求: timestamp + "\n" + secret
	stringToSign := fmt.Sprintf("%d\n%s", timestamp, dtn.secret)

	h := hmac.New(sha256.New, []byte(dtn.secret))
	h.Write([]byte(stringToSign))
	signature := base64.StdEncoding.EncodeToString(h.Sum(nil))

	return url.QueryEscape(signature), nil
}

// buildSignedURL 构建带签名的URL
func (dtn *DingTalkNotifier) buildSignedURL() (string, error) {
	timestamp := time.Now().UnixNano() / 1e6 // 毫秒时间戳

	if dtn.secret == "" {
		return dtn.webhookURL, nil
	}

	signature, err := dtn.generateSignature(timestamp)
	if err != nil {
		return "", err
	}

	separator := "&"
	if !strings.Contains(dtn.webhookURL, "?") {
		separator = "?"
	}

	return fmt.Sprintf("%s%stimestamp=%d&sign=%s",
		dtn.webhookURL, separator, timestamp, signature), nil
}

// sendDingTalkMessage 发送钉钉消息
func (dtn *DingTalkNotifier) sendDingTalkMessage(title, content string) error {
	signedURL, err := dtn.buildSignedURL()
	if err != nil {
		return fmt.Errorf("生成签名失败: %v", err)
	}

	message := &DingTalkMessage{
		MsgType: "markdown",
		Markdown: &DingTalkMarkdown{
			Title: title,
			Text:  content,
		},
		At: &DingTalkAt{
			AtAll: false, // 不@所有人，避免过度打扰
		},
	}

	jsonData, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("序列化消息失败: %v", err)
	}

	resp, err := dtn.httpClient.Post(signedURL, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("HTTP请求失败: %v", err)
	}
	defer resp.Body.Close()

	var dingResp DingTalkResponse
	if err := json.NewDecoder(resp.Body).Decode(&dingResp); err != nil {
		return fmt.Errorf("解析响应失败: %v", err)
	}

	if dingResp.ErrCode != 0 {
		return fmt.Errorf("钉钉API错误 [%d]: %s", dingResp.ErrCode, dingResp.ErrMsg)
	}

	return nil
}
