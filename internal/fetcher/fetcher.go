package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"go.uber.org/zap"
	"stock-sentry/pkg/types"
)

var stockCodePattern = regexp.MustCompile(`^[036]\d{5}$`)

// IsValidStockCode 校验A股代码格式：6位数字，沪市6开头，深市0/3开头
func IsValidStockCode(code string) bool {
	return stockCodePattern.MatchString(code)
}

// getSecid 转换股票代码为东财secid格式
// 规则：沪市=1.code，深市=0.code
func getSecid(code string) (string, error) {
	if len(code) == 0 {
		return "", fmt.Errorf("股票代码为空")
	}
	switch code[0] {
	case '6':
		return "1." + code, nil
	case '0', '3':
		return "0." + code, nil
	}
	return "", fmt.Errorf("不支持的股票代码: %s", code)
}

// Client 东方财富实时行情客户端
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient 创建行情客户端，支持超时和HTTP代理
func NewClient(networkConfig types.NetworkConfig) *Client {
	timeout := networkConfig.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	httpClient := &http.Client{
		Timeout: timeout,
	}

	// 如果配置了代理，则使用代理
	if networkConfig.Proxy != "" {
		proxyURL, err := url.Parse(networkConfig.Proxy)
		if err == nil {
			httpClient.Transport = &http.Transport{
				Proxy: http.ProxyURL(proxyURL),
			}
			zap.L().Info("✅ 已配置HTTP代理", zap.String("proxy", networkConfig.Proxy))
		} else {
			zap.L().Warn("⚠️ 代理地址格式错误", zap.Error(err))
		}
	}

	return &Client{
		baseURL:    "http://push2.eastmoney.com/api/qt/stock/get",
		httpClient: httpClient,
	}
}

// quoteResponse 东财实时行情API响应
// f43=最新价 f44=最低 f45=今开 f46=最高 f47=成交额 f57=代码 f58=名称
// f60=成交量 f168=换手率 f169=涨跌额 f170=涨跌幅，价格类字段单位为"分"
type quoteResponse struct {
	RC   int `json:"rc"`
	Data *struct {
		F43  float64 `json:"f43"`
		F44  float64 `json:"f44"`
		F45  float64 `json:"f45"`
		F46  float64 `json:"f46"`
		F47  float64 `json:"f47"`
		F57  string  `json:"f57"`
		F58  string  `json:"f58"`
		F60  float64 `json:"f60"`
		F168 float64 `json:"f168"`
		F169 float64 `json:"f169"`
		F170 float64 `json:"f170"`
	} `json:"data"`
}

// RealtimeQuote 获取实时行情，失败时返回错误
func (c *Client) RealtimeQuote(ctx context.Context, code string) (*types.Quote, error) {
	secid, err := getSecid(code)
	if err != nil {
		return nil, err
	}

	requestURL := fmt.Sprintf("%s?secid=%s&fields=f43,f44,f45,f46,f47,f57,f58,f60,f168,f169,f170",
		c.baseURL, secid)

	// 重试机制：最多重试3次
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if attempt > 1 {
			zap.L().Debug("🔄 重试获取行情", zap.String("code", code), zap.Int("attempt", attempt))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}

		quote, err := c.fetchQuote(ctx, requestURL, code)
		if err != nil {
			lastErr = err
			continue
		}
		return quote, nil
	}

	return nil, lastErr
}

func (c *Client) fetchQuote(ctx context.Context, requestURL, code string) (*types.Quote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("创建HTTP请求失败: %v", err)
	}
	req.Header.Set("User-Agent", "Stock-Sentry/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP请求失败: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP状态码错误: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %v", err)
	}

	var apiResp quoteResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("解析API响应失败: %v", err)
	}

	if apiResp.RC != 0 || apiResp.Data == nil {
		return nil, fmt.Errorf("行情数据不可用: %s", code)
	}

	data := apiResp.Data

	// 东财API返回的价格单位是"分"，需要除以100转换为"元"
	quote := &types.Quote{
		Code:         data.F57,
		Name:         data.F58,
		Price:        data.F43 / 100,
		ChangePct:    data.F170 / 100,
		ChangeAmount: data.F169 / 100,
		High:         data.F46 / 100,
		Low:          data.F44 / 100,
		Open:         data.F45 / 100,
		Volume:       data.F60,
		Amount:       data.F47,
		TurnoverRate: data.F168 / 100,
	}
	if quote.Code == "" {
		quote.Code = code
	}

	return quote, nil
}
