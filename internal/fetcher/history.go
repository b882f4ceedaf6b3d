package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"stock-sentry/pkg/types"
)

// HistoryFetcher 历史K线数据获取器
type HistoryFetcher struct {
	baseURL    string
	httpClient *http.Client
}

// historyResponse 东财历史K线API响应
type historyResponse struct {
	RC   int `json:"rc"`
	Data *struct {
		Klines []string `json:"klines"`
	} `json:"data"`
}

// NewHistoryFetcher 创建历史K线获取器
func NewHistoryFetcher(networkConfig types.NetworkConfig) *HistoryFetcher {
	timeout := networkConfig.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	client := &http.Client{Timeout: timeout}

	// 设置代理
	if networkConfig.Proxy != "" {
		proxyURL, err := url.Parse(networkConfig.Proxy)
		if err == nil {
			client.Transport = &http.Transport{
				Proxy: http.ProxyURL(proxyURL),
			}
		}
	}

	return &HistoryFetcher{
		baseURL:    "http://push2his.eastmoney.com/api/qt/stock/kline/get",
		httpClient: client,
	}
}

// FetchKlines 获取日K线数据，按日期从旧到新返回
func (h *HistoryFetcher) FetchKlines(ctx context.Context, code string, days int) ([]types.KLine, error) {
	secid, err := getSecid(code)
	if err != nil {
		return nil, err
	}

	// klt=101 日线，fqt=1 前复权
	requestURL := fmt.Sprintf("%s?secid=%s&fields1=f1,f2,f3,f4,f5&fields2=f51,f52,f53,f54,f55,f56,f57&klt=101&fqt=1&beg=0&end=20500101&lmt=%d",
		h.baseURL, secid, days)

	zap.L().Debug("📊 获取历史K线数据",
		zap.String("code", code),
		zap.Int("days", days))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("创建HTTP请求失败: %v", err)
	}
	req.Header.Set("User-Agent", "Stock-Sentry/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP请求失败: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP响应错误: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应体失败: %v", err)
	}

	var apiResp historyResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("解析JSON失败: %v", err)
	}

	if apiResp.RC != 0 || apiResp.Data == nil || len(apiResp.Data.Klines) == 0 {
		return nil, fmt.Errorf("历史K线数据不可用: %s", code)
	}

	lines := apiResp.Data.Klines
	if len(lines) > days {
		lines = lines[len(lines)-days:]
	}

	klines := make([]types.KLine, 0, len(lines))
	for _, line := range lines {
		kline, err := parseKlineLine(line)
		if err != nil {
			zap.L().Warn("解析K线数据失败", zap.String("line", line), zap.Error(err))
			continue
		}
		klines = append(klines, kline)
	}

	zap.L().Debug("✅ 历史K线数据获取完成",
		zap.String("code", code),
		zap.Int("requested", days),
		zap.Int("received", len(klines)))

	return klines, nil
}

// parseKlineLine 解析单行K线数据
// 格式: "日期,开盘,收盘,最高,最低,成交量,成交额"
func parseKlineLine(line string) (types.KLine, error) {
	parts := strings.Split(line, ",")
	if len(parts) < 7 {
		return types.KLine{}, fmt.Errorf("K线数据格式不正确")
	}

	open, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return types.KLine{}, fmt.Errorf("解析开盘价失败: %v", err)
	}
	closePrice, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return types.KLine{}, fmt.Errorf("解析收盘价失败: %v", err)
	}
	high, err := strconv.ParseFloat(parts[3], 64)
	if err != nil {
		return types.KLine{}, fmt.Errorf("解析最高价失败: %v", err)
	}
	low, err := strconv.ParseFloat(parts[4], 64)
	if err != nil {
		return types.KLine{}, fmt.Errorf("解析最低价失败: %v", err)
	}
	volume, err := strconv.ParseFloat(parts[5], 64)
	if err != nil {
		return types.KLine{}, fmt.Errorf("解析成交量失败: %v", err)
	}
	amount, err := strconv.ParseFloat(parts[6], 64)
	if err != nil {
		return types.KLine{}, fmt.Errorf("解析成交额失败: %v", err)
	}

	changePct := 0.0
	if open > 0 {
		changePct = (closePrice - open) / open * 100
	}

	return types.KLine{
		Date:      parts[0],
		Open:      open,
		Close:     closePrice,
		High:      high,
		Low:       low,
		Volume:    volume,
		Amount:    amount,
		ChangePct: changePct,
	}, nil
}
