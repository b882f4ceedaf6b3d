package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"stock-sentry/pkg/types"
)

// CircularQueue 循环队列实现采样点滑动窗口
type CircularQueue struct {
	data   []types.PriceDataPoint
	maxAge time.Duration
	mutex  sync.RWMutex
}

func NewCircularQueue(maxAge time.Duration) *CircularQueue {
	return &CircularQueue{
		data:   make([]types.PriceDataPoint, 0, 16),
		maxAge: maxAge,
	}
}

func (cq *CircularQueue) Add(point types.PriceDataPoint) {
	cq.mutex.Lock()
	defer cq.mutex.Unlock()

	cq.data = append(cq.data, point)

	// 清理超过maxAge的旧数据
	cutoff := time.Now().Add(-cq.maxAge)
	newStart := 0
	for i, p := range cq.data {
		if p.Timestamp.After(cutoff) {
			newStart = i
			break
		}
	}
	if newStart > 0 {
		cq.data = cq.data[newStart:]
	}
}

func (cq *CircularQueue) GetOldest() *types.PriceDataPoint {
	cq.mutex.RLock()
	defer cq.mutex.RUnlock()

	if len(cq.data) == 0 {
		return nil
	}
	point := cq.data[0]
	return &point
}

func (cq *CircularQueue) GetLatest() *types.PriceDataPoint {
	cq.mutex.RLock()
	defer cq.mutex.RUnlock()

	if len(cq.data) == 0 {
		return nil
	}
	point := cq.data[len(cq.data)-1]
	return &point
}

func (cq *CircularQueue) Length() int {
	cq.mutex.RLock()
	defer cq.mutex.RUnlock()
	return len(cq.data)
}

// StateManager 采样历史管理器
// 监控器每次成功采样后写入，供事后复盘查询；可选Redis备份
type StateManager struct {
	priceHistory map[string]*CircularQueue
	mutex        sync.RWMutex
	windowSize   time.Duration
	redisClient  *redis.Client
	useRedis     bool
}

func NewStateManager(redisConfig types.RedisConfig, windowSize time.Duration) *StateManager {
	if windowSize <= 0 {
		windowSize = time.Hour
	}

	sm := &StateManager{
		priceHistory: make(map[string]*CircularQueue),
		windowSize:   windowSize,
	}

	// 尝试连接Redis
	if redisConfig.URL != "" {
		sm.redisClient = redis.NewClient(&redis.Options{
			Addr:     redisConfig.URL,
			Password: redisConfig.Password,
			DB:       redisConfig.DB,
		})

		// 测试连接
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_, err := sm.redisClient.Ping(ctx).Result()
		if err != nil {
			zap.L().Warn("⚠️ Redis连接失败，使用纯内存模式", zap.Error(err))
			sm.useRedis = false
		} else {
			zap.L().Info("✅ Redis连接成功")
			sm.useRedis = true
		}
	} else {
		zap.L().Info("🔧 未配置Redis，使用纯内存模式")
		sm.useRedis = false
	}

	return sm
}

// Store 记录一次采样
func (sm *StateManager) Store(code string, price float64, timestamp time.Time) {
	sm.mutex.Lock()
	if sm.priceHistory[code] == nil {
		sm.priceHistory[code] = NewCircularQueue(sm.windowSize)
	}
	queue := sm.priceHistory[code]
	sm.mutex.Unlock()

	dataPoint := types.PriceDataPoint{
		Price:     price,
		Timestamp: timestamp,
	}
	queue.Add(dataPoint)

	// 异步备份到Redis
	if sm.useRedis {
		go sm.backupToRedis(code, dataPoint)
	}
}

// backupToRedis 备份数据到Redis
func (sm *StateManager) backupToRedis(code string, point types.PriceDataPoint) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	key := fmt.Sprintf("stock:price:%s", code)
	value, err := json.Marshal(point)
	if err != nil {
		zap.L().Warn("序列化价格数据失败", zap.Error(err))
		return
	}

	// 使用Redis Sorted Set存储，以时间戳为分数
	err = sm.redisClient.ZAdd(ctx, key, &redis.Z{
		Score:  float64(point.Timestamp.Unix()),
		Member: value,
	}).Err()
	if err != nil {
		zap.L().Warn("Redis存储失败", zap.String("code", code), zap.Error(err))
		return
	}

	// 只保留窗口内的数据
	sm.redisClient.Expire(ctx, key, sm.windowSize*2)
	cutoff := float64(time.Now().Add(-sm.windowSize).Unix())
	sm.redisClient.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%.0f", cutoff))
}

// GetHistory 获取某只股票窗口内的采样序列
func (sm *StateManager) GetHistory(code string) []types.PriceDataPoint {
	sm.mutex.RLock()
	queue := sm.priceHistory[code]
	sm.mutex.RUnlock()

	if queue == nil {
		return nil
	}

	queue.mutex.RLock()
	defer queue.mutex.RUnlock()

	result := make([]types.PriceDataPoint, len(queue.data))
	copy(result, queue.data)
	return result
}

// GetAllCodes 列出有采样记录的股票代码
func (sm *StateManager) GetAllCodes() []string {
	sm.mutex.RLock()
	defer sm.mutex.RUnlock()

	codes := make([]string, 0, len(sm.priceHistory))
	for code := range sm.priceHistory {
		codes = append(codes, code)
	}
	return codes
}

// GetStats 获取存储状态统计
func (sm *StateManager) GetStats() map[string]interface{} {
	sm.mutex.RLock()
	stats := map[string]interface{}{
		"redis_enabled":  sm.useRedis,
		"memory_symbols": len(sm.priceHistory),
	}
	sm.mutex.RUnlock()

	if sm.useRedis {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		keys, err := sm.redisClient.Keys(ctx, "stock:price:*").Result()
		if err == nil {
			stats["redis_keys"] = len(keys)
		} else {
			stats["redis_error"] = err.Error()
		}
	}

	return stats
}
