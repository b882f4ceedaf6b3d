package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"stock-sentry/pkg/types"
)

// Manager 数据库管理器
type Manager struct {
	db     *gorm.DB
	config types.MySQLConfig
}

// AlertRecord 告警持久化模型
type AlertRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AlertID   string    `gorm:"type:varchar(40);not null;uniqueIndex" json:"alert_id"`
	Code      string    `gorm:"type:varchar(10);not null;index:idx_code_time" json:"code"`
	Name      string    `gorm:"type:varchar(40)" json:"name"`
	AlertType string    `gorm:"type:enum('rise','fall','info');not null" json:"alert_type"`
	Message   string    `gorm:"type:varchar(255);not null" json:"message"`
	Price     float64   `gorm:"type:decimal(12,3);not null" json:"price"`
	ChangePct float64   `gorm:"type:decimal(8,3)" json:"change_pct"`
	AlertTime int64     `gorm:"not null;index:idx_code_time" json:"alert_time"`
	CreatedAt time.Time `json:"created_at"`
}

// AdvisorySnapshot 分析结果持久化模型
type AdvisorySnapshot struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Code            string    `gorm:"type:varchar(10);not null;index:idx_code_time" json:"code"`
	Name            string    `gorm:"type:varchar(40)" json:"name"`
	SentimentScore  float64   `gorm:"type:decimal(5,2);not null" json:"sentiment_score"`
	TrendScore      float64   `gorm:"type:decimal(5,2);not null" json:"trend_score"`
	DecisionType    string    `gorm:"type:enum('buy','hold','sell');not null" json:"decision_type"`
	OperationAdvice string    `gorm:"type:varchar(20)" json:"operation_advice"`
	ConfidenceLevel string    `gorm:"type:varchar(10)" json:"confidence_level"`
	SignalCount     int       `gorm:"default:0" json:"signal_count"`
	RiskCount       int       `gorm:"default:0" json:"risk_count"`
	Price           float64   `gorm:"type:decimal(12,3)" json:"price"`
	AnalyzedAt      int64     `gorm:"not null;index:idx_code_time" json:"analyzed_at"`
	CreatedAt       time.Time `json:"created_at"`
}

// WatchSession 监控会话统计
type WatchSession struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Code       string    `gorm:"type:varchar(10);not null;index" json:"code"`
	Rise       float64   `gorm:"type:decimal(6,2)" json:"rise"`
	Fall       float64   `gorm:"type:decimal(6,2)" json:"fall"`
	IntervalS  int       `gorm:"column:interval_s" json:"interval_s"`
	StartedAt  int64     `gorm:"not null" json:"started_at"`
	StoppedAt  *int64    `json:"stopped_at"`
	AlertCount int       `gorm:"default:0" json:"alert_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewManager 创建数据库管理器
func NewManager(config types.MySQLConfig) (*Manager, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		config.Username,
		config.Password,
		config.Host,
		config.Port,
		config.Database,
	)

	// 配置GORM日志
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // 生产环境使用Silent
	}

	db, err := gorm.Open(mysql.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("连接MySQL失败: %v", err)
	}

	// 配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取数据库实例失败: %v", err)
	}

	sqlDB.SetMaxIdleConns(config.MaxIdleConns)
	sqlDB.SetMaxOpenConns(config.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	manager := &Manager{
		db:     db,
		config: config,
	}

	// 自动迁移表结构
	if err := manager.AutoMigrate(); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %v", err)
	}

	zap.L().Info("✅ MySQL数据库连接成功",
		zap.String("host", config.Host),
		zap.Int("port", config.Port),
		zap.String("database", config.Database))

	return manager, nil
}

// AutoMigrate 自动迁移表结构
func (m *Manager) AutoMigrate() error {
	return m.db.AutoMigrate(
		&AlertRecord{},
		&AdvisorySnapshot{},
		&WatchSession{},
	)
}

// SaveAlert 保存告警记录
func (m *Manager) SaveAlert(alert *types.Alert) error {
	record := &AlertRecord{
		AlertID:   alert.ID,
		Code:      alert.Quote.Code,
		Name:      alert.Quote.Name,
		AlertType: alert.Type,
		Message:   alert.Message,
		Price:     alert.Quote.Price,
		ChangePct: alert.Quote.ChangePct,
		AlertTime: alert.Timestamp.Unix(),
		CreatedAt: time.Now(),
	}

	return m.db.Create(record).Error
}

// SaveAdvisory 保存分析结果快照
func (m *Manager) SaveAdvisory(result *types.AnalysisResult) error {
	snapshot := &AdvisorySnapshot{
		Code:            result.Code,
		Name:            result.Name,
		SentimentScore:  result.SentimentScore,
		TrendScore:      result.Dashboard.DataPerspective.TrendStatus.TrendScore,
		DecisionType:    result.DecisionType,
		OperationAdvice: result.OperationAdvice,
		ConfidenceLevel: result.ConfidenceLevel,
		SignalCount:     len(result.TrendAnalysis.Signals),
		RiskCount:       len(result.TrendAnalysis.Risks),
		Price:           result.Realtime.Price,
		AnalyzedAt:      time.Now().Unix(),
		CreatedAt:       time.Now(),
	}

	return m.db.Create(snapshot).Error
}

// OpenWatchSession 记录一次监控会话的开始
func (m *Manager) OpenWatchSession(config types.WatchConfig) (uint, error) {
	session := &WatchSession{
		Code:      config.Code,
		Rise:      config.Rise,
		Fall:      config.Fall,
		IntervalS: config.Interval,
		StartedAt: time.Now().Unix(),
		CreatedAt: time.Now(),
	}

	if err := m.db.Create(session).Error; err != nil {
		return 0, err
	}
	return session.ID, nil
}

// CloseWatchSession 记录监控会话的结束和告警总数
func (m *Manager) CloseWatchSession(sessionID uint, alertCount int) error {
	if sessionID == 0 {
		return nil
	}
	now := time.Now().Unix()
	return m.db.Model(&WatchSession{}).
		Where("id = ?", sessionID).
		Updates(map[string]interface{}{
			"stopped_at":  &now,
			"alert_count": alertCount,
		}).Error
}

// GetRecentAlerts 查询某只股票最近的告警记录
func (m *Manager) GetRecentAlerts(code string, limit int) ([]AlertRecord, error) {
	var records []AlertRecord
	err := m.db.Where("code = ?", code).
		Order("alert_time DESC").
		Limit(limit).
		Find(&records).Error

	return records, err
}

// GetAdvisoryHistory 查询某只股票的历史分析快照
func (m *Manager) GetAdvisoryHistory(code string, days int) ([]AdvisorySnapshot, error) {
	var snapshots []AdvisorySnapshot
	since := time.Now().AddDate(0, 0, -days).Unix()

	err := m.db.Where("code = ? AND analyzed_at >= ?", code, since).
		Order("analyzed_at DESC").
		Find(&snapshots).Error

	return snapshots, err
}

// Close 关闭数据库连接
func (m *Manager) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Health 检查数据库连接健康状态
func (m *Manager) Health() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
