package monitor

// PresetThresholds 预设阈值配置
func PresetThresholds() map[string]struct{ Rise, Fall float64 } {
	return map[string]struct{ Rise, Fall float64 }{
		"保守": {Rise: 3, Fall: 2},
		"稳健": {Rise: 5, Fall: 3},
		"激进": {Rise: 8, Fall: 5},
		"高频": {Rise: 2, Fall: 1},
	}
}

// PresetIntervals 预设检查间隔（秒）
func PresetIntervals() map[string]int {
	return map[string]int{
		"快速": 30,
		"正常": 60,
		"节能": 120,
		"低频": 300,
	}
}
