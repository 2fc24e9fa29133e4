package config

import (
	"encoding/json"
	"path/filepath"
)

func ParseConfig(byteConfig []byte) (*Config, error) {
	var cfg Config
	err := json.Unmarshal(byteConfig, &cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Chromedp.UserDataDir != "" {
		absPath, err := filepath.Abs(cfg.Chromedp.UserDataDir)
		if err != nil {
			return nil, err
		}
		cfg.Chromedp.UserDataDir = absPath
	}
	if cfg.Rod.UserDataDir != "" {
		absPath, err := filepath.Abs(cfg.Rod.UserDataDir)
		if err != nil {
			return nil, err
		}
		cfg.Rod.UserDataDir = absPath
	}
	applyHarvestDefaults(&cfg)
	return &cfg, nil
}

// applyHarvestDefaults 采集调参的0值替换为默认值
// 默认值按第三方注入脚本的实际节奏标定:一行4个卡片,整个视口最多等8秒
func applyHarvestDefaults(cfg *Config) {
	h := &cfg.Harvest
	if h.RowSize <= 0 {
		h.RowSize = 4
	}
	if h.PollIntervalMs <= 0 {
		h.PollIntervalMs = 500
	}
	if h.EnrichTimeoutMs <= 0 {
		h.EnrichTimeoutMs = 8000
	}
	if h.MinEnrichmentLen <= 0 {
		h.MinEnrichmentLen = 40
	}
	if h.NoGrowthLimit <= 0 {
		h.NoGrowthLimit = 3
	}
	if h.GrowthBoost <= 0 {
		h.GrowthBoost = 8
	}
	if h.MinStepRatio <= 0 {
		h.MinStepRatio = 0.4
	}
	if h.MaxStepRatio <= 0 {
		h.MaxStepRatio = 1.6
	}
	if h.InitialStepRatio <= 0 {
		h.InitialStepRatio = 0.8
	}
	if h.ScrollPauseMs <= 0 {
		h.ScrollPauseMs = 800
	}
}
