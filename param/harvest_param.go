package param

import "time"

// Harvest 单次采集会话的参数,0值字段在会话初始化时回落到config.Harvest的默认值
type Harvest struct {
	Url              string  `json:"url"`
	TargetCount      int     `json:"target_count"`
	MaxIterations    int     `json:"max_iterations"`
	RowSize          int     `json:"row_size"`
	PollIntervalMs   int     `json:"poll_interval_ms"`
	EnrichTimeoutMs  int     `json:"enrich_timeout_ms"`
	MinEnrichmentLen int     `json:"min_enrichment_len"`
	NoGrowthLimit    int     `json:"no_growth_limit"`
	GrowthBoost      int     `json:"growth_boost"`
	MinStepRatio     float64 `json:"min_step_ratio"`
	MaxStepRatio     float64 `json:"max_step_ratio"`
	InitialStepRatio float64 `json:"initial_step_ratio"`
	ScrollPauseMs    int     `json:"scroll_pause_ms"`
	// AutoUpload 会话正常结束(收敛或达到目标)后自动上传工作集
	AutoUpload bool `json:"auto_upload"`
}

func (h *Harvest) IsValid() bool {
	if h.Url == "" {
		return false
	}
	if h.TargetCount < 0 || h.MaxIterations < 0 {
		return false
	}
	if h.MinStepRatio < 0 || h.MaxStepRatio < 0 || h.MinStepRatio > h.MaxStepRatio {
		return false
	}
	return true
}

func (h *Harvest) PollInterval() time.Duration {
	return time.Duration(h.PollIntervalMs) * time.Millisecond
}

func (h *Harvest) EnrichTimeout() time.Duration {
	return time.Duration(h.EnrichTimeoutMs) * time.Millisecond
}

func (h *Harvest) ScrollPause() time.Duration {
	return time.Duration(h.ScrollPauseMs) * time.Millisecond
}
