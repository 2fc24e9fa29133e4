package config

import "net/http/cookiejar"

type Config struct {
	Elasticsearch struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Address  string `json:"address"`
	} `json:"elasticsearch"`

	Rod struct {
		UserDataDir          string `json:"user_data_dir"`
		Headless             bool   `json:"headless"`
		DisableBlinkFeatures string `json:"disable_blink_features"`
		Incognito            bool   `json:"incognito"`
		DisableDevShmUsage   bool   `json:"disable_dev_shm_usage"`
		NoSandbox            bool   `json:"no_sandbox"`
		UserAgent            string `json:"user_agent"`
		Leakless             bool   `json:"leakless"`
		Bin                  string `json:"bin"`
	} `json:"rod"`

	Chromedp struct {
		LifeTime             int    `json:"life_time"`
		UserDataDir          string `json:"user_data_dir"`
		Headless             bool   `json:"headless"`
		DisableBlinkFeatures string `json:"disable_blink_features"`
		Incognito            bool   `json:"incognito"`
		DisableDevShmUsage   bool   `json:"disable_dev_shm_usage"`
		NoSandbox            bool   `json:"no_sandbox"`
		UserAgent            string `json:"user_agent"`
	} `json:"chromedp"`

	Colly struct {
		AllowedDomains   []string           `json:"allowed_domains"`
		MaxDepth         int                `json:"max_depth"`
		UserAgent        string             `json:"user_agent"`
		IgnoreRobotsTxt  bool               `json:"ignore_robots_txt"`
		Async            bool               `json:"async"`
		Parallelism      int                `json:"parallelism"`
		Delay            int                `json:"delay"`
		RandomDelay      int                `json:"random_delay"`
		EnableCookieJar  bool               `json:"enable_cookie_jar"`
		CookieJarOptions *cookiejar.Options `json:"cookie_jar_options"`
	} `json:"colly"`

	// Harvest 商品列表采集配置
	// 选择器部分描述目标页面的商品卡片结构,enrichment_selector指向第三方脚本注入的文本容器
	Harvest struct {
		ItemSelector        string `json:"item_selector"`
		LinkSelector        string `json:"link_selector"`
		TitleSelector       string `json:"title_selector"`
		PriceSelector       string `json:"price_selector"`
		ImageSelector       string `json:"image_selector"`
		ShopSelector        string `json:"shop_selector"`
		SalesSelector       string `json:"sales_selector"`
		RatingSelector      string `json:"rating_selector"`
		ReviewSelector      string `json:"review_selector"`
		ShippedFromSelector string `json:"shipped_from_selector"`
		CategorySelector    string `json:"category_selector"`
		EnrichmentSelector  string `json:"enrichment_selector"`

		// 轮询与滚动调参,0值在ParseConfig时填入默认值
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
	} `json:"harvest"`

	Embedder struct {
		Host      string `json:"host"`
		Port      int    `json:"port"`
		Model     string `json:"model"`
		BatchSize int    `json:"batch_size"`
	} `json:"embedder"`
	LLM struct {
		Host  string `json:"host"`
		Port  int    `json:"port"`
		Model string `json:"model"`
	} `json:"llm"`
}
