package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config 全局配置（显式传入各组件，不读环境全局状态）
type Config struct {
	App     AppConfig      `mapstructure:"app"`
	Server  ServerConfig   `mapstructure:"server"`
	MySQL   MySQLConfig    `mapstructure:"mysql"`
	Redis   RedisConfig    `mapstructure:"redis"`
	Lmstfy  LmstfyConfig   `mapstructure:"lmstfy"`
	Workers []WorkerConfig `mapstructure:"workers"`
	Browser BrowserConfig  `mapstructure:"browser"`
	Figma   FigmaConfig    `mapstructure:"figma"`
	Feishu  FeishuConfig   `mapstructure:"feishu"`
	Cases   CasesConfig    `mapstructure:"cases"`
	Compare CompareConfig  `mapstructure:"compare"`
	Retry   RetryConfig    `mapstructure:"retry"`
	Output  OutputConfig   `mapstructure:"output"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name     string `mapstructure:"name"`
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// MySQLConfig MySQL 配置
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LmstfyConfig Lmstfy 配置
type LmstfyConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	Namespace     string `mapstructure:"namespace"`
	Token         string `mapstructure:"token"`
	Queue         string `mapstructure:"queue"`
	CallbackQueue string `mapstructure:"callback_queue"`
}

// WorkerConfig Worker 配置
type WorkerConfig struct {
	Name       string           `mapstructure:"name"`
	QueueName  string           `mapstructure:"queue_name"`
	Subscriber SubscriberConfig `mapstructure:"subscriber"`
	Processor  ProcessorConfig  `mapstructure:"processor"`
}

// SubscriberConfig Subscriber 配置
type SubscriberConfig struct {
	Threads      int           `mapstructure:"threads"`
	Rate         time.Duration `mapstructure:"rate"`
	Timeout      time.Duration `mapstructure:"timeout"`
	TTR          time.Duration `mapstructure:"ttr"`
	ErrorBackoff time.Duration `mapstructure:"error_backoff"`
}

// ProcessorConfig Processor 配置
// Threads 即运行准入池容量：浏览器会话是稀缺资源，默认 3
type ProcessorConfig struct {
	Threads    int           `mapstructure:"threads"`
	BufferSize int           `mapstructure:"buffer_size"`
	Timeout    time.Duration `mapstructure:"timeout"` // 整个 run 的兜底超时
}

// BrowserConfig 浏览器截图配置
type BrowserConfig struct {
	Headless    bool          `mapstructure:"headless"`
	Language    string        `mapstructure:"language"`
	NavTimeout  time.Duration `mapstructure:"nav_timeout"`  // 导航 + 元素解析上限
	SettleDelay time.Duration `mapstructure:"settle_delay"` // network-idle 后固定等待（默认 3s）
}

// FigmaConfig Figma 导出配置
type FigmaConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Token   string        `mapstructure:"token"`
	Format  string        `mapstructure:"format"`
	Scale   float64       `mapstructure:"scale"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// FeishuConfig 飞书文档/多维表格配置
type FeishuConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// CasesConfig 测试用例生成服务配置
type CasesConfig struct {
	Endpoint  string        `mapstructure:"endpoint"`
	APIKey    string        `mapstructure:"api_key"`
	CaseCount int           `mapstructure:"case_count"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// CompareConfig 视觉比对配置
type CompareConfig struct {
	DiffThreshold uint8 `mapstructure:"diff_threshold"` // 像素差阈值（灰度）
	MinRegionArea int   `mapstructure:"min_region_area"`
}

// RetryConfig 各外部依赖的退避策略参数
type RetryConfig struct {
	Capture BackoffConfig `mapstructure:"capture"`
	Export  BackoffConfig `mapstructure:"export"`
	Source  BackoffConfig `mapstructure:"source"`
	Persist BackoffConfig `mapstructure:"persist"`
}

// BackoffConfig 单个依赖的退避参数
type BackoffConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	BaseDelay   time.Duration `mapstructure:"base_delay"`
	MaxDelay    time.Duration `mapstructure:"max_delay"`
	Jitter      float64       `mapstructure:"jitter"`
}

// OutputConfig 产物输出配置
type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

// Load 加载配置文件
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config failed: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// applyDefaults 填充缺省值
func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Browser.NavTimeout == 0 {
		c.Browser.NavTimeout = 30 * time.Second
	}
	if c.Browser.SettleDelay == 0 {
		c.Browser.SettleDelay = 3 * time.Second
	}
	if c.Browser.Language == "" {
		c.Browser.Language = "en-US"
	}
	if c.Figma.BaseURL == "" {
		c.Figma.BaseURL = "https://api.figma.com/v1"
	}
	if c.Figma.Format == "" {
		c.Figma.Format = "png"
	}
	if c.Figma.Scale == 0 {
		c.Figma.Scale = 2.0
	}
	if c.Figma.Timeout == 0 {
		c.Figma.Timeout = 30 * time.Second
	}
	if c.Feishu.Timeout == 0 {
		c.Feishu.Timeout = 30 * time.Second
	}
	if c.Cases.CaseCount == 0 {
		c.Cases.CaseCount = 10
	}
	if c.Cases.Timeout == 0 {
		c.Cases.Timeout = 60 * time.Second
	}
	if c.Compare.DiffThreshold == 0 {
		c.Compare.DiffThreshold = 30
	}
	if c.Compare.MinRegionArea == 0 {
		c.Compare.MinRegionArea = 16
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "reports"
	}

	for i := range c.Workers {
		w := &c.Workers[i]
		if w.Processor.Threads == 0 {
			w.Processor.Threads = 3
		}
		if w.Processor.BufferSize == 0 {
			w.Processor.BufferSize = 8
		}
		if w.Processor.Timeout == 0 {
			w.Processor.Timeout = 10 * time.Minute
		}
		if w.Subscriber.Threads == 0 {
			w.Subscriber.Threads = 1
		}
		if w.Subscriber.Timeout == 0 {
			w.Subscriber.Timeout = 3 * time.Second
		}
		if w.Subscriber.TTR == 0 {
			w.Subscriber.TTR = 12 * time.Minute
		}
		if w.Subscriber.ErrorBackoff == 0 {
			w.Subscriber.ErrorBackoff = time.Second
		}
	}

	applyBackoffDefaults(&c.Retry.Capture)
	applyBackoffDefaults(&c.Retry.Export)
	applyBackoffDefaults(&c.Retry.Source)
	applyBackoffDefaults(&c.Retry.Persist)
}

func applyBackoffDefaults(b *BackoffConfig) {
	if b.MaxAttempts == 0 {
		b.MaxAttempts = 3
	}
	if b.BaseDelay == 0 {
		b.BaseDelay = 500 * time.Millisecond
	}
	if b.MaxDelay == 0 {
		b.MaxDelay = 10 * time.Second
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}
	if c.Lmstfy.Host == "" {
		return fmt.Errorf("lmstfy.host is required")
	}
	if c.Lmstfy.Queue == "" {
		return fmt.Errorf("lmstfy.queue is required")
	}
	if c.Lmstfy.CallbackQueue == "" {
		return fmt.Errorf("lmstfy.callback_queue is required")
	}
	return nil
}

// ValidateWorker 验证 Worker 侧必填项
func (c *Config) ValidateWorker() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if len(c.Workers) == 0 {
		return fmt.Errorf("at least one worker is required")
	}
	return nil
}
