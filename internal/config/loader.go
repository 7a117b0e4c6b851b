// Package config 提供配置加载功能
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// DefaultConfigDir 默认配置目录
const DefaultConfigDir = "configs"

var envPattern = regexp.MustCompile(`\${(\w+)(:([^}]*))?}`)

// Load 从默认目录加载配置
func Load() (*Config, error) {
	dir := os.Getenv("CONFIG_DIR")
	if dir == "" {
		dir = DefaultConfigDir
	}
	return LoadFrom(dir)
}

// LoadFrom 从指定目录加载配置
// 按优先级加载：默认配置 -> 环境配置 -> 环境变量
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	// 1. 加载默认配置
	if err := loadConfigFile(v, filepath.Join(dir, "config.yaml"), false); err != nil {
		return nil, err
	}

	// 2. 加载环境特定配置
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	envFile := filepath.Join(dir, fmt.Sprintf("config.%s.yaml", env))
	if err := loadConfigFile(v, envFile, true); err != nil {
		return nil, err
	}

	// 3. 绑定环境变量 (直接覆盖)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 设置默认值 (兜底)
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验启动必需的配置项；LLM 凭据缺失不在此处拦截，由补全客户端在调用时报告
func (c *Config) Validate() error {
	if c.LLM.DefaultProvider == "" {
		return fmt.Errorf("llm.default_provider is required")
	}
	for name, p := range c.LLM.Providers {
		switch p.Type {
		case "", ProviderTypeOpenAI, ProviderTypeAnthropic:
		default:
			return fmt.Errorf("llm.providers.%s.type %q is not supported", name, p.Type)
		}
	}
	if c.Generation.MaxPostChars <= 0 {
		return fmt.Errorf("generation.max_post_chars must be positive")
	}
	return nil
}

// GenerationProvider 返回生成使用的提供商名称
func (c *Config) GenerationProvider() string {
	if c.Generation.Provider != "" {
		return c.Generation.Provider
	}
	return c.LLM.DefaultProvider
}

// loadConfigFile 读取文件，执行环境变量替换，并加载到 viper
func loadConfigFile(v *viper.Viper, path string, optional bool) error {
	content, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	// 执行环境变量替换
	expanded := expandEnv(string(content))

	// 加载到 viper
	reader := strings.NewReader(expanded)
	if v.ConfigFileUsed() == "" {
		if err := v.ReadConfig(reader); err != nil {
			return fmt.Errorf("failed to read processed config %s: %w", path, err)
		}
		// 手动标记已加载文件，防止后续 ReadInConfig 报错
		v.SetConfigFile(path)
	} else {
		if err := v.MergeConfig(reader); err != nil {
			return fmt.Errorf("failed to merge processed config %s: %w", path, err)
		}
	}

	return nil
}

// expandEnv 替换字符串中的 ${VAR:default} 占位符
func expandEnv(s string) string {
	// g1: 变量名, g2: 默认值部分（含冒号）, g3: 默认值内容
	return envPattern.ReplaceAllStringFunc(s, func(match string) string {
		submatch := envPattern.FindStringSubmatch(match)
		key := submatch[1]
		hasDefault := submatch[2] != ""
		defVal := submatch[3]

		val, ok := os.LookupEnv(key)
		if ok {
			return val
		}
		if hasDefault {
			return defVal
		}
		return match // 保留原样以便识别未定义的变量
	})
}

// MustLoad 加载配置，失败时 panic
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// setDefaults 设置配置默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "linkedin-post-ai-api")
	v.SetDefault("app.version", "v0.0.0")
	v.SetDefault("app.env", "development")

	// HTTP 服务器默认值
	v.SetDefault("server.http.host", "0.0.0.0")
	v.SetDefault("server.http.port", 8080)
	v.SetDefault("server.http.read_timeout", "30s")
	v.SetDefault("server.http.write_timeout", "180s")
	v.SetDefault("server.http.idle_timeout", "120s")
	v.SetDefault("server.http.shutdown_timeout", "30s")

	// 数据库默认值
	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.user", "postgres")
	v.SetDefault("database.postgres.database", "linkedin_post_ai")
	v.SetDefault("database.postgres.ssl_mode", "disable")
	v.SetDefault("database.postgres.max_open_conns", 25)
	v.SetDefault("database.postgres.max_idle_conns", 5)
	v.SetDefault("database.postgres.conn_max_lifetime", "30m")
	v.SetDefault("database.postgres.conn_max_idle_time", "5m")
	v.SetDefault("database.postgres.slow_threshold", "500ms")

	// Redis 默认值
	v.SetDefault("cache.redis.host", "localhost")
	v.SetDefault("cache.redis.port", 6379)
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.pool_size", 50)
	v.SetDefault("cache.redis.min_idle_conns", 5)
	v.SetDefault("cache.redis.dial_timeout", "5s")
	v.SetDefault("cache.redis.read_timeout", "3s")
	v.SetDefault("cache.redis.write_timeout", "3s")
	v.SetDefault("cache.redis.key_prefix", "lpai")
	v.SetDefault("cache.profile_ttl", "10m")

	// LLM 默认值
	v.SetDefault("llm.default_provider", "openai")

	// 生成默认值
	v.SetDefault("generation.default_model", "gpt-4o")
	v.SetDefault("generation.default_framework", "Problem → Stakes → Solution")
	v.SetDefault("generation.max_post_chars", 1300)
	v.SetDefault("generation.daily_token_limit", 0)
	v.SetDefault("generation.temperatures.hooks", 0.9)
	v.SetDefault("generation.temperatures.recommend", 0.2)
	v.SetDefault("generation.temperatures.sections", 0.7)
	v.SetDefault("generation.temperatures.voice", 0.6)
	v.SetDefault("generation.temperatures.logic", 0.3)
	v.SetDefault("generation.temperatures.regenerate", 0.8)
	v.SetDefault("generation.temperatures.polish", 0.5)

	// LinkedIn 默认值
	v.SetDefault("linkedin.api_base_url", "https://api.linkedin.com")
	v.SetDefault("linkedin.api_version", "202405")
	v.SetDefault("linkedin.visibility", "PUBLIC")
	v.SetDefault("linkedin.timeout", "15s")

	// 消息队列默认值
	v.SetDefault("messaging.redis_stream.max_len", 10000)
	v.SetDefault("messaging.redis_stream.block_timeout", "5s")
	v.SetDefault("messaging.redis_stream.claim_interval", "30s")
	v.SetDefault("messaging.redis_stream.retry_limit", 3)
	v.SetDefault("messaging.redis_stream.retry_backoff.initial", "2s")
	v.SetDefault("messaging.redis_stream.retry_backoff.max", "1m")
	v.SetDefault("messaging.redis_stream.retry_backoff.multiplier", 2.0)
	v.SetDefault("messaging.redis_stream.dlq_alert_threshold", 10)

	// 可观测性默认值
	v.SetDefault("observability.logging.level", "info")
	v.SetDefault("observability.logging.format", "json")
	v.SetDefault("observability.tracing.enabled", false)
	v.SetDefault("observability.tracing.endpoint", "localhost:4317")
	v.SetDefault("observability.tracing.insecure", true)
	v.SetDefault("observability.tracing.sample_rate", 1.0)
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.path", "/metrics")

	// 安全默认值
	v.SetDefault("security.jwt.issuer", "linkedin-post-ai")
	v.SetDefault("security.jwt.expiration", "24h")
	v.SetDefault("security.device_auth.enabled", true)
	v.SetDefault("security.device_auth.header", "X-Device-ID")
	v.SetDefault("security.rate_limit.enabled", true)
	v.SetDefault("security.rate_limit.generation_per_minute", 20)

	// 功能开关默认值
	v.SetDefault("features.publish_async", false)
	v.SetDefault("features.refine_by_default", true)
	v.SetDefault("features.usage_event_log", false)
}
