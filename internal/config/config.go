package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Environment keys. The CLI binds its flags onto the same names.
const (
	KeyHost               = "HOST"
	KeyPort               = "PORT"
	KeyRequestTimeout     = "REQUEST_TIMEOUT"
	KeyImageFetchTimeout  = "IMAGE_FETCH_TIMEOUT"
	KeyPipelineTimeout    = "PIPELINE_TIMEOUT"
	KeyMaxRequestBodySize = "MAX_REQUEST_BODY_SIZE"
	KeyLogLevel           = "LOG_LEVEL"
	KeyOCREngine          = "OCR_ENGINE"
	KeyOCRLanguage        = "OCR_LANGUAGE"
	KeyOCRDigitLanguage   = "OCR_DIGIT_LANGUAGE"
	KeyTessdataPrefix     = "TESSDATA_PREFIX"
	KeyEnhanceMode        = "ENHANCE_MODE"
	KeyEnhanceScale       = "ENHANCE_SCALE"
	KeyCLAHEClipLimit     = "CLAHE_CLIP_LIMIT"
	KeyCLAHETileSize      = "CLAHE_TILE_SIZE"
	KeyStrictQuality      = "QUALITY_GATE_STRICT"
	KeyCornerCheck        = "QUALITY_CORNER_CHECK"
	KeyUseQRCode          = "USE_QR_CODE"
	KeyConfidenceMode     = "CONFIDENCE_MODE"
	KeyWorkers            = "WORKERS"
	KeyVerifyThreshold    = "KYC_VERIFY_THRESHOLD"
	KeyStoreDriver        = "STORE_DRIVER"
	KeyStoreDSN           = "STORE_DSN"
	KeyCacheDriver        = "CACHE_DRIVER"
	KeyRedisAddr          = "REDIS_ADDR"
	KeyRedisPassword      = "REDIS_PASSWORD"
	KeyRedisDB            = "REDIS_DB"
	KeyCacheTTL           = "CACHE_TTL"
	KeyAzureAccount       = "AZURE_STORAGE_ACCOUNT"
	KeyAzureKey           = "AZURE_STORAGE_KEY"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	ImageFetchTimeout  time.Duration
	PipelineTimeout    time.Duration
	MaxRequestBodySize int64
	LogLevel           string

	OCR      OCRConfig
	Enhance  EnhanceConfig
	Pipeline PipelineConfig
	KYC      KYCConfig
	Store    StoreConfig
	Cache    CacheConfig
	Azure    AzureConfig
}

type OCRConfig struct {
	Engine         string
	Language       string
	DigitLanguage  string
	TessdataPrefix string
}

type EnhanceConfig struct {
	Mode      string // "full" or "lightweight"
	Scale     float64
	ClipLimit float64
	TileSize  int
}

type PipelineConfig struct {
	StrictQuality  bool
	CornerCheck    bool
	UseQRCode      bool
	ConfidenceMode string // "fields" or "engine"
	Workers        int
}

type KYCConfig struct {
	VerifyThreshold float64
}

type StoreConfig struct {
	Driver string // "memory", "postgres" or "sqlite"
	DSN    string
}

type CacheConfig struct {
	Driver        string // "none", "memory" or "redis"
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
}

type AzureConfig struct {
	Account string
	Key     string
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// AzureEnabled reports whether blob references can be resolved.
func (c *Config) AzureEnabled() bool {
	return c.Azure.Account != "" && c.Azure.Key != ""
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyHost, "0.0.0.0")
	v.SetDefault(KeyPort, "8080")
	v.SetDefault(KeyRequestTimeout, 30*time.Second)
	v.SetDefault(KeyImageFetchTimeout, 15*time.Second)
	v.SetDefault(KeyPipelineTimeout, 60*time.Second)
	v.SetDefault(KeyMaxRequestBodySize, int64(10*1024*1024)) // 10MB
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyOCREngine, "tesseract")
	v.SetDefault(KeyOCRLanguage, "vie")
	v.SetDefault(KeyOCRDigitLanguage, "eng")
	v.SetDefault(KeyEnhanceMode, "full")
	v.SetDefault(KeyEnhanceScale, 3.0)
	v.SetDefault(KeyCLAHEClipLimit, 2.0)
	v.SetDefault(KeyCLAHETileSize, 8)
	v.SetDefault(KeyStrictQuality, false)
	v.SetDefault(KeyCornerCheck, false)
	v.SetDefault(KeyUseQRCode, false)
	v.SetDefault(KeyConfidenceMode, "fields")
	v.SetDefault(KeyWorkers, 0)
	v.SetDefault(KeyVerifyThreshold, 0.7)
	v.SetDefault(KeyStoreDriver, "memory")
	v.SetDefault(KeyCacheDriver, "none")
	v.SetDefault(KeyRedisDB, 0)
	v.SetDefault(KeyCacheTTL, 24*time.Hour)
}

// LoadFromEnv reads configuration from environment variables only.
func LoadFromEnv() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	return Load(v)
}

// Load builds a Config from v, which may carry bound flags on top of the environment.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	cfg := &Config{
		Host:               v.GetString(KeyHost),
		Port:               v.GetString(KeyPort),
		RequestTimeout:     durationOrDefault(v, KeyRequestTimeout, 30*time.Second),
		ImageFetchTimeout:  durationOrDefault(v, KeyImageFetchTimeout, 15*time.Second),
		PipelineTimeout:    durationOrDefault(v, KeyPipelineTimeout, 60*time.Second),
		MaxRequestBodySize: v.GetInt64(KeyMaxRequestBodySize),
		LogLevel:           v.GetString(KeyLogLevel),
		OCR: OCRConfig{
			Engine:         strings.ToLower(v.GetString(KeyOCREngine)),
			Language:       v.GetString(KeyOCRLanguage),
			DigitLanguage:  v.GetString(KeyOCRDigitLanguage),
			TessdataPrefix: v.GetString(KeyTessdataPrefix),
		},
		Enhance: EnhanceConfig{
			Mode:      strings.ToLower(v.GetString(KeyEnhanceMode)),
			Scale:     v.GetFloat64(KeyEnhanceScale),
			ClipLimit: v.GetFloat64(KeyCLAHEClipLimit),
			TileSize:  v.GetInt(KeyCLAHETileSize),
		},
		Pipeline: PipelineConfig{
			StrictQuality:  v.GetBool(KeyStrictQuality),
			CornerCheck:    v.GetBool(KeyCornerCheck),
			UseQRCode:      v.GetBool(KeyUseQRCode),
			ConfidenceMode: strings.ToLower(v.GetString(KeyConfidenceMode)),
			Workers:        v.GetInt(KeyWorkers),
		},
		KYC: KYCConfig{
			VerifyThreshold: v.GetFloat64(KeyVerifyThreshold),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(v.GetString(KeyStoreDriver)),
			DSN:    v.GetString(KeyStoreDSN),
		},
		Cache: CacheConfig{
			Driver:        strings.ToLower(v.GetString(KeyCacheDriver)),
			RedisAddr:     v.GetString(KeyRedisAddr),
			RedisPassword: v.GetString(KeyRedisPassword),
			RedisDB:       v.GetInt(KeyRedisDB),
			TTL:           durationOrDefault(v, KeyCacheTTL, 24*time.Hour),
		},
		Azure: AzureConfig{
			Account: v.GetString(KeyAzureAccount),
			Key:     v.GetString(KeyAzureKey),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", c.MaxRequestBodySize)
	}
	if c.RequestTimeout <= 0 || c.ImageFetchTimeout <= 0 || c.PipelineTimeout <= 0 {
		return fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s, pipeline=%s)",
			c.RequestTimeout, c.ImageFetchTimeout, c.PipelineTimeout)
	}
	if c.OCR.Engine != "tesseract" {
		return fmt.Errorf("unsupported OCR_ENGINE: %q", c.OCR.Engine)
	}
	if c.Enhance.Mode != "full" && c.Enhance.Mode != "lightweight" {
		return fmt.Errorf("ENHANCE_MODE must be full or lightweight (got %q)", c.Enhance.Mode)
	}
	if c.Enhance.Scale < 1 || c.Enhance.Scale > 6 {
		return fmt.Errorf("ENHANCE_SCALE must be within [1,6] (got %g)", c.Enhance.Scale)
	}
	if c.Enhance.TileSize < 2 {
		return fmt.Errorf("CLAHE_TILE_SIZE must be >= 2 (got %d)", c.Enhance.TileSize)
	}
	if c.Pipeline.ConfidenceMode != "fields" && c.Pipeline.ConfidenceMode != "engine" {
		return fmt.Errorf("CONFIDENCE_MODE must be fields or engine (got %q)", c.Pipeline.ConfidenceMode)
	}
	if c.KYC.VerifyThreshold < 0 || c.KYC.VerifyThreshold > 1 {
		return fmt.Errorf("KYC_VERIFY_THRESHOLD must be within [0,1] (got %g)", c.KYC.VerifyThreshold)
	}
	switch c.Store.Driver {
	case "memory":
	case "postgres", "sqlite":
		if c.Store.DSN == "" {
			return fmt.Errorf("STORE_DSN is required for STORE_DRIVER=%s", c.Store.Driver)
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER: %q", c.Store.Driver)
	}
	switch c.Cache.Driver {
	case "none", "memory":
	case "redis":
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for CACHE_DRIVER=redis")
		}
	default:
		return fmt.Errorf("unsupported CACHE_DRIVER: %q", c.Cache.Driver)
	}
	return nil
}

func durationOrDefault(v *viper.Viper, key string, defaultValue time.Duration) time.Duration {
	if d := v.GetDuration(key); d > 0 {
		return d
	}
	return defaultValue
}
