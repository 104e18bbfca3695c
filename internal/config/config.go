package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	ListenAddr string        `yaml:"listen_addr" json:"listen_addr"`
	LogLevel   string        `yaml:"log_level" json:"log_level"`
	LogFormat  string        `yaml:"log_format" json:"log_format"`
	Server     ServerConfig  `yaml:"server" json:"server"`
	Scratch    ScratchConfig `yaml:"scratch" json:"scratch"`
	Tools      ToolsConfig   `yaml:"tools" json:"tools"`
	Demucs     DemucsConfig  `yaml:"demucs" json:"demucs"`
	YouTube    YouTubeConfig `yaml:"youtube" json:"youtube"`
}

// ServerConfig ограничения HTTP-слоя.
type ServerConfig struct {
	MaxUploadBytes int64         `yaml:"max_upload_bytes" json:"max_upload_bytes"`
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
	RateLimit      float64       `yaml:"rate_limit" json:"rate_limit"`
	RateBurst      int           `yaml:"rate_burst" json:"rate_burst"`
	// TrustProxy берёт адрес клиента из X-Forwarded-For/X-Real-IP.
	// Включать только за своим reverse proxy: иначе клиент обходит rate_limit подменой заголовка.
	TrustProxy bool `yaml:"trust_proxy" json:"trust_proxy"`
}

// ScratchConfig описывает каталог временных рабочих директорий запросов.
type ScratchConfig struct {
	Dir        string        `yaml:"dir" json:"dir"`
	TTL        time.Duration `yaml:"ttl" json:"ttl"`
	GCInterval time.Duration `yaml:"gc_interval" json:"gc_interval"`
}

// ToolsConfig пути до внешних бинарников.
type ToolsConfig struct {
	FFmpeg string `yaml:"ffmpeg" json:"ffmpeg"`
	Rembg  string `yaml:"rembg" json:"rembg"`
	Demucs string `yaml:"demucs" json:"demucs"`
}

type DemucsConfig struct {
	Model         string  `yaml:"model" json:"model"`
	Overlap       float64 `yaml:"overlap" json:"overlap"`
	Shifts        int     `yaml:"shifts" json:"shifts"`
	Device        string  `yaml:"device" json:"device"`
	MaxConcurrent int     `yaml:"max_concurrent" json:"max_concurrent"`
}

type YouTubeConfig struct {
	// InlineErrors рендерит ошибки /yt2mp4 в странице со статусом 200.
	InlineErrors bool `yaml:"inline_errors" json:"inline_errors"`
	Concurrency  int  `yaml:"concurrency" json:"concurrency"`
}

// Default возвращает конфигурацию, с которой сервис стартует без файла.
func Default() *Config {
	return &Config{
		ListenAddr: ":5100",
		LogLevel:   "info",
		LogFormat:  "text",
		Server: ServerConfig{
			MaxUploadBytes: 512 << 20,
			RequestTimeout: 10 * time.Minute,
			RateBurst:      5,
		},
		Scratch: ScratchConfig{
			Dir:        filepath.Join(os.TempDir(), "media_lite"),
			TTL:        6 * time.Hour,
			GCInterval: 30 * time.Minute,
		},
		Tools: ToolsConfig{
			FFmpeg: "ffmpeg",
			Rembg:  "rembg",
			Demucs: "demucs",
		},
		Demucs: DemucsConfig{
			Model:         "htdemucs",
			Overlap:       0.25,
			Shifts:        1,
			Device:        "cpu",
			MaxConcurrent: 1,
		},
		YouTube: YouTubeConfig{
			InlineErrors: true,
			Concurrency:  4,
		},
	}
}

// Load читает .env и YAML-конфигурацию, применяет ENV-переопределения и возвращает актуальную структуру.
// Отсутствующий файл конфигурации не ошибка: остаются значения по умолчанию.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	c := Default()

	path := getenv("CONFIG_PATH", "./config.yaml")
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	if err := c.applyEnv(); err != nil {
		return nil, err
	}

	return c, nil
}

// ENV override
func (c *Config) applyEnv() error {
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	if v := os.Getenv("SCRATCH_DIR"); v != "" {
		c.Scratch.Dir = v
	}
	if v := os.Getenv("FFMPEG_BIN"); v != "" {
		c.Tools.FFmpeg = v
	}
	if v := os.Getenv("REMBG_BIN"); v != "" {
		c.Tools.Rembg = v
	}
	if v := os.Getenv("DEMUCS_BIN"); v != "" {
		c.Tools.Demucs = v
	}
	if v := os.Getenv("DEMUCS_MODEL"); v != "" {
		c.Demucs.Model = v
	}

	var err error
	if c.Server.MaxUploadBytes, err = envInt64("MAX_UPLOAD_BYTES", c.Server.MaxUploadBytes); err != nil {
		return err
	}
	if c.Server.RequestTimeout, err = envDuration("REQUEST_TIMEOUT", c.Server.RequestTimeout); err != nil {
		return err
	}
	if c.Server.RateLimit, err = envFloat("RATE_LIMIT", c.Server.RateLimit); err != nil {
		return err
	}
	if c.Server.RateBurst, err = envInt("RATE_BURST", c.Server.RateBurst); err != nil {
		return err
	}
	if c.Scratch.TTL, err = envDuration("SCRATCH_TTL", c.Scratch.TTL); err != nil {
		return err
	}
	if c.Scratch.GCInterval, err = envDuration("SCRATCH_GC_INTERVAL", c.Scratch.GCInterval); err != nil {
		return err
	}
	if c.Demucs.MaxConcurrent, err = envInt("DEMUCS_MAX_CONCURRENT", c.Demucs.MaxConcurrent); err != nil {
		return err
	}
	if c.YouTube.Concurrency, err = envInt("YOUTUBE_CONCURRENCY", c.YouTube.Concurrency); err != nil {
		return err
	}
	if c.YouTube.InlineErrors, err = envBool("YOUTUBE_INLINE_ERRORS", c.YouTube.InlineErrors); err != nil {
		return err
	}
	if c.Server.TrustProxy, err = envBool("TRUST_PROXY", c.Server.TrustProxy); err != nil {
		return err
	}

	return nil
}

// Validate проверяет, что значения пригодны для запуска сервиса.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.ListenAddr) == "" {
		errs = append(errs, errors.New("listen_addr is required"))
	}
	if strings.TrimSpace(c.Scratch.Dir) == "" {
		errs = append(errs, errors.New("scratch.dir is required"))
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("server.max_upload_bytes must be > 0"))
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, errors.New("server.request_timeout must be > 0"))
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, errors.New("server.rate_limit must be >= 0"))
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst < 1 {
		errs = append(errs, errors.New("server.rate_burst must be >= 1 when rate_limit is set"))
	}
	if c.Demucs.Overlap < 0 || c.Demucs.Overlap >= 1 {
		errs = append(errs, errors.New("demucs.overlap must be in [0, 1)"))
	}
	if c.Demucs.Shifts < 1 {
		errs = append(errs, errors.New("demucs.shifts must be >= 1"))
	}
	if c.Demucs.MaxConcurrent < 1 {
		errs = append(errs, errors.New("demucs.max_concurrent must be >= 1"))
	}
	if strings.TrimSpace(c.Demucs.Model) == "" {
		errs = append(errs, errors.New("demucs.model is required"))
	}
	if c.YouTube.Concurrency < 1 {
		errs = append(errs, errors.New("youtube.concurrency must be >= 1"))
	}

	return errors.Join(errs...)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}

	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func envInt64(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func envFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return f, nil
}

func envBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return b, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return d, nil
}
