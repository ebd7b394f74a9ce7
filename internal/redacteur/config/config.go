// Управление конфигурацией сервиса из переменных окружения.
// Содержит структуру Config и функции ReadConfig/Load для ее загрузки.
//
// Основные возможности:
//   - Загрузка конфигурации из переменных окружения по тегам env.
//   - Значения по умолчанию и проверка обязательных переменных.
//   - Ошибка загрузки при нечисловом или нелогическом значении.
//   - Маскировка секретных значений в логах.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	SecretKey string `env:"SECRET_KEY"`

	DatabaseDSN string `env:"DATABASE_URL"`

	WebURLRaw string `env:"WEB_URL"`
	WebURL    *url.URL

	BackendURLRaw string `env:"BACKEND_URL"`
	BackendURL    *url.URL
	BackendToken  string `env:"BACKEND_TOKEN"`

	ListenAddr  string `env:"LISTEN_ADDR"`
	MetricsAddr string `env:"METRICS_ADDR"`

	AWSRegion     string `env:"AWS_REGION"`
	AWSAccessKey  string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretKey  string `env:"AWS_SECRET_ACCESS_KEY"`
	AWSEndpoint   string `env:"AWS_S3_ENDPOINT_URL"`
	AWSBucketName string `env:"AWS_S3_BUCKET_NAME"`

	FilesPath string `env:"FILES_PATH"`

	FetchTimeoutSec int `env:"FETCH_TIMEOUT"`
	FetchRetries    int `env:"FETCH_RETRIES"`

	Locale string `env:"LOCALE"`

	OrphanCommentsGC string `env:"ORPHAN_COMMENTS_GC"`

	SwaggerEnable bool `env:"SWAGGER"`
}

const (
	DefaultDSN         = "sqlite://redacteur.db"
	DefaultListenAddr  = ":8080"
	DefaultMetricsAddr = ":2112"
	DefaultFilesPath   = "./files"
	DefaultLocale      = "fr-FR"
	DefaultOrphanGC    = "0 3 * * *"
	DefaultFetchSec    = 15
	DefaultRetries     = 2
)

// ReadConfig загружает конфигурацию и завершает процесс при ошибке.
func ReadConfig() *Config {
	config, err := Load()
	if err != nil {
		slog.Error("Read config", "err", err)
		os.Exit(1)
	}
	return config
}

// Load загружает конфигурацию из окружения и подставляет значения по умолчанию.
func Load() (*Config, error) {
	config := &Config{}

	set, err := envConfig("env", config)
	if err != nil {
		return nil, err
	}

	// Check required envs
	if config.SecretKey == "" {
		return nil, errors.New("SECRET_KEY is required")
	}
	if config.WebURLRaw == "" {
		return nil, errors.New("WEB_URL is required")
	}

	config.WebURL, err = url.Parse(config.WebURLRaw)
	if err != nil {
		return nil, fmt.Errorf("WEB_URL incorrect: %w", err)
	}

	if config.BackendURLRaw == "" {
		config.BackendURL = config.WebURL
	} else if config.BackendURL, err = url.Parse(config.BackendURLRaw); err != nil {
		return nil, fmt.Errorf("BACKEND_URL incorrect: %w", err)
	}

	if config.DatabaseDSN == "" {
		config.DatabaseDSN = DefaultDSN
	}
	if config.ListenAddr == "" {
		config.ListenAddr = DefaultListenAddr
	}
	if config.MetricsAddr == "" {
		config.MetricsAddr = DefaultMetricsAddr
	}
	if config.FilesPath == "" {
		config.FilesPath = DefaultFilesPath
	}
	if config.Locale == "" {
		config.Locale = DefaultLocale
	}
	if config.OrphanCommentsGC == "" {
		config.OrphanCommentsGC = DefaultOrphanGC
	}
	if config.FetchTimeoutSec <= 0 {
		config.FetchTimeoutSec = DefaultFetchSec
	}
	if config.FetchRetries < 0 || !set["FETCH_RETRIES"] {
		config.FetchRetries = DefaultRetries
	}

	return config, nil
}

// FetchTimeout - таймаут одной загрузки блока.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSec) * time.Second
}

// MinioEnabled сообщает, что подписи хранятся в S3-совместимом хранилище.
func (c *Config) MinioEnabled() bool {
	return c.AWSEndpoint != ""
}

// envConfig присваивает полям структуры значения переменных окружения из тега key.
// Пустые переменные пропускаются. Возвращает набор заданных переменных.
func envConfig(key string, s any) (map[string]bool, error) {
	set := make(map[string]bool)
	v := reflect.ValueOf(s).Elem()
	typeParam := v.Type()
	for i := 0; i < v.NumField(); i++ {
		fName := typeParam.Field(i).Name
		fEnvTag := typeParam.Field(i).Tag.Get(key)
		if fEnvTag == "" {
			continue
		}

		val, ok := os.LookupEnv(fEnvTag)
		if !ok || val == "" {
			continue
		}

		switch v.Field(i).Kind() {
		case reflect.String:
			v.Field(i).SetString(val)
		case reflect.Int:
			n, err := strconv.Atoi(strings.TrimSpace(val))
			if err != nil {
				return nil, fmt.Errorf("%s must be an integer, got %q", fEnvTag, val)
			}
			v.Field(i).SetInt(int64(n))
		case reflect.Bool:
			b, err := strconv.ParseBool(strings.TrimSpace(val))
			if err != nil {
				return nil, fmt.Errorf("%s must be a boolean, got %q", fEnvTag, val)
			}
			v.Field(i).SetBool(b)
		default:
			continue
		}
		set[fEnvTag] = true

		// Secure passwords in log
		logValue := val
		if isSecret(fName) {
			logValue = mask(val)
		}
		slog.Info("Set config value",
			slog.String("key", typeParam.Name()+"."+fName),
			slog.String("value", logValue),
			slog.String("source", "ENVIRONMENT"),
		)
	}
	return set, nil
}

func isSecret(name string) bool {
	name = strings.ToLower(name)
	return strings.Contains(name, "pass") || strings.Contains(name, "secret") ||
		strings.Contains(name, "token") || strings.Contains(name, "accesskey")
}

// mask оставляет первый и последний символ значения.
func mask(val string) string {
	runes := []rune(val)
	if len(runes) <= 2 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[0]) + strings.Repeat("*", len(runes)-2) + string(runes[len(runes)-1])
}
