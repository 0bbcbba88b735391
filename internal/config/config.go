// internal/config/config.go
package config

import (
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"

	"crateledger/internal/constants"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL string
	AppEnv      string
	Port        string
	DBHost      string
	DBPort      string
	DBUser      string
	DBName      string

	// NoDriverLabel - имя строки для заказов без водителя.
	NoDriverLabel string
	// CollationLocale - локаль сортировки имен водителей (BCP 47).
	CollationLocale string

	CORSAllowedOrigins []string
	// StoreTimeout - ограничение на одно обращение к хранилищу из HTTP-обработчика.
	StoreTimeout time.Duration
}

// UseMemoryStore - true, если БД не настроена и данные живут только в памяти процесса.
func (c *Config) UseMemoryStore() bool {
	return c.DatabaseURL == ""
}

// LoadConfig загружает конфигурацию из переменных окружения.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		AppEnv:          os.Getenv("ENV"),
		Port:            os.Getenv("PORT"),
		NoDriverLabel:   strings.TrimSpace(os.Getenv("NO_DRIVER_LABEL")),
		CollationLocale: strings.TrimSpace(os.Getenv("COLLATION_LOCALE")),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.AppEnv == "" {
		cfg.AppEnv = "dev"
	}
	if cfg.NoDriverLabel == "" {
		cfg.NoDriverLabel = constants.DEFAULT_NO_DRIVER_LABEL
	}

	if cfg.CollationLocale == "" {
		cfg.CollationLocale = constants.DEFAULT_COLLATION_LOCALE
	} else if _, err := language.Parse(cfg.CollationLocale); err != nil {
		log.Printf("Предупреждение: некорректное значение COLLATION_LOCALE ('%s'): %v. Используется '%s'.", cfg.CollationLocale, err, constants.DEFAULT_COLLATION_LOCALE)
		cfg.CollationLocale = constants.DEFAULT_COLLATION_LOCALE
	}

	origins := os.Getenv("CORS_ALLOWED_ORIGINS")
	if origins == "" {
		cfg.CORSAllowedOrigins = []string{"https://*", "http://*"}
	} else {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
			}
		}
	}

	cfg.StoreTimeout = 10 * time.Second
	if raw := os.Getenv("STORE_TIMEOUT_SECONDS"); raw != "" {
		seconds, errParse := strconv.Atoi(raw)
		if errParse != nil || seconds <= 0 {
			log.Printf("Предупреждение: некорректное значение STORE_TIMEOUT_SECONDS ('%s'): %v. Используется значение по умолчанию 10.", raw, errParse)
		} else {
			cfg.StoreTimeout = time.Duration(seconds) * time.Second
		}
	}

	if cfg.DatabaseURL == "" {
		log.Println("Предупреждение: DATABASE_URL не установлен. Данные будут храниться только в памяти процесса.")
	} else {
		parsedURL, parseErr := url.Parse(cfg.DatabaseURL)
		if parseErr != nil {
			log.Printf("Критическая ошибка: ошибка парсинга DATABASE_URL: %v", parseErr)
		} else {
			cfg.DBHost = parsedURL.Hostname()
			cfg.DBPort = parsedURL.Port()
			if cfg.DBPort == "" {
				cfg.DBPort = "5432"
			}
			cfg.DBUser = parsedURL.User.Username()
			cfg.DBName = strings.TrimPrefix(parsedURL.Path, "/")
		}
	}

	log.Println("Конфигурация загружена.")
	return cfg, nil
}
