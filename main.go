package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"crateledger/internal/api"
	"crateledger/internal/config"
	"crateledger/internal/crates"
	"crateledger/internal/db"
	"crateledger/internal/session"
)

// ledgerBackend объединяет все интерфейсы хранилища, нужные API.
type ledgerBackend interface {
	crates.OrderSource
	crates.DriverDirectory
	crates.LedgerStore
}

func main() {
	// --- Блок инициализации ---
	err := godotenv.Load()
	if err != nil {
		log.Println("Предупреждение: не удалось загрузить файл .env. Переменные окружения должны быть установлены иным способом.")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Критическая ошибка: не удалось загрузить конфигурацию: %v", err)
	}

	var store ledgerBackend
	if cfg.UseMemoryStore() {
		log.Println("Предупреждение: используется хранилище в памяти, реестр не переживет перезапуск.")
		store = db.NewMemoryStore()
	} else {
		if err := db.InitDB(cfg.DatabaseURL); err != nil {
			log.Fatalf("Критическая ошибка: не удалось инициализировать базу данных: %v", err)
		}
		defer db.CloseDB()
		store = db.NewPostgresStore(db.DB)
	}

	sessionManager := session.NewSessionManager()
	aggregator := crates.NewAggregator(cfg.CollationLocale, cfg.NoDriverLabel)

	// --- Настройка роутера и Middleware ---
	apiRouter := chi.NewRouter()

	// ГЛОБАЛЬНЫЕ MIDDLEWARES ДОЛЖНЫ ИДТИ ПЕРЕД api.SetupRoutes
	apiRouter.Use(middleware.RequestID)
	apiRouter.Use(middleware.Logger)
	apiRouter.Use(middleware.Recoverer)
	apiRouter.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	api.SetupRoutes(apiRouter, api.ApiDependencies{
		Config:     cfg,
		Sessions:   sessionManager,
		Orders:     store,
		Drivers:    store,
		Ledger:     store,
		Aggregator: aggregator,
	})

	// Обработка запроса иконки, чтобы избежать ошибки 404 в логах
	apiRouter.Get("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           apiRouter,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Printf("Запуск HTTP-сервера реестра ящиков на порту %s (ENV=%s)", cfg.Port, cfg.AppEnv)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("КРИТИЧЕСКАЯ ОШИБКА: не удалось запустить HTTP-сервер: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Получен сигнал остановки, завершаем работу...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Ошибка при остановке HTTP-сервера: %v", err)
	}
	log.Printf("Сервер остановлен, открытых сессий отброшено: %d.", sessionManager.Count())
}
