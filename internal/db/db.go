// Файл: internal/db/db.go
package db

import (
	"database/sql"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

var DB *sql.DB // Глобальная переменная для хранения подключения к БД

// InitDB инициализирует соединение с базой данных и выполняет миграции.
func InitDB(dbURL string) error {
	if dbURL == "" {
		return fmt.Errorf("DATABASE_URL не установлена")
	}

	// Parse the DATABASE_URL
	parsedURL, err := url.Parse(dbURL)
	if err != nil {
		return fmt.Errorf("ошибка парсинга DATABASE_URL: %v", err)
	}
	query := parsedURL.Query()
	if query.Get("sslmode") == "" && isLocalHost(parsedURL.Hostname()) {
		query.Set("sslmode", "disable")
	}
	parsedURL.RawQuery = query.Encode()

	DB, err = sql.Open("postgres", parsedURL.String())
	if err != nil {
		return fmt.Errorf("ошибка подключения к базе данных: %v", err)
	}

	// Set connection pool settings
	DB.SetMaxOpenConns(20)
	DB.SetMaxIdleConns(10)
	DB.SetConnMaxLifetime(5 * time.Minute)

	if err := DB.Ping(); err != nil {
		return fmt.Errorf("ошибка проверки соединения с базой данных: %v", err)
	}
	log.Println("Успешное подключение к базе данных.")

	if err := CreateSchema(DB); err != nil {
		return err
	}
	log.Println("Инициализация базы данных успешно завершена.")
	return nil
}

func isLocalHost(host string) bool {
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}

// CreateSchema создает таблицы, применяет миграции и создает индексы. Идемпотентна.
func CreateSchema(conn *sql.DB) (err error) {
	// Step 1: Create tables if they don't exist
	tx, err := conn.Begin()
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции для создания таблиц: %v", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			log.Printf("Откат транзакции из-за ошибки: %v", err)
			tx.Rollback()
		}
	}()

	// crate_ledger.driver_id без REFERENCES: 0 - корзина "без водителя".
	createTablesSQL := `
        CREATE TABLE IF NOT EXISTS users (
            id SERIAL PRIMARY KEY,
            role TEXT,
            first_name VARCHAR(100),
            last_name VARCHAR(100),
            is_blocked BOOLEAN DEFAULT FALSE,
            created_at TIMESTAMP DEFAULT NOW(),
            updated_at TIMESTAMP DEFAULT NOW()
        );
        CREATE TABLE IF NOT EXISTS orders (
            id SERIAL PRIMARY KEY,
            date DATE,
            driver_id INTEGER REFERENCES users(id),
            crate_small INTEGER,
            crate_big INTEGER,
            crate_small_received INTEGER,
            crate_big_received INTEGER,
            created_at TIMESTAMP DEFAULT NOW(),
            updated_at TIMESTAMP DEFAULT NOW()
        );
        CREATE TABLE IF NOT EXISTS crate_ledger (
            date DATE NOT NULL,
            driver_id BIGINT NOT NULL,
            crate_small_issued INTEGER NOT NULL DEFAULT 0,
            crate_big_issued INTEGER NOT NULL DEFAULT 0,
            crate_small_received INTEGER NOT NULL DEFAULT 0,
            crate_big_received INTEGER NOT NULL DEFAULT 0,
            created_at TIMESTAMP WITHOUT TIME ZONE DEFAULT NOW(),
            updated_at TIMESTAMP WITHOUT TIME ZONE DEFAULT NOW(),
            UNIQUE (date, driver_id)
        );
    `
	if _, err = tx.Exec(createTablesSQL); err != nil {
		return fmt.Errorf("ошибка создания таблиц: %v", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("ошибка фиксации транзакции создания таблиц: %v", err)
	}
	log.Println("Создание таблиц (если не существуют) завершено.")

	// Step 2: Perform schema migrations
	if err = migrateDBSchema(conn); err != nil {
		return fmt.Errorf("ошибка выполнения миграции схемы: %v", err)
	}
	log.Println("Миграция схемы базы данных успешно завершена.")

	// Step 3: Create indexes
	createIndexesSQL := `
        CREATE INDEX IF NOT EXISTS idx_users_role ON users(role);
        CREATE INDEX IF NOT EXISTS idx_orders_date ON orders(date);
        CREATE INDEX IF NOT EXISTS idx_orders_driver_id_date ON orders(driver_id, date);
        CREATE INDEX IF NOT EXISTS idx_crate_ledger_date ON crate_ledger(date);
    `
	indexStatements := strings.Split(strings.TrimSpace(createIndexesSQL), ";")
	for _, stmt := range indexStatements {
		trimmedStmt := strings.TrimSpace(stmt)
		if trimmedStmt == "" {
			continue
		}
		if _, errIdx := conn.Exec(trimmedStmt); errIdx != nil {
			log.Printf("Предупреждение: ошибка при создании индекса ('%s'): %v. Проверьте логи.", trimmedStmt, errIdx)
		}
	}
	log.Println("Создание индексов (если не существуют) завершено.")
	return nil
}

// migrateDBSchema выполняет необходимые миграции схемы базы данных.
// This function should be idempotent.
func migrateDBSchema(conn *sql.DB) error {
	migrations := []struct {
		name string
		sql  string
	}{
		{
			name: "orders.crate_columns",
			sql: `ALTER TABLE orders
                  ADD COLUMN IF NOT EXISTS crate_small INTEGER,
                  ADD COLUMN IF NOT EXISTS crate_big INTEGER,
                  ADD COLUMN IF NOT EXISTS crate_small_received INTEGER,
                  ADD COLUMN IF NOT EXISTS crate_big_received INTEGER;`,
		},
		{
			name: "crate_ledger.updated_at",
			sql:  `ALTER TABLE crate_ledger ADD COLUMN IF NOT EXISTS updated_at TIMESTAMP WITHOUT TIME ZONE DEFAULT NOW();`,
		},
		{
			name: "crate_ledger.date_driver_unique",
			sql: `DO $$
                  BEGIN
                      IF NOT EXISTS (
                          SELECT 1 FROM pg_constraint
                          WHERE conrelid = 'crate_ledger'::regclass
                          AND conname = 'crate_ledger_date_driver_id_key'
                      ) THEN
                          ALTER TABLE crate_ledger ADD CONSTRAINT crate_ledger_date_driver_id_key UNIQUE (date, driver_id);
                      END IF;
                  END$$;`,
		},
	}

	for _, migration := range migrations {
		if _, err := conn.Exec(migration.sql); err != nil {
			if strings.Contains(err.Error(), "already exists") {
				log.Printf("INFO: Миграция '%s' пропущена (объект уже существует). Детали: %v", migration.name, err)
				continue
			}
			return fmt.Errorf("ошибка миграции схемы ('%s'): %v", migration.name, err)
		}
		log.Printf("INFO: Миграция ('%s') успешно применена или объект уже существовал.", migration.name)
	}

	log.Println("Миграция схемы базы данных успешно выполнена (или не требовалась).")
	return nil
}

// CloseDB закрывает соединение с базой данных.
func CloseDB() {
	if DB != nil {
		DB.Close()
		log.Println("Соединение с базой данных закрыто.")
	}
}
