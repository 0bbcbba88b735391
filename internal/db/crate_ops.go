package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"crateledger/internal/constants"
	"crateledger/internal/crates"
	"crateledger/internal/models"
)

// PostgresStore - источник заказов, справочник водителей и реестр ящиков поверх PostgreSQL.
type PostgresStore struct {
	conn *sql.DB
}

// NewPostgresStore оборачивает открытое соединение (обычно db.DB).
func NewPostgresStore(conn *sql.DB) *PostgresStore {
	return &PostgresStore{conn: conn}
}

var (
	_ crates.OrderSource     = (*PostgresStore)(nil)
	_ crates.DriverDirectory = (*PostgresStore)(nil)
	_ crates.LedgerStore     = (*PostgresStore)(nil)
)

const driverFullNameSQL = `TRIM(CONCAT(u.first_name, ' ', u.last_name))`

// OrdersForPeriod возвращает заказы с датой в [from, to] вместе с именем водителя.
func (s *PostgresStore) OrdersForPeriod(ctx context.Context, from, to string) ([]models.Order, error) {
	query := `
        SELECT o.id, to_char(o.date, 'YYYY-MM-DD'), o.driver_id, COALESCE(` + driverFullNameSQL + `, ''),
               o.crate_small, o.crate_big, o.crate_small_received, o.crate_big_received
        FROM orders o
        LEFT JOIN users u ON u.id = o.driver_id
        WHERE o.date BETWEEN $1 AND $2
        ORDER BY o.id ASC`
	rows, err := s.conn.QueryContext(ctx, query, from, to)
	if err != nil {
		log.Printf("OrdersForPeriod: ошибка запроса заказов за %s..%s: %v", from, to, err)
		return nil, err
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		var driverName string
		if err := rows.Scan(&o.ID, &o.Date, &o.DriverID, &driverName,
			&o.CrateSmall, &o.CrateBig, &o.CrateSmallReceived, &o.CrateBigReceived); err != nil {
			log.Printf("OrdersForPeriod: ошибка сканирования заказа: %v", err)
			return nil, err
		}
		if o.DriverID.Valid {
			o.Driver = &models.Driver{ID: o.DriverID.Int64, FullName: driverName}
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

// AllDrivers возвращает незаблокированных пользователей с ролью водителя.
func (s *PostgresStore) AllDrivers(ctx context.Context) ([]models.Driver, error) {
	query := `
        SELECT u.id, ` + driverFullNameSQL + `
        FROM users u
        WHERE u.role = $1 AND COALESCE(u.is_blocked, FALSE) = FALSE
        ORDER BY u.id ASC`
	rows, err := s.conn.QueryContext(ctx, query, constants.ROLE_DRIVER)
	if err != nil {
		log.Printf("AllDrivers: ошибка запроса водителей: %v", err)
		return nil, err
	}
	defer rows.Close()

	var drivers []models.Driver
	for rows.Next() {
		var d models.Driver
		if err := rows.Scan(&d.ID, &d.FullName); err != nil {
			log.Printf("AllDrivers: ошибка сканирования водителя: %v", err)
			return nil, err
		}
		drivers = append(drivers, d)
	}
	return drivers, rows.Err()
}

// CrateLedgerByDate возвращает сохраненные записи реестра за день.
func (s *PostgresStore) CrateLedgerByDate(ctx context.Context, date string) ([]models.CrateLedgerRecord, error) {
	query := `
        SELECT to_char(date, 'YYYY-MM-DD'), driver_id,
               crate_small_issued, crate_big_issued, crate_small_received, crate_big_received
        FROM crate_ledger
        WHERE date = $1
        ORDER BY driver_id ASC`
	rows, err := s.conn.QueryContext(ctx, query, date)
	if err != nil {
		log.Printf("CrateLedgerByDate: ошибка чтения реестра за %s: %v", date, err)
		return nil, err
	}
	defer rows.Close()

	var records []models.CrateLedgerRecord
	for rows.Next() {
		var r models.CrateLedgerRecord
		if err := rows.Scan(&r.Date, &r.DriverID,
			&r.CrateSmallIssued, &r.CrateBigIssued, &r.CrateSmallReceived, &r.CrateBigReceived); err != nil {
			log.Printf("CrateLedgerByDate: ошибка сканирования записи: %v", err)
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

const upsertCrateLedgerSQL = `
        INSERT INTO crate_ledger (date, driver_id, crate_small_issued, crate_big_issued,
                                  crate_small_received, crate_big_received, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
        ON CONFLICT (date, driver_id) DO UPDATE SET
            crate_small_issued = EXCLUDED.crate_small_issued,
            crate_big_issued = EXCLUDED.crate_big_issued,
            crate_small_received = EXCLUDED.crate_small_received,
            crate_big_received = EXCLUDED.crate_big_received,
            updated_at = NOW()`

// UpsertCrateLedger записывает каждую запись отдельным upsert по (date, driver_id).
// Ошибка одной записи не отменяет остальные; сбойные собираются в *crates.BatchError.
func (s *PostgresStore) UpsertCrateLedger(ctx context.Context, records []models.CrateLedgerRecord) error {
	if len(records) == 0 {
		return nil
	}
	batchErr := crates.NewBatchError(records[0].Date, len(records))
	for i, r := range records {
		_, err := s.conn.ExecContext(ctx, upsertCrateLedgerSQL, r.Date, r.DriverID,
			r.CrateSmallIssued, r.CrateBigIssued, r.CrateSmallReceived, r.CrateBigReceived)
		if err != nil {
			log.Printf("UpsertCrateLedger: ошибка записи %s: %v", r.Key(), err)
			batchErr.Failed[r.DriverID] = err
			if ctx.Err() != nil {
				// Контекст отменен: остальные записи тоже не пройдут.
				markRemainingFailed(batchErr, records[i+1:], ctx.Err())
				break
			}
		}
	}
	if len(batchErr.Failed) > 0 {
		return batchErr
	}
	log.Printf("UpsertCrateLedger: записано %d записей реестра за %s.", len(records), records[0].Date)
	return nil
}

func markRemainingFailed(batchErr *crates.BatchError, records []models.CrateLedgerRecord, cause error) {
	for _, r := range records {
		batchErr.Failed[r.DriverID] = fmt.Errorf("запись %s не выполнена: %w", r.Key(), cause)
	}
}
