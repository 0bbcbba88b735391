package db

import (
	"context"
	"sort"
	"sync"

	"crateledger/internal/crates"
	"crateledger/internal/models"
)

// MemoryStore - хранилище в памяти. Используется, когда DATABASE_URL не задан, и в тестах.
type MemoryStore struct {
	mu      sync.RWMutex
	orders  []models.Order
	drivers map[int64]models.Driver
	ledger  map[string]models.CrateLedgerRecord

	readErr    error
	driversErr error
	failFor    map[int64]error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		drivers: make(map[int64]models.Driver),
		ledger:  make(map[string]models.CrateLedgerRecord),
		failFor: make(map[int64]error),
	}
}

var (
	_ crates.OrderSource     = (*MemoryStore)(nil)
	_ crates.DriverDirectory = (*MemoryStore)(nil)
	_ crates.LedgerStore     = (*MemoryStore)(nil)
)

// AddDriver добавляет водителя в справочник.
func (m *MemoryStore) AddDriver(d models.Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[d.ID] = d
}

// AddOrder добавляет заказ. Имя водителя подставляется из справочника, если не задано.
func (m *MemoryStore) AddOrder(o models.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o.DriverID.Valid && o.Driver == nil {
		if d, ok := m.drivers[o.DriverID.Int64]; ok {
			o.Driver = &models.Driver{ID: d.ID, FullName: d.FullName}
		}
	}
	m.orders = append(m.orders, o)
}

// SetReadError заставляет CrateLedgerByDate возвращать err (nil - снять).
func (m *MemoryStore) SetReadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readErr = err
}

// SetDriversError заставляет AllDrivers возвращать err (nil - снять).
func (m *MemoryStore) SetDriversError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.driversErr = err
}

// FailUpsertFor заставляет запись водителя driverID падать с err (nil - снять).
func (m *MemoryStore) FailUpsertFor(driverID int64, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failFor, driverID)
		return
	}
	m.failFor[driverID] = err
}

func (m *MemoryStore) OrdersForPeriod(ctx context.Context, from, to string) ([]models.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Order
	for _, o := range m.orders {
		// YYYY-MM-DD сравнивается лексикографически.
		if o.Date >= from && o.Date <= to {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *MemoryStore) AllDrivers(ctx context.Context) ([]models.Driver, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.driversErr != nil {
		return nil, m.driversErr
	}

	out := make([]models.Driver, 0, len(m.drivers))
	for _, d := range m.drivers {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) CrateLedgerByDate(ctx context.Context, date string) ([]models.CrateLedgerRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.readErr != nil {
		return nil, m.readErr
	}

	var out []models.CrateLedgerRecord
	for _, r := range m.ledger {
		if r.Date == date {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DriverID < out[j].DriverID })
	return out, nil
}

func (m *MemoryStore) UpsertCrateLedger(ctx context.Context, records []models.CrateLedgerRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	batchErr := crates.NewBatchError(records[0].Date, len(records))
	for _, r := range records {
		if err, ok := m.failFor[r.DriverID]; ok {
			batchErr.Failed[r.DriverID] = err
			continue
		}
		m.ledger[r.Key()] = r
	}
	if len(batchErr.Failed) > 0 {
		return batchErr
	}
	return nil
}
