package crates

import (
	"context"
	"errors"
	"sort"
	"sync"

	"crateledger/internal/models"
)

func order(id int64, driverID int64, name string, small, big, smallRecv, bigRecv int64) models.Order {
	o := models.Order{
		ID:                 id,
		Date:               "2024-05-01",
		CrateSmall:         models.NewNullInt64(small),
		CrateBig:           models.NewNullInt64(big),
		CrateSmallReceived: models.NewNullInt64(smallRecv),
		CrateBigReceived:   models.NewNullInt64(bigRecv),
	}
	if driverID != 0 {
		o.DriverID = models.NewNullInt64(driverID)
		o.Driver = &models.Driver{ID: driverID, FullName: name}
	}
	return o
}

// fakeLedger - хранилище реестра в памяти для тестов пакета.
type fakeLedger struct {
	mu      sync.Mutex
	records map[string]models.CrateLedgerRecord
	readErr error
	failFor map[int64]error
	upserts int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{records: make(map[string]models.CrateLedgerRecord), failFor: make(map[int64]error)}
}

func (f *fakeLedger) CrateLedgerByDate(_ context.Context, date string) ([]models.CrateLedgerRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	var out []models.CrateLedgerRecord
	for _, r := range f.records {
		if r.Date == date {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DriverID < out[j].DriverID })
	return out, nil
}

func (f *fakeLedger) UpsertCrateLedger(_ context.Context, records []models.CrateLedgerRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	if len(records) == 0 {
		return nil
	}
	batchErr := NewBatchError(records[0].Date, len(records))
	for _, r := range records {
		if err, ok := f.failFor[r.DriverID]; ok {
			batchErr.Failed[r.DriverID] = err
			continue
		}
		f.records[r.Key()] = r
	}
	if len(batchErr.Failed) > 0 {
		return batchErr
	}
	return nil
}

func (f *fakeLedger) snapshot() map[string]models.CrateLedgerRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]models.CrateLedgerRecord, len(f.records))
	for k, v := range f.records {
		out[k] = v
	}
	return out
}

var errStoreDown = errors.New("store down")
