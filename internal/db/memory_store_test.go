package db

import (
	"context"
	"errors"
	"testing"

	"crateledger/internal/crates"
	"crateledger/internal/models"
)

func TestMemoryStore_OrdersForPeriod(t *testing.T) {
	m := NewMemoryStore()
	m.AddDriver(models.Driver{ID: 7, FullName: "Jan Novák"})
	for i, date := range []string{"2024-04-30", "2024-05-01", "2024-05-02", "2024-05-03"} {
		m.AddOrder(models.Order{ID: int64(i + 1), Date: date, DriverID: models.NewNullInt64(7)})
	}

	orders, err := m.OrdersForPeriod(context.Background(), "2024-05-01", "2024-05-02")
	if err != nil {
		t.Fatal(err)
	}
	if len(orders) != 2 || orders[0].ID != 2 || orders[1].ID != 3 {
		t.Errorf("orders = %+v", orders)
	}
	if orders[0].DriverName() != "Jan Novák" {
		t.Errorf("driver name not resolved: %q", orders[0].DriverName())
	}
}

func TestMemoryStore_UpsertOverwritesByKey(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	first := []models.CrateLedgerRecord{
		{Date: "2024-05-01", DriverID: 7, CrateSmallIssued: 5},
		{Date: "2024-05-01", DriverID: 9, CrateBigIssued: 4},
	}
	if err := m.UpsertCrateLedger(ctx, first); err != nil {
		t.Fatal(err)
	}
	if err := m.UpsertCrateLedger(ctx, []models.CrateLedgerRecord{{Date: "2024-05-01", DriverID: 7, CrateSmallIssued: 6}}); err != nil {
		t.Fatal(err)
	}

	got, err := m.CrateLedgerByDate(ctx, "2024-05-01")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].CrateSmallIssued != 6 || got[1].CrateBigIssued != 4 {
		t.Errorf("records = %+v", got)
	}
	if other, _ := m.CrateLedgerByDate(ctx, "2024-05-02"); len(other) != 0 {
		t.Errorf("other day has records: %+v", other)
	}
}

func TestMemoryStore_InjectedFailures(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	boom := errors.New("boom")

	m.FailUpsertFor(9, boom)
	err := m.UpsertCrateLedger(ctx, []models.CrateLedgerRecord{
		{Date: "2024-05-01", DriverID: 7},
		{Date: "2024-05-01", DriverID: 9},
	})
	var batchErr *crates.BatchError
	if !errors.As(err, &batchErr) || !errors.Is(err, boom) {
		t.Fatalf("error = %v", err)
	}

	m.SetReadError(boom)
	if _, err := m.CrateLedgerByDate(ctx, "2024-05-01"); !errors.Is(err, boom) {
		t.Errorf("read error = %v", err)
	}
	m.SetReadError(nil)
	got, _ := m.CrateLedgerByDate(ctx, "2024-05-01")
	if len(got) != 1 || got[0].DriverID != 7 {
		t.Errorf("records after partial failure = %+v", got)
	}
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	m := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := m.AllDrivers(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("AllDrivers() error = %v", err)
	}
}
