package crates

import (
	"reflect"
	"testing"

	"crateledger/internal/constants"
	"crateledger/internal/models"
)

func TestAggregate_SumsPerDriver(t *testing.T) {
	agg := NewAggregator("cs", "")
	orders := []models.Order{
		order(1, 10, "A", 2, 0, 0, 0),
		order(2, 10, "A", 3, 1, 1, 0),
		order(3, 20, "B", 1, 0, 0, 2),
	}

	got := agg.Aggregate(orders)
	if len(got) != 2 {
		t.Fatalf("Aggregate() returned %d rows, want 2", len(got))
	}
	if got[0].DriverID != 10 || got[0].Issued.Small != 5 || got[0].Issued.Big != 1 || got[0].Received.Small != 1 {
		t.Errorf("driver A = %+v, want issued_small=5 issued_big=1 received_small=1", got[0])
	}
	if got[0].OrderCount != 2 {
		t.Errorf("driver A order count = %d, want 2", got[0].OrderCount)
	}
	if got[1].DriverID != 20 || got[1].Issued.Small != 1 || got[1].Received.Big != 2 {
		t.Errorf("driver B = %+v, want issued_small=1 received_big=2", got[1])
	}
}

func TestAggregate_NullFieldsAreZero(t *testing.T) {
	agg := NewAggregator("cs", "")
	o := models.Order{ID: 1, DriverID: models.NewNullInt64(5), Driver: &models.Driver{ID: 5, FullName: "Eva"}}
	o.CrateSmall = models.NewNullInt64(-3)

	got := agg.Aggregate([]models.Order{o})
	if len(got) != 1 {
		t.Fatalf("Aggregate() returned %d rows, want 1", len(got))
	}
	if got[0].Issued != (models.CrateCounts{}) || got[0].Received != (models.CrateCounts{}) {
		t.Errorf("movement = %+v, want all zero", got[0].CrateMovement)
	}
}

func TestAggregate_NoDriverBucketIsLast(t *testing.T) {
	// Имя корзины начинается на "A", но она все равно должна быть последней.
	agg := NewAggregator("cs", "Aaa bez řidiče")
	orders := []models.Order{
		order(1, 0, "", 1, 0, 0, 0),
		order(2, 30, "Žaneta", 1, 0, 0, 0),
		order(3, 0, "", 2, 0, 0, 0),
		order(4, 40, "Bohumil", 1, 0, 0, 0),
	}

	got := agg.Aggregate(orders)
	if len(got) != 3 {
		t.Fatalf("Aggregate() returned %d rows, want 3", len(got))
	}
	last := got[len(got)-1]
	if !last.NoDriver || last.DriverID != constants.NO_DRIVER_ID {
		t.Errorf("last row = %+v, want no-driver bucket", last)
	}
	if last.Issued.Small != 3 {
		t.Errorf("no-driver issued_small = %d, want 3", last.Issued.Small)
	}
	if last.DriverName != "Aaa bez řidiče" {
		t.Errorf("no-driver name = %q", last.DriverName)
	}
}

func TestAggregate_CzechCollation(t *testing.T) {
	agg := NewAggregator("cs", "")
	// В чешском "ch" идет после "h", а "č" - после "c".
	orders := []models.Order{
		order(1, 1, "Chalupa", 1, 0, 0, 0),
		order(2, 2, "Hrubý", 1, 0, 0, 0),
		order(3, 3, "Čermák", 1, 0, 0, 0),
		order(4, 4, "Cibulka", 1, 0, 0, 0),
	}

	got := agg.Aggregate(orders)
	var names []string
	for _, a := range got {
		names = append(names, a.DriverName)
	}
	want := []string{"Cibulka", "Čermák", "Hrubý", "Chalupa"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("order = %v, want %v", names, want)
	}
}

func TestAggregate_Deterministic(t *testing.T) {
	agg := NewAggregator("cs", "")
	orders := []models.Order{
		order(1, 7, "Same", 1, 0, 0, 0),
		order(2, 3, "Same", 2, 0, 0, 0),
		order(3, 0, "", 1, 1, 1, 1),
	}

	first := agg.Aggregate(orders)
	for i := 0; i < 5; i++ {
		if again := agg.Aggregate(orders); !reflect.DeepEqual(first, again) {
			t.Fatalf("Aggregate() not stable: %+v vs %+v", first, again)
		}
	}
	if first[0].DriverID != 3 || first[1].DriverID != 7 {
		t.Errorf("equal names must be ordered by id, got %d, %d", first[0].DriverID, first[1].DriverID)
	}
}

func TestAggregate_EmptyInput(t *testing.T) {
	if got := NewAggregator("cs", "").Aggregate(nil); len(got) != 0 {
		t.Errorf("Aggregate(nil) = %+v, want empty", got)
	}
}

func TestSortDrivers(t *testing.T) {
	drivers := []models.Driver{{ID: 2, FullName: "Šimon"}, {ID: 1, FullName: "Adam"}, {ID: 3, FullName: "Sára"}}
	NewAggregator("cs", "").SortDrivers(drivers)
	if drivers[0].FullName != "Adam" || drivers[1].FullName != "Sára" || drivers[2].FullName != "Šimon" {
		t.Errorf("SortDrivers() = %+v", drivers)
	}
}
