package crates

import (
	"testing"

	"crateledger/internal/models"
)

func TestReconcile_ManualIssuedIsAdditive(t *testing.T) {
	aggs := NewAggregator("cs", "").Aggregate([]models.Order{order(1, 10, "A", 4, 1, 0, 0)})
	adjustments := map[int64]models.ManualAdjustment{
		10: {DriverID: 10, Issued: models.CrateCounts{Small: 2, Big: 3}},
	}

	s := Reconcile(aggs, nil, adjustments)
	row, ok := s.Row(10)
	if !ok {
		t.Fatal("row for driver 10 missing")
	}
	if got := row.Totals().Issued; got != (models.CrateCounts{Small: 6, Big: 4}) {
		t.Errorf("issued = %+v, want {6 4}", got)
	}
}

func TestReconcile_ManualReceivedOverrides(t *testing.T) {
	aggs := NewAggregator("cs", "").Aggregate([]models.Order{order(1, 10, "A", 10, 10, 10, 7)})

	testCases := []struct {
		name string
		adj  models.ManualAdjustment
		want models.CrateCounts
	}{
		{
			name: "not entered falls back to auto",
			adj:  models.ManualAdjustment{DriverID: 10},
			want: models.CrateCounts{Small: 10, Big: 7},
		},
		{
			name: "explicit zero overrides",
			adj: models.ManualAdjustment{
				DriverID:        10,
				ReceivedEntered: models.CrateFlags{Small: true},
			},
			want: models.CrateCounts{Small: 0, Big: 7},
		},
		{
			name: "entered value replaces, not sums",
			adj: models.ManualAdjustment{
				DriverID:        10,
				Received:        models.CrateCounts{Small: 4, Big: 2},
				ReceivedEntered: models.CrateFlags{Small: true, Big: true},
			},
			want: models.CrateCounts{Small: 4, Big: 2},
		},
	}

	for _, tc := range testCases {
		s := Reconcile(aggs, nil, map[int64]models.ManualAdjustment{10: tc.adj})
		row, _ := s.Row(10)
		if got := row.Totals().Received; got != tc.want {
			t.Errorf("%s: received = %+v, want %+v", tc.name, got, tc.want)
		}
		if got := row.Totals().Auto.Received; got != (models.CrateCounts{Small: 10, Big: 7}) {
			t.Errorf("%s: auto received shown for reference = %+v, want {10 7}", tc.name, got)
		}
	}
}

func TestReconcile_ManualDriverRow(t *testing.T) {
	manual := []models.ManualDriver{{ID: "m1", Name: "Petr", DriverID: 55}}
	adjustments := map[int64]models.ManualAdjustment{
		55: {DriverID: 55, Issued: models.CrateCounts{Small: 3}, Received: models.CrateCounts{Small: 1, Big: 2}},
	}

	s := Reconcile(nil, manual, adjustments)
	if len(s.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(s.Rows))
	}
	row, ok := s.Rows[0].(ManualDriverRow)
	if !ok {
		t.Fatalf("row type = %T, want ManualDriverRow", s.Rows[0])
	}
	tot := row.Totals()
	if tot.Auto != (models.CrateMovement{}) {
		t.Errorf("auto = %+v, want zero", tot.Auto)
	}
	if tot.Issued != (models.CrateCounts{Small: 3}) || tot.Received != (models.CrateCounts{Small: 1, Big: 2}) {
		t.Errorf("totals = %+v", tot)
	}
	if tot.Difference != (models.CrateCounts{Small: 2, Big: -2}) {
		t.Errorf("difference = %+v, want {2 -2}", tot.Difference)
	}
}

func TestReconcile_ManualDriverWithoutAdjustment(t *testing.T) {
	s := Reconcile(nil, []models.ManualDriver{{ID: "m1", Name: "Petr", DriverID: 55}}, nil)
	if len(s.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(s.Rows))
	}
	if tot := s.Rows[0].Totals(); tot.Issued != (models.CrateCounts{}) || tot.Received != (models.CrateCounts{}) {
		t.Errorf("totals = %+v, want zero", tot)
	}
}

func TestReconcile_NoEmptyRows(t *testing.T) {
	// Корректировка для водителя, которого нет ни в заказах, ни среди добавленных, строку не создает.
	s := Reconcile(nil, nil, map[int64]models.ManualAdjustment{99: {DriverID: 99, Issued: models.CrateCounts{Small: 1}}})
	if len(s.Rows) != 0 {
		t.Errorf("rows = %d, want 0", len(s.Rows))
	}
	if s.Totals.Issued != (models.CrateCounts{}) {
		t.Errorf("totals = %+v, want zero", s.Totals)
	}
}

func TestReconcile_Totals(t *testing.T) {
	aggs := NewAggregator("cs", "").Aggregate([]models.Order{
		order(1, 10, "A", 4, 1, 2, 0),
		order(2, 20, "B", 2, 2, 2, 2),
	})
	manual := []models.ManualDriver{{ID: "m", Name: "C", DriverID: 30}}
	adjustments := map[int64]models.ManualAdjustment{
		10: {DriverID: 10, Issued: models.CrateCounts{Small: 1}},
		20: {DriverID: 20, Received: models.CrateCounts{Big: 5}, ReceivedEntered: models.CrateFlags{Big: true}},
		30: {DriverID: 30, Issued: models.CrateCounts{Big: 3}, Received: models.CrateCounts{Small: 1}},
	}

	got := Reconcile(aggs, manual, adjustments).Totals
	want := Totals{
		AutoIssued:     models.CrateCounts{Small: 6, Big: 3},
		AutoReceived:   models.CrateCounts{Small: 4, Big: 2},
		ManualIssued:   models.CrateCounts{Small: 1, Big: 3},
		ManualReceived: models.CrateCounts{Small: 1, Big: 5},
		Issued:         models.CrateCounts{Small: 7, Big: 6},
		Received:       models.CrateCounts{Small: 5, Big: 5},
		Difference:     models.CrateCounts{Small: 2, Big: 1},
	}
	if got != want {
		t.Errorf("totals =\n%+v\nwant\n%+v", got, want)
	}
}

func TestReconcile_OrderDriverRowsFirst(t *testing.T) {
	aggs := NewAggregator("cs", "").Aggregate([]models.Order{order(1, 10, "Zdeněk", 1, 0, 0, 0)})
	manual := []models.ManualDriver{{ID: "m", Name: "Adam", DriverID: 30}}

	s := Reconcile(aggs, manual, nil)
	if _, ok := s.Rows[0].(OrderDriverRow); !ok {
		t.Errorf("first row = %T, want OrderDriverRow", s.Rows[0])
	}
	if _, ok := s.Rows[1].(ManualDriverRow); !ok {
		t.Errorf("second row = %T, want ManualDriverRow", s.Rows[1])
	}
}
