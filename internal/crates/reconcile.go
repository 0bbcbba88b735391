package crates

import (
	"fmt"

	"crateledger/internal/constants"
	"crateledger/internal/models"
)

// Row - строка сводки по водителю. Реализации: OrderDriverRow и ManualDriverRow.
// Интерфейс закрыт (неэкспортируемый метод), других вариантов строк нет.
type Row interface {
	DriverID() int64
	DriverName() string
	Totals() RowTotals
	isRow()
}

// RowTotals - посчитанные значения одной строки.
type RowTotals struct {
	Auto       models.CrateMovement `json:"auto"`
	Manual     models.CrateMovement `json:"manual"`
	Issued     models.CrateCounts   `json:"issued"`
	Received   models.CrateCounts   `json:"received"`
	Difference models.CrateCounts   `json:"difference"`
}

// OrderDriverRow - водитель, у которого есть заказы в периоде.
type OrderDriverRow struct {
	Aggregate  DriverAggregate
	Adjustment models.ManualAdjustment
	totals     RowTotals
}

func (r OrderDriverRow) DriverID() int64    { return r.Aggregate.DriverID }
func (r OrderDriverRow) DriverName() string { return r.Aggregate.DriverName }
func (r OrderDriverRow) Totals() RowTotals  { return r.totals }
func (OrderDriverRow) isRow()               {}

// ManualDriverRow - водитель, добавленный вручную; автоматических значений у него нет.
type ManualDriverRow struct {
	Driver     models.ManualDriver
	Adjustment models.ManualAdjustment
	totals     RowTotals
}

func (r ManualDriverRow) DriverID() int64    { return r.Driver.DriverID }
func (r ManualDriverRow) DriverName() string { return r.Driver.Name }
func (r ManualDriverRow) Totals() RowTotals  { return r.totals }
func (ManualDriverRow) isRow()               {}

// Totals - итоговая строка периода по всем водителям.
type Totals struct {
	AutoIssued     models.CrateCounts `json:"auto_issued"`
	AutoReceived   models.CrateCounts `json:"auto_received"`
	ManualIssued   models.CrateCounts `json:"manual_issued"`
	ManualReceived models.CrateCounts `json:"manual_received"`
	Issued         models.CrateCounts `json:"issued"`
	Received       models.CrateCounts `json:"received"`
	Difference     models.CrateCounts `json:"difference"`
}

// Summary - результат сверки: строки по водителям и итоги.
type Summary struct {
	Rows   []Row
	Totals Totals
}

// Row ищет строку по driver_id.
func (s Summary) Row(driverID int64) (Row, bool) {
	for _, r := range s.Rows {
		if r.DriverID() == driverID {
			return r, true
		}
	}
	return nil, false
}

// Reconcile объединяет автоматический и ручной каналы.
// Строки водителей из заказов идут в порядке aggs, затем вручную добавленные в порядке добавления.
// Водитель без заказов и не добавленный вручную в сводку не попадает.
func Reconcile(aggs []DriverAggregate, manualDrivers []models.ManualDriver, adjustments map[int64]models.ManualAdjustment) Summary {
	rows := make([]Row, 0, len(aggs)+len(manualDrivers))
	for _, agg := range aggs {
		adj := adjustmentFor(adjustments, agg.DriverID)
		rows = append(rows, withTotals(OrderDriverRow{Aggregate: agg, Adjustment: adj}))
	}
	for _, md := range manualDrivers {
		adj := adjustmentFor(adjustments, md.DriverID)
		rows = append(rows, withTotals(ManualDriverRow{Driver: md, Adjustment: adj}))
	}

	var totals Totals
	for _, r := range rows {
		t := r.Totals()
		totals.AutoIssued = totals.AutoIssued.Add(t.Auto.Issued)
		totals.AutoReceived = totals.AutoReceived.Add(t.Auto.Received)
		totals.ManualIssued = totals.ManualIssued.Add(t.Manual.Issued)
		totals.ManualReceived = totals.ManualReceived.Add(t.Manual.Received)
		totals.Issued = totals.Issued.Add(t.Issued)
		totals.Received = totals.Received.Add(t.Received)
	}
	totals.Difference = totals.Issued.Sub(totals.Received)

	return Summary{Rows: rows, Totals: totals}
}

func adjustmentFor(adjustments map[int64]models.ManualAdjustment, driverID int64) models.ManualAdjustment {
	if adj, ok := adjustments[driverID]; ok {
		return adj
	}
	return models.ManualAdjustment{DriverID: driverID}
}

// withTotals считает итоги строки.
// Выдача: ручная всегда прибавляется к автоматической.
// Прием: у водителя с заказами введенное вручную значение заменяет автоматическое, а не суммируется.
func withTotals(r Row) Row {
	switch row := r.(type) {
	case OrderDriverRow:
		t := RowTotals{
			Auto:   row.Aggregate.CrateMovement,
			Manual: models.CrateMovement{Issued: row.Adjustment.Issued, Received: row.Adjustment.Received},
		}
		t.Issued = t.Auto.Issued.Add(row.Adjustment.Issued)
		t.Received = t.Auto.Received
		for _, size := range constants.CrateSizes {
			if v, ok := row.Adjustment.ReceivedOverride(size); ok {
				t.Received.Set(size, v)
			}
		}
		t.Difference = t.Issued.Sub(t.Received)
		row.totals = t
		return row
	case ManualDriverRow:
		t := RowTotals{
			Manual: models.CrateMovement{Issued: row.Adjustment.Issued, Received: row.Adjustment.Received},
		}
		t.Issued = row.Adjustment.Issued
		t.Received = row.Adjustment.Received
		t.Difference = t.Issued.Sub(t.Received)
		row.totals = t
		return row
	default:
		panic(fmt.Sprintf("crates: неизвестный тип строки %T", r))
	}
}
