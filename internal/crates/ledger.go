package crates

import (
	"context"
	"fmt"
	"log"

	"crateledger/internal/constants"
	"crateledger/internal/models"
	"crateledger/internal/utils"
)

// BuildRecords превращает сводку в записи реестра за день: по одной на каждую строку,
// значения - итоги строки (авто + ручной ввод).
func BuildRecords(date string, s Summary) []models.CrateLedgerRecord {
	records := make([]models.CrateLedgerRecord, 0, len(s.Rows))
	for _, r := range s.Rows {
		t := r.Totals()
		records = append(records, models.NewCrateLedgerRecord(date, r.DriverID(), models.CrateMovement{
			Issued:   t.Issued,
			Received: t.Received,
		}))
	}
	return records
}

// Rehydration - ручное состояние сессии, восстановленное из сохраненного реестра.
type Rehydration struct {
	Adjustments   map[int64]models.ManualAdjustment
	ManualDrivers []models.ManualDriver
	// Unresolved - driver_id записей, для которых не нашлось ни заказов, ни водителя в справочнике.
	Unresolved []int64
}

// Rehydrate восстанавливает ручные корректировки из записей реестра.
//
// В записи хранится итог, поэтому для водителя с заказами ручная выдача
// восстанавливается как stored.issued минус свежепосчитанная автоматическая выдача
// (не меньше 0). Так повторное сохранение неизменившегося дня ничего не удваивает.
// Принятые ящики восстанавливаются как введенные вручную значения, равные сохраненным.
// Водитель из справочника без заказов в периоде возвращается как добавленный вручную.
func Rehydrate(records []models.CrateLedgerRecord, aggs []DriverAggregate, directory []models.Driver) Rehydration {
	result := Rehydration{Adjustments: make(map[int64]models.ManualAdjustment)}

	aggByID := make(map[int64]DriverAggregate, len(aggs))
	for _, agg := range aggs {
		aggByID[agg.DriverID] = agg
	}
	dirByID := make(map[int64]models.Driver, len(directory))
	for _, d := range directory {
		dirByID[d.ID] = d
	}

	for _, rec := range records {
		stored := rec.Movement()
		adj := models.ManualAdjustment{
			DriverID:        rec.DriverID,
			Received:        stored.Received,
			ReceivedEntered: models.CrateFlags{Small: true, Big: true},
		}

		if agg, ok := aggByID[rec.DriverID]; ok {
			for _, size := range constants.CrateSizes {
				manual := stored.Issued.Get(size) - agg.Issued.Get(size)
				if manual < 0 {
					log.Printf("Rehydrate: запись %s: сохраненная выдача (%s) меньше автоматической (%d < %d), ручная часть обнулена.",
						rec.Key(), size, stored.Issued.Get(size), agg.Issued.Get(size))
					manual = 0
				}
				adj.Issued.Set(size, manual)
			}
			result.Adjustments[rec.DriverID] = adj
			continue
		}

		driver, ok := dirByID[rec.DriverID]
		if !ok {
			log.Printf("Rehydrate: запись %s: водитель не найден ни в заказах, ни в справочнике, пропуск.", rec.Key())
			result.Unresolved = append(result.Unresolved, rec.DriverID)
			continue
		}
		adj.Issued = stored.Issued
		result.Adjustments[rec.DriverID] = adj
		result.ManualDrivers = append(result.ManualDrivers, models.ManualDriver{
			ID:       utils.GenerateUUID(),
			Name:     driver.FullName,
			DriverID: driver.ID,
		})
	}
	return result
}

// Merger сохраняет сводку в реестр и восстанавливает из него ручное состояние.
type Merger struct {
	store LedgerStore
}

func NewMerger(store LedgerStore) *Merger {
	return &Merger{store: store}
}

// Save отправляет записи за день одним пакетом upsert по (date, driver_id).
// Водители, которых нет в пакете, в хранилище не трогаются.
func (m *Merger) Save(ctx context.Context, date string, s Summary) ([]models.CrateLedgerRecord, error) {
	date, err := utils.ValidateDate(date)
	if err != nil {
		return nil, err
	}
	records := BuildRecords(date, s)
	if len(records) == 0 {
		log.Printf("Merger.Save: за %s нет строк для сохранения.", date)
		return records, nil
	}
	if err := m.store.UpsertCrateLedger(ctx, records); err != nil {
		log.Printf("Merger.Save: ошибка сохранения реестра за %s: %v", date, err)
		return nil, fmt.Errorf("сохранение реестра ящиков за %s: %w", date, err)
	}
	log.Printf("Merger.Save: реестр ящиков за %s сохранен (%d записей).", date, len(records))
	return records, nil
}

// Load читает реестр за день и восстанавливает из него ручное состояние.
func (m *Merger) Load(ctx context.Context, date string, aggs []DriverAggregate, directory []models.Driver) (Rehydration, error) {
	date, err := utils.ValidateDate(date)
	if err != nil {
		return Rehydration{}, err
	}
	records, err := m.store.CrateLedgerByDate(ctx, date)
	if err != nil {
		log.Printf("Merger.Load: ошибка чтения реестра за %s: %v", date, err)
		return Rehydration{}, fmt.Errorf("чтение реестра ящиков за %s: %w", date, err)
	}
	return Rehydrate(records, aggs, directory), nil
}
