package session

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"crateledger/internal/constants"
	"crateledger/internal/crates"
	"crateledger/internal/models"
	"crateledger/internal/utils"
)

var (
	ErrUnknownCrateSize   = errors.New("неизвестный размер ящика")
	ErrDriverNotInSession = errors.New("водитель отсутствует в текущей сессии")
	ErrSaveInProgress     = errors.New("сохранение уже выполняется")
)

// EditingSession - состояние одного открытого окна реестра ящиков:
// автоматические итоги периода, ручные корректировки и вручную добавленные водители.
// Создается заново при открытии окна и выбрасывается при закрытии;
// несохраненные правки при этом теряются.
type EditingSession struct {
	ID       string
	From     string
	To       string
	OpenedAt time.Time

	mu            sync.Mutex
	degraded      bool
	aggregates    []crates.DriverAggregate
	orderDrivers  map[int64]bool
	adjustments   map[int64]models.ManualAdjustment
	manualDrivers []models.ManualDriver
	saving        bool
}

// NewEditingSession создает сессию для периода с уже посчитанными итогами по заказам.
func NewEditingSession(id, from, to string, aggs []crates.DriverAggregate) *EditingSession {
	es := &EditingSession{
		ID:           id,
		From:         from,
		To:           to,
		OpenedAt:     time.Now(),
		aggregates:   append([]crates.DriverAggregate(nil), aggs...),
		orderDrivers: make(map[int64]bool, len(aggs)),
		adjustments:  make(map[int64]models.ManualAdjustment),
	}
	for _, agg := range aggs {
		es.orderDrivers[agg.DriverID] = true
	}
	return es
}

// IsSingleDay - true, если период состоит из одного дня (только такой можно сохранить).
func (es *EditingSession) IsSingleDay() bool {
	return es.From == es.To
}

// MarkDegraded отмечает, что реестр не удалось прочитать при открытии
// и показываются только автоматические итоги.
func (es *EditingSession) MarkDegraded() {
	es.mu.Lock()
	defer es.mu.Unlock()
	es.degraded = true
}

func (es *EditingSession) Degraded() bool {
	es.mu.Lock()
	defer es.mu.Unlock()
	return es.degraded
}

// Aggregates возвращает копию автоматических итогов.
func (es *EditingSession) Aggregates() []crates.DriverAggregate {
	es.mu.Lock()
	defer es.mu.Unlock()
	return append([]crates.DriverAggregate(nil), es.aggregates...)
}

// SetManualIssued задает ручную выдачу. raw - свободный ввод, мусор приводится к 0.
func (es *EditingSession) SetManualIssued(driverID int64, size, raw string) (models.ManualAdjustment, error) {
	return es.setManual(driverID, size, raw, constants.ADJUST_FIELD_ISSUED)
}

// SetManualReceived задает ручной прием. Введенное значение (даже 0) заменяет автоматическое.
func (es *EditingSession) SetManualReceived(driverID int64, size, raw string) (models.ManualAdjustment, error) {
	return es.setManual(driverID, size, raw, constants.ADJUST_FIELD_RECEIVED)
}

func (es *EditingSession) setManual(driverID int64, size, raw, field string) (models.ManualAdjustment, error) {
	if !constants.IsValidCrateSize(size) {
		return models.ManualAdjustment{}, fmt.Errorf("%w: %q", ErrUnknownCrateSize, size)
	}
	value := utils.ParseCrateCount(raw)

	es.mu.Lock()
	defer es.mu.Unlock()

	if !es.hasDriverLocked(driverID) {
		return models.ManualAdjustment{}, fmt.Errorf("%w: %d", ErrDriverNotInSession, driverID)
	}

	adj, ok := es.adjustments[driverID]
	if !ok {
		adj = models.ManualAdjustment{DriverID: driverID}
	}
	switch field {
	case constants.ADJUST_FIELD_ISSUED:
		adj.Issued.Set(size, value)
	case constants.ADJUST_FIELD_RECEIVED:
		adj.Received.Set(size, value)
		adj.ReceivedEntered.Set(size, true)
	}
	es.adjustments[driverID] = adj
	return adj, nil
}

func (es *EditingSession) hasDriverLocked(driverID int64) bool {
	if es.orderDrivers[driverID] {
		return true
	}
	for _, md := range es.manualDrivers {
		if md.DriverID == driverID {
			return true
		}
	}
	return false
}

// Adjustment возвращает ручные корректировки водителя (нулевые, если их нет).
func (es *EditingSession) Adjustment(driverID int64) models.ManualAdjustment {
	es.mu.Lock()
	defer es.mu.Unlock()
	if adj, ok := es.adjustments[driverID]; ok {
		return adj
	}
	return models.ManualAdjustment{DriverID: driverID}
}

// AddManualDriver добавляет водителя без заказов. Если водитель уже есть среди
// водителей заказов или уже добавлен, ничего не меняется и возвращается false.
func (es *EditingSession) AddManualDriver(driver models.Driver) (models.ManualDriver, bool) {
	es.mu.Lock()
	defer es.mu.Unlock()

	if es.hasDriverLocked(driver.ID) {
		log.Printf("EditingSession.AddManualDriver: сессия %s: водитель %d уже присутствует, пропуск.", es.ID, driver.ID)
		return models.ManualDriver{}, false
	}
	md := models.ManualDriver{
		ID:       utils.GenerateUUID(),
		Name:     driver.FullName,
		DriverID: driver.ID,
	}
	es.manualDrivers = append(es.manualDrivers, md)
	return md, true
}

// RemoveManualDriver удаляет вручную добавленного водителя вместе с его корректировками.
func (es *EditingSession) RemoveManualDriver(manualDriverID string) bool {
	es.mu.Lock()
	defer es.mu.Unlock()

	for i, md := range es.manualDrivers {
		if md.ID != manualDriverID {
			continue
		}
		es.manualDrivers = append(es.manualDrivers[:i], es.manualDrivers[i+1:]...)
		delete(es.adjustments, md.DriverID)
		return true
	}
	return false
}

// ManualDrivers возвращает копию списка вручную добавленных водителей.
func (es *EditingSession) ManualDrivers() []models.ManualDriver {
	es.mu.Lock()
	defer es.mu.Unlock()
	return append([]models.ManualDriver(nil), es.manualDrivers...)
}

// AddableDrivers = все водители справочника минус водители заказов и уже добавленные.
func (es *EditingSession) AddableDrivers(all []models.Driver) []models.Driver {
	es.mu.Lock()
	defer es.mu.Unlock()

	addable := make([]models.Driver, 0, len(all))
	for _, d := range all {
		if es.hasDriverLocked(d.ID) {
			continue
		}
		addable = append(addable, d)
	}
	return addable
}

// Summary пересчитывает сводку по текущему состоянию.
func (es *EditingSession) Summary() crates.Summary {
	es.mu.Lock()
	defer es.mu.Unlock()
	return crates.Reconcile(es.aggregates, es.manualDrivers, es.adjustments)
}

// ApplyRehydration заменяет ручное состояние восстановленным из реестра.
func (es *EditingSession) ApplyRehydration(r crates.Rehydration) {
	es.mu.Lock()
	defer es.mu.Unlock()

	es.adjustments = make(map[int64]models.ManualAdjustment, len(r.Adjustments))
	for id, adj := range r.Adjustments {
		es.adjustments[id] = adj
	}
	manual := make([]models.ManualDriver, 0, len(r.ManualDrivers))
	for _, md := range r.ManualDrivers {
		if es.orderDrivers[md.DriverID] {
			continue
		}
		manual = append(manual, md)
	}
	es.manualDrivers = manual
}

// Reset очищает ручные корректировки и добавленных водителей.
func (es *EditingSession) Reset() {
	es.mu.Lock()
	defer es.mu.Unlock()
	es.adjustments = make(map[int64]models.ManualAdjustment)
	es.manualDrivers = nil
}

// BeginSave помечает сессию как сохраняющуюся. Второй вызов до EndSave вернет ErrSaveInProgress.
func (es *EditingSession) BeginSave() error {
	es.mu.Lock()
	defer es.mu.Unlock()
	if es.saving {
		return ErrSaveInProgress
	}
	es.saving = true
	return nil
}

func (es *EditingSession) EndSave() {
	es.mu.Lock()
	defer es.mu.Unlock()
	es.saving = false
}

// Saving - true, пока выполняется сохранение.
func (es *EditingSession) Saving() bool {
	es.mu.Lock()
	defer es.mu.Unlock()
	return es.saving
}
