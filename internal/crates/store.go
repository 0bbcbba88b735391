package crates

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"crateledger/internal/models"
)

// OrderSource отдает заказы за период (даты включительно, YYYY-MM-DD).
type OrderSource interface {
	OrdersForPeriod(ctx context.Context, from, to string) ([]models.Order, error)
}

// DriverDirectory отдает всех водителей, которых можно добавить вручную.
type DriverDirectory interface {
	AllDrivers(ctx context.Context) ([]models.Driver, error)
}

// LedgerStore читает и пишет записи реестра ящиков.
// UpsertCrateLedger атомарен по каждой записи, но не по всему пакету:
// при частичном сбое возвращается *BatchError.
type LedgerStore interface {
	CrateLedgerByDate(ctx context.Context, date string) ([]models.CrateLedgerRecord, error)
	UpsertCrateLedger(ctx context.Context, records []models.CrateLedgerRecord) error
}

// ErrRangeNotSavable - реестр хранится по дням, период из нескольких дней сохранить нельзя.
var ErrRangeNotSavable = errors.New("реестр ящиков сохраняется только за один день")

// BatchError описывает частичный (или полный) сбой пакетной записи реестра.
type BatchError struct {
	Date   string
	Total  int
	Failed map[int64]error // ключ - driver_id
}

// NewBatchError создает пустую ошибку пакета. Возвращайте ее только если Failed не пуст.
func NewBatchError(date string, total int) *BatchError {
	return &BatchError{Date: date, Total: total, Failed: make(map[int64]error)}
}

func (e *BatchError) Error() string {
	ids := e.FailedDriverIDs()
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%d: %v", id, e.Failed[id]))
	}
	return fmt.Sprintf("реестр ящиков за %s: не сохранено %d из %d записей (%s)",
		e.Date, len(e.Failed), e.Total, strings.Join(parts, "; "))
}

// Unwrap дает errors.Is/As доступ к исходным ошибкам записей.
func (e *BatchError) Unwrap() []error {
	ids := e.FailedDriverIDs()
	errs := make([]error, 0, len(ids))
	for _, id := range ids {
		errs = append(errs, e.Failed[id])
	}
	return errs
}

// FailedDriverIDs возвращает отсортированный список водителей, чьи записи не сохранились.
func (e *BatchError) FailedDriverIDs() []int64 {
	ids := make([]int64, 0, len(e.Failed))
	for id := range e.Failed {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Saved - количество успешно записанных записей.
func (e *BatchError) Saved() int {
	return e.Total - len(e.Failed)
}
