package crates

import (
	"fmt"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"crateledger/internal/constants"
	"crateledger/internal/models"
)

// DeliveryMovement - движение ящиков по одному заказу (автоматический канал).
type DeliveryMovement struct {
	DriverID   models.NullInt64
	DriverName string
	models.CrateMovement
}

// DriverAggregate - суммы движения ящиков по всем заказам одного водителя.
type DriverAggregate struct {
	DriverID   int64  `json:"driver_id"`
	DriverName string `json:"driver_name"`
	NoDriver   bool   `json:"no_driver"`
	OrderCount int    `json:"order_count"`
	models.CrateMovement
}

// MovementOf извлекает движение ящиков из заказа. NULL и отрицательные значения дают 0.
func MovementOf(o models.Order) DeliveryMovement {
	return DeliveryMovement{
		DriverID:   o.DriverID,
		DriverName: o.DriverName(),
		CrateMovement: models.CrateMovement{
			Issued: models.CrateCounts{
				Small: nonNegative(o.CrateSmall),
				Big:   nonNegative(o.CrateBig),
			},
			Received: models.CrateCounts{
				Small: nonNegative(o.CrateSmallReceived),
				Big:   nonNegative(o.CrateBigReceived),
			},
		},
	}
}

func nonNegative(v models.NullInt64) int {
	n := v.OrZero()
	if n < 0 {
		return 0
	}
	return int(n)
}

// Aggregator сворачивает заказы периода в итоги по водителям.
type Aggregator struct {
	locale        language.Tag
	noDriverLabel string
}

// NewAggregator создает агрегатор. locale - BCP 47 тег для сортировки имен ("cs").
func NewAggregator(locale, noDriverLabel string) *Aggregator {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Make(constants.DEFAULT_COLLATION_LOCALE)
	}
	if noDriverLabel == "" {
		noDriverLabel = constants.DEFAULT_NO_DRIVER_LABEL
	}
	return &Aggregator{locale: tag, noDriverLabel: noDriverLabel}
}

// NoDriverLabel - отображаемое имя корзины "без водителя".
func (a *Aggregator) NoDriverLabel() string {
	return a.noDriverLabel
}

// Aggregate возвращает по одному DriverAggregate на каждого водителя из заказов.
// Порядок: по имени с учетом локали, корзина "без водителя" всегда последняя.
// Функция чистая: одинаковый вход дает одинаковый результат.
func (a *Aggregator) Aggregate(orders []models.Order) []DriverAggregate {
	byDriver := make(map[int64]*DriverAggregate)
	for _, o := range orders {
		m := MovementOf(o)

		id := constants.NO_DRIVER_ID
		noDriver := !m.DriverID.Valid
		if !noDriver {
			id = m.DriverID.Int64
		}

		agg, ok := byDriver[id]
		if !ok {
			agg = &DriverAggregate{DriverID: id, NoDriver: noDriver}
			byDriver[id] = agg
		}
		if agg.DriverName == "" && !noDriver {
			agg.DriverName = m.DriverName
		}
		agg.OrderCount++
		agg.CrateMovement = agg.CrateMovement.Add(m.CrateMovement)
	}

	result := make([]DriverAggregate, 0, len(byDriver))
	for _, agg := range byDriver {
		if agg.NoDriver {
			agg.DriverName = a.noDriverLabel
		} else if agg.DriverName == "" {
			agg.DriverName = fmt.Sprintf("#%d", agg.DriverID)
		}
		result = append(result, *agg)
	}

	col := collate.New(a.locale)
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].NoDriver != result[j].NoDriver {
			return !result[i].NoDriver
		}
		if c := col.CompareString(result[i].DriverName, result[j].DriverName); c != 0 {
			return c < 0
		}
		return result[i].DriverID < result[j].DriverID
	})
	return result
}

// SortDrivers сортирует справочник водителей тем же правилом, что и строки реестра.
func (a *Aggregator) SortDrivers(drivers []models.Driver) {
	col := collate.New(a.locale)
	sort.SliceStable(drivers, func(i, j int) bool {
		if c := col.CompareString(drivers[i].FullName, drivers[j].FullName); c != 0 {
			return c < 0
		}
		return drivers[i].ID < drivers[j].ID
	})
}
