package models

import (
	"fmt"

	"crateledger/internal/constants"
)

// CrateCounts - количество ящиков по размерам.
type CrateCounts struct {
	Small int `json:"small"`
	Big   int `json:"big"`
}

// Get возвращает значение для размера. Неизвестный размер дает 0.
func (c CrateCounts) Get(size string) int {
	switch size {
	case constants.CRATE_SIZE_SMALL:
		return c.Small
	case constants.CRATE_SIZE_BIG:
		return c.Big
	}
	return 0
}

// Set записывает значение для размера. Неизвестный размер игнорируется.
func (c *CrateCounts) Set(size string, v int) {
	switch size {
	case constants.CRATE_SIZE_SMALL:
		c.Small = v
	case constants.CRATE_SIZE_BIG:
		c.Big = v
	}
}

func (c CrateCounts) Add(o CrateCounts) CrateCounts {
	return CrateCounts{Small: c.Small + o.Small, Big: c.Big + o.Big}
}

func (c CrateCounts) Sub(o CrateCounts) CrateCounts {
	return CrateCounts{Small: c.Small - o.Small, Big: c.Big - o.Big}
}

// IsZero - true, если оба размера равны нулю.
func (c CrateCounts) IsZero() bool {
	return c.Small == 0 && c.Big == 0
}

// CrateMovement - выданные и принятые ящики.
type CrateMovement struct {
	Issued   CrateCounts `json:"issued"`
	Received CrateCounts `json:"received"`
}

func (m CrateMovement) Add(o CrateMovement) CrateMovement {
	return CrateMovement{Issued: m.Issued.Add(o.Issued), Received: m.Received.Add(o.Received)}
}

// CrateLedgerRecord - сохраненная запись реестра ящиков: итог (авто + ручной ввод)
// по водителю за календарный день. Ключ - (Date, DriverID).
type CrateLedgerRecord struct {
	Date               string `json:"date"` // YYYY-MM-DD, без часового пояса
	DriverID           int64  `json:"driver_id"`
	CrateSmallIssued   int    `json:"crate_small_issued"`
	CrateBigIssued     int    `json:"crate_big_issued"`
	CrateSmallReceived int    `json:"crate_small_received"`
	CrateBigReceived   int    `json:"crate_big_received"`
}

// NewCrateLedgerRecord собирает запись реестра из движения ящиков.
func NewCrateLedgerRecord(date string, driverID int64, m CrateMovement) CrateLedgerRecord {
	return CrateLedgerRecord{
		Date:               date,
		DriverID:           driverID,
		CrateSmallIssued:   m.Issued.Small,
		CrateBigIssued:     m.Issued.Big,
		CrateSmallReceived: m.Received.Small,
		CrateBigReceived:   m.Received.Big,
	}
}

// Movement возвращает значения записи в виде CrateMovement.
func (r CrateLedgerRecord) Movement() CrateMovement {
	return CrateMovement{
		Issued:   CrateCounts{Small: r.CrateSmallIssued, Big: r.CrateBigIssued},
		Received: CrateCounts{Small: r.CrateSmallReceived, Big: r.CrateBigReceived},
	}
}

// Key - строковый ключ записи для логов и карт.
func (r CrateLedgerRecord) Key() string {
	return fmt.Sprintf("%s/%d", r.Date, r.DriverID)
}

// ManualAdjustment - ручные корректировки сотрудника по одному водителю
// в рамках текущей сессии редактирования.
type ManualAdjustment struct {
	DriverID int64       `json:"driver_id"`
	Issued   CrateCounts `json:"issued"`
	Received CrateCounts `json:"received"`
	// ReceivedEntered отмечает размеры, для которых принятое количество было введено явно.
	// Явный 0 отличается от "не введено": он перекрывает автоматическое значение.
	ReceivedEntered CrateFlags `json:"received_entered"`
}

// ReceivedOverride возвращает ручное значение принятых ящиков, если оно было введено.
func (a ManualAdjustment) ReceivedOverride(size string) (int, bool) {
	if !a.ReceivedEntered.Get(size) {
		return 0, false
	}
	return a.Received.Get(size), true
}

// CrateFlags - булев признак по размерам ящиков.
type CrateFlags struct {
	Small bool `json:"small"`
	Big   bool `json:"big"`
}

func (f CrateFlags) Get(size string) bool {
	switch size {
	case constants.CRATE_SIZE_SMALL:
		return f.Small
	case constants.CRATE_SIZE_BIG:
		return f.Big
	}
	return false
}

func (f *CrateFlags) Set(size string, v bool) {
	switch size {
	case constants.CRATE_SIZE_SMALL:
		f.Small = v
	case constants.CRATE_SIZE_BIG:
		f.Big = v
	}
}

// ManualDriver - водитель, добавленный сотрудником вручную (без заказов в периоде).
type ManualDriver struct {
	ID       string `json:"id"` // UUID
	Name     string `json:"name"`
	DriverID int64  `json:"driver_id"`
}
