package models

// Order - заказ на доставку в том виде, в каком его отдает источник заказов.
// Для реестра ящиков важны только водитель и четыре поля с ящиками.
type Order struct {
	ID                 int64     `json:"id"`
	Date               string    `json:"date"` // YYYY-MM-DD
	DriverID           NullInt64 `json:"driver_id"`
	Driver             *Driver   `json:"driver,omitempty"`
	CrateSmall         NullInt64 `json:"crateSmall"`
	CrateBig           NullInt64 `json:"crateBig"`
	CrateSmallReceived NullInt64 `json:"crateSmallReceived"`
	CrateBigReceived   NullInt64 `json:"crateBigReceived"`
}

// DriverName возвращает имя водителя заказа или пустую строку.
func (o Order) DriverName() string {
	if o.Driver == nil {
		return ""
	}
	return o.Driver.FullName
}
