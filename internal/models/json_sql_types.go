package models

import (
	"database/sql"
	"encoding/json"
)

// NullInt64 - обертка для sql.NullInt64 для правильной обработки JSON.
// Используется для driver_id заказа и количеств ящиков, которые в источнике могут быть NULL.
type NullInt64 struct {
	sql.NullInt64
}

// NewNullInt64 возвращает заполненное значение.
func NewNullInt64(v int64) NullInt64 {
	return NullInt64{sql.NullInt64{Int64: v, Valid: true}}
}

// OrZero возвращает значение или 0 для NULL.
func (ni NullInt64) OrZero() int64 {
	if !ni.Valid {
		return 0
	}
	return ni.Int64
}

// MarshalJSON реализует интерфейс json.Marshaler для NullInt64.
func (ni NullInt64) MarshalJSON() ([]byte, error) {
	if !ni.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(ni.Int64)
}

// UnmarshalJSON реализует интерфейс json.Unmarshaler для NullInt64.
func (ni *NullInt64) UnmarshalJSON(b []byte) error {
	var v *int64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if v != nil {
		ni.Int64 = *v
		ni.Valid = true
	} else {
		ni.Int64 = 0
		ni.Valid = false
	}
	return nil
}
