package models

// Driver - запись справочника водителей.
type Driver struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
}
