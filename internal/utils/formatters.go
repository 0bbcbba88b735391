// Файл: internal/utils/formatters.go

package utils

import (
	"strconv"
	"strings"

	"github.com/google/uuid" // Для GenerateUUID
)

// Int64SliceToStringSlice преобразует слайс int64 в слайс string.
func Int64SliceToStringSlice(int64Slice []int64) []string {
	stringSlice := make([]string, len(int64Slice))
	for i, v := range int64Slice {
		stringSlice[i] = strconv.FormatInt(v, 10)
	}
	return stringSlice
}

// JoinIDs форматирует список ID для логов и сообщений об ошибках: "3, 7, 12".
func JoinIDs(ids []int64) string {
	return strings.Join(Int64SliceToStringSlice(ids), ", ")
}

// GenerateUUID генерирует новый UUID.
func GenerateUUID() string {
	return uuid.New().String()
}
