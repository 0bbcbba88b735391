package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"crateledger/internal/constants"
)

// ErrInvalidDate возвращается, если строка не является календарной датой YYYY-MM-DD.
var ErrInvalidDate = errors.New("некорректная дата")

// ValidateDate проверяет строку даты и возвращает ее в каноническом виде YYYY-MM-DD.
// Дата разбирается в UTC и никогда не переводится в локальную зону: в реестре
// ящиков дата - это календарный день, а не момент времени.
// ValidateDate checks a date string and returns it in canonical YYYY-MM-DD form.
func ValidateDate(dateStr string) (string, error) {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return "", fmt.Errorf("%w: строка даты пуста", ErrInvalidDate)
	}
	parsed, err := time.Parse(constants.DATE_LAYOUT, dateStr)
	if err != nil {
		return "", fmt.Errorf("%w: '%s' (ожидается ГГГГ-ММ-ДД)", ErrInvalidDate, dateStr)
	}
	return parsed.Format(constants.DATE_LAYOUT), nil
}

// ValidatePeriod проверяет пару дат "с/по". Пустое "по" означает один день.
func ValidatePeriod(from, to string) (string, string, error) {
	fromDate, err := ValidateDate(from)
	if err != nil {
		return "", "", err
	}
	if strings.TrimSpace(to) == "" {
		return fromDate, fromDate, nil
	}
	toDate, err := ValidateDate(to)
	if err != nil {
		return "", "", err
	}
	// Канонические YYYY-MM-DD сравниваются лексикографически.
	if toDate < fromDate {
		return "", "", fmt.Errorf("%w: конец периода %s раньше начала %s", ErrInvalidDate, toDate, fromDate)
	}
	return fromDate, toDate, nil
}

// ParseCrateCount приводит свободный ввод из формы к неотрицательному целому.
// Пустая строка, мусор, отрицательные числа и значения больше MAX_CRATE_COUNT дают 0;
// ошибка никогда не возвращается.
// ParseCrateCount coerces free-text form input to a non-negative integer.
func ParseCrateCount(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || n < 0 || n > constants.MAX_CRATE_COUNT {
		return 0
	}
	return int(n)
}
