package crates

import "strconv"

// FormatDiff отображает разницу "выдано - принято" по правилу экрана:
// положительная разница (ящики еще у водителя) показывается со знаком "-",
// отрицательная (излишек) - со знаком "+", ноль - как "0".
func FormatDiff(diff int) string {
	switch {
	case diff > 0:
		return "-" + strconv.Itoa(diff)
	case diff < 0:
		return "+" + strconv.Itoa(-diff)
	}
	return "0"
}
