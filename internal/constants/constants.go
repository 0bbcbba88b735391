package constants

// Размеры ящиков / Crate sizes
const (
	CRATE_SIZE_SMALL = "small"
	CRATE_SIZE_BIG   = "big"
)

// Поля ручной корректировки / Manual adjustment fields
const (
	ADJUST_FIELD_ISSUED   = "issued"
	ADJUST_FIELD_RECEIVED = "received"
)

// Роль пользователя-водителя в таблице users
const ROLE_DRIVER = "driver"

// NO_DRIVER_ID - идентификатор корзины "без водителя".
// Заказы без назначенного водителя группируются под этим ID.
const NO_DRIVER_ID int64 = 0

// DEFAULT_NO_DRIVER_LABEL - отображаемое имя корзины "без водителя" по умолчанию.
const DEFAULT_NO_DRIVER_LABEL = "Bez řidiče"

// DEFAULT_COLLATION_LOCALE - локаль для сортировки имен водителей по умолчанию.
const DEFAULT_COLLATION_LOCALE = "cs"

// MAX_CRATE_COUNT - наибольшее ручное значение; больше приводится к 0.
// Держит итоги (авто + ручной ввод) в пределах колонки INTEGER.
const MAX_CRATE_COUNT = 1000000

// DATE_LAYOUT - единственный формат календарной даты в реестре ящиков.
const DATE_LAYOUT = "2006-01-02"

// Статусы ответа API
const (
	API_STATUS_SUCCESS = "success"
	API_STATUS_ERROR   = "error"
)

// CrateSizes - порядок обхода размеров при построении строк и итогов.
var CrateSizes = []string{CRATE_SIZE_SMALL, CRATE_SIZE_BIG}

// CrateSizeDisplayMap - человекочитаемые названия размеров.
var CrateSizeDisplayMap = map[string]string{
	CRATE_SIZE_SMALL: "Malé přepravky",
	CRATE_SIZE_BIG:   "Velké přepravky",
}

// IsValidCrateSize проверяет, что размер ящика известен.
func IsValidCrateSize(size string) bool {
	return size == CRATE_SIZE_SMALL || size == CRATE_SIZE_BIG
}
