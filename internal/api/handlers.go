package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"crateledger/internal/config"
	"crateledger/internal/constants"
	"crateledger/internal/crates"
	"crateledger/internal/models"
	"crateledger/internal/session"
)

// jsonResponse - вспомогательная структура для стандартного ответа API
type jsonResponse struct {
	Status  string      `json:"status"` // "success" или "error"
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// OpenSessionRequest - открытие окна реестра: один день (date) или период (from, to).
type OpenSessionRequest struct {
	Date string `json:"date,omitempty"`
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// AdjustmentRequest - изменение одного ручного поля.
// Value - свободный ввод из формы (строка или число), мусор превращается в 0.
type AdjustmentRequest struct {
	Field string      `json:"field"` // issued | received
	Size  string      `json:"size"`  // small | big
	Value interface{} `json:"value"`
}

// AddManualDriverRequest - добавление водителя без заказов.
type AddManualDriverRequest struct {
	DriverID int64 `json:"driver_id"`
}

// RowView - строка таблицы реестра для клиента.
type RowView struct {
	Kind            string               `json:"kind"` // order | manual
	DriverID        int64                `json:"driver_id"`
	DriverName      string               `json:"driver_name"`
	NoDriver        bool                 `json:"no_driver,omitempty"`
	ManualID        string               `json:"manual_id,omitempty"`
	OrderCount      int                  `json:"order_count"`
	Auto            models.CrateMovement `json:"auto"`
	Manual          models.CrateMovement `json:"manual"`
	ReceivedEntered models.CrateFlags    `json:"received_entered"`
	Issued          models.CrateCounts   `json:"issued"`
	Received        models.CrateCounts   `json:"received"`
	Difference      models.CrateCounts   `json:"difference"`
	DifferenceText  map[string]string    `json:"difference_text"`
}

// TotalsView - итоговая строка с отформатированной разницей.
type TotalsView struct {
	crates.Totals
	DifferenceText map[string]string `json:"difference_text"`
}

// SessionView - полное состояние окна реестра.
type SessionView struct {
	ID            string                `json:"id"`
	From          string                `json:"from"`
	To            string                `json:"to"`
	Savable       bool                  `json:"savable"`
	Degraded      bool                  `json:"degraded"`
	Saving        bool                  `json:"saving"`
	Rows          []RowView             `json:"rows"`
	Totals        TotalsView            `json:"totals"`
	ManualDrivers []models.ManualDriver `json:"manual_drivers"`
}

// SaveResponse - результат сохранения реестра за день.
type SaveResponse struct {
	Date            string                     `json:"date"`
	Saved           int                        `json:"saved"`
	FailedDriverIDs []int64                    `json:"failed_driver_ids,omitempty"`
	Records         []models.CrateLedgerRecord `json:"records,omitempty"`
}

// --- Вспомогательные функции для JSON-ответов ---
func writeJSONError(w http.ResponseWriter, statusCode int, message string) {
	writeJSONErrorWithData(w, statusCode, message, nil)
}

func writeJSONErrorWithData(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(jsonResponse{Status: constants.API_STATUS_ERROR, Message: message, Data: data})
}

func writeJSONSuccess(w http.ResponseWriter, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(jsonResponse{Status: constants.API_STATUS_SUCCESS, Message: message, Data: data})
}

func differenceText(diff models.CrateCounts) map[string]string {
	out := make(map[string]string, len(constants.CrateSizes))
	for _, size := range constants.CrateSizes {
		out[size] = crates.FormatDiff(diff.Get(size))
	}
	return out
}

func rowView(row crates.Row) RowView {
	t := row.Totals()
	v := RowView{
		DriverID:       row.DriverID(),
		DriverName:     row.DriverName(),
		Auto:           t.Auto,
		Manual:         t.Manual,
		Issued:         t.Issued,
		Received:       t.Received,
		Difference:     t.Difference,
		DifferenceText: differenceText(t.Difference),
	}
	switch r := row.(type) {
	case crates.OrderDriverRow:
		v.Kind = "order"
		v.NoDriver = r.Aggregate.NoDriver
		v.OrderCount = r.Aggregate.OrderCount
		v.ReceivedEntered = r.Adjustment.ReceivedEntered
	case crates.ManualDriverRow:
		v.Kind = "manual"
		v.ManualID = r.Driver.ID
		v.ReceivedEntered = r.Adjustment.ReceivedEntered
	default:
		panic(fmt.Sprintf("rowView: неизвестный тип строки %T", row))
	}
	return v
}

func sessionView(es *session.EditingSession) SessionView {
	summary := es.Summary()
	rows := make([]RowView, 0, len(summary.Rows))
	for _, row := range summary.Rows {
		rows = append(rows, rowView(row))
	}
	manual := es.ManualDrivers()
	if manual == nil {
		manual = []models.ManualDriver{}
	}
	return SessionView{
		ID:            es.ID,
		From:          es.From,
		To:            es.To,
		Savable:       es.IsSingleDay(),
		Degraded:      es.Degraded(),
		Saving:        es.Saving(),
		Rows:          rows,
		Totals:        TotalsView{Totals: summary.Totals, DifferenceText: differenceText(summary.Totals.Difference)},
		ManualDrivers: manual,
	}
}

// rawInput приводит значение из JSON к строке свободного ввода.
func rawInput(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		if val != float64(int64(val)) {
			return ""
		}
		return fmt.Sprintf("%d", int64(val))
	default:
		return fmt.Sprint(val)
	}
}

// GetClientConfig отдает клиенту настройки отображения реестра.
func GetClientConfig(w http.ResponseWriter, r *http.Request) {
	cfg, ok := r.Context().Value(ConfigContextKey).(*config.Config)
	if !ok {
		writeJSONError(w, http.StatusInternalServerError, "Config not found in context")
		return
	}

	response := map[string]interface{}{
		"noDriverLabel":   cfg.NoDriverLabel,
		"collationLocale": cfg.CollationLocale,
		"crateSizes":      constants.CrateSizeDisplayMap,
	}
	writeJSONSuccess(w, "Config retrieved", response)
}
