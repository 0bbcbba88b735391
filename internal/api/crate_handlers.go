package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"crateledger/internal/config"
	"crateledger/internal/constants"
	"crateledger/internal/crates"
	"crateledger/internal/models"
	"crateledger/internal/session"
	"crateledger/internal/utils"
)

const defaultStoreTimeout = 10 * time.Second

// CrateHandler обслуживает окно реестра ящиков.
type CrateHandler struct {
	cfg        *config.Config
	sessions   *session.SessionManager
	orders     crates.OrderSource
	drivers    crates.DriverDirectory
	ledger     crates.LedgerStore
	merger     *crates.Merger
	aggregator *crates.Aggregator
}

func NewCrateHandler(deps ApiDependencies) *CrateHandler {
	aggregator := deps.Aggregator
	if aggregator == nil {
		aggregator = crates.NewAggregator(constants.DEFAULT_COLLATION_LOCALE, constants.DEFAULT_NO_DRIVER_LABEL)
	}
	return &CrateHandler{
		cfg:        deps.Config,
		sessions:   deps.Sessions,
		orders:     deps.Orders,
		drivers:    deps.Drivers,
		ledger:     deps.Ledger,
		merger:     crates.NewMerger(deps.Ledger),
		aggregator: aggregator,
	}
}

func (h *CrateHandler) storeContext(r *http.Request) (context.Context, context.CancelFunc) {
	timeout := defaultStoreTimeout
	if h.cfg != nil && h.cfg.StoreTimeout > 0 {
		timeout = h.cfg.StoreTimeout
	}
	return context.WithTimeout(r.Context(), timeout)
}

func (h *CrateHandler) sessionFromRequest(w http.ResponseWriter, r *http.Request) (*session.EditingSession, bool) {
	es, err := h.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "Session not found")
		return nil, false
	}
	return es, true
}

// OpenSession открывает окно реестра: считает итоги по заказам и, для одного дня,
// восстанавливает ручной ввод из сохраненного реестра.
func (h *CrateHandler) OpenSession(w http.ResponseWriter, r *http.Request) {
	var req OpenSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	from, to := req.From, req.To
	if req.Date != "" {
		from, to = req.Date, req.Date
	}
	from, to, err := utils.ValidatePeriod(from, to)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := h.storeContext(r)
	defer cancel()

	orders, err := h.orders.OrdersForPeriod(ctx, from, to)
	if err != nil {
		log.Printf("API OpenSession: не удалось получить заказы за %s..%s: %v", from, to, err)
		writeJSONError(w, http.StatusBadGateway, "Failed to load orders")
		return
	}
	aggs := h.aggregator.Aggregate(orders)
	es := h.sessions.Open(from, to, aggs)

	if es.IsSingleDay() {
		h.rehydrate(ctx, es, aggs)
	}
	writeJSONSuccess(w, "Session opened", sessionView(es))
}

func (h *CrateHandler) rehydrate(ctx context.Context, es *session.EditingSession, aggs []crates.DriverAggregate) {
	directory, err := h.drivers.AllDrivers(ctx)
	if err != nil {
		// Без справочника восстанавливаются только водители с заказами.
		log.Printf("API OpenSession: сессия %s: не удалось получить справочник водителей: %v", es.ID, err)
		es.MarkDegraded()
		directory = nil
	}
	rehydration, err := h.merger.Load(ctx, es.From, aggs, directory)
	if err != nil {
		log.Printf("API OpenSession: сессия %s: реестр не загружен, показываются только автоматические итоги: %v", es.ID, err)
		es.MarkDegraded()
		return
	}
	if len(rehydration.Unresolved) > 0 {
		log.Printf("API OpenSession: сессия %s: записи реестра для неизвестных водителей пропущены: %s", es.ID, utils.JoinIDs(rehydration.Unresolved))
	}
	es.ApplyRehydration(rehydration)
}

func (h *CrateHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	es, ok := h.sessionFromRequest(w, r)
	if !ok {
		return
	}
	writeJSONSuccess(w, "Session retrieved", sessionView(es))
}

// CloseSession закрывает окно; несохраненные правки теряются.
func (h *CrateHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	if !h.sessions.Close(chi.URLParam(r, "id")) {
		writeJSONError(w, http.StatusNotFound, "Session not found")
		return
	}
	writeJSONSuccess(w, "Session closed", nil)
}

// SetAdjustment записывает одно ручное значение и возвращает пересчитанную таблицу.
func (h *CrateHandler) SetAdjustment(w http.ResponseWriter, r *http.Request) {
	es, ok := h.sessionFromRequest(w, r)
	if !ok {
		return
	}
	driverID, err := strconv.ParseInt(chi.URLParam(r, "driverID"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid driver ID")
		return
	}
	var req AdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	raw := rawInput(req.Value)
	switch req.Field {
	case constants.ADJUST_FIELD_ISSUED:
		_, err = es.SetManualIssued(driverID, req.Size, raw)
	case constants.ADJUST_FIELD_RECEIVED:
		_, err = es.SetManualReceived(driverID, req.Size, raw)
	default:
		writeJSONError(w, http.StatusBadRequest, "Unknown field: "+req.Field)
		return
	}
	switch {
	case errors.Is(err, session.ErrUnknownCrateSize):
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, session.ErrDriverNotInSession):
		writeJSONError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSONSuccess(w, "Adjustment updated", sessionView(es))
}

// GetAddableDrivers - водители справочника, которых еще нет в таблице, по алфавиту.
func (h *CrateHandler) GetAddableDrivers(w http.ResponseWriter, r *http.Request) {
	es, ok := h.sessionFromRequest(w, r)
	if !ok {
		return
	}
	ctx, cancel := h.storeContext(r)
	defer cancel()

	all, err := h.drivers.AllDrivers(ctx)
	if err != nil {
		log.Printf("API GetAddableDrivers: ошибка получения водителей: %v", err)
		writeJSONError(w, http.StatusBadGateway, "Failed to load drivers")
		return
	}
	addable := es.AddableDrivers(all)
	h.aggregator.SortDrivers(addable)
	writeJSONSuccess(w, "Addable drivers retrieved", addable)
}

func (h *CrateHandler) AddManualDriver(w http.ResponseWriter, r *http.Request) {
	es, ok := h.sessionFromRequest(w, r)
	if !ok {
		return
	}
	var req AddManualDriverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	ctx, cancel := h.storeContext(r)
	defer cancel()
	all, err := h.drivers.AllDrivers(ctx)
	if err != nil {
		log.Printf("API AddManualDriver: ошибка получения водителей: %v", err)
		writeJSONError(w, http.StatusBadGateway, "Failed to load drivers")
		return
	}
	var driver *models.Driver
	for i := range all {
		if all[i].ID == req.DriverID {
			driver = &all[i]
			break
		}
	}
	if driver == nil {
		writeJSONError(w, http.StatusNotFound, "Driver not found")
		return
	}

	if _, added := es.AddManualDriver(*driver); !added {
		writeJSONSuccess(w, "Driver already present", sessionView(es))
		return
	}
	writeJSONSuccess(w, "Driver added", sessionView(es))
}

func (h *CrateHandler) RemoveManualDriver(w http.ResponseWriter, r *http.Request) {
	es, ok := h.sessionFromRequest(w, r)
	if !ok {
		return
	}
	if !es.RemoveManualDriver(chi.URLParam(r, "manualID")) {
		writeJSONError(w, http.StatusNotFound, "Manual driver not found")
		return
	}
	writeJSONSuccess(w, "Driver removed", sessionView(es))
}

// ResetSession сбрасывает весь ручной ввод окна, не трогая сохраненный реестр.
func (h *CrateHandler) ResetSession(w http.ResponseWriter, r *http.Request) {
	es, ok := h.sessionFromRequest(w, r)
	if !ok {
		return
	}
	es.Reset()
	writeJSONSuccess(w, "Session reset", sessionView(es))
}

// SaveSession сохраняет итоги дня в реестр. Состояние сессии при ошибке не меняется.
func (h *CrateHandler) SaveSession(w http.ResponseWriter, r *http.Request) {
	es, ok := h.sessionFromRequest(w, r)
	if !ok {
		return
	}
	if !es.IsSingleDay() {
		writeJSONError(w, http.StatusUnprocessableEntity, crates.ErrRangeNotSavable.Error())
		return
	}
	if err := es.BeginSave(); err != nil {
		writeJSONError(w, http.StatusConflict, err.Error())
		return
	}
	defer es.EndSave()

	ctx, cancel := h.storeContext(r)
	defer cancel()

	records, err := h.merger.Save(ctx, es.From, es.Summary())
	if err != nil {
		var batchErr *crates.BatchError
		if errors.As(err, &batchErr) {
			writeJSONErrorWithData(w, http.StatusBadGateway, "Ledger partially saved, retry", SaveResponse{
				Date:            es.From,
				Saved:           batchErr.Saved(),
				FailedDriverIDs: batchErr.FailedDriverIDs(),
			})
			return
		}
		writeJSONError(w, http.StatusBadGateway, "Failed to save ledger")
		return
	}
	writeJSONSuccess(w, "Ledger saved", SaveResponse{Date: es.From, Saved: len(records), Records: records})
}

// GetLedger отдает сохраненные записи реестра за день.
func (h *CrateHandler) GetLedger(w http.ResponseWriter, r *http.Request) {
	date, err := utils.ValidateDate(r.URL.Query().Get("date"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	ctx, cancel := h.storeContext(r)
	defer cancel()

	records, err := h.ledger.CrateLedgerByDate(ctx, date)
	if err != nil {
		log.Printf("API GetLedger: ошибка чтения реестра за %s: %v", date, err)
		writeJSONError(w, http.StatusBadGateway, "Failed to read ledger")
		return
	}
	if records == nil {
		records = []models.CrateLedgerRecord{}
	}
	writeJSONSuccess(w, "Ledger retrieved", records)
}
