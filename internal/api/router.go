package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"crateledger/internal/config"
	"crateledger/internal/crates"
	"crateledger/internal/session"
)

// ApiDependencies содержит зависимости для обработчиков API.
type ApiDependencies struct {
	Config     *config.Config
	Sessions   *session.SessionManager
	Orders     crates.OrderSource
	Drivers    crates.DriverDirectory
	Ledger     crates.LedgerStore
	Aggregator *crates.Aggregator
}

// SetupRoutes настраивает все маршруты для API.
func SetupRoutes(r chi.Router, deps ApiDependencies) {
	h := NewCrateHandler(deps)

	r.Use(ConfigMiddleware(deps.Config))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSONSuccess(w, "ok", map[string]int{"open_sessions": deps.Sessions.Count()})
	})

	r.Route("/api/crates", func(r chi.Router) {
		r.Use(JSONContentTypeMiddleware)

		r.Get("/config", GetClientConfig)
		r.Get("/ledger", h.GetLedger)

		r.Post("/sessions", h.OpenSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Delete("/", h.CloseSession)
			r.Put("/adjustments/{driverID}", h.SetAdjustment)
			r.Get("/addable-drivers", h.GetAddableDrivers)
			r.Post("/manual-drivers", h.AddManualDriver)
			r.Delete("/manual-drivers/{manualID}", h.RemoveManualDriver)
			r.Post("/reset", h.ResetSession)
			r.Post("/save", h.SaveSession)
		})
	})
}
