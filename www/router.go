package www

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"

	"prodpulse/etl"
	"prodpulse/messaging"
	"prodpulse/store"
	"prodpulse/viewcache"
)

type Handlers struct {
	db       *store.DB
	sessions *sessions.CookieStore
	cache    *viewcache.Cache
	importer *etl.Importer
	msg      *messaging.Client
}

type Deps struct {
	DB            *store.DB
	Cache         *viewcache.Cache
	Importer      *etl.Importer
	MsgClient     *messaging.Client
	SessionSecret string
}

func NewRouter(deps Deps) http.Handler {
	h := &Handlers{
		db:       deps.DB,
		sessions: newSessionStore(deps.SessionSecret),
		cache:    deps.Cache,
		importer: deps.Importer,
		msg:      deps.MsgClient,
	}

	h.ensureDefaultAdmin(deps.DB)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)

	// Read-only view API, no auth required
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.apiHealthCheck)
		r.Get("/dashboard", h.apiDashboard)
		r.Get("/kpi", h.apiKPI)
		r.Get("/quality", h.apiQuality)
		r.Get("/quality/grades", h.apiQualityGrades)
		r.Get("/trends/daily", h.apiDailyTrend)
		r.Get("/trends/monthly", h.apiMonthlyTrend)
		r.Get("/summary/departments", h.apiDepartmentSummary)
		r.Get("/summary/customers", h.apiCustomerSummary)
		r.Get("/summary/machines", h.apiMachineUtilization)
		r.Get("/customers", h.apiListCustomers)
		r.Get("/employees", h.apiListEmployees)
		r.Get("/items", h.apiListItems)
		r.Get("/machines", h.apiListMachines)
		r.Get("/operations", h.apiListOperations)
		r.Get("/departments", h.apiListDepartments)
		r.Get("/records", h.apiListRecords)
		r.Get("/records/detail", h.apiGetRecord)
		r.Get("/import/runs", h.apiListImportRuns)
		r.Get("/import/runs/detail", h.apiGetImportRun)
	})

	// Mutating routes require an operator session
	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Post("/api/import/run", h.apiRunImport)
		r.Post("/api/raw/stage", h.apiStageRawRow)
	})

	return r
}

func (h *Handlers) jsonOK(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (h *Handlers) jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
