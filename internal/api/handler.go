package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/olivramos/beneficioops/internal/domain"
	"github.com/olivramos/beneficioops/internal/service"
	"github.com/olivramos/beneficioops/internal/store"
)

// Metrics
var (
	httpReqTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "beneficio_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "endpoint", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "beneficio_http_request_duration_seconds",
		Help:    "Request latency",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"method", "endpoint"})
)

const transferConfirmation = "Transferência realizada com sucesso"

type Handler struct {
	store  store.Store
	engine *service.TransferEngine
	stats  *service.Stats
	logger *zap.Logger
}

func NewHandler(s store.Store, engine *service.TransferEngine, stats *service.Stats, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: s, engine: engine, stats: stats, logger: logger}
}

// benefitPayload is the request body for create and update. Ativo defaults
// to true when absent; version, when present on an update, is the expected
// version for the optimistic-concurrency check.
type benefitPayload struct {
	Nome      string          `json:"nome"`
	Descricao string          `json:"descricao"`
	Valor     decimal.Decimal `json:"valor"`
	Ativo     *bool           `json:"ativo"`
	Version   *int64          `json:"version"`
}

func (p benefitPayload) toInput() domain.BenefitInput {
	ativo := true
	if p.Ativo != nil {
		ativo = *p.Ativo
	}
	return domain.BenefitInput{
		Nome:            p.Nome,
		Descricao:       p.Descricao,
		Valor:           p.Valor,
		Ativo:           ativo,
		ExpectedVersion: p.Version,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"}, "GET", "/health")
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.List(r.Context())
	if err != nil {
		h.respondDomainError(w, err, "GET", "/beneficios")
		return
	}
	h.respondJSON(w, http.StatusOK, records, "GET", "/beneficios")
}

func (h *Handler) ListActive(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.ListActive(r.Context())
	if err != nil {
		h.respondDomainError(w, err, "GET", "/beneficios/ativos")
		return
	}
	h.respondJSON(w, http.StatusOK, records, "GET", "/beneficios/ativos")
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	summary, err := h.stats.Summarize(r.Context())
	if err != nil {
		h.respondDomainError(w, err, "GET", "/beneficios/stats")
		return
	}
	h.respondJSON(w, http.StatusOK, summary, "GET", "/beneficios/stats")
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "GET", "/beneficios/{id}")
	if !ok {
		return
	}

	b, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.respondDomainError(w, err, "GET", "/beneficios/{id}")
		return
	}
	h.respondJSON(w, http.StatusOK, b, "GET", "/beneficios/{id}")
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var payload benefitPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON body", "POST", "/beneficios")
		return
	}

	b, err := h.store.Create(r.Context(), payload.toInput())
	if err != nil {
		h.respondDomainError(w, err, "POST", "/beneficios")
		return
	}
	h.respondJSON(w, http.StatusCreated, b, "POST", "/beneficios")
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "PUT", "/beneficios/{id}")
	if !ok {
		return
	}

	var payload benefitPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON body", "PUT", "/beneficios/{id}")
		return
	}

	b, err := h.store.Update(r.Context(), id, payload.toInput())
	if err != nil {
		h.respondDomainError(w, err, "PUT", "/beneficios/{id}")
		return
	}
	h.respondJSON(w, http.StatusOK, b, "PUT", "/beneficios/{id}")
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "DELETE", "/beneficios/{id}")
	if !ok {
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		h.respondDomainError(w, err, "DELETE", "/beneficios/{id}")
		return
	}
	httpReqTotal.WithLabelValues("DELETE", "/beneficios/{id}", "204").Inc()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpLatency.WithLabelValues("POST", "/beneficios/transferir"))
	defer timer.ObserveDuration()

	var req domain.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON body", "POST", "/beneficios/transferir")
		return
	}

	from, to, err := h.engine.Transfer(r.Context(), req)
	if err != nil {
		h.respondDomainError(w, err, "POST", "/beneficios/transferir")
		return
	}

	result := domain.TransferResult{Message: transferConfirmation, From: from, To: to}
	h.respondJSON(w, http.StatusOK, result, "POST", "/beneficios/transferir")
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, method, endpoint string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid id", method, endpoint)
		return 0, false
	}
	return id, true
}

func statusFor(code domain.ErrorCode) int {
	switch code {
	case domain.ErrorValidation:
		return http.StatusBadRequest
	case domain.ErrorNotFound:
		return http.StatusNotFound
	case domain.ErrorVersionConflict, domain.ErrorInsufficientBalance:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) respondDomainError(w http.ResponseWriter, err error, method, endpoint string) {
	var de domain.Error
	if errors.As(err, &de) {
		h.respondJSON(w, statusFor(de.Code), map[string]interface{}{
			"error": de.Msg,
			"code":  de.Code,
			"field": de.Field,
		}, method, endpoint)
		return
	}

	h.logger.Error("unhandled error", zap.String("endpoint", endpoint), zap.Error(err))
	h.respondError(w, http.StatusInternalServerError, "internal server error", method, endpoint)
}

// Helpers
func (h *Handler) respondJSON(w http.ResponseWriter, code int, payload interface{}, method, endpoint string) {
	httpReqTotal.WithLabelValues(method, endpoint, strconv.Itoa(code)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

func (h *Handler) respondError(w http.ResponseWriter, code int, msg, method, endpoint string) {
	h.respondJSON(w, code, map[string]string{"error": msg}, method, endpoint)
}
