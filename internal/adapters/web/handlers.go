package web

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"pharmacy-backoffice/internal/core"
)

// Handler wires the engine's services into a JSON API. It is a thin wrapper:
// all invariants live in the engine, the handlers only translate HTTP.
type Handler struct {
	orders  core.OrderService
	alerts  core.AlertService
	catalog core.CatalogRepository
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(orders core.OrderService, alerts core.AlertService, catalog core.CatalogRepository, allowedOrigins string, log zerolog.Logger) http.Handler {
	h := &Handler{orders: orders, alerts: alerts, catalog: catalog}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(log))
	r.Use(Recoverer(log))
	r.Use(CORS(allowedOrigins))

	r.Get("/api/health", h.health)

	r.Get("/api/alerts", h.listAlerts)
	r.Get("/api/drugs", h.listDrugs)
	r.Get("/api/drugs/{drugID}/stock-status", h.stockStatus)

	r.Route("/api/orders", func(r chi.Router) {
		r.Post("/", h.createOrder)
		r.Get("/", h.listOrders)
		r.Post("/approvals/bulk", h.bulkApprove)
		r.Route("/{orderID}", func(r chi.Router) {
			r.Get("/", h.getOrder)
			r.Post("/lines", h.addLine)
			r.Put("/lines/{lineID}", h.updateLine)
			r.Delete("/lines/{lineID}", h.removeLine)
			r.Post("/submit", h.submitOrder)
			r.Post("/approval", h.recordApproval)
			r.Post("/transit", h.markInTransit)
			r.Post("/delayed", h.markDelayed)
			r.Post("/delivered", h.markDelivered)
			r.Post("/cancel", h.cancelOrder)
		})
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) listAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.alerts.CurrentAlerts(r.Context())
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	if alerts == nil {
		alerts = []core.StockAlert{}
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (h *Handler) listDrugs(w http.ResponseWriter, r *http.Request) {
	drugs, err := h.catalog.ListDrugs(r.Context())
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	if drugs == nil {
		drugs = []core.Drug{}
	}
	writeJSON(w, http.StatusOK, drugs)
}

func (h *Handler) stockStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.alerts.DrugStockStatus(r.Context(), chi.URLParam(r, "drugID"))
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]core.StockStatus{"stock_status": status})
}

type createOrderRequest struct {
	SupplierID string             `json:"supplier_id"`
	Priority   core.OrderPriority `json:"priority"`
	Notes      string             `json:"notes"`
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, "invalid JSON body", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	po, err := h.orders.CreateOrder(r.Context(), req.SupplierID, req.Priority, req.Notes)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, po)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	status := core.OrderStatus(r.URL.Query().Get("status"))
	orders, err := h.orders.ListOrders(r.Context(), status)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	if orders == nil {
		orders = []core.PurchaseOrder{}
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	po, err := h.orders.GetOrder(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, po)
}

type lineRequest struct {
	DrugID   string `json:"drug_id"`
	Quantity int    `json:"quantity"`
}

func (h *Handler) addLine(w http.ResponseWriter, r *http.Request) {
	var req lineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, "invalid JSON body", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	po, err := h.orders.AddLineItem(r.Context(), chi.URLParam(r, "orderID"), req.DrugID, req.Quantity)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, po)
}

func (h *Handler) updateLine(w http.ResponseWriter, r *http.Request) {
	var req lineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, "invalid JSON body", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	po, err := h.orders.UpdateLineItem(r.Context(), chi.URLParam(r, "orderID"), chi.URLParam(r, "lineID"), req.Quantity)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, po)
}

func (h *Handler) removeLine(w http.ResponseWriter, r *http.Request) {
	po, err := h.orders.RemoveLineItem(r.Context(), chi.URLParam(r, "orderID"), chi.URLParam(r, "lineID"))
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, po)
}

func (h *Handler) submitOrder(w http.ResponseWriter, r *http.Request) {
	po, err := h.orders.SubmitOrder(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, po)
}

type approvalRequest struct {
	ApproverID string              `json:"approver_id"`
	Role       core.ApproverRole   `json:"role"`
	Action     core.ApprovalAction `json:"action"`
	Comments   string              `json:"comments"`
}

func (h *Handler) recordApproval(w http.ResponseWriter, r *http.Request) {
	var req approvalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, "invalid JSON body", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	po, err := h.orders.RecordApproval(r.Context(), chi.URLParam(r, "orderID"),
		req.ApproverID, req.Role, req.Action, req.Comments)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, po)
}

type bulkApprovalRequest struct {
	OrderIDs []string `json:"order_ids"`
	approvalRequest
}

type bulkApprovalResult struct {
	OrderID string           `json:"order_id"`
	Status  core.OrderStatus `json:"status,omitempty"`
	Error   string           `json:"error,omitempty"`
}

func (h *Handler) bulkApprove(w http.ResponseWriter, r *http.Request) {
	var req bulkApprovalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, "invalid JSON body", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	results := h.orders.BulkApprove(r.Context(), req.OrderIDs,
		req.ApproverID, req.Role, req.Action, req.Comments)

	out := make([]bulkApprovalResult, 0, len(results))
	for _, res := range results {
		item := bulkApprovalResult{OrderID: res.OrderID}
		if res.Err != nil {
			item.Error = res.Err.Error()
		} else {
			item.Status = res.Order.Status
		}
		out = append(out, item)
	}
	// Per-order outcomes; the batch itself always succeeds as a request.
	writeJSON(w, http.StatusMultiStatus, out)
}

func (h *Handler) markInTransit(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.orders.MarkInTransit)
}

func (h *Handler) markDelayed(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.orders.MarkDelayed)
}

func (h *Handler) markDelivered(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.orders.MarkDelivered)
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.orders.CancelOrder)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request,
	fn func(ctx context.Context, orderID string) (*core.PurchaseOrder, error)) {
	po, err := fn(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, po)
}
