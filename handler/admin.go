package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"coffee-shop/internal/domain"
	"coffee-shop/internal/shop"
)

type adminOrderResponse struct {
	domain.Order
	UserName string `json:"userName"`
}

func (h *Handler) adminOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.Admin.Orders(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]adminOrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, adminOrderResponse{Order: o.Order, UserName: o.UserName})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) completeOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Admin.CompleteOrder(r.Context(), chi.URLParam(r, "orderId")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Order marked as completed"})
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Admin.CancelOrder(r.Context(), chi.URLParam(r, "orderId")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Order cancelled"})
}

type statsResponse struct {
	TotalOrders     int     `json:"totalOrders"`
	Revenue         float64 `json:"revenue"`
	PendingOrders   int     `json:"pendingOrders"`
	CompletedOrders int     `json:"completedOrders"`
}

func (h *Handler) adminStats(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Admin.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse(s))
}

type popularProductResponse struct {
	ProductID    string  `json:"productId"`
	Name         string  `json:"name"`
	Image        string  `json:"image"`
	TimesOrdered int     `json:"timesOrdered"`
	TotalRevenue float64 `json:"totalRevenue"`
}

func (h *Handler) popularProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.Admin.PopularProducts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]popularProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, popularProductResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type contactResponse struct {
	Message   string `json:"message"`
	ContactID string `json:"contactId"`
}

func (h *Handler) submitContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.svc.Contacts.Submit(r.Context(), shop.ContactInput(req))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contactResponse{Message: "Thank you for your message. We'll get back to you soon!", ContactID: c.ID})
}

func (h *Handler) listContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.svc.Contacts.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if contacts == nil {
		contacts = []domain.Contact{}
	}
	writeJSON(w, http.StatusOK, contacts)
}

func (h *Handler) setContactStatus(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if err := h.svc.Contacts.SetStatus(r.Context(), chi.URLParam(r, "contactId"), status); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Contact status updated to " + status})
}

func (h *Handler) deleteContact(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Contacts.Delete(r.Context(), chi.URLParam(r, "contactId")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Contact deleted successfully"})
}

