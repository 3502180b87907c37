package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"coffee-shop/internal/domain"
	"coffee-shop/internal/shop"
	"coffee-shop/internal/usecase"
)

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.svc.Accounts.Signup(r.Context(), shop.SignupInput{Name: req.Name, Email: req.Email, Password: req.Password})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, signupResponse{Message: "User registered successfully", UserID: u.ID})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message  string `json:"message"`
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	UserRole string `json:"userRole"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.svc.Accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{
		Message:  "Login successful",
		UserID:   out.User.ID,
		Name:     out.User.Name,
		Email:    out.User.Email,
		UserRole: out.Role,
	})
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.Products.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

type typesResponse struct {
	Types []string `json:"types"`
}

func (h *Handler) productTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.svc.Products.Types(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if types == nil {
		types = []string{}
	}
	writeJSON(w, http.StatusOK, typesResponse{Types: types})
}

type addProductRequest struct {
	Name          string   `json:"name"`
	Image         string   `json:"image"`
	Price         float64  `json:"price"`
	DiscountPrice *float64 `json:"discountPrice"`
	Type          string   `json:"type"`
	Description   string   `json:"description"`
	InStock       *bool    `json:"inStock"`
}

type addProductResponse struct {
	Message   string `json:"message"`
	ProductID string `json:"productId"`
}

func (h *Handler) addProduct(w http.ResponseWriter, r *http.Request) {
	var req addProductRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.svc.Products.Add(r.Context(), shop.AddProductInput{
		Name:          req.Name,
		Image:         req.Image,
		Price:         req.Price,
		DiscountPrice: req.DiscountPrice,
		Type:          req.Type,
		Description:   req.Description,
		InStock:       req.InStock,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, addProductResponse{Message: "Product added successfully", ProductID: p.ID})
}

type stockRequest struct {
	InStock *bool `json:"inStock"`
}

func (h *Handler) setStock(w http.ResponseWriter, r *http.Request) {
	var req stockRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.InStock == nil {
		writeError(w, r, usecase.NewError(usecase.ErrorInvalidInput, "in_stock_required", nil))
		return
	}
	p, err := h.svc.Products.SetStock(r.Context(), chi.URLParam(r, "productId"), *req.InStock)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type addToCartRequest struct {
	UserID    string `json:"userId"`
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity"`
}

type addToCartResponse struct {
	Message  string `json:"message"`
	Quantity int    `json:"quantity"`
}

func (h *Handler) addToCart(w http.ResponseWriter, r *http.Request) {
	var req addToCartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	total, err := h.svc.Orders.AddToCart(r.Context(), req.UserID, req.ProductID, qty)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, addToCartResponse{Message: "Item added to cart", Quantity: total})
}

type cartLineResponse struct {
	ProductID   string  `json:"productId"`
	Name        string  `json:"name"`
	Image       string  `json:"image"`
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	Total       float64 `json:"total"`
}

func (h *Handler) viewCart(w http.ResponseWriter, r *http.Request) {
	lines, err := h.svc.Orders.ViewCart(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]cartLineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, cartLineResponse(l))
	}
	writeJSON(w, http.StatusOK, out)
}

type checkoutItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type checkoutRequest struct {
	UserID string                `json:"userId"`
	Items  []checkoutItemRequest `json:"items"`
}

type checkoutResponse struct {
	Message string       `json:"message"`
	Order   domain.Order `json:"order"`
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in := shop.CheckoutInput{UserID: req.UserID, Items: make([]shop.CheckoutItem, 0, len(req.Items))}
	for _, it := range req.Items {
		in.Items = append(in.Items, shop.CheckoutItem(it))
	}
	order, err := h.svc.Orders.Checkout(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, checkoutResponse{Message: "Order placed successfully", Order: order})
}

func (h *Handler) orderHistory(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.Orders.History(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}
