// Package handler is the HTTP edge of the coffee shop. It routes requests
// with chi, maps usecase errors to statuses and adapts API Gateway proxy
// events for Lambda.
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"coffee-shop/internal/domain"
	"coffee-shop/internal/shop"
	"coffee-shop/internal/usecase"
)

const correlationHeader = "X-Correlation-Id"

type ChatAPI interface {
	Chat(ctx context.Context, in usecase.ChatInput) usecase.ChatOutput
	Conversation(sessionID string) ([]domain.Turn, error)
	CoffeeList() ([]domain.CatalogEntry, error)
	CoffeeInfo(name string) (domain.CatalogEntry, error)
	RefreshCatalog(ctx context.Context) (int, error)
}

type AccountAPI interface {
	Signup(ctx context.Context, in shop.SignupInput) (domain.User, error)
	Login(ctx context.Context, email, password string) (shop.LoginOutput, error)
}

type ProductAPI interface {
	List(ctx context.Context) ([]domain.Product, error)
	Types(ctx context.Context) ([]string, error)
	Add(ctx context.Context, in shop.AddProductInput) (domain.Product, error)
	SetStock(ctx context.Context, id string, inStock bool) (domain.Product, error)
}

type OrderAPI interface {
	AddToCart(ctx context.Context, userID, productID string, quantity int) (int, error)
	ViewCart(ctx context.Context, userID string) ([]shop.CartView, error)
	Checkout(ctx context.Context, in shop.CheckoutInput) (domain.Order, error)
	History(ctx context.Context, userID string) ([]domain.Order, error)
}

type AdminAPI interface {
	Orders(ctx context.Context) ([]shop.AdminOrder, error)
	CompleteOrder(ctx context.Context, id string) error
	CancelOrder(ctx context.Context, id string) error
	Stats(ctx context.Context) (shop.Stats, error)
	PopularProducts(ctx context.Context) ([]shop.PopularProduct, error)
}

type ContactAPI interface {
	Submit(ctx context.Context, in shop.ContactInput) (domain.Contact, error)
	List(ctx context.Context) ([]domain.Contact, error)
	SetStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
}

// HealthChecker reports whether the backing store answers.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Services are the collaborators behind the routes. Only Chat is required;
// the routes of a nil service are not mounted.
type Services struct {
	Chat      ChatAPI
	Accounts  AccountAPI
	Products  ProductAPI
	Orders    OrderAPI
	Admin     AdminAPI
	Contacts  ContactAPI
	Health    HealthChecker
	OrderFeed http.Handler
}

type Option func(*Handler)

// WithAllowedOrigins restricts CORS to origins. All origins are allowed by default.
func WithAllowedOrigins(origins ...string) Option {
	return func(h *Handler) {
		if len(origins) > 0 {
			h.origins = origins
		}
	}
}

type Handler struct {
	svc     Services
	origins []string
	router  chi.Router
	now     func() time.Time
}

func NewHandler(svc Services, opts ...Option) (*Handler, error) {
	if svc.Chat == nil {
		return nil, errors.New("chat service must not be nil")
	}
	h := &Handler{
		svc:     svc,
		origins: []string{"*"},
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(h)
	}
	h.router = h.buildRouter()
	return h, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(correlationID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: h.origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", correlationHeader},
		ExposedHeaders: []string{correlationHeader},
		MaxAge:         300,
	}))

	r.Get("/", h.root)
	if h.svc.OrderFeed != nil {
		r.Handle("/ws/orders", h.svc.OrderFeed)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.health)

		r.Post("/chatbot", h.chatbot)
		r.Get("/conversation/{sessionId}", h.conversation)
		r.Get("/coffee-list", h.coffeeList)
		r.Get("/coffee-info/{name}", h.coffeeInfo)
		r.Post("/admin/catalog/refresh", h.refreshCatalog)

		if h.svc.Accounts != nil {
			r.Post("/signup", h.signup)
			r.Post("/login", h.login)
		}
		if h.svc.Products != nil {
			r.Get("/products", h.listProducts)
			r.Get("/product-types", h.productTypes)
			r.Post("/add-product", h.addProduct)
			r.Put("/admin/products/{productId}/stock", h.setStock)
		}
		if h.svc.Orders != nil {
			r.Post("/add-to-cart", h.addToCart)
			r.Get("/view-cart/{userId}", h.viewCart)
			r.Post("/checkout", h.checkout)
			r.Get("/order-history/{userId}", h.orderHistory)
		}
		if h.svc.Admin != nil {
			r.Get("/admin/orders", h.adminOrders)
			r.Put("/admin/mark-completed/{orderId}", h.completeOrder)
			r.Put("/admin/cancel-order/{orderId}", h.cancelOrder)
			r.Get("/admin/stats", h.adminStats)
			r.Get("/admin/products", h.popularProducts)
		}
		if h.svc.Contacts != nil {
			r.Post("/contact", h.submitContact)
			r.Get("/admin/contacts", h.listContacts)
			r.Put("/admin/contacts/{contactId}/status", h.setContactStatus)
			r.Delete("/admin/contacts/{contactId}", h.deleteContact)
		}
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: string(usecase.ErrorNotFound), Detail: "route_not_found"})
	})
	return r
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *Handler) root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, messageResponse{Message: "Coffee Shop Server Running"})
}

type healthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Connected bool   `json:"connected"`
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	out := healthResponse{Status: "healthy", Database: "dynamodb"}
	if h.svc.Health != nil {
		if err := h.svc.Health.Ping(r.Context()); err != nil {
			loggerFrom(r).Warn().Err(err).Msg("health check ping failed")
			out.Status = "degraded"
		} else {
			out.Connected = true
		}
	}
	writeJSON(w, http.StatusOK, out)
}
