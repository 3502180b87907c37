package domain

import "time"

// Order statuses.
const (
	OrderPending   = "Pending"
	OrderCompleted = "Completed"
	OrderCancelled = "Cancelled"
)

// Contact message statuses.
const (
	ContactUnread  = "unread"
	ContactRead    = "read"
	ContactReplied = "replied"
)

// User is a registered customer account.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
}

// CartLine is one product in a user's cart.
type CartLine struct {
	UserID    string
	ProductID string
	Quantity  int
}

// OrderItem is a priced line of a placed order.
type OrderItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
}

// Order is a placed order.
type Order struct {
	ID          string      `json:"orderId"`
	UserID      string      `json:"userId"`
	Items       []OrderItem `json:"items"`
	TotalAmount float64     `json:"totalAmount"`
	Status      string      `json:"status"`
	Timestamp   time.Time   `json:"timestamp"`
}

// ProductStats aggregates how often a product has been ordered.
type ProductStats struct {
	ProductID    string
	TimesOrdered int
	TotalRevenue float64
}

// Contact is a message submitted through the contact form.
type Contact struct {
	ID          string    `json:"contactId"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Message     string    `json:"message"`
	SubmittedAt time.Time `json:"submittedAt"`
	Status      string    `json:"status"`
}
