package models

import "time"

// Statuts client
const (
	CustomerStatusActive   = "active"
	CustomerStatusInactive = "inactive"
)

// Customer : agrégat dénormalisé par email, une ligne par adresse unique.
// Les compteurs sont maintenus incrémentalement, jamais recalculés.
type Customer struct {
	CustomerID    string    `json:"customer_id"`
	Email         string    `json:"email"`
	CustomerName  string    `json:"customer_name"`
	Phone         string    `json:"phone,omitempty"`
	Location      string    `json:"location,omitempty"`
	TotalOrders   int64     `json:"total_orders"`
	TotalSpent    float64   `json:"total_spent"`
	LastOrderDate time.Time `json:"last_order_date"`
	PaymentStatus string    `json:"payment_status"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ContactInfo : coordonnées entrantes lors d'un upsert.
// Un champ vide ne remplace jamais une valeur existante (merge).
type ContactInfo struct {
	Name     string
	Phone    string
	Location string
}
