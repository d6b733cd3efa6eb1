package models

import "time"

// Statuts de commande
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Statuts de paiement
const (
	PaymentStatusPending  = "pending"
	PaymentStatusComplete = "complete"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// ValidOrderStatuses liste les statuts de commande acceptés
var ValidOrderStatuses = map[string]bool{
	OrderStatusPending:    true,
	OrderStatusProcessing: true,
	OrderStatusShipped:    true,
	OrderStatusDelivered:  true,
	OrderStatusCancelled:  true,
}

// ValidPaymentStatuses liste les statuts de paiement acceptés
var ValidPaymentStatuses = map[string]bool{
	PaymentStatusPending:  true,
	PaymentStatusComplete: true,
	PaymentStatusFailed:   true,
	PaymentStatusRefunded: true,
}

// OrderTransitions : transitions autorisées par statut courant.
// Progression avant uniquement, cancelled accessible depuis tout état non terminal.
var OrderTransitions = map[string][]string{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

// CanTransition vérifie qu'un passage from → to est autorisé
func CanTransition(from, to string) bool {
	for _, next := range OrderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CustomerSnapshot : copie des coordonnées au moment de la commande.
// Les modifications ultérieures du client ne touchent jamais les commandes passées.
type CustomerSnapshot struct {
	Name    string `json:"customer_name"`
	Email   string `json:"customer_email"`
	Phone   string `json:"customer_phone"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	Country string `json:"country,omitempty"`
}

// OrderItem : ligne de commande avec copie figée du produit
type OrderItem struct {
	ProductID     string  `json:"product_id"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Quantity      int     `json:"quantity"`
	Variant       string  `json:"variant,omitempty"`
	Customization string  `json:"customization,omitempty"`
}

// Order : une transaction de checkout
type Order struct {
	OrderID         string           `json:"order_id"`
	Customer        CustomerSnapshot `json:"customer"`
	Items           []OrderItem      `json:"items"`
	Total           float64          `json:"total"`
	Status          string           `json:"status"`
	PaymentStatus   string           `json:"payment_status"`
	PaymentIntentID string           `json:"payment_intent_id,omitempty"`
	Notes           string           `json:"notes,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}
