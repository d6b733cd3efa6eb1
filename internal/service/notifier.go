package services

import (
	"context"
	"log"

	"atelier_back_end/internal/cache"
	"atelier_back_end/internal/models"
	"atelier_back_end/internal/store"
	"atelier_back_end/internal/utils"
)

// OrderNotifier branche les effets de bord d'une commande : indexation
// Elasticsearch, invalidation du cache client, e-mail de confirmation.
// Tout est best-effort, la commande est déjà persistée.
type OrderNotifier struct {
	Ledger store.CustomerLedger
}

func NewOrderNotifier(ledger store.CustomerLedger) *OrderNotifier {
	return &OrderNotifier{Ledger: ledger}
}

func (n *OrderNotifier) OrderCreated(order models.Order) {
	IndexOrder(order)
	n.invalidateCustomer(order)

	// E-mail de confirmation avec facture uniquement pour les commandes payées
	if order.PaymentStatus == models.PaymentStatusComplete {
		go n.sendConfirmation(order)
	}
}

func (n *OrderNotifier) OrderStatusChanged(order models.Order) {
	IndexOrder(order)
}

func (n *OrderNotifier) invalidateCustomer(order models.Order) {
	ctx := context.Background()
	customer, err := n.Ledger.GetByEmail(ctx, order.Customer.Email)
	if err != nil {
		return
	}
	cache.InvalidateCustomer(ctx, customer.CustomerID)
}

func (n *OrderNotifier) sendConfirmation(order models.Order) {
	html := utils.GenerateOrderConfirmationHTML(order)

	pdf, err := utils.GenerateInvoicePDF(order)
	if err != nil {
		log.Println("❌ Erreur génération PDF :", err)
		pdf = nil
	}

	if err := utils.SendConfirmationEmail(order.Customer.Email,
		"Confirmation de votre commande Atelier", html, pdf); err != nil {
		log.Println("❌ Erreur envoi e-mail confirmation :", err)
	} else {
		log.Println("📧 E-mail de confirmation envoyé à", order.Customer.Email)
	}
}
