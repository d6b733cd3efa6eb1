package payement

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"atelier_back_end/internal/handlers"
	"atelier_back_end/internal/models"
	"atelier_back_end/internal/orders"
	"atelier_back_end/internal/payments"
)

// PaymentHandler expose la création d'intent et la confirmation de paiement
type PaymentHandler struct {
	Gateway payments.Gateway
	Service *orders.Service
}

func NewPaymentHandler(gateway payments.Gateway, service *orders.Service) *PaymentHandler {
	return &PaymentHandler{Gateway: gateway, Service: service}
}

// CreatePaymentIntent démarre un paiement côté fournisseur
func (h *PaymentHandler) CreatePaymentIntent(c *gin.Context) {
	var req struct {
		Amount   float64 `json:"amount"`
		Currency string  `json:"currency"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "kind": models.KindValidation})
		return
	}
	if req.Currency == "" {
		req.Currency = "eur"
	}

	intent, err := h.Gateway.CreateIntent(c.Request.Context(), req.Amount, req.Currency)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"clientSecret":    intent.ClientSecret,
		"paymentIntentId": intent.IntentID,
	})
}

// ConfirmPayment vérifie le paiement auprès du fournisseur puis crée la
// commande. Rejouer la confirmation du même intent retourne la même commande.
func (h *PaymentHandler) ConfirmPayment(c *gin.Context) {
	var req struct {
		orders.CreateOrderRequest
		PaymentIntentID string `json:"payment_intent_id"`
		ShippingNote    string `json:"shipping_note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "kind": models.KindValidation})
		return
	}

	order, err := h.Service.CreateFromConfirmedPayment(
		c.Request.Context(), req.PaymentIntentID, req.CreateOrderRequest, req.ShippingNote)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"order": order})
}
