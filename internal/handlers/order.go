package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"atelier_back_end/internal/models"
	"atelier_back_end/internal/orders"
	services "atelier_back_end/internal/service"
)

// OrderHandler expose les endpoints de commande
type OrderHandler struct {
	Service *orders.Service
}

func NewOrderHandler(service *orders.Service) *OrderHandler {
	return &OrderHandler{Service: service}
}

// CreateOrder crée une commande directe, sans vérification de paiement
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req orders.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "kind": models.KindValidation})
		return
	}

	order, err := h.Service.CreateDirect(c.Request.Context(), req)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// ListOrders retourne toutes les commandes, filtre ?status= optionnel
func (h *OrderHandler) ListOrders(c *gin.Context) {
	status := c.Query("status")

	list, err := h.Service.List(c.Request.Context(), status)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": list, "count": len(list)})
}

// GetOrder retourne une commande par identifiant
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// UpdateOrderStatus permet à un admin de faire avancer le statut d'une commande
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	var req struct {
		Status        string `json:"status" binding:"required"`
		PaymentStatus string `json:"payment_status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "kind": models.KindValidation})
		return
	}

	order, err := h.Service.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, req.PaymentStatus)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// SearchOrders interroge l'index Elasticsearch du tableau de bord
func (h *OrderHandler) SearchOrders(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètre q requis", "kind": models.KindValidation})
		return
	}

	results, err := services.SearchOrders(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Recherche indisponible", "kind": models.KindInternal})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results, "count": len(results)})
}
