package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"atelier_back_end/internal/cache"
	"atelier_back_end/internal/store"
)

// CustomerHandler expose la lecture des agrégats clients (admin)
type CustomerHandler struct {
	Ledger store.CustomerLedger
}

func NewCustomerHandler(ledger store.CustomerLedger) *CustomerHandler {
	return &CustomerHandler{Ledger: ledger}
}

// GetCustomer retourne l'agrégat d'un client par identifiant (via cache Redis)
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	customer, err := cache.GetCustomerByID(c.Request.Context(), h.Ledger, c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, customer)
}

// ListCustomers retourne tous les agrégats clients pour le tableau de bord
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	customers, err := h.Ledger.List(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"customers": customers, "count": len(customers)})
}
