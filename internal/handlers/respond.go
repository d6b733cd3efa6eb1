package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"atelier_back_end/internal/models"
)

// RespondError traduit une erreur du domaine en réponse JSON structurée.
// Jamais de détail interne dans le corps : le kind et un message humain.
func RespondError(c *gin.Context, err error) {
	appErr := models.AsAppError(err)
	if appErr.Status >= http.StatusInternalServerError {
		log.Printf("❌ %v", err)
	}
	c.JSON(appErr.Status, gin.H{"error": appErr.Message, "kind": appErr.Kind})
}
