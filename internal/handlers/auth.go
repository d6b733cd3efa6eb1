package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"

	"atelier_back_end/internal/database"
	"atelier_back_end/internal/models"
	"atelier_back_end/internal/utils"
)

// ================== AUTH LOCALE ==================

// Register crée un compte et retourne un token
func Register(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "kind": models.KindValidation})
		return
	}

	// email déjà pris ?
	var existingID gocql.UUID
	err := database.GetPreparedGetUserByEmail().Bind(input.Email).Scan(&existingID)
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Un compte avec cet email existe déjà", "kind": models.KindConflict})
		return
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		RespondError(c, models.NewInternalError("Erreur création compte", err))
		return
	}

	userID := gocql.UUID(uuid.New())
	if err := database.GetPreparedInsertUser().Bind(
		userID, input.Email, hashedPassword, input.Name, "customer", time.Now()).Exec(); err != nil {
		RespondError(c, models.NewInternalError("Erreur création compte", err))
		return
	}
	if err := database.GetPreparedInsertUserByEmail().Bind(input.Email, userID).Exec(); err != nil {
		log.Printf("⚠️ Insertion users_by_email échouée pour %s: %v", input.Email, err)
	}

	user := models.User{ID: userID.String(), Name: input.Name, Email: input.Email, Role: "customer"}
	token, err := utils.GenerateJWT(user)
	if err != nil {
		RespondError(c, models.NewInternalError("Erreur génération token", err))
		return
	}

	log.Printf("✅ Compte créé pour %s", input.Email)
	c.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
}

// Login vérifie les identifiants et émet un token
func Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "kind": models.KindValidation})
		return
	}

	var userID gocql.UUID
	if err := database.GetPreparedGetUserByEmail().Bind(input.Email).Scan(&userID); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Identifiants invalides", "kind": models.KindAuthentication})
		return
	}

	var email, password, name, role string
	if err := database.GetPreparedGetUserByID().Bind(userID).Scan(&email, &password, &name, &role); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Identifiants invalides", "kind": models.KindAuthentication})
		return
	}

	ok, err := utils.CheckPassword(input.Password, password)
	if err != nil || !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Identifiants invalides", "kind": models.KindAuthentication})
		return
	}

	user := models.User{ID: userID.String(), Name: name, Email: email, Role: role}
	token, err := utils.GenerateJWT(user)
	if err != nil {
		RespondError(c, models.NewInternalError("Erreur génération token", err))
		return
	}

	log.Printf("✅ Connexion de %s", email)
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}
