package store

import (
	"context"
	"time"

	"atelier_back_end/internal/models"
)

// OrderStore persiste et relit les commandes.
type OrderStore interface {
	// Insert écrit une commande neuve.
	Insert(ctx context.Context, order models.Order) error
	// Get retourne la commande ou models.ErrOrderNotFound.
	Get(ctx context.Context, orderID string) (models.Order, error)
	// List retourne les commandes, filtrées par statut si status != "".
	List(ctx context.Context, status string) ([]models.Order, error)
	// UpdateStatus applique statut et statut de paiement (paymentStatus vide = inchangé).
	UpdateStatus(ctx context.Context, orderID, status, paymentStatus string, updatedAt time.Time) error
	// ClaimIntent réserve un payment intent pour un orderID. Si l'intent est déjà
	// réclamé, applied est false et existingOrderID pointe la commande gagnante.
	ClaimIntent(ctx context.Context, intentID, orderID string) (applied bool, existingOrderID string, err error)
	// ReleaseIntent libère une réservation dont la commande n'a pas pu être
	// écrite. La réservation n'est supprimée que si orderID est bien le titulaire.
	ReleaseIntent(ctx context.Context, intentID, orderID string) error
	// GetByIntent retourne la commande liée à un intent, ou models.ErrOrderNotFound.
	GetByIntent(ctx context.Context, intentID string) (models.Order, error)
}

// CustomerLedger maintient l'agrégat client dénormalisé par email.
type CustomerLedger interface {
	// Upsert incrémente atomiquement les compteurs du client (créé au premier
	// passage) et fusionne les coordonnées non vides.
	Upsert(ctx context.Context, email string, orderTotal float64, orderDate time.Time,
		contact models.ContactInfo, paymentStatus string) (models.Customer, error)
	// GetByEmail retourne l'agrégat ou models.ErrCustomerNotFound.
	GetByEmail(ctx context.Context, email string) (models.Customer, error)
	// GetByID passe par la table de correspondance customer_id → email.
	GetByID(ctx context.Context, customerID string) (models.Customer, error)
	// List retourne tous les agrégats clients.
	List(ctx context.Context) ([]models.Customer, error)
}
