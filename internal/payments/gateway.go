package payments

import "context"

// Statuts d'intent normalisés, indépendants du fournisseur
const (
	IntentStatusCreated        = "created"
	IntentStatusRequiresAction = "requires_action"
	IntentStatusSucceeded      = "succeeded"
	IntentStatusFailed         = "failed"
	IntentStatusCanceled       = "canceled"
)

// MinimumAmount : montant minimum accepté par le fournisseur (unité majeure)
const MinimumAmount = 0.50

// SupportedCurrencies : devises acceptées au checkout
var SupportedCurrencies = map[string]bool{
	"eur": true,
	"usd": true,
	"gbp": true,
}

// Intent : représentation du paiement en attente côté fournisseur
type Intent struct {
	IntentID     string `json:"payment_intent_id"`
	ClientSecret string `json:"client_secret"`
}

// Gateway : frontière avec le processeur de paiement externe. Le verdict de
// complétion d'un paiement ne vient que d'ici, jamais du client.
type Gateway interface {
	// CreateIntent démarre un paiement. amount en unité majeure (euros, pas centimes).
	CreateIntent(ctx context.Context, amount float64, currency string) (Intent, error)
	// GetIntentStatus retourne le statut normalisé d'un intent existant.
	GetIntentStatus(ctx context.Context, intentID string) (string, error)
}
