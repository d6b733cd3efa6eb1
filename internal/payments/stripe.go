package payments

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"

	"atelier_back_end/internal/models"
)

// gatewayTimeout borne l'aller-retour réseau vers Stripe
const gatewayTimeout = 5 * time.Second

// StripeGateway : implémentation Stripe de la frontière de paiement.
// La clé globale stripe.Key est posée au démarrage dans main.
type StripeGateway struct{}

func NewStripeGateway() *StripeGateway {
	return &StripeGateway{}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, amount float64, currency string) (Intent, error) {
	if stripe.Key == "" {
		return Intent{}, models.NewConfigurationError("Clé Stripe absente, paiement indisponible")
	}
	if amount < MinimumAmount {
		return Intent{}, models.NewValidationError(
			fmt.Sprintf("Montant minimum %.2f requis", MinimumAmount))
	}
	if !SupportedCurrencies[currency] {
		return Intent{}, models.NewValidationError("Devise non supportée: " + currency)
	}

	ctx, cancel := context.WithTimeout(ctx, gatewayTimeout)
	defer cancel()

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(amount * 100)),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx

	intent, err := paymentintent.New(params)
	if err != nil {
		log.Println("❌ Erreur Stripe (création intent):", err)
		return Intent{}, models.NewUpstreamError("Fournisseur de paiement injoignable", err)
	}

	log.Printf("💳 PaymentIntent créé : %s (%.2f %s)", intent.ID, amount, currency)
	return Intent{IntentID: intent.ID, ClientSecret: intent.ClientSecret}, nil
}

func (g *StripeGateway) GetIntentStatus(ctx context.Context, intentID string) (string, error) {
	if stripe.Key == "" {
		return "", models.NewConfigurationError("Clé Stripe absente, paiement indisponible")
	}

	ctx, cancel := context.WithTimeout(ctx, gatewayTimeout)
	defer cancel()

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	intent, err := paymentintent.Get(intentID, params)
	if err != nil {
		log.Println("❌ Erreur Stripe (lecture intent):", err)
		return "", models.NewUpstreamError("Fournisseur de paiement injoignable", err)
	}

	return normalizeStatus(intent.Status), nil
}

// normalizeStatus projette les statuts Stripe sur le jeu interne
func normalizeStatus(status stripe.PaymentIntentStatus) string {
	switch status {
	case stripe.PaymentIntentStatusSucceeded:
		return IntentStatusSucceeded
	case stripe.PaymentIntentStatusRequiresPaymentMethod, stripe.PaymentIntentStatusRequiresConfirmation:
		return IntentStatusCreated
	case stripe.PaymentIntentStatusRequiresAction, stripe.PaymentIntentStatusProcessing:
		return IntentStatusRequiresAction
	case stripe.PaymentIntentStatusCanceled:
		return IntentStatusCanceled
	default:
		return IntentStatusFailed
	}
}

var _ Gateway = (*StripeGateway)(nil)
