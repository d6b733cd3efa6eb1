package payments

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v83"

	"atelier_back_end/internal/models"
)

// Les préconditions de CreateIntent s'évaluent avant tout appel réseau :
// elles sont testables sans toucher l'API Stripe.

func withStripeKey(t *testing.T, key string) {
	t.Helper()
	previous := stripe.Key
	stripe.Key = key
	t.Cleanup(func() { stripe.Key = previous })
}

func TestCreateIntentWithoutKey(t *testing.T) {
	withStripeKey(t, "")
	gateway := NewStripeGateway()

	_, err := gateway.CreateIntent(context.Background(), 25.00, "eur")
	require.Error(t, err)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.KindConfiguration, appErr.Kind)
}

func TestGetIntentStatusWithoutKey(t *testing.T) {
	withStripeKey(t, "")
	gateway := NewStripeGateway()

	_, err := gateway.GetIntentStatus(context.Background(), "pi_x")
	require.Error(t, err)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.KindConfiguration, appErr.Kind)
}

func TestCreateIntentBelowMinimum(t *testing.T) {
	withStripeKey(t, "sk_test_local")
	gateway := NewStripeGateway()

	_, err := gateway.CreateIntent(context.Background(), 0.49, "eur")
	require.Error(t, err)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.KindValidation, appErr.Kind)
}

func TestCreateIntentUnsupportedCurrency(t *testing.T) {
	withStripeKey(t, "sk_test_local")
	gateway := NewStripeGateway()

	cases := []string{"jpy", "EUR", ""}
	for _, currency := range cases {
		_, err := gateway.CreateIntent(context.Background(), 25.00, currency)
		require.Error(t, err, "devise %q", currency)

		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.KindValidation, appErr.Kind)
	}
}

func TestGatewayPreconditionConstants(t *testing.T) {
	assert.Equal(t, 0.50, MinimumAmount)
	assert.True(t, SupportedCurrencies["eur"])
	assert.True(t, SupportedCurrencies["usd"])
	assert.True(t, SupportedCurrencies["gbp"])
}
