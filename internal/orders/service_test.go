package orders

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atelier_back_end/internal/models"
	"atelier_back_end/internal/payments"
	"atelier_back_end/internal/sequence"
	"atelier_back_end/internal/store"
)

type testEnv struct {
	service *Service
	orders  *store.MemoryOrderStore
	ledger  *store.MemoryCustomerLedger
	gateway *payments.MockGateway
}

func newTestEnv() *testEnv {
	allocator := sequence.NewMemoryAllocator()
	orderStore := store.NewMemoryOrderStore()
	ledger := store.NewMemoryCustomerLedger(allocator)
	gateway := payments.NewMockGateway()
	return &testEnv{
		service: NewService(orderStore, ledger, allocator, gateway, nil),
		orders:  orderStore,
		ledger:  ledger,
		gateway: gateway,
	}
}

func validRequest() CreateOrderRequest {
	return CreateOrderRequest{
		CustomerName:  "Alice Martin",
		CustomerEmail: "alice@example.com",
		CustomerPhone: "0601020304",
		Address:       "4 rue des Lilas",
		City:          "Paris",
		Country:       "FR",
		Items: []models.OrderItem{
			{ProductID: "prod-1", Name: "Vase céramique", Price: 10.00, Quantity: 1},
		},
		Total: 10.00,
	}
}

func TestCreateDirect(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	req := validRequest()
	req.Total = 12.34 // délibérément différent de la somme des articles

	order, err := env.service.CreateDirect(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, "ORD-001", order.OrderID)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	// Le total soumis est conservé tel quel, jamais recalculé depuis les articles
	assert.Equal(t, 12.34, order.Total)
	assert.Equal(t, "alice@example.com", order.Customer.Email)

	customer, err := env.ledger.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(1), customer.TotalOrders)
	assert.Equal(t, 12.34, customer.TotalSpent)
}

func TestCreateDirectValidation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*CreateOrderRequest)
	}{
		{"nom manquant", func(r *CreateOrderRequest) { r.CustomerName = "" }},
		{"email manquant", func(r *CreateOrderRequest) { r.CustomerEmail = "" }},
		{"email mal formé", func(r *CreateOrderRequest) { r.CustomerEmail = "pas-un-email" }},
		{"téléphone manquant", func(r *CreateOrderRequest) { r.CustomerPhone = "" }},
		{"aucun article", func(r *CreateOrderRequest) { r.Items = nil }},
		{"total négatif", func(r *CreateOrderRequest) { r.Total = -1 }},
		{"quantité nulle", func(r *CreateOrderRequest) { r.Items[0].Quantity = 0 }},
		{"statut paiement invalide", func(r *CreateOrderRequest) { r.PaymentStatus = "maybe" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)

			_, err := env.service.CreateDirect(ctx, req)
			require.Error(t, err)

			var appErr *models.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, models.KindValidation, appErr.Kind)
		})
	}

	// Aucun effet de bord : pas de commande, pas de ligne client
	list, err := env.orders.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, list)
	_, err = env.ledger.GetByEmail(ctx, "alice@example.com")
	assert.ErrorIs(t, err, models.ErrCustomerNotFound)
}

func TestSequentialOrderIDs(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		order, err := env.service.CreateDirect(ctx, validRequest())
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("ORD-%03d", i), order.OrderID)
	}
}

func TestConcurrentCreatesSameEmail(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := validRequest()
			req.Total = 3.00
			_, err := env.service.CreateDirect(ctx, req)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Exactement une ligne client, compteurs exacts quel que soit l'entrelacement
	customers, err := env.ledger.List(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, int64(n), customers[0].TotalOrders)
	assert.InDelta(t, float64(n)*3.00, customers[0].TotalSpent, 1e-9)

	list, err := env.orders.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, list, n)

	seen := make(map[string]bool)
	for _, order := range list {
		assert.False(t, seen[order.OrderID], "identifiant dupliqué: %s", order.OrderID)
		seen[order.OrderID] = true
	}
}

func TestCreateFromConfirmedPayment(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.gateway.Statuses["pi_abc"] = payments.IntentStatusSucceeded

	order, err := env.service.CreateFromConfirmedPayment(ctx, "pi_abc", validRequest(), "Livraison point relais")
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusProcessing, order.Status)
	assert.Equal(t, models.PaymentStatusComplete, order.PaymentStatus)
	assert.Equal(t, "pi_abc", order.PaymentIntentID)
	assert.Equal(t, "Livraison point relais", order.Notes)
}

func TestConfirmIsIdempotent(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.gateway.Statuses["pi_retry"] = payments.IntentStatusSucceeded

	first, err := env.service.CreateFromConfirmedPayment(ctx, "pi_retry", validRequest(), "")
	require.NoError(t, err)

	// Retry client : même intent, la commande existante revient sans doublon
	second, err := env.service.CreateFromConfirmedPayment(ctx, "pi_retry", validRequest(), "")
	require.NoError(t, err)
	assert.Equal(t, first.OrderID, second.OrderID)

	list, err := env.orders.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	// Le second appel court-circuite avant la passerelle
	assert.Equal(t, 1, env.gateway.StatusCalls)

	// Et l'agrégat client n'est incrémenté qu'une fois
	customer, err := env.ledger.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(1), customer.TotalOrders)
}

func TestConfirmPaymentNotCompleted(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	// Un client existant pour vérifier que ses compteurs ne bougent pas
	seed := validRequest()
	_, err := env.service.CreateDirect(ctx, seed)
	require.NoError(t, err)

	env.gateway.Statuses["pi_wait"] = payments.IntentStatusRequiresAction

	_, err = env.service.CreateFromConfirmedPayment(ctx, "pi_wait", validRequest(), "")
	require.Error(t, err)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.KindPaymentNotCompleted, appErr.Kind)
	assert.Equal(t, 400, appErr.Status)

	// Aucune commande créée, compteurs du client inchangés
	list, err := env.orders.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	customer, err := env.ledger.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(1), customer.TotalOrders)
	assert.Equal(t, 10.00, customer.TotalSpent)
}

func TestTwoOrdersAccumulateLedger(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	first := validRequest()
	first.Total = 10.00
	_, err := env.service.CreateDirect(ctx, first)
	require.NoError(t, err)

	second := validRequest()
	second.Total = 15.00
	secondOrder, err := env.service.CreateDirect(ctx, second)
	require.NoError(t, err)

	customer, err := env.ledger.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(2), customer.TotalOrders)
	assert.Equal(t, 25.00, customer.TotalSpent)
	assert.Equal(t, secondOrder.CreatedAt, customer.LastOrderDate)
}

func TestUpdateStatus(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	order, err := env.service.CreateDirect(ctx, validRequest())
	require.NoError(t, err)

	updated, err := env.service.UpdateStatus(ctx, order.OrderID, models.OrderStatusProcessing, "")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessing, updated.Status)

	updated, err = env.service.UpdateStatus(ctx, order.OrderID, models.OrderStatusShipped, models.PaymentStatusComplete)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, updated.Status)
	assert.Equal(t, models.PaymentStatusComplete, updated.PaymentStatus)
}

func TestUpdateStatusInvalidValue(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	order, err := env.service.CreateDirect(ctx, validRequest())
	require.NoError(t, err)

	_, err = env.service.UpdateStatus(ctx, order.OrderID, "teleported", "")
	require.Error(t, err)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.KindValidation, appErr.Kind)

	// La commande stockée n'a pas bougé
	stored, err := env.orders.Get(ctx, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, stored.Status)
}

func TestUpdateStatusForbiddenTransition(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	order, err := env.service.CreateDirect(ctx, validRequest())
	require.NoError(t, err)

	// pending → delivered saute des étapes
	_, err = env.service.UpdateStatus(ctx, order.OrderID, models.OrderStatusDelivered, "")
	require.Error(t, err)

	// Terminal : delivered ne revient jamais en arrière
	for _, status := range []string{models.OrderStatusProcessing, models.OrderStatusShipped, models.OrderStatusDelivered} {
		_, err = env.service.UpdateStatus(ctx, order.OrderID, status, "")
		require.NoError(t, err)
	}
	_, err = env.service.UpdateStatus(ctx, order.OrderID, models.OrderStatusPending, "")
	require.Error(t, err)
	_, err = env.service.UpdateStatus(ctx, order.OrderID, models.OrderStatusCancelled, "")
	require.Error(t, err)
}

func TestUpdateStatusNotFound(t *testing.T) {
	env := newTestEnv()

	_, err := env.service.UpdateStatus(context.Background(), "ORD-404", models.OrderStatusProcessing, "")
	require.Error(t, err)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.KindNotFound, appErr.Kind)
}

func TestCancellableFromAnyNonTerminal(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	for _, from := range []string{models.OrderStatusPending, models.OrderStatusProcessing, models.OrderStatusShipped} {
		order, err := env.service.CreateDirect(ctx, validRequest())
		require.NoError(t, err)

		// Avancer jusqu'au statut de départ
		for _, step := range []string{models.OrderStatusProcessing, models.OrderStatusShipped} {
			if order.Status == from {
				break
			}
			order, err = env.service.UpdateStatus(ctx, order.OrderID, step, "")
			require.NoError(t, err)
		}

		_, err = env.service.UpdateStatus(ctx, order.OrderID, models.OrderStatusCancelled, "")
		require.NoError(t, err, "annulation depuis %s", from)
	}
}

func TestListFilterValidation(t *testing.T) {
	env := newTestEnv()

	_, err := env.service.List(context.Background(), "bogus")
	require.Error(t, err)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.KindValidation, appErr.Kind)
}

// flakyOrderStore fait échouer les N premières insertions
type flakyOrderStore struct {
	*store.MemoryOrderStore
	insertFailures int
}

func (s *flakyOrderStore) Insert(ctx context.Context, order models.Order) error {
	if s.insertFailures > 0 {
		s.insertFailures--
		return models.NewInternalError("Stockage indisponible", nil)
	}
	return s.MemoryOrderStore.Insert(ctx, order)
}

func TestConfirmRetryAfterInsertFailure(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	flaky := &flakyOrderStore{MemoryOrderStore: env.orders, insertFailures: 1}
	env.service.Orders = flaky
	env.gateway.Statuses["pi_panne"] = payments.IntentStatusSucceeded

	// Première confirmation : l'insertion échoue, l'appelant reçoit l'erreur
	_, err := env.service.CreateFromConfirmedPayment(ctx, "pi_panne", validRequest(), "")
	require.Error(t, err)

	// La réservation de l'intent ne doit pas survivre à l'échec
	_, err = env.orders.GetByIntent(ctx, "pi_panne")
	assert.ErrorIs(t, err, models.ErrOrderNotFound)

	// Reconfirmer après la panne transitoire crée la commande
	order, err := env.service.CreateFromConfirmedPayment(ctx, "pi_panne", validRequest(), "")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessing, order.Status)
	assert.Equal(t, "pi_panne", order.PaymentIntentID)

	// Et la reconfirmation suivante retombe sur la même commande
	again, err := env.service.CreateFromConfirmedPayment(ctx, "pi_panne", validRequest(), "")
	require.NoError(t, err)
	assert.Equal(t, order.OrderID, again.OrderID)

	list, err := env.orders.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

// brokenIntentStore simule une panne de lecture sur orders_by_intent
type brokenIntentStore struct {
	*store.MemoryOrderStore
}

func (s *brokenIntentStore) GetByIntent(context.Context, string) (models.Order, error) {
	return models.Order{}, models.NewUpstreamError("Stockage injoignable", nil)
}

func TestConfirmIntentLookupFailure(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	env.service.Orders = &brokenIntentStore{MemoryOrderStore: env.orders}

	// Une panne de lecture remonte telle quelle, sans interroger le fournisseur
	_, err := env.service.CreateFromConfirmedPayment(ctx, "pi_ok", validRequest(), "")
	require.Error(t, err)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.KindUpstreamService, appErr.Kind)
	assert.Equal(t, 0, env.gateway.StatusCalls)
}
