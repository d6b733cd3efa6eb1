package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v83"

	"atelier_back_end/internal/config"
	"atelier_back_end/internal/database"
	"atelier_back_end/internal/handlers"
	"atelier_back_end/internal/handlers/payement"
	"atelier_back_end/internal/orders"
	"atelier_back_end/internal/payments"
	"atelier_back_end/internal/routes"
	"atelier_back_end/internal/sequence"
	services "atelier_back_end/internal/service"
	"atelier_back_end/internal/store"
	"atelier_back_end/internal/ws"
)

func main() {
	config.Load()

	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")
	if stripe.Key == "" {
		log.Println("⚠️ Clé Stripe absente — les endpoints de paiement répondront 500")
	} else {
		log.Println("✅ Stripe initialisé")
	}

	database.ConnectDatabases()

	// ✅ Initialiser les prepared statements pour améliorer les performances
	database.InitPreparedStatements()

	// ✅ Pré-chauffer le cache Redis
	warmupRedisCache()

	ordersSession, err := database.GetOrdersSession()
	if err != nil {
		log.Fatalf("❌ Session orders indisponible: %v", err)
	}
	customersSession, err := database.GetCustomersSession()
	if err != nil {
		log.Fatalf("❌ Session customers indisponible: %v", err)
	}

	// Le compteur de séquences vit dans le keyspace orders
	allocator := sequence.NewScyllaAllocator(ordersSession)
	orderStore := store.NewScyllaOrderStore(ordersSession)
	ledger := store.NewScyllaCustomerLedger(customersSession, allocator)
	gateway := payments.NewStripeGateway()

	hub := ws.NewHub()
	go hub.Run()

	notifier := orders.MultiNotifier{hub, services.NewOrderNotifier(ledger)}
	service := orders.NewService(orderStore, ledger, allocator, gateway, notifier)

	r := gin.Default()
	routes.RegisterRoutes(r, routes.Deps{
		Orders:    handlers.NewOrderHandler(service),
		Customers: handlers.NewCustomerHandler(ledger),
		Payments:  payement.NewPaymentHandler(gateway, service),
		Hub:       hub,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Println("🚀 Serveur Atelier lancé sur le port", port)
	r.Run(":" + port)
}

// warmupRedisCache pré-chauffe le cache Redis pour éviter la latence du premier appel
func warmupRedisCache() {
	ctx := context.Background()
	if err := database.Redis.Ping(ctx).Err(); err == nil {
		log.Println("✅ Cache Redis pré-chauffé")
	}
}
