package orders

import (
	"context"
	"errors"
	"log"
	"regexp"
	"time"

	"atelier_back_end/internal/models"
	"atelier_back_end/internal/payments"
	"atelier_back_end/internal/sequence"
	"atelier_back_end/internal/store"
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Notifier reçoit les événements de commande (flux admin, indexation, e-mails).
// Les notifications sont best-effort : un échec n'affecte jamais la commande.
type Notifier interface {
	OrderCreated(order models.Order)
	OrderStatusChanged(order models.Order)
}

// MultiNotifier diffuse vers plusieurs notifiers
type MultiNotifier []Notifier

func (m MultiNotifier) OrderCreated(order models.Order) {
	for _, n := range m {
		n.OrderCreated(order)
	}
}

func (m MultiNotifier) OrderStatusChanged(order models.Order) {
	for _, n := range m {
		n.OrderStatusChanged(order)
	}
}

// CreateOrderRequest : payload de création directe de commande
type CreateOrderRequest struct {
	CustomerName  string             `json:"customer_name"`
	CustomerEmail string             `json:"customer_email"`
	CustomerPhone string             `json:"customer_phone"`
	Address       string             `json:"address"`
	City          string             `json:"city"`
	Country       string             `json:"country"`
	Items         []models.OrderItem `json:"items"`
	Total         float64            `json:"total"`
	PaymentStatus string             `json:"payment_status"`
	Notes         string             `json:"notes"`
}

// Service orchestre les deux chemins de création de commande et les
// transitions de statut. Ordre garanti pour une commande : allocation
// d'identifiant → persistance → mise à jour de l'agrégat client.
type Service struct {
	Orders    store.OrderStore
	Ledger    store.CustomerLedger
	Allocator sequence.Allocator
	Gateway   payments.Gateway
	Notifier  Notifier
}

func NewService(orders store.OrderStore, ledger store.CustomerLedger,
	allocator sequence.Allocator, gateway payments.Gateway, notifier Notifier) *Service {
	return &Service{
		Orders:    orders,
		Ledger:    ledger,
		Allocator: allocator,
		Gateway:   gateway,
		Notifier:  notifier,
	}
}

// CreateDirect crée une commande sans vérification de paiement.
// Aucune persistance n'a lieu si la validation échoue.
func (s *Service) CreateDirect(ctx context.Context, req CreateOrderRequest) (models.Order, error) {
	if err := validateRequest(req); err != nil {
		return models.Order{}, err
	}

	paymentStatus := req.PaymentStatus
	if paymentStatus == "" {
		paymentStatus = models.PaymentStatusPending
	}
	if !models.ValidPaymentStatuses[paymentStatus] {
		return models.Order{}, models.NewValidationError("Statut de paiement invalide: " + paymentStatus)
	}

	orderID, err := s.Allocator.Next(ctx, sequence.SequenceOrder)
	if err != nil {
		return models.Order{}, models.AsAppError(err)
	}

	now := time.Now()
	order := models.Order{
		OrderID: orderID,
		Customer: models.CustomerSnapshot{
			Name:    req.CustomerName,
			Email:   req.CustomerEmail,
			Phone:   req.CustomerPhone,
			Address: req.Address,
			City:    req.City,
			Country: req.Country,
		},
		Items:         req.Items,
		Total:         req.Total,
		Status:        models.OrderStatusPending,
		PaymentStatus: paymentStatus,
		Notes:         req.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.Orders.Insert(ctx, order); err != nil {
		return models.Order{}, models.AsAppError(err)
	}

	s.upsertLedger(ctx, order)
	s.notifyCreated(order)

	log.Printf("✅ Commande %s créée (%.2f€) pour %s", orderID, order.Total, order.Customer.Email)
	return order, nil
}

// CreateFromConfirmedPayment vérifie le paiement auprès du fournisseur puis
// crée la commande. Confirmer deux fois le même intent ne crée jamais de
// doublon : le second appel retourne la commande existante.
func (s *Service) CreateFromConfirmedPayment(ctx context.Context, intentID string,
	req CreateOrderRequest, shippingNote string) (models.Order, error) {

	if intentID == "" {
		return models.Order{}, models.NewValidationError("payment_intent_id requis")
	}
	if err := validateRequest(req); err != nil {
		return models.Order{}, err
	}

	// Retour rapide si l'intent est déjà lié à une commande (retry client)
	existing, err := s.Orders.GetByIntent(ctx, intentID)
	if err == nil {
		log.Printf("🔁 Intent %s déjà confirmé → commande %s", intentID, existing.OrderID)
		return existing, nil
	}
	if !errors.Is(err, models.ErrOrderNotFound) {
		return models.Order{}, models.AsAppError(err)
	}

	status, err := s.Gateway.GetIntentStatus(ctx, intentID)
	if err != nil {
		return models.Order{}, models.AsAppError(err)
	}
	if status != payments.IntentStatusSucceeded {
		return models.Order{}, models.NewPaymentNotCompleted(status)
	}

	orderID, err := s.Allocator.Next(ctx, sequence.SequenceOrder)
	if err != nil {
		return models.Order{}, models.AsAppError(err)
	}

	// La réservation de l'intent est la contrainte d'unicité : si un appel
	// concurrent a gagné entre-temps, on retourne sa commande.
	applied, existingOrderID, err := s.Orders.ClaimIntent(ctx, intentID, orderID)
	if err != nil {
		return models.Order{}, models.AsAppError(err)
	}
	if !applied {
		existing, err := s.Orders.Get(ctx, existingOrderID)
		if err != nil {
			return models.Order{}, models.AsAppError(err)
		}
		log.Printf("🔁 Intent %s réclamé par un appel concurrent → commande %s", intentID, existingOrderID)
		return existing, nil
	}

	now := time.Now()
	order := models.Order{
		OrderID: orderID,
		Customer: models.CustomerSnapshot{
			Name:    req.CustomerName,
			Email:   req.CustomerEmail,
			Phone:   req.CustomerPhone,
			Address: req.Address,
			City:    req.City,
			Country: req.Country,
		},
		Items:           req.Items,
		Total:           req.Total,
		Status:          models.OrderStatusProcessing,
		PaymentStatus:   models.PaymentStatusComplete,
		PaymentIntentID: intentID,
		Notes:           shippingNote,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.Orders.Insert(ctx, order); err != nil {
		// Libérer la réservation, sinon l'intent resterait lié à une commande
		// inexistante et toute reconfirmation serait condamnée au 404.
		if relErr := s.Orders.ReleaseIntent(ctx, intentID, orderID); relErr != nil {
			log.Printf("❌ Libération intent %s impossible après échec insertion: %v", intentID, relErr)
		}
		return models.Order{}, models.AsAppError(err)
	}

	s.upsertLedger(ctx, order)
	s.notifyCreated(order)

	log.Printf("✅ Commande %s créée depuis paiement %s (%.2f€)", orderID, intentID, order.Total)
	return order, nil
}

// UpdateStatus applique une transition de statut admin sur une commande existante
func (s *Service) UpdateStatus(ctx context.Context, orderID, newStatus, newPaymentStatus string) (models.Order, error) {
	if !models.ValidOrderStatuses[newStatus] {
		return models.Order{}, models.NewValidationError("Statut invalide: " + newStatus)
	}
	if newPaymentStatus != "" && !models.ValidPaymentStatuses[newPaymentStatus] {
		return models.Order{}, models.NewValidationError("Statut de paiement invalide: " + newPaymentStatus)
	}

	order, err := s.Orders.Get(ctx, orderID)
	if err != nil {
		return models.Order{}, models.AsAppError(err)
	}

	if !models.CanTransition(order.Status, newStatus) {
		return models.Order{}, models.NewValidationError(
			"Transition non autorisée: " + order.Status + " → " + newStatus)
	}

	now := time.Now()
	if err := s.Orders.UpdateStatus(ctx, orderID, newStatus, newPaymentStatus, now); err != nil {
		return models.Order{}, models.AsAppError(err)
	}

	order.Status = newStatus
	if newPaymentStatus != "" {
		order.PaymentStatus = newPaymentStatus
	}
	order.UpdatedAt = now

	if s.Notifier != nil {
		s.Notifier.OrderStatusChanged(order)
	}

	log.Printf("✅ Commande %s → statut %s", orderID, newStatus)
	return order, nil
}

// Get retourne une commande par identifiant
func (s *Service) Get(ctx context.Context, orderID string) (models.Order, error) {
	order, err := s.Orders.Get(ctx, orderID)
	if err != nil {
		return models.Order{}, models.AsAppError(err)
	}
	return order, nil
}

// List retourne les commandes, filtrées par statut si demandé
func (s *Service) List(ctx context.Context, status string) ([]models.Order, error) {
	if status != "" && !models.ValidOrderStatuses[status] {
		return nil, models.NewValidationError("Statut de filtre invalide: " + status)
	}
	orders, err := s.Orders.List(ctx, status)
	if err != nil {
		return nil, models.AsAppError(err)
	}
	return orders, nil
}

// upsertLedger met à jour l'agrégat client après persistance de la commande.
// Un échec ici laisse la commande en place (fenêtre d'incohérence assumée,
// pas de rollback) : on logge pour la passe de réconciliation.
func (s *Service) upsertLedger(ctx context.Context, order models.Order) {
	contact := models.ContactInfo{
		Name:     order.Customer.Name,
		Phone:    order.Customer.Phone,
		Location: order.Customer.City,
	}
	_, err := s.Ledger.Upsert(ctx, order.Customer.Email, order.Total, order.CreatedAt,
		contact, order.PaymentStatus)
	if err != nil {
		log.Printf("❌ Agrégat client non mis à jour pour %s (commande %s): %v",
			order.Customer.Email, order.OrderID, err)
	}
}

func (s *Service) notifyCreated(order models.Order) {
	if s.Notifier != nil {
		s.Notifier.OrderCreated(order)
	}
}

// validateRequest contrôle la forme de la requête avant tout effet de bord
func validateRequest(req CreateOrderRequest) error {
	if req.CustomerName == "" {
		return models.NewValidationError("customer_name requis")
	}
	if req.CustomerEmail == "" {
		return models.NewValidationError("customer_email requis")
	}
	if !emailRe.MatchString(req.CustomerEmail) {
		return models.NewValidationError("customer_email mal formé")
	}
	if req.CustomerPhone == "" {
		return models.NewValidationError("customer_phone requis")
	}
	if len(req.Items) == 0 {
		return models.NewValidationError("Au moins un article requis")
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return models.NewValidationError("Quantité invalide pour l'article " + item.ProductID)
		}
		if item.Price < 0 {
			return models.NewValidationError("Prix négatif pour l'article " + item.ProductID)
		}
	}
	if req.Total < 0 {
		return models.NewValidationError("total doit être positif ou nul")
	}
	return nil
}
