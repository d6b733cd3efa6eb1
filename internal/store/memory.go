package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"atelier_back_end/internal/models"
	"atelier_back_end/internal/sequence"
)

// MemoryOrderStore : implémentation en mémoire pour les tests et le dev local
type MemoryOrderStore struct {
	mu      sync.RWMutex
	orders  map[string]models.Order
	intents map[string]string // payment_intent_id → order_id
}

func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{
		orders:  make(map[string]models.Order),
		intents: make(map[string]string),
	}
}

func (s *MemoryOrderStore) Insert(_ context.Context, order models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[order.OrderID]; exists {
		return models.NewConflictError("Identifiant de commande déjà utilisé", nil)
	}
	s.orders[order.OrderID] = order
	return nil
}

func (s *MemoryOrderStore) Get(_ context.Context, orderID string) (models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[orderID]
	if !ok {
		return models.Order{}, models.ErrOrderNotFound
	}
	return order, nil
}

func (s *MemoryOrderStore) List(_ context.Context, status string) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make([]models.Order, 0, len(s.orders))
	for _, order := range s.orders {
		if status != "" && order.Status != status {
			continue
		}
		orders = append(orders, order)
	}

	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (s *MemoryOrderStore) UpdateStatus(_ context.Context, orderID, status, paymentStatus string, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[orderID]
	if !ok {
		return models.ErrOrderNotFound
	}
	order.Status = status
	if paymentStatus != "" {
		order.PaymentStatus = paymentStatus
	}
	order.UpdatedAt = updatedAt
	s.orders[orderID] = order
	return nil
}

func (s *MemoryOrderStore) ClaimIntent(_ context.Context, intentID, orderID string) (bool, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.intents[intentID]; ok {
		return false, existing, nil
	}
	s.intents[intentID] = orderID
	return true, "", nil
}

func (s *MemoryOrderStore) ReleaseIntent(_ context.Context, intentID, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.intents[intentID]; ok && existing == orderID {
		delete(s.intents, intentID)
	}
	return nil
}

func (s *MemoryOrderStore) GetByIntent(ctx context.Context, intentID string) (models.Order, error) {
	s.mu.RLock()
	orderID, ok := s.intents[intentID]
	s.mu.RUnlock()

	if !ok {
		return models.Order{}, models.ErrOrderNotFound
	}
	return s.Get(ctx, orderID)
}

var _ OrderStore = (*MemoryOrderStore)(nil)

// MemoryCustomerLedger : agrégats clients en mémoire. Le mutex unique donne
// le même read-modify-write atomique que le CAS Scylla.
type MemoryCustomerLedger struct {
	mu        sync.RWMutex
	byEmail   map[string]models.Customer
	byID      map[string]string // customer_id → email
	allocator sequence.Allocator
}

func NewMemoryCustomerLedger(allocator sequence.Allocator) *MemoryCustomerLedger {
	return &MemoryCustomerLedger{
		byEmail:   make(map[string]models.Customer),
		byID:      make(map[string]string),
		allocator: allocator,
	}
}

func (l *MemoryCustomerLedger) Upsert(ctx context.Context, email string, orderTotal float64,
	orderDate time.Time, contact models.ContactInfo, paymentStatus string) (models.Customer, error) {

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	customer, exists := l.byEmail[email]
	if !exists {
		customerID, err := l.allocator.Next(ctx, sequence.SequenceCustomer)
		if err != nil {
			return models.Customer{}, err
		}
		customer = models.Customer{
			CustomerID:    customerID,
			Email:         email,
			CustomerName:  contact.Name,
			Phone:         contact.Phone,
			Location:      contact.Location,
			TotalOrders:   1,
			TotalSpent:    orderTotal,
			LastOrderDate: orderDate,
			PaymentStatus: paymentStatus,
			Status:        models.CustomerStatusActive,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		l.byEmail[email] = customer
		l.byID[customerID] = email
		return customer, nil
	}

	customer.TotalOrders++
	customer.TotalSpent += orderTotal
	customer.LastOrderDate = orderDate
	customer.PaymentStatus = paymentStatus
	customer.UpdatedAt = now
	if contact.Name != "" {
		customer.CustomerName = contact.Name
	}
	if contact.Phone != "" {
		customer.Phone = contact.Phone
	}
	if contact.Location != "" {
		customer.Location = contact.Location
	}
	l.byEmail[email] = customer
	return customer, nil
}

func (l *MemoryCustomerLedger) GetByEmail(_ context.Context, email string) (models.Customer, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	customer, ok := l.byEmail[email]
	if !ok {
		return models.Customer{}, models.ErrCustomerNotFound
	}
	return customer, nil
}

func (l *MemoryCustomerLedger) GetByID(_ context.Context, customerID string) (models.Customer, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	email, ok := l.byID[customerID]
	if !ok {
		return models.Customer{}, models.ErrCustomerNotFound
	}
	return l.byEmail[email], nil
}

func (l *MemoryCustomerLedger) List(_ context.Context) ([]models.Customer, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	customers := make([]models.Customer, 0, len(l.byEmail))
	for _, c := range l.byEmail {
		customers = append(customers, c)
	}
	sort.Slice(customers, func(i, j int) bool {
		return customers[i].LastOrderDate.After(customers[j].LastOrderDate)
	})
	return customers, nil
}

var _ CustomerLedger = (*MemoryCustomerLedger)(nil)
