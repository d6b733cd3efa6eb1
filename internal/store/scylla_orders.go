package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/gocql/gocql"

	"atelier_back_end/internal/models"
)

// ScyllaOrderStore : commandes dans le keyspace orders.
// Table principale orders + table orders_by_intent pour l'idempotence paiement.
type ScyllaOrderStore struct {
	session *gocql.Session
}

func NewScyllaOrderStore(session *gocql.Session) *ScyllaOrderStore {
	return &ScyllaOrderStore{session: session}
}

func (s *ScyllaOrderStore) Insert(ctx context.Context, order models.Order) error {
	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("sérialisation items: %w", err)
	}

	err = s.session.Query(`INSERT INTO orders (order_id, customer_name, customer_email, customer_phone,
		address, city, country, items_json, total, status, payment_status, payment_intent_id, notes,
		created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.OrderID, order.Customer.Name, order.Customer.Email, order.Customer.Phone,
		order.Customer.Address, order.Customer.City, order.Customer.Country,
		string(itemsJSON), order.Total, order.Status, order.PaymentStatus,
		order.PaymentIntentID, order.Notes, order.CreatedAt, order.UpdatedAt).
		WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("insertion commande %s: %w", order.OrderID, err)
	}
	return nil
}

func (s *ScyllaOrderStore) Get(ctx context.Context, orderID string) (models.Order, error) {
	var (
		order     models.Order
		itemsJSON string
	)
	err := s.session.Query(`SELECT order_id, customer_name, customer_email, customer_phone,
		address, city, country, items_json, total, status, payment_status, payment_intent_id, notes,
		created_at, updated_at FROM orders WHERE order_id = ?`, orderID).
		WithContext(ctx).Scan(
		&order.OrderID, &order.Customer.Name, &order.Customer.Email, &order.Customer.Phone,
		&order.Customer.Address, &order.Customer.City, &order.Customer.Country,
		&itemsJSON, &order.Total, &order.Status, &order.PaymentStatus,
		&order.PaymentIntentID, &order.Notes, &order.CreatedAt, &order.UpdatedAt)
	if err == gocql.ErrNotFound {
		return models.Order{}, models.ErrOrderNotFound
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("lecture commande %s: %w", orderID, err)
	}

	if err := json.Unmarshal([]byte(itemsJSON), &order.Items); err != nil {
		return models.Order{}, fmt.Errorf("désérialisation items %s: %w", orderID, err)
	}
	return order, nil
}

func (s *ScyllaOrderStore) List(ctx context.Context, status string) ([]models.Order, error) {
	cql := `SELECT order_id, customer_name, customer_email, customer_phone, address, city, country,
		items_json, total, status, payment_status, payment_intent_id, notes, created_at, updated_at FROM orders`
	var query *gocql.Query
	if status != "" {
		query = s.session.Query(cql+" WHERE status = ? ALLOW FILTERING", status)
	} else {
		query = s.session.Query(cql)
	}

	iter := query.WithContext(ctx).Iter()
	var orders []models.Order
	for {
		var (
			order     models.Order
			itemsJSON string
		)
		if !iter.Scan(&order.OrderID, &order.Customer.Name, &order.Customer.Email,
			&order.Customer.Phone, &order.Customer.Address, &order.Customer.City,
			&order.Customer.Country, &itemsJSON, &order.Total, &order.Status,
			&order.PaymentStatus, &order.PaymentIntentID, &order.Notes,
			&order.CreatedAt, &order.UpdatedAt) {
			break
		}
		if err := json.Unmarshal([]byte(itemsJSON), &order.Items); err != nil {
			continue
		}
		orders = append(orders, order)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("listing commandes: %w", err)
	}

	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (s *ScyllaOrderStore) UpdateStatus(ctx context.Context, orderID, status, paymentStatus string, updatedAt time.Time) error {
	var err error
	if paymentStatus != "" {
		err = s.session.Query(
			"UPDATE orders SET status = ?, payment_status = ?, updated_at = ? WHERE order_id = ?",
			status, paymentStatus, updatedAt, orderID).WithContext(ctx).Exec()
	} else {
		err = s.session.Query(
			"UPDATE orders SET status = ?, updated_at = ? WHERE order_id = ?",
			status, updatedAt, orderID).WithContext(ctx).Exec()
	}
	if err != nil {
		return fmt.Errorf("mise à jour statut %s: %w", orderID, err)
	}
	return nil
}

// ClaimIntent : INSERT ... IF NOT EXISTS sur orders_by_intent. C'est la
// contrainte d'unicité qui rend la confirmation de paiement idempotente.
func (s *ScyllaOrderStore) ClaimIntent(ctx context.Context, intentID, orderID string) (bool, string, error) {
	var existingIntent, existingOrderID string
	applied, err := s.session.Query(
		"INSERT INTO orders_by_intent (payment_intent_id, order_id) VALUES (?, ?) IF NOT EXISTS",
		intentID, orderID).WithContext(ctx).ScanCAS(&existingIntent, &existingOrderID)
	if err != nil {
		return false, "", fmt.Errorf("réservation intent %s: %w", intentID, err)
	}
	if applied {
		return true, "", nil
	}
	return false, existingOrderID, nil
}

// ReleaseIntent supprime la réservation si orderID en est bien le titulaire.
// Un DELETE conditionnel pour ne jamais effacer la réservation d'un gagnant concurrent.
func (s *ScyllaOrderStore) ReleaseIntent(ctx context.Context, intentID, orderID string) error {
	var existingOrderID string
	_, err := s.session.Query(
		"DELETE FROM orders_by_intent WHERE payment_intent_id = ? IF order_id = ?",
		intentID, orderID).WithContext(ctx).ScanCAS(&existingOrderID)
	if err != nil {
		return fmt.Errorf("libération intent %s: %w", intentID, err)
	}
	return nil
}

func (s *ScyllaOrderStore) GetByIntent(ctx context.Context, intentID string) (models.Order, error) {
	var orderID string
	err := s.session.Query(
		"SELECT order_id FROM orders_by_intent WHERE payment_intent_id = ?", intentID).
		WithContext(ctx).Scan(&orderID)
	if err == gocql.ErrNotFound {
		return models.Order{}, models.ErrOrderNotFound
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("lecture intent %s: %w", intentID, err)
	}
	return s.Get(ctx, orderID)
}

var _ OrderStore = (*ScyllaOrderStore)(nil)
