package store

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/gocql/gocql"

	"atelier_back_end/internal/models"
	"atelier_back_end/internal/sequence"
)

// ledgerAttempts borne les retries du CAS sur l'agrégat client
const ledgerAttempts = 5

// ScyllaCustomerLedger : agrégats clients dans le keyspace customers.
// Même schéma de double table que users/users_by_email : la table customers
// est clé par email, customers_by_id ne sert qu'à la correspondance id → email.
type ScyllaCustomerLedger struct {
	session   *gocql.Session
	allocator sequence.Allocator
}

func NewScyllaCustomerLedger(session *gocql.Session, allocator sequence.Allocator) *ScyllaCustomerLedger {
	return &ScyllaCustomerLedger{session: session, allocator: allocator}
}

// Upsert : l'incrément des compteurs est un read-modify-write atomique côté
// stockage (UPDATE ... IF total_orders = ?). Deux commandes simultanées pour
// le même email atterrissent toutes les deux, le CAS perdant est rejoué.
func (l *ScyllaCustomerLedger) Upsert(ctx context.Context, email string, orderTotal float64,
	orderDate time.Time, contact models.ContactInfo, paymentStatus string) (models.Customer, error) {

	for attempt := 1; attempt <= ledgerAttempts; attempt++ {
		current, err := l.GetByEmail(ctx, email)
		if err == models.ErrCustomerNotFound {
			created, ok, err := l.tryCreate(ctx, email, orderTotal, orderDate, contact, paymentStatus)
			if err != nil {
				return models.Customer{}, err
			}
			if ok {
				return created, nil
			}
			// Un concurrent a créé la ligne entre-temps, on repart sur l'incrément
			continue
		}
		if err != nil {
			return models.Customer{}, err
		}

		updated := current
		updated.TotalOrders = current.TotalOrders + 1
		updated.TotalSpent = current.TotalSpent + orderTotal
		updated.LastOrderDate = orderDate
		updated.PaymentStatus = paymentStatus
		updated.UpdatedAt = time.Now()
		// Merge : une valeur vide n'écrase jamais l'existant
		if contact.Name != "" {
			updated.CustomerName = contact.Name
		}
		if contact.Phone != "" {
			updated.Phone = contact.Phone
		}
		if contact.Location != "" {
			updated.Location = contact.Location
		}

		var previous int64
		applied, err := l.session.Query(`UPDATE customers SET customer_name = ?, phone = ?, location = ?,
			total_orders = ?, total_spent = ?, last_order_date = ?, payment_status = ?, updated_at = ?
			WHERE email = ? IF total_orders = ?`,
			updated.CustomerName, updated.Phone, updated.Location,
			updated.TotalOrders, updated.TotalSpent, updated.LastOrderDate,
			updated.PaymentStatus, updated.UpdatedAt, email, current.TotalOrders).
			WithContext(ctx).ScanCAS(&previous)
		if err != nil {
			return models.Customer{}, fmt.Errorf("incrément agrégat %s: %w", email, err)
		}
		if applied {
			return updated, nil
		}
		log.Printf("⚠️ CAS agrégat client '%s' perdu (tentative %d/%d)", email, attempt, ledgerAttempts)
	}

	return models.Customer{}, models.NewConflictError("Agrégat client trop disputé, réessayez", nil)
}

// tryCreate alloue un identifiant CUST puis insère la ligne IF NOT EXISTS.
// ok=false signifie qu'un concurrent a gagné la création.
func (l *ScyllaCustomerLedger) tryCreate(ctx context.Context, email string, orderTotal float64,
	orderDate time.Time, contact models.ContactInfo, paymentStatus string) (models.Customer, bool, error) {

	customerID, err := l.allocator.Next(ctx, sequence.SequenceCustomer)
	if err != nil {
		return models.Customer{}, false, err
	}

	now := time.Now()
	customer := models.Customer{
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

	applied, err := l.session.Query(`INSERT INTO customers (email, customer_id, customer_name, phone,
		location, total_orders, total_spent, last_order_date, payment_status, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) IF NOT EXISTS`,
		customer.Email, customer.CustomerID, customer.CustomerName, customer.Phone,
		customer.Location, customer.TotalOrders, customer.TotalSpent, customer.LastOrderDate,
		customer.PaymentStatus, customer.Status, customer.CreatedAt, customer.UpdatedAt).
		WithContext(ctx).ScanCAS()
	if err != nil {
		return models.Customer{}, false, fmt.Errorf("création client %s: %w", email, err)
	}
	if !applied {
		return models.Customer{}, false, nil
	}

	if err := l.session.Query("INSERT INTO customers_by_id (customer_id, email) VALUES (?, ?)",
		customer.CustomerID, email).WithContext(ctx).Exec(); err != nil {
		// La table de correspondance est secondaire, la ligne principale existe
		log.Printf("⚠️ Insertion customers_by_id échouée pour %s: %v", customerID, err)
	}

	return customer, true, nil
}

func (l *ScyllaCustomerLedger) GetByEmail(ctx context.Context, email string) (models.Customer, error) {
	var c models.Customer
	err := l.session.Query(`SELECT email, customer_id, customer_name, phone, location, total_orders,
		total_spent, last_order_date, payment_status, status, created_at, updated_at
		FROM customers WHERE email = ?`, email).WithContext(ctx).Scan(
		&c.Email, &c.CustomerID, &c.CustomerName, &c.Phone, &c.Location, &c.TotalOrders,
		&c.TotalSpent, &c.LastOrderDate, &c.PaymentStatus, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err == gocql.ErrNotFound {
		return models.Customer{}, models.ErrCustomerNotFound
	}
	if err != nil {
		return models.Customer{}, fmt.Errorf("lecture agrégat %s: %w", email, err)
	}
	return c, nil
}

func (l *ScyllaCustomerLedger) GetByID(ctx context.Context, customerID string) (models.Customer, error) {
	var email string
	err := l.session.Query("SELECT email FROM customers_by_id WHERE customer_id = ?", customerID).
		WithContext(ctx).Scan(&email)
	if err == gocql.ErrNotFound {
		return models.Customer{}, models.ErrCustomerNotFound
	}
	if err != nil {
		return models.Customer{}, fmt.Errorf("correspondance client %s: %w", customerID, err)
	}
	return l.GetByEmail(ctx, email)
}

func (l *ScyllaCustomerLedger) List(ctx context.Context) ([]models.Customer, error) {
	iter := l.session.Query(`SELECT email, customer_id, customer_name, phone, location, total_orders,
		total_spent, last_order_date, payment_status, status, created_at, updated_at FROM customers`).
		WithContext(ctx).Iter()

	var customers []models.Customer
	for {
		var c models.Customer
		if !iter.Scan(&c.Email, &c.CustomerID, &c.CustomerName, &c.Phone, &c.Location,
			&c.TotalOrders, &c.TotalSpent, &c.LastOrderDate, &c.PaymentStatus, &c.Status,
			&c.CreatedAt, &c.UpdatedAt) {
			break
		}
		customers = append(customers, c)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}

	sort.Slice(customers, func(i, j int) bool {
		return customers[i].LastOrderDate.After(customers[j].LastOrderDate)
	})
	return customers, nil
}

var _ CustomerLedger = (*ScyllaCustomerLedger)(nil)
