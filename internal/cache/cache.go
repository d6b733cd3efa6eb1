package cache

import (
	"context"
	"encoding/json"
	"time"

	"atelier_back_end/internal/database"
	"atelier_back_end/internal/models"
	"atelier_back_end/internal/store"
)

const (
	CustomerCacheTTL = 5 * time.Minute
)

// GetCustomerByID récupère un agrégat client depuis Redis ou le ledger
func GetCustomerByID(ctx context.Context, ledger store.CustomerLedger, customerID string) (models.Customer, error) {
	key := "customer:" + customerID

	// 1. Essayer le cache Redis
	if database.Redis != nil {
		data, err := database.Redis.Get(ctx, key).Result()
		if err == nil {
			var customer models.Customer
			if json.Unmarshal([]byte(data), &customer) == nil {
				return customer, nil
			}
		}
	}

	// 2. Récupérer du ledger
	customer, err := ledger.GetByID(ctx, customerID)
	if err != nil {
		return models.Customer{}, err
	}

	// 3. Mettre en cache
	if database.Redis != nil {
		jsonData, _ := json.Marshal(customer)
		database.Redis.Set(ctx, key, jsonData, CustomerCacheTTL)
	}

	return customer, nil
}

// InvalidateCustomer purge l'agrégat du cache après un upsert
func InvalidateCustomer(ctx context.Context, customerID string) {
	if database.Redis == nil || customerID == "" {
		return
	}
	database.Redis.Del(ctx, "customer:"+customerID)
}
