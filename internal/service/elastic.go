package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"atelier_back_end/internal/database"
	"atelier_back_end/internal/models"
)

//
// --- INDEXATION DANS ELASTICSEARCH ---
//

// IndexOrder indexe une commande pour la recherche du tableau de bord admin
func IndexOrder(order models.Order) {
	if database.Elastic == nil {
		return
	}

	data, _ := json.Marshal(order)
	req := esapi.IndexRequest{
		Index:      "orders",
		DocumentID: order.OrderID,
		Body:       bytes.NewReader(data),
		Refresh:    "true", // rend la donnée immédiatement visible
	}

	res, err := req.Do(context.Background(), database.Elastic)
	if err != nil {
		log.Println("❌ Erreur envoi Elastic:", err)
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Printf("⚠️ Elastic a renvoyé une erreur pour %s: %s", order.OrderID, res.String())
	} else {
		log.Printf("✅ Commande indexée dans Elasticsearch: %s", order.OrderID)
	}
}

//
// --- RECHERCHE DANS ELASTICSEARCH ---
//

// SearchOrders recherche des commandes par identifiant, nom ou email client
func SearchOrders(query string) ([]map[string]interface{}, error) {
	if database.Elastic == nil {
		return nil, errors.New("client Elasticsearch non initialisé")
	}

	var buf bytes.Buffer
	q := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"order_id", "customer.customer_name", "customer.customer_email"},
			},
		},
	}

	if err := json.NewEncoder(&buf).Encode(q); err != nil {
		return nil, fmt.Errorf("erreur encodage requête: %v", err)
	}

	req := esapi.SearchRequest{
		Index: []string{"orders"},
		Body:  &buf,
	}
	res, err := req.Do(context.Background(), database.Elastic)
	if err != nil {
		return nil, fmt.Errorf("erreur requête Elastic: %v", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("erreur Elastic: %s", res.String())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source map[string]interface{} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("erreur décodage réponse: %v", err)
	}

	results := make([]map[string]interface{}, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		results = append(results, hit.Source)
	}
	return results, nil
}
