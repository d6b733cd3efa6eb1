package sequence

import (
	"context"
	"fmt"
)

// Séquences nommées connues
const (
	SequenceOrder    = "order"
	SequenceCustomer = "customer"
)

// prefixes associe chaque séquence à son préfixe lisible
var prefixes = map[string]string{
	SequenceOrder:    "ORD",
	SequenceCustomer: "CUST",
}

// Allocator distribue des identifiants uniques et strictement croissants
// par séquence nommée, même sous appels concurrents.
type Allocator interface {
	// Next retourne le prochain identifiant formaté (ex: ORD-007).
	Next(ctx context.Context, name string) (string, error)
}

// Format produit l'identifiant lisible : préfixe + décimal sur 3 chiffres minimum.
// Au-delà de 999 la largeur s'étend naturellement (ORD-1000).
func Format(name string, value int64) string {
	prefix, ok := prefixes[name]
	if !ok {
		prefix = name
	}
	return fmt.Sprintf("%s-%03d", prefix, value)
}
