package sequence

import (
	"context"
	"fmt"
	"log"

	"github.com/gocql/gocql"

	"atelier_back_end/internal/models"
)

// maxAttempts borne les retries du compare-and-set avant de remonter un conflit
const maxAttempts = 3

// ScyllaAllocator persiste un compteur par séquence dans la table sequences
// et l'incrémente via LWT. Surtout pas de "count rows + 1" : deux appels
// concurrents liraient le même compte et frapperaient le même identifiant.
type ScyllaAllocator struct {
	session *gocql.Session
}

func NewScyllaAllocator(session *gocql.Session) *ScyllaAllocator {
	return &ScyllaAllocator{session: session}
}

// Next incrémente le compteur de façon optimiste : lecture de la valeur
// courante puis UPDATE ... IF value = ?. En cas de course le CAS échoue
// et on retente, au plus maxAttempts fois.
func (a *ScyllaAllocator) Next(ctx context.Context, name string) (string, error) {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		var current int64
		err := a.session.Query("SELECT value FROM sequences WHERE name = ?", name).
			WithContext(ctx).Scan(&current)

		if err == gocql.ErrNotFound {
			// Première utilisation de la séquence : on tente de la créer à 1
			applied, err := a.session.Query(
				"INSERT INTO sequences (name, value) VALUES (?, 1) IF NOT EXISTS", name).
				WithContext(ctx).ScanCAS()
			if err != nil {
				return "", fmt.Errorf("initialisation séquence %s: %w", name, err)
			}
			if applied {
				return Format(name, 1), nil
			}
			// Un concurrent a initialisé la séquence entre-temps, on retente
			continue
		}
		if err != nil {
			return "", fmt.Errorf("lecture séquence %s: %w", name, err)
		}

		next := current + 1
		var previous int64
		applied, err := a.session.Query(
			"UPDATE sequences SET value = ? WHERE name = ? IF value = ?", next, name, current).
			WithContext(ctx).ScanCAS(&previous)
		if err != nil {
			return "", fmt.Errorf("incrément séquence %s: %w", name, err)
		}
		if applied {
			return Format(name, next), nil
		}
		log.Printf("⚠️ CAS séquence '%s' perdu (tentative %d/%d)", name, attempt, maxAttempts)
	}

	return "", models.ErrSequenceConflict
}

var _ Allocator = (*ScyllaAllocator)(nil)
