package payments

import (
	"context"
	"fmt"
)

// MockGateway : frontière de paiement configurable pour les tests
type MockGateway struct {
	Statuses  map[string]string // intentID → statut retourné
	CreateErr error
	StatusErr error

	CreateCalls int
	StatusCalls int
}

// NewMockGateway retourne un mock où tout intent inconnu est "succeeded"
func NewMockGateway() *MockGateway {
	return &MockGateway{Statuses: make(map[string]string)}
}

func (m *MockGateway) CreateIntent(_ context.Context, amount float64, currency string) (Intent, error) {
	m.CreateCalls++
	if m.CreateErr != nil {
		return Intent{}, m.CreateErr
	}
	id := fmt.Sprintf("pi_mock_%d", m.CreateCalls)
	return Intent{IntentID: id, ClientSecret: id + "_secret"}, nil
}

func (m *MockGateway) GetIntentStatus(_ context.Context, intentID string) (string, error) {
	m.StatusCalls++
	if m.StatusErr != nil {
		return "", m.StatusErr
	}
	if status, ok := m.Statuses[intentID]; ok {
		return status, nil
	}
	return IntentStatusSucceeded, nil
}

var _ Gateway = (*MockGateway)(nil)
