package models

import (
	"errors"
	"fmt"
	"net/http"
)

// Kinds d'erreurs exposés dans les réponses API
const (
	KindValidation          = "ValidationError"
	KindAuthentication      = "AuthenticationError"
	KindAuthorization       = "AuthorizationError"
	KindNotFound            = "NotFoundError"
	KindConflict            = "ConflictError"
	KindPaymentNotCompleted = "PaymentNotCompleted"
	KindUpstreamService     = "UpstreamServiceError"
	KindConfiguration       = "ConfigurationError"
	KindInternal            = "InternalError"
)

var (
	ErrOrderNotFound    = errors.New("commande introuvable")
	ErrCustomerNotFound = errors.New("client introuvable")
	ErrSequenceConflict = errors.New("conflit d'allocation d'identifiant")
	ErrIntentClaimed    = errors.New("payment intent déjà associé à une commande")
)

// AppError porte un kind machine, un message humain et le statut HTTP associé
type AppError struct {
	Kind    string
	Message string
	Status  int
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

func NewValidationError(msg string) *AppError {
	return &AppError{Kind: KindValidation, Message: msg, Status: http.StatusBadRequest}
}

func NewNotFoundError(msg string) *AppError {
	return &AppError{Kind: KindNotFound, Message: msg, Status: http.StatusNotFound}
}

func NewConflictError(msg string, err error) *AppError {
	return &AppError{Kind: KindConflict, Message: msg, Status: http.StatusConflict, Err: err}
}

func NewPaymentNotCompleted(status string) *AppError {
	return &AppError{
		Kind:    KindPaymentNotCompleted,
		Message: fmt.Sprintf("paiement non complété (statut: %s)", status),
		Status:  http.StatusBadRequest,
	}
}

func NewUpstreamError(msg string, err error) *AppError {
	return &AppError{Kind: KindUpstreamService, Message: msg, Status: http.StatusBadGateway, Err: err}
}

func NewConfigurationError(msg string) *AppError {
	return &AppError{Kind: KindConfiguration, Message: msg, Status: http.StatusInternalServerError}
}

func NewInternalError(msg string, err error) *AppError {
	return &AppError{Kind: KindInternal, Message: msg, Status: http.StatusInternalServerError, Err: err}
}

// AsAppError convertit n'importe quelle erreur en AppError exploitable par les handlers
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, ErrOrderNotFound):
		return NewNotFoundError("Commande introuvable")
	case errors.Is(err, ErrCustomerNotFound):
		return NewNotFoundError("Client introuvable")
	case errors.Is(err, ErrSequenceConflict):
		return NewConflictError("Échec d'allocation d'identifiant, réessayez", err)
	}
	return NewInternalError("Erreur interne", err)
}
