package server

import (
	"errors"
	"net/http"

	authdomain "github.com/firsttechlabs/simpleinvoice-be/internal/auth/domain"
	customerdomain "github.com/firsttechlabs/simpleinvoice-be/internal/customer/domain"
	invoicedomain "github.com/firsttechlabs/simpleinvoice-be/internal/invoice/domain"
	licensedomain "github.com/firsttechlabs/simpleinvoice-be/internal/license/domain"
	"github.com/firsttechlabs/simpleinvoice-be/internal/money"
	"github.com/firsttechlabs/simpleinvoice-be/internal/sequence"
	"github.com/firsttechlabs/simpleinvoice-be/internal/storage"
	tenantdomain "github.com/firsttechlabs/simpleinvoice-be/internal/tenant/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type apiError struct {
	status  int
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (e *apiError) Error() string { return e.Code }

var (
	ErrUnauthorized = &apiError{status: http.StatusUnauthorized, Code: "unauthorized", Message: "authentication required"}
	ErrNotFound     = &apiError{status: http.StatusNotFound, Code: "not_found", Message: "resource not found"}
	ErrTooMany      = &apiError{status: http.StatusTooManyRequests, Code: "rate_limited", Message: "too many requests"}
)

func invalidRequestError() *apiError {
	return &apiError{status: http.StatusBadRequest, Code: "invalid_request", Message: "request body could not be parsed"}
}

func newValidationError(field, code, message string) *apiError {
	return &apiError{status: http.StatusBadRequest, Code: code, Message: message, Field: field}
}

// AbortWithError translates service errors into HTTP responses. Unknown
// errors become an opaque 500 so internals never leak to clients.
func AbortWithError(c *gin.Context, err error) {
	var api *apiError
	if errors.As(err, &api) {
		c.AbortWithStatusJSON(api.status, gin.H{"error": api})
		return
	}

	status := statusForError(err)
	if status == http.StatusInternalServerError {
		zap.L().Error("request failed", zap.Error(err), zap.String("path", c.FullPath()))
		c.AbortWithStatusJSON(status, gin.H{"error": gin.H{"code": "internal_error", "message": "internal error"}})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": gin.H{"code": err.Error(), "message": err.Error()}})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrInvalidToken),
		errors.Is(err, authdomain.ErrSessionExpired):
		return http.StatusUnauthorized

	case errors.Is(err, tenantdomain.ErrTenantNotFound),
		errors.Is(err, customerdomain.ErrCustomerNotFound),
		errors.Is(err, invoicedomain.ErrInvoiceNotFound),
		errors.Is(err, licensedomain.ErrCodeNotFound):
		return http.StatusNotFound

	case errors.Is(err, tenantdomain.ErrEmailTaken),
		errors.Is(err, customerdomain.ErrCustomerHasInvoice),
		errors.Is(err, invoicedomain.ErrInvalidTransition),
		errors.Is(err, invoicedomain.ErrInvoiceNotDeletable),
		errors.Is(err, licensedomain.ErrAlreadyRedeemed),
		errors.Is(err, licensedomain.ErrCodeExhausted),
		errors.Is(err, licensedomain.ErrCodeExpired),
		errors.Is(err, sequence.ErrSequenceMissing):
		return http.StatusConflict

	case errors.Is(err, invoicedomain.ErrInvoiceImmutable):
		return http.StatusUnprocessableEntity

	case errors.Is(err, money.ErrInvalidQuantity),
		errors.Is(err, money.ErrInvalidPrice),
		errors.Is(err, money.ErrInvalidTaxRate),
		errors.Is(err, money.ErrNoLineItems),
		errors.Is(err, tenantdomain.ErrInvalidEmail),
		errors.Is(err, tenantdomain.ErrInvalidPassword),
		errors.Is(err, tenantdomain.ErrPasswordMismatch),
		errors.Is(err, tenantdomain.ErrInvalidPrefix),
		errors.Is(err, tenantdomain.ErrInvalidTaxRate),
		errors.Is(err, tenantdomain.ErrInvalidCurrency),
		errors.Is(err, customerdomain.ErrInvalidID),
		errors.Is(err, customerdomain.ErrInvalidName),
		errors.Is(err, customerdomain.ErrInvalidEmail),
		errors.Is(err, invoicedomain.ErrInvalidInvoiceID),
		errors.Is(err, invoicedomain.ErrInvalidCustomer),
		errors.Is(err, invoicedomain.ErrInvalidDates),
		errors.Is(err, invoicedomain.ErrInvalidStatus),
		errors.Is(err, invoicedomain.ErrInvalidProof),
		errors.Is(err, licensedomain.ErrInvalidCode),
		errors.Is(err, storage.ErrInvalidObjectName),
		errors.Is(err, storage.ErrEmptyUpload):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}
