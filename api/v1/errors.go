package v1

import (
	"errors"
	"net/http"

	analyticsapp "ragreport/internal/analytics/application"
	analyticsdomain "ragreport/internal/analytics/domain"
	salesapp "ragreport/internal/sales/application"
	salesdomain "ragreport/internal/sales/domain"
)

// Codes d'erreur renvoyés au client
const (
	CodeInvalidRequest     = "invalid_request"
	CodeConfigurationError = "configuration_error"
	CodeNoData             = "no_data"
	CodeDataIntegrity      = "data_integrity"
	CodeInternal           = "internal_error"
)

// ErrorBody corps JSON d'une réponse en erreur
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail code stable + message lisible
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

func invalidRequest(msg string) error {
	return &requestError{msg: msg}
}

// statusFor associe une erreur applicative à un code HTTP
func statusFor(err error) (int, string) {
	var reqErr *requestError
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &reqErr),
		errors.Is(err, analyticsapp.ErrInvalidQuery),
		errors.Is(err, salesapp.ErrMissingColumn):
		return http.StatusBadRequest, CodeInvalidRequest
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge, CodeInvalidRequest
	case errors.Is(err, analyticsdomain.ErrConfiguration):
		return http.StatusInternalServerError, CodeConfigurationError
	case errors.Is(err, analyticsdomain.ErrNoData):
		return http.StatusNotFound, CodeNoData
	case errors.Is(err, salesdomain.ErrDataIntegrity):
		return http.StatusUnprocessableEntity, CodeDataIntegrity
	}
	return http.StatusInternalServerError, CodeInternal
}

func writeError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	msg := err.Error()
	if code == CodeInternal {
		msg = "internal server error"
	}
	writeJSON(w, status, ErrorBody{Error: ErrorDetail{Code: code, Message: msg}})
}
