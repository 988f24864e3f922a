package handler

import (
	"encoding/json"
	"net/http"

	"github.com/dukerupert/kiosk/internal/domain"
	"github.com/dukerupert/kiosk/internal/middleware"
)

// RespondJSON writes v as the JSON response body with the given status.
func RespondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`

	// Stock details, present only on insufficient-stock rejections.
	ProductID *int64 `json:"product_id,omitempty"`
	Requested *int32 `json:"requested,omitempty"`
	Available *int32 `json:"available,omitempty"`
}

// RespondError maps a domain error onto the HTTP response and logs it.
// Insufficient-stock rejections carry the offending product's details so
// the kiosk UI can tell the customer what to remove.
func RespondError(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.ErrorCode(err)
	status := errorCodeToHTTPStatus(code)
	detail := errorDetail{
		Code:    code,
		Message: domain.ErrorMessage(err),
	}

	if stockErr, ok := domain.IsInsufficientStock(err); ok {
		status = http.StatusConflict
		detail.Code = domain.ECONFLICT
		detail.Message = stockErr.Error()
		detail.ProductID = &stockErr.ProductID
		detail.Requested = &stockErr.Requested
		detail.Available = &stockErr.Available
	}

	logger := middleware.GetLogger(r.Context())
	attrs := []any{
		"error", err.Error(),
		"code", detail.Code,
		"status", status,
	}
	if status >= 500 {
		logger.Error("request failed", attrs...)
	} else {
		logger.Info("request rejected", attrs...)
	}

	RespondJSON(w, status, errorBody{Error: detail})
}

// DecodeJSON parses the request body into v, rejecting unknown fields.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return domain.Invalid("request.decode", "Invalid JSON request body")
	}
	return nil
}

// errorCodeToHTTPStatus maps domain error codes to HTTP status codes.
func errorCodeToHTTPStatus(code string) int {
	switch code {
	case domain.EINVALID:
		return http.StatusBadRequest // 400
	case domain.EUNAUTHORIZED:
		return http.StatusUnauthorized // 401
	case domain.ENOTFOUND:
		return http.StatusNotFound // 404
	case domain.ECONFLICT:
		return http.StatusConflict // 409
	case domain.EINTERNAL:
		return http.StatusInternalServerError // 500
	default:
		return http.StatusInternalServerError // 500
	}
}
