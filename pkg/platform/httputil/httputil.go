package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "nolatabs/pkg/domain-errors"
	"nolatabs/pkg/platform/sentinel"
)

// StatusFor maps a service error to its transport status. Repository errors
// are resolved by the storage kind they wrap.
func StatusFor(err error) int {
	if err == nil {
		return http.StatusOK
	}
	code, ok := dErrors.CodeOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch code {
	case dErrors.CodeRepository:
		return storageStatus(err)
	case dErrors.CodeInvalidInput:
		return http.StatusBadRequest
	case dErrors.CodeAuthentication:
		return http.StatusUnauthorized
	case dErrors.CodeAuthorization:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func storageStatus(err error) int {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, sentinel.ErrDuplicateEntry):
		return http.StatusConflict
	default:
		// connection and query failures are not the caller's fault
		return http.StatusInternalServerError
	}
}

// WriteError writes the bare status for err. Clients tell outcomes apart by
// status code only, so no body is written.
func WriteError(w http.ResponseWriter, err error) {
	w.WriteHeader(StatusFor(err))
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}
