package api

import (
	"encoding/json"
	"net/http"

	"github.com/clearvault/vaultd/domain"
)

// envelope is the `{success, data?, error?{code,message}}` shape every
// response conforms to, per spec.md §6.1.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnf("failed to encode response: %v", err)
	}
}

func writeData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

// writeError renders err as the standard error envelope, mapping a
// *domain.VaultError's code to the appropriate HTTP status and falling
// back to a generic INTERNAL code/500 for anything untyped.
func writeError(w http.ResponseWriter, err error) {
	code, ok := domain.CodeOf(err)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, envelope{
			Success: false,
			Error:   &apiError{Code: "INTERNAL", Message: err.Error()},
		})
		return
	}
	writeJSON(w, statusForCode(code), envelope{
		Success: false,
		Error:   &apiError{Code: string(code), Message: err.Error()},
	})
}

func statusForCode(code domain.ErrorCode) int {
	switch code {
	case domain.ErrInvalidAmount, domain.ErrInvalidPubkey, domain.ErrSignerRequired:
		return http.StatusBadRequest
	case domain.ErrVaultNotFound:
		return http.StatusNotFound
	case domain.ErrInsufficientBalance, domain.ErrInsufficientLocked, domain.ErrNotDevnet:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
