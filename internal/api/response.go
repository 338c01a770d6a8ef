package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/reconcile"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return model.Category(fl.Field().String()).Valid()
	})
	v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return model.Role(fl.Field().String()).Valid()
	})
	return v
}

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into target and validates its tags.
func decodeJSON(w http.ResponseWriter, r *http.Request, target any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(target); err != nil {
		return errors.New("invalid request body")
	}
	if err := validate.Struct(target); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%s: failed %s validation", verrs[0].Field(), verrs[0].Tag())
		}
		return err
	}
	return nil
}

// pathID parses the named path value as a positive id.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	return id, err == nil && id > 0
}

// parseDate parses a YYYY-MM-DD date already checked by the validator.
func parseDate(s string) time.Time {
	t, _ := time.Parse(time.DateOnly, s)
	return t
}

// serviceError maps reconcile errors onto HTTP statuses. Unexpected errors
// are logged and reported as a generic failure to action.
func serviceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	var verr *reconcile.ValidationError
	switch {
	case errors.As(err, &verr):
		jsonError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, reconcile.ErrNotFound):
		jsonError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, reconcile.ErrPermissionDenied):
		jsonError(w, http.StatusForbidden, "insufficient permissions")
	case errors.Is(err, reconcile.ErrDuplicateClaim):
		jsonError(w, http.StatusConflict, err.Error())
	default:
		slog.Error("failed to "+action, "error", err, "request_id", RequestID(r.Context()))
		jsonError(w, http.StatusInternalServerError, "failed to "+action)
	}
}
