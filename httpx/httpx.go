// Package httpx holds the small HTTP plumbing shared by every handler
// package: JSON response writing, standardized error responses, and
// translation of validator failures into field-enumerated validation errors.
package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/user/flavourbook-go/apperror"
)

// validate is the package-wide validator instance. Field names in error
// reports use the json tag so API clients see the wire name, not the Go name.
var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}()

// ValidateStruct runs struct tag validation and converts any failure into a
// ValidationError listing the offending fields.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.NewBadRequestError("invalid request payload", err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return apperror.NewFieldValidationError("invalid value for field(s): "+strings.Join(fields, ", "), fields...)
}

// WriteJSON serializes data to JSON and writes it with the given status.
// A nil data value writes only the status line, used for 204 responses.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		}
	}
}

// WriteError converts any error into a standardized apperror response.
// Errors that are not *AppError are wrapped as internal errors so nothing
// propagates to clients as an unhandled fault.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperror.FromError(err)
	if !ok {
		appErr = apperror.NewInternalError("an unexpected error occurred", err)
	}
	WriteJSON(w, appErr.StatusCode(), appErr.ToResponse())
}

// DecodeJSON decodes a request body into dst, mapping malformed payloads to
// a BadRequestError. Unknown keys (such as a client-supplied owner field)
// are ignored, matching the allow-list update semantics of the services.
func DecodeJSON(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.NewBadRequestError("invalid request body: "+err.Error(), err)
	}
	return nil
}
