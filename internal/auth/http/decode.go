package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aussiebroadwan/tokenauth/pkg/authsdk"
	"github.com/aussiebroadwan/tokenauth/pkg/jwtx"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 64 << 10

// newValidator returns a validator that reports fields by their JSON name
// and knows the "claimtype" tag. reserved lists claim types callers may not
// set directly.
func newValidator(reserved ...string) *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	blocked := make(map[string]struct{}, len(reserved))
	for _, r := range reserved {
		blocked[r] = struct{}{}
	}
	err := v.RegisterValidation("claimtype", func(fl validator.FieldLevel) bool {
		t := fl.Field().String()
		if jwtx.IsRegistered(t) {
			return false
		}
		_, ok := blocked[t]
		return !ok
	})
	if err != nil {
		panic(fmt.Sprintf("http: register claimtype validation: %v", err))
	}
	return v
}

// decodeRequest reads a JSON body into dst and validates it. On failure it
// writes the response and returns false.
func (r *Router) decodeRequest(w http.ResponseWriter, req *http.Request, dst any) bool {
	if ct := req.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil || mt != "application/json" {
			authsdk.ErrInvalidRequest.WithMessage("Content-Type must be application/json.").WriteError(w)
			return false
		}
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		authsdk.ErrInvalidRequest.WithMessage(decodeMessage(err)).WriteError(w)
		return false
	}
	if dec.More() {
		authsdk.ErrInvalidRequest.WithMessage("Request body must contain a single JSON object.").WriteError(w)
		return false
	}

	if err := r.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			authsdk.NewValidationError(fieldErrors(verrs)).WriteError(w)
			return false
		}
		authsdk.ErrInvalidRequest.WriteError(w)
		return false
	}
	return true
}

func decodeMessage(err error) string {
	var maxErr *http.MaxBytesError
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return "Request body must not be empty."
	case errors.As(err, &maxErr):
		return fmt.Sprintf("Request body must not exceed %d bytes.", maxErr.Limit)
	case errors.As(err, &syntaxErr):
		return fmt.Sprintf("Malformed JSON at offset %d.", syntaxErr.Offset)
	case errors.As(err, &typeErr):
		return fmt.Sprintf("Field %q has the wrong type.", typeErr.Field)
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		return "Unknown field " + strings.TrimPrefix(err.Error(), "json: unknown field ") + "."
	default:
		return "Malformed JSON body."
	}
}

// fieldErrors keys messages by the JSON path below the top-level struct,
// e.g. "claims[0].type".
func fieldErrors(verrs validator.ValidationErrors) map[string][]string {
	out := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		ns := fe.Namespace()
		if _, rest, ok := strings.Cut(ns, "."); ok {
			ns = rest
		}
		out[ns] = append(out[ns], fieldMessage(fe))
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		switch fe.Kind() {
		case reflect.Slice, reflect.Map:
			return "must have at most " + fe.Param() + " items"
		case reflect.String:
			return "must be at most " + fe.Param() + " characters"
		default:
			return "must be at most " + fe.Param()
		}
	case "min":
		return "must be at least " + fe.Param()
	case "claimtype":
		return "is reserved"
	default:
		return "is invalid"
	}
}
