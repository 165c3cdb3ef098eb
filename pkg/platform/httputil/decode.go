package httputil

import (
	"errors"
	"net/http"
	"net/url"

	dErrors "tickethub/pkg/domain-errors"
)

// FormBinder is implemented by request types that read themselves from a
// submitted HTML form.
type FormBinder interface {
	Bind(values url.Values)
}

// Validatable is implemented by request types that support validation.
type Validatable interface {
	Validate() error
}

// Normalizable is implemented by request types that support normalization.
type Normalizable interface {
	Normalize()
}

// PrepareRequest normalizes and validates a request.
func PrepareRequest(req any) error {
	if n, ok := req.(Normalizable); ok {
		n.Normalize()
	}
	if v, ok := req.(Validatable); ok {
		return v.Validate()
	}
	return nil
}

// DecodeForm parses the request's form body into T and prepares it.
// The decoded value is returned even when validation fails so forms can be
// re-rendered with what the user typed.
//
// Usage:
//
//	form, err := httputil.DecodeForm[verification.Form](r)
//	if err != nil {
//	    // re-render with form and err
//	}
func DecodeForm[T any, PT interface {
	*T
	FormBinder
}](r *http.Request) (*T, error) {
	var req T
	if err := r.ParseForm(); err != nil {
		return &req, dErrors.New(dErrors.CodeBadRequest, "invalid form body")
	}
	PT(&req).Bind(r.PostForm)

	if err := PrepareRequest(&req); err != nil {
		var domainErr *dErrors.Error
		if errors.As(err, &domainErr) {
			return &req, err
		}
		return &req, dErrors.New(dErrors.CodeValidation, err.Error())
	}
	return &req, nil
}
