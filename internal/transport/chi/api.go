package chi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ErrorCode is the machine-readable error classification returned to clients.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest         ErrorCode = "bad_request"
	ErrorCodeUnauthorized       ErrorCode = "unauthorized"
	ErrorCodeInvalidSearchTerm  ErrorCode = "invalid_search_term"
	ErrorCodeInvalidFilterValue ErrorCode = "invalid_filter_value"
	ErrorCodeInvalidPagination  ErrorCode = "invalid_pagination"
	ErrorCodeCardNotFound       ErrorCode = "card_not_found"
	ErrorCodeSearchTimeout      ErrorCode = "search_timeout"
	ErrorCodeStorageUnavailable ErrorCode = "storage_unavailable"
	ErrorCodeInternalError      ErrorCode = "internal_error"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SearchCardsParams are the fixed query parameters of GET /api/cards.
// Filter parameters are read separately since their set is open-ended.
type SearchCardsParams struct {
	Term   *string `form:"term,omitempty" json:"term,omitempty"`
	Offset *int    `form:"offset,omitempty" json:"offset,omitempty"`
	Limit  *int    `form:"limit,omitempty" json:"limit,omitempty"`
	Page   *int    `form:"page,omitempty" json:"page,omitempty"`
}

// CardID is the path parameter of GET /api/cards/{id}.
type CardID = int64

// ServerInterface is the set of HTTP operations served by the API.
type ServerInterface interface {
	// SearchCards handles GET /api/cards.
	SearchCards(w http.ResponseWriter, r *http.Request, params SearchCardsParams)
	// GetCard handles GET /api/cards/{id}.
	GetCard(w http.ResponseWriter, r *http.Request, id CardID)
	// HealthCheck handles GET /health.
	HealthCheck(w http.ResponseWriter, r *http.Request)
	// Metrics handles GET /metrics.
	Metrics(w http.ResponseWriter, r *http.Request)
}

// InvalidParamFormatError reports a parameter that failed to bind.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

// ChiServerOptions configures route registration.
type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	Middlewares      []func(http.Handler) http.Handler
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// Handler mounts si on a new chi router.
func Handler(si ServerInterface) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{})
}

// HandlerWithOptions mounts si on options.BaseRouter (or a new router).
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := serverInterfaceWrapper{
		handler:            si,
		handlerMiddlewares: options.Middlewares,
		errorHandlerFunc:   options.ErrorHandlerFunc,
	}

	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/api/cards", wrapper.SearchCards)
		r.Get(options.BaseURL+"/api/cards/{id}", wrapper.GetCard)
		r.Get(options.BaseURL+"/health", wrapper.HealthCheck)
		r.Get(options.BaseURL+"/metrics", wrapper.Metrics)
	})
	return r
}

type serverInterfaceWrapper struct {
	handler            ServerInterface
	handlerMiddlewares []func(http.Handler) http.Handler
	errorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
}

func (siw *serverInterfaceWrapper) SearchCards(w http.ResponseWriter, r *http.Request) {
	var params SearchCardsParams
	query := r.URL.Query()

	bindings := []struct {
		name string
		dest any
	}{
		{"term", &params.Term},
		{"offset", &params.Offset},
		{"limit", &params.Limit},
		{"page", &params.Page},
	}
	for _, b := range bindings {
		if err := runtime.BindQueryParameter("form", true, false, b.name, query, b.dest); err != nil {
			siw.errorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: b.name, Err: err})
			return
		}
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.handler.SearchCards(w, r, params)
	})
}

func (siw *serverInterfaceWrapper) GetCard(w http.ResponseWriter, r *http.Request) {
	var id CardID
	err := runtime.BindStyledParameterWithLocation("simple", false, "id", runtime.ParamLocationPath, chi.URLParam(r, "id"), &id)
	if err != nil {
		siw.errorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "id", Err: err})
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.handler.GetCard(w, r, id)
	})
}

func (siw *serverInterfaceWrapper) HealthCheck(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.handler.HealthCheck)
}

func (siw *serverInterfaceWrapper) Metrics(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.handler.Metrics)
}

func (siw *serverInterfaceWrapper) serve(w http.ResponseWriter, r *http.Request, fn http.HandlerFunc) {
	var handler http.Handler = fn
	for _, middleware := range siw.handlerMiddlewares {
		handler = middleware(handler)
	}
	handler.ServeHTTP(w, r)
}
