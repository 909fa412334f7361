package gql

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"

	applog "fintrack/internal/log"
	"fintrack/internal/middleware/trace"
)

const maxBodyBytes = 1 << 20

// Request is a GraphQL-over-HTTP request.
type Request struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
}

// Handler executes GraphQL requests sent as a POST JSON body or as GET
// query parameters. Mutations are only accepted over POST.
type Handler struct {
	schema  graphql.Schema
	logger  *applog.Logger
	timeout time.Duration
}

// NewHandler creates a handler. A positive timeout bounds each execution.
func NewHandler(schema graphql.Schema, logger *applog.Logger, timeout time.Duration) *Handler {
	return &Handler{
		schema:  schema,
		logger:  logger.WithComponent(applog.ComponentGraphQL),
		timeout: timeout,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var (
		req Request
		err error
	)
	switch r.Method {
	case http.MethodGet:
		req, err = requestFromQuery(r)
	case http.MethodPost:
		req, err = requestFromBody(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeRequestError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, errUnsupportedMedia) {
			status = http.StatusUnsupportedMediaType
		}
		writeRequestError(w, status, err.Error())
		return
	}
	if req.Query == "" {
		writeRequestError(w, http.StatusBadRequest, "query is required")
		return
	}
	if r.Method == http.MethodGet && isMutation(req.Query, req.OperationName) {
		w.Header().Set("Allow", "POST")
		writeRequestError(w, http.StatusMethodNotAllowed, "mutations must be sent with POST")
		return
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	result := h.Execute(ctx, req)

	status := http.StatusOK
	if result.Data == nil && result.HasErrors() {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, result)
}

// Execute runs req against the schema and logs any errors.
func (h *Handler) Execute(ctx context.Context, req Request) *graphql.Result {
	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	})
	if len(result.Errors) == 0 {
		return result
	}

	logger := h.logger
	if id := trace.GetRequestID(ctx); id != "" {
		logger = logger.With(applog.FieldRequestID, id)
	}
	structured := applog.NewStructuredLogger(logger)
	for _, e := range result.Errors {
		code, _ := e.Extensions["code"].(string)
		if code == CodeServer {
			// Classify already logged the cause
			continue
		}
		errType := applog.ErrorTypeValidation
		if code != "" {
			errType = errorType(code)
		}
		structured.LogGraphQLError(ctx, req.OperationName, errType, errors.New(e.Message))
	}
	return result
}

var errUnsupportedMedia = errors.New("content type must be application/json")

func requestFromBody(w http.ResponseWriter, r *http.Request) (Request, error) {
	var req Request
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || (mediaType != "application/json" && mediaType != "application/graphql+json") {
			return req, errUnsupportedMedia
		}
	}

	if err := decodeJSON(http.MaxBytesReader(w, r.Body, maxBodyBytes), &req); err != nil {
		return req, errors.New("invalid JSON body")
	}
	return req, nil
}

func requestFromQuery(r *http.Request) (Request, error) {
	q := r.URL.Query()
	req := Request{
		Query:         q.Get("query"),
		OperationName: q.Get("operationName"),
	}
	if v := q.Get("variables"); v != "" {
		if err := decodeJSON(strings.NewReader(v), &req.Variables); err != nil {
			return req, errors.New("variables must be a JSON object")
		}
	}
	return req, nil
}

// decodeJSON decodes with UseNumber so Decimal variables keep every digit.
// Integer literals are turned back into int for the Int scalar.
func decodeJSON(r io.Reader, v interface{}) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	switch v := v.(type) {
	case *Request:
		normalizeNumbers(v.Variables)
	case *map[string]interface{}:
		normalizeNumbers(*v)
	}
	return nil
}

func normalizeNumbers(v interface{}) interface{} {
	switch v := v.(type) {
	case map[string]interface{}:
		for k, e := range v {
			v[k] = normalizeNumbers(e)
		}
	case []interface{}:
		for i, e := range v {
			v[i] = normalizeNumbers(e)
		}
	case json.Number:
		if !strings.ContainsAny(string(v), ".eE") {
			if n, err := strconv.Atoi(string(v)); err == nil {
				return n
			}
		}
	}
	return v
}

// isMutation reports whether the operation that would run is a mutation.
// Unparsable documents report false and fail during execution.
func isMutation(query, operationName string) bool {
	doc, err := parser.Parse(parser.ParseParams{Source: query})
	if err != nil {
		return false
	}
	for _, def := range doc.Definitions {
		op, ok := def.(*ast.OperationDefinition)
		if !ok {
			continue
		}
		if operationName != "" && (op.Name == nil || op.Name.Value != operationName) {
			continue
		}
		if op.Operation == ast.OperationTypeMutation {
			return true
		}
	}
	return false
}

func writeRequestError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, &graphql.Result{
		Errors: []gqlerrors.FormattedError{{Message: message}},
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
