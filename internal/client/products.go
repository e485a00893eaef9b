package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/sandeepkv93/catalog-console/internal/domain"
	"github.com/sandeepkv93/catalog-console/internal/observability"
)

const (
	OpList   = "list"
	OpCreate = "create"
	OpDelete = "delete"

	maxResponseBytes = 8 << 20
)

// HTTPProductService talks to the remote product collection. Every call is a
// single round trip: no retries, no batching.
type HTTPProductService struct {
	productsURL string
	http        *http.Client
	logger      *slog.Logger
}

// NewHTTPClient builds the client used for product API calls. A zero timeout
// leaves the round trip bounded only by the caller's context.
func NewHTTPClient(timeout time.Duration, instrument bool) *http.Client {
	var transport http.RoundTripper = http.DefaultTransport.(*http.Transport).Clone()
	if instrument {
		transport = otelhttp.NewTransport(transport)
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}

func NewHTTPProductService(productsURL string, httpClient *http.Client, logger *slog.Logger) *HTTPProductService {
	if httpClient == nil {
		httpClient = NewHTTPClient(0, false)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPProductService{
		productsURL: strings.TrimRight(productsURL, "/"),
		http:        httpClient,
		logger:      logger,
	}
}

// List returns the full current product set in server order.
func (s *HTTPProductService) List(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	err := s.do(ctx, OpList, http.MethodGet, s.productsURL, nil, func(body []byte) error {
		if len(bytes.TrimSpace(body)) == 0 {
			return fmt.Errorf("%w: empty list body", ErrMalformedResponse)
		}
		if err := json.Unmarshal(body, &products); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

// Create posts a new product. price is the raw form text and is sent as a
// JSON number.
func (s *HTTPProductService) Create(ctx context.Context, name, price, image string) (domain.Product, error) {
	amount, err := domain.ParsePrice(price)
	if err != nil {
		s.logger.WarnContext(ctx, "product create rejected", "op", OpCreate, "error", err)
		return domain.Product{}, err
	}
	payload, err := json.Marshal(domain.Product{Name: name, Price: amount, Image: image})
	if err != nil {
		return domain.Product{}, fmt.Errorf("encode product: %w", err)
	}

	var created domain.Product
	err = s.do(ctx, OpCreate, http.MethodPost, s.productsURL, payload, func(body []byte) error {
		if err := json.Unmarshal(body, &created); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		return nil
	})
	if err != nil {
		return domain.Product{}, err
	}
	observability.Audit(ctx, s.logger, "product.create", "product_id", created.ID, "name", created.Name)
	return created, nil
}

// Delete removes one product. An empty success body and a JSON body are both
// accepted.
func (s *HTTPProductService) Delete(ctx context.Context, id string) error {
	target := s.productsURL + "/" + url.PathEscape(id)
	err := s.do(ctx, OpDelete, http.MethodDelete, target, nil, func(body []byte) error {
		trimmed := bytes.TrimSpace(body)
		if len(trimmed) == 0 || json.Valid(trimmed) {
			return nil
		}
		return fmt.Errorf("%w: delete body is not JSON", ErrMalformedResponse)
	})
	if err != nil {
		return err
	}
	observability.Audit(ctx, s.logger, "product.delete", "product_id", id)
	return nil
}

func (s *HTTPProductService) do(ctx context.Context, op, method, target string, payload []byte, decode func([]byte) error) (err error) {
	start := time.Now()
	outcome := "success"
	ctx, span := observability.Tracer().Start(ctx, "catalog.client."+op)
	defer func() {
		observability.RecordClientRequest(ctx, op, outcome, time.Since(start))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
			s.logger.ErrorContext(ctx, "product api request failed",
				"op", op,
				"method", method,
				"url", target,
				"outcome", outcome,
				"status", StatusCode(err),
				"error", err,
			)
		}
		span.End()
	}()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		outcome = "bad_request"
		return fmt.Errorf("%s products: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID(ctx))

	resp, err := s.http.Do(req)
	if err != nil {
		outcome = "transport_error"
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		outcome = "http_error"
		return &HTTPStatusError{Op: op, Code: resp.StatusCode, Status: resp.Status}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		outcome = "transport_error"
		return &TransportError{Op: op, Err: err}
	}
	if resp.StatusCode == http.StatusNoContent {
		raw = nil
	}
	if err := decode(raw); err != nil {
		outcome = "decode_error"
		return fmt.Errorf("%s products: %w", op, err)
	}
	return nil
}

func requestID(ctx context.Context) string {
	if id := chimiddleware.GetReqID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}
