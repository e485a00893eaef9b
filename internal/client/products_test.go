package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sandeepkv93/catalog-console/internal/domain"
)

func newTestService(t *testing.T, h http.HandlerFunc) *HTTPProductService {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewHTTPProductService(srv.URL+"/products", srv.Client(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestListPreservesServerOrder(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/products" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Fatal("expected request id header")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"id":"2","name":"Zeta","price":5,"image":"z.png"},{"id":"1","name":"Alpha","price":7.5,"image":"a.png"}]`)
	})

	products, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(products) != 2 || products[0].Name != "Zeta" || products[1].Name != "Alpha" {
		t.Fatalf("unexpected products: %+v", products)
	}
}

func TestListEmptyArray(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	})
	products, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if products == nil || len(products) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", products)
	}
}

func TestListHTTPStatusError(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	_, err := svc.List(context.Background())
	var statusErr *HTTPStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected HTTPStatusError, got %v", err)
	}
	if statusErr.Code != http.StatusServiceUnavailable || StatusCode(err) != http.StatusServiceUnavailable {
		t.Fatalf("unexpected status: %+v", statusErr)
	}
}

func TestListTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	svc := NewHTTPProductService(url+"/products", nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	_, err := svc.List(context.Background())
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if transportErr.Op != OpList {
		t.Fatalf("unexpected op: %s", transportErr.Op)
	}
}

func TestListMalformedBody(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"products":[]}`)
	})
	if _, err := svc.List(context.Background()); !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestCreateCoercesPriceToNumber(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Fatalf("unexpected content type %q", ct)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if price, ok := body["price"].(float64); !ok || price != 19.99 {
			t.Fatalf("expected numeric price 19.99, got %#v", body["price"])
		}
		if _, ok := body["id"]; ok {
			t.Fatalf("client must not send an id: %+v", body)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":"7f3a","name":"Chair","price":19.99,"image":"https://x.test/a.png"}`)
	})

	created, err := svc.Create(context.Background(), "Chair", "19.99", "https://x.test/a.png")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != "7f3a" || created.PriceText() != "$ 19.99" {
		t.Fatalf("unexpected created product: %+v", created)
	}
}

func TestCreateRejectsNonNumericPriceWithoutRoundTrip(t *testing.T) {
	called := false
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) { called = true })
	_, err := svc.Create(context.Background(), "Chair", "cheap", "https://x.test/a.png")
	if !errors.Is(err, domain.ErrInvalidPrice) {
		t.Fatalf("expected ErrInvalidPrice, got %v", err)
	}
	if called {
		t.Fatal("expected no request for an invalid price")
	}
}

func TestDeleteAcceptsEmptyAndJSONBodies(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{name: "no content", status: http.StatusNoContent},
		{name: "empty ok", status: http.StatusOK},
		{name: "json body", status: http.StatusOK, body: `{"id":"42","name":"Chair"}`},
		{name: "empty object", status: http.StatusOK, body: `{}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var gotPath string
			svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodDelete {
					t.Fatalf("unexpected method %s", r.Method)
				}
				gotPath = r.URL.Path
				w.WriteHeader(tc.status)
				if tc.body != "" {
					_, _ = io.WriteString(w, tc.body)
				}
			})
			if err := svc.Delete(context.Background(), "42"); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if gotPath != "/products/42" {
				t.Fatalf("unexpected path %s", gotPath)
			}
		})
	}
}

func TestDeleteEscapesID(t *testing.T) {
	var rawPath string
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		rawPath = r.URL.EscapedPath()
		w.WriteHeader(http.StatusNoContent)
	})
	if err := svc.Delete(context.Background(), "a/b"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if rawPath != "/products/a%2Fb" {
		t.Fatalf("expected escaped id, got %s", rawPath)
	}
}

func TestDeleteNotFound(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	if code := StatusCode(svc.Delete(context.Background(), "404")); code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
}
