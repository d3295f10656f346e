package cartapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/microshop/microshop-backend/pkg/errors"
)

func TestFetchSendsOwnerHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Fatalf("unexpected method %s", r.Method)
		}
		if r.URL.Path != "/api/v1/cart" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get(OwnerHeader); got != "default-user" {
			t.Fatalf("expected owner header default-user got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"id":"f7f0f8e2-4c76-4a24-9d3c-0a4fbb7a2f11","owner_id":"default-user","items":[{"product_id":"36e6dbd4-62b0-4f51-8fbe-02b0dcdcbbcb","name":"Laptop","unit_price":"999.99","quantity":2}],"total":"1999.98"}}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	cart, err := client.Fetch(context.Background(), "default-user")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cart.OwnerID != "default-user" {
		t.Fatalf("unexpected owner %q", cart.OwnerID)
	}
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 2 {
		t.Fatalf("unexpected items %+v", cart.Items)
	}
	if cart.Total.String() != "1999.98" {
		t.Fatalf("unexpected total %s", cart.Total)
	}
}

func TestFetchMapsUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.Fetch(context.Background(), "default-user")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected DEPENDENCY_ERROR got %v", err)
	}
}

func TestClearAcceptsNoContent(t *testing.T) {
	var sawDelete bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Fatalf("unexpected method %s", r.Method)
		}
		sawDelete = true
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	if err := client.Clear(context.Background(), "default-user"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sawDelete {
		t.Fatalf("expected DELETE call")
	}
}

func TestClearMapsUnreachableUpstream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	err = client.Clear(context.Background(), "default-user")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected DEPENDENCY_ERROR got %v", err)
	}
}
