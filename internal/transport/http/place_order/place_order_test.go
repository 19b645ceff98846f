package placeorder

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leandrosouzaa/desafio-database-relations/internal/service/models/customer"
	"github.com/leandrosouzaa/desafio-database-relations/internal/service/models/order"
	"github.com/leandrosouzaa/desafio-database-relations/internal/service/models/product"
)

type stubService struct {
	err error
}

func (s *stubService) PlaceOrder(_ context.Context, _ order.PlaceOrderModel) (*order.Order, error) {
	if s.err != nil {
		return nil, s.err
	}

	return &order.Order{ID: 1, CustomerID: 1}, nil
}

func doRequest(t *testing.T, svc service, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
	rec := httptest.NewRecorder()
	PlaceOrder(rec, req, svc)

	return rec
}

const validBody = `{"customerId":1,"items":[{"productId":1,"quantity":1}]}`

func TestPlaceOrder_Created(t *testing.T) {
	rec := doRequest(t, &stubService{}, validBody)
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
}

func TestPlaceOrder_BadBody(t *testing.T) {
	rec := doRequest(t, &stubService{}, `{"customerId":1,"items":[]}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestPlaceOrder_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"customer not found", customer.ErrNotFound, http.StatusNotFound},
		{"product not found", &product.NotFoundError{ProductIDs: []int64{99}}, http.StatusNotFound},
		{"invalid quantity", &order.InvalidQuantityError{ProductID: 1, Quantity: 0}, http.StatusBadRequest},
		{"insufficient stock", &product.InsufficientStockError{ProductID: 1, Requested: 2, Available: 1}, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, &stubService{err: tt.err}, validBody)
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}
