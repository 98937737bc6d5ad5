package dolar_api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/langowen/cotizaya/internal/entities"
)

func TestFetchQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"moneda":"USD","casa":"blue","compra":1200,"venta":"1.250,50","fechaActualizacion":"2025-01-01T00:00:00Z"}`))
	}))
	defer srv.Close()

	quote, err := NewHTTPClient(time.Second).FetchQuote(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if quote.Buy == nil || *quote.Buy != 1200 {
		t.Errorf("Buy = %v; want 1200", quote.Buy)
	}
	if quote.Sell == nil || *quote.Sell != 1250.5 {
		t.Errorf("Sell = %v; want 1250.5", quote.Sell)
	}
	if v := quote.FixOrSell(); v == nil || *v != 1250.5 {
		t.Errorf("FixOrSell = %v; want sell side when fix is absent", v)
	}
}

func TestQuote_NonPositiveSidesAreAbsent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"compra":0,"venta":"n/d","fix":17.25}`))
	}))
	defer srv.Close()

	quote, err := NewHTTPClient(time.Second).FetchQuote(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !quote.Empty() {
		t.Errorf("quote = %+v; want both sides absent", quote.RateQuote)
	}
	if v := quote.FixOrSell(); v == nil || *v != 17.25 {
		t.Errorf("FixOrSell = %v; want 17.25", v)
	}
}

func TestFetchQuote_Errors(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
		want    error
	}{
		{
			name:    "bad status",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusServiceUnavailable) },
			want:    entities.ErrNetwork,
		},
		{
			name:    "bad json",
			handler: func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{"compra":`)) },
			want:    entities.ErrParse,
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(time.Second):
				}
			},
			want: entities.ErrNetwork,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			srv := httptest.NewServer(c.handler)
			defer srv.Close()

			_, err := NewHTTPClient(50*time.Millisecond).FetchQuote(context.Background(), srv.URL)
			if !errors.Is(err, c.want) {
				t.Errorf("err = %v; want %v", err, c.want)
			}
		})
	}
}
