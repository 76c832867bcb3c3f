package delivery

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefeed/feed-service/internal/feed"
	"github.com/storefeed/feed-service/internal/source"
)

func newTestPusher(t *testing.T, endpoint string) *Pusher {
	t.Helper()
	mem := source.NewMemory([]*source.Product{
		{
			ID:           1,
			Type:         source.TypeSimple,
			SKU:          "A-1",
			Name:         "Tee",
			Permalink:    "https://shop.example.com/tee",
			StockStatus:  source.StockInStock,
			RegularPrice: "10.00",
			ImageURL:     "https://cdn.example.com/tee.jpg",
		},
	}, nil)
	settings := feed.Settings{
		Currency:              "USD",
		EnableSearchDefault:   "true",
		EnableCheckoutDefault: "false",
	}
	gen := feed.NewGenerator(mem, feed.NewMapper(mem), settings, zerolog.Nop())
	return NewPusher(Config{
		EndpointURL: endpoint,
		AuthToken:   "secret-token",
		Format:      "json",
	}, gen, zerolog.Nop())
}

func TestPushDeliversFeed(t *testing.T) {
	var gotAuth, gotContentType, gotAttempt string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotAttempt = r.Header.Get("X-Delivery-Attempt")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := newTestPusher(t, srv.URL)
	require.NoError(t, p.Push(context.Background()))

	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "application/json; charset=utf-8", gotContentType)
	assert.NotEmpty(t, gotAttempt)

	var rows []feed.Row
	require.NoError(t, json.Unmarshal(gotBody, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "A-1", rows[0].ID)
}

func TestPushRejectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := newTestPusher(t, srv.URL)
	err := p.Push(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestPushUnreachableEndpoint(t *testing.T) {
	p := newTestPusher(t, "http://127.0.0.1:1")
	assert.Error(t, p.Push(context.Background()))
}
