package eskimo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	syncdomain "github.com/ontiuk/eskimo-sync/internal/domain/sync"
	"github.com/ontiuk/eskimo-sync/internal/infrastructure/cache"
	"github.com/ontiuk/eskimo-sync/internal/infrastructure/config"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.EskimoConfig{
		BaseURL:        srv.URL,
		Username:       "merchant",
		Password:       "secret",
		RequestTimeout: 5 * time.Second,
		StatusTimeout:  5 * time.Second,
		TokenTTL:       time.Hour,
	}
	session := NewSessionProvider(cfg, cache.NewMemoryTokenCache(), zap.NewNop())
	return NewClient(cfg, session, zap.NewNop()), srv
}

func tokenHandler(token string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.PostFormValue("grant_type") != "password" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": token,
			"token_type":   "bearer",
			"expires_in":   3600,
		})
	}
}

func TestClientCategories(t *testing.T) {
	ctx := context.Background()

	t.Run("sends the paging body and decodes the page", func(t *testing.T) {
		var gotBody recordsRequest
		mux := http.NewServeMux()
		mux.HandleFunc("/token", tokenHandler("tok-1"))
		mux.HandleFunc("/api/Categories/All", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode([]map[string]any{
				{"Eskimo_Category_ID": "1|PRODUCTS", "ShortDescription": "Knitwear"},
			})
		})
		client, _ := newTestClient(t, mux)

		req, err := syncdomain.NewBatchRequest(1, 250, syncdomain.MaxCategoryRecords)
		require.NoError(t, err)
		cats, err := client.Categories(ctx, req)
		require.NoError(t, err)

		require.Len(t, cats, 1)
		assert.Equal(t, syncdomain.Ident("1|PRODUCTS"), cats[0].ID)
		assert.Equal(t, 1, gotBody.StartPosition)
		assert.Equal(t, 250, gotBody.RecordCount)
	})

	t.Run("404 on a list endpoint means an empty window", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/token", tokenHandler("tok-1"))
		mux.HandleFunc("/api/Categories/All", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		client, _ := newTestClient(t, mux)

		cats, err := client.Categories(ctx, syncdomain.BatchRequest{Start: 1, Count: 25})
		require.NoError(t, err)
		assert.Empty(t, cats)
	})

	t.Run("server error maps to the connect family", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/token", tokenHandler("tok-1"))
		mux.HandleFunc("/api/Categories/All", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		client, _ := newTestClient(t, mux)

		_, err := client.Categories(ctx, syncdomain.BatchRequest{Start: 1, Count: 25})
		assert.ErrorIs(t, err, syncdomain.ErrConnect)
	})
}

func TestClientAuthRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("401 re-authenticates and retries once", func(t *testing.T) {
		var tokens atomic.Int32
		mux := http.NewServeMux()
		mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
			n := tokens.Add(1)
			token := "tok-stale"
			if n > 1 {
				token = "tok-fresh"
			}
			tokenHandler(token)(w, r)
		})
		mux.HandleFunc("/api/Products/All", func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer tok-fresh" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode([]map[string]any{
				{"Eskimo_Identifier": "9|STY|", "Title": "Wool Jumper"},
			})
		})
		client, _ := newTestClient(t, mux)

		products, err := client.Products(ctx, syncdomain.BatchRequest{Start: 1, Count: 25})
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, int32(2), tokens.Load())
	})

	t.Run("persistent 401 maps to the auth family", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/token", tokenHandler("tok-1"))
		mux.HandleFunc("/api/Products/All", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		client, _ := newTestClient(t, mux)

		_, err := client.Products(ctx, syncdomain.BatchRequest{Start: 1, Count: 25})
		assert.ErrorIs(t, err, syncdomain.ErrAuth)
	})
}

func TestClientFetchOne(t *testing.T) {
	ctx := context.Background()

	t.Run("missing entity maps to the no-data family", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/token", tokenHandler("tok-1"))
		mux.HandleFunc("/api/SKUs/SpecificSKUCode", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		client, _ := newTestClient(t, mux)

		_, err := client.SkuByCode(ctx, "NOPE")
		assert.ErrorIs(t, err, syncdomain.ErrNoData)
	})

	t.Run("decodes a found entity", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/token", tokenHandler("tok-1"))
		mux.HandleFunc("/api/SKUs/SpecificSKUCode", func(w http.ResponseWriter, r *http.Request) {
			var body skuCodeRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "WJ-M", body.SkuCode)
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"sku_code": "WJ-M", "StockAmount": 3,
			})
		})
		client, _ := newTestClient(t, mux)

		sku, err := client.SkuByCode(ctx, "WJ-M")
		require.NoError(t, err)
		assert.Equal(t, 3, sku.StockAmount)
	})
}

func TestClientWriteStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the raw remote status", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/token", tokenHandler("tok-1"))
		mux.HandleFunc("/api/Categories/UpdateCartIDs", func(w http.ResponseWriter, r *http.Request) {
			var batch []syncdomain.IdentifierMapping
			require.NoError(t, json.NewDecoder(r.Body).Decode(&batch))
			assert.Len(t, batch, 2)
			w.WriteHeader(http.StatusOK)
		})
		client, _ := newTestClient(t, mux)

		status, err := client.UpdateCategoryCartIDs(ctx, []syncdomain.IdentifierMapping{
			{EskimoID: "1|PRODUCTS", WebID: "web-1"},
			{EskimoID: "2|PRODUCTS", WebID: "web-2"},
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, status)
	})

	t.Run("rejected batch surfaces its status without erroring", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/token", tokenHandler("tok-1"))
		mux.HandleFunc("/api/Orders/Insert", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
		})
		client, _ := newTestClient(t, mux)

		status, err := client.InsertOrder(ctx, syncdomain.OrderInsert{})
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, status)
	})
}

func TestSessionProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("caches the token between calls", func(t *testing.T) {
		var grants atomic.Int32
		mux := http.NewServeMux()
		mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
			grants.Add(1)
			tokenHandler("tok-1")(w, r)
		})
		srv := httptest.NewServer(mux)
		t.Cleanup(srv.Close)

		cfg := config.EskimoConfig{
			BaseURL:        srv.URL,
			Username:       "merchant",
			Password:       "secret",
			RequestTimeout: 5 * time.Second,
			TokenTTL:       time.Hour,
		}
		p := NewSessionProvider(cfg, cache.NewMemoryTokenCache(), zap.NewNop())

		for i := 0; i < 3; i++ {
			token, err := p.Token(ctx)
			require.NoError(t, err)
			assert.Equal(t, "tok-1", token)
		}
		assert.Equal(t, int32(1), grants.Load())
	})

	t.Run("missing credentials fail fast", func(t *testing.T) {
		cfg := config.EskimoConfig{BaseURL: "http://localhost:0", RequestTimeout: time.Second}
		p := NewSessionProvider(cfg, cache.NewMemoryTokenCache(), zap.NewNop())

		_, err := p.Token(ctx)
		assert.ErrorIs(t, err, syncdomain.ErrAuth)
	})

	t.Run("rejected grant maps to the auth family", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		})
		srv := httptest.NewServer(mux)
		t.Cleanup(srv.Close)

		cfg := config.EskimoConfig{
			BaseURL:        srv.URL,
			Username:       "merchant",
			Password:       "wrong",
			RequestTimeout: 5 * time.Second,
		}
		p := NewSessionProvider(cfg, cache.NewMemoryTokenCache(), zap.NewNop())

		_, err := p.Token(ctx)
		assert.ErrorIs(t, err, syncdomain.ErrAuth)
	})
}
