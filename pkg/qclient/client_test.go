package qclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querio-io/qapi/pkg/qapi"
	"github.com/querio-io/qapi/pkg/qclient"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("nil config", func(t *testing.T) {
		t.Parallel()

		c, err := qclient.New(nil)
		require.ErrorIs(t, err, qapi.ErrConfigRequired)
		assert.Nil(t, c)
	})

	t.Run("missing endpoint", func(t *testing.T) {
		t.Parallel()

		c, err := qclient.New(&qapi.Config{APIKey: "key"})
		require.ErrorIs(t, err, qapi.ErrAPIEndpointRequired)
		assert.Nil(t, c)
	})

	t.Run("missing api key", func(t *testing.T) {
		t.Parallel()

		c, err := qclient.New(&qapi.Config{APIEndpoint: "https://api.querio.io"})
		require.ErrorIs(t, err, qapi.ErrAPIKeyRequired)
		assert.Nil(t, c)
	})

	t.Run("trailing slash is trimmed", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/info", r.URL.Path)

			w.Header().Set("Content-Type", "application/json")
			require.NoError(t, json.NewEncoder(w).Encode(&qapi.Info{Name: "Querio", Version: 1}))
		}))
		t.Cleanup(server.Close)

		config := &qapi.Config{
			APIEndpoint: server.URL + "/",
			APIKey:      "key",
		}

		c, err := qclient.New(config)
		require.NoError(t, err)

		_, err = c.GetInfo(context.Background())
		require.NoError(t, err)
	})

	t.Run("https scheme is added when missing", func(t *testing.T) {
		t.Parallel()

		config := &qapi.Config{
			APIEndpoint: "api.querio.io",
			APIKey:      "key",
		}

		_, err := qclient.New(config)
		require.NoError(t, err)
	})

	t.Run("http scheme is preserved", func(t *testing.T) {
		t.Parallel()

		config := &qapi.Config{
			APIEndpoint: "http://localhost:8080",
			APIKey:      "key",
		}

		_, err := qclient.New(config)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(config.APIEndpoint, "http://"))
	})

	t.Run("caller config is not mutated", func(t *testing.T) {
		t.Parallel()

		config := &qapi.Config{
			APIEndpoint: "api.querio.io/",
			APIKey:      "key",
		}

		_, err := qclient.New(config)
		require.NoError(t, err)
		assert.Equal(t, "api.querio.io/", config.APIEndpoint)
	})
}

func TestNewWithAPIKey(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/info", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(&qapi.Info{Name: "Querio", Version: 1}))
	}))
	t.Cleanup(server.Close)

	c, err := qclient.NewWithAPIKey(server.URL, "test-key")
	require.NoError(t, err)

	info, err := c.GetInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Querio", info.Name)
}
