package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	xhttp "TradeGate/pkg/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteExecutor(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"contributor_count":7}]}`))
	}))
	defer srv.Close()

	exec := NewRemoteExecutor(xhttp.NewClient(), srv.URL, "tradegate-dev", WithAPIKey("secret"))

	res, err := exec.Execute(context.Background(),
		"SELECT COUNT(DISTINCT buy_side) as contributor_count FROM trade_records WHERE trade_date >= ? AND trade_date <= ?",
		[]interface{}{"02-Jul-25", "01-Oct-25"},
	)
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/apps/tradegate-dev/tables/query", gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, true, gotBody["readonly"])
	assert.Equal(t, []interface{}{"02-Jul-25", "01-Oct-25"}, gotBody["params"])
	assert.Contains(t, gotBody["query"], "COUNT(DISTINCT buy_side)")

	require.Len(t, res.Data, 1)
	n, ok := res.Data[0].Int("contributor_count")
	require.True(t, ok)
	assert.Equal(t, 7, n)
}

func TestRemoteExecutorNilParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		params, ok := body["params"].([]interface{})
		require.True(t, ok, "params must serialize as an array, never null")
		assert.Empty(t, params)

		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	exec := NewRemoteExecutor(xhttp.NewClient(), srv.URL, "app")
	res, err := exec.Execute(context.Background(), "SELECT 1", nil)
	require.NoError(t, err)
	assert.Empty(t, res.Data)
}

func TestRemoteExecutorUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	exec := NewRemoteExecutor(xhttp.NewClient(), srv.URL, "app")
	_, err := exec.Execute(context.Background(), "SELECT 1", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestRemoteExecutorNoAuthHeaderWithoutKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	exec := NewRemoteExecutor(xhttp.NewClient(), srv.URL, "app")
	_, err := exec.Execute(context.Background(), "SELECT 1", nil)
	require.NoError(t, err)
}
