package repository

import (
	"context"
	"fmt"

	"TradeGate/internal/domain/models"
	xhttp "TradeGate/pkg/http"
)

// RemoteExecutorOption configures RemoteExecutor.
type RemoteExecutorOption func(*RemoteExecutor)

// RemoteExecutor runs parameterized queries against the upstream table
// query API. Every request is flagged read-only; this executor never
// issues mutating statements.
type RemoteExecutor struct {
	client  *xhttp.Client
	baseURL string
	appID   string
	apiKey  string
}

type queryRequest struct {
	Query    string        `json:"query"`
	Params   []interface{} `json:"params"`
	Readonly bool          `json:"readonly"`
}

// NewRemoteExecutor creates an executor bound to one app's table API.
func NewRemoteExecutor(client *xhttp.Client, baseURL, appID string, opts ...RemoteExecutorOption) *RemoteExecutor {
	e := &RemoteExecutor{
		client:  client,
		baseURL: baseURL,
		appID:   appID,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithAPIKey attaches a bearer token to every request.
func WithAPIKey(key string) RemoteExecutorOption {
	return func(e *RemoteExecutor) {
		e.apiKey = key
	}
}

// Execute sends one query with positional parameters and returns the
// decoded result set.
func (e *RemoteExecutor) Execute(ctx context.Context, query string, params []interface{}) (*models.ResultSet, error) {
	if params == nil {
		params = []interface{}{}
	}

	headers := map[string]string{
		"Content-Type": "application/json",
	}
	if e.apiKey != "" {
		headers["Authorization"] = "Bearer " + e.apiKey
	}

	var result models.ResultSet
	err := e.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     fmt.Sprintf("%s/api/v1/apps/%s/tables/query", e.baseURL, e.appID),
		Headers: headers,
		Body: queryRequest{
			Query:    query,
			Params:   params,
			Readonly: true,
		},
	}, &result)
	if err != nil {
		return nil, fmt.Errorf("table query: %w", err)
	}

	return &result, nil
}
