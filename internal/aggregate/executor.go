package aggregate

import (
	"context"

	"github.com/sourceweaver/sourceweaver/internal/model"
	"github.com/sourceweaver/sourceweaver/internal/provider/websearch"
)

// searchClient is the slice of the web search client the executor
// needs. Narrowed to an interface so tests run without HTTP.
type searchClient interface {
	Search(ctx context.Context, query string, opts *websearch.SearchOptions) (*websearch.Response, error)
}

// WebSearchExecutor adapts the web search client to the Executor
// interface.
type WebSearchExecutor struct {
	client searchClient
}

// NewWebSearchExecutor wraps a web search client.
func NewWebSearchExecutor(client *websearch.Client) *WebSearchExecutor {
	return &WebSearchExecutor{client: client}
}

// Provider implements Executor.
func (e *WebSearchExecutor) Provider() string {
	return websearch.ProviderID
}

// Execute implements Executor.
func (e *WebSearchExecutor) Execute(ctx context.Context, query string, maxResults int) ([]model.SearchItem, int64, error) {
	resp, err := e.client.Search(ctx, query, &websearch.SearchOptions{NumResults: maxResults})
	if err != nil {
		return nil, 0, err
	}
	return resp.SearchItems(), resp.TotalResults(), nil
}
