package caseview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/smallbiznis/chargedesk/internal/chargeback/domain"
	"github.com/smallbiznis/chargedesk/internal/observability/tracing"
)

var ErrRemoteUnavailable = errors.New("remote_unavailable")

const casesPath = "/api/chargebacks"

// ServiceFetcher reads cases in process.
type ServiceFetcher struct {
	Service domain.Service
}

func (f ServiceFetcher) FetchCases(ctx context.Context) ([]domain.Case, error) {
	if f.Service == nil {
		return nil, domain.ErrCasesUnavailable
	}
	resp, err := f.Service.ListCases(ctx)
	if err != nil {
		return nil, err
	}
	return resp.Chargebacks, nil
}

// HTTPFetcher reads cases from a remote instance's retrieval endpoint.
type HTTPFetcher struct {
	baseURL string
	client  *http.Client
}

func NewHTTPFetcher(baseURL string, client *http.Client) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPFetcher{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client:  tracing.WrapHTTPClient(client),
	}
}

func (f *HTTPFetcher) FetchCases(ctx context.Context) ([]domain.Case, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+casesPath, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: status %d", ErrRemoteUnavailable, resp.StatusCode)
	}

	var payload domain.ListCasesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode cases: %w", err)
	}
	if payload.Chargebacks == nil {
		payload.Chargebacks = []domain.Case{}
	}
	return payload.Chargebacks, nil
}
