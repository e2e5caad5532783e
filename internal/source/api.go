package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/JonMunkholm/ibportal/internal/core"
)

const (
	defaultAPITimeout = 15 * time.Second
	maxResponseBytes  = 32 << 20
)

// ErrBackendRejected is returned when the API answers success=false.
var ErrBackendRejected = errors.New("backend rejected request")

// envelope is the portal API response shape.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// API reads datasets from the portal REST API at GET {base}/{dataset}.
type API struct {
	base   *url.URL
	client *http.Client
}

// NewAPI returns an API source. A non-empty token is sent as a bearer token
// on every request.
func NewAPI(baseURL, token string, timeout time.Duration) (*API, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse API base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("API base URL %q must be http or https", baseURL)
	}
	if timeout <= 0 {
		timeout = defaultAPITimeout
	}

	client := &http.Client{}
	if token != "" {
		client = oauth2.NewClient(context.Background(),
			oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}))
	}
	client.Timeout = timeout

	return &API{base: base, client: client}, nil
}

func (a *API) Name() string { return "api" }

func (a *API) Close() { a.client.CloseIdleConnections() }

func (a *API) Rows(ctx context.Context, dataset string) ([]core.Row, error) {
	u := a.base.JoinPath(strings.Split(dataset, "/")...)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body := io.LimitReader(resp.Body, maxResponseBytes)
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %q", ErrDatasetNotFound, dataset)
	}

	var env envelope
	if err := json.NewDecoder(body).Decode(&env); err != nil {
		if resp.StatusCode >= 300 {
			return nil, fmt.Errorf("%w: status %d", ErrBackendRejected, resp.StatusCode)
		}
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if !env.Success || resp.StatusCode >= 300 {
		msg := env.Message
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: %s", ErrBackendRejected, msg)
	}

	if len(env.Data) == 0 || string(env.Data) == "null" {
		return []core.Row{}, nil
	}
	rows, err := decodeRows(strings.NewReader(string(env.Data)))
	if err != nil {
		return nil, fmt.Errorf("decode response data: %w", err)
	}
	return rows, nil
}
