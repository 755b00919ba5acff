// Package telecrm provides a direct HTTP client for the TeleCRM lead API and
// the field mapping that adapts appointment data into its fixed vocabulary.
package telecrm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sashasmiles/clinic-backend/pkg/logging"
)

const (
	defaultBaseURL = "https://next-api.telecrm.in"
	defaultTimeout = 15 * time.Second
)

// LeadFields is the field set TeleCRM accepts for auto-updated leads.
type LeadFields struct {
	Name                   string `json:"name"`
	Phone                  string `json:"phone"`
	Email                  string `json:"email"`
	AppointmentDateAndTime string `json:"appointment_date_and_time"`
	LeadSource             string `json:"lead_source"`
	Note                   string `json:"note,omitempty"`
	ClientConcerns         string `json:"client_concerns,omitempty"`
}

type leadPayload struct {
	Fields LeadFields `json:"fields"`
}

// Client is a TeleCRM API client.
type Client struct {
	baseURL      string
	enterpriseID string
	apiToken     string
	httpClient   *http.Client
	logger       *logging.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL, mainly for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// NewClient creates a TeleCRM client authenticating with the given bearer token.
func NewClient(enterpriseID, apiToken string, logger *logging.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	c := &Client{
		baseURL:      defaultBaseURL,
		enterpriseID: enterpriseID,
		apiToken:     apiToken,
		httpClient:   &http.Client{Timeout: defaultTimeout},
		logger:       logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether the client has the credentials it needs.
func (c *Client) Configured() bool {
	return c.enterpriseID != "" && c.apiToken != ""
}

// CreateLead posts a lead to TeleCRM's autoupdatelead endpoint. Any non-2xx
// response is an error.
func (c *Client) CreateLead(ctx context.Context, fields LeadFields) error {
	if !c.Configured() {
		return fmt.Errorf("telecrm: enterprise ID or API token not configured")
	}

	body, err := json.Marshal(leadPayload{Fields: fields})
	if err != nil {
		return fmt.Errorf("telecrm: marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/enterprise/%s/autoupdatelead", c.baseURL, c.enterpriseID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telecrm: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telecrm: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telecrm: API returned status %d: %s", resp.StatusCode, snippet)
	}

	c.logger.Info("telecrm lead created", "name", fields.Name, "status", resp.StatusCode)
	return nil
}
