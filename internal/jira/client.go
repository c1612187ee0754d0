// Package jira creates issues through the Jira REST API v2.
package jira

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/thomas-vilte/ticketmate/internal/config"
	apperrors "github.com/thomas-vilte/ticketmate/internal/errors"
	"github.com/thomas-vilte/ticketmate/internal/logger"
	"github.com/thomas-vilte/ticketmate/internal/models"
)

const requestTimeout = 30 * time.Second

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client represents the connection to one Jira instance.
type Client struct {
	baseURL string
	token   string
	email   string
	client  HTTPClient
}

// NewClient builds a client from the stored settings. When client is nil
// an http.Client honoring insecure_skip_verify is used.
func NewClient(cfg *config.Config, client HTTPClient) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.Jira.BaseURL), "/")
	token := cfg.JiraToken()
	if baseURL == "" || token == "" {
		return nil, apperrors.ErrJiraNotConfigured
	}
	if u, err := url.Parse(baseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, apperrors.ErrInvalidConfig.WithContext("detail", fmt.Sprintf("jira base_url %q is not a valid URL", cfg.Jira.BaseURL))
	}

	if client == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if cfg.Jira.InsecureSkipVerify {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} // #nosec G402 -- opt-in for self-signed servers
		}
		client = &http.Client{Timeout: requestTimeout, Transport: transport}
	}

	return &Client{
		baseURL: baseURL,
		token:   token,
		email:   strings.TrimSpace(cfg.Jira.Email),
		client:  client,
	}, nil
}

type (
	createRequest struct {
		Fields issueFields `json:"fields"`
	}

	issueFields struct {
		Project     keyRef   `json:"project"`
		Summary     string   `json:"summary"`
		Description string   `json:"description"`
		IssueType   nameRef  `json:"issuetype"`
		Priority    *nameRef `json:"priority,omitempty"`
		Labels      []string `json:"labels,omitempty"`
	}

	keyRef struct {
		Key string `json:"key"`
	}

	nameRef struct {
		Name string `json:"name"`
	}

	createResponse struct {
		ID  string `json:"id"`
		Key string `json:"key"`
	}

	errorResponse struct {
		ErrorMessages []string          `json:"errorMessages"`
		Errors        map[string]string `json:"errors"`
	}
)

// CreateIssue creates the issue and returns its key and browse URL.
func (c *Client) CreateIssue(ctx context.Context, req models.IssueRequest) (models.Issue, error) {
	if strings.TrimSpace(req.ProjectKey) == "" || strings.TrimSpace(req.Title) == "" {
		return models.Issue{}, apperrors.ErrTrackerBadRequest.WithContext("detail", "project key and summary are required")
	}

	fields := issueFields{
		Project:     keyRef{Key: req.ProjectKey},
		Summary:     req.Title,
		Description: req.Body,
		IssueType:   nameRef{Name: req.IssueType},
		Labels:      req.Labels,
	}
	if req.Priority != "" {
		fields.Priority = &nameRef{Name: req.Priority}
	}

	payload, err := json.Marshal(createRequest{Fields: fields})
	if err != nil {
		return models.Issue{}, apperrors.ErrInternal.WithError(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rest/api/2/issue", bytes.NewReader(payload))
	if err != nil {
		return models.Issue{}, apperrors.ErrTrackerRequest.WithError(err)
	}
	httpReq.Header.Set("Authorization", c.authorization())
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	logger.Debug(ctx, "creating jira issue", "project", req.ProjectKey, "type", req.IssueType)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		logger.Error(ctx, "jira request failed", err)
		return models.Issue{}, apperrors.ErrTrackerRequest.WithError(err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Warn(ctx, "error closing response body", "error", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Issue{}, apperrors.ErrTrackerRequest.WithError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return models.Issue{}, mapStatusError(resp.StatusCode, body)
	}

	var created createResponse
	if err := json.Unmarshal(body, &created); err != nil || created.Key == "" {
		return models.Issue{}, apperrors.ErrTrackerRequest.WithContext("detail", "response did not contain an issue key")
	}

	issue := models.Issue{
		ID:  created.ID,
		Key: created.Key,
		URL: c.baseURL + "/browse/" + created.Key,
	}
	logger.Info(ctx, "jira issue created", "key", issue.Key)
	return issue, nil
}

// authorization uses Basic auth for Jira Cloud (email + API token) and a
// bearer personal access token otherwise.
func (c *Client) authorization() string {
	if c.email != "" {
		credentials := fmt.Sprintf("%s:%s", c.email, c.token)
		return "Basic " + base64.StdEncoding.EncodeToString([]byte(credentials))
	}
	return "Bearer " + c.token
}

func mapStatusError(status int, body []byte) error {
	detail := errorDetail(body)
	var base *apperrors.AppError
	switch {
	case status == http.StatusUnauthorized:
		base = apperrors.ErrTrackerAuth
	case status == http.StatusForbidden:
		base = apperrors.ErrTrackerPermission
	case status == http.StatusNotFound:
		base = apperrors.ErrTrackerNotFound
	case status == http.StatusBadRequest:
		base = apperrors.ErrTrackerBadRequest
	default:
		base = apperrors.ErrTrackerRequest
	}

	err := base.WithContext("status", status)
	if detail != "" {
		err = err.WithContext("detail", detail)
	}
	return err
}

// errorDetail flattens Jira's errorMessages and per-field errors.
func errorDetail(body []byte) string {
	var parsed errorResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return strings.TrimSpace(truncate(string(body), 200))
	}

	parts := append([]string(nil), parsed.ErrorMessages...)
	fieldNames := make([]string, 0, len(parsed.Errors))
	for field := range parsed.Errors {
		fieldNames = append(fieldNames, field)
	}
	sort.Strings(fieldNames)
	for _, field := range fieldNames {
		parts = append(parts, fmt.Sprintf("%s: %s", field, parsed.Errors[field]))
	}
	return strings.Join(parts, "; ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
