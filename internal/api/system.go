package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/honeywatch/console/internal/model"
)

// SimulateAttackRequest is the body of POST /simulate/attack. With a
// non-zero Duration the backend reverts the increase after that many seconds.
type SimulateAttackRequest struct {
	Intensity float64 `json:"intensity"`
	Duration  int     `json:"duration,omitempty"`
}

// ReduceThreatRequest is the body of POST /simulate/reduce-threat.
type ReduceThreatRequest struct {
	Amount float64 `json:"amount"`
}

type threatHistoryResponse struct {
	History []model.ThreatHistoryPoint `json:"history"`
}

// GetSettings fetches the global settings.
func (c *Client) GetSettings(ctx context.Context) (*model.SystemSettings, error) {
	var resp model.SystemSettings
	if err := c.get(ctx, "/settings", nil, &resp); err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return &resp, nil
}

// UpdateSettings replaces the global settings.
func (c *Client) UpdateSettings(ctx context.Context, s model.SystemSettings) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	if err := c.send(ctx, http.MethodPut, "/settings", s, nil); err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	return nil
}

// GetStatus fetches the aggregate threat status.
func (c *Client) GetStatus(ctx context.Context) (*model.ThreatStatus, error) {
	var resp model.ThreatStatus
	if err := c.get(ctx, "/status", nil, &resp); err != nil {
		return nil, fmt.Errorf("get status: %w", err)
	}
	return &resp, nil
}

// SimulateAttack raises the threat level and returns the resulting status.
func (c *Client) SimulateAttack(ctx context.Context, req SimulateAttackRequest) (*model.ThreatStatus, error) {
	if req.Intensity < 0 || req.Intensity > 100 {
		return nil, fmt.Errorf("intensity must be between 0 and 100, got %g", req.Intensity)
	}
	if req.Duration < 0 {
		return nil, fmt.Errorf("duration must not be negative, got %d", req.Duration)
	}

	var resp model.ThreatStatus
	if err := c.send(ctx, http.MethodPost, "/simulate/attack", req, &resp); err != nil {
		return nil, fmt.Errorf("simulate attack: %w", err)
	}
	return &resp, nil
}

// ReduceThreat lowers the threat level and returns the resulting status.
func (c *Client) ReduceThreat(ctx context.Context, amount float64) (*model.ThreatStatus, error) {
	if amount < 0 || amount > 100 {
		return nil, fmt.Errorf("amount must be between 0 and 100, got %g", amount)
	}

	var resp model.ThreatStatus
	if err := c.send(ctx, http.MethodPost, "/simulate/reduce-threat", ReduceThreatRequest{Amount: amount}, &resp); err != nil {
		return nil, fmt.Errorf("reduce threat: %w", err)
	}
	return &resp, nil
}

// SwitchCryptoMethod forces the backend onto the given protection scheme.
func (c *Client) SwitchCryptoMethod(ctx context.Context, method model.CryptoMethod) error {
	if !method.Valid() {
		return fmt.Errorf("crypto method must be classical or post_quantum, got %q", method)
	}
	if err := c.send(ctx, http.MethodPost, "/crypto/switch/"+string(method), nil, nil); err != nil {
		return fmt.Errorf("switch crypto to %s: %w", method, err)
	}
	return nil
}

// GetMetrics fetches system performance metrics.
func (c *Client) GetMetrics(ctx context.Context) (*model.SystemMetrics, error) {
	var resp model.SystemMetrics
	if err := c.get(ctx, "/metrics", nil, &resp); err != nil {
		return nil, fmt.Errorf("get metrics: %w", err)
	}
	return &resp, nil
}

// GetTransactions fetches recent transactions. A non-positive limit leaves
// the choice to the backend.
func (c *Client) GetTransactions(ctx context.Context, limit int) ([]model.Transaction, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var resp []model.Transaction
	if err := c.get(ctx, "/transactions", query, &resp); err != nil {
		return nil, fmt.Errorf("get transactions: %w", err)
	}
	return resp, nil
}

// GetThreatHistory fetches hourly threat samples covering the last hours.
func (c *Client) GetThreatHistory(ctx context.Context, hours int) ([]model.ThreatHistoryPoint, error) {
	query := url.Values{}
	if hours > 0 {
		query.Set("hours", strconv.Itoa(hours))
	}

	var resp threatHistoryResponse
	if err := c.get(ctx, "/threat/history", query, &resp); err != nil {
		return nil, fmt.Errorf("get threat history: %w", err)
	}
	return resp.History, nil
}
