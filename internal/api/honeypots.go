package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/honeywatch/console/internal/model"
)

// ErrEmptyID is returned by per-honeypot calls given an empty id.
var ErrEmptyID = errors.New("honeypot id is required")

func honeypotPath(id, suffix string) (string, error) {
	if id == "" {
		return "", ErrEmptyID
	}
	return "/honeypots/" + url.PathEscape(id) + suffix, nil
}

// ListHoneypots fetches every honeypot in backend order.
func (c *Client) ListHoneypots(ctx context.Context) ([]model.Honeypot, error) {
	var resp []model.Honeypot
	if err := c.get(ctx, "/honeypots", nil, &resp); err != nil {
		return nil, fmt.Errorf("list honeypots: %w", err)
	}
	return resp, nil
}

// GetHoneypotConfig fetches the per-honeypot configuration.
func (c *Client) GetHoneypotConfig(ctx context.Context, id string) (*model.HoneypotConfig, error) {
	path, err := honeypotPath(id, "/config")
	if err != nil {
		return nil, err
	}

	var resp model.HoneypotConfig
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("get config %s: %w", id, err)
	}
	return &resp, nil
}

// UpdateHoneypotConfig replaces the per-honeypot configuration.
func (c *Client) UpdateHoneypotConfig(ctx context.Context, id string, cfg model.HoneypotConfig) error {
	path, err := honeypotPath(id, "/config")
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	cfg.ID = id
	if err := c.send(ctx, http.MethodPut, path, cfg, nil); err != nil {
		return fmt.Errorf("update config %s: %w", id, err)
	}
	return nil
}

// EnableHoneypot resumes monitoring of a honeypot.
func (c *Client) EnableHoneypot(ctx context.Context, id string) error {
	return c.honeypotAction(ctx, id, "/enable", "enable")
}

// DisableHoneypot stops monitoring of a honeypot.
func (c *Client) DisableHoneypot(ctx context.Context, id string) error {
	return c.honeypotAction(ctx, id, "/disable", "disable")
}

func (c *Client) honeypotAction(ctx context.Context, id, suffix, verb string) error {
	path, err := honeypotPath(id, suffix)
	if err != nil {
		return err
	}
	if err := c.send(ctx, http.MethodPost, path, nil, nil); err != nil {
		return fmt.Errorf("%s honeypot %s: %w", verb, id, err)
	}
	return nil
}

// DeleteHoneypot removes a honeypot.
func (c *Client) DeleteHoneypot(ctx context.Context, id string) error {
	path, err := honeypotPath(id, "")
	if err != nil {
		return err
	}
	if err := c.send(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("delete honeypot %s: %w", id, err)
	}
	return nil
}

// DeployHoneypot creates a honeypot and returns the backend's record of it.
func (c *Client) DeployHoneypot(ctx context.Context, req model.DeployRequest) (*model.Honeypot, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid deploy request: %w", err)
	}

	var resp model.Honeypot
	if err := c.send(ctx, http.MethodPost, "/honeypots/deploy", req, &resp); err != nil {
		return nil, fmt.Errorf("deploy honeypot %q: %w", req.Name, err)
	}
	return &resp, nil
}

// ToggleStar flips the starred flag and returns its new value.
func (c *Client) ToggleStar(ctx context.Context, id string) (bool, error) {
	path, err := honeypotPath(id, "/star")
	if err != nil {
		return false, err
	}

	var resp model.StarResult
	if err := c.send(ctx, http.MethodPost, path, nil, &resp); err != nil {
		return false, fmt.Errorf("toggle star %s: %w", id, err)
	}
	return resp.Starred, nil
}

// ResetHoneypots returns every honeypot to its initial state and reports how
// many were reset.
func (c *Client) ResetHoneypots(ctx context.Context) (int, error) {
	var resp model.ResetResult
	if err := c.send(ctx, http.MethodPost, "/honeypots/reset", nil, &resp); err != nil {
		return 0, fmt.Errorf("reset honeypots: %w", err)
	}
	return resp.ResetCount, nil
}
