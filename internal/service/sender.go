// Package service wires the planner pipeline: inbound webhook handling,
// classification, dispatch, broadcast fan-out, and message logging.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/saapai/jarvis-sub001/core/config"
)

// OutboundSender delivers one text message to one recipient. Implementations
// are fire-and-forget: a nil return means the provider accepted the message,
// not that it was delivered.
type OutboundSender interface {
	Send(ctx context.Context, to, body string) error
}

type httpSender struct {
	client     *http.Client
	baseURL    string
	authToken  string
	fromNumber string
}

// NewHTTPSender builds an OutboundSender posting to the configured
// text-message provider.
func NewHTTPSender(cfg config.SenderConfig) OutboundSender {
	return &httpSender{
		client:     &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		authToken:  cfg.AuthToken,
		fromNumber: cfg.FromNumber,
	}
}

type sendPayload struct {
	To   string `json:"to"`
	From string `json:"from"`
	Body string `json:"body"`
}

func (s *httpSender) Send(ctx context.Context, to, body string) error {
	payload, err := json.Marshal(sendPayload{To: to, From: s.fromNumber, Body: body})
	if err != nil {
		return fmt.Errorf("encoding send payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.authToken)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("provider rejected message: status %d: %s", resp.StatusCode, snippet)
	}
	return nil
}
