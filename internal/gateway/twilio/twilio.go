// Package twilio delivers outbound WhatsApp messages through Twilio's
// Messages REST endpoint. Credentials come from environment configuration;
// the caller only sees send(to, body) -> provider message SID.
package twilio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/pulseai-health/clinic-api/internal/config"
)

var ErrSendFailed = errors.New("whatsapp message delivery failed")

type Client struct {
	http    *http.Client
	baseURL string
	sid     string
	token   string
	from    string
	log     *zap.Logger
}

func NewClient(cfg config.MessagingConfig, log *zap.Logger) *Client {
	return &Client{
		http:    &http.Client{Timeout: cfg.RequestTimeout},
		baseURL: strings.TrimRight(cfg.TwilioBaseURL, "/"),
		sid:     cfg.TwilioAccountSID,
		token:   cfg.TwilioAuthToken,
		from:    cfg.TwilioWhatsAppFrom,
		log:     log,
	}
}

type sendResponse struct {
	SID     string `json:"sid"`
	Status  string `json:"status"`
	Message string `json:"message"` // error description on failure
	Code    int    `json:"code"`
}

// Send delivers body to the given phone number over WhatsApp and returns the
// provider message SID. Any transport, auth, or provider-side rejection is
// wrapped in ErrSendFailed; callers record the failure and move on.
func (c *Client) Send(ctx context.Context, toNumber, body string) (string, error) {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, c.sid)

	form := url.Values{}
	form.Set("From", "whatsapp:"+c.from)
	form.Set("To", "whatsapp:"+toNumber)
	form.Set("Body", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: building request: %v", ErrSendFailed, err)
	}
	req.SetBasicAuth(c.sid, c.token)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	defer resp.Body.Close()

	var result sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", ErrSendFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn("twilio rejected message",
			zap.Int("status", resp.StatusCode),
			zap.Int("code", result.Code),
			zap.String("message", result.Message),
		)
		return "", fmt.Errorf("%w: provider status %d: %s", ErrSendFailed, resp.StatusCode, result.Message)
	}

	return result.SID, nil
}
