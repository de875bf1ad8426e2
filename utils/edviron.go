package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const gatewayMaxRedirects = 5

// EdvironClient talks to the Edviron collect-request gateway. Configuration
// is injected once at construction instead of read from the environment on
// every call, so handlers can be tested against a fake gateway.
type EdvironClient struct {
	BaseURL     string
	APIKey      string
	PGKey       string
	SchoolID    string
	FrontendURL string
	HTTP        *http.Client
}

// NewEdvironClientFromEnv reads the gateway configuration from the
// environment. The HTTP client carries a fixed timeout and redirect cap; the
// gateway is never retried.
func NewEdvironClientFromEnv() *EdvironClient {
	return &EdvironClient{
		BaseURL:     strings.TrimRight(os.Getenv("PAYMENT_API_URL"), "/"),
		APIKey:      os.Getenv("PAYMENT_API_KEY"),
		PGKey:       os.Getenv("PG_KEY"),
		SchoolID:    os.Getenv("SCHOOL_ID"),
		FrontendURL: strings.TrimRight(os.Getenv("FRONTEND_URL"), "/"),
		HTTP: &http.Client{
			Timeout: 10 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= gatewayMaxRedirects {
					return fmt.Errorf("stopped after %d redirects", gatewayMaxRedirects)
				}
				return nil
			},
		},
	}
}

// CollectRequestResponse is the parsed create-collect-request reply. The
// gateway has been observed returning the payment URL under two different
// capitalizations.
type CollectRequestResponse struct {
	CollectRequestID     string `json:"collect_request_id"`
	CollectRequestURL    string `json:"collect_request_url"`
	CollectRequestURLAlt string `json:"Collect_request_url"`
}

// PaymentURL returns whichever payment URL variant the gateway filled in.
func (r *CollectRequestResponse) PaymentURL() string {
	if r.CollectRequestURL != "" {
		return r.CollectRequestURL
	}
	return r.CollectRequestURLAlt
}

// sign produces the HS256 JWT the gateway expects in the "sign" field.
func (c *EdvironClient) sign(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(c.PGKey))
}

// CreateCollectRequest signs and posts a new collect request. It returns the
// parsed response together with the raw gateway body, which is passed through
// to API callers untouched.
func (c *EdvironClient) CreateCollectRequest(ctx context.Context, schoolID string, amount float64, callbackURL string) (*CollectRequestResponse, json.RawMessage, error) {
	amountStr := strconv.FormatFloat(amount, 'f', -1, 64)

	sign, err := c.sign(jwt.MapClaims{
		"school_id":    schoolID,
		"amount":       amountStr,
		"callback_url": callbackURL,
	})
	if err != nil {
		return nil, nil, err
	}

	body, _ := json.Marshal(map[string]string{
		"school_id":    schoolID,
		"amount":       amountStr,
		"callback_url": callbackURL,
		"sign":         sign,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/create-collect-request", bytes.NewReader(body))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, respBody, errors.New(gatewayErrorMessage(respBody, resp.StatusCode))
	}

	var result CollectRequestResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, respBody, fmt.Errorf("parse response: %w (body: %s)", err, string(respBody))
	}
	return &result, respBody, nil
}

// CollectRequestStatus performs a signed live status lookup for a collect
// request, bypassing local state entirely.
func (c *EdvironClient) CollectRequestStatus(ctx context.Context, collectRequestID string) (json.RawMessage, error) {
	sign, err := c.sign(jwt.MapClaims{
		"school_id":          c.SchoolID,
		"collect_request_id": collectRequestID,
	})
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("school_id", c.SchoolID)
	q.Set("sign", sign)
	statusURL := c.BaseURL + "/collect-request/" + url.PathEscape(collectRequestID) + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, statusURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.New(gatewayErrorMessage(respBody, resp.StatusCode))
	}
	return respBody, nil
}

// gatewayErrorMessage pulls the gateway's own message out of an error body
// when present, falling back to the HTTP status.
func gatewayErrorMessage(body []byte, statusCode int) string {
	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		return parsed.Message
	}
	return fmt.Sprintf("gateway returned status %d", statusCode)
}
