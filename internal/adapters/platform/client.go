// Package platform is the HTTP client for the evidence platform's seal endpoint
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"evidencegate/internal/core/ingestion"
	"evidencegate/internal/platform/config"
	perr "evidencegate/internal/platform/errors"
	"evidencegate/internal/platform/logger"
	pnet "evidencegate/internal/platform/net"
)

const (
	defaultSealPath  = "/api/evidence/seal"
	defaultTimeout   = 15 * time.Second
	defaultUA        = "evidencegate"
	defaultMaxRetry  = 4
	defaultRetryBase = 250 * time.Millisecond
	maxBackoff       = 30 * time.Second
	maxReceiptBytes  = 1 << 20
)

// Options configures the Client
type Options struct {
	BaseURL   string
	SealPath  string
	APIKey    string
	UserAgent string
	Timeout   time.Duration

	// Retry config for transport errors, 429 and 5xx
	MaxRetries int
	RetryBase  time.Duration
}

// FromConfig reads PLATFORM_* values. PLATFORM_BASE_URL is required.
func FromConfig(cfg config.Conf) Options {
	pc := cfg.Prefix("PLATFORM_")
	return Options{
		BaseURL:    strings.TrimRight(pc.MustURL("BASE_URL").String(), "/"),
		SealPath:   pc.MayString("SEAL_PATH", defaultSealPath),
		APIKey:     pc.MayString("API_KEY", ""),
		UserAgent:  pc.MayString("USER_AGENT", defaultUA),
		Timeout:    pc.MayDuration("TIMEOUT", defaultTimeout),
		MaxRetries: pc.MayInt("MAX_RETRIES", defaultMaxRetry),
		RetryBase:  pc.MayDuration("RETRY_BASE", defaultRetryBase),
	}
}

// Client posts seal requests with retries and rate limit handling
type Client struct {
	http  *http.Client
	opts  Options
	log   logger.Logger
	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// NewClient creates a Client, filling unset options with defaults
func NewClient(o Options) *Client {
	if o.SealPath == "" {
		o.SealPath = defaultSealPath
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	return &Client{
		http:  &http.Client{Timeout: o.Timeout},
		opts:  o,
		log:   *logger.Named("platform"),
		now:   time.Now,
		sleep: sleepCtx,
	}
}

// Seal posts req and decodes the receipt. The caller checks the receipt
// contract; a body that is not a receipt at all is an upstream contract error.
func (c *Client) Seal(ctx context.Context, req ingestion.SealRequest) (ingestion.SealReceipt, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return ingestion.SealReceipt{}, perr.Wrap(err, perr.ErrorCodeUnknown, "encode seal request")
	}
	hdr := http.Header{}
	hdr.Set("Idempotency-Key", req.IdempotencyKey)
	if req.TenantID != "" {
		hdr.Set("X-Tenant-ID", req.TenantID)
	}

	resp, err := c.Do(ctx, http.MethodPost, c.opts.SealPath, body, hdr)
	if err != nil {
		return ingestion.SealReceipt{}, perr.WithOp(err, "platform.Seal")
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Error().Err(cerr).Msg("platform close body failed")
		}
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxReceiptBytes))
	if err != nil {
		return ingestion.SealReceipt{}, perr.Wrap(err, perr.ErrorCodeUnavailable, "read seal receipt")
	}
	var out ingestion.SealReceipt
	if err := json.Unmarshal(raw, &out); err != nil {
		return ingestion.SealReceipt{}, perr.Wrapf(err, perr.ErrorCodeUpstreamContract,
			"seal receipt is not JSON: %s", tail(raw))
	}
	return out, nil
}

// Do issues a request with auth and correlation headers, retrying transport
// errors, 429 and 5xx. body is resent on every attempt.
func (c *Client) Do(ctx context.Context, method, path string, body []byte, hdr http.Header) (*http.Response, error) {
	url := c.opts.BaseURL + path
	reqID := pnet.RequestID(ctx)
	if reqID == "" {
		reqID = uuid.NewString()
	}
	log := logger.C(ctx).With().Str("component", "platform").Str("path", path).Logger()

	attempts := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "platform request canceled")
		}

		req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
		if err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeUnknown, "platform new request failed")
		}
		for k, vv := range hdr {
			for _, v := range vv {
				req.Header.Add(k, v)
			}
		}
		req.Header.Set("User-Agent", c.opts.UserAgent)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Request-ID", reqID)
		if c.opts.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
		}

		start := c.now()
		resp, err := c.http.Do(req)
		lat := c.now().Sub(start)

		if err != nil {
			if ctx.Err() != nil || !c.shouldRetry(attempts) {
				return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "platform request failed")
			}
			back := c.backoff(attempts)
			log.Warn().Err(err).Dur("retry_in", back).Int("attempt", attempts).Msg("platform transport error retrying")
			if err := c.sleep(ctx, back); err != nil {
				return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "platform request canceled")
			}
			attempts++
			continue
		}

		log.Debug().
			Str("method", method).
			Int("status", resp.StatusCode).
			Int("attempt", attempts).
			Dur("latency", lat).
			Msg("platform http response")

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return resp, nil

		case resp.StatusCode == http.StatusTooManyRequests:
			if !c.shouldRetry(attempts) {
				_ = drainAndClose(resp.Body)
				return nil, perr.New(perr.ErrorCodeTooManyRequests, "platform rate limited")
			}
			wait := retryAfter(resp.Header, c.now())
			if wait <= 0 {
				wait = c.backoff(attempts)
			}
			log.Warn().Dur("sleep", wait).Msg("platform rate limited backing off")
			_ = drainAndClose(resp.Body)
			if err := c.sleep(ctx, min(wait, maxBackoff)); err != nil {
				return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "platform request canceled")
			}
			attempts++
			continue

		case resp.StatusCode >= 500:
			if !c.shouldRetry(attempts) {
				err := statusError(resp)
				return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "platform server error %d", resp.StatusCode)
			}
			back := c.backoff(attempts)
			if ra := retryAfter(resp.Header, c.now()); ra > back {
				back = min(ra, maxBackoff)
			}
			log.Warn().Int("status", resp.StatusCode).Dur("retry_in", back).Int("attempt", attempts).
				Msg("platform transient error retrying")
			_ = drainAndClose(resp.Body)
			if err := c.sleep(ctx, back); err != nil {
				return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "platform request canceled")
			}
			attempts++
			continue

		default:
			err := statusError(resp)
			switch resp.StatusCode {
			case http.StatusConflict:
				return nil, perr.Wrap(err, perr.ErrorCodeConflict, "platform refused: idempotency key reused")
			case http.StatusUnauthorized, http.StatusForbidden:
				return nil, perr.Wrapf(err, perr.ErrorCodeUpstream, "platform rejected credentials (%d)", resp.StatusCode)
			}
			return nil, perr.Wrapf(err, perr.ErrorCodeUpstream, "platform unexpected status %d", resp.StatusCode)
		}
	}
}

func (c *Client) backoff(attempt int) time.Duration {
	d := c.opts.RetryBase << uint(attempt)
	if d <= 0 || d > maxBackoff {
		return maxBackoff
	}
	return d
}

func (c *Client) shouldRetry(attempt int) bool {
	return attempt < c.opts.MaxRetries
}
