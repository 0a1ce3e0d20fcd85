package platform

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	pstrings "evidencegate/internal/platform/strings"
)

const tailBytes = 2048

// StatusError carries a non-2xx platform response
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("platform status %d: %s", e.Status, e.Body)
}

// HTTPStatus returns the upstream status
func (e *StatusError) HTTPStatus() int { return e.Status }

// statusError reads a small body tail and closes the body
func statusError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, tailBytes))
	_ = resp.Body.Close()
	return &StatusError{Status: resp.StatusCode, Body: tail(b)}
}

func tail(b []byte) string {
	return pstrings.Truncate(strings.TrimSpace(string(b)), 256)
}

// retryAfter reads Retry-After as delta seconds or an HTTP date
func retryAfter(h http.Header, now time.Time) time.Duration {
	v := strings.TrimSpace(h.Get("Retry-After"))
	if v == "" {
		return 0
	}
	if sec, err := strconv.Atoi(v); err == nil {
		if sec <= 0 {
			return 0
		}
		return time.Duration(sec) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil && at.After(now) {
		return at.Sub(now)
	}
	return 0
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 512))
	return rc.Close()
}

// sleepCtx waits for d or until ctx is done, whichever comes first
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
