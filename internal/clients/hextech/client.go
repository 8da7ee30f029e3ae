package hextech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/urbanatlas/urban-backend/internal/apierr"
	"github.com/urbanatlas/urban-backend/internal/logger"
	"github.com/urbanatlas/urban-backend/internal/utils"
)

// Client triggers indicator recomputation in the external hextech
// service after scenario data changes. Calls happen post-commit, so a
// failure here is reported but never unwinds local state.
type Client interface {
	SaveScenarioIndicators(ctx context.Context, scenarioID int64) error
	SaveAllProjectIndicators(ctx context.Context, projectID int64) error
}

type client struct {
	host    string
	http    *http.Client
	retries int
	log     *logger.Logger
}

func NewClient(baseLog *logger.Logger) Client {
	clientLog := baseLog.With("client", "HextechClient")
	host := utils.GetEnv("HEXTECH_HOST", "http://localhost:8100", baseLog)
	timeout := utils.GetEnvAsInt("HEXTECH_TIMEOUT_SECONDS", 30, baseLog)
	retries := utils.GetEnvAsInt("HEXTECH_RETRIES", 3, baseLog)
	return &client{
		host:    strings.TrimRight(host, "/"),
		http:    &http.Client{Timeout: time.Duration(timeout) * time.Second},
		retries: retries,
		log:     clientLog,
	}
}

func (c *client) SaveScenarioIndicators(ctx context.Context, scenarioID int64) error {
	url := fmt.Sprintf("%s/api/v1/scenarios/%d/indicators_saving", c.host, scenarioID)
	return c.put(ctx, url)
}

func (c *client) SaveAllProjectIndicators(ctx context.Context, projectID int64) error {
	url := fmt.Sprintf("%s/api/v1/projects/%d/indicators_saving/save_all", c.host, projectID)
	return c.put(ctx, url)
}

func (c *client) put(ctx context.Context, url string) error {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return apierr.Upstream("hextech", ctx.Err())
			case <-time.After(backoff(attempt)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, nil)
		if err != nil {
			return apierr.Upstream("hextech", err)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			if !retryableError(err) {
				break
			}
			c.log.Warn("hextech request failed, retrying", "url", url, "attempt", attempt, "error", err)
			continue
		}

		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()

		if resp.StatusCode < 300 {
			return nil
		}
		lastErr = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		if !retryableStatus(resp.StatusCode) {
			break
		}
		c.log.Warn("hextech returned retryable status", "url", url, "status", resp.StatusCode, "attempt", attempt)
		if ra := retryAfter(resp); ra > 0 {
			select {
			case <-ctx.Done():
				return apierr.Upstream("hextech", ctx.Err())
			case <-time.After(ra):
			}
		}
	}
	return apierr.Upstream("hextech", lastErr)
}

func retryableStatus(code int) bool {
	if code == http.StatusRequestTimeout || code == http.StatusTooManyRequests {
		return true
	}
	return code >= 500 && code <= 599
}

func retryableError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return true
}

func retryAfter(resp *http.Response) time.Duration {
	ra := strings.TrimSpace(resp.Header.Get("Retry-After"))
	if ra == "" {
		return 0
	}
	secs, err := strconv.Atoi(ra)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func backoff(attempt int) time.Duration {
	d := time.Duration(attempt) * 500 * time.Millisecond
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}
