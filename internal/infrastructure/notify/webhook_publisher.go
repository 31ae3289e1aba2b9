package notify

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/agsa/field-scheduler/internal/platform/logging"
	"github.com/agsa/field-scheduler/internal/platform/resilience"
	"github.com/agsa/field-scheduler/internal/usecase"
)

var errWebhookTransient = crerr.New("webhook transient failure")

type WebhookPublisherConfig struct {
	URL            string
	Token          string
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// WebhookPublisher posts schedule events to a configured listener URL. A
// circuit breaker shields the caller from a listener that keeps timing
// out; non-retryable rejections never trip it.
type WebhookPublisher struct {
	client         *http.Client
	url            string
	token          string
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewWebhookPublisher(cfg WebhookPublisherConfig, logger *logging.Logger) *WebhookPublisher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &WebhookPublisher{
		client:         &http.Client{Timeout: timeout},
		url:            strings.TrimRight(strings.TrimSpace(cfg.URL), "/"),
		token:          strings.TrimSpace(cfg.Token),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (p *WebhookPublisher) PublishScheduleApplied(ctx context.Context, event usecase.ScheduleAppliedEvent) error {
	return p.publish(ctx, "schedule.applied", event)
}

func (p *WebhookPublisher) publish(ctx context.Context, eventType string, payload any) error {
	if p.circuitEnabled {
		if err := p.breaker.Allow(); err != nil {
			p.logger.WarnContext(ctx, "webhook circuit breaker rejected request", "state", p.breaker.State())
			return fmt.Errorf("webhook listener is temporarily unavailable: %w", err)
		}
	}

	endpoint, err := validateHTTPURL(p.url)
	if err != nil {
		return crerr.Wrap(err, "invalid WEBHOOK_URL")
	}

	body, err := encodeEnvelope(eventType, payload)
	if err != nil {
		return crerr.Wrap(err, "marshal webhook payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(body))
	if err != nil {
		return crerr.Wrap(err, "create webhook request")
	}
	req.Header.Set("Content-Type", "application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		callErr := fmt.Errorf("%w: post %s event to %s: %v", errWebhookTransient, eventType, endpoint, err)
		p.recordCircuitResult(callErr)
		return callErr
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 != 2 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if isRetryableStatus(resp.StatusCode) {
			callErr := fmt.Errorf(
				"%w: post %s event status=%d body=%s",
				errWebhookTransient, eventType, resp.StatusCode, strings.TrimSpace(string(raw)),
			)
			p.recordCircuitResult(callErr)
			return callErr
		}

		callErr := fmt.Errorf(
			"post %s event status=%d body=%s",
			eventType, resp.StatusCode, strings.TrimSpace(string(raw)),
		)
		p.recordCircuitResult(callErr)
		return callErr
	}

	p.logger.InfoContext(ctx, "webhook event published", "eventType", eventType, "url", endpoint)
	p.recordCircuitResult(nil)
	return nil
}

// encodeEnvelope wraps the payload with the event type and emit time. The
// envelope is assembled on a pooled buffer since apply bursts can publish
// many events back to back.
func encodeEnvelope(eventType string, payload any) (string, error) {
	data, err := sonic.Marshal(payload)
	if err != nil {
		return "", err
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString(`{"type":`)
	typeJSON, err := sonic.Marshal(eventType)
	if err != nil {
		return "", err
	}
	_, _ = buf.Write(typeJSON)
	_, _ = buf.WriteString(`,"emittedAt":"`)
	_, _ = buf.WriteString(time.Now().UTC().Format(time.RFC3339))
	_, _ = buf.WriteString(`","data":`)
	_, _ = buf.Write(data)
	_, _ = buf.WriteString("}")

	return buf.String(), nil
}

func validateHTTPURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}

	return candidate, nil
}

func (p *WebhookPublisher) recordCircuitResult(err error) {
	if !p.circuitEnabled || p.breaker == nil {
		return
	}
	if err == nil {
		p.breaker.RecordSuccess()
		return
	}
	if stderrors.Is(err, errWebhookTransient) {
		p.breaker.RecordFailure()
		return
	}
	p.breaker.RecordSuccess()
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}
