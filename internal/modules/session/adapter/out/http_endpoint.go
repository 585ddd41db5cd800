package out

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"studydash/internal/modules/session/domain"
	sessionout "studydash/internal/modules/session/port/out"
	apperrors "studydash/internal/platform/errors"
)

const maxResponseBytes = 1 << 20

// HTTPProgressEndpoint posts exchanges as JSON to a single URL.
type HTTPProgressEndpoint struct {
	url    string
	client *http.Client
}

func NewHTTPProgressEndpoint(url string, timeout time.Duration) sessionout.ProgressEndpoint {
	return &HTTPProgressEndpoint{url: url, client: &http.Client{Timeout: timeout}}
}

func (e *HTTPProgressEndpoint) Exchange(ctx context.Context, req domain.ExchangeRequest) (domain.ExchangeResponse, error) {
	if e.url == "" {
		return domain.ExchangeResponse{}, fmt.Errorf("%w: endpoint url is not configured", apperrors.ErrTransport)
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return domain.ExchangeResponse{}, fmt.Errorf("encode exchange: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(payload))
	if err != nil {
		return domain.ExchangeResponse{}, fmt.Errorf("%w: build request: %v", apperrors.ErrTransport, err)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)

	started := time.Now()
	res, err := e.client.Do(httpReq)
	if err != nil {
		return domain.ExchangeResponse{}, fmt.Errorf("%w: %v", apperrors.ErrTransport, err)
	}
	defer res.Body.Close()
	log.Debug().
		Str("request_id", requestID).
		Bool("by_token", req.ByToken()).
		Int("status", res.StatusCode).
		Dur("elapsed", time.Since(started)).
		Msg("progress exchange")

	if res.StatusCode < 200 || res.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, maxResponseBytes))
		return domain.ExchangeResponse{}, fmt.Errorf("%w: status %d", apperrors.ErrTransport, res.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return domain.ExchangeResponse{}, fmt.Errorf("%w: read response: %v", apperrors.ErrTransport, err)
	}
	// Unmarshal rejects trailing bytes after the object.
	out := domain.ExchangeResponse{}
	if err := json.Unmarshal(body, &out); err != nil {
		return domain.ExchangeResponse{}, fmt.Errorf("%w: decode response: %v", apperrors.ErrTransport, err)
	}
	return out, nil
}
