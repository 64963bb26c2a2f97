package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// PostJSON executes a single JSON POST bounded by timeout. The timeout is a
// real context deadline handed to the transport, so an abandoned call is
// aborted rather than left running. No retries: the engine never re-issues a
// provider call within one request.
func (hc *HttpClientWrapper) PostJSON(ctx context.Context, urlString string, payload any, headers map[string]string, timeout time.Duration) ([]byte, int, error) {
	if timeout <= 0 {
		timeout = hc.contextTimeout
	}
	childCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("error encoding request body: %w", err)
	}
	request, err := http.NewRequestWithContext(childCtx, http.MethodPost, urlString, bytes.NewReader(encoded))
	if err != nil {
		return nil, 0, fmt.Errorf("error creating POST request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		request.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := hc.client.Do(request)
	if err != nil {
		if childCtx.Err() == context.DeadlineExceeded {
			log.Warnf("Request timed out: %s %s %.3fs", request.Method, request.URL.String(), time.Since(start).Seconds())
			return nil, 0, childCtx.Err()
		}
		return nil, 0, err
	}
	defer resp.Body.Close()
	log.Infof("Request: %s %s %s %.3fs", request.Method, request.URL.String(), resp.Status, time.Since(start).Seconds())

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, resp.StatusCode, nil
}
