package probe

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/quic-go/quic-go/http3"

	"github.com/hamed0406/pingsweep/internal/domain"
)

// bodies are drained up to this size so keep-alive connections can be reused
const maxDrainBytes = 1 << 20

const userAgent = "pingsweep/1.0"

type HTTPChecker struct {
	Client  *http.Client
	Timeout time.Duration

	closer func()
}

// NewHTTPChecker probes over HTTP/1.1 and HTTP/2. The timeout is applied per
// request through the context, not as a client-wide deadline.
func NewHTTPChecker(timeout time.Duration) *HTTPChecker {
	tr := &http.Transport{
		Proxy:             http.ProxyFromEnvironment,
		ForceAttemptHTTP2: true,
	}
	return &HTTPChecker{
		Client:  &http.Client{Transport: tr},
		Timeout: timeout,
		closer:  tr.CloseIdleConnections,
	}
}

// NewHTTP3Checker probes over QUIC. Targets that do not speak HTTP/3 settle
// as Error or Timeout, never fall back to TCP.
func NewHTTP3Checker(timeout time.Duration) *HTTPChecker {
	tr := &http3.Transport{
		TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS13},
	}
	return &HTTPChecker{
		Client:  &http.Client{Transport: tr},
		Timeout: timeout,
		closer:  func() { _ = tr.Close() },
	}
}

func (h *HTTPChecker) Check(ctx context.Context, target string) domain.Outcome {
	ctx, cancel := context.WithTimeout(ctx, h.Timeout)
	defer cancel()

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return domain.Failure(target, fmt.Errorf("bad request: %w", err))
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := h.Client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return domain.Timeout(target)
		}
		return domain.Failure(target, err)
	}
	defer resp.Body.Close()

	// headers arrived in time; a slow or broken body does not change that
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))

	return domain.Success(target, resp.StatusCode, time.Since(start))
}

// Close releases idle connections. Safe to call more than once.
func (h *HTTPChecker) Close() {
	if h == nil || h.closer == nil {
		return
	}
	h.closer()
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
