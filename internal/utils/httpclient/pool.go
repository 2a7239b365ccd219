package httpclient

import (
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultTimeout bounds a whole request when the caller does not pick one.
const DefaultTimeout = 10 * time.Second

// New creates an HTTP client with pooled keep-alive connections and an
// OpenTelemetry transport so outbound calls join the request trace.
func New(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: otelhttp.NewTransport(&http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 5 * time.Second,
		}),
	}
}

var (
	shared     *http.Client
	sharedOnce sync.Once
)

// Shared returns the process-wide client used by carrier adapters.
func Shared() *http.Client {
	sharedOnce.Do(func() {
		shared = New(DefaultTimeout)
	})
	return shared
}
