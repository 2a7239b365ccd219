// Package sms sends text messages through one configured carrier.
package sms

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/bizlab-kr/leadbot/internal/logging"
	"github.com/bizlab-kr/leadbot/internal/models"
	"github.com/bizlab-kr/leadbot/internal/utils/httpclient"
)

// Provider is a carrier integration.
type Provider interface {
	// Name identifies the provider in results, logs and metrics.
	Name() string
	// SendSMS delivers message to a normalized local mobile number.
	SendSMS(ctx context.Context, to, message string) (*models.SMSResult, error)
	// HealthCheck reports reachability for diagnostics. It never fails.
	HealthCheck(ctx context.Context) bool
}

// Kind selects a provider implementation.
type Kind string

const (
	KindDemo  Kind = "demo"
	KindAligo Kind = "aligo"
	KindSENS  Kind = "sens"
)

// ParseKind maps a configuration string to a Kind. Unknown values map to KindDemo.
func ParseKind(s string) (Kind, bool) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindDemo, KindAligo, KindSENS:
		return k, true
	}
	return KindDemo, false
}

// Settings carries every credential a provider may need.
type Settings struct {
	Sender string

	AligoAPIKey  string
	AligoUserID  string
	AligoBaseURL string

	SensAccessKey string
	SensSecretKey string
	SensServiceID string
	SensBaseURL   string

	HTTPClient *http.Client
	Logger     *logging.SafeLogger
}

func (s Settings) httpClient() *http.Client {
	if s.HTTPClient != nil {
		return s.HTTPClient
	}
	return httpclient.Shared()
}

type factory func(Settings) (Provider, error)

var registry = map[Kind]factory{
	KindDemo:  func(s Settings) (Provider, error) { return NewDemoProvider(s.Logger), nil },
	KindAligo: func(s Settings) (Provider, error) { return NewAligoProvider(s) },
	KindSENS:  func(s Settings) (Provider, error) { return NewSENSProvider(s) },
}

// NewProvider builds the provider registered for kind.
func NewProvider(kind Kind, s Settings) (Provider, error) {
	f, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("unknown sms provider %q", kind)
	}
	return f(s)
}

func requireSettings(component string, values map[string]string) error {
	var missing []string
	for name, v := range values {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return &models.ConfigurationError{Component: component, Missing: missing}
}

func newResult(provider, messageID string) *models.SMSResult {
	return &models.SMSResult{
		Success:   true,
		MessageID: messageID,
		Provider:  provider,
		Timestamp: time.Now().UTC(),
	}
}
