package sms

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bizlab-kr/leadbot/internal/models"
)

const defaultSENSBaseURL = "https://sens.apigw.ntruss.com"

// SENSProvider sends through Naver Cloud Platform SENS v2.
type SENSProvider struct {
	accessKey string
	secretKey string
	serviceID string
	sender    string
	baseURL   string
	client    *http.Client
	now       func() time.Time
}

// NewSENSProvider validates the SENS credentials.
func NewSENSProvider(s Settings) (*SENSProvider, error) {
	if err := requireSettings("sens", map[string]string{
		"SENS_ACCESS_KEY": s.SensAccessKey,
		"SENS_SECRET_KEY": s.SensSecretKey,
		"SENS_SERVICE_ID": s.SensServiceID,
		"SMS_SENDER":      s.Sender,
	}); err != nil {
		return nil, err
	}
	base := s.SensBaseURL
	if base == "" {
		base = defaultSENSBaseURL
	}
	return &SENSProvider{
		accessKey: s.SensAccessKey,
		secretKey: s.SensSecretKey,
		serviceID: s.SensServiceID,
		sender:    s.Sender,
		baseURL:   strings.TrimRight(base, "/"),
		client:    s.httpClient(),
		now:       time.Now,
	}, nil
}

func (p *SENSProvider) Name() string { return string(KindSENS) }

type sensMessage struct {
	To string `json:"to"`
}

type sensRequest struct {
	Type        string        `json:"type"`
	ContentType string        `json:"contentType"`
	CountryCode string        `json:"countryCode"`
	From        string        `json:"from"`
	Content     string        `json:"content"`
	Messages    []sensMessage `json:"messages"`
}

type sensResponse struct {
	RequestID    string `json:"requestId"`
	StatusCode   string `json:"statusCode"`
	StatusName   string `json:"statusName"`
	ErrorMessage string `json:"errorMessage"`
}

func (p *SENSProvider) messagesPath() string {
	return "/sms/v2/services/" + p.serviceID + "/messages"
}

func (p *SENSProvider) SendSMS(ctx context.Context, to, message string) (*models.SMSResult, error) {
	payload, err := json.Marshal(sensRequest{
		Type:        "SMS",
		ContentType: "COMM",
		CountryCode: "82",
		From:        p.sender,
		Content:     message,
		Messages:    []sensMessage{{To: to}},
	})
	if err != nil {
		return nil, &models.SMSProviderError{Provider: p.Name(), Err: err}
	}

	status, body, err := p.do(ctx, http.MethodPost, p.messagesPath(), payload)
	if err != nil {
		return nil, err
	}
	if status != http.StatusAccepted {
		return nil, &models.SMSProviderError{
			Provider:   p.Name(),
			StatusCode: status,
			Payload:    string(body),
			Err:        fmt.Errorf("unexpected status %d", status),
		}
	}

	var out sensResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &models.SMSProviderError{Provider: p.Name(), StatusCode: status, Payload: string(body), Err: err}
	}
	return newResult(p.Name(), out.RequestID), nil
}

// HealthCheck issues a signed lookup. Any answer other than an auth failure or a
// server error means the gateway is reachable with these credentials.
func (p *SENSProvider) HealthCheck(ctx context.Context) bool {
	status, _, err := p.do(ctx, http.MethodGet, p.messagesPath()+"?requestId=healthcheck", nil)
	if err != nil {
		return false
	}
	return status < http.StatusInternalServerError && status != http.StatusUnauthorized && status != http.StatusForbidden
}

func (p *SENSProvider) do(ctx context.Context, method, path string, payload []byte) (int, []byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reqBody)
	if err != nil {
		return 0, nil, &models.SMSProviderError{Provider: p.Name(), Err: err}
	}

	timestamp := strconv.FormatInt(p.now().UnixMilli(), 10)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("x-ncp-apigw-timestamp", timestamp)
	req.Header.Set("x-ncp-iam-access-key", p.accessKey)
	req.Header.Set("x-ncp-apigw-signature-v2", p.sign(method, path, timestamp))

	res, err := p.client.Do(req)
	if err != nil {
		return 0, nil, &models.SMSProviderError{Provider: p.Name(), Err: err}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 64<<10))
	if err != nil {
		return res.StatusCode, nil, &models.SMSProviderError{Provider: p.Name(), StatusCode: res.StatusCode, Err: err}
	}
	return res.StatusCode, body, nil
}

// sign builds the v2 signature: base64(HMAC-SHA256("METHOD path\ntimestamp\naccessKey")).
func (p *SENSProvider) sign(method, path, timestamp string) string {
	mac := hmac.New(sha256.New, []byte(p.secretKey))
	mac.Write([]byte(method + " " + path + "\n" + timestamp + "\n" + p.accessKey))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
