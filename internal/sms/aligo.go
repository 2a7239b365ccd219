package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/bizlab-kr/leadbot/internal/models"
)

const defaultAligoBaseURL = "https://apis.aligo.in"

// AligoProvider sends through the Aligo form API.
type AligoProvider struct {
	apiKey  string
	userID  string
	sender  string
	baseURL string
	client  *http.Client
}

// NewAligoProvider validates the Aligo credentials.
func NewAligoProvider(s Settings) (*AligoProvider, error) {
	if err := requireSettings("aligo", map[string]string{
		"ALIGO_API_KEY": s.AligoAPIKey,
		"ALIGO_USER_ID": s.AligoUserID,
		"SMS_SENDER":    s.Sender,
	}); err != nil {
		return nil, err
	}
	base := s.AligoBaseURL
	if base == "" {
		base = defaultAligoBaseURL
	}
	return &AligoProvider{
		apiKey:  s.AligoAPIKey,
		userID:  s.AligoUserID,
		sender:  s.Sender,
		baseURL: strings.TrimRight(base, "/"),
		client:  s.httpClient(),
	}, nil
}

func (p *AligoProvider) Name() string { return string(KindAligo) }

// aligoResponse covers /send/ and /remain/. result_code arrives as a number or a string
// depending on the endpoint.
type aligoResponse struct {
	ResultCode any    `json:"result_code"`
	Message    string `json:"message"`
	MsgID      any    `json:"msg_id"`
}

func (r aligoResponse) ok() bool {
	return fmt.Sprint(r.ResultCode) == "1"
}

func (p *AligoProvider) SendSMS(ctx context.Context, to, message string) (*models.SMSResult, error) {
	form := url.Values{}
	form.Set("receiver", to)
	form.Set("msg", message)

	resp, raw, err := p.post(ctx, "/send/", form)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, &models.SMSProviderError{
			Provider: p.Name(),
			Payload:  raw,
			Err:      fmt.Errorf("aligo rejected message: %s", resp.Message),
		}
	}
	return newResult(p.Name(), fmt.Sprint(resp.MsgID)), nil
}

func (p *AligoProvider) HealthCheck(ctx context.Context) bool {
	resp, _, err := p.post(ctx, "/remain/", url.Values{})
	return err == nil && resp.ok()
}

func (p *AligoProvider) post(ctx context.Context, path string, form url.Values) (aligoResponse, string, error) {
	var out aligoResponse

	form.Set("key", p.apiKey)
	form.Set("user_id", p.userID)
	form.Set("sender", p.sender)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return out, "", &models.SMSProviderError{Provider: p.Name(), Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := p.client.Do(req)
	if err != nil {
		return out, "", &models.SMSProviderError{Provider: p.Name(), Err: err}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 64<<10))
	if err != nil {
		return out, "", &models.SMSProviderError{Provider: p.Name(), StatusCode: res.StatusCode, Err: err}
	}
	raw := string(body)
	if res.StatusCode != http.StatusOK {
		return out, raw, &models.SMSProviderError{
			Provider:   p.Name(),
			StatusCode: res.StatusCode,
			Payload:    raw,
			Err:        fmt.Errorf("unexpected status %d", res.StatusCode),
		}
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, raw, &models.SMSProviderError{Provider: p.Name(), StatusCode: res.StatusCode, Payload: raw, Err: err}
	}
	return out, raw, nil
}
