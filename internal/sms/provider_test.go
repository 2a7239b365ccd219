package sms

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bizlab-kr/leadbot/internal/logging"
	"github.com/bizlab-kr/leadbot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in    string
		want  Kind
		known bool
	}{
		{"demo", KindDemo, true},
		{"ALIGO", KindAligo, true},
		{" sens ", KindSENS, true},
		{"", KindDemo, false},
		{"twilio", KindDemo, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, known := ParseKind(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.known, known)
		})
	}
}

func TestDemoProvider(t *testing.T) {
	p := NewDemoProvider(nil)
	seen := map[string]bool{}

	for _, to := range []string{"01011112222", "", "not a phone", strings.Repeat("9", 100)} {
		res, err := p.SendSMS(context.Background(), to, "hello")
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, "demo", res.Provider)
		assert.True(t, strings.HasPrefix(res.MessageID, "demo-"))
		assert.False(t, seen[res.MessageID], "message ids are unique")
		seen[res.MessageID] = true
	}
	assert.True(t, p.HealthCheck(context.Background()))
}

func TestDemoProvider_KeepsCodeOutOfInfoLogs(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	p := NewDemoProvider(logging.New(zap.New(core)))

	_, err := p.SendSMS(context.Background(), "01012345678", "[482913] 인증번호를 입력해주세요.")
	require.NoError(t, err)

	info := logs.FilterLevelExact(zap.InfoLevel).All()
	require.Len(t, info, 1)
	assert.NotContains(t, info[0].ContextMap(), "message")
	assert.NotContains(t, info[0].ContextMap()["to"], "12345678")

	debug := logs.FilterLevelExact(zap.DebugLevel).All()
	require.Len(t, debug, 1)
	assert.Contains(t, debug[0].ContextMap()["message"], "482913")
	assert.Equal(t, info[0].ContextMap()["message_id"], debug[0].ContextMap()["message_id"])
}

func TestNewProviderMissingCredentials(t *testing.T) {
	_, err := NewProvider(KindAligo, Settings{AligoAPIKey: "k"})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrConfiguration)

	var cerr *models.ConfigurationError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, []string{"ALIGO_USER_ID", "SMS_SENDER"}, cerr.Missing)

	_, err = NewProvider(KindSENS, Settings{Sender: "0212345678"})
	assert.ErrorIs(t, err, models.ErrConfiguration)

	_, err = NewProvider(Kind("pigeon"), Settings{})
	assert.Error(t, err)
}

func aligoSettings(url string) Settings {
	return Settings{
		Sender:       "0212345678",
		AligoAPIKey:  "api-key",
		AligoUserID:  "bizlab",
		AligoBaseURL: url,
	}
}

func TestAligoProvider_SendSMS(t *testing.T) {
	var form map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/send/", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		form = map[string]string{}
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		_, _ = w.Write([]byte(`{"result_code":"1","message":"success","msg_id":123456,"success_cnt":1}`))
	}))
	defer srv.Close()

	p, err := NewAligoProvider(aligoSettings(srv.URL))
	require.NoError(t, err)

	res, err := p.SendSMS(context.Background(), "01011112222", "[테스트] 인증번호 [123456]를 입력해주세요.")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "123456", res.MessageID)
	assert.Equal(t, "aligo", res.Provider)

	assert.Equal(t, "api-key", form["key"])
	assert.Equal(t, "bizlab", form["user_id"])
	assert.Equal(t, "0212345678", form["sender"])
	assert.Equal(t, "01011112222", form["receiver"])
	assert.Contains(t, form["msg"], "123456")
}

func TestAligoProvider_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		code   int
	}{
		{"carrier rejection", http.StatusOK, `{"result_code":-101,"message":"인증오류"}`, 0},
		{"server error", http.StatusBadGateway, `upstream down`, http.StatusBadGateway},
		{"malformed body", http.StatusOK, `<html>`, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p, err := NewAligoProvider(aligoSettings(srv.URL))
			require.NoError(t, err)

			_, err = p.SendSMS(context.Background(), "01011112222", "msg")
			require.Error(t, err)
			assert.ErrorIs(t, err, models.ErrSMSProvider)

			var perr *models.SMSProviderError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, "aligo", perr.Provider)
			assert.Equal(t, tt.code, perr.StatusCode)
			assert.Equal(t, tt.body, perr.Payload)
		})
	}
}

func TestAligoProvider_HealthCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/remain/", r.URL.Path)
		_, _ = w.Write([]byte(`{"result_code":1,"message":"","SMS_CNT":1200}`))
	}))
	p, err := NewAligoProvider(aligoSettings(srv.URL))
	require.NoError(t, err)
	assert.True(t, p.HealthCheck(context.Background()))

	srv.Close()
	assert.False(t, p.HealthCheck(context.Background()), "closed server is unreachable")
}

func sensSettings(url string) Settings {
	return Settings{
		Sender:        "0212345678",
		SensAccessKey: "access",
		SensSecretKey: "secret",
		SensServiceID: "ncp:sms:kr:1234:leadbot",
		SensBaseURL:   url,
	}
}

func TestSENSProvider_SendSMS(t *testing.T) {
	fixed := time.UnixMilli(1700000000000)
	wantPath := "/sms/v2/services/ncp:sms:kr:1234:leadbot/messages"

	var got sensRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, wantPath, r.URL.Path)
		assert.Equal(t, "1700000000000", r.Header.Get("x-ncp-apigw-timestamp"))
		assert.Equal(t, "access", r.Header.Get("x-ncp-iam-access-key"))

		mac := hmac.New(sha256.New, []byte("secret"))
		mac.Write([]byte("POST " + wantPath + "\n1700000000000\naccess"))
		assert.Equal(t, base64.StdEncoding.EncodeToString(mac.Sum(nil)), r.Header.Get("x-ncp-apigw-signature-v2"))

		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"requestId":"RSSA-1","statusCode":"202","statusName":"success"}`))
	}))
	defer srv.Close()

	p, err := NewSENSProvider(sensSettings(srv.URL))
	require.NoError(t, err)
	p.now = func() time.Time { return fixed }

	res, err := p.SendSMS(context.Background(), "01011112222", "hello")
	require.NoError(t, err)
	assert.Equal(t, "RSSA-1", res.MessageID)
	assert.Equal(t, "sens", res.Provider)

	assert.Equal(t, "SMS", got.Type)
	assert.Equal(t, "COMM", got.ContentType)
	assert.Equal(t, "82", got.CountryCode)
	assert.Equal(t, "0212345678", got.From)
	assert.Equal(t, "hello", got.Content)
	assert.Equal(t, []sensMessage{{To: "01011112222"}}, got.Messages)
}

func TestSENSProvider_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"errorCode":"200","message":"Authentication Failed"}}`))
	}))
	defer srv.Close()

	p, err := NewSENSProvider(sensSettings(srv.URL))
	require.NoError(t, err)

	_, err = p.SendSMS(context.Background(), "01011112222", "hello")
	var perr *models.SMSProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusUnauthorized, perr.StatusCode)
	assert.Contains(t, perr.Payload, "Authentication Failed")

	assert.False(t, p.HealthCheck(context.Background()))
}

func TestSENSProvider_HealthCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "healthcheck", r.URL.Query().Get("requestId"))
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p, err := NewSENSProvider(sensSettings(srv.URL))
	require.NoError(t, err)
	assert.True(t, p.HealthCheck(context.Background()))
}
