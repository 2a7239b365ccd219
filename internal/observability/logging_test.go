package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	logger := Logger()
	require.NotNil(t, logger)

	// Should be safe to use
	logger.Info("test message")
}

func TestMaskPhone(t *testing.T) {
	tests := []struct {
		name     string
		phone    string
		expected string
	}{
		{"hyphenated mobile", "010-1234-5678", "010-****-**78"},
		{"bare digits", "01098765432", "010-****-**32"},
		{"ten digit legacy", "0111234567", "011-****-**67"},
		{"too short", "1234", "***-****-****"},
		{"empty", "", "***-****-****"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MaskPhone(tt.phone))
		})
	}
}

func TestMaskSensitiveData(t *testing.T) {
	in := map[string]any{
		"name":  "김철수",
		"phone": "010-1234-5678",
		"code":  "123456",
	}
	out := MaskSensitiveData(in)

	assert.Equal(t, "김철수", out["name"])
	assert.Equal(t, "********", out["phone"])
	assert.Equal(t, "********", out["code"])
	assert.Equal(t, "010-1234-5678", in["phone"], "input must not be modified")

	out = MaskSensitiveData(map[string]any{"mobile": "010-1234-5678", "name": "김철수"}, "mobile")
	assert.Equal(t, "********", out["mobile"])
	assert.Equal(t, "김철수", out["name"])
}
