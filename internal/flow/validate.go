package flow

import (
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/bizlab-kr/leadbot/internal/models"
	"github.com/bizlab-kr/leadbot/internal/utils"
)

var codePattern = regexp.MustCompile(`^[0-9]{6}$`)

func buildValidator(q models.Question) func(string) error {
	var checks []func(string) error

	rule := q.Validation
	if rule != nil {
		checks = append(checks, ruleCheck(q.Step, rule))
	}
	if q.Type.HasOptions() {
		checks = append(checks, optionCheck(q.Step, q.Options, q.Multiple))
	}
	if q.Type == models.QuestionTypePhone {
		checks = append(checks, phoneCheck(q.Step, rule))
	}
	if len(checks) == 0 {
		return nil
	}

	return func(value string) error {
		for _, check := range checks {
			if err := check(value); err != nil {
				return err
			}
		}
		return nil
	}
}

func ruleCheck(step string, rule *models.Validation) func(string) error {
	var pattern *regexp.Regexp
	if rule.Pattern != "" {
		// Patterns are checked at write time; one that slips through is ignored.
		pattern, _ = regexp.Compile(rule.Pattern)
	}

	fail := func(format string, args ...any) error {
		if rule.Message != "" {
			return &models.ValidationError{Field: step, Message: rule.Message}
		}
		return models.NewValidationError(step, format, args...)
	}

	return func(value string) error {
		value = strings.TrimSpace(value)
		if value == "" {
			if rule.Required {
				return fail("필수 입력 항목입니다.")
			}
			return nil
		}
		n := utf8.RuneCountInString(value)
		if rule.MinLength > 0 && n < rule.MinLength {
			return fail("최소 %d자 이상 입력해주세요.", rule.MinLength)
		}
		if rule.MaxLength > 0 && n > rule.MaxLength {
			return fail("최대 %d자까지 입력할 수 있습니다.", rule.MaxLength)
		}
		if pattern != nil && !pattern.MatchString(value) {
			return fail("입력 형식이 올바르지 않습니다.")
		}
		return nil
	}
}

func optionCheck(step string, options []string, multiple bool) func(string) error {
	return func(value string) error {
		value = strings.TrimSpace(value)
		if value == "" {
			return models.NewValidationError(step, "선택지 중 하나를 골라주세요.")
		}
		picked := []string{value}
		if multiple {
			picked = splitMulti(value)
		}
		for _, p := range picked {
			if !slices.Contains(options, p) {
				return models.NewValidationError(step, "제공된 선택지 중에서 골라주세요.")
			}
		}
		return nil
	}
}

func phoneCheck(step string, rule *models.Validation) func(string) error {
	return func(value string) error {
		if _, err := utils.ParseKoreanMobile(value); err != nil {
			if rule != nil && rule.Message != "" {
				return &models.ValidationError{Field: step, Message: rule.Message}
			}
			return models.NewValidationError(step, "올바른 휴대폰 번호를 입력해주세요. (예: 010-1234-5678)")
		}
		return nil
	}
}

func validateCode(value string) error {
	if !codePattern.MatchString(utils.NormalizeCode(value)) {
		return models.NewValidationError(models.StepPhoneVerification, "6자리 숫자 인증번호를 입력해주세요.")
	}
	return nil
}
