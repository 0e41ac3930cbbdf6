package compiler

import (
	"encoding/base64"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/goliatone/go-formdef/pkg/model"
)

// multipleOfTolerance absorbs float rounding in step checks (0.1 * 3).
const multipleOfTolerance = 1e-9

func minLengthConstraint(n int) Constraint {
	return Constraint{
		Keyword: "minLength",
		Value:   n,
		Code:    CodeTooShort,
		Params:  map[string]any{"Min": n},
		Test: func(value any) bool {
			str, ok := value.(string)
			return !ok || utf8.RuneCountInString(str) >= n
		},
	}
}

func maxLengthConstraint(n int) Constraint {
	return Constraint{
		Keyword: "maxLength",
		Value:   n,
		Code:    CodeTooLong,
		Params:  map[string]any{"Max": n},
		Test: func(value any) bool {
			str, ok := value.(string)
			return !ok || utf8.RuneCountInString(str) <= n
		},
	}
}

// patternConstraint matches anywhere in the value, as JSON Schema's pattern
// keyword does. Anchor the expression to require a full match.
func patternConstraint(expr string) Constraint {
	re := regexp.MustCompile(expr)
	return Constraint{
		Keyword: "pattern",
		Value:   expr,
		Code:    CodePatternMismatch,
		Params:  map[string]any{"Pattern": expr},
		Test: func(value any) bool {
			str, ok := value.(string)
			return !ok || re.MatchString(str)
		},
	}
}

func formatConstraint(format string) Constraint {
	c := Constraint{Keyword: "format", Value: format}
	switch format {
	case "email":
		c.Code = CodeInvalidEmail
		c.Test = stringTest(model.LooksLikeEmail)
	case "uri":
		c.Code = CodeInvalidURL
		c.Test = stringTest(func(s string) bool {
			if !model.LooksLikeURL(s) {
				return false
			}
			parsed, err := url.Parse(s)
			return err == nil && parsed.Host != ""
		})
	case "date":
		c.Code = CodeInvalidDate
		c.Test = stringTest(func(s string) bool {
			_, err := time.Parse(model.DateLayout, s)
			return err == nil
		})
	}
	return c
}

func stringTest(fn func(string) bool) func(any) bool {
	return func(value any) bool {
		str, ok := value.(string)
		return !ok || fn(str)
	}
}

func minimumConstraint(bound float64) Constraint {
	return Constraint{
		Keyword: "minimum",
		Value:   bound,
		Code:    CodeBelowMinimum,
		Params:  map[string]any{"Min": bound},
		Test: func(value any) bool {
			num, ok := value.(float64)
			return !ok || num >= bound
		},
	}
}

func maximumConstraint(bound float64) Constraint {
	return Constraint{
		Keyword: "maximum",
		Value:   bound,
		Code:    CodeAboveMaximum,
		Params:  map[string]any{"Max": bound},
		Test: func(value any) bool {
			num, ok := value.(float64)
			return !ok || num <= bound
		},
	}
}

func multipleOfConstraint(step float64) Constraint {
	return Constraint{
		Keyword: "multipleOf",
		Value:   step,
		Code:    CodeNotMultipleOf,
		Params:  map[string]any{"Step": step},
		Test: func(value any) bool {
			num, ok := value.(float64)
			if !ok {
				return true
			}
			quotient := num / step
			return math.Abs(quotient-math.Round(quotient)) < multipleOfTolerance
		},
	}
}

func dateMinConstraint(bound time.Time) Constraint {
	formatted := bound.Format(model.DateLayout)
	return Constraint{
		Keyword: "formatMinimum",
		Value:   formatted,
		Code:    CodeDateTooEarly,
		Params:  map[string]any{"Min": formatted},
		Test: dateTest(func(d time.Time) bool {
			return !d.Before(bound)
		}),
	}
}

func dateMaxConstraint(bound time.Time) Constraint {
	formatted := bound.Format(model.DateLayout)
	return Constraint{
		Keyword: "formatMaximum",
		Value:   formatted,
		Code:    CodeDateTooLate,
		Params:  map[string]any{"Max": formatted},
		Test: dateTest(func(d time.Time) bool {
			return !d.After(bound)
		}),
	}
}

// dateTest skips values that are not dates; the format constraint reports
// those.
func dateTest(fn func(time.Time) bool) func(any) bool {
	return func(value any) bool {
		str, ok := value.(string)
		if !ok {
			return true
		}
		parsed, err := time.Parse(model.DateLayout, str)
		if err != nil {
			return true
		}
		return fn(parsed)
	}
}

func enumConstraint(values []string) Constraint {
	allowed := append([]string(nil), values...)
	set := make(map[string]struct{}, len(allowed))
	for _, v := range allowed {
		set[v] = struct{}{}
	}
	return Constraint{
		Keyword: "enum",
		Value:   allowed,
		Code:    CodeInvalidOption,
		Params:  map[string]any{"Valid": strings.Join(allowed, ", ")},
		Test: func(value any) bool {
			str, ok := value.(string)
			if !ok {
				return false
			}
			_, found := set[str]
			return found
		},
	}
}

func minItemsConstraint(n int) Constraint {
	return Constraint{
		Keyword: "minItems",
		Value:   n,
		Code:    CodeTooFewItems,
		Params:  map[string]any{"Min": n},
		Test: func(value any) bool {
			list, ok := value.([]any)
			return !ok || len(list) >= n
		},
	}
}

func maxItemsConstraint(n int) Constraint {
	return Constraint{
		Keyword: "maxItems",
		Value:   n,
		Code:    CodeTooManyItems,
		Params:  map[string]any{"Max": n},
		Test: func(value any) bool {
			list, ok := value.([]any)
			return !ok || len(list) <= n
		},
	}
}

func uniqueItemsConstraint() Constraint {
	return Constraint{
		Keyword: "uniqueItems",
		Value:   true,
		Code:    CodeDuplicateItems,
		Test: func(value any) bool {
			list, ok := value.([]any)
			if !ok {
				return true
			}
			seen := make(map[string]struct{}, len(list))
			for _, element := range list {
				key := fmt.Sprintf("%T:%v", element, element)
				if _, dup := seen[key]; dup {
					return false
				}
				seen[key] = struct{}{}
			}
			return true
		},
	}
}

func base64Constraint() Constraint {
	return Constraint{
		Keyword: "contentEncoding",
		Value:   "base64",
		Code:    CodeInvalidEncoding,
		Test: stringTest(func(s string) bool {
			_, err := base64.StdEncoding.DecodeString(stripDataURL(s))
			return err == nil
		}),
	}
}

// stripDataURL removes a "data:<mime>;base64," prefix so browser uploads
// validate the same as raw payloads.
func stripDataURL(s string) string {
	if !strings.HasPrefix(s, "data:") {
		return s
	}
	if idx := strings.Index(s, ";base64,"); idx >= 0 {
		return s[idx+len(";base64,"):]
	}
	return s
}

func coerceString(value any) (any, bool) {
	str, ok := value.(string)
	return str, ok
}

// coerceNumber accepts Go numbers and numeric strings.
func coerceNumber(value any) (any, bool) {
	if num, ok := model.ToFloat(value); ok {
		return num, !math.IsNaN(num) && !math.IsInf(num, 0)
	}
	str, ok := value.(string)
	if !ok {
		return value, false
	}
	num, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
	if err != nil || math.IsNaN(num) || math.IsInf(num, 0) {
		return value, false
	}
	return num, true
}

func coerceBool(value any) (any, bool) {
	switch typed := value.(type) {
	case bool:
		return typed, true
	case string:
		switch strings.ToLower(strings.TrimSpace(typed)) {
		case "true", "on":
			return true, true
		case "false", "off":
			return false, true
		}
	}
	return value, false
}

// coerceList accepts any slice. wrapBare turns a lone string into a
// one-element list, the way HTML submits a single selected option.
func coerceList(value any, wrapBare bool) (any, bool) {
	if list, ok := model.AsList(value); ok {
		return append([]any(nil), list...), true
	}
	if str, ok := value.(string); ok && wrapBare {
		return []any{str}, true
	}
	return value, false
}
