package compiler

// Stable violation codes. They never depend on the active locale.
const (
	CodeRequired        = "required"
	CodeInvalidType     = "invalid_type"
	CodeTooShort        = "too_short"
	CodeTooLong         = "too_long"
	CodePatternMismatch = "pattern_mismatch"
	CodeInvalidEmail    = "invalid_email"
	CodeInvalidURL      = "invalid_url"
	CodeInvalidDate     = "invalid_date"
	CodeBelowMinimum    = "below_minimum"
	CodeAboveMaximum    = "above_maximum"
	CodeNotMultipleOf   = "not_multiple_of"
	CodeDateTooEarly    = "date_too_early"
	CodeDateTooLate     = "date_too_late"
	CodeInvalidOption   = "invalid_option"
	CodeTooFewItems     = "too_few_items"
	CodeTooManyItems    = "too_many_items"
	CodeDuplicateItems  = "duplicate_items"
	CodeInvalidEncoding = "invalid_encoding"
	CodeUnknownField    = "unknown_field"
	CodeCustom          = "custom"
)

// Codes returns every built-in code in a stable order.
func Codes() []string {
	return []string{
		CodeRequired, CodeInvalidType, CodeTooShort, CodeTooLong,
		CodePatternMismatch, CodeInvalidEmail, CodeInvalidURL, CodeInvalidDate,
		CodeBelowMinimum, CodeAboveMaximum, CodeNotMultipleOf, CodeDateTooEarly,
		CodeDateTooLate, CodeInvalidOption, CodeTooFewItems, CodeTooManyItems,
		CodeDuplicateItems, CodeInvalidEncoding, CodeUnknownField, CodeCustom,
	}
}
