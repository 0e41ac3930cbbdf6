package validation

// Summary message keys.
const (
	MessageSuccess      = "form.validation_success"
	MessageFailure      = "form.validation_error"
	MessageWizardFailed = "wizard.validation_failed"
)

// FieldError is one violated constraint of one field. Code is stable across
// locales; Message is its translation.
type FieldError struct {
	Field   string         `json:"field"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Params  map[string]any `json:"params,omitempty"`
}

// Result is the outcome of a validation call. Data carries the coerced values
// and is only set on success.
type Result struct {
	Success    bool                 `json:"success"`
	Errors     []FieldError         `json:"errors"`
	Data       map[string]any       `json:"data,omitempty"`
	StepErrors map[int][]FieldError `json:"step_errors,omitempty"`
	Message    string               `json:"message,omitempty"`
}

// ErrorsFor returns the errors reported for one field.
func (r Result) ErrorsFor(field string) []FieldError {
	var out []FieldError
	for _, err := range r.Errors {
		if err.Field == field {
			out = append(out, err)
		}
	}
	return out
}

// Codes returns the error codes in report order.
func (r Result) Codes() []string {
	out := make([]string, len(r.Errors))
	for i, err := range r.Errors {
		out[i] = err.Code
	}
	return out
}

// ByField groups messages by field name, the shape form renderers consume.
func (r Result) ByField() map[string][]string {
	if len(r.Errors) == 0 {
		return nil
	}
	out := make(map[string][]string)
	for _, err := range r.Errors {
		out[err.Field] = append(out[err.Field], err.Message)
	}
	return out
}
