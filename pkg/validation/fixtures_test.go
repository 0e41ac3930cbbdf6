package validation

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formdef/pkg/testsupport"
)

func TestFixtureWizardStepErrors(t *testing.T) {
	t.Parallel()

	form := testsupport.MustLoadForm(t, "testdata/booking.yaml")
	submission := testsupport.MustLoadSubmission(t, "testdata/booking_invalid.json")

	result, err := ValidateAllSteps(form, submission, Options{})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if result.Success {
		t.Fatalf("expected failure")
	}
	if result.Message == "" {
		t.Fatalf("expected a wizard message")
	}

	stepCodes := map[int][]string{}
	for idx, errs := range result.StepErrors {
		for _, fe := range errs {
			stepCodes[idx] = append(stepCodes[idx], fe.Field+":"+fe.Code)
		}
	}
	want := map[int][]string{
		0: {"guest_name:too_short"},
		1: {"check_in:date_too_early", "nights:above_maximum", "room:invalid_option"},
	}
	if diff := cmp.Diff(want, stepCodes); diff != "" {
		t.Fatalf("step errors mismatch (-want +got):\n%s", diff)
	}
}

func TestFixtureValidSubmissionAppliesDefaults(t *testing.T) {
	t.Parallel()

	form := testsupport.MustLoadForm(t, "testdata/booking.yaml")
	submission := testsupport.MustLoadSubmission(t, "testdata/booking_valid.json")

	result, err := ValidateAllSteps(form, submission, Options{})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got %+v", result.Errors)
	}
	want := map[string]any{
		"guest_name":  "Ana",
		"guest_email": "ana@example.com",
		"check_in":    "2025-03-10",
		"nights":      1.0,
		"room":        "double",
	}
	if diff := cmp.Diff(want, result.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}
