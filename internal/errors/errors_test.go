package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "error without cause",
			err: &AppError{
				Code:    ErrCodeSubmissionNotFound,
				Message: "job for experiment was not successfully submitted",
			},
			want: "job for experiment was not successfully submitted",
		},
		{
			name: "error with cause",
			err: &AppError{
				Code:    ErrCodeResultUnavailable,
				Message: "result data is not available",
				Cause:   errors.New("job timed out"),
			},
			want: "result data is not available: job timed out",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("job errored on the backend")
	err := &AppError{
		Code:    ErrCodeResultUnavailable,
		Message: "wrapped error",
		Cause:   cause,
	}

	if unwrapped := err.Unwrap(); !errors.Is(unwrapped, cause) {
		t.Errorf("AppError.Unwrap() = %v, want %v", unwrapped, cause)
	}
}

func TestSubmissionNotFound(t *testing.T) {
	err := SubmissionNotFoundf("job for experiment %q was not successfully submitted", "bell_state")
	if err.Code != ErrCodeSubmissionNotFound {
		t.Errorf("SubmissionNotFoundf().Code = %v, want %v", err.Code, ErrCodeSubmissionNotFound)
	}
	want := `job for experiment "bell_state" was not successfully submitted`
	if err.Message != want {
		t.Errorf("SubmissionNotFoundf().Message = %v, want %v", err.Message, want)
	}
	if !IsSubmissionNotFound(err) {
		t.Error("IsSubmissionNotFound() = false, want true")
	}
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(cause, ErrCodeResultUnavailable, "result data for experiment is not available")

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	if !IsResultUnavailable(err) {
		t.Error("IsResultUnavailable() = false, want true")
	}
}

func TestWrap_NilError(t *testing.T) {
	if err := Wrap(nil, ErrCodeInternal, "should be dropped"); err != nil {
		t.Errorf("Wrap(nil, ...) = %v, want nil", err)
	}
	if err := Wrapf(nil, ErrCodeInternal, "should be dropped %d", 1); err != nil {
		t.Errorf("Wrapf(nil, ...) = %v, want nil", err)
	}
}

func TestCombinationRefused(t *testing.T) {
	err := CombinationRefused("results cannot be combined since some of the jobs failed")
	if err.Code != ErrCodeCombinationRefused {
		t.Errorf("CombinationRefused().Code = %v, want %v", err.Code, ErrCodeCombinationRefused)
	}
	if !IsCombinationRefused(err) {
		t.Error("IsCombinationRefused() = false, want true")
	}
	if IsSubmissionNotFound(err) {
		t.Error("IsSubmissionNotFound() = true for a combination error")
	}
}

func TestIsCode_ThroughWrapping(t *testing.T) {
	inner := SubmissionNotFound("no job for ref")
	outer := fmt.Errorf("query counts: %w", inner)

	if !IsSubmissionNotFound(outer) {
		t.Error("IsSubmissionNotFound() should see through fmt.Errorf wrapping")
	}
}

func TestValidationField(t *testing.T) {
	err := ValidationField("shots", "shots must be positive")
	if err.Field != "shots" {
		t.Errorf("ValidationField().Field = %v, want shots", err.Field)
	}
	if !IsValidation(err) {
		t.Error("IsValidation() = false, want true")
	}
}
