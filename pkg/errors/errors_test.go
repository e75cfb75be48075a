package errors_test

import (
	stderrors "errors"
	"testing"

	"github.com/arthur-debert/pkgpsm/pkg/errors"
)

func TestNew(t *testing.T) {
	err := errors.New(errors.ErrNotFound, "package not found")

	if err.Code != errors.ErrNotFound {
		t.Errorf("New() code = %v, want %v", err.Code, errors.ErrNotFound)
	}
	if err.Details == nil {
		t.Error("New() details should be initialized")
	}
	wantStr := "[NOT_FOUND] package not found"
	if got := err.Error(); got != wantStr {
		t.Errorf("Error() = %q, want %q", got, wantStr)
	}
}

func TestNewf(t *testing.T) {
	err := errors.Newf(errors.ErrNegativeInstCount, "negative count: %d", -1)
	want := "negative count: -1"
	if err.Message != want {
		t.Errorf("Newf() message = %q, want %q", err.Message, want)
	}
}

func TestWrap(t *testing.T) {
	baseErr := stderrors.New("sqlite: no such table")

	t.Run("wrap_non_nil_error", func(t *testing.T) {
		err := errors.Wrap(baseErr, errors.ErrDBCount, "count query failed")
		if err.Code != errors.ErrDBCount {
			t.Errorf("Wrap() code = %v, want %v", err.Code, errors.ErrDBCount)
		}
		if !stderrors.Is(err, baseErr) {
			t.Error("Wrap() should preserve wrapped error for errors.Is")
		}
	})

	t.Run("wrap_nil_error_returns_nil", func(t *testing.T) {
		if err := errors.Wrap(nil, errors.ErrDBCount, "x"); err != nil {
			t.Error("Wrap(nil) should return nil")
		}
	})
}

func TestWithDetail(t *testing.T) {
	err := errors.New(errors.ErrStageFailed, "stage failed").
		WithDetail("stage", "PROCESS").
		WithDetail("pkg", "foo-1.0-1")

	if err.Details["stage"] != "PROCESS" {
		t.Errorf("WithDetail() stage = %v, want PROCESS", err.Details["stage"])
	}
	if err.Details["pkg"] != "foo-1.0-1" {
		t.Errorf("WithDetail() pkg = %v, want foo-1.0-1", err.Details["pkg"])
	}
}

func TestIs(t *testing.T) {
	err1 := errors.New(errors.ErrNotFound, "a")
	err2 := errors.New(errors.ErrNotFound, "b")
	err3 := errors.New(errors.ErrInternal, "c")

	if !err1.Is(err2) {
		t.Error("Is() should return true for same code")
	}
	if err1.Is(err3) {
		t.Error("Is() should return false for different codes")
	}
	if !stderrors.Is(err1, err2) {
		t.Error("errors.Is() should work with PSMError")
	}
}

func TestIsCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     errors.ErrorCode
		expected bool
	}{
		{"matching_code", errors.New(errors.ErrNotFound, "x"), errors.ErrNotFound, true},
		{"different_code", errors.New(errors.ErrNotFound, "x"), errors.ErrInternal, false},
		{"wrapped_error", errors.Wrap(stderrors.New("base"), errors.ErrPayloadInstall, "x"), errors.ErrPayloadInstall, true},
		{"non_psm_error", stderrors.New("plain"), errors.ErrNotFound, false},
		{"nil_error", nil, errors.ErrNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.IsCode(tt.err, tt.code); got != tt.expected {
				t.Errorf("IsCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCode(t *testing.T) {
	if got := errors.Code(errors.New(errors.ErrTriggerRun, "x")); got != errors.ErrTriggerRun {
		t.Errorf("Code() = %v, want %v", got, errors.ErrTriggerRun)
	}
	if got := errors.Code(stderrors.New("plain")); got != errors.ErrUnknown {
		t.Errorf("Code() on plain error = %v, want ErrUnknown", got)
	}
	if got := errors.Code(nil); got != errors.ErrUnknown {
		t.Errorf("Code(nil) = %v, want ErrUnknown", got)
	}
}

func TestErrorChaining(t *testing.T) {
	rootCause := stderrors.New("disk full")
	dbErr := errors.Wrap(rootCause, errors.ErrDBAdd, "cannot add header")
	stageErr := errors.Wrap(dbErr, errors.ErrStageFailed, "RPMDB_ADD failed")

	if !errors.IsCode(stageErr, errors.ErrStageFailed) {
		t.Error("top level should carry ErrStageFailed")
	}
	if !stderrors.Is(stageErr, rootCause) {
		t.Error("should find root cause via errors.Is")
	}
}
