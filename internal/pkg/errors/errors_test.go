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
			name: "without wrapped error",
			err:  New("CONFIG_INVALID", "missing connection string"),
			want: "CONFIG_INVALID: missing connection string",
		},
		{
			name: "with wrapped error",
			err:  Wrap(fmt.Errorf("socket closed"), "PERSISTENCE_FAILED", "save admin record"),
			want: "PERSISTENCE_FAILED: save admin record: socket closed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := Wrap(inner, "CODE", "msg")

	if !errors.Is(appErr, inner) {
		t.Error("errors.Is should match inner error")
	}
}

func TestIsAppError(t *testing.T) {
	appErr := SchemaAccessFailed(ErrMalformedSchema)
	wrapped := fmt.Errorf("wrapped: %w", appErr)

	got, ok := IsAppError(wrapped)
	if !ok {
		t.Fatal("IsAppError should return true for wrapped AppError")
	}
	if got.Code != CodeSchemaAccessFail {
		t.Errorf("Code = %q, want %s", got.Code, CodeSchemaAccessFail)
	}
	if !errors.Is(wrapped, ErrMalformedSchema) {
		t.Error("sentinel should stay reachable through AppError")
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("seed: %w", PersistenceFailed("create", ErrAlreadyExists))

	if !HasCode(err, CodePersistenceFailed) {
		t.Error("HasCode should match PERSISTENCE_FAILED")
	}
	if HasCode(err, CodeConfigInvalid) {
		t.Error("HasCode should not match CONFIG_INVALID")
	}
	if HasCode(errors.New("plain"), CodePersistenceFailed) {
		t.Error("HasCode should be false for non-AppError")
	}
}

func TestPersistenceFailed_Params(t *testing.T) {
	err := PersistenceFailed("lookup", ErrNotFound)
	if err.Params["operation"] != "lookup" {
		t.Errorf("Params[operation] = %v, want lookup", err.Params["operation"])
	}
	if err.Message != "lookup admin record" {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestWithParams_EmptyKeepsNil(t *testing.T) {
	err := New("X", "y").WithParams(nil)
	if err.Params != nil {
		t.Errorf("Params = %v, want nil", err.Params)
	}
}
