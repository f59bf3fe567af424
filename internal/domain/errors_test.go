package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestObjectStoreError_Error(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		code   string
		err    error
		want   string
	}{
		{
			name:   "with prefix, code and error",
			prefix: "uploads/",
			code:   "AccessDenied",
			err:    errors.New("forbidden"),
			want:   "object store listing failed for prefix uploads/ (AccessDenied): forbidden",
		},
		{
			name:   "with error only",
			prefix: "",
			code:   "",
			err:    errors.New("connection reset"),
			want:   "object store listing failed: connection reset",
		},
		{
			name: "empty",
			want: "object store listing failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewObjectStoreError(tt.prefix, tt.code, tt.err)
			if got := e.Error(); got != tt.want {
				t.Errorf("Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestObjectStoreError_Unwrap(t *testing.T) {
	underlying := errors.New("underlying error")
	e := NewObjectStoreError("p/", "", underlying)

	if got := e.Unwrap(); got != underlying {
		t.Errorf("Unwrap() = %v, want %v", got, underlying)
	}
	if !errors.Is(e, underlying) {
		t.Error("ObjectStoreError should unwrap to the provider error")
	}
}

func TestIsObjectStoreError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "object store error",
			err:  NewObjectStoreError("p/", "", errors.New("err")),
			want: true,
		},
		{
			name: "wrapped object store error",
			err:  fmt.Errorf("wrapped: %w", NewObjectStoreError("p/", "", errors.New("err"))),
			want: true,
		},
		{
			name: "sentinel",
			err:  ErrObjectStore,
			want: true,
		},
		{
			name: "unavailable is not a listing failure",
			err:  ErrObjectStoreUnavailable,
			want: false,
		},
		{
			name: "regular error",
			err:  errors.New("regular error"),
			want: false,
		},
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsObjectStoreError(tt.err); got != tt.want {
				t.Errorf("IsObjectStoreError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseTenantID(t *testing.T) {
	tests := []struct {
		in      string
		want    TenantID
		wantErr bool
	}{
		{in: "1", want: 1},
		{in: " 42 ", want: 42},
		{in: "0", wantErr: true},
		{in: "-3", wantErr: true},
		{in: "blog", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTenantID(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Fatalf("ParseTenantID(%q) error = %v, want ErrInvalidInput", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTenantID(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseTenantID(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
