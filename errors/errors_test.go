package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTypedErrors_MatchSentinels(t *testing.T) {
	req := require.New(t)

	wrapped := fmt.Errorf("submit: %w", &LengthMismatchError{Expected: 768, Actual: 700})
	req.True(Is(wrapped, ErrLengthMismatch))

	var mismatch *LengthMismatchError
	req.True(As(wrapped, &mismatch))
	req.Equal(768, mismatch.Expected)
	req.Equal(700, mismatch.Actual)
	req.Equal("invalid ciphertext length: expected 768 bytes, got 700", mismatch.Error())

	req.True(Is(&DecodingError{Field: "encrypted_key", Err: New("bad")}, ErrDecoding))
	req.True(Is(&GenerationError{Op: "keygen", Err: New("boom")}, ErrGeneration))
	req.True(Is(&NotFoundError{Username: "ghost"}, ErrNotFound))
	req.False(Is(&NotFoundError{Username: "ghost"}, ErrGeneration))
}

func TestMapToHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"decoding", &DecodingError{Field: "message"}, http.StatusBadRequest},
		{"length mismatch", &LengthMismatchError{Expected: 768, Actual: 1}, http.StatusBadRequest},
		{"generation", &GenerationError{Op: "encapsulate"}, http.StatusInternalServerError},
		{"not found", &NotFoundError{Username: "x"}, http.StatusNotFound},
		{"conflict", ErrUserAlreadyExists, http.StatusConflict},
		{"credentials", ErrInvalidCredentials, http.StatusUnauthorized},
		{"identity", ErrIdentityMismatch, http.StatusForbidden},
		{"unknown", New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, MapToHTTPStatus(tt.err))
		})
	}
}
