package shared

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name        string
		requestBody string
		wantErr     bool
		errContains string
	}{
		{name: "valid json", requestBody: `{"name": "test", "age": 30}`},
		{name: "invalid json", requestBody: `{"name": "test", "age": 30,}`, wantErr: true, errContains: "invalid character"},
		{name: "empty body", requestBody: "", wantErr: true, errContains: "EOF"},
		{
			name:        "too large",
			requestBody: `{"name": "` + strings.Repeat("x", MaxRequestBodyBytes) + `"}`,
			wantErr:     true,
			errContains: "too large",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/test", bytes.NewBufferString(tc.requestBody))
			var target struct {
				Name string `json:"name"`
				Age  int    `json:"age"`
			}

			err := DecodeJSON(req, &target)
			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.errContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "test", target.Name)
			assert.Equal(t, 30, target.Age)
		})
	}
}

type selfValidating struct{ err error }

func (s selfValidating) Validate() error { return s.err }

func TestValidateRequest(t *testing.T) {
	type payload struct {
		Title  string `json:"title"  validate:"required,max=5"`
		Status string `json:"status" validate:"required"`
	}

	assert.NoError(t, ValidateRequest(&payload{Title: "ok", Status: "planned"}))

	err := ValidateRequest(&payload{Title: "too long title", Status: "planned"})
	var validationErrs validator.ValidationErrors
	require.True(t, errors.As(err, &validationErrs))
	assert.Equal(t, "title", validationErrs[0].Field(), "fields are reported by JSON name")
	assert.Equal(t, "max", validationErrs[0].Tag())

	custom := errors.New("custom")
	assert.Equal(t, custom, ValidateRequest(selfValidating{err: custom}))
	assert.NoError(t, ValidateRequest(selfValidating{}))
}
