package shared

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	type payload struct {
		Word     string `json:"word"`
		Language string `json:"language"`
	}

	tests := []struct {
		name        string
		body        io.Reader
		wantErr     bool
		errContains string
	}{
		{"valid json", bytes.NewBufferString(`{"word": "hola", "language": "es"}`), false, ""},
		{"invalid json", bytes.NewBufferString(`{"word": "hola",}`), true, "invalid character"},
		{"empty body", http.NoBody, true, "empty"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/test", tc.body)

			var got payload
			err := DecodeJSON(req, &got)

			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.errContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, payload{Word: "hola", Language: "es"}, got)
		})
	}
}

type selfValidating struct {
	Word string
}

func (s *selfValidating) Validate() error {
	if s.Word == "" {
		return errors.New("word is required")
	}
	return nil
}

func TestValidateRequest(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateRequest(&selfValidating{Word: "hola"}))
	assert.Error(t, ValidateRequest(&selfValidating{}))

	type tagged struct {
		Result string `validate:"required,oneof=known unknown"`
	}
	assert.NoError(t, ValidateRequest(&tagged{Result: "known"}))
	assert.Error(t, ValidateRequest(&tagged{Result: "maybe"}))
}
