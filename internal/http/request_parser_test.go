package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/core"
)

func TestRequestBodyParser(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentType string
		wantJSON    bool
		want        map[string]string
		wantBool    bool
		wantErr     bool
	}{
		{
			name:        "JSON body",
			body:        `{"type": "expense", "amount": 12.5, "category": "Food", "isRecurring": true}`,
			contentType: "application/json",
			wantJSON:    true,
			want:        map[string]string{"type": "expense", "amount": "12.5", "category": "Food"},
			wantBool:    true,
		},
		{
			name:        "JSON string amount",
			body:        `{"amount": "12,50"}`,
			contentType: "application/json",
			wantJSON:    true,
			want:        map[string]string{"amount": "12,50", "missing": ""},
		},
		{
			name:        "form body",
			body:        "type=income&amount=100&description=Pay%20day&isRecurring=on",
			contentType: "application/x-www-form-urlencoded",
			want:        map[string]string{"type": "income", "amount": "100", "description": "Pay day"},
			wantBool:    true,
		},
		{
			name: "empty body",
			body: "",
			want: map[string]string{"type": ""},
		},
		{
			name:        "control characters are stripped",
			body:        `{"description": "  Coffee\u0000 beans  "}`,
			contentType: "application/json",
			wantJSON:    true,
			want:        map[string]string{"description": "Coffee beans"},
		},
		{
			name:        "invalid JSON",
			body:        `{"type": `,
			contentType: "application/json",
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}

			p := NewRequestBodyParser(httptest.NewRecorder(), req)
			err := p.Parse()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, errBadRequest)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantJSON, p.IsJSON())
			for k, v := range tt.want {
				assert.Equal(t, v, p.Get(k), "key %q", k)
			}
			assert.Equal(t, tt.wantBool, p.GetBool("isRecurring"))
		})
	}
}

func TestRequestBodyParserTooLarge(t *testing.T) {
	body := `{"description": "` + strings.Repeat("x", maxBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

	p := NewRequestBodyParser(httptest.NewRecorder(), req)
	assert.ErrorIs(t, p.Parse(), errBadRequest)
}

func TestParseFilterQuery(t *testing.T) {
	f, err := ParseFilterQuery(url.Values{
		"category": {"Food"},
		"q":        {"lunch"},
		"from":     {"2024-01-01"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Food", f.Category)
	assert.Equal(t, "lunch", f.Keyword)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), f.From)
	assert.True(t, f.To.IsZero())

	_, err = ParseFilterQuery(url.Values{"to": {"yesterday"}})
	assert.ErrorIs(t, err, core.ErrInvalidDate)
}
