package transport_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/obielum/doctrack/internal/transport"
)

func TestValidateStatusPayload(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{name: "minimal", payload: `{"status":"pending"}`},
		{name: "full", payload: `{"status":"completed","progress":100,"summary":"done","error":null}`},
		{name: "null summary", payload: `{"status":"processing","progress":10,"summary":null}`},
		{name: "unknown status", payload: `{"status":"paused"}`, wantErr: true},
		{name: "missing status", payload: `{"progress":50}`, wantErr: true},
		{name: "progress out of range", payload: `{"status":"processing","progress":120}`, wantErr: true},
		{name: "negative progress", payload: `{"status":"processing","progress":-1}`, wantErr: true},
		{name: "fractional progress", payload: `{"status":"processing","progress":12.5}`, wantErr: true},
		{name: "numeric summary", payload: `{"status":"completed","summary":7}`, wantErr: true},
		{name: "not json", payload: `status=ok`, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := transport.ValidateStatusPayload([]byte(tc.payload))
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}
