package http

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/tokenauth/pkg/authsdk"
)

func TestNewValidatorClaimType(t *testing.T) {
	var v *validator.Validate
	require.NotPanics(t, func() { v = newValidator("sub", "role") })

	tests := []struct {
		typ     string
		wantErr bool
	}{
		{"tenant", false},
		{"exp", true},
		{"sub", true},
		{"role", true},
		{"refresh_token_id", false},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			err := v.Struct(authsdk.Claim{Type: tt.typ, Value: "x"})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}
