package handler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/orgatagova/orgatagova/internal/service"
)

func TestRequestValidatorUsesJSONNames(t *testing.T) {
	rv := NewRequestValidator()

	require.EqualError(t, rv.Validate(&swapSoberDriverRequest{}), "user_id is required")
	require.EqualError(t, rv.Validate(&joinByCodeRequest{Code: "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"}), "code must be at most 32 characters")
	require.NoError(t, rv.Validate(&joinByCodeRequest{Code: "ABCD1234"}))
}

func TestStatusForKinds(t *testing.T) {
	cases := map[string]int{
		"validation":      400,
		"unauthenticated": 401,
		"forbidden":       403,
		"not_found":       404,
		"conflict":        409,
		"internal":        500,
	}
	for kind, want := range cases {
		require.Equal(t, want, statusFor(service.Kind(kind)), kind)
	}
}
