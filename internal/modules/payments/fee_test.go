package payments

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestAuthorizationFee(t *testing.T) {
	var tests = []struct {
		name        string
		price       decimal.NullDecimal
		expected    string
		expectedErr error
	}{
		{
			name:     "round amount",
			price:    decimal.NewNullDecimal(decimal.RequireFromString("1000.00")),
			expected: "150.00",
		},
		{
			name:     "rounds up past the tie",
			price:    decimal.NewNullDecimal(decimal.RequireFromString("999.99")),
			expected: "150.00", // 149.9985
		},
		{
			name:     "half-up tie goes away from zero",
			price:    decimal.NewNullDecimal(decimal.RequireFromString("333.33")),
			expected: "50.00", // 49.9995
		},
		{
			name:     "exact cents",
			price:    decimal.NewNullDecimal(decimal.RequireFromString("49.99")),
			expected: "7.50", // 7.4985
		},
		{
			name:     "zero price",
			price:    decimal.NewNullDecimal(decimal.Zero),
			expected: "0.00",
		},
		{
			name:        "price unset",
			price:       decimal.NullDecimal{},
			expectedErr: ErrPriceNotSet,
		},
		{
			name:        "negative price",
			price:       decimal.NewNullDecimal(decimal.RequireFromString("-1.00")),
			expectedErr: ErrNegativePrice,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fee, err := AuthorizationFee(tt.price)
			if tt.expectedErr != nil {
				require.Error(t, err)
				require.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, fee.StringFixed(2))
		})
	}
}
