package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute(t *testing.T) {
	cases := []struct {
		name string
		base float64
		want float64
	}{
		{"ten", 10, 13.5},
		{"zero", 0, 0},
		{"4.05 rounds up", 3, 4.1},
		{"1.35 rounds up", 1, 1.4},
		{"9.45 rounds up", 7, 9.5},
		{"0.135 rounds down", 0.1, 0.1},
		{"3.375 rounds up", 2.5, 3.4},
		{"large", 1234.56, 1666.7},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Compute(tc.base))
		})
	}
}

func TestSalePrice_Nil(t *testing.T) {
	assert.Nil(t, SalePrice(nil))

	base := 10.0
	got := SalePrice(&base)
	require.NotNil(t, got)
	assert.Equal(t, 13.5, *got)
}

func TestLineTotalAndSum(t *testing.T) {
	assert.Equal(t, 0.3, LineTotal(0.1, 3))
	assert.Equal(t, 40.5, LineTotal(13.5, 3))
	assert.Equal(t, 0.3, Sum(0.1, 0.2))
	assert.Equal(t, 0.0, Sum())
}
