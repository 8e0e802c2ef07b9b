package units

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wei(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("bad test integer " + s)
	}
	return n
}

// ---------------------------------------------------------------------------
// ToBaseUnits
// ---------------------------------------------------------------------------

func TestToBaseUnitsOneAndAHalf(t *testing.T) {
	got, err := ToBaseUnits("1.5")
	require.NoError(t, err)
	assert.Equal(t, "1500000000000000000", got.String())
}

func TestToBaseUnitsWhole(t *testing.T) {
	got, err := ToBaseUnits("100")
	require.NoError(t, err)
	assert.Equal(t, wei("100000000000000000000"), got)
}

func TestToBaseUnitsSmallestUnit(t *testing.T) {
	got, err := ToBaseUnits("0.000000000000000001")
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1), got)
}

func TestToBaseUnitsLeadingAndTrailingDot(t *testing.T) {
	got, err := ToBaseUnits(".25")
	require.NoError(t, err)
	assert.Equal(t, wei("250000000000000000"), got)

	got, err = ToBaseUnits("7.")
	require.NoError(t, err)
	assert.Equal(t, wei("7000000000000000000"), got)
}

func TestToBaseUnitsTrailingZerosBeyondPrecision(t *testing.T) {
	// Zero digits past the 18th place carry no precision and are accepted.
	got, err := ToBaseUnits("1.500000000000000000000")
	require.NoError(t, err)
	assert.Equal(t, wei("1500000000000000000"), got)
}

func TestToBaseUnitsZero(t *testing.T) {
	got, err := ToBaseUnits("0")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Sign())
}

func TestToBaseUnitsRejects(t *testing.T) {
	cases := []string{
		"",
		" ",
		"-1",
		"+1",
		"1e18",
		"abc",
		"1.2.3",
		"0x10",
		".",
		"0.0000000000000000001", // 19 fractional digits
	}
	for _, c := range cases {
		t.Run(c, func(t *testing.T) {
			_, err := ToBaseUnits(c)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidAmount)
		})
	}
}

func TestToBaseUnitsOverflow(t *testing.T) {
	// 2^256 base units is one past the uint256 range.
	tooBig := new(big.Int).Lsh(big.NewInt(1), 256)
	_, err := ToBaseUnits(ToDecimal(tooBig))
	assert.ErrorIs(t, err, ErrInvalidAmount)

	maxOK := new(big.Int).Sub(tooBig, big.NewInt(1))
	got, err := ToBaseUnits(ToDecimal(maxOK))
	require.NoError(t, err)
	assert.Equal(t, maxOK, got)
}

// ---------------------------------------------------------------------------
// ToDecimal
// ---------------------------------------------------------------------------

func TestToDecimalFormatting(t *testing.T) {
	cases := map[string]string{
		"0":                      "0.0",
		"1":                      "0.000000000000000001",
		"1500000000000000000":    "1.5",
		"90000000000000000000":   "90.0",
		"100000000000000000000":  "100.0",
		"123456789012345678901":  "123.456789012345678901",
		"1000000000000000000000": "1000.0",
	}
	for in, want := range cases {
		assert.Equal(t, want, ToDecimal(wei(in)), "ToDecimal(%s)", in)
	}
}

func TestToDecimalNil(t *testing.T) {
	assert.Equal(t, "0.0", ToDecimal(nil))
}

// ---------------------------------------------------------------------------
// Round trip
// ---------------------------------------------------------------------------

func TestRoundTripCanonical(t *testing.T) {
	for _, x := range []string{
		"0.0",
		"1.5",
		"90.0",
		"0.000000000000000001",
		"123456789.123456789123456789",
		"999999999999999999.999999999999999999",
	} {
		got, err := ToBaseUnits(x)
		require.NoError(t, err, x)
		assert.Equal(t, x, ToDecimal(got))
	}
}

func TestRoundTripNonCanonicalIsNumericallyEqual(t *testing.T) {
	for _, x := range []string{"1.50", "007", ".5", "10."} {
		got, err := ToBaseUnits(x)
		require.NoError(t, err, x)
		assert.True(t, Equal(x, ToDecimal(got)), x)
	}
}

func TestRoundTripFromBaseUnits(t *testing.T) {
	for _, s := range []string{"0", "1", "10", "999999999999999999", "1000000000000000001"} {
		back, err := ToBaseUnits(ToDecimal(wei(s)))
		require.NoError(t, err)
		assert.Equal(t, wei(s), back)
	}
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal("1.5", "1.500"))
	assert.False(t, Equal("1.5", "1.6"))
	assert.False(t, Equal("x", "x"))
}
