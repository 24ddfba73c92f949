package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"  Bob  Smith ", "bobsmith"},
		{"bobsmith", "bobsmith"},
		{"Alice\tJohnson\n", "alicejohnson"},
		{"", ""},
	}
	for _, c := range cases {
		require.Equal(t, c.expected, NormalizeName(c.input), "input: %q", c.input)
	}
}

func TestFoldKeepsWordBoundaries(t *testing.T) {
	require.Equal(t, "team statistics are not available", Fold("  Team   Statistics\nare not AVAILABLE "))
}

func TestMatchName(t *testing.T) {
	matchers := []string{"dashboard", "memberservices"}

	require.True(t, MatchName("Dashboard", matchers))
	require.True(t, MatchName("Member  Services", matchers))
	require.False(t, MatchName("Bob Smith", matchers))
}

func TestContainsFold(t *testing.T) {
	phrases := []string{"Team Statistics are not available"}

	require.True(t, ContainsFold("note: team   statistics are NOT available this season", phrases))
	require.False(t, ContainsFold("statistics", phrases))
}

func TestMostlySymbols(t *testing.T) {
	cases := []struct {
		input    string
		expected bool
	}{
		{"*****", true},
		{"-- // --", true},
		{"Bob Smith", false},
		{"B-52s", false},
		{"", false},
	}
	for _, c := range cases {
		require.Equal(t, c.expected, MostlySymbols(c.input), "input: %q", c.input)
	}
}

func TestAllDigits(t *testing.T) {
	require.True(t, AllDigits("1234567"))
	require.False(t, AllDigits("12a4"))
	require.False(t, AllDigits(""))
	require.False(t, AllDigits("12.4"))
}
