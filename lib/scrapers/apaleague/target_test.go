package apaleague

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseMemberTarget(t *testing.T) {
	cases := []struct {
		identifier string
		expect     Target
	}{
		{
			identifier: "98765",
			expect:     Target{UserID: "98765"},
		},
		{
			identifier: "https://league.poolplayers.com/Philadelphia/member/98765",
			expect:     Target{UserID: "98765", League: "Philadelphia"},
		},
		{
			identifier: "https://league.poolplayers.com/Philadelphia/member/98765/#history",
			expect:     Target{UserID: "98765", League: "Philadelphia"},
		},
		{
			identifier: "https://league.poolplayers.com/South%20Jersey/member/123456/78910/teams",
			expect:     Target{UserID: "78910", MemberNumber: "123456", League: "South Jersey"},
		},
	}
	for _, test := range cases {
		target, err := ParseMemberTarget(test.identifier)
		require.NoError(t, err, "identifier: %q", test.identifier)
		require.Equal(t, test.expect, target, "identifier: %q", test.identifier)
	}
}

func TestParseMemberTargetRejectsGarbage(t *testing.T) {
	for _, identifier := range []string{"", "  ", "not a member url", "https://league.poolplayers.com/team/31415"} {
		_, err := ParseMemberTarget(identifier)
		require.Error(t, err, "identifier: %q", identifier)

		var parseErr ParseError
		require.ErrorAs(t, err, &parseErr, "identifier: %q", identifier)
	}
}

func TestParseTeamTarget(t *testing.T) {
	teamID, err := ParseTeamTarget("424242")
	require.NoError(t, err)
	require.Equal(t, "424242", teamID)

	teamID, err = ParseTeamTarget("https://league.poolplayers.com/team/31415")
	require.NoError(t, err)
	require.Equal(t, "31415", teamID)

	_, err = ParseTeamTarget("https://league.poolplayers.com/Philadelphia/member/98765")
	require.Error(t, err)
}

func TestURLBuilders(t *testing.T) {
	base := "https://league.poolplayers.com"

	require.Equal(t, base+"/login", LoginURL(base))
	require.Equal(t, base+"/Philadelphia/member/98765", PlayerURL(base, "Philadelphia", "98765"))
	require.Equal(t, base+"/South%20Jersey/member/98765/teams", MemberTeamsURL(base, "South Jersey", "98765"))
	require.Equal(t, base+"/team/31415", TeamURL(base, "31415"))
}
