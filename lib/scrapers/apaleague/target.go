package apaleague

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"apastats/lib/textutil"

	"github.com/PuerkitoBio/purell"
)

const DefaultBaseURL = "https://league.poolplayers.com"

// Target identifies a player to extract. League and MemberNumber are
// only set when the identifier was a url that carried them.
type Target struct {
	UserID       string
	MemberNumber string
	League       string
}

// the portal has linked members two ways over time:
// /{league}/member/{memberNumber}/{userId}/teams (old)
// /{league}/member/{userId} (current)
var memberOldUrl = regexp.MustCompile(`/([^/]+)/member/(\d+)/(\d+)/teams`)
var memberCurrentUrl = regexp.MustCompile(`/([^/]+)/member/(\d+)`)

var teamUrl = regexp.MustCompile(`/team/(\d+)`)

var normalizeFlags = purell.FlagsSafe |
	purell.FlagsUsuallySafeNonGreedy |
	purell.FlagRemoveDirectoryIndex |
	purell.FlagRemoveFragment |
	purell.FlagSortQuery

// ParseMemberTarget accepts a bare user id or any member url the
// portal has ever produced.
func ParseMemberTarget(identifier string) (Target, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return Target{}, ParseError{What: "member identifier", Detail: "empty"}
	}
	if textutil.AllDigits(identifier) {
		return Target{UserID: identifier}, nil
	}

	normalized, err := purell.NormalizeURLString(identifier, normalizeFlags)
	if err != nil {
		return Target{}, ParseError{What: "member identifier", Detail: err.Error()}
	}

	if m := memberOldUrl.FindStringSubmatch(normalized); m != nil {
		return Target{
			League:       CanonicalLeague(pathSegment(m[1])),
			MemberNumber: m[2],
			UserID:       m[3],
		}, nil
	}
	if m := memberCurrentUrl.FindStringSubmatch(normalized); m != nil {
		return Target{
			League: CanonicalLeague(pathSegment(m[1])),
			UserID: m[2],
		}, nil
	}
	return Target{}, ParseError{
		What:   "member identifier",
		Detail: fmt.Sprintf("%q is neither a user id nor a member url", identifier),
	}
}

// ParseTeamTarget accepts a bare team id or a team url.
func ParseTeamTarget(identifier string) (string, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return "", ParseError{What: "team identifier", Detail: "empty"}
	}
	if textutil.AllDigits(identifier) {
		return identifier, nil
	}

	normalized, err := purell.NormalizeURLString(identifier, normalizeFlags)
	if err != nil {
		return "", ParseError{What: "team identifier", Detail: err.Error()}
	}
	if m := teamUrl.FindStringSubmatch(normalized); m != nil {
		return m[1], nil
	}
	return "", ParseError{
		What:   "team identifier",
		Detail: fmt.Sprintf("%q is neither a team id nor a team url", identifier),
	}
}

func pathSegment(s string) string {
	unescaped, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return unescaped
}

func LoginURL(base string) string {
	return base + "/login"
}

func PlayerURL(base, league, userID string) string {
	return fmt.Sprintf("%s/%s/member/%s", base, url.PathEscape(league), userID)
}

func MemberTeamsURL(base, league, userID string) string {
	return fmt.Sprintf("%s/%s/member/%s/teams", base, url.PathEscape(league), userID)
}

func TeamURL(base, teamID string) string {
	return fmt.Sprintf("%s/team/%s", base, teamID)
}
