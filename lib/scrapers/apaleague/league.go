package apaleague

import (
	"strings"

	"apastats/lib/textutil"

	"github.com/antzucaro/matchr"
)

const DefaultLeague = "Philadelphia"

// knownLeagues are the area league names the portal uses in member
// urls. Input close to one of these is snapped to the exact spelling
// so the same league never produces two different cache keys.
var knownLeagues = []string{
	"Philadelphia",
	"South Jersey",
	"North Jersey",
	"Delaware",
	"Bucks County",
	"Montgomery County",
	"Lehigh Valley",
	"Harrisburg",
	"Baltimore",
	"New York City",
}

const leagueSimilarityFloor = 0.88

// ResolveLeague picks the league for a run: the explicit request wins,
// then the configured default, then Philadelphia.
func ResolveLeague(request, configured string) string {
	switch {
	case strings.TrimSpace(request) != "":
		return CanonicalLeague(request)
	case strings.TrimSpace(configured) != "":
		return CanonicalLeague(configured)
	default:
		return DefaultLeague
	}
}

// CanonicalLeague snaps a league name to its known spelling when the
// input is close enough, otherwise it returns the trimmed input.
func CanonicalLeague(league string) string {
	league = strings.TrimSpace(league)
	if league == "" {
		return league
	}

	folded := textutil.Fold(league)
	best := ""
	bestScore := 0.0
	for _, known := range knownLeagues {
		knownFolded := textutil.Fold(known)
		if folded == knownFolded {
			return known
		}
		score := matchr.JaroWinkler(folded, knownFolded, false)
		if score > bestScore {
			bestScore = score
			best = known
		}
	}
	if bestScore >= leagueSimilarityFloor {
		return best
	}
	return league
}
