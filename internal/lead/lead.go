package lead

import (
	"sort"
	"strings"
)

// RawBusiness is a single directory entry as returned by the business search.
// Optional fields are nil when the directory omitted them.
type RawBusiness struct {
	Name  string
	URL   *string
	Phone *string
}

// Lead is an enriched RawBusiness. It is not modified after enrichment.
type Lead struct {
	Name    string  `json:"name"`
	Phone   *string `json:"phone"`
	Website *string `json:"website"`
	// DirectoryURL is the Yelp profile link. Website is filled from the same
	// field because the search API does not expose the business's own site.
	DirectoryURL   string `json:"yelp_url"`
	Score          int    `json:"score"`
	OnlinePresence string `json:"online_presence"`
}

// Collection is the ordered set of leads gathered during a single run.
// Duplicates across pages are kept.
type Collection []Lead

const (
	baseScore          = 1
	missingWebsiteBump = 3
	missingPhoneBump   = 2

	// MinScore and MaxScore bound the values returned by Score.
	MinScore = baseScore
	MaxScore = baseScore + missingWebsiteBump + missingPhoneBump
)

// Score rates how weak a business's online footprint looks. A missing website
// weighs more than a missing phone number.
func Score(hasWebsite, hasPhone bool) int {
	score := baseScore
	if !hasWebsite {
		score += missingWebsiteBump
	}
	if !hasPhone {
		score += missingPhoneBump
	}
	return score
}

// Optional returns nil for blank input, otherwise a pointer to the trimmed value.
func Optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Value dereferences an optional field, returning "" when it is absent.
func Value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// SortByScore returns a copy of c ordered by score, highest first. Leads with
// equal scores keep their insertion order.
func SortByScore(c Collection) Collection {
	sorted := make(Collection, len(c))
	copy(sorted, c)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	return sorted
}
