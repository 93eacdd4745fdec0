package vision

// Score is the good-match count for one candidate. Scored distinguishes a
// candidate that competed with zero matches from one that could not be scored
// at all (missing, undecodable or featureless reference image).
type Score struct {
	ID     string
	Good   int
	Scored bool
}

// pickBest reduces per-candidate scores to a winner. Strict > keeps the first
// candidate visited on a tie, and the candidate order is the catalog order,
// so the tie-break is defined rather than accidental. Unscored entries never
// compete; a scored zero still does.
func pickBest(scores []Score) (string, bool) {
	best := ""
	max := -1
	for _, s := range scores {
		if !s.Scored {
			continue
		}
		if s.Good > max {
			max = s.Good
			best = s.ID
		}
	}
	return best, max >= 0
}
