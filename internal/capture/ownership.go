package capture

import (
	"sort"
	"time"
)

// ContributionRow is one persisted contribution as read back for
// ownership resolution: one (run, cell) share attributed to a user.
type ContributionRow struct {
	H3Index   string
	UserID    string
	DistanceM float64
	FirstAt   time.Time
}

// CellOwner is the resolved winner of one cell for a cycle.
type CellOwner struct {
	H3Index   string
	UserID    string
	DistanceM float64
	FirstAt   time.Time
}

// ResolveOwners picks one winner per cell from all contribution rows of
// a cycle. Per (cell, user) the distances are summed and the earliest
// firstAt retained; candidates are then ranked by distance descending,
// firstAt ascending, and finally userID ascending so the outcome is
// fully deterministic. Cells with no rows produce no output. The caller
// must supply every contribution row for the cycle.
func ResolveOwners(rows []ContributionRow) []CellOwner {
	type userKey struct {
		cell string
		user string
	}
	type accum struct {
		distance float64
		firstAt  time.Time
	}

	totals := make(map[userKey]*accum)
	for _, r := range rows {
		k := userKey{cell: r.H3Index, user: r.UserID}
		acc, ok := totals[k]
		if !ok {
			totals[k] = &accum{distance: r.DistanceM, firstAt: r.FirstAt}
			continue
		}
		acc.distance += r.DistanceM
		if r.FirstAt.Before(acc.firstAt) {
			acc.firstAt = r.FirstAt
		}
	}

	byCell := make(map[string][]CellOwner)
	for k, acc := range totals {
		byCell[k.cell] = append(byCell[k.cell], CellOwner{
			H3Index:   k.cell,
			UserID:    k.user,
			DistanceM: acc.distance,
			FirstAt:   acc.firstAt,
		})
	}

	owners := make([]CellOwner, 0, len(byCell))
	for _, candidates := range byCell {
		sort.Slice(candidates, func(i, j int) bool {
			if candidates[i].DistanceM != candidates[j].DistanceM {
				return candidates[i].DistanceM > candidates[j].DistanceM
			}
			if !candidates[i].FirstAt.Equal(candidates[j].FirstAt) {
				return candidates[i].FirstAt.Before(candidates[j].FirstAt)
			}
			return candidates[i].UserID < candidates[j].UserID
		})
		owners = append(owners, candidates[0])
	}

	sort.Slice(owners, func(i, j int) bool { return owners[i].H3Index < owners[j].H3Index })
	return owners
}
