package pipeline

import (
	"sort"

	"leadclean/internal"
	"leadclean/internal/util"
)

// SplitOptions controls list splitting.
type SplitOptions struct {
	ListCount int
	// ExcludeDuplicates keeps flagged duplicates out of the balancing; they
	// follow their canonical member's list instead.
	ExcludeDuplicates bool
}

type companyGroup struct {
	members []int
}

// SplitLists assigns every contact to one of ListCount lists so that contacts
// of the same company are spread as evenly as possible. Larger companies are
// placed first; contacts without a company fill the remaining capacity.
// It returns the per-list counts.
func SplitLists(contacts []internal.Contact, opts SplitOptions) []int {
	n := opts.ListCount
	if n < 1 {
		n = 1
	}
	load := make([]int, n)

	groups := map[string]*companyGroup{}
	ordered := []*companyGroup{}
	noCompany := []int{}
	deferred := []int{}
	for i := range contacts {
		contacts[i].ListAssignment = -1
		if opts.ExcludeDuplicates && contacts[i].IsDuplicate {
			deferred = append(deferred, i)
			continue
		}
		key := util.FoldKey(contacts[i].Company)
		if key == "" {
			noCompany = append(noCompany, i)
			continue
		}
		g, ok := groups[key]
		if !ok {
			g = &companyGroup{}
			groups[key] = g
			ordered = append(ordered, g)
		}
		g.members = append(g.members, i)
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i].members) > len(ordered[j].members)
	})

	for _, g := range ordered {
		start := leastLoaded(load)
		for k, idx := range g.members {
			list := (start + k) % n
			contacts[idx].ListAssignment = list
			load[list]++
		}
	}

	for _, idx := range noCompany {
		list := leastLoaded(load)
		contacts[idx].ListAssignment = list
		load[list]++
	}

	if len(deferred) > 0 {
		byGroup := map[string]int{}
		for i := range contacts {
			if contacts[i].DuplicateGroupID != "" && !contacts[i].IsDuplicate {
				byGroup[contacts[i].DuplicateGroupID] = contacts[i].ListAssignment
			}
		}
		for _, idx := range deferred {
			list, ok := byGroup[contacts[idx].DuplicateGroupID]
			if !ok || list < 0 {
				list = leastLoaded(load)
				load[list]++
			}
			contacts[idx].ListAssignment = list
		}
	}

	counts := make([]int, n)
	for i := range contacts {
		counts[contacts[i].ListAssignment]++
	}
	return counts
}

// leastLoaded returns the index of the smallest list, lowest index on ties.
func leastLoaded(load []int) int {
	best := 0
	for i := 1; i < len(load); i++ {
		if load[i] < load[best] {
			best = i
		}
	}
	return best
}
