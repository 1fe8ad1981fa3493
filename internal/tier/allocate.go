package tier

import "sort"

// TierAllocation summarizes one tier of an Allocation.
type TierAllocation struct {
	Tier       Tier    `json:"tier"`
	Percentage float64 `json:"percentage"`
	Population int     `json:"population"`
	Sampled    int     `json:"sampled"`
}

// CategoryAllocation summarizes one document category of an Allocation.
type CategoryAllocation struct {
	Category   string `json:"category"`
	Population int    `json:"population"`
	Sampled    int    `json:"sampled"`
}

// Allocation records the tier plan of one run. Selected lists the sampled
// paths so a run can be reproduced after the fact.
type Allocation struct {
	Seed       uint64               `json:"seed"`
	Full       bool                 `json:"full"`
	Tiers      []TierAllocation     `json:"tiers"`
	Categories []CategoryAllocation `json:"categories"`
	Selected   []string             `json:"selected"`
	// Assignments maps every discovered path to its tier.
	Assignments map[string]Tier `json:"-"`
}

// Allocate assigns every path to a tier and samples each tier. When full is
// true every document is selected. categoryOf labels paths for the
// per-category breakdown; it may be nil.
func (a *Allocator) Allocate(paths []string, categoryOf func(string) string, full bool) Allocation {
	alloc := Allocation{
		Seed:        a.seed,
		Full:        full,
		Assignments: make(map[string]Tier, len(paths)),
		Selected:    []string{},
	}

	byTier := make(map[Tier][]string)
	for _, p := range paths {
		t := a.Assign(p)
		alloc.Assignments[p] = t
		byTier[t] = append(byTier[t], p)
	}

	selected := make(map[string]bool)
	for _, t := range Tiers {
		population := byTier[t]
		var picked []string
		if full {
			picked = population
		} else {
			picked = a.Sample(t, population)
		}
		for _, p := range picked {
			selected[p] = true
		}
		alloc.Tiers = append(alloc.Tiers, TierAllocation{
			Tier:       t,
			Percentage: a.percentages[t],
			Population: len(population),
			Sampled:    len(picked),
		})
	}

	byCategory := make(map[string]*CategoryAllocation)
	for _, p := range paths {
		c := ""
		if categoryOf != nil {
			c = categoryOf(p)
		}
		ca, ok := byCategory[c]
		if !ok {
			ca = &CategoryAllocation{Category: c}
			byCategory[c] = ca
		}
		ca.Population++
		if selected[p] {
			ca.Sampled++
		}
	}
	for _, ca := range byCategory {
		alloc.Categories = append(alloc.Categories, *ca)
	}
	sort.Slice(alloc.Categories, func(i, j int) bool {
		return alloc.Categories[i].Category < alloc.Categories[j].Category
	})

	for p := range selected {
		alloc.Selected = append(alloc.Selected, p)
	}
	sort.Strings(alloc.Selected)
	return alloc
}
