package romalloc

import (
	"github.com/impresaria/romspace/spaceutils"
	"github.com/impresaria/romspace/spaceutils/addr"
	"golang.org/x/exp/slices"
	"golang.org/x/exp/slog"
)

// crunch folds candidates into the region set. Each candidate is clipped to the max value and has
// every forbidden range cut out of it. A forbidden range in the middle of a candidate splits it,
// and the upper piece goes back on the worklist so the remaining forbidden ranges are checked
// against it too.
func (a *Allocator) crunch(candidates []addr.Range) {
	worklist := slices.Clone(candidates)
	var survivors []addr.Range

	for len(worklist) > 0 {
		candidate := worklist[0]
		worklist = worklist[1:]

		if candidate.IsEmpty() || candidate.Start() > a.maxValue {
			continue
		}

		candidate = addr.NewRange(candidate.Start(), spaceutils.Clamp(a.logger, candidate.Start(), candidate.End(), a.maxValue))

		discarded := false
		for _, forbidden := range a.forbidden {
			fragments := candidate.Subtract(forbidden)
			if len(fragments) == 0 {
				discarded = true
				break
			}

			candidate = fragments[0]
			if len(fragments) > 1 {
				worklist = append(worklist, fragments[1])
			}
		}

		if !discarded {
			survivors = append(survivors, candidate)
		}
	}

	before := len(a.regions)
	a.regions = coalesce(append(a.regions, survivors...))
	a.invalidate()

	a.logger.Debug("Allocator::crunch",
		slog.Int("Candidates", len(candidates)),
		slog.Int("Survivors", len(survivors)),
		slog.Int("RegionsBefore", before),
		slog.Int("RegionsAfter", len(a.regions)),
	)
	spaceutils.DebugValidate(validateFunc(a.validate))
}

// coalesce sorts ranges by start and then end, and merges every run of ranges that overlap or
// are separated by at most one address
func coalesce(ranges []addr.Range) []addr.Range {
	slices.SortFunc(ranges, compareRanges)

	var result []addr.Range
	for _, r := range ranges {
		if r.IsEmpty() {
			continue
		}

		if len(result) == 0 {
			result = append(result, r)
			continue
		}

		merged := result[len(result)-1].Merge(r)
		if len(merged) == 1 {
			result[len(result)-1] = merged[0]
		} else {
			result = append(result, r)
		}
	}

	return result
}

func compareRanges(left, right addr.Range) int {
	switch {
	case left.Start() < right.Start():
		return -1
	case left.Start() > right.Start():
		return 1
	case left.End() < right.End():
		return -1
	case left.End() > right.End():
		return 1
	}

	return 0
}

// release removes r from every region. Regions stay sorted and separated because fragments
// only ever shrink the regions they came from.
func (a *Allocator) release(r addr.Range) {
	var remaining []addr.Range
	for _, region := range a.regions {
		remaining = append(remaining, region.Subtract(r)...)
	}

	before := len(a.regions)
	a.regions = remaining
	a.invalidate()

	a.logger.Debug("Allocator::release",
		slog.String("Range", r.String()),
		slog.Int("RegionsBefore", before),
		slog.Int("RegionsAfter", len(a.regions)),
	)
	spaceutils.DebugValidate(validateFunc(a.validate))
}
