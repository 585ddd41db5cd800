package domain

// CompletionDiff returns, in index order, the forms that went from incomplete
// to complete between two progress vectors. Vectors of different length, or
// an empty previous vector, yield nothing.
func CompletionDiff(previous, next []float64) []int {
	if len(previous) == 0 || len(previous) != len(next) {
		return nil
	}
	var out []int
	for i := range previous {
		if previous[i] < 1 && next[i] == 1 {
			out = append(out, i)
		}
	}
	return out
}

// Partition splits form indices into finished (exactly 1) and ongoing
// ([0, 1)). Values outside [0, 1] are in neither group.
func Partition(progress []float64) (finished, ongoing []int) {
	for i, p := range progress {
		switch {
		case p == 1:
			finished = append(finished, i)
		case p >= 0 && p < 1:
			ongoing = append(ongoing, i)
		}
	}
	return finished, ongoing
}

// FirstIncomplete returns the lowest index whose progress is below 1.
func FirstIncomplete(progress []float64) (int, bool) {
	for i, p := range progress {
		if p < 1 {
			return i, true
		}
	}
	return 0, false
}

func Aligned(progress []float64, links []string) bool {
	return len(progress) == len(links)
}
