package application

// The tie-break policy is fixed and deterministic, since the election
// outcome is a function of it: candidates tied on their current total
// are separated by their totals at the most recent prior round where
// they differed; candidates whose totals never differed fall back to
// registration order. For both election and exclusion the
// earlier-registered candidate is chosen first.

// pickForElection returns the candidate to elect next from the given
// registration indices: the highest current total, ties broken by the
// higher total at the most recent differing prior round, then by
// earliest registration.
func (e *Engine) pickForElection(cands []int) int {
	best := cands[0]
	for _, c := range cands[1:] {
		switch {
		case e.reg.Total(c) > e.reg.Total(best):
			best = c
		case e.reg.Total(c) == e.reg.Total(best):
			if cmp := e.comparePrior(c, best); cmp > 0 || (cmp == 0 && c < best) {
				best = c
			}
		}
	}
	return best
}

// pickForExclusion returns the candidate to exclude from the given
// registration indices: the lowest current total, ties broken by the
// lower total at the most recent differing prior round, then by
// earliest registration.
func (e *Engine) pickForExclusion(cands []int) int {
	worst := cands[0]
	for _, c := range cands[1:] {
		switch {
		case e.reg.Total(c) < e.reg.Total(worst):
			worst = c
		case e.reg.Total(c) == e.reg.Total(worst):
			if cmp := e.comparePrior(c, worst); cmp < 0 || (cmp == 0 && c < worst) {
				worst = c
			}
		}
	}
	return worst
}

// comparePrior compares two candidates by their totals at the most
// recent recorded round where they differed. It returns -1 if a trailed
// b there, 1 if a led, and 0 if their totals never differed.
func (e *Engine) comparePrior(a, b int) int {
	for r := len(e.history) - 1; r >= 0; r-- {
		ta, tb := e.history[r][a], e.history[r][b]
		switch {
		case ta < tb:
			return -1
		case ta > tb:
			return 1
		}
	}
	return 0
}
