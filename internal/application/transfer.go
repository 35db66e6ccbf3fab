package application

// transferSurplus redistributes the surplus of a newly elected
// candidate. Every ballot the candidate holds is scaled by the transfer
// value (T-Q)/T and advanced to its next Hopeful preference; ballots
// with no remaining preference exhaust at their reduced weight. The
// candidate's total is pinned at the quota. The whole batch completes
// before any further round decision.
//
// When the candidate reached quota exactly the transfer value is zero:
// no weight moves and the ballots remain assigned to the candidate for
// the audit trail.
//
// Returns the transfer value used.
func (e *Engine) transferSurplus(c int) float64 {
	total := e.reg.Total(c)
	value := (total - e.quota) / total
	if value <= 0 {
		e.reg.SetTotal(c, e.quota)
		return 0
	}

	for _, b := range e.pool.TakeAssigned(c) {
		e.pool.ScaleWeight(b, value)
		if next, ok := e.pool.Advance(b, e.reg.Hopeful); ok {
			e.reg.AddToTotal(next, e.pool.Ballot(b).Weight())
		}
	}
	e.reg.SetTotal(c, e.quota)
	return value
}

// transferExclusion redistributes an excluded candidate's ballots at
// their full current weight. Ballots with no remaining Hopeful
// preference exhaust. The candidate's total becomes zero. The whole
// batch completes before any further round decision.
func (e *Engine) transferExclusion(c int) {
	for _, b := range e.pool.TakeAssigned(c) {
		if next, ok := e.pool.Advance(b, e.reg.Hopeful); ok {
			e.reg.AddToTotal(next, e.pool.Ballot(b).Weight())
		}
	}
	e.reg.SetTotal(c, 0)
}
