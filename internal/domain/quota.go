package domain

import "math"

// DroopQuota computes the vote threshold for election:
//
//	Q = floor(V / (S + 1)) + 1
//
// where V is the total valid ballot weight and S the vacancy count.
// This is the standard Droop quota; it is the minimal integer threshold
// satisfying (S+1)*Q > V, which bounds the number of candidates that can
// simultaneously reach quota to at most S.
//
// It fails with a ConfigError before any counting begins when the
// vacancy count is non-positive, when the vacancy count is not smaller
// than the candidate count (a trivial election the caller must
// special-case), or when the total weight is zero.
func DroopQuota(totalWeight float64, vacancies, candidates int) (float64, error) {
	if vacancies <= 0 {
		return 0, NewConfigError("vacancies", vacancies, ErrInvalidVacancies)
	}
	if vacancies >= candidates {
		return 0, NewConfigError("vacancies", vacancies, ErrTooFewCandidates)
	}
	if totalWeight <= 0 {
		return 0, NewConfigError("ballots", totalWeight, ErrNoBallots)
	}
	return math.Floor(totalWeight/float64(vacancies+1)) + 1, nil
}
