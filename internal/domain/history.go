package domain

// HistorySnapshot is a point-in-time copy of a session's history.
// Analytics and reports work on snapshots so the store is never read mid-mutation.
type HistorySnapshot struct {
	Records          []BugRecord `json:"records"`
	TotalSolved      int         `json:"total_solved"`
	SatisfactionRate float64     `json:"satisfaction_rate"`
}

// Empty reports whether the snapshot holds no records.
func (s HistorySnapshot) Empty() bool {
	return len(s.Records) == 0
}
