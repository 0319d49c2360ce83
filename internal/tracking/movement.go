package tracking

// hasMoved reports whether the newly reported position counts as a
// transition relative to the stored last-known position. Movement is
// defined on the (room, floor) pair only: a status change inside the
// same room does not count. A worker never seen before always counts
// as a transition.
func hasMoved(previous *PositionRecord, next WorkerReport) bool {
	if previous == nil {
		return true
	}
	return previous.Room != next.Room || previous.Floor != *next.Floor
}
