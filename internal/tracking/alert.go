package tracking

import "fmt"

// AlertEvaluator maps a reported floor to an optional alert message.
// Floors outside the configured allowed set trigger an alert naming
// the worker. Pure and total, no error conditions.
type AlertEvaluator struct {
	allowed map[int]struct{}
}

// NewAlertEvaluator creates an evaluator for the given allowed floors
func NewAlertEvaluator(allowedFloors []int) *AlertEvaluator {
	allowed := make(map[int]struct{}, len(allowedFloors))
	for _, floor := range allowedFloors {
		allowed[floor] = struct{}{}
	}
	return &AlertEvaluator{allowed: allowed}
}

// Evaluate returns an alert message when the floor is not allowed,
// otherwise the empty string.
func (e *AlertEvaluator) Evaluate(workerName string, floor int) string {
	if _, ok := e.allowed[floor]; ok {
		return ""
	}
	return fmt.Sprintf("Unauthorized floor: %s reported from floor %d", workerName, floor)
}
