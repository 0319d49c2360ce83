package tracking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlertEvaluator(t *testing.T) {
	t.Run("allowed floor yields no alert", func(t *testing.T) {
		evaluator := NewAlertEvaluator([]int{1})
		assert.Empty(t, evaluator.Evaluate("Alice", 1))
	})

	t.Run("disallowed floor names the worker", func(t *testing.T) {
		evaluator := NewAlertEvaluator([]int{1})
		alert := evaluator.Evaluate("Alice", 2)
		assert.NotEmpty(t, alert)
		assert.Contains(t, alert, "Alice")
		assert.Contains(t, alert, "2")
	})

	t.Run("multiple allowed floors", func(t *testing.T) {
		evaluator := NewAlertEvaluator([]int{1, 2, 3})
		assert.Empty(t, evaluator.Evaluate("Bob", 2))
		assert.NotEmpty(t, evaluator.Evaluate("Bob", 4))
	})

	t.Run("floors below the allowed set also alert", func(t *testing.T) {
		evaluator := NewAlertEvaluator([]int{1})
		assert.NotEmpty(t, evaluator.Evaluate("Bob", 0))
	})
}
