// Package optimization provides shared data structures for optimization results.
package optimization

// Summary captures the result of solving one gross-up target: the gross
// income whose net income reaches TargetNet.
type Summary struct {
	Name        string   `json:"name"`
	Year        int      `json:"year"`
	TargetNet   float64  `json:"targetNet"`
	GrossIncome float64  `json:"grossIncome"`
	NetIncome   float64  `json:"netIncome"`
	Iterations  int      `json:"iterations"`
	Converged   bool     `json:"converged"`
	Notes       []string `json:"notes,omitempty"`
}
