// Package types contains common types used across the application
package types

// Entry represents a leaderboard row: one completed run ranked by how
// close its best individual got to the goal (lower distance first).
type Entry struct {
	Rank         int    `json:"rank"`
	RunID        string `json:"run_id"`
	ExperimentID string `json:"experiment_id"`
	BestDistance int    `json:"best_distance"`
	BestText     string `json:"best_text"`
	Generations  int    `json:"generations"`
	InitMode     string `json:"init_mode"`
}
