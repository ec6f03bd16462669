// pkg/checkpoint/checkpoint.go
package checkpoint

import (
	"encoding/json"
	"os"
)

// State is what an interrupted sweep leaves behind.
type State struct {
	Tries   int      `json:"tries"`
	Targets []string `json:"targets"`
}

// SaveState marshals the unprobed sweep targets to a JSON file.
func SaveState(state State, filePath string) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}

// LoadState unmarshals sweep state from a JSON file.
func LoadState(filePath string) (State, error) {
	var state State
	data, err := os.ReadFile(filePath)
	if err != nil {
		return state, err
	}
	return state, json.Unmarshal(data, &state)
}
