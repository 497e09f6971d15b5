package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cmlabs-hris/attendance-normalizer/internal/domain/employee"
)

// loadBaseline reads the shared baseline, a JSON array of employees in the
// same shape the API returns.
func loadBaseline(path string) ([]employee.Employee, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read baseline: %w", err)
	}

	var baseline []employee.Employee
	if err := json.Unmarshal(data, &baseline); err != nil {
		return nil, fmt.Errorf("decode baseline %s: %w", path, err)
	}
	return baseline, nil
}
