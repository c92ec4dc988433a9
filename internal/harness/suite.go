package harness

import (
	"path/filepath"
	"sort"

	"github.com/cockroachdb/errors"
)

// SuiteResult summarizes a directory of scenarios.
type SuiteResult struct {
	Total    int               `json:"total"`
	Passed   int               `json:"passed"`
	Failed   int               `json:"failed"`
	Failures []ScenarioFailure `json:"failures,omitempty"`
}

// ScenarioFailure describes one failed scenario.
type ScenarioFailure struct {
	Scenario string   `json:"scenario"`
	Path     string   `json:"path"`
	Errors   []string `json:"errors"`
}

// RunDir loads and runs every *.yaml scenario in dir, in file name order.
// A scenario that cannot be loaded or run aborts the suite.
func RunDir(dir string) (*SuiteResult, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, errors.Wrapf(err, "list scenarios in %s", dir)
	}
	sort.Strings(paths)

	suite := &SuiteResult{}
	for _, path := range paths {
		scenario, err := LoadScenario(path)
		if err != nil {
			return nil, errors.Wrapf(err, "load %s", path)
		}
		result, err := Run(scenario)
		if err != nil {
			return nil, errors.Wrapf(err, "run %s", scenario.Name)
		}

		suite.Total++
		if result.Pass {
			suite.Passed++
			continue
		}
		suite.Failed++
		suite.Failures = append(suite.Failures, ScenarioFailure{
			Scenario: scenario.Name,
			Path:     path,
			Errors:   result.Errors,
		})
	}
	return suite, nil
}
