package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/npc-engine/pkg/npc"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Runner executes integration tests against a running npc-engine API
type Runner struct {
	BaseURL           string
	Client            *http.Client
	Timeout           time.Duration
	Logger            func(format string, args ...interface{})
	ErrorHandlingMode ErrorHandlingMode
}

// NewRunner creates a new test runner
func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		Client:            &http.Client{Timeout: 60 * time.Second},
		Timeout:           30 * time.Second,
		Logger:            func(string, ...interface{}) {},
		ErrorHandlingMode: ErrorHandlingContinue,
	}
}

// LoadTestSuite loads a test suite from a YAML file
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	if err := dec.Decode(&suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse YAML in %s: %w", filename, err)
	}

	return suite, nil
}

// LoadTestSuiteWithExpansion loads a test suite and expands it if it's a sequence
// Returns a list of actual test suites (expanded from the sequence if needed)
func LoadTestSuiteWithExpansion(filename string, casesDir string) ([]TestJob, error) {
	suite, err := LoadTestSuite(filename)
	if err != nil {
		return nil, err
	}

	if !suite.IsSequence() {
		return []TestJob{{
			Name:     suite.Name,
			Suite:    suite,
			CaseFile: filename,
		}}, nil
	}

	var jobs []TestJob
	for _, caseFile := range suite.Cases {
		casePath := filepath.Join(casesDir, caseFile)

		// Recursively load (in case a sequence references another sequence)
		subJobs, err := LoadTestSuiteWithExpansion(casePath, casesDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load case '%s' referenced by sequence '%s': %w", caseFile, suite.Name, err)
		}
		jobs = append(jobs, subJobs...)
	}

	return jobs, nil
}

// suiteState carries what earlier steps produced.
type suiteState struct {
	population *npc.Population
	first      []byte // records of the first create, as JSON
}

// RunSuite executes a complete test suite
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Job: TestJob{
			Name:  suite.Name,
			Suite: suite,
		},
		Results: make([]TestResult, 0, len(suite.Steps)),
	}

	st := &suiteState{}
	for i, step := range suite.Steps {
		r.Logger("    [%d/%d] Running step: %s", i+1, len(suite.Steps), step.Name)

		stepCtx, cancel := context.WithTimeout(ctx, r.Timeout)
		stepStart := time.Now()
		err := r.runStep(stepCtx, suite, step, st)
		cancel()

		stepResult := TestResult{
			TestName: suite.Name,
			StepName: step.Name,
			Success:  err == nil,
			Error:    err,
			Duration: time.Since(stepStart),
		}
		result.Results = append(result.Results, stepResult)
		if st.population != nil {
			result.Population = st.population.ID
		}

		if err != nil {
			r.Logger("    [%d/%d] ✗ %s: %v", i+1, len(suite.Steps), step.Name, err)
			if result.Error == nil {
				result.Error = fmt.Errorf("step %d (%s) failed: %w", i, step.Name, err)
			}
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
			continue
		}
		r.Logger("    [%d/%d] ✓ %s (%v)", i+1, len(suite.Steps), step.Name, stepResult.Duration)
	}

	result.Duration = time.Since(start)
	return result, result.Error
}

func expectedStatus(exp Expectations, success int) (int, bool) {
	if exp.Status != nil {
		return *exp.Status, *exp.Status == success
	}
	return success, true
}

// runStep performs one API call and checks its expectations. Body checks
// only run when the step expects the action's success status.
func (r *Runner) runStep(ctx context.Context, suite TestSuite, step TestStep, st *suiteState) error {
	exp := step.Expectations

	if step.Action == ActionCreate {
		seed, count := suite.Seed, suite.Count
		if step.Seed != nil {
			seed = *step.Seed
		}
		if step.Count != nil {
			count = *step.Count
		}
		want, ok := expectedStatus(exp, http.StatusCreated)
		pop, err := CreatePopulation(ctx, r.Client, r.BaseURL, seed, count, want)
		if err != nil || !ok {
			return err
		}
		st.population = pop
		return r.checkPopulation(exp, pop, st)
	}

	if st.population == nil {
		return fmt.Errorf("action %q needs a create step first", step.Action)
	}
	id := st.population.ID

	switch step.Action {
	case ActionGet:
		want, ok := expectedStatus(exp, http.StatusOK)
		pop, err := GetPopulation(ctx, r.Client, r.BaseURL, id, want)
		if err != nil || !ok {
			return err
		}
		return r.checkPopulation(exp, pop, st)

	case ActionList:
		want, ok := expectedStatus(exp, http.StatusOK)
		list, err := ListPopulations(ctx, r.Client, r.BaseURL, want)
		if err != nil || !ok {
			return err
		}
		if exp.Listed != nil {
			listed := false
			for _, s := range list {
				if s.ID == id {
					listed = true
				}
			}
			if listed != *exp.Listed {
				return fmt.Errorf("expected listed to be %t for %s, got %t", *exp.Listed, id, listed)
			}
		}
		return nil

	case ActionNPC:
		want, ok := expectedStatus(exp, http.StatusOK)
		rec, err := GetNPC(ctx, r.Client, r.BaseURL, id, step.NPC, want)
		if err != nil || !ok {
			return err
		}
		return checkRecord(exp, rec)

	case ActionSheet:
		want, ok := expectedStatus(exp, http.StatusOK)
		sheet, err := GetSheet(ctx, r.Client, r.BaseURL, id, step.NPC, want)
		if err != nil || !ok {
			return err
		}
		if exp.MinHP != nil && sheet.HP < *exp.MinHP {
			return fmt.Errorf("expected hp >= %d, got %d", *exp.MinHP, sheet.HP)
		}
		if exp.MinAC != nil && sheet.AC < *exp.MinAC {
			return fmt.Errorf("expected ac >= %d, got %d", *exp.MinAC, sheet.AC)
		}
		return nil

	case ActionValidate:
		rec, found := st.population.NPC(step.NPC)
		if !found {
			return fmt.Errorf("NPC %s is not in the current population", step.NPC)
		}
		want, ok := expectedStatus(exp, http.StatusOK)
		resp, err := ValidateRecord(ctx, r.Client, r.BaseURL, rec, want)
		if err != nil || !ok {
			return err
		}
		if exp.Valid != nil && resp.Valid != *exp.Valid {
			return fmt.Errorf("expected valid to be %t, got %t: %v", *exp.Valid, resp.Valid, resp.Errors)
		}
		return nil

	case ActionDelete:
		want, _ := expectedStatus(exp, http.StatusNoContent)
		return DeletePopulation(ctx, r.Client, r.BaseURL, id, want)

	default:
		return fmt.Errorf("unknown action %q", step.Action)
	}
}

func (r *Runner) checkPopulation(exp Expectations, pop *npc.Population, st *suiteState) error {
	records, err := json.Marshal(pop.NPCs)
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}
	if st.first == nil {
		st.first = records
	}

	if exp.Count != nil && len(pop.NPCs) != *exp.Count {
		return fmt.Errorf("expected %d NPCs, got %d", *exp.Count, len(pop.NPCs))
	}
	if exp.MatchesFirst != nil {
		same := bytes.Equal(records, st.first)
		if same != *exp.MatchesFirst {
			return fmt.Errorf("expected matches_first to be %t, got %t", *exp.MatchesFirst, same)
		}
	}
	return nil
}

func checkRecord(exp Expectations, rec *npc.Record) error {
	if exp.Occupation != nil && rec.Background.Occupation != *exp.Occupation {
		return fmt.Errorf("expected occupation %s, got %s", *exp.Occupation, rec.Background.Occupation)
	}
	if exp.HasFamily != nil {
		hasFamily := len(rec.Relationships.Family) > 0
		if hasFamily != *exp.HasFamily {
			return fmt.Errorf("expected has_family to be %t, got %t", *exp.HasFamily, hasFamily)
		}
	}
	if exp.MinHP != nil && rec.Conditions.Vitals.HP < *exp.MinHP {
		return fmt.Errorf("expected hp >= %d, got %d", *exp.MinHP, rec.Conditions.Vitals.HP)
	}
	return nil
}
