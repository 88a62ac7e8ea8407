package runner

import (
	"time"

	"github.com/google/uuid"
)

// Step actions understood by the runner.
const (
	ActionCreate   = "create"
	ActionGet      = "get"
	ActionList     = "list"
	ActionNPC      = "npc"
	ActionSheet    = "sheet"
	ActionValidate = "validate"
	ActionDelete   = "delete"
)

// TestSuite defines a complete integration test scenario
// Can either be a regular test with Steps, or a suite that references other Cases
type TestSuite struct {
	Name  string     `yaml:"name"`
	Seed  string     `yaml:"seed,omitempty"`  // Used by create steps
	Count int        `yaml:"count,omitempty"` // Used by create steps
	Steps []TestStep `yaml:"steps,omitempty"`
	Cases []string   `yaml:"cases,omitempty"` // Used for suite tests (list of case files)
}

// IsSequence returns true if this is a suite that sequences other cases
func (ts *TestSuite) IsSequence() bool {
	return len(ts.Cases) > 0
}

// TestStep is one API call against the current population and its checks.
type TestStep struct {
	Name         string       `yaml:"name,omitempty"`
	Action       string       `yaml:"action"`
	NPC          string       `yaml:"npc,omitempty"`   // npc, sheet and validate steps
	Seed         *string      `yaml:"seed,omitempty"`  // overrides the suite seed for one create
	Count        *int         `yaml:"count,omitempty"` // overrides the suite count for one create
	Expectations Expectations `yaml:"expect"`
}

// Expectations defines what to check after a test step executes
type Expectations struct {
	Status *int `yaml:"status,omitempty"` // defaults to the action's success status

	// Population
	Count        *int  `yaml:"count,omitempty"`
	Listed       *bool `yaml:"listed,omitempty"`        // current population appears in the list
	MatchesFirst *bool `yaml:"matches_first,omitempty"` // records equal those of the first create

	// Single record
	Occupation *string `yaml:"occupation,omitempty"`
	HasFamily  *bool   `yaml:"has_family,omitempty"`
	MinHP      *int    `yaml:"min_hp,omitempty"`
	MinAC      *int    `yaml:"min_ac,omitempty"`
	Valid      *bool   `yaml:"valid,omitempty"`
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	TestName string
	StepName string
	Success  bool
	Error    error
	Duration time.Duration
}

// TestJob represents a test suite to be executed
type TestJob struct {
	Name     string
	Suite    TestSuite
	CaseFile string
}

// TestRunResult contains the results of running an entire test suite
type TestRunResult struct {
	Job        TestJob
	Results    []TestResult
	Error      error
	Duration   time.Duration
	Population uuid.UUID // ID of the last population created by this suite
}
