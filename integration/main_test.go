//go:build integration

package integration

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/jwebster45206/npc-engine/integration/runner"
)

var caseFlag = flag.String("case", "", "Name of test case to run (from integration/cases/)")
var errFlag = flag.String("err", "continue", "Error handling mode: 'continue' (run all steps) or 'exit' (stop on first failure)")

func TestMain(m *testing.M) {
	fmt.Printf("Running NPC Engine Integration Tests\n")
	fmt.Printf("   API Base URL: %s\n", apiBaseURL())
	os.Exit(m.Run())
}

func TestIntegrationSuites(t *testing.T) {
	if *caseFlag != "" {
		t.Skip("Skipping bulk run (-case given)")
	}

	files, err := discoverTestFiles("cases")
	if err != nil {
		t.Fatalf("Failed to discover test files: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("No test files found in cases directory")
	}
	runFiles(t, newRunner(t, runner.ErrorHandlingContinue), files)
}

// TestSingleSuite runs the cases named by -case, comma separated.
func TestSingleSuite(t *testing.T) {
	if *caseFlag == "" {
		t.Skip("Skipping single suite test (use -case flag to run)")
	}
	if *errFlag != "exit" && *errFlag != "continue" {
		t.Fatalf("Invalid -err flag value: %s (must be 'exit' or 'continue')", *errFlag)
	}

	var files []string
	for _, name := range strings.Split(*caseFlag, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if !strings.HasSuffix(name, ".yaml") {
			name += ".yaml"
		}
		files = append(files, filepath.Join("cases", name))
	}
	if len(files) == 0 {
		t.Fatalf("No valid test cases found in -case flag: %s", *caseFlag)
	}
	runFiles(t, newRunner(t, runner.ErrorHandlingMode(*errFlag)), files)
}

func newRunner(t *testing.T, mode runner.ErrorHandlingMode) *runner.Runner {
	t.Helper()
	r := runner.NewRunner(apiBaseURL())
	r.Timeout = time.Duration(getIntEnv("TEST_TIMEOUT_SECONDS", 30)) * time.Second
	r.ErrorHandlingMode = mode
	r.Logger = func(format string, args ...interface{}) {
		fmt.Printf(format+"\n", args...)
	}

	ctx, cancel := context.WithTimeout(context.Background(), runner.HealthTimeout+5*time.Second)
	defer cancel()
	if err := runner.WaitForHealthy(ctx, r.Client, r.BaseURL); err != nil {
		t.Fatalf("API not reachable: %v", err)
	}
	return r
}

func runFiles(t *testing.T, r *runner.Runner, files []string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	var passed, failed []string
	for _, file := range files {
		jobs, err := runner.LoadTestSuiteWithExpansion(file, "cases")
		if err != nil {
			t.Errorf("Failed to load test suite %s: %v", file, err)
			failed = append(failed, file+": load error")
			continue
		}

		for _, job := range jobs {
			t.Logf("Running test suite: %s (%d steps)", job.Name, len(job.Suite.Steps))
			result, err := r.RunSuite(ctx, job.Suite)
			if err != nil && result.Error == nil {
				result.Error = err
			}
			t.Logf("Population ID: %s", result.Population)

			for _, step := range result.Results {
				if step.Success {
					t.Logf("   ✓ %s (%v)", step.StepName, step.Duration)
				} else {
					t.Errorf("   ✗ %s: %v", step.StepName, step.Error)
				}
			}
			if result.Error != nil {
				failed = append(failed, fmt.Sprintf("%s: %v", job.Name, result.Error))
			} else {
				passed = append(passed, job.Name)
			}
		}
	}

	t.Logf("Integration Test Summary:")
	t.Logf("   Passed: %d", len(passed))
	t.Logf("   Failed: %d", len(failed))
	if len(failed) > 0 {
		for _, failure := range failed {
			t.Logf("   - %s", failure)
		}
		t.Fatalf("Integration tests failed")
	}
}

// discoverTestFiles lists the regular suites in dir. Sequences are skipped
// because their cases are already run on their own.
func discoverTestFiles(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	var out []string
	for _, file := range files {
		suite, err := runner.LoadTestSuite(file)
		if err != nil {
			return nil, err
		}
		if !suite.IsSequence() {
			out = append(out, file)
		}
	}
	sort.Strings(out)
	return out, nil
}

func apiBaseURL() string {
	if v := os.Getenv("API_BASE_URL"); v != "" {
		return v
	}
	return "http://localhost:8080"
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
