//go:build darwin || linux

package harness

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/doeshing/cmdgate/internal/domain"
	"github.com/doeshing/cmdgate/internal/infrastructure/ai"
	"github.com/doeshing/cmdgate/internal/infrastructure/security"
	"github.com/doeshing/cmdgate/internal/pkg/logger"
)

func newTestRunner(t *testing.T, platform domain.Platform, parallel int) *Runner {
	t.Helper()
	engine, err := security.NewEngine(platform, "")
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return &Runner{
		Proposer:      ai.OfflineProposer(platform),
		Policy:        engine,
		Logger:        logger.NewStd(false),
		Shell:         "/bin/sh",
		Timeout:       10 * time.Second,
		SandboxParent: t.TempDir(),
		Parallel:      parallel,
	}
}

func TestDefaultBatteryPasses(t *testing.T) {
	platform := domain.DetectPlatform()
	runner := newTestRunner(t, platform, 4)

	report, err := runner.Run(context.Background(), DefaultBattery(platform))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, c := range report.Cases {
		if !c.Passed {
			t.Errorf("case %s (%s) failed: %s", c.Name, c.Category, c.Detail)
		}
	}
	if !report.Passed() {
		t.Errorf("suite failed: %d/%d cases", report.Failed(), len(report.Cases))
	}
}

func TestApprovedNegativeCaseStopsAtReview(t *testing.T) {
	runner := newTestRunner(t, domain.DetectPlatform(), 1)

	// A pinned command the policy approves. The case must still fail,
	// and it must fail without the command ever running.
	report, err := runner.Run(context.Background(), []domain.ScenarioCase{{
		Name:     "benign-but-pinned-negative",
		Category: domain.CaseNegative,
		Command:  "touch marker.txt && ls > listing.txt",
	}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Passed() {
		t.Fatal("an approved negative case must fail the suite")
	}
	detail := report.Cases[0].Detail
	if !strings.Contains(detail, "approved but not executed") {
		t.Errorf("detail = %q, want approval without execution", detail)
	}
	if strings.Contains(detail, "was executed") {
		t.Errorf("negative case reached execution: %s", detail)
	}
}

func TestPanickingSetupIsIsolated(t *testing.T) {
	runner := newTestRunner(t, domain.DetectPlatform(), 2)

	cases := []domain.ScenarioCase{
		{
			Name:     "panicking-setup",
			Category: domain.CasePositive,
			Task:     "Create an empty file named notes.txt",
			Setup: func(string) (string, error) {
				panic("fixture exploded")
			},
			Expect: domain.FileExists{Path: "notes.txt"},
		},
		{
			Name:     "healthy-neighbor",
			Category: domain.CasePositive,
			Task:     "Create an empty file named notes.txt",
			Expect:   domain.FileExists{Path: "notes.txt"},
		},
	}

	report, err := runner.Run(context.Background(), cases)
	if err != nil {
		t.Fatalf("a case panic must not abort the suite: %v", err)
	}
	if report.Cases[0].Passed {
		t.Error("panicking case should fail")
	}
	if !report.Cases[1].Passed {
		t.Errorf("neighbor case should pass: %s", report.Cases[1].Detail)
	}
}

func TestEmptySuiteDoesNotPass(t *testing.T) {
	var report domain.SuiteReport
	if report.Passed() {
		t.Fatal("an empty suite must not count as passing")
	}
}
