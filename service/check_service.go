package service

import (
	"context"
	"time"

	"github.com/ludo-technologies/tsindex/domain"
	"github.com/ludo-technologies/tsindex/internal/rules"
	"github.com/ludo-technologies/tsindex/internal/serializer"
	"github.com/ludo-technologies/tsindex/internal/version"
)

// CheckServiceImpl implements domain.CheckService: it loads a persisted
// index, constructs the configured rule list and evaluates it. Violations
// are transient and recomputed per run.
type CheckServiceImpl struct {
	// Specs are the fallback rule specs (from the discovered config) used
	// when the request names no standalone rules file.
	Specs []rules.Spec
}

// NewCheckService creates a check service with the given fallback specs.
func NewCheckService(specs []rules.Spec) *CheckServiceImpl {
	return &CheckServiceImpl{Specs: specs}
}

// Check evaluates the rules against the request's Snapshot, loading it from
// IndexPath first when necessary.
func (s *CheckServiceImpl) Check(ctx context.Context, req domain.CheckRequest) (*domain.CheckResponse, error) {
	snap := req.Snapshot
	if snap == nil {
		loaded, err := serializer.New().ReadFile(req.IndexPath)
		if err != nil {
			return nil, err
		}
		snap = loaded
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ruleList, err := s.loadRules(req.RulesPath)
	if err != nil {
		return nil, err
	}

	checker := rules.NewChecker(ruleList)
	violations := checker.Run(snap)

	summary := domain.CheckSummary{
		FilesChecked:    snap.FileCount(),
		RulesEvaluated:  len(ruleList),
		TotalViolations: len(violations),
	}
	if len(violations) > 0 {
		summary.ByRule = make(map[string]int)
		summary.BySeverity = make(map[string]int)
		for _, v := range violations {
			summary.ByRule[v.Rule]++
			summary.BySeverity[string(v.Severity)]++
		}
	}

	return &domain.CheckResponse{
		Violations:  violations,
		Summary:     summary,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Version:     version.Version,
	}, nil
}

func (s *CheckServiceImpl) loadRules(rulesPath string) ([]domain.Rule, error) {
	if rulesPath != "" {
		return rules.LoadFile(rulesPath)
	}
	if len(s.Specs) == 0 {
		return nil, &domain.ConfigError{Reason: "no rules configured: pass --rules or add a rules section to the config"}
	}
	return rules.FromSpecs(s.Specs)
}
