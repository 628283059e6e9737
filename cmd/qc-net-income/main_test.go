package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/qc-net-income/internal/server"
	"github.com/iwvelando/qc-net-income/pkg/optimization"
	"github.com/iwvelando/qc-net-income/pkg/taxengine"
)

const testConfigPath = "../../test/test_config.yaml"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCalcCommandCSV(t *testing.T) {
	out, err := execute(t, "calc", "--config", testConfigPath, "--log-level", "error",
		"--income", "60 000", "--year", "2099", "--output-format", "csv")
	if err != nil {
		t.Fatalf("calc error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected header and one row, got:\n%s", out)
	}
	if !strings.HasPrefix(lines[0], "scenario,year,gross income") {
		t.Errorf("Unexpected header %q", lines[0])
	}
	want := ",2099,60000.00,9500.00,8000.00,2850.00,300.00,750.00,21400.00,38600.00,40.00,"
	if !strings.Contains(lines[1], want) {
		t.Errorf("Row %q does not contain %q", lines[1], want)
	}
}

func TestCalcCommandPretty(t *testing.T) {
	out, err := execute(t, "calc", "--config", testConfigPath, "--log-level", "error",
		"--income", "60000", "--year", "2099")
	if err != nil {
		t.Fatalf("calc error = %v", err)
	}
	if !strings.Contains(out, "Revenu net") || !strings.Contains(out, "38\u00a0600,00\u00a0$") {
		t.Errorf("Unexpected pretty output:\n%s", out)
	}
}

func TestCalcCommandErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"Negative income", []string{"--income=-5"}, taxengine.ErrInvalidIncome},
		{"Not a number", []string{"--income", "lots"}, taxengine.ErrInvalidIncome},
		{"Unknown year", []string{"--income", "50000", "--year", "1999"}, taxengine.ErrUnknownYear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"calc", "--config", testConfigPath, "--log-level", "error"}, tt.args...)
			_, err := execute(t, args...)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("calc error = %v, expected %v", err, tt.wantErr)
			}
		})
	}

	if _, err := execute(t, "calc", "--config", testConfigPath); err == nil {
		t.Error("Expected error when --income is missing")
	}
}

func TestMarginalCommand(t *testing.T) {
	out, err := execute(t, "marginal", "--config", testConfigPath, "--log-level", "error",
		"--income", "60000", "--year", "2099", "--output-format", "json")
	if err != nil {
		t.Fatalf("marginal error = %v", err)
	}

	var payload struct {
		Year         int     `json:"year"`
		MarginalRate float64 `json:"marginalRate"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if payload.Year != 2099 || payload.MarginalRate != 40 {
		t.Errorf("Unexpected payload %+v", payload)
	}

	out, err = execute(t, "marginal", "--config", testConfigPath, "--log-level", "error",
		"--income", "60000", "--year", "2099")
	if err != nil {
		t.Fatalf("marginal error = %v", err)
	}
	if strings.TrimSpace(out) != "40,00\u00a0%" {
		t.Errorf("Unexpected pretty marginal rate %q", out)
	}
}

func TestScenariosCommand(t *testing.T) {
	out, err := execute(t, "scenarios", "--config", testConfigPath, "--log-level", "error", "--output-format", "json")
	if err != nil {
		t.Fatalf("scenarios error = %v", err)
	}

	var payload struct {
		Scenarios []struct {
			Name     string `json:"name"`
			Baseline bool   `json:"baseline"`
		} `json:"scenarios"`
		GrossUp []optimization.Summary `json:"grossUp"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(payload.Scenarios) != 3 {
		t.Fatalf("Expected 3 active scenarios, got %d", len(payload.Scenarios))
	}
	if !payload.Scenarios[0].Baseline || payload.Scenarios[1].Baseline {
		t.Errorf("Expected only the first scenario to be the baseline: %+v", payload.Scenarios)
	}
	if len(payload.GrossUp) != 2 {
		t.Errorf("Expected 2 gross-up summaries, got %d", len(payload.GrossUp))
	}
}

func TestGrossUpCommand(t *testing.T) {
	out, err := execute(t, "grossup", "--config", testConfigPath, "--log-level", "error",
		"--net", "38600", "--year", "2099", "--output-format", "json")
	if err != nil {
		t.Fatalf("grossup error = %v", err)
	}

	var summaries []optimization.Summary
	if err := json.Unmarshal([]byte(out), &summaries); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("Expected one summary, got %d", len(summaries))
	}
	if !summaries[0].Converged || math.Abs(summaries[0].GrossIncome-60000) > 0.02 {
		t.Errorf("Unexpected summary %+v", summaries[0])
	}
}

func TestGrossUpCommandWithoutTargets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("defaultYear: 2025\n"), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	_, err := execute(t, "grossup", "--config", path, "--log-level", "error")
	if err == nil || !strings.Contains(err.Error(), "no gross-up targets") {
		t.Errorf("Expected no gross-up targets error, got %v", err)
	}
}

func TestApplyServeOverrides(t *testing.T) {
	cfg := server.DefaultConfig()
	if err := applyServeOverrides(cfg, ":9090", "64K"); err != nil {
		t.Fatalf("applyServeOverrides() error = %v", err)
	}
	if cfg.Address != ":9090" {
		t.Errorf("Address = %q, expected :9090", cfg.Address)
	}
	if cfg.RequestSizeBytes() != 64*1024 {
		t.Errorf("RequestSizeBytes() = %d, expected %d", cfg.RequestSizeBytes(), 64*1024)
	}

	untouched := server.DefaultConfig()
	if err := applyServeOverrides(untouched, "", ""); err != nil {
		t.Fatalf("applyServeOverrides() without flags error = %v", err)
	}
	if untouched.RequestSizeBytes() != server.DefaultConfig().RequestSizeBytes() {
		t.Errorf("RequestSizeBytes() changed without a flag: %d", untouched.RequestSizeBytes())
	}

	for _, size := range []string{"lots", "0"} {
		if err := applyServeOverrides(server.DefaultConfig(), "", size); err == nil {
			t.Errorf("Expected error for --max-request-size %q", size)
		}
	}
}

func TestYearsCommand(t *testing.T) {
	out, err := execute(t, "years", "--config", testConfigPath, "--log-level", "error")
	if err != nil {
		t.Fatalf("years error = %v", err)
	}
	if out != "2024\n2025 (default)\n2099\n" {
		t.Errorf("Unexpected years output %q", out)
	}

	out, err = execute(t, "years", "--config", testConfigPath, "--log-level", "error", "--year", "2099", "--export")
	if err != nil {
		t.Fatalf("years --export error = %v", err)
	}
	for _, want := range []string{"taxYears:", "year: 2099", "upTo: 50000", "exemption: 3000"} {
		if !strings.Contains(out, want) {
			t.Errorf("Export missing %q:\n%s", want, out)
		}
	}
}

func TestMissingConfigFile(t *testing.T) {
	if _, err := execute(t, "years", "--config", "does-not-exist.yaml"); err == nil {
		t.Error("Expected error for an explicit config path that does not exist")
	}
}

func TestInvalidOutputFormat(t *testing.T) {
	if _, err := execute(t, "years", "--config", testConfigPath, "--log-level", "error", "--output-format", "xml"); err == nil {
		t.Error("Expected error for xml output format")
	}
}
