package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `
name: cart-total
description: Two services add up in the cart
flow:
  - invoke: cart.add
    args: {service_id: "9"}
  - invoke: cart.add
    args: {service_id: "11"}
    expect:
      case: ok
      result: {items: 2, total: 100}
assertions:
  - type: slot_count
    slot: cart
    count: 2
`

const failingScenario = `
name: wrong-provider
description: Plumbing is not assigned to provider1
flow:
  - invoke: booking.request
    args: {id: b-1, service_id: "1", customer_id: cust-1}
assertions:
  - type: final_state
    slot: bookings
    where: {id: b-1}
    expect: {providerId: provider1}
`

func writeScenarios(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, doc := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(doc), 0o644))
	}
	return dir
}

func TestScenario_AllPass(t *testing.T) {
	e := newCLIEnv(t)
	dir := writeScenarios(t, map[string]string{"cart.yaml": passingScenario, "notes.txt": "ignored"})

	var report ScenarioReport
	e.jsonData(&report, "scenario", dir)
	assert.Equal(t, 1, report.Total)
	assert.Equal(t, 1, report.Passed)
	require.Len(t, report.Scenarios, 1)
	assert.Equal(t, "cart-total", report.Scenarios[0].Name)

	// the configured database is untouched
	assert.Contains(t, e.mustRun("slots"), "No slots stored")
}

func TestScenario_FailureExitCode(t *testing.T) {
	e := newCLIEnv(t)
	dir := writeScenarios(t, map[string]string{"cart.yaml": passingScenario, "provider.yaml": failingScenario})

	out, err := e.run("scenario", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✓ cart-total")
	assert.Contains(t, out, "✗ wrong-provider")
	assert.Contains(t, out, "1 passed, 1 failed, 2 total")
}

func TestScenario_FilterAndSingleFile(t *testing.T) {
	e := newCLIEnv(t)
	dir := writeScenarios(t, map[string]string{"cart.yaml": passingScenario, "provider.yaml": failingScenario})

	out := e.mustRun("scenario", dir, "--filter", "cart*")
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")

	out = e.mustRun("scenario", filepath.Join(dir, "cart.yaml"))
	assert.Contains(t, out, "✓ cart-total")
}

func TestScenario_LoadError(t *testing.T) {
	e := newCLIEnv(t)
	dir := writeScenarios(t, map[string]string{"broken.yaml": "name: x\nflow: nope\n"})

	out, err := e.run("scenario", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ broken.yaml")
	assert.Contains(t, out, "failed to load scenario")
}

func TestScenario_MissingPath(t *testing.T) {
	e := newCLIEnv(t)

	_, err := e.run("scenario", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
