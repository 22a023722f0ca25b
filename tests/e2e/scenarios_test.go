package e2e

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gotrs-io/gotrs-smoke/internal/scenario"
	"github.com/gotrs-io/gotrs-smoke/tests/e2e/helpers"
)

func TestMain(m *testing.M) {
	code := m.Run()
	helpers.Shutdown()
	os.Exit(code)
}

func runCatalogScenario(t *testing.T, name string) error {
	t.Helper()

	env := helpers.Setup(t)
	sc, err := scenario.Lookup(name)
	require.NoError(t, err)

	s := env.NewSession(t)
	return scenario.Run(context.Background(), s, sc)
}

// TestHasTitle navigates to the home page and checks its title
func TestHasTitle(t *testing.T) {
	t.Parallel()
	require.NoError(t, runCatalogScenario(t, scenario.HasTitle))
}

// TestGetStartedVisible checks the Get started link is visible after the title check
func TestGetStartedVisible(t *testing.T) {
	t.Parallel()
	require.NoError(t, runCatalogScenario(t, scenario.GetStartedVisible))
}

// TestMissingElement asserts on an element that does not exist.
// The scenario always fails; this test checks it fails as an assertion.
func TestMissingElement(t *testing.T) {
	t.Parallel()
	err := runCatalogScenario(t, scenario.MissingElement)
	require.Error(t, err)

	var af *scenario.AssertionFailure
	require.ErrorAs(t, err, &af)
	assert.Equal(t, scenario.MissingElement, af.Scenario)
	t.Logf("expected failure: %v", err)
}

// TestGetStartedClick clicks the Get started link
func TestGetStartedClick(t *testing.T) {
	t.Parallel()
	require.NoError(t, runCatalogScenario(t, scenario.GetStartedClick))
}

// TestRerunSameOutcome runs every catalog scenario twice against the same site
func TestRerunSameOutcome(t *testing.T) {
	env := helpers.Setup(t)
	ctx := context.Background()

	for _, sc := range scenario.Catalog() {
		sc := sc
		t.Run(sc.Name, func(t *testing.T) {
			first := scenario.Run(ctx, env.NewSession(t), sc)
			second := scenario.Run(ctx, env.NewSession(t), sc)
			assert.Equal(t, first == nil, second == nil)
			assert.Equal(t, scenario.IsAssertionFailure(first), scenario.IsAssertionFailure(second))
			assert.Equal(t, sc.ExpectFailure, first != nil)
		})
	}
}

// TestScenarioFile runs the scenarios from SMOKE_SCENARIOS_FILE, if configured
func TestScenarioFile(t *testing.T) {
	env := helpers.Setup(t)
	scenarios := env.FileScenarios(t)
	if len(scenarios) == 0 {
		t.Skip("no scenarios file configured")
	}

	for _, sc := range scenarios {
		sc := sc
		t.Run(sc.Name, func(t *testing.T) {
			t.Parallel()
			err := scenario.Run(context.Background(), env.NewSession(t), sc)
			if sc.ExpectFailure {
				assert.True(t, scenario.IsAssertionFailure(err), "expected an assertion failure, got %v", err)
				return
			}
			require.NoError(t, err)
		})
	}
}
