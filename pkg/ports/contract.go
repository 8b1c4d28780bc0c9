package ports

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/aretw0/pushdown/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore
// implementation adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	newSession := func(id string) *domain.Session {
		cfg := domain.Configuration{
			State:     "q1",
			Remaining: "))",
			Stack:     domain.NewStack("Z", "P", "P"),
		}
		s := domain.NewSession(id, "parens", "(())", cfg)
		s.Steps = 2
		return s
	}

	t.Run("Save and Load", func(t *testing.T) {
		session := newSession(sessionID)
		require.NoError(t, store.Save(ctx, session), "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, session.ID, loaded.ID)
		assert.Equal(t, session.Automaton, loaded.Automaton)
		assert.Equal(t, session.Input, loaded.Input)
		assert.Equal(t, session.Steps, loaded.Steps)
		assert.Equal(t, domain.StatusRunning, loaded.Status)
		assert.True(t, session.Configuration.Equal(loaded.Configuration),
			"configuration mismatch: %s vs %s", session.Configuration, loaded.Configuration)
	})

	t.Run("Load Is Isolated From Caller", func(t *testing.T) {
		session := newSession(sessionID)
		require.NoError(t, store.Save(ctx, session))
		session.Steps = 99

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, 2, loaded.Steps)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, newSession(sessionID)))

		require.NoError(t, store.Delete(ctx, sessionID), "Delete should not return error")

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")

		assert.NoError(t, store.Delete(ctx, sessionID), "Deleting twice should not fail")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		require.NoError(t, store.Save(ctx, newSession(id1)))
		require.NoError(t, store.Save(ctx, newSession(id2)))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}

// RunDefinitionLoaderContract verifies a DefinitionLoader against the
// definitions it is expected to serve, keyed by name.
func RunDefinitionLoaderContract(t *testing.T, loader DefinitionLoader, expected map[string]domain.Definition) {
	t.Helper()
	ctx := context.Background()

	t.Run("Get", func(t *testing.T) {
		for name, want := range expected {
			got, err := loader.Get(ctx, name)
			require.NoError(t, err, "unexpected error getting %s", name)
			assert.Equal(t, want.InitialState, got.InitialState, name)
			assert.Equal(t, want.InitialStackSymbol, got.InitialStackSymbol, name)
			assert.ElementsMatch(t, want.States, got.States, name)
			assert.ElementsMatch(t, want.FinalStates, got.FinalStates, name)
			assert.Equal(t, want.AcceptanceMode.Normalize(), got.AcceptanceMode.Normalize(), name)
			assert.Equal(t, ruleLabels(want), ruleLabels(got), name)
		}
	})

	t.Run("Get Not Found", func(t *testing.T) {
		_, err := loader.Get(ctx, "non-existent-automaton")
		assert.ErrorIs(t, err, domain.ErrAutomatonNotFound)
	})

	t.Run("List", func(t *testing.T) {
		names, err := loader.List(ctx)
		require.NoError(t, err)
		assert.True(t, slices.IsSorted(names), "names should be sorted: %v", names)
		assert.Len(t, names, len(expected))
		for name := range expected {
			assert.Contains(t, names, name)
		}
	})
}

func ruleLabels(def domain.Definition) []string {
	rules := def.Transitions.Rules()
	labels := make([]string, len(rules))
	for i, r := range rules {
		labels[i] = string(r.From) + " -> " + string(r.To) + ": " + r.Label()
	}
	return labels
}
