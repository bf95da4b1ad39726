package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStats(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	f.add(t, "uno", "es")
	f.add(t, "uno", "es")
	f.add(t, "dos", "es")
	f.add(t, "un", "fr")
	gone := f.add(t, "tres", "es")
	m := f.master(t, gone.Entry.ID)
	f.clock.AdvanceDays(7)

	summary, err := f.svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, summary.CurrentDay)
	assert.Equal(t, 3, summary.TotalWords)
	assert.Equal(t, 4, summary.TotalEncounters)
	assert.Equal(t, map[string]int{"es": 2, "fr": 1}, summary.WordsByLanguage)
	assert.Equal(t, 1, summary.MasteredCount)

	// A demoted word counts as active again, not as mastered.
	_, err = f.svc.Demote(ctx, m.ID)
	require.NoError(t, err)
	summary, err = f.svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.TotalWords)
	assert.Zero(t, summary.MasteredCount)
}

func TestStats_Empty(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	summary, err := f.svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.TotalWords)
	assert.Zero(t, summary.TotalEncounters)
	assert.Zero(t, summary.MasteredCount)
	assert.Empty(t, summary.WordsByLanguage)
}

func TestListStruggling(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	easy := f.add(t, "fácil", "es")
	hard := f.add(t, "difícil", "es")
	f.add(t, "difícil", "es") // HP 5, not above the threshold
	_, err := f.svc.ReviewUnknown(ctx, hard.Entry.ID)
	require.NoError(t, err) // HP 7
	_, err = f.svc.ReviewUnknown(ctx, easy.Entry.ID)
	require.NoError(t, err) // HP 5
	f.add(t, "schwer", "de")
	f.add(t, "schwer", "de")
	f.add(t, "schwer", "de") // HP 7

	struggling, err := f.svc.ListStruggling(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, struggling, 2)
	for _, e := range struggling {
		assert.Greater(t, e.HP, 5)
	}

	spanish, err := f.svc.ListStruggling(ctx, "es", 0)
	require.NoError(t, err)
	require.Len(t, spanish, 1)
	assert.Equal(t, hard.Entry.ID, spanish[0].ID)
}
