package service

import (
	"context"
	"testing"

	"MatchSync/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ingestOdds(t *testing.T, env *testEnv, matchID int64, h, x, a float64) {
	t.Helper()
	_, err := env.ingest.IngestMatch(context.Background(), record(matchID, h, x, a))
	require.NoError(t, err)
}

func TestPredict_FavoriteHome(t *testing.T) {
	env := setupEnv(t)
	ingestOdds(t, env, 1, 1.5, 3.0, 6.0)

	p, err := env.query.Predict(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, PickHome, p.Pick)
	assert.Equal(t, 1.5, p.OddsUsed)
	assert.Equal(t, 0.67, p.Confidence) // round(1/1.5, 2)
	assert.Equal(t, "Lyon", p.Home)
	assert.Equal(t, "Marseille", p.Away)
}

func TestPredict_UnclampedRounding(t *testing.T) {
	env := setupEnv(t)
	ingestOdds(t, env, 2, 1.2, 3.0, 6.0)

	p, err := env.query.Predict(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, PickHome, p.Pick)
	assert.Equal(t, 0.83, p.Confidence) // 1/1.2=0.833…，未触截断
}

func TestPredict_TieBreakFixedOrder(t *testing.T) {
	env := setupEnv(t)
	ingestOdds(t, env, 3, 2.0, 2.0, 2.0)

	p, err := env.query.Predict(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, PickHome, p.Pick) // 并列取 HOME→DRAW→AWAY
	assert.Equal(t, 2.0, p.OddsUsed)
	assert.Equal(t, 0.5, p.Confidence)
}

func TestPredict_FavoriteAway(t *testing.T) {
	env := setupEnv(t)
	ingestOdds(t, env, 4, 4.2, 3.6, 1.8)

	p, err := env.query.Predict(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, PickAway, p.Pick)
	assert.Equal(t, 1.8, p.OddsUsed)
	assert.Equal(t, 0.56, p.Confidence) // 1/1.8=0.555…
}

func TestPredict_ClampCeiling(t *testing.T) {
	env := setupEnv(t)
	ingestOdds(t, env, 5, 1.01, 8.0, 15.0)

	p, err := env.query.Predict(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 0.95, p.Confidence) // 1/1.01≈0.99，截断到上界
}

func TestPredict_ClampFloor(t *testing.T) {
	env := setupEnv(t)
	ingestOdds(t, env, 6, 3.1, 3.2, 3.3)

	p, err := env.query.Predict(context.Background(), 6)
	require.NoError(t, err)
	assert.Equal(t, PickHome, p.Pick)
	assert.Equal(t, 0.5, p.Confidence) // 1/3.1≈0.32，截断到下界
}

func TestPredict_NotFound(t *testing.T) {
	env := setupEnv(t)

	_, err := env.query.Predict(context.Background(), 404)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestListMatches_MostRecentFirst(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	ingestOdds(t, env, 10, 2.0, 3.0, 4.0)
	ingestOdds(t, env, 11, 2.0, 3.0, 4.0)
	ingestOdds(t, env, 10, 1.9, 3.1, 4.2) // 10 号更新后应排最前

	matches, err := env.query.ListMatches(ctx)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, int64(10), matches[0].MatchID)
	assert.Equal(t, int64(11), matches[1].MatchID)
}
