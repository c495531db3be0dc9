package polls_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/pollwise/pollwise/polls"
)

func openTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	models := []any{
		(*polls.Poll)(nil),
		(*polls.Option)(nil),
		(*polls.Vote)(nil),
	}

	for _, model := range models {
		_, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx)
		require.NoError(t, err)
	}

	return db
}

func createTestPoll(t *testing.T, repo polls.Repository, title string, options ...string) *polls.Poll {
	t.Helper()

	poll := &polls.Poll{Title: title}
	for _, text := range options {
		poll.Options = append(poll.Options, &polls.Option{Text: text})
	}

	created, err := repo.Create(context.Background(), poll)
	require.NoError(t, err)

	return created
}

func TestRepositoryPollLifecycle(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := polls.NewRepository(db)

	poll := createTestPoll(t, repo, "Favorite color?", "Red", "Green", "Blue")

	t.Run("options keep their slice order", func(t *testing.T) {
		found, err := repo.GetByID(ctx, poll.ID)
		require.NoError(t, err)

		require.Len(t, found.Options, 3)
		assert.Equal(t, "Red", found.Options[0].Text)
		assert.Equal(t, "Green", found.Options[1].Text)
		assert.Equal(t, "Blue", found.Options[2].Text)
		assert.Equal(t, 0, found.Options[0].Position)
		assert.Equal(t, 2, found.Options[2].Position)
	})

	t.Run("unknown poll id is not found", func(t *testing.T) {
		_, err := repo.GetByID(ctx, uuid.New())
		assert.Equal(t, polls.ErrPollNotFound, err)
	})

	t.Run("list includes the poll with its options", func(t *testing.T) {
		records, err := repo.List(ctx)
		require.NoError(t, err)

		require.Len(t, records, 1)
		assert.Equal(t, poll.ID, records[0].ID)
		assert.Len(t, records[0].Options, 3)
	})

	t.Run("delete removes the poll and reports it once", func(t *testing.T) {
		victim := createTestPoll(t, repo, "Short lived?", "Yes", "No")

		deleted, err := repo.Delete(ctx, victim.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		_, err = repo.GetByID(ctx, victim.ID)
		assert.Equal(t, polls.ErrPollNotFound, err)

		deleted, err = repo.Delete(ctx, victim.ID)
		require.NoError(t, err)
		assert.False(t, deleted)
	})
}

func TestRepositoryCastVote(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := polls.NewRepository(db)

	poll := createTestPoll(t, repo, "Tabs or spaces?", "Tabs", "Spaces")
	other := createTestPoll(t, repo, "Coffee or tea?", "Coffee", "Tea")

	alice := uuid.New()
	bob := uuid.New()

	t.Run("votes bump the option counter transactionally", func(t *testing.T) {
		_, err := repo.CastVote(ctx, poll.ID, poll.Options[0].ID, alice)
		require.NoError(t, err)

		_, err = repo.CastVote(ctx, poll.ID, poll.Options[0].ID, bob)
		require.NoError(t, err)

		found, err := repo.GetByID(ctx, poll.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, found.Options[0].Votes)
		assert.Equal(t, 0, found.Options[1].Votes)
	})

	t.Run("second vote by the same user is rejected", func(t *testing.T) {
		_, err := repo.CastVote(ctx, poll.ID, poll.Options[1].ID, alice)
		assert.Equal(t, polls.ErrAlreadyVoted, err)

		found, err := repo.GetByID(ctx, poll.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, found.Options[0].Votes)
		assert.Equal(t, 0, found.Options[1].Votes)
	})

	t.Run("option of another poll is rejected", func(t *testing.T) {
		_, err := repo.CastVote(ctx, poll.ID, other.Options[0].ID, uuid.New())
		assert.Equal(t, polls.ErrOptionMismatch, err)
	})

	t.Run("unknown option is rejected", func(t *testing.T) {
		_, err := repo.CastVote(ctx, poll.ID, uuid.New(), uuid.New())
		assert.Equal(t, polls.ErrOptionMismatch, err)
	})

	t.Run("results aggregate the counters", func(t *testing.T) {
		results, err := repo.Results(ctx, poll.ID)
		require.NoError(t, err)

		assert.Equal(t, poll.ID, results.PollID)
		assert.Equal(t, 2, results.TotalVotes)
		require.Len(t, results.Options, 2)
		assert.Equal(t, 2, results.Options[0].Votes)
		assert.Equal(t, 0, results.Options[1].Votes)
	})
}
