package polls

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository persists polls, options and votes. Vote counters on
// options are maintained inside the same transaction as the vote row.
type Repository interface {
	Create(ctx context.Context, poll *Poll) (*Poll, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Poll, error)
	List(ctx context.Context) ([]*Poll, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	CastVote(ctx context.Context, pollID, optionID, userID uuid.UUID) (*Vote, error)
	Results(ctx context.Context, pollID uuid.UUID) (*PollResults, error)
}

type repo struct {
	db *bun.DB
}

var _ Repository = (*repo)(nil)

func NewRepository(db *bun.DB) Repository {
	return &repo{db: db}
}

// Create inserts a poll and its options atomically. Options get their
// position from slice order.
func (r *repo) Create(ctx context.Context, poll *Poll) (*Poll, error) {
	if poll.ID == uuid.Nil {
		poll.ID = uuid.New()
	}

	err := r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(poll).Exec(ctx); err != nil {
			return err
		}

		for i, opt := range poll.Options {
			if opt.ID == uuid.Nil {
				opt.ID = uuid.New()
			}
			opt.PollID = poll.ID
			opt.Position = i
		}

		if len(poll.Options) > 0 {
			if _, err := tx.NewInsert().Model(&poll.Options).Exec(ctx); err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("create poll: %w", err)
	}

	return poll, nil
}

func (r *repo) GetByID(ctx context.Context, id uuid.UUID) (*Poll, error) {
	poll := &Poll{}

	err := r.db.NewSelect().
		Model(poll).
		Relation("Options", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("position ASC")
		}).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPollNotFound
		}
		return nil, err
	}

	return poll, nil
}

func (r *repo) List(ctx context.Context) ([]*Poll, error) {
	var records []*Poll

	err := r.db.NewSelect().
		Model(&records).
		Relation("Options", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("position ASC")
		}).
		Order("created_at DESC").
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return records, nil
}

// Delete removes a poll and its dependent rows. Returns false when the
// poll did not exist.
func (r *repo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	var deleted bool

	err := r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*Vote)(nil)).
			Where("poll_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}

		if _, err := tx.NewDelete().
			Model((*Option)(nil)).
			Where("poll_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}

		res, err := tx.NewDelete().
			Model((*Poll)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return err
		}

		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}

		deleted = rows > 0

		return nil
	})

	if err != nil {
		return false, err
	}

	return deleted, nil
}

// CastVote records one vote per user per poll and bumps the option
// counter in the same transaction.
func (r *repo) CastVote(ctx context.Context, pollID, optionID, userID uuid.UUID) (*Vote, error) {
	vote := &Vote{
		ID:       uuid.New(),
		PollID:   pollID,
		OptionID: optionID,
		UserID:   userID,
	}

	err := r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		option := &Option{}

		err := tx.NewSelect().
			Model(option).
			Where("?TableAlias.id = ?", optionID).
			Limit(1).
			Scan(ctx)

		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrOptionMismatch
			}
			return err
		}

		if option.PollID != pollID {
			return ErrOptionMismatch
		}

		exists, err := tx.NewSelect().
			Model((*Vote)(nil)).
			Where("poll_id = ?", pollID).
			Where("user_id = ?", userID).
			Exists(ctx)

		if err != nil {
			return err
		}

		if exists {
			return ErrAlreadyVoted
		}

		if _, err := tx.NewInsert().Model(vote).Exec(ctx); err != nil {
			return err
		}

		_, err = tx.NewUpdate().
			Model((*Option)(nil)).
			Set("votes = votes + 1").
			Where("id = ?", optionID).
			Exec(ctx)

		return err
	})

	if err != nil {
		return nil, err
	}

	return vote, nil
}

func (r *repo) Results(ctx context.Context, pollID uuid.UUID) (*PollResults, error) {
	poll, err := r.GetByID(ctx, pollID)
	if err != nil {
		return nil, err
	}

	results := &PollResults{
		PollID:  poll.ID,
		Title:   poll.Title,
		Options: make([]OptionResult, 0, len(poll.Options)),
	}

	for _, opt := range poll.Options {
		results.TotalVotes += opt.Votes
		results.Options = append(results.Options, OptionResult{
			OptionID: opt.ID,
			Text:     opt.Text,
			Votes:    opt.Votes,
		})
	}

	return results, nil
}
