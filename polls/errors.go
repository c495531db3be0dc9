package polls

import "github.com/goliatone/go-errors"

const (
	TextCodePollNotFound   = "POLL_NOT_FOUND"
	TextCodeOptionMismatch = "OPTION_MISMATCH"
	TextCodeAlreadyVoted   = "ALREADY_VOTED"
)

var (
	// ErrPollNotFound is returned when the requested poll id has no row.
	ErrPollNotFound = errors.New("poll not found", errors.CategoryNotFound).
			WithTextCode(TextCodePollNotFound).
			WithCode(errors.CodeNotFound)

	// ErrOptionMismatch is returned when the chosen option does not
	// belong to the poll being voted on.
	ErrOptionMismatch = errors.New("option does not belong to this poll", errors.CategoryValidation).
			WithTextCode(TextCodeOptionMismatch).
			WithCode(errors.CodeBadRequest)

	// ErrAlreadyVoted is returned when the user has already cast a vote
	// on the poll.
	ErrAlreadyVoted = errors.New("user has already voted on this poll", errors.CategoryConflict).
			WithTextCode(TextCodeAlreadyVoted).
			WithCode(errors.CodeConflict)
)
