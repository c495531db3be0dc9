package polls

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Poll owns an ordered collection of options.
type Poll struct {
	bun.BaseModel `bun:"table:polls,alias:pol"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id"`
	Title         string     `bun:"title,notnull" json:"title"`
	Description   string     `bun:"description" json:"description"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"createdAt,omitempty"`
	Options       []*Option  `bun:"rel:has-many,join:id=poll_id" json:"options,omitempty"`
}

// Option is one answer of a poll. Votes is a denormalized counter kept
// in step with the votes table inside the vote transaction.
type Option struct {
	bun.BaseModel `bun:"table:options,alias:opt"`
	ID            uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id"`
	PollID        uuid.UUID `bun:"poll_id,notnull,type:uuid" json:"pollId"`
	Text          string    `bun:"text,notnull" json:"text"`
	Votes         int       `bun:"votes,notnull,default:0" json:"votes"`
	Position      int       `bun:"position,notnull,default:0" json:"position"`
}

// Vote links a user to one option of one poll.
type Vote struct {
	bun.BaseModel `bun:"table:votes,alias:vot"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id"`
	PollID        uuid.UUID  `bun:"poll_id,notnull,type:uuid" json:"pollId"`
	OptionID      uuid.UUID  `bun:"option_id,notnull,type:uuid" json:"optionId"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"userId"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"createdAt,omitempty"`
}

// OptionResult is one row of a poll's results.
type OptionResult struct {
	OptionID uuid.UUID `json:"optionId"`
	Text     string    `json:"text"`
	Votes    int       `json:"votes"`
}

// PollResults summarizes vote counts per option.
type PollResults struct {
	PollID     uuid.UUID      `json:"pollId"`
	Title      string         `json:"title"`
	TotalVotes int            `json:"totalVotes"`
	Options    []OptionResult `json:"options"`
}
