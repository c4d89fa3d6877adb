package model

import (
	"context"
	"time"
)

// GovernanceLedger is the durable record of DAO proposals and votes.
type GovernanceLedger interface {
	ActiveProposals(ctx context.Context) ([]Proposal, error)
	VotingPower(ctx context.Context, phone string) (VotingPower, error)
	HasVoted(ctx context.Context, phone, proposalID string) (bool, error)
	CastVote(ctx context.Context, vote Vote) error
	ActiveVotes(ctx context.Context, phone string) ([]Vote, error)
}

// Proposal is an open governance question.
type Proposal struct {
	ID     string    `json:"id"`
	Title  string    `json:"title"`
	EndsAt time.Time `json:"ends_at"`
}

// VotingPower is the governance token position of a holder.
type VotingPower struct {
	Total  int64
	Locked int64
}

// Available returns the tokens that may still be committed.
func (p VotingPower) Available() int64 {
	if p.Locked >= p.Total {
		return 0
	}
	return p.Total - p.Locked
}

// VoteStance is the position taken on a proposal.
type VoteStance string

const (
	VoteYes     VoteStance = "yes"
	VoteNo      VoteStance = "no"
	VoteAbstain VoteStance = "abstain"
)

// Vote commits Tokens to a stance on a proposal. Committed tokens stay locked
// until the proposal closes.
type Vote struct {
	ProposalID    string
	ProposalTitle string
	Phone         string
	Stance        VoteStance
	Tokens        int64
	CreatedAt     time.Time
}
