package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afritokeni/ussd-engine/internal/model"
)

func TestGovernance_VoteLifecycle(t *testing.T) {
	ctx := context.Background()
	g := NewGovernance()
	g.AddProposal(model.Proposal{ID: "p1", Title: "Lower fees", EndsAt: time.Now().Add(time.Hour)})
	g.AddProposal(model.Proposal{ID: "p2", Title: "Closed", EndsAt: time.Now().Add(-time.Hour)})
	g.SetTokens(alice, 1_000)

	proposals, err := g.ActiveProposals(ctx)
	require.NoError(t, err)
	require.Len(t, proposals, 1)
	assert.Equal(t, "p1", proposals[0].ID)

	voted, err := g.HasVoted(ctx, alice, "p1")
	require.NoError(t, err)
	assert.False(t, voted)

	require.NoError(t, g.CastVote(ctx, model.Vote{ProposalID: "p1", Phone: alice, Stance: model.VoteYes, Tokens: 400}))

	power, err := g.VotingPower(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, model.VotingPower{Total: 1_000, Locked: 400}, power)

	voted, err = g.HasVoted(ctx, alice, "p1")
	require.NoError(t, err)
	assert.True(t, voted)

	votes, err := g.ActiveVotes(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, votes, 1)

	err = g.CastVote(ctx, model.Vote{ProposalID: "p1", Phone: alice, Stance: model.VoteNo, Tokens: 1})
	assert.ErrorIs(t, err, model.ErrAlreadyVoted)
}

func TestGovernance_CastVoteErrors(t *testing.T) {
	ctx := context.Background()
	g := NewGovernance()
	g.AddProposal(model.Proposal{ID: "p1", Title: "Lower fees"})
	g.SetTokens(alice, 100)

	tests := []struct {
		name string
		vote model.Vote
		want error
	}{
		{name: "unknown proposal", vote: model.Vote{ProposalID: "nope", Phone: alice, Tokens: 1}, want: model.ErrNotFound},
		{name: "too many tokens", vote: model.Vote{ProposalID: "p1", Phone: alice, Tokens: 101}, want: model.ErrInsufficientFunds},
		{name: "zero tokens", vote: model.Vote{ProposalID: "p1", Phone: alice}, want: model.ErrInsufficientFunds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, g.CastVote(ctx, tt.vote), tt.want)
		})
	}
}
