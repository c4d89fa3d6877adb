package memory

import (
	"context"
	"sync"
	"time"

	"github.com/afritokeni/ussd-engine/internal/model"
)

var _ model.GovernanceLedger = (*Governance)(nil)

// Governance keeps proposals, token holdings and votes in memory.
type Governance struct {
	mu        sync.RWMutex
	proposals []model.Proposal
	holdings  map[string]int64
	votes     map[string][]model.Vote
	now       func() time.Time
}

// NewGovernance creates new Governance instance.
func NewGovernance() *Governance {
	return &Governance{
		holdings: make(map[string]int64),
		votes:    make(map[string][]model.Vote),
		now:      time.Now,
	}
}

// AddProposal opens a proposal.
func (g *Governance) AddProposal(p model.Proposal) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.proposals = append(g.proposals, p)
}

// SetTokens sets the governance tokens held by phone.
func (g *Governance) SetTokens(phone string, tokens int64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.holdings[phone] = tokens
}

func (g *Governance) active(p model.Proposal) bool {
	return p.EndsAt.IsZero() || p.EndsAt.After(g.now())
}

func (g *Governance) proposal(id string) (model.Proposal, bool) {
	for _, p := range g.proposals {
		if p.ID == id {
			return p, true
		}
	}
	return model.Proposal{}, false
}

// ActiveProposals returns the proposals still open for voting.
func (g *Governance) ActiveProposals(_ context.Context) ([]model.Proposal, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []model.Proposal
	for _, p := range g.proposals {
		if g.active(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

// VotingPower returns the holding of phone and the part locked in open votes.
func (g *Governance) VotingPower(_ context.Context, phone string) (model.VotingPower, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.power(phone), nil
}

func (g *Governance) power(phone string) model.VotingPower {
	power := model.VotingPower{Total: g.holdings[phone]}
	for _, v := range g.votes[phone] {
		if p, ok := g.proposal(v.ProposalID); ok && g.active(p) {
			power.Locked += v.Tokens
		}
	}
	return power
}

// HasVoted reports whether phone already voted on proposalID.
func (g *Governance) HasVoted(_ context.Context, phone, proposalID string) (bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, v := range g.votes[phone] {
		if v.ProposalID == proposalID {
			return true, nil
		}
	}
	return false, nil
}

// CastVote records vote and locks its tokens.
func (g *Governance) CastVote(_ context.Context, vote model.Vote) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.proposal(vote.ProposalID); !ok {
		return model.ErrNotFound
	}
	for _, v := range g.votes[vote.Phone] {
		if v.ProposalID == vote.ProposalID {
			return model.ErrAlreadyVoted
		}
	}
	if vote.Tokens <= 0 || vote.Tokens > g.power(vote.Phone).Available() {
		return model.ErrInsufficientFunds
	}

	g.votes[vote.Phone] = append(g.votes[vote.Phone], vote)
	return nil
}

// ActiveVotes returns the votes of phone on proposals still open.
func (g *Governance) ActiveVotes(_ context.Context, phone string) ([]model.Vote, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []model.Vote
	for _, v := range g.votes[phone] {
		if p, ok := g.proposal(v.ProposalID); ok && g.active(p) {
			out = append(out, v)
		}
	}
	return out, nil
}
