package ussd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/afritokeni/ussd-engine/internal/model"
)

const (
	governanceToken = "AFRI"
	maxProposals    = 5
)

const daoMenuText = "DAO Governance\n" +
	"1. View Proposals\n" +
	"2. My Voting Power\n" +
	"3. Active Votes\n" +
	optionBack

func (e *Engine) handleDAO(_ context.Context, in input, _ *model.Session) (Result, error) {
	switch in.last() {
	case "":
		return continueSession(daoMenuText), nil
	case "1":
		return redirect(model.MenuDAOProposals, ""), nil
	case "2":
		return redirect(model.MenuDAOVotingPower, ""), nil
	case "3":
		return redirect(model.MenuDAOActiveVotes, ""), nil
	case "0":
		return redirect(model.MenuMain, ""), nil
	default:
		return invalid(msgInvalidOption, daoMenuText), nil
	}
}

func (e *Engine) handleVotingPower(ctx context.Context, _ input, sess *model.Session) (Result, error) {
	power, err := e.deps.Governance.VotingPower(ctx, sess.PhoneNumber)
	if err != nil {
		return Result{}, fmt.Errorf("failed to get voting power: %w", err)
	}

	return endSession(fmt.Sprintf("Voting Power\nTotal: %s %s\nLocked: %s %s\nAvailable: %s %s",
		groupThousands(power.Total), governanceToken,
		groupThousands(power.Locked), governanceToken,
		groupThousands(power.Available()), governanceToken)), nil
}

func (e *Engine) handleActiveVotes(ctx context.Context, _ input, sess *model.Session) (Result, error) {
	votes, err := e.deps.Governance.ActiveVotes(ctx, sess.PhoneNumber)
	if err != nil {
		return Result{}, fmt.Errorf("failed to list votes: %w", err)
	}
	if len(votes) == 0 {
		return endSession("You have no active votes."), nil
	}

	var b strings.Builder
	b.WriteString("Active Votes")
	for i, v := range votes {
		fmt.Fprintf(&b, "\n%d. %s: %s (%s %s)", i+1, v.ProposalTitle, strings.ToUpper(string(v.Stance)),
			groupThousands(v.Tokens), governanceToken)
	}

	return endSession(b.String()), nil
}

type voteStep int

const (
	voteAwaitProposal voteStep = iota
	voteAwaitStance
	voteAwaitTokens
	voteAwaitPIN
)

var voteMachine = newMachine("dao_vote", map[voteStep][]voteStep{
	voteAwaitProposal: {voteAwaitStance},
	voteAwaitStance:   {voteAwaitTokens},
	voteAwaitTokens:   {voteAwaitPIN},
})

var stances = []model.VoteStance{model.VoteYes, model.VoteNo, model.VoteAbstain}

func proposalMenu(proposals []model.Proposal) string {
	var b strings.Builder
	b.WriteString("Active Proposals")
	for i, p := range proposals {
		fmt.Fprintf(&b, "\n%d. %s", i+1, p.Title)
	}
	b.WriteString("\n" + optionBack)
	return b.String()
}

func stanceMenu(p *model.Proposal) string {
	return p.Title + "\n1. Yes\n2. No\n3. Abstain\n" + optionCancel
}

func tokensPrompt(available int64) string {
	return fmt.Sprintf("Enter %s tokens to commit (available: %s):\n%s",
		governanceToken, groupThousands(available), optionCancel)
}

func voteSummary(v *model.VoteData) string {
	return fmt.Sprintf("Vote %s on %s with %s %s",
		strings.ToUpper(string(v.Stance)), v.Proposal.Title, groupThousands(v.Tokens), governanceToken)
}

// handleProposals walks through casting a vote on an active proposal.
func (e *Engine) handleProposals(ctx context.Context, in input, sess *model.Session) (Result, error) {
	token := in.last()
	if token == cancelKey {
		return redirect(model.MenuDAO, ""), nil
	}

	switch voteMachine.at(sess) {
	case voteAwaitProposal:
		v := sess.Data.Vote
		if v == nil {
			proposals, err := e.deps.Governance.ActiveProposals(ctx)
			if err != nil {
				return Result{}, fmt.Errorf("failed to list proposals: %w", err)
			}
			if len(proposals) == 0 {
				return endSession("There are no active proposals right now."), nil
			}
			if len(proposals) > maxProposals {
				proposals = proposals[:maxProposals]
			}
			v = &model.VoteData{Proposals: proposals}
			sess.Data.Vote = v
		}
		if token == "" {
			return continueSession(proposalMenu(v.Proposals)), nil
		}
		idx, ok := choice(token, len(v.Proposals))
		if !ok {
			return invalid(msgInvalidOption, proposalMenu(v.Proposals)), nil
		}

		proposal := v.Proposals[idx]
		voted, err := e.deps.Governance.HasVoted(ctx, sess.PhoneNumber, proposal.ID)
		if err != nil {
			return Result{}, fmt.Errorf("failed to check vote: %w", err)
		}
		if voted {
			return endSession("You have already voted on " + proposal.Title + "."), nil
		}

		v.Proposal = &proposal
		if err := voteMachine.move(sess, voteAwaitStance); err != nil {
			return Result{}, err
		}
		return continueSession(stanceMenu(v.Proposal)), nil

	case voteAwaitStance:
		v := sess.Data.Vote
		if v == nil || v.Proposal == nil {
			return Result{}, fmt.Errorf("dao vote: missing vote data")
		}
		if token == "" {
			return continueSession(stanceMenu(v.Proposal)), nil
		}
		idx, ok := choice(token, len(stances))
		if !ok {
			return invalid(msgInvalidOption, stanceMenu(v.Proposal)), nil
		}

		power, err := e.deps.Governance.VotingPower(ctx, sess.PhoneNumber)
		if err != nil {
			return Result{}, fmt.Errorf("failed to get voting power: %w", err)
		}
		if power.Available() <= 0 {
			return endSession("You have no " + governanceToken + " tokens available to vote."), nil
		}

		v.Stance = stances[idx]
		v.Available = power.Available()
		if err := voteMachine.move(sess, voteAwaitTokens); err != nil {
			return Result{}, err
		}
		return continueSession(tokensPrompt(v.Available)), nil

	case voteAwaitTokens:
		v := sess.Data.Vote
		if v == nil || v.Proposal == nil {
			return Result{}, fmt.Errorf("dao vote: missing vote data")
		}
		if token == "" {
			return continueSession(tokensPrompt(v.Available)), nil
		}
		tokens, ok := parseAmount(token)
		if !ok || tokens > v.Available {
			return invalid(msgInvalidAmount, tokensPrompt(v.Available)), nil
		}

		v.Tokens = tokens
		if err := voteMachine.move(sess, voteAwaitPIN); err != nil {
			return Result{}, err
		}
		return continueSession(voteSummary(v) + "\n" + promptConfirmPIN), nil

	case voteAwaitPIN:
		v := sess.Data.Vote
		if v == nil || v.Proposal == nil {
			return Result{}, fmt.Errorf("dao vote: missing vote data")
		}
		if token == "" {
			return continueSession(voteSummary(v) + "\n" + promptConfirmPIN), nil
		}

		ok, res, err := e.confirmPIN(ctx, sess, in, promptConfirmPIN, false)
		if err != nil || !ok {
			return res, err
		}

		err = e.deps.Governance.CastVote(ctx, model.Vote{
			ProposalID:    v.Proposal.ID,
			ProposalTitle: v.Proposal.Title,
			Phone:         sess.PhoneNumber,
			Stance:        v.Stance,
			Tokens:        v.Tokens,
			CreatedAt:     e.now(),
		})
		switch {
		case errors.Is(err, model.ErrAlreadyVoted):
			return endSession("You have already voted on " + v.Proposal.Title + "."), nil
		case errors.Is(err, model.ErrInsufficientFunds):
			return endSession("Not enough " + governanceToken + " tokens available."), nil
		case err != nil:
			return Result{}, fmt.Errorf("failed to cast vote: %w", err)
		}

		return endSession("Vote recorded.\n" + voteSummary(v) + "\nTokens stay locked until the proposal closes."), nil
	}

	return Result{}, voteMachine.unknown(sess)
}
