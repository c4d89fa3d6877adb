package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/afritokeni/ussd-engine/internal/model"
)

var _ model.GovernanceLedger = (*GovernanceRepository)(nil)

type GovernanceRepository struct {
	db *Connection
}

func NewGovernanceRepository(db *Connection) *GovernanceRepository {
	return &GovernanceRepository{
		db: db,
	}
}

func (r *GovernanceRepository) ActiveProposals(ctx context.Context) ([]model.Proposal, error) {
	rows, err := r.db.Query(ctx, `SELECT id, title, ends_at FROM proposals WHERE ends_at > now() ORDER BY ends_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list proposals: %w", err)
	}
	defer rows.Close()

	var proposals []model.Proposal
	for rows.Next() {
		var p model.Proposal
		if err := rows.Scan(&p.ID, &p.Title, &p.EndsAt); err != nil {
			return nil, fmt.Errorf("failed to scan proposal: %w", err)
		}
		proposals = append(proposals, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate proposals: %w", err)
	}

	return proposals, nil
}

const votingPowerQuery = `SELECT
		COALESCE((SELECT tokens FROM governance_tokens WHERE phone = $1), 0),
		COALESCE((SELECT SUM(v.tokens) FROM votes v JOIN proposals p ON p.id = v.proposal_id
		          WHERE v.phone = $1 AND p.ends_at > now()), 0)`

func (r *GovernanceRepository) VotingPower(ctx context.Context, phone string) (model.VotingPower, error) {
	var power model.VotingPower
	if err := r.db.QueryRow(ctx, votingPowerQuery, phone).Scan(&power.Total, &power.Locked); err != nil {
		return model.VotingPower{}, fmt.Errorf("failed to get voting power: %w", err)
	}
	return power, nil
}

func (r *GovernanceRepository) HasVoted(ctx context.Context, phone, proposalID string) (bool, error) {
	var voted bool
	query := `SELECT EXISTS (SELECT 1 FROM votes WHERE phone = $1 AND proposal_id = $2)`
	if err := r.db.QueryRow(ctx, query, phone, proposalID).Scan(&voted); err != nil {
		return false, fmt.Errorf("failed to check vote: %w", err)
	}
	return voted, nil
}

// CastVote records the vote if the holder still has enough unlocked tokens.
// The holder row is locked so two votes cannot spend the same tokens.
func (r *GovernanceRepository) CastVote(ctx context.Context, vote model.Vote) error {
	return r.db.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT tokens FROM governance_tokens WHERE phone = $1 FOR UPDATE`, vote.Phone); err != nil {
			return fmt.Errorf("failed to lock holder: %w", err)
		}

		var power model.VotingPower
		if err := tx.QueryRow(ctx, votingPowerQuery, vote.Phone).Scan(&power.Total, &power.Locked); err != nil {
			return fmt.Errorf("failed to get voting power: %w", err)
		}
		if vote.Tokens <= 0 || vote.Tokens > power.Available() {
			return model.ErrInsufficientFunds
		}

		_, err := tx.Exec(ctx, `INSERT INTO votes (proposal_id, phone, stance, tokens, created_at)
				  VALUES ($1, $2, $3, $4, $5)`,
			vote.ProposalID, vote.Phone, string(vote.Stance), vote.Tokens, vote.CreatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return model.ErrAlreadyVoted
			}
			return fmt.Errorf("failed to insert vote: %w", err)
		}
		return nil
	})
}

func (r *GovernanceRepository) ActiveVotes(ctx context.Context, phone string) ([]model.Vote, error) {
	query := `SELECT v.proposal_id, p.title, v.phone, v.stance, v.tokens, v.created_at
			  FROM votes v JOIN proposals p ON p.id = v.proposal_id
			  WHERE v.phone = $1 AND p.ends_at > now()
			  ORDER BY v.created_at DESC`

	rows, err := r.db.Query(ctx, query, phone)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}
	defer rows.Close()

	var votes []model.Vote
	for rows.Next() {
		var (
			v      model.Vote
			stance string
		)
		if err := rows.Scan(&v.ProposalID, &v.ProposalTitle, &v.Phone, &stance, &v.Tokens, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		v.Stance = model.VoteStance(stance)
		votes = append(votes, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate votes: %w", err)
	}

	return votes, nil
}

// AddProposal opens a proposal.
func (r *GovernanceRepository) AddProposal(ctx context.Context, p model.Proposal) error {
	query := `INSERT INTO proposals (id, title, ends_at) VALUES ($1, $2, $3)
			  ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title, ends_at = EXCLUDED.ends_at`
	if _, err := r.db.Exec(ctx, query, p.ID, p.Title, p.EndsAt); err != nil {
		return fmt.Errorf("failed to add proposal: %w", err)
	}
	return nil
}

// SetTokens sets the governance tokens held by phone.
func (r *GovernanceRepository) SetTokens(ctx context.Context, phone string, tokens int64) error {
	query := `INSERT INTO governance_tokens (phone, tokens) VALUES ($1, $2)
			  ON CONFLICT (phone) DO UPDATE SET tokens = EXCLUDED.tokens`
	if _, err := r.db.Exec(ctx, query, phone, tokens); err != nil {
		return fmt.Errorf("failed to set tokens: %w", err)
	}
	return nil
}
