package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/afritokeni/ussd-engine/internal/model"
)

var (
	_ model.AgentDirectory = (*AgentRepository)(nil)
	_ model.RequestStore   = (*RequestRepository)(nil)
)

type AgentRepository struct {
	db *Connection
}

func NewAgentRepository(db *Connection) *AgentRepository {
	return &AgentRepository{
		db: db,
	}
}

func (r *AgentRepository) ListAvailable(ctx context.Context, limit int) ([]model.Agent, error) {
	query := `SELECT id, name, location, phone FROM agents
			  WHERE available ORDER BY name LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}
	defer rows.Close()

	var agents []model.Agent
	for rows.Next() {
		var a model.Agent
		if err := rows.Scan(&a.ID, &a.Name, &a.Location, &a.Phone); err != nil {
			return nil, fmt.Errorf("failed to scan agent: %w", err)
		}
		agents = append(agents, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate agents: %w", err)
	}

	return agents, nil
}

// Add registers or updates an agent.
func (r *AgentRepository) Add(ctx context.Context, agent model.Agent) error {
	query := `INSERT INTO agents (id, name, location, phone) VALUES ($1, $2, $3, $4)
			  ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, location = EXCLUDED.location, phone = EXCLUDED.phone`

	if _, err := r.db.Exec(ctx, query, agent.ID, agent.Name, agent.Location, agent.Phone); err != nil {
		return fmt.Errorf("failed to add agent: %w", err)
	}
	return nil
}

type RequestRepository struct {
	db *Connection
}

func NewRequestRepository(db *Connection) *RequestRepository {
	return &RequestRepository{
		db: db,
	}
}

func (r *RequestRepository) CreatePending(ctx context.Context, req model.CashRequest) (string, error) {
	query := `INSERT INTO cash_requests (id, kind, code, phone, agent_id, currency, amount, fee, asset, asset_amount, expires_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			  RETURNING id`

	var id uuid.UUID
	err := r.db.QueryRow(ctx, query,
		uuid.New(), string(req.Kind), req.Code, req.Phone, req.AgentID, req.Currency,
		req.Amount, req.Fee, req.Asset, req.AssetAmount, req.ExpiresAt,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create cash request: %w", err)
	}

	return id.String(), nil
}
