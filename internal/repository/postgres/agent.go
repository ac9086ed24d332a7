package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"agentdeck/internal/domain"
	models "agentdeck/internal/domain/models/organization"
	orgRepo "agentdeck/internal/domain/repositories/organization"
)

const agentColumns = `id, name, folder_id, sort_order, visibility, created_at, updated_at, deleted_at`

// identifierMatch matches an agent by permanent id or by name
const identifierMatch = `(id::text = $%d OR name = $%d)`

// PostgresAgentRepository implements the AgentRepository interface
type PostgresAgentRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewAgentRepository creates a new agent repository
func NewAgentRepository(config *RepositoryConfig) orgRepo.AgentRepository {
	return &PostgresAgentRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create creates a new agent
func (r *PostgresAgentRepository) Create(ctx context.Context, agent *models.Agent) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, folder_id, sort_order, visibility, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, r.tables.Agents)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		agent.ID,
		agent.Name,
		agent.FolderID,
		agent.SortOrder,
		string(agent.Visibility),
		agent.CreatedAt,
		agent.UpdatedAt,
	).Scan(&agent.CreatedAt, &agent.UpdatedAt)

	if err != nil {
		switch {
		case isPgDuplicateError(err):
			return fmt.Errorf("agent '%s': %w", agent.Identifier(), domain.ErrConflict)
		case isPgForeignKeyError(err):
			return &domain.ValidationError{Message: fmt.Sprintf("folder %d does not exist", models.KeyOf(agent.FolderID))}
		}
		return fmt.Errorf("create agent: %w", err)
	}

	return nil
}

// GetByIdentifier retrieves an agent by permanent id or name
func (r *PostgresAgentRepository) GetByIdentifier(ctx context.Context, identifier string) (*models.Agent, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s LIMIT 1`,
		agentColumns, r.tables.Agents, fmt.Sprintf(identifierMatch, 1, 1))

	agent, err := scanAgent(GetExecutor(ctx, r.pool).QueryRow(ctx, query, identifier))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, &domain.NotFoundError{Message: fmt.Sprintf("agent %s: not found", identifier)}
		}
		return nil, fmt.Errorf("get agent: %w", err)
	}

	return agent, nil
}

// List returns all agents in one lifecycle state
func (r *PostgresAgentRepository) List(ctx context.Context, lifecycle models.Lifecycle) ([]models.Agent, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s
		ORDER BY sort_order ASC, name ASC
	`, agentColumns, r.tables.Agents, lifecycleClause(lifecycle))

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	defer rows.Close()

	agents := make([]models.Agent, 0)
	for rows.Next() {
		agent, err := scanAgent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan agent: %w", err)
		}
		agents = append(agents, *agent)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate agents: %w", err)
	}

	return agents, nil
}

// UpdatePlacement sets folder_id and sort_order of one active agent
func (r *PostgresAgentRepository) UpdatePlacement(ctx context.Context, identifier string, folderID *int64, sortOrder int) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET folder_id = $1, sort_order = $2, updated_at = now()
		WHERE %s AND deleted_at IS NULL
	`, r.tables.Agents, fmt.Sprintf(identifierMatch, 3, 3))

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, folderID, sortOrder, identifier)
	if err != nil {
		if isPgForeignKeyError(err) {
			return &domain.ValidationError{Message: fmt.Sprintf("agent %s: folder %d does not exist", identifier, models.KeyOf(folderID))}
		}
		return fmt.Errorf("update agent %s: %w", identifier, err)
	}

	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Message: fmt.Sprintf("agent %s: not found", identifier)}
	}

	return nil
}

// SetDeletedAtByIdentifier stamps or clears deleted_at on one agent
func (r *PostgresAgentRepository) SetDeletedAtByIdentifier(ctx context.Context, identifier string, deletedAt *time.Time) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET deleted_at = $1, updated_at = now()
		WHERE %s
	`, r.tables.Agents, fmt.Sprintf(identifierMatch, 2, 2))

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, deletedAt, identifier)
	if err != nil {
		return fmt.Errorf("set agent deleted_at: %w", err)
	}

	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Message: fmt.Sprintf("agent %s: not found", identifier)}
	}

	return nil
}

// TrashInFolders stamps deleted_at on active agents placed in the given folders
func (r *PostgresAgentRepository) TrashInFolders(ctx context.Context, folderIDs []int64, deletedAt time.Time) error {
	if len(folderIDs) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET deleted_at = $1, updated_at = now()
		WHERE folder_id = ANY($2) AND deleted_at IS NULL
	`, r.tables.Agents)

	if _, err := GetExecutor(ctx, r.pool).Exec(ctx, query, deletedAt, folderIDs); err != nil {
		return fmt.Errorf("trash agents: %w", err)
	}

	return nil
}

// RestoreInFolders clears deleted_at on agents trashed together with their folder
func (r *PostgresAgentRepository) RestoreInFolders(ctx context.Context, folderIDs []int64, deletedAt time.Time) error {
	if len(folderIDs) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET deleted_at = NULL, updated_at = now()
		WHERE folder_id = ANY($1) AND deleted_at = $2
	`, r.tables.Agents)

	if _, err := GetExecutor(ctx, r.pool).Exec(ctx, query, folderIDs, deletedAt); err != nil {
		return fmt.Errorf("restore agents: %w", err)
	}

	return nil
}

func scanAgent(row pgx.Row) (*models.Agent, error) {
	var agent models.Agent
	var visibility string
	err := row.Scan(
		&agent.ID,
		&agent.Name,
		&agent.FolderID,
		&agent.SortOrder,
		&visibility,
		&agent.CreatedAt,
		&agent.UpdatedAt,
		&agent.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	agent.Visibility = models.Visibility(visibility)
	return &agent, nil
}
