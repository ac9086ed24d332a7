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

const folderColumns = `id, name, parent_id, sort_order, icon, color, created_at, updated_at, deleted_at`

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *RepositoryConfig) orgRepo.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create creates a new folder
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, parent_id, sort_order, icon, color, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, r.tables.Folders)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		folder.Name,
		folder.ParentID,
		folder.SortOrder,
		folder.Icon,
		folder.Color,
		folder.CreatedAt,
		folder.UpdatedAt,
	).Scan(&folder.ID, &folder.CreatedAt, &folder.UpdatedAt)

	if err != nil {
		switch {
		case isPgDuplicateError(err):
			return fmt.Errorf("folder '%s': %w", folder.Name, domain.ErrConflict)
		case isPgForeignKeyError(err):
			return &domain.ValidationError{Message: fmt.Sprintf("parent folder %d does not exist", models.KeyOf(folder.ParentID))}
		case isPgCheckError(err):
			return &domain.ValidationError{Message: fmt.Sprintf("invalid folder name %q", folder.Name)}
		}
		return fmt.Errorf("create folder: %w", err)
	}

	return nil
}

// GetByID retrieves a folder by ID
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id int64) (*models.Folder, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, folderColumns, r.tables.Folders)

	folder, err := scanFolder(GetExecutor(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, &domain.NotFoundError{Message: fmt.Sprintf("folder %d: not found", id)}
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}

	return folder, nil
}

// List returns all folders in one lifecycle state
func (r *PostgresFolderRepository) List(ctx context.Context, lifecycle models.Lifecycle) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s
		ORDER BY sort_order ASC, id ASC
	`, folderColumns, r.tables.Folders, lifecycleClause(lifecycle))

	return r.queryFolders(ctx, query)
}

// ListChildren lists immediate active child folders
func (r *PostgresFolderRepository) ListChildren(ctx context.Context, parentID *int64) ([]models.Folder, error) {
	if parentID == nil {
		query := fmt.Sprintf(`
			SELECT %s FROM %s
			WHERE parent_id IS NULL AND deleted_at IS NULL
			ORDER BY sort_order ASC, id ASC
		`, folderColumns, r.tables.Folders)
		return r.queryFolders(ctx, query)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE parent_id = $1 AND deleted_at IS NULL
		ORDER BY sort_order ASC, id ASC
	`, folderColumns, r.tables.Folders)
	return r.queryFolders(ctx, query, *parentID)
}

// Rename changes a folder's name
func (r *PostgresFolderRepository) Rename(ctx context.Context, id int64, name string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, updated_at = now()
		WHERE id = $2 AND deleted_at IS NULL
	`, r.tables.Folders)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, name, id)
	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("folder '%s': %w", name, domain.ErrConflict)
		}
		return fmt.Errorf("rename folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Message: fmt.Sprintf("folder %d: not found", id)}
	}

	return nil
}

// UpdatePlacement sets parent_id and sort_order of one active folder
func (r *PostgresFolderRepository) UpdatePlacement(ctx context.Context, id int64, parentID *int64, sortOrder int) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET parent_id = $1, sort_order = $2, updated_at = now()
		WHERE id = $3 AND deleted_at IS NULL
	`, r.tables.Folders)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, parentID, sortOrder, id)
	if err != nil {
		switch {
		case isPgForeignKeyError(err):
			return &domain.ValidationError{Message: fmt.Sprintf("folder %d: parent folder %d does not exist", id, models.KeyOf(parentID))}
		case isPgCheckError(err):
			return &domain.ValidationError{Message: fmt.Sprintf("folder %d cannot be its own parent", id)}
		}
		return fmt.Errorf("update folder %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Message: fmt.Sprintf("folder %d: not found", id)}
	}

	return nil
}

// SetDeletedAt stamps or clears deleted_at on the given folders
func (r *PostgresFolderRepository) SetDeletedAt(ctx context.Context, ids []int64, deletedAt *time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET deleted_at = $1, updated_at = now()
		WHERE id = ANY($2)
	`, r.tables.Folders)

	if _, err := GetExecutor(ctx, r.pool).Exec(ctx, query, deletedAt, ids); err != nil {
		return fmt.Errorf("set folder deleted_at: %w", err)
	}

	return nil
}

// Reparent moves the given folders under parentID
func (r *PostgresFolderRepository) Reparent(ctx context.Context, ids []int64, parentID *int64) error {
	if len(ids) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET parent_id = $1, updated_at = now()
		WHERE id = ANY($2)
	`, r.tables.Folders)

	if _, err := GetExecutor(ctx, r.pool).Exec(ctx, query, parentID, ids); err != nil {
		return fmt.Errorf("reparent folders: %w", err)
	}

	return nil
}

func (r *PostgresFolderRepository) queryFolders(ctx context.Context, query string, args ...any) ([]models.Folder, error) {
	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	folders := make([]models.Folder, 0)
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, *folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	return folders, nil
}

func scanFolder(row pgx.Row) (*models.Folder, error) {
	var folder models.Folder
	err := row.Scan(
		&folder.ID,
		&folder.Name,
		&folder.ParentID,
		&folder.SortOrder,
		&folder.Icon,
		&folder.Color,
		&folder.CreatedAt,
		&folder.UpdatedAt,
		&folder.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &folder, nil
}

// lifecycleClause returns the WHERE fragment selecting one lifecycle state
func lifecycleClause(lifecycle models.Lifecycle) string {
	if lifecycle == models.LifecycleRecycleBin {
		return "deleted_at IS NOT NULL"
	}
	return "deleted_at IS NULL"
}
