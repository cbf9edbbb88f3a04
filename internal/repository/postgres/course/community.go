package course

import (
	"context"
	"fmt"

	"coursehub/internal/domain"
	models "coursehub/internal/domain/models/course"
	courseRepo "coursehub/internal/domain/repositories/course"
	"coursehub/internal/repository/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresCommunityRepository implements the CommunityRepository interface
type PostgresCommunityRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewCommunityRepository creates a new community repository
func NewCommunityRepository(config *postgres.RepositoryConfig) courseRepo.CommunityRepository {
	return &PostgresCommunityRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// GetByID retrieves a community by ID
func (r *PostgresCommunityRepository) GetByID(ctx context.Context, id string) (*models.Community, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("community %s: %w", id, domain.ErrNotFound)
	}

	query := fmt.Sprintf(`
		SELECT id, name, slug, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Communities)

	var community models.Community
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&community.ID,
		&community.Name,
		&community.Slug,
		&community.CreatedAt,
		&community.UpdatedAt,
	)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("community %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get community: %w", err)
	}

	return &community, nil
}

// Create inserts a community. A preset ID is kept, otherwise one is generated.
func (r *PostgresCommunityRepository) Create(ctx context.Context, community *models.Community) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, slug)
		VALUES (COALESCE(NULLIF($1, '')::uuid, uuid_generate_v4()), $2, $3)
		RETURNING id, created_at, updated_at
	`, r.tables.Communities)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		community.ID,
		community.Name,
		community.Slug,
	).Scan(&community.ID, &community.CreatedAt, &community.UpdatedAt)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("community '%s' already exists", community.Slug),
				ResourceType: "community",
				ResourceID:   community.ID,
			}
		}
		return fmt.Errorf("create community: %w", err)
	}

	return nil
}
