package course

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"coursehub/internal/domain"
	models "coursehub/internal/domain/models/course"
	"coursehub/internal/domain/repositories"
	courseRepo "coursehub/internal/domain/repositories/course"
	"coursehub/internal/repository/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// courseColumns is the select list shared by every read. The community name
// comes from a LEFT JOIN so a course is still readable if its tenant row is gone.
const courseColumns = `
	c.id, c.title, c.description, c.category, c.target_audience, c.content_type,
	c.status, c.thumbnail, c.chapters, c.instructor_id, c.community_id,
	COALESCE(m.name, ''), c.students, c.rating, c.total_ratings, c.price, c.is_free,
	c.tags, c.requirements, c.learning_outcomes, c.sort_order,
	c.published_at, c.archived_at, c.created_at, c.updated_at`

// PostgresCourseRepository implements the CourseRepository interface
type PostgresCourseRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(config *postgres.RepositoryConfig) courseRepo.CourseRepository {
	return &PostgresCourseRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

func (r *PostgresCourseRepository) fromClause() string {
	return fmt.Sprintf("%s c LEFT JOIN %s m ON m.id = c.community_id", r.tables.Courses, r.tables.Communities)
}

// Create inserts a course
func (r *PostgresCourseRepository) Create(ctx context.Context, course *models.Course) error {
	chapters, err := marshalChapters(course.Chapters)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (
			community_id, instructor_id, title, description, category, target_audience,
			content_type, status, thumbnail, chapters, students, price, is_free,
			tags, requirements, learning_outcomes, sort_order, published_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id, created_at, updated_at
	`, r.tables.Courses)

	executor := postgres.GetExecutor(ctx, r.pool)
	err = executor.QueryRow(ctx, query,
		course.CommunityID,
		course.InstructorID,
		course.Title,
		course.Description,
		course.Category,
		course.TargetAudience,
		course.ContentType,
		string(course.Status),
		course.Thumbnail,
		chapters,
		nonNil(course.Students),
		course.Price,
		course.IsFree,
		nonNil(course.Tags),
		nonNil(course.Requirements),
		nonNil(course.LearningOutcomes),
		course.Order,
		course.PublishedAt,
	).Scan(&course.ID, &course.CreatedAt, &course.UpdatedAt)

	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return domain.NewValidationError("no valid community")
		}
		return fmt.Errorf("create course: %w", err)
	}

	return nil
}

// GetByID retrieves a course by ID
func (r *PostgresCourseRepository) GetByID(ctx context.Context, id string) (*models.Course, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("course %s: %w", id, domain.ErrNotFound)
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE c.id = $1`, courseColumns, r.fromClause())

	executor := postgres.GetExecutor(ctx, r.pool)
	course, err := scanCourse(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) || postgres.IsPgInvalidTextError(err) {
			return nil, fmt.Errorf("course %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get course: %w", err)
	}

	return course, nil
}

// GetByIDs retrieves every course whose ID is in ids
func (r *PostgresCourseRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Course, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return []models.Course{}, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE c.id = ANY($1::text[]::uuid[])`, courseColumns, r.fromClause())
	return r.query(ctx, query, valid)
}

// List retrieves courses matching the filter
func (r *PostgresCourseRepository) List(ctx context.Context, filter *models.ListFilter) ([]models.Course, error) {
	where, args, ok := listWhere(filter)
	if !ok {
		return []models.Course{}, nil
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s
		ORDER BY c.sort_order ASC, c.created_at DESC
	`, courseColumns, r.fromClause(), where)

	return r.query(ctx, query, args...)
}

// listWhere builds the WHERE clause for a listing. ok is false when the
// filter can match nothing: no tenant and no discovery, or a malformed
// community ID.
func listWhere(filter *models.ListFilter) (where string, args []interface{}, ok bool) {
	var conds []string
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	switch {
	case filter.PublishedOnly:
		conds = append(conds, "c.status = "+arg(string(models.StatusPublished)))
	case filter.CommunityID != "":
		if _, err := uuid.Parse(filter.CommunityID); err != nil {
			return "", nil, false
		}
		conds = append(conds, "c.community_id = "+arg(filter.CommunityID))
		if filter.Status != "" {
			conds = append(conds, "c.status = "+arg(string(filter.Status)))
		} else {
			conds = append(conds, "c.status <> "+arg(string(models.StatusArchived)))
		}
	default:
		return "", nil, false
	}

	if filter.Category != "" {
		conds = append(conds, "c.category = "+arg(filter.Category))
	}
	if filter.InstructorID != "" {
		conds = append(conds, "c.instructor_id = "+arg(filter.InstructorID))
	}

	return strings.Join(conds, " AND "), args, true
}

// Update overwrites the mutable fields of a course
func (r *PostgresCourseRepository) Update(ctx context.Context, course *models.Course) error {
	chapters, err := marshalChapters(course.Chapters)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, description = $2, category = $3, target_audience = $4,
		    content_type = $5, status = $6, thumbnail = $7, chapters = $8,
		    price = $9, is_free = $10, tags = $11, requirements = $12,
		    learning_outcomes = $13, sort_order = $14, published_at = $15,
		    archived_at = $16, updated_at = NOW()
		WHERE id = $17
		RETURNING updated_at
	`, r.tables.Courses)

	executor := postgres.GetExecutor(ctx, r.pool)
	err = executor.QueryRow(ctx, query,
		course.Title,
		course.Description,
		course.Category,
		course.TargetAudience,
		course.ContentType,
		string(course.Status),
		course.Thumbnail,
		chapters,
		course.Price,
		course.IsFree,
		nonNil(course.Tags),
		nonNil(course.Requirements),
		nonNil(course.LearningOutcomes),
		course.Order,
		course.PublishedAt,
		course.ArchivedAt,
		course.ID,
	).Scan(&course.UpdatedAt)

	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return fmt.Errorf("course %s: %w", course.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("update course: %w", err)
	}

	return nil
}

// NextOrder returns max(order)+1 within a community. Inside a transaction a
// per-community advisory lock is held until commit, so two concurrent creates
// cannot read the same maximum.
func (r *PostgresCourseRepository) NextOrder(ctx context.Context, communityID string) (int, error) {
	executor := postgres.GetExecutor(ctx, r.pool)

	if repositories.InTx(ctx) {
		if _, err := executor.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, orderLockKey(r.tables.Courses, communityID)); err != nil {
			return 0, fmt.Errorf("lock community order: %w", err)
		}
	}

	query := fmt.Sprintf(`
		SELECT COALESCE(MAX(sort_order), 0) + 1
		FROM %s
		WHERE community_id = $1
	`, r.tables.Courses)

	var next int
	if err := executor.QueryRow(ctx, query, communityID).Scan(&next); err != nil {
		return 0, fmt.Errorf("next order: %w", err)
	}
	return next, nil
}

// orderLockKey scopes the order lock to one community in one table, so
// prefixed environments sharing a database do not block each other
func orderLockKey(table, communityID string) string {
	return table + ":" + communityID
}

// SetOrder assigns the order of a single course
func (r *PostgresCourseRepository) SetOrder(ctx context.Context, id string, order int) error {
	query := fmt.Sprintf(`
		UPDATE %s SET sort_order = $1, updated_at = NOW()
		WHERE id = $2
	`, r.tables.Courses)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, order, id)
	if err != nil {
		return fmt.Errorf("set course order: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("course %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// AddStudent appends studentID unless already enrolled
func (r *PostgresCourseRepository) AddStudent(ctx context.Context, id, studentID string) (*models.Course, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("course %s: %w", id, domain.ErrNotFound)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET students = array_append(students, $2::text), updated_at = NOW()
		WHERE id = $1 AND NOT ($2::text = ANY(students))
	`, r.tables.Courses)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, id, studentID); err != nil {
		return nil, fmt.Errorf("enroll student: %w", err)
	}

	// Zero rows affected means either already enrolled or missing; GetByID tells which
	return r.GetByID(ctx, id)
}

// AddRating folds rating into the running mean in a single statement
func (r *PostgresCourseRepository) AddRating(ctx context.Context, id string, rating float64) (*models.Course, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("course %s: %w", id, domain.ErrNotFound)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET rating = (rating * total_ratings + $2) / (total_ratings + 1),
		    total_ratings = total_ratings + 1,
		    updated_at = NOW()
		WHERE id = $1
	`, r.tables.Courses)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, rating)
	if err != nil {
		return nil, fmt.Errorf("rate course: %w", err)
	}
	if result.RowsAffected() == 0 {
		return nil, fmt.Errorf("course %s: %w", id, domain.ErrNotFound)
	}

	return r.GetByID(ctx, id)
}

func (r *PostgresCourseRepository) query(ctx context.Context, query string, args ...interface{}) ([]models.Course, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	courses := []models.Course{}
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		courses = append(courses, *course)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate courses: %w", err)
	}

	return courses, nil
}

func scanCourse(row pgx.Row) (*models.Course, error) {
	var (
		course   models.Course
		status   string
		chapters []byte
	)

	err := row.Scan(
		&course.ID,
		&course.Title,
		&course.Description,
		&course.Category,
		&course.TargetAudience,
		&course.ContentType,
		&status,
		&course.Thumbnail,
		&chapters,
		&course.InstructorID,
		&course.CommunityID,
		&course.CommunityName,
		&course.Students,
		&course.Rating,
		&course.TotalRatings,
		&course.Price,
		&course.IsFree,
		&course.Tags,
		&course.Requirements,
		&course.LearningOutcomes,
		&course.Order,
		&course.PublishedAt,
		&course.ArchivedAt,
		&course.CreatedAt,
		&course.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	course.Status = models.Status(status)
	if err := json.Unmarshal(chapters, &course.Chapters); err != nil {
		return nil, fmt.Errorf("decode chapters for course %s: %w", course.ID, err)
	}
	if course.Chapters == nil {
		course.Chapters = []models.Chapter{}
	}

	return &course, nil
}

func marshalChapters(chapters []models.Chapter) ([]byte, error) {
	if chapters == nil {
		chapters = []models.Chapter{}
	}
	b, err := json.Marshal(chapters)
	if err != nil {
		return nil, fmt.Errorf("encode chapters: %w", err)
	}
	return b, nil
}

// nonNil keeps NOT NULL array columns from receiving SQL NULL
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
