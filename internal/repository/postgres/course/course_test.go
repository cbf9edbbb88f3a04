package course

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	models "coursehub/internal/domain/models/course"
	"coursehub/internal/repository/postgres"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const communityA = "8f14e45f-ceea-467f-a0e6-6ad1b5d2c111"

func TestListWhere(t *testing.T) {
	tests := []struct {
		name     string
		filter   models.ListFilter
		wantOK   bool
		wantSQL  string
		wantArgs []interface{}
	}{
		{
			name:   "no tenant and no discovery matches nothing",
			filter: models.ListFilter{Category: "math"},
		},
		{
			name:   "malformed community matches nothing",
			filter: models.ListFilter{CommunityID: "not-a-uuid"},
		},
		{
			name:     "community hides archived by default",
			filter:   models.ListFilter{CommunityID: communityA},
			wantOK:   true,
			wantSQL:  "c.community_id = $1 AND c.status <> $2",
			wantArgs: []interface{}{communityA, "archived"},
		},
		{
			name:     "community with explicit status",
			filter:   models.ListFilter{CommunityID: communityA, Status: models.StatusArchived},
			wantOK:   true,
			wantSQL:  "c.community_id = $1 AND c.status = $2",
			wantArgs: []interface{}{communityA, "archived"},
		},
		{
			name:     "community with category and instructor",
			filter:   models.ListFilter{CommunityID: communityA, Category: "math", InstructorID: "u1"},
			wantOK:   true,
			wantSQL:  "c.community_id = $1 AND c.status <> $2 AND c.category = $3 AND c.instructor_id = $4",
			wantArgs: []interface{}{communityA, "archived", "math", "u1"},
		},
		{
			name:     "discovery ignores community and status",
			filter:   models.ListFilter{PublishedOnly: true, CommunityID: communityA, Status: models.StatusDraft},
			wantOK:   true,
			wantSQL:  "c.status = $1",
			wantArgs: []interface{}{"published"},
		},
		{
			name:     "discovery with category",
			filter:   models.ListFilter{PublishedOnly: true, Category: "art"},
			wantOK:   true,
			wantSQL:  "c.status = $1 AND c.category = $2",
			wantArgs: []interface{}{"published", "art"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args, ok := listWhere(&tt.filter)
			require.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				assert.Empty(t, where)
				assert.Empty(t, args)
				return
			}
			assert.Equal(t, tt.wantSQL, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestOrderLockKey(t *testing.T) {
	assert.Equal(t, "dev_courses:"+communityA, orderLockKey("dev_courses", communityA))
	assert.NotEqual(t, orderLockKey("dev_courses", communityA), orderLockKey("prod_courses", communityA))
}

// setupTestDB connects to TEST_DATABASE_URL and creates a throwaway
// prefixed schema, dropped when the test ends
func setupTestDB(t *testing.T) *postgres.RepositoryConfig {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.CreateConnectionPool(ctx, url)
	require.NoError(t, err)

	prefix := "test_" + uuid.NewString()[:8] + "_"
	tables := postgres.NewTableNames(prefix)
	require.NoError(t, postgres.EnsureSchema(ctx, pool, tables))

	t.Cleanup(func() {
		_ = postgres.DropSchema(context.Background(), pool, tables)
		pool.Close()
	})

	return &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestCourseRepository_ListAndOrder_Integration(t *testing.T) {
	config := setupTestDB(t)
	ctx := context.Background()

	communities := NewCommunityRepository(config)
	courses := NewCourseRepository(config)
	txm := postgres.NewTransactionManager(config.Pool, config.Logger)

	a := &models.Community{Name: "A", Slug: "a-" + uuid.NewString()[:8]}
	b := &models.Community{Name: "B", Slug: "b-" + uuid.NewString()[:8]}
	require.NoError(t, communities.Create(ctx, a))
	require.NoError(t, communities.Create(ctx, b))

	create := func(community *models.Community, title string, status models.Status) *models.Course {
		t.Helper()
		c := &models.Course{Title: title, Status: status, CommunityID: community.ID, InstructorID: "u1", Category: "math"}
		err := txm.ExecTx(ctx, func(ctx context.Context) error {
			order, err := courses.NextOrder(ctx, community.ID)
			if err != nil {
				return err
			}
			c.Order = order
			return courses.Create(ctx, c)
		})
		require.NoError(t, err)
		return c
	}

	first := create(a, "First", models.StatusDraft)
	second := create(a, "Second", models.StatusPublished)
	create(a, "Old", models.StatusArchived)
	other := create(b, "Elsewhere", models.StatusPublished)

	assert.Equal(t, 1, first.Order)
	assert.Equal(t, 2, second.Order)
	assert.Equal(t, 1, other.Order, "order is per community")

	listed, err := courses.List(ctx, &models.ListFilter{CommunityID: a.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"First", "Second"}, titles(listed))
	assert.Equal(t, "A", listed[0].CommunityName)

	archived, err := courses.List(ctx, &models.ListFilter{CommunityID: a.ID, Status: models.StatusArchived})
	require.NoError(t, err)
	assert.Equal(t, []string{"Old"}, titles(archived))

	published, err := courses.List(ctx, &models.ListFilter{PublishedOnly: true})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Second", "Elsewhere"}, titles(published))

	none, err := courses.List(ctx, &models.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func titles(courses []models.Course) []string {
	out := make([]string, len(courses))
	for i, c := range courses {
		out[i] = c.Title
	}
	return out
}

func TestCourseRepository_NextOrderConcurrent_Integration(t *testing.T) {
	config := setupTestDB(t)
	ctx := context.Background()

	community := &models.Community{Name: "C", Slug: "c-" + uuid.NewString()[:8]}
	require.NoError(t, NewCommunityRepository(config).Create(ctx, community))

	courses := NewCourseRepository(config)
	txm := postgres.NewTransactionManager(config.Pool, config.Logger)

	const n = 8
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func(i int) {
			errs <- txm.ExecTx(ctx, func(ctx context.Context) error {
				order, err := courses.NextOrder(ctx, community.ID)
				if err != nil {
					return err
				}
				return courses.Create(ctx, &models.Course{
					Title:        fmt.Sprintf("Course %d", i),
					Status:       models.StatusDraft,
					CommunityID:  community.ID,
					InstructorID: "u1",
					Order:        order,
				})
			})
		}(i)
	}
	for i := 0; i < n; i++ {
		require.NoError(t, <-errs)
	}

	listed, err := courses.List(ctx, &models.ListFilter{CommunityID: community.ID})
	require.NoError(t, err)
	require.Len(t, listed, n)
	seen := map[int]bool{}
	for _, c := range listed {
		seen[c.Order] = true
	}
	assert.Len(t, seen, n, "every create got a distinct order")
}
