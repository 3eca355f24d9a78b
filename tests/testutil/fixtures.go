package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lukab/flowtrack-api/internal/database"
	"github.com/lukab/flowtrack-api/internal/models"
)

// Fixtures provides factory methods for creating test data
type Fixtures struct {
	db      *database.DB
	counter int
}

// NewFixtures creates a new fixtures factory
func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// CreateUser creates a test user with default values
func (f *Fixtures) CreateUser(t *testing.T, opts ...UserOption) *models.User {
	t.Helper()
	f.counter++

	user := &models.User{
		Email:      fmt.Sprintf("user%d@example.com", f.counter),
		Name:       fmt.Sprintf("Test User %d", f.counter),
		Provider:   "google",
		ProviderID: fmt.Sprintf("provider-%d", f.counter),
		Plan:       models.PlanFree,
	}

	for _, opt := range opts {
		opt(user)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO users (email, name, avatar_url, provider, provider_id, plan)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, email, name, avatar_url, provider, provider_id, plan, daily_extraction_count, last_extraction_reset, created_at, updated_at
	`, user.Email, user.Name, user.AvatarURL, user.Provider, user.ProviderID, user.Plan).Scan(
		&user.ID, &user.Email, &user.Name, &user.AvatarURL,
		&user.Provider, &user.ProviderID, &user.Plan,
		&user.DailyExtractionCount, &user.LastExtractionReset,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user
}

// UserOption configures a test user
type UserOption func(*models.User)

// WithEmail sets the user's email
func WithEmail(email string) UserOption {
	return func(u *models.User) {
		u.Email = email
	}
}

// WithPlan sets the user's subscription plan
func WithPlan(plan string) UserOption {
	return func(u *models.User) {
		u.Plan = plan
	}
}

// SetQuotaState overwrites a user's extraction counter and window start
func (f *Fixtures) SetQuotaState(t *testing.T, userID uuid.UUID, count int, lastReset time.Time) {
	t.Helper()
	_, err := f.db.Pool.Exec(context.Background(), `
		UPDATE users SET daily_extraction_count = $1, last_extraction_reset = $2 WHERE id = $3
	`, count, lastReset, userID)
	if err != nil {
		t.Fatalf("failed to set quota state: %v", err)
	}
}

// CreateSpace creates a space owned by the given user
func (f *Fixtures) CreateSpace(t *testing.T, ownerID uuid.UUID, spaceType string) *models.Space {
	t.Helper()

	space := &models.Space{}
	err := f.db.Pool.QueryRow(context.Background(), `
		INSERT INTO spaces (owner_id, type) VALUES ($1, $2)
		RETURNING id, owner_id, type, created_at
	`, ownerID, spaceType).Scan(&space.ID, &space.OwnerID, &space.Type, &space.CreatedAt)
	if err != nil {
		t.Fatalf("failed to create space: %v", err)
	}
	return space
}

// CreateWorkspace creates a workspace inside the given space
func (f *Fixtures) CreateWorkspace(t *testing.T, spaceID uuid.UUID, name string) *models.Workspace {
	t.Helper()

	ws := &models.Workspace{}
	err := f.db.Pool.QueryRow(context.Background(), `
		INSERT INTO workspaces (space_id, name) VALUES ($1, $2)
		RETURNING id, space_id, name, manager_note_access, created_at, updated_at
	`, spaceID, name).Scan(&ws.ID, &ws.SpaceID, &ws.Name, &ws.ManagerNoteAccess, &ws.CreatedAt, &ws.UpdatedAt)
	if err != nil {
		t.Fatalf("failed to create workspace: %v", err)
	}
	return ws
}

// AddMembership enrolls a user into a workspace
func (f *Fixtures) AddMembership(t *testing.T, workspaceID, userID uuid.UUID, role string) {
	t.Helper()
	_, err := f.db.Pool.Exec(context.Background(), `
		INSERT INTO memberships (workspace_id, user_id, role) VALUES ($1, $2, $3)
	`, workspaceID, userID, role)
	if err != nil {
		t.Fatalf("failed to create membership: %v", err)
	}
}

// CreateProject creates a workspace-scoped project
func (f *Fixtures) CreateProject(t *testing.T, workspaceID uuid.UUID, name string) *models.Project {
	t.Helper()

	p := &models.Project{}
	err := f.db.Pool.QueryRow(context.Background(), `
		INSERT INTO projects (name, workspace_id) VALUES ($1, $2)
		RETURNING id, name, description, color, space_id, workspace_id, status, created_at, updated_at
	`, name, workspaceID).Scan(&p.ID, &p.Name, &p.Description, &p.Color, &p.SpaceID, &p.WorkspaceID, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		t.Fatalf("failed to create project: %v", err)
	}
	return p
}

// CreateSpaceProject creates a space-scoped project
func (f *Fixtures) CreateSpaceProject(t *testing.T, spaceID uuid.UUID, name string) *models.Project {
	t.Helper()

	p := &models.Project{}
	err := f.db.Pool.QueryRow(context.Background(), `
		INSERT INTO projects (name, space_id) VALUES ($1, $2)
		RETURNING id, name, description, color, space_id, workspace_id, status, created_at, updated_at
	`, name, spaceID).Scan(&p.ID, &p.Name, &p.Description, &p.Color, &p.SpaceID, &p.WorkspaceID, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		t.Fatalf("failed to create space project: %v", err)
	}
	return p
}

// CreateTask creates a task in the given project
func (f *Fixtures) CreateTask(t *testing.T, projectID uuid.UUID, title string) *models.Task {
	t.Helper()

	task := &models.Task{}
	err := f.db.Pool.QueryRow(context.Background(), `
		INSERT INTO tasks (project_id, title) VALUES ($1, $2)
		RETURNING id, project_id, note_id, title, description, status, priority, assignee_id, due_date, tags, series_id, created_at, updated_at
	`, projectID, title).Scan(
		&task.ID, &task.ProjectID, &task.NoteID, &task.Title, &task.Description,
		&task.Status, &task.Priority, &task.AssigneeID, &task.DueDate, &task.Tags,
		&task.SeriesID, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}
	return task
}
