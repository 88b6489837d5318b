package repositories

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"alfredoptarigan/resume-analyzer/internal/config"
	"alfredoptarigan/resume-analyzer/internal/models"
)

func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "resumes.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func strPtr(s string) *string { return &s }

func sampleResume(fileName string) *models.Resume {
	rating := 7.5
	return &models.Resume{
		FileName:     fileName,
		Name:         strPtr("Jane Doe"),
		Email:        strPtr("jane@example.com"),
		Phone:        nil,
		LinkedInURL:  strPtr("https://linkedin.com/in/janedoe"),
		PortfolioURL: nil,
		Summary:      strPtr("Backend engineer."),
		WorkExperience: datatypes.JSONSlice[models.WorkExperience]{
			{Role: "Engineer", Company: "Acme", Duration: "2019-2023", Description: []string{"Built APIs", "Ran Postgres"}},
			{Role: "Intern", Company: "Initech", Duration: "2018", Description: []string{}},
		},
		Education: datatypes.JSONSlice[models.Education]{
			{Degree: "BSc", Institution: "MIT", GraduationYear: "2019"},
		},
		TechnicalSkills:    datatypes.JSONSlice[string]{"Go", "SQL"},
		SoftSkills:         datatypes.JSONSlice[string]{},
		Projects:           datatypes.JSONSlice[models.Project]{{Name: "relay", Description: "queue"}},
		Certifications:     datatypes.JSONSlice[string]{"CKA"},
		ResumeRating:       &rating,
		ImprovementAreas:   nil,
		UpskillSuggestions: datatypes.JSONSlice[string]{"Kubernetes", "Rust"},
	}
}

func TestCreateThenGetByIDRoundTrips(t *testing.T) {
	repo := NewResumeRepository(newSQLiteDB(t))
	ctx := context.Background()

	input := sampleResume("jane.pdf")
	created, err := repo.Create(ctx, input)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected assigned id")
	}
	if created.UploadedAt.IsZero() {
		t.Fatal("expected assigned uploaded_at")
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.ID != created.ID || got.FileName != "jane.pdf" {
		t.Fatalf("unexpected identity: id=%d file=%q", got.ID, got.FileName)
	}
	if !got.UploadedAt.Equal(created.UploadedAt) {
		t.Fatalf("uploaded_at = %v, want %v", got.UploadedAt, created.UploadedAt)
	}
	if !reflect.DeepEqual(got.Analysis(), input.Analysis()) {
		t.Fatalf("analysis mismatch:\n got  %+v\n want %+v", got.Analysis(), input.Analysis())
	}
}

func TestCreateDoesNotMutateInput(t *testing.T) {
	repo := NewResumeRepository(newSQLiteDB(t))

	input := sampleResume("a.pdf")
	if _, err := repo.Create(context.Background(), input); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if input.ID != 0 || !input.UploadedAt.IsZero() {
		t.Fatalf("input was mutated: %+v", input)
	}
}

func TestGetByIDUnknownReturnsNotFound(t *testing.T) {
	repo := NewResumeRepository(newSQLiteDB(t))

	_, err := repo.GetByID(context.Background(), 4242)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("not found must not be a storage failure: %v", err)
	}
}

func TestUploadedAtFollowsInsertionOrder(t *testing.T) {
	db := newSQLiteDB(t)
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	// The third insert repeats the second timestamp and the fourth sees a
	// clock stepped back by an hour.
	clock := []time.Time{base, base.Add(time.Minute), base.Add(time.Minute), base.Add(-time.Hour)}
	calls := 0
	repo := &resumeRepository{db: db, now: func() time.Time {
		ts := clock[calls]
		calls++
		return ts
	}}
	ctx := context.Background()

	var created []*models.Resume
	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf", "d.pdf"} {
		r, err := repo.Create(ctx, sampleResume(name))
		if err != nil {
			t.Fatalf("Create(%s): %v", name, err)
		}
		created = append(created, r)
	}

	for i := 1; i < len(created); i++ {
		if !created[i].UploadedAt.After(created[i-1].UploadedAt) {
			t.Fatalf("insert %d: uploaded_at %s not after %s", i, created[i].UploadedAt, created[i-1].UploadedAt)
		}
	}
	if !created[1].UploadedAt.Equal(base.Add(time.Minute)) {
		t.Fatalf("clock ahead of the table should be used as is, got %s", created[1].UploadedAt)
	}

	list, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(list) != 4 {
		t.Fatalf("expected 4 resumes, got %d", len(list))
	}

	for i, r := range list {
		want := created[len(created)-1-i]
		if r.ID != want.ID {
			t.Fatalf("position %d: id=%d, want %d", i, r.ID, want.ID)
		}
		if !r.UploadedAt.Equal(want.UploadedAt) {
			t.Fatalf("position %d: stored uploaded_at %s, returned %s", i, r.UploadedAt, want.UploadedAt)
		}
		if i > 0 && !r.UploadedAt.Before(list[i-1].UploadedAt) {
			t.Fatalf("uploaded_at not strictly decreasing at position %d", i)
		}
	}
}

func TestListAllEmpty(t *testing.T) {
	repo := NewResumeRepository(newSQLiteDB(t))

	list, err := repo.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", list)
	}
}

func TestConcurrentCreatesGetDistinctIDs(t *testing.T) {
	repo := NewResumeRepository(newSQLiteDB(t))
	ctx := context.Background()

	const n = 20
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[uint64]bool)
		errs []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			created, err := repo.Create(ctx, sampleResume("concurrent.pdf"))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			seen[created.ID] = true
		}()
	}
	wg.Wait()

	if len(errs) > 0 {
		t.Fatalf("create errors: %v", errs)
	}
	if len(seen) != n {
		t.Fatalf("expected %d distinct ids, got %d", n, len(seen))
	}

	list, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(list) != n {
		t.Fatalf("expected %d rows, got %d", n, len(list))
	}
}

func TestFindByIDsKeepsRequestedOrder(t *testing.T) {
	repo := NewResumeRepository(newSQLiteDB(t))
	ctx := context.Background()

	first, err := repo.Create(ctx, sampleResume("first.pdf"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	second, err := repo.Create(ctx, sampleResume("second.pdf"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.FindByIDs(ctx, []uint64{second.ID, 9999, first.ID})
	if err != nil {
		t.Fatalf("FindByIDs: %v", err)
	}
	if len(got) != 2 || got[0].ID != second.ID || got[1].ID != first.ID {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}
	return db, mock
}

func TestListAllStoreFailureIsStorageUnavailable(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewResumeRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "resumes"`).
		WillReturnError(errors.New("dial tcp 127.0.0.1:5432: connection refused"))

	_, err := repo.ListAll(context.Background())
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestGetByIDStoreFailureIsNotNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewResumeRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "resumes"`).
		WillReturnError(errors.New("connection reset by peer"))

	_, err := repo.GetByID(context.Background(), 1)
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("store failure reported as not found: %v", err)
	}
}

func TestCreateStoreFailureIsStorageUnavailable(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewResumeRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`LOCK TABLE resumes`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT .+ FROM "resumes"`).
		WillReturnRows(sqlmock.NewRows([]string{"uploaded_at"}))
	mock.ExpectQuery(`INSERT INTO "resumes"`).
		WillReturnError(errors.New("pq: could not extend file: No space left on device"))
	mock.ExpectRollback()

	created, err := repo.Create(context.Background(), sampleResume("a.pdf"))
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
	if created != nil {
		t.Fatalf("expected no record on failure, got %+v", created)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestCreateConnectionFailureIsStorageUnavailable(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewResumeRepository(db)

	mock.ExpectBegin().WillReturnError(errors.New("dial tcp 127.0.0.1:5432: connection refused"))

	if _, err := repo.Create(context.Background(), sampleResume("a.pdf")); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}
