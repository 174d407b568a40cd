package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"tutor-hub/internal/domain"
	"tutor-hub/internal/repository"
)

type mockEnrollmentRepo struct {
	byID map[string]domain.EnrollmentApplication
}

func newMockEnrollmentRepo() *mockEnrollmentRepo {
	return &mockEnrollmentRepo{byID: map[string]domain.EnrollmentApplication{}}
}

func (m *mockEnrollmentRepo) Create(_ context.Context, app domain.EnrollmentApplication) error {
	m.byID[app.ID] = app
	return nil
}

func (m *mockEnrollmentRepo) GetByID(_ context.Context, id string) (domain.EnrollmentApplication, error) {
	app, ok := m.byID[id]
	if !ok {
		return domain.EnrollmentApplication{}, pgx.ErrNoRows
	}
	return app, nil
}

func (m *mockEnrollmentRepo) ListByStudent(_ context.Context, studentID string) ([]domain.EnrollmentApplication, error) {
	var apps []domain.EnrollmentApplication
	for _, app := range m.byID {
		if app.StudentID == studentID {
			apps = append(apps, app)
		}
	}
	return apps, nil
}

func (m *mockEnrollmentRepo) ListByTutor(_ context.Context, tutorID string, filter repository.EnrollmentFilter) ([]domain.EnrollmentApplication, int, error) {
	var apps []domain.EnrollmentApplication
	for _, app := range m.byID {
		if app.TutorID != tutorID {
			continue
		}
		if filter.Status != "" && app.Status != domain.EnrollmentStatus(filter.Status) {
			continue
		}
		apps = append(apps, app)
	}
	return apps, len(apps), nil
}

func (m *mockEnrollmentRepo) Update(_ context.Context, id string, status domain.EnrollmentStatus, tutorResponse string) (domain.EnrollmentApplication, error) {
	app, ok := m.byID[id]
	if !ok {
		return domain.EnrollmentApplication{}, pgx.ErrNoRows
	}
	app.Status = status
	app.TutorResponse = tutorResponse
	app.UpdatedAt = time.Now().UTC()
	m.byID[id] = app
	return app, nil
}

func TestEnrollmentCreateStartsPending(t *testing.T) {
	repo := newMockEnrollmentRepo()
	svc := NewEnrollmentService(repo)

	app, err := svc.Create(context.Background(), "student-1", CreateEnrollmentInput{
		TutorID: "tutor-1",
		Subject: "math",
		Grade:   "8",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if app.Status != domain.EnrollmentPending {
		t.Fatalf("status = %q, want pending", app.Status)
	}
	if app.StudentID != "student-1" || app.TutorID != "tutor-1" {
		t.Fatalf("unexpected ownership: %+v", app)
	}
	if app.ID == "" {
		t.Fatal("missing generated id")
	}
}

func TestEnrollmentDecideTransitions(t *testing.T) {
	repo := newMockEnrollmentRepo()
	svc := NewEnrollmentService(repo)

	app, err := svc.Create(context.Background(), "student-1", CreateEnrollmentInput{TutorID: "tutor-1", Subject: "math"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Decide(context.Background(), "tutor-1", app.ID, domain.EnrollmentStatus("pending"), ""); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("err = %v, want ErrInvalidStatus", err)
	}
	if _, err := svc.Decide(context.Background(), "tutor-2", app.ID, domain.EnrollmentAccepted, ""); !errors.Is(err, ErrEnrollmentForbidden) {
		t.Fatalf("err = %v, want ErrEnrollmentForbidden", err)
	}
	if _, err := svc.Decide(context.Background(), "tutor-1", "missing", domain.EnrollmentAccepted, ""); !errors.Is(err, ErrEnrollmentNotFound) {
		t.Fatalf("err = %v, want ErrEnrollmentNotFound", err)
	}

	decided, err := svc.Decide(context.Background(), "tutor-1", app.ID, domain.EnrollmentAccepted, "welcome")
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if decided.Status != domain.EnrollmentAccepted || decided.TutorResponse != "welcome" {
		t.Fatalf("unexpected decision: %+v", decided)
	}

	// Una solicitud decidida es terminal.
	if _, err := svc.Decide(context.Background(), "tutor-1", app.ID, domain.EnrollmentRejected, ""); !errors.Is(err, ErrEnrollmentDecided) {
		t.Fatalf("err = %v, want ErrEnrollmentDecided", err)
	}
}

func TestEnrollmentListByTutorPagination(t *testing.T) {
	repo := newMockEnrollmentRepo()
	svc := NewEnrollmentService(repo)

	for i := 0; i < 25; i++ {
		if _, err := svc.Create(context.Background(), "student-1", CreateEnrollmentInput{TutorID: "tutor-1", Subject: "math"}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	page, err := svc.ListByTutor(context.Background(), "tutor-1", repository.EnrollmentFilter{Page: 0, Limit: 0})
	if err != nil {
		t.Fatalf("ListByTutor: %v", err)
	}
	if page.Page != 1 || page.Limit != 10 {
		t.Fatalf("defaults not applied: page=%d limit=%d", page.Page, page.Limit)
	}
	if page.Total != 25 || page.TotalPages != 3 {
		t.Fatalf("total=%d totalPages=%d, want 25/3", page.Total, page.TotalPages)
	}
}

func TestEnrollmentListByTutorStatusFilter(t *testing.T) {
	repo := newMockEnrollmentRepo()
	svc := NewEnrollmentService(repo)

	app, err := svc.Create(context.Background(), "student-1", CreateEnrollmentInput{TutorID: "tutor-1", Subject: "math"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(context.Background(), "student-2", CreateEnrollmentInput{TutorID: "tutor-1", Subject: "physics"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Decide(context.Background(), "tutor-1", app.ID, domain.EnrollmentRejected, "full"); err != nil {
		t.Fatalf("Decide: %v", err)
	}

	page, err := svc.ListByTutor(context.Background(), "tutor-1", repository.EnrollmentFilter{Status: "rejected"})
	if err != nil {
		t.Fatalf("ListByTutor: %v", err)
	}
	if page.Total != 1 {
		t.Fatalf("total = %d, want 1", page.Total)
	}
	if len(page.Applications) != 1 || page.Applications[0].ID != app.ID {
		t.Fatalf("unexpected filtered page: %+v", page.Applications)
	}
}
