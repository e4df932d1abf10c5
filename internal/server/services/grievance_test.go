package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/citizendesk/grievance-server/internal/common"
	"github.com/citizendesk/grievance-server/internal/server/models"
)

func newGrievanceFixture(t *testing.T) (*GrievanceService, *fakeRepoManager, *fakeGateway, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repos := &fakeRepoManager{
		g: &fakeGrievancesRepo{},
		a: newFakeAttachmentsRepo(),
		o: newFakeOrphansRepo(),
	}
	gw := newFakeGateway()

	return NewGrievanceService(db, repos, gw, discardLogger()), repos, gw, mock
}

func TestDeleteGrievances_EmptyList(t *testing.T) {
	svc, _, _, _ := newGrievanceFixture(t)

	err := svc.DeleteGrievances(context.Background(), nil)
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestDeleteGrievances_SomeMissing(t *testing.T) {
	svc, repos, _, _ := newGrievanceFixture(t)
	repos.g.byIDs = []*models.Grievance{{GrievanceID: 1}} // one of two found

	err := svc.DeleteGrievances(context.Background(), []int64{1, 2})
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want ErrNotFound when any id is missing, got %v", err)
	}
	if len(repos.g.deleted) != 0 {
		t.Fatal("nothing may be deleted when the batch is rejected")
	}
}

func TestDeleteGrievances_DeletesObjectsAndRows(t *testing.T) {
	svc, repos, gw, mock := newGrievanceFixture(t)

	repos.g.byIDs = []*models.Grievance{{GrievanceID: 1}, {GrievanceID: 2}}
	repos.a.keys = []string{"grievances/1/a_x.jpg", "grievances/2/b_y.pdf"}
	gw.simulatePut("grievances/1/a_x.jpg", 10)
	gw.simulatePut("grievances/2/b_y.pdf", 20)

	mock.ExpectBegin()
	mock.ExpectCommit()

	if err := svc.DeleteGrievances(context.Background(), []int64{1, 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(gw.deleted) != 2 {
		t.Fatalf("expected 2 object deletes, got %v", gw.deleted)
	}
	if len(repos.a.deletedGrievances) != 1 || len(repos.g.deleted) != 1 {
		t.Fatal("ledger rows and cases must both be deleted")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("tx expectations: %v", err)
	}
}

func TestDeleteGrievances_FailedObjectDeleteIsQueued(t *testing.T) {
	svc, repos, gw, mock := newGrievanceFixture(t)

	repos.g.byIDs = []*models.Grievance{{GrievanceID: 1}}
	repos.a.keys = []string{"grievances/1/a_x.jpg", "grievances/1/b_y.pdf"}
	gw.simulatePut("grievances/1/a_x.jpg", 10)
	gw.simulatePut("grievances/1/b_y.pdf", 20)
	gw.failDelete = map[string]error{
		"grievances/1/a_x.jpg": fmt.Errorf("delete: %w", common.ErrStorageUnavailable),
	}

	mock.ExpectBegin()
	mock.ExpectCommit()

	// One stuck object must not fail the batch.
	if err := svc.DeleteGrievances(context.Background(), []int64{1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if repos.o.recorded["grievances/1/a_x.jpg"] != 1 {
		t.Fatalf("failed key must be queued, recorded=%v", repos.o.recorded)
	}
	if len(gw.deleted) != 1 || gw.deleted[0] != "grievances/1/b_y.pdf" {
		t.Fatalf("remaining keys must still be deleted, got %v", gw.deleted)
	}
	if len(repos.g.deleted) != 1 {
		t.Fatal("ledger delete must proceed despite the stuck object")
	}
}

func TestDeleteGrievances_TxRollbackOnRepoError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	defer func() { _ = db.Close() }()

	repos := &fakeRepoManager{
		g: &fakeGrievancesRepo{byIDs: []*models.Grievance{{GrievanceID: 1}}},
		a: newFakeAttachmentsRepo(),
		o: newFakeOrphansRepo(),
	}
	boom := errors.New("constraint violation")
	repos.a.deleteErr = boom
	svc := NewGrievanceService(db, repos, newFakeGateway(), discardLogger())

	mock.ExpectBegin()
	mock.ExpectRollback()

	err = svc.DeleteGrievances(context.Background(), []int64{1})
	if !errors.Is(err, boom) {
		t.Fatalf("want the repo error surfaced, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("tx expectations: %v", err)
	}
}
