package store

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"kpssquiz/internal/models"
)

func TestPostgresStore_LoadAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	login := created.Add(48 * time.Hour)
	mock.ExpectQuery(`SELECT username, isim, sifre, is_admin, sonuclar, created_at, last_login FROM users`).
		WillReturnRows(sqlmock.NewRows([]string{"username", "isim", "sifre", "is_admin", "sonuclar", "created_at", "last_login"}).
			AddRow("ayse", "Ayşe", "$2b$12$hash", true, []byte(`{"Tarih":{}}`), created, login).
			AddRow("mehmet", "Mehmet", "$2b$12$hash2", false, []byte(`{}`), created, nil))

	s := NewPostgresStore(db)
	accounts, err := s.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("got %d accounts, want 2", len(accounts))
	}
	if !accounts["ayse"].IsAdmin || accounts["ayse"].LastLogin == nil {
		t.Errorf("unexpected ayse: %+v", accounts["ayse"])
	}
	if accounts["mehmet"].LastLogin != nil {
		t.Errorf("mehmet.LastLogin: got %v, want nil", accounts["mehmet"].LastLogin)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPostgresStore_SaveAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM users`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO users`).
		WithArgs("ayse", "Ayşe", "$2b$12$hash", false, []byte(`{}`), sqlmock.AnyArg(), nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	s := NewPostgresStore(db)
	err = s.SaveAll(models.Accounts{
		"ayse": {DisplayName: "Ayşe", PasswordHash: "$2b$12$hash", CreatedAt: time.Now()},
	})
	if err != nil {
		t.Fatalf("SaveAll: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPostgresStore_SaveAll_RollbackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM users`).WillReturnError(errDummy)
	mock.ExpectRollback()

	s := NewPostgresStore(db)
	if err := s.SaveAll(models.Accounts{}); err == nil {
		t.Fatal("expected error, got nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

var errDummy = errFixed("boom")

type errFixed string

func (e errFixed) Error() string { return string(e) }
