package repository_test

import (
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/NNikoGG/water-quality-monitoring/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestUserRepository_Create_ReturnsLastInsertID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer func() { _ = db.Close() }()

	repo := repository.NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("alice", "hashed-secret").
		WillReturnResult(sqlmock.NewResult(7, 1))

	id, err := repo.Create("alice", "hashed-secret")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if id != 7 {
		t.Fatalf("Create() id = %d, want 7", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_Create_ExecErrorIsPropagated(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer func() { _ = db.Close() }()

	repo := repository.NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("alice", "hashed-secret").
		WillReturnError(errors.New("UNIQUE constraint failed"))

	if _, err := repo.Create("alice", "hashed-secret"); err == nil {
		t.Fatalf("Create() expected error, got nil")
	}
}

func TestUserRepository_GetByUsername_HappyPath(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer func() { _ = db.Close() }()

	repo := repository.NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"id", "username", "password_hash"}).
		AddRow(3, "bob", "hash")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, username, password_hash FROM users")).
		WithArgs("bob").
		WillReturnRows(rows)

	got, err := repo.GetByUsername("bob")
	if err != nil {
		t.Fatalf("GetByUsername() error = %v", err)
	}
	if got == nil || got.ID != 3 || got.Username != "bob" || got.PasswordHash != "hash" {
		t.Fatalf("GetByUsername() unexpected user: %+v", got)
	}
}

func TestUserRepository_GetByUsername_NotFoundReturnsNilNil(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer func() { _ = db.Close() }()

	repo := repository.NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, username, password_hash FROM users")).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	got, err := repo.GetByUsername("ghost")
	if err != nil {
		t.Fatalf("GetByUsername() unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("GetByUsername() expected nil user, got: %+v", got)
	}
}
