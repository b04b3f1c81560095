package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE orders").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := WithTx(context.Background(), db, func(tx *sql.Tx) error {
		_, err := tx.Exec("UPDATE orders SET status = ? WHERE id = ?", "confirmed", 1)
		return err
	})
	if err != nil {
		t.Errorf("Expected nil error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Database expectations were not met: %v", err)
	}
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("item insert failed")
	err := WithTx(context.Background(), db, func(tx *sql.Tx) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("Expected the callback error back, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Database expectations were not met: %v", err)
	}
}

func TestWithTx_RollsBackOnPanic(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	defer func() {
		if p := recover(); p == nil {
			t.Fatal("Expected the panic to propagate")
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("Database expectations were not met: %v", err)
		}
	}()

	_ = WithTx(context.Background(), db, func(tx *sql.Tx) error {
		panic("mid-transaction panic")
	})
}

func TestWithTx_BeginFailure(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin().WillReturnError(errors.New("pool exhausted"))

	called := false
	err := WithTx(context.Background(), db, func(tx *sql.Tx) error {
		called = true
		return nil
	})
	if err == nil {
		t.Error("Expected an error when the transaction cannot start")
	}
	if called {
		t.Error("Callback must not run without a transaction")
	}
}
