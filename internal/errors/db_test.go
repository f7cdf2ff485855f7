package errors

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapDBError_Nil(t *testing.T) {
	if got := MapDBError(nil); got != nil {
		t.Errorf("MapDBError(nil) = %v, want nil", got)
	}
}

func TestMapDBError_ContextErrors(t *testing.T) {
	if !IsTimeout(MapDBError(context.DeadlineExceeded)) {
		t.Error("deadline exceeded should map to timeout")
	}
	if !IsCanceled(MapDBError(context.Canceled)) {
		t.Error("canceled context should map to canceled")
	}
}

func TestMapDBError_NoRows(t *testing.T) {
	err := MapDBError(pgx.ErrNoRows)
	if !IsNotFound(err) {
		t.Errorf("MapDBError(pgx.ErrNoRows) = %v, want not_found", err)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		t.Error("mapped error should keep pgx.ErrNoRows as cause")
	}
}

func TestMapDBError_UniqueViolation(t *testing.T) {
	tests := []struct {
		name      string
		pgErr     *pgconn.PgError
		wantField string
	}{
		{
			name: "column name metadata",
			pgErr: &pgconn.PgError{
				Code:       pgerrcode.UniqueViolation,
				ColumnName: "name",
			},
			wantField: "name",
		},
		{
			name: "field parsed from detail",
			pgErr: &pgconn.PgError{
				Code:   pgerrcode.UniqueViolation,
				Detail: "Key (name)=(batch-42) already exists.",
			},
			wantField: "name",
		},
		{
			name: "field inferred from constraint",
			pgErr: &pgconn.PgError{
				Code:           pgerrcode.UniqueViolation,
				ConstraintName: "job_sets_name_key",
			},
			wantField: "name",
		},
		{
			name: "ambiguous multi-column constraint",
			pgErr: &pgconn.PgError{
				Code:           pgerrcode.UniqueViolation,
				ConstraintName: "job_set_jobs_set_id_position_key",
			},
			wantField: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapDBError(tt.pgErr)
			if !IsConflict(err) {
				t.Fatalf("MapDBError() = %v, want conflict", err)
			}
			var appErr *AppError
			if !errors.As(err, &appErr) {
				t.Fatal("mapped error is not an *AppError")
			}
			if appErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", appErr.Field, tt.wantField)
			}
		})
	}
}

func TestMapDBError_ForeignKeyViolation(t *testing.T) {
	err := MapDBError(&pgconn.PgError{
		Code:      pgerrcode.ForeignKeyViolation,
		TableName: "job_set_jobs",
	})

	var appErr *AppError
	if !errors.As(err, &appErr) {
		t.Fatal("mapped error is not an *AppError")
	}
	if appErr.Code != ErrCodeForeignKey {
		t.Errorf("Code = %v, want %v", appErr.Code, ErrCodeForeignKey)
	}
}

func TestMapDBError_NotNullViolation(t *testing.T) {
	err := MapDBError(&pgconn.PgError{
		Code:       pgerrcode.NotNullViolation,
		ColumnName: "backend_name",
	})

	var appErr *AppError
	if !errors.As(err, &appErr) {
		t.Fatal("mapped error is not an *AppError")
	}
	if !IsValidation(err) || appErr.Field != "backend_name" {
		t.Errorf("got code=%v field=%q, want validation on backend_name", appErr.Code, appErr.Field)
	}
}

func TestMapDBError_UnrecognizedPgError(t *testing.T) {
	err := MapDBError(&pgconn.PgError{Code: pgerrcode.AdminShutdown})
	if !IsInternal(err) {
		t.Errorf("MapDBError() = %v, want internal", err)
	}
}

func TestMapDBError_PassThrough(t *testing.T) {
	plain := errors.New("not a database error")
	if got := MapDBError(plain); !errors.Is(got, plain) {
		t.Errorf("MapDBError() = %v, want original error", got)
	}
}
