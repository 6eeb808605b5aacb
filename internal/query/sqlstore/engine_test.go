package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"math/big"
	"regexp"
	"strings"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/menulens/menulens/internal/query"
)

func TestExecuteMaterializesRowsAndPassesStatementThrough(t *testing.T) {
	db, mock := newSQLMock(t)
	statement := "SELECT r.name, SUM(o.total_amount) AS revenue FROM restaurants r JOIN orders o ON o.restaurant_id = r.id GROUP BY r.name ORDER BY revenue DESC LIMIT 5;"

	mock.ExpectQuery(regexp.QuoteMeta(statement)).
		WillReturnRows(sqlmock.NewRows([]string{"name", "revenue"}).
			AddRow([]byte("Bella Vista"), 1520.5).
			AddRow("Dragon Palace", 990.0).
			AddRow("Taco Fiesta", nil))

	result, err := NewEngine(db).Execute(context.Background(), query.Request{SQL: statement})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if strings.Join(result.Columns, ",") != "name,revenue" {
		t.Fatalf("Columns = %v", result.Columns)
	}
	if result.RowCount() != 3 {
		t.Fatalf("RowCount() = %d", result.RowCount())
	}
	if result.Rows[0][0] != "Bella Vista" {
		t.Fatalf("[]byte value not normalized: %#v", result.Rows[0][0])
	}
	if result.Rows[2][1] != nil {
		t.Fatalf("NULL value = %#v", result.Rows[2][1])
	}
	if result.Truncated {
		t.Fatalf("Truncated = true without a row limit")
	}
	for i, row := range result.Rows {
		if len(row) != len(result.Columns) {
			t.Fatalf("row %d has %d values", i, len(row))
		}
	}
	assertSQLMock(t, mock)
}

func TestExecuteReturnsEmptyResultWithColumns(t *testing.T) {
	db, mock := newSQLMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM orders WHERE total_amount > 1000000;")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	result, err := NewEngine(db).Execute(context.Background(), query.Request{SQL: "SELECT id FROM orders WHERE total_amount > 1000000;"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.RowCount() != 0 || len(result.Columns) != 1 {
		t.Fatalf("Execute() = %+v", result)
	}
	assertSQLMock(t, mock)
}

func TestExecuteRowLimitTruncatesWithoutRewritingSQL(t *testing.T) {
	db, mock := newSQLMock(t)
	statement := "SELECT id FROM orders;"
	mock.ExpectQuery("^" + regexp.QuoteMeta(statement) + "$").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)).AddRow(int64(2)).AddRow(int64(3)))

	result, err := NewEngine(db).Execute(context.Background(), query.Request{SQL: statement, RowLimit: 2})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.RowCount() != 2 {
		t.Fatalf("RowCount() = %d", result.RowCount())
	}
	if !result.Truncated {
		t.Fatalf("Truncated = false")
	}
	assertSQLMock(t, mock)
}

func TestExecuteRowLimitNotTruncatedAtExactCount(t *testing.T) {
	db, mock := newSQLMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM orders;")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)).AddRow(int64(2)))

	result, err := NewEngine(db).Execute(context.Background(), query.Request{SQL: "SELECT id FROM orders;", RowLimit: 2})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.RowCount() != 2 || result.Truncated {
		t.Fatalf("Execute() rows=%d truncated=%v", result.RowCount(), result.Truncated)
	}
	assertSQLMock(t, mock)
}

func TestExecuteWrapsDatabaseError(t *testing.T) {
	db, mock := newSQLMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT nope FROM restaurants;")).
		WillReturnError(errors.New("no such column: nope"))

	_, err := NewEngine(db).Execute(context.Background(), query.Request{SQL: "SELECT nope FROM restaurants;"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "no such column: nope") {
		t.Fatalf("error lost database message: %v", err)
	}
	assertSQLMock(t, mock)
}

func TestExecuteRejectsEmptyStatement(t *testing.T) {
	db, _ := newSQLMock(t)
	if _, err := NewEngine(db).Execute(context.Background(), query.Request{SQL: "  "}); err == nil {
		t.Fatalf("expected error for empty sql")
	}
	if _, err := (&Engine{}).Execute(context.Background(), query.Request{SQL: "SELECT 1;"}); err == nil {
		t.Fatalf("expected error for missing database")
	}
}

type decimalValue struct{ v float64 }

func (d decimalValue) Float64() float64 { return d.v }

func TestNormalizeValue(t *testing.T) {
	huge, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	cases := []struct {
		name  string
		input any
		want  any
	}{
		{name: "bytes", input: []byte("abc"), want: "abc"},
		{name: "small big int", input: big.NewInt(42), want: int64(42)},
		{name: "huge big int", input: huge, want: float64(1.23456789012345678901234567890e29)},
		{name: "decimal", input: decimalValue{v: 12.5}, want: 12.5},
		{name: "int64", input: int64(7), want: int64(7)},
		{name: "nil", input: nil, want: nil},
	}
	for _, tc := range cases {
		if got := normalizeValue(tc.input); got != tc.want {
			t.Fatalf("%s: normalizeValue() = %#v, want %#v", tc.name, got, tc.want)
		}
	}
}

func newSQLMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func assertSQLMock(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sql expectations: %v", err)
	}
}
