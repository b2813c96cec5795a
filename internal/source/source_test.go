/*
 * Copyright 2025 Google LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package source

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoogleCloudPlatform/dataset-insights/internal/config"
	"github.com/GoogleCloudPlatform/dataset-insights/internal/dataset"
)

// stubHandler is a minimal dialect handler driven entirely by sqlmock.
type stubHandler struct{}

var _ DialectHandler = (*stubHandler)(nil)

func (stubHandler) CreateCloudSQLPool(cfg config.DatabaseConfig) (*sql.DB, error) {
	return nil, fmt.Errorf("not supported in tests")
}

func (stubHandler) CreateStandardPool(cfg config.DatabaseConfig) (*sql.DB, error) {
	return nil, fmt.Errorf("not supported in tests")
}

func (stubHandler) QuoteIdentifier(name string) string { return name }

func (stubHandler) ListTables(ctx context.Context, db *DB) ([]string, error) {
	rows, err := db.Pool.QueryContext(ctx, "SELECT table_name FROM catalog_tables")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func (stubHandler) ListColumns(ctx context.Context, db *DB, tableName string) ([]ColumnInfo, error) {
	rows, err := db.Pool.QueryContext(ctx, "SELECT column_name, data_type FROM catalog_columns WHERE table_name = ?", tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var cols []ColumnInfo
	for rows.Next() {
		var c ColumnInfo
		if err := rows.Scan(&c.Name, &c.DataType); err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

func (stubHandler) SampleQuery(tableName string, columns []string, limit int) string {
	return fmt.Sprintf("SELECT %s FROM %s LIMIT %d", strings.Join(columns, ", "), tableName, limit)
}

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	pool, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	return &DB{
		Pool:    pool,
		Handler: stubHandler{},
		Config:  config.DatabaseConfig{Dialect: "stub", DBName: "testdb", MaxRows: 10},
	}, mock
}

func expectCatalog(mock sqlmock.Sqlmock) {
	mock.ExpectQuery("SELECT table_name FROM catalog_tables").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("events"))
	mock.ExpectQuery("SELECT column_name, data_type FROM catalog_columns").
		WithArgs("events").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type"}).
			AddRow("id", "integer").
			AddRow("amount", "numeric").
			AddRow("label", "text"))
}

func TestFetchTable(t *testing.T) {
	db, mock := newMockDB(t)

	expectCatalog(mock)
	mock.ExpectQuery("SELECT id, amount, label FROM events LIMIT 10").
		WillReturnRows(sqlmock.NewRows([]string{"id", "amount", "label"}).
			AddRow("1", "9.5", "a").
			AddRow("2", nil, "b").
			AddRow("3", "7.25", nil))

	tbl, err := db.FetchTable(context.Background(), "events", nil)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, []string{"id", "amount", "label"}, tbl.Names())
	assert.Equal(t, 3, tbl.NumRows())

	amount := tbl.Column("amount")
	assert.Equal(t, dataset.Number(9.5), amount.Cells[0])
	assert.Equal(t, dataset.Missing, amount.Cells[1], "SQL NULL becomes a missing cell")
	assert.Equal(t, dataset.Number(7.25), amount.Cells[2])

	label := tbl.Column("label")
	assert.Equal(t, dataset.Text("a"), label.Cells[0])
	assert.Equal(t, dataset.Missing, label.Cells[2])
}

func TestFetchTableColumnSelection(t *testing.T) {
	db, mock := newMockDB(t)

	expectCatalog(mock)
	mock.ExpectQuery("SELECT amount FROM events LIMIT 10").
		WillReturnRows(sqlmock.NewRows([]string{"amount"}).AddRow("1.5"))

	tbl, err := db.FetchTable(context.Background(), "events", []string{"amount"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, []string{"amount"}, tbl.Names())
	assert.Equal(t, 1, tbl.NumRows())
}

func TestFetchTableUnknownTable(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT table_name FROM catalog_tables").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("events"))

	_, err := db.FetchTable(context.Background(), "users", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `table "users" does not exist`)
}

func TestFetchTableUnknownColumn(t *testing.T) {
	db, mock := newMockDB(t)

	expectCatalog(mock)

	_, err := db.FetchTable(context.Background(), "events", []string{"nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `column "nope" does not exist`)
}

func TestDialectHandlerRegistry(t *testing.T) {
	RegisterDialectHandler("stub-registry-test", stubHandler{})

	h, err := GetDialectHandler("stub-registry-test")
	require.NoError(t, err)
	assert.NotNil(t, h)

	_, err = GetDialectHandler("no-such-dialect")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database dialect")
}

func TestNewUnsupportedDialect(t *testing.T) {
	_, err := New(config.DatabaseConfig{Dialect: "oracle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database dialect")
}
