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

// Package source loads a bounded sample of a SQL table into a dataset.Table.
// Dialect-specific behavior (connection pools, identifier quoting, catalog
// queries, row limits) lives behind DialectHandler implementations that
// register themselves on import.
package source

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/GoogleCloudPlatform/dataset-insights/internal/config"
	"github.com/GoogleCloudPlatform/dataset-insights/internal/dataset"
)

// ColumnInfo holds basic information about a database column.
type ColumnInfo struct {
	Name     string
	DataType string
}

// DialectHandler defines the dialect-specific operations the source needs.
type DialectHandler interface {
	CreateCloudSQLPool(cfg config.DatabaseConfig) (*sql.DB, error)
	CreateStandardPool(cfg config.DatabaseConfig) (*sql.DB, error)
	QuoteIdentifier(name string) string
	ListTables(ctx context.Context, db *DB) ([]string, error)
	ListColumns(ctx context.Context, db *DB, tableName string) ([]ColumnInfo, error)
	// SampleQuery builds the bounded row-select statement. Identifiers are
	// quoted by the handler; limit is always positive.
	SampleQuery(tableName string, columns []string, limit int) string
}

// DB holds the database connection pool and dialect handler.
type DB struct {
	Pool    *sql.DB
	Handler DialectHandler
	Config  config.DatabaseConfig
}

var (
	dialectHandlers = make(map[string]DialectHandler)
	mu              sync.RWMutex
)

func RegisterDialectHandler(dialect string, handler DialectHandler) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := dialectHandlers[dialect]; exists {
		log.Printf("WARN: Dialect handler for '%s' is being overwritten.", dialect)
	}
	dialectHandlers[dialect] = handler
}

func GetDialectHandler(dialect string) (DialectHandler, error) {
	mu.RLock()
	defer mu.RUnlock()
	handler, ok := dialectHandlers[dialect]
	if !ok {
		return nil, fmt.Errorf("unsupported database dialect: %s", dialect)
	}
	return handler, nil
}

// New opens a connection pool for the configured dialect and verifies it with
// a ping. Dialects prefixed "cloudsql" connect through the Cloud SQL
// connector.
func New(cfg config.DatabaseConfig) (*DB, error) {
	handler, err := GetDialectHandler(cfg.Dialect)
	if err != nil {
		return nil, err
	}

	var pool *sql.DB
	if strings.HasPrefix(cfg.Dialect, "cloudsql") {
		pool, err = handler.CreateCloudSQLPool(cfg)
	} else {
		pool, err = handler.CreateStandardPool(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool for dialect %s: %w", cfg.Dialect, err)
	}

	if err := pool.PingContext(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database (ping failed) for dialect %s: %w", cfg.Dialect, err)
	}

	return &DB{
		Pool:    pool,
		Handler: handler,
		Config:  cfg,
	}, nil
}

func (db *DB) GetConfig() config.DatabaseConfig {
	return db.Config
}

func (db *DB) Ping(ctx context.Context) error {
	if db.Pool == nil {
		return fmt.Errorf("database connection pool is not initialized")
	}
	return db.Pool.PingContext(ctx)
}

func (db *DB) Close() error {
	if db.Pool != nil {
		return db.Pool.Close()
	}
	log.Println("WARN: Attempted to close a nil database connection pool.")
	return nil
}

func (db *DB) ListTables(ctx context.Context) ([]string, error) {
	if db.Handler == nil {
		return nil, fmt.Errorf("dialect handler not initialized")
	}
	return db.Handler.ListTables(ctx, db)
}

func (db *DB) ListColumns(ctx context.Context, tableName string) ([]ColumnInfo, error) {
	if db.Handler == nil {
		return nil, fmt.Errorf("dialect handler not initialized")
	}
	return db.Handler.ListColumns(ctx, db, tableName)
}

// FetchTable loads up to Config.MaxRows rows of the named table into a
// dataset.Table. Table and column names are validated against the catalog
// before they are interpolated into the select statement; identifiers cannot
// be bound as query parameters. An empty columns slice selects every column
// in catalog order. NULL cells become missing values; everything else goes
// through the standard cell parser.
func (db *DB) FetchTable(ctx context.Context, tableName string, columns []string) (*dataset.Table, error) {
	if db.Handler == nil {
		return nil, fmt.Errorf("dialect handler not initialized")
	}

	tables, err := db.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	if !containsString(tables, tableName) {
		return nil, fmt.Errorf("table %q does not exist in the database", tableName)
	}

	catalog, err := db.ListColumns(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("listing columns for table %s: %w", tableName, err)
	}
	if len(columns) == 0 {
		for _, c := range catalog {
			columns = append(columns, c.Name)
		}
	} else {
		known := make(map[string]bool, len(catalog))
		for _, c := range catalog {
			known[c.Name] = true
		}
		for _, name := range columns {
			if !known[name] {
				return nil, fmt.Errorf("column %q does not exist in table %s", name, tableName)
			}
		}
	}

	limit := db.Config.MaxRows
	if limit <= 0 {
		limit = 100000
	}
	query := db.Handler.SampleQuery(tableName, columns, limit)

	rows, err := db.Pool.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying table %s: %w", tableName, err)
	}
	defer rows.Close()

	var data [][]dataset.Value
	raw := make([]sql.NullString, len(columns))
	scan := make([]interface{}, len(columns))
	for i := range raw {
		scan[i] = &raw[i]
	}
	for rows.Next() {
		if err := rows.Scan(scan...); err != nil {
			return nil, fmt.Errorf("scanning row from table %s: %w", tableName, err)
		}
		row := make([]dataset.Value, len(columns))
		for i, cell := range raw {
			if !cell.Valid {
				row[i] = dataset.Missing
				continue
			}
			row[i] = dataset.Parse(cell.String)
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows of table %s: %w", tableName, err)
	}

	return dataset.New(columns, data)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
