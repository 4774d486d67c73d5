// Package metastore reads table and partition metadata from a Hive
// metastore backing database (the TBLS/SDS/PARTITIONS relational schema).
package metastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/orcify/orcify/hive"
	"github.com/orcify/orcify/internal/executor"
)

// Client is a read-only hive.Catalog backed by the metastore database.
type Client struct {
	db     *sql.DB
	driver string
}

// Connect opens the metastore backing database and verifies the connection.
func Connect(ctx context.Context, connString string) (*Client, error) {
	db, err := executor.Open(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to metastore: %w", err)
	}
	return &Client{db: db, driver: executor.DetectDriver(connString)}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

// DB exposes the underlying connection so publish statements can run
// against the same database.
func (c *Client) DB() *sql.DB {
	return c.db
}

// rebind converts ? placeholders to the $n form Postgres expects. The
// sqlite and libsql drivers take ? as written.
func (c *Client) rebind(query string) string {
	if c.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// GetTable reads one table's metadata. A missing table reports
// hive.ErrNotFound so callers can distinguish first-run conversions from
// real failures.
func (c *Client) GetTable(ctx context.Context, database, table string) (*hive.TableMeta, error) {
	var (
		tblID    int64
		sdID     int64
		location sql.NullString
	)
	err := c.db.QueryRowContext(ctx, c.rebind(`
		SELECT t."TBL_ID", s."SD_ID", s."LOCATION"
		FROM "TBLS" t
		JOIN "DBS" d ON t."DB_ID" = d."DB_ID"
		JOIN "SDS" s ON t."SD_ID" = s."SD_ID"
		WHERE d."NAME" = ? AND t."TBL_NAME" = ?
	`), database, table).Scan(&tblID, &sdID, &location)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("table %s.%s: %w", database, table, hive.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query table %s.%s: %w", database, table, err)
	}

	meta := &hive.TableMeta{
		Database:     database,
		Name:         table,
		DataLocation: location.String,
	}

	if meta.Columns, err = c.storageColumns(ctx, sdID); err != nil {
		return nil, err
	}
	if meta.PartitionKeys, err = c.partitionKeys(ctx, tblID); err != nil {
		return nil, err
	}
	if meta.Parameters, err = c.params(ctx, `SELECT "PARAM_KEY", "PARAM_VALUE" FROM "TABLE_PARAMS" WHERE "TBL_ID" = ?`, tblID); err != nil {
		return nil, err
	}

	return meta, nil
}

// GetPartitions lists the table's partitions with their key values, data
// locations, and parameters.
func (c *Client) GetPartitions(ctx context.Context, database, table string) ([]hive.PartitionMeta, error) {
	meta, err := c.GetTable(ctx, database, table)
	if err != nil {
		return nil, err
	}
	tblID, err := c.tableID(ctx, database, table)
	if err != nil {
		return nil, err
	}

	keyTypes := make([]string, len(meta.PartitionKeys))
	for i, key := range meta.PartitionKeys {
		keyTypes[i] = key.Type
	}

	rows, err := c.db.QueryContext(ctx, c.rebind(`
		SELECT p."PART_ID", p."PART_NAME", s."LOCATION"
		FROM "PARTITIONS" p
		JOIN "SDS" s ON p."SD_ID" = s."SD_ID"
		WHERE p."TBL_ID" = ?
		ORDER BY p."PART_NAME"
	`), tblID)
	if err != nil {
		return nil, fmt.Errorf("failed to query partitions of %s.%s: %w", database, table, err)
	}
	defer rows.Close()

	var partitions []hive.PartitionMeta
	for rows.Next() {
		var (
			partID   int64
			partName string
			location sql.NullString
		)
		if err := rows.Scan(&partID, &partName, &location); err != nil {
			return nil, fmt.Errorf("failed to scan partition row: %w", err)
		}
		partitions = append(partitions, hive.PartitionMeta{
			// PART_NAME joins keys with '/'; the catalog form uses ','.
			Name:         strings.ReplaceAll(partName, "/", ","),
			DataLocation: location.String,
			KeyTypes:     strings.Join(keyTypes, ","),
		})
		idx := len(partitions) - 1
		if partitions[idx].Values, err = c.partitionValues(ctx, partID); err != nil {
			return nil, err
		}
		if partitions[idx].Parameters, err = c.params(ctx, `SELECT "PARAM_KEY", "PARAM_VALUE" FROM "PARTITION_PARAMS" WHERE "PART_ID" = ?`, partID); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read partitions of %s.%s: %w", database, table, err)
	}

	return partitions, nil
}

func (c *Client) tableID(ctx context.Context, database, table string) (int64, error) {
	var tblID int64
	err := c.db.QueryRowContext(ctx, c.rebind(`
		SELECT t."TBL_ID"
		FROM "TBLS" t
		JOIN "DBS" d ON t."DB_ID" = d."DB_ID"
		WHERE d."NAME" = ? AND t."TBL_NAME" = ?
	`), database, table).Scan(&tblID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("table %s.%s: %w", database, table, hive.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query table %s.%s: %w", database, table, err)
	}
	return tblID, nil
}

func (c *Client) storageColumns(ctx context.Context, sdID int64) (hive.Columns, error) {
	rows, err := c.db.QueryContext(ctx, c.rebind(`
		SELECT c."COLUMN_NAME", c."TYPE_NAME", c."COMMENT"
		FROM "COLUMNS_V2" c
		JOIN "SDS" s ON c."CD_ID" = s."CD_ID"
		WHERE s."SD_ID" = ?
		ORDER BY c."INTEGER_IDX"
	`), sdID)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns: %w", err)
	}
	defer rows.Close()

	var columns hive.Columns
	for rows.Next() {
		var (
			col     hive.Column
			comment sql.NullString
		)
		if err := rows.Scan(&col.Name, &col.Type, &comment); err != nil {
			return nil, fmt.Errorf("failed to scan column row: %w", err)
		}
		col.Comment = comment.String
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

func (c *Client) partitionKeys(ctx context.Context, tblID int64) (hive.Columns, error) {
	rows, err := c.db.QueryContext(ctx, c.rebind(`
		SELECT "PKEY_NAME", "PKEY_TYPE"
		FROM "PARTITION_KEYS"
		WHERE "TBL_ID" = ?
		ORDER BY "INTEGER_IDX"
	`), tblID)
	if err != nil {
		return nil, fmt.Errorf("failed to query partition keys: %w", err)
	}
	defer rows.Close()

	var keys hive.Columns
	for rows.Next() {
		var key hive.Column
		if err := rows.Scan(&key.Name, &key.Type); err != nil {
			return nil, fmt.Errorf("failed to scan partition key row: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

func (c *Client) partitionValues(ctx context.Context, partID int64) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, c.rebind(`
		SELECT "PART_KEY_VAL"
		FROM "PARTITION_KEY_VALS"
		WHERE "PART_ID" = ?
		ORDER BY "INTEGER_IDX"
	`), partID)
	if err != nil {
		return nil, fmt.Errorf("failed to query partition values: %w", err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("failed to scan partition value row: %w", err)
		}
		values = append(values, value)
	}
	return values, rows.Err()
}

func (c *Client) params(ctx context.Context, query string, id int64) (map[string]string, error) {
	rows, err := c.db.QueryContext(ctx, c.rebind(query), id)
	if err != nil {
		return nil, fmt.Errorf("failed to query parameters: %w", err)
	}
	defer rows.Close()

	params := make(map[string]string)
	for rows.Next() {
		var key string
		var value sql.NullString
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan parameter row: %w", err)
		}
		params[key] = value.String
	}
	return params, rows.Err()
}
