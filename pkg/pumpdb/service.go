// PumpDB is the durable store for pump telemetry: append-only raw
// measurement rows plus 15-minute aggregate buckets. It is written by
// the ingestion path and the aggregation job and read by anything.
package pumpdb

import (
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/NotCoffee418/dbmigrator"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// DB wraps the sqlite connection. Obtain one with Open.
type DB struct {
	conn *sql.DB
	now  func() time.Time
}

// Open connects to the sqlite database at path, creating it and
// applying migrations as needed.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("pumpdb: open %s: %w", path, err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("pumpdb: ping: %w", err)
	}

	// Apply migrations
	dbmigrator.SetDatabaseType(dbmigrator.SQLite)
	<-dbmigrator.MigrateUpCh(
		conn,
		migrationFS,
		"migrations",
	)

	return &DB{conn: conn, now: time.Now}, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}
