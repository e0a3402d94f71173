package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
)

// Params describes one SQL connection.
type Params struct {
	Driver string // mysql or postgres
	User   string
	Pass   string
	Host   string
	Port   string
	Name   string
}

// DSN builds the driver-specific connection string.
func DSN(p Params) (string, error) {
	switch p.Driver {
	case "mysql":
		auth := p.User
		if p.Pass != "" {
			auth = fmt.Sprintf("%s:%s", p.User, p.Pass)
		}
		// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
		return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
			auth, p.Host, p.Port, p.Name), nil
	case "postgres":
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			p.Host, p.Port, p.User, p.Pass, p.Name), nil
	}
	return "", fmt.Errorf("unsupported database driver %q", p.Driver)
}

// Open connects to the database and verifies the connection.
func Open(p Params) (*sql.DB, error) {
	dsn, err := DSN(p)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(p.Driver, dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", p.Driver, err)
	}
	return db, nil
}
