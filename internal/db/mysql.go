package db

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
)

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id VARCHAR(255) PRIMARY KEY,
		username VARCHAR(255) UNIQUE NOT NULL,
		password VARCHAR(255) NOT NULL,
		created_at BIGINT NOT NULL
	) ENGINE=InnoDB;`,
	`CREATE TABLE IF NOT EXISTS notes (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		owner VARCHAR(255) NOT NULL,
		title TEXT NOT NULL,
		content MEDIUMTEXT NOT NULL,
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL,
		INDEX idx_notes_owner_updated (owner, updated_at)
	) ENGINE=InnoDB;`,
}

// InitMySQL connects to a MySQL server and creates the schema if missing.
func InitMySQL(user, password, host, dbName string) (*sql.DB, error) {
	// clientFoundRows makes UPDATE report matched rows, so an unchanged note still counts as found.
	dsn := fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&clientFoundRows=true&charset=utf8mb4", user, password, host, dbName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mysql ping failed: %w", err)
	}

	if err := createSchema(db, mysqlSchema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
