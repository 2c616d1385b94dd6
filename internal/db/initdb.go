package db

import (
	"database/sql"
	"fmt"
	"log"
	"net/url"
	"strings"

	_ "github.com/lib/pq"
)

// CreateDatabaseIfNotExists connects to the server's default postgres
// database and creates the target database when missing, so a fresh
// deployment starts without manual setup.
func CreateDatabaseIfNotExists(connString string) error {
	dbName, err := extractDBName(connString)
	if err != nil {
		return fmt.Errorf("failed to parse connection string: %w", err)
	}

	rootConnStr, err := replaceDBName(connString, "postgres")
	if err != nil {
		return fmt.Errorf("failed to build root connection string: %w", err)
	}

	db, err := sql.Open("postgres", rootConnStr)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer db.Close()

	var exists bool
	err = db.QueryRow("SELECT 1 FROM pg_database WHERE datname = $1", dbName).Scan(&exists)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to check if database exists: %w", err)
	}

	if !exists {
		log.Printf("Creating database: %s", dbName)
		if _, err = db.Exec("CREATE DATABASE " + dbName); err != nil {
			return fmt.Errorf("failed to create database: %w", err)
		}
	}

	return nil
}

func extractDBName(connString string) (string, error) {
	if strings.HasPrefix(connString, "postgres://") || strings.HasPrefix(connString, "postgresql://") {
		u, err := url.Parse(connString)
		if err != nil {
			return "", fmt.Errorf("failed to parse connection URL: %w", err)
		}
		return strings.TrimPrefix(u.Path, "/"), nil
	}

	for _, pair := range strings.Fields(connString) {
		if strings.HasPrefix(pair, "dbname=") {
			return strings.TrimPrefix(pair, "dbname="), nil
		}
	}

	return "", fmt.Errorf("could not find database name in connection string")
}

func replaceDBName(connString, newName string) (string, error) {
	if strings.HasPrefix(connString, "postgres://") || strings.HasPrefix(connString, "postgresql://") {
		u, err := url.Parse(connString)
		if err != nil {
			return "", err
		}
		u.Path = "/" + newName
		return u.String(), nil
	}

	var result []string
	for _, pair := range strings.Fields(connString) {
		if strings.HasPrefix(pair, "dbname=") {
			result = append(result, "dbname="+newName)
		} else {
			result = append(result, pair)
		}
	}
	return strings.Join(result, " "), nil
}
