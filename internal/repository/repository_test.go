package repository

import (
	"context"
	"database/sql"
	"log"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var testDB *sql.DB

func setupTestDB() (func(context.Context, ...testcontainers.TerminateOption) error, error) {
	var (
		dbName = "testdb"
		dbPwd  = "password"
		dbUser = "user"
	)

	dbContainer, err := postgres.Run(
		context.Background(),
		"postgres:15",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		return nil, err
	}

	dbHost, err := dbContainer.Host(context.Background())
	if err != nil {
		return dbContainer.Terminate, err
	}

	dbPort, err := dbContainer.MappedPort(context.Background(), "5432/tcp")
	if err != nil {
		return dbContainer.Terminate, err
	}

	connStr := "postgres://" + dbUser + ":" + dbPwd + "@" + dbHost + ":" + dbPort.Port() + "/" + dbName + "?sslmode=disable"
	testDB, err = sql.Open("pgx", connStr)
	if err != nil {
		return dbContainer.Terminate, err
	}

	// Same shape the goose migrations create
	_, err = testDB.Exec(`
		CREATE TABLE IF NOT EXISTS categories (
			id UUID PRIMARY KEY,
			title VARCHAR(100) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			CONSTRAINT categories_title_key UNIQUE (title)
		)
	`)
	if err != nil {
		return dbContainer.Terminate, err
	}

	_, err = testDB.Exec(`
		CREATE TABLE IF NOT EXISTS products (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			category_id UUID,
			price NUMERIC(10, 2) NOT NULL CHECK (price >= 0),
			brand VARCHAR(100) NOT NULL,
			quantity INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			CONSTRAINT fk_products_category FOREIGN KEY (category_id)
				REFERENCES categories (id) ON DELETE CASCADE
		)
	`)
	if err != nil {
		return dbContainer.Terminate, err
	}

	return dbContainer.Terminate, nil
}

func TestMain(m *testing.M) {
	teardown, err := setupTestDB()
	if err != nil {
		log.Fatalf("could not start postgres container: %v", err)
	}

	m.Run()

	if teardown != nil {
		if err := teardown(context.Background()); err != nil {
			log.Fatalf("could not teardown postgres container: %v", err)
		}
	}
}

// resetTables clears all rows between tests
func resetTables(t *testing.T) {
	t.Helper()
	if _, err := testDB.Exec("DELETE FROM products"); err != nil {
		t.Fatalf("failed to clear products: %v", err)
	}
	if _, err := testDB.Exec("DELETE FROM categories"); err != nil {
		t.Fatalf("failed to clear categories: %v", err)
	}
}
