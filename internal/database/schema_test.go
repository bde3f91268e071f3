package database

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const migrationsDir = "../../migrations"

func readMigration(t *testing.T, name string) string {
	t.Helper()
	content, err := os.ReadFile(filepath.Join(migrationsDir, name))
	require.NoError(t, err, "read migration %s", name)
	return string(content)
}

func TestMigrationFilesExist(t *testing.T) {
	expectedMigrations := []string{
		"00001_create_categories_table.sql",
		"00002_create_products_table.sql",
		"00003_create_profiles_table.sql",
		"00004_create_page_views_table.sql",
		"00005_create_product_views_table.sql",
		"00006_create_dashboard_stats_view.sql",
	}

	for _, migration := range expectedMigrations {
		_, err := os.Stat(filepath.Join(migrationsDir, migration))
		assert.NoError(t, err, "migration file %s", migration)
	}
}

func TestMigrationFilesHaveUpAndDown(t *testing.T) {
	files, err := os.ReadDir(migrationsDir)
	require.NoError(t, err)

	sqlFileCount := 0
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}
		sqlFileCount++

		content := readMigration(t, file.Name())
		for _, directive := range []string{
			"-- +goose Up",
			"-- +goose Down",
			"-- +goose StatementBegin",
			"-- +goose StatementEnd",
		} {
			assert.Contains(t, content, directive, file.Name())
		}
	}

	assert.NotZero(t, sqlFileCount, "No SQL migration files found")
}

func TestMigrationFilesCreateExpectedTables(t *testing.T) {
	expectedTables := map[string]string{
		"categories":    "00001_create_categories_table.sql",
		"products":      "00002_create_products_table.sql",
		"profiles":      "00003_create_profiles_table.sql",
		"page_views":    "00004_create_page_views_table.sql",
		"product_views": "00005_create_product_views_table.sql",
	}

	for tableName, migrationFile := range expectedTables {
		content := readMigration(t, migrationFile)
		assert.Contains(t, content, "CREATE TABLE IF NOT EXISTS "+tableName, migrationFile)
		assert.Contains(t, content, "DROP TABLE IF EXISTS "+tableName, migrationFile)
	}
}

func TestCategoryNamesAreUniqueIgnoringCase(t *testing.T) {
	content := readMigration(t, "00001_create_categories_table.sql")

	assert.Contains(t, content, "CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_name_lower ON categories (lower(name))")
}

func TestProductsTableHasRequiredColumns(t *testing.T) {
	content := readMigration(t, "00002_create_products_table.sql")

	requiredColumns := []string{
		"id BIGSERIAL PRIMARY KEY",
		"name VARCHAR",
		"price DECIMAL",
		"CHECK (price >= 0)",
		"description TEXT",
		"image_url VARCHAR",
		"category_id BIGINT,",
		"purchase_link VARCHAR",
		"created_at TIMESTAMPTZ",
	}
	for _, column := range requiredColumns {
		assert.Contains(t, content, column)
	}

	// a deleted category leaves its products uncategorized
	assert.Contains(t, content, "FOREIGN KEY (category_id) REFERENCES categories(id) ON DELETE SET NULL")
}

func TestDashboardStatsView(t *testing.T) {
	content := readMigration(t, "00006_create_dashboard_stats_view.sql")

	for _, column := range []string{
		"total_products",
		"today_page_views",
		"week_page_views",
		"month_page_views",
		"today_product_views",
		"week_product_views",
		"month_product_views",
	} {
		assert.Contains(t, content, "AS "+column)
	}
	assert.Contains(t, content, "DROP VIEW IF EXISTS dashboard_stats")
}
