package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenCreatesSchema(t *testing.T) {
	db := OpenForTesting(t)

	for _, table := range []string{"users", "places", "reviews", "amenities", "schema_migrations"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		assert.NoError(t, err, table)
		assert.Equal(t, table, name)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hbnb.db")

	first, err := Open(path)
	require.NoError(t, err)
	_, err = first.Exec(`INSERT INTO amenities (id, name, created_at, updated_at) VALUES ('a1', 'Wi-Fi', 'x', 'x')`)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, second.Close()) })

	var count int
	require.NoError(t, second.QueryRow("SELECT COUNT(*) FROM amenities").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestSchemaConstraints(t *testing.T) {
	db := OpenForTesting(t)

	insertReview := `INSERT INTO reviews (id, text, rating, user_id, place_id, created_at, updated_at)
		VALUES (?, 'ok', ?, 'u1', 'p1', 'x', 'x')`
	_, err := db.Exec(insertReview, "r1", 4)
	require.NoError(t, err)

	_, err = db.Exec(insertReview, "r2", 5)
	assert.Error(t, err, "one review per user and place")

	_, err = db.Exec(`INSERT INTO reviews (id, text, rating, user_id, place_id, created_at, updated_at)
		VALUES ('r3', 'ok', 9, 'u2', 'p1', 'x', 'x')`)
	assert.Error(t, err, "rating check")
}
