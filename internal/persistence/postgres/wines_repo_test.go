package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aionysus/cellarsight/internal/persistence"
)

func newMockWinesRepo(t *testing.T) (persistence.WineRepo, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	sqlxDB := sqlx.NewDb(mockDB, "postgres")
	return NewWinesRepo(sqlxDB, 5*time.Second), mock
}

func wineRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "slug", "winery", "region", "country",
		"classification", "vintage", "price_retail",
	})
}

func TestWinesRepo_ListActive(t *testing.T) {
	repo, mock := newMockWinesRepo(t)

	rows := wineRows().
		AddRow(int64(1), "Château Example", "chateau-example", "Château Example",
			"Pauillac", "France", "2ème Cru Classé", 2015, 500.00).
		AddRow(int64(2), "Everyday Red", "everyday-red", nil, nil, nil, nil, nil, nil)

	mock.ExpectQuery(`SELECT (.+) FROM wines\s+WHERE is_active = true`).
		WillReturnRows(rows)

	wines, err := repo.ListActive(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, wines, 2)

	assert.Equal(t, "Château Example", wines[0].Name)
	require.NotNil(t, wines[0].PriceRetail)
	assert.Equal(t, 500.00, *wines[0].PriceRetail)

	// Unpriced rows come through; the batch runner decides what to skip.
	assert.Nil(t, wines[1].PriceRetail)
	assert.Nil(t, wines[1].Region)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWinesRepo_ListActive_Limit(t *testing.T) {
	repo, mock := newMockWinesRepo(t)

	mock.ExpectQuery(`SELECT (.+) FROM wines\s+WHERE is_active = true`).
		WithArgs(5).
		WillReturnRows(wineRows())

	wines, err := repo.ListActive(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, wines)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWinesRepo_GetByID(t *testing.T) {
	repo, mock := newMockWinesRepo(t)

	rows := wineRows().
		AddRow(int64(1), "Château Example", "chateau-example", nil,
			"Pauillac", "France", nil, nil, 500.00)

	mock.ExpectQuery(`SELECT (.+) FROM wines\s+WHERE id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(rows)

	wine, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, wine)
	assert.Equal(t, int64(1), wine.ID)
	require.NotNil(t, wine.Region)
	assert.Equal(t, "Pauillac", *wine.Region)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWinesRepo_GetByID_Absent(t *testing.T) {
	repo, mock := newMockWinesRepo(t)

	mock.ExpectQuery(`SELECT (.+) FROM wines\s+WHERE id = \$1`).
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)

	wine, err := repo.GetByID(context.Background(), 404)
	assert.NoError(t, err)
	assert.Nil(t, wine)
	assert.NoError(t, mock.ExpectationsWereMet())
}
