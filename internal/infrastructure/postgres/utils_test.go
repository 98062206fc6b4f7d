package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestPgErrorCodes(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	fk := fmt.Errorf("delete: %w", &pgconn.PgError{Code: "23503"})

	assert.True(t, isUniqueViolation(unique))
	assert.False(t, isForeignKeyViolation(unique))
	assert.True(t, isForeignKeyViolation(fk))
	assert.False(t, isUniqueViolation(errors.New("23505 en el texto no cuenta")))
}

func TestNullIfEmpty(t *testing.T) {
	assert.Nil(t, nullIfEmpty(""))
	v := nullIfEmpty("X")
	if assert.NotNil(t, v) {
		assert.Equal(t, "X", *v)
	}
	assert.Equal(t, "", stringOrEmpty(nil))
	assert.Equal(t, "X", stringOrEmpty(v))
}
