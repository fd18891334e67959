package pg

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMigrationURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "postgres://u:p@localhost:5432/db?sslmode=disable", want: "pgx5://u:p@localhost:5432/db?sslmode=disable"},
		{in: "postgresql://u:p@db/tasks", want: "pgx5://u:p@db/tasks"},
		{in: "pgx5://already", want: "pgx5://already"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, MigrationURL(tt.in))
		})
	}
}

func TestErrorCodes(t *testing.T) {
	unique := fmt.Errorf("вставка: %w", &pgconn.PgError{Code: pgerrcode.UniqueViolation})
	other := &pgconn.PgError{Code: pgerrcode.InvalidTextRepresentation}

	assert.True(t, IsUniqueViolation(unique))
	assert.False(t, IsUniqueViolation(other))
	assert.False(t, IsUniqueViolation(errors.New("other")))
}
