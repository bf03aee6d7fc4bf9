package shared

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestAttemptDeleteSucceeded(t *testing.T) {
	res := AttemptDelete(context.Background(), nil, "Author", func(context.Context) error { return nil })
	assert.Equal(t, DeleteSucceeded, res.Outcome)
	assert.Equal(t, "Author deleted.", res.Message)
}

func TestAttemptDeleteAlwaysRetriesOnFailure(t *testing.T) {
	fk := fmt.Errorf("delete author: %w", &pgconn.PgError{Code: "23503", ConstraintName: "books_author_id_fkey"})
	cases := map[string]struct {
		err     error
		message string
	}{
		"foreign key": {fk, "Author " + msgStillReferenced},
		"not found":   {ErrNotFound, "Author " + msgDeleteFailed},
		"connection":  {errors.New("conn closed"), "Author " + msgDeleteFailed},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			res := AttemptDelete(context.Background(), nil, "Author", func(context.Context) error { return tc.err })
			assert.Equal(t, DeleteRetry, res.Outcome)
			assert.Equal(t, tc.message, res.Message)
		})
	}
}
