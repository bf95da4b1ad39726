package sqlstore_test

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/phrazzld/lexis/internal/platform/sqlstore"
	"github.com/phrazzld/lexis/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestCheckRowsAffected(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		result   sql.Result
		notFound error
		wantErr  error
	}{
		{name: "one row", result: sqlmock.NewResult(0, 1)},
		{name: "no rows defaults to ErrNotFound", result: sqlmock.NewResult(0, 0), wantErr: store.ErrNotFound},
		{
			name:     "no rows with specific error",
			result:   sqlmock.NewResult(0, 0),
			notFound: store.ErrMasteredNotFound,
			wantErr:  store.ErrMasteredNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := sqlstore.CheckRowsAffected(tt.result, tt.notFound)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("nil result", func(t *testing.T) {
		t.Parallel()
		assert.Error(t, sqlstore.CheckRowsAffected(nil, nil))
	})

	t.Run("rows affected failure", func(t *testing.T) {
		t.Parallel()
		err := sqlstore.CheckRowsAffected(sqlmock.NewErrorResult(errors.New("driver")), nil)
		assert.ErrorContains(t, err, "failed to get rows affected")
	})
}
