package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madrasati-app/madrasati-api/internal/models"
)

func TestMessageCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMessageRepository(db)

	mock.ExpectExec("INSERT INTO messages").WillReturnResult(sqlmock.NewResult(1, 1))

	message := &models.Message{SenderID: "t1", RecipientID: "p1", Subject: "تنبيه", Content: "نص"}
	require.NoError(t, repo.Create(context.Background(), message))
	assert.NotEmpty(t, message.ID)
	assert.False(t, message.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageCreateBatchSingleStatement(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMessageRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO messages").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	messages := []models.Message{
		{SenderID: "a1", RecipientID: "p1", Subject: "إعلان", Content: "نص"},
		{SenderID: "a1", RecipientID: "p2", Subject: "إعلان", Content: "نص"},
		{SenderID: "a1", RecipientID: "p3", Subject: "إعلان", Content: "نص"},
	}
	require.NoError(t, repo.CreateBatch(context.Background(), messages))
	for _, m := range messages {
		assert.NotEmpty(t, m.ID)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageCreateBatchEmptyNoop(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMessageRepository(db)

	require.NoError(t, repo.CreateBatch(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageMarkRead(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMessageRepository(db)

	mock.ExpectExec("UPDATE messages SET is_read = true").
		WithArgs("m1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkRead(context.Background(), "m1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageUnreadCount(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMessageRepository(db)

	rows := sqlmock.NewRows([]string{"count"}).AddRow(5)
	mock.ExpectQuery("SELECT COUNT").WithArgs("p1").WillReturnRows(rows)

	count, err := repo.UnreadCount(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}
