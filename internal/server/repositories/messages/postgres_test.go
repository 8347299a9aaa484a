package messages

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/chatrelay/internal/common"
	"github.com/dmitrijs2005/chatrelay/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func messageRows(msgs ...*models.Message) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "sender", "recipient", "message", "delivered", "created_at"})
	for _, m := range msgs {
		rows.AddRow(m.ID, m.Sender, m.Recipient, m.Text, m.Delivered, m.CreatedAt)
	}
	return rows
}

func TestCreate_PersistsEnvelope(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO messages .* RETURNING created_at`).
		WithArgs("m1", "bob", "carol", "hi", false).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

	msg, err := repo.Create(context.Background(), &models.Message{
		ID: "m1", Sender: "bob", Recipient: "carol", Text: "hi", Delivered: false,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.CreatedAt != now {
		t.Fatal("created_at not populated")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFindUndelivered_OrderedByInsertion(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT .* FROM messages\s+WHERE recipient = \$1 AND NOT delivered\s+ORDER BY seq`).
		WithArgs("carol").
		WillReturnRows(messageRows(
			&models.Message{ID: "m1", Sender: "bob", Recipient: "carol", Text: "one", CreatedAt: now},
			&models.Message{ID: "m2", Sender: "bob", Recipient: "carol", Text: "two", CreatedAt: now},
		))

	result, err := repo.FindUndelivered(context.Background(), "carol")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(result))
	}
	if result[0].ID != "m1" || result[1].ID != "m2" {
		t.Fatalf("unexpected order: %+v", result)
	}
}

func TestFindUndelivered_EmptyBacklog(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .* FROM messages`).
		WithArgs("carol").
		WillReturnRows(messageRows())

	result, err := repo.FindUndelivered(context.Background(), "carol")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 0 {
		t.Fatalf("expected empty result, got %d", len(result))
	}
}

func TestMarkDelivered_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE messages SET delivered = true`).
		WithArgs("m1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.MarkDelivered(context.Background(), "m1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMarkDelivered_UnknownID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE messages SET delivered = true`).
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkDelivered(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestFindConversation_BothDirections(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT .* FROM messages\s+WHERE \(sender = \$1 AND recipient = \$2\) OR \(sender = \$2 AND recipient = \$1\)`).
		WithArgs("bob", "carol").
		WillReturnRows(messageRows(
			&models.Message{ID: "m1", Sender: "bob", Recipient: "carol", Text: "hi", Delivered: true, CreatedAt: now},
			&models.Message{ID: "m2", Sender: "carol", Recipient: "bob", Text: "hey", Delivered: true, CreatedAt: now},
		))

	result, err := repo.FindConversation(context.Background(), "bob", "carol")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(result))
	}
	if result[1].Sender != "carol" {
		t.Fatalf("expected reply direction included, got %+v", result[1])
	}
}
