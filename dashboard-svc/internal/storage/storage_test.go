package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"restodash/dashboard-svc/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tokenStore interface {
	Set(ctx context.Context, token string) error
	Get(ctx context.Context) (string, bool, error)
	Clear(ctx context.Context) error
}

func exerciseTokenContract(t *testing.T, store tokenStore) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := store.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "empty store must report absence")

	require.NoError(t, store.Set(ctx, "abc"))
	token, ok, err := store.Get(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	require.NoError(t, store.Set(ctx, "def"))
	token, _, err = store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "def", token)

	require.NoError(t, store.Clear(ctx))
	_, ok, err = store.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Clear(ctx), "clearing twice is not an error")
}

func TestFileTokenStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token")
	store := NewFileTokenStore(path)

	exerciseTokenContract(t, store)

	require.NoError(t, store.Set(context.Background(), "secret"))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reopened := NewFileTokenStore(path)
	token, ok, err := reopened.Get(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "secret", token)
}

func TestRedisTokenStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := NewRedisTokenStore(client, "restodash:token")
	exerciseTokenContract(t, store)

	require.NoError(t, store.Set(context.Background(), "abc"))
	stored, err := mr.Get("restodash:token")
	require.NoError(t, err)
	assert.Equal(t, "abc", stored)
	assert.Zero(t, mr.TTL("restodash:token"))
}

func TestRedisTokenStore_ConnectionError(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	mr.Close()

	store := NewRedisTokenStore(client, "restodash:token")
	_, ok, err := store.Get(context.Background())
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestPostgresTokenStore(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgresTokenStore(db, "client_state")
	ctx := context.Background()

	t.Run("ensure schema", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS "client_state"`)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		assert.NoError(t, store.EnsureSchema(ctx))
	})

	t.Run("set upserts the token row", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "client_state"`)).
			WithArgs("token", "abc").
			WillReturnResult(sqlmock.NewResult(1, 1))
		assert.NoError(t, store.Set(ctx, "abc"))
	})

	t.Run("get returns the stored token", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM "client_state" WHERE key = $1`)).
			WithArgs("token").
			WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("abc"))
		token, ok, err := store.Get(ctx)
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "abc", token)
	})

	t.Run("get without row reports absence", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM "client_state"`)).
			WithArgs("token").
			WillReturnError(sql.ErrNoRows)
		_, ok, err := store.Get(ctx)
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("clear deletes the row", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "client_state" WHERE key = $1`)).
			WithArgs("token").
			WillReturnResult(sqlmock.NewResult(0, 1))
		assert.NoError(t, store.Clear(ctx))
	})

	t.Run("database error is wrapped", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM "client_state"`)).
			WithArgs("token").
			WillReturnError(errors.New("connection reset"))
		_, _, err := store.Get(ctx)
		assert.ErrorContains(t, err, "load token")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

type recordingWriter struct {
	messages []kafka.Message
	err      error
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.messages = append(w.messages, msgs...)
	return w.err
}

func TestKafkaPublisher_PublishChange(t *testing.T) {
	writer := &recordingWriter{}
	publisher := NewKafkaPublisher(writer, "dash-1")

	err := publisher.PublishChange(context.Background(), domain.ChangeEvent{
		Type:     domain.EventMenuChanged,
		EntityID: "m1",
	})
	require.NoError(t, err)
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	assert.Equal(t, "m1", string(msg.Key))

	var decoded domain.ChangeEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, domain.EventMenuChanged, decoded.Type)
	assert.Equal(t, "dash-1", decoded.Source)
	assert.False(t, decoded.Timestamp.IsZero())
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	writer := &recordingWriter{err: errors.New("broker down")}
	publisher := NewKafkaPublisher(writer, "dash-1")

	err := publisher.PublishChange(context.Background(), domain.ChangeEvent{Type: domain.EventOrderChanged, EntityID: "o1"})
	assert.EqualError(t, err, "broker down")
}
