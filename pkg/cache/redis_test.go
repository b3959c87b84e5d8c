package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCacheGet(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCacheFromClient(db, "mm")
	ctx := context.Background()

	mock.ExpectGet("mm:k").SetVal(`{"Name":"a","Count":3}`)
	var got entry
	require.NoError(t, c.Get(ctx, "k", &got))
	assert.Equal(t, entry{Name: "a", Count: 3}, got)

	mock.ExpectGet("mm:missing").RedisNil()
	assert.ErrorIs(t, c.Get(ctx, "missing", &got), ErrCacheMiss)

	mock.ExpectGet("mm:broken").SetErr(errors.New("conn reset"))
	err := c.Get(ctx, "broken", &got)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCacheDeleteAndExists(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCacheFromClient(db, "mm")
	ctx := context.Background()

	mock.ExpectUnlink("mm:a", "mm:b").SetVal(2)
	require.NoError(t, c.Delete(ctx, "a", "b"))

	mock.ExpectExists("mm:a").SetVal(0)
	ok, err := c.Exists(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, c.Delete(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}
