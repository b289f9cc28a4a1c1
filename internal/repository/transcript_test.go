package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "goban/internal/errors"
	"goban/testing/suite"
)

func TestTranscriptStorage_SaveAndLoad(t *testing.T) {
	ctx, st := suite.New(t)

	storage := NewTranscriptStorage(st.Storage, time.Hour, st.Logger)

	// Given: a cached transcript
	text := "(;GM[1]FF[4]SZ[9]KM[6.5]PW[White]PB[Black]B[ee])"
	require.NoError(t, storage.SaveTranscript(ctx, "abc", text))

	// When: it is loaded back
	loaded, err := storage.LoadTranscript(ctx, "abc")

	// Then: the text is unchanged and the key carries a TTL
	require.NoError(t, err)
	assert.Equal(t, text, loaded)

	ttl, err := st.Storage.TTL(ctx, "transcript:abc").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestTranscriptStorage_NotFound(t *testing.T) {
	ctx, st := suite.New(t)

	storage := NewTranscriptStorage(st.Storage, time.Hour, st.Logger)

	// When: a missing session is loaded
	_, err := storage.LoadTranscript(ctx, "missing")

	// Then: the not found sentinel is returned
	assert.ErrorIs(t, err, errs.ErrTranscriptNotFound)
}

func TestTranscriptStorage_Delete(t *testing.T) {
	ctx, st := suite.New(t)

	storage := NewTranscriptStorage(st.Storage, time.Hour, st.Logger)
	require.NoError(t, storage.SaveTranscript(ctx, "abc", "(;)"))

	// When: the transcript is deleted
	require.NoError(t, storage.DeleteTranscript(ctx, "abc"))

	// Then: it can no longer be loaded
	_, err := storage.LoadTranscript(ctx, "abc")
	assert.ErrorIs(t, err, errs.ErrTranscriptNotFound)
}
