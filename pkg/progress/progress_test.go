package progress

import (
	"errors"
	"io"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHumanBytes(t *testing.T) {
	assert.Equal(t, "512 B", HumanBytes(512))
	assert.Equal(t, "1.5 KB", HumanBytes(1536))
	assert.Equal(t, "3.0 MB", HumanBytes(3<<20))
}

func TestReadCloser_CountsAndFinishes(t *testing.T) {
	logger, hook := test.NewNullLogger()
	bar := NewBar(log.NewEntry(logger), "download", 11)

	rc := NewReadCloser(io.NopCloser(strings.NewReader("hello world")), bar)
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())

	assert.Equal(t, "hello world", string(b))
	assert.EqualValues(t, 11, bar.Current())

	last := hook.LastEntry()
	require.NotNil(t, last)
	assert.Equal(t, log.InfoLevel, last.Level)
	assert.Equal(t, "download done", last.Message)
	assert.Equal(t, 100, last.Data["percent"])
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("reset by peer") }

func TestReadCloser_ReportsFailure(t *testing.T) {
	logger, hook := test.NewNullLogger()
	bar := NewBar(log.NewEntry(logger), "download", 0)

	rc := NewReadCloser(io.NopCloser(failingReader{}), bar)
	_, err := io.ReadAll(rc)
	require.Error(t, err)
	_ = rc.Close()

	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, log.WarnLevel, hook.LastEntry().Level)
}

func TestWriter_NilBar(t *testing.T) {
	n, err := Writer{}.Write([]byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
