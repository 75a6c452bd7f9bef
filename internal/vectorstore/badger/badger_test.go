package badger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"securequery/internal/apperr"
	"securequery/internal/domain"
)

func record(id, event string) domain.LogRecord {
	return domain.LogRecord{ID: id, EventName: event, EventTime: "2024-01-01T00:00:00Z", Source: "cloudtrail"}
}

func openStore(t *testing.T, dir string) *Store {
	t.Helper()
	s, err := Open(dir, "security_logs")
	require.NoError(t, err)
	return s
}

func TestAddSearchCount(t *testing.T) {
	s := openStore(t, t.TempDir())
	defer s.Close()

	err := s.Add(
		[]domain.LogRecord{record("a", "login"), record("b", "logout")},
		[][]float64{{1, 0}, {0, 1}},
	)
	require.NoError(t, err)

	count, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	matches, err := s.Search([]float64{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "a", matches[0].ID)
	assert.LessOrEqual(t, matches[0].Distance, matches[1].Distance)
}

func TestPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s := openStore(t, dir)
	require.NoError(t, s.Add([]domain.LogRecord{record("a", "login")}, [][]float64{{1, 0}}))
	require.NoError(t, s.Close())

	s = openStore(t, dir)
	defer s.Close()
	count, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	matches, err := s.Search([]float64{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "a", matches[0].ID)
}

func TestFreshPathIsEmpty(t *testing.T) {
	s := openStore(t, t.TempDir())
	defer s.Close()

	count, err := s.Count()
	require.NoError(t, err)
	assert.Zero(t, count)

	matches, err := s.Search([]float64{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestUpsertOverwrites(t *testing.T) {
	s := openStore(t, t.TempDir())
	defer s.Close()

	require.NoError(t, s.Add([]domain.LogRecord{record("a", "first")}, [][]float64{{1, 0}}))
	require.NoError(t, s.Add([]domain.LogRecord{record("a", "second")}, [][]float64{{0, 1}}))

	count, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	matches, err := s.Search([]float64{0, 1}, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Contains(t, matches[0].Document, "second")
}

func TestAddLengthMismatch(t *testing.T) {
	s := openStore(t, t.TempDir())
	defer s.Close()

	err := s.Add([]domain.LogRecord{record("a", "x")}, nil)
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	count, err := s.Count()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDimensionMismatchIsRejected(t *testing.T) {
	s := openStore(t, t.TempDir())
	defer s.Close()

	require.NoError(t, s.Add([]domain.LogRecord{record("a", "x")}, [][]float64{{1, 0, 0}}))
	_, err := s.Search([]float64{1, 0}, 1)
	assert.True(t, apperr.Is(err, apperr.CodeValidation))
}

func TestClearLeavesStoreUsable(t *testing.T) {
	s := openStore(t, t.TempDir())
	defer s.Close()

	require.NoError(t, s.Add([]domain.LogRecord{record("a", "x")}, [][]float64{{1}}))
	require.NoError(t, s.Clear())

	count, err := s.Count()
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, s.Add([]domain.LogRecord{record("b", "y")}, [][]float64{{1}}))
	count, err = s.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
