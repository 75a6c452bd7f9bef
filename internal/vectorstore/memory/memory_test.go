package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"securequery/internal/apperr"
	"securequery/internal/domain"
)

func record(id, event string) domain.LogRecord {
	return domain.LogRecord{ID: id, EventName: event, EventTime: "2024-01-01T00:00:00Z", Source: "json"}
}

func TestAddLengthMismatch(t *testing.T) {
	s := NewStore()
	err := s.Add([]domain.LogRecord{record("a", "x"), record("b", "y")}, [][]float64{{1, 0}})
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	// no partial insert
	count, err := s.Count()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSearchOrderingAndTruncation(t *testing.T) {
	s := NewStore()
	err := s.Add(
		[]domain.LogRecord{record("far", "a"), record("near", "b"), record("mid", "c")},
		[][]float64{{0, 1}, {1, 0}, {1, 1}},
	)
	require.NoError(t, err)

	matches, err := s.Search([]float64{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, matches, 3)
	assert.Equal(t, "near", matches[0].ID)
	assert.Equal(t, "mid", matches[1].ID)
	assert.Equal(t, "far", matches[2].ID)
	assert.LessOrEqual(t, matches[0].Distance, matches[1].Distance)
	assert.LessOrEqual(t, matches[1].Distance, matches[2].Distance)

	matches, err = s.Search([]float64{1, 0}, 2)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestSearchRejectsNonPositiveK(t *testing.T) {
	s := NewStore()
	_, err := s.Search([]float64{1}, 0)
	assert.True(t, apperr.Is(err, apperr.CodeValidation))
	_, err = s.Search([]float64{1}, -3)
	assert.True(t, apperr.Is(err, apperr.CodeValidation))
}

func TestSearchRejectsDimensionMismatch(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add([]domain.LogRecord{record("a", "x")}, [][]float64{{1, 0, 0}}))
	_, err := s.Search([]float64{1, 0}, 5)
	assert.True(t, apperr.Is(err, apperr.CodeValidation))
}

func TestSearchEmptyStore(t *testing.T) {
	s := NewStore()
	matches, err := s.Search([]float64{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestAddOverwritesExistingID(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add([]domain.LogRecord{record("a", "first")}, [][]float64{{1, 0}}))
	require.NoError(t, s.Add([]domain.LogRecord{record("a", "second")}, [][]float64{{1, 0}}))

	count, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	matches, err := s.Search([]float64{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Contains(t, matches[0].Document, "second")
}

func TestClearLeavesStoreUsable(t *testing.T) {
	s := NewStore()
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

func TestMatchCarriesMetadataSubset(t *testing.T) {
	s := NewStore()
	rec := record("a", "ConsoleLogin")
	rec.UserIdentity = "alice"
	rec.Result = "Failure"
	require.NoError(t, s.Add([]domain.LogRecord{rec}, [][]float64{{1}}))

	matches, err := s.Search([]float64{1}, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "alice", matches[0].Metadata["user_identity"])
	assert.Equal(t, "Failure", matches[0].Metadata["result"])
	assert.Equal(t, "ConsoleLogin", matches[0].Metadata["event_name"])
}
