package history

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verba/internal/events"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := openTest(t)
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	for i, text := range []string{"first one", "second entry here", "third"} {
		_, err := s.Record(Entry{Text: text, At: base.Add(time.Duration(i) * time.Minute)})
		require.NoError(t, err)
	}

	recent, err := s.Recent(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "third", recent[0].Text)
	assert.Equal(t, "second entry here", recent[1].Text)
	assert.Equal(t, 3, recent[1].Words)
	assert.NotEmpty(t, recent[0].ID)

	st, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 3, st.Dictations)
	assert.Equal(t, 6, st.Words)
	assert.True(t, st.LastAt.Equal(base.Add(2*time.Minute)))
}

func TestEmptyTextIsNotRecorded(t *testing.T) {
	s := openTest(t)

	_, err := s.Record(Entry{Text: "   "})
	require.NoError(t, err)

	recent, err := s.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestPruneKeepsNewest(t *testing.T) {
	s := openTest(t)
	s.max = 5
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 8; i++ {
		_, err := s.Record(Entry{Text: fmt.Sprintf("entry %d", i), At: base.Add(time.Duration(i) * time.Second)})
		require.NoError(t, err)
	}

	recent, err := s.Recent(100)
	require.NoError(t, err)
	require.Len(t, recent, 5)
	assert.Equal(t, "entry 7", recent[0].Text)
	assert.Equal(t, "entry 3", recent[4].Text)

	st, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 8, st.Dictations)
}

func TestClearKeepsStats(t *testing.T) {
	s := openTest(t)

	_, err := s.Record(Entry{Text: "hello world"})
	require.NoError(t, err)
	require.NoError(t, s.Clear())

	recent, err := s.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, recent)

	st, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, st.Dictations)
	assert.Equal(t, 2, st.Words)
}

func TestAttachRecordsTranscripts(t *testing.T) {
	s := openTest(t)
	bus := events.NewBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.Attach(ctx, bus))

	require.NoError(t, bus.Publish(events.Event{
		Topic: events.Transcript, Session: "abc", Text: "send it to Alice", Words: 4, Source: "remote",
	}))

	require.Eventually(t, func() bool {
		recent, err := s.Recent(1)
		return err == nil && len(recent) == 1
	}, 2*time.Second, 10*time.Millisecond)

	recent, err := s.Recent(1)
	require.NoError(t, err)
	assert.Equal(t, "abc", recent[0].ID)
	assert.Equal(t, "remote", recent[0].Source)
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, WordCount(""))
	assert.Equal(t, 3, WordCount("  one two\tthree "))
}
