package accountant

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInProcDeliversSample(t *testing.T) {
	a := NewInProc(4)
	defer a.Close()

	a.Count("segment.writes", 3)

	select {
	case s := <-a.Samples():
		require.Equal(t, "segment.writes", s.Name)
		require.Equal(t, uint64(3), s.Value)
		require.WithinDuration(t, time.Now(), s.Timestamp, time.Second)
	case <-time.After(time.Second):
		t.Fatal("sample was not delivered")
	}
}

func TestInProcDropsWhenFull(t *testing.T) {
	a := NewInProc(1)
	defer a.Close()

	a.Count("a", 1)
	a.Count("b", 2) // buffer full, dropped rather than blocking

	s := <-a.Samples()
	require.Equal(t, "a", s.Name)

	select {
	case <-a.Samples():
		t.Fatal("expected only one sample to survive")
	default:
	}
}

func TestNopDiscardsSamples(t *testing.T) {
	require.NotPanics(t, func() {
		Nop{}.Count("anything", 1)
	})
}

func TestSampleRecordFields(t *testing.T) {
	ts := time.Now()
	s := Sample{Timestamp: ts, Name: "reads", Value: 7}
	rec := s.Record()

	r, ok := rec.Record()
	require.True(t, ok)
	v, ok := r.Get("name")
	require.True(t, ok)
	s2, ok := v.String()
	require.True(t, ok)
	require.Equal(t, "reads", s2)
}
