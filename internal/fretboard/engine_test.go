package fretboard

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/pbaille/fretnote/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var chromatic = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var letterSemitone = map[string]int{"C": 0, "D": 2, "E": 4, "F": 5, "G": 7, "A": 9, "B": 11}

func newTestEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	e, err := New(cfg, WithRand(rand.New(rand.NewPCG(1, 2))))
	require.NoError(t, err)
	return e
}

func TestResolveNote_KnownPositions(t *testing.T) {
	e := newTestEngine(t, Config{})

	tests := []struct {
		name     string
		pos      domain.FretPosition
		expected string
	}{
		{"open high E", domain.FretPosition{String: 1, Fret: 0}, "E"},
		{"half step from E", domain.FretPosition{String: 1, Fret: 1}, "F"},
		{"sharp after half step", domain.FretPosition{String: 1, Fret: 2}, "F#"},
		{"half step from B", domain.FretPosition{String: 2, Fret: 1}, "C"},
		{"octave on low E", domain.FretPosition{String: 6, Fret: 12}, "E"},
		{"G string fifth fret", domain.FretPosition{String: 3, Fret: 5}, "C"},
		{"G string first fret", domain.FretPosition{String: 3, Fret: 1}, "G#"},
		{"A string seventh fret", domain.FretPosition{String: 5, Fret: 7}, "E"},
		{"D string third fret", domain.FretPosition{String: 4, Fret: 3}, "F"},
		{"high E eleventh fret", domain.FretPosition{String: 1, Fret: 11}, "D#"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			note, err := e.ResolveNote(tt.pos)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, note.Name())
		})
	}
}

func TestResolveNote_MatchesChromaticScale(t *testing.T) {
	for s := 1; s <= NumStrings; s++ {
		open, err := OpenNote(s)
		require.NoError(t, err)

		for f := 0; f <= 40; f++ {
			note, err := Resolve(domain.FretPosition{String: s, Fret: f})
			require.NoError(t, err)

			assert.Contains(t, letterSemitone, note.Letter)
			want := chromatic[(letterSemitone[open.Letter]+f)%12]
			assert.Equal(t, want, note.Name(), "string %d fret %d", s, f)
		}
	}
}

func TestResolveNote_OctaveReturnsToOpenNote(t *testing.T) {
	for s := 1; s <= NumStrings; s++ {
		open, err := OpenNote(s)
		require.NoError(t, err)

		for _, f := range []int{0, 12, 24, 36} {
			note, err := Resolve(domain.FretPosition{String: s, Fret: f})
			require.NoError(t, err)
			assert.Equal(t, open.Letter, note.Letter)
			assert.Equal(t, domain.Natural, note.Accidental)
		}
	}
}

func TestResolveNote_HugeFret(t *testing.T) {
	done := make(chan domain.ResolvedNote, 1)
	go func() {
		note, err := Resolve(domain.FretPosition{String: 1, Fret: 9000000000000000000})
		assert.NoError(t, err)
		done <- note
	}()

	select {
	case note := <-done:
		// 9e18 = 12*750000000000000000, so the walk lands on the open note.
		assert.Equal(t, "E", note.Name())
	case <-time.After(time.Second):
		t.Fatal("resolve did not return")
	}

	note, err := Resolve(domain.FretPosition{String: 2, Fret: 12*1000000 + 1})
	require.NoError(t, err)
	assert.Equal(t, "C", note.Name())
}

func TestResolveNote_Deterministic(t *testing.T) {
	pos := domain.FretPosition{String: 4, Fret: 9}
	first, err := Resolve(pos)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := Resolve(pos)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestResolveNote_InvalidPosition(t *testing.T) {
	_, err := Resolve(domain.FretPosition{String: 7, Fret: 3})
	assert.ErrorIs(t, err, ErrUnknownString)

	_, err = Resolve(domain.FretPosition{String: 0, Fret: 3})
	assert.ErrorIs(t, err, ErrUnknownString)

	_, err = Resolve(domain.FretPosition{String: 1, Fret: -1})
	assert.ErrorIs(t, err, ErrNegativeFret)
}

func TestResolvedNote_Label(t *testing.T) {
	note, err := Resolve(domain.FretPosition{String: 1, Fret: 2})
	require.NoError(t, err)
	assert.Equal(t, "F# (Фа#)", note.Label())

	note, err = Resolve(domain.FretPosition{String: 3, Fret: 5})
	require.NoError(t, err)
	assert.Equal(t, "C (До)", note.Label())
}

func TestOpenNoteLabel(t *testing.T) {
	e := newTestEngine(t, Config{})

	expected := map[int]string{
		1: "E (Ми)",
		2: "B (Си)",
		3: "G (Соль)",
		4: "D (Ре)",
		5: "A (Ля)",
		6: "E (Ми)",
	}
	for s, want := range expected {
		got, err := e.OpenNoteLabel(s)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := e.OpenNoteLabel(7)
	assert.ErrorIs(t, err, ErrUnknownString)
}

func TestNew_Config(t *testing.T) {
	e, err := New(Config{})
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), e.Config())

	e, err = New(Config{Frets: 12})
	require.NoError(t, err)
	assert.Equal(t, 12, e.Config().MaxFretGenerate)

	invalid := []Config{
		{Strings: -1},
		{Strings: 7},
		{Frets: -5},
		{MaxFretGenerate: -1},
		{Frets: 12, MaxFretGenerate: 15},
	}
	for _, cfg := range invalid {
		_, err := New(cfg)
		assert.ErrorIs(t, err, ErrInvalidConfig, "config %+v", cfg)
	}
}

func TestGeneratePosition_Bounds(t *testing.T) {
	e := newTestEngine(t, Config{})

	const n = 60000
	maxFret, maxString := 12, 6
	frets := make(map[int]int)
	strs := make(map[int]int)

	for i := 0; i < n; i++ {
		pos := e.GeneratePosition(maxFret, maxString)
		require.GreaterOrEqual(t, pos.Fret, 1)
		require.LessOrEqual(t, pos.Fret, maxFret)
		require.GreaterOrEqual(t, pos.String, 1)
		require.LessOrEqual(t, pos.String, maxString)
		frets[pos.Fret]++
		strs[pos.String]++
	}

	// Roughly uniform, end points included.
	for f := 1; f <= maxFret; f++ {
		assert.InDelta(t, n/maxFret, frets[f], 0.15*n/float64(maxFret), "fret %d", f)
	}
	for s := 1; s <= maxString; s++ {
		assert.InDelta(t, n/maxString, strs[s], 0.15*n/float64(maxString), "string %d", s)
	}
}

func TestGeneratePosition_Defaults(t *testing.T) {
	e := newTestEngine(t, Config{Strings: 4, Frets: 5})

	for i := 0; i < 2000; i++ {
		pos := e.GeneratePosition(0, 0)
		assert.True(t, pos.String >= 1 && pos.String <= 4, "string %d", pos.String)
		assert.True(t, pos.Fret >= 1 && pos.Fret <= 5, "fret %d", pos.Fret)

		// Requests beyond the configured string count are capped.
		pos = e.GeneratePosition(3, 9)
		assert.True(t, pos.String >= 1 && pos.String <= 4, "string %d", pos.String)
		assert.True(t, pos.Fret >= 1 && pos.Fret <= 3, "fret %d", pos.Fret)
	}
}

func TestGeneratePosition_SingleValueRange(t *testing.T) {
	e := newTestEngine(t, Config{})
	for i := 0; i < 100; i++ {
		assert.Equal(t, domain.FretPosition{String: 1, Fret: 1}, e.GeneratePosition(1, 1))
	}
}

func TestNaturals_Cycle(t *testing.T) {
	notes := Naturals()
	require.Len(t, notes, 7)

	total := 0
	for _, n := range notes {
		total += int(n.ToneNext)
	}
	assert.Equal(t, 12, total)
	assert.Equal(t, 0, successor(len(notes)-1))

	notes[0].Letter = "X"
	assert.Equal(t, "C", Naturals()[0].Letter)
}
