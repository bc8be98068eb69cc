package fretboard

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/pbaille/fretnote/internal/domain"
)

const (
	DefaultStrings         = 6
	DefaultFrets           = 21
	DefaultMaxFretGenerate = 21
)

// Config bounds random generation. Zero values fall back to the defaults.
type Config struct {
	Strings         int `yaml:"strings" validate:"gt=0,lte=6"`
	Frets           int `yaml:"frets" validate:"gt=0"`
	MaxFretGenerate int `yaml:"max_fret_generate" validate:"gt=0,ltefield=Frets"`
}

// DefaultConfig returns the standard six-string, 21-fret setup
func DefaultConfig() Config {
	return Config{
		Strings:         DefaultStrings,
		Frets:           DefaultFrets,
		MaxFretGenerate: DefaultMaxFretGenerate,
	}
}

func (c Config) withDefaults() Config {
	if c.Strings == 0 {
		c.Strings = DefaultStrings
	}
	if c.Frets == 0 {
		c.Frets = DefaultFrets
	}
	if c.MaxFretGenerate == 0 {
		c.MaxFretGenerate = min(DefaultMaxFretGenerate, c.Frets)
	}
	return c
}

var validate = validator.New()

// Engine generates fretboard positions and resolves them to notes.
// The note tables are immutable; the random source is the only shared state.
type Engine struct {
	cfg Config

	mu  sync.Mutex
	rng *rand.Rand
}

// Option customizes an Engine
type Option func(*Engine)

// WithRand makes the engine draw from r instead of the global source.
// Access to r is serialized by the engine.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) {
		e.rng = r
	}
}

// New creates an Engine, validating cfg after applying defaults
func New(cfg Config, opts ...Option) (*Engine, error) {
	cfg = cfg.withDefaults()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	e := &Engine{cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the effective configuration
func (e *Engine) Config() Config {
	return e.cfg
}

// GeneratePosition picks a random string in [1, maxString] and fret in
// [1, maxFret]. Non-positive arguments select the configured bounds, and
// maxString is capped at the configured string count.
func (e *Engine) GeneratePosition(maxFret, maxString int) domain.FretPosition {
	if maxFret <= 0 {
		maxFret = e.cfg.Frets
	}
	if maxString <= 0 || maxString > e.cfg.Strings {
		maxString = e.cfg.Strings
	}
	return domain.FretPosition{
		String: e.randInt(1, maxString),
		Fret:   e.randInt(1, maxFret),
	}
}

// OpenNoteLabel returns the open-string label, e.g. "E (Ми)"
func (e *Engine) OpenNoteLabel(stringID int) (string, error) {
	note, err := OpenNote(stringID)
	if err != nil {
		return "", err
	}
	return note.Label(), nil
}

// ResolveNote walks pos.Fret semitones up the natural-note cycle from the
// open note of pos.String.
func (e *Engine) ResolveNote(pos domain.FretPosition) (domain.ResolvedNote, error) {
	return Resolve(pos)
}

// OpenNote returns the natural note of an unfretted string
func OpenNote(stringID int) (domain.NaturalNote, error) {
	idx, ok := openIndex[stringID]
	if !ok {
		return domain.NaturalNote{}, fmt.Errorf("%w: %d (want 1-%d)", ErrUnknownString, stringID, NumStrings)
	}
	return naturals[idx], nil
}

// Resolve is the stateless form of Engine.ResolveNote
func Resolve(pos domain.FretPosition) (domain.ResolvedNote, error) {
	if pos.Fret < 0 {
		return domain.ResolvedNote{}, fmt.Errorf("%w: %d", ErrNegativeFret, pos.Fret)
	}
	open, err := OpenNote(pos.String)
	if err != nil {
		return domain.ResolvedNote{}, err
	}

	// Twelve semitones walk the whole cycle back to the same letter.
	cur := indexOf(open.Letter)
	remaining := pos.Fret % 12
	for remaining > 0 {
		next := successor(cur)
		tone := naturals[cur].ToneNext

		if remaining >= 2 {
			remaining -= int(tone)
			cur = next
			continue
		}

		// One semitone left: a half step lands on the next letter,
		// a full step stops between the two.
		if tone == domain.Full {
			return domain.ResolvedNote{NaturalNote: naturals[cur], Accidental: domain.Sharp}, nil
		}
		return domain.ResolvedNote{NaturalNote: naturals[next]}, nil
	}

	return domain.ResolvedNote{NaturalNote: naturals[cur]}, nil
}

// randInt draws uniformly from [lo-0.5, hi+0.5) and rounds, which keeps the
// end points as likely as the interior values.
func (e *Engine) randInt(lo, hi int) int {
	v := float64(lo) - 0.5 + e.draw()*float64(hi-lo+1)
	n := int(math.Round(v))
	return max(lo, min(hi, n))
}

func (e *Engine) draw() float64 {
	if e.rng == nil {
		return rand.Float64()
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rng.Float64()
}
