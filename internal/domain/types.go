package domain

import "fmt"

// Tone is the interval, in semitones, from a natural note to the next one
type Tone int

const (
	Half Tone = 1
	Full Tone = 2
)

// Accidental marks a pitch raised above its natural note
type Accidental string

const (
	Natural Accidental = ""
	Sharp   Accidental = "#"
)

// NaturalNote is one of the seven letter-named notes
type NaturalNote struct {
	Letter    string `json:"letter"`
	Localized string `json:"localized"`
	ToneNext  Tone   `json:"tone_next"`
}

// Label renders the note as "E (Ми)"
func (n NaturalNote) Label() string {
	return fmt.Sprintf("%s (%s)", n.Letter, n.Localized)
}

// FretPosition is a string/fret pair on the fretboard
type FretPosition struct {
	String int `json:"string"`
	Fret   int `json:"fret"`
}

// ResolvedNote is the note sounding at a fret position
type ResolvedNote struct {
	NaturalNote
	Accidental Accidental `json:"accidental,omitempty"`
}

// Name returns the international spelling, e.g. "F#"
func (r ResolvedNote) Name() string {
	return r.Letter + string(r.Accidental)
}

// Label renders both spellings, e.g. "F# (Фа#)"
func (r ResolvedNote) Label() string {
	return fmt.Sprintf("%s%s (%s%s)", r.Letter, r.Accidental, r.Localized, r.Accidental)
}

func (r ResolvedNote) String() string {
	return r.Name()
}
