// Package pitch maps fretboard positions to MIDI note numbers and messages.
package pitch

import (
	"errors"
	"fmt"

	"github.com/pbaille/fretnote/internal/domain"
	"github.com/pbaille/fretnote/internal/fretboard"
	"gitlab.com/gomidi/midi/v2"
)

// ErrOutOfRange is returned when a position lies above MIDI note 127
var ErrOutOfRange = errors.New("pitch out of MIDI range")

// openPitch is the MIDI pitch of each open string, string 1 first:
// E4(64)  B3(59)  G3(55)  D3(50)  A2(45)  E2(40)
var openPitch = [fretboard.NumStrings]uint8{64, 59, 55, 50, 45, 40}

var classNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Of returns the MIDI note number sounding at pos
func Of(pos domain.FretPosition) (uint8, error) {
	if pos.String < 1 || pos.String > fretboard.NumStrings {
		return 0, fmt.Errorf("%w: %d", fretboard.ErrUnknownString, pos.String)
	}
	if pos.Fret < 0 {
		return 0, fmt.Errorf("%w: %d", fretboard.ErrNegativeFret, pos.Fret)
	}
	key := int(openPitch[pos.String-1]) + pos.Fret
	if key > 127 {
		return 0, fmt.Errorf("%w: string %d fret %d", ErrOutOfRange, pos.String, pos.Fret)
	}
	return uint8(key), nil
}

// Class returns the sharp-spelled pitch class of a MIDI key, e.g. "F#"
func Class(key uint8) string {
	return classNames[key%12]
}

// Name returns the pitch class with its octave, e.g. "F#4"
func Name(key uint8) string {
	return fmt.Sprintf("%s%d", Class(key), int(key)/12-1)
}

// NoteOn encodes a note-on message for pos
func NoteOn(pos domain.FretPosition, channel, velocity uint8) (midi.Message, error) {
	key, err := Of(pos)
	if err != nil {
		return nil, err
	}
	return midi.NoteOn(channel, key, velocity), nil
}

// NoteOff encodes the matching note-off message for pos
func NoteOff(pos domain.FretPosition, channel uint8) (midi.Message, error) {
	key, err := Of(pos)
	if err != nil {
		return nil, err
	}
	return midi.NoteOff(channel, key), nil
}

// Key extracts the note number from a note-on or note-off message
func Key(msg midi.Message) (key uint8, on bool, ok bool) {
	var ch, vel uint8
	if msg.GetNoteStart(&ch, &key, &vel) {
		return key, true, true
	}
	if msg.GetNoteEnd(&ch, &key) {
		return key, false, true
	}
	return 0, false, false
}
