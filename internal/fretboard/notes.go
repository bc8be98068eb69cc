package fretboard

import (
	"fmt"

	"github.com/pbaille/fretnote/internal/domain"
)

// naturals is the cyclic natural-note sequence. After B the walk wraps to C.
var naturals = [...]domain.NaturalNote{
	{Letter: "C", Localized: "До", ToneNext: domain.Full},
	{Letter: "D", Localized: "Ре", ToneNext: domain.Full},
	{Letter: "E", Localized: "Ми", ToneNext: domain.Half},
	{Letter: "F", Localized: "Фа", ToneNext: domain.Full},
	{Letter: "G", Localized: "Соль", ToneNext: domain.Full},
	{Letter: "A", Localized: "Ля", ToneNext: domain.Full},
	{Letter: "B", Localized: "Си", ToneNext: domain.Half},
}

// standardTuning maps string ids (1 = high E) to open-note letters
var standardTuning = map[int]string{
	1: "E",
	2: "B",
	3: "G",
	4: "D",
	5: "A",
	6: "E",
}

// NumStrings is the fixed string count of the standard tuning
const NumStrings = 6

var (
	letterIndex = map[string]int{}
	openIndex   = map[int]int{}
)

func init() {
	for i, n := range naturals {
		letterIndex[n.Letter] = i
	}
	for s, letter := range standardTuning {
		idx, ok := letterIndex[letter]
		if !ok {
			panic(fmt.Sprintf("fretboard: tuning for string %d references unknown note %q", s, letter))
		}
		openIndex[s] = idx
	}
	if len(openIndex) != NumStrings {
		panic(fmt.Sprintf("fretboard: tuning has %d strings, want %d", len(openIndex), NumStrings))
	}
}

// Naturals returns a copy of the natural-note cycle starting at C
func Naturals() []domain.NaturalNote {
	out := make([]domain.NaturalNote, len(naturals))
	copy(out, naturals[:])
	return out
}

// indexOf returns the position of a letter in the cycle. A miss means the
// tables are corrupt, which is a programming error.
func indexOf(letter string) int {
	idx, ok := letterIndex[letter]
	if !ok {
		panic(fmt.Sprintf("fretboard: invariant violated: note %q not in cycle", letter))
	}
	return idx
}

func successor(idx int) int {
	return (idx + 1) % len(naturals)
}
