package domain

import "fmt"

// Symbols is the fixed rune alphabet players choose from. Order matters:
// reward distance is computed on the ring formed by these indices.
var Symbols = []string{
	"ᚹ", "ᚾ", "ᚦ", "ᚠ", "ᚱ", "ᚲ", "ᛉ", "ᛈ", "ᚺ", "ᛏ", "ᛁ",
	"ᛋ", "ᛇ", "ᚨ", "ᛃ", "ᛟ", "ᛞ", "ᛒ", "ᛗ", "ᛚ", "ᛜ", "ᛝ",
}

// SymbolCount is the alphabet size N; the maximum ring distance is N/2.
var SymbolCount = len(Symbols)

var symbolIndex map[string]int

func init() {
	symbolIndex = make(map[string]int, len(Symbols))
	for i, s := range Symbols {
		if _, dup := symbolIndex[s]; dup {
			// A duplicate rune corrupts distance math for every player;
			// refuse to start.
			panic(fmt.Sprintf("duplicate rune %q in symbol alphabet at index %d", s, i))
		}
		symbolIndex[s] = i
	}
}

// SymbolIndex returns the position of s in the alphabet, or -1 if s is not
// a valid symbol.
func SymbolIndex(s string) int {
	i, ok := symbolIndex[s]
	if !ok {
		return -1
	}
	return i
}

// IsValidSymbol reports whether s is a member of the alphabet.
func IsValidSymbol(s string) bool {
	_, ok := symbolIndex[s]
	return ok
}
