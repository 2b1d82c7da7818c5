package normalizer

// homoglyphs maps non-Latin lookalike runes that survive NFKC folding to
// their ASCII equivalents. Cyrillic and Greek rows cover the substitutions
// seen in obfuscated prompts.
var homoglyphs = map[rune]rune{
	// Cyrillic
	'а': 'a', 'в': 'b', 'е': 'e', 'к': 'k', 'м': 'm', 'н': 'h',
	'о': 'o', 'р': 'p', 'с': 'c', 'т': 't', 'у': 'y', 'х': 'x',
	'А': 'A', 'В': 'B', 'Е': 'E', 'К': 'K', 'М': 'M', 'Н': 'H',
	'О': 'O', 'Р': 'P', 'С': 'C', 'Т': 'T', 'Х': 'X',
	// Greek
	'α': 'a', 'β': 'b', 'ε': 'e', 'ι': 'i', 'κ': 'k', 'ν': 'v',
	'ο': 'o', 'ρ': 'p', 'τ': 't', 'υ': 'u', 'χ': 'x',
	'Α': 'A', 'Β': 'B', 'Ε': 'E', 'Ζ': 'Z', 'Η': 'H', 'Ι': 'I',
	'Κ': 'K', 'Μ': 'M', 'Ν': 'N', 'Ο': 'O', 'Ρ': 'P', 'Τ': 'T',
	'Υ': 'Y', 'Χ': 'X',
}

// leetSubstitutions maps digit/symbol-for-letter substitutions back to
// their letters.
var leetSubstitutions = map[rune]rune{
	'0': 'o',
	'1': 'i',
	'3': 'e',
	'4': 'a',
	'5': 's',
	'7': 't',
	'8': 'b',
	'@': 'a',
	'$': 's',
	'!': 'i',
	'+': 't',
}

// commonWords is a small English dictionary used to score rotation-cipher
// candidates. A decode that suddenly reads like English is the signal.
var commonWords = map[string]struct{}{
	"the": {}, "be": {}, "to": {}, "of": {}, "and": {}, "a": {}, "in": {},
	"that": {}, "have": {}, "i": {}, "it": {}, "for": {}, "not": {},
	"on": {}, "with": {}, "he": {}, "as": {}, "you": {}, "do": {}, "at": {},
	"this": {}, "but": {}, "his": {}, "by": {}, "from": {}, "they": {},
	"we": {}, "say": {}, "her": {}, "she": {}, "or": {}, "an": {},
	"will": {}, "my": {}, "one": {}, "all": {}, "would": {}, "there": {},
	"their": {}, "what": {}, "so": {}, "up": {}, "out": {}, "if": {},
	"about": {}, "who": {}, "get": {}, "which": {}, "go": {}, "me": {},
	"how": {}, "make": {}, "can": {}, "like": {}, "time": {}, "no": {},
	"just": {}, "him": {}, "know": {}, "take": {}, "into": {}, "your": {},
	"some": {}, "could": {}, "them": {}, "see": {}, "other": {}, "than": {},
	"then": {}, "now": {}, "look": {}, "only": {}, "come": {}, "its": {},
	"over": {}, "think": {}, "also": {}, "back": {}, "after": {}, "use": {},
	"two": {}, "any": {}, "our": {}, "work": {}, "first": {}, "well": {},
	"way": {}, "even": {}, "new": {}, "want": {}, "because": {}, "give": {},
	"day": {}, "most": {}, "us": {}, "is": {}, "are": {}, "was": {},
	"tell": {}, "ignore": {}, "previous": {}, "instructions": {},
	"please": {}, "write": {}, "explain": {}, "show": {}, "need": {},
	"help": {}, "bomb": {}, "weapon": {}, "system": {}, "prompt": {},
}
