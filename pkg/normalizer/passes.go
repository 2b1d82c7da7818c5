package normalizer

import (
	"encoding/base64"
	"encoding/hex"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	base64RunPattern = regexp.MustCompile(`[A-Za-z0-9+/]{16,}={0,2}`)
	hexRunPattern    = regexp.MustCompile(`(?:0x)?(?:[0-9a-fA-F]{2}){8,}`)
	paddingPattern   = regexp.MustCompile(`[ \t]{4,}`)
	wordPattern      = regexp.MustCompile(`\S+`)
)

// stripInvisible removes zero-width and bidirectional control characters
// (Unicode category Cf) used to split keywords or reorder text.
func (n *TextNormalizer) stripInvisible(text string) (string, float64) {
	stripped := 0
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if unicode.Is(unicode.Cf, r) {
			stripped++
			continue
		}
		b.WriteRune(r)
	}
	if stripped == 0 {
		return text, 0
	}
	return b.String(), 0.4 + 0.15*float64(stripped)
}

// foldConfusables maps fullwidth, mathematical and homoglyph variants to
// canonical ASCII. NFKC covers the compatibility forms; the homoglyph table
// covers Cyrillic and Greek lookalikes NFKC leaves alone.
func (n *TextNormalizer) foldConfusables(text string) (string, float64) {
	folded := norm.NFKC.String(text)

	changed := 0
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if ascii, ok := homoglyphs[r]; ok {
			b.WriteRune(ascii)
			changed++
			continue
		}
		b.WriteRune(r)
	}
	out := b.String()
	if out == text {
		return text, 0
	}
	if changed == 0 && folded != text {
		// Only compatibility folding fired.
		return out, 0.5
	}
	return out, 0.4 + 0.1*float64(changed)
}

// decodeBase64Runs replaces Base64 runs that decode to printable text. Runs
// must satisfy the length and alphabet-purity thresholds; anything that does
// not decode cleanly is left untouched.
func (n *TextNormalizer) decodeBase64Runs(text string) (string, float64) {
	fired := 0
	out := base64RunPattern.ReplaceAllStringFunc(text, func(run string) string {
		if len(run) < n.cfg.MinEncodedLength || len(run)%4 != 0 {
			return run
		}
		if !looksLikeBase64(run) {
			return run
		}
		decoded, err := base64.StdEncoding.DecodeString(run)
		if err != nil {
			decoded, err = base64.RawStdEncoding.DecodeString(run)
			if err != nil {
				return run
			}
		}
		plain := string(decoded)
		if len(plain) < 4 || printableRatio(plain) < n.cfg.MinDecodeQuality {
			return run
		}
		fired++
		return plain
	})
	if fired == 0 {
		return text, 0
	}
	return out, 0.9
}

// looksLikeBase64 rejects plain words that happen to fit the alphabet: a
// real encoding of text carries digits and mixed case.
func looksLikeBase64(run string) bool {
	var hasDigit, hasUpper, hasLower bool
	for _, r := range run {
		switch {
		case r >= '0' && r <= '9', r == '+', r == '/':
			hasDigit = true
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		}
	}
	return hasDigit && hasUpper && hasLower
}

// decodeHexRuns replaces hexadecimal runs that decode to printable text.
func (n *TextNormalizer) decodeHexRuns(text string) (string, float64) {
	fired := 0
	out := hexRunPattern.ReplaceAllStringFunc(text, func(run string) string {
		trimmed := strings.TrimPrefix(run, "0x")
		if len(trimmed) < n.cfg.MinEncodedLength {
			return run
		}
		if !strings.ContainsAny(trimmed, "0123456789") || !strings.ContainsAny(strings.ToLower(trimmed), "abcdef") {
			return run
		}
		decoded, err := hex.DecodeString(trimmed)
		if err != nil {
			return run
		}
		plain := string(decoded)
		if len(plain) < 4 || printableRatio(plain) < n.cfg.MinDecodeQuality {
			return run
		}
		fired++
		return plain
	})
	if fired == 0 {
		return text, 0
	}
	return out, 0.85
}

// reverseRotation detects simple rotational substitution ciphers (ROT13 and
// friends) by trying every shift and scoring the decode against a small
// English dictionary. Text that already reads as English is never touched,
// which keeps the pass idempotent.
func (n *TextNormalizer) reverseRotation(text string) (string, float64) {
	original := englishScore(text)
	if original >= 0.3 {
		return text, 0
	}
	if len(strings.Fields(text)) < 3 {
		return text, 0
	}

	best := ""
	bestScore := 0.0
	for shift := 1; shift < 26; shift++ {
		candidate := rotate(text, shift)
		score := englishScore(candidate)
		if score > bestScore {
			best = candidate
			bestScore = score
		}
	}
	if bestScore < 0.5 || bestScore <= original {
		return text, 0
	}
	return best, bestScore
}

func rotate(text string, shift int) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune('a' + (r-'a'+rune(shift))%26)
		case r >= 'A' && r <= 'Z':
			b.WriteRune('A' + (r-'A'+rune(shift))%26)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func englishScore(text string) float64 {
	fields := strings.Fields(strings.ToLower(text))
	if len(fields) == 0 {
		return 0
	}
	hits := 0
	for _, f := range fields {
		f = strings.Trim(f, ".,!?;:'\"")
		if _, ok := commonWords[f]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(fields))
}

// foldLeetspeak reverses digit/symbol-for-letter substitutions inside words
// that mix letters with mapped symbols. All-digit tokens are never touched.
func (n *TextNormalizer) foldLeetspeak(text string) (string, float64) {
	substituted := 0
	out := wordPattern.ReplaceAllStringFunc(text, func(token string) string {
		core := strings.TrimRight(token, ".,!?;:")
		suffix := token[len(core):]

		// Long unbroken alphanumeric runs are encoding payloads and belong
		// to the decode passes. A run they declined to decode must survive
		// untouched.
		if base64RunPattern.FindString(core) == core {
			return token
		}

		letters, mapped := 0, 0
		for _, r := range core {
			if unicode.IsLetter(r) {
				letters++
			} else if _, ok := leetSubstitutions[r]; ok {
				mapped++
			}
		}
		if letters == 0 || mapped == 0 {
			return token
		}

		var b strings.Builder
		b.Grow(len(core))
		for _, r := range core {
			if sub, ok := leetSubstitutions[r]; ok {
				b.WriteRune(sub)
				continue
			}
			b.WriteRune(r)
		}
		folded := b.String()
		for _, r := range folded {
			if !unicode.IsLetter(r) {
				return token
			}
		}
		substituted++
		return folded + suffix
	})
	if substituted == 0 {
		return text, 0
	}
	return out, 0.25 + 0.15*float64(substituted)
}

// collapseFragmentation rejoins keywords fragmented by per-letter spacing
// ("b o m b") and collapses excessive whitespace padding.
func (n *TextNormalizer) collapseFragmentation(text string) (string, float64) {
	joined, runs := joinSpacedLetters(text)
	collapsed := paddingPattern.ReplaceAllString(joined, " ")

	padded := collapsed != joined
	if runs == 0 && !padded {
		return text, 0
	}
	return collapsed, 0.35 + 0.2*float64(runs)
}

// joinSpacedLetters merges runs of four or more single-letter tokens that
// are separated by exactly one space, preserving all other whitespace.
func joinSpacedLetters(text string) (string, int) {
	locs := wordPattern.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return text, 0
	}

	var b strings.Builder
	b.Grow(len(text))
	b.WriteString(text[:locs[0][0]])

	runs := 0
	i := 0
	for i < len(locs) {
		j := i
		// Extend while tokens are single letters separated by one space.
		for j+1 < len(locs) &&
			isSingleLetter(text[locs[j][0]:locs[j][1]]) &&
			isSingleLetter(text[locs[j+1][0]:locs[j+1][1]]) &&
			text[locs[j][1]:locs[j+1][0]] == " " {
			j++
		}
		if j-i+1 >= 4 {
			for k := i; k <= j; k++ {
				b.WriteString(text[locs[k][0]:locs[k][1]])
			}
			runs++
		} else {
			j = i
			b.WriteString(text[locs[i][0]:locs[i][1]])
		}
		if j+1 < len(locs) {
			b.WriteString(text[locs[j][1]:locs[j+1][0]])
		} else {
			b.WriteString(text[locs[j][1]:])
		}
		i = j + 1
	}
	return b.String(), runs
}

func isSingleLetter(token string) bool {
	if len(token) != 1 {
		return false
	}
	r := rune(token[0])
	return unicode.IsLetter(r)
}

func printableRatio(s string) float64 {
	if s == "" {
		return 0
	}
	printable := 0
	total := 0
	for _, r := range s {
		total++
		if r == '\n' || r == '\t' || r == ' ' || (unicode.IsPrint(r) && r < 0x250) {
			printable++
		}
	}
	return float64(printable) / float64(total)
}
