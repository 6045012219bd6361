package hermes

import "strings"

// NormalizeSymbol strips whitespace and uppercases, so "btc / usd" matches
// "BTC/USD".
func NormalizeSymbol(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}

// NormalizeToken strips everything except letters and digits, then uppercases.
// Shared by every base/quote comparison in the resolver layer.
func NormalizeToken(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		}
	}
	return strings.ToUpper(b.String())
}

// SplitPair extracts normalized base and quote tokens from a feed symbol. Only
// the first space-delimited token is considered; a token without "/" has no
// valid pair.
func SplitPair(symbol string) (base, quote string, ok bool) {
	token := symbol
	if i := strings.IndexByte(token, ' '); i >= 0 {
		token = token[:i]
	}
	slash := strings.IndexByte(token, '/')
	if slash < 0 {
		return "", "", false
	}
	base = NormalizeToken(token[:slash])
	quote = NormalizeToken(token[slash+1:])
	if base == "" || quote == "" {
		return "", "", false
	}
	return base, quote, true
}

// Slugify turns "BTC/USD" into the stable feed id "btc-usd".
func Slugify(symbol string) string {
	return strings.ReplaceAll(strings.ToLower(symbol), "/", "-")
}

// DisplaySymbol picks the best human-readable "BASE/QUOTE" symbol from a
// descriptor, synthesizing one from base and quote attributes when no display
// field is set.
func DisplaySymbol(d FeedDescriptor) string {
	attr := d.Attributes
	if attr.DisplaySymbol != "" {
		return attr.DisplaySymbol
	}
	if attr.Base != "" {
		quote := attr.QuoteCurrency
		if quote == "" {
			quote = attr.Quote
		}
		if quote != "" {
			return attr.Base + "/" + quote
		}
	}
	if attr.GenericSymbol != "" {
		return attr.GenericSymbol
	}
	return attr.Symbol
}

// MatchCandidates lists every symbol spelling a descriptor can be matched
// against during discovery selection.
func MatchCandidates(d FeedDescriptor) []string {
	attr := d.Attributes
	candidates := make([]string, 0, 4)
	if attr.Symbol != "" {
		candidates = append(candidates, attr.Symbol)
	}
	if attr.DisplaySymbol != "" {
		candidates = append(candidates, attr.DisplaySymbol)
	}
	if attr.GenericSymbol != "" {
		candidates = append(candidates, attr.GenericSymbol)
	}
	if attr.Base != "" {
		quote := attr.QuoteCurrency
		if quote == "" {
			quote = attr.Quote
		}
		if quote != "" {
			candidates = append(candidates, attr.Base+"/"+quote)
		}
	}
	return candidates
}
