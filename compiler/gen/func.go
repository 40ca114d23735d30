package gen

import (
	"go/token"
	"strings"
	"unicode"

	"github.com/dave/jennifer/jen"
	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	titler = cases.Title(language.English, cases.NoLower)

	// acronyms are words rendered in upper case in Go identifiers.
	acronyms = map[string]bool{
		"acl": true, "api": true, "ascii": true, "cpu": true, "css": true, "dns": true,
		"eof": true, "guid": true, "html": true, "http": true, "https": true, "id": true,
		"ip": true, "json": true, "ram": true, "rpc": true, "sku": true, "sql": true,
		"tcp": true, "tls": true, "ttl": true, "udp": true, "ui": true, "uid": true,
		"uri": true, "url": true, "uuid": true, "xml": true,
	}
)

// words splits s on separators and case boundaries.
func words(s string) []string {
	return strings.FieldsFunc(snake(s), func(r rune) bool { return r == '_' })
}

// snake converts s to snake_case.
func snake(s string) string {
	var (
		b     strings.Builder
		runes = []rune(s)
	)
	for i, r := range runes {
		switch {
		case r == '-' || r == ' ' || r == '.':
			b.WriteByte('_')
		case unicode.IsUpper(r):
			if i > 0 && boundary(runes, i) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// boundary reports whether the upper case rune at i starts a new word.
func boundary(runes []rune, i int) bool {
	prev := runes[i-1]
	if prev == '_' || prev == '-' || prev == ' ' || prev == '.' {
		return false
	}
	if unicode.IsLower(prev) || unicode.IsDigit(prev) {
		return true
	}
	// End of an acronym followed by a word, unless the word is a plural "s".
	if i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
		return !(i+2 == len(runes) && runes[i+1] == 's')
	}
	return false
}

// pascal converts s to an exported Go identifier.
func pascal(s string) string {
	var b strings.Builder
	for _, w := range words(s) {
		if acronyms[w] {
			b.WriteString(strings.ToUpper(w))
		} else {
			b.WriteString(titler.String(w))
		}
	}
	return b.String()
}

// camel converts s to an unexported Go identifier.
func camel(s string) string {
	ws := words(s)
	if len(ws) == 0 {
		return ""
	}
	id := ws[0] + pascal(strings.Join(ws[1:], "_"))
	if token.Lookup(id).IsKeyword() {
		id += "_"
	}
	return id
}

// plural returns the plural of a Pascal-cased name.
func plural(s string) string {
	return pascal(inflect.Pluralize(s))
}

// goType renders a declared Go type. Qualified types name their import path
// before the last dot, as in "time.Time" or "github.com/google/uuid.UUID".
func goType(t string) jen.Code {
	switch {
	case strings.HasPrefix(t, "*"):
		return jen.Op("*").Add(goType(t[1:]))
	case strings.HasPrefix(t, "[]"):
		return jen.Index().Add(goType(t[2:]))
	}
	if i := strings.LastIndex(t, "."); i > 0 {
		return jen.Qual(t[:i], t[i+1:])
	}
	return jen.Id(t)
}
