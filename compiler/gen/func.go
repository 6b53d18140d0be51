package gen

import (
	"fmt"
	"strconv"
	"strings"
	"text/template"
	"unicode"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Funcs are the helpers exposed to dialect stub templates. Dialects extend
// this map with target-specific helpers rather than redefining these.
var Funcs = template.FuncMap{
	"add":       add,
	"camel":     camel,
	"dict":      dict,
	"fail":      fail,
	"hasKey":    hasKey,
	"indexOf":   indexOf,
	"joinWords": joinWords,
	"label":     label,
	"pascal":    pascal,
	"plural":    plural,
	"quote":     quote,
	"singular":  singular,
	"snake":     snake,
	"toString":  toString,
	"xrange":    xrange,
}

var (
	rules    = ruleset()
	acronyms = make(map[string]struct{})
)

func ruleset() *inflect.Ruleset {
	rules := inflect.NewDefaultRuleset()
	// Add common initialisms. Used in pascal, camel and snake.
	for _, w := range []string{
		"ACL", "API", "ASCII", "AWS", "CPU", "CSS", "DNS", "EOF", "GB", "GUID",
		"HTML", "HTTP", "HTTPS", "ID", "IP", "JSON", "KB", "LHS", "MAC", "MB",
		"QPS", "RAM", "RHS", "RPC", "SLA", "SMTP", "SQL", "SSH", "SSO", "TCP",
		"TLS", "TTL", "UDP", "UI", "UID", "URI", "URL", "UTF8", "UUID", "VM",
		"XML", "XMPP", "XSRF", "XSS",
	} {
		acronyms[w] = struct{}{}
		rules.AddAcronym(w)
	}
	return rules
}

// AddAcronym adds an initialism to the naming rules, making pascal and
// camel preserve its casing (e.g. "oauth_token" => "OAUTHToken" once
// "OAUTH" is registered).
func AddAcronym(word string) {
	acronyms[word] = struct{}{}
	rules.AddAcronym(word)
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || unicode.IsSpace(r)
}

// snake converts the given identifier to snake_case, keeping initialism
// runs together: "HTTPCode" => "http_code", "UserIDs" => "user_ids".
func snake(s string) string {
	var (
		j int
		b strings.Builder
	)
	for i := 0; i < len(s); i++ {
		r := rune(s[i])
		// Put '_' if it is not the start or end of a word, the current
		// letter is uppercase, and the previous letter is lowercase
		// ("UserInfo"), or the next letter is lowercase and the previous
		// one was part of an uppercase run ("HTTPCode").
		if i > 0 && i < len(s)-1 && unicode.IsUpper(r) {
			if unicode.IsLower(rune(s[i-1])) ||
				j != i-1 && unicode.IsLower(rune(s[i+1])) && unicode.IsLetter(rune(s[i-1])) {
				j = i
				b.WriteString("_")
			}
		}
		b.WriteString(strings.ToLower(string(r)))
	}
	return b.String()
}

// pascal converts the given identifier to PascalCase (StudlyCase).
func pascal(s string) string {
	words := strings.FieldsFunc(s, isSeparator)
	return pascalWords(words)
}

func pascalWords(words []string) string {
	var b strings.Builder
	for _, w := range words {
		upper := strings.ToUpper(w)
		if _, ok := acronyms[upper]; ok {
			b.WriteString(upper)
			continue
		}
		if len(w) > 1 {
			upper = strings.ToUpper(w[:1]) + w[1:]
		}
		b.WriteString(upper)
	}
	return b.String()
}

// camel converts the given identifier to camelCase.
func camel(s string) string {
	words := strings.FieldsFunc(s, isSeparator)
	if len(words) == 1 {
		return strings.ToLower(words[0])
	}
	return strings.ToLower(words[0]) + pascalWords(words[1:])
}

// plural returns the plural form of the given word.
func plural(s string) string { return rules.Pluralize(s) }

// singular returns the singular form of the given word.
func singular(s string) string { return rules.Singularize(s) }

var titler = cases.Title(language.English)

// label humanizes an identifier for display in rendered views:
// "user_id" => "User id".
func label(s string) string {
	words := strings.FieldsFunc(s, isSeparator)
	if len(words) == 0 {
		return ""
	}
	words[0] = titler.String(words[0])
	return strings.Join(words, " ")
}

// receiver returns a short receiver identifier for the given type name,
// avoiding collisions with common package names.
func receiver(s string) string {
	s = strings.Trim(s, "[]*&0123456789")
	parts := strings.Split(snake(s), "_")
	minlen := len(parts[0])
	for _, w := range parts[1:] {
		if len(w) < minlen {
			minlen = len(w)
		}
	}
	for i := 1; i < minlen; i++ {
		r := parts[0][:i]
		for _, w := range parts[1:] {
			r += w[:i]
		}
		if _, ok := stdpkg[r]; !ok {
			return r
		}
	}
	return strings.ToLower(s)
}

// stdpkg holds package identifiers a receiver name must not shadow.
var stdpkg = func() map[string]struct{} {
	m := make(map[string]struct{})
	for _, pkg := range []string{
		"bytes", "context", "errors", "fmt", "io", "log", "os", "path",
		"regexp", "sort", "strconv", "strings", "time",
	} {
		m[pkg] = struct{}{}
	}
	return m
}()

func xrange(n int) (a []int) {
	for i := 0; i < n; i++ {
		a = append(a, i)
	}
	return a
}

func add(xs ...int) (n int) {
	for _, x := range xs {
		n += x
	}
	return
}

// quote wraps string values in double quotes and leaves other values as-is.
func quote(v any) any {
	if s, ok := v.(string); ok {
		return strconv.Quote(s)
	}
	return v
}

func indexOf(a []string, s string) int {
	for i := range a {
		if a[i] == s {
			return i
		}
	}
	return -1
}

// joinWords joins words with spaces, wrapping to a new line whenever the
// current line would exceed maxSize.
func joinWords(words []string, maxSize int) string {
	if len(words) == 0 {
		return ""
	}
	var (
		b    strings.Builder
		size int
	)
	b.WriteString(words[0])
	size = len(words[0])
	for _, w := range words[1:] {
		if size+len(w)+1 > maxSize {
			b.WriteString("\n ")
			size = 1
		} else {
			b.WriteString(" ")
			size++
		}
		b.WriteString(w)
		size += len(w)
	}
	return b.String()
}

// dict builds a map from interleaved key/value arguments. A trailing key
// without a value maps to the empty string.
func dict(v ...any) map[string]any {
	lens := len(v)
	dict := make(map[string]any, lens/2)
	for i := 0; i < lens; i += 2 {
		key := toString(v[i])
		if i+1 >= lens {
			dict[key] = ""
			continue
		}
		dict[key] = v[i+1]
	}
	return dict
}

func hasKey(d map[string]any, key string) bool {
	_, ok := d[key]
	return ok
}

func toString(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// fail unconditionally returns an error with the given text. It lets stub
// templates abort rendering on states they cannot represent.
func fail(msg string) (string, error) {
	return "", fmt.Errorf("%s", msg)
}

// Snake converts an identifier to snake_case.
func Snake(s string) string { return snake(s) }

// Pascal converts an identifier to PascalCase (StudlyCase), honoring the
// registered initialisms.
func Pascal(s string) string { return pascal(s) }

// Camel converts an identifier to camelCase.
func Camel(s string) string { return camel(s) }

// Plural returns the plural form of a word.
func Plural(s string) string { return plural(s) }

// Singular returns the singular form of a word.
func Singular(s string) string { return singular(s) }

// Label humanizes an identifier for display.
func Label(s string) string { return label(s) }
