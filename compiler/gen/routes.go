package gen

import (
	"bytes"
	"fmt"
	"strings"
)

// RegistryMode is the operator's choice for updating an existing generated
// route block.
type RegistryMode string

const (
	// RegistryReplace rebuilds the block from this run's routes.
	RegistryReplace RegistryMode = "replace"
	// RegistryMerge keeps the block and appends only routes not already
	// present, by normalized comparison.
	RegistryMerge RegistryMode = "merge"
	// RegistrySkip leaves the file unmodified.
	RegistrySkip RegistryMode = "skip"
)

// ResolveRegistryMode decides how an existing generated block is updated.
// Force mode replaces without asking; otherwise the operator chooses, with
// merge as the non-destructive default.
func ResolveRegistryMode(path string, force bool, p Prompter) (RegistryMode, error) {
	if force {
		return RegistryReplace, nil
	}
	answer, err := p.Choose(
		fmt.Sprintf("%s already contains a generated route block. Replace it, merge new routes in, or skip?", path),
		[]string{string(RegistryReplace), string(RegistryMerge), string(RegistrySkip)},
		string(RegistryMerge),
	)
	if err != nil {
		return RegistrySkip, err
	}
	switch mode := RegistryMode(answer); mode {
	case RegistryReplace, RegistryMerge, RegistrySkip:
		return mode, nil
	default:
		return RegistrySkip, nil
	}
}

// MergeRegistry computes the updated registry content from the current one.
// When content has no begin marker a fresh block is appended and mode is
// ignored; no decision is needed for a file the engine never touched.
// Content outside the marker pair is preserved byte for byte under every
// mode. The changed result reports whether the returned content differs
// from the input.
func MergeRegistry(content []byte, spec RegistrySpec, lines []string, mode RegistryMode) (updated []byte, changed bool, err error) {
	lines = dedupeRoutes(lines)
	begin := bytes.Index(content, []byte(spec.Begin))
	if begin < 0 {
		if len(lines) == 0 {
			return content, false, nil
		}
		return appendBlock(content, spec, lines), true, nil
	}
	rest := content[begin+len(spec.Begin):]
	end := bytes.Index(rest, []byte(spec.End))
	if end < 0 {
		return content, false, fmt.Errorf("%w in %s", ErrRegistryMarker, spec.Path)
	}
	switch mode {
	case RegistrySkip:
		return content, false, nil
	case RegistryReplace:
		var buf bytes.Buffer
		buf.Write(content[:begin])
		buf.Write(renderBlock(spec, lines))
		buf.Write(rest[end+len(spec.End):])
		return buf.Bytes(), true, nil
	}

	// Merge: keep the block's prior content untouched and insert only the
	// routes whose normalized form is not present yet, just before the end
	// marker.
	inner := rest[:end]
	existing := make(map[string]bool)
	for _, line := range strings.Split(string(inner), "\n") {
		if n := normalizeRoute(line); n != "" {
			existing[n] = true
		}
	}
	var missing []string
	for _, line := range lines {
		if !existing[normalizeRoute(line)] {
			missing = append(missing, line)
		}
	}
	if len(missing) == 0 {
		return content, false, nil
	}
	markerAt := begin + len(spec.Begin) + end
	var buf bytes.Buffer
	buf.Write(content[:markerAt])
	if !bytes.HasSuffix(inner, []byte("\n")) {
		buf.WriteByte('\n')
	}
	for _, line := range missing {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	buf.Write(content[markerAt:])
	return buf.Bytes(), true, nil
}

func renderBlock(spec RegistrySpec, lines []string) []byte {
	var buf bytes.Buffer
	buf.WriteString(spec.Begin)
	buf.WriteByte('\n')
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	buf.WriteString(spec.End)
	return buf.Bytes()
}

func appendBlock(content []byte, spec RegistrySpec, lines []string) []byte {
	var buf bytes.Buffer
	buf.Write(content)
	if len(content) > 0 {
		if !bytes.HasSuffix(content, []byte("\n")) {
			buf.WriteByte('\n')
		}
		buf.WriteByte('\n')
	}
	buf.Write(renderBlock(spec, lines))
	buf.WriteByte('\n')
	return buf.Bytes()
}

// normalizeRoute strips surrounding space and trailing statement
// punctuation, so `Route::resource('users', ...);` and the same line
// without the semicolon compare equal.
func normalizeRoute(line string) string {
	s := strings.TrimSpace(line)
	s = strings.TrimRight(s, ";,")
	return strings.TrimSpace(s)
}

// dedupeRoutes drops lines whose normalized form repeats, keeping first
// occurrences in order.
func dedupeRoutes(lines []string) []string {
	seen := make(map[string]bool, len(lines))
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		n := normalizeRoute(line)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, line)
	}
	return out
}
