package plotting

import (
	"path/filepath"
	"strings"
)

// maxNameLen bounds generated file names.
const maxNameLen = 128

// OutputPath returns dir/<label>.<ext> with label reduced to a safe file
// name: ASCII letters, digits, '.', '_' and '-' are kept and every other
// run of characters becomes a single underscore.
func OutputPath(dir, label, ext string) string {
	return filepath.Join(dir, SanitizeFilename(label)+"."+strings.TrimPrefix(ext, "."))
}

// SanitizeFilename makes a file name from an arbitrary label. An empty
// result becomes "spectrum".
func SanitizeFilename(s string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range s {
		if b.Len() >= maxNameLen {
			break
		}
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
			lastUnderscore = r == '_'
		case !lastUnderscore:
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "spectrum"
	}
	return out
}
