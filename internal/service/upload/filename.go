package upload

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"mime"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

var (
	// storedName matches names produced by generateFilename
	storedName = regexp.MustCompile(`^\d+-\d{9}(\.[a-z0-9]{1,10})?$`)
	cleanExt   = regexp.MustCompile(`^\.[a-z0-9]{1,10}$`)
	nineDigits = big.NewInt(1_000_000_000)
)

// generateFilename returns "<unix-millis>-<9 random digits><ext>"
func generateFilename(now time.Time, ext string) (string, error) {
	n, err := rand.Int(rand.Reader, nineDigits)
	if err != nil {
		return "", fmt.Errorf("generate filename: %w", err)
	}
	return fmt.Sprintf("%d-%09d%s", now.UnixMilli(), n.Int64(), ext), nil
}

// extensionFor picks the stored extension. The original name's is kept only
// when it maps back to the validated MIME type; anything else gets the
// canonical extension for that type. The extension decides how the file is
// served, so a mismatch would let "evil.html" declared as image/png come back
// as a page.
func extensionFor(originalName, mimeType string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	if cleanExt.MatchString(ext) && extensionMatches(ext, mimeType) {
		return ext
	}
	if m := mimetype.Lookup(mimeType); m != nil {
		return m.Extension()
	}
	return ""
}

// extensionMatches reports whether ext is a known extension for mimeType
func extensionMatches(ext, mimeType string) bool {
	if byExt := mime.TypeByExtension(ext); byExt != "" && normalizeMimeType(byExt) == mimeType {
		return true
	}
	m := mimetype.Lookup(mimeType)
	return m != nil && m.Extension() == ext
}

// IsStoredFilename reports whether name has the shape of a generated filename
func IsStoredFilename(name string) bool {
	return storedName.MatchString(name)
}
