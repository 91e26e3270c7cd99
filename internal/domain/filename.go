package domain

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxFilenameBytes is the longest file name most filesystems accept
const MaxFilenameBytes = 255

// FilenameMode selects how output file names are derived
type FilenameMode string

const (
	FilenameDateTitle FilenameMode = "date-title"  // "2024-01-01 - Title.mp3"
	FilenameRemote    FilenameMode = "remote-name" // last segment of the enclosure URL
)

// ParseFilenameMode validates a filename mode string. Empty means the default.
func ParseFilenameMode(s string) (FilenameMode, error) {
	switch FilenameMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", FilenameDateTitle:
		return FilenameDateTitle, nil
	case FilenameRemote:
		return FilenameRemote, nil
	default:
		return "", fmt.Errorf("invalid filename mode %q (want %q or %q)", s, FilenameDateTitle, FilenameRemote)
	}
}

const dateTitleSeparator = " - "

// Filename returns the output file name for an episode. It never fails for an
// Episode produced by Extract. Distinct episodes may map to the same name.
func Filename(ep Episode, mode FilenameMode) string {
	if mode == FilenameRemote {
		return RemoteFilename(ep.audioURL)
	}

	prefix := ep.publishedAt.Format("2006-01-02") + dateTitleSeparator
	suffix := "." + ep.mediaKind.Extension()
	title := TruncateUTF8(ep.title, MaxFilenameBytes-len(prefix)-len(suffix))
	return prefix + title + suffix
}

// RemoteFilename returns the sanitized, percent-decoded final path segment of u
func RemoteFilename(u *url.URL) string {
	if u == nil {
		return ""
	}
	escaped := u.EscapedPath()
	segment := escaped[strings.LastIndex(escaped, "/")+1:]
	if unescaped, err := url.PathUnescape(segment); err == nil {
		segment = unescaped
	}
	return SanitizeFilename(segment)
}

var (
	illegalChars  = regexp.MustCompile(`[/?<>\\:*|"]`)
	controlChars  = regexp.MustCompile(`[\x00-\x1f\x80-\x9f]`)
	reservedDots  = regexp.MustCompile(`^\.+$`)
	windowsDevice = regexp.MustCompile(`(?i)^(con|prn|aux|nul|com[0-9]|lpt[0-9])(\..*)?$`)
	trailingJunk  = regexp.MustCompile(`[. ]+$`)
)

// SanitizeFilename strips characters that are illegal in file names on common
// filesystems and limits the result to MaxFilenameBytes. The result may be empty.
func SanitizeFilename(name string) string {
	name = strings.ToValidUTF8(name, "")
	name = illegalChars.ReplaceAllString(name, "")
	name = controlChars.ReplaceAllString(name, "")
	name = reservedDots.ReplaceAllString(name, "")
	name = windowsDevice.ReplaceAllString(name, "")
	name = trailingJunk.ReplaceAllString(name, "")
	return TruncateUTF8(name, MaxFilenameBytes)
}

// TruncateUTF8 shortens s to at most max bytes without splitting a multi-byte character
func TruncateUTF8(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
