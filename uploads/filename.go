// Package uploads stores profile pictures in a flat directory and serves
// them back. Uploaded bytes are only ever read and copied: nothing in this
// package interprets, executes or includes a stored file.
package uploads

import (
	"errors"
	"path"
	"regexp"
	"strings"
)

// Image content types accepted on upload and served back.
const (
	TypePNG  = "image/png"
	TypeJPEG = "image/jpeg"
)

const maxNameLen = 100

// ErrInvalidName is returned for filenames that cannot be stored or served.
var ErrInvalidName = errors.New("invalid file name")

var (
	unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)
	dotRuns     = regexp.MustCompile(`\.{2,}`)
	storedName  = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)
)

// extension -> content type it must carry
var allowedExt = map[string]string{
	".png":  TypePNG,
	".jpg":  TypeJPEG,
	".jpeg": TypeJPEG,
}

// SanitizeFilename reduces a client-supplied filename to a safe single path
// element. Directory components are dropped, characters outside
// [A-Za-z0-9._-] become '_', leading dots and underscores are trimmed and the
// extension is lower-cased. The extension must be .png, .jpg or .jpeg.
func SanitizeFilename(name string) (string, error) {
	name = strings.ReplaceAll(name, `\`, "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}

	name = unsafeChars.ReplaceAllString(name, "_")
	name = dotRuns.ReplaceAllString(name, ".")
	name = strings.TrimLeft(name, "._")

	ext := strings.ToLower(path.Ext(name))
	if _, ok := allowedExt[ext]; !ok {
		return "", ErrInvalidName
	}
	stem := strings.TrimSuffix(name, path.Ext(name))
	if len(stem)+len(ext) > maxNameLen {
		stem = stem[:maxNameLen-len(ext)]
	}
	stem = strings.TrimRight(stem, ".")
	if stem == "" {
		return "", ErrInvalidName
	}
	return stem + ext, nil
}

// ExtensionMatches reports whether the extension of name agrees with the
// detected content type.
func ExtensionMatches(name, contentType string) bool {
	want, ok := allowedExt[strings.ToLower(path.Ext(name))]
	return ok && want == contentType
}

// ValidStoredName reports whether name is acceptable as a file in the
// upload directory: one path element, safe charset, no leading dot, no "..".
func ValidStoredName(name string) bool {
	if name == "" || len(name) > 2*maxNameLen {
		return false
	}
	if strings.Contains(name, "..") {
		return false
	}
	return storedName.MatchString(name)
}
