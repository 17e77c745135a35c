package project

import (
	"errors"
	"strings"
	"unicode"
)

func isValidPathSegment(seg string) bool {
	if seg == "" {
		return false
	}
	for i, r := range seg {
		if r > unicode.MaxASCII {
			return false
		}
		if i == 0 && r != '_' && !unicode.IsLetter(r) {
			return false
		}
		if i > 0 && r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// IsValidModulePath reports whether path is a canonical namespace path:
// ident ('/' ident)*, ASCII, без пустых сегментов, "." и "..".
func IsValidModulePath(path string) bool {
	if path == "" {
		return false
	}
	for _, seg := range strings.Split(path, "/") {
		if !isValidPathSegment(seg) {
			return false
		}
	}
	return true
}

// NormalizeModulePath приводит путь к каноническому виду "a/b":
// отрезает расширение .ag, переводит слэши к '/', проверяет сегменты.
func NormalizeModulePath(path string) (string, error) {
	const ext = ".ag"
	if strings.HasSuffix(path, ext) {
		path = path[:len(path)-len(ext)]
	}
	path = strings.ReplaceAll(path, "\\", "/")
	path = strings.Trim(path, "/")
	if path == "" {
		return "", errors.New("invalid module path")
	}
	segments := strings.Split(path, "/")
	for _, seg := range segments {
		if !isValidPathSegment(seg) {
			return "", errors.New("invalid module path")
		}
	}
	return strings.Join(segments, "/"), nil
}
