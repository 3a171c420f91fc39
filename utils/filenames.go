// utils/filenames.go - Drive folder and file naming
package utils

import (
	"strings"
	"time"
	"unicode"
)

// PlaceholderNameToken is used when the responsible person's name is empty.
const PlaceholderNameToken = "Sin_Apellido"

// NameToken extracts the first whitespace-delimited token of a full name.
// The intake form asks for "Apellido, Nombre", so the first token is the
// surname in practice.
func NameToken(fullName string) string {
	fields := strings.Fields(strings.TrimSpace(fullName))
	if len(fields) == 0 {
		return PlaceholderNameToken
	}
	return fields[0]
}

// sanitizeToken keeps only alphanumerics, spaces, hyphens and underscores,
// then replaces spaces with underscores.
func sanitizeToken(token string) string {
	var b strings.Builder
	for _, r := range token {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	return strings.ReplaceAll(b.String(), " ", "_")
}

// FolderName builds the Drive folder name for a submission,
// e.g. "Garcia_20250831".
func FolderName(nameToken string, at time.Time) string {
	return sanitizeToken(nameToken) + "_" + at.Format("20060102")
}

// FileName builds the generated document name for a submission,
// e.g. "Garcia_20250831_formulario.docx".
func FileName(nameToken string, at time.Time, extension string) string {
	return sanitizeToken(nameToken) + "_" + at.Format("20060102") + "_formulario." + extension
}
