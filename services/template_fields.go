package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const templateFieldFallback = "No especificado"

// signaturePlaceholderBlock is rendered in the document when no signature
// image accompanies the submission.
const signaturePlaceholderBlock = "\n\n\nFirma del Docente Responsable:\n\n_________________________________\n\n"

// TemplateFields maps the normalized submission onto the document
// template's replacement placeholders.
func TemplateFields(sub *Submission, now time.Time) map[string]string {
	notEmpty := func(value string) string {
		value = strings.TrimSpace(value)
		if value == "" {
			return templateFieldFallback
		}
		return value
	}

	return map[string]string{
		"TITULO_ACTIVIDAD":       notEmpty(sub.TituloActividad),
		"DOCENTE_RESPONSABLE":    notEmpty(sub.DocenteResponsable),
		"EMAIL_RESPONSABLE":      notEmpty(sub.EmailResponsable),
		"DNI_RESPONSABLE":        notEmpty(sub.DNIResponsable),
		"DEPARTAMENTO":           notEmpty(sub.Departamento),
		"EQUIPO":                 formatTeamForTemplate(sub),
		"FUNDAMENTACION":         notEmpty(sub.Fundamentacion),
		"OBJETIVOS":              notEmpty(sub.Objetivos),
		"METODOLOGIA":            notEmpty(sub.Metodologia),
		"GRADOS":                 notEmpty(sub.Grados),
		"MATERIALES_PRESUPUESTO": notEmpty(sub.MaterialesPresupuesto),
		"PERIODOS":               notEmpty(sub.Meses),
		"FECHA_GENERACION":       now.Format("02/01/2006"),
		"AÑO_CONVOCATORIA":       strconv.Itoa(now.Year()),
		"CUADRO_FIRMA":           signaturePlaceholderBlock,
	}
}

// formatTeamForTemplate renders the roster as the bullet list the template
// expects, one member per entry with DNI, email and claustro.
func formatTeamForTemplate(sub *Submission) string {
	if len(sub.Equipo) == 0 {
		return "No se especificó equipo de trabajo."
	}

	var b strings.Builder
	for i, member := range sub.Equipo {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(fmt.Sprintf("• %s\n", strings.TrimSpace(member.FullName)))
		b.WriteString(fmt.Sprintf("  DNI: %s\n", strings.TrimSpace(member.DNI)))
		b.WriteString(fmt.Sprintf("  Correo: %s\n", strings.TrimSpace(member.Email)))
		b.WriteString(fmt.Sprintf("  Claustro: %s\n", strings.TrimSpace(member.Claustro)))
	}
	return b.String()
}
