package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"activity-intake-api/models"
	"activity-intake-api/utils"
)

// RawSubmission carries the form fields exactly as posted, before any
// trimming or decoding.
type RawSubmission struct {
	TituloActividad       string
	DocenteResponsable    string
	EmailResponsable      string
	DNIResponsable        string
	Departamento          string
	Equipo                string // JSON array of team members
	Fundamentacion        string
	Objetivos             string
	Metodologia           string
	Grados                string
	MaterialesPresupuesto string
	Periodos              string // JSON array of {ano, meses[]}
}

// Submission is the validated, typed form ready for persistence and
// document generation.
type Submission struct {
	TituloActividad       string
	DocenteResponsable    string
	EmailResponsable      string
	DNIResponsable        string
	Departamento          string
	Equipo                []models.TeamMember
	Fundamentacion        string
	Objetivos             string
	Metodologia           string
	Grados                string
	MaterialesPresupuesto string
	Meses                 string // derived period summary
	Periodos              []models.Period
}

// ValidationError reports the first required field found missing.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// requiredFields is the set enforced at intake. Email and DNI of the
// responsible person are stored but not required.
var requiredFields = []string{
	"titulo_actividad",
	"docente_responsable",
	"fundamentacion",
	"objetivos",
	"metodologia",
}

// NormalizeSubmission trims and decodes the raw form values and validates
// the required fields. It has no side effects.
func NormalizeSubmission(raw RawSubmission) (*Submission, error) {
	sub := &Submission{
		TituloActividad:       utils.SanitizeInput(raw.TituloActividad),
		DocenteResponsable:    utils.SanitizeInput(raw.DocenteResponsable),
		EmailResponsable:      utils.SanitizeInput(raw.EmailResponsable),
		DNIResponsable:        utils.SanitizeInput(raw.DNIResponsable),
		Departamento:          utils.SanitizeInput(raw.Departamento),
		Equipo:                parseTeam(raw.Equipo),
		Fundamentacion:        utils.SanitizeInput(raw.Fundamentacion),
		Objetivos:             utils.SanitizeInput(raw.Objetivos),
		Metodologia:           utils.SanitizeInput(raw.Metodologia),
		Grados:                utils.SanitizeInput(raw.Grados),
		MaterialesPresupuesto: utils.SanitizeInput(raw.MaterialesPresupuesto),
		Periodos:              parsePeriods(raw.Periodos),
	}
	sub.Meses = PeriodSummary(sub.Periodos)

	values := map[string]string{
		"titulo_actividad":    sub.TituloActividad,
		"docente_responsable": sub.DocenteResponsable,
		"fundamentacion":      sub.Fundamentacion,
		"objetivos":           sub.Objetivos,
		"metodologia":         sub.Metodologia,
	}
	for _, field := range requiredFields {
		if values[field] == "" {
			return nil, &ValidationError{Field: field}
		}
	}

	return sub, nil
}

// parseTeam decodes the posted team roster. A corrupt optional sub-field
// never fails the whole submission; it decodes to an empty roster.
func parseTeam(encoded string) []models.TeamMember {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return []models.TeamMember{}
	}
	var members []models.TeamMember
	if err := json.Unmarshal([]byte(encoded), &members); err != nil {
		return []models.TeamMember{}
	}
	if members == nil {
		return []models.TeamMember{}
	}
	return members
}

func parsePeriods(encoded string) []models.Period {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return []models.Period{}
	}
	var periods []models.Period
	if err := json.Unmarshal([]byte(encoded), &periods); err != nil {
		return []models.Period{}
	}
	if periods == nil {
		return []models.Period{}
	}
	return periods
}

// PeriodSummary renders the period list as a single readable line, e.g.
// "2025: Marzo, Abril | 2026: Julio". Entries missing the year or the month
// list are skipped entirely.
func PeriodSummary(periods []models.Period) string {
	var parts []string
	for _, p := range periods {
		if p.Year == "" || len(p.Months) == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", p.Year, strings.Join(p.Months, ", ")))
	}
	return strings.Join(parts, " | ")
}
