package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// Processing states for an ActivityForm. A form starts as pendiente and is
// moved exactly once to procesado or error; it never goes back.
const (
	StatusPending   = "pendiente"
	StatusProcessed = "procesado"
	StatusError     = "error"
)

// TeamMember is one collaborator on the proposed activity.
type TeamMember struct {
	FullName string `json:"apellido_nombre"`
	DNI      string `json:"dni"`
	Email    string `json:"correo"`
	Claustro string `json:"claustro"`
}

// Period is a year with the proposed months inside that year.
type Period struct {
	Year   string   `json:"ano"`
	Months []string `json:"meses"`
}

// ActivityForm represents the formularios_actividad table
type ActivityForm struct {
	ID uint `gorm:"primaryKey;column:id" json:"id"`

	TituloActividad    string `gorm:"column:titulo_actividad;type:text;not null" json:"titulo_actividad"`
	DocenteResponsable string `gorm:"column:docente_responsable;size:200;not null" json:"docente_responsable"`
	EmailResponsable   string `gorm:"column:email_responsable;size:200" json:"email_responsable"`
	DNIResponsable     string `gorm:"column:dni_responsable;size:20" json:"dni_responsable"`
	Departamento       string `gorm:"column:departamento;type:text" json:"departamento"`

	EquipoJSON datatypes.JSON `gorm:"column:equipo_json" json:"-"`

	Fundamentacion        string `gorm:"column:fundamentacion;type:text;not null" json:"fundamentacion"`
	Objetivos             string `gorm:"column:objetivos;type:text;not null" json:"objetivos"`
	Metodologia           string `gorm:"column:metodologia;type:text;not null" json:"metodologia"`
	Grados                string `gorm:"column:grados;type:text" json:"grados"`
	MaterialesPresupuesto string `gorm:"column:materiales_presupuesto;type:text" json:"materiales_presupuesto"`

	// Meses holds the human-readable period summary, computed once at
	// submission time and never recomputed afterwards.
	Meses        string         `gorm:"column:meses;type:text" json:"meses"`
	PeriodosJSON datatypes.JSON `gorm:"column:periodos_json" json:"-"`

	FechaCreacion     time.Time `gorm:"column:fecha_creacion;autoCreateTime" json:"fecha_creacion"`
	FechaModificacion time.Time `gorm:"column:fecha_modificacion;autoUpdateTime" json:"fecha_modificacion"`

	// Identifiers assigned by the document provider; set only when the
	// form reaches procesado.
	DocumentoID *string `gorm:"column:documento_id;size:100" json:"documento_id"`
	CarpetaID   *string `gorm:"column:carpeta_id;size:100" json:"carpeta_id"`

	Estado string `gorm:"column:estado;size:50;default:pendiente" json:"estado"`
}

// TableName overrides the table name for ActivityForm
func (ActivityForm) TableName() string {
	return "formularios_actividad"
}

// Equipo decodes the stored team roster. Malformed or empty stored JSON
// yields an empty slice, never an error.
func (f *ActivityForm) Equipo() []TeamMember {
	if len(f.EquipoJSON) == 0 {
		return []TeamMember{}
	}
	var members []TeamMember
	if err := json.Unmarshal(f.EquipoJSON, &members); err != nil {
		return []TeamMember{}
	}
	if members == nil {
		return []TeamMember{}
	}
	return members
}

// SetEquipo serializes the team roster preserving member order. An empty
// roster is stored as NULL.
func (f *ActivityForm) SetEquipo(members []TeamMember) {
	if len(members) == 0 {
		f.EquipoJSON = nil
		return
	}
	data, err := json.Marshal(members)
	if err != nil {
		f.EquipoJSON = nil
		return
	}
	f.EquipoJSON = data
}

// Periodos decodes the stored period list with the same fallback policy as
// Equipo.
func (f *ActivityForm) Periodos() []Period {
	if len(f.PeriodosJSON) == 0 {
		return []Period{}
	}
	var periods []Period
	if err := json.Unmarshal(f.PeriodosJSON, &periods); err != nil {
		return []Period{}
	}
	if periods == nil {
		return []Period{}
	}
	return periods
}

// SetPeriodos serializes the period list preserving order.
func (f *ActivityForm) SetPeriodos(periods []Period) {
	if len(periods) == 0 {
		f.PeriodosJSON = nil
		return
	}
	data, err := json.Marshal(periods)
	if err != nil {
		f.PeriodosJSON = nil
		return
	}
	f.PeriodosJSON = data
}

// ReferenceNumber returns the human-facing form number, e.g. FORM-000042.
func (f *ActivityForm) ReferenceNumber() string {
	return fmt.Sprintf("FORM-%06d", f.ID)
}

// ToMap flattens the record for JSON responses, expanding the serialized
// equipo/periodos columns into structured values.
func (f *ActivityForm) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"id":                     f.ID,
		"titulo_actividad":       f.TituloActividad,
		"docente_responsable":    f.DocenteResponsable,
		"email_responsable":      f.EmailResponsable,
		"dni_responsable":        f.DNIResponsable,
		"departamento":           f.Departamento,
		"equipo":                 f.Equipo(),
		"fundamentacion":         f.Fundamentacion,
		"objetivos":              f.Objetivos,
		"metodologia":            f.Metodologia,
		"grados":                 f.Grados,
		"materiales_presupuesto": f.MaterialesPresupuesto,
		"meses":                  f.Meses,
		"periodos":               f.Periodos(),
		"fecha_creacion":         f.FechaCreacion.Format(time.RFC3339),
		"fecha_modificacion":     f.FechaModificacion.Format(time.RFC3339),
		"documento_id":           f.DocumentoID,
		"carpeta_id":             f.CarpetaID,
		"estado":                 f.Estado,
	}
}
