// controllers/form.go
package controllers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"activity-intake-api/config"
	"activity-intake-api/models"
	"activity-intake-api/services"
)

const apiVersion = "1.0.0"

// SubmitForm handles the activity-form submission endpoint.
func SubmitForm(c *gin.Context) {
	raw := services.RawSubmission{
		TituloActividad:       c.PostForm("titulo_actividad"),
		DocenteResponsable:    c.PostForm("docente_responsable"),
		EmailResponsable:      c.PostForm("email_responsable"),
		DNIResponsable:        c.PostForm("dni_responsable"),
		Departamento:          c.PostForm("departamento"),
		Equipo:                c.PostForm("equipo"),
		Fundamentacion:        c.PostForm("fundamentacion"),
		Objetivos:             c.PostForm("objetivos"),
		Metodologia:           c.PostForm("metodologia"),
		Grados:                c.PostForm("grados"),
		MaterialesPresupuesto: c.PostForm("materiales_presupuesto"),
		Periodos:              c.PostForm("periodos"),
	}

	processor := services.NewFormProcessor(nil, nil, nil)
	result, err := processor.ProcessSubmission(c.Request.Context(), raw)
	if err != nil {
		log.Printf("error processing submission: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Error interno del servidor",
		})
		return
	}

	if !result.Success {
		response := gin.H{
			"success": false,
			"message": result.Message,
		}
		if result.FormID != 0 {
			response["data"] = gin.H{"formulario_id": result.FormID}
		}
		c.JSON(http.StatusOK, response)
		return
	}

	c.Redirect(http.StatusSeeOther, "/confirmacion/"+itoa(result.FormID))
}

// ConfirmForm returns the confirmation payload shown after a successful
// submission. Records that never reached procesado redirect back home.
func ConfirmForm(c *gin.Context) {
	formID := c.Param("id")

	var form models.ActivityForm
	if err := config.DB.First(&form, "id = ?", formID).Error; err != nil {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	if form.Estado != models.StatusProcessed {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"numero_formulario":   form.ReferenceNumber(),
			"fecha_procesamiento": form.FechaCreacion.Format("02/01/2006 15:04"),
		},
	})
}

// ListForms returns every submitted form, newest first.
func ListForms(c *gin.Context) {
	var forms []models.ActivityForm
	if err := config.DB.Order("fecha_creacion DESC").Find(&forms).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Error al consultar formularios",
		})
		return
	}

	data := make([]map[string]interface{}, 0, len(forms))
	for i := range forms {
		data = append(data, forms[i].ToMap())
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

// GetForm returns one form by id.
func GetForm(c *gin.Context) {
	formID := c.Param("id")

	var form models.ActivityForm
	if err := config.DB.First(&form, "id = ?", formID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "Recurso no encontrado",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    form.ToMap(),
	})
}

// HealthCheck reports service liveness.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   apiVersion,
	})
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
