package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/gorm"

	"activity-intake-api/config"
	"activity-intake-api/models"
	"activity-intake-api/utils"
)

// DocumentProvider is the slice of the Apps Script client the processor
// depends on.
type DocumentProvider interface {
	CreateFolder(ctx context.Context, folderName string) (string, error)
	GenerateDocument(ctx context.Context, input GenerateDocumentInput) (*GeneratedDocument, error)
}

// Notifier delivers the administrative notification for one submission.
type Notifier interface {
	SendSubmissionEmail(ctx context.Context, sub *Submission, documentID string) bool
}

// ProcessResult is the structured outcome returned to the HTTP layer.
type ProcessResult struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	FormID         uint   `json:"formulario_id,omitempty"`
	DocumentID     string `json:"document_id,omitempty"`
	DocumentURL    string `json:"document_url,omitempty"`
	PDFDownloadURL string `json:"pdf_download_url,omitempty"`
	FolderID       string `json:"folder_id,omitempty"`
	EmailSent      bool   `json:"email_sent"`
}

// FormProcessor drives one submission from raw form data to a terminal
// record status. External calls are attempted once; there is no retry queue.
type FormProcessor struct {
	db         *gorm.DB
	drive      DocumentProvider
	notifier   Notifier
	templateID string
	now        func() time.Time
}

// NewFormProcessor constructs a FormProcessor. Nil arguments fall back to
// the shared database handle and the environment-configured collaborators.
func NewFormProcessor(db *gorm.DB, drive DocumentProvider, notifier Notifier) *FormProcessor {
	if db == nil {
		db = config.DB
	}
	if drive == nil {
		drive = NewAppsScriptClient(nil)
	}
	if notifier == nil {
		notifier = NewEmailNotifier(nil)
	}
	return &FormProcessor{
		db:         db,
		drive:      drive,
		notifier:   notifier,
		templateID: os.Getenv("TEMPLATE_DOC_ID"),
		now:        time.Now,
	}
}

// processOutcome is the internal result of the external-call sequence.
type processOutcome struct {
	success        bool
	message        string
	documentID     string
	documentURL    string
	pdfDownloadURL string
	folderID       string
	emailSent      bool
}

// ProcessSubmission normalizes, persists and processes one submission.
// Business failures (validation, provider errors) come back as a
// non-success ProcessResult; only unexpected internal failures return an
// error.
func (p *FormProcessor) ProcessSubmission(ctx context.Context, raw RawSubmission) (*ProcessResult, error) {
	sub, err := NormalizeSubmission(raw)
	if err != nil {
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			log.Printf("submission rejected: %v", validationErr)
			return &ProcessResult{
				Success: false,
				Message: "Faltan campos obligatorios",
			}, nil
		}
		return nil, err
	}

	form := buildForm(sub)
	if err := p.db.WithContext(ctx).Create(form).Error; err != nil {
		return nil, fmt.Errorf("failed to persist submission: %w", err)
	}

	outcome := p.process(ctx, sub)

	if !outcome.success {
		updates := map[string]interface{}{
			"estado":             models.StatusError,
			"fecha_modificacion": p.now(),
		}
		if err := p.db.WithContext(ctx).Model(form).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to mark submission %d as error: %w", form.ID, err)
		}
		return &ProcessResult{
			Success: false,
			Message: fmt.Sprintf("Error al procesar: %s", outcome.message),
			FormID:  form.ID,
		}, nil
	}

	updates := map[string]interface{}{
		"estado":             models.StatusProcessed,
		"documento_id":       outcome.documentID,
		"carpeta_id":         outcome.folderID,
		"fecha_modificacion": p.now(),
	}
	if err := p.db.WithContext(ctx).Model(form).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to mark submission %d as processed: %w", form.ID, err)
	}

	message := "Formulario procesado correctamente. Documento enviado como PDF por email."
	if !outcome.emailSent {
		message = "Formulario procesado correctamente, pero falló el envío del email de notificación."
	}

	return &ProcessResult{
		Success:        true,
		Message:        message,
		FormID:         form.ID,
		DocumentID:     outcome.documentID,
		DocumentURL:    outcome.documentURL,
		PDFDownloadURL: outcome.pdfDownloadURL,
		FolderID:       outcome.folderID,
		EmailSent:      outcome.emailSent,
	}, nil
}

// process runs the folder/document/email sequence. Every failure path
// returns a non-success outcome; the caller owns the record-state update.
func (p *FormProcessor) process(ctx context.Context, sub *Submission) processOutcome {
	nameToken := utils.NameToken(sub.DocenteResponsable)
	folderName := utils.FolderName(nameToken, p.now())
	log.Printf("creating drive folder %q for submission by %q", folderName, sub.DocenteResponsable)

	folderID, err := p.drive.CreateFolder(ctx, folderName)
	if err != nil {
		log.Printf("folder creation failed: %v", err)
		return processOutcome{message: fmt.Sprintf("Error al crear carpeta en Google Drive: %v", err)}
	}
	if folderID == "" {
		return processOutcome{message: "No se pudo crear la carpeta en Google Drive"}
	}

	if p.templateID == "" {
		return processOutcome{
			folderID: folderID,
			message:  "TEMPLATE_DOC_ID no configurado; no se puede generar el documento",
		}
	}

	fileName := utils.FileName(nameToken, p.now(), "docx")
	doc, err := p.drive.GenerateDocument(ctx, GenerateDocumentInput{
		TemplateID: p.templateID,
		FileName:   fileName,
		Fields:     TemplateFields(sub, p.now()),
		FolderID:   folderID,
		Signature:  nil,
		Equipo:     sub.Equipo,
	})
	if err != nil {
		log.Printf("document generation failed: %v", err)
		return processOutcome{
			folderID: folderID,
			message:  fmt.Sprintf("Error en el procesamiento: %v", err),
		}
	}
	if doc == nil {
		return processOutcome{
			folderID: folderID,
			message:  "No se pudo generar documento desde template de Google Docs",
		}
	}

	emailSent := p.notifier.SendSubmissionEmail(ctx, sub, doc.DocumentID)
	if !emailSent {
		log.Printf("document %s generated but the notification email failed", doc.DocumentID)
	}

	return processOutcome{
		success:        true,
		documentID:     doc.DocumentID,
		documentURL:    doc.DocumentURL,
		pdfDownloadURL: PDFDownloadURL(doc.DocumentID),
		folderID:       folderID,
		emailSent:      emailSent,
	}
}

// buildForm maps a normalized submission onto a fresh pendiente record.
func buildForm(sub *Submission) *models.ActivityForm {
	form := &models.ActivityForm{
		TituloActividad:       sub.TituloActividad,
		DocenteResponsable:    sub.DocenteResponsable,
		EmailResponsable:      sub.EmailResponsable,
		DNIResponsable:        sub.DNIResponsable,
		Departamento:          sub.Departamento,
		Fundamentacion:        sub.Fundamentacion,
		Objetivos:             sub.Objetivos,
		Metodologia:           sub.Metodologia,
		Grados:                sub.Grados,
		MaterialesPresupuesto: sub.MaterialesPresupuesto,
		Meses:                 sub.Meses,
		Estado:                models.StatusPending,
	}
	form.SetEquipo(sub.Equipo)
	form.SetPeriodos(sub.Periodos)
	return form
}
