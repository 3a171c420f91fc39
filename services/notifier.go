package services

import (
	"context"
	"fmt"
	"html/template"
	"log"
	"os"
	"strings"

	"activity-intake-api/config"
)

const notificationSenderName = "Sistema de Formularios UNCOMA"

// summaryRuneLimit bounds the free-text sections quoted in the email body.
const summaryRuneLimit = 200

// EmailNotifier delivers the submission notification to the administrative
// mailbox, attaching the generated document converted to PDF.
type EmailNotifier struct {
	script     *AppsScriptClient
	secretaria string
}

// NewEmailNotifier constructs a notifier from the environment. A nil script
// client gets the default one.
func NewEmailNotifier(script *AppsScriptClient) *EmailNotifier {
	if script == nil {
		script = NewAppsScriptClient(nil)
	}
	return &EmailNotifier{
		script:     script,
		secretaria: os.Getenv("SECRETARIA_EMAIL"),
	}
}

// SendSubmissionEmail sends the notification with the referenced document
// attached as PDF. Failures never propagate past this boundary: they are
// logged, a best-effort SMTP fallback without the attachment is attempted,
// and false is returned.
func (n *EmailNotifier) SendSubmissionEmail(ctx context.Context, sub *Submission, documentID string) bool {
	if n.secretaria == "" {
		log.Println("notification email skipped: SECRETARIA_EMAIL is empty")
		return false
	}

	subject := fmt.Sprintf("Nuevo Formulario de Actividad - %s (PDF)", sub.TituloActividad)
	htmlBody := buildSubmissionEmailHTML(sub)

	err := n.script.SendEmail(ctx, EmailMessage{
		To:         n.secretaria,
		Subject:    subject,
		HTMLBody:   htmlBody,
		SenderName: notificationSenderName,
		Attachments: []EmailAttachment{
			{FileID: documentID, ConvertTo: "pdf"},
		},
	})
	if err == nil {
		return true
	}

	log.Printf("notification email send failed (form=%q to=%s): %v", sub.TituloActividad, n.secretaria, err)

	// Fallback channel: plain SMTP summary pointing at the document export
	// link. The overall outcome stays false either way.
	fallback := htmlBody + fmt.Sprintf(
		`<p><em>No se pudo adjuntar el documento; disponible en <a href="%s">%s</a></em></p>`,
		PDFDownloadURL(documentID), PDFDownloadURL(documentID))
	if smtpErr := config.SendMail([]string{n.secretaria}, subject, fallback); smtpErr != nil {
		log.Printf("fallback smtp notification also failed: %v", smtpErr)
	}

	return false
}

// buildSubmissionEmailHTML renders the administrative summary of one
// submission. All user-provided values are escaped.
func buildSubmissionEmailHTML(sub *Submission) string {
	var team strings.Builder
	if len(sub.Equipo) > 0 {
		team.WriteString("<ul>")
		for _, member := range sub.Equipo {
			team.WriteString(fmt.Sprintf("<li><strong>%s</strong> - DNI: %s - Email: %s</li>",
				template.HTMLEscapeString(member.FullName),
				template.HTMLEscapeString(member.DNI),
				template.HTMLEscapeString(member.Email)))
		}
		team.WriteString("</ul>")
	}

	field := func(label, value string) string {
		return fmt.Sprintf(`<div class="field"><span class="field-label">%s:</span> <span class="field-value">%s</span></div>`,
			label, template.HTMLEscapeString(value))
	}

	return fmt.Sprintf(`<html>
<head>
<style>
body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
.header { background-color: #f4f4f4; padding: 20px; text-align: center; }
.content { padding: 20px; }
.field { margin-bottom: 15px; }
.field-label { font-weight: bold; color: #2c3e50; }
.section { background-color: #f9f9f9; padding: 15px; margin: 10px 0; border-radius: 5px; }
</style>
</head>
<body>
<div class="header">
<h2>Nuevo Formulario de Actividad Educativa</h2>
<p>Se ha recibido un nuevo formulario de actividad</p>
</div>
<div class="content">
<div class="section">%s%s</div>
<div class="section"><div class="field"><span class="field-label">Equipo:</span><div class="field-value">%s</div></div></div>
<div class="section">%s%s%s</div>
<div class="section">%s%s%s</div>
<div class="section">
<p><strong>Nota:</strong> El formulario completo se adjunta como archivo PDF.</p>
<p><em>Este email fue generado automáticamente por el Sistema de Formularios UNCOMA.</em></p>
</div>
</div>
</body>
</html>`,
		field("Título de la Actividad", sub.TituloActividad),
		field("Docente Responsable", sub.DocenteResponsable),
		team.String(),
		field("Fundamentación", truncateSummary(sub.Fundamentacion)),
		field("Objetivos", truncateSummary(sub.Objetivos)),
		field("Metodología", truncateSummary(sub.Metodologia)),
		field("Grados", sub.Grados),
		field("Materiales/Presupuesto", sub.MaterialesPresupuesto),
		field("Períodos Propuestos", sub.Meses),
	)
}

// truncateSummary shortens long free text for the email preview.
func truncateSummary(value string) string {
	runes := []rune(value)
	if len(runes) <= summaryRuneLimit {
		return value
	}
	return string(runes[:summaryRuneLimit]) + "..."
}
