package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"activity-intake-api/models"
)

const (
	appsScriptTimeout = 30 * time.Second

	actionCreateFolders     = "createFolders"
	actionGenerateDocuments = "generateDocuments"
	actionUploadFiles       = "uploadFiles"
	actionSendEmail         = "sendEmail"

	// Value shipped in the .env example; treated as not configured.
	scriptURLPlaceholder = "TU_SCRIPT_ID"
)

// ErrScriptNotConfigured marks missing or placeholder Apps Script settings.
var ErrScriptNotConfigured = errors.New("apps script not configured")

// AppsScriptClient talks to the Google Apps Script bridge that owns Drive
// folders, document generation and outgoing mail.
type AppsScriptClient struct {
	scriptURL    string
	token        string
	rootFolderID string
	client       *http.Client
}

// NewAppsScriptClient constructs a client from the environment. A nil
// http.Client gets the default bounded-timeout client.
func NewAppsScriptClient(client *http.Client) *AppsScriptClient {
	if client == nil {
		client = &http.Client{Timeout: appsScriptTimeout}
	}
	return &AppsScriptClient{
		scriptURL:    os.Getenv("APPS_SCRIPT_URL"),
		token:        os.Getenv("APPS_SCRIPT_TOKEN"),
		rootFolderID: os.Getenv("DRIVE_ROOT_FOLDER_ID"),
		client:       client,
	}
}

type scriptResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// makeRequest posts {token, action, ...payload} to the script URL and
// decodes the envelope. A timeout surfaces as a plain transport error.
func (c *AppsScriptClient) makeRequest(ctx context.Context, action string, payload map[string]interface{}) (*scriptResponse, error) {
	body := map[string]interface{}{
		"token":  c.token,
		"action": action,
	}
	for key, value := range payload {
		body[key] = value
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", action, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.scriptURL, bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("apps script request (%s): %w", action, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		preview, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("apps script error: status %d body %s", resp.StatusCode, string(preview))
	}

	var decoded scriptResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", action, err)
	}

	return &decoded, nil
}

// checkConfig validates the settings needed for every Drive call. Missing or
// example values fail loudly at the point of first use.
func (c *AppsScriptClient) checkConfig() error {
	if c.scriptURL == "" {
		return fmt.Errorf("%w: APPS_SCRIPT_URL is empty", ErrScriptNotConfigured)
	}
	if strings.Contains(c.scriptURL, scriptURLPlaceholder) {
		return fmt.Errorf("%w: APPS_SCRIPT_URL still holds the example value", ErrScriptNotConfigured)
	}
	if c.token == "" {
		return fmt.Errorf("%w: APPS_SCRIPT_TOKEN is empty", ErrScriptNotConfigured)
	}
	if c.rootFolderID == "" {
		return fmt.Errorf("%w: DRIVE_ROOT_FOLDER_ID is empty", ErrScriptNotConfigured)
	}
	return nil
}

// CreateFolder creates a folder under the configured root and returns its
// id. Failures are classified by message content so the operator can tell an
// authentication problem from a permission one.
func (c *AppsScriptClient) CreateFolder(ctx context.Context, folderName string) (string, error) {
	if err := c.checkConfig(); err != nil {
		return "", err
	}

	payload := map[string]interface{}{
		"rootFolderId": c.rootFolderID,
		"folders":      []map[string]string{{"name": folderName}},
	}

	result, err := c.makeRequest(ctx, actionCreateFolders, payload)
	if err != nil {
		return "", err
	}

	if !result.Success {
		msg := result.Message
		if msg == "" {
			msg = "unknown error"
		}
		lowered := strings.ToLower(msg)
		switch {
		case strings.Contains(lowered, "token"):
			return "", fmt.Errorf("apps script authentication error: %s (check APPS_SCRIPT_TOKEN)", msg)
		case strings.Contains(lowered, "folder"):
			return "", fmt.Errorf("drive folder error: %s (check DRIVE_ROOT_FOLDER_ID and permissions)", msg)
		default:
			return "", fmt.Errorf("apps script error: %s", msg)
		}
	}

	var data struct {
		CreatedFolders []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"createdFolders"`
	}
	if err := json.Unmarshal(result.Data, &data); err != nil {
		return "", fmt.Errorf("decode createFolders data: %w", err)
	}
	if len(data.CreatedFolders) == 0 || data.CreatedFolders[0].ID == "" {
		return "", errors.New("apps script returned no folder id")
	}

	return data.CreatedFolders[0].ID, nil
}

// GenerateDocumentInput describes one template-based document request.
type GenerateDocumentInput struct {
	TemplateID string
	FileName   string
	Fields     map[string]string
	FolderID   string
	Signature  *string
	Equipo     []models.TeamMember
}

// GeneratedDocument is the provider's handle on a rendered document.
type GeneratedDocument struct {
	DocumentID  string
	DocumentURL string
}

// GenerateDocument renders a document from the template. A provider-reported
// failure returns (nil, nil): the caller treats that as a soft failure
// rather than a transport problem.
func (c *AppsScriptClient) GenerateDocument(ctx context.Context, input GenerateDocumentInput) (*GeneratedDocument, error) {
	doc := map[string]interface{}{
		"templateId": input.TemplateID,
		"fileName":   input.FileName,
		"fields":     input.Fields,
	}
	if input.FolderID != "" {
		doc["folderId"] = input.FolderID
	}
	if input.Signature != nil {
		doc["signatureData"] = *input.Signature
	}
	if len(input.Equipo) > 0 {
		doc["equipoData"] = input.Equipo
	}

	payload := map[string]interface{}{
		"documents": []map[string]interface{}{doc},
	}

	result, err := c.makeRequest(ctx, actionGenerateDocuments, payload)
	if err != nil {
		return nil, err
	}
	if !result.Success {
		log.Printf("apps script generateDocuments reported failure: %s", result.Message)
		return nil, nil
	}

	var data struct {
		Documents []struct {
			Success     bool   `json:"success"`
			DocumentID  string `json:"documentId"`
			DocumentURL string `json:"documentUrl"`
		} `json:"documents"`
	}
	if err := json.Unmarshal(result.Data, &data); err != nil {
		return nil, fmt.Errorf("decode generateDocuments data: %w", err)
	}
	if len(data.Documents) == 0 || !data.Documents[0].Success {
		return nil, nil
	}

	return &GeneratedDocument{
		DocumentID:  data.Documents[0].DocumentID,
		DocumentURL: data.Documents[0].DocumentURL,
	}, nil
}

// EmailAttachment references a Drive file to attach, optionally converted
// by the provider before sending.
type EmailAttachment struct {
	FileID    string `json:"fileId"`
	ConvertTo string `json:"convertTo,omitempty"`
}

// EmailMessage is the sendEmail action payload.
type EmailMessage struct {
	To          string
	Subject     string
	HTMLBody    string
	SenderName  string
	Attachments []EmailAttachment
}

// SendEmail asks the provider to deliver the message.
func (c *AppsScriptClient) SendEmail(ctx context.Context, msg EmailMessage) error {
	payload := map[string]interface{}{
		"to":       msg.To,
		"subject":  msg.Subject,
		"htmlBody": msg.HTMLBody,
	}
	if msg.SenderName != "" {
		payload["senderName"] = msg.SenderName
	}
	if len(msg.Attachments) > 0 {
		payload["attachments"] = msg.Attachments
	}

	result, err := c.makeRequest(ctx, actionSendEmail, payload)
	if err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("apps script sendEmail failed: %s", result.Message)
	}
	return nil
}

// UploadFile stores raw content as a Drive file and returns the file id.
func (c *AppsScriptClient) UploadFile(ctx context.Context, content []byte, fileName, mimeType, folderID string) (string, error) {
	if err := c.checkConfig(); err != nil {
		return "", err
	}

	file := map[string]interface{}{
		"fileName":    fileName,
		"mimeType":    mimeType,
		"fileContent": base64.StdEncoding.EncodeToString(content),
	}
	if folderID != "" {
		file["folderId"] = folderID
	}

	payload := map[string]interface{}{
		"files": []map[string]interface{}{file},
	}

	result, err := c.makeRequest(ctx, actionUploadFiles, payload)
	if err != nil {
		return "", err
	}
	if !result.Success {
		return "", fmt.Errorf("apps script uploadFiles failed: %s", result.Message)
	}

	var data struct {
		Results []struct {
			Success bool   `json:"success"`
			FileID  string `json:"fileId"`
		} `json:"results"`
	}
	if err := json.Unmarshal(result.Data, &data); err != nil {
		return "", fmt.Errorf("decode uploadFiles data: %w", err)
	}
	if len(data.Results) == 0 || !data.Results[0].Success {
		return "", errors.New("apps script reported upload failure")
	}

	return data.Results[0].FileID, nil
}

// PDFDownloadURL returns the provider's export link for a generated document.
func PDFDownloadURL(documentID string) string {
	return fmt.Sprintf("https://docs.google.com/document/d/%s/export?format=pdf", documentID)
}
