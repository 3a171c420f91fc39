package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestScriptClient(t *testing.T, handler http.HandlerFunc) (*AppsScriptClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := &AppsScriptClient{
		scriptURL:    server.URL,
		token:        "test-token",
		rootFolderID: "root-folder",
		client:       server.Client(),
	}
	return client, server
}

func decodeRequest(t *testing.T, r *http.Request) map[string]interface{} {
	t.Helper()
	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode request payload: %v", err)
	}
	return payload
}

func TestCreateFolderSuccess(t *testing.T) {
	client, _ := newTestScriptClient(t, func(w http.ResponseWriter, r *http.Request) {
		payload := decodeRequest(t, r)
		if payload["token"] != "test-token" {
			t.Errorf("missing shared token in payload: %v", payload["token"])
		}
		if payload["action"] != "createFolders" {
			t.Errorf("unexpected action: %v", payload["action"])
		}
		if payload["rootFolderId"] != "root-folder" {
			t.Errorf("unexpected root folder: %v", payload["rootFolderId"])
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"createdFolders": []map[string]string{{"id": "folder-1", "name": "García_20250315"}},
			},
		})
	})

	folderID, err := client.CreateFolder(context.Background(), "García_20250315")
	if err != nil {
		t.Fatalf("CreateFolder returned error: %v", err)
	}
	if folderID != "folder-1" {
		t.Fatalf("unexpected folder id: %s", folderID)
	}
}

func TestCreateFolderClassifiesErrors(t *testing.T) {
	cases := []struct {
		message string
		want    string
	}{
		{"invalid token provided", "authentication"},
		{"folder not accessible", "folder"},
		{"quota exceeded", "apps script error"},
	}

	for _, tc := range cases {
		client, _ := newTestScriptClient(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": false,
				"message": tc.message,
			})
		})

		_, err := client.CreateFolder(context.Background(), "x")
		if err == nil {
			t.Fatalf("message %q: expected error", tc.message)
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("message %q: error %q does not mention %q", tc.message, err, tc.want)
		}
	}
}

func TestCreateFolderRejectsPlaceholderConfig(t *testing.T) {
	client := &AppsScriptClient{
		scriptURL:    "https://script.google.com/macros/s/TU_SCRIPT_ID/exec",
		token:        "t",
		rootFolderID: "root",
		client:       http.DefaultClient,
	}

	_, err := client.CreateFolder(context.Background(), "x")
	if !errors.Is(err, ErrScriptNotConfigured) {
		t.Fatalf("expected ErrScriptNotConfigured, got %v", err)
	}
}

func TestCreateFolderMissingConfig(t *testing.T) {
	client := &AppsScriptClient{client: http.DefaultClient}
	_, err := client.CreateFolder(context.Background(), "x")
	if !errors.Is(err, ErrScriptNotConfigured) {
		t.Fatalf("expected ErrScriptNotConfigured, got %v", err)
	}
}

func TestGenerateDocumentSuccess(t *testing.T) {
	client, _ := newTestScriptClient(t, func(w http.ResponseWriter, r *http.Request) {
		payload := decodeRequest(t, r)
		if payload["action"] != "generateDocuments" {
			t.Errorf("unexpected action: %v", payload["action"])
		}
		docs := payload["documents"].([]interface{})
		doc := docs[0].(map[string]interface{})
		if doc["templateId"] != "tpl-1" || doc["folderId"] != "folder-1" {
			t.Errorf("unexpected document request: %v", doc)
		}
		if _, hasSignature := doc["signatureData"]; hasSignature {
			t.Errorf("signature must be omitted when nil")
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"documents": []map[string]interface{}{{
					"success":     true,
					"documentId":  "doc-1",
					"documentUrl": "https://docs.google.com/document/d/doc-1",
				}},
			},
		})
	})

	doc, err := client.GenerateDocument(context.Background(), GenerateDocumentInput{
		TemplateID: "tpl-1",
		FileName:   "García_20250315_formulario.docx",
		Fields:     map[string]string{"TITULO_ACTIVIDAD": "Huerta escolar"},
		FolderID:   "folder-1",
	})
	if err != nil {
		t.Fatalf("GenerateDocument returned error: %v", err)
	}
	if doc == nil || doc.DocumentID != "doc-1" {
		t.Fatalf("unexpected document: %+v", doc)
	}
}

func TestGenerateDocumentProviderFailureIsSoft(t *testing.T) {
	client, _ := newTestScriptClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"message": "template not found",
		})
	})

	doc, err := client.GenerateDocument(context.Background(), GenerateDocumentInput{TemplateID: "tpl-1"})
	if err != nil {
		t.Fatalf("provider-reported failure must not be an error: %v", err)
	}
	if doc != nil {
		t.Fatalf("expected nil document, got %+v", doc)
	}
}

func TestGenerateDocumentTransportError(t *testing.T) {
	client, server := newTestScriptClient(t, func(w http.ResponseWriter, r *http.Request) {})
	server.Close()

	_, err := client.GenerateDocument(context.Background(), GenerateDocumentInput{TemplateID: "tpl-1"})
	if err == nil {
		t.Fatalf("expected transport error")
	}
}

func TestSendEmail(t *testing.T) {
	var got map[string]interface{}
	client, _ := newTestScriptClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = decodeRequest(t, r)
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	})

	err := client.SendEmail(context.Background(), EmailMessage{
		To:         "secretaria@uncoma.edu.ar",
		Subject:    "Nuevo Formulario",
		HTMLBody:   "<p>hola</p>",
		SenderName: "Sistema de Formularios UNCOMA",
		Attachments: []EmailAttachment{
			{FileID: "doc-1", ConvertTo: "pdf"},
		},
	})
	if err != nil {
		t.Fatalf("SendEmail returned error: %v", err)
	}

	if got["action"] != "sendEmail" || got["to"] != "secretaria@uncoma.edu.ar" {
		t.Fatalf("unexpected payload: %v", got)
	}
	attachments := got["attachments"].([]interface{})
	attachment := attachments[0].(map[string]interface{})
	if attachment["fileId"] != "doc-1" || attachment["convertTo"] != "pdf" {
		t.Fatalf("unexpected attachment: %v", attachment)
	}
}

func TestSendEmailProviderFailure(t *testing.T) {
	client, _ := newTestScriptClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"message": "recipient rejected",
		})
	})

	err := client.SendEmail(context.Background(), EmailMessage{To: "x@y.z"})
	if err == nil || !strings.Contains(err.Error(), "recipient rejected") {
		t.Fatalf("expected provider failure error, got %v", err)
	}
}

func TestUploadFileEncodesContent(t *testing.T) {
	client, _ := newTestScriptClient(t, func(w http.ResponseWriter, r *http.Request) {
		payload := decodeRequest(t, r)
		files := payload["files"].([]interface{})
		file := files[0].(map[string]interface{})
		if file["fileContent"] != "aG9sYQ==" { // base64("hola")
			t.Errorf("unexpected encoded content: %v", file["fileContent"])
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"results": []map[string]interface{}{{"success": true, "fileId": "file-1"}},
			},
		})
	})

	fileID, err := client.UploadFile(context.Background(), []byte("hola"), "nota.txt", "text/plain", "folder-1")
	if err != nil {
		t.Fatalf("UploadFile returned error: %v", err)
	}
	if fileID != "file-1" {
		t.Fatalf("unexpected file id: %s", fileID)
	}
}
