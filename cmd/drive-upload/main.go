package main

import (
	"context"
	"flag"
	"log"
	"mime"
	"os"
	"path/filepath"

	"activity-intake-api/services"

	"github.com/joho/godotenv"
)

// Operator tool: push a local file into a Drive folder through the Apps
// Script bridge. Handy for re-attaching documents to a submission folder
// after a partial failure.
func main() {
	log.Println("🗂  Starting drive upload...")

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, falling back to environment variables")
	}

	filePath := flag.String("file", "", "path of the local file to upload")
	folderID := flag.String("folder", "", "destination Drive folder id (optional)")
	flag.Parse()

	if *filePath == "" {
		log.Fatal("usage: drive-upload -file <path> [-folder <drive folder id>]")
	}

	content, err := os.ReadFile(*filePath)
	if err != nil {
		log.Fatalf("❌ failed to read %s: %v", *filePath, err)
	}

	fileName := filepath.Base(*filePath)
	mimeType := mime.TypeByExtension(filepath.Ext(fileName))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	client := services.NewAppsScriptClient(nil)
	fileID, err := client.UploadFile(context.Background(), content, fileName, mimeType, *folderID)
	if err != nil {
		log.Fatalf("❌ upload failed: %v", err)
	}

	log.Printf("✅ Uploaded %s as Drive file %s", fileName, fileID)
}
