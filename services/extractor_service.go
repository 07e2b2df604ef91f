package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"

	"github/itish2003/portfolio-rag/models"
)

// SetPDFLicenseKey configures UniPDF. Without a key PDF extraction fails.
func SetPDFLicenseKey(key string) error {
	if key == "" {
		return nil
	}
	if err := license.SetMeteredKey(key); err != nil {
		return fmt.Errorf("failed to set unidoc license key: %w", err)
	}
	return nil
}

// LoadDocuments reads a corpus from path. A .json file holds an array of
// documents; a .pdf, .txt or .md file becomes one document; a directory is
// walked for all of those, in lexical order.
func LoadDocuments(path string) ([]models.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return loadFile(path)
	}

	var files []string
	err = filepath.Walk(path, func(p string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !fi.IsDir() && isSupportedFile(p) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking the path %s: %w", path, err)
	}
	sort.Strings(files)

	var docs []models.Document
	for _, f := range files {
		loaded, err := loadFile(f)
		if err != nil {
			return nil, err
		}
		docs = append(docs, loaded...)
	}
	return docs, nil
}

func loadFile(path string) ([]models.Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		return loadJSONDocuments(path)
	case ".txt", ".md", ".pdf":
		text, err := ExtractTextFromFile(path)
		if err != nil {
			return nil, err
		}
		return []models.Document{documentFromFile(path, text)}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported file type: %s", ErrInvalidInput, ext)
	}
}

func loadJSONDocuments(path string) ([]models.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var docs []models.Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalidInput, path, err)
	}
	return docs, nil
}

func documentFromFile(path, text string) models.Document {
	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	url := path
	if abs, err := filepath.Abs(path); err == nil {
		url = "file://" + filepath.ToSlash(abs)
	}
	return models.Document{
		URL:      url,
		Title:    title,
		FullText: strings.TrimSpace(text),
	}
}

func isSupportedFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".txt", ".md", ".pdf":
		return true
	default:
		return false
	}
}

// ExtractTextFromFile reads a file and returns its text content.
// It automatically handles different file types.
func ExtractTextFromFile(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".txt", ".md":
		content, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(content), nil
	case ".pdf":
		return extractTextFromPDF(path)
	default:
		return "", fmt.Errorf("%w: unsupported file type: %s", ErrInvalidInput, ext)
	}
}

// extractTextFromPDF uses UniPDF to get all text from a PDF file.
func extractTextFromPDF(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	pdfReader, err := model.NewPdfReader(f)
	if err != nil {
		return "", err
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for i := 1; i <= numPages; i++ {
		page, err := pdfReader.GetPage(i)
		if err != nil {
			return "", err
		}

		ex, err := extractor.New(page)
		if err != nil {
			return "", err
		}

		text, err := ex.ExtractText()
		if err != nil {
			return "", err
		}
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}

	return sb.String(), nil
}
