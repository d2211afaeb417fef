// Package upload models files received from the operator before they are
// attached to a draft, and validates them at intake.
package upload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/fkhayef/ensamble/internal/apperr"
)

const (
	// MaxScriptSize is the largest accepted script file, 10 MiB
	MaxScriptSize int64 = 10 * 1024 * 1024
	// MaxImageSize is the largest accepted company image
	MaxImageSize int64 = 10 * 1024 * 1024
)

const (
	TypePDF  = "application/pdf"
	TypeDOC  = "application/msword"
	TypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var scriptExtensions = map[string]string{
	TypePDF:  "pdf",
	TypeDOC:  "doc",
	TypeDOCX: "docx",
}

// File is an uploaded file held in memory
type File struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	data        []byte
}

// NewFile creates a file from raw bytes. An empty or generic declared type
// is replaced by the type sniffed from the content.
func NewFile(name, contentType string, data []byte) *File {
	return &File{
		Name:        name,
		ContentType: detectType(contentType, data),
		Size:        int64(len(data)),
		data:        data,
	}
}

// FromMultipart reads a multipart file into memory, refusing to read more
// than limit bytes. A file over the limit keeps its declared size so intake
// validation can reject it.
func FromMultipart(fh *multipart.FileHeader, limit int64) (*File, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	if limit > 0 && fh.Size > limit {
		head := make([]byte, sniffLen)
		n, err := io.ReadFull(src, head)
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to read upload: %w", err)
		}
		return &File{Name: fh.Filename, ContentType: detectType(fh.Header.Get("Content-Type"), head[:n]), Size: fh.Size}, nil
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return NewFile(fh.Filename, fh.Header.Get("Content-Type"), data), nil
}

// FormFile reads the multipart field from r. The request body is capped a
// little above limit; anything larger is FileTooLarge.
func FormFile(w http.ResponseWriter, r *http.Request, field string, limit int64) (*File, error) {
	r.Body = http.MaxBytesReader(w, r.Body, limit+formOverhead)

	if err := r.ParseMultipartForm(formMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperr.Wrap(apperr.FileTooLarge, "File too large", tooLargeMessage(limit), err)
		}
		return nil, apperr.Wrap(apperr.InvalidInput, "Invalid upload", "Expected a multipart form.", err)
	}

	_, fh, err := r.FormFile(field)
	if err != nil {
		return nil, apperr.Wrap(apperr.InvalidInput, "Invalid upload", fmt.Sprintf("No %s file provided.", field), err)
	}
	return FromMultipart(fh, limit)
}

const (
	formOverhead int64 = 1 << 20
	formMemory   int64 = 32 << 20

	// sniffLen matches what mimetype inspects by default
	sniffLen = 3072
)

func detectType(declared string, sample []byte) string {
	if declared == "" || declared == "application/octet-stream" {
		declared = mimetype.Detect(sample).String()
	}
	if i := strings.IndexByte(declared, ';'); i >= 0 {
		declared = strings.TrimSpace(declared[:i])
	}
	return declared
}

func tooLargeMessage(limit int64) string {
	return fmt.Sprintf("The file exceeds %dMB.", limit>>20)
}

// Reader returns a reader over the file contents
func (f *File) Reader() io.Reader {
	return bytes.NewReader(f.data)
}

// Extension returns the lower-cased extension of the file name, without dot
func (f *File) Extension() string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(f.Name)), ".")
}

// TypeExtension returns the file name extension, falling back to the usual
// extension of the content type when the name has none
func (f *File) TypeExtension() string {
	if ext := f.Extension(); ext != "" {
		return ext
	}
	if mt := mimetype.Lookup(f.ContentType); mt != nil {
		return strings.TrimPrefix(mt.Extension(), ".")
	}
	return "bin"
}

// ScriptExtension returns the extension matching an accepted script type
func (f *File) ScriptExtension() string {
	if ext, ok := scriptExtensions[f.ContentType]; ok {
		return ext
	}
	return f.Extension()
}

// CheckScriptSize fails with FileTooLarge when f exceeds MaxScriptSize
func CheckScriptSize(f *File) error {
	if f.Size > MaxScriptSize {
		return apperr.New(apperr.FileTooLarge, "File too large", tooLargeMessage(MaxScriptSize))
	}
	return nil
}

// ValidateScript checks a script file at intake: PDF or Word only, at most
// MaxScriptSize bytes
func ValidateScript(f *File) error {
	if _, ok := scriptExtensions[f.ContentType]; !ok {
		return apperr.New(apperr.UnsupportedFileType, "Unsupported file", "Only PDF or Word files are allowed.")
	}
	return CheckScriptSize(f)
}

// ValidateImage checks a company image at intake
func ValidateImage(f *File) error {
	if !strings.HasPrefix(f.ContentType, "image/") {
		return apperr.New(apperr.UnsupportedFileType, "Unsupported file", "Only image files are allowed.")
	}
	if f.Size > MaxImageSize {
		return apperr.New(apperr.FileTooLarge, "File too large", tooLargeMessage(MaxImageSize))
	}
	return nil
}
