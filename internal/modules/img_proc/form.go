package img_proc

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

// FileField is the form field the backend reads uploaded images from.
const FileField = "file"

type formField struct {
	name  string
	value string
}

type formFile struct {
	field    string
	filename string
	content  []byte
}

// FormData is an ordered multipart payload. File contents are held in memory so
// the same form encodes identically every time it is sent.
type FormData struct {
	fields []formField
	files  []formFile
}

func NewFormData() *FormData {
	return &FormData{}
}

// NewImageForm builds the single-file form the upload and detect endpoints expect.
func NewImageForm(filename string, content []byte) *FormData {
	return NewFormData().AppendFileBytes(FileField, filename, content)
}

func (f *FormData) Append(name, value string) *FormData {
	f.fields = append(f.fields, formField{name: name, value: value})
	return f
}

func (f *FormData) AppendFileBytes(field, filename string, content []byte) *FormData {
	f.files = append(f.files, formFile{field: field, filename: filename, content: content})
	return f
}

func (f *FormData) AppendFile(field, filename string, r io.Reader) error {
	content, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read %s: %w", filename, err)
	}
	f.AppendFileBytes(field, filename, content)
	return nil
}

// File returns the content of the first file under field.
func (f *FormData) File(field string) (filename string, content []byte, ok bool) {
	for _, file := range f.files {
		if file.field == field {
			return file.filename, file.content, true
		}
	}
	return "", nil, false
}

func (f *FormData) Value(name string) (string, bool) {
	for _, field := range f.fields {
		if field.name == name {
			return field.value, true
		}
	}
	return "", false
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Encode implements http_client.Encoder. A nil form encodes as an empty multipart body.
func (f *FormData) Encode() (io.Reader, string, error) {
	if f == nil {
		f = &FormData{}
	}
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for _, field := range f.fields {
		if err := w.WriteField(field.name, field.value); err != nil {
			return nil, "", err
		}
	}
	for _, file := range f.files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(file.field), quoteEscaper.Replace(file.filename)))
		// the backend rejects parts whose content type is not image/*
		h.Set("Content-Type", http.DetectContentType(file.content))
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err = part.Write(file.content); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}
