package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"

	"github.com/naveenspark/folio/pkg/domain"
)

// UploadFile is one binary part of a portfolio submission.
type UploadFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// PortfolioForm is the multipart body of a portfolio create or update.
// Files are sent under the shared "images" field in slice order, which is
// the order ImagesMeta file indexes refer to.
type PortfolioForm struct {
	Title         string
	Slug          string
	PublisherName string
	ProjectLink   string
	ProjectType   string
	TechCategory  []string
	Descriptions  []string
	ImagesMeta    []domain.ImageMeta
	Files         []UploadFile
}

// UploadSize is the total byte size of the files.
func (f *PortfolioForm) UploadSize() int {
	n := 0
	for _, file := range f.Files {
		n += len(file.Data)
	}
	return n
}

func (f *PortfolioForm) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	techCategory, err := jsonArray(f.TechCategory)
	if err != nil {
		return nil, "", fmt.Errorf("tech_category: %w", err)
	}
	descriptions, err := jsonArray(f.Descriptions)
	if err != nil {
		return nil, "", fmt.Errorf("descriptions: %w", err)
	}
	meta, err := json.Marshal(f.ImagesMeta)
	if err != nil {
		return nil, "", fmt.Errorf("images_meta: %w", err)
	}
	if f.ImagesMeta == nil {
		meta = []byte("[]")
	}

	fields := []struct{ name, value string }{
		{"title", f.Title},
		{"slug", f.Slug},
		{"publisher_name", f.PublisherName},
		{"project_link", f.ProjectLink},
		{"tech_category", techCategory},
		{"project_type", f.ProjectType},
		{"descriptions", descriptions},
		{"images_meta", string(meta)},
	}
	for _, fld := range fields {
		if err := w.WriteField(fld.name, fld.value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", fld.name, err)
		}
	}

	for _, file := range f.Files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename=%q`, file.Name))
		ct := file.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("create part %s: %w", file.Name, err)
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, "", fmt.Errorf("write part %s: %w", file.Name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close writer: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

// jsonArray encodes s as a JSON array, never "null".
func jsonArray(s []string) (string, error) {
	if s == nil {
		s = []string{}
	}
	data, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
