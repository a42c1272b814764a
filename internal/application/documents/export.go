package documents

import (
	"context"
	"fmt"
	"time"

	"github.com/tienda-pos/backoffice-api/internal/application/dto"
	"github.com/tienda-pos/backoffice-api/internal/domain"
	"github.com/tienda-pos/backoffice-api/internal/domain/entity"
	"github.com/tienda-pos/backoffice-api/internal/domain/repository"
)

// Tipos MIME de los archivos generados.
const (
	ContentTypePDF  = "application/pdf"
	ContentTypeXML  = "application/xml"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExportUseCase genera PDF, XML y XLSX de documentos.
type ExportUseCase struct {
	docRepo repository.DocumentRepository
	pdf     PDFRenderer
	xml     XMLRenderer
	xlsx    SpreadsheetRenderer
	now     func() time.Time
}

// NewExportUseCase construye el caso de uso de exportación.
func NewExportUseCase(docRepo repository.DocumentRepository, pdf PDFRenderer, xml XMLRenderer, xlsx SpreadsheetRenderer) *ExportUseCase {
	return &ExportUseCase{docRepo: docRepo, pdf: pdf, xml: xml, xlsx: xlsx, now: time.Now}
}

// RenderPDF genera el PDF del documento.
func (uc *ExportUseCase) RenderPDF(ctx context.Context, id string) (*dto.RenderedFile, error) {
	doc, err := loadDocument(ctx, uc.docRepo, id)
	if err != nil {
		return nil, err
	}
	content, err := uc.pdf.Render(doc)
	if err != nil {
		return nil, fmt.Errorf("render pdf %s: %w", doc.DocNumber, err)
	}
	return &dto.RenderedFile{
		Filename:    doc.DocNumber + ".pdf",
		ContentType: ContentTypePDF,
		Content:     content,
	}, nil
}

// RenderXML genera el XML del documento junto con su huella canónica.
func (uc *ExportUseCase) RenderXML(ctx context.Context, id string) (*dto.RenderedFile, error) {
	doc, err := loadDocument(ctx, uc.docRepo, id)
	if err != nil {
		return nil, err
	}
	content, fingerprint, err := uc.xml.Render(doc)
	if err != nil {
		return nil, fmt.Errorf("render xml %s: %w", doc.DocNumber, err)
	}
	return &dto.RenderedFile{
		Filename:    doc.DocNumber + ".xml",
		ContentType: ContentTypeXML,
		Content:     content,
		Fingerprint: fingerprint,
	}, nil
}

// ExportSpreadsheet genera el XLSX del listado filtrado.
func (uc *ExportUseCase) ExportSpreadsheet(ctx context.Context, in dto.DocumentFilterRequest) (*dto.RenderedFile, error) {
	docs, err := uc.docRepo.List(ctx, toFilter(in))
	if err != nil {
		return nil, err
	}
	content, err := uc.xlsx.Render(docs)
	if err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	return &dto.RenderedFile{
		Filename:    fmt.Sprintf("documents-%s.xlsx", uc.now().Format("20060102")),
		ContentType: ContentTypeXLSX,
		Content:     content,
	}, nil
}

func loadDocument(ctx context.Context, repo repository.DocumentRepository, id string) (*entity.Document, error) {
	if !validID(id) {
		return nil, domain.ErrNotFound
	}
	doc, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}
