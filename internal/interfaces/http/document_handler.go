package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/tienda-pos/backoffice-api/internal/application/documents"
	"github.com/tienda-pos/backoffice-api/internal/application/dto"
)

// HeaderDocumentFingerprint huella SHA-256 del XML canónico.
const HeaderDocumentFingerprint = "X-Document-Fingerprint"

// DocumentHandler cotizaciones, notas de entrega y recibos.
type DocumentHandler struct {
	uc     *documents.UseCase
	export *documents.ExportUseCase
}

// NewDocumentHandler construye el handler.
func NewDocumentHandler(uc *documents.UseCase, export *documents.ExportUseCase) *DocumentHandler {
	return &DocumentHandler{uc: uc, export: export}
}

// List godoc
// @Summary      Listar documentos
// @Description  Ordenados por fecha de creación descendente.
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        type    query  string  false  "quotation | voi | receipt"
// @Param        status  query  string  false  "draft | confirmed | converted | cancelled"
// @Param        search  query  string  false  "Busca en número y nombre de cliente"
// @Success      200  {object}  dto.DocumentListEnvelope
// @Router       /api/documents [get]
func (h *DocumentHandler) List(c *fiber.Ctx) error {
	var q dto.DocumentFilterRequest
	if err := c.QueryParser(&q); err != nil {
		return fail(c, fiber.StatusBadRequest, CodeInvalidBody, "parámetros de consulta inválidos")
	}
	list, err := h.uc.List(c.UserContext(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.DocumentListEnvelope{Documents: list})
}

// Get godoc
// @Summary      Obtener documento
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del documento"
// @Success      200  {object}  dto.DocumentEnvelope
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/documents/{id} [get]
func (h *DocumentHandler) Get(c *fiber.Ctx) error {
	doc, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.DocumentEnvelope{Document: doc})
}

// Create godoc
// @Summary      Crear documento
// @Description  Asigna número {QT|VD|RC}-{año}-{NNN} y calcula subtotal, IVA 7% y total.
// @Tags         documents
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateDocumentRequest  true  "docType, customer, items, notes"
// @Success      201   {object}  dto.DocumentEnvelope
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/documents [post]
func (h *DocumentHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateDocumentRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	doc, err := h.uc.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.DocumentEnvelope{Document: doc})
}

// Update godoc
// @Summary      Actualizar documento (parcial)
// @Description  Los totales solo se recalculan si se envía items.
// @Tags         documents
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID del documento"
// @Param        body  body  dto.UpdateDocumentRequest  true  "campos a cambiar"
// @Success      200   {object}  dto.DocumentEnvelope
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/documents/{id} [patch]
func (h *DocumentHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateDocumentRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	doc, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.DocumentEnvelope{Document: doc})
}

// Delete godoc
// @Summary      Eliminar documento
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del documento"
// @Success      200  {object}  dto.MessageResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/documents/{id} [delete]
func (h *DocumentHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "documento eliminado"})
}

// Convert godoc
// @Summary      Convertir cotización en recibo
// @Description  Crea un recibo confirmado con las mismas líneas y marca la cotización como convertida.
// @Description  Solo cotizaciones que no estén convertidas ni canceladas; en otro caso responde 400 INVALID_OPERATION.
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la cotización"
// @Success      201  {object}  dto.DocumentEnvelope
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/documents/{id}/convert [post]
func (h *DocumentHandler) Convert(c *fiber.Ctx) error {
	doc, err := h.uc.Convert(c.UserContext(), GetUserID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.DocumentEnvelope{Document: doc})
}

// Stats godoc
// @Summary      Resumen del dashboard
// @Description  Ingresos = suma de recibos confirmados; conteos por tipo.
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DocumentStatsEnvelope
// @Router       /api/documents/stats/summary [get]
func (h *DocumentHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.uc.Stats(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.DocumentStatsEnvelope{Stats: *stats})
}

// PDF godoc
// @Summary      PDF del documento
// @Tags         documents
// @Security     Bearer
// @Produce      application/pdf
// @Param        id  path  string  true  "ID del documento"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/documents/{id}/pdf [get]
func (h *DocumentHandler) PDF(c *fiber.Ctx) error {
	file, err := h.export.RenderPDF(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return sendFile(c, file, "inline")
}

// XML godoc
// @Summary      XML del documento
// @Description  La cabecera X-Document-Fingerprint lleva el SHA-256 del XML canónico (C14N).
// @Tags         documents
// @Security     Bearer
// @Produce      application/xml
// @Param        id  path  string  true  "ID del documento"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/documents/{id}/xml [get]
func (h *DocumentHandler) XML(c *fiber.Ctx) error {
	file, err := h.export.RenderXML(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(HeaderDocumentFingerprint, file.Fingerprint)
	return sendFile(c, file, "inline")
}

// Export godoc
// @Summary      Exportar documentos a XLSX
// @Tags         documents
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        type    query  string  false  "quotation | voi | receipt"
// @Param        status  query  string  false  "draft | confirmed | converted | cancelled"
// @Param        search  query  string  false  "Busca en número y nombre de cliente"
// @Success      200  {file}  binary
// @Router       /api/documents/export [get]
func (h *DocumentHandler) Export(c *fiber.Ctx) error {
	var q dto.DocumentFilterRequest
	if err := c.QueryParser(&q); err != nil {
		return fail(c, fiber.StatusBadRequest, CodeInvalidBody, "parámetros de consulta inválidos")
	}
	file, err := h.export.ExportSpreadsheet(c.UserContext(), q)
	if err != nil {
		return writeError(c, err)
	}
	return sendFile(c, file, "attachment")
}

func sendFile(c *fiber.Ctx, file *dto.RenderedFile, disposition string) error {
	c.Set(fiber.HeaderContentType, file.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`%s; filename="%s"`, disposition, file.Filename))
	return c.Send(file.Content)
}
