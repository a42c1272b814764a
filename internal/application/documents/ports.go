package documents

import (
	"context"

	"github.com/tienda-pos/backoffice-api/internal/domain/entity"
	"github.com/tienda-pos/backoffice-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción con el repositorio de documentos atado a ella.
// Si fn retorna error se hace rollback.
type TxRunner interface {
	RunDocuments(ctx context.Context, fn func(docRepo repository.DocumentRepository) error) error
}

// StatsCache caché del resumen del dashboard. Los fallos del backend los
// registra el adaptador; para el caso de uso un fallo es un miss.
//
// Get devuelve también la generación vigente; Set solo guarda si la generación
// no cambió desde ese Get. Invalidate avanza la generación, así un resumen
// leído antes de una escritura nunca queda en caché después de ella.
type StatsCache interface {
	Get(ctx context.Context) (stats *entity.DocumentStats, gen int64, ok bool)
	Set(ctx context.Context, gen int64, stats *entity.DocumentStats)
	Invalidate(ctx context.Context)
}

// Metrics contadores de negocio.
type Metrics interface {
	DocumentWritten(op string, docType entity.DocType)
	NumberConflict()
}

// PDFRenderer genera el PDF de un documento.
type PDFRenderer interface {
	Render(doc *entity.Document) ([]byte, error)
}

// XMLRenderer genera la representación XML y su huella SHA-256 canónica.
type XMLRenderer interface {
	Render(doc *entity.Document) (content []byte, fingerprint string, err error)
}

// SpreadsheetRenderer genera el XLSX de un listado de documentos.
type SpreadsheetRenderer interface {
	Render(docs []*entity.Document) ([]byte, error)
}

type noopCache struct{}

func (noopCache) Get(context.Context) (*entity.DocumentStats, int64, bool) { return nil, 0, false }
func (noopCache) Set(context.Context, int64, *entity.DocumentStats)        {}
func (noopCache) Invalidate(context.Context)                               {}

type noopMetrics struct{}

func (noopMetrics) DocumentWritten(string, entity.DocType) {}
func (noopMetrics) NumberConflict()                       {}
