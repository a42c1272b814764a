// seed carga datos de prueba: usuarios owner/admin, clientes, productos y algunas cotizaciones.
//
// Uso: go run ./cmd/seed [-customers 20] [-products 30] [-documents 10]
// Contraseñas: SEED_OWNER_PASSWORD y SEED_ADMIN_PASSWORD (por defecto owner1234 / admin1234).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"

	"github.com/tienda-pos/backoffice-api/internal/application/documents"
	"github.com/tienda-pos/backoffice-api/internal/application/dto"
	"github.com/tienda-pos/backoffice-api/internal/application/usecase"
	"github.com/tienda-pos/backoffice-api/internal/domain"
	"github.com/tienda-pos/backoffice-api/internal/domain/entity"
	"github.com/tienda-pos/backoffice-api/internal/infrastructure/postgres"
	"github.com/tienda-pos/backoffice-api/pkg/config"
	"github.com/tienda-pos/backoffice-api/pkg/logger"
)

func main() {
	nCustomers := flag.Int("customers", 20, "clientes a crear")
	nProducts := flag.Int("products", 30, "productos a crear")
	nDocuments := flag.Int("documents", 10, "cotizaciones a crear")
	seed := flag.Uint64("seed", 0, "semilla de gofakeit (0 = aleatoria)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "seed"})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	faker := gofakeit.New(*seed)

	userRepo := postgres.NewUserRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	docRepo := postgres.NewDocumentRepository(pool)

	userUC := usecase.NewUserUseCase(userRepo)
	customerUC := usecase.NewCustomerUseCase(customerRepo, cfg.App.PhoneRegion)
	productUC := usecase.NewProductUseCase(productRepo)
	documentUC := documents.NewUseCase(docRepo, customerRepo, productRepo, postgres.NewTxRunner(pool), nil, nil)

	var ownerID string
	for _, u := range []dto.InviteUserRequest{
		{Username: "owner", Password: envOr("SEED_OWNER_PASSWORD", "owner1234"), FullName: "Store Owner", Role: entity.RoleOwner},
		{Username: "admin", Password: envOr("SEED_ADMIN_PASSWORD", "admin1234"), FullName: "Store Admin", Role: entity.RoleAdmin},
	} {
		created, err := userUC.Invite(ctx, u)
		if errors.Is(err, domain.ErrDuplicate) {
			log.Info().Str("username", u.Username).Msg("usuario ya existe, se omite")
			existing, err := userRepo.GetByUsername(ctx, u.Username)
			if err == nil && existing != nil && u.Role == entity.RoleOwner {
				ownerID = existing.ID
			}
			continue
		}
		if err != nil {
			log.Fatal().Err(err).Str("username", u.Username).Msg("crear usuario")
		}
		if u.Role == entity.RoleOwner {
			ownerID = created.ID
		}
		log.Info().Str("username", u.Username).Str("role", u.Role).Msg("usuario creado")
	}

	customers := make([]dto.CustomerResponse, 0, *nCustomers)
	for i := 0; i < *nCustomers; i++ {
		c, err := customerUC.Create(ctx, dto.CreateCustomerRequest{
			Name:  faker.Name(),
			Phone: fmt.Sprintf("08%08d", faker.Number(10000000, 99999999)),
			Email: faker.Email(),
		})
		if err != nil {
			log.Fatal().Err(err).Msg("crear cliente")
		}
		customers = append(customers, *c)
	}
	log.Info().Int("count", len(customers)).Msg("clientes creados")

	products := make([]dto.ProductResponse, 0, *nProducts)
	for i := 0; i < *nProducts; i++ {
		price := decimal.NewFromFloat(faker.Price(20, 5000)).Round(2)
		p, err := productUC.Create(ctx, dto.CreateProductRequest{
			Name:  faker.ProductName(),
			SKU:   fmt.Sprintf("SKU-%05d", faker.Number(1, 99999)),
			Price: &price,
			Stock: int64(faker.Number(0, 200)),
		})
		if err != nil {
			log.Fatal().Err(err).Msg("crear producto")
		}
		products = append(products, *p)
	}
	log.Info().Int("count", len(products)).Msg("productos creados")

	if len(customers) == 0 || len(products) == 0 {
		return
	}
	for i := 0; i < *nDocuments; i++ {
		customer := customers[faker.Number(0, len(customers)-1)]
		items := make([]dto.LineItemRequest, 0, 3)
		for j := faker.Number(1, 4); j > 0; j-- {
			p := products[faker.Number(0, len(products)-1)]
			items = append(items, dto.LineItemRequest{
				ProductID: p.ID,
				Quantity:  int64(faker.Number(1, 10)),
				UnitPrice: decimal.RequireFromString(p.Price),
			})
		}
		doc, err := documentUC.Create(ctx, ownerID, dto.CreateDocumentRequest{
			DocType:    string(entity.DocTypeQuotation),
			CustomerID: customer.ID,
			Items:      items,
			Notes:      faker.Sentence(6),
		})
		if err != nil {
			log.Fatal().Err(err).Msg("crear cotización")
		}
		log.Debug().Str("doc_number", doc.DocNumber).Msg("cotización creada")
	}
	log.Info().Int("count", *nDocuments).Msg("cotizaciones creadas")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
