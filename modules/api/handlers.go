package api

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/example/footwear-pos/domain/apperr"
	settingsdomain "github.com/example/footwear-pos/domain/settings"
	"github.com/example/footwear-pos/modules/alerts"
	"github.com/example/footwear-pos/modules/inventory"
	"github.com/example/footwear-pos/modules/sales"
	settingsmod "github.com/example/footwear-pos/modules/settings"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	inventory *inventory.Service
	sales     *sales.Service
	settings  *settingsmod.Service
	alerts    *alerts.Module
	logger    types.Logger
}

// NewHandlers creates a new Handlers instance. alertsModule may be nil.
func NewHandlers(
	inventoryService *inventory.Service,
	salesService *sales.Service,
	settingsService *settingsmod.Service,
	alertsModule *alerts.Module,
	logger types.Logger,
) *Handlers {
	return &Handlers{
		inventory: inventoryService,
		sales:     salesService,
		settings:  settingsService,
		alerts:    alertsModule,
		logger:    logger,
	}
}

// HealthCheck handles GET /health.
func (h *Handlers) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "healthy",
		"module": "api",
	})
}

// ListProducts handles GET /api/v1/inventory[?search=].
func (h *Handlers) ListProducts(c *fiber.Ctx) error {
	var (
		resp inventory.ListProductsResponse
		err  error
	)
	if c.Context().QueryArgs().Has("search") {
		resp.Products, err = h.inventory.Search(c.UserContext(), c.Query("search"))
	} else {
		resp.Products, err = h.inventory.ListAll(c.UserContext())
	}
	if err != nil {
		return writeError(c, err)
	}
	resp.Total = len(resp.Products)
	return c.JSON(resp)
}

// LowStock handles GET /api/v1/inventory/low-stock[?limit=].
func (h *Handlers) LowStock(c *fiber.Ctx) error {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return writeError(c, apperr.Invalid("limit", "must be an integer"))
		}
		limit = n
	}

	products, threshold, err := h.inventory.LowStock(c.UserContext(), limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(inventory.LowStockResponse{
		Products:  products,
		Threshold: threshold,
		Total:     len(products),
	})
}

// GetProduct handles GET /api/v1/inventory/:id.
func (h *Handlers) GetProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return writeError(c, err)
	}

	product, err := h.inventory.Get(c.UserContext(), id)
	if err != nil {
		return writeProductError(c, err, id)
	}
	return c.JSON(product)
}

// CreateProduct handles POST /api/v1/inventory.
func (h *Handlers) CreateProduct(c *fiber.Ctx) error {
	var in inventory.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}

	product, err := h.inventory.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// UpdateProduct handles PUT /api/v1/inventory/:id.
func (h *Handlers) UpdateProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return writeError(c, err)
	}

	var in inventory.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}

	product, err := h.inventory.Update(c.UserContext(), id, in)
	if err != nil {
		return writeProductError(c, err, id)
	}
	return c.JSON(product)
}

// DeleteProduct handles DELETE /api/v1/inventory/:id.
func (h *Handlers) DeleteProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return writeError(c, err)
	}

	if err := h.inventory.Delete(c.UserContext(), id); err != nil {
		return writeProductError(c, err, id)
	}
	return c.JSON(inventory.DeleteProductResponse{Deleted: true, ID: id})
}

// SubmitSale handles POST /api/v1/sales.
func (h *Handlers) SubmitSale(c *fiber.Ctx) error {
	var req sales.SubmitSaleRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	receipt, err := h.sales.Submit(c.UserContext(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(receipt)
}

// ListSales handles GET /api/v1/sales[?start=&end=].
func (h *Handlers) ListSales(c *fiber.Ctx) error {
	rng, err := sales.ParseDateRange(c.Query("start"), c.Query("end"), h.sales.Now())
	if err != nil {
		return writeError(c, err)
	}

	list, err := h.sales.List(c.UserContext(), rng)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(sales.ListSalesResponse{Sales: list, Total: len(list)})
}

// GetSale handles GET /api/v1/sales/:id.
func (h *Handlers) GetSale(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return writeError(c, err)
	}

	sale, err := h.sales.Get(c.UserContext(), id)
	if err != nil {
		return writeSaleError(c, err, id)
	}
	return c.JSON(sale)
}

// SalesSummary handles GET /api/v1/reports/sales.
func (h *Handlers) SalesSummary(c *fiber.Ctx) error {
	rng, err := sales.ParseDateRange(c.Query("start"), c.Query("end"), h.sales.Now())
	if err != nil {
		return writeError(c, err)
	}

	summary, err := h.sales.Summary(c.UserContext(), rng, c.Query("period"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(summary)
}

// ExportSales handles GET /api/v1/reports/sales/export.
func (h *Handlers) ExportSales(c *fiber.Ctx) error {
	now := h.sales.Now()
	rng, err := sales.ParseDateRange(c.Query("start"), c.Query("end"), now)
	if err != nil {
		return writeError(c, err)
	}

	var buf bytes.Buffer
	n, err := h.sales.ExportXLSX(c.UserContext(), rng, &buf)
	if err != nil {
		return writeError(c, err)
	}

	h.logger.Info("Sales exported", "rows", n, "bytes", buf.Len())

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="sales-%s.xlsx"`, now.UTC().Format("20060102")))
	c.Set("X-Sale-Count", strconv.Itoa(n))
	return c.Send(buf.Bytes())
}

// GetSettings handles GET /api/v1/settings.
func (h *Handlers) GetSettings(c *fiber.Ctx) error {
	s, err := h.settings.Get(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(s)
}

// SaveSettings handles POST and PUT /api/v1/settings.
func (h *Handlers) SaveSettings(c *fiber.Ctx) error {
	var in settingsdomain.Settings
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}

	s, err := h.settings.Set(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(s)
}

// ListAlerts handles GET /api/v1/alerts.
func (h *Handlers) ListAlerts(c *fiber.Ctx) error {
	recent := h.alerts.Recent()
	return c.JSON(fiber.Map{
		"alerts": recent,
		"total":  len(recent),
	})
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 0)
	if err != nil || id == 0 {
		return 0, apperr.Invalid("id", "must be a positive integer")
	}
	return uint(id), nil
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "bad_request",
		Message: "Invalid request body",
	})
}
