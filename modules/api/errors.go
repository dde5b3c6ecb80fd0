package api

import (
	"errors"
	"fmt"

	"github.com/example/footwear-pos/domain/apperr"
	"github.com/example/footwear-pos/domain/catalog"
	"github.com/example/footwear-pos/modules/sales"
	"github.com/gofiber/fiber/v2"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Field     string `json:"field,omitempty"`
	ID        uint   `json:"id,omitempty"`
	ProductID uint   `json:"product_id,omitempty"`
}

// writeError maps a service error to its HTTP status and body.
func writeError(c *fiber.Ctx, err error) error {
	status, body := classify(err)
	return c.Status(status).JSON(body)
}

// writeProductError is writeError for routes addressing product id.
func writeProductError(c *fiber.Ctx, err error, id uint) error {
	status, body := classify(err)
	if status == fiber.StatusNotFound && body.ProductID == 0 {
		body.ID = id
		body.ProductID = id
		body.Message = fmt.Sprintf("product %d not found", id)
	}
	return c.Status(status).JSON(body)
}

// writeSaleError is writeError for routes addressing sale id.
func writeSaleError(c *fiber.Ctx, err error, id uint) error {
	status, body := classify(err)
	if status == fiber.StatusNotFound {
		body.ID = id
		body.Message = fmt.Sprintf("sale %d not found", id)
	}
	return c.Status(status).JSON(body)
}

func classify(err error) (int, ErrorResponse) {
	var (
		ve  *apperr.ValidationError
		nf  *sales.ProductNotFoundError
		oos *sales.OutOfStockError
		ip  *sales.InsufficientPaymentError
	)

	switch {
	case errors.As(err, &ve):
		return fiber.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: ve.Error(), Field: ve.Field}
	case errors.Is(err, sales.ErrEmptyCart):
		return fiber.StatusBadRequest, ErrorResponse{Error: "empty_cart", Message: "sale has no line items"}
	case errors.As(err, &ip):
		return fiber.StatusBadRequest, ErrorResponse{Error: "insufficient_payment", Message: ip.Error()}
	case errors.As(err, &nf):
		return fiber.StatusNotFound, ErrorResponse{Error: "product_not_found", Message: nf.Error(), ProductID: nf.ProductID}
	case errors.As(err, &oos):
		return fiber.StatusConflict, ErrorResponse{Error: "out_of_stock", Message: oos.Error(), ProductID: oos.ProductID}
	case errors.Is(err, catalog.ErrInsufficientStock):
		return fiber.StatusConflict, ErrorResponse{Error: "out_of_stock", Message: err.Error()}
	case errors.Is(err, apperr.ErrNotFound):
		return fiber.StatusNotFound, ErrorResponse{Error: "not_found", Message: "resource not found"}
	case errors.Is(err, apperr.ErrStoreUnavailable):
		return fiber.StatusServiceUnavailable, ErrorResponse{Error: "store_unavailable", Message: "storage is unavailable, retry later"}
	default:
		return fiber.StatusInternalServerError, ErrorResponse{Error: "internal_error", Message: "Internal Server Error"}
	}
}

func codeFor(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "bad_request"
	case fiber.StatusNotFound:
		return "not_found"
	case fiber.StatusUpgradeRequired:
		return "upgrade_required"
	case fiber.StatusMethodNotAllowed:
		return "method_not_allowed"
	default:
		if status >= fiber.StatusInternalServerError {
			return "server_error"
		}
		return "request_error"
	}
}
