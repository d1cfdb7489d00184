package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"order-tracker/internal/core/logger"
	"order-tracker/internal/core/server"
	"order-tracker/internal/features/orders/domain"
	"order-tracker/internal/features/orders/ports"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Customer-facing messages.
const (
	msgMethodNotAllowed = "Método no permitido"
	msgInvalidBody      = "Body JSON inválido"
	msgInvalidPhone     = "El teléfono debe tener exactamente 10 dígitos."
	msgInvalidOrderCode = "El número de pedido debe tener formato ST-XXX."
	msgConfiguration    = "El servicio no está configurado correctamente."
	msgLookupFailed     = "No se pudo consultar el pedido."
)

// LookupHandler handles order lookup requests from the customer form.
type LookupHandler struct {
	// service is the lookup use case.
	service ports.LookupService
}

// NewLookupHandler creates a new instance of LookupHandler.
func NewLookupHandler(s ports.LookupService) *LookupHandler {
	return &LookupHandler{
		service: s,
	}
}

// LookupRequest is the body of an order lookup.
type LookupRequest struct {
	Phone       flexString `json:"phone"`
	OrderNumber flexString `json:"orderNumber"`
	// OrderName and OrderNumberAlt are accepted aliases of OrderNumber.
	OrderName      flexString `json:"order_name"`
	OrderNumberAlt flexString `json:"order_number"`
}

func (r LookupRequest) orderCode() string {
	for _, v := range []flexString{r.OrderNumber, r.OrderName, r.OrderNumberAlt} {
		if strings.TrimSpace(string(v)) != "" {
			return string(v)
		}
	}
	return ""
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// Register mounts the lookup route on router.
func (h *LookupHandler) Register(router fiber.Router) {
	router.All("/order-lookup", h.Lookup)
}

// Lookup resolves an order by phone and order code.
// @Summary Look up an order
// @Description Find the latest order matching the order code and phone. Carrier shipments are enriched with live tracking data.
// @Tags orders
// @Accept json
// @Produce json
// @Param request body LookupRequest true "Phone and order code"
// @Success 200 {object} domain.LookupResult
// @Failure 400 {object} server.ErrorResponse
// @Failure 405 {object} server.ErrorResponse
// @Failure 500 {object} server.ErrorResponse
// @Router /order-lookup [post]
func (h *LookupHandler) Lookup(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodPost {
		return server.JSONError(c, http.StatusMethodNotAllowed, msgMethodNotAllowed)
	}

	var req LookupRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return server.JSONError(c, http.StatusBadRequest, msgInvalidBody)
	}

	result, err := h.service.Lookup(c.UserContext(), string(req.Phone), req.orderCode())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidPhone):
			return server.JSONError(c, http.StatusBadRequest, msgInvalidPhone)
		case errors.Is(err, domain.ErrInvalidOrderCode):
			return server.JSONError(c, http.StatusBadRequest, msgInvalidOrderCode)
		}

		logger.ForRequest(server.RayID(c)).Error("Order lookup failed", zap.Error(err))

		if errors.Is(err, domain.ErrConfigurationMissing) {
			return server.JSONError(c, http.StatusInternalServerError, msgConfiguration)
		}
		return server.JSONError(c, http.StatusInternalServerError, msgLookupFailed)
	}

	return c.Status(http.StatusOK).JSON(result)
}
