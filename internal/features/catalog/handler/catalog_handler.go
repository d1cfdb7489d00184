package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"order-tracker/internal/core/logger"
	"order-tracker/internal/core/server"
	"order-tracker/internal/features/catalog/domain"
	"order-tracker/internal/features/catalog/ports"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	msgUnauthorized     = "No autorizado"
	msgMethodNotAllowed = "Método no permitido"
	msgInvalidBody      = "Body JSON inválido"
	msgMissingID        = "Falta el id del registro"
	msgNotConfigured    = "Configura AIRTABLE_BASE, AIRTABLE_TABLE y AIRTABLE_TOKEN"
)

// CatalogHandler serves the catalog listing and its admin CRUD surface.
type CatalogHandler struct {
	service ports.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(service ports.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		service: service,
	}
}

// RecordsResponse is the admin listing.
type RecordsResponse struct {
	Allowed bool            `json:"allowed"`
	Email   string          `json:"email"`
	Records []domain.Record `json:"records"`
}

// RawRecordsResponse is the public listing.
type RawRecordsResponse struct {
	Records []domain.RawRecord `json:"records"`
}

// OKResponse acknowledges a write.
type OKResponse struct {
	OK bool `json:"ok"`
}

// Register mounts the catalog routes on router.
func (h *CatalogHandler) Register(router fiber.Router) {
	router.Get("/catalog/records", h.PublicRecords)
	router.All("/admin/records", h.AdminRecords)
}

// PublicRecords handles GET /catalog/records.
// @Summary List catalog records
// @Description Returns every catalog record as stored.
// @Tags catalog
// @Produce json
// @Success 200 {object} RawRecordsResponse
// @Failure 500 {object} server.ErrorResponse
// @Router /catalog/records [get]
func (h *CatalogHandler) PublicRecords(c *fiber.Ctx) error {
	records, err := h.service.ListRawRecords(c.UserContext())
	if err != nil {
		return h.upstreamError(c, err)
	}
	return c.Status(http.StatusOK).JSON(RawRecordsResponse{Records: records})
}

// AdminRecords handles the admin catalog surface.
// @Summary Administer catalog records
// @Description GET lists records, POST creates, PATCH updates and DELETE removes one. Requires an allow-listed identity.
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param record body domain.RecordInput false "Record to write"
// @Success 200 {object} RecordsResponse
// @Failure 400 {object} server.ErrorResponse
// @Failure 401 {object} server.ErrorResponse
// @Failure 403 {object} server.ErrorResponse
// @Failure 405 {object} server.ErrorResponse
// @Failure 500 {object} server.ErrorResponse
// @Router /admin/records [get]
// @Router /admin/records [post]
// @Router /admin/records [patch]
// @Router /admin/records [delete]
func (h *CatalogHandler) AdminRecords(c *fiber.Ctx) error {
	ctx := c.UserContext()

	user, err := h.service.Authorize(ctx, c.Get(fiber.HeaderAuthorization))
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return server.JSONError(c, http.StatusUnauthorized, msgUnauthorized)
	case errors.Is(err, domain.ErrForbidden):
		return server.JSONError(c, http.StatusForbidden, msgUnauthorized)
	case err != nil:
		return h.upstreamError(c, err)
	}

	method := c.Method()
	if method == fiber.MethodGet {
		records, err := h.service.ListRecords(ctx)
		if err != nil {
			return h.upstreamError(c, err)
		}
		return c.Status(http.StatusOK).JSON(RecordsResponse{Allowed: true, Email: user.Email, Records: records})
	}

	if method != fiber.MethodPost && method != fiber.MethodPatch && method != fiber.MethodDelete {
		return server.JSONError(c, http.StatusMethodNotAllowed, msgMethodNotAllowed)
	}

	var in domain.RecordInput
	if err := json.Unmarshal(c.Body(), &in); err != nil {
		return server.JSONError(c, http.StatusBadRequest, msgInvalidBody)
	}

	switch method {
	case fiber.MethodPost:
		err = h.service.CreateRecord(ctx, in)
	case fiber.MethodPatch:
		err = h.service.UpdateRecord(ctx, in)
	default:
		err = h.service.DeleteRecord(ctx, in.ID)
	}
	if errors.Is(err, domain.ErrMissingRecordID) {
		return server.JSONError(c, http.StatusBadRequest, msgMissingID)
	}
	if err != nil {
		return h.upstreamError(c, err)
	}

	logger.ForRequest(server.RayID(c)).Info("Catalog record written",
		zap.String("method", method),
		zap.String("record_id", in.ID),
		zap.String("email", user.Email),
	)
	return c.Status(http.StatusOK).JSON(OKResponse{OK: true})
}

// upstreamError reports store failures with their message.
func (h *CatalogHandler) upstreamError(c *fiber.Ctx, err error) error {
	logger.ForRequest(server.RayID(c)).Error("Catalog request failed", zap.Error(err))
	if errors.Is(err, domain.ErrNotConfigured) {
		return server.JSONError(c, http.StatusInternalServerError, msgNotConfigured)
	}
	return server.JSONError(c, http.StatusInternalServerError, err.Error())
}
