package api

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"sold2move/internal/lookup"
	"sold2move/internal/models"
	"sold2move/internal/skiptrace"
)

// notFoundMessage accompanies responses where the provider had no data.
const notFoundMessage = "No homeowner data found for this address"

// LookupHandler handles homeowner lookups via JSON API.
type LookupHandler struct {
	service *lookup.Service
}

// NewLookupHandler creates a new API lookup handler.
func NewLookupHandler(service *lookup.Service) *LookupHandler {
	return &LookupHandler{service: service}
}

// Lookup resolves a property address to homeowner contact data.
func (h *LookupHandler) Lookup(c fiber.Ctx) error {
	var body models.LookupRequest
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Lookup(c.Context(), body)
	if err != nil {
		return lookupError(c, err)
	}

	resp := models.LookupResponse{
		Success: result.Success,
		Data: models.LookupData{
			Homeowner: result.Homeowner,
			FromCache: result.FromCache,
		},
	}
	if !result.Success {
		resp.Message = notFoundMessage
	}
	return c.JSON(resp)
}

// lookupError maps orchestrator errors onto the HTTP error taxonomy.
func lookupError(c fiber.Ctx, err error) error {
	if errors.Is(err, lookup.ErrInvalidRequest) {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	var perr *skiptrace.ProviderError
	if errors.As(err, &perr) {
		var details any = perr.StatusCode
		if perr.StatusCode == 0 {
			details = perr.Err.Error()
		}
		return jsonErrorDetails(c, fiber.StatusBadGateway, "Skip trace API error", details)
	}

	logrus.WithField("component", "api").WithError(err).Error("Homeowner lookup failed")
	return jsonErrorDetails(c, fiber.StatusInternalServerError, "Internal server error", err.Error())
}
