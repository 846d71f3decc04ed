package api

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"sold2move/internal/db"
	"sold2move/internal/lookup"
	"sold2move/internal/middleware"
	"sold2move/internal/models"
	"sold2move/internal/validation"
)

// CacheHandler exposes cached lookups to operators.
type CacheHandler struct {
	store lookup.ManagedStore
}

// NewCacheHandler creates a new API cache handler.
func NewCacheHandler(store lookup.ManagedStore) *CacheHandler {
	return &CacheHandler{store: store}
}

// Get returns the cached lookup for a normalized address key.
func (h *CacheHandler) Get(c fiber.Ctx) error {
	key := c.Params("key")
	if !validation.ValidateLookupKey(key) {
		return jsonError(c, fiber.StatusBadRequest, "invalid lookup key")
	}

	rec, err := h.store.GetLookup(c.Context(), models.LookupKey(key))
	if err != nil {
		if errors.Is(err, db.ErrLookupNotFound) {
			return jsonError(c, fiber.StatusNotFound, "lookup not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch lookup")
	}

	return jsonData(c, rec)
}

// Delete invalidates a cached lookup so the next request refetches it from the provider.
func (h *CacheHandler) Delete(c fiber.Ctx) error {
	key := c.Params("key")
	if !validation.ValidateLookupKey(key) {
		return jsonError(c, fiber.StatusBadRequest, "invalid lookup key")
	}

	if err := h.store.DeleteLookup(c.Context(), models.LookupKey(key)); err != nil {
		if errors.Is(err, db.ErrLookupNotFound) {
			return jsonError(c, fiber.StatusNotFound, "lookup not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to delete lookup")
	}

	fields := logrus.Fields{"component": "api", "lookup_key": key}
	if p := middleware.PrincipalFrom(c); p != nil {
		fields["principal"] = p.Subject
	}
	logrus.WithFields(fields).Info("Cached lookup invalidated")

	return c.SendStatus(fiber.StatusNoContent)
}
