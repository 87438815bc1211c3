package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mealbridge/mealbridge-api/internal/api/metrics"
	"github.com/mealbridge/mealbridge-api/internal/core/domain"
	"github.com/mealbridge/mealbridge-api/internal/core/ports"
	"github.com/mealbridge/mealbridge-api/internal/core/query"
)

// DonationHandler handles HTTP requests for donation operations.
type DonationHandler struct {
	service ports.DonationService
}

func NewDonationHandler(service ports.DonationService) *DonationHandler {
	return &DonationHandler{service: service}
}

// List handles GET /api/donations.
//
// @Summary      List donations with filters, sorting and pagination
// @Tags         donations
// @Produce      json
// @Param        select  query     string  false  "Comma-separated projection list"
// @Param        sort    query     string  false  "Comma-separated sort fields, '-' prefix for descending (default -createdAt)"
// @Param        page    query     int     false  "1-based page (default 1)"
// @Param        limit   query     int     false  "Page size (default 10, max 100)"
// @Success      200     {object}  listDonationsEnvelope
// @Failure      500     {object}  errorEnvelope
// @Router       /api/donations [get]
func (h *DonationHandler) List(c echo.Context) error {
	timer := prometheus.NewTimer(metrics.ListDuration)
	defer timer.ObserveDuration()

	result, err := h.service.List(c.Request().Context(), query.Parse(c.QueryParams()))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListEnvelope(result))
}

// Get handles GET /api/donations/:id.
//
// @Summary      Get a single donation, donor expanded
// @Tags         donations
// @Produce      json
// @Param        id   path      string  true  "Donation id"
// @Success      200  {object}  dataEnvelope
// @Failure      404  {object}  errorEnvelope
// @Router       /api/donations/{id} [get]
func (h *DonationHandler) Get(c echo.Context) error {
	view, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ok(toDetailResponse(view)))
}

// Create handles POST /api/donations.
//
// @Summary      Create a donation
// @Tags         donations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createDonationRequest  true  "Donation details"
// @Success      201   {object}  dataEnvelope
// @Failure      400   {object}  errorEnvelope
// @Failure      401   {object}  errorEnvelope
// @Router       /api/donations [post]
func (h *DonationHandler) Create(c echo.Context) error {
	var req createDonationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	donation, err := h.service.Create(c.Request().Context(), caller, toCreateInput(req))
	if err != nil {
		return err
	}

	metrics.DonationsCreatedTotal.WithLabelValues(string(donation.Type)).Inc()
	return c.JSON(http.StatusCreated, ok(donation))
}

// Update handles PUT /api/donations/:id.
//
// @Summary      Update a donation (owner or admin)
// @Tags         donations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Donation id"
// @Param        body  body      updateDonationRequest  true  "Fields to change"
// @Success      200   {object}  dataEnvelope
// @Failure      401   {object}  errorEnvelope
// @Failure      404   {object}  errorEnvelope
// @Router       /api/donations/{id} [put]
func (h *DonationHandler) Update(c echo.Context) error {
	var req updateDonationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	donation, err := h.service.Update(c.Request().Context(), caller, c.Param("id"), toUpdate(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ok(donation))
}

// Delete handles DELETE /api/donations/:id.
//
// @Summary      Delete a donation (owner or admin)
// @Tags         donations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Donation id"
// @Success      200  {object}  dataEnvelope
// @Failure      401  {object}  errorEnvelope
// @Failure      404  {object}  errorEnvelope
// @Router       /api/donations/{id} [delete]
func (h *DonationHandler) Delete(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), caller, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ok(map[string]any{}))
}

// Reserve handles PUT /api/donations/:id/reserve.
//
// @Summary      Reserve an available donation (recipient role)
// @Tags         donations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Donation id"
// @Success      200  {object}  dataEnvelope
// @Failure      400  {object}  errorEnvelope
// @Failure      404  {object}  errorEnvelope
// @Router       /api/donations/{id}/reserve [put]
func (h *DonationHandler) Reserve(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	donation, err := h.service.Reserve(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotAvailable):
			metrics.ReservationsTotal.WithLabelValues("conflict").Inc()
		case errors.Is(err, domain.ErrDonationNotFound):
			metrics.ReservationsTotal.WithLabelValues("not_found").Inc()
		}
		return err
	}

	metrics.ReservationsTotal.WithLabelValues("won").Inc()
	return c.JSON(http.StatusOK, ok(donation))
}
