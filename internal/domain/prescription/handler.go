package prescription

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medihub/pharmacy/internal/platform/auth"
	"github.com/medihub/pharmacy/internal/records"
	"github.com/medihub/pharmacy/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/prescriptions")

	// Doctors write prescriptions; pharmacists read them for review and
	// dispensing.
	g.POST("", h.Create, auth.RequireRole(records.RoleDoctor))

	read := g.Group("", auth.RequireRole(records.RoleDoctor, records.RolePharmacist))
	read.GET("", h.Recent)
	read.GET("/:id", h.Detail)
}

type createRequest struct {
	PatientID uuid.UUID `json:"patient_id"`
	Lines     []struct {
		MedicineID uuid.UUID `json:"medicine_id"`
		Dosage     string    `json:"dosage"`
		Days       int       `json:"days"`
	} `json:"lines"`
}

func (h *Handler) Create(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	p := records.Prescription{PatientID: req.PatientID}
	if uid, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context())); err == nil {
		p.PrescriberID = &uid
	}
	lines := make([]records.PrescriptionLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, records.PrescriptionLine{
			MedicineID: l.MedicineID,
			Dosage:     l.Dosage,
			Days:       l.Days,
		})
	}

	err := h.svc.Write(c.Request().Context(), &p, lines)
	switch {
	case errors.Is(err, records.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	case errors.Is(err, records.ErrUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "prescription store unavailable, try again later")
	case err != nil:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) Detail(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	d, err := h.svc.Detail(c.Request().Context(), id)
	if errors.Is(err, records.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "prescription not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) Recent(c echo.Context) error {
	out, err := h.svc.Recent(c.Request().Context(), pagination.FromContext(c).Limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, out)
}
