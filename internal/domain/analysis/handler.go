// Package analysis exposes the advisory AI summaries over HTTP. The output is
// informational for the pharmacist; dispensing decisions stay with the safety
// validator.
package analysis

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medihub/pharmacy/internal/domain/prescription"
	"github.com/medihub/pharmacy/internal/platform/ai"
	"github.com/medihub/pharmacy/internal/platform/auth"
	"github.com/medihub/pharmacy/internal/records"
)

// maxImageBytes caps uploaded prescription photos at 8 MiB.
const maxImageBytes = 8 << 20

type Handler struct {
	analyzer      *ai.Analyzer
	prescriptions *prescription.Service
}

func NewHandler(analyzer *ai.Analyzer, prescriptions *prescription.Service) *Handler {
	return &Handler{analyzer: analyzer, prescriptions: prescriptions}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/analysis", auth.RequireRole(records.RolePharmacist))
	g.POST("/prescriptions/:id", h.AnalyzeRecord)
	g.POST("/image", h.AnalyzeImage)
}

type analysisResponse struct {
	Analysis string `json:"analysis"`
}

func (h *Handler) AnalyzeRecord(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	d, err := h.prescriptions.Detail(c.Request().Context(), id)
	if errors.Is(err, records.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "prescription not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	html := h.analyzer.AnalyzeRecord(c.Request().Context(), contextText(d))
	return c.JSON(http.StatusOK, analysisResponse{Analysis: html})
}

func (h *Handler) AnalyzeImage(c echo.Context) error {
	file, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing image upload")
	}
	if file.Size > maxImageBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "image too large")
	}

	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	defer src.Close()
	img, err := io.ReadAll(io.LimitReader(src, maxImageBytes))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	html := h.analyzer.AnalyzeImage(c.Request().Context(), img)
	return c.JSON(http.StatusOK, analysisResponse{Analysis: html})
}

// contextText flattens a prescription detail into the plain-text block the
// model prompt embeds.
func contextText(d *records.PrescriptionDetail) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Patient: %s\n", d.PatientName)
	if d.PrescriberName != "" {
		fmt.Fprintf(&b, "Prescribed by: %s\n", d.PrescriberName)
	}
	b.WriteString("Medicines:\n")
	for _, l := range d.Lines {
		fmt.Fprintf(&b, "- %s (Dosage: %s, Duration: %d days)\n", l.MedicineName, l.Dosage, l.Days)
	}
	return b.String()
}
