package metrics

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/gdmcare/gdmcare/internal/platform/auth"
	"github.com/gdmcare/gdmcare/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("admin", "clinician"))
	g.POST("/patients/:id/metrics", h.Create)
	g.GET("/patients/:id/metrics", h.ListByPatient)
	g.GET("/patients/:id/metrics/latest", h.Latest)
	g.GET("/metrics/:id", h.Get)
	g.PUT("/metrics/:id", h.Update)
}

// metricsView augments the stored row with derived categories.
type metricsView struct {
	*Metrics
	BMICategory             string `json:"bmi_category"`
	BloodPressureCategory   string `json:"blood_pressure_category"`
	RiskFactorCount         int    `json:"risk_factor_count"`
	CompleteForPrediction   bool   `json:"complete_for_prediction"`
}

func view(m *Metrics) metricsView {
	return metricsView{
		Metrics:               m,
		BMICategory:           m.BMICategory(),
		BloodPressureCategory: m.BloodPressureCategory(),
		RiskFactorCount:       m.RiskFactorCount(),
		CompleteForPrediction: m.CompleteForPrediction(),
	}
}

func views(items []*Metrics) []metricsView {
	out := make([]metricsView, 0, len(items))
	for _, m := range items {
		out = append(out, view(m))
	}
	return out
}

func (h *Handler) Create(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	var m Metrics
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	m.PatientID = patientID
	userID, err := auth.UserUUIDFromContext(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing user identity")
	}
	if err := h.svc.Create(c.Request().Context(), &m, userID); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, view(&m))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	m, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "metrics not found")
	}
	return c.JSON(http.StatusOK, view(m))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var m Metrics
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	m.ID = id
	userID, err := auth.UserUUIDFromContext(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing user identity")
	}
	if err := h.svc.Update(c.Request().Context(), &m, userID); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, view(&m))
}

func (h *Handler) ListByPatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByPatient(c.Request().Context(), patientID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(views(items), total, pg.Limit, pg.Offset))
}

func (h *Handler) Latest(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	m, err := h.svc.Latest(c.Request().Context(), patientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "no metrics recorded for patient")
	}
	return c.JSON(http.StatusOK, view(m))
}
