package assessment

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/gdmcare/gdmcare/internal/platform/auth"
	"github.com/gdmcare/gdmcare/internal/scoring"
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
	g.POST("/patients/:id/assessments", h.Assess)
	g.POST("/patients/:id/assessments/from-metrics", h.AssessFromMetrics)
	g.GET("/patients/:id/assessments", h.ListByPatient)
	g.GET("/patients/:id/assessments/latest", h.Latest)
	g.GET("/assessments", h.List)
	g.GET("/assessments/:id", h.Get)
	g.GET("/assessments/statistics", h.Statistics)

	// Engine endpoints: ad-hoc scoring and model metadata.
	g.POST("/risk/predict", h.Predict)
	g.GET("/risk/model-status", h.ModelStatus)
	g.GET("/risk/reference-ranges", h.ReferenceRanges)
	g.GET("/risk/feature-importance", h.FeatureImportance)
}

// assessmentView adds the derived recommendation list to a stored row.
type assessmentView struct {
	*Assessment
	RiskDescription string   `json:"risk_description"`
	Recommendations []string `json:"recommendations"`
}

func view(a *Assessment) assessmentView {
	return assessmentView{
		Assessment:      a,
		RiskDescription: scoring.Describe(a.RiskLabel),
		Recommendations: scoring.Recommendations(a.RiskLabel),
	}
}

func views(items []*Assessment) []assessmentView {
	out := make([]assessmentView, 0, len(items))
	for _, a := range items {
		out = append(out, view(a))
	}
	return out
}

// validationFailure renders the full error list with 422.
func validationFailure(c echo.Context, verr *scoring.ValidationError) error {
	return c.JSON(http.StatusUnprocessableEntity, map[string]interface{}{
		"error":  "validation failed",
		"errors": verr.Errors,
	})
}

func (h *Handler) Assess(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	var f scoring.Features
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	userID, err := auth.UserUUIDFromContext(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing user identity")
	}

	a, err := h.svc.Assess(c.Request().Context(), patientID, f, userID)
	if err != nil {
		var verr *scoring.ValidationError
		if errors.As(err, &verr) {
			return validationFailure(c, verr)
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, view(a))
}

// AssessFromMetrics scores the patient's latest recorded clinical metrics
// without the caller restating them.
func (h *Handler) AssessFromMetrics(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	userID, err := auth.UserUUIDFromContext(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing user identity")
	}

	a, err := h.svc.AssessFromMetrics(c.Request().Context(), patientID, userID)
	if err != nil {
		var verr *scoring.ValidationError
		if errors.As(err, &verr) {
			return validationFailure(c, verr)
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, view(a))
}

func (h *Handler) Predict(c echo.Context) error {
	var f scoring.Features
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	pred, err := h.svc.Predict(c.Request().Context(), f)
	if err != nil {
		var verr *scoring.ValidationError
		if errors.As(err, &verr) {
			return validationFailure(c, verr)
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"prediction":       pred,
		"risk_description": scoring.Describe(pred.RiskLabel),
		"recommendations":  scoring.Recommendations(pred.RiskLabel),
	})
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	viewedBy, err := auth.UserUUIDFromContext(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing user identity")
	}
	a, err := h.svc.View(c.Request().Context(), id, viewedBy)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "assessment not found")
	}
	return c.JSON(http.StatusOK, view(a))
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(views(items), total, pg.Limit, pg.Offset))
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
	a, err := h.svc.LatestForPatient(c.Request().Context(), patientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "no assessments for patient")
	}
	return c.JSON(http.StatusOK, view(a))
}

func (h *Handler) Statistics(c echo.Context) error {
	stats, err := h.svc.Statistics(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) ModelStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.ModelStatus())
}

func (h *Handler) ReferenceRanges(c echo.Context) error {
	return c.JSON(http.StatusOK, scoring.ReferenceRanges())
}

func (h *Handler) FeatureImportance(c echo.Context) error {
	return c.JSON(http.StatusOK, scoring.FeatureImportance())
}
