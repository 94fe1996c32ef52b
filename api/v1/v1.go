package v1

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/whitekid/goxp/log"

	"cryptohub/api/endpoints"
	v1 "cryptohub/client/v1"
	"cryptohub/inventory"
	"cryptohub/inventory/classifier"
	"cryptohub/inventory/types"
	"cryptohub/pkg/helper"
	"cryptohub/pkg/metrics"
)

// @title    cryptohub
// @version  v1
// @BasePath /v1
type v1API struct {
	inventory inventory.Interface
	config    classifier.Config
	now       func() time.Time
}

// New cfg is the classification used by /report and the base for /classify overrides
func New(inv inventory.Interface, cfg classifier.Config) *v1API {
	return &v1API{
		inventory: inv,
		config:    cfg,
		now:       time.Now,
	}
}

var _ endpoints.Endpoint = (*v1API)(nil)

func (app *v1API) PathAndName() (string, string) { return "/v1", "v1 handler" }

func (app *v1API) Route(e *echo.Group) {
	e.Use(handleError)

	e.POST("/ingest", app.ingest)
	e.GET("/keys", app.listKeys)
	e.GET("/certificates", app.listCertificates)
	e.POST("/classify", app.classify)
	e.GET("/report", app.report)
}

func handleError(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := next(c)
		if err == nil {
			return err
		}

		if _, ok := err.(*echo.HTTPError); ok {
			return err
		}

		code := http.StatusInternalServerError

		switch {
		case errors.Is(err, inventory.ErrInvalidBatch):
			code = http.StatusBadRequest
		case errors.Is(err, inventory.ErrInvalidConfig):
			code = http.StatusBadRequest
		case errors.Is(err, inventory.ErrNotFound):
			code = http.StatusNotFound
		case errors.Is(err, inventory.ErrStorage):
			code = http.StatusInternalServerError
		case helper.IsValidationError(err):
			code = http.StatusBadRequest
		default:
			log.Debugf("unhandled err=%T %v", err, err)
		}

		return echo.NewHTTPError(code, err.Error())
	}
}

// ingest
// @Summary  ingest a batch of canonical records
// @Accept   json
// @Produce  json
// @Param    batch body     v1.Batch true "batch"
// @Success  201   {object} v1.IngestResponse
// @Router   /ingest [post]
func (app *v1API) ingest(c echo.Context) error {
	var batch types.Batch

	// the reconciler validates and counts rejections
	if err := c.Bind(&batch); err != nil {
		return helper.NewHTTPError(http.StatusBadRequest, "malformed request: %s", err.Error())
	}

	result, err := app.inventory.Ingest(c.Request().Context(), &batch)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, &v1.IngestResponse{
		Status:              "success",
		BatchID:             result.BatchID,
		KeysProcessed:       result.KeysProcessed,
		CertsProcessed:      result.CertsProcessed,
		CreatedKeys:         result.CreatedKeys,
		UpdatedKeys:         result.UpdatedKeys,
		CreatedCertificates: result.CreatedCertificates,
		UpdatedCertificates: result.UpdatedCertificates,
	})
}

// listKeys
// @Summary  list keys
// @Produce  json
// @Success  200 {object} v1.KeyList
// @Router   /keys [get]
func (app *v1API) listKeys(c echo.Context) error {
	items, err := app.inventory.ListKeys(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &v1.KeyList{Items: items})
}

// listCertificates
// @Summary  list certificates
// @Produce  json
// @Success  200 {object} v1.CertificateList
// @Router   /certificates [get]
func (app *v1API) listCertificates(c echo.Context) error {
	items, err := app.inventory.ListCertificates(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &v1.CertificateList{Items: items})
}

// classify
// @Summary  classify the inventory with overrides
// @Accept   json
// @Produce  json
// @Param    request body     v1.ClassifyRequest true "overrides"
// @Success  200     {object} v1.Report
// @Router   /classify [post]
func (app *v1API) classify(c echo.Context) error {
	var req v1.ClassifyRequest

	if err := helper.Bind(c, &req); err != nil {
		return err
	}

	now := app.now()
	if req.Now != nil {
		now = *req.Now
	}

	report, err := app.inventory.Classify(c.Request().Context(), now, req.Config(app.config))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, report)
}

// report
// @Summary  classify the inventory now
// @Produce  json
// @Success  200 {object} v1.Report
// @Router   /report [get]
func (app *v1API) report(c echo.Context) error {
	report, err := app.inventory.Classify(c.Request().Context(), app.now(), app.config)
	if err != nil {
		return err
	}

	updateRiskGauges(report)
	return c.JSON(http.StatusOK, report)
}

func updateRiskGauges(report *classifier.Report) {
	s := report.Summary
	metrics.InventoryRisk.WithLabelValues("certificate", "expired").Set(float64(s.ExpiredCertificates))
	metrics.InventoryRisk.WithLabelValues("certificate", "expiring_soon").Set(float64(s.ExpiringCertificates))
	metrics.InventoryRisk.WithLabelValues("certificate", "weak_algorithm").Set(float64(s.WeakCertificates))
	metrics.InventoryRisk.WithLabelValues("key", "expired").Set(float64(s.ExpiredKeys))
	metrics.InventoryRisk.WithLabelValues("key", "expiring_soon").Set(float64(s.ExpiringKeys))
	metrics.InventoryRisk.WithLabelValues("key", "weak_algorithm").Set(float64(s.WeakKeys))
	metrics.InventoryRisk.WithLabelValues("key", "rotation_overdue").Set(float64(s.RotationOverdueKeys))
}
