package clinic

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/bonejoint/clinic/internal/platform/validate"
)

// resource names a record family in error messages.
type resource struct {
	name   string // "lab test"
	title  string // "Lab test"
	plural string // "lab tests"
}

var (
	resPatient       = resource{"patient", "Patient", "patients"}
	resVisit         = resource{"visit", "Visit", "visits"}
	resConsultation  = resource{"consultation", "Consultation", "consultations"}
	resPrescription  = resource{"prescription", "Prescription", "prescriptions"}
	resDiagnostic    = resource{"diagnostic", "Diagnostic", "diagnostics"}
	resLabTest       = resource{"lab test", "Lab test", "lab tests"}
	resPhysioSession = resource{"physio session", "Physio session", "physio sessions"}
	resPayment       = resource{"payment", "Payment", "payments"}
)

type Handler struct {
	svc *Service
	log zerolog.Logger
}

func NewHandler(svc *Service, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, log: logger}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/patients", h.ListPatients)
	api.GET("/patients/:id", h.GetPatient)
	api.POST("/patients", h.CreatePatient)
	api.PATCH("/patients/:id", h.UpdatePatient)
	api.DELETE("/patients/:id", h.DeletePatient)

	api.GET("/visits", h.ListVisits)
	api.GET("/visits/code/:visitCode", h.GetVisitByCode)
	api.GET("/visits/:id", h.GetVisit)
	api.POST("/visits", h.CreateVisit)
	api.PATCH("/visits/:id", h.UpdateVisit)

	api.GET("/visits/:visitId/consultations", listByVisit(h, resConsultation, h.svc.ListConsultationsByVisit))
	api.GET("/consultations/:id", getOne(h, resConsultation, h.svc.GetConsultation))
	api.POST("/consultations", create(h, resConsultation, h.svc.CreateConsultation))
	api.PATCH("/consultations/:id", patch(h, resConsultation, h.svc.UpdateConsultation))

	api.GET("/visits/:visitId/prescriptions", listByVisit(h, resPrescription, h.svc.ListPrescriptionsByVisit))
	api.GET("/prescriptions/:id", getOne(h, resPrescription, h.svc.GetPrescription))
	api.POST("/prescriptions", create(h, resPrescription, h.svc.CreatePrescription))
	api.PATCH("/prescriptions/:id", patch(h, resPrescription, h.svc.UpdatePrescription))

	api.GET("/visits/:visitId/diagnostics", listByVisit(h, resDiagnostic, h.svc.ListDiagnosticsByVisit))
	api.GET("/diagnostics/:id", getOne(h, resDiagnostic, h.svc.GetDiagnostic))
	api.POST("/diagnostics", create(h, resDiagnostic, h.svc.CreateDiagnostic))
	api.PATCH("/diagnostics/:id", patch(h, resDiagnostic, h.svc.UpdateDiagnostic))

	api.GET("/visits/:visitId/lab-tests", listByVisit(h, resLabTest, h.svc.ListLabTestsByVisit))
	api.GET("/lab-tests/:id", getOne(h, resLabTest, h.svc.GetLabTest))
	api.POST("/lab-tests", create(h, resLabTest, h.svc.CreateLabTest))
	api.PATCH("/lab-tests/:id", patch(h, resLabTest, h.svc.UpdateLabTest))

	api.GET("/visits/:visitId/physio-sessions", listByVisit(h, resPhysioSession, h.svc.ListPhysioSessionsByVisit))
	api.GET("/physio-sessions/:id", getOne(h, resPhysioSession, h.svc.GetPhysioSession))
	api.POST("/physio-sessions", create(h, resPhysioSession, h.svc.CreatePhysioSession))
	api.PATCH("/physio-sessions/:id", patch(h, resPhysioSession, h.svc.UpdatePhysioSession))

	api.GET("/visits/:visitId/payments", listByVisit(h, resPayment, h.svc.ListPaymentsByVisit))
	api.GET("/payments/:id", getOne(h, resPayment, h.svc.GetPayment))
	api.POST("/payments", create(h, resPayment, h.svc.CreatePayment))
	api.PATCH("/payments/:id", patch(h, resPayment, h.svc.UpdatePayment))

	api.GET("/stats/today", h.TodaysStats)
	api.GET("/stats/revenue/today", h.TodaysRevenue)
}

// -- Patients --

func (h *Handler) ListPatients(c echo.Context) error {
	patients, err := h.svc.ListPatients(c.Request().Context(), c.QueryParam("search"))
	if err != nil {
		return h.readError(c, resPatient, true, err)
	}
	return c.JSON(http.StatusOK, patients)
}

func (h *Handler) GetPatient(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.svc.GetPatient(c.Request().Context(), id)
	if err != nil {
		return h.readError(c, resPatient, false, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) CreatePatient(c echo.Context) error {
	var in PatientInput
	if err := h.bind(c, resPatient, &in); err != nil {
		return err
	}
	p, err := h.svc.CreatePatient(c.Request().Context(), in)
	if err != nil {
		return h.writeError(c, resPatient, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var in PatientPatch
	if err := h.bind(c, resPatient, &in); err != nil {
		return err
	}
	p, err := h.svc.UpdatePatient(c.Request().Context(), id, in)
	if err != nil {
		return h.writeError(c, resPatient, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DeletePatient(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeletePatient(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Patient not found")
		}
		h.log.Error().Err(err).Int64("patient_id", id).Msg("delete patient failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete patient")
	}
	return c.NoContent(http.StatusNoContent)
}

// -- Visits --

func (h *Handler) ListVisits(c echo.Context) error {
	visits, err := h.svc.ListVisits(c.Request().Context(), c.QueryParam("today") == "true")
	if err != nil {
		return h.readError(c, resVisit, true, err)
	}
	return c.JSON(http.StatusOK, visits)
}

func (h *Handler) GetVisit(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	v, err := h.svc.GetVisit(c.Request().Context(), id)
	if err != nil {
		return h.readError(c, resVisit, false, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) GetVisitByCode(c echo.Context) error {
	v, err := h.svc.GetVisitByCode(c.Request().Context(), c.Param("visitCode"))
	if err != nil {
		return h.readError(c, resVisit, false, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) CreateVisit(c echo.Context) error {
	var in VisitInput
	if err := h.bind(c, resVisit, &in); err != nil {
		return err
	}
	v, err := h.svc.CreateVisit(c.Request().Context(), in)
	if err != nil {
		return h.writeError(c, resVisit, err)
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *Handler) UpdateVisit(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var in VisitPatch
	if err := h.bind(c, resVisit, &in); err != nil {
		return err
	}
	v, err := h.svc.UpdateVisit(c.Request().Context(), id, in)
	if err != nil {
		return h.writeError(c, resVisit, err)
	}
	return c.JSON(http.StatusOK, v)
}

// -- Statistics --

func (h *Handler) TodaysStats(c echo.Context) error {
	stats, err := h.svc.TodaysStats(c.Request().Context())
	if err != nil {
		h.log.Error().Err(err).Msg("today's stats failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch statistics")
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) TodaysRevenue(c echo.Context) error {
	sum, err := h.svc.TodaysRevenue(c.Request().Context())
	if err != nil {
		h.log.Error().Err(err).Msg("today's revenue failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch revenue")
	}
	return c.JSON(http.StatusOK, sum)
}

// -- Child record families --

func create[In any, Out any](h *Handler, r resource, fn func(context.Context, In) (*Out, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		var in In
		if err := h.bind(c, r, &in); err != nil {
			return err
		}
		out, err := fn(c.Request().Context(), in)
		if err != nil {
			return h.writeError(c, r, err)
		}
		return c.JSON(http.StatusCreated, out)
	}
}

func getOne[Out any](h *Handler, r resource, fn func(context.Context, int64) (*Out, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}
		out, err := fn(c.Request().Context(), id)
		if err != nil {
			return h.readError(c, r, false, err)
		}
		return c.JSON(http.StatusOK, out)
	}
}

func patch[P any, Out any](h *Handler, r resource, fn func(context.Context, int64, P) (*Out, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}
		var in P
		if err := h.bind(c, r, &in); err != nil {
			return err
		}
		out, err := fn(c.Request().Context(), id, in)
		if err != nil {
			return h.writeError(c, r, err)
		}
		return c.JSON(http.StatusOK, out)
	}
}

func listByVisit[Out any](h *Handler, r resource, fn func(context.Context, int64) ([]*Out, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		visitID, err := parseID(c, "visitId")
		if err != nil {
			return err
		}
		out, err := fn(c.Request().Context(), visitID)
		if err != nil {
			return h.readError(c, r, true, err)
		}
		return c.JSON(http.StatusOK, out)
	}
}

// -- helpers --

func parseID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

// bind decodes and validates a request body. The client only sees the
// generic "Invalid <entity> data" message; the cause is logged.
func (h *Handler) bind(c echo.Context, r resource, dst interface{}) error {
	err := c.Bind(dst)
	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code == http.StatusRequestEntityTooLarge {
		return he
	}
	if err == nil {
		err = c.Validate(dst)
	}
	if err != nil {
		h.log.Debug().
			Str("request_id", requestID(c)).
			Str("resource", r.name).
			Str("reason", validate.FirstError(err)).
			Msg("rejected request body")
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid "+r.name+" data")
	}
	return nil
}

func (h *Handler) readError(c echo.Context, r resource, list bool, err error) error {
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, r.title+" not found")
	}
	h.log.Error().Err(err).Str("request_id", requestID(c)).Str("resource", r.name).Msg("read failed")
	if list {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch "+r.plural)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch "+r.name)
}

func (h *Handler) writeError(c echo.Context, r resource, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, r.title+" not found")
	case errors.Is(err, ErrInvalidTransition):
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid visit status transition")
	case errors.Is(err, ErrInvalidInput):
		h.log.Debug().Err(err).Str("request_id", requestID(c)).Str("resource", r.name).Msg("rejected input")
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid "+r.name+" data")
	}
	h.log.Error().Err(err).Str("request_id", requestID(c)).Str("resource", r.name).Msg("write failed")
	return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save "+r.name)
}

func requestID(c echo.Context) string {
	rid, _ := c.Get("request_id").(string)
	return rid
}
