package main

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bonejoint/clinic/internal/domain/clinic"
	"github.com/bonejoint/clinic/internal/platform/openapi"
)

// apiDocs describes the clinic routes for /api/openapi.json.
func apiDocs(e *echo.Echo, baseURL string) *openapi.Generator {
	g := openapi.NewGenerator("Bone & Joint Clinic API", version, baseURL, "/api", e.Routes)

	g.AddResource(openapi.Resource{Path: "patients", Tag: "Patients", Model: clinic.Patient{}, Input: clinic.PatientInput{}, Patch: clinic.PatientPatch{}, Detail: clinic.PatientWithVisits{}})
	g.AddResource(openapi.Resource{Path: "visits", Tag: "Visits", Model: clinic.Visit{}, Input: clinic.VisitInput{}, Patch: clinic.VisitPatch{}, Detail: clinic.VisitWithDetails{}})
	g.AddResource(openapi.Resource{Path: "consultations", Tag: "Consultations", Model: clinic.Consultation{}, Input: clinic.ConsultationInput{}, Patch: clinic.ConsultationPatch{}})
	g.AddResource(openapi.Resource{Path: "prescriptions", Tag: "Prescriptions", Model: clinic.Prescription{}, Input: clinic.PrescriptionInput{}, Patch: clinic.PrescriptionPatch{}})
	g.AddResource(openapi.Resource{Path: "diagnostics", Tag: "Diagnostics", Model: clinic.Diagnostic{}, Input: clinic.DiagnosticInput{}, Patch: clinic.DiagnosticPatch{}})
	g.AddResource(openapi.Resource{Path: "lab-tests", Tag: "Lab tests", Model: clinic.LabTest{}, Input: clinic.LabTestInput{}, Patch: clinic.LabTestPatch{}})
	g.AddResource(openapi.Resource{Path: "physio-sessions", Tag: "Physiotherapy", Model: clinic.PhysioSession{}, Input: clinic.PhysioSessionInput{}, Patch: clinic.PhysioSessionPatch{}})
	g.AddResource(openapi.Resource{Path: "payments", Tag: "Payments", Model: clinic.Payment{}, Input: clinic.PaymentInput{}, Patch: clinic.PaymentPatch{}})

	g.Respond(http.MethodGet, "/api/visits/code/:visitCode", clinic.Visit{})
	g.Respond(http.MethodGet, "/api/stats/today", clinic.TodayStats{})
	g.Respond(http.MethodGet, "/api/stats/revenue/today", clinic.RevenueSummary{})

	g.Query(http.MethodGet, "/api/patients", "search", "string", "Case-insensitive match on first name, last name or phone")
	g.Query(http.MethodGet, "/api/visits", "today", "boolean", "Only visits dated today in the clinic time zone")
	return g
}
