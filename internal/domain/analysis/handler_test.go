package analysis

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/medihub/pharmacy/internal/domain/prescription"
	"github.com/medihub/pharmacy/internal/platform/ai"
	"github.com/medihub/pharmacy/internal/records"
)

func newTestHandler(t *testing.T) (*Handler, *records.Memory) {
	t.Helper()
	mem := records.SeededMemory()
	svc := prescription.NewService(prescription.NewRepoMem(mem), prescription.NewRepoMem(records.NewMemory()), zerolog.Nop())
	// No API key: the analyzer answers with the simulated narrative.
	analyzer := ai.New(ai.Config{}, zerolog.Nop())
	return NewHandler(analyzer, svc), mem
}

func TestAnalyzeRecordSimulated(t *testing.T) {
	h, mem := newTestHandler(t)

	pat := &records.Patient{Name: "Ravi Kumar", Age: 45, Gender: "male"}
	if err := mem.CreatePatient(pat); err != nil {
		t.Fatalf("CreatePatient: %v", err)
	}
	meds, _ := mem.ListMedicines()
	p := &records.Prescription{PatientID: pat.ID}
	if err := mem.CreatePrescription(p, []records.PrescriptionLine{
		{MedicineID: meds[2].ID, Dosage: "1-0-1", Days: 7},
	}); err != nil {
		t.Fatalf("CreatePrescription: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(p.ID.String())

	if err := h.AnalyzeRecord(c); err != nil {
		t.Fatalf("AnalyzeRecord: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp analysisResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(resp.Analysis, "AI Analysis Report (Simulation)") {
		t.Errorf("analysis = %q", resp.Analysis)
	}
}

func TestAnalyzeRecordUnknownPrescription(t *testing.T) {
	h, _ := newTestHandler(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("6c1a0aeb-54a8-4b8d-8d3f-25a2b86f6a10")

	err := h.AnalyzeRecord(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Errorf("err = %v, want 404", err)
	}
}

func TestAnalyzeImageSimulated(t *testing.T) {
	h, _ := newTestHandler(t)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile("image", "rx.jpg")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte("not really a jpeg"))
	w.Close()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.AnalyzeImage(c); err != nil {
		t.Fatalf("AnalyzeImage: %v", err)
	}
	var resp analysisResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(resp.Analysis, "Image Analysis") {
		t.Errorf("analysis = %q", resp.Analysis)
	}
}

func TestAnalyzeImageMissingUpload(t *testing.T) {
	h, _ := newTestHandler(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.AnalyzeImage(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("err = %v, want 400", err)
	}
}
