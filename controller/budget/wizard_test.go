package budget

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"petbudget/dto"
	"petbudget/model"
	"petbudget/services"
	"petbudget/store"
	"petbudget/wizard"
)

func setupWizardRouter(st store.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	WizardController(router, wizard.NewSessions(st, nil, 0))
	return router
}

func bearerToken(t *testing.T, role string) string {
	t.Helper()
	token, err := services.CreateAccessToken("u1", "ana@x.com", role)
	if err != nil {
		t.Fatalf("CreateAccessToken: %v", err)
	}
	return "Bearer " + token
}

func doJSON(router *gin.Engine, method, path, auth string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestWizardRequiresToken(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")
	router := setupWizardRouter(store.NewMemory())

	w := doJSON(router, http.MethodPost, "/presupuesto/wizard", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestWizardFullFlow(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")
	st := store.NewMemory()
	router := setupWizardRouter(st)
	auth := bearerToken(t, "user")

	w := doJSON(router, http.MethodPost, "/presupuesto/wizard", auth, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("start status = %d, body %s", w.Code, w.Body.String())
	}
	var state dto.WizardStateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &state); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if state.Step != 0 {
		t.Errorf("initial step = %d, want 0", state.Step)
	}
	if state.PetData["raza"] != model.RazaMezcla {
		t.Errorf("raza default = %q", state.PetData["raza"])
	}
	base := "/presupuesto/wizard/" + state.SessionID

	// Submitting early is rejected; the step counter has not reached the end.
	w = doJSON(router, http.MethodPost, base+"/submit", auth, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("early submit status = %d, want 409", w.Code)
	}

	fields := []dto.UpdateFieldRequest{
		{Record: wizard.RecordPet, Field: "tipo", Value: "Perro"},
		{Record: wizard.RecordPet, Field: "nombre", Value: "Max"},
		{Record: wizard.RecordPet, Field: "edad", Value: "3"},
		{Record: wizard.RecordOwner, Field: "nombre", Value: "Ana"},
		{Record: wizard.RecordOwner, Field: "email", Value: "ana@x.com"},
		{Record: wizard.RecordOwner, Field: "telefono", Value: "123"},
	}
	for _, f := range fields {
		if w := doJSON(router, http.MethodPut, base+"/field", auth, f); w.Code != http.StatusOK {
			t.Fatalf("field %s status = %d", f.Field, w.Code)
		}
	}
	if w := doJSON(router, http.MethodPost, base+"/plan", auth, dto.SelectPlanRequest{Plan: "completo", Precio: 49.9}); w.Code != http.StatusOK {
		t.Fatalf("plan status = %d", w.Code)
	}

	for i := 0; i < wizard.TotalSteps-1; i++ {
		if w := doJSON(router, http.MethodPost, base+"/next", auth, nil); w.Code != http.StatusOK {
			t.Fatalf("next status = %d", w.Code)
		}
	}

	w = doJSON(router, http.MethodPost, base+"/submit", auth, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("submit status = %d, body %s", w.Code, w.Body.String())
	}
	var created struct {
		PresupuestoID string `json:"presupuesto_id"`
		Redirect      string `json:"redirect"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Redirect != "/confirmacion" {
		t.Errorf("redirect = %q, want /confirmacion", created.Redirect)
	}

	doc, err := st.Get(t.Context(), store.CollectionPresupuestos, created.PresupuestoID)
	if err != nil {
		t.Fatalf("stored presupuesto: %v", err)
	}
	p := model.PresupuestoFromDocument(doc)
	if p.Mascota.Nombre != "Max" || p.Owner.Name != "Ana" || p.Plan != "completo" {
		t.Errorf("stored presupuesto = %+v", p)
	}

	// The session is gone after a successful submit.
	if w := doJSON(router, http.MethodGet, base, auth, nil); w.Code != http.StatusNotFound {
		t.Errorf("state after submit status = %d, want 404", w.Code)
	}
}

func TestWizardBackStopsAtZero(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")
	router := setupWizardRouter(store.NewMemory())
	auth := bearerToken(t, "user")

	w := doJSON(router, http.MethodPost, "/presupuesto/wizard", auth, nil)
	var state dto.WizardStateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &state); err != nil {
		t.Fatalf("decode: %v", err)
	}
	base := "/presupuesto/wizard/" + state.SessionID

	w = doJSON(router, http.MethodPost, base+"/back", auth, nil)
	if err := json.Unmarshal(w.Body.Bytes(), &state); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if state.Step != 0 {
		t.Errorf("step after back from 0 = %d, want 0", state.Step)
	}
}
