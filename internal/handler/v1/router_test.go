package v1

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"carelink-api/internal/config"
	"carelink-api/internal/repository/memory"
	"carelink-api/internal/service"
	"carelink-api/pkg/auth"
	"carelink-api/pkg/metrics"
)

// testCollector is shared across the package's tests; prometheus collectors
// register globally and may only be created once per process.
var testCollector = metrics.NewCollector("carelink_test")

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "carelink-api",
			Environment: "test",
			Version:     "test",
		},
		JWT: config.JWTConfig{
			Secret:          "router-test-secret-0123456789abcd",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 24 * time.Hour,
			Issuer:          "carelink-test",
		},
		CORS: config.CORSConfig{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
			MaxAge:         time.Hour,
		},
		RateLimit: config.RateLimitConfig{
			RequestsPerSecond: 1000,
			BurstSize:         1000,
		},
	}
}

type testAPI struct {
	t      *testing.T
	router *gin.Engine
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	store := memory.NewStore()
	jwtManager := auth.NewJWTManager(cfg.JWT)
	log := zap.NewNop()

	router := NewRouter(RouterDeps{
		Config:         cfg,
		Log:            log,
		JWTManager:     jwtManager,
		Collector:      testCollector,
		AuthService:    service.NewAuthService(store.Users(), jwtManager, log),
		PatientService: service.NewPatientService(store.Patients(), log),
		DoctorService:  service.NewDoctorService(store.Doctors(), log),
		MappingService: service.NewMappingService(store.Mappings(), store.Patients(), store.Doctors(), log),
	})

	return &testAPI{t: t, router: router}
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testAPI) decode(w *httptest.ResponseRecorder) map[string]any {
	a.t.Helper()
	var out map[string]any
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

func (a *testAPI) register(name, email, password string) {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/auth/register/", "", gin.H{
		"name":      name,
		"email":     email,
		"password":  password,
		"password2": password,
	})
	require.Equal(a.t, http.StatusCreated, w.Code, "register: %s", w.Body.String())
}

func (a *testAPI) login(email, password string) string {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/auth/login/", "", gin.H{
		"email":    email,
		"password": password,
	})
	require.Equal(a.t, http.StatusOK, w.Code, "login: %s", w.Body.String())

	tokens := a.decode(w)["tokens"].(map[string]any)
	return tokens["access"].(string)
}

func (a *testAPI) signup(name, email string) string {
	a.t.Helper()
	a.register(name, email, "Secret123!")
	return a.login(email, "Secret123!")
}

func (a *testAPI) createPatient(token string, body gin.H) string {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/patients/", token, body)
	require.Equal(a.t, http.StatusCreated, w.Code, "create patient: %s", w.Body.String())
	return a.decode(w)["id"].(string)
}

func (a *testAPI) createDoctor(token string, body gin.H) string {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/doctors/", token, body)
	require.Equal(a.t, http.StatusCreated, w.Code, "create doctor: %s", w.Body.String())
	return a.decode(w)["id"].(string)
}

func (a *testAPI) createMapping(token, patientID, doctorID string) string {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/mappings/", token, gin.H{
		"patient": patientID,
		"doctor":  doctorID,
	})
	require.Equal(a.t, http.StatusCreated, w.Code, "create mapping: %s", w.Body.String())
	return a.decode(w)["id"].(string)
}

func patientBody() gin.H {
	return gin.H{
		"first_name":    "Jane",
		"last_name":     "Roe",
		"date_of_birth": "1990-05-12",
		"gender":        "female",
		"phone":         "9876543210",
	}
}

func doctorBody() gin.H {
	return gin.H{
		"first_name":          "Gregory",
		"last_name":           "House",
		"specialization":      "Diagnostics",
		"phone":               "5551234567",
		"email":               "house@clinic.test",
		"years_of_experience": 20,
	}
}

func TestHealthz(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", api.decode(w)["status"])
}

func TestAuthEndpoints(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/api/auth/register/", "", gin.H{
		"name":      "alice",
		"email":     "alice@test.com",
		"password":  "Secret123!",
		"password2": "Secret123!",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	body := api.decode(w)
	assert.Equal(t, "User registered successfully", body["message"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "alice@test.com", user["email"])
	assert.Equal(t, "alice", user["name"])

	// Duplicate email.
	w = api.do(http.MethodPost, "/api/auth/register/", "", gin.H{
		"name":      "alice again",
		"email":     "alice@test.com",
		"password":  "Another123!",
		"password2": "Another123!",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, api.decode(w), "email")

	// Mismatched password confirmation.
	w = api.do(http.MethodPost, "/api/auth/register/", "", gin.H{
		"name":      "carol",
		"email":     "carol@test.com",
		"password":  "Secret123!",
		"password2": "Different123!",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	fields := api.decode(w)
	require.Contains(t, fields, "password")
	assert.Contains(t, fields["password"], "Password fields didn't match.")

	// The failed registration must not have created an account.
	w = api.do(http.MethodPost, "/api/auth/login/", "", gin.H{
		"email":    "carol@test.com",
		"password": "Secret123!",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(http.MethodPost, "/api/auth/login/", "", gin.H{
		"email":    "alice@test.com",
		"password": "Secret123!",
	})
	require.Equal(t, http.StatusOK, w.Code)
	body = api.decode(w)
	assert.Equal(t, "Login successful", body["message"])
	tokens := body["tokens"].(map[string]any)
	assert.NotEmpty(t, tokens["access"])
	assert.NotEmpty(t, tokens["refresh"])

	w = api.do(http.MethodPost, "/api/auth/login/", "", gin.H{
		"email":    "alice@test.com",
		"password": "WrongPass!",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", api.decode(w)["error"])

	w = api.do(http.MethodPost, "/api/auth/refresh/", "", gin.H{
		"refresh": tokens["refresh"],
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, api.decode(w)["access"])
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodGet, "/api/patients/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(http.MethodGet, "/api/patients/", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPatientLifecycle(t *testing.T) {
	api := newTestAPI(t)
	token := api.signup("alice", "alice@test.com")

	w := api.do(http.MethodPost, "/api/patients/", token, gin.H{
		"first_name":    "Jane",
		"last_name":     "Roe",
		"date_of_birth": "1990-05-12",
		"gender":        "F",
		"phone":         "(987) 654-3210",
		"address":       "1 Main St",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := api.decode(w)
	assert.Equal(t, "female", created["gender"], "single-letter gender is normalized")
	assert.Equal(t, "alice", created["created_by_name"])
	assert.Equal(t, "1990-05-12", created["date_of_birth"])
	id := created["id"].(string)

	w = api.do(http.MethodGet, "/api/patients/", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := api.decode(w)
	assert.EqualValues(t, 1, list["count"])

	w = api.do(http.MethodGet, "/api/patients/"+id+"/", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Jane", api.decode(w)["first_name"])

	// PUT requires the full field set.
	w = api.do(http.MethodPut, "/api/patients/"+id+"/", token, gin.H{
		"first_name": "Janet",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPut, "/api/patients/"+id+"/", token, gin.H{
		"first_name":    "Janet",
		"last_name":     "Roe",
		"date_of_birth": "1990-05-12",
		"gender":        "female",
		"phone":         "9876543210",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Janet", api.decode(w)["first_name"])

	// PATCH touches only the provided fields.
	w = api.do(http.MethodPatch, "/api/patients/"+id+"/", token, gin.H{
		"medical_history": "penicillin allergy",
	})
	require.Equal(t, http.StatusOK, w.Code)
	patched := api.decode(w)
	assert.Equal(t, "penicillin allergy", patched["medical_history"])
	assert.Equal(t, "Janet", patched["first_name"])

	w = api.do(http.MethodDelete, "/api/patients/"+id+"/", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = api.do(http.MethodGet, "/api/patients/"+id+"/", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPatientValidationResponses(t *testing.T) {
	api := newTestAPI(t)
	token := api.signup("alice", "alice@test.com")

	w := api.do(http.MethodPost, "/api/patients/", token, gin.H{
		"first_name":    "Jane",
		"last_name":     "Roe",
		"date_of_birth": "12/05/1990",
		"gender":        "female",
		"phone":         "9876543210",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	fields := api.decode(w)
	require.Contains(t, fields, "date_of_birth")
	assert.Contains(t, fields["date_of_birth"], "Date has wrong format. Use YYYY-MM-DD.")

	body := patientBody()
	body["gender"] = "unknown"
	body["phone"] = "123"
	w = api.do(http.MethodPost, "/api/patients/", token, body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	fields = api.decode(w)
	assert.Contains(t, fields, "gender")
	assert.Contains(t, fields, "phone")
}

func TestPatientIsolationBetweenAccounts(t *testing.T) {
	api := newTestAPI(t)
	aliceToken := api.signup("alice", "alice@test.com")
	bobToken := api.signup("bob", "bob@test.com")

	id := api.createPatient(aliceToken, patientBody())

	// Reads and partial updates by another account look like a missing record.
	w := api.do(http.MethodGet, "/api/patients/"+id+"/", bobToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodPatch, "/api/patients/"+id+"/", bobToken, gin.H{
		"first_name": "Hijacked",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Deletion by another account is refused outright.
	w = api.do(http.MethodDelete, "/api/patients/"+id+"/", bobToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodGet, "/api/patients/", bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, api.decode(w)["count"])

	// Alice still owns an intact record.
	w = api.do(http.MethodGet, "/api/patients/"+id+"/", aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Jane", api.decode(w)["first_name"])
}

func TestDoctorEndpoints(t *testing.T) {
	api := newTestAPI(t)
	aliceToken := api.signup("alice", "alice@test.com")
	bobToken := api.signup("bob", "bob@test.com")

	body := doctorBody()
	body["years_of_experience"] = 75
	w := api.do(http.MethodPost, "/api/doctors/", aliceToken, body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, api.decode(w), "years_of_experience")

	body = doctorBody()
	delete(body, "years_of_experience")
	w = api.do(http.MethodPost, "/api/doctors/", aliceToken, body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, api.decode(w), "years_of_experience")

	id := api.createDoctor(aliceToken, doctorBody())

	// Doctors are global: both accounts see and may edit them.
	w = api.do(http.MethodGet, "/api/doctors/", bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, api.decode(w)["count"])

	w = api.do(http.MethodPatch, "/api/doctors/"+id+"/", bobToken, gin.H{
		"specialization": "Neurology",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Neurology", api.decode(w)["specialization"])

	w = api.do(http.MethodPatch, "/api/doctors/"+id+"/", bobToken, gin.H{
		"years_of_experience": 80,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, api.decode(w), "years_of_experience")

	w = api.do(http.MethodDelete, "/api/doctors/"+id+"/", bobToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = api.do(http.MethodGet, "/api/doctors/"+id+"/", aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMappingEndpoints(t *testing.T) {
	api := newTestAPI(t)
	aliceToken := api.signup("alice", "alice@test.com")
	bobToken := api.signup("bob", "bob@test.com")

	patientID := api.createPatient(aliceToken, patientBody())
	doctorID := api.createDoctor(aliceToken, doctorBody())

	w := api.do(http.MethodPost, "/api/mappings/", aliceToken, gin.H{
		"patient": patientID,
		"doctor":  doctorID,
		"notes":   "quarterly check-up",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := api.decode(w)
	assert.Equal(t, "Jane Roe", created["patient_name"])
	assert.Equal(t, "Gregory House", created["doctor_name"])
	assert.NotEmpty(t, created["assigned_date"])
	mappingID := created["id"].(string)

	// Same pair again is a duplicate.
	w = api.do(http.MethodPost, "/api/mappings/", aliceToken, gin.H{
		"patient": patientID,
		"doctor":  doctorID,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	fields := api.decode(w)
	require.Contains(t, fields, "doctor")
	assert.Contains(t, fields["doctor"], "This doctor is already assigned to this patient.")

	// Unknown doctor reference is a 404, not a validation error.
	w = api.do(http.MethodPost, "/api/mappings/", aliceToken, gin.H{
		"patient": patientID,
		"doctor":  "7c9e6679-7425-40de-944b-e07fc1f90ae7",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// A malformed id never reaches the service.
	w = api.do(http.MethodPost, "/api/mappings/", aliceToken, gin.H{
		"patient": "not-a-uuid",
		"doctor":  doctorID,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, api.decode(w), "patient")

	// Assigning to someone else's patient fails validation.
	w = api.do(http.MethodPost, "/api/mappings/", bobToken, gin.H{
		"patient": patientID,
		"doctor":  doctorID,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	fields = api.decode(w)
	require.Contains(t, fields, "patient")
	assert.Contains(t, fields["patient"], "You can only assign doctors to your own patients.")

	w = api.do(http.MethodGet, "/api/mappings/"+mappingID+"/", bobToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodPut, "/api/mappings/"+mappingID+"/", aliceToken, gin.H{
		"notes": "follow-up scheduled",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "follow-up scheduled", api.decode(w)["notes"])

	w = api.do(http.MethodDelete, "/api/mappings/"+mappingID+"/", bobToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodDelete, "/api/mappings/"+mappingID+"/", aliceToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = api.do(http.MethodGet, "/api/mappings/", aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, api.decode(w)["count"])
}

func TestMappingsByPatient(t *testing.T) {
	api := newTestAPI(t)
	aliceToken := api.signup("alice", "alice@test.com")
	bobToken := api.signup("bob", "bob@test.com")

	patientID := api.createPatient(aliceToken, patientBody())
	first := api.createDoctor(aliceToken, doctorBody())

	second := doctorBody()
	second["first_name"] = "James"
	second["last_name"] = "Wilson"
	second["email"] = "wilson@clinic.test"
	secondID := api.createDoctor(aliceToken, second)

	api.createMapping(aliceToken, patientID, first)
	api.createMapping(aliceToken, patientID, secondID)

	w := api.do(http.MethodGet, "/api/mappings/patient/"+patientID+"/", aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := api.decode(w)
	p := body["patient"].(map[string]any)
	assert.Equal(t, patientID, p["id"])
	doctors := body["doctors"].([]any)
	assert.Len(t, doctors, 2)

	// Another account cannot enumerate assignments through this endpoint.
	w = api.do(http.MethodGet, "/api/mappings/patient/"+patientID+"/", bobToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeletePatientCascadesToMappings(t *testing.T) {
	api := newTestAPI(t)
	token := api.signup("alice", "alice@test.com")

	patientID := api.createPatient(token, patientBody())
	doctorID := api.createDoctor(token, doctorBody())
	mappingID := api.createMapping(token, patientID, doctorID)

	w := api.do(http.MethodDelete, "/api/patients/"+patientID+"/", token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = api.do(http.MethodGet, "/api/mappings/"+mappingID+"/", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodGet, "/api/mappings/", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, api.decode(w)["count"])
}

func TestListPagination(t *testing.T) {
	api := newTestAPI(t)
	token := api.signup("alice", "alice@test.com")

	for i := 0; i < 3; i++ {
		body := patientBody()
		body["first_name"] = fmt.Sprintf("Patient%d", i)
		api.createPatient(token, body)
	}

	w := api.do(http.MethodGet, "/api/patients/?page=1&page_size=2", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := api.decode(w)
	assert.EqualValues(t, 3, body["count"])
	assert.Len(t, body["results"].([]any), 2)
	assert.NotNil(t, body["next"])
	assert.Nil(t, body["previous"])

	w = api.do(http.MethodGet, "/api/patients/?page=2&page_size=2", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = api.decode(w)
	assert.Len(t, body["results"].([]any), 1)
	assert.Nil(t, body["next"])
	assert.NotNil(t, body["previous"])
}

// An oversized page_size falls back to the default, and the pagination links
// must be built from that effective size so every record stays reachable.
func TestListPaginationClampsOversizedPageSize(t *testing.T) {
	api := newTestAPI(t)
	token := api.signup("alice", "alice@test.com")

	for i := 0; i < 25; i++ {
		body := patientBody()
		body["first_name"] = fmt.Sprintf("Patient%d", i)
		api.createPatient(token, body)
	}

	w := api.do(http.MethodGet, "/api/patients/?page=1&page_size=500", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := api.decode(w)
	assert.EqualValues(t, 25, body["count"])
	assert.Len(t, body["results"].([]any), 20)
	require.NotNil(t, body["next"], "a partial page must link to the rest")

	w = api.do(http.MethodGet, body["next"].(string), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = api.decode(w)
	assert.Len(t, body["results"].([]any), 5)
	assert.Nil(t, body["next"])
	assert.NotNil(t, body["previous"])
}

func TestBindingErrorResponses(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/api/auth/register/", "", gin.H{
		"name":      "alice",
		"email":     "not-an-email",
		"password":  "Secret123!",
		"password2": "Secret123!",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	fields := api.decode(w)
	require.Contains(t, fields, "email")
	assert.Contains(t, fields["email"], "Enter a valid email address.")

	w = api.do(http.MethodPost, "/api/auth/login/", "", gin.H{
		"email": "alice@test.com",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	fields = api.decode(w)
	require.Contains(t, fields, "password")
	assert.Contains(t, fields["password"], "This field is required.")

	// A body that is not JSON at all gets the generic error shape.
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login/", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid request body", api.decode(rec)["error"])
}
