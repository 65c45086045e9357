package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	catalogapp "github.com/atelier/backend/internal/application/catalog"
	documentapp "github.com/atelier/backend/internal/application/document"
	identityapp "github.com/atelier/backend/internal/application/identity"
	libraryapp "github.com/atelier/backend/internal/application/library"
	prescriptionapp "github.com/atelier/backend/internal/application/prescription"
	projectapp "github.com/atelier/backend/internal/application/project"
	"github.com/atelier/backend/internal/infrastructure/auth"
	"github.com/atelier/backend/internal/infrastructure/config"
	"github.com/atelier/backend/internal/infrastructure/persistence"
	"github.com/atelier/backend/internal/infrastructure/storage"
	"github.com/atelier/backend/internal/infrastructure/telemetry"
	"github.com/atelier/backend/internal/interfaces/http/handler"
	"github.com/atelier/backend/internal/interfaces/http/middleware"
	"github.com/atelier/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

type api struct {
	t      *testing.T
	engine *gin.Engine
	db     *persistence.Database
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()

	database, err := persistence.NewDatabase(&config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"}, zap.NewNop(), "silent")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate())
	t.Cleanup(func() { _ = database.Close() })
	db := database.DB

	root := t.TempDir()
	store, err := storage.NewLocalObjectStorage(root, "")
	require.NoError(t, err)

	log := zap.NewNop()
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "router-test-secret-0123456789abcdef",
		RefreshSecret:          "router-test-refresh-0123456789abcdef",
		Issuer:                 "atelier-test",
		AccessTokenExpiration:  time.Hour,
		RefreshTokenExpiration: 2 * time.Hour,
	})
	blacklist := auth.NewInMemoryTokenBlacklist()

	users := persistence.NewGormUserRepository(db)
	hierarchy := persistence.NewGormHierarchyRepository(db)
	prescriptionCategories := persistence.NewGormPrescriptionCategoryRepository(db)
	projects := persistence.NewGormProjectRepository(db)
	spaces := persistence.NewGormSpaceRepository(db)
	clients := persistence.NewGormClientRepository(db)
	resources := persistence.NewGormResourceRepository(db)
	prescriptions := persistence.NewGormPrescriptionRepository(db)
	documents := persistence.NewGormDocumentRepository(db)
	access := projectapp.NewAccessChecker(projects, clients)
	txScope := persistence.NewGormTransactionScope(db)

	documentService := documentapp.NewDocumentService(documentapp.Deps{
		Documents:     documents,
		Spaces:        spaces,
		Prescriptions: prescriptions,
		Access:        access,
		Store:         store,
		Logger:        log,
	})
	prescriptionService := prescriptionapp.NewPrescriptionService(prescriptionapp.Deps{
		TxScope:       txScope,
		Prescriptions: prescriptions,
		Approvals:     persistence.NewGormApprovalRepository(db),
		Comments:      persistence.NewGormCommentRepository(db),
		Spaces:        spaces,
		Resources:     resources,
		Categories:    prescriptionCategories,
		Access:        access,
		Store:         store,
		Logger:        log,
	})
	projectService := projectapp.NewProjectService(projectapp.ProjectServiceDeps{
		TxScope:  txScope,
		Projects: projects,
		Spaces:   spaces,
		Clients:  clients,
		Users:    users,
		Access:   access,
		Store:    store,
		Logger:   log,
	})

	engine := router.NewEngine(router.Options{
		Logger:        log,
		ServiceName:   "atelier-test",
		Metrics:       telemetry.NewHTTPMetrics("atelier"),
		CORS:          middleware.CORSConfig{AllowOrigins: []string{"https://app.atelier.test"}},
		Security:      middleware.DefaultSecurityConfig(),
		MaxBodySize:   1 << 20,
		MaxUploadSize: 55 << 20,
		JWT:           jwtService,
		Blacklist:     blacklist,
		UploadsRoot:   root,
		Swagger:       middleware.SwaggerConfig{Enabled: true, RequireAuth: true},
	}, router.Handlers{
		Auth:         handler.NewAuthHandler(identityapp.NewAuthService(users, jwtService, blacklist, log), log),
		Category:     handler.NewCategoryHandler(catalogapp.NewCategoryService(hierarchy, prescriptionCategories, log), log),
		Library:      handler.NewLibraryHandler(libraryapp.NewResourceService(resources, persistence.NewGormFavoriteRepository(db), hierarchy, prescriptionCategories, log), log),
		Project:      handler.NewProjectHandler(projectService, log),
		Prescription: handler.NewPrescriptionHandler(prescriptionService, documentService, log),
		Document:     handler.NewDocumentHandler(documentService, log),
		System:       handler.NewSystemHandler(database, "test", log),
	})
	return &api{t: t, engine: engine, db: database}
}

func (a *api) do(method, path, token string, body any) *httptest.ResponseRecorder {
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
	return a.send(req, token)
}

func (a *api) send(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

// multipartRequest builds a form with an optional data field and one PDF per name
func multipartRequest(t *testing.T, method, path string, fields map[string]string, fileField string, names ...string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, name := range names {
		part, err := mw.CreateFormFile(fileField, name)
		require.NoError(t, err)
		_, err = part.Write(pdfBytes)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type authBody struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         struct {
		ID   uuid.UUID `json:"id"`
		Role string    `json:"role"`
	} `json:"user"`
}

type idBody struct {
	ID uuid.UUID `json:"id"`
}

type projectBody struct {
	ID          uuid.UUID       `json:"id"`
	BudgetSpent decimal.Decimal `json:"budgetSpent"`
	Access      string          `json:"access"`
}

type prescriptionBody struct {
	ID         uuid.UUID        `json:"id"`
	SpaceID    *uuid.UUID       `json:"spaceId"`
	Name       string           `json:"name"`
	Status     string           `json:"status"`
	TotalPrice *decimal.Decimal `json:"totalPrice"`
	Documents  []struct {
		URL      string `json:"url"`
		Category string `json:"category"`
	} `json:"documents"`
}

type listBody[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (a *api) register(email, role string) authBody {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": email, "name": strings.Split(email, "@")[0], "password": "motdepasse-solide", "role": role,
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[authBody](a.t, w)
}

func (a *api) budgetSpent(token string, projectID uuid.UUID) decimal.Decimal {
	a.t.Helper()
	w := a.do(http.MethodGet, "/api/v1/projects/"+projectID.String(), token, nil)
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	return decode[projectBody](a.t, w).BudgetSpent
}

func TestAPI_Operational(t *testing.T) {
	a := newAPI(t)

	w := a.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"up"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = a.do(http.MethodGet, "/api/v1/projects", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", decode[errorBody](t, w).Code)

	w = a.do(http.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decode[errorBody](t, w).Code)

	w = a.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `atelier_http_requests_total{method="GET",route="/health",status="200"} 1`)

	require.NoError(t, a.db.Close())
	w = a.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAPI_Docs(t *testing.T) {
	a := newAPI(t)

	w := a.do(http.MethodGet, "/swagger/doc.json", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	designer := a.register("docs@atelier.test", "DESIGNER").AccessToken
	w = a.do(http.MethodGet, "/swagger/doc.json", designer, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var doc struct {
		Info     struct{ Title string } `json:"info"`
		BasePath string                 `json:"basePath"`
		Paths    map[string]any         `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "Atelier API", doc.Info.Title)
	assert.Equal(t, "/api/v1", doc.BasePath)
	assert.Contains(t, doc.Paths, "/projects/{id}/prescriptions")
	assert.Contains(t, doc.Paths, "/library/resources/import")
}

func TestAPI_Auth(t *testing.T) {
	a := newAPI(t)
	session := a.register("emma@atelier.test", "DESIGNER")
	assert.Equal(t, "DESIGNER", session.User.Role)

	w := a.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": "EMMA@atelier.test", "name": "Emma", "password": "motdepasse-solide",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = a.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": "boss@atelier.test", "name": "Boss", "password": "motdepasse-solide", "role": "ADMIN",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, "admins are never self-registered")

	w = a.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "emma@atelier.test", "password": "mauvais-mdp"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "emma@atelier.test", "password": "motdepasse-solide"})
	require.Equal(t, http.StatusOK, w.Code)
	login := decode[authBody](t, w)

	w = a.do(http.MethodGet, "/api/v1/auth/me", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, session.User.ID, decode[idBody](t, w).ID)

	w = a.do(http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{"refreshToken": login.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode[authBody](t, w).AccessToken)

	w = a.do(http.MethodPost, "/api/v1/auth/logout", login.AccessToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = a.do(http.MethodGet, "/api/v1/auth/me", login.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "TOKEN_REVOKED", decode[errorBody](t, w).Code)
}

func TestAPI_ProjectLifecycle(t *testing.T) {
	a := newAPI(t)
	designer := a.register("emma@atelier.test", "DESIGNER").AccessToken
	client := a.register("noe@client.test", "CLIENT").AccessToken

	// catalog writes are reserved to designers
	w := a.do(http.MethodPost, "/api/v1/categories", client, map[string]string{"name": "Mobilier"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = a.do(http.MethodPost, "/api/v1/categories", designer, map[string]string{"name": "Mobilier", "color": "#a1b2c3"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	categoryID := decode[idBody](t, w).ID

	w = a.do(http.MethodPost, "/api/v1/projects", client, map[string]any{"name": "Refus"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = a.do(http.MethodPost, "/api/v1/projects", designer, map[string]any{"name": "Sans client"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode[errorBody](t, w).Code)
	w = a.do(http.MethodPost, "/api/v1/projects", designer, map[string]any{
		"name": "Duplex Lyon", "clientName": "Mme Faure", "budgetTotal": "15000",
		"address": map[string]string{"street": "3 rue Mercière", "postalCode": "69002", "city": "Lyon"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	projectID := decode[projectBody](t, w).ID
	projectPath := "/api/v1/projects/" + projectID.String()

	w = a.do(http.MethodPost, projectPath+"/spaces", designer, map[string]any{"name": "Salon", "type": "SALON", "surfaceM2": "32.5"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	spaceID := decode[idBody](t, w).ID

	w = a.do(http.MethodPost, projectPath+"/prescriptions", designer, map[string]any{
		"categoryId": categoryID, "spaceId": spaceID, "name": "Canapé 3 places", "quantity": 2, "unitPrice": "1200.50",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[prescriptionBody](t, w)
	require.NotNil(t, created.TotalPrice)
	assert.True(t, created.TotalPrice.Equal(decimal.RequireFromString("2401")))
	assert.True(t, a.budgetSpent(designer, projectID).Equal(decimal.RequireFromString("2401")))
	prescriptionPath := "/api/v1/prescriptions/" + created.ID.String()

	// strangers see nothing until invited
	w = a.do(http.MethodGet, projectPath, client, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = a.do(http.MethodPost, projectPath+"/clients", designer, map[string]string{"email": "noe@client.test"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = a.do(http.MethodGet, "/api/v1/projects", client, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[listBody[projectBody]](t, w).Total)

	t.Run("members read but do not write", func(t *testing.T) {
		w := a.do(http.MethodGet, prescriptionPath, client, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		w = a.do(http.MethodPatch, prescriptionPath, client, map[string]any{"quantity": 5})
		assert.Equal(t, http.StatusForbidden, w.Code)
		w = a.do(http.MethodDelete, projectPath, client, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("approvals and comments", func(t *testing.T) {
		w := a.do(http.MethodPut, prescriptionPath+"/approval", designer, map[string]string{"status": "APPROVED"})
		assert.Equal(t, http.StatusForbidden, w.Code, "only invited clients approve")

		w = a.do(http.MethodPut, prescriptionPath+"/approval", client, map[string]string{"status": "REJECTED", "comment": "Trop cher"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		w = a.do(http.MethodPut, prescriptionPath+"/approval", client, map[string]string{"status": "APPROVED"})
		require.Equal(t, http.StatusOK, w.Code)

		w = a.do(http.MethodGet, prescriptionPath+"/approvals", designer, nil)
		require.Equal(t, http.StatusOK, w.Code)
		approvals := decode[listBody[struct {
			Status string `json:"status"`
		}]](t, w)
		require.Len(t, approvals.Items, 1)
		assert.Equal(t, "APPROVED", approvals.Items[0].Status)

		w = a.do(http.MethodPost, prescriptionPath+"/comments", client, map[string]string{"content": "Et en velours ?"})
		require.Equal(t, http.StatusCreated, w.Code)
		w = a.do(http.MethodPost, prescriptionPath+"/comments", designer, map[string]string{"content": ""})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		w = a.do(http.MethodGet, prescriptionPath+"/comments", designer, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, decode[listBody[idBody]](t, w).Total)
	})

	t.Run("json patch unassigns and reprices", func(t *testing.T) {
		w := a.do(http.MethodPatch, prescriptionPath, designer, map[string]any{"spaceId": nil, "quantity": 1})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		p := decode[prescriptionBody](t, w)
		assert.Nil(t, p.SpaceID)
		assert.True(t, p.TotalPrice.Equal(decimal.RequireFromString("1200.50")))
		assert.True(t, a.budgetSpent(designer, projectID).Equal(decimal.RequireFromString("1200.50")))

		w = a.do(http.MethodGet, projectPath+"/prescriptions?unassigned=true", designer, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, decode[listBody[idBody]](t, w).Total)
		w = a.do(http.MethodGet, projectPath+"/prescriptions?status=bogus", designer, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("illegal status transition", func(t *testing.T) {
		w := a.do(http.MethodPatch, prescriptionPath, designer, map[string]any{"status": "LIVRE"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_TRANSITION", decode[errorBody](t, w).Code)
	})

	t.Run("multipart patch attaches documents", func(t *testing.T) {
		req := multipartRequest(t, http.MethodPatch, prescriptionPath,
			map[string]string{"data": `{"status":"VALIDE"}`, "category": "FICHE_TECHNIQUE"},
			"files", "fiche.pdf")
		w := a.send(req, designer)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		p := decode[prescriptionBody](t, w)
		assert.Equal(t, "VALIDE", p.Status)
		require.Len(t, p.Documents, 1)
		assert.Equal(t, "FICHE_TECHNIQUE", p.Documents[0].Category)
		assert.True(t, strings.HasPrefix(p.Documents[0].URL, "/uploads/prescriptions/"+created.ID.String()+"/"))

		w = a.do(http.MethodGet, p.Documents[0].URL, "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, pdfBytes, w.Body.Bytes())

		w = a.do(http.MethodGet, prescriptionPath+"/documents", client, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, decode[listBody[idBody]](t, w).Total)
	})

	t.Run("project and space files", func(t *testing.T) {
		w := a.send(multipartRequest(t, http.MethodPost, projectPath+"/files", map[string]string{"category": "PLAN"}, "files", "rdc.pdf", "etage.pdf"), designer)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		uploaded := decode[listBody[idBody]](t, w)
		assert.Len(t, uploaded.Items, 2)

		w = a.send(multipartRequest(t, http.MethodPost, "/api/v1/spaces/"+spaceID.String()+"/files", nil, "file", "salon.pdf"), designer)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		w = a.send(multipartRequest(t, http.MethodPost, projectPath+"/files", nil, "file"), designer)
		assert.Equal(t, http.StatusBadRequest, w.Code, "no file part")

		w = a.do(http.MethodDelete, "/api/v1/files/"+uploaded.Items[0].ID.String(), client, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
		w = a.do(http.MethodDelete, "/api/v1/files/"+uploaded.Items[0].ID.String(), designer, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = a.do(http.MethodGet, projectPath+"/files", designer, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, decode[listBody[idBody]](t, w).Total)
	})

	t.Run("budget recalculation finds no drift", func(t *testing.T) {
		w := a.do(http.MethodPost, projectPath+"/budget/recalculate", designer, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		report := decode[struct {
			Drift        decimal.Decimal `json:"drift"`
			Recalculated decimal.Decimal `json:"recalculated"`
		}](t, w)
		assert.True(t, report.Drift.IsZero())
		assert.True(t, report.Recalculated.Equal(decimal.RequireFromString("1200.50")))
	})

	t.Run("delete releases the budget", func(t *testing.T) {
		w := a.do(http.MethodDelete, prescriptionPath, designer, nil)
		require.Equal(t, http.StatusNoContent, w.Code)
		assert.True(t, a.budgetSpent(designer, projectID).IsZero())
		w = a.do(http.MethodGet, prescriptionPath, designer, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("project delete cascades", func(t *testing.T) {
		w := a.do(http.MethodDelete, projectPath, designer, nil)
		require.Equal(t, http.StatusNoContent, w.Code)
		w = a.do(http.MethodGet, projectPath, designer, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAPI_Library(t *testing.T) {
	a := newAPI(t)
	designer := a.register("emma@atelier.test", "DESIGNER").AccessToken
	client := a.register("noe@client.test", "CLIENT").AccessToken

	w := a.do(http.MethodPost, "/api/v1/categories", designer, map[string]string{"name": "Luminaires"})
	require.Equal(t, http.StatusCreated, w.Code)
	categoryID := decode[idBody](t, w).ID

	body := map[string]any{"name": "Suspension Arco", "brand": "Flos", "price": "1890", "categoryId": categoryID, "tags": []string{"laiton"}}
	w = a.do(http.MethodPost, "/api/v1/library/resources", client, body)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = a.do(http.MethodPost, "/api/v1/library/resources", designer, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resourceID := decode[idBody](t, w).ID

	w = a.do(http.MethodGet, "/api/v1/library/resources?search=arco&pageSize=10", client, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[listBody[idBody]](t, w).Total)

	w = a.do(http.MethodGet, "/api/v1/library/resources?categoryId=nope", client, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodPost, "/api/v1/library/favorites", client, map[string]any{"resourceId": resourceID, "status": "J_ADORE"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = a.do(http.MethodPost, "/api/v1/library/favorites", client, map[string]any{"resourceId": resourceID, "status": "BOF"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodGet, "/api/v1/library/favorites?status=J_ADORE", client, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[listBody[struct {
		ResourceID uuid.UUID `json:"resourceId"`
	}]](t, w).Total)

	w = a.do(http.MethodDelete, "/api/v1/library/favorites/"+resourceID.String(), client, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = a.do(http.MethodGet, "/api/v1/library/favorites", client, nil)
	assert.Equal(t, 0, decode[listBody[idBody]](t, w).Total)

	// a prescription can be cloned from the library
	w = a.do(http.MethodPost, "/api/v1/projects", designer, map[string]any{"name": "Loft", "clientName": "M. Girard"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	projectID := decode[idBody](t, w).ID
	w = a.do(http.MethodPost, "/api/v1/projects/"+projectID.String()+"/prescriptions", designer, map[string]any{"resourceId": resourceID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Suspension Arco", decode[prescriptionBody](t, w).Name)

	w = a.do(http.MethodDelete, "/api/v1/library/resources/"+resourceID.String(), designer, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
