package main

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/farxc/portal_tramites/internal/auth"
	"github.com/farxc/portal_tramites/internal/importer"
	"github.com/farxc/portal_tramites/internal/logger"
	"github.com/farxc/portal_tramites/internal/relay"
	"github.com/farxc/portal_tramites/internal/response"
	"github.com/farxc/portal_tramites/internal/store"
	"github.com/farxc/portal_tramites/internal/store/memory"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type testEnv struct {
	app     *application
	handler http.Handler
	db      *memory.DB
	storage *store.Storage
	tokens  map[string]string
	ids     map[string]uuid.UUID
}

type stubPinger struct{ err error }

func (p stubPinger) PingContext(context.Context) error { return p.err }

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := memory.New()
	storage := memory.NewStorage(db)
	appLogger := logger.Nop()
	verifier := auth.NewVerifier(testSecret)

	app := &application{
		config:    config{corsOrigins: []string{"http://localhost:5173"}},
		store:     *storage,
		appLogger: appLogger,
		verifier:  verifier,
		relay: relay.New(storage.WebhookConfig, http.DefaultClient, appLogger, "portal_tramites",
			relay.WithBackoff(time.Millisecond, 2*time.Millisecond)),
		importer: importer.New(storage, appLogger),
		db:       stubPinger{},
	}

	env := &testEnv{
		app:     app,
		handler: app.mount(),
		db:      db,
		storage: storage,
		tokens:  make(map[string]string),
		ids:     make(map[string]uuid.UUID),
	}

	for _, p := range []struct {
		name   string
		role   string
		activo bool
	}{
		{"admin", store.RoleAdmin, true},
		{"supervisor", store.RoleSupervisor, true},
		{"funcionario", store.RoleFuncionario, true},
		{"inactivo", store.RoleAdmin, false},
	} {
		id := uuid.New()
		db.PutProfile(store.Profile{ID: id, Email: p.name + "@alcaldia.gov.co", FullName: p.name, Role: p.role, Activo: p.activo})
		token, err := verifier.Sign(id, p.name+"@alcaldia.gov.co", time.Hour)
		require.NoError(t, err)
		env.tokens[p.name] = token
		env.ids[p.name] = id
	}
	return env
}

func (e *testEnv) do(t *testing.T, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if _, isString := body.(string); body != nil && !isString {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set("Authorization", "Bearer "+e.tokens[user])
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (e *testEnv) seedDependencia(t *testing.T, d store.Dependencia) store.Dependencia {
	t.Helper()
	if d.Tipo == "" {
		d.Tipo = store.TipoDependencia
	}
	d.Activo = true
	require.NoError(t, e.storage.Dependencias.Create(context.Background(), &d))
	return d
}

func (e *testEnv) seedTramite(t *testing.T, tr store.Tramite) store.Tramite {
	t.Helper()
	require.NoError(t, e.storage.Tramites.Create(context.Background(), &tr))
	return tr
}

func TestHealth(t *testing.T) {
	t.Run("database up", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(t, http.MethodGet, "/v1/health", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decode[healthStatus](t, rec)
		require.Equal(t, "available", body.Status)
		require.Equal(t, "up", body.Database)
		require.Equal(t, version, body.Version)
	})

	t.Run("database down", func(t *testing.T) {
		env := newTestEnv(t)
		env.app.db = stubPinger{err: errors.New("connection refused")}

		rec := env.do(t, http.MethodGet, "/v1/health", "", nil)
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)

		body := decode[healthStatus](t, rec)
		require.Equal(t, "unavailable", body.Status)
		require.Equal(t, "down", body.Database)
	})
}

func TestAdminAuthentication(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		user   string
		path   string
		status int
	}{
		{name: "no token", user: "", path: "/v1/admin/dependencias", status: http.StatusUnauthorized},
		{name: "inactive profile", user: "inactivo", path: "/v1/admin/dependencias", status: http.StatusForbidden},
		{name: "funcionario cannot manage dependencias", user: "funcionario", path: "/v1/admin/dependencias", status: http.StatusForbidden},
		{name: "funcionario manages tramites", user: "funcionario", path: "/v1/admin/tramites", status: http.StatusOK},
		{name: "funcionario cannot import", user: "funcionario", path: "/v1/admin/tramites/import/history", status: http.StatusForbidden},
		{name: "supervisor cannot see webhook", user: "supervisor", path: "/v1/admin/webhook", status: http.StatusForbidden},
		{name: "admin sees webhook", user: "admin", path: "/v1/admin/webhook", status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, tt.path, tt.user, nil)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}

	t.Run("unknown user", func(t *testing.T) {
		token, err := auth.NewVerifier(testSecret).Sign(uuid.New(), "", time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/v1/admin/tramites", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestPublicTramites(t *testing.T) {
	env := newTestEnv(t)
	dep := env.seedDependencia(t, store.Dependencia{Codigo: "100", Nombre: "Secretaría de Hacienda"})
	si := "Sí"

	active := env.seedTramite(t, store.Tramite{NombreTramite: "Impuesto predial", Categoria: "Impuestos", DependenciaID: dep.ID, RequierePago: &si, Activo: true})
	env.seedTramite(t, store.Tramite{NombreTramite: "Paz y salvo", Categoria: "Certificados", DependenciaID: dep.ID, Activo: true})
	hidden := env.seedTramite(t, store.Tramite{NombreTramite: "Retirado", Categoria: "Viejos", DependenciaID: dep.ID})

	t.Run("list only active", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/tramites", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode[GetTramitesResponse](t, rec)
		require.Len(t, body.Data, 2)
		require.Equal(t, 50, body.Limit)
	})

	t.Run("filter by pago", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/tramites?pago=S%C3%AD", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode[GetTramitesResponse](t, rec)
		require.Len(t, body.Data, 1)
		require.Equal(t, active.ID, body.Data[0].ID)
	})

	t.Run("invalid pago", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/tramites?pago=si", "", nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("inactive is hidden", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/tramites/"+itoa(hidden.ID), "", nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Equal(t, "not found", decode[map[string]string](t, rec)["error"])
	})

	t.Run("categorias skip inactive", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/tramites/categorias", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, []string{"Certificados", "Impuestos"}, decode[GetCategoriasResponse](t, rec).Data)
	})
}

func TestAdminTramites(t *testing.T) {
	env := newTestEnv(t)
	dep := env.seedDependencia(t, store.Dependencia{Codigo: "100", Nombre: "Secretaría de Hacienda"})

	rec := env.do(t, http.MethodPost, "/v1/admin/tramites", "funcionario", map[string]any{
		"nombre_tramite": "Licencia de construcción",
		"dependencia_id": dep.ID,
		"requiere_pago":  "No",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[GetTramiteResponse](t, rec).Data
	require.True(t, created.Activo)
	require.Equal(t, "No", *created.RequierePago)
	require.Equal(t, env.ids["funcionario"], created.CreatedBy.UUID)

	rec = env.do(t, http.MethodPost, "/v1/admin/tramites", "funcionario", map[string]any{
		"nombre_tramite": "Multa",
		"dependencia_id": dep.ID,
		"requiere_pago":  "SI",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/v1/admin/tramites", "funcionario", map[string]any{
		"nombre_tramite": "Huérfano",
		"dependencia_id": 999,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPatch, "/v1/admin/tramites/"+itoa(created.ID)+"/estado", "funcionario", map[string]any{"activo": false})
	require.Equal(t, http.StatusOK, rec.Code)

	got, err := env.storage.Tramites.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.False(t, got.Activo)

	rec = env.do(t, http.MethodPut, "/v1/admin/tramites/999", "funcionario", map[string]any{
		"nombre_tramite": "Nada",
		"dependencia_id": dep.ID,
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminDependencias(t *testing.T) {
	env := newTestEnv(t)

	create := func(body map[string]any) *httptest.ResponseRecorder {
		return env.do(t, http.MethodPost, "/v1/admin/dependencias", "supervisor", body)
	}

	rec := create(map[string]any{"codigo": "100", "nombre": "Secretaría de Hacienda", "tipo": "dependencia"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	hacienda := decode[GetDependenciaResponse](t, rec).Data
	require.Zero(t, hacienda.Nivel)

	rec = create(map[string]any{"codigo": "200", "nombre": "Secretaría de Gobierno", "tipo": "dependencia"})
	require.Equal(t, http.StatusCreated, rec.Code)
	gobierno := decode[GetDependenciaResponse](t, rec).Data

	rec = create(map[string]any{"codigo": "110", "nombre": "Impuestos", "tipo": "subdependencia", "dependencia_padre_id": hacienda.ID})
	require.Equal(t, http.StatusCreated, rec.Code)
	impuestos := decode[GetDependenciaResponse](t, rec).Data
	require.Equal(t, 1, impuestos.Nivel)

	rec = create(map[string]any{"codigo": "111", "nombre": "Cobro coactivo", "tipo": "subdependencia", "dependencia_padre_id": impuestos.ID})
	require.Equal(t, http.StatusCreated, rec.Code)
	coactivo := decode[GetDependenciaResponse](t, rec).Data
	require.Equal(t, 2, coactivo.Nivel)

	t.Run("validation", func(t *testing.T) {
		require.Equal(t, http.StatusConflict, create(map[string]any{"codigo": "100", "nombre": "Otra", "tipo": "dependencia"}).Code)
		require.Equal(t, http.StatusBadRequest, create(map[string]any{"codigo": "300", "nombre": "Sin padre", "tipo": "subdependencia"}).Code)
		require.Equal(t, http.StatusBadRequest, create(map[string]any{"codigo": "301", "nombre": "Tipo raro", "tipo": "oficina"}).Code)
		require.Equal(t, http.StatusBadRequest, create(map[string]any{"codigo": "", "nombre": "Sin código", "tipo": "dependencia"}).Code)
	})

	t.Run("cycle rejected", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/v1/admin/dependencias/"+itoa(hacienda.ID), "admin", map[string]any{
			"codigo": "100", "nombre": "Secretaría de Hacienda", "tipo": "dependencia", "dependencia_padre_id": coactivo.ID,
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("move relevels descendants", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/v1/admin/dependencias/"+itoa(hacienda.ID), "admin", map[string]any{
			"codigo": "100", "nombre": "Secretaría de Hacienda", "tipo": "subdependencia", "dependencia_padre_id": gobierno.ID,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		moved, err := env.storage.Dependencias.GetByID(context.Background(), hacienda.ID)
		require.NoError(t, err)
		require.Equal(t, 1, moved.Nivel)

		child, err := env.storage.Dependencias.GetByID(context.Background(), coactivo.ID)
		require.NoError(t, err)
		require.Equal(t, 3, child.Nivel)
	})

	t.Run("deactivation blocked while referenced", func(t *testing.T) {
		env.seedTramite(t, store.Tramite{NombreTramite: "Predial", DependenciaID: gobierno.ID, SubdependenciaID: &coactivo.ID, Activo: true})

		rec := env.do(t, http.MethodPatch, "/v1/admin/dependencias/"+itoa(coactivo.ID)+"/estado", "admin", map[string]any{"activo": false})
		require.Equal(t, http.StatusConflict, rec.Code)

		rec = env.do(t, http.MethodPatch, "/v1/admin/dependencias/"+itoa(hacienda.ID)+"/estado", "admin", map[string]any{"activo": false})
		require.Equal(t, http.StatusOK, rec.Code)

		rec = env.do(t, http.MethodPatch, "/v1/admin/dependencias/999/estado", "admin", map[string]any{"activo": true})
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("public tree hides inactive branches", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/dependencias/arbol", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Data []struct {
				Codigo   string            `json:"codigo"`
				Children []json.RawMessage `json:"children"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Data, 1)
		require.Equal(t, "200", body.Data[0].Codigo)
		require.Empty(t, body.Data[0].Children)
	})
}

func TestExportDependencias(t *testing.T) {
	env := newTestEnv(t)
	root := env.seedDependencia(t, store.Dependencia{Codigo: "100", Nombre: "Secretaría de Hacienda"})
	env.seedDependencia(t, store.Dependencia{Codigo: "110", Nombre: "Impuestos", Tipo: store.TipoSubdependencia, DependenciaPadreID: &root.ID, Nivel: 1})

	t.Run("csv", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/admin/dependencias/export?format=csv", "supervisor", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Header().Get("Content-Disposition"), ".csv")

		lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
		require.Len(t, lines, 3)
		require.True(t, strings.HasPrefix(lines[0], `"CODIGO SUBDEPENDENCIA"`), lines[0])
	})

	t.Run("json", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/admin/dependencias/export?format=json", "supervisor", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var tree []map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tree))
		require.Len(t, tree, 1)
		require.Len(t, tree[0]["children"], 1)
	})

	t.Run("unknown format", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/admin/dependencias/export?format=pdf", "supervisor", nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestExportIsCompressed(t *testing.T) {
	env := newTestEnv(t)
	root := env.seedDependencia(t, store.Dependencia{Codigo: "100", Nombre: "Secretaría de Hacienda"})
	for i := 0; i < 40; i++ {
		env.seedDependencia(t, store.Dependencia{
			Codigo:             "1" + strconv.Itoa(100+i),
			Nombre:             "Oficina de atención número " + strconv.Itoa(i),
			Tipo:               store.TipoSubdependencia,
			DependenciaPadreID: &root.ID,
			Nivel:              1,
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/admin/dependencias/export?format=excel", nil)
	req.Header.Set("Authorization", "Bearer "+env.tokens["admin"])
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	plain, err := io.ReadAll(zr)
	require.NoError(t, err)
	require.Contains(t, string(plain), "Oficina de atención número 39")
}

func TestImportTramites(t *testing.T) {
	env := newTestEnv(t)
	env.seedDependencia(t, store.Dependencia{Codigo: "100", Nombre: "Secretaría de Hacienda"})

	row := `"1","Predial","","Impuestos","Virtual","","Secretaría de Hacienda","","Sí","","","","",""`
	csv := strings.Join(importer.Header, ",") + "\n" + row + "\n"

	rec := env.do(t, http.MethodPost, "/v1/admin/tramites/import?filename=carga.csv", "supervisor", csv)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	report := decode[ImportResponse](t, rec).Data
	require.Equal(t, store.StatusSuccess, report.Status)
	require.Equal(t, int64(1), report.Inserted)

	imported, err := env.storage.Tramites.List(context.Background(), store.TramiteFilter{})
	require.NoError(t, err)
	require.Len(t, imported, 1)
	require.Equal(t, uuid.NullUUID{UUID: env.ids["supervisor"], Valid: true}, imported[0].CreatedBy)

	rec = env.do(t, http.MethodPost, "/v1/admin/tramites/import", "supervisor", csv+"\"2\",\"corta\"\n")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, store.StatusPartial, decode[ImportResponse](t, rec).Data.Status)

	rec = env.do(t, http.MethodPost, "/v1/admin/tramites/import", "supervisor", strings.Join(importer.Header, ",")+"\n")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.do(t, http.MethodGet, "/v1/admin/tramites/import/history", "admin", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	history := decode[GetImportHistoryResponse](t, rec).Data
	require.Len(t, history, 3)
	require.Equal(t, store.StatusFailure, history[0].Status)
	require.Equal(t, "carga.csv", history[2].SourceFile)

	rec = env.do(t, http.MethodGet, "/v1/admin/tramites/import/template", "admin", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.HasPrefix(rec.Body.String(), `"id","nombre_tramite"`))
}

func TestChat(t *testing.T) {
	env := newTestEnv(t)

	t.Run("not configured", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/chat/config", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.False(t, decode[response.APIResponse[chatConfig]](t, rec).Data.Available)

		rec = env.do(t, http.MethodPost, "/v1/chat", "", map[string]any{"message": "hola"})
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		body := decode[chatFailure](t, rec)
		require.Equal(t, relay.CodeNotConfigured, body.Code)
	})

	t.Run("empty message", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/chat", "", map[string]any{"message": "   "})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("relayed", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"text":"El predial se paga en línea"}`))
		}))
		defer srv.Close()

		rec := env.do(t, http.MethodPut, "/v1/admin/webhook", "admin", map[string]any{
			"url": srv.URL, "activo": true, "timeout_seconds": 5, "max_retries": 1,
			"auth_token": "secreto", "greeting": "¡Hola!",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		view := decode[GetWebhookResponse](t, rec).Data
		require.True(t, view.HasAuthToken)
		require.NotContains(t, rec.Body.String(), "secreto")

		rec = env.do(t, http.MethodGet, "/v1/chat/config", "", nil)
		cfg := decode[response.APIResponse[chatConfig]](t, rec).Data
		require.True(t, cfg.Available)
		require.Equal(t, "¡Hola!", cfg.Greeting)

		rec = env.do(t, http.MethodPost, "/v1/chat", "", map[string]any{"message": "¿Cómo pago el predial?"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		reply := decode[relay.Reply](t, rec)
		require.Equal(t, "El predial se paga en línea", reply.Response)
		require.Equal(t, 1, reply.AttemptCount)
	})

	t.Run("webhook validation", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/v1/admin/webhook", "admin", map[string]any{"url": "ftp://x", "activo": true})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		rec = env.do(t, http.MethodPut, "/v1/admin/webhook", "admin", map[string]any{"activo": true})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUsuarios(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/admin/usuarios", "admin", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[GetUsuariosResponse](t, rec).Data, 4)

	path := "/v1/admin/usuarios/" + env.ids["funcionario"].String() + "/rol"
	rec = env.do(t, http.MethodPatch, path, "admin", map[string]any{"role": "supervisor"})
	require.Equal(t, http.StatusOK, rec.Code)

	p, err := env.storage.Profiles.GetByID(context.Background(), env.ids["funcionario"])
	require.NoError(t, err)
	require.Equal(t, store.RoleSupervisor, p.Role)

	rec = env.do(t, http.MethodPatch, path, "admin", map[string]any{"role": "root"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	self := "/v1/admin/usuarios/" + env.ids["admin"].String() + "/rol"
	rec = env.do(t, http.MethodPatch, self, "admin", map[string]any{"role": "funcionario"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPatch, "/v1/admin/usuarios/"+uuid.NewString()+"/rol", "admin", map[string]any{"role": "supervisor"})
	require.Equal(t, http.StatusNotFound, rec.Code)
}
