// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

//go:build integration

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/canonical/project-hub/internal/audit"
	"github.com/canonical/project-hub/internal/config"
	"github.com/canonical/project-hub/internal/credentials"
	"github.com/canonical/project-hub/internal/db"
	"github.com/canonical/project-hub/internal/events"
	"github.com/canonical/project-hub/internal/logging"
	"github.com/canonical/project-hub/internal/monitoring"
	"github.com/canonical/project-hub/internal/storage"
	"github.com/canonical/project-hub/internal/tracing"
)

type harness struct {
	t        *testing.T
	server   *httptest.Server
	dbClient *db.DBClient
}

type reply struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setupHarness(t *testing.T) *harness {
	t.Helper()

	ctx := context.Background()

	if _, err := testcontainers.ProviderDocker.GetProvider(); err != nil {
		t.Skip("Docker not available, skipping integration tests")
	}

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("projecthub"),
		postgres.WithUsername("projecthub"),
		postgres.WithPassword("projecthub"),
		postgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = container.Terminate(cleanupCtx)
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	specs := &config.EnvSpec{
		DSN:                dsn,
		DBMaxConns:         10,
		DBMinConns:         1,
		DBMaxConnLifetime:  time.Hour,
		DBMaxConnIdleTime:  time.Minute,
		JWTSecret:          "integration-secret",
		JWTIssuer:          serviceName,
		JWTTTL:             time.Hour,
		AuthMode:           "hmac",
		BcryptCost:         4,
		DefaultMaxUsers:    3,
		DefaultMaxProjects: 5,
	}

	logger := logging.NewNoopLogger()
	monitor := monitoring.NewNoopMonitor(serviceName, logger)
	tracer := tracing.NewNoopTracer()

	dbClient, err := openDB(specs, tracer, monitor, logger)
	require.NoError(t, err)
	t.Cleanup(dbClient.Close)

	provider, err := newMigrationProvider(dbClient.DB(), true)
	require.NoError(t, err)
	_, err = provider.Up(ctx)
	require.NoError(t, err)

	handler, err := newHandler(ctx, specs, dbClient, events.NewNoopPublisher(), tracer, monitor, logger)
	require.NoError(t, err)

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &harness{t: t, server: server, dbClient: dbClient}
}

// send is safe to use from several goroutines.
func (h *harness) send(method, path, token string, body any) (int, *reply, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return 0, nil, err
		}
	}

	req, err := http.NewRequest(method, h.server.URL+path, &buf)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := h.server.Client().Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	r := new(reply)
	if err := json.NewDecoder(resp.Body).Decode(r); err != nil {
		return resp.StatusCode, nil, err
	}

	return resp.StatusCode, r, nil
}

func (h *harness) call(method, path, token string, body any) (int, *reply) {
	h.t.Helper()

	code, r, err := h.send(method, path, token, body)
	require.NoError(h.t, err)

	return code, r
}

// race fires n requests at once, body builds the payload of request i.
// It returns how many requests ended with each status code.
func (h *harness) race(n int, method, path, token string, body func(i int) any) map[int]int {
	h.t.Helper()

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		codes = make(map[int]int)
		errs  []error
		start = make(chan struct{})
	)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start

			code, _, err := h.send(method, path, token, body(i))

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			codes[code]++
		}(i)
	}

	close(start)
	wg.Wait()

	require.Empty(h.t, errs)
	return codes
}

func (h *harness) decode(r *reply, out any) {
	h.t.Helper()
	require.NoError(h.t, json.Unmarshal(r.Data, out))
}

type authSession struct {
	Token string `json:"token"`
	User  struct {
		ID string `json:"id"`
	} `json:"user"`
	Tenant struct {
		ID string `json:"id"`
	} `json:"tenant"`
}

func (h *harness) register(name, subdomain, email string) authSession {
	h.t.Helper()

	code, r := h.call(http.MethodPost, "/api/auth/register-tenant", "", map[string]any{
		"name":      name,
		"subdomain": subdomain,
		"admin":     map[string]any{"email": email, "password": "secret123"},
	})
	require.Equal(h.t, http.StatusCreated, code, r.Message)

	var s authSession
	h.decode(r, &s)
	return s
}

func (h *harness) login(email, subdomain string) authSession {
	h.t.Helper()

	code, r := h.call(http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":     email,
		"password":  "secret123",
		"subdomain": subdomain,
	})
	require.Equal(h.t, http.StatusOK, code, r.Message)

	var s authSession
	h.decode(r, &s)
	return s
}

func (h *harness) rowCount(query string, args ...any) int {
	h.t.Helper()

	var n int
	require.NoError(h.t, h.dbClient.DB().QueryRow(query, args...).Scan(&n))
	return n
}

func (h *harness) auditCount(table, action string) int {
	h.t.Helper()

	var n int
	err := h.dbClient.DB().QueryRow(
		"SELECT COUNT(*) FROM audit_logs WHERE table_name = $1 AND action = $2", table, action,
	).Scan(&n)
	require.NoError(h.t, err)
	return n
}

func TestIntegration_ProjectHub(t *testing.T) {
	h := setupHarness(t)

	t.Run("health reports ok once migrated", func(t *testing.T) {
		code, r := h.call(http.MethodGet, "/api/health", "", nil)
		assert.Equal(t, http.StatusOK, code)
		assert.True(t, r.Success)
	})

	acme := h.register("Acme", "acme", "admin@acme.test")
	globex := h.register("Globex", "globex", "admin@globex.test")

	t.Run("registration is audited", func(t *testing.T) {
		assert.Equal(t, 2, h.auditCount("tenants", "CREATE"))
		assert.Equal(t, 2, h.auditCount("users", "CREATE"))
	})

	t.Run("duplicate subdomain conflicts", func(t *testing.T) {
		code, _ := h.call(http.MethodPost, "/api/auth/register-tenant", "", map[string]any{
			"name":      "Acme again",
			"subdomain": "acme",
			"admin":     map[string]any{"email": "other@acme.test", "password": "secret123"},
		})
		assert.Equal(t, http.StatusConflict, code)
		assert.Equal(t, 2, h.auditCount("tenants", "CREATE"))
		assert.Equal(t, 2, h.auditCount("users", "CREATE"))
		assert.Equal(t, 2, h.rowCount("SELECT COUNT(*) FROM tenants"))
		assert.Equal(t, 2, h.rowCount("SELECT COUNT(*) FROM users"))
		assert.Zero(t, h.rowCount("SELECT COUNT(*) FROM users WHERE email = $1", "other@acme.test"))
	})

	t.Run("protected routes need a token", func(t *testing.T) {
		code, _ := h.call(http.MethodGet, "/api/auth/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, code)
	})

	var memberID string
	t.Run("tenant admin adds a member", func(t *testing.T) {
		code, r := h.call(http.MethodPost, "/api/tenants/"+acme.Tenant.ID+"/users", acme.Token, map[string]any{
			"email":    "dev@acme.test",
			"password": "secret123",
			"role":     "user",
		})
		require.Equal(t, http.StatusCreated, code, r.Message)

		var u struct {
			ID string `json:"id"`
		}
		h.decode(r, &u)
		memberID = u.ID
	})

	t.Run("user quota is enforced", func(t *testing.T) {
		code, r := h.call(http.MethodPost, "/api/tenants/"+acme.Tenant.ID+"/users", acme.Token, map[string]any{
			"email": "third@acme.test", "password": "secret123",
		})
		require.Equal(t, http.StatusCreated, code, r.Message)

		code, r = h.call(http.MethodPost, "/api/tenants/"+acme.Tenant.ID+"/users", acme.Token, map[string]any{
			"email": "fourth@acme.test", "password": "secret123",
		})
		assert.Equal(t, http.StatusConflict, code)
		assert.Equal(t, "Max users limit reached for this tenant", r.Message)
	})

	member := h.login("dev@acme.test", "acme")

	t.Run("login with the wrong password fails", func(t *testing.T) {
		code, r := h.call(http.MethodPost, "/api/auth/login", "", map[string]any{
			"email": "dev@acme.test", "password": "nope", "subdomain": "acme",
		})
		assert.Equal(t, http.StatusUnauthorized, code)
		assert.Equal(t, "Invalid email or password", r.Message)
	})

	var projectID string
	t.Run("member creates a project", func(t *testing.T) {
		code, r := h.call(http.MethodPost, "/api/projects", member.Token, map[string]any{"name": "Rocket"})
		require.Equal(t, http.StatusCreated, code, r.Message)

		var p struct {
			ID        string `json:"id"`
			Status    string `json:"status"`
			TaskCount int64  `json:"task_count"`
		}
		h.decode(r, &p)
		assert.Equal(t, "active", p.Status)
		assert.Zero(t, p.TaskCount)
		projectID = p.ID
	})

	var taskIDs []string
	t.Run("member creates tasks", func(t *testing.T) {
		for i, body := range []map[string]any{
			{"title": "Design hull", "priority": "high", "assignedTo": memberID},
			{"title": "Order fuel", "description": "liquid oxygen"},
			{"title": "Paint logo", "status": "completed", "priority": "low"},
		} {
			code, r := h.call(http.MethodPost, "/api/projects/"+projectID+"/tasks", member.Token, body)
			require.Equal(t, http.StatusCreated, code, "task %d: %s", i, r.Message)

			var task struct {
				ID string `json:"id"`
			}
			h.decode(r, &task)
			taskIDs = append(taskIDs, task.ID)
		}
	})

	t.Run("task list filters and paginates", func(t *testing.T) {
		tests := []struct {
			query string
			total int64
			page  int
		}{
			{query: "", total: 3, page: 3},
			{query: "?status=completed", total: 1, page: 1},
			{query: "?priority=high", total: 1, page: 1},
			{query: "?assignedTo=" + memberID, total: 1, page: 1},
			{query: "?assignedTo=", total: 2, page: 2},
			{query: "?search=OXYGEN", total: 1, page: 1},
			{query: "?page=2&pageSize=2", total: 3, page: 1},
		}

		for _, tt := range tests {
			code, r := h.call(http.MethodGet, "/api/projects/"+projectID+"/tasks"+tt.query, member.Token, nil)
			require.Equal(t, http.StatusOK, code, "%s: %s", tt.query, r.Message)

			var page struct {
				Data  []json.RawMessage `json:"data"`
				Total int64             `json:"total"`
			}
			h.decode(r, &page)
			assert.Equal(t, tt.total, page.Total, tt.query)
			assert.Len(t, page.Data, tt.page, tt.query)
		}
	})

	t.Run("invalid filter is rejected", func(t *testing.T) {
		code, _ := h.call(http.MethodGet, "/api/projects/"+projectID+"/tasks?status=done", member.Token, nil)
		assert.Equal(t, http.StatusBadRequest, code)

		code, r := h.call(http.MethodGet, "/api/projects/"+projectID+"/tasks?assignedTo=not-a-uuid", member.Token, nil)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "Invalid assignedTo", r.Message)
	})

	t.Run("status update is audited and reflected in counts", func(t *testing.T) {
		before := h.auditCount("tasks", "UPDATE")

		code, r := h.call(http.MethodPatch, "/api/tasks/"+taskIDs[0]+"/status", member.Token, map[string]any{"status": "completed"})
		require.Equal(t, http.StatusOK, code, r.Message)
		assert.Equal(t, before+1, h.auditCount("tasks", "UPDATE"))

		code, r = h.call(http.MethodGet, "/api/projects/"+projectID, member.Token, nil)
		require.Equal(t, http.StatusOK, code)

		var p struct {
			TaskCount          int64 `json:"task_count"`
			CompletedTaskCount int64 `json:"completed_task_count"`
		}
		h.decode(r, &p)
		assert.Equal(t, int64(3), p.TaskCount)
		assert.Equal(t, int64(2), p.CompletedTaskCount)
	})

	t.Run("other tenants cannot reach the project", func(t *testing.T) {
		code, r := h.call(http.MethodGet, "/api/projects/"+projectID, globex.Token, nil)
		assert.Equal(t, http.StatusForbidden, code)
		assert.Equal(t, "Forbidden: tenant mismatch", r.Message)

		code, _ = h.call(http.MethodDelete, "/api/tasks/"+taskIDs[1], globex.Token, nil)
		assert.Equal(t, http.StatusForbidden, code)
	})

	t.Run("cross tenant assignment is rejected", func(t *testing.T) {
		code, r := h.call(http.MethodPost, "/api/projects/"+projectID+"/tasks", member.Token, map[string]any{
			"title": "Spy", "assignedTo": globex.User.ID,
		})
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "Assigned user must belong to the same tenant", r.Message)
	})

	t.Run("unknown ids are not found", func(t *testing.T) {
		code, _ := h.call(http.MethodGet, "/api/projects/not-a-uuid", member.Token, nil)
		assert.Equal(t, http.StatusNotFound, code)
	})

	t.Run("super admin raises the project ceiling", func(t *testing.T) {
		s := storage.NewStorage(h.dbClient, tracing.NewNoopTracer(), monitoring.NewNoopMonitor(serviceName, logging.NewNoopLogger()), logging.NewNoopLogger())
		logger := logging.NewNoopLogger()
		transactor := audit.NewTransactor(h.dbClient, s, events.NewNoopPublisher(), tracing.NewNoopTracer(), monitoring.NewNoopMonitor(serviceName, logger), logger)

		_, err := createSuperAdmin(context.Background(), s, transactor, credentials.NewHasher(4), "root@platform.test", "secret123")
		require.NoError(t, err)

		root := h.login("root@platform.test", "")

		code, r := h.call(http.MethodPut, "/api/tenants/"+acme.Tenant.ID, root.Token, map[string]any{"max_projects": 1})
		require.Equal(t, http.StatusOK, code, r.Message)

		code, r = h.call(http.MethodPost, "/api/projects", member.Token, map[string]any{"name": "Second"})
		assert.Equal(t, http.StatusConflict, code)
		assert.Equal(t, "Max projects limit reached for this tenant", r.Message)

		code, _ = h.call(http.MethodPut, "/api/tenants/"+acme.Tenant.ID, acme.Token, map[string]any{"max_projects": 10})
		assert.Equal(t, http.StatusForbidden, code)
	})

	t.Run("super admin listing users of a malformed tenant id gets nothing", func(t *testing.T) {
		root := h.login("root@platform.test", "")

		code, r := h.call(http.MethodGet, "/api/tenants/not-a-uuid/users", root.Token, nil)
		require.Equal(t, http.StatusOK, code, r.Message)

		var users []json.RawMessage
		h.decode(r, &users)
		assert.Empty(t, users)
	})

	t.Run("deleting the project removes its tasks", func(t *testing.T) {
		code, r := h.call(http.MethodDelete, "/api/projects/"+projectID, acme.Token, nil)
		require.Equal(t, http.StatusOK, code, r.Message)

		code, _ = h.call(http.MethodDelete, "/api/tasks/"+taskIDs[1], acme.Token, nil)
		assert.Equal(t, http.StatusNotFound, code)
		assert.Equal(t, 1, h.auditCount("projects", "DELETE"))
	})

	t.Run("audit rows carry the tenant", func(t *testing.T) {
		var n int
		err := h.dbClient.DB().QueryRow(
			"SELECT COUNT(*) FROM audit_logs WHERE tenant_id = $1", acme.Tenant.ID,
		).Scan(&n)
		require.NoError(t, err)
		assert.Greater(t, n, 0, fmt.Sprintf("no audit rows for tenant %s", acme.Tenant.ID))
	})
}

func TestIntegration_ConcurrentQuota(t *testing.T) {
	h := setupHarness(t)

	initech := h.register("Initech", "initech", "admin@initech.test")

	t.Run("project ceiling holds under concurrent creates", func(t *testing.T) {
		codes := h.race(12, http.MethodPost, "/api/projects", initech.Token, func(i int) any {
			return map[string]any{"name": fmt.Sprintf("Project %d", i)}
		})

		assert.Equal(t, 5, codes[http.StatusCreated])
		assert.Equal(t, 7, codes[http.StatusConflict])
		assert.Equal(t, 5, h.rowCount("SELECT COUNT(*) FROM projects WHERE tenant_id = $1", initech.Tenant.ID))
		assert.Equal(t, 5, h.rowCount(
			"SELECT COUNT(*) FROM audit_logs WHERE tenant_id = $1 AND table_name = 'projects' AND action = 'CREATE'",
			initech.Tenant.ID,
		))
	})

	t.Run("user ceiling holds under concurrent creates", func(t *testing.T) {
		codes := h.race(8, http.MethodPost, "/api/tenants/"+initech.Tenant.ID+"/users", initech.Token, func(i int) any {
			return map[string]any{"email": fmt.Sprintf("dev%d@initech.test", i), "password": "secret123"}
		})

		// the admin already holds one of the three seats
		assert.Equal(t, 2, codes[http.StatusCreated])
		assert.Equal(t, 6, codes[http.StatusConflict])
		assert.Equal(t, 3, h.rowCount("SELECT COUNT(*) FROM users WHERE tenant_id = $1", initech.Tenant.ID))
	})
}
