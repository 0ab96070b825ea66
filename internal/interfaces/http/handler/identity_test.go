package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	identityapp "github.com/ledger/backend/internal/application/identity"
	"github.com/ledger/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) roleID(name string) uuid.UUID {
	e.t.Helper()
	w := e.do(http.MethodGet, "/roles?search="+name, nil)
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())
	for _, r := range decodeData[[]identityapp.RoleResponse](e.t, w) {
		if r.Name == name {
			return r.ID
		}
	}
	e.t.Fatalf("role %q not seeded", name)
	return uuid.Nil
}

func (e *testEnv) createUser(email string, roleID uuid.UUID) identityapp.UserResponse {
	e.t.Helper()
	w := e.do(http.MethodPost, "/users", map[string]any{
		"name":     "Field Collector",
		"email":    email,
		"password": collectorPassword,
		"role_id":  roleID,
	})
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	return decodeData[identityapp.UserResponse](e.t, w)
}

func TestPermissions_CollectorRole(t *testing.T) {
	env := newTestEnv(t)
	supplier := env.createSupplier("SUP-001")
	product := env.createProduct("MILK", "litre")
	env.createRate(product.ID, "litre", "2", "2026-01-01", "")

	env.createUser("collector@ledger.test", env.roleID("collector"))
	token := env.login("collector@ledger.test", collectorPassword).AccessToken

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"read suppliers", http.MethodGet, "/suppliers", nil, http.StatusOK},
		{"create supplier", http.MethodPost, "/suppliers", map[string]any{"code": "X", "name": "X"}, http.StatusForbidden},
		{"edit rate", http.MethodPost, "/rates", map[string]any{
			"product_id": product.ID, "unit": "litre", "rate": "5", "effective_from": "2027-01-01",
		}, http.StatusForbidden},
		{"record collection", http.MethodPost, "/collections", map[string]any{
			"supplier_id": supplier.ID, "product_id": product.ID,
			"collection_date": "2026-02-01", "quantity": "3", "unit": "litre",
		}, http.StatusCreated},
		{"read summary", http.MethodGet, "/reports/summary", nil, http.StatusOK},
		{"export summary", http.MethodGet, "/reports/summary/pdf", nil, http.StatusForbidden},
		{"list users", http.MethodGet, "/users", nil, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.request(tt.method, tt.path, tt.body, token)

			assert.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.status == http.StatusForbidden {
				assert.Equal(t, dto.ErrCodeForbidden, decodeResponse(t, w).Code)
			}
		})
	}
}

func TestRoleHandler_Permissions(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/roles/permissions", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	perms := decodeData[[]struct {
		Code string `json:"code"`
	}](t, w)
	codes := make([]string, len(perms))
	for i, p := range perms {
		codes[i] = p.Code
	}
	assert.Contains(t, codes, "collection:create")
	assert.Contains(t, codes, "report:export")
}

func TestRoleHandler_Lifecycle(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/roles", map[string]any{
		"name":        "auditor",
		"permissions": []string{"report:read", "report:export"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	role := decodeData[identityapp.RoleResponse](t, w)
	assert.False(t, role.IsSystem)

	t.Run("unknown permission rejected", func(t *testing.T) {
		w := env.do(http.MethodPost, "/roles", map[string]any{
			"name":        "wizard",
			"permissions": []string{"spell:cast"},
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	})

	t.Run("in use", func(t *testing.T) {
		user := env.createUser("auditor@ledger.test", role.ID)

		w := env.do(http.MethodDelete, "/roles/"+role.ID.String(), nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "ROLE_IN_USE", decodeResponse(t, w).Code)

		w = env.do(http.MethodDelete, "/users/"+user.ID.String(), nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("delete once unused", func(t *testing.T) {
		w := env.do(http.MethodDelete, fmt.Sprintf("/roles/%s?version=%d", role.ID, role.Version), nil)
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("system role protected", func(t *testing.T) {
		w := env.do(http.MethodDelete, "/roles/"+env.roleID("admin").String(), nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "SYSTEM_ROLE", decodeResponse(t, w).Code)
	})
}

func TestUserHandler_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	collectorRole := env.roleID("collector")

	user := env.createUser("field@ledger.test", collectorRole)
	assert.True(t, user.IsActive)

	t.Run("duplicate email", func(t *testing.T) {
		w := env.do(http.MethodPost, "/users", map[string]any{
			"name": "Other", "email": "field@ledger.test", "password": collectorPassword, "role_id": collectorRole,
		})
		assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	})

	t.Run("unknown role", func(t *testing.T) {
		w := env.do(http.MethodPost, "/users", map[string]any{
			"name": "Other", "email": "other@ledger.test", "password": collectorPassword, "role_id": uuid.New(),
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "INVALID_REFERENCE", decodeResponse(t, w).Code)
	})

	t.Run("password hash is never returned", func(t *testing.T) {
		w := env.do(http.MethodGet, "/users/"+user.ID.String(), nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), "password")
	})

	t.Run("deactivation ends sessions and blocks login", func(t *testing.T) {
		token := env.login("field@ledger.test", collectorPassword).AccessToken
		require.Equal(t, http.StatusOK, env.request(http.MethodGet, "/auth/me", nil, token).Code)

		w := env.do(http.MethodPut, "/users/"+user.ID.String(), map[string]any{
			"is_active": false,
			"version":   user.Version,
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		assert.Equal(t, http.StatusUnauthorized, env.request(http.MethodGet, "/auth/me", nil, token).Code)

		w = env.request(http.MethodPost, "/auth/login",
			map[string]string{"email": "field@ledger.test", "password": collectorPassword}, "")
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "USER_INACTIVE", decodeResponse(t, w).Code)
	})

	t.Run("cannot delete self", func(t *testing.T) {
		admin := env.login(adminEmail, adminPassword).User

		w := env.do(http.MethodDelete, "/users/"+admin.ID.String(), nil)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "CANNOT_DELETE_SELF", decodeResponse(t, w).Code)
	})
}
