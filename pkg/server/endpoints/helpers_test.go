package endpoints

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/doodlesbykumbi/jobtracker/pkg/config"
	"github.com/doodlesbykumbi/jobtracker/pkg/model"
	"github.com/doodlesbykumbi/jobtracker/pkg/server"
	"github.com/doodlesbykumbi/jobtracker/pkg/server/store/storetest"
)

var fixedNow = time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

var (
	alice = &model.User{ID: 1, Username: "alice", Role: model.RoleUser, IsActive: true}
	admin = &model.User{ID: 2, Username: "root", Role: model.RoleAdmin, IsActive: true}
)

type testEnv struct {
	srv    *server.Server
	apps   *storetest.MockApplicationsStore
	users  *storetest.MockUsersStore
	ledger *storetest.MockRefreshTokensStore
	health *storetest.MockHealthStore
	logs   *observer.ObservedLogs
}

func testConfig() *config.Config {
	cfg := config.New()
	cfg.SecretKey = strings.Repeat("s", config.MinSecretKeyLength)
	cfg.TimeZone = "UTC"
	cfg.AuthRateLimit = 0
	return cfg
}

// newTestEnv builds a server on mocked stores with every route registered.
func newTestEnv(t *testing.T, configure ...func(*config.Config)) *testEnv {
	t.Helper()

	cfg := testConfig()
	for _, fn := range configure {
		fn(cfg)
	}

	core, logs := observer.New(zap.DebugLevel)
	env := &testEnv{
		apps:   &storetest.MockApplicationsStore{},
		users:  &storetest.MockUsersStore{},
		ledger: &storetest.MockRefreshTokensStore{},
		health: &storetest.MockHealthStore{},
		logs:   logs,
	}
	env.srv = server.New(cfg, server.Stores{
		Applications:  env.apps,
		Users:         env.users,
		RefreshTokens: env.ledger,
		Health:        env.health,
	}, zap.New(core))
	env.srv.Followup.Now = func() time.Time { return fixedNow }
	RegisterAll(env.srv)

	t.Cleanup(func() {
		env.apps.AssertExpectations(t)
		env.users.AssertExpectations(t)
		env.ledger.AssertExpectations(t)
		env.health.AssertExpectations(t)
	})
	return env
}

// tokenFor issues an access token for u.
func (e *testEnv) tokenFor(t *testing.T, u *model.User) string {
	t.Helper()
	e.ledger.On("SaveRefreshToken", mock.Anything, mock.Anything).Return(nil).Once()
	pair, err := e.srv.Tokens.IssuePair(context.Background(), u)
	require.NoError(t, err)
	return pair.Access
}

func (e *testEnv) do(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(w, req)
	return w
}

// auditEvents counts audit entries with the given message id.
func (e *testEnv) auditEvents(msgid string) int {
	return e.logs.FilterLoggerName("audit").FilterField(zap.String("msgid", msgid)).Len()
}

type errorEnvelope struct {
	Error struct {
		Kind    string              `json:"kind"`
		Message string              `json:"message"`
		Fields  map[string][]string `json:"fields"`
	} `json:"error"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()
	var env errorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}

func ptr[T any](v T) *T {
	return &v
}
