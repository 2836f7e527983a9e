package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"taskboard/internal/database"
	"taskboard/internal/domain/comment"
	"taskboard/internal/domain/notification"
	"taskboard/internal/domain/project"
	"taskboard/internal/domain/task"
	"taskboard/internal/domain/user"
	"taskboard/internal/middleware"
	jwtsvc "taskboard/internal/pkg/jwt"
	"taskboard/internal/realtime"
)

type E2ETestSuite struct {
	router     *gin.Engine
	db         *gorm.DB
	hub        *realtime.Hub
	jwtService *jwtsvc.Service
}

type TestResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func setupTestSuite(t *testing.T) *E2ETestSuite {
	t.Helper()

	dsn := fmt.Sprintf("file:e2e_%s?mode=memory&cache=shared", t.Name())
	db, err := database.Connect(dsn)
	require.NoError(t, err, "Failed to connect to test database")

	require.NoError(t, db.AutoMigrate(
		&user.User{},
		&project.Project{},
		&project.Member{},
		&task.Task{},
		&comment.Comment{},
		&notification.Notification{},
	), "Failed to migrate test database")

	log := zerolog.Nop()
	jwtService := jwtsvc.New("test_secret_key_32_characters_min", 24*time.Hour)

	hub := realtime.NewHub(log)

	notifRepo := notification.NewRepository(db)
	notifService := notification.NewService(notifRepo, hub, log)
	hub.SetNotificationSink(notifService)

	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo, jwtService)
	userHandler := user.NewHandler(userService)

	projectRepo := project.NewRepository(db)
	projectService := project.NewService(projectRepo, hub, notifService)
	projectHandler := project.NewHandler(projectService)

	taskRepo := task.NewRepository(db)
	taskService := task.NewService(taskRepo, hub, notifService)
	taskHandler := task.NewHandler(taskService)

	commentRepo := comment.NewRepository(db)
	commentService := comment.NewService(commentRepo, taskRepo, hub, notifService)
	commentHandler := comment.NewHandler(commentService)

	notifHandler := notification.NewHandler(notifService)
	wsHandler := realtime.NewWSHandler(hub, jwtService, log)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())

	wsHandler.RegisterRoutes(r)

	v1 := r.Group("/api/v1")
	{
		user.RegisterRoutes(v1, userHandler)

		protected := v1.Group("/")
		protected.Use(middleware.Auth(jwtService))
		{
			user.RegisterProtectedRoutes(protected, userHandler)
			project.RegisterRoutes(protected, projectHandler)
			task.RegisterRoutes(protected, taskHandler)
			comment.RegisterRoutes(protected, commentHandler)
			notification.RegisterRoutes(protected, notifHandler)
		}
	}

	return &E2ETestSuite{
		router:     r,
		db:         db,
		hub:        hub,
		jwtService: jwtService,
	}
}

func (s *E2ETestSuite) makeRequest(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var bodyBytes []byte
	if body != nil {
		var err error
		bodyBytes, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) *TestResponse {
	t.Helper()
	var resp TestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp),
		"Failed to parse response. Status: %d, Body: %s", w.Code, w.Body.String())
	return &resp
}

func decodeData(t *testing.T, resp *TestResponse, out interface{}) {
	t.Helper()
	require.NotNil(t, resp.Data, "expected data in response")
	require.NoError(t, json.Unmarshal(resp.Data, out))
}

// registerUser creates a user through the public API and returns its id
// and a valid bearer token.
func (s *E2ETestSuite) registerUser(t *testing.T, email, name string) (int64, string) {
	t.Helper()

	w := s.makeRequest(t, http.MethodPost, "/api/v1/auth/register", map[string]interface{}{
		"email":    email,
		"name":     name,
		"password": "password123",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, "register failed: %s", w.Body.String())

	var auth struct {
		User  user.User `json:"user"`
		Token string    `json:"token"`
	}
	decodeData(t, parseResponse(t, w), &auth)
	require.NotZero(t, auth.User.ID)
	require.NotEmpty(t, auth.Token)
	return auth.User.ID, auth.Token
}

func (s *E2ETestSuite) createNotification(t *testing.T, token, typ, message string, userID int64) notification.Notification {
	t.Helper()

	w := s.makeRequest(t, http.MethodPost, "/api/v1/notifications", map[string]interface{}{
		"type":    typ,
		"message": message,
		"userId":  userID,
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, "create notification failed: %s", w.Body.String())

	var n notification.Notification
	decodeData(t, parseResponse(t, w), &n)
	return n
}

func (s *E2ETestSuite) listNotifications(t *testing.T, token, query string) notification.ListResponse {
	t.Helper()

	w := s.makeRequest(t, http.MethodGet, "/api/v1/notifications"+query, nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	var list notification.ListResponse
	decodeData(t, parseResponse(t, w), &list)
	return list
}

func TestAuthFlow(t *testing.T) {
	s := setupTestSuite(t)

	_, token := s.registerUser(t, "alice@test.com", "Alice")

	// Duplicate email is rejected
	w := s.makeRequest(t, http.MethodPost, "/api/v1/auth/register", map[string]interface{}{
		"email":    "alice@test.com",
		"name":     "Alice Again",
		"password": "password123",
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	// Wrong password
	w = s.makeRequest(t, http.MethodPost, "/api/v1/auth/login", map[string]interface{}{
		"email":    "alice@test.com",
		"password": "wrong-password",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	resp := parseResponse(t, w)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)

	// Correct login
	w = s.makeRequest(t, http.MethodPost, "/api/v1/auth/login", map[string]interface{}{
		"email":    "alice@test.com",
		"password": "password123",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)

	// Authenticated profile
	w = s.makeRequest(t, http.MethodGet, "/api/v1/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var me user.User
	decodeData(t, parseResponse(t, w), &me)
	assert.Equal(t, "alice@test.com", me.Email)

	// No token
	w = s.makeRequest(t, http.MethodGet, "/api/v1/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestNotificationLifecycle(t *testing.T) {
	s := setupTestSuite(t)
	userID, token := s.registerUser(t, "alice@test.com", "Alice")

	for i := 1; i <= 15; i++ {
		s.createNotification(t, token, "info", fmt.Sprintf("notification %d", i), userID)
	}

	// Default page is the 10 newest
	list := s.listNotifications(t, token, "")
	assert.Len(t, list.Notifications, 10)
	assert.Equal(t, int64(15), list.Total)
	assert.Equal(t, int64(15), list.UnreadCount)
	assert.Equal(t, "notification 15", list.Notifications[0].Message)
	assert.Equal(t, "notification 6", list.Notifications[9].Message)

	// Explicit limit
	list = s.listNotifications(t, token, "?limit=3")
	assert.Len(t, list.Notifications, 3)

	// Mark one read
	target := list.Notifications[0]
	w := s.makeRequest(t, http.MethodPut, "/api/v1/notifications", map[string]interface{}{
		"id":   target.ID,
		"read": true,
	}, token)
	require.Equal(t, http.StatusOK, w.Code)
	var updated notification.Notification
	decodeData(t, parseResponse(t, w), &updated)
	assert.True(t, updated.Read)

	// Marking again is a no-op, not an error
	w = s.makeRequest(t, http.MethodPut, "/api/v1/notifications", map[string]interface{}{
		"id": target.ID,
	}, token)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.makeRequest(t, http.MethodGet, "/api/v1/notifications/unread-count", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var unread notification.UnreadCountResponse
	decodeData(t, parseResponse(t, w), &unread)
	assert.Equal(t, int64(14), unread.UnreadCount)

	// Unread-only listing excludes the one we read
	list = s.listNotifications(t, token, "?unreadOnly=true")
	assert.Len(t, list.Notifications, 14)
	for _, n := range list.Notifications {
		assert.False(t, n.Read)
	}

	// Read-all reports how many rows it touched
	w = s.makeRequest(t, http.MethodPost, "/api/v1/notifications/read-all", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var readAll notification.MarkAllReadResponse
	decodeData(t, parseResponse(t, w), &readAll)
	assert.Equal(t, int64(14), readAll.Updated)

	w = s.makeRequest(t, http.MethodGet, "/api/v1/notifications/unread-count", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, parseResponse(t, w), &unread)
	assert.Equal(t, int64(0), unread.UnreadCount)

	// Hard delete
	w = s.makeRequest(t, http.MethodDelete, fmt.Sprintf("/api/v1/notifications?id=%d", target.ID), nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.makeRequest(t, http.MethodDelete, fmt.Sprintf("/api/v1/notifications?id=%d", target.ID), nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.makeRequest(t, http.MethodDelete, "/api/v1/notifications?id=abc", nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown id on mark-read
	w = s.makeRequest(t, http.MethodPut, "/api/v1/notifications", map[string]interface{}{
		"id": 99999,
	}, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNotificationValidation(t *testing.T) {
	s := setupTestSuite(t)
	userID, token := s.registerUser(t, "alice@test.com", "Alice")

	w := s.makeRequest(t, http.MethodPost, "/api/v1/notifications", map[string]interface{}{
		"type":    "info",
		"message": "",
		"userId":  userID,
	}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := parseResponse(t, w)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)

	w = s.makeRequest(t, http.MethodPost, "/api/v1/notifications", nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNotificationsScopedPerUser(t *testing.T) {
	s := setupTestSuite(t)
	aliceID, aliceToken := s.registerUser(t, "alice@test.com", "Alice")
	_, bobToken := s.registerUser(t, "bob@test.com", "Bob")

	s.createNotification(t, aliceToken, "info", "for alice only", aliceID)

	list := s.listNotifications(t, bobToken, "")
	assert.Empty(t, list.Notifications)
	assert.Equal(t, int64(0), list.Total)

	list = s.listNotifications(t, aliceToken, "")
	assert.Len(t, list.Notifications, 1)
}

func TestNotificationMutationsScopedToOwner(t *testing.T) {
	s := setupTestSuite(t)
	aliceID, aliceToken := s.registerUser(t, "alice@test.com", "Alice")
	_, bobToken := s.registerUser(t, "bob@test.com", "Bob")

	n := s.createNotification(t, aliceToken, "info", "alice's eyes only", aliceID)

	// Bob cannot mark Alice's notification read
	w := s.makeRequest(t, http.MethodPut, "/api/v1/notifications", map[string]interface{}{
		"id":   n.ID,
		"read": true,
	}, bobToken)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Bob cannot delete it either
	w = s.makeRequest(t, http.MethodDelete, fmt.Sprintf("/api/v1/notifications?id=%d", n.ID), nil, bobToken)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Alice's notification is untouched
	list := s.listNotifications(t, aliceToken, "")
	require.Len(t, list.Notifications, 1)
	assert.False(t, list.Notifications[0].Read)
	assert.Equal(t, int64(1), list.UnreadCount)

	// The owner can still mutate it
	w = s.makeRequest(t, http.MethodPut, "/api/v1/notifications", map[string]interface{}{
		"id": n.ID,
	}, aliceToken)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.makeRequest(t, http.MethodDelete, fmt.Sprintf("/api/v1/notifications?id=%d", n.ID), nil, aliceToken)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProjectTaskFlowProducesNotifications(t *testing.T) {
	s := setupTestSuite(t)
	_, aliceToken := s.registerUser(t, "alice@test.com", "Alice")
	bobID, bobToken := s.registerUser(t, "bob@test.com", "Bob")

	// Alice creates a project
	w := s.makeRequest(t, http.MethodPost, "/api/v1/projects", map[string]interface{}{
		"name":        "Launch",
		"description": "Ship the thing",
	}, aliceToken)
	require.Equal(t, http.StatusCreated, w.Code, "create project failed: %s", w.Body.String())
	var p project.Project
	decodeData(t, parseResponse(t, w), &p)
	require.NotZero(t, p.ID)

	// Adding Bob as a member notifies him
	w = s.makeRequest(t, http.MethodPost, fmt.Sprintf("/api/v1/projects/%d/members", p.ID), map[string]interface{}{
		"userId": bobID,
	}, aliceToken)
	require.Equal(t, http.StatusCreated, w.Code, "add member failed: %s", w.Body.String())

	list := s.listNotifications(t, bobToken, "")
	require.Len(t, list.Notifications, 1)
	assert.Contains(t, list.Notifications[0].Message, "Launch")

	// Assigning Bob a task notifies him again
	w = s.makeRequest(t, http.MethodPost, fmt.Sprintf("/api/v1/projects/%d/tasks", p.ID), map[string]interface{}{
		"title":      "Write the announcement",
		"assigneeId": bobID,
	}, aliceToken)
	require.Equal(t, http.StatusCreated, w.Code, "create task failed: %s", w.Body.String())
	var tk task.Task
	decodeData(t, parseResponse(t, w), &tk)

	list = s.listNotifications(t, bobToken, "")
	require.Len(t, list.Notifications, 2)
	latest := list.Notifications[0]
	assert.Equal(t, "task", latest.EntityType)
	require.NotNil(t, latest.EntityID)
	assert.Equal(t, tk.ID, *latest.EntityID)

	// Bob finishing the task notifies the creator
	w = s.makeRequest(t, http.MethodPut, fmt.Sprintf("/api/v1/tasks/%d", tk.ID), map[string]interface{}{
		"status": "done",
	}, bobToken)
	require.Equal(t, http.StatusOK, w.Code, "update task failed: %s", w.Body.String())

	aliceList := s.listNotifications(t, aliceToken, "")
	require.NotEmpty(t, aliceList.Notifications)
	assert.Equal(t, "task", aliceList.Notifications[0].EntityType)

	// Bob commenting notifies the task creator too
	aliceBefore := aliceList.Total
	w = s.makeRequest(t, http.MethodPost, fmt.Sprintf("/api/v1/tasks/%d/comments", tk.ID), map[string]interface{}{
		"body": "Done, take a look",
	}, bobToken)
	require.Equal(t, http.StatusCreated, w.Code, "create comment failed: %s", w.Body.String())

	aliceList = s.listNotifications(t, aliceToken, "")
	assert.Equal(t, aliceBefore+1, aliceList.Total)
}

// --- websocket end-to-end ---

func (s *E2ETestSuite) startServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(s.router)
	t.Cleanup(srv.Close)
	return srv
}

func dialWS(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err, "websocket dial failed")
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readWSEnvelope(t *testing.T, conn *websocket.Conn) realtime.Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env realtime.Envelope
	require.NoError(t, conn.ReadJSON(&env), "expected a websocket frame")
	return env
}

func expectWSSilence(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	var env realtime.Envelope
	if err := conn.ReadJSON(&env); err == nil {
		t.Fatalf("expected no frame, got %q", env.Event)
	}
}

func (s *E2ETestSuite) waitForConnections(t *testing.T, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for s.hub.ConnectionCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d hub connections, have %d", want, s.hub.ConnectionCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWebSocketRequiresToken(t *testing.T) {
	s := setupTestSuite(t)
	srv := s.startServer(t)

	resp, err := http.Get(srv.URL + "/ws")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/ws?token=not-a-jwt")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWebSocketNotificationRoutedToTargetUser(t *testing.T) {
	s := setupTestSuite(t)
	srv := s.startServer(t)

	_, aliceToken := s.registerUser(t, "alice@test.com", "Alice")
	bobID, bobToken := s.registerUser(t, "bob@test.com", "Bob")

	aliceConn := dialWS(t, srv, aliceToken)
	bobConn := dialWS(t, srv, bobToken)
	s.waitForConnections(t, 2)

	s.createNotification(t, aliceToken, "info", "hello bob", bobID)

	env := readWSEnvelope(t, bobConn)
	assert.Equal(t, realtime.EventNotification, env.Event)

	var payload realtime.NotificationPayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, "hello bob", payload.Message)
	assert.Equal(t, bobID, payload.UserID)
	assert.NotZero(t, payload.ID)

	// Alice's connection stays quiet
	expectWSSilence(t, aliceConn)

	// And bob got exactly one copy
	expectWSSilence(t, bobConn)
}

func TestWebSocketSendNotificationPersists(t *testing.T) {
	s := setupTestSuite(t)
	srv := s.startServer(t)

	_, bobToken := s.registerUser(t, "bob@test.com", "Bob")
	bobConn := dialWS(t, srv, bobToken)
	s.waitForConnections(t, 1)

	env, err := realtime.NewEnvelope(realtime.EventSendNotification, realtime.NotificationPayload{
		Type:    "info",
		Message: "note to self",
	})
	require.NoError(t, err)
	require.NoError(t, bobConn.WriteJSON(env))

	// Routed back over the socket once persisted
	got := readWSEnvelope(t, bobConn)
	assert.Equal(t, realtime.EventNotification, got.Event)

	var payload realtime.NotificationPayload
	require.NoError(t, json.Unmarshal(got.Payload, &payload))
	assert.Equal(t, "note to self", payload.Message)
	assert.NotZero(t, payload.ID)

	// And visible through the REST surface
	list := s.listNotifications(t, bobToken, "")
	require.Len(t, list.Notifications, 1)
	assert.Equal(t, "note to self", list.Notifications[0].Message)
	assert.False(t, list.Notifications[0].Read)
}

func TestWebSocketBroadcastEventsReachEveryone(t *testing.T) {
	s := setupTestSuite(t)
	srv := s.startServer(t)

	_, aliceToken := s.registerUser(t, "alice@test.com", "Alice")
	_, bobToken := s.registerUser(t, "bob@test.com", "Bob")

	aliceConn := dialWS(t, srv, aliceToken)
	bobConn := dialWS(t, srv, bobToken)
	s.waitForConnections(t, 2)

	w := s.makeRequest(t, http.MethodPost, "/api/v1/projects", map[string]interface{}{
		"name": "Broadcast me",
	}, aliceToken)
	require.Equal(t, http.StatusCreated, w.Code)

	for _, conn := range []*websocket.Conn{aliceConn, bobConn} {
		env := readWSEnvelope(t, conn)
		assert.Equal(t, realtime.EventProjectUpdated, env.Event)

		var ev realtime.ProjectEvent
		require.NoError(t, json.Unmarshal(env.Payload, &ev))
		assert.Equal(t, "created", ev.Action)
	}
}

func TestDisconnectedClientsDoNotBlockSend(t *testing.T) {
	s := setupTestSuite(t)
	userID, token := s.registerUser(t, "alice@test.com", "Alice")

	// Nobody is connected to the hub; sending must still persist.
	n := s.createNotification(t, token, "warning", "offline delivery", userID)
	require.NotZero(t, n.ID)

	list := s.listNotifications(t, token, "")
	require.Len(t, list.Notifications, 1)
	assert.Equal(t, "offline delivery", list.Notifications[0].Message)
	assert.False(t, list.Notifications[0].Read)
}
