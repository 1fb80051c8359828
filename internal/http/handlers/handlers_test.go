package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"chanchat/internal/chat"
	"chanchat/internal/http/middleware"
	"chanchat/internal/models"
	"chanchat/internal/report"
	"chanchat/internal/ws"
)

const testSecret = "test-secret"

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{}, &models.Channel{}, &models.Message{}, &models.MessageReport{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	hub := ws.NewHub()
	reports := report.NewService(db)
	chatSvc := chat.NewService(db, hub, reports)

	r := gin.New()

	authH := &AuthHandler{DB: db, JWTSecret: testSecret, TokenTTL: time.Hour}
	r.POST("/api/v1/auth/register", authH.Register)
	r.POST("/api/v1/auth/login", authH.Login)

	authed := r.Group("/api/v1")
	authed.Use(middleware.AuthMiddleware(testSecret))

	channelH := &ChannelHandler{Chat: chatSvc}
	authed.POST("/channels", channelH.Create)
	authed.GET("/channels", channelH.List)
	authed.GET("/channels/:id/messages", channelH.ListMessages)

	messageH := &MessageHandler{Chat: chatSvc}
	authed.POST("/channels/:id/messages", messageH.Create)
	authed.PUT("/channels/:id/messages/:messageId", messageH.Update)
	authed.DELETE("/channels/:id/messages/:messageId", messageH.Delete)

	reportH := &ReportHandler{Reports: reports}
	authed.POST("/messages/:id/report", reportH.File)
	authed.GET("/messages/:id/report_summary", reportH.Summary)

	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func registerAndLogin(t *testing.T, r *gin.Engine, username string) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret1",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d: %s", username, w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    username + "@example.com",
		"password": "secret1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: status %d: %s", username, w.Code, w.Body.String())
	}
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if resp.AccessToken == "" {
		t.Fatal("empty access token")
	}
	return resp.AccessToken
}

func TestAuthRequired(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/v1/channels", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status %d, want 401", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/channels", "not-a-token", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: status %d, want 401", w.Code)
	}
}

func TestMessageFlowOverHTTP(t *testing.T) {
	r := newTestRouter(t)
	alice := registerAndLogin(t, r, "alice")
	carol := registerAndLogin(t, r, "carol")

	w := doJSON(t, r, http.MethodPost, "/api/v1/channels", alice, gin.H{"name": "general"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create channel: status %d: %s", w.Code, w.Body.String())
	}
	var chResp struct {
		Data struct {
			ID uint `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &chResp); err != nil {
		t.Fatalf("decode channel: %v", err)
	}

	// Duplicate channel name is rejected.
	w = doJSON(t, r, http.MethodPost, "/api/v1/channels", alice, gin.H{"name": "general"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate channel: status %d, want 400", w.Code)
	}

	base := fmt.Sprintf("/api/v1/channels/%d/messages", chResp.Data.ID)
	w = doJSON(t, r, http.MethodPost, base, alice, gin.H{"text": "hello"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create message: status %d: %s", w.Code, w.Body.String())
	}
	var msgResp struct {
		Data struct {
			ID uint `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &msgResp); err != nil {
		t.Fatalf("decode message: %v", err)
	}

	msgPath := fmt.Sprintf("%s/%d", base, msgResp.Data.ID)

	// Non-author edit is a labeled 403.
	w = doJSON(t, r, http.MethodPut, msgPath, carol, gin.H{"text": "hacked"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-author edit: status %d, want 403", w.Code)
	}

	w = doJSON(t, r, http.MethodPut, msgPath, alice, gin.H{"text": "hello world"})
	if w.Code != http.StatusOK {
		t.Fatalf("author edit: status %d: %s", w.Code, w.Body.String())
	}

	// Posting into a missing channel is a 404.
	w = doJSON(t, r, http.MethodPost, "/api/v1/channels/999/messages", alice, gin.H{"text": "void"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing channel: status %d, want 404", w.Code)
	}
}

func TestReportFlowOverHTTP(t *testing.T) {
	r := newTestRouter(t)
	alice := registerAndLogin(t, r, "alice")
	bob := registerAndLogin(t, r, "bob")

	w := doJSON(t, r, http.MethodPost, "/api/v1/channels", alice, gin.H{"name": "general"})
	var chResp struct {
		Data struct {
			ID uint `json:"id"`
		} `json:"data"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &chResp)

	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/channels/%d/messages", chResp.Data.ID), alice, gin.H{"text": "rude"})
	var msgResp struct {
		Data struct {
			ID uint `json:"id"`
		} `json:"data"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &msgResp)

	reportPath := fmt.Sprintf("/api/v1/messages/%d/report", msgResp.Data.ID)

	// Label outside the closed set never touches storage.
	w = doJSON(t, r, http.MethodPost, reportPath, bob, gin.H{"label": "spam"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid label: status %d, want 400", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, reportPath, bob, gin.H{"label": "uncomfortable"})
	if w.Code != http.StatusNoContent {
		t.Fatalf("file report: status %d: %s", w.Code, w.Body.String())
	}

	summaryPath := fmt.Sprintf("/api/v1/messages/%d/report_summary", msgResp.Data.ID)
	w = doJSON(t, r, http.MethodGet, summaryPath, bob, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("summary: status %d: %s", w.Code, w.Body.String())
	}
	var sum struct {
		MessageID       uint             `json:"message_id"`
		Counts          map[string]int64 `json:"counts"`
		UserReportLabel string           `json:"user_report_label"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &sum); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if sum.Counts["uncomfortable"] != 1 || sum.Counts["harassment_suspected"] != 0 {
		t.Fatalf("counts = %v", sum.Counts)
	}
	if sum.UserReportLabel != "uncomfortable" {
		t.Fatalf("user_report_label = %q", sum.UserReportLabel)
	}

	// Alice never reported, so her summary has counts but no label.
	w = doJSON(t, r, http.MethodGet, summaryPath, alice, nil)
	var aliceSum struct {
		UserReportLabel string `json:"user_report_label"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &aliceSum)
	if aliceSum.UserReportLabel != "" {
		t.Fatalf("alice's label = %q, want empty", aliceSum.UserReportLabel)
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/messages/999/report_summary", bob, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing message summary: status %d, want 404", w.Code)
	}
}
