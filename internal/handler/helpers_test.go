package handler_test

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Baaaki/campus-market/internal/activity"
	"github.com/Baaaki/campus-market/internal/handler"
	"github.com/Baaaki/campus-market/internal/models"
	"github.com/Baaaki/campus-market/internal/repository"
	"github.com/Baaaki/campus-market/internal/service"
	"github.com/Baaaki/campus-market/internal/testutil"
	"github.com/Baaaki/campus-market/internal/utils"
	"github.com/Baaaki/campus-market/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testSecret = "test-secret-key"
	testDomain = "correounivalle.edu.co"
)

// testAPI is the full router over a test database and an in-memory image store.
type testAPI struct {
	router   *gin.Engine
	store    *testutil.MemoryStore
	recorder *activity.Recorder
}

func newTestAPI(db *gorm.DB) *testAPI {
	gin.SetMode(gin.TestMode)
	validation.RegisterGin(testDomain)
	validate := validation.New(testDomain)

	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	store := testutil.NewMemoryStore()
	recorder := activity.NewRecorder(activityRepo, nil)

	authService := service.NewAuthService(userRepo, validate, testSecret, time.Hour, "development")
	productService := service.NewProductService(productRepo, favoriteRepo, store, nil, recorder, validate, repository.DefaultPageSize)
	favoriteService := service.NewFavoriteService(favoriteRepo, productRepo, repository.DefaultPageSize)
	conversationService := service.NewConversationService(conversationRepo, messageRepo, productRepo)
	activityService := service.NewActivityService(activityRepo)

	rc := &handler.RouteConfig{
		JWTSecret:     testSecret,
		Auth:          handler.NewAuthHandler(authService),
		Products:      handler.NewProductHandler(productService, favoriteService, conversationService),
		Favorites:     handler.NewFavoriteHandler(favoriteService),
		Conversations: handler.NewConversationHandler(conversationService),
		Admin:         handler.NewAdminHandler(authService, productService, activityService, repository.DefaultPageSize),
	}

	return &testAPI{
		router:   rc.NewRouter(),
		store:    store,
		recorder: recorder,
	}
}

func (a *testAPI) do(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testAPI) doJSON(t *testing.T, method, path string, payload any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader = http.NoBody
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	return a.do(req, token)
}

func (a *testAPI) doForm(t *testing.T, method, path string, fields map[string]string, images [][]byte, token string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := productForm(t, fields, images)
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", contentType)
	return a.do(req, token)
}

func tokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := utils.GenerateToken(user, testSecret, time.Hour)
	require.NoError(t, err)
	return token
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func productForm(t *testing.T, fields map[string]string, images [][]byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for i, img := range images {
		part, err := mw.CreateFormFile("images", "photo"+string(rune('a'+i))+".png")
		require.NoError(t, err)
		_, err = part.Write(img)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(2, 2, color.RGBA{G: 180, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func validProductFields() map[string]string {
	return map[string]string{
		"name":        "Bata de laboratorio",
		"description": "Talla M",
		"price":       "35000",
		"category":    "Ropa",
		"condition":   "Como nuevo",
		"faculty":     "Medicina",
	}
}
