package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ebhath/ebhath-api/internal/dto"
	"github.com/ebhath/ebhath-api/internal/models"
	"github.com/ebhath/ebhath-api/internal/service"
)

type contentServiceStub struct {
	availableOnly bool
}

func (s *contentServiceStub) Site() models.SiteInfo {
	return models.SiteInfo{Name: "Ebhath"}
}

func (s *contentServiceStub) Courses(availableOnly bool) []models.Course {
	s.availableOnly = availableOnly
	return []models.Course{{Title: "Intro to Research", Available: models.CourseAvailable}}
}

func (s *contentServiceStub) Team() []models.TeamMember { return nil }

func (s *contentServiceStub) Testimonials() []models.Testimonial { return nil }

func TestContentHandlerCourses(t *testing.T) {
	gin.SetMode(gin.TestMode)
	stub := &contentServiceStub{}
	h := NewContentHandler(stub)
	r := gin.New()
	r.GET("/content/courses", h.Courses)
	r.GET("/content/site", h.Site)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/content/courses?available=true", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, stub.availableOnly)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.EqualValues(t, 1, env.Meta["total"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/content/courses?available=maybe", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/content/site", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Ebhath")
}

type contactRepoStub struct {
	saved *models.ContactMessage
	err   error
}

func (s *contactRepoStub) Create(ctx context.Context, msg *models.ContactMessage) error {
	if s.err != nil {
		return s.err
	}
	msg.ID = "contact-1"
	s.saved = msg
	return nil
}

func postContact(repo *contactRepoStub, body string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	h := NewContactHandler(service.NewContactService(repo, nil, nil))
	r := gin.New()
	r.POST("/contact", h.Send)
	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestContactHandlerSend(t *testing.T) {
	repo := &contactRepoStub{}
	w := postContact(repo, `{"name":"Mona","email":"mona@example.com","subject":"Hi","message":"<b>Hello</b> there"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var resp dto.ContactResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, "contact-1", resp.ID)
	require.NotNil(t, repo.saved)
	assert.Equal(t, "Hello there", repo.saved.Message)
}

func TestContactHandlerRejections(t *testing.T) {
	w := postContact(&contactRepoStub{}, `{"name":"Mona","email":"not-an-email","subject":"Hi","message":"Hello"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postContact(&contactRepoStub{}, `{broken`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postContact(&contactRepoStub{err: errors.New("db down")}, `{"name":"Mona","email":"mona@example.com","subject":"Hi","message":"Hello"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
