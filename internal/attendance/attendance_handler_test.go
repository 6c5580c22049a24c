package attendance_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-absensi/internal/attendance"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeService struct {
	submitFn func(ctx context.Context, in attendance.SubmissionInput) (attendance.AttendanceResponse, error)
	listFn   func(ctx context.Context, f attendance.FilterInput) (attendance.ListResult, error)
	exportFn func(ctx context.Context, f attendance.FilterInput) ([]attendance.AttendanceResponse, error)
	statsFn  func(ctx context.Context) (attendance.StatsResponse, error)
}

func (f *fakeService) Submit(ctx context.Context, in attendance.SubmissionInput) (attendance.AttendanceResponse, error) {
	return f.submitFn(ctx, in)
}
func (f *fakeService) List(ctx context.Context, fl attendance.FilterInput) (attendance.ListResult, error) {
	return f.listFn(ctx, fl)
}
func (f *fakeService) Export(ctx context.Context, fl attendance.FilterInput) ([]attendance.AttendanceResponse, error) {
	return f.exportFn(ctx, fl)
}
func (f *fakeService) Stats(ctx context.Context) (attendance.StatsResponse, error) {
	return f.statsFn(ctx)
}

func newRouter(svc attendance.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := attendance.NewHandler(svc)
	r.GET("/absen", h.ShowForm)
	r.POST("/absen", h.Submit)
	r.GET("/absen/success", h.ShowSuccess)
	r.GET("/admin/dashboard", h.Dashboard)
	r.GET("/admin/attendance/filter", h.Filter)
	r.GET("/admin/attendance/export", h.Export)
	return r
}

func multipartSubmission(t *testing.T, fields map[string]string, photoName string, photoData []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		assert.NoError(t, mw.WriteField(k, v))
	}
	if photoName != "" {
		part, err := mw.CreateFormFile("photo", photoName)
		assert.NoError(t, err)
		_, err = part.Write(photoData)
		assert.NoError(t, err)
	}
	assert.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestHandler_Submit_Created(t *testing.T) {
	var got attendance.SubmissionInput
	svc := &fakeService{
		submitFn: func(ctx context.Context, in attendance.SubmissionInput) (attendance.AttendanceResponse, error) {
			got = in
			return attendance.AttendanceResponse{ID: 1}, nil
		},
	}
	router := newRouter(svc)

	body, contentType := multipartSubmission(t, map[string]string{
		"name":      "Ann",
		"latitude":  "-6.2",
		"longitude": "106.8",
		"notes":     "first day",
	}, "selfie.png", []byte{0x89, 0x50, 0x4E, 0x47})

	req := httptest.NewRequest(http.MethodPost, "/absen", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("User-Agent", "test-agent/1.0")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var envelope struct {
		Ok   bool `json:"ok"`
		Data struct {
			Message    string `json:"message"`
			RedirectTo string `json:"redirect_to"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Ok)
	assert.Equal(t, "Absensi berhasil dicatat!", envelope.Data.Message)
	assert.Equal(t, "/absen/success", envelope.Data.RedirectTo)

	assert.Equal(t, "Ann", got.Name)
	assert.Equal(t, "-6.2", got.Latitude)
	assert.Equal(t, "106.8", got.Longitude)
	if assert.NotNil(t, got.Notes) {
		assert.Equal(t, "first day", *got.Notes)
	}
	if assert.NotNil(t, got.Photo) {
		assert.Equal(t, "selfie.png", got.Photo.Filename)
		assert.Equal(t, []byte{0x89, 0x50, 0x4E, 0x47}, got.Photo.Data)
	}
	if assert.NotNil(t, got.UserAgent) {
		assert.Equal(t, "test-agent/1.0", *got.UserAgent)
	}
}

func TestHandler_Submit_ValidationErrorEchoesValues(t *testing.T) {
	svc := &fakeService{
		submitFn: func(ctx context.Context, in attendance.SubmissionInput) (attendance.AttendanceResponse, error) {
			return attendance.AttendanceResponse{}, &attendance.ValidationError{
				Fields: map[string][]string{
					"photo":    {"photo is required"},
					"latitude": {"latitude must be numeric"},
				},
			}
		},
	}
	router := newRouter(svc)

	body, contentType := multipartSubmission(t, map[string]string{
		"name":      "Ann",
		"latitude":  "north",
		"longitude": "106.8",
	}, "", nil)

	req := httptest.NewRequest(http.MethodPost, "/absen", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var envelope struct {
		Ok    bool `json:"ok"`
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
			Details struct {
				Errors map[string][]string `json:"errors"`
				Values map[string]string   `json:"values"`
			} `json:"details"`
		} `json:"error"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.False(t, envelope.Ok)
	assert.Equal(t, "Input tidak valid", envelope.Error.Message)
	assert.Contains(t, envelope.Error.Details.Errors, "photo")
	assert.Contains(t, envelope.Error.Details.Errors, "latitude")
	assert.Equal(t, "Ann", envelope.Error.Details.Values["name"])
	assert.Equal(t, "north", envelope.Error.Details.Values["latitude"])
}

func TestHandler_Filter_QueryParsing(t *testing.T) {
	var got attendance.FilterInput
	svc := &fakeService{
		listFn: func(ctx context.Context, f attendance.FilterInput) (attendance.ListResult, error) {
			got = f
			return attendance.ListResult{Total: 51, Page: f.Page, PerPage: 50}, nil
		},
	}
	router := newRouter(svc)

	req := httptest.NewRequest(http.MethodGet,
		"/admin/attendance/filter?name=ann&date_from=2024-01-02&date_to=2024-01-09&page=2", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, attendance.FilterInput{
		DateFrom: "2024-01-02",
		DateTo:   "2024-01-09",
		Name:     "ann",
		Page:     2,
	}, got)

	var envelope struct {
		Meta struct {
			Total      int64 `json:"total"`
			TotalPages int   `json:"totalPages"`
			Page       int   `json:"page"`
			PageSize   int   `json:"pageSize"`
		} `json:"meta"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, int64(51), envelope.Meta.Total)
	assert.Equal(t, 2, envelope.Meta.TotalPages)
	assert.Equal(t, 50, envelope.Meta.PageSize)
}

func TestHandler_Dashboard_DefaultsPageToOne(t *testing.T) {
	var got attendance.FilterInput
	svc := &fakeService{
		listFn: func(ctx context.Context, f attendance.FilterInput) (attendance.ListResult, error) {
			got = f
			return attendance.ListResult{Page: 1, PerPage: 50}, nil
		},
	}
	router := newRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard?page=garbage", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, got.Page)
	assert.Empty(t, got.Name)
}

func TestHandler_Export_WritesCSV(t *testing.T) {
	notes := "on time"
	svc := &fakeService{
		exportFn: func(ctx context.Context, f attendance.FilterInput) ([]attendance.AttendanceResponse, error) {
			return []attendance.AttendanceResponse{{
				ID:             3,
				Name:           "Ann",
				PhotoPath:      "attendance-photos/abc.png",
				Latitude:       -6.2,
				Longitude:      106.8,
				GoogleMapsLink: "https://www.google.com/maps?q=-6.2,106.8",
				Notes:          &notes,
				CheckedInAt:    "2024-01-02T08:00:00Z",
			}}, nil
		},
	}
	router := newRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/admin/attendance/export", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attendances.csv")

	got := w.Body.String()
	assert.Contains(t, got, "id,name,photo_path")
	assert.Contains(t, got, "3,Ann,attendance-photos/abc.png,-6.2,106.8,")
	assert.Contains(t, got, "on time")
}
