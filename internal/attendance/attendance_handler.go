package attendance

import (
	"encoding/csv"
	"errors"
	"io"
	"net/http"
	"strconv"

	"go-absensi/internal/shared/apperror"
	"go-absensi/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

// ShowForm backs GET /absen. Rendering is the client's job; this only
// exposes the submission contract.
func (h *Handler) ShowForm(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"submit_to": "/absen",
		"fields": gin.H{
			"name":      "required, max 255 characters",
			"photo":     "required, jpeg/png/jpg/gif, max 5120 KiB",
			"latitude":  "required, numeric",
			"longitude": "required, numeric",
			"notes":     "optional, max 1000 characters",
		},
	}, nil)
}

func (h *Handler) Submit(c *gin.Context) {
	in := SubmissionInput{
		Name:      c.PostForm("name"),
		Latitude:  c.PostForm("latitude"),
		Longitude: c.PostForm("longitude"),
	}

	if notes, ok := c.GetPostForm("notes"); ok && notes != "" {
		in.Notes = &notes
	}

	if fh, err := c.FormFile("photo"); err == nil {
		photo := &PhotoUpload{Filename: fh.Filename, Size: fh.Size}
		// don't buffer files the size rule is going to reject anyway
		if fh.Size <= maxPhotoBytes {
			if f, err := fh.Open(); err == nil {
				data, rerr := io.ReadAll(f)
				f.Close()
				if rerr == nil {
					photo.Data = data
				}
			}
		}
		in.Photo = photo
	}

	if ip := c.ClientIP(); ip != "" {
		in.IPAddress = &ip
	}
	if ua := c.Request.UserAgent(); ua != "" {
		in.UserAgent = &ua
	}

	_, err := h.service.Submit(c.Request.Context(), in)
	if err != nil {
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			// full field error map plus the submitted values so the form
			// can re-render pre-filled
			response.Error(c, http.StatusUnprocessableEntity,
				apperror.CodeValidationError, "Input tidak valid",
				gin.H{
					"errors": vErr.Fields,
					"values": in.EchoValues(),
				})
			return
		}
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"message":     "Absensi berhasil dicatat!",
		"redirect_to": "/absen/success",
	}, nil)
}

func (h *Handler) ShowSuccess(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"message": "Absensi berhasil dicatat!",
	}, nil)
}

// Dashboard backs GET /admin/dashboard and the bare /dashboard alias:
// no filters, page taken from the query string.
func (h *Handler) Dashboard(c *gin.Context) {
	f := FilterInput{Page: pageFromQuery(c)}

	result, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	meta := response.NewPaginationMeta(result.Total, result.Page, result.PerPage)
	response.Success(c, http.StatusOK, gin.H{
		"attendances": result.Data,
		"filters":     f.Echo(),
	}, &meta)
}

func (h *Handler) Filter(c *gin.Context) {
	f := filterFromQuery(c)

	result, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	meta := response.NewPaginationMeta(result.Total, result.Page, result.PerPage)
	response.Success(c, http.StatusOK, gin.H{
		"attendances": result.Data,
		"filters":     f.Echo(),
	}, &meta)
}

func (h *Handler) Export(c *gin.Context) {
	f := filterFromQuery(c)

	rows, err := h.service.Export(c.Request.Context(), f)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="attendances.csv"`)
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{
		"id", "name", "photo_path", "latitude", "longitude",
		"google_maps_link", "notes", "checked_in_at", "ip_address", "user_agent",
	})
	for _, row := range rows {
		_ = w.Write([]string{
			strconv.FormatInt(row.ID, 10),
			row.Name,
			row.PhotoPath,
			strconv.FormatFloat(row.Latitude, 'f', -1, 64),
			strconv.FormatFloat(row.Longitude, 'f', -1, 64),
			row.GoogleMapsLink,
			derefOrEmpty(row.Notes),
			row.CheckedInAt,
			derefOrEmpty(row.IPAddress),
			derefOrEmpty(row.UserAgent),
		})
	}
	w.Flush()
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats, nil)
}

func filterFromQuery(c *gin.Context) FilterInput {
	return FilterInput{
		DateFrom: c.Query("date_from"),
		DateTo:   c.Query("date_to"),
		Name:     c.Query("name"),
		Page:     pageFromQuery(c),
	}
}

func pageFromQuery(c *gin.Context) int {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	return page
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
