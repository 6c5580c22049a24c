package attendance

import "time"

// PhotoUpload carries the uploaded binary plus the metadata the rule table
// needs. Data may be empty when the transport refused to buffer the file
// (e.g. over the size limit); the size rule still fires on Size.
type PhotoUpload struct {
	Filename string
	Size     int64
	Data     []byte
}

// SubmissionInput is the typed shape of one POST /absen payload.
// Latitude and Longitude stay raw strings: the maps link must interpolate
// the exact submitted values, not a re-rendered float.
type SubmissionInput struct {
	Name      string
	Latitude  string
	Longitude string
	Notes     *string
	Photo     *PhotoUpload
	IPAddress *string
	UserAgent *string
}

// EchoValues returns the re-renderable form values for a rejected submission.
func (in SubmissionInput) EchoValues() map[string]any {
	return map[string]any{
		"name":      in.Name,
		"latitude":  in.Latitude,
		"longitude": in.Longitude,
		"notes":     in.Notes,
	}
}

// FilterInput is the raw admin query: every field optional, independently
// combinable. Dates are YYYY-MM-DD strings; unparsable bounds are dropped.
type FilterInput struct {
	DateFrom string
	DateTo   string
	Name     string
	Page     int
}

func (f FilterInput) Echo() map[string]string {
	return map[string]string{
		"date_from": f.DateFrom,
		"date_to":   f.DateTo,
		"name":      f.Name,
	}
}

type AttendanceResponse struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	PhotoPath      string  `json:"photo_path"`
	PhotoURL       string  `json:"photo_url"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	GoogleMapsLink string  `json:"google_maps_link"`
	Notes          *string `json:"notes,omitempty"`
	CheckedInAt    string  `json:"checked_in_at"`
	IPAddress      *string `json:"ip_address,omitempty"`
	UserAgent      *string `json:"user_agent,omitempty"`
}

// ListResult is one dashboard page plus everything the client needs to
// render pagination controls.
type ListResult struct {
	Data    []AttendanceResponse
	Total   int64
	Page    int
	PerPage int
}

type StatsResponse struct {
	Total       int64 `json:"total"`
	Today       int64 `json:"today"`
	UniqueNames int64 `json:"unique_names"`
}

func mapToResponse(a Attendance) AttendanceResponse {
	return AttendanceResponse{
		ID:             a.ID,
		Name:           a.Name,
		PhotoPath:      a.PhotoPath,
		PhotoURL:       "/storage/" + a.PhotoPath,
		Latitude:       a.Latitude,
		Longitude:      a.Longitude,
		GoogleMapsLink: a.GoogleMapsLink,
		Notes:          a.Notes,
		CheckedInAt:    a.CheckedInAt.Format(time.RFC3339),
		IPAddress:      a.IPAddress,
		UserAgent:      a.UserAgent,
	}
}

func mapToListResponse(rows []Attendance) []AttendanceResponse {
	out := make([]AttendanceResponse, 0, len(rows))
	for _, a := range rows {
		out = append(out, mapToResponse(a))
	}
	return out
}
