package attendance

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
)

const (
	maxNameLength  = 255
	maxNotesLength = 1000
	maxPhotoBytes  = 5 * 1024 * 1024 // 5120 KiB
)

// jpg uploads sniff as image/jpeg, so three entries cover the whole
// jpeg/png/jpg/gif allow-list.
var allowedPhotoMIMEs = []string{"image/jpeg", "image/png", "image/gif"}

// ValidationError carries the full per-field message map for one rejected
// submission. It is recovered at the handler boundary, never propagated past it.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

type checkFunc func(in SubmissionInput) string

type fieldRules struct {
	field  string
	checks []checkFunc
}

// submissionRules is the single source of truth for the write-path contract:
// one entry per field, checks run in order, a failed "required" short-circuits
// the rest of that field's checks.
var submissionRules = []fieldRules{
	{
		field: "name",
		checks: []checkFunc{
			func(in SubmissionInput) string {
				if in.Name == "" {
					return "name is required"
				}
				return ""
			},
			func(in SubmissionInput) string {
				// character count, not bytes: multibyte names stay valid
				if utf8.RuneCountInString(in.Name) > maxNameLength {
					return fmt.Sprintf("name must not be longer than %d characters", maxNameLength)
				}
				return ""
			},
		},
	},
	{
		field: "photo",
		checks: []checkFunc{
			func(in SubmissionInput) string {
				if in.Photo == nil {
					return "photo is required"
				}
				return ""
			},
			func(in SubmissionInput) string {
				if in.Photo.Size > maxPhotoBytes {
					return fmt.Sprintf("photo must not be larger than %d kilobytes", maxPhotoBytes/1024)
				}
				return ""
			},
			func(in SubmissionInput) string {
				if in.Photo.Size > maxPhotoBytes {
					// oversized uploads are never buffered, the size rule
					// above already rejected them
					return ""
				}
				if len(in.Photo.Data) == 0 {
					return "photo must be an image of type jpeg, png, jpg or gif"
				}
				mt := mimetype.Detect(in.Photo.Data)
				for _, allowed := range allowedPhotoMIMEs {
					if mt.Is(allowed) {
						return ""
					}
				}
				return "photo must be an image of type jpeg, png, jpg or gif"
			},
		},
	},
	{
		field: "latitude",
		checks: []checkFunc{
			func(in SubmissionInput) string {
				if in.Latitude == "" {
					return "latitude is required"
				}
				return ""
			},
			func(in SubmissionInput) string {
				if !isNumeric(in.Latitude) {
					return "latitude must be numeric"
				}
				return ""
			},
		},
	},
	{
		field: "longitude",
		checks: []checkFunc{
			func(in SubmissionInput) string {
				if in.Longitude == "" {
					return "longitude is required"
				}
				return ""
			},
			func(in SubmissionInput) string {
				if !isNumeric(in.Longitude) {
					return "longitude must be numeric"
				}
				return ""
			},
		},
	},
	{
		field: "notes",
		checks: []checkFunc{
			func(in SubmissionInput) string {
				if in.Notes != nil && utf8.RuneCountInString(*in.Notes) > maxNotesLength {
					return fmt.Sprintf("notes must not be longer than %d characters", maxNotesLength)
				}
				return ""
			},
		},
	},
}

// ValidateSubmission runs the rule table and returns the field -> messages
// map, or nil when everything passes.
func ValidateSubmission(in SubmissionInput) map[string][]string {
	errs := make(map[string][]string)

	for _, fr := range submissionRules {
		for i, check := range fr.checks {
			msg := check(in)
			if msg == "" {
				continue
			}
			errs[fr.field] = append(errs[fr.field], msg)
			if i == 0 {
				// required failed, later checks would dereference nothing useful
				break
			}
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func isNumeric(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
