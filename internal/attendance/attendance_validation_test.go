package attendance

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	pngBytes  = append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 64)...)
	jpegBytes = append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, make([]byte, 64)...)
	gifBytes  = append([]byte("GIF89a"), make([]byte, 64)...)
)

func validInput() SubmissionInput {
	return SubmissionInput{
		Name:      "Ann",
		Latitude:  "-6.20000000",
		Longitude: "106.81666600",
		Photo: &PhotoUpload{
			Filename: "selfie.png",
			Size:     int64(len(pngBytes)),
			Data:     pngBytes,
		},
	}
}

func TestValidateSubmission_Valid(t *testing.T) {
	assert.Nil(t, ValidateSubmission(validInput()))

	jpg := validInput()
	jpg.Photo = &PhotoUpload{Filename: "selfie.jpg", Size: int64(len(jpegBytes)), Data: jpegBytes}
	assert.Nil(t, ValidateSubmission(jpg))

	gif := validInput()
	gif.Photo = &PhotoUpload{Filename: "selfie.gif", Size: int64(len(gifBytes)), Data: gifBytes}
	assert.Nil(t, ValidateSubmission(gif))

	notes := strings.Repeat("n", 1000)
	withNotes := validInput()
	withNotes.Notes = &notes
	assert.Nil(t, ValidateSubmission(withNotes))
}

func TestValidateSubmission_MissingName(t *testing.T) {
	in := validInput()
	in.Name = ""

	errs := ValidateSubmission(in)
	assert.Equal(t, []string{"name is required"}, errs["name"])
	assert.Len(t, errs, 1)
}

func TestValidateSubmission_NameTooLong(t *testing.T) {
	in := validInput()
	in.Name = strings.Repeat("a", 256)

	errs := ValidateSubmission(in)
	assert.Contains(t, errs["name"][0], "255")
}

func TestValidateSubmission_LengthLimitsCountCharactersNotBytes(t *testing.T) {
	// 200 two-byte characters: 400 bytes, well within the 255-char limit
	in := validInput()
	in.Name = strings.Repeat("é", 200)
	assert.Nil(t, ValidateSubmission(in))

	in = validInput()
	in.Name = strings.Repeat("é", 255)
	assert.Nil(t, ValidateSubmission(in))

	in = validInput()
	in.Name = strings.Repeat("é", 256)
	errs := ValidateSubmission(in)
	assert.Contains(t, errs["name"][0], "255")

	notes := strings.Repeat("漢", 1000)
	in = validInput()
	in.Notes = &notes
	assert.Nil(t, ValidateSubmission(in))

	tooLong := strings.Repeat("漢", 1001)
	in = validInput()
	in.Notes = &tooLong
	errs = ValidateSubmission(in)
	assert.Contains(t, errs["notes"][0], "1000")
}

func TestValidateSubmission_MissingPhoto(t *testing.T) {
	in := validInput()
	in.Photo = nil

	errs := ValidateSubmission(in)
	assert.Equal(t, []string{"photo is required"}, errs["photo"])
}

func TestValidateSubmission_PhotoNotAnImage(t *testing.T) {
	data := []byte("definitely not an image")
	in := validInput()
	in.Photo = &PhotoUpload{Filename: "notes.txt", Size: int64(len(data)), Data: data}

	errs := ValidateSubmission(in)
	assert.Contains(t, errs["photo"][0], "jpeg, png, jpg or gif")
}

func TestValidateSubmission_PhotoUnreadable(t *testing.T) {
	// size within the limit but no bytes arrived: nothing to sniff,
	// so the upload cannot be accepted as an image
	in := validInput()
	in.Photo = &PhotoUpload{Filename: "selfie.png", Size: 128}

	errs := ValidateSubmission(in)
	assert.Contains(t, errs["photo"][0], "jpeg, png, jpg or gif")
}

func TestValidateSubmission_PhotoTooLarge(t *testing.T) {
	in := validInput()
	in.Photo = &PhotoUpload{Filename: "huge.png", Size: maxPhotoBytes + 1}

	errs := ValidateSubmission(in)
	assert.Contains(t, errs["photo"][0], "5120 kilobytes")
}

func TestValidateSubmission_Coordinates(t *testing.T) {
	missing := validInput()
	missing.Latitude = ""
	missing.Longitude = ""
	errs := ValidateSubmission(missing)
	assert.Equal(t, []string{"latitude is required"}, errs["latitude"])
	assert.Equal(t, []string{"longitude is required"}, errs["longitude"])

	garbage := validInput()
	garbage.Latitude = "north-ish"
	garbage.Longitude = "1,5"
	errs = ValidateSubmission(garbage)
	assert.Equal(t, []string{"latitude must be numeric"}, errs["latitude"])
	assert.Equal(t, []string{"longitude must be numeric"}, errs["longitude"])
}

func TestValidateSubmission_NotesTooLong(t *testing.T) {
	notes := strings.Repeat("n", 1001)
	in := validInput()
	in.Notes = &notes

	errs := ValidateSubmission(in)
	assert.Contains(t, errs["notes"][0], "1000")
}

func TestValidateSubmission_CollectsAllFields(t *testing.T) {
	notes := strings.Repeat("n", 1001)
	in := SubmissionInput{Notes: &notes}

	errs := ValidateSubmission(in)
	assert.Len(t, errs, 5)
	for _, field := range []string{"name", "photo", "latitude", "longitude", "notes"} {
		assert.NotEmpty(t, errs[field], "expected an error for %s", field)
	}
}

func TestBuildMapsLink_RawValues(t *testing.T) {
	link := BuildMapsLink("-6.20000000", "106.81666600")
	assert.Equal(t, "https://www.google.com/maps?q=-6.20000000,106.81666600", link)

	// values pass through exactly as submitted, no re-rendering
	link = BuildMapsLink("1.50", "2.0e1")
	assert.Equal(t, "https://www.google.com/maps?q=1.50,2.0e1", link)
}
