package service_test

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/Baaaki/campus-market/internal/models"
	"github.com/Baaaki/campus-market/internal/policy"
	"github.com/Baaaki/campus-market/internal/storage"
	"github.com/Baaaki/campus-market/internal/validation"
	"github.com/stretchr/testify/require"
)

const testDomain = "correounivalle.edu.co"

var testValidator = validation.New(testDomain)

func actorOf(u *models.User) policy.Actor {
	return policy.Actor{ID: u.ID, Role: u.Role}
}

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	return img
}

func pngUpload(t *testing.T, name string) storage.File {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage()))
	return storage.File{Name: name, Size: int64(buf.Len()), Body: &buf}
}

func jpegUpload(t *testing.T, name string) storage.File {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, testImage(), nil))
	return storage.File{Name: name, Size: int64(buf.Len()), Body: &buf}
}

func textUpload(name string) storage.File {
	body := "definitely not an image"
	return storage.File{Name: name, Size: int64(len(body)), Body: strings.NewReader(body)}
}
