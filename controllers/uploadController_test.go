package controllers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/utsavrajji/FixMyArea-sub000/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeImageStore struct {
	folder      string
	ext         string
	contentType string
	size        int
	err         error
}

func (f *fakeImageStore) Upload(_ context.Context, folder, ext, contentType string, data []byte) (*services.UploadResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.folder, f.ext, f.contentType, f.size = folder, ext, contentType, len(data)
	return &services.UploadResult{URL: "https://cdn.example.com/" + folder + "/x" + ext, PublicID: folder + "/x" + ext}, nil
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func (e *testEnv) upload(t *testing.T, token, folder string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("folder", folder))
	part, err := mw.CreateFormFile("image", "photo.png")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/uploads", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestUpload(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.addUser(t, "Asha", "asha@example.com")

	w := env.upload(t, token, "issues", append(pngHeader, make([]byte, 512)...))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	result := decode[services.UploadResult](t, w)
	assert.Equal(t, "issues/x.png", result.PublicID)
	assert.Equal(t, "image/png", env.images.contentType)
	assert.Equal(t, ".png", env.images.ext)
}

func TestUpload_Rejections(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.addUser(t, "Asha", "asha@example.com")

	w := env.upload(t, token, "issues", []byte("just some text, not a picture"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	big := append(append([]byte{}, pngHeader...), make([]byte, services.MaxImageSize)...)
	w = env.upload(t, token, "issues", big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = env.upload(t, "", "issues", pngHeader)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	assert.Zero(t, env.images.size)
}

func TestUpload_StoreFailure(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.addUser(t, "Asha", "asha@example.com")
	env.images.err = services.ErrUploadsDisabled

	w := env.upload(t, token, "issues", pngHeader)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}
