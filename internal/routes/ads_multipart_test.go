package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mahattati/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type upload struct {
	name string
	data []byte
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

var gifBytes = []byte("GIF89a\x01\x00\x01\x00\x80\x00\x00\x00\x00\x00\xff\xff\xff!\xf9\x04\x01\x00\x00\x00\x00,\x00\x00\x00\x00\x01\x00\x01\x00\x00\x02\x02D\x01\x00;")

func (a *testAPI) sendForm(t *testing.T, method, path, token string, fields map[string]string, files []upload) (int, []byte) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile("images", f.name)
		require.NoError(t, err)
		_, err = fw.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(method, a.srv.URL+path, &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return a.send(t, req, token)
}

type adWithMedia struct {
	Ad struct {
		ID         int      `json:"id"`
		Facilities []string `json:"facilities"`
		FuelTypes  []string `json:"fuel_types"`
		Images     []string `json:"images"`
	} `json:"ad"`
}

func errorMessage(t *testing.T, body []byte) string {
	t.Helper()
	var res struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(body, &res), string(body))
	return res.Message
}

// storedFile: путь на диске для URL локального хранилища.
func (a *testAPI) storedFile(url string) string {
	return filepath.Join(a.uploads, filepath.FromSlash(strings.TrimPrefix(url, storage.PublicPrefix)))
}

func (a *testAPI) uploadedAds(t *testing.T) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(a.uploads, "ads"))
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	return entries
}

var stationFields = map[string]string{
	"title":              "Station 7",
	"location_latitude":  "24.7136",
	"location_longitude": "46.6753",
	"city":               "Riyadh",
	"facilities":         `["car_wash","shop"]`,
	"fuel_types":         `["91","Diesel"]`,
}

func TestAdMultipart_CreateWithImages(t *testing.T) {
	api := newTestAPI(t, nil)
	_, token := api.register(t, "adv@x.com", "advertiser")

	status, body := api.sendForm(t, http.MethodPost, "/api/ads", token, stationFields, []upload{
		{name: "front.png", data: pngBytes(t)},
		{name: "pumps.GIF", data: gifBytes},
	})
	require.Equal(t, http.StatusCreated, status, string(body))

	var res adWithMedia
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, []string{"car_wash", "shop"}, res.Ad.Facilities)
	assert.Equal(t, []string{"91", "Diesel"}, res.Ad.FuelTypes)
	require.Len(t, res.Ad.Images, 2)
	assert.True(t, strings.HasPrefix(res.Ad.Images[0], storage.PublicPrefix+"ads/ad-"), res.Ad.Images[0])
	assert.True(t, strings.HasSuffix(res.Ad.Images[0], ".png"))
	assert.True(t, strings.HasSuffix(res.Ad.Images[1], ".gif"))
	for _, url := range res.Ad.Images {
		assert.FileExists(t, api.storedFile(url))
	}

	status, body = api.do(t, http.MethodGet, fmt.Sprintf("/api/ads/%d", res.Ad.ID), token, nil)
	require.Equal(t, http.StatusOK, status)
	var got adWithMedia
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, res.Ad.Images, got.Ad.Images)
	assert.Equal(t, res.Ad.Facilities, got.Ad.Facilities)
}

func TestAdMultipart_TooManyImages(t *testing.T) {
	api := newTestAPI(t, nil)
	_, token := api.register(t, "adv@x.com", "advertiser")

	files := make([]upload, 6)
	for i := range files {
		files[i] = upload{name: fmt.Sprintf("p%d.png", i), data: pngBytes(t)}
	}
	status, body := api.sendForm(t, http.MethodPost, "/api/ads", token, stationFields, files)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Too many images", errorMessage(t, body))
	assert.Empty(t, api.uploadedAds(t))
}

func TestAdMultipart_ContentMustMatchExtension(t *testing.T) {
	api := newTestAPI(t, nil)
	_, token := api.register(t, "adv@x.com", "advertiser")

	for name, files := range map[string][]upload{
		"текст под видом png": {{name: "logo.png", data: []byte("just some text, not an image")}},
		"gif под видом png":   {{name: "logo.png", data: gifBytes}},
		"второй файл плохой":  {{name: "ok.png", data: pngBytes(t)}, {name: "run.exe", data: []byte("MZ\x90\x00")}},
	} {
		t.Run(name, func(t *testing.T) {
			status, body := api.sendForm(t, http.MethodPost, "/api/ads", token, stationFields, files)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, "Only image files are allowed (jpeg, jpg, png, gif)", errorMessage(t, body))
			assert.Empty(t, api.uploadedAds(t), "уже сохранённые файлы удаляются")
		})
	}
}

func TestAdMultipart_BadListField(t *testing.T) {
	api := newTestAPI(t, nil)
	_, token := api.register(t, "adv@x.com", "advertiser")

	fields := map[string]string{}
	for k, v := range stationFields {
		fields[k] = v
	}
	fields["facilities"] = "car_wash,shop"

	status, body := api.sendForm(t, http.MethodPost, "/api/ads", token, fields, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Validation failed", errorMessage(t, body))
}

func TestAdMultipart_UpdateReplacesImages(t *testing.T) {
	api := newTestAPI(t, nil)
	_, token := api.register(t, "adv@x.com", "advertiser")

	status, body := api.sendForm(t, http.MethodPost, "/api/ads", token, stationFields, []upload{{name: "old.png", data: pngBytes(t)}})
	require.Equal(t, http.StatusCreated, status, string(body))
	var created adWithMedia
	require.NoError(t, json.Unmarshal(body, &created))
	require.Len(t, created.Ad.Images, 1)
	old := api.storedFile(created.Ad.Images[0])
	require.FileExists(t, old)

	status, body = api.sendForm(t, http.MethodPut, fmt.Sprintf("/api/ads/%d", created.Ad.ID), token,
		map[string]string{"fuel_types": `["95"]`},
		[]upload{{name: "new1.gif", data: gifBytes}, {name: "new2.png", data: pngBytes(t)}})
	require.Equal(t, http.StatusOK, status, string(body))

	var updated adWithMedia
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.Equal(t, []string{"95"}, updated.Ad.FuelTypes)
	assert.Equal(t, []string{"car_wash", "shop"}, updated.Ad.Facilities, "неприсланные поля не меняются")
	require.Len(t, updated.Ad.Images, 2)
	assert.NotContains(t, updated.Ad.Images, created.Ad.Images[0])
	for _, url := range updated.Ad.Images {
		assert.FileExists(t, api.storedFile(url))
	}
	assert.NoFileExists(t, old, "старые изображения удаляются")
}
