package utils

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePNG(t *testing.T) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(1, 1, color.NRGBA{R: 255, A: 255})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestUtils_ShouldDownloadImage(t *testing.T) {
	assert := assert.New(t)
	data := samplePNG(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sample.png":
			w.Write(data)
		case "/text":
			w.Write([]byte("plain text body"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	got, err := DownloadImage(context.Background(), srv.URL+"/sample.png")
	assert.NoError(err)
	assert.Equal(data, got)

	_, err = DownloadImage(context.Background(), srv.URL+"/text")
	assert.Error(err)

	_, err = DownloadImage(context.Background(), srv.URL+"/missing")
	assert.Error(err)
}

func TestUtils_ShouldBeValidUrl(t *testing.T) {
	assert := assert.New(t)

	assert.True(IsValidUrl("https://github.com/egtoney/osprite/"))
	assert.False(IsValidUrl("data:image/png;base64,AAAA"))
	assert.False(IsValidUrl("sample.png"))
}

func TestUtils_ShouldDetectValidFileType(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "sample.png")
	require.NoError(t, os.WriteFile(fname, samplePNG(t), 0644))

	ftype, err := DetectContentType(fname)
	if err != nil {
		t.Fatalf("could not detect content type: %v", err)
	}

	if !strings.Contains(ftype, "image") {
		t.Errorf("Content type expected to be of type image, got: %v", ftype)
	}
}
