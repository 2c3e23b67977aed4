package api_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/weighin/weighin-go/api"
)

func TestUploadAvatarSendsMultipartFile(t *testing.T) {
	f := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data; boundary="))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		require.Equal(t, "me.png", header.Filename)
		require.Equal(t, "image/png", header.Header.Get("Content-Type"))
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		require.Equal(t, []byte("fake image bytes"), data)

		writeJSON(t, w, http.StatusOK, map[string]string{"avatar_url": "https://cdn.example.com/u1.png"})
	})
	f.loggedIn(t)

	resp, err := f.client.UploadAvatar(context.Background(), "u1", "me.png", bytes.NewReader([]byte("fake image bytes")))
	require.NoError(t, err)

	require.Equal(t, "https://cdn.example.com/u1.png", resp.AvatarURL)
	require.Equal(t, "/api/profile/u1/avatar", f.requests[0].URL.Path)
	require.Equal(t, "Bearer a", f.requests[0].Header.Get("Authorization"))
}

func TestUploadAvatarRejectsUnsupportedType(t *testing.T) {
	f := setupClient(t, nil)
	f.loggedIn(t)

	_, err := f.client.UploadAvatar(context.Background(), "u1", "me.gif", bytes.NewReader([]byte("gif")))

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, api.KindPrecondition, apiErr.Kind)
	require.Empty(t, f.requests)
}

func TestUploadAvatarRejectsEmptyFile(t *testing.T) {
	f := setupClient(t, nil)
	f.loggedIn(t)

	_, err := f.client.UploadAvatar(context.Background(), "u1", "me.jpg", bytes.NewReader(nil))

	require.EqualError(t, err, "File is empty")
	require.Empty(t, f.requests)
}

func TestUploadAvatarRejectsOversizedFile(t *testing.T) {
	f := setupClient(t, nil)
	f.loggedIn(t)

	huge := bytes.NewReader(make([]byte, 5*1024*1024+1))
	_, err := f.client.UploadAvatar(context.Background(), "u1", "me.jpg", huge)

	require.EqualError(t, err, "File too large. Maximum size is 5MB")
	require.Empty(t, f.requests)
}

func TestUploadAvatarWithoutUserID(t *testing.T) {
	f := setupClient(t, nil)

	_, err := f.client.UploadAvatar(context.Background(), "", "me.jpg", bytes.NewReader([]byte("x")))

	require.ErrorIs(t, err, api.ErrNoUserID)
}
