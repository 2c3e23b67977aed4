package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"
)

// maxAvatarBytes matches the backend's upload limit.
const maxAvatarBytes = 5 * 1024 * 1024

var avatarContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// GetProfile fetches a profile. An empty userID falls back to the
// current session's user; with neither available ErrNoUserID is
// returned before any network I/O.
func (c *Client) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	id := userID
	if id == "" {
		id = c.store.UserID()
	}
	if id == "" {
		return nil, ErrNoUserID
	}

	var out Profile
	if err := c.do(ctx, http.MethodGet, "/profile/"+id, nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile replaces the editable profile fields. Non-2xx responses
// yield the generic failure message; this endpoint's errors carry no
// usable detail.
func (c *Client) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*Profile, error) {
	if userID == "" {
		return nil, ErrNoUserID
	}

	var out Profile
	if err := c.do(ctx, http.MethodPut, "/profile/"+userID, update, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadAvatar sends a new avatar image as a multipart form. The file is
// validated locally against the backend's rules first: JPEG or PNG,
// at most 5MB. Only the multipart boundary content type is set on the
// request, matching what the backend expects.
func (c *Client) UploadAvatar(ctx context.Context, userID, filename string, r io.Reader) (*AvatarResponse, error) {
	if userID == "" {
		return nil, ErrNoUserID
	}

	contentType, ok := avatarContentTypes[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return nil, &Error{
			Kind:   KindPrecondition,
			Detail: fmt.Sprintf("File type %q not allowed. Allowed types: JPEG, PNG", filepath.Ext(filename)),
		}
	}

	data, err := io.ReadAll(io.LimitReader(r, maxAvatarBytes+1))
	if err != nil {
		return nil, &Error{Kind: KindPrecondition, Detail: "Could not read avatar file", Err: err}
	}
	if len(data) == 0 {
		return nil, &Error{Kind: KindPrecondition, Detail: "File is empty"}
	}
	if len(data) > maxAvatarBytes {
		return nil, &Error{Kind: KindPrecondition, Detail: "File too large. Maximum size is 5MB"}
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(filename)))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, &Error{Kind: KindPrecondition, Detail: "Could not encode avatar upload", Err: err}
	}
	if _, err := part.Write(data); err != nil {
		return nil, &Error{Kind: KindPrecondition, Detail: "Could not encode avatar upload", Err: err}
	}
	if err := writer.Close(); err != nil {
		return nil, &Error{Kind: KindPrecondition, Detail: "Could not encode avatar upload", Err: err}
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/profile/"+userID+"/avatar", &body)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Err: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, responseError(resp, true)
	}
	var out AvatarResponse
	if err := decodeJSON(resp.Body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
