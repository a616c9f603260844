package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
)

// Upload is an image to send as multipart form data
type Upload struct {
	FileName    string
	ContentType string
	Data        io.Reader
}

// UploadTripImage attaches a photo to an existing trip
func (c *Client) UploadTripImage(ctx context.Context, tripID, userID string, img Upload) error {
	fields := map[string]string{}
	if userID != "" {
		fields["user_id"] = userID
	}
	_, err := c.upload(ctx, "/commutes/"+url.PathEscape(tripID)+"/image", img, fields)
	return err
}

// UploadAvatar replaces a user's avatar and returns the new avatar URL
// reported by the backend, if any.
func (c *Client) UploadAvatar(ctx context.Context, userID string, img Upload) (string, error) {
	body, err := c.upload(ctx, "/users/"+url.PathEscape(userID)+"/avatar", img, nil)
	if err != nil {
		return "", err
	}

	var resp struct {
		AvatarURL string `json:"avatarUrl"`
	}
	// The avatar URL is optional in the response.
	_ = json.Unmarshal(body, &resp)
	return resp.AvatarURL, nil
}

func (c *Client) upload(ctx context.Context, path string, img Upload, fields map[string]string) ([]byte, error) {
	if img.Data == nil {
		return nil, fmt.Errorf("upload %s: no image data", path)
	}

	contentType := img.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, img.FileName))
	header.Set("Content-Type", contentType)
	part, err := form.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("building upload: %w", err)
	}
	if _, err := io.Copy(part, img.Data); err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}

	for k, v := range fields {
		if err := form.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("building upload: %w", err)
		}
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("building upload: %w", err)
	}

	return c.do(ctx, http.MethodPost, path, nil, &buf, form.FormDataContentType())
}
