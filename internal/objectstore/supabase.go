package objectstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/fkhayef/ensamble/internal/apperr"
)

// SupabaseStore talks to the Supabase Storage REST API
type SupabaseStore struct {
	baseURL string
	client  *resty.Client
}

// NewSupabaseStore creates a store for the project at baseURL using the
// service key
func NewSupabaseStore(baseURL, serviceKey string) *SupabaseStore {
	if !strings.HasPrefix(baseURL, "http") {
		baseURL = "https://" + baseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	client := resty.New().
		SetBaseURL(baseURL+"/storage/v1").
		SetTimeout(60*time.Second).
		SetHeader("apikey", serviceKey).
		SetAuthToken(serviceKey)

	return &SupabaseStore{baseURL: baseURL, client: client}
}

// Upload posts body to bucket/path, sending x-upsert to control overwrite.
// The request length comes from body; size is only needed by stores that
// require it up front.
func (s *SupabaseStore) Upload(ctx context.Context, bucket, path string, body io.Reader, size int64, opts Options) error {
	contentType := opts.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetHeader("x-upsert", strconv.FormatBool(opts.Overwrite)).
		SetBody(body).
		Post("/object/" + bucket + "/" + escapePath(path))
	if err != nil {
		return fmt.Errorf("failed to upload %s/%s: %w", bucket, path, err)
	}

	if resp.IsError() {
		be := apperr.ParseBackendError(resp.StatusCode(), resp.Body())
		if resp.StatusCode() == http.StatusConflict {
			return fmt.Errorf("failed to upload %s/%s: %w: %w", bucket, path, ErrObjectExists, be)
		}
		return fmt.Errorf("failed to upload %s/%s: %w", bucket, path, be)
	}
	return nil
}

// PublicURL returns the public object URL for bucket/path
func (s *SupabaseStore) PublicURL(bucket, path string) string {
	return s.baseURL + "/storage/v1/object/public/" + bucket + "/" + escapePath(path)
}
