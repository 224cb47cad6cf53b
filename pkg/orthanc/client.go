package orthanc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Config holds connection details for an Orthanc DICOM server.
type Config struct {
	BaseURL    string
	Username   string
	Password   string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Study is the subset of Orthanc study metadata the platform reads.
type Study struct {
	ID            string        `json:"ID"`
	MainDicomTags MainDicomTags `json:"MainDicomTags"`
}

// MainDicomTags carries the DICOM identifiers of a study.
type MainDicomTags struct {
	StudyInstanceUID string `json:"StudyInstanceUID"`
	StudyDescription string `json:"StudyDescription"`
	StudyDate        string `json:"StudyDate"`
}

// Client talks to the Orthanc REST API using basic authentication.
type Client struct {
	cfg  Config
	http *http.Client
}

// New builds an Orthanc client.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("orthanc base url is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid orthanc base url: %w", err)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{cfg: cfg, http: httpClient}, nil
}

// ListStudyIDs returns the Orthanc identifiers of every stored study.
func (c *Client) ListStudyIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := c.get(ctx, "/studies", &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// GetStudy returns the metadata of a single study.
func (c *Client) GetStudy(ctx context.Context, id string) (Study, error) {
	var study Study
	if err := c.get(ctx, "/studies/"+url.PathEscape(id), &study); err != nil {
		return Study{}, err
	}
	return study, nil
}

func (c *Client) get(ctx context.Context, path string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build orthanc request: %w", err)
	}
	if c.cfg.Username != "" {
		req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("orthanc %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("orthanc %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("orthanc %s: decode: %w", path, err)
	}
	return nil
}
