package documents

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/smartlands/landregistry/internal/config"
)

type PinataClient struct {
	baseURL   string
	apiKey    string
	secretKey string
	client    *http.Client
}

var _ Store = (*PinataClient)(nil)

func NewPinataClient(cfg config.Config) *PinataClient {
	return &PinataClient{
		baseURL:   cfg.Documents.PinataBaseURL,
		apiKey:    cfg.Documents.PinataAPIKey,
		secretKey: cfg.Documents.PinataSecretKey,
		client: &http.Client{
			Timeout: time.Second * 30,
		},
	}
}

type pinResponse struct {
	IpfsHash string `json:"IpfsHash"`
}

func (p *PinataClient) Upload(ctx context.Context, fileName string, r io.Reader) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(part, r); err != nil {
		return "", err
	}

	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/pinning/pinFileToIPFS", &body)
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("pinata_api_key", p.apiKey)
	req.Header.Set("pinata_secret_api_key", p.secretKey)

	res, err := p.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "error pinning document")
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return "", fmt.Errorf("pinata returned status %d: %s", res.StatusCode, string(payload))
	}

	var decoded pinResponse
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return "", err
	}

	if decoded.IpfsHash == "" {
		return "", errors.New("pinata response missing IpfsHash")
	}

	return decoded.IpfsHash, nil
}
