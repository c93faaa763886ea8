package classifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rfmelo/gastos/pkg/config"
	"github.com/rfmelo/gastos/pkg/models"
)

// ZeroShot classifies descriptions through a remote zero-shot inference
// endpoint. The fixed category set is sent as candidate labels and the
// top-ranked label is trusted as-is; any label outside the set is an error.
type ZeroShot struct {
	url    string
	token  string
	labels []string
	client *http.Client
}

func NewZeroShot(cfg *config.Config) *ZeroShot {
	return &ZeroShot{
		url:    cfg.APIURL,
		token:  cfg.Token,
		labels: models.CategoryNames(),
		client: &http.Client{Timeout: cfg.APITimeout},
	}
}

type zeroShotRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters zeroShotParameters `json:"parameters"`
}

type zeroShotParameters struct {
	CandidateLabels []string `json:"candidate_labels"`
}

type zeroShotResponse struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

func (z *ZeroShot) Classify(description string) (models.Category, error) {
	if z.token == "" {
		return "", fmt.Errorf("classification token not configured")
	}

	payload, err := json.Marshal(zeroShotRequest{
		Inputs:     description,
		Parameters: zeroShotParameters{CandidateLabels: z.labels},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, z.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+z.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := z.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("classification request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("classification api returned status %d", resp.StatusCode)
	}

	var result zeroShotResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Labels) == 0 {
		return "", fmt.Errorf("response carried no labels")
	}

	top := result.Labels[0]
	for _, label := range z.labels {
		if top == label {
			return models.Category(label), nil
		}
	}
	return "", fmt.Errorf("label %q is outside the category set", top)
}
