package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

// ApiClient handles requests to the canteen optimizer API
type ApiClient struct {
	httpClient *http.Client
	BaseURL    string
}

// NewApiClient creates a new API client
func NewApiClient() *ApiClient {
	baseURL := os.Getenv("CANTEEN_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	return &ApiClient{
		httpClient: &http.Client{
			Timeout: time.Second * 10,
		},
		BaseURL: baseURL,
	}
}

// CheckHealth checks if the API is up and running
func (c *ApiClient) CheckHealth() (bool, error) {
	resp, err := c.httpClient.Get(c.BaseURL + "/health")
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("API health check failed with status code: %d", resp.StatusCode)
	}
	return true, nil
}

// MenuItem mirrors the server's catalogue entry
type MenuItem struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Cost       float64 `json:"cost"`
	Popularity float64 `json:"popularity"`
}

// Prediction mirrors the server's prediction response
type Prediction struct {
	ItemID            string   `json:"item_id"`
	PredictedQuantity int      `json:"predicted_quantity"`
	RawEstimate       float64  `json:"raw_estimate"`
	PolicyAdjustment  float64  `json:"policy_adjustment"`
	RulesFired        []string `json:"rules_fired"`
	ModelVersion      string   `json:"model_version"`
}

// ModelInfo mirrors the server's model metadata response
type ModelInfo struct {
	SchemaVersion string    `json:"schema_version"`
	Features      int       `json:"features"`
	ActionLevels  []int     `json:"action_levels"`
	QTableStates  int       `json:"qtable_states"`
	FinalEpsilon  float64   `json:"final_epsilon"`
	Episodes      int       `json:"episodes"`
	TrainedAt     time.Time `json:"trained_at"`
}

// Decision mirrors one audit log row
type Decision struct {
	ItemID            string    `json:"item_id"`
	Date              time.Time `json:"date"`
	PredictedQuantity int       `json:"predicted_quantity"`
	RawEstimate       float64   `json:"raw_estimate"`
	RulesFired        string    `json:"rules_fired"`
	CreatedAt         time.Time `json:"created_at"`
}

// GetMenuItems retrieves the loaded catalogue
func (c *ApiClient) GetMenuItems() ([]MenuItem, error) {
	resp, err := c.httpClient.Get(c.BaseURL + "/api/v1/menu-items")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get menu items with status code: %d", resp.StatusCode)
	}

	var payload struct {
		MenuItems []MenuItem `json:"menu_items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return payload.MenuItems, nil
}

// Predict requests a preparation quantity for one item on one date
func (c *ApiClient) Predict(date, itemID string) (*Prediction, error) {
	data, err := json.Marshal(map[string]string{
		"date":    date,
		"item_id": itemID,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest("POST", c.BaseURL+"/api/v1/predict", bytes.NewBuffer(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("prediction failed: %s", apiErr.Error)
		}
		return nil, fmt.Errorf("prediction failed with status code: %d", resp.StatusCode)
	}

	var pred Prediction
	if err := json.NewDecoder(resp.Body).Decode(&pred); err != nil {
		return nil, err
	}
	return &pred, nil
}

// GetModelInfo retrieves the loaded model's metadata
func (c *ApiClient) GetModelInfo() (*ModelInfo, error) {
	resp, err := c.httpClient.Get(c.BaseURL + "/api/v1/model-info")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get model info with status code: %d", resp.StatusCode)
	}

	var info ModelInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}
	return &info, nil
}

// GetRecentDecisions retrieves the latest audit log entries
func (c *ApiClient) GetRecentDecisions() ([]Decision, error) {
	resp, err := c.httpClient.Get(c.BaseURL + "/api/v1/decisions")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get decisions with status code: %d", resp.StatusCode)
	}

	var payload struct {
		Decisions []Decision `json:"decisions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return payload.Decisions, nil
}
