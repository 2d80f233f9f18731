// Seed script for loading a demo governance scenario into Credo.
// Run with: go run ./scripts/seed.go (server must be running)
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
)

var (
	baseURL string
	apiKey  string
)

func main() {
	envFile := os.Getenv("CREDO_ENV")
	if envFile == "" {
		envFile = ".env"
	}
	_ = godotenv.Load(envFile)
	_ = godotenv.Load(envFile + ".secret")

	baseURL = os.Getenv("CREDO_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	apiKey = os.Getenv("CREDO_API_KEY")

	fmt.Println("Seeding demo scenario against", baseURL)

	now := time.Now().UTC()

	// Evidence observed by collaborators
	ev1 := post("/v1/evidence", map[string]any{
		"type":                    "raw",
		"content_hash":            "sha256:coverage-run-4811",
		"source":                  "ci-pipeline",
		"validity_period_seconds": 7 * 24 * 3600,
	})
	ev2 := post("/v1/evidence", map[string]any{
		"type":         "derived",
		"content_hash": "sha256:branch-report-112",
		"source":       "coverage-bot",
	})
	fmt.Println("Created evidence:", id(ev1), id(ev2))

	// Assertions interpreting the evidence
	a1 := post("/v1/assertions", map[string]any{
		"claim":          "Test coverage on main is 85%",
		"evidence_ids":   []string{id(ev1)},
		"transformation": "coverage report parse",
		"source":         "ci-pipeline",
	})
	a2 := post("/v1/assertions", map[string]any{
		"claim":          "test coverage on main is 85%",
		"evidence_ids":   []string{id(ev2)},
		"transformation": "coverage report parse",
		"source":         "coverage-bot",
	})
	fmt.Println("Created assertions:", id(a1), id(a2))

	// Beliefs over the first assertion
	b1 := post("/v1/beliefs", map[string]any{
		"assertion_id": id(a1),
		"confidence":   0.9,
		"decay_rate":   0.01,
	})
	b2 := post("/v1/beliefs", map[string]any{
		"assertion_id": id(a1),
		"confidence":   0.7,
		"decay_rate":   0.02,
	})
	fmt.Println("Created beliefs:", id(b1), id(b2))

	// A governance policy and two meaning versions for drift detection
	p1 := post("/v1/policies", map[string]any{
		"name":        "coverage-floor",
		"type":        "quality",
		"applies_to":  "repo:payments",
		"enforcement": "block_below_80",
	})
	fmt.Println("Created policy:", id(p1))
	post("/v1/meanings", map[string]any{
		"meaning_id": "coverage",
		"version":    "1.0.0",
		"definition": "line coverage on main",
		"valid_from": now.AddDate(0, -6, 0).Format(time.RFC3339),
	})
	post("/v1/meanings", map[string]any{
		"meaning_id": "coverage",
		"version":    "2.0.0",
		"definition": "branch coverage on changed files",
		"valid_from": now.Format(time.RFC3339),
	})

	// System decision and a human override of it
	d1 := post("/v1/decisions", map[string]any{
		"type":       "system",
		"action":     "approve",
		"rationale":  []string{"composed confidence above threshold"},
		"belief_ids": []string{id(b1)},
		"policy_ids": []string{id(p1)},
		"authority":  "credo",
		"scope":      "repo:payments",
	})
	fmt.Println("Created decision:", id(d1))
	o1 := post("/v1/overrides", map[string]any{
		"original_decision": id(d1),
		"override_decision": "reject",
		"authority":         "alice",
		"scope":             "repo:payments",
		"rationale":         "risk: payment path not exercised by new tests",
		"expires_at":        now.Add(72 * time.Hour).Format(time.RFC3339),
		"requires_renewal":  true,
	})
	fmt.Println("Created override:", id(o1))

	// Economic signals for budget pressure
	for i, amount := range []float64{120, 95, 210, 180, 140} {
		post("/v1/signals", map[string]any{
			"type":       "cost",
			"amount":     amount,
			"unit":       "usd",
			"source":     "billing-export",
			"applies_to": "org:acme",
			"confidence": 0.9,
			"timestamp":  now.AddDate(0, 0, -(5 - i)).Format(time.RFC3339),
		})
	}
	fmt.Println("Created 5 cost signals for org:acme")

	// Surface what the substrate now sees
	scan := post("/v1/contradictions/scan", nil)
	fmt.Println("Contradiction scan:", compact(scan))

	summary := get("/v1/summary?format=text")
	fmt.Println("\n" + string(summary))

	fmt.Println("=== Seed Complete ===")
	fmt.Println("\nTry:")
	fmt.Printf("curl %s/v1/assertions/%s/lineage\n", baseURL, id(a1))
	fmt.Printf("curl '%s/v1/budget-pressure?org=org:acme&limit=1000'\n", baseURL)
}

func id(raw []byte) string {
	var body struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(raw, &body)
	return body.ID
}

func compact(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func post(path string, body any) []byte {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req, _ := http.NewRequest("POST", baseURL+path, reader)
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	req.Header.Set("Content-Type", "application/json")
	return do(req)
}

func get(path string) []byte {
	req, _ := http.NewRequest("GET", baseURL+path, nil)
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	return do(req)
}

func do(req *http.Request) []byte {
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()
	result, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		log.Fatalf("API error (%d) on %s %s: %s", resp.StatusCode, req.Method, req.URL.Path, string(result))
	}
	return result
}
