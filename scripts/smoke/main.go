// Command smoke exercises a running kongle-express server end to end:
// it saves an order, starts a checkout session and prints the redirect URL.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"
)

func main() {
	baseURL := flag.String("url", "http://localhost:3000", "server base URL")
	pineconeType := flag.String("tier", "classic", "pinecone tier to order")
	flag.Parse()

	client := &http.Client{Timeout: 10 * time.Second}

	if err := run(client, *baseURL, *pineconeType); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(client *http.Client, baseURL, pineconeType string) error {
	order := map[string]interface{}{
		"sender":       "Smoke Tester",
		"recipient":    "Smoke Recipient",
		"address":      "Testveien 1, 0001 Oslo",
		"message":      "smoke test order",
		"quoteType":    "funny",
		"pineconeType": pineconeType,
	}

	var created struct {
		ID         string `json:"id"`
		PriceCents int64  `json:"priceCents"`
		Status     string `json:"status"`
	}
	if err := postJSON(client, baseURL+"/api/kongles", order, &created); err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	fmt.Printf("order created: id=%s price_cents=%d status=%s\n", created.ID, created.PriceCents, created.Status)

	checkout := map[string]interface{}{
		"pineconeType": pineconeType,
		"subscription": false,
		"kongleId":     created.ID,
	}

	var session struct {
		URL string `json:"url"`
	}
	if err := postJSON(client, baseURL+"/api/kongles/checkout", checkout, &session); err != nil {
		return fmt.Errorf("start checkout: %w", err)
	}
	fmt.Printf("checkout session: %s\n", session.URL)

	return nil
}

func postJSON(client *http.Client, url string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	resp, err := client.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return fmt.Errorf("%s returned %d: %s", url, resp.StatusCode, apiErr.Error)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
