// Command smoke_check exercises a running tokencap gateway's
// budget/usage surface against a live instance, for a quick manual sanity
// check after deploying — it does not replace the package test suites.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const gatewayURL = "http://localhost:8089"

func main() {
	fmt.Println("Starting tokencap smoke checks...")

	checkEndpoint(gatewayURL+"/health", "GET", nil, 200)
	checkEndpoint(gatewayURL+"/v1/models", "GET", nil, 200)

	budgetPayload := map[string]any{
		"projectId": "smoke-test",
		"limitUsd":  5.0,
	}
	checkEndpoint(gatewayURL+"/v1/budget", "POST", budgetPayload, 200)
	checkEndpoint(gatewayURL+"/v1/budget?project_id=smoke-test", "GET", nil, 200)
	checkEndpoint(gatewayURL+"/v1/usage?project_id=smoke-test", "GET", nil, 200)
	checkEndpoint(gatewayURL+"/v1/budget?project_id=smoke-test", "DELETE", nil, 200)

	fmt.Println("All smoke checks passed.")
}

func checkEndpoint(url, method string, payload any, expectedStatus int) []byte {
	fmt.Printf("checking %s %s... ", method, url)

	var body io.Reader
	if payload != nil {
		jsonBytes, _ := json.Marshal(payload)
		body = bytes.NewBuffer(jsonBytes)
	}

	req, _ := http.NewRequest(method, url, body)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("FAILED: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if expectedStatus != 0 && resp.StatusCode != expectedStatus {
		fmt.Printf("FAILED: expected status %d, got %d\n", expectedStatus, resp.StatusCode)
		fmt.Println(string(respBody))
		os.Exit(1)
	}

	fmt.Println("ok")
	return respBody
}
