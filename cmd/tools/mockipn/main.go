package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
)

// Replays an SSLCommerz-style IPN against a local server. The sandbox
// IPN carries no signature; the tran_id lookup is the only binding.
func main() {
	target := flag.String("url", "http://localhost:8080/api/v1/payments/webhook", "IPN URL")
	tranID := flag.String("tran-id", "", "Payment ID to confirm (tran_id)")
	status := flag.String("status", "VALID", "Gateway status (VALID, SUCCESS, FAILED, CANCELLED)")
	valID := flag.String("val-id", "", "Gateway validation ID (val_id)")
	amount := flag.String("amount", "150.00", "Amount")
	dryRun := flag.Bool("dry-run", false, "Only print the form, don't send")

	flag.Parse()

	if *tranID == "" {
		fmt.Fprintln(os.Stderr, "Error: -tran-id is required")
		os.Exit(1)
	}

	form := url.Values{}
	form.Set("tran_id", *tranID)
	form.Set("status", *status)
	form.Set("amount", *amount)
	form.Set("currency", "BDT")
	form.Set("store_id", os.Getenv("SSL_STORE_ID"))
	if *valID != "" {
		form.Set("val_id", *valID)
	}

	fmt.Printf("Form: %s\n", form.Encode())

	if *dryRun {
		fmt.Println("\n[DRY RUN] Not sending request")
		return
	}

	fmt.Printf("\nSending to %s...\n", *target)
	resp, err := http.Post(*target, "application/x-www-form-urlencoded",
		strings.NewReader(form.Encode()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error sending IPN: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	fmt.Printf("Status: %s\nBody: %s\n", resp.Status, string(body))
}
