package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sealchain/sealchain/pkg/client"
)

// stubLedgerServer serves a fixed two-record chain.
func stubLedgerServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	records := []map[string]any{
		{"index": 0, "timestamp": 1700000000, "payload": "Genesis Record", "prev_digest": "0", "digest": "00aa", "nonce": 7},
		{"index": 1, "timestamp": 1700000001, "payload": "A", "prev_digest": "00aa", "digest": "00bb", "nonce": 12},
	}

	mux.HandleFunc("/api/v1/ledger", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"records": 2, "tip": "00bb", "difficulty": 2})
	})
	mux.HandleFunc("/api/v1/ledger/verify", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"valid": true})
	})
	mux.HandleFunc("/api/v1/ledger/payloads", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"payloads": []string{"Genesis Record", "A"}})
	})
	mux.HandleFunc("/api/v1/ledger/records", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			var req map[string]string
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req["payload"] == "" {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]string{"error": "payload is required"})
				return
			}
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]any{
				"index": 2, "timestamp": 1700000002, "payload": req["payload"],
				"prev_digest": "00bb", "digest": "00cc", "nonce": 3,
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"records": records})
	})
	mux.HandleFunc("/api/v1/ledger/records/", func(w http.ResponseWriter, r *http.Request) {
		idx := strings.TrimPrefix(r.URL.Path, "/api/v1/ledger/records/")
		switch idx {
		case "0":
			json.NewEncoder(w).Encode(records[0])
		case "1":
			json.NewEncoder(w).Encode(records[1])
		default:
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "record not found"})
		}
	})

	return httptest.NewServer(mux)
}

func TestOverview(t *testing.T) {
	srv := stubLedgerServer(t)
	defer srv.Close()

	c := client.New(srv.URL)
	ov, err := c.Overview(context.Background())
	if err != nil {
		t.Fatalf("Overview() failed: %v", err)
	}
	if ov.Records != 2 || ov.Tip != "00bb" || ov.Difficulty != 2 {
		t.Errorf("unexpected overview: %+v", ov)
	}
}

func TestVerify(t *testing.T) {
	srv := stubLedgerServer(t)
	defer srv.Close()

	res, err := client.New(srv.URL).Verify(context.Background())
	if err != nil {
		t.Fatalf("Verify() failed: %v", err)
	}
	if !res.Valid {
		t.Errorf("expected valid chain, got %+v", res)
	}
}

func TestRecords_andSingleRecord(t *testing.T) {
	srv := stubLedgerServer(t)
	defer srv.Close()
	c := client.New(srv.URL)

	recs, err := c.Records(context.Background())
	if err != nil {
		t.Fatalf("Records() failed: %v", err)
	}
	if len(recs) != 2 || recs[1].PrevDigest != recs[0].Digest {
		t.Errorf("unexpected records: %+v", recs)
	}

	rec, err := c.Record(context.Background(), 1)
	if err != nil {
		t.Fatalf("Record(1) failed: %v", err)
	}
	if rec.Payload != "A" {
		t.Errorf("Record(1) payload: got %q, want %q", rec.Payload, "A")
	}
}

func TestRecord_notFound(t *testing.T) {
	srv := stubLedgerServer(t)
	defer srv.Close()

	_, err := client.New(srv.URL).Record(context.Background(), 99)
	if err == nil {
		t.Fatal("expected error for missing record, got nil")
	}
	if !strings.Contains(err.Error(), "record not found") {
		t.Errorf("expected server error message, got %v", err)
	}
}

func TestAppend(t *testing.T) {
	srv := stubLedgerServer(t)
	defer srv.Close()

	rec, err := client.New(srv.URL).Append(context.Background(), "B")
	if err != nil {
		t.Fatalf("Append() failed: %v", err)
	}
	if rec.Index != 2 || rec.Payload != "B" {
		t.Errorf("unexpected appended record: %+v", rec)
	}
}

func TestWithTimeout_orderIndependent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		json.NewEncoder(w).Encode(map[string]any{"valid": true})
	}))
	defer srv.Close()

	// The timeout must still bind when a custom client is installed after it.
	c := client.New(srv.URL, client.WithTimeout(20*time.Millisecond), client.WithHTTPClient(&http.Client{}))
	if _, err := c.Verify(context.Background()); err == nil {
		t.Fatal("expected timeout error against a slow server, got nil")
	}
}

func TestPayloads(t *testing.T) {
	srv := stubLedgerServer(t)
	defer srv.Close()

	payloads, err := client.New(srv.URL).Payloads(context.Background())
	if err != nil {
		t.Fatalf("Payloads() failed: %v", err)
	}
	if len(payloads) != 2 || payloads[0] != "Genesis Record" {
		t.Errorf("unexpected payloads: %v", payloads)
	}
}
