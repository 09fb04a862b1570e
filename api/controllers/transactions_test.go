package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/quartermasterlabs/armory-backend/internal/ledger"
	"github.com/quartermasterlabs/armory-backend/pkg/db/models"
	"github.com/quartermasterlabs/armory-backend/pkg/pagination"
)

type stubLedgerRepo struct {
	ledger.Repository

	txns      []models.Transaction
	bySerial  []models.Transaction
	err       error
	gotCursor *pagination.Cursor
	gotLimit  int
	gotSerial string
}

func (s *stubLedgerRepo) List(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.Transaction, error) {
	s.gotCursor = cursor
	s.gotLimit = limit
	if s.err != nil {
		return nil, s.err
	}
	if limit < len(s.txns) {
		return s.txns[:limit], nil
	}
	return s.txns, nil
}

func (s *stubLedgerRepo) ListBySerial(ctx context.Context, serial string) ([]models.Transaction, error) {
	s.gotSerial = serial
	return s.bySerial, s.err
}

func ledgerFixture(n int) []models.Transaction {
	txns := make([]models.Transaction, 0, n)
	for seq := int64(n); seq >= 1; seq-- {
		txns = append(txns, models.Transaction{
			Seq:          seq,
			TxnID:        models.FormatTxnID(seq),
			SerialNumber: "M4-1001",
		})
	}
	return txns
}

func TestListTransactionsSinglePage(t *testing.T) {
	repo := &stubLedgerRepo{txns: ledgerFixture(3)}
	handler := ListTransactions(repo, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if repo.gotLimit != pagination.DefaultLimit+1 {
		t.Fatalf("expected buffered limit %d got %d", pagination.DefaultLimit+1, repo.gotLimit)
	}

	var envelope struct {
		Data TransactionPage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Transactions) != 3 {
		t.Fatalf("expected 3 rows got %d", len(envelope.Data.Transactions))
	}
	if envelope.Data.NextCursor != "" {
		t.Fatalf("expected no next cursor, got %q", envelope.Data.NextCursor)
	}
	if envelope.Data.Transactions[0].TxnID != "TXN-003" {
		t.Fatalf("expected newest first, got %s", envelope.Data.Transactions[0].TxnID)
	}
}

func TestListTransactionsPagination(t *testing.T) {
	repo := &stubLedgerRepo{txns: ledgerFixture(5)}
	handler := ListTransactions(repo, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions?limit=2", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if repo.gotLimit != 3 {
		t.Fatalf("expected buffered limit 3 got %d", repo.gotLimit)
	}

	var envelope struct {
		Data TransactionPage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Transactions) != 2 {
		t.Fatalf("expected 2 rows got %d", len(envelope.Data.Transactions))
	}
	if envelope.Data.NextCursor == "" {
		t.Fatal("expected a next cursor")
	}

	cursor, err := pagination.ParseCursor(envelope.Data.NextCursor)
	if err != nil {
		t.Fatalf("parse next cursor: %v", err)
	}
	// page ends at seq 4, so the next page starts below it
	if cursor.Seq != 4 {
		t.Fatalf("expected cursor seq 4 got %d", cursor.Seq)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/transactions?limit=2&cursor="+envelope.Data.NextCursor, nil)
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if repo.gotCursor == nil || repo.gotCursor.Seq != 4 {
		t.Fatalf("expected repo to receive cursor seq 4, got %+v", repo.gotCursor)
	}
}

func TestListTransactionsBadCursor(t *testing.T) {
	repo := &stubLedgerRepo{}
	handler := ListTransactions(repo, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions?cursor=not-base64!!", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestListTransactionsBadLimit(t *testing.T) {
	repo := &stubLedgerRepo{}
	handler := ListTransactions(repo, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions?limit=0", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestListEquipmentTransactions(t *testing.T) {
	repo := &stubLedgerRepo{
		bySerial: []models.Transaction{
			{Seq: 1, TxnID: "TXN-001", SerialNumber: "M4-1001"},
			{Seq: 3, TxnID: "TXN-003", SerialNumber: "M4-1001"},
		},
	}
	handler := ListEquipmentTransactions(repo, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, serialRequest(http.MethodGet, "/api/v1/equipment/M4-1001/transactions", "M4-1001"))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if repo.gotSerial != "M4-1001" {
		t.Fatalf("unexpected serial: %s", repo.gotSerial)
	}

	var envelope struct {
		Data []models.Transaction `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 2 {
		t.Fatalf("expected 2 rows got %d", len(envelope.Data))
	}
}
