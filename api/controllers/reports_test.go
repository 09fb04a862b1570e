package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/quartermasterlabs/armory-backend/internal/lifecycle"
	"github.com/quartermasterlabs/armory-backend/internal/reporting"
	"github.com/quartermasterlabs/armory-backend/pkg/types"
)

type stubReportingService struct {
	snapshot *reporting.Snapshot
	err      error
	gotToday types.Date
}

func (s *stubReportingService) Snapshot(ctx context.Context, today types.Date) (*reporting.Snapshot, error) {
	s.gotToday = today
	return s.snapshot, s.err
}

func TestGetOverdueReport(t *testing.T) {
	svc := &stubLifecycleService{
		overdueItems: []lifecycle.OverdueItem{
			{
				SerialNumber: "NVG-3001",
				Name:         "PVS-14 Night Vision",
				Custodian:    "CPL Hayes",
				DueDate:      types.NewDate(2026, 4, 3),
				DaysOverdue:  7,
			},
		},
	}
	handler := GetOverdueReport(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/overdue?today=2026-04-10", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.gotToday.String() != "2026-04-10" {
		t.Fatalf("unexpected today: %s", svc.gotToday)
	}

	var envelope struct {
		Data []lifecycle.OverdueItem `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 1 {
		t.Fatalf("expected 1 row got %d", len(envelope.Data))
	}
	if envelope.Data[0].DaysOverdue != 7 {
		t.Fatalf("unexpected days overdue: %d", envelope.Data[0].DaysOverdue)
	}
}

func TestGetOverdueReportDefaultsToday(t *testing.T) {
	svc := &stubLifecycleService{}
	handler := GetOverdueReport(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/overdue", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !svc.gotToday.IsZero() {
		t.Fatalf("expected zero today, got %s", svc.gotToday)
	}
}

func TestGetDashboard(t *testing.T) {
	svc := &stubReportingService{
		snapshot: &reporting.Snapshot{
			Today:           types.NewDate(2026, 4, 10),
			TotalItems:      2,
			Available:       1,
			Overdue:         1,
			ActiveCheckouts: 1,
			UtilizationRate: decimal.RequireFromString("50"),
			OverdueRate:     decimal.RequireFromString("100"),
		},
	}
	handler := GetDashboard(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard?today=2026-04-10", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.gotToday.String() != "2026-04-10" {
		t.Fatalf("unexpected today: %s", svc.gotToday)
	}

	var envelope struct {
		Data struct {
			TotalItems      int64  `json:"total_items"`
			UtilizationRate string `json:"utilization_rate"`
			OverdueRate     string `json:"overdue_rate"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.TotalItems != 2 {
		t.Fatalf("unexpected total items: %d", envelope.Data.TotalItems)
	}
	if envelope.Data.UtilizationRate != "50" {
		t.Fatalf("unexpected utilization rate: %s", envelope.Data.UtilizationRate)
	}
}

func TestGetDashboardBadDate(t *testing.T) {
	svc := &stubReportingService{}
	handler := GetDashboard(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard?today=yesterday", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
