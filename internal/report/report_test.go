package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/shopspring/decimal"

	"github.com/iho/brook/internal/domain"
)

func TestProgressBar(t *testing.T) {
	tests := []struct {
		progress int
		want     string
	}{
		{0, "[--------------------]"},
		{10, "[##########----------]"},
		{20, "[####################]"},
		{25, "[####################]"},
		{-3, "[--------------------]"},
	}

	for _, tt := range tests {
		if got := ProgressBar(tt.progress); got != tt.want {
			t.Errorf("ProgressBar(%d) = %q, want %q", tt.progress, got, tt.want)
		}
	}
}

func TestRender(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	account, err := domain.NewAccount("BOA Checking", domain.AmountFromFloat(823), []*domain.Fund{
		domain.NewBudgetFund("Groceries", decimal.NewFromInt(200)),
		domain.NewIncomeFund("Paycheck", decimal.NewFromInt(2000)),
	}, []domain.Transaction{
		domain.NewWithdrawal(day, decimal.RequireFromString("18.34"), "Groceries", "HEB", "weekly shop"),
		domain.NewDeposit(day, decimal.NewFromInt(1000), "Paycheck", "Employer", ""),
	}, []domain.Transaction{
		domain.NewWithdrawal(day.AddDate(0, 0, 7), decimal.NewFromInt(40), "Groceries", "HEB", ""),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var buf bytes.Buffer
	if err := Render(&buf, account); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"BOA Checking",
		"Starting: 823.00",
		"Balance:  981.66",
		"Total:    1804.66",
		"Groceries",
		"181.66",
		"[##########----------] 10/20",
		"2024-03-01",
		"-18.34",
		"weekly shop",
		"Pending",
		"2024-03-08",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q\n%s", want, out)
		}
	}
}

func TestRenderEmptyAccount(t *testing.T) {
	account, err := domain.NewAccount("Empty", domain.ZeroAmount(), nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var buf bytes.Buffer
	if err := Render(&buf, account); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(buf.String(), "(no funds)") || strings.Contains(buf.String(), "Pending") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestRenderAlignsStyledHeaders(t *testing.T) {
	prev := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.ANSI256)
	defer lipgloss.SetColorProfile(prev)

	account, err := domain.NewAccount("BOA Checking", domain.ZeroAmount(), []*domain.Fund{
		domain.NewBudgetFund("Groceries", decimal.NewFromInt(200)),
		domain.NewSavingsFund("Emergency Fund", decimal.NewFromInt(500), decimal.NewFromInt(500)),
	}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var buf bytes.Buffer
	if err := Render(&buf, account); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("expected styled output")
	}

	lines := strings.Split(ansi.Strip(buf.String()), "\n")
	header, row := -1, -1
	for i, line := range lines {
		if strings.HasPrefix(line, "Fund ") {
			header = i
		}
		if strings.HasPrefix(line, "Emergency Fund ") {
			row = i
		}
	}
	if header < 0 || row < 0 {
		t.Fatalf("fund table not found:\n%s", ansi.Strip(buf.String()))
	}

	for _, col := range []struct{ head, cell string }{
		{"Kind", "savings"},
		{"Current", "500.00"},
		{"Target", "1000.00"},
		{"Progress", "["},
	} {
		if got, want := strings.Index(lines[row], col.cell), strings.Index(lines[header], col.head); got != want {
			t.Errorf("column %s starts at %d in header but %d in row", col.head, want, got)
		}
	}
}

func TestMoneyHighlightsNegative(t *testing.T) {
	prev := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.ANSI256)
	defer lipgloss.SetColorProfile(prev)

	if got := money(domain.AmountFromFloat(12.5)); got != "12.50" {
		t.Errorf("expected plain 12.50, got %q", got)
	}

	got := money(domain.AmountFromFloat(-40.25))
	if !strings.Contains(got, "\x1b[") {
		t.Errorf("expected negative amount to be styled, got %q", got)
	}
	if ansi.Strip(got) != "-40.25" {
		t.Errorf("expected -40.25, got %q", ansi.Strip(got))
	}
}
