// Package report renders an account as a terminal summary.
package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"github.com/iho/brook/internal/domain"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	sectionStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	negativeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Render writes the account summary to w: totals, a table of funds with
// progress bars, then applied and pending transactions.
func Render(w io.Writer, account *domain.Account) error {
	var b strings.Builder

	fmt.Fprintln(&b, titleStyle.Render(account.Name))
	fmt.Fprintf(&b, "Starting: %s\n", money(account.Starting))
	fmt.Fprintf(&b, "Balance:  %s\n", money(account.Balance))
	fmt.Fprintf(&b, "Total:    %s\n", money(account.Total()))
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, sectionStyle.Render("Funds"))
	if err := writeFunds(&b, account.Funds); err != nil {
		return err
	}
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, sectionStyle.Render("Transactions"))
	if err := writeTransactions(&b, account.Transactions); err != nil {
		return err
	}

	if len(account.Pending) > 0 {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, sectionStyle.Render("Pending"))
		if err := writeTransactions(&b, account.Pending); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// money renders an amount, in red when it is below zero.
func money(a domain.Amount) string {
	if a.IsNegative() {
		return negativeStyle.Render(a.String())
	}
	return a.String()
}

// ProgressBar draws progress on a 0-20 scale. Values outside the scale are
// clamped for drawing only.
func ProgressBar(progress int) string {
	filled := min(max(progress, 0), domain.ProgressScale)
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", domain.ProgressScale-filled) + "]"
}

func writeFunds(out io.Writer, funds []*domain.Fund) error {
	if len(funds) == 0 {
		_, err := fmt.Fprintln(out, mutedStyle.Render("(no funds)"))
		return err
	}

	rows := make([][]string, 0, len(funds))
	for _, f := range funds {
		rows = append(rows, []string{
			f.Name,
			string(f.Kind),
			f.Current.String(),
			target(f),
			fmt.Sprintf("%s %d/%d", ProgressBar(f.Progress()), f.Progress(), domain.ProgressScale),
		})
	}

	return writeTable(out, []string{"Fund", "Kind", "Current", "Target", "Progress"}, rows)
}

func target(f *domain.Fund) string {
	switch f.Kind {
	case domain.FundKindBudget:
		return f.Begin.StringFixed(2)
	default:
		return f.End.StringFixed(2)
	}
}

func writeTransactions(out io.Writer, txs []domain.Transaction) error {
	if len(txs) == 0 {
		_, err := fmt.Fprintln(out, mutedStyle.Render("(none)"))
		return err
	}

	rows := make([][]string, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, []string{
			tx.Date.Format(domain.DateLayout),
			tx.Fund,
			tx.Entity,
			tx.SignedAmount().StringFixed(2),
			tx.Description,
		})
	}

	return writeTable(out, []string{"Date", "Fund", "Entity", "Amount", "Description"}, rows)
}

// writeTable aligns plain text with tabwriter and styles the header line
// afterwards, so escape codes never count toward column widths.
func writeTable(out io.Writer, header []string, rows [][]string) error {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	if _, err := fmt.Fprintln(w, strings.Join(header, "\t")); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(w, strings.Join(row, "\t")); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	head, body, _ := strings.Cut(buf.String(), "\n")
	if _, err := fmt.Fprintln(out, headerStyle.Render(head)); err != nil {
		return err
	}
	_, err := io.WriteString(out, body)
	return err
}
