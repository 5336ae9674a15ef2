package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/jask/liquidity/internal/report"
)

func (a *App) View() string {
	var body string
	switch a.state {
	case viewGate:
		return a.renderGate()
	case viewAccounts:
		body = a.renderAccounts()
	case viewDraws:
		body = a.renderDraws()
	case viewSettings:
		body = a.renderSettings()
	default:
		body = a.renderDashboard()
	}
	if a.modal != modalNone {
		body += "\n\n" + a.renderModal()
	}
	body += "\n" + dimStyle.Render("[d] Dashboard  [a] Accounts  [w] Draws  [s] Settings  [r] Refresh  [q] Quit")
	if a.status != "" {
		body += "\n" + a.status
	}
	return body
}

func (a *App) renderGate() string {
	out := titleStyle.Render("Liquidity") + "\n\n" + a.password.View() + "\n\n[enter] Unlock  [esc] Quit"
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}

// money renders d with the configured symbol, thousands separators and cents.
func (a *App) money(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	whole, frac := s[:len(s)-3], s[len(s)-3:]
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	return sign + a.cfg.UI.CurrencySymbol + b.String() + frac
}

func percent(ratio decimal.Decimal) string {
	return ratio.Mul(hundred).StringFixed(1) + "%"
}

func bandStyle(b report.Band) lipgloss.Style {
	switch b {
	case report.BandCritical:
		return criticalStyle
	case report.BandWarning:
		return warningStyle
	default:
		return okStyle
	}
}

func (a *App) renderDashboard() string {
	title := titleStyle.Render("Dashboard - " + a.today().Format("January 2, 2006"))
	s := a.snapshot
	if s == nil {
		return title + "\nloading..."
	}
	var b strings.Builder
	b.WriteString(title + "\n")
	fmt.Fprintf(&b, "Total debt: %s   Monthly obligations: %s   Rewards value: %s\n",
		a.money(s.TotalDebt), a.money(s.MonthlyObligations), a.money(s.RewardsValue))

	b.WriteString("\nDebt by type\n")
	for _, g := range s.DebtByType {
		fmt.Fprintf(&b, "  %-14s %14s  (%d)\n", g.Type, a.money(g.Total), g.Count)
	}

	fmt.Fprintf(&b, "\nDue in the next %d days\n", a.services.Dashboard.WindowDays)
	if len(s.Upcoming) == 0 {
		b.WriteString(dimStyle.Render("  nothing due") + "\n")
	}
	for _, p := range s.Upcoming {
		line := fmt.Sprintf("  %-28s %12s  %s (%dd)", p.Account.Name, a.money(p.Account.MinimumPayment), p.DueDate.Format("Jan 2"), p.DaysUntil)
		if p.Urgency == report.UrgencySoon {
			line = criticalStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\nCredit utilization\n")
	for _, u := range s.Cards {
		fmt.Fprintf(&b, "  %-28s %s\n", u.Account.Name, bandStyle(u.Band).Render(percent(u.Ratio)))
	}
	if s.AllCards != nil {
		fmt.Fprintf(&b, "  %-28s %s\n", "All cards", bandStyle(s.AllCards.Band).Render(percent(s.AllCards.Ratio)))
	}

	b.WriteString("\n" + a.partnerLine(s.Partners))
	return b.String()
}

func (a *App) partnerLine(p report.PartnerSummary) string {
	labelA, labelB := a.cfg.Partners.A, a.cfg.Partners.B
	line := fmt.Sprintf("Draws: %s %s (%d)  %s %s (%d)  ",
		labelA, a.money(p.A.Total), p.A.Count, labelB, a.money(p.B.Total), p.B.Count)
	switch p.Leader {
	case report.LeaderA:
		return line + fmt.Sprintf("%s ahead by %s", labelA, a.money(p.Diff))
	case report.LeaderB:
		return line + fmt.Sprintf("%s ahead by %s", labelB, a.money(p.Diff.Neg()))
	default:
		return line + "even"
	}
}

func (a *App) renderAccounts() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Accounts") + "\n")
	if len(a.accounts) == 0 {
		b.WriteString("  (no accounts)\n")
	}
	for i, acct := range a.accounts {
		marker := " "
		if i == a.acctCursor {
			marker = "▶"
		}
		due := "-"
		if acct.DueDay != nil {
			due = fmt.Sprintf("%d", *acct.DueDay)
		}
		fmt.Fprintf(&b, "%s %-28s %-14s %14s  min %12s  due %s\n",
			marker, acct.Name, acct.Type, a.money(acct.CurrentBalance), a.money(acct.MinimumPayment), due)
	}
	if len(a.history) > 0 {
		b.WriteString("\nBalance history\n")
		for _, h := range a.history {
			fmt.Fprintf(&b, "  %s  %s\n", h.Date.Format("2006-01-02"), a.money(h.Balance))
		}
	}
	if len(a.rewards) > 0 {
		b.WriteString("\nRewards\n")
		for _, p := range a.rewards {
			fmt.Fprintf(&b, "  %-32s %12d pts  %12s\n", p.Name, p.Balance, a.money(report.RewardsValue(p)))
		}
	}
	b.WriteString("\n[j/k] Move  [b] Update balance")
	return b.String()
}

func (a *App) renderDraws() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Partner draws") + "\n")
	if a.snapshot != nil {
		b.WriteString(a.partnerLine(a.snapshot.Partners) + "\n\n")
	}
	if len(a.draws) == 0 {
		b.WriteString("  (no draws)\n")
	}
	for i, d := range a.draws {
		marker := " "
		if i == a.drawCursor {
			marker = "▶"
		}
		fmt.Fprintf(&b, "%s %s  %-6s %-36s %12s\n", marker, d.Date.Format("2006-01-02"), d.Partner, d.Description, a.money(d.Amount))
	}
	if a.lastImport != nil {
		fmt.Fprintf(&b, "\nLast import: %d rows, %d skipped\n", len(a.lastImport.Draws), a.lastImport.Skipped)
	}
	b.WriteString("\n[i] Replace all from spreadsheet  [c] Clear all draws")
	return b.String()
}

func (a *App) renderSettings() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Settings") + "\n")
	if a.snapshot != nil {
		t := a.snapshot.Thresholds
		fmt.Fprintf(&b, "Cash warning below %s, danger below %s\n", a.money(t.CashWarning), a.money(t.CashDanger))
		fmt.Fprintf(&b, "Utilization warning from %s, critical above %s\n", percent(t.UtilizationWarning), percent(t.UtilizationDanger))
	}
	fmt.Fprintf(&b, "Import sheet %q\n", a.cfg.Import.Sheet)
	b.WriteString("\nAuto rules\n")
	if len(a.rules) == 0 {
		b.WriteString("  (no rules)\n")
	}
	for _, r := range a.rules {
		target := string(r.Bucket) + " > " + r.Category
		if r.Subcategory != nil {
			target += " > " + *r.Subcategory
		}
		line := fmt.Sprintf("  %3d  %-8s %-18s %s", r.Priority, r.MatchType, r.Pattern, target)
		if !r.IsActive {
			line = dimStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n[t] Edit thresholds  [n] Import sheet name  [x] Reset database (clears everything)")
	return b.String()
}

func (a *App) renderModal() string {
	switch a.modal {
	case modalImportPath:
		return titleStyle.Render("Spreadsheet path") + "\n" + a.input.View() + "\n[enter] Continue  [esc] Cancel"
	case modalConfirmImport:
		return titleStyle.Render("Replace all draws?") + fmt.Sprintf("\nEvery stored draw is deleted and replaced with %s.\n[y] Yes  [n] No", strings.TrimSpace(a.input.Value()))
	case modalBalance:
		name := ""
		if a.acctCursor < len(a.accounts) {
			name = a.accounts[a.acctCursor].Name
		}
		return titleStyle.Render("New balance for "+name) + "\n" + a.input.View() + "\n[enter] Save  [esc] Cancel"
	case modalThresholds:
		return titleStyle.Render("Thresholds") + "\ncash warning, cash danger, utilization warning %, danger %\n" + a.input.View() + "\n[enter] Save  [esc] Cancel"
	case modalSheetName:
		return titleStyle.Render("Import sheet name") + "\n" + a.input.View() + "\n[enter] Save to config  [esc] Cancel"
	case modalConfirmClear:
		return titleStyle.Render("Delete all draws?") + "\n[y] Yes  [n] No"
	case modalConfirmReset:
		return titleStyle.Render("Reset database?") + "\nThis will delete all data.\n[y] Yes  [n] No"
	default:
		return ""
	}
}
