// Package report renders advisory output as markdown and charts.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/eddiepiper/04-03-DCM-agent/internal/common"
	"github.com/eddiepiper/04-03-DCM-agent/internal/models"
	"github.com/eddiepiper/04-03-DCM-agent/internal/services/rebalance"
)

// FormatPortfolioSummary generates the holdings table markdown.
func FormatPortfolioSummary(p *models.Portfolio) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Portfolio: %s\n\n", p.ID))
	sb.WriteString(fmt.Sprintf("**Date:** %s\n", time.Now().Format("2006-01-02 15:04")))
	sb.WriteString(fmt.Sprintf("**Total Value:** %s %s\n", common.FormatMoney(p.TotalValue()), p.Currency))
	sb.WriteString(fmt.Sprintf("**Cash Balance:** %s (%s)\n\n", common.FormatMoney(p.CashBalance), common.FormatPct(p.CashWeight())))

	holdings := p.Holdings()
	if len(holdings) == 0 {
		sb.WriteString("_No holdings._\n")
		return sb.String()
	}

	sb.WriteString("## Holdings\n\n")
	sb.WriteString("| Symbol | Name | Qty | Price | Value | Weight | Sector | Class |\n")
	sb.WriteString("|--------|------|-----|-------|-------|--------|--------|-------|\n")
	for _, h := range holdings {
		sb.WriteString(fmt.Sprintf("| %s | %s | %d | %s | %s | %s | %s | %s |\n",
			h.Symbol, h.Name, h.Quantity,
			common.FormatMoney(h.CurrentPrice), common.FormatMoney(h.TotalValue()),
			common.FormatPct(h.Weight), h.Sector, h.AssetClass,
		))
	}
	sb.WriteString("\n")

	if len(p.Metrics.SectorWeights) > 0 {
		sectors := make([]string, 0, len(p.Metrics.SectorWeights))
		for sector := range p.Metrics.SectorWeights {
			sectors = append(sectors, sector)
		}
		sort.Strings(sectors)

		sb.WriteString("## Sector Exposure\n\n")
		sb.WriteString("| Sector | Weight |\n")
		sb.WriteString("|--------|--------|\n")
		for _, sector := range sectors {
			sb.WriteString(fmt.Sprintf("| %s | %s |\n", sector, common.FormatPct(p.Metrics.SectorWeights[sector])))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// FormatPolicyResult generates the compliance section markdown.
func FormatPolicyResult(result *models.PolicyResult) string {
	var sb strings.Builder

	sb.WriteString("## Policy Compliance\n\n")
	if result.IsValid {
		sb.WriteString("✅ **Compliant** with all policy constraints\n\n")
	} else {
		sb.WriteString(fmt.Sprintf("❌ **Non-compliant**: %d violation(s)\n\n", len(result.Violations)))
	}

	if len(result.Violations) > 0 {
		sb.WriteString("### Violations\n\n")
		for _, v := range result.Violations {
			sb.WriteString(fmt.Sprintf("- ❌ %s\n", v))
		}
		sb.WriteString("\n")
	}

	if len(result.Warnings) > 0 {
		sb.WriteString("### Warnings\n\n")
		for _, w := range result.Warnings {
			sb.WriteString(fmt.Sprintf("- ⚠️ %s\n", w))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// FormatRecommendations generates the rebalance recommendation table.
func FormatRecommendations(recs []models.RebalanceRecommendation) string {
	var sb strings.Builder

	sb.WriteString("## Rebalance Recommendations\n\n")
	if len(recs) == 0 {
		sb.WriteString("_Portfolio is within policy bounds. No changes recommended._\n\n")
		return sb.String()
	}

	sb.WriteString("| Priority | Symbol | Current | Target | Change | Reason |\n")
	sb.WriteString("|----------|--------|---------|--------|--------|--------|\n")
	for _, r := range recs {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s |\n",
			priorityLabel(r.Priority), r.Symbol,
			common.FormatPct(r.CurrentWeight), common.FormatPct(r.TargetWeight),
			common.FormatSignedPct(r.WeightChange), r.Reason,
		))
	}
	sb.WriteString("\n")

	return sb.String()
}

// FormatTrades generates the trade list markdown.
func FormatTrades(trades []models.Trade) string {
	var sb strings.Builder

	sb.WriteString("## Trades\n\n")
	if len(trades) == 0 {
		sb.WriteString("_No trades required._\n\n")
		return sb.String()
	}

	sb.WriteString("| Action | Symbol | Qty | Price | Value | Weight |\n")
	sb.WriteString("|--------|--------|-----|-------|-------|--------|\n")
	for _, t := range trades {
		action := "SELL"
		if t.IsBuy() {
			action = "BUY"
		}
		qty := t.Quantity
		if qty < 0 {
			qty = -qty
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %d | %s | %s | %s → %s |\n",
			action, t.Symbol, qty,
			common.FormatMoney(t.Price), common.FormatMoney(t.Value.Abs()),
			common.FormatPct(t.OldWeight), common.FormatPct(t.NewWeight),
		))
	}
	sb.WriteString("\n")

	return sb.String()
}

// FormatAnalysis generates the risk analysis section markdown.
func FormatAnalysis(a *rebalance.Analysis) string {
	var sb strings.Builder

	sb.WriteString("## Risk Analysis\n\n")
	sb.WriteString(fmt.Sprintf("**Holdings:** %d\n", a.HoldingsCount))
	sb.WriteString(fmt.Sprintf("**Diversification Score:** %.2f\n", a.DiversificationScore))
	sb.WriteString(fmt.Sprintf("**Beta:** %.2f | **Volatility:** %s | **Sharpe:** %.2f\n\n",
		a.RiskMetrics.Beta, common.FormatPct(a.RiskMetrics.Volatility), a.RiskMetrics.SharpeRatio))

	if len(a.ConcentrationRisks) > 0 {
		sb.WriteString("### Concentration Risks\n\n")
		for _, risk := range a.ConcentrationRisks {
			sb.WriteString(fmt.Sprintf("- ⚠️ %s\n", risk))
		}
		sb.WriteString("\n")
	}

	if insights := a.Insights(); len(insights) > 0 {
		sb.WriteString("### Insights\n\n")
		for _, insight := range insights {
			sb.WriteString(fmt.Sprintf("- %s\n", insight))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// FormatAdvisory concatenates the full advisory report.
func FormatAdvisory(p *models.Portfolio, result *models.PolicyResult, analysis *rebalance.Analysis, recs []models.RebalanceRecommendation) string {
	var sb strings.Builder
	sb.WriteString(FormatPortfolioSummary(p))
	if result != nil {
		sb.WriteString(FormatPolicyResult(result))
	}
	if analysis != nil {
		sb.WriteString(FormatAnalysis(analysis))
	}
	sb.WriteString(FormatRecommendations(recs))
	return sb.String()
}

func priorityLabel(p int) string {
	switch p {
	case models.PriorityHigh:
		return "High"
	case models.PriorityMedium:
		return "Medium"
	case models.PriorityLow:
		return "Low"
	default:
		return fmt.Sprintf("P%d", p)
	}
}
