package services

import (
	"fmt"
	"io"
	"os"
	"strings"

	"investimmo-bot/models"
	"investimmo-bot/utils"
)

const topN = 5

type InsightService struct {
	logger *utils.Logger
	board  *OpportunityBoard
	out    io.Writer
}

func NewInsightService(logger *utils.Logger, board *OpportunityBoard) *InsightService {
	return &InsightService{logger: logger, board: board, out: os.Stdout}
}

func (s *InsightService) Generate(listings []*models.Listing) *models.InsightReport {
	report := &models.InsightReport{}
	if len(listings) == 0 {
		return report
	}

	report.TotalListings = len(listings)
	report.MinPrice = listings[0].Price
	report.MaxPrice = listings[0].Price

	var totalPrice, totalPPM2, totalDiscount, totalYield float64
	for _, l := range listings {
		totalPrice += l.Price
		totalPPM2 += l.PricePerM2
		totalDiscount += l.Discount
		totalYield += l.Yield

		if l.Price < report.MinPrice {
			report.MinPrice = l.Price
		}
		if l.Price > report.MaxPrice {
			report.MaxPrice = l.Price
		}
		if report.BestYield == nil || l.Yield > report.BestYield.Yield {
			report.BestYield = l
		}
		if report.BestDiscount == nil || l.Discount > report.BestDiscount.Discount {
			report.BestDiscount = l
		}
		if s.board != nil && s.board.Qualifies(l) {
			report.Opportunities++
		}
	}

	n := float64(len(listings))
	report.AveragePrice = roundTo(totalPrice/n, 2)
	report.AveragePricePerM2 = roundTo(totalPPM2/n, 0)
	report.AverageDiscount = roundTo(totalDiscount/n, 1)
	report.AverageYield = roundTo(totalYield/n, 2)

	ranked := make([]*models.Listing, len(listings))
	copy(ranked, listings)
	sortByYield(ranked)
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	report.TopByYield = ranked

	return report
}

func (s *InsightService) Print(scan *models.ScanReport, r *models.InsightReport) {
	w := s.out
	sep := strings.Repeat("═", 58)
	thin := strings.Repeat("─", 58)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  🏠 INVESTIMMO SCAN: %s (budget %s €)\033[0m\n", strings.ToUpper(scan.City), FormatEuros(float64(scan.Budget)))
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(w, "\033[1;33m  Market\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if ref := scan.Reference; ref != nil {
		fmt.Fprintf(w, "  Commune          : \033[1m%s\033[0m (INSEE %s, %d hab.)\n", ref.Commune, ref.Code, ref.Population)
		if ref.PricePerM2 > 0 {
			fmt.Fprintf(w, "  Reference price  : \033[1;32m%s €/m²\033[0m (%s of %d sales)\n",
				FormatEuros(ref.PricePerM2), ref.Method, ref.SampleSize)
		} else {
			fmt.Fprintf(w, "  Reference price  : unavailable, scores set to 0\n")
		}
	}
	if j := scan.Journey; j != nil {
		fmt.Fprintf(w, "  Train to target  : %s (%d transfer(s))\n", j.Duration.Round(60e9), j.Transfers)
	}
	for _, warn := range scan.Warnings {
		fmt.Fprintf(w, "  \033[33m⚠ %s\033[0m\n", warn)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Listings (%s)\033[0m\n", scan.Source)
	fmt.Fprintf(w, "  %s\n", thin)
	if r.TotalListings == 0 {
		fmt.Fprintf(w, "  No listing could be scored\n\n")
		fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)
		return
	}
	fmt.Fprintf(w, "  Scored listings  : \033[1m%d\033[0m\n", r.TotalListings)
	fmt.Fprintf(w, "  Price range      : %s – %s €\n", FormatEuros(r.MinPrice), FormatEuros(r.MaxPrice))
	fmt.Fprintf(w, "  Average price    : %s € (%s €/m²)\n", FormatEuros(r.AveragePrice), FormatEuros(r.AveragePricePerM2))
	fmt.Fprintf(w, "  Average discount : %.1f %%\n", r.AverageDiscount)
	fmt.Fprintf(w, "  Average yield    : %.2f %%\n", r.AverageYield)
	if b := r.BestDiscount; b != nil {
		fmt.Fprintf(w, "  Best discount    : %.1f %% – %s (%s €)\n", b.Discount, truncate(b.Title, 34), FormatEuros(b.Price))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Top %d by gross yield\033[0m\n", topN)
	fmt.Fprintf(w, "  %s\n", thin)
	for i, l := range r.TopByYield {
		fmt.Fprintf(w, "  \033[1m%d.\033[0m %-36s %9s € %6.1f m² \033[1;32m%5.2f %%\033[0m %6.1f %%\n",
			i+1, truncate(l.Title, 34), FormatEuros(l.Price), l.Surface, l.Yield, l.Discount)
	}
	fmt.Fprintln(w)

	threshold := DefaultOpportunityThreshold
	if s.board != nil {
		threshold = s.board.Threshold()
	}
	fmt.Fprintf(w, "\033[1;33m  Opportunities (≥ %.1f %% yield)\033[0m\n", threshold)
	fmt.Fprintf(w, "  %s\n", thin)
	if r.Opportunities == 0 {
		fmt.Fprintf(w, "  No exceptional listing found in this scan\n")
	} else {
		fmt.Fprintf(w, "  \033[1;32m%d\033[0m listing(s) qualify\n", r.Opportunities)
		for _, l := range scan.Opportunities {
			fmt.Fprintf(w, "  💎 %.2f %% – %s € – %.0f m² – %s\n", l.Yield, FormatEuros(l.Price), l.Surface, l.URL)
		}
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

// FormatEuros renders 245000 as "245 000".
func FormatEuros(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	digits := fmt.Sprintf("%.0f", v)

	var b strings.Builder
	for i, c := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(c)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
