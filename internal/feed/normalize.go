package feed

import (
	"math"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"giftfeed/internal/model"
)

// Mapper turns one raw record into a product candidate using the column
// names of a specific affiliate network. Returning false skips the row;
// malformed rows are expected in bulk feeds and never abort a run.
type Mapper interface {
	Map(rec Record, fd model.FeedDescriptor) (model.Candidate, bool)
}

// MapperFor selects the column mapping strategy for a network label.
// Unknown networks fall back to the Awin layout, the only network the
// catalog currently ingests.
func MapperFor(network string) Mapper {
	switch strings.ToLower(network) {
	case "awin", "":
		return awinMapper{}
	default:
		return awinMapper{}
	}
}

type awinMapper struct{}

func (awinMapper) Map(rec Record, fd model.FeedDescriptor) (model.Candidate, bool) {
	link := strings.TrimSpace(rec["aw_deep_link"])
	if link == "" {
		// No deep link means no natural key: the row cannot be stored.
		return model.Candidate{}, false
	}

	price, ok := parsePrice(rec["search_price"])
	if !ok {
		return model.Candidate{}, false
	}

	currency := strings.ToUpper(strings.TrimSpace(rec["currency"]))
	if currency == "" {
		currency = "EUR"
	}

	rawCategory := strings.TrimSpace(rec["merchant_category"])
	if rawCategory == "" {
		rawCategory = strings.TrimSpace(rec["merchant_product_category"])
	}

	return model.Candidate{
		Title:       strings.TrimSpace(rec["product_name"]),
		Description: htmlToText(rec["description"]),
		Price:       price,
		Currency:    currency,
		ImageURL:    strings.TrimSpace(rec["aw_image_url"]),
		SourceURL:   link,
		RawCategory: rawCategory,
		Platform:    fd.Platform,
		Network:     fd.Network,
	}, true
}

// parsePrice accepts both "12.50" and the comma decimals some merchants
// export. Unparsable, non-finite and negative values reject the row.
func parsePrice(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return v, true
}

// htmlToText flattens the HTML fragments merchants ship as descriptions.
func htmlToText(s string) string {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, "<") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
