package feed

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	CompressionZip  = "zip"
	CompressionNone = "none"
)

// DefaultColumns is the explicit column list requested from the datafeed
// download endpoint. Requesting columns by name keeps the pipeline stable
// when the network adds new ones.
var DefaultColumns = []string{
	"aw_product_id",
	"product_name",
	"description",
	"search_price",
	"currency",
	"aw_image_url",
	"aw_deep_link",
	"merchant_category",
	"merchant_product_category",
	"merchant_name",
}

// BuildFeedURL assembles the Awin datafeed download URL for one advertiser
// feed. Pure string construction, no I/O. The API key is path-escaped
// because Awin issues keys that may carry reserved characters.
func BuildFeedURL(apiKey string, feedID int, columns []string, compression string) (string, error) {
	if strings.TrimSpace(apiKey) == "" {
		return "", fmt.Errorf("empty datafeed api key")
	}
	if feedID <= 0 {
		return "", fmt.Errorf("invalid feed id %d", feedID)
	}
	if compression != CompressionZip && compression != CompressionNone {
		return "", fmt.Errorf("unsupported compression %q", compression)
	}
	if len(columns) == 0 {
		columns = DefaultColumns
	}

	escaped := make([]string, len(columns))
	for i, c := range columns {
		escaped[i] = url.PathEscape(c)
	}

	return fmt.Sprintf(
		"https://productdata.awin.com/datafeed/download/apikey/%s/fid/%d/format/csv/language/es/delimiter/%s/compression/%s/columns/%s",
		url.PathEscape(apiKey),
		feedID,
		url.PathEscape(","),
		compression,
		strings.Join(escaped, ","),
	), nil
}
