// Package rates fetches the ECB daily reference-rate document and parses it
// into base->quote conversion factors.
package rates

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Rate is one published conversion factor: 1 Base = Rate Quote, effective on
// Date.
type Rate struct {
	Base  string
	Quote string
	Rate  decimal.Decimal
	Date  time.Time
}

// Client retrieves the daily XML rates feed
type Client struct {
	url    string
	base   string
	client *http.Client
	log    *logrus.Logger
}

// NewClient initializes a rates feed client. base is the feed's base currency
// (EUR for the ECB document).
func NewClient(url, base string, log *logrus.Logger) *Client {
	return &Client{
		url:  url,
		base: base,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// Fetch downloads and parses the feed.
func (c *Client) Fetch(ctx context.Context) ([]Rate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debugf("Rates feed response: %d bytes", len(body))
	return c.parse(body)
}

// parse extracts the dated rate entries from the ECB envelope. The document
// nests three Cube levels: a container, one dated element, and one element
// per currency.
func (c *Client) parse(raw []byte) ([]Rate, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}

	dated := doc.FindElements("//Cube/Cube[@time]")
	if len(dated) == 0 {
		return nil, fmt.Errorf("no dated rate data found in XML")
	}

	var out []Rate
	for _, day := range dated {
		date, err := time.Parse("2006-01-02", day.SelectAttrValue("time", ""))
		if err != nil {
			return nil, fmt.Errorf("failed to parse feed date: %w", err)
		}

		for _, el := range day.SelectElements("Cube") {
			code := el.SelectAttrValue("currency", "")
			rateText := el.SelectAttrValue("rate", "")
			if code == "" || rateText == "" {
				continue
			}
			rate, err := decimal.NewFromString(rateText)
			if err != nil {
				return nil, fmt.Errorf("failed to parse rate for %s: %w", code, err)
			}
			out = append(out, Rate{Base: c.base, Quote: code, Rate: rate, Date: date})
		}
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no currency rates found in XML")
	}
	return out, nil
}
