package pricewatch

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	backendTimestampLayout = "2006-01-02T15:04:05"

	// TitleDisplayLimit is the number of runes shown before a title is cut.
	TitleDisplayLimit = 30

	// LinkPlaceholder stands in for a product without a source listing URL.
	LinkPlaceholder = "#"
)

// Product is a search result with its recorded price history.
type Product struct {
	ID        int64        `json:"id" validate:"required,gt=0"`
	Title     string       `json:"title"`
	URL       string       `json:"url"`
	ImageURL  string       `json:"image_url"`
	Prices    []PricePoint `json:"prices" validate:"dive"`
	CreatedAt string       `json:"created_at"`
	UpdatedAt string       `json:"updated_at"`
}

// PricePoint is one observation of a product's price on a site. Price is
// null when the scraper could not read one.
type PricePoint struct {
	Site       string              `json:"site" validate:"required"`
	Price      decimal.NullDecimal `json:"price"`
	RecordedAt string              `json:"date"`
}

// UnmarshalJSON accepts both the backend's snake_case payloads and the
// camelCase shape used by older frontends.
func (p *Product) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID             int64        `json:"id"`
		Title          string       `json:"title"`
		URL            string       `json:"url"`
		ImageURL       string       `json:"image_url"`
		ImageURLCamel  string       `json:"imageUrl"`
		Prices         []PricePoint `json:"prices"`
		CreatedAt      string       `json:"created_at"`
		CreatedAtCamel string       `json:"createdAt"`
		UpdatedAt      string       `json:"updated_at"`
		UpdatedAtCamel string       `json:"updatedAt"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Product{
		ID:        raw.ID,
		Title:     raw.Title,
		URL:       raw.URL,
		ImageURL:  firstNonEmpty(raw.ImageURL, raw.ImageURLCamel),
		Prices:    raw.Prices,
		CreatedAt: firstNonEmpty(raw.CreatedAt, raw.CreatedAtCamel),
		UpdatedAt: firstNonEmpty(raw.UpdatedAt, raw.UpdatedAtCamel),
	}
	return nil
}

// UnmarshalJSON maps the several timestamp spellings onto RecordedAt.
func (pp *PricePoint) UnmarshalJSON(data []byte) error {
	var raw struct {
		Site            string              `json:"site"`
		Price           decimal.NullDecimal `json:"price"`
		Date            string              `json:"date"`
		CreatedAt       string              `json:"created_at"`
		CreatedAtCamel  string              `json:"createdAt"`
		RecordedAtCamel string              `json:"recordedAt"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*pp = PricePoint{
		Site:       raw.Site,
		Price:      raw.Price,
		RecordedAt: firstNonEmpty(raw.Date, raw.CreatedAt, raw.CreatedAtCamel, raw.RecordedAtCamel),
	}
	return nil
}

// LatestPrice returns the most recently recorded price, which is the last
// element of the history.
func (p Product) LatestPrice() (PricePoint, bool) {
	if len(p.Prices) == 0 {
		return PricePoint{}, false
	}
	return p.Prices[len(p.Prices)-1], true
}

// DisplayTitle returns the title cut to TitleDisplayLimit runes.
func (p Product) DisplayTitle() string {
	runes := []rune(p.Title)
	if len(runes) <= TitleDisplayLimit {
		return p.Title
	}
	return string(runes[:TitleDisplayLimit]) + "..."
}

// Link returns the listing URL or LinkPlaceholder when the product has none.
func (p Product) Link() string {
	if u := strings.TrimSpace(p.URL); u != "" {
		return u
	}
	return LinkPlaceholder
}

// HasImage reports whether a thumbnail should be shown at all.
func (p Product) HasImage() bool {
	return strings.TrimSpace(p.ImageURL) != ""
}

// ParsedUpdatedAt returns the parsed UpdatedAt timestamp.
func (p Product) ParsedUpdatedAt() time.Time {
	return parseTime(p.UpdatedAt)
}

// ParsedRecordedAt returns RecordedAt as time.Time when it parses.
func (pp PricePoint) ParsedRecordedAt() time.Time {
	return parseTime(pp.RecordedAt)
}

// HasPrice reports whether a price was recorded.
func (pp PricePoint) HasPrice() bool {
	return pp.Price.Valid
}

// SearchJob is the backend's acknowledgement of a started scrape job.
type SearchJob struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Token is an issued access token.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func parseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	// Naive timestamps from the backend are UTC.
	if t, err := time.ParseInLocation(backendTimestampLayout, value, time.UTC); err == nil {
		return t
	}
	return time.Time{}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
