package pricewatch

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateProduct checks a decoded product against the schema the UI relies on.
func validateProduct(p Product) error {
	if err := validate.Struct(p); err != nil {
		return err
	}
	for i, pp := range p.Prices {
		if pp.Price.Valid && pp.Price.Decimal.IsNegative() {
			return fmt.Errorf("prices[%d]: negative price %s", i, pp.Price.Decimal.String())
		}
	}
	return nil
}

// validateProducts drops malformed entries, logging each one, and always
// returns a non-nil slice.
func validateProducts(products []Product, logger zerolog.Logger) []Product {
	valid := make([]Product, 0, len(products))
	for i, p := range products {
		if err := validateProduct(p); err != nil {
			logger.Warn().
				Err(err).
				Int("index", i).
				Int64("product_id", p.ID).
				Msg("dropping malformed product")
			continue
		}
		valid = append(valid, p)
	}
	return valid
}
