package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PredictionForm is the user-facing price query form. ShippingCost is kept
// as the raw input string; it is parsed when the request is built.
type PredictionForm struct {
	ProductName   string `json:"product_name" form:"product_name"`
	Category      string `json:"category" form:"category"`
	Brand         string `json:"brand" form:"brand"`
	TargetCountry string `json:"target_country" form:"target_country"`
	ShippingCost  string `json:"shipping_cost" form:"shipping_cost"`
}

// Validate checks the required fields before a request is built.
func (f *PredictionForm) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"product_name", f.ProductName},
		{"category", f.Category},
		{"brand", f.Brand},
		{"target_country", f.TargetCountry},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%w: %s is required", ErrIncompleteQuery, r.name)
		}
	}
	return nil
}

// Empty reports whether no field has been filled in.
func (f *PredictionForm) Empty() bool {
	return f.ProductName == "" && f.Category == "" && f.Brand == "" &&
		f.TargetCountry == "" && f.ShippingCost == ""
}

// PredictionDefaults are the fixed values applied for fields the user never
// supplies.
type PredictionDefaults struct {
	Stock    int
	Platform string
}

// PredictionRequest is the complete, defaulted record sent to the
// prediction service. Optional fields the form does not cover are explicit
// nulls rather than omitted keys.
type PredictionRequest struct {
	ProductName  string  `json:"product_name_clean"`
	Category     string  `json:"category"`
	Brand        string  `json:"brand"`
	Country      string  `json:"country"`
	ShippingCost float64 `json:"shipping_cost"`
	Stock        int     `json:"stock"`
	Platform     string  `json:"platform"`
	Month        int     `json:"month"`
	City         *string `json:"city"`
	Seller       *string `json:"seller"`
}

// BuildPredictionRequest normalizes a validated form into a complete
// request record. Month is passed in explicitly so the function stays
// deterministic; callers use CurrentMonth for live requests. A blank or
// unparseable shipping cost defaults to 0.
func BuildPredictionRequest(form PredictionForm, month int, defaults PredictionDefaults) PredictionRequest {
	shipping, err := strconv.ParseFloat(strings.TrimSpace(form.ShippingCost), 64)
	if err != nil {
		shipping = 0
	}
	return PredictionRequest{
		ProductName:  form.ProductName,
		Category:     form.Category,
		Brand:        form.Brand,
		Country:      form.TargetCountry,
		ShippingCost: shipping,
		Stock:        defaults.Stock,
		Platform:     defaults.Platform,
		Month:        month,
	}
}

// CurrentMonth returns the calendar month used for live prediction
// requests.
func CurrentMonth(now time.Time) int {
	return int(now.Month())
}
