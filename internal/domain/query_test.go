package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

var testDefaults = PredictionDefaults{Stock: 100, Platform: "E-commerce"}

func TestBuildPredictionRequest(t *testing.T) {
	form := PredictionForm{
		ProductName:   "Chair",
		Category:      "Furniture",
		Brand:         "Acme",
		TargetCountry: "Germany",
		ShippingCost:  "",
	}

	got := BuildPredictionRequest(form, 3, testDefaults)

	want := PredictionRequest{
		ProductName:  "Chair",
		Category:     "Furniture",
		Brand:        "Acme",
		Country:      "Germany",
		ShippingCost: 0,
		Stock:        100,
		Platform:     "E-commerce",
		Month:        3,
	}
	if got != want {
		t.Errorf("BuildPredictionRequest() = %+v, want %+v", got, want)
	}
}

func TestBuildPredictionRequestShippingCost(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
	}{
		{"blank", "", 0},
		{"unparseable", "cheap", 0},
		{"integer", "10", 10},
		{"decimal", "10.5", 10.5},
		{"padded", "  7.25 ", 7.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := PredictionForm{
				ProductName:   "Chair",
				Category:      "Furniture",
				Brand:         "Acme",
				TargetCountry: "Germany",
				ShippingCost:  tt.input,
			}
			got := BuildPredictionRequest(form, 1, testDefaults)
			if got.ShippingCost != tt.want {
				t.Errorf("ShippingCost = %v, want %v", got.ShippingCost, tt.want)
			}
		})
	}
}

func TestBuildPredictionRequestIsDeterministic(t *testing.T) {
	form := PredictionForm{ProductName: "Chair", Category: "Furniture", Brand: "Acme", TargetCountry: "Germany"}
	first := BuildPredictionRequest(form, 6, testDefaults)
	second := BuildPredictionRequest(form, 6, testDefaults)
	if first != second {
		t.Errorf("same inputs gave different records: %+v vs %+v", first, second)
	}
}

func TestPredictionRequestWireFormat(t *testing.T) {
	// Unset optional fields go out as explicit nulls, not omitted keys.
	req := BuildPredictionRequest(PredictionForm{
		ProductName:   "Chair",
		Category:      "Furniture",
		Brand:         "Acme",
		TargetCountry: "Germany",
	}, 3, testDefaults)

	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var wire map[string]any
	if err := json.Unmarshal(data, &wire); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	for _, key := range []string{"product_name_clean", "category", "brand", "country",
		"shipping_cost", "stock", "platform", "month", "city", "seller"} {
		if _, ok := wire[key]; !ok {
			t.Errorf("wire record missing key %q", key)
		}
	}
	if wire["city"] != nil || wire["seller"] != nil {
		t.Errorf("city = %v, seller = %v, want explicit nulls", wire["city"], wire["seller"])
	}
	if wire["platform"] != "E-commerce" {
		t.Errorf("platform = %v", wire["platform"])
	}
}

func TestPredictionFormValidate(t *testing.T) {
	valid := PredictionForm{ProductName: "Chair", Category: "Furniture", Brand: "Acme", TargetCountry: "Germany"}

	tests := []struct {
		name    string
		mutate  func(*PredictionForm)
		wantErr bool
	}{
		{"all required present", func(*PredictionForm) {}, false},
		{"missing product name", func(f *PredictionForm) { f.ProductName = "" }, true},
		{"missing category", func(f *PredictionForm) { f.Category = "" }, true},
		{"missing brand", func(f *PredictionForm) { f.Brand = "  " }, true},
		{"missing target country", func(f *PredictionForm) { f.TargetCountry = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := valid
			tt.mutate(&form)
			err := form.Validate()
			if tt.wantErr && !errors.Is(err, ErrIncompleteQuery) {
				t.Errorf("Validate() = %v, want ErrIncompleteQuery", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestCurrentMonth(t *testing.T) {
	now := time.Date(2025, time.March, 14, 10, 0, 0, 0, time.UTC)
	if got := CurrentMonth(now); got != 3 {
		t.Errorf("CurrentMonth() = %d, want 3", got)
	}
}
