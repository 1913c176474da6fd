package extract

import "clues/internal/schema"

// PublicRecordsSchema covers county appraiser, tax and permit data.
var PublicRecordsSchema = schema.NewObject("public_records",
	schema.Currency("37_tax_rate", 0.1, 5.0,
		"Property tax rate as percentage (e.g., 1.85 for 1.85%)"),
	schema.String("38_exemptions",
		"Comma-separated list of active tax exemptions"),
	schema.Year("60_roof_permit",
		`Year of most recent finaled roof permit (e.g., "2021")`),
	schema.Year("61_hvac_permit",
		`Year of most recent finaled HVAC permit (e.g., "2021")`),
	schema.Year("62_other_permit",
		"Year of most recent other major permit (pool, additions, fence, electrical, plumbing, structural)"),
	schema.Enum("151_homestead",
		"Whether homestead exemption is active", "Yes", "No"),
	schema.Enum("152_cdd_exists",
		"Whether CDD (Community Development District) fees exist", "Yes", "No"),
	schema.Currency("153_cdd_fee", 0, 50000,
		"Annual CDD fee amount in dollars"),
)

// NeighborhoodSchema covers ZIP level market data and walkability scores.
var NeighborhoodSchema = schema.NewObject("neighborhood",
	schema.Currency("75_transit_score", 0, 100,
		"WalkScore Transit Score (0-100)"),
	schema.Currency("76_bike_score", 0, 100,
		"WalkScore Bike Score (0-100)"),
	schema.Currency("91_median_price_zip", 10000, 10000000,
		"Median home sale price for ZIP code"),
	schema.Currency("95_days_on_market_avg", 0, 365,
		"Average days on market for ZIP code"),
	schema.String("116_emergency_dist",
		`Driving distance to nearest emergency room (e.g., "3.5 miles")`),
	schema.String("159_water_body_name",
		`Name of nearest major body of water (e.g., "Tampa Bay")`),
)

// PortalSchema covers listing portal estimates and details.
var PortalSchema = schema.NewObject("portals",
	schema.Currency("12_market_value", 10000, 50000000,
		"Average of Zestimate and Redfin Estimate (or single value if only one available)"),
	schema.Currency("16_avms", 10000, 50000000,
		"Exact Redfin Estimate value"),
	schema.Currency("31_hoa_fee_annual", 0, 50000,
		"Annual HOA fee in dollars"),
	schema.String("33_hoa_includes",
		"Comma-separated list of what HOA covers"),
	schema.Currency("98_rental_estimate", 100, 50000,
		"Monthly rental estimate"),
	schema.String("131_view_type",
		"Type of view (Water, Golf, Park, City, Mountain, None, etc.)"),
)

// PublicRecords is a validated public records batch.
type PublicRecords struct {
	TaxRate     *float64 `json:"37_tax_rate"`
	Exemptions  *string  `json:"38_exemptions"`
	RoofPermit  *string  `json:"60_roof_permit"`
	HVACPermit  *string  `json:"61_hvac_permit"`
	OtherPermit *string  `json:"62_other_permit"`
	Homestead   *string  `json:"151_homestead"`
	CDDExists   *string  `json:"152_cdd_exists"`
	CDDFee      *float64 `json:"153_cdd_fee"`
}

// Neighborhood is a validated neighborhood batch.
type Neighborhood struct {
	TransitScore      *float64 `json:"75_transit_score"`
	BikeScore         *float64 `json:"76_bike_score"`
	MedianPriceZIP    *float64 `json:"91_median_price_zip"`
	DaysOnMarketAvg   *float64 `json:"95_days_on_market_avg"`
	EmergencyDistance *string  `json:"116_emergency_dist"`
	WaterBodyName     *string  `json:"159_water_body_name"`
}

// Portal is a validated listing portal batch.
type Portal struct {
	MarketValue    *float64 `json:"12_market_value"`
	AVMs           *float64 `json:"16_avms"`
	HOAFeeAnnual   *float64 `json:"31_hoa_fee_annual"`
	HOAIncludes    *string  `json:"33_hoa_includes"`
	RentalEstimate *float64 `json:"98_rental_estimate"`
	ViewType       *string  `json:"131_view_type"`
}

func ValidatePublicRecords(data any) (PublicRecords, error) {
	return validateInto[PublicRecords](PublicRecordsSchema, data)
}

func ValidateNeighborhood(data any) (Neighborhood, error) {
	return validateInto[Neighborhood](NeighborhoodSchema, data)
}

func ValidatePortal(data any) (Portal, error) {
	return validateInto[Portal](PortalSchema, data)
}

func SafeParsePublicRecords(data any) schema.ParseResult {
	return PublicRecordsSchema.SafeParse(data)
}

func SafeParseNeighborhood(data any) schema.ParseResult {
	return NeighborhoodSchema.SafeParse(data)
}

func SafeParsePortal(data any) schema.ParseResult {
	return PortalSchema.SafeParse(data)
}

func validateInto[T any](o *schema.Object, data any) (T, error) {
	var out T
	vals, err := o.Parse(data)
	if err != nil {
		return out, err
	}
	if err := schema.Decode(vals, &out); err != nil {
		return out, err
	}
	return out, nil
}
