package catalog

// Tier is one of the fixed product/price combinations. Prices are integer
// minor currency units (US cents); this is the only authority on pricing, so
// a tampered client price can never reach the payment gateway.
type Tier struct {
	// Name is the product name shown on the hosted checkout page.
	Name string

	// PriceCents is the unit amount in minor currency units.
	PriceCents int64
}

// DefaultTier is used when a subscription checkout does not name a tier.
const DefaultTier = "classic"

var tiers = map[string]Tier{
	"dusty":   {Name: "Dusty Dry Pinecone", PriceCents: 1000},
	"classic": {Name: "Classic Kongle", PriceCents: 2000},
	"deluxe":  {Name: "Deluxe Furu Kongle", PriceCents: 3000},
	"ultra":   {Name: "Ultra Deluxe Supreme Kongle", PriceCents: 100000},
}

var quoteTypes = map[string]struct{}{
	"funny":     {},
	"sad":       {},
	"sarcastic": {},
}

// LookupTier returns the tier for a pinecone type, reporting whether the
// type is recognised.
func LookupTier(pineconeType string) (Tier, bool) {
	tier, ok := tiers[pineconeType]
	return tier, ok
}

// ValidTier checks if a pinecone type names a known tier.
func ValidTier(pineconeType string) bool {
	_, ok := tiers[pineconeType]
	return ok
}

// ValidQuoteType checks if a quote style is one of the recognised values.
func ValidQuoteType(quoteType string) bool {
	_, ok := quoteTypes[quoteType]
	return ok
}
