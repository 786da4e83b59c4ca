package valueobject

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	USD Currency = "USD" // US Dollar (default)
	EUR Currency = "EUR" // Euro
	GBP Currency = "GBP" // British Pound
	ILS Currency = "ILS" // Israeli New Shekel
	JPY Currency = "JPY" // Japanese Yen
	CHF Currency = "CHF" // Swiss Franc
	CAD Currency = "CAD" // Canadian Dollar
	AUD Currency = "AUD" // Australian Dollar
	INR Currency = "INR" // Indian Rupee
	CNY Currency = "CNY" // Chinese Yuan
	KES Currency = "KES" // Kenyan Shilling
	UGX Currency = "UGX" // Ugandan Shilling
)

// DefaultCurrency is the default currency for the system
const DefaultCurrency = USD

// knownCurrencies covers the ISO 4217 codes the organization transacts in.
var knownCurrencies = map[Currency]struct{}{
	USD: {}, EUR: {}, GBP: {}, ILS: {}, JPY: {}, CHF: {},
	CAD: {}, AUD: {}, INR: {}, CNY: {}, KES: {}, UGX: {},
	"NZD": {}, "SGD": {}, "HKD": {}, "THB": {}, "MXN": {},
	"BRL": {}, "ZAR": {}, "TRY": {}, "SEK": {}, "NOK": {},
	"DKK": {}, "PLN": {}, "KRW": {},
}

// IsKnown returns true if the currency is a recognized ISO 4217 code
func (c Currency) IsKnown() bool {
	_, ok := knownCurrencies[c]
	return ok
}

// String returns the string representation of the currency
func (c Currency) String() string {
	return string(c)
}
