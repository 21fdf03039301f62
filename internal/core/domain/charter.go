package domain

// Table names on the backing store.
const (
	TableUsers     = "users"
	TableYachts    = "yachts"
	TableCustomers = "customers"
	TableCharters  = "charters"
)

// Currencies accepted for yacht pricing.
const (
	CurrencyUSD = "USD"
	CurrencyAED = "AED"
	CurrencyEUR = "EUR"
)

// PackageType is the charter package booked by a customer.
type PackageType string

const (
	PackageHalfDay   PackageType = "HALF_DAY"
	PackageFullDay   PackageType = "FULL_DAY"
	PackageSunset    PackageType = "SUNSET"
	PackageOvernight PackageType = "OVERNIGHT"
	PackageWeekly    PackageType = "WEEKLY"
)

// CharterStatus is the booking state of a charter record.
type CharterStatus string

const (
	CharterPending   CharterStatus = "PENDING"
	CharterConfirmed CharterStatus = "CONFIRMED"
	CharterCancelled CharterStatus = "CANCELLED"
	CharterCompleted CharterStatus = "COMPLETED"
)
