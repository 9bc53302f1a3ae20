// Package quota tracks external nutrition API usage against hard daily and
// monthly ceilings and gates outbound calls before they can incur provider
// cost.
package quota

// Endpoint tags recorded in the usage ledger.
const (
	// EndpointNutrition tags calls to the nutrition provider API.
	EndpointNutrition = "calorieninjas"
)

// Default call ceilings for the nutrition provider plan.
const (
	DefaultDailyLimit   = 1000
	DefaultMonthlyLimit = 10000

	// WarningThreshold is the usage ratio at which warnings are emitted.
	WarningThreshold = 0.8
)

// Limits holds the configured call ceilings. Passed by value, never mutated
// at runtime.
type Limits struct {
	Daily   int
	Monthly int
}

// DefaultLimits returns the standard provider plan limits.
func DefaultLimits() Limits {
	return Limits{
		Daily:   DefaultDailyLimit,
		Monthly: DefaultMonthlyLimit,
	}
}

// Status is the derived usage snapshot for the current day and calendar
// month. It is computed at read time from the append-only ledger and never
// persisted.
type Status struct {
	DailyCalls   int64 `json:"dailyCalls"`
	MonthlyCalls int64 `json:"monthlyCalls"`

	DailyLimit   int `json:"dailyLimit"`
	MonthlyLimit int `json:"monthlyLimit"`

	// Percentages are count/limit ratios, deliberately not clamped at 1.0 so
	// overruns remain visible.
	DailyPercentage   float64 `json:"dailyPercentage"`
	MonthlyPercentage float64 `json:"monthlyPercentage"`

	DailyWarning   bool `json:"isDailyWarning"`
	MonthlyWarning bool `json:"isMonthlyWarning"`

	DailyExceeded   bool `json:"isDailyQuotaExceeded"`
	MonthlyExceeded bool `json:"isMonthlyQuotaExceeded"`
}

// newStatus derives warning and exceeded flags from raw counts.
func newStatus(daily, monthly int64, limits Limits) Status {
	return Status{
		DailyCalls:        daily,
		MonthlyCalls:      monthly,
		DailyLimit:        limits.Daily,
		MonthlyLimit:      limits.Monthly,
		DailyPercentage:   float64(daily) / float64(limits.Daily),
		MonthlyPercentage: float64(monthly) / float64(limits.Monthly),
		DailyWarning:      daily >= int64(float64(limits.Daily)*WarningThreshold),
		MonthlyWarning:    monthly >= int64(float64(limits.Monthly)*WarningThreshold),
		DailyExceeded:     daily >= int64(limits.Daily),
		MonthlyExceeded:   monthly >= int64(limits.Monthly),
	}
}
