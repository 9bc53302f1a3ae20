package storage

import "time"

// Provenance tags for food rows.
const (
	// SourceSeed marks rows created by the bulk seed command.
	SourceSeed = "seed"

	// SourceExternalAPI marks rows persisted from a provider lookup.
	SourceExternalAPI = "external-api"
)

// DefaultServingSizeG is the serving basis for all entries in this domain.
const DefaultServingSizeG = 100

// Food is a nutrition record keyed by its normalized slug. The slug is
// unique and immutable once set; the lookup path only ever inserts-if-absent
// and never overwrites an existing row.
type Food struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	Name                string    `gorm:"size:255;not null" json:"name"`
	Slug                string    `gorm:"size:255;not null;uniqueIndex" json:"slug"`
	ServingSizeG        float64   `gorm:"not null;default:100" json:"servingSizeG"`
	Calories            float64   `gorm:"not null" json:"calories"`
	ProteinG            float64   `gorm:"not null" json:"proteinG"`
	CarbohydratesTotalG float64   `gorm:"not null" json:"carbohydratesTotalG"`
	FatTotalG           float64   `gorm:"not null" json:"fatTotalG"`
	FatSaturatedG       float64   `gorm:"not null;default:0" json:"fatSaturatedG"`
	FiberG              float64   `gorm:"not null;default:0" json:"fiberG"`
	SugarG              float64   `gorm:"not null;default:0" json:"sugarG"`
	SodiumMg            float64   `gorm:"not null;default:0" json:"sodiumMg"`
	PotassiumMg         float64   `gorm:"not null;default:0" json:"potassiumMg"`
	CholesterolMg       float64   `gorm:"not null;default:0" json:"cholesterolMg"`
	DataSource          string    `gorm:"size:32;not null;index" json:"dataSource"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// TableName overrides the gorm table name.
func (Food) TableName() string {
	return "foods"
}

// APIUsageLog is one append-only row per external provider call. Rows are
// never mutated; quota windows are counted at read time.
type APIUsageLog struct {
	ID          uint      `gorm:"primaryKey"`
	APIEndpoint string    `gorm:"column:api_endpoint;size:64;not null"`
	CreatedAt   time.Time `gorm:"index"`
}

// TableName overrides the gorm table name.
func (APIUsageLog) TableName() string {
	return "api_usage_logs"
}

// SearchMetric is one append-only row per lookup attempt, hit or miss.
type SearchMetric struct {
	ID             uint      `gorm:"primaryKey"`
	Query          string    `gorm:"size:255;not null"`
	Slug           string    `gorm:"size:255;not null"`
	CacheHit       bool      `gorm:"not null"`
	ResponseTimeMs int64     `gorm:"not null"`
	CreatedAt      time.Time `gorm:"index"`
}

// TableName overrides the gorm table name.
func (SearchMetric) TableName() string {
	return "search_metrics"
}
