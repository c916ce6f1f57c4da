package domain

import "time"

// Compression tokens recorded on delivery records.
const (
	CompressionNone   = "none"
	CompressionGzip   = "gzip"
	CompressionBrotli = "br"
)

// DeliveryOptimizationRecord holds the cache validators for one published
// content item. 1:1 with ContentItem; recomputed whenever the active
// version changes.
type DeliveryOptimizationRecord struct {
	ID              uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ContentID       string    `gorm:"column:content_id;size:36;uniqueIndex" json:"content_id"`
	ContentDate     string    `gorm:"column:content_date;size:10;index" json:"content_date"`
	ETag            string    `gorm:"column:etag;size:64" json:"etag"`
	LastModified    time.Time `gorm:"column:last_modified" json:"last_modified"`
	CacheControl    string    `gorm:"column:cache_control;size:128" json:"cache_control"`
	CompressionType string    `gorm:"column:compression_type;size:8" json:"compression_type"`
	ContentSize     int       `gorm:"column:content_size" json:"content_size"`
	CacheHitCount   int64     `gorm:"column:cache_hit_count" json:"cache_hit_count"`
	CacheMissCount  int64     `gorm:"column:cache_miss_count" json:"cache_miss_count"`
	CDNURL          string    `gorm:"column:cdn_url;size:255" json:"cdn_url"`
	UpdatedAt       time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (DeliveryOptimizationRecord) TableName() string {
	return "delivery_optimization_records"
}
