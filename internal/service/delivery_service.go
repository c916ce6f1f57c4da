package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/dailywell/content-engine/internal/common"
	"github.com/dailywell/content-engine/internal/config"
	"github.com/dailywell/content-engine/internal/domain"
	"github.com/dailywell/content-engine/internal/repository"
	"github.com/dailywell/content-engine/pkg/cache"
	"github.com/dailywell/content-engine/pkg/logger"
	"github.com/klauspost/compress/gzip"
)

// ConditionalRequest carries the caching headers of an incoming request.
type ConditionalRequest struct {
	IfNoneMatch     string
	IfModifiedSince string
	AcceptEncoding  string
}

// DeliveryResponse is what the cached-content endpoint writes out.
type DeliveryResponse struct {
	NotModified  bool
	Body         []byte
	Encoding     string // none | gzip | br
	ETag         string
	LastModified time.Time
	CacheControl string
}

// WarmResult is the per-date outcome of a warm-cache call.
type WarmResult struct {
	Date    string `json:"date"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// PerformanceReport grades delivery efficiency over a date window.
type PerformanceReport struct {
	Days             int     `json:"days"`
	Records          int     `json:"records"`
	CacheHits        int64   `json:"cache_hits"`
	CacheMisses      int64   `json:"cache_misses"`
	HitRate          float64 `json:"hit_rate"`
	CompressionUsage float64 `json:"compression_usage"`
	SizeOptimization float64 `json:"size_optimization"`
	Score            float64 `json:"score"`
	Grade            string  `json:"grade"`
}

// DeliveryService negotiates conditional caching and compression for
// published content.
type DeliveryService interface {
	ServeCached(ctx context.Context, date string, req ConditionalRequest) (*DeliveryResponse, error)
	Recompute(ctx context.Context, item *domain.ContentItem) (*domain.DeliveryOptimizationRecord, error)
	Performance(ctx context.Context, days int) (*PerformanceReport, error)
	WarmCache(ctx context.Context, dates []string) []WarmResult
}

type deliveryService struct {
	contents repository.ContentRepository
	records  repository.DeliveryRepository
	cache    cache.Service
	cfg      config.DeliveryConfig
}

// NewDeliveryService creates a new DeliveryService
func NewDeliveryService(
	contents repository.ContentRepository,
	records repository.DeliveryRepository,
	cacheSvc cache.Service,
	cfg config.DeliveryConfig,
) DeliveryService {
	return &deliveryService{contents: contents, records: records, cache: cacheSvc, cfg: cfg}
}

// ComputeETagHash derives the content validator: the first 16 hex chars
// of sha256 over id, title, summary and the update timestamp. Stable for
// identical content, changed by any edit.
func ComputeETagHash(item *domain.ContentItem) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%d",
		item.ID, item.Title, item.Summary, item.UpdatedAt.Unix())))
	return hex.EncodeToString(sum[:])[:16]
}

// ComposeETag appends the encoding token so each content encoding has a
// distinct validator, as RFC 9110 requires for encoded variants.
func ComposeETag(hash, encoding string) string {
	if encoding == domain.CompressionNone {
		return hash
	}
	return hash + "-" + encoding
}

// NegotiateEncoding picks the response encoding from Accept-Encoding and
// the body size. Bodies under minSize are never compressed; brotli wins
// over gzip when both are acceptable. Independent of ETag hashing.
func NegotiateEncoding(acceptEncoding string, size, minSize int) string {
	if size < minSize {
		return domain.CompressionNone
	}
	br, gz := false, false
	for _, part := range strings.Split(acceptEncoding, ",") {
		token := strings.TrimSpace(part)
		if i := strings.IndexByte(token, ';'); i >= 0 {
			token = strings.TrimSpace(token[:i])
		}
		switch strings.ToLower(token) {
		case "br":
			br = true
		case "gzip":
			gz = true
		}
	}
	switch {
	case br:
		return domain.CompressionBrotli
	case gz:
		return domain.CompressionGzip
	}
	return domain.CompressionNone
}

func compressPayload(payload []byte, encoding string) ([]byte, error) {
	var buf bytes.Buffer
	switch encoding {
	case domain.CompressionGzip:
		w := gzip.NewWriter(&buf)
		if _, err := w.Write(payload); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	case domain.CompressionBrotli:
		w := brotli.NewWriter(&buf)
		if _, err := w.Write(payload); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	default:
		return payload, nil
	}
	return buf.Bytes(), nil
}

// deliveryPayload is the wire shape of cached content.
type deliveryPayload struct {
	ID          string  `json:"id"`
	ContentDate string  `json:"content_date"`
	Title       string  `json:"title"`
	Summary     string  `json:"summary"`
	Topic       string  `json:"topic"`
	Confidence  float64 `json:"confidence"`
}

func marshalPayload(item *domain.ContentItem) ([]byte, error) {
	return json.Marshal(deliveryPayload{
		ID:          item.ID,
		ContentDate: item.ContentDate,
		Title:       item.Title,
		Summary:     item.Summary,
		Topic:       item.Topic,
		Confidence:  item.Confidence,
	})
}

// ServeCached answers the cached-content endpoint. Validator order:
// If-None-Match first, then If-Modified-Since; a match is a 304 with no
// compression work done.
func (s *deliveryService) ServeCached(ctx context.Context, date string, req ConditionalRequest) (*DeliveryResponse, error) {
	if req.IfNoneMatch != "" || req.IfModifiedSince != "" {
		if resp := s.revalidateFromCache(ctx, date, req); resp != nil {
			return resp, nil
		}
	}

	item, err := s.contents.FindByDate(date)
	if err != nil {
		return nil, err
	}
	if item.Status != domain.ContentStatusPublished {
		return nil, common.ErrContentNotFound
	}

	payload, err := marshalPayload(item)
	if err != nil {
		return nil, err
	}

	hash := ComputeETagHash(item)
	encoding := NegotiateEncoding(req.AcceptEncoding, len(payload), s.cfg.MinCompressSize)
	etag := ComposeETag(hash, encoding)
	lastModified := item.UpdatedAt.UTC().Truncate(time.Second)

	resp := &DeliveryResponse{
		Encoding:     encoding,
		ETag:         etag,
		LastModified: lastModified,
		CacheControl: s.cfg.CacheControl,
	}

	if etagMatches(req.IfNoneMatch, etag) {
		s.countHit(item.ID)
		resp.NotModified = true
		return resp, nil
	}
	if req.IfModifiedSince != "" {
		if since, err := http.ParseTime(req.IfModifiedSince); err == nil {
			if !lastModified.After(since) {
				s.countHit(item.ID)
				resp.NotModified = true
				return resp, nil
			}
		}
	}

	body, err := s.encodedBody(ctx, item.ContentDate, payload, encoding)
	if err != nil {
		return nil, err
	}
	resp.Body = body

	// persist before counting so the first response has a row to count on
	if _, err := s.persistRecord(ctx, item, etag, lastModified, encoding, len(body)); err != nil {
		log := logger.WithContentID(item.ID)
		log.Warn().Err(err).Msg("delivery record persist failed")
	}
	s.countMiss(item.ID)
	return resp, nil
}

// revalidateFromCache answers revalidation requests from the cached
// delivery record without touching the database. It only ever produces
// 304s; any mismatch or cache miss returns nil and the full path runs.
// Within the record TTL a just-unpublished item can still revalidate;
// Recompute invalidates the record on every content change.
func (s *deliveryService) revalidateFromCache(ctx context.Context, date string, req ConditionalRequest) *DeliveryResponse {
	data, err := s.cache.GetDeliveryRecord(ctx, date)
	if err != nil || len(data) == 0 {
		return nil
	}
	var rec domain.DeliveryOptimizationRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil
	}

	hash := rec.ETag
	if i := strings.IndexByte(hash, '-'); i > 0 {
		hash = hash[:i]
	}
	encoding := domain.CompressionNone
	if rec.CompressionType != domain.CompressionNone {
		encoding = NegotiateEncoding(req.AcceptEncoding, s.cfg.MinCompressSize, s.cfg.MinCompressSize)
	}
	etag := ComposeETag(hash, encoding)
	lastModified := rec.LastModified.UTC().Truncate(time.Second)

	matched := etagMatches(req.IfNoneMatch, etag)
	if !matched && req.IfNoneMatch == "" && req.IfModifiedSince != "" {
		if since, err := http.ParseTime(req.IfModifiedSince); err == nil && !lastModified.After(since) {
			matched = true
		}
	}
	if !matched {
		return nil
	}

	s.countHit(rec.ContentID)
	return &DeliveryResponse{
		NotModified:  true,
		Encoding:     encoding,
		ETag:         etag,
		LastModified: lastModified,
		CacheControl: rec.CacheControl,
	}
}

// Recompute rebuilds the cache validators after a publication or version
// change and drops any stale pre-compressed payloads.
func (s *deliveryService) Recompute(ctx context.Context, item *domain.ContentItem) (*domain.DeliveryOptimizationRecord, error) {
	payload, err := marshalPayload(item)
	if err != nil {
		return nil, err
	}

	encoding := domain.CompressionNone
	if len(payload) >= s.cfg.MinCompressSize {
		encoding = domain.CompressionBrotli
	}
	body, err := compressPayload(payload, encoding)
	if err != nil {
		return nil, err
	}

	if err := s.cache.InvalidatePayloads(ctx, item.ContentDate); err != nil {
		logger.GetLogger().Warn().Err(err).Str("date", item.ContentDate).Msg("payload cache invalidation failed")
	}
	// drop the cached validators too so a crash before the upsert below
	// cannot leave stale revalidation data behind
	if err := s.cache.InvalidateDeliveryRecord(ctx, item.ContentDate); err != nil {
		logger.GetLogger().Warn().Err(err).Str("date", item.ContentDate).Msg("delivery record invalidation failed")
	}

	hash := ComputeETagHash(item)
	return s.persistRecord(ctx, item, ComposeETag(hash, encoding),
		item.UpdatedAt.UTC().Truncate(time.Second), encoding, len(body))
}

func (s *deliveryService) Performance(ctx context.Context, days int) (*PerformanceReport, error) {
	if days <= 0 {
		days = 7
	}
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -days).Format("2006-01-02")
	to := now.Format("2006-01-02")

	records, err := s.records.FindByDateRange(from, to)
	if err != nil {
		return nil, err
	}

	report := &PerformanceReport{Days: days, Records: len(records)}
	if len(records) == 0 {
		report.Grade = "F"
		return report, nil
	}

	compressed, optimized := 0, 0
	for _, r := range records {
		report.CacheHits += r.CacheHitCount
		report.CacheMisses += r.CacheMissCount
		if r.CompressionType != domain.CompressionNone {
			compressed++
		}
		if r.ContentSize > 0 && r.ContentSize <= sizeOptimizedLimit {
			optimized++
		}
	}

	total := report.CacheHits + report.CacheMisses
	if total > 0 {
		report.HitRate = float64(report.CacheHits) / float64(total)
	}
	report.CompressionUsage = float64(compressed) / float64(len(records))
	report.SizeOptimization = float64(optimized) / float64(len(records))

	traffic := 0.0
	if total > 0 {
		traffic = 1.0
	}
	report.Score = report.HitRate*40 + report.CompressionUsage*30 + report.SizeOptimization*20 + traffic*10
	report.Grade = gradeFor(report.Score)
	return report, nil
}

// sizeOptimizedLimit is the delivered-body size under which a record
// counts as size-optimized in the performance grade.
const sizeOptimizedLimit = 4096

func gradeFor(score float64) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	}
	return "F"
}

// WarmCache precomputes validators and compressed payloads per date.
// Dates are independent: one failure never aborts the rest.
func (s *deliveryService) WarmCache(ctx context.Context, dates []string) []WarmResult {
	results := make([]WarmResult, 0, len(dates))
	for _, date := range dates {
		result := WarmResult{Date: date}

		item, err := s.contents.FindByDate(date)
		if err != nil || item.Status != domain.ContentStatusPublished {
			result.Error = "no published content for date"
			results = append(results, result)
			continue
		}
		if _, err := s.Recompute(ctx, item); err != nil {
			result.Error = err.Error()
			results = append(results, result)
			continue
		}

		payload, err := marshalPayload(item)
		if err != nil {
			result.Error = err.Error()
			results = append(results, result)
			continue
		}
		if len(payload) >= s.cfg.MinCompressSize {
			for _, encoding := range []string{domain.CompressionGzip, domain.CompressionBrotli} {
				body, err := compressPayload(payload, encoding)
				if err != nil {
					continue
				}
				if err := s.cache.SetPayload(ctx, date, encoding, body); err != nil {
					logger.GetLogger().Warn().Err(err).Str("date", date).Msg("payload cache warm failed")
				}
			}
		}
		result.Success = true
		results = append(results, result)
	}
	return results
}

// encodedBody serves the compressed body from the warm cache when
// possible and compresses on the fly otherwise.
func (s *deliveryService) encodedBody(ctx context.Context, date string, payload []byte, encoding string) ([]byte, error) {
	if encoding == domain.CompressionNone {
		return payload, nil
	}
	if cached, err := s.cache.GetPayload(ctx, date, encoding); err == nil && len(cached) > 0 {
		return cached, nil
	}
	body, err := compressPayload(payload, encoding)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetPayload(ctx, date, encoding, body); err != nil {
		logger.GetLogger().Warn().Err(err).Str("date", date).Msg("payload cache write failed")
	}
	return body, nil
}

func (s *deliveryService) persistRecord(ctx context.Context, item *domain.ContentItem,
	etag string, lastModified time.Time, encoding string, size int) (*domain.DeliveryOptimizationRecord, error) {
	record := &domain.DeliveryOptimizationRecord{
		ContentID:       item.ID,
		ContentDate:     item.ContentDate,
		ETag:            etag,
		LastModified:    lastModified,
		CacheControl:    s.cfg.CacheControl,
		CompressionType: encoding,
		ContentSize:     size,
		CDNURL:          s.cdnURL(item.ContentDate),
		UpdatedAt:       time.Now().UTC(),
	}
	if err := s.records.Upsert(record); err != nil {
		return nil, err
	}
	if err := s.cache.SetDeliveryRecord(ctx, item.ContentDate, record); err != nil {
		logger.GetLogger().Warn().Err(err).Str("date", item.ContentDate).Msg("delivery record cache write failed")
	}
	return record, nil
}

func (s *deliveryService) cdnURL(date string) string {
	if s.cfg.CDNBaseURL == "" {
		return ""
	}
	return strings.TrimRight(s.cfg.CDNBaseURL, "/") + "/content/" + date
}

// countHit records a 304 served from validators. Counter writes are
// best-effort; a failed increment never fails the request.
func (s *deliveryService) countHit(contentID string) {
	deliveryRequestsTotal.WithLabelValues("hit").Inc()
	if err := s.records.IncrementHit(contentID); err != nil {
		log := logger.WithContentID(contentID)
		log.Warn().Err(err).Msg("hit counter increment failed")
	}
}

func (s *deliveryService) countMiss(contentID string) {
	deliveryRequestsTotal.WithLabelValues("miss").Inc()
	if err := s.records.IncrementMiss(contentID); err != nil {
		log := logger.WithContentID(contentID)
		log.Warn().Err(err).Msg("miss counter increment failed")
	}
}

// etagMatches compares If-None-Match against the computed validator,
// tolerating quoted and weak forms and the * wildcard.
func etagMatches(ifNoneMatch, etag string) bool {
	if ifNoneMatch == "" {
		return false
	}
	if strings.TrimSpace(ifNoneMatch) == "*" {
		return true
	}
	for _, candidate := range strings.Split(ifNoneMatch, ",") {
		candidate = strings.TrimSpace(candidate)
		candidate = strings.TrimPrefix(candidate, "W/")
		candidate = strings.Trim(candidate, `"`)
		if candidate == etag {
			return true
		}
	}
	return false
}
