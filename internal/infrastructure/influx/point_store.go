package influx

import (
	"context"
	"fmt"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/sai-darshan-k/Vimal-Task/internal/farm/domain"
)

const (
	defaultMonitoringBucket  = "_monitoring"
	rejectedPointMeasurement = "rejected_points"
	missingLine              = "N/A"
)

// Config holds the connection settings of the time-series store.
type Config struct {
	URL              string
	Token            string
	Org              string
	Bucket           string
	MonitoringBucket string
	Measurement      string
}

// PointStore implements application.PointStore on top of InfluxDB v2.
type PointStore struct {
	client      influxdb2.Client
	writer      api.WriteAPIBlocking
	querier     api.QueryAPI
	bucket      string
	monitoring  string
	measurement string
}

// NewPointStore creates a client for the configured organisation and bucket.
func NewPointStore(cfg Config) *PointStore {
	client := influxdb2.NewClient(strings.TrimRight(cfg.URL, "/"), cfg.Token)
	monitoring := cfg.MonitoringBucket
	if monitoring == "" {
		monitoring = defaultMonitoringBucket
	}
	measurement := cfg.Measurement
	if measurement == "" {
		measurement = domain.Measurement
	}
	return &PointStore{
		client:      client,
		writer:      client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		querier:     client.QueryAPI(cfg.Org),
		bucket:      cfg.Bucket,
		monitoring:  monitoring,
		measurement: measurement,
	}
}

// Write sends all lines in a single synchronous request.
func (s *PointStore) Write(ctx context.Context, lines []string) error {
	if len(lines) == 0 {
		return nil
	}
	return s.writer.WriteRecord(ctx, lines...)
}

// CountRecent counts the records tagged with date that arrived within window.
func (s *PointStore) CountRecent(ctx context.Context, date string, window time.Duration, limit int) (int, error) {
	result, err := s.querier.Query(ctx, recentQuery(s.bucket, s.measurement, date, window, limit))
	if err != nil {
		return 0, err
	}
	defer result.Close()

	count := 0
	for result.Next() {
		count++
	}
	if err := result.Err(); err != nil {
		return 0, err
	}
	return count, nil
}

// Rejections reads the rejected-points feed for the configured bucket.
func (s *PointStore) Rejections(ctx context.Context, window time.Duration, limit int) ([]domain.Rejection, error) {
	result, err := s.querier.Query(ctx, rejectionsQuery(s.monitoring, s.bucket, window, limit))
	if err != nil {
		return nil, err
	}
	defer result.Close()

	rejections := make([]domain.Rejection, 0)
	for result.Next() {
		record := result.Record()
		line := missingLine
		if v, ok := record.ValueByKey("line").(string); ok && v != "" {
			line = v
		}
		rejections = append(rejections, domain.Rejection{
			Time:  record.Time(),
			Error: fmt.Sprint(record.Value()),
			Line:  line,
		})
	}
	if err := result.Err(); err != nil {
		return nil, err
	}
	return rejections, nil
}

// Ping reports whether the server is reachable.
func (s *PointStore) Ping(ctx context.Context) error {
	ok, err := s.client.Ping(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("influxdb is not ready")
	}
	return nil
}

// Close releases the underlying HTTP resources.
func (s *PointStore) Close() {
	s.client.Close()
}

func recentQuery(bucket, measurement, date string, window time.Duration, limit int) string {
	return fmt.Sprintf(`from(bucket: %s)
  |> range(start: %s)
  |> filter(fn: (r) => r["_measurement"] == %s)
  |> filter(fn: (r) => r["date"] == %s)
  |> limit(n: %d)`,
		quote(bucket), fluxDuration(window), quote(measurement), quote(date), limit)
}

func rejectionsQuery(monitoringBucket, bucket string, window time.Duration, limit int) string {
	return fmt.Sprintf(`from(bucket: %s)
  |> range(start: %s)
  |> filter(fn: (r) => r["_measurement"] == %s)
  |> filter(fn: (r) => r["bucket"] == %s)
  |> limit(n: %d)`,
		quote(monitoringBucket), fluxDuration(window), quote(rejectedPointMeasurement), quote(bucket), limit)
}

var fluxStringEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "${", `\${`)

// quote renders s as a Flux string literal.
func quote(s string) string {
	return `"` + fluxStringEscaper.Replace(s) + `"`
}

// fluxDuration renders a negative relative range start such as -1m or -24h.
func fluxDuration(d time.Duration) string {
	if d <= 0 {
		d = time.Minute
	}
	switch {
	case d%time.Hour == 0:
		return fmt.Sprintf("-%dh", d/time.Hour)
	case d%time.Minute == 0:
		return fmt.Sprintf("-%dm", d/time.Minute)
	case d%time.Second == 0:
		return fmt.Sprintf("-%ds", d/time.Second)
	default:
		return fmt.Sprintf("-%dms", d/time.Millisecond)
	}
}
