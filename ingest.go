package main

import (
	"context"
	"fmt"
	"log"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

// TraceSink receives finished trajectory batches. The core hands a
// batch off exactly once; implementations own delivery from there.
type TraceSink interface {
	WriteBatch(ctx context.Context, batch TraceBatch) error
}

// InfluxSink writes trajectory batches as points in an InfluxDB
// bucket, one measurement row per sample tagged with the drone id.
type InfluxSink struct {
	client influxdb2.Client
	write  api.WriteAPIBlocking
}

// NewInfluxSink connects a sink to the given InfluxDB instance.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	client := influxdb2.NewClient(url, token)
	return &InfluxSink{
		client: client,
		write:  client.WriteAPIBlocking(org, bucket),
	}
}

// WriteBatch writes every trace point to the bucket, keeping the
// sample timestamps.
func (s *InfluxSink) WriteBatch(ctx context.Context, batch TraceBatch) error {
	for _, p := range batch.Points {
		point := influxdb2.NewPoint(
			"gps_trace",
			map[string]string{"drone_id": batch.DroneID},
			map[string]interface{}{
				"lat":         p.Lat,
				"lon":         p.Lon,
				"alt":         p.Alt,
				"heading_deg": p.Heading,
			},
			p.Timestamp,
		)
		if err := s.write.WritePoint(ctx, point); err != nil {
			return fmt.Errorf("failed to write trace point: %w", err)
		}
	}
	log.Printf("✅ Ingested %d points for drone %s\n", len(batch.Points), batch.DroneID)
	return nil
}

// Close releases the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}
