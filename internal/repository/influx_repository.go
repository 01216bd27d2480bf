package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"solar_registration/internal/config"
	"solar_registration/internal/domain"
	"solar_registration/internal/mapper"
	"solar_registration/pkg/logger"

	influxdb3 "github.com/InfluxCommunity/influxdb3-go/v2/influxdb3"
)

// Measurement holds one point per registration node
const Measurement = "client_registration"

// InfluxRepo writes registrations to InfluxDB, one point for the main
// client, each sub client and each part client.
type InfluxRepo struct {
	db *config.InfluxDatabase
}

func NewInfluxRepo(db *config.InfluxDatabase) *InfluxRepo {
	return &InfluxRepo{db: db}
}

func (r *InfluxRepo) Insert(ctx context.Context, records []domain.Registration) error {
	if r.db == nil || r.db.Client == nil {
		return fmt.Errorf("InfluxDB client is nil - database not initialized properly")
	}

	if len(records) == 0 {
		return nil
	}

	points := make([]*influxdb3.Point, 0, len(records))
	for _, record := range records {
		recordPoints, err := registrationToPoints(record)
		if err != nil {
			return fmt.Errorf("registration %s: %w", record.ID, err)
		}
		points = append(points, recordPoints...)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := r.db.Client.WritePoints(ctx, points); err != nil {
		return fmt.Errorf("WritePoints failed: %w (points: %d, db: %s)",
			err, len(points), r.db.Database)
	}

	logger.Debugf("Wrote %d points for %d registrations", len(points), len(records))
	return nil
}

// registrationToPoints flattens a registration into tagged points
func registrationToPoints(record domain.Registration) ([]*influxdb3.Point, error) {
	base := map[string]string{
		"registration_id": record.ID,
		"session_id":      record.SessionID,
	}

	var points []*influxdb3.Point
	add := func(node string, tags map[string]string, value interface{}) error {
		fields, err := flattenFields(value)
		if err != nil {
			return err
		}
		all := map[string]string{"node": node}
		for k, v := range base {
			all[k] = v
		}
		for k, v := range tags {
			all[k] = v
		}
		points = append(points, influxdb3.NewPoint(Measurement, all, fields, record.SubmittedAt))
		return nil
	}

	if err := add("main", nil, record.MainClient); err != nil {
		return nil, err
	}
	for i, sub := range record.SubClients {
		subTags := map[string]string{"sub_index": strconv.Itoa(i)}
		if err := add("sub", subTags, sub); err != nil {
			return nil, err
		}
		for j, part := range sub.PartClients {
			partTags := map[string]string{
				"sub_index":  strconv.Itoa(i),
				"part_index": strconv.Itoa(j),
			}
			if err := add("part", partTags, part); err != nil {
				return nil, err
			}
		}
	}
	return points, nil
}

// flattenFields turns a record into point fields keyed by editor path.
// Nested groups become "group.field"; lists are skipped.
func flattenFields(value interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	fields := make(map[string]interface{}, len(doc))
	for k, v := range doc {
		switch val := v.(type) {
		case map[string]interface{}:
			for nk, nv := range val {
				fields[k+mapper.PathSeparator+nk] = nv
			}
		case []interface{}, nil:
		default:
			fields[k] = val
		}
	}
	return fields, nil
}

// Count returns the number of stored registrations
func (r *InfluxRepo) Count(ctx context.Context) (int64, error) {
	if r.db == nil || r.db.Client == nil {
		return 0, fmt.Errorf("InfluxDB client is nil - database not initialized")
	}

	query := fmt.Sprintf("SELECT COUNT(*) AS count FROM %s WHERE node = 'main'", Measurement)
	iterator, err := r.db.Client.Query(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("count query failed: %w", err)
	}

	if iterator.Next() {
		switch count := iterator.Value()["count"].(type) {
		case int64:
			return count, nil
		case uint64:
			return int64(count), nil
		case float64:
			return int64(count), nil
		case int:
			return int64(count), nil
		}
	}

	return 0, nil
}

func (r *InfluxRepo) Type() string {
	return "influx"
}
