package planner

import (
	"fmt"
	"strings"

	"github.com/orcify/orcify/hive"
	"github.com/orcify/orcify/hive/hiveql"
)

// ParsePartitionColumns parses a partition's spec name ("key=value" pairs
// separated by ",") together with the catalog's comma-separated partition
// column type list into ordered partition columns. Either both inputs are
// present or both are blank; anything else is a configuration error.
func ParsePartitionColumns(partition *hive.PartitionMeta) ([]hiveql.PartitionColumn, error) {
	if partition == nil {
		return nil, nil
	}

	specs := splitNonEmpty(partition.Name, ",")
	types := splitNonEmpty(partition.KeyTypes, ",")

	if len(specs) == 0 && len(types) == 0 {
		return nil, nil
	}
	if len(specs) == 0 || len(types) == 0 {
		return nil, fmt.Errorf("partition %q: both partition info and partition types must be present if one is specified", partition.Name)
	}
	if len(specs) != len(types) {
		return nil, fmt.Errorf("partition %q: partition info and partition type lists must be the same size, got %d and %d",
			partition.Name, len(specs), len(types))
	}

	columns := make([]hiveql.PartitionColumn, 0, len(specs))
	for i, spec := range specs {
		parts := splitNonEmpty(spec, "=")
		if len(parts) != 2 {
			return nil, fmt.Errorf("partition details must be of the form key=value, got %q", spec)
		}
		columns = append(columns, hiveql.PartitionColumn{
			Name:  parts[0],
			Type:  types[i],
			Value: parts[1],
		})
	}

	return columns, nil
}

// EncodeReplacedPartitions encodes superseded partitions for storage in the
// hive.ReplacedPartitionsKey partition parameter: "key=value" pairs joined
// with ",", partitions joined with "|".
func EncodeReplacedPartitions(partitions [][]hiveql.PartitionColumn) string {
	segments := make([]string, 0, len(partitions))
	for _, tuple := range partitions {
		pairs := make([]string, 0, len(tuple))
		for _, pc := range tuple {
			pairs = append(pairs, pc.Name+"="+pc.Value)
		}
		segments = append(segments, strings.Join(pairs, ","))
	}
	return strings.Join(segments, "|")
}

// DecodeReplacedPartitions decodes the replaced-partitions parameter into
// key/value tuples ready for drop statements. keys are the current
// partition's declared partition columns in order; decoded values bind to
// them positionally. A tuple equal to currentValues is skipped so that a
// partition that recorded a no-op replacement of itself never queues its own
// deletion.
func DecodeReplacedPartitions(encoded string, keys []hiveql.PartitionColumn, currentValues []string) ([][]hiveql.PartitionColumn, error) {
	if strings.TrimSpace(encoded) == "" || len(keys) == 0 {
		return nil, nil
	}

	var decoded [][]hiveql.PartitionColumn
	for _, segment := range splitNonEmpty(encoded, "|") {
		tokens := splitNonEmpty(segment, ",")
		if len(tokens)%len(keys) != 0 {
			return nil, fmt.Errorf("replaced partitions segment %q: got %d values for %d partition keys", segment, len(tokens), len(keys))
		}

		for start := 0; start < len(tokens); start += len(keys) {
			tuple := make([]hiveql.PartitionColumn, len(keys))
			values := make([]string, len(keys))
			for i := range keys {
				parts := splitNonEmpty(tokens[start+i], "=")
				if len(parts) != 2 {
					return nil, fmt.Errorf("replaced partition entry must be of the form key=value, got %q", tokens[start+i])
				}
				tuple[i] = hiveql.PartitionColumn{Name: keys[i].Name, Type: keys[i].Type, Value: parts[1]}
				values[i] = parts[1]
			}
			if equalValues(values, currentValues) {
				continue
			}
			decoded = append(decoded, tuple)
		}
	}

	return decoded, nil
}

// replacedPartitions reads and decodes the replaced-partitions parameter of
// the request's partition. No partition, a missing parameter or a blank
// value all mean nothing is superseded.
func replacedPartitions(partition *hive.PartitionMeta, keys []hiveql.PartitionColumn) ([][]hiveql.PartitionColumn, error) {
	if partition == nil {
		return nil, nil
	}
	encoded, ok := partition.Parameters[hive.ReplacedPartitionsKey]
	if !ok || strings.TrimSpace(encoded) == "" {
		return nil, nil
	}
	return DecodeReplacedPartitions(encoded, keys, partition.Values)
}

func splitNonEmpty(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func equalValues(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
