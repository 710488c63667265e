package geocoding

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"casaleon/server/internal/models"
)

type field struct {
	key   string
	value json.RawMessage
}

// PatchCoordinates writes the coordinates of properties into the catalog
// document they were decoded from. Only records that lacked coordinates in
// data and have them in properties are touched; every other key and record
// is kept as written, in its original order.
func PatchCoordinates(data []byte, properties []models.Property) ([]byte, error) {
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(records) != len(properties) {
		return nil, fmt.Errorf("catalog has %d records, expected %d", len(records), len(properties))
	}

	for i, raw := range records {
		p := properties[i]
		if !p.HasCoordinates() {
			continue
		}
		var before models.Property
		if err := json.Unmarshal(raw, &before); err != nil {
			return nil, fmt.Errorf("failed to parse record %d: %w", i, err)
		}
		if before.HasCoordinates() {
			continue
		}

		fields, err := objectFields(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse record %d: %w", i, err)
		}
		fields = setField(fields, "lat", formatCoordinate(*p.Latitude))
		fields = setField(fields, "lng", formatCoordinate(*p.Longitude))
		if records[i], err = encodeFields(fields); err != nil {
			return nil, fmt.Errorf("failed to encode record %d: %w", i, err)
		}
	}

	compact, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("failed to encode catalog: %w", err)
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		return nil, fmt.Errorf("failed to indent catalog: %w", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

func objectFields(raw json.RawMessage) ([]field, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("record is not an object")
	}

	var fields []field
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		fields = append(fields, field{key: key, value: value})
	}
	return fields, nil
}

func setField(fields []field, key string, value json.RawMessage) []field {
	for i := range fields {
		if fields[i].key == key {
			fields[i].value = value
			return fields
		}
	}
	return append(fields, field{key: key, value: value})
}

func encodeFields(fields []field) (json.RawMessage, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(f.value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func formatCoordinate(v float64) json.RawMessage {
	return json.RawMessage(strconv.FormatFloat(v, 'f', -1, 64))
}
