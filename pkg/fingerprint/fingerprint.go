package fingerprint

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// This package builds deterministic digests of arbitrary data values for use
// in cache keys. Two structurally equal values always fingerprint identically
// regardless of map key insertion order; any value difference (including array
// order) changes the digest.

// SerializationError indicates the input could not be serialized, typically
// because it contains a cycle or an unsupported type. It is the only failure
// mode of this package and signals a programmer error at the call site.
type SerializationError struct {
	cause error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("fingerprint: value not serializable: %v", e.cause)
}

func (e *SerializationError) Unwrap() error { return e.cause }

// Fingerprint returns a deterministic SHA-256 hex digest of data.
// Object keys are hashed in sorted order; array element order is significant.
func Fingerprint(data interface{}) (string, error) {
	canonical, err := canonicalize(data)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// Key combines a prefix and a parameter map into a single deterministic cache
// key. Scalar parameters are rendered inline; everything else is fingerprinted.
// Key generation does not depend on map insertion order.
func Key(prefix string, params map[string]interface{}) (string, error) {
	if len(params) == 0 {
		return prefix, nil
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		rendered, err := renderValue(params[k])
		if err != nil {
			return "", err
		}
		parts = append(parts, k+"="+rendered)
	}

	return prefix + ":" + strings.Join(parts, "|"), nil
}

// renderValue keeps scalars human-readable in keys and digests the rest
func renderValue(v interface{}) (string, error) {
	switch val := v.(type) {
	case nil:
		return "nil", nil
	case string:
		return val, nil
	case bool:
		return fmt.Sprintf("%t", val), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val), nil
	case float32, float64:
		return fmt.Sprintf("%v", val), nil
	case json.Number:
		return val.String(), nil
	default:
		return Fingerprint(v)
	}
}

// canonicalize serializes data into a canonical byte form: JSON with all
// object keys emitted in sorted order and numbers preserved verbatim.
func canonicalize(data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, &SerializationError{cause: err}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic interface{}
	if err := dec.Decode(&generic); err != nil {
		return nil, &SerializationError{cause: err}
	}

	var buf bytes.Buffer
	writeCanonical(&buf, generic)
	return buf.Bytes(), nil
}

func writeCanonical(buf *bytes.Buffer, v interface{}) {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		fmt.Fprintf(buf, "%t", val)
	case json.Number:
		buf.WriteString(val.String())
	case string:
		encoded, _ := json.Marshal(val)
		buf.Write(encoded)
	case []interface{}:
		buf.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeCanonical(buf, item)
		}
		buf.WriteByte(']')
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			encoded, _ := json.Marshal(k)
			buf.Write(encoded)
			buf.WriteByte(':')
			writeCanonical(buf, val[k])
		}
		buf.WriteByte('}')
	default:
		// Decoder output never reaches here; kept for safety.
		fmt.Fprintf(buf, "%v", val)
	}
}
