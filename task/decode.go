package task

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

// ErrNotArray is returned by DecodeList when the document is not a JSON array.
var ErrNotArray = errors.New("expected a JSON array")

// MaxRandomID bounds the fallback ids handed to tasks that arrive without one.
const MaxRandomID = 1000000

// Fallbacks supplies the values used when a decoded field is missing or falsy.
type Fallbacks struct {
	// Now is used when createdAt (and updatedAt) are missing.
	Now time.Time

	// ID returns an id for tasks without one. Defaults to RandomID.
	ID func() int64
}

// RandomID returns a pseudo-random id in [0, MaxRandomID).
func RandomID() int64 {
	return rand.Int64N(MaxRandomID)
}

// wireTask holds the raw fields of one element before coercion.
type wireTask struct {
	ID        json.RawMessage `json:"id"`
	Text      json.RawMessage `json:"text"`
	Done      json.RawMessage `json:"done"`
	CreatedAt json.RawMessage `json:"createdAt"`
	UpdatedAt json.RawMessage `json:"updatedAt"`
}

// DecodeList decodes a JSON array of tasks, applying Decode to each element.
func DecodeList(data []byte, fb Fallbacks) (List, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, ErrNotArray
	}
	if raw == nil {
		// null decodes without error but is not an array.
		return nil, ErrNotArray
	}

	tasks := make(List, 0, len(raw))
	for _, item := range raw {
		tasks = append(tasks, Decode(item, fb))
	}
	return tasks, nil
}

// Decode maps one JSON value to a Task. Every field is optional:
//   - id: a non-zero number or numeric string, else fb.ID()
//   - text: a string, else ""
//   - done: JavaScript truthiness of the value
//   - createdAt: Unix milliseconds or an RFC 3339 string, else fb.Now
//   - updatedAt: same formats, else createdAt, else fb.Now
//
// Zero, empty and null values count as missing. Values that are not objects
// decode as if every field were missing.
func Decode(raw json.RawMessage, fb Fallbacks) Task {
	if fb.ID == nil {
		fb.ID = RandomID
	}
	if fb.Now.IsZero() {
		fb.Now = time.Now()
	}

	var wire wireTask
	if err := json.Unmarshal(raw, &wire); err != nil {
		wire = wireTask{}
	}

	t := Task{
		Text: decodeText(wire.Text),
		Done: truthy(wire.Done),
	}

	if id, ok := decodeID(wire.ID); ok {
		t.ID = id
	} else {
		t.ID = fb.ID()
	}

	createdAt, hasCreated := decodeTime(wire.CreatedAt)
	if !hasCreated {
		createdAt = fb.Now
	}
	t.CreatedAt = createdAt

	if updatedAt, ok := decodeTime(wire.UpdatedAt); ok {
		t.UpdatedAt = updatedAt
	} else {
		t.UpdatedAt = createdAt
	}

	return t
}

func decodeID(raw json.RawMessage) (int64, bool) {
	value, kind := scalar(raw)
	switch kind {
	case kindNumber:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f == 0 || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return 0, false
		}
		if !fitsInt64(f) {
			return 0, false
		}
		return int64(f), true
	case kindString:
		id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil || id == 0 || id == NoID {
			return 0, false
		}
		return id, true
	default:
		return 0, false
	}
}

// fitsInt64 reports whether f converts to int64 without overflow and
// without landing on NoID. float64(math.MaxInt64) rounds up to 2^63.
func fitsInt64(f float64) bool {
	return f > math.MinInt64 && f < math.MaxInt64
}

func decodeText(raw json.RawMessage) string {
	value, kind := scalar(raw)
	if kind != kindString {
		return ""
	}
	return value
}

func decodeTime(raw json.RawMessage) (time.Time, bool) {
	value, kind := scalar(raw)
	switch kind {
	case kindNumber:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f == 0 || math.IsNaN(f) || math.IsInf(f, 0) || !fitsInt64(f) {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(f)), true
	case kindString:
		value = strings.TrimSpace(value)
		if value == "" {
			return time.Time{}, false
		}
		if ms, err := strconv.ParseInt(value, 10, 64); err == nil && ms != 0 {
			return time.UnixMilli(ms), true
		}
		parsed, err := time.Parse(time.RFC3339Nano, value)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	default:
		return time.Time{}, false
	}
}

type valueKind int

const (
	kindMissing valueKind = iota
	kindNull
	kindBool
	kindNumber
	kindString
	kindComposite
)

// scalar classifies raw and returns its scalar text (unquoted for strings).
func scalar(raw json.RawMessage) (string, valueKind) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", kindMissing
	}
	switch trimmed[0] {
	case 'n':
		return "", kindNull
	case 't', 'f':
		return string(trimmed), kindBool
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", kindMissing
		}
		return s, kindString
	case '{', '[':
		return "", kindComposite
	default:
		return string(trimmed), kindNumber
	}
}

// truthy applies JavaScript's boolean coercion to a JSON value.
func truthy(raw json.RawMessage) bool {
	value, kind := scalar(raw)
	switch kind {
	case kindBool:
		return value == "true"
	case kindNumber:
		f, err := strconv.ParseFloat(value, 64)
		return err == nil && f != 0 && !math.IsNaN(f)
	case kindString:
		return value != ""
	case kindComposite:
		return true
	default:
		return false
	}
}
