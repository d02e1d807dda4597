package task

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func fixedFallbacks(now time.Time) Fallbacks {
	return Fallbacks{
		Now: now,
		ID:  func() int64 { return 4242 },
	}
}

func TestDecodeFullObject(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	raw := json.RawMessage(`{"id": 7, "text": "Water the plants", "done": true, "createdAt": 1700000000000, "updatedAt": "2024-01-02T03:04:05Z"}`)

	got := Decode(raw, fixedFallbacks(now))

	if got.ID != 7 {
		t.Errorf("expected id 7, got %d", got.ID)
	}
	if got.Text != "Water the plants" {
		t.Errorf("unexpected text %q", got.Text)
	}
	if !got.Done {
		t.Error("expected done")
	}
	if !got.CreatedAt.Equal(time.UnixMilli(1700000000000)) {
		t.Errorf("unexpected createdAt %v", got.CreatedAt)
	}
	if !got.UpdatedAt.Equal(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)) {
		t.Errorf("unexpected updatedAt %v", got.UpdatedAt)
	}
}

func TestDecodeFallbacks(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	created := time.UnixMilli(1600000000000)

	cases := []struct {
		name        string
		raw         string
		wantID      int64
		wantText    string
		wantDone    bool
		wantCreated time.Time
		wantUpdated time.Time
	}{
		{
			name:        "empty object",
			raw:         `{}`,
			wantID:      4242,
			wantText:    "",
			wantCreated: now,
			wantUpdated: now,
		},
		{
			name:        "updatedAt falls back to createdAt",
			raw:         `{"id": 3, "text": "Some task text", "createdAt": 1600000000000}`,
			wantID:      3,
			wantText:    "Some task text",
			wantCreated: created,
			wantUpdated: created,
		},
		{
			name:        "falsy values count as missing",
			raw:         `{"id": 0, "text": null, "done": 0, "createdAt": 0, "updatedAt": ""}`,
			wantID:      4242,
			wantCreated: now,
			wantUpdated: now,
		},
		{
			name:        "numeric string id",
			raw:         `{"id": "15", "done": "yes"}`,
			wantID:      15,
			wantDone:    true,
			wantCreated: now,
			wantUpdated: now,
		},
		{
			name:        "non numeric id",
			raw:         `{"id": "abc", "done": []}`,
			wantID:      4242,
			wantDone:    true,
			wantCreated: now,
			wantUpdated: now,
		},
		{
			name:        "non string text",
			raw:         `{"id": 5, "text": 12345, "done": false}`,
			wantID:      5,
			wantText:    "",
			wantCreated: now,
			wantUpdated: now,
		},
		{
			name:        "unparsable timestamp",
			raw:         `{"id": 6, "createdAt": "yesterday"}`,
			wantID:      6,
			wantCreated: now,
			wantUpdated: now,
		},
		{
			name:        "not an object",
			raw:         `"just text"`,
			wantID:      4242,
			wantCreated: now,
			wantUpdated: now,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Decode(json.RawMessage(tc.raw), fixedFallbacks(now))
			if got.ID != tc.wantID {
				t.Errorf("expected id %d, got %d", tc.wantID, got.ID)
			}
			if got.Text != tc.wantText {
				t.Errorf("expected text %q, got %q", tc.wantText, got.Text)
			}
			if got.Done != tc.wantDone {
				t.Errorf("expected done %v, got %v", tc.wantDone, got.Done)
			}
			if !got.CreatedAt.Equal(tc.wantCreated) {
				t.Errorf("expected createdAt %v, got %v", tc.wantCreated, got.CreatedAt)
			}
			if !got.UpdatedAt.Equal(tc.wantUpdated) {
				t.Errorf("expected updatedAt %v, got %v", tc.wantUpdated, got.UpdatedAt)
			}
		})
	}
}

func TestTruthy(t *testing.T) {
	cases := map[string]bool{
		``:        false,
		`null`:    false,
		`false`:   false,
		`true`:    true,
		`0`:       false,
		`0.0`:     false,
		`-1`:      true,
		`""`:      false,
		`"false"`: true,
		`{}`:      true,
		`[]`:      true,
	}

	for raw, want := range cases {
		if got := truthy(json.RawMessage(raw)); got != want {
			t.Errorf("truthy(%s) = %v, expected %v", raw, got, want)
		}
	}
}

func TestDecodeIDRange(t *testing.T) {
	cases := []struct {
		raw  string
		want int64
		ok   bool
	}{
		{raw: `42`, want: 42, ok: true},
		{raw: `"42"`, want: 42, ok: true},
		{raw: `"-9223372036854775807"`, want: -9223372036854775807, ok: true},
		{raw: `-9223372036854775807`, ok: false},
		{raw: `-9223372036854775808`, ok: false},
		{raw: `"-9223372036854775808"`, ok: false},
		{raw: `9223372036854775807`, ok: false},
		{raw: `9223372036854775808`, ok: false},
		{raw: `1e19`, ok: false},
		{raw: `-1e19`, ok: false},
		{raw: `1.5`, ok: false},
		{raw: `0`, ok: false},
	}

	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			got, ok := decodeID(json.RawMessage(tc.raw))
			if ok != tc.ok || (ok && got != tc.want) {
				t.Fatalf("decodeID(%s) = %d, %v; expected %d, %v", tc.raw, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestDecodeTimeRejectsOverflow(t *testing.T) {
	for _, raw := range []string{`9223372036854775808`, `1e300`, `-1e300`} {
		if got, ok := decodeTime(json.RawMessage(raw)); ok {
			t.Errorf("decodeTime(%s) = %v, expected rejection", raw, got)
		}
	}
	if got, ok := decodeTime(json.RawMessage(`1600000000000`)); !ok || !got.Equal(time.UnixMilli(1600000000000)) {
		t.Errorf("decodeTime(1600000000000) = %v, %v", got, ok)
	}
}

func TestDecodeListRejectsNonArrays(t *testing.T) {
	for _, doc := range []string{`{"todos": []}`, `null`, `"text"`, `42`, `not json`} {
		if _, err := DecodeList([]byte(doc), Fallbacks{}); !errors.Is(err, ErrNotArray) {
			t.Errorf("DecodeList(%s) error = %v, expected ErrNotArray", doc, err)
		}
	}
}

func TestDecodeListKeepsOrder(t *testing.T) {
	tasks, err := DecodeList([]byte(`[{"id": 2, "text": "second"}, {"id": 1, "text": "first"}]`), Fallbacks{})
	if err != nil {
		t.Fatalf("DecodeList failed: %v", err)
	}
	if len(tasks) != 2 || tasks[0].ID != 2 || tasks[1].ID != 1 {
		t.Fatalf("unexpected tasks %+v", tasks)
	}

	empty, err := DecodeList([]byte(`[]`), Fallbacks{})
	if err != nil {
		t.Fatalf("DecodeList([]) failed: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", empty)
	}
}

func TestDecodeRoundTripsEncodedTask(t *testing.T) {
	now := time.Date(2025, 5, 6, 7, 8, 9, 123000000, time.UTC)
	original := Task{ID: 1746515289123, Text: "Buy groceries today", Done: true, CreatedAt: now, UpdatedAt: now.Add(time.Minute)}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	decoded := Decode(data, Fallbacks{})

	if decoded.ID != original.ID || decoded.Text != original.Text || decoded.Done != original.Done {
		t.Fatalf("expected %+v, got %+v", original, decoded)
	}
	if !decoded.CreatedAt.Equal(original.CreatedAt) || !decoded.UpdatedAt.Equal(original.UpdatedAt) {
		t.Fatalf("timestamps changed: %+v", decoded)
	}
}

func TestRandomIDRange(t *testing.T) {
	for i := 0; i < 100; i++ {
		id := RandomID()
		if id < 0 || id >= MaxRandomID {
			t.Fatalf("RandomID() = %d out of range", id)
		}
	}
}
