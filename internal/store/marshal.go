package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// LoadList reads a collection slot as a slice of T.
//
// An absent slot, an empty document, a JSON null, or a document that does
// not decode as []T all yield an empty (non-nil) slice. Only backend
// failures are returned as errors.
func LoadList[T any](ctx context.Context, b Backend, slot Slot) ([]T, error) {
	snap, err := b.Load(ctx, slot)
	if err != nil {
		return nil, err
	}
	return decodeList[T](slot, snap.Doc), nil
}

// SaveList writes items as the whole document of a collection slot.
func SaveList[T any](ctx context.Context, b Backend, slot Slot, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := marshalDoc(items)
	if err != nil {
		return fmt.Errorf("save %s: %w", slot, err)
	}
	return b.Save(ctx, slot, data)
}

// LoadDoc reads a singleton slot. Absent or unreadable documents yield nil.
func LoadDoc[T any](ctx context.Context, b Backend, slot Slot) (*T, error) {
	snap, err := b.Load(ctx, slot)
	if err != nil {
		return nil, err
	}
	return decodeDoc[T](slot, snap.Doc), nil
}

// SaveDoc writes a singleton slot. A nil doc removes the slot.
func SaveDoc[T any](ctx context.Context, b Backend, slot Slot, doc *T) error {
	if doc == nil {
		return b.Remove(ctx, slot)
	}
	data, err := marshalDoc(doc)
	if err != nil {
		return fmt.Errorf("save %s: %w", slot, err)
	}
	return b.Save(ctx, slot, data)
}

func decodeList[T any](slot Slot, doc []byte) []T {
	out := []T{}
	if len(bytes.TrimSpace(doc)) == 0 {
		return out
	}

	var items []T
	if err := json.Unmarshal(doc, &items); err != nil {
		slog.Warn("slot holds unreadable data, treating as empty",
			"slot", slot,
			"error", err,
		)
		return out
	}
	if items == nil {
		return out
	}
	return items
}

func decodeDoc[T any](slot Slot, doc []byte) *T {
	if len(bytes.TrimSpace(doc)) == 0 {
		return nil
	}

	var v *T
	if err := json.Unmarshal(doc, &v); err != nil {
		slog.Warn("slot holds unreadable data, treating as absent",
			"slot", slot,
			"error", err,
		)
		return nil
	}
	return v
}

// marshalDoc encodes v as compact JSON with HTML escaping disabled so
// stored text stays byte-for-byte readable.
func marshalDoc(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	// Encoder adds a trailing newline, remove it
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
