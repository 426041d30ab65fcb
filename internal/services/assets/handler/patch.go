package handler

import "encoding/json"

// Optional carries the tri-state of a nullable field in a partial update:
// absent (Set false), explicit null (Set true, Value nil), or a value. A
// plain pointer cannot distinguish "leave untouched" from "clear to null" for
// columns that allow null.
type Optional[T any] struct {
	Set   bool
	Value *T
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}

func newOptional[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

func nullOptional[T any]() Optional[T] {
	return Optional[T]{Set: true}
}
