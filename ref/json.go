package ref

import (
	"encoding/json"
	"errors"
)

// JSON boundary: the payload is the serialized form. Counts, arenas and
// disposers are runtime state and never cross; deserializing always builds
// a fresh block with count 1 and default options.

var errMarshalReleased = errors.New("ref: marshal of released handle")

// MarshalJSON encodes the payload only.
func (s Shared[T]) MarshalJSON() ([]byte, error) {
	if s.b == nil {
		return nil, errMarshalReleased
	}
	return json.Marshal(*payloadOf[T](s.b))
}

// UnmarshalJSON decodes into a fresh block with default options, releasing
// any block the handle previously owned.
func (s *Shared[T]) UnmarshalJSON(data []byte) error {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	s.Release()
	*s = New(v)
	return nil
}

// MarshalJSON encodes the payload only.
func (u Unique[T]) MarshalJSON() ([]byte, error) {
	if u.b == nil {
		return nil, errMarshalReleased
	}
	return json.Marshal(*payloadOf[T](u.b))
}

// UnmarshalJSON decodes into a fresh block with default options, releasing
// any block the handle previously owned.
func (u *Unique[T]) UnmarshalJSON(data []byte) error {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	u.Release()
	*u = NewUnique(v)
	return nil
}

// MarshalJSON encodes the elements as a JSON array.
func (s Slice[T]) MarshalJSON() ([]byte, error) {
	if s.b == nil {
		return nil, errMarshalReleased
	}
	return json.Marshal(viewOf[T](s.b))
}

// UnmarshalJSON decodes a JSON array into a fresh block with default
// options, releasing any block the handle previously owned.
func (s *Slice[T]) UnmarshalJSON(data []byte) error {
	var vals []T
	if err := json.Unmarshal(data, &vals); err != nil {
		return err
	}
	s.Release()
	*s = NewSlice(vals)
	return nil
}

// MarshalJSON encodes the stored bytes as a JSON string.
func (s Str) MarshalJSON() ([]byte, error) {
	if s.s.b == nil {
		return nil, errMarshalReleased
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a JSON string into a fresh block with default
// options, releasing any block the handle previously owned.
func (s *Str) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	s.Release()
	*s = NewStr(v)
	return nil
}
