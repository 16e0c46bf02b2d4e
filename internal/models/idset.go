package models

import (
	"encoding/json"
	"slices"
)

// IDSet is a sorted, duplicate-free set of user ids. Methods never modify the
// receiver's backing array.
type IDSet []int64

func NewIDSet(ids ...int64) IDSet {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}

func (s IDSet) Contains(id int64) bool {
	_, ok := slices.BinarySearch(s, id)
	return ok
}

func (s IDSet) With(id int64) IDSet {
	i, ok := slices.BinarySearch(s, id)
	if ok {
		return s
	}
	return slices.Insert(slices.Clone(s), i, id)
}

func (s IDSet) Without(id int64) IDSet {
	i, ok := slices.BinarySearch(s, id)
	if !ok {
		return s
	}
	return slices.Delete(slices.Clone(s), i, i+1)
}

func (s IDSet) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]int64(s))
}

func (s *IDSet) UnmarshalJSON(b []byte) error {
	var ids []int64
	if err := json.Unmarshal(b, &ids); err != nil {
		return err
	}
	*s = NewIDSet(ids...)
	return nil
}
