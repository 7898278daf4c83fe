package crdt

import "encoding/json"

type exemplarSetJSON struct {
	Members []int64 `json:"members"`
}

func (s *ExemplarSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(exemplarSetJSON{Members: s.Values()})
}

func (s *ExemplarSet) UnmarshalJSON(data []byte) error {
	var decoded exemplarSetJSON
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	s.members = make(map[int64]struct{}, len(decoded.Members))
	for _, index := range decoded.Members {
		s.members[index] = struct{}{}
	}
	return nil
}
