package export

import (
	"encoding/json"
	"fmt"
	"io"
)

func init() { Register("json", writeJSON) }

// jsonDocument is the JSON export layout. Trajectories is indexed
// [walk][step][dim] and may hold fewer walks than Shape when truncated.
type jsonDocument struct {
	Shape             [3]int      `json:"shape"`
	Seed              int64       `json:"seed"`
	Trajectories      [][][]int64 `json:"trajectories"`
	ReturnCounts      []int       `json:"return_counts"`
	ReturnProbability float64     `json:"return_probability"`
}

func writeJSON(w io.Writer, p Payload) error {
	tr := p.Result.Trajectories
	doc := jsonDocument{
		Shape:             tr.Shape(),
		Seed:              p.Seed,
		Trajectories:      make([][][]int64, p.walkLimit()),
		ReturnCounts:      p.Result.ReturnCounts,
		ReturnProbability: p.Result.ReturnProbability,
	}
	for i := range doc.Trajectories {
		doc.Trajectories[i] = tr.Walk(i)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding json export: %w", err)
	}
	return nil
}
