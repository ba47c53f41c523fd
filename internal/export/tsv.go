package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

func init() { Register("tsv", writeTSV) }

// writeTSV writes one row per stored position: walk, step, x0..x{dim-1}.
func writeTSV(w io.Writer, p Payload) error {
	tr := p.Result.Trajectories
	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	header := []string{"walk", "step"}
	for d := 0; d < tr.Dim(); d++ {
		header = append(header, "x"+strconv.Itoa(d))
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing tsv header: %w", err)
	}

	row := make([]string, len(header))
	for wi := 0; wi < p.walkLimit(); wi++ {
		row[0] = strconv.Itoa(wi)
		for t := 0; t < tr.Steps(); t++ {
			row[1] = strconv.Itoa(t)
			for d, c := range tr.Position(wi, t) {
				row[2+d] = strconv.FormatInt(c, 10)
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("writing tsv row: %w", err)
			}
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing tsv: %w", err)
	}
	return nil
}
