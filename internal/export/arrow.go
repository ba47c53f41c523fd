package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"
)

func init() { Register("arrow", writeArrow) }

// Schema metadata keys of the Arrow export.
const (
	MetaDim               = "walkstat.dim"
	MetaSteps             = "walkstat.steps"
	MetaWalks             = "walkstat.walks"
	MetaSeed              = "walkstat.seed"
	MetaReturnProbability = "walkstat.return_probability"
)

// arrowSchema lays out one row per stored position: walk, step, at_origin,
// then one int64 column per coordinate.
func arrowSchema(dim int, md arrow.Metadata) *arrow.Schema {
	fields := []arrow.Field{
		{Name: "walk", Type: arrow.PrimitiveTypes.Int32},
		{Name: "step", Type: arrow.PrimitiveTypes.Int32},
		{Name: "at_origin", Type: arrow.FixedWidthTypes.Boolean},
	}
	for d := 0; d < dim; d++ {
		fields = append(fields, arrow.Field{Name: "x" + strconv.Itoa(d), Type: arrow.PrimitiveTypes.Int64})
	}
	return arrow.NewSchema(fields, &md)
}

// writeArrow writes the payload as an Arrow IPC stream holding a single
// record batch. Summing at_origin per walk reproduces the return counts of
// the written walks.
func writeArrow(w io.Writer, p Payload) error {
	res := p.Result
	tr := res.Trajectories

	md := arrow.NewMetadata(
		[]string{MetaDim, MetaSteps, MetaWalks, MetaSeed, MetaReturnProbability},
		[]string{
			strconv.Itoa(tr.Dim()),
			strconv.Itoa(tr.Steps()),
			strconv.Itoa(tr.Walks()),
			strconv.FormatInt(p.Seed, 10),
			strconv.FormatFloat(res.ReturnProbability, 'g', -1, 64),
		},
	)
	schema := arrowSchema(tr.Dim(), md)

	mem := memory.NewGoAllocator()
	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	walkCol := b.Field(0).(*array.Int32Builder)
	stepCol := b.Field(1).(*array.Int32Builder)
	originCol := b.Field(2).(*array.BooleanBuilder)
	coordCols := make([]*array.Int64Builder, tr.Dim())
	for d := range coordCols {
		coordCols[d] = b.Field(3 + d).(*array.Int64Builder)
	}

	walks := p.walkLimit()
	rows := walks * tr.Steps()
	walkCol.Reserve(rows)
	stepCol.Reserve(rows)
	originCol.Reserve(rows)
	for _, c := range coordCols {
		c.Reserve(rows)
	}

	for wi := 0; wi < walks; wi++ {
		for t := 0; t < tr.Steps(); t++ {
			walkCol.Append(int32(wi))
			stepCol.Append(int32(t))
			originCol.Append(tr.AtOrigin(wi, t))
			for d, c := range tr.Position(wi, t) {
				coordCols[d].Append(c)
			}
		}
	}

	rec := b.NewRecord()
	defer rec.Release()

	iw := ipc.NewWriter(w, ipc.WithSchema(schema), ipc.WithAllocator(mem))
	if err := iw.Write(rec); err != nil {
		_ = iw.Close()
		return fmt.Errorf("writing arrow record: %w", err)
	}
	if err := iw.Close(); err != nil {
		return fmt.Errorf("closing arrow stream: %w", err)
	}
	return nil
}
