package tableio

import (
	"github.com/amp-labs/amp-tablecheck/table"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// FromArrow copies an Arrow table into a Frame. Column kinds come from the
// Arrow schema, so an all-null int64 column is still int64. Unsigned
// integers widen to int64, timestamps and dates become datetimes in UTC,
// and types without a natural cell representation (decimals, lists,
// structs) are kept as their string rendering in an object column.
func FromArrow(tbl arrow.Table) (*table.Frame, error) {
	schema := tbl.Schema()
	rows := int(tbl.NumRows())
	cols := make([]table.Column, 0, tbl.NumCols())

	for i := range int(tbl.NumCols()) {
		field := schema.Field(i)
		values := make([]table.Value, 0, rows)

		for _, chunk := range tbl.Column(i).Data().Chunks() {
			for j := range chunk.Len() {
				if chunk.IsNull(j) {
					values = append(values, table.Null())

					continue
				}

				values = append(values, table.Of(arrowCell(chunk, j)))
			}
		}

		cols = append(cols, table.NewTypedColumn(field.Name, arrowKind(field.Type), values))
	}

	return table.NewFrame(cols...)
}

func arrowKind(dt arrow.DataType) table.Kind {
	switch dt.ID() { //nolint:exhaustive
	case arrow.STRING, arrow.LARGE_STRING:
		return table.KindString
	case arrow.INT8:
		return table.KindInt8
	case arrow.INT16:
		return table.KindInt16
	case arrow.INT32:
		return table.KindInt32
	case arrow.INT64, arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		return table.KindInt64
	case arrow.FLOAT32:
		return table.KindFloat32
	case arrow.FLOAT64:
		return table.KindFloat64
	case arrow.BOOL:
		return table.KindBool
	case arrow.TIMESTAMP, arrow.DATE32, arrow.DATE64:
		return table.KindDatetime
	case arrow.NULL:
		return table.KindNull
	default:
		return table.KindObject
	}
}

func arrowCell(arr arrow.Array, i int) any { //nolint:cyclop
	switch a := arr.(type) {
	case *array.String:
		return a.Value(i)
	case *array.LargeString:
		return a.Value(i)
	case *array.Int8:
		return a.Value(i)
	case *array.Int16:
		return a.Value(i)
	case *array.Int32:
		return a.Value(i)
	case *array.Int64:
		return a.Value(i)
	case *array.Uint8:
		return a.Value(i)
	case *array.Uint16:
		return a.Value(i)
	case *array.Uint32:
		return a.Value(i)
	case *array.Uint64:
		return a.Value(i)
	case *array.Float32:
		return a.Value(i)
	case *array.Float64:
		return a.Value(i)
	case *array.Boolean:
		return a.Value(i)
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit //nolint:forcetypeassert

		return a.Value(i).ToTime(unit)
	case *array.Date32:
		return a.Value(i).ToTime()
	case *array.Date64:
		return a.Value(i).ToTime()
	default:
		return arr.ValueStr(i)
	}
}
