package export

import (
	"io"

	"salesdash/internal/models"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/ipc"
	"github.com/apache/arrow/go/v18/arrow/memory"
)

// RowSchema is the Arrow schema of exported rows. Amounts are float64.
var RowSchema = arrow.NewSchema([]arrow.Field{
	{Name: "order_id", Type: arrow.BinaryTypes.String},
	{Name: "order_date", Type: arrow.FixedWidthTypes.Date32},
	{Name: "segment", Type: arrow.BinaryTypes.String},
	{Name: "region", Type: arrow.BinaryTypes.String},
	{Name: "state", Type: arrow.BinaryTypes.String},
	{Name: "city", Type: arrow.BinaryTypes.String},
	{Name: "category", Type: arrow.BinaryTypes.String},
	{Name: "sub_category", Type: arrow.BinaryTypes.String},
	{Name: "sales", Type: arrow.PrimitiveTypes.Float64},
	{Name: "quantity", Type: arrow.PrimitiveTypes.Int64},
	{Name: "discount", Type: arrow.PrimitiveTypes.Float64},
	{Name: "profit", Type: arrow.PrimitiveTypes.Float64},
}, nil)

// arrowBatchSize bounds the rows held by one record batch.
const arrowBatchSize = 4096

// WriteArrow streams rows as Arrow IPC record batches.
func WriteArrow(w io.Writer, rows []models.Row) error {
	mem := memory.NewGoAllocator()

	writer := ipc.NewWriter(w, ipc.WithSchema(RowSchema), ipc.WithAllocator(mem))

	b := array.NewRecordBuilder(mem, RowSchema)
	defer b.Release()

	for start := 0; start < len(rows); start += arrowBatchSize {
		end := min(start+arrowBatchSize, len(rows))
		for _, r := range rows[start:end] {
			b.Field(0).(*array.StringBuilder).Append(r.OrderID)
			b.Field(1).(*array.Date32Builder).Append(arrow.Date32FromTime(r.OrderDate))
			b.Field(2).(*array.StringBuilder).Append(r.Segment)
			b.Field(3).(*array.StringBuilder).Append(r.Region)
			b.Field(4).(*array.StringBuilder).Append(r.State)
			b.Field(5).(*array.StringBuilder).Append(r.City)
			b.Field(6).(*array.StringBuilder).Append(r.Category)
			b.Field(7).(*array.StringBuilder).Append(r.SubCategory)
			b.Field(8).(*array.Float64Builder).Append(r.Sales.InexactFloat64())
			b.Field(9).(*array.Int64Builder).Append(int64(r.Quantity))
			b.Field(10).(*array.Float64Builder).Append(r.Discount.InexactFloat64())
			b.Field(11).(*array.Float64Builder).Append(r.Profit.InexactFloat64())
		}
		rec := b.NewRecord()
		err := writer.Write(rec)
		rec.Release()
		if err != nil {
			_ = writer.Close()
			return err
		}
	}

	return writer.Close()
}
