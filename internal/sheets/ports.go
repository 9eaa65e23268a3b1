package sheets

import "context"

// RowWriter appends rows to the end of a named sheet.
type RowWriter interface {
	AppendRows(ctx context.Context, sheet string, rows [][]any) (updatedRange string, err error)
}
