package log

// Attribute keys shared by every package that logs.
const (
	FieldComponent     = "component"
	FieldOperation     = "operation"
	FieldError         = "error"
	FieldPath          = "path"
	FieldLine          = "line"
	FieldYear          = "year"
	FieldMonth         = "month"
	FieldAmountMinor   = "amount_minor"
	FieldKind          = "kind"
	FieldCategory      = "category"
	FieldTransactionID = "transaction_id"
	FieldEventType     = "type"
	FieldArchive       = "archive"
	FieldSkipped       = "skipped"
	FieldCount         = "count"
)

const (
	ComponentApp       = "app"
	ComponentLedger    = "ledger"
	ComponentBudget    = "budget"
	ComponentAnalytics = "analytics"
	ComponentTransfer  = "transfer"
	ComponentBackup    = "backup"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentService   = "service"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentIntegrity = "integrity"
)

const (
	OpPublish = "publish"
	OpBackup  = "backup"
	OpConsume = "consume"
)

// LogFields collects attributes before handing them to a log call.
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithError is a no-op for a nil err.
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) With(key string, value any) LogFields {
	f[key] = value
	return f
}

// ToSlice flattens f into slog's alternating key/value form. Map order is
// not preserved.
func (f LogFields) ToSlice() []any {
	out := make([]any, 0, len(f)*2)
	for k, v := range f {
		out = append(out, k, v)
	}
	return out
}
