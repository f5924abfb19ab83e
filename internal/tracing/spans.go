package tracing

// Span attribute keys for domain dispatch.
const (
	AttrDispatchKind = "strata.dispatch.kind"
	AttrDispatchName = "strata.dispatch.name"
	AttrDispatchID   = "strata.dispatch.id"
	AttrDomain       = "strata.domain"
	AttrErrorMessage = "error.message"
)

// Span names are "<prefix><type name>", e.g. "command.IncrementCommand".
const (
	SpanPrefixCommand = "command."
	SpanPrefixQuery   = "query."
)

const defaultServiceName = "strata"
