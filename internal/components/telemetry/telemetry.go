package telemetry

// API is what components report through instead of logging directly, tests
// swap it for a RecorderAPI to assert on what was reported.
//
// Ids name the component and method that is reporting, not the specific
// failure: `client.fetch-results`, not `client.fetch-results-http-500`.
// Details go into params. Ids are lowercase, with dashes between the words
// of a method name.
type API interface {
	// ReportBroken reports a failure that needs someone to look at it.
	ReportBroken(id string, params ...any)
	// ReportWarning reports something unexpected that the caller recovered from.
	ReportWarning(id string, params ...any)
	ReportDebug(msg string, params ...any)
	// ReportCount reports a point in time count, counts are not summed.
	ReportCount(id string, count int64)
}

// KV is a named param, implementations should log it under its key instead
// of its position.
type KV struct {
	Key   string
	Value any
}

// ScopedAPI prefixes every id it reports with a namespace.
type ScopedAPI struct {
	namespace string
	inner     API
}

// NewScopedAPI scopes inner to namespace. Scoping an already scoped api
// nests the namespaces.
func NewScopedAPI(namespace string, inner API) ScopedAPI {
	if parent, ok := inner.(ScopedAPI); ok {
		return ScopedAPI{namespace: parent.namespace + "/" + namespace, inner: parent.inner}
	}
	return ScopedAPI{namespace: namespace, inner: inner}
}

func (s ScopedAPI) id(id string) string {
	return s.namespace + ": " + id
}

func (s ScopedAPI) ReportBroken(id string, params ...any) {
	s.inner.ReportBroken(s.id(id), params...)
}

func (s ScopedAPI) ReportWarning(id string, params ...any) {
	s.inner.ReportWarning(s.id(id), params...)
}

func (s ScopedAPI) ReportDebug(msg string, params ...any) {
	s.inner.ReportDebug(s.id(msg), params...)
}

func (s ScopedAPI) ReportCount(id string, count int64) {
	s.inner.ReportCount(s.id(id), count)
}
