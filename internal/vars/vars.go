package vars

// Entry is a single environment variable to provision.
type Entry struct {
	Name  string
	Value string
}

// Set is an ordered collection of entries with unique names. Insertion order
// is preserved so runs produce deterministic logs; setting an existing name
// replaces its value in place.
type Set struct {
	entries []Entry
	index   map[string]int
}

// NewSet builds a Set from the given entries, applying last-write-wins
// semantics for duplicate names.
func NewSet(entries ...Entry) *Set {
	s := &Set{index: make(map[string]int, len(entries))}
	for _, e := range entries {
		s.Put(e.Name, e.Value)
	}
	return s
}

// Put adds the variable or, if the name is already present, replaces its
// value without changing its position.
func (s *Set) Put(name, value string) {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if i, ok := s.index[name]; ok {
		s.entries[i].Value = value
		return
	}
	s.index[name] = len(s.entries)
	s.entries = append(s.entries, Entry{Name: name, Value: value})
}

// Entries returns a defensive copy of the entries in insertion order.
func (s *Set) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of distinct variables in the set.
func (s *Set) Len() int {
	return len(s.entries)
}

// defaultEntries is the embedded configuration for the identity server.
// Values are plaintext literals, connection strings and passwords included;
// this mirrors how the deployment has always shipped them and is a known
// weakness, not something this tool papers over.
var defaultEntries = []Entry{
	{Name: "SIMPLE_IDENTITY_SERVER_DB_PASSWORD", Value: "sample@Strong23Password"},
	{Name: "SIMPLE_IDENTITY_SERVER_CERT_PASSWORD", Value: "SharedCertPassword123!"},
	{Name: "ASPNETCORE_ENVIRONMENT", Value: "Production"},
	{Name: "ASPNETCORE_URLS", Value: "https://+:443"},
	{Name: "Kestrel__Certificates__Default__Path", Value: `c:\dev\ssl\identity-dev-test.crt`},
	{Name: "Kestrel__Certificates__Default__KeyPath", Value: `c:\dev\ssl\identity-dev-test.key`},
	{Name: "SIMPLE_IDENTITY_SERVER_DEFAULT_CONNECTION_STRING", Value: "Server=.,14333;Database=SimpleIdentityServer;MultipleActiveResultSets=true;uid=sa;pwd=sample@Strong23Password;TrustServerCertificate=true;Encrypt=true"},
	{Name: "SIMPLE_IDENTITY_SERVER_SECURITY_LOGS_CONNECTION_STRING", Value: "Server=.,14333;Database=SimpleIdentityServerSecurityLogs;MultipleActiveResultSets=true;uid=sa;pwd=sample@Strong23Password;TrustServerCertificate=true;Encrypt=true"},
}

// Default returns a fresh Set holding the embedded identity-server
// configuration.
func Default() *Set {
	return NewSet(defaultEntries...)
}
