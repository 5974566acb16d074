package domain

import "sort"

// Well-known metadata keys consumed by pipeline handlers. These names are a
// contract with external queue collaborators and must not be renamed.
const (
	MetaVERP       = "verp"
	MetaToOwner    = "to_owner"
	MetaRecipients = "recipients"
	MetaListname   = "listname"
	MetaPipeline   = "pipeline"
)

// Metadata is the mutable mapping of processing hints that accompanies a
// message through a pipeline. Handlers consume and produce entries in
// sequence.
type Metadata map[string]any

// Bool returns the boolean value of a hint, false when absent or mistyped.
func (md Metadata) Bool(key string) bool {
	v, _ := md[key].(bool)
	return v
}

// String returns the string value of a hint, "" when absent or mistyped.
func (md Metadata) String(key string) string {
	v, _ := md[key].(string)
	return v
}

// Recipients returns the computed recipient set, sorted for determinism.
// Entries survive a JSON round trip through the queue, where []string
// decodes as []any.
func (md Metadata) Recipients() []string {
	var out []string
	switch v := md[MetaRecipients].(type) {
	case []string:
		out = append(out, v...)
	case []any:
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
	}
	sort.Strings(out)
	return out
}

// SetRecipients replaces the recipient set, deduplicating addresses.
func (md Metadata) SetRecipients(addrs ...string) {
	seen := make(map[string]struct{}, len(addrs))
	set := make([]string, 0, len(addrs))
	for _, a := range addrs {
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		set = append(set, a)
	}
	sort.Strings(set)
	md[MetaRecipients] = set
}

// Clone returns a copy of the metadata; the recipient set is copied so
// queued envelopes do not alias the in-flight mapping.
func (md Metadata) Clone() Metadata {
	cp := make(Metadata, len(md))
	for k, v := range md {
		if slice, ok := v.([]string); ok {
			cp[k] = append([]string(nil), slice...)
			continue
		}
		cp[k] = v
	}
	return cp
}
