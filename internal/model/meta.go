package model

import "time"

// RedirectEdge is one discovered redirect: the redirecting page's title and
// the title it points at. Edges are appended to the redirect sink in
// discovery order, which equals archive order.
type RedirectEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// PageMeta is the lightweight metadata record written for each processed
// page. Metadata extraction is best-effort: fields the dump omitted stay at
// their zero values and consumers must tolerate that.
type PageMeta struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Namespace     int       `json:"ns"`
	NamespaceName string    `json:"ns_name,omitempty"`
	RevisionID    int64     `json:"revision_id,omitempty"`
	Timestamp     time.Time `json:"timestamp,omitzero"`
	Redirect      string    `json:"redirect,omitempty"`
}

// SiteInfo is the decoded <siteinfo> header of a dump file: identifying
// fields plus the namespace table mapping numeric keys to display names.
// It is decoded once per archive, before the first page.
type SiteInfo struct {
	SiteName  string
	DBName    string
	Base      string
	Generator string

	// Namespaces maps the numeric namespace key to its localized name.
	// The main namespace (key 0) has an empty name.
	Namespaces map[int]string
}

// NamespaceName returns the display name for a namespace key, or "" if the
// key is unknown or names the main namespace.
func (s *SiteInfo) NamespaceName(key int) string {
	if s == nil || s.Namespaces == nil {
		return ""
	}
	return s.Namespaces[key]
}
