package store

// Metadata describes where an indexed document came from. It is
// written once during index build and read-only afterwards.
type Metadata struct {
	Source      string `json:"source"`
	Type        string `json:"type"`
	ProductName string `json:"product_name,omitempty"`
	Category    string `json:"category,omitempty"`
}

// Match is one nearest-neighbor result. Distance is the index's native
// L2 distance: non-negative, unbounded, 0 for an identical vector.
type Match struct {
	ID       string
	Content  string
	Metadata Metadata
	Distance float64
}
