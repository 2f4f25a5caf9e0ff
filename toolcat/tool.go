package toolcat

// Tool describes a single invocable capability exposed by a backend.
type Tool struct {
	ID           string
	Name         string
	Description  string
	BackendID    string
	BackendName  string
	Capabilities []string
	RequiresAuth bool
}

// HasCapability reports whether the tool declares the given capability.
func (t Tool) HasCapability(capability string) bool {
	for _, c := range t.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}

// HasAllCapabilities reports whether the tool declares every capability in
// required. An empty required set is always satisfied.
func (t Tool) HasAllCapabilities(required []string) bool {
	for _, r := range required {
		if !t.HasCapability(r) {
			return false
		}
	}
	return true
}
