package intake

import "regexp"

// Field is one collectible entry in the catalog.
type Field struct {
	Name      string
	Prompt    string
	Category  string
	Validate  func(string) bool
	DependsOn []string
}

// Catalog is the fixed, ordered schema of collectible fields.
type Catalog struct {
	fields []Field
	byName map[string]Field
}

// Progress reports how much of the catalog a draft has satisfied.
type Progress struct {
	Completed []string `json:"completed"`
	Total     int      `json:"total"`
	Ratio     float64  `json:"ratio"`
}

var (
	emailFormatRE = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneFormatRE = regexp.MustCompile(`^\+?[\d\s().-]{7,20}$`)
)

// Canonical field names for the quote intake flow.
const (
	FieldCustomerName     = "customerName"
	FieldCustomerEmail    = "customerEmail"
	FieldCustomerPhone    = "customerPhone"
	FieldProjectType      = "projectType"
	FieldLocation         = "location"
	FieldScopeDescription = "scopeDescription"
	FieldBudget           = "budget"
	FieldTimeline         = "timeline"
)

// DefaultCatalog returns the quote-intake field schema. Order is the asking
// order; the line-item pseudo-field waits on project type and scope.
func DefaultCatalog() *Catalog {
	return NewCatalog([]Field{
		{
			Name:     FieldCustomerName,
			Prompt:   "Who should we make this quote out to? A first and last name works great.",
			Category: "contact",
		},
		{
			Name:     FieldCustomerEmail,
			Prompt:   "What's the best email address to send the quote to?",
			Category: "contact",
			Validate: func(v string) bool { return emailFormatRE.MatchString(v) },
		},
		{
			Name:     FieldCustomerPhone,
			Prompt:   "And a phone number in case our estimator has questions?",
			Category: "contact",
			Validate: func(v string) bool { return phoneFormatRE.MatchString(v) },
		},
		{
			Name:     FieldProjectType,
			Prompt:   "What kind of project are you planning? For example a deck, fence, or remodel.",
			Category: "project",
		},
		{
			Name:     FieldLocation,
			Prompt:   "Where is the project located? The site address or even just \"backyard\" helps.",
			Category: "project",
		},
		{
			Name:      FieldScopeDescription,
			Prompt:    "Tell me a bit about the scope — dimensions, materials, anything you have in mind.",
			Category:  "project",
			DependsOn: []string{FieldProjectType},
		},
		{
			Name:     FieldBudget,
			Prompt:   "Do you have a rough budget in mind for this work?",
			Category: "commercial",
		},
		{
			Name:     FieldTimeline,
			Prompt:   "When would you like the work done? A month or season is fine.",
			Category: "commercial",
		},
		{
			Name:      FieldLineItems,
			Prompt:    "Let's itemize the work. Describe one item at a time — say \"done\" when the list is complete.",
			Category:  "items",
			DependsOn: []string{FieldProjectType, FieldScopeDescription},
		},
	})
}

// NewCatalog builds a catalog from an ordered field list.
func NewCatalog(fields []Field) *Catalog {
	byName := make(map[string]Field, len(fields))
	for _, f := range fields {
		byName[f.Name] = f
	}
	return &Catalog{fields: fields, byName: byName}
}

// Field looks up a catalog entry by name.
func (c *Catalog) Field(name string) (Field, bool) {
	f, ok := c.byName[name]
	return f, ok
}

// PromptFor returns the literal catalog question for a field, or "" for an
// unknown name.
func (c *Catalog) PromptFor(name string) string {
	return c.byName[name].Prompt
}

// FieldNames returns the catalog's field names in asking order.
func (c *Catalog) FieldNames() []string {
	names := make([]string, len(c.fields))
	for i, f := range c.fields {
		names[i] = f.Name
	}
	return names
}

// depsSatisfied reports whether every declared dependency holds a truthy
// draft value.
func depsSatisfied(f Field, d Draft) bool {
	for _, dep := range f.DependsOn {
		if !d.Has(dep) {
			return false
		}
	}
	return true
}

// NextMissingField walks the fixed field order and returns the first field
// that is missing and whose dependencies are satisfied. Fields with unmet
// dependencies are skipped, not blocked on. Returns "" once every field,
// line items included, is satisfied.
func (c *Catalog) NextMissingField(d Draft) string {
	for _, f := range c.fields {
		if d.Has(f.Name) {
			continue
		}
		if !depsSatisfied(f, d) {
			continue
		}
		return f.Name
	}
	return ""
}

// MissingFields returns every unsatisfied field, in asking order, regardless
// of dependency state. Used for meta-question answers.
func (c *Catalog) MissingFields(d Draft) []string {
	var missing []string
	for _, f := range c.fields {
		if !d.Has(f.Name) {
			missing = append(missing, f.Name)
		}
	}
	return missing
}

// Progress computes the completed-field ratio plus the explicit completed
// field names.
func (c *Catalog) Progress(d Draft) Progress {
	p := Progress{Total: len(c.fields)}
	for _, f := range c.fields {
		if d.Has(f.Name) {
			p.Completed = append(p.Completed, f.Name)
		}
	}
	if p.Total > 0 {
		p.Ratio = float64(len(p.Completed)) / float64(p.Total)
	}
	return p
}
