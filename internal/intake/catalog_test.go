package intake

import (
	"testing"
)

func TestCatalog_NextMissingFieldFollowsOrder(t *testing.T) {
	c := DefaultCatalog()
	d := NewDraft(nil)

	if got := c.NextMissingField(d); got != FieldCustomerName {
		t.Fatalf("expected first field %s, got %s", FieldCustomerName, got)
	}

	d.Set(FieldCustomerName, "Jane Doe")
	if got := c.NextMissingField(d); got != FieldCustomerEmail {
		t.Fatalf("expected %s, got %s", FieldCustomerEmail, got)
	}
}

func TestCatalog_SkipsFieldsWithUnmetDependencies(t *testing.T) {
	c := DefaultCatalog()
	d := NewDraft(map[string]string{
		FieldCustomerName:  "Jane Doe",
		FieldCustomerEmail: "jane@example.com",
		FieldCustomerPhone: "206-555-0100",
		FieldLocation:      "backyard",
	})

	// scopeDescription depends on projectType; with projectType missing the
	// walk must land on projectType, not scope.
	if got := c.NextMissingField(d); got != FieldProjectType {
		t.Fatalf("expected %s, got %s", FieldProjectType, got)
	}

	d.Set(FieldProjectType, "deck construction")
	if got := c.NextMissingField(d); got != FieldScopeDescription {
		t.Fatalf("expected %s, got %s", FieldScopeDescription, got)
	}
}

func TestCatalog_LineItemsWaitOnDependencies(t *testing.T) {
	c := DefaultCatalog()
	d := NewDraft(map[string]string{
		FieldCustomerName:     "Jane Doe",
		FieldCustomerEmail:    "jane@example.com",
		FieldCustomerPhone:    "206-555-0100",
		FieldProjectType:      "deck construction",
		FieldLocation:         "backyard",
		FieldScopeDescription: "12x16 composite deck",
		FieldBudget:           "about 20k",
		FieldTimeline:         "this summer",
	})

	if got := c.NextMissingField(d); got != FieldLineItems {
		t.Fatalf("expected %s, got %s", FieldLineItems, got)
	}

	d.AppendItem(LineItem{Description: "decking", Quantity: 200, Unit: "sq ft"})
	if got := c.NextMissingField(d); got != "" {
		t.Fatalf("expected complete draft, got next field %s", got)
	}
}

func TestCatalog_ProgressCountsSatisfiedFields(t *testing.T) {
	c := DefaultCatalog()
	d := NewDraft(map[string]string{FieldCustomerName: "Jane"})

	p := c.Progress(d)
	if p.Total != 9 {
		t.Fatalf("expected 9 catalog fields, got %d", p.Total)
	}
	if len(p.Completed) != 1 || p.Completed[0] != FieldCustomerName {
		t.Fatalf("unexpected completed set: %v", p.Completed)
	}
	if p.Ratio <= 0 || p.Ratio >= 1 {
		t.Fatalf("ratio out of range: %f", p.Ratio)
	}
}

func TestCatalog_EmailAndPhoneValidators(t *testing.T) {
	c := DefaultCatalog()

	email, _ := c.Field(FieldCustomerEmail)
	if email.Validate("not-an-email") {
		t.Fatal("expected email validator to reject junk")
	}
	if !email.Validate("jane@example.com") {
		t.Fatal("expected email validator to accept a valid address")
	}

	phone, _ := c.Field(FieldCustomerPhone)
	if phone.Validate("call me maybe") {
		t.Fatal("expected phone validator to reject junk")
	}
	if !phone.Validate("(206) 555-0100") {
		t.Fatal("expected phone validator to accept a valid number")
	}
}

func TestDraft_SetIgnoresEmptyAndHasTreatsLineItems(t *testing.T) {
	d := NewDraft(nil)
	d.Set(FieldBudget, "")
	if d.Has(FieldBudget) {
		t.Fatal("empty value must not satisfy a field")
	}

	if d.Has(FieldLineItems) {
		t.Fatal("no items collected yet")
	}
	d.AppendItem(LineItem{Description: "labor"})
	if !d.Has(FieldLineItems) {
		t.Fatal("one item should satisfy the pseudo-field")
	}
}
